package tasklib

import (
	"github.com/dszqbsm/musiccrawler/spider"
	"github.com/dszqbsm/musiccrawler/tasklib/doubanjs"
	"github.com/dszqbsm/musiccrawler/tasklib/netease"
	"github.com/dszqbsm/musiccrawler/weapi"
)

func init() {
	spider.TaskStore.AddJSTask(doubanjs.DoubanMovieTask)
}

// 网易云任务依赖签名器，需要在配置加载后注册
func Register(signer *weapi.Signer, cfg netease.Config) {
	spider.TaskStore.Add(netease.NewTask(signer, cfg))
}
