package doubanjs

// 基于脚本规则爬取豆瓣高分电影

import (
	"github.com/dszqbsm/musiccrawler/spider"
)

const TaskName = "js_douban_top_movies"

// 豆瓣电影筛选接口，评分9.5到10分，每页20部
var DoubanMovieTask = &spider.TaskModle{
	Name:     TaskName,
	WaitTime: 2,
	MaxDepth: 2,
	Root: `
		var tags = ["喜剧", "剧情"];
		var arr = new Array();
		for (var t = 0; t < tags.length; t++) {
			for (var i = 0; i < 60; i += 20) {
				arr.push({
					URL: "https://movie.douban.com/j/new_search_subjects?sort=T&range=9.5,10&tags=" + encodeURIComponent(tags[t]) + "&start=" + i,
					Priority: 1,
					RuleName: "movies",
					Method: "GET",
				});
			}
		}
		AddJsReq(arr);
	`,
	Rules: []spider.RuleModle{
		{
			Name:       "movies",
			ItemFields: []string{"id", "title", "url", "rate"},
			ParseFunc:  `ctx.OutputJSON("data");`,
		},
	},
}
