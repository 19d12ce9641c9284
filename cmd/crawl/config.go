package crawl

import (
	"fmt"
	"time"

	"github.com/dszqbsm/musiccrawler/limiter"
	"github.com/dszqbsm/musiccrawler/proxy"
	"github.com/dszqbsm/musiccrawler/spider"
	"github.com/dszqbsm/musiccrawler/tasklib/netease"
	"github.com/dszqbsm/musiccrawler/weapi"
	"github.com/go-micro/plugins/v4/config/encoder/toml"
	"go-micro.dev/v4/config"
	"go-micro.dev/v4/config/reader"
	"go-micro.dev/v4/config/reader/json"
	"go-micro.dev/v4/config/source"
	"go-micro.dev/v4/config/source/file"
	"go.uber.org/zap"
)

// 通过toml编码器加载配置文件
func LoadConfig(path string) (config.Config, error) {
	enc := toml.NewEncoder()
	cfg, err := config.NewConfig(config.WithReader(json.NewReader(reader.WithEncoder(enc))))
	if err != nil {
		return nil, err
	}
	err = cfg.Load(file.NewSource(
		file.WithPath(path),
		source.WithEncoder(enc),
	))
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// 签名器的协议常量，未配置时使用默认值
func SignerOptions(cfg config.Config, logger *zap.Logger) []weapi.Option {
	return []weapi.Option{
		weapi.WithNonce(cfg.Get("weapi", "nonce").String(weapi.DefaultNonce)),
		weapi.WithPubKey(cfg.Get("weapi", "pubKey").String(weapi.DefaultPubKey)),
		weapi.WithModulus(cfg.Get("weapi", "modulus").String(weapi.DefaultModulus)),
		weapi.WithLogger(logger.Named("weapi")),
	}
}

func NeteaseConfig(cfg config.Config) netease.Config {
	d := netease.DefaultConfig
	return netease.Config{
		Pages:     cfg.Get("netease", "pages").Int(d.Pages),
		Threshold: int64(cfg.Get("netease", "threshold").Int(int(d.Threshold))),
		BaseURL:   cfg.Get("netease", "baseURL").String(d.BaseURL),
		WaitTime:  int64(cfg.Get("netease", "waitTime").Int(int(d.WaitTime))),
		MaxDepth:  cfg.Get("netease", "maxDepth").Int(d.MaxDepth),
		Cookie:    cfg.Get("netease", "cookie").String(d.Cookie),
	}
}

// 采集器相关配置
type FetcherConfig struct {
	Timeout time.Duration
	Proxy   proxy.ProxyFunc
}

func ParseFetcherConfig(cfg config.Config, logger *zap.Logger) FetcherConfig {
	proxyURLs := cfg.Get("fetcher", "proxy").StringSlice([]string{})
	timeout := cfg.Get("fetcher", "timeout").Int(3000)
	logger.Sugar().Info("proxy list: ", proxyURLs, " timeout: ", timeout)

	fc := FetcherConfig{Timeout: time.Duration(timeout) * time.Millisecond}
	if len(proxyURLs) == 0 {
		return fc
	}
	p, err := proxy.RoundRobinProxySwitcher(proxyURLs...)
	if err != nil {
		logger.Error("RoundRobinProxySwitcher failed", zap.Error(err))
		return fc
	}
	fc.Proxy = p
	return fc
}

/*
输入日志器、采集器、存储器、采集器配置和任务配置列表，输出种子任务列表

把配置文件中的每个任务转换为种子任务，限速配置转换为多层限速器，任务的规则在引擎启动时从任务仓库中补全
*/
func ParseTaskConfig(logger *zap.Logger, f spider.Fetcher, s spider.DataRepository, fc FetcherConfig, cfgs []spider.TaskConfig) []*spider.Task {
	tasks := make([]*spider.Task, 0, len(cfgs))
	for _, cfg := range cfgs {
		t := spider.NewTask(
			spider.WithName(cfg.Name),
			spider.WithReload(cfg.Reload),
			spider.WithCookie(cfg.Cookie),
			spider.WithLogger(logger.Named(cfg.Name)),
			spider.WithMinBodyLen(cfg.MinBodyLen),
			spider.WithTimeout(fc.Timeout),
			spider.WithProxy(fc.Proxy),
		)
		if s != nil {
			t.Storage = s
		}

		if cfg.WaitTime > 0 {
			t.WaitTime = cfg.WaitTime
		}

		if cfg.MaxDepth > 0 {
			t.MaxDepth = cfg.MaxDepth
		}

		if len(cfg.Limits) > 0 {
			var limits []limiter.RateLimiter
			for _, lcfg := range cfg.Limits {
				limits = append(limits, limiter.New(lcfg.EventCount, time.Duration(lcfg.EventDur)*time.Second, lcfg.Bucket))
			}
			t.Limit = limiter.Multi(limits...)
		}

		switch cfg.Fetcher {
		case "base":
			t.Fetcher = spider.NewFetchService(spider.BaseFetchType, logger)
		case "browser", "":
			t.Fetcher = f
		default:
			logger.Warn("unknown fetcher, use browser", zap.String("task", cfg.Name), zap.String("fetcher", cfg.Fetcher))
			t.Fetcher = f
		}
		tasks = append(tasks, t)
	}
	return tasks
}
