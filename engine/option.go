package engine

import (
	"github.com/dszqbsm/musiccrawler/spider"
	"go.uber.org/zap"
)

type Option func(opts *options)

// 爬虫配置选项
type options struct {
	WorkCount     int            // 工作协程数，用于控制并发量
	Fetcher       spider.Fetcher // 任务未配置采集器时使用
	Storage       spider.DataRepository
	Logger        *zap.Logger
	Seeds         []*spider.Task // 初始种子任务
	RunID         string         // 本次运行的标识，写入每个数据单元
	scheduler     Scheduler
	reqRepository spider.ReqHistoryRepository
	taskStore     TaskFinder
}

var defaultOptions = options{
	Logger:    zap.NewNop(),
	WorkCount: 1,
}

// 按名称查找预设任务
type TaskFinder interface {
	Get(name string) (*spider.Task, bool)
}

func WithLogger(logger *zap.Logger) Option {
	return func(opts *options) {
		opts.Logger = logger
	}
}

func WithFetcher(fetcher spider.Fetcher) Option {
	return func(opts *options) {
		opts.Fetcher = fetcher
	}
}

func WithStorage(s spider.DataRepository) Option {
	return func(opts *options) {
		opts.Storage = s
	}
}

func WithWorkCount(workCount int) Option {
	return func(opts *options) {
		opts.WorkCount = workCount
	}
}

func WithSeeds(seed []*spider.Task) Option {
	return func(opts *options) {
		opts.Seeds = seed
	}
}

func WithRunID(id string) Option {
	return func(opts *options) {
		opts.RunID = id
	}
}

func WithScheduler(scheduler Scheduler) Option {
	return func(opts *options) {
		opts.scheduler = scheduler
	}
}

func WithReqRepository(reqRepository spider.ReqHistoryRepository) Option {
	return func(opts *options) {
		opts.reqRepository = reqRepository
	}
}

func WithTaskStore(store TaskFinder) Option {
	return func(opts *options) {
		opts.taskStore = store
	}
}
