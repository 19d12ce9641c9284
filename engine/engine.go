package engine

import (
	"context"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/dszqbsm/musiccrawler/spider"
	"go.uber.org/zap"
)

// 支持批量缓存的存储需要在结束时刷新
type flusher interface {
	Flush() error
}

// 爬虫实例，管理整个爬取流程
type Crawler struct {
	out      chan spider.ParseResult // 用于传输解析结果的通道
	pending  atomic.Int64            // 已提交但尚未处理完的请求数
	idle     chan struct{}           // pending归零时关闭
	idleOnce sync.Once
	visitMu  sync.Mutex // 保证查询与登记访问记录是一步完成的
	options
}

// 创建并初始化一个Crawler爬虫实例，通过传入不同的配置选项，可以灵活配置爬虫的行为
func NewEngine(opts ...Option) *Crawler {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}
	if options.scheduler == nil {
		options.scheduler = NewSchedule()
	}
	if options.reqRepository == nil {
		options.reqRepository = spider.NewReqHistoryRepository()
	}
	if options.taskStore == nil {
		options.taskStore = spider.TaskStore
	}
	if options.WorkCount < 1 {
		options.WorkCount = 1
	}

	e := &Crawler{}
	e.out = make(chan spider.ParseResult)
	e.idle = make(chan struct{})
	e.options = options
	return e
}

/*
输入一个上下文，输出一个错误

该方法用于启动爬虫：加载种子任务的根请求，启动调度器、工作协程和结果处理协程，直到所有请求处理完毕或ctx被取消，最后刷新存储中缓存的数据
*/
func (c *Crawler) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	reqs := c.handleSeeds()
	c.Logger.Info("crawler start",
		zap.Int("seeds", len(c.Seeds)),
		zap.Int("roots", len(reqs)),
		zap.Int("workers", c.WorkCount),
	)

	go c.scheduler.Schedule(ctx)
	if len(reqs) == 0 {
		c.setIdle()
	}
	c.push(ctx, reqs...)

	for i := 0; i < c.WorkCount; i++ {
		go c.CreateWork(ctx)
	}

	handled := make(chan struct{})
	go func() {
		defer close(handled)
		c.HandleResult(ctx)
	}()

	var err error
	select {
	case <-c.idle:
		// 所有请求都已处理完毕，工作协程都阻塞在Pull上，不会再有结果写入
		close(c.out)
		<-handled
	case <-ctx.Done():
		err = ctx.Err()
		<-handled
	}

	c.flush()
	c.Logger.Info("crawler stop", zap.Error(err))

	return err
}

// 每个提交的请求都必须对应一次done
func (c *Crawler) push(ctx context.Context, reqs ...*spider.Request) {
	if len(reqs) == 0 {
		return
	}
	c.pending.Add(int64(len(reqs)))
	go c.scheduler.Push(ctx, reqs...)
}

// 子请求在父请求完成前就已计数，所以计数归零即表示没有剩余工作
func (c *Crawler) done() {
	if c.pending.Add(-1) == 0 {
		c.setIdle()
	}
}

func (c *Crawler) setIdle() {
	c.idleOnce.Do(func() {
		close(c.idle)
	})
}

/*
无输出，返回所有种子任务的根请求

遍历种子任务，从任务仓库中查找预配置任务，将预配置任务的规则绑定到种子任务，补全采集器和存储器，然后生成根请求并为每个根请求绑定所属任务
*/
func (c *Crawler) handleSeeds() []*spider.Request {
	var reqs []*spider.Request
	for _, task := range c.Seeds {
		preset, ok := c.taskStore.Get(task.Name)
		if !ok {
			c.Logger.Error("can not find preset tasks", zap.String("task name", task.Name))
			continue
		}
		task.Rule = preset.Rule
		if task.Fetcher == nil {
			task.Fetcher = c.Fetcher
		}
		if task.Storage == nil {
			task.Storage = c.Storage
		}
		if task.Rule.Root == nil {
			c.Logger.Error("task has no root rule", zap.String("task name", task.Name))
			continue
		}

		rootreqs, err := task.Rule.Root()
		if err != nil {
			c.Logger.Error("get root failed",
				zap.String("task name", task.Name),
				zap.Error(err),
			)
			continue
		}

		for _, req := range rootreqs {
			req.Task = task
		}
		reqs = append(reqs, rootreqs...)
	}
	return reqs
}

/*
输入一个上下文，无输出

工作协程的核心逻辑：从调度器中获取请求并校验，跳过已访问的请求，发起请求获取响应体，失败或响应体过短的请求会重试一次，然后调用规则解析响应体，把子请求推送到调度器，把解析结果推入结果通道
*/
func (c *Crawler) CreateWork(ctx context.Context) {
	for {
		req, ok := c.scheduler.Pull(ctx)
		if !ok {
			return
		}
		c.process(ctx, req)
		c.done()
	}
}

func (c *Crawler) process(ctx context.Context, req *spider.Request) {
	defer func() {
		if err := recover(); err != nil {
			c.Logger.Error("worker panic",
				zap.Any("err", err),
				zap.String("url", req.Url),
				zap.String("stack", string(debug.Stack())))
		}
	}()

	if err := req.Check(); err != nil {
		c.Logger.Debug("check failed",
			zap.Error(err),
			zap.String("url", req.Url),
		)
		return
	}

	if !c.markVisited(req) {
		c.Logger.Debug("request has visited",
			zap.String("url", req.Url),
		)
		return
	}

	body, err := req.Fetch(ctx)
	if err != nil {
		c.Logger.Error("can't fetch ",
			zap.Error(err),
			zap.String("url", req.Url),
		)
		c.SetFailure(ctx, req)
		return
	}

	if len(body) < req.Task.MinBodyLen {
		c.Logger.Error("can't fetch ",
			zap.Int("length", len(body)),
			zap.String("url", req.Url),
		)
		c.SetFailure(ctx, req)
		return
	}

	rule, ok := req.Task.Rule.Trunk[req.RuleName]
	if !ok {
		c.Logger.Error("rule not found",
			zap.String("rule", req.RuleName),
			zap.String("task", req.Task.Name),
		)
		return
	}

	result, err := rule.ParseFunc(&spider.Context{
		Body: body,
		Req:  req,
	})
	if err != nil {
		c.Logger.Error("ParseFunc failed ",
			zap.Error(err),
			zap.String("url", req.Url),
		)
		return
	}

	c.reqRepository.DeleteFailures(req)

	for _, r := range result.Requests {
		if r.Task == nil {
			r.Task = req.Task
		}
	}
	c.push(ctx, result.Requests...)

	if len(result.Items) == 0 {
		return
	}

	select {
	case c.out <- result:
	case <-ctx.Done():
	}
}

/*
输入一个上下文，无输出

该方法用于处理解析结果，若数据项为DataCell类型，则写入运行标识后调用所属任务的存储器保存，其他类型的数据项只打印日志
*/
func (c *Crawler) HandleResult(ctx context.Context) {
	for {
		select {
		case result, ok := <-c.out:
			if !ok {
				return
			}
			for _, item := range result.Items {
				switch d := item.(type) {
				case *spider.DataCell:
					if c.RunID != "" && d.Data != nil {
						d.Data["Run"] = c.RunID
					}
					if d.Task == nil || d.Task.Storage == nil {
						c.Logger.Sugar().Info("get result: ", d.Data)
						continue
					}
					if err := d.Task.Storage.Save(d); err != nil {
						c.Logger.Error("save item failed",
							zap.String("task", d.GetTaskName()),
							zap.Error(err),
						)
					}
				default:
					c.Logger.Sugar().Info("get result: ", item)
				}
			}
		case <-ctx.Done():
			return
		}
	}
}

// 登记访问记录，请求已访问过且任务不允许重复爬取时返回false
func (c *Crawler) markVisited(req *spider.Request) bool {
	c.visitMu.Lock()
	defer c.visitMu.Unlock()

	if !req.Task.Reload && c.reqRepository.HasVisited(req) {
		return false
	}
	c.reqRepository.AddVisited(req)
	return true
}

// 失败的请求首次会重新推送到调度器中，第二次失败则放弃
func (c *Crawler) SetFailure(ctx context.Context, req *spider.Request) {
	if c.reqRepository.AddFailures(req) {
		c.push(ctx, req)
		return
	}
	c.Logger.Warn("request failed twice, give up", zap.String("url", req.Url))
}

func (c *Crawler) flush() {
	seen := make(map[spider.DataRepository]struct{})
	for _, task := range c.Seeds {
		if task.Storage == nil {
			continue
		}
		if _, ok := seen[task.Storage]; ok {
			continue
		}
		seen[task.Storage] = struct{}{}
		if f, ok := task.Storage.(flusher); ok {
			if err := f.Flush(); err != nil {
				c.Logger.Error("flush storage failed", zap.Error(err))
			}
		}
	}
}
