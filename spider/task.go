package spider

import (
	"sync"
	"time"

	"github.com/dszqbsm/musiccrawler/limiter"
	"github.com/dszqbsm/musiccrawler/proxy"
	"go.uber.org/zap"
)

// 配置文件中的任务配置
type TaskConfig struct {
	Name       string
	Cookie     string
	WaitTime   int64
	Reload     bool
	MaxDepth   int
	MinBodyLen int
	Fetcher    string
	Limits     []LimitConfig
}

type LimitConfig struct {
	EventCount int
	EventDur   int // 秒
	Bucket     int // 桶大小
}

// 一个任务实例
type Task struct {
	Closed bool
	Rule   RuleTree // 任务的解析规则
	Options
}

/*
输入一个或多个配置，输出一个任务实例

该方法用于创建一个新的任务实例，根据传入的配置信息初始化任务实例的属性，并返回任务实例的指针。
*/
func NewTask(opts ...Option) *Task {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}

	d := &Task{}
	d.Options = options

	return d
}

// 任务的日志器，未配置时为Nop
func (t *Task) Logger() *zap.Logger {
	if t.logger == nil {
		return zap.NewNop()
	}
	return t.logger
}

type Options struct {
	Name       string        `json:"name"` // 任务名称，应保证唯一性
	URL        string        `json:"url"`
	Cookie     string        `json:"cookie"`
	WaitTime   int64         `json:"wait_time"` // 随机休眠时间，秒
	Reload     bool          `json:"reload"`    // 网站是否可以重复爬取
	MaxDepth   int           `json:"max_depth"`
	MinBodyLen int           `json:"min_body_len"` // 响应体小于该长度视为被反爬拦截，0表示不检查
	Timeout    time.Duration // http超时时间
	Proxy      proxy.ProxyFunc
	Fetcher    Fetcher
	Storage    DataRepository
	Limit      limiter.RateLimiter
	logger     *zap.Logger
}

var defaultOptions = Options{
	logger:   zap.NewNop(),
	WaitTime: 5,
	Reload:   false,
	MaxDepth: 5,
	Timeout:  3 * time.Second,
}

type Option func(opts *Options)

func WithLogger(logger *zap.Logger) Option {
	return func(opts *Options) {
		opts.logger = logger
	}
}

func WithName(name string) Option {
	return func(opts *Options) {
		opts.Name = name
	}
}

func WithURL(url string) Option {
	return func(opts *Options) {
		opts.URL = url
	}
}

func WithCookie(cookie string) Option {
	return func(opts *Options) {
		opts.Cookie = cookie
	}
}

func WithWaitTime(waitTime int64) Option {
	return func(opts *Options) {
		opts.WaitTime = waitTime
	}
}

func WithReload(reload bool) Option {
	return func(opts *Options) {
		opts.Reload = reload
	}
}

func WithFetcher(f Fetcher) Option {
	return func(opts *Options) {
		opts.Fetcher = f
	}
}

func WithStorage(s DataRepository) Option {
	return func(opts *Options) {
		opts.Storage = s
	}
}

func WithMaxDepth(maxDepth int) Option {
	return func(opts *Options) {
		opts.MaxDepth = maxDepth
	}
}

func WithMinBodyLen(n int) Option {
	return func(opts *Options) {
		opts.MinBodyLen = n
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(opts *Options) {
		opts.Timeout = timeout
	}
}

func WithProxy(proxy proxy.ProxyFunc) Option {
	return func(opts *Options) {
		opts.Proxy = proxy
	}
}

func WithLimit(l limiter.RateLimiter) Option {
	return func(opts *Options) {
		opts.Limit = l
	}
}

// 任务仓库，以任务名为键保存预设任务的规则
type taskStore struct {
	List []*Task
	Hash map[string]*Task
	mu   sync.RWMutex
}

// TaskStore is a global instance
var TaskStore = NewTaskStore()

func NewTaskStore() *taskStore {
	return &taskStore{
		List: []*Task{},
		Hash: map[string]*Task{},
	}
}

/*
输入一个任务，无输出

该方法用于将一个任务添加到任务存储中，将任务添加到任务列表和任务哈希表中，同名任务会被覆盖
*/
func (c *taskStore) Add(task *Task) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.Hash[task.Name]; ok {
		for i, t := range c.List {
			if t.Name == task.Name {
				c.List[i] = task
			}
		}
	} else {
		c.List = append(c.List, task)
	}
	c.Hash[task.Name] = task
}

func (c *taskStore) Get(name string) (*Task, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.Hash[name]
	return t, ok
}

/*
输入任务名称和规则名称，输出字段列表

该方法用于获取指定任务和规则的字段列表，任务或规则不存在时返回nil
*/
func (c *taskStore) GetFields(taskName string, ruleName string) []string {
	t, ok := c.Get(taskName)
	if !ok {
		return nil
	}
	r, ok := t.Rule.Trunk[ruleName]
	if !ok {
		return nil
	}
	return r.ItemFields
}
