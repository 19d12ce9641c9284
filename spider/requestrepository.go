package spider

import "sync"

// 请求历史，记录已访问和已失败过的请求，用于去重和失败重试
type ReqHistoryRepository interface {
	AddVisited(reqs ...*Request)
	DeleteVisited(req *Request)
	// 首次失败返回true，表示允许重试一次
	AddFailures(req *Request) bool
	DeleteFailures(req *Request)
	HasVisited(req *Request) bool
	Failures() int
}

type reqHistory struct {
	mu       sync.Mutex
	visited  map[string]struct{}
	failures map[string]int // 请求id -> 失败次数
}

func NewReqHistoryRepository() ReqHistoryRepository {
	return &reqHistory{
		visited:  make(map[string]struct{}, 100),
		failures: make(map[string]int, 16),
	}
}

func (r *reqHistory) HasVisited(req *Request) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.visited[req.Unique()]
	return ok
}

func (r *reqHistory) AddVisited(reqs ...*Request) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, req := range reqs {
		r.visited[req.Unique()] = struct{}{}
	}
}

func (r *reqHistory) DeleteVisited(req *Request) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.visited, req.Unique())
}

/*
输入一个请求，输出一个布尔值，true表示首次失败允许重试，false表示已失败过

不允许重复爬取的任务会同时把请求移出已访问列表，这样重试的请求不会被去重拦截
*/
func (r *reqHistory) AddFailures(req *Request) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	unique := req.Unique()
	if !req.Task.Reload {
		delete(r.visited, unique)
	}

	r.failures[unique]++

	return r.failures[unique] == 1
}

func (r *reqHistory) DeleteFailures(req *Request) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.failures, req.Unique())
}

// 当前仍记录在案的失败请求数
func (r *reqHistory) Failures() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.failures)
}
