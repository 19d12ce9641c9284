package spider

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"math/rand"
	"net/url"
	"time"
)

var ErrMaxDepth = errors.New("max depth limit reached")

// 表示解析结果
type ParseResult struct {
	Requests []*Request    // 从当前页面解析出的新请求
	Items    []interface{} // 从当前页面提取的有用数据
}

// 表示一个具体的HTTP请求
type Request struct {
	Task     *Task             // 所属的任务
	Url      string            // 请求的URL
	Method   string            // 请求的方法，如GET、POST等
	Header   map[string]string // 附加请求头，如Referer
	Form     url.Values        // POST表单
	Depth    int               // 请求的深度，用于控制爬取的最大深度
	Priority int               // 请求的优先级，用于控制请求的执行顺序
	RuleName string            // 解析规则的名称
	TmpData  *Temp             // 临时数据
	DedupKey string            // 非空时代替URL和表单参与去重，用于表单每次都不同的签名请求
}

// 检查当前请求是否超过任务的最大请求深度
func (r *Request) Check() error {
	if r.Depth > r.Task.MaxDepth {
		return ErrMaxDepth
	}
	return nil
}

// 用于生成请求的唯一识别码，用于去重，POST请求的表单也参与计算
func (r *Request) Unique() string {
	if r.DedupKey != "" {
		block := md5.Sum([]byte(r.Method + "\x00" + r.DedupKey))
		return hex.EncodeToString(block[:])
	}
	block := md5.Sum([]byte(r.Method + r.Url + r.Form.Encode()))
	return hex.EncodeToString(block[:])
}

/*
输入一个上下文，输出响应体和一个错误

在工作协程发起请求之前，通过限速器限制请求速率，只有当所有限速器都满足的时候才能取得令牌，然后进行随机休眠模拟人类行为，最后交给任务的采集器发起请求
*/
func (r *Request) Fetch(ctx context.Context) ([]byte, error) {
	if r.Task.Limit != nil {
		if err := r.Task.Limit.Wait(ctx); err != nil {
			return nil, err
		}
	}

	if r.Task.WaitTime > 0 {
		sleeptime := rand.Int63n(r.Task.WaitTime * 1000)
		t := time.NewTimer(time.Duration(sleeptime) * time.Millisecond)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		}
	}

	if r.Task.Fetcher == nil {
		return nil, errors.New("task has no fetcher")
	}
	return r.Task.Fetcher.Get(ctx, r)
}
