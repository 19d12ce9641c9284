package spider

import (
	"fmt"

	"github.com/robertkrimen/otto"
)

// 采集规则树
type RuleTree struct {
	Root  func() ([]*Request, error) // 根节点(执行入口)，用于生成爬虫的种子网站
	Trunk map[string]*Rule           // 规则哈希表存储当前任务所有规则
}

// 采集规则节点
type Rule struct {
	ItemFields []string                            // 输出数据的字段，对应存储的列
	ParseFunc  func(*Context) (ParseResult, error) // 内容解析函数
}

type (
	// 脚本任务模板，Root和规则都是JavaScript脚本
	TaskModle struct {
		Name     string      `json:"name"`
		Cookie   string      `json:"cookie"`
		WaitTime int64       `json:"wait_time"`
		MaxDepth int         `json:"max_depth"`
		Reload   bool        `json:"reload"`
		Root     string      `json:"root_script"` // 用于生成初始请求的JavaScript脚本
		Rules    []RuleModle `json:"rule"`        // 包含该任务下所有的解析规则
	}

	RuleModle struct {
		Name       string   `json:"name"`
		ItemFields []string `json:"item_fields"`
		ParseFunc  string   `json:"parse_script"` // 存储用于解析页面内容的JavaScript脚本
	}
)

/*
输入一个任务模型，无输出

该方法用于将一个任务模型转换为任务，通过js虚拟机动态定义Root规则和子规则，并将任务添加到任务存储中
*/
func (c *taskStore) AddJSTask(m *TaskModle) {
	task := NewTask(
		WithName(m.Name),
		WithCookie(m.Cookie),
		WithWaitTime(m.WaitTime),
		WithMaxDepth(m.MaxDepth),
		WithReload(m.Reload),
	)

	// 通过 JS 生成初始请求列表
	task.Rule.Root = func() ([]*Request, error) {
		vm := otto.New()
		if err := vm.Set("AddJsReq", AddJsReqs); err != nil { // 注入 Go 函数到 JS
			return nil, err
		}

		v, err := vm.Run(m.Root)
		if err != nil {
			return nil, err
		}

		e, err := v.Export()
		if err != nil {
			return nil, err
		}

		reqs, ok := e.([]*Request)
		if !ok {
			return nil, fmt.Errorf("root script of %s returned %T", m.Name, e)
		}
		return reqs, nil
	}

	task.Rule.Trunk = make(map[string]*Rule, len(m.Rules))
	for _, r := range m.Rules {
		task.Rule.Trunk[r.Name] = &Rule{
			ItemFields: r.ItemFields,
			ParseFunc:  jsParseFunc(r.ParseFunc),
		}
	}

	c.Add(task)
}

func jsParseFunc(script string) func(ctx *Context) (ParseResult, error) {
	return func(ctx *Context) (ParseResult, error) {
		vm := otto.New()
		if err := vm.Set("ctx", ctx); err != nil { // 注入上下文到 JS
			return ParseResult{}, err
		}

		v, err := vm.Run(script)
		if err != nil {
			return ParseResult{}, err
		}

		e, err := v.Export()
		if err != nil {
			return ParseResult{}, err
		}

		if e == nil {
			return ParseResult{}, nil
		}

		switch result := e.(type) {
		case ParseResult:
			return result, nil
		case *ParseResult:
			return *result, nil
		}
		return ParseResult{}, fmt.Errorf("parse script returned %T", e)
	}
}

/*
输入一个请求列表，输出一个请求列表

该方法用于将 JS 环境中的请求描述转换为 Go 的 Request 对象，缺少URL的请求会被丢弃
*/
func AddJsReqs(jreqs []map[string]interface{}) []*Request {
	reqs := make([]*Request, 0, len(jreqs))

	for _, jreq := range jreqs {
		u, ok := jreq["URL"].(string)
		if !ok {
			continue
		}

		req := &Request{Url: u}
		req.RuleName, _ = jreq["RuleName"].(string)
		req.Method, _ = jreq["Method"].(string)
		req.Priority = jsInt(jreq["Priority"])
		reqs = append(reqs, req)
	}

	return reqs
}

// otto导出的数字类型不固定
func jsInt(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float32:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}
