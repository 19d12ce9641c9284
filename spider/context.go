package spider

import (
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"go.uber.org/zap"
)

// 上下文结构体：将响应内容和当前请求封装在一起，传递给解析函数
type Context struct {
	Body []byte
	Req  *Request
}

// 依据规则名称从当前请求任务规则书中获取对应的规则
func (c *Context) GetRule(ruleName string) *Rule {
	return c.Req.Task.Rule.Trunk[ruleName]
}

/*
输入一个数据，输出一个数据单元

该方法用于创建一个数据单元，将数据和请求的相关信息封装到数据单元中，返回数据单元的指针
*/
func (c *Context) Output(data interface{}) *DataCell {
	res := &DataCell{
		Task: c.Req.Task,
	}
	res.Data = make(map[string]interface{})
	res.Data["Task"] = c.Req.Task.Name
	res.Data["Rule"] = c.Req.RuleName
	res.Data["Data"] = data
	res.Data["Url"] = c.Req.Url
	res.Data["Time"] = time.Now().Format("2006-01-02 15:04:05")

	return res
}

/*
输入一个规则名称和正则表达式，输出解析结果

该方法用于解析网页内容，根据正则表达式提取网页中的链接，并将链接封装成请求，添加到解析结果的请求列表中，返回解析结果
*/
func (c *Context) ParseJSReg(name string, reg string) ParseResult {
	re := regexp.MustCompile(reg)

	matches := re.FindAllSubmatch(c.Body, -1)
	result := ParseResult{}

	for _, m := range matches {
		u := string(m[1])

		result.Requests = append(
			result.Requests, &Request{
				Method:   "GET",
				Task:     c.Req.Task,
				Url:      u,
				Depth:    c.Req.Depth + 1,
				RuleName: name,
			})
	}

	return result
}

/*
输入一个正则表达式，输出解析结果

该方法用于解析网页内容，根据正则表达式匹配响应内容，若匹配成功则记录当前请求的 URL，否则返回空结果
*/
func (c *Context) OutputJS(reg string) ParseResult {
	re := regexp.MustCompile(reg)
	if ok := re.Match(c.Body); !ok {
		return ParseResult{
			Items: []interface{}{},
		}
	}

	result := ParseResult{
		Items: []interface{}{c.Req.Url},
	}

	return result
}

/*
输入一个JSON字段名，输出解析结果

该方法用于解析JSON响应，取出顶层对象中key对应的数组，数组中的每个对象按当前规则的ItemFields筛选字段后输出为一个数据单元

供脚本规则调用，因此只有一个返回值，解析失败时记录日志并返回空结果
*/
func (c *Context) OutputJSON(key string) ParseResult {
	list, err := c.jsonList(key)
	if err != nil {
		c.Req.Task.Logger().Error("output json failed",
			zap.Error(err),
			zap.String("url", c.Req.Url),
		)
		return ParseResult{Items: []interface{}{}}
	}

	var fields []string
	if rule := c.GetRule(c.Req.RuleName); rule != nil {
		fields = rule.ItemFields
	}

	result := ParseResult{Items: make([]interface{}, 0, len(list))}
	for _, obj := range list {
		item := obj
		if len(fields) > 0 {
			item = make(map[string]interface{}, len(fields))
			for _, f := range fields {
				item[f] = obj[f]
			}
		}
		result.Items = append(result.Items, c.Output(item))
	}

	return result
}

func (c *Context) jsonList(key string) ([]map[string]interface{}, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(c.Body, &doc); err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}

	raw, ok := doc[key]
	if !ok {
		return nil, nil
	}

	var list []map[string]interface{}
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return list, nil
}
