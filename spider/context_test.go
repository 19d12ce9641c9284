package spider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext(body string, rule *Rule) *Context {
	task := NewTask(WithName("douban_movie_search"))
	task.Rule.Trunk = map[string]*Rule{"movies": rule}
	return &Context{
		Body: []byte(body),
		Req:  &Request{Task: task, Url: "https://movie.douban.com/j/new_search_subjects", RuleName: "movies", Depth: 1},
	}
}

func TestContextOutput(t *testing.T) {
	ctx := newTestContext("", &Rule{})
	cell := ctx.Output(map[string]interface{}{"title": "肖申克的救赎"})

	assert.Same(t, ctx.Req.Task, cell.Task)
	assert.Equal(t, "douban_movie_search", cell.GetTaskName())
	assert.Equal(t, "douban_movie_search", cell.GetTableName())
	assert.Equal(t, "movies", cell.GetRuleName())
	assert.Equal(t, ctx.Req.Url, cell.Data["Url"])
	assert.NotEmpty(t, cell.Data["Time"])
}

func TestContextParseJSReg(t *testing.T) {
	ctx := newTestContext(`<a href="/playlist?id=1">a</a><a href="/playlist?id=2">b</a>`, &Rule{})
	result := ctx.ParseJSReg("detail", `href="([^"]+)"`)

	require.Len(t, result.Requests, 2)
	assert.Equal(t, "/playlist?id=2", result.Requests[1].Url)
	assert.Equal(t, 2, result.Requests[0].Depth)
	assert.Equal(t, "detail", result.Requests[0].RuleName)
}

func TestContextOutputJS(t *testing.T) {
	ctx := newTestContext(`<div class="topic-content">阳台</div>`, &Rule{})
	assert.Equal(t, []interface{}{ctx.Req.Url}, ctx.OutputJS(`阳台`).Items)
	assert.Empty(t, ctx.OutputJS(`不存在`).Items)
}

func TestContextOutputJSON(t *testing.T) {
	body := `{"data":[
		{"id":"1292052","title":"肖申克的救赎","rate":"9.7","url":"https://movie.douban.com/subject/1292052/","casts":["蒂姆·罗宾斯"]},
		{"id":"1291546","title":"霸王别姬","rate":"9.6","url":"https://movie.douban.com/subject/1291546/"}
	]}`

	tests := []struct {
		name      string
		body      string
		fields    []string
		wantItems int
		wantKeys  int
	}{
		{name: "filtered", body: body, fields: []string{"id", "title"}, wantItems: 2, wantKeys: 2},
		{name: "all fields", body: body, wantItems: 2, wantKeys: 5},
		{name: "missing key", body: `{"msg":"empty"}`, wantItems: 0},
		{name: "not json", body: `<html>`, wantItems: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := newTestContext(tt.body, &Rule{ItemFields: tt.fields})
			result := ctx.OutputJSON("data")
			require.Len(t, result.Items, tt.wantItems)
			if tt.wantItems == 0 {
				return
			}
			cell := result.Items[0].(*DataCell)
			data := cell.Data["Data"].(map[string]interface{})
			assert.Len(t, data, tt.wantKeys)
			assert.Equal(t, "肖申克的救赎", data["title"])
		})
	}
}
