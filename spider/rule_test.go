package spider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var movieTask = &TaskModle{
	Name:     "js_douban_movie",
	WaitTime: 1,
	MaxDepth: 3,
	Root: `
		var arr = new Array();
		for (var i = 0; i < 40; i += 20) {
			arr.push({
				URL: "https://movie.douban.com/j/new_search_subjects?start=" + i,
				Priority: 1,
				RuleName: "movies",
				Method: "GET"
			});
		}
		AddJsReq(arr);
	`,
	Rules: []RuleModle{
		{
			Name:       "movies",
			ItemFields: []string{"title"},
			ParseFunc:  `ctx.OutputJSON("data");`,
		},
	},
}

func TestAddJSTask(t *testing.T) {
	store := NewTaskStore()
	store.AddJSTask(movieTask)

	task, ok := store.Get("js_douban_movie")
	require.True(t, ok)
	assert.Equal(t, int64(1), task.WaitTime)
	assert.Equal(t, 3, task.MaxDepth)
	assert.Equal(t, []string{"title"}, store.GetFields("js_douban_movie", "movies"))
	assert.Nil(t, store.GetFields("js_douban_movie", "missing"))
	assert.Nil(t, store.GetFields("missing", "movies"))

	reqs, err := task.Rule.Root()
	require.NoError(t, err)
	require.Len(t, reqs, 2)
	assert.Equal(t, "https://movie.douban.com/j/new_search_subjects?start=20", reqs[1].Url)
	assert.Equal(t, "movies", reqs[0].RuleName)
	assert.Equal(t, "GET", reqs[0].Method)
	assert.Equal(t, 1, reqs[0].Priority)

	ctx := &Context{
		Body: []byte(`{"data":[{"title":"肖申克的救赎","rate":"9.7"}]}`),
		Req:  &Request{Task: task, RuleName: "movies", Url: reqs[0].Url},
	}
	result, err := task.Rule.Trunk["movies"].ParseFunc(ctx)
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	cell := result.Items[0].(*DataCell)
	assert.Equal(t, map[string]interface{}{"title": "肖申克的救赎"}, cell.Data["Data"])
}

func TestAddJSTaskBadScript(t *testing.T) {
	store := NewTaskStore()
	store.AddJSTask(&TaskModle{
		Name:  "broken",
		Root:  `this is not javascript`,
		Rules: []RuleModle{{Name: "r", ParseFunc: `(`}},
	})

	task, ok := store.Get("broken")
	require.True(t, ok)

	_, err := task.Rule.Root()
	assert.Error(t, err)

	_, err = task.Rule.Trunk["r"].ParseFunc(&Context{Req: &Request{Task: task}})
	assert.Error(t, err)
}

func TestAddJsReqs(t *testing.T) {
	reqs := AddJsReqs([]map[string]interface{}{
		{"URL": "http://a", "Priority": int64(2), "RuleName": "r", "Method": "GET"},
		{"RuleName": "no url"},
		{"URL": "http://b", "Priority": 1.0},
	})
	require.Len(t, reqs, 2)
	assert.Equal(t, 2, reqs[0].Priority)
	assert.Equal(t, 1, reqs[1].Priority)
	assert.Equal(t, "http://b", reqs[1].Url)
}

func TestTaskStoreAddReplaces(t *testing.T) {
	store := NewTaskStore()
	store.Add(NewTask(WithName("a")))
	b := NewTask(WithName("a"), WithMaxDepth(9))
	store.Add(b)

	assert.Len(t, store.List, 1)
	got, _ := store.Get("a")
	assert.Same(t, b, got)
}
