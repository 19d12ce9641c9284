package doubanjs

import (
	"testing"

	"github.com/dszqbsm/musiccrawler/spider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const moviesJSON = `{"data":[{"directors":["弗兰克·德拉邦特"],"rate":"9.6","cover_x":2000,"star":"50","title":"肖申克的救赎","url":"https:\/\/movie.douban.com\/subject\/1292052\/","id":"1292052","cover_y":2963}]}`

func TestDoubanMovieTask(t *testing.T) {
	store := spider.NewTaskStore()
	store.AddJSTask(DoubanMovieTask)

	task, ok := store.Get(TaskName)
	require.True(t, ok)

	reqs, err := task.Rule.Root()
	require.NoError(t, err)
	require.Len(t, reqs, 6)
	assert.Equal(t, "https://movie.douban.com/j/new_search_subjects?sort=T&range=9.5,10&tags=%E5%96%9C%E5%89%A7&start=0", reqs[0].Url)
	assert.Equal(t, "https://movie.douban.com/j/new_search_subjects?sort=T&range=9.5,10&tags=%E5%89%A7%E6%83%85&start=40", reqs[5].Url)
	assert.Equal(t, "movies", reqs[0].RuleName)
	assert.Equal(t, 1, reqs[0].Priority)

	rule := task.Rule.Trunk["movies"]
	require.NotNil(t, rule)

	result, err := rule.ParseFunc(&spider.Context{
		Body: []byte(moviesJSON),
		Req:  &spider.Request{Task: task, Url: reqs[0].Url, RuleName: "movies"},
	})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)

	cell := result.Items[0].(*spider.DataCell)
	assert.Equal(t, map[string]interface{}{
		"id":    "1292052",
		"title": "肖申克的救赎",
		"url":   "https://movie.douban.com/subject/1292052/",
		"rate":  "9.6",
	}, cell.Data["Data"])
	assert.Equal(t, []string{"id", "title", "url", "rate"}, store.GetFields(TaskName, "movies"))
}
