package blog

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPost() *Post {
	return &Post{
		ID:       7,
		Title:    "hello",
		Category: &Category{ID: 1, Name: "Go"},
		Tags:     []*Tag{{ID: 1, Name: "crawler"}},
		Author:   "admin",
	}
}

func TestSaveExcerpt(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		excerpt string
		want    string
	}{
		{name: "strip markdown", body: "# Title\n\nSome **bold** text.", want: "Title\nSome bold text."},
		{name: "truncate runes", body: strings.Repeat("网", 60), want: strings.Repeat("网", 54)},
		{name: "keep explicit excerpt", body: "# ignored", excerpt: "manual", want: "manual"},
		{name: "empty body", body: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPost()
			p.Body = tt.body
			p.Excerpt = tt.excerpt

			require.NoError(t, p.Save())
			assert.Equal(t, tt.want, p.Excerpt)
			assert.False(t, p.CreatedTime.IsZero())
			assert.False(t, p.ModifiedTime.IsZero())
		})
	}
}

func TestSaveInvalid(t *testing.T) {
	tests := []struct {
		name   string
		modify func(p *Post)
		want   error
	}{
		{name: "long title", modify: func(p *Post) { p.Title = strings.Repeat("t", 71) }, want: ErrTooLong},
		{name: "long excerpt", modify: func(p *Post) { p.Excerpt = strings.Repeat("e", 201) }, want: ErrTooLong},
		{name: "long tag", modify: func(p *Post) { p.Tags[0].Name = strings.Repeat("g", 101) }, want: ErrTooLong},
		{name: "no category", modify: func(p *Post) { p.Category = nil }, want: ErrNoCategory},
		{name: "no author", modify: func(p *Post) { p.Author = "" }, want: ErrNoAuthor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPost()
			tt.modify(p)
			assert.ErrorIs(t, p.Save(), tt.want)
		})
	}
}

func TestSaveKeepsCreatedTime(t *testing.T) {
	created := time.Date(2018, 1, 2, 3, 4, 5, 0, time.UTC)
	p := newPost()
	p.CreatedTime = created

	require.NoError(t, p.Save())
	assert.Equal(t, created, p.CreatedTime)
	assert.True(t, p.ModifiedTime.After(created))
}

func TestPostHelpers(t *testing.T) {
	p := newPost()
	p.IncreaseViews()
	p.IncreaseViews()

	assert.Equal(t, uint64(2), p.Views)
	assert.Equal(t, "/post/7/", p.AbsoluteURL())
	assert.Equal(t, "hello", p.String())
	assert.Equal(t, "Go", p.Category.String())
	assert.Equal(t, "crawler", p.Tags[0].String())
}

func TestSortByCreated(t *testing.T) {
	base := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	posts := []*Post{
		{ID: 1, CreatedTime: base},
		{ID: 2, CreatedTime: base.Add(2 * time.Hour)},
		{ID: 3, CreatedTime: base.Add(time.Hour)},
	}

	SortByCreated(posts)

	var ids []int64
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []int64{2, 3, 1}, ids)
}
