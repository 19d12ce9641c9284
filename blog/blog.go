package blog

// 博客的分类、标签和文章模型

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
)

const (
	MaxNameLen    = 100
	MaxTitleLen   = 70
	MaxExcerptLen = 200
	// 自动生成的摘要长度
	ExcerptLen = 54
)

var (
	ErrTooLong    = errors.New("field too long")
	ErrNoCategory = errors.New("post has no category")
	ErrNoAuthor   = errors.New("post has no author")
)

type Category struct {
	ID   int64
	Name string
}

func (c Category) String() string {
	return c.Name
}

type Tag struct {
	ID   int64
	Name string
}

func (t Tag) String() string {
	return t.Name
}

type Post struct {
	ID           int64
	Title        string
	Body         string // Markdown正文
	CreatedTime  time.Time
	ModifiedTime time.Time
	Excerpt      string
	Category     *Category // 每篇文章必须属于一个分类
	Tags         []*Tag
	Author       string
	Views        uint64
}

func (p *Post) String() string {
	return p.Title
}

/*
无输入，输出一个错误

保存前校验字段长度，摘要为空时将正文渲染为HTML，去掉全部标签后取前54个字符作为摘要
*/
func (p *Post) Save() error {
	if err := checkLen("title", p.Title, MaxTitleLen); err != nil {
		return err
	}
	if p.Category == nil {
		return ErrNoCategory
	}
	if err := checkLen("category", p.Category.Name, MaxNameLen); err != nil {
		return err
	}
	for _, tag := range p.Tags {
		if err := checkLen("tag", tag.Name, MaxNameLen); err != nil {
			return err
		}
	}
	if p.Author == "" {
		return ErrNoAuthor
	}

	if p.Excerpt == "" {
		text, err := StripTags(p.Body)
		if err != nil {
			return err
		}
		p.Excerpt = truncate(text, ExcerptLen)
	}
	if err := checkLen("excerpt", p.Excerpt, MaxExcerptLen); err != nil {
		return err
	}

	now := time.Now()
	if p.CreatedTime.IsZero() {
		p.CreatedTime = now
	}
	p.ModifiedTime = now
	return nil
}

func (p *Post) IncreaseViews() {
	p.Views++
}

func (p *Post) AbsoluteURL() string {
	return fmt.Sprintf("/post/%d/", p.ID)
}

// 渲染Markdown并返回其中的纯文本
func StripTags(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(&buf)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(doc.Text()), nil
}

// 文章按创建时间倒序排列
func SortByCreated(posts []*Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedTime.After(posts[j].CreatedTime)
	})
}

func checkLen(name, s string, max int) error {
	if n := utf8.RuneCountInString(s); n > max {
		return fmt.Errorf("%w: %s has %d characters, max %d", ErrTooLong, name, n, max)
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
