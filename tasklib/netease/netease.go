package netease

// 爬取网易云音乐热门歌单中评论数超过阈值的歌曲

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"github.com/dszqbsm/musiccrawler/spider"
	"github.com/dszqbsm/musiccrawler/weapi"
	"go.uber.org/zap"
)

const (
	TaskName = "netease_hot_comments"

	RulePlaylistList   = "playlist list"
	RulePlaylistDetail = "playlist detail"
	RuleSongComments   = "song comments"

	BaseURL = "http://music.163.com"

	playlistSelector = "a.tit.f-thide.s-fc0"
	songXPath        = "//ul[@class='f-hide']/li/a"
	pageSize         = 35
)

// 评论接口要求的固定请求体，签名后以表单提交
var commentPayload = map[string]string{
	"username":      "",
	"password":      "",
	"rememberLogin": "true",
}

type Config struct {
	Pages     int   // 热门歌单页数，每页35个歌单
	Threshold int64 // 评论数超过该值的歌曲才会输出
	BaseURL   string
	WaitTime  int64
	MaxDepth  int
	Cookie    string // 评论接口的Cookie
}

var DefaultConfig = Config{
	Pages:     42,
	Threshold: 10000,
	BaseURL:   BaseURL,
	WaitTime:  2,
	MaxDepth:  5,
	Cookie:    "appver=1.5.0.75771;",
}

/*
输入一个签名器和任务配置，输出一个爬虫任务

根规则生成热门歌单列表页请求；歌单列表规则提取歌单链接；歌单详情规则提取歌曲id并生成签名后的评论请求；评论规则输出评论数超过阈值的歌曲
*/
func NewTask(signer *weapi.Signer, cfg Config) *spider.Task {
	if cfg.Pages <= 0 {
		cfg.Pages = DefaultConfig.Pages
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultConfig.Threshold
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultConfig.BaseURL
	}
	if cfg.Cookie == "" {
		cfg.Cookie = DefaultConfig.Cookie
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = DefaultConfig.MaxDepth
	}

	n := &netease{signer: signer, cfg: cfg}

	task := spider.NewTask(
		spider.WithName(TaskName),
		spider.WithWaitTime(cfg.WaitTime),
		spider.WithMaxDepth(cfg.MaxDepth),
	)
	task.Rule = spider.RuleTree{
		Root: n.root,
		Trunk: map[string]*spider.Rule{
			RulePlaylistList:   {ParseFunc: n.parsePlaylistList},
			RulePlaylistDetail: {ParseFunc: n.parsePlaylistDetail},
			RuleSongComments: {
				ItemFields: []string{"song_id", "total"},
				ParseFunc:  n.parseSongComments,
			},
		},
	}
	return task
}

type netease struct {
	signer *weapi.Signer
	cfg    Config
}

func (n *netease) root() ([]*spider.Request, error) {
	roots := make([]*spider.Request, 0, n.cfg.Pages)
	for i := 1; i <= n.cfg.Pages; i++ {
		roots = append(roots, &spider.Request{
			Priority: 1,
			Url:      PlaylistPageURL(n.cfg.BaseURL, i*pageSize),
			Method:   "GET",
			RuleName: RulePlaylistList,
		})
	}
	return roots, nil
}

// 热门歌单列表页地址
func PlaylistPageURL(base string, offset int) string {
	return fmt.Sprintf("%s/discover/playlist/?order=hot&cat=%s&limit=%d&offset=%d",
		base, url.QueryEscape("全部"), pageSize, offset)
}

// 评论接口地址
func CommentsURL(base string, songID string) string {
	return fmt.Sprintf("%s/weapi/v1/resource/comments/R_SO_4_%s/?csrf_token=", base, songID)
}

func (n *netease) parsePlaylistList(ctx *spider.Context) (spider.ParseResult, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(ctx.Body))
	if err != nil {
		return spider.ParseResult{}, err
	}

	result := spider.ParseResult{}
	doc.Find(playlistSelector).Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok || href == "" {
			return
		}
		result.Requests = append(result.Requests, &spider.Request{
			Task:     ctx.Req.Task,
			Url:      n.cfg.BaseURL + href,
			Method:   "GET",
			Depth:    ctx.Req.Depth + 1,
			RuleName: RulePlaylistDetail,
		})
	})
	return result, nil
}

/*
输入一个上下文，输出解析结果和错误

从歌单页面的隐藏列表中取出歌曲链接，链接形如/song?id=186016，为每首歌签名一个评论请求，签名失败的歌曲记录日志后跳过
*/
func (n *netease) parsePlaylistDetail(ctx *spider.Context) (spider.ParseResult, error) {
	doc, err := htmlquery.Parse(bytes.NewReader(ctx.Body))
	if err != nil {
		return spider.ParseResult{}, err
	}

	nodes, err := htmlquery.QueryAll(doc, songXPath)
	if err != nil {
		return spider.ParseResult{}, err
	}

	result := spider.ParseResult{}
	for _, node := range nodes {
		songID, ok := SongID(htmlquery.SelectAttr(node, "href"))
		if !ok {
			continue
		}

		params, err := n.signer.Sign(commentPayload)
		if err != nil {
			ctx.Req.Task.Logger().Warn("sign comment request failed",
				zap.String("song_id", songID),
				zap.Error(err),
			)
			continue
		}

		tmp := &spider.Temp{}
		tmp.Set("song_id", songID)

		result.Requests = append(result.Requests, &spider.Request{
			Task:   ctx.Req.Task,
			Url:    CommentsURL(n.cfg.BaseURL, songID),
			Method: "POST",
			Header: map[string]string{
				"Cookie":  n.cfg.Cookie,
				"Referer": n.cfg.BaseURL + "/",
			},
			Form:     params.Values(),
			Depth:    ctx.Req.Depth + 1,
			RuleName: RuleSongComments,
			TmpData:  tmp,
			DedupKey: "song:" + songID,
		})
	}
	return result, nil
}

// 取链接中第一个=之后的部分作为歌曲id
func SongID(href string) (string, bool) {
	_, id, ok := strings.Cut(href, "=")
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

type commentsResponse struct {
	Code  int    `json:"code"`
	Total *int64 `json:"total"`
}

func (n *netease) parseSongComments(ctx *spider.Context) (spider.ParseResult, error) {
	var resp commentsResponse
	if err := json.Unmarshal(ctx.Body, &resp); err != nil {
		return spider.ParseResult{}, fmt.Errorf("decode comments: %w", err)
	}
	if resp.Total == nil {
		return spider.ParseResult{}, errors.New("comments response has no total")
	}

	if *resp.Total <= n.cfg.Threshold {
		return spider.ParseResult{}, nil
	}

	songID, _ := ctx.Req.TmpData.Get("song_id").(string)
	return spider.ParseResult{
		Items: []interface{}{ctx.Output(map[string]interface{}{
			"song_id": songID,
			"total":   *resp.Total,
		})},
	}, nil
}
