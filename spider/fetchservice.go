package spider

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dszqbsm/musiccrawler/extensions"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

type FetchType int

const (
	BaseFetchType FetchType = iota
	BrowserFetchType
)

type Fetcher interface {
	/*
	   输入一个上下文和一个请求，输出一个字节数组和一个错误

	   该方法用于发起请求并返回转换为utf-8编码的响应体
	*/
	Get(ctx context.Context, req *Request) ([]byte, error)
}

/*
输入一个FetchType类型的参数和日志器，输出一个Fetcher接口类型的实例

该方法用于创建一个Fetcher接口类型的实例，根据输入的FetchType类型参数选择不同的实现方式
*/
func NewFetchService(typ FetchType, logger *zap.Logger) Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch typ {
	case BaseFetchType:
		return &baseFetch{logger: logger}
	case BrowserFetchType:
		return &browserFetch{logger: logger}
	default:
		return &browserFetch{logger: logger}
	}
}

type baseFetch struct {
	logger *zap.Logger
}

/*
输入一个请求，输出一个字节数组和一个错误

该方法用于发送HTTP GET请求并获取响应，若响应状态码不为200，则返回错误，否则将响应体转换为UTF-8编码
*/
func (b *baseFetch) Get(ctx context.Context, request *Request) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, request.Url, nil)
	if err != nil {
		return nil, fmt.Errorf("get url failed:%w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return readBody(resp, b.logger)
}

type browserFetch struct {
	logger *zap.Logger
}

/*
输入一个请求，输出一个字节数组和一个错误

该方法用于模拟浏览器发起请求，支持GET和表单POST，设置代理服务器、随机User-Agent、Cookie和请求自带的请求头，最后进行编码检测并转换为utf-8
*/
func (b *browserFetch) Get(ctx context.Context, request *Request) ([]byte, error) {
	task := request.Task

	client := &http.Client{
		Timeout: task.Timeout,
	}

	if task.Proxy != nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.Proxy = task.Proxy
		client.Transport = transport
	}

	method := request.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if method == http.MethodPost && request.Form != nil {
		body = strings.NewReader(request.Form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, request.Url, body)
	if err != nil {
		return nil, fmt.Errorf("get url failed:%w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	if len(task.Cookie) > 0 {
		req.Header.Set("Cookie", task.Cookie)
	}

	req.Header.Set("User-Agent", extensions.GenerateRandomUA())

	// 请求级别的请求头优先于任务级别
	for k, v := range request.Header {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return readBody(resp, b.logger)
}

func readBody(resp *http.Response, logger *zap.Logger) ([]byte, error) {
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("error status code:%d", resp.StatusCode)
	}

	bodyReader := bufio.NewReader(resp.Body)
	e := DeterminEncoding(bodyReader, resp.Header.Get("Content-Type"), logger)
	utf8Reader := transform.NewReader(bodyReader, e.NewDecoder())

	return io.ReadAll(utf8Reader)
}

// 根据响应的前1024个字节和Content-Type推断编码，无法判断时按utf-8处理
func DeterminEncoding(r *bufio.Reader, contentType string, logger *zap.Logger) encoding.Encoding {
	bytes, err := r.Peek(1024)

	if err != nil && !errors.Is(err, io.EOF) {
		logger.Error("fetch failed", zap.Error(err))

		return unicode.UTF8
	}

	e, _, _ := charset.DetermineEncoding(bytes, contentType)

	return e
}
