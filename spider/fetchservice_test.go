package spider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBrowserFetchPost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		assert.Equal(t, "http://music.163.com/", r.Header.Get("Referer"))
		assert.Equal(t, "appver=1.5.0.75771;", r.Header.Get("Cookie"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "p", r.PostForm.Get("params"))
		assert.Equal(t, "k", r.PostForm.Get("encSecKey"))

		w.Header().Set("Content-Type", "application/json;charset=UTF-8")
		w.Write([]byte(`{"total":12}`))
	}))
	defer srv.Close()

	task := NewTask(WithCookie("bid=x"), WithTimeout(time.Second))
	req := &Request{
		Task:   task,
		Url:    srv.URL,
		Method: http.MethodPost,
		Header: map[string]string{"Referer": "http://music.163.com/", "Cookie": "appver=1.5.0.75771;"},
		Form:   url.Values{"params": {"p"}, "encSecKey": {"k"}},
	}

	body, err := NewFetchService(BrowserFetchType, zap.NewNop()).Get(context.Background(), req)
	require.NoError(t, err)
	assert.JSONEq(t, `{"total":12}`, string(body))
}

func TestBrowserFetchDecodesCharset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "bid=x", r.Header.Get("Cookie"))
		w.Header().Set("Content-Type", "text/html; charset=gbk")
		// "中文" 的GBK编码
		w.Write(append([]byte("<p>"), 0xD6, 0xD0, 0xCE, 0xC4))
	}))
	defer srv.Close()

	task := NewTask(WithCookie("bid=x"), WithTimeout(time.Second))
	body, err := NewFetchService(BrowserFetchType, nil).Get(context.Background(), &Request{Task: task, Url: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, "<p>中文", string(body))
}

func TestFetchStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	task := NewTask(WithTimeout(time.Second))
	for _, typ := range []FetchType{BaseFetchType, BrowserFetchType} {
		_, err := NewFetchService(typ, nil).Get(context.Background(), &Request{Task: task, Url: srv.URL})
		assert.EqualError(t, err, "error status code:403")
	}
}

func TestBaseFetchGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Write([]byte("hello"))
	}))
	defer srv.Close()

	body, err := NewFetchService(BaseFetchType, nil).Get(context.Background(), &Request{Task: NewTask(), Url: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))
}
