package weapi

import (
	"crypto/rand"
	"io"

	"go.uber.org/zap"
)

// 网易云weapi协议固定的三个常量，nonce用于第一轮AES加密，pubKey和modulus用于加密会话密钥
const (
	DefaultNonce   = "0CoJUm6Qyw8W8jud"
	DefaultPubKey  = "010001"
	DefaultModulus = "00e0b509f6259df8642dbc35662901477df22677ec152b5ff68ace615bb7b725152b3ab17a876aea8a5aa76d2e417629ec4ee341f56135fccf695280104e0312ecbda92557c93870114af6c9d05c4f7f0c3685b7a46bee255932575cce10b424d813cfe4875d3e82047b97ddef52741d546b8e289dc6935b3ece0462db0a22b8e7"
)

type options struct {
	nonce   string
	pubKey  string
	modulus string
	rand    io.Reader // 会话密钥的随机源，需要并发安全
	logger  *zap.Logger
}

var defaultOptions = options{
	nonce:   DefaultNonce,
	pubKey:  DefaultPubKey,
	modulus: DefaultModulus,
	rand:    rand.Reader,
	logger:  zap.NewNop(),
}

type Option func(opts *options)

func WithNonce(nonce string) Option {
	return func(opts *options) {
		opts.nonce = nonce
	}
}

// 公钥指数，十六进制字符串
func WithPubKey(pubKey string) Option {
	return func(opts *options) {
		opts.pubKey = pubKey
	}
}

// 模数，十六进制字符串
func WithModulus(modulus string) Option {
	return func(opts *options) {
		opts.modulus = modulus
	}
}

func WithRand(r io.Reader) Option {
	return func(opts *options) {
		opts.rand = r
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(opts *options) {
		opts.logger = logger
	}
}
