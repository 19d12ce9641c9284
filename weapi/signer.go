package weapi

import (
	"crypto/aes"
	"encoding/json"
	"fmt"
	"math/big"
	"net/url"

	"go.uber.org/zap"
)

// 签名后的请求参数，作为POST表单提交
type Params struct {
	Params    string `json:"params"`
	EncSecKey string `json:"encSecKey"`
}

// 转换为表单参数
func (p *Params) Values() url.Values {
	v := url.Values{}
	v.Set("params", p.Params)
	v.Set("encSecKey", p.EncSecKey)
	return v
}

// 请求签名器，构造时完成协议常量的校验，之后的每次签名都是纯计算
type Signer struct {
	e *big.Int
	n *big.Int
	options
}

/*
输入多个配置选项，输出一个Signer实例和一个错误

该方法用于创建签名器，校验nonce是否为合法的AES密钥长度，解析十六进制的公钥指数和模数，任何一项不合法都返回ErrConfig
*/
func NewSigner(opts ...Option) (*Signer, error) {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}

	if _, err := aes.NewCipher([]byte(options.nonce)); err != nil {
		return nil, fmt.Errorf("%w: nonce: %v", ErrConfig, err)
	}

	e, err := parseHex("pubKey", options.pubKey)
	if err != nil {
		return nil, err
	}

	n, err := parseHex("modulus", options.modulus)
	if err != nil {
		return nil, err
	}

	if options.rand == nil {
		return nil, fmt.Errorf("%w: nil random source", ErrConfig)
	}

	s := &Signer{e: e, n: n}
	s.options = options

	return s, nil
}

/*
输入一个可JSON序列化的载荷，输出签名后的请求参数和一个错误

该方法先将载荷序列化为JSON，用nonce做第一轮AES加密，再生成新的会话密钥做第二轮AES加密得到params，最后用公钥加密会话密钥得到encSecKey
*/
func (s *Signer) Sign(payload any) (*Params, error) {
	text, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncoding, err)
	}

	first, err := AESEncrypt(string(text), s.nonce)
	if err != nil {
		return nil, err
	}

	secKey, err := readSecretKey(s.rand, SecretKeySize)
	if err != nil {
		return nil, err
	}

	encText, err := AESEncrypt(first, secKey)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("weapi request signed", zap.Int("payload", len(text)), zap.Int("params", len(encText)))

	return &Params{
		Params:    encText,
		EncSecKey: rsaEncrypt(secKey, s.e, s.n),
	}, nil
}
