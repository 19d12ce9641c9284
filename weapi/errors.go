package weapi

import "errors"

var (
	// 协议常量格式错误，属于致命的配置错误，应在发起任何网络请求之前终止
	ErrConfig = errors.New("weapi: invalid configuration")
	// 载荷无法序列化或无法表示为UTF-8文本
	ErrEncoding = errors.New("weapi: encoding failed")
)
