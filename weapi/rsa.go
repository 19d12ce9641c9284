package weapi

import (
	"fmt"
	"math/big"
	"strings"
)

// 加密结果的固定长度，对应1024位模数
const encSecKeyLen = 256

/*
输入待加密文本、十六进制公钥指数和十六进制模数，输出十六进制密文和一个错误

该函数先校验两个十六进制常量，任何一个格式错误都直接返回ErrConfig，然后调用rsaEncrypt完成计算
*/
func RSAEncrypt(text, pubKey, modulus string) (string, error) {
	e, err := parseHex("pubKey", pubKey)
	if err != nil {
		return "", err
	}
	n, err := parseHex("modulus", modulus)
	if err != nil {
		return "", err
	}
	return rsaEncrypt(text, e, n), nil
}

// 文本字节逆序后按大端解释为整数，计算 text^e mod n，结果左侧补零至256个字符
// 这是无填充的教科书式模幂运算，只用于匹配weapi协议，不能当作通用的RSA加密使用
func rsaEncrypt(text string, e, n *big.Int) string {
	b := []byte(text)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}

	rs := new(big.Int).Exp(new(big.Int).SetBytes(b), e, n)
	h := rs.Text(16)
	if len(h) < encSecKeyLen {
		h = strings.Repeat("0", encSecKeyLen-len(h)) + h
	}
	return h
}

// 解析十六进制常量，要求为正数
func parseHex(name, s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 16)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a hexadecimal number: %q", ErrConfig, name, s)
	}
	if v.Sign() <= 0 {
		return nil, fmt.Errorf("%w: %s must be positive", ErrConfig, name)
	}
	return v, nil
}
