package weapi

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"fmt"
	"unicode/utf8"
)

// 协议固定的CBC初始化向量
const IV = "0102030405060708"

/*
输入明文和密钥，输出base64编码的密文和一个错误

该函数用于对明文进行PKCS#7填充至16字节的整数倍，再使用AES-CBC模式和固定IV加密，最后进行base64编码
*/
func AESEncrypt(text, key string) (string, error) {
	if !utf8.ValidString(text) {
		return "", fmt.Errorf("%w: plaintext is not valid utf-8", ErrEncoding)
	}

	block, err := aes.NewCipher([]byte(key))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrConfig, err)
	}

	plaintext := pkcs7Pad([]byte(text), aes.BlockSize)
	ciphertext := make([]byte, len(plaintext))
	cipher.NewCBCEncrypter(block, []byte(IV)).CryptBlocks(ciphertext, plaintext)

	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

/*
输入base64编码的密文和密钥，输出去除填充后的明文和一个错误

该函数是AESEncrypt的逆过程，用于校验签名结果与排查问题
*/
func AESDecrypt(text, key string) (string, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncoding, err)
	}

	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return "", fmt.Errorf("%w: ciphertext length %d is not a multiple of block size", ErrEncoding, len(ciphertext))
	}

	block, err := aes.NewCipher([]byte(key))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrConfig, err)
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, []byte(IV)).CryptBlocks(plaintext, ciphertext)

	plaintext, err = pkcs7Unpad(plaintext, aes.BlockSize)
	if err != nil {
		return "", err
	}

	return string(plaintext), nil
}

// 填充长度为1到blockSize，明文恰好对齐时补一个完整的块
func pkcs7Pad(data []byte, blockSize int) []byte {
	pad := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(pad)}, pad)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	n := len(data)
	if n == 0 {
		return nil, fmt.Errorf("%w: empty data", ErrEncoding)
	}
	pad := int(data[n-1])
	if pad == 0 || pad > blockSize || pad > n {
		return nil, fmt.Errorf("%w: bad padding", ErrEncoding)
	}
	for _, b := range data[n-pad:] {
		if int(b) != pad {
			return nil, fmt.Errorf("%w: bad padding", ErrEncoding)
		}
	}
	return data[:n-pad], nil
}
