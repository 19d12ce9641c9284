package weapi

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
)

// 会话密钥长度，同时也是AES-128的密钥长度
const SecretKeySize = 16

// 生成size个随机字节，十六进制编码后截取前16个字符作为会话密钥
func CreateSecretKey(size int) string {
	key, err := readSecretKey(rand.Reader, size)
	if err != nil {
		// crypto/rand在受支持的平台上不会失败
		panic(err)
	}
	return key
}

func readSecretKey(r io.Reader, size int) (string, error) {
	buf := make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	key := hex.EncodeToString(buf)
	if len(key) > SecretKeySize {
		key = key[:SecretKeySize]
	}
	return key, nil
}
