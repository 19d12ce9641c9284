package extensions

import (
	"github.com/corpix/uarand"
)

// 用于生成随机的User-Agent，降低被目标网站识别为爬虫的概率
func GenerateRandomUA() string {
	return uarand.GetRandom()
}
