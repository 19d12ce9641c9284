package spider

import "errors"

var ErrNilTemp = errors.New("temp data is nil")

// 用于管理临时缓存数据，在父子请求之间传递上下文
type Temp struct {
	data map[string]interface{}
}

// 根据key键值获取临时缓存数据，不存在时返回nil
func (t *Temp) Get(key string) interface{} {
	if t == nil {
		return nil
	}
	return t.data[key]
}

/*
输入一个key键值和一个interface类型的值，输出一个error类型的值

该方法用于将给定的键值和对应的值存储到临时缓存数据中，nil接收者返回ErrNilTemp
*/
func (t *Temp) Set(key string, value interface{}) error {
	if t == nil {
		return ErrNilTemp
	}
	if t.data == nil {
		t.data = make(map[string]interface{}, 8)
	}
	t.data[key] = value
	return nil
}
