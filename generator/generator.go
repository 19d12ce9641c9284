package generator

import (
	"bytes"
	"encoding/binary"
	"net"
	"sync"

	"github.com/bwmarrin/snowflake"
)

// 将IPv4地址转换为32位整数，非IPv4地址返回0
func IDbyIP(ip string) uint32 {
	var id uint32
	binary.Read(bytes.NewBuffer(net.ParseIP(ip).To4()), binary.BigEndian, &id)
	return id
}

/*
输入本机IP地址，输出一个雪花算法节点

节点号取IP整数值的低10位，同一网段内不同机器生成的运行标识不会冲突
*/
func NewNode(ip string) (*snowflake.Node, error) {
	return snowflake.NewNode(int64(IDbyIP(ip) & 0x3ff))
}

var (
	runNode     *snowflake.Node
	runNodeErr  error
	runNodeOnce sync.Once
)

// 为一次爬取生成唯一的运行标识，节点在进程内只创建一次，首次调用的ip决定节点号
func NewRunID(ip string) (string, error) {
	runNodeOnce.Do(func() {
		runNode, runNodeErr = NewNode(ip)
	})
	if runNodeErr != nil {
		return "", runNodeErr
	}
	return runNode.Generate().String(), nil
}

// 获取第一个非回环的IPv4地址，找不到时返回127.0.0.1
func LocalIP() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "127.0.0.1"
	}
	for _, addr := range addrs {
		if ipnet, ok := addr.(*net.IPNet); ok && !ipnet.IP.IsLoopback() && ipnet.IP.To4() != nil {
			return ipnet.IP.String()
		}
	}
	return "127.0.0.1"
}
