package log

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Plugin = zapcore.Core

// 用默认编码和默认选项创建日志实例，额外选项追加在默认选项之后
func NewLogger(plugin zapcore.Core, options ...zap.Option) *zap.Logger {
	return zap.New(plugin, append(DefaultOption(), options...)...)
}

func NewPlugin(writer zapcore.WriteSyncer, enabler zapcore.LevelEnabler) Plugin {
	return zapcore.NewCore(DefaultEncoder(), writer, enabler)
}

func NewStdoutPlugin(enabler zapcore.LevelEnabler) Plugin {
	return NewPlugin(zapcore.Lock(zapcore.AddSync(os.Stdout)), enabler)
}

func NewStderrPlugin(enabler zapcore.LevelEnabler) Plugin {
	return NewPlugin(zapcore.Lock(zapcore.AddSync(os.Stderr)), enabler)
}

// lumberjack没有暴露sync方法，返回的closer需要在进程退出前关闭，保证内容落盘
func NewFilePlugin(filePath string, enabler zapcore.LevelEnabler) (Plugin, io.Closer) {
	var writer = DefaultLumberjackLogger()
	writer.Filename = filePath
	return NewPlugin(zapcore.AddSync(writer), enabler), writer
}

/*
输入日志级别名称和日志文件路径，输出日志实例、需要在退出前关闭的closer以及错误

日志始终输出到标准输出，配置了文件路径时同时写入轮转文件，级别名称为空时使用info
*/
func Setup(level string, filePath string) (*zap.Logger, io.Closer, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, nil, err
	}

	plugins := []zapcore.Core{NewStdoutPlugin(lvl)}
	var closer io.Closer = nopCloser{}
	if filePath != "" {
		var plugin Plugin
		plugin, closer = NewFilePlugin(filePath, lvl)
		plugins = append(plugins, plugin)
	}

	return NewLogger(zapcore.NewTee(plugins...)), closer, nil
}

// 解析配置文件中的日志级别
func ParseLevel(level string) (zapcore.Level, error) {
	if level == "" {
		return zapcore.InfoLevel, nil
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return lvl, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return lvl, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
