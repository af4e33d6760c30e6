package utils

import (
	"fmt"
	"io"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// level 控制日志级别，调试关闭时只输出 Warn 及以上
	level = zap.NewAtomicLevelAt(zapcore.WarnLevel)

	// logMu 保护 logger 的替换
	logMu  sync.RWMutex
	logger = newLogger(os.Stdout)
)

func newLogger(output io.Writer) *zap.Logger {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = ""
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.AddSync(output),
		level,
	)
	return zap.New(core).Named("ipdb")
}

// Logger 返回当前使用的 zap logger
func Logger() *zap.Logger {
	logMu.RLock()
	defer logMu.RUnlock()
	return logger
}

func sugar() *zap.SugaredLogger {
	return Logger().Sugar()
}

// SetDebugEnabled 设置是否启用调试输出
func SetDebugEnabled(enabled bool) {
	if enabled {
		level.SetLevel(zapcore.DebugLevel)
		return
	}
	level.SetLevel(zapcore.WarnLevel)
}

// DebugEnabled reports whether debug output is currently on.
func DebugEnabled() bool {
	return level.Enabled(zapcore.DebugLevel)
}

// SetDebugOutput 设置日志输出的目标
func SetDebugOutput(output io.Writer) {
	logMu.Lock()
	defer logMu.Unlock()
	_ = logger.Sync()
	logger = newLogger(output)
}

// Debug 输出调试信息，仅当调试开启时输出
func Debug(format string, args ...interface{}) {
	sugar().Debugf(format, args...)
}

// Debugln 输出调试信息，仅当调试开启时输出
func Debugln(args ...interface{}) {
	if !DebugEnabled() {
		return
	}
	msg := fmt.Sprintln(args...)
	sugar().Debug(msg[:len(msg)-1])
}

// Warning 输出警告信息，无论调试是否开启都会输出
func Warning(format string, args ...interface{}) {
	sugar().Warnf(format, args...)
}
