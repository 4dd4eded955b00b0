package logger

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"streamforge/pkg/config"
)

// Logger 日志服务，封装logrus
type Logger struct {
	entry  *logrus.Logger
	closer io.Closer
}

var (
	globalMu     sync.RWMutex
	globalLogger *Logger
)

// NewLogger 根据配置创建日志服务
func NewLogger(cfg *config.Config) *Logger {
	l := logrus.New()

	level, err := logrus.ParseLevel(strings.ToLower(cfg.Log.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	if strings.EqualFold(cfg.Log.Format, "json") {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	logger := &Logger{entry: l}

	if strings.EqualFold(cfg.Log.Output, "file") && cfg.Log.Filename != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.Log.Filename,
			MaxSize:    cfg.Log.MaxSize,
			MaxAge:     cfg.Log.MaxAge,
			MaxBackups: cfg.Log.MaxBackups,
			Compress:   cfg.Log.Compress,
		}
		l.SetOutput(io.MultiWriter(os.Stdout, rotator))
		logger.closer = rotator
	} else {
		l.SetOutput(os.Stdout)
	}

	return logger
}

// SetGlobalLogger 设置全局日志器
func SetGlobalLogger(l *Logger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger = l
}

func global() *logrus.Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	if globalLogger != nil {
		return globalLogger.entry
	}
	return logrus.StandardLogger()
}

// Close 关闭日志输出（文件轮转器）
func (l *Logger) Close() {
	if l.closer != nil {
		_ = l.closer.Close()
	}
}

// Infof 格式化信息日志
func (l *Logger) Infof(format string, args ...interface{}) {
	l.entry.Infof(format, args...)
}

// Warnf 格式化警告日志
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.entry.Warnf(format, args...)
}

// Errorf 格式化错误日志
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.entry.Errorf(format, args...)
}

// Debugf 格式化调试日志
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.entry.Debugf(format, args...)
}

// 包级便捷函数，使用全局日志器。

func Infof(format string, args ...interface{}) {
	global().Infof(format, args...)
}

func Warnf(format string, args ...interface{}) {
	global().Warnf(format, args...)
}

func Errorf(format string, args ...interface{}) {
	global().Errorf(format, args...)
}

func Debugf(format string, args ...interface{}) {
	global().Debugf(format, args...)
}

// Info 携带结构化字段的信息日志
func Info(msg string, fields map[string]interface{}) {
	global().WithFields(logrus.Fields(fields)).Info(msg)
}

// Warn 携带结构化字段的警告日志
func Warn(msg string, fields map[string]interface{}) {
	global().WithFields(logrus.Fields(fields)).Warn(msg)
}

// Error 携带结构化字段的错误日志
func Error(msg string, fields map[string]interface{}) {
	global().WithFields(logrus.Fields(fields)).Error(msg)
}

// Debug 携带结构化字段的调试日志
func Debug(msg string, fields map[string]interface{}) {
	global().WithFields(logrus.Fields(fields)).Debug(msg)
}

// Fatal 致命错误，打印后退出
func Fatal(msg string) {
	global().Fatal(msg)
}
