/*
Package logger 提供项目统一日志能力。

API 进程和 outbox worker 共用一个全局 zap logger；组件通过 Named 区分，
请求链路通过 Ctx 带上 request_id。
*/
package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"storefront/config"
	"storefront/infrastructure/persistence"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	log       = zap.NewNop()
	atomLevel = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

// Init 按配置构建全局 logger
func Init(cfg *config.LogConfig, env string) error {
	sink, err := openSink(cfg)
	if err != nil {
		return err
	}
	level := zap.NewAtomicLevelAt(parseLevel(cfg.Level))
	atomLevel = level
	log = New(cfg, env, sink, level)
	return nil
}

// New 构建一个写入 sink 的 logger，不修改全局状态
func New(cfg *config.LogConfig, env string, sink io.Writer, level zap.AtomicLevel) *zap.Logger {
	core := zapcore.NewCore(newEncoder(cfg.Format, env), zapcore.AddSync(sink), level)
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
}

func newEncoder(format, env string) zapcore.Encoder {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "component",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     utcTimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	switch format {
	case "json":
		return zapcore.NewJSONEncoder(encoderConfig)
	case "console":
		return zapcore.NewConsoleEncoder(encoderConfig)
	}
	if env == "development" || env == "test" {
		return zapcore.NewConsoleEncoder(encoderConfig)
	}
	return zapcore.NewJSONEncoder(encoderConfig)
}

// outbox 时间戳都是 UTC，日志保持一致方便对照
func utcTimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.UTC().Format("2006-01-02T15:04:05.000Z"))
}

func openSink(cfg *config.LogConfig) (io.Writer, error) {
	if cfg.Output != "file" {
		return os.Stdout, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	return &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    orDefault(cfg.MaxSizeMB, 10),
		MaxBackups: orDefault(cfg.MaxBackups, 5),
		MaxAge:     orDefault(cfg.MaxAgeDays, 7),
		Compress:   cfg.Compress,
	}, nil
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func Get() *zap.Logger { return log }

// Set 替换全局 logger（测试用）
func Set(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	log = l
}

func UpdateLevel(level string) {
	atomLevel.SetLevel(parseLevel(level))
}

// Sync 刷新缓冲；stdout 为终端或管道时的 sync 错误忽略
func Sync() error {
	err := log.Sync()
	if err == nil ||
		errors.Is(err, syscall.ENOTTY) ||
		errors.Is(err, syscall.EINVAL) ||
		errors.Is(err, syscall.EBADF) {
		return nil
	}
	return err
}

func With(fields ...zap.Field) *zap.Logger {
	return log.With(fields...)
}

// Named 组件 logger，例如 "outbox.dispatcher"
func Named(component string) *zap.Logger {
	return log.Named(component)
}

// Ctx 返回带 request_id 的 logger（如果 ctx 中存在）
func Ctx(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return log
	}
	if requestID := persistence.RequestIDFromContext(ctx); requestID != "" {
		return log.With(zap.String("request_id", requestID))
	}
	return log
}

func Debug(msg string, fields ...zap.Field) { log.Debug(msg, fields...) }

func Info(msg string, fields ...zap.Field) { log.Info(msg, fields...) }

func Warn(msg string, fields ...zap.Field) { log.Warn(msg, fields...) }

func Error(msg string, fields ...zap.Field) { log.Error(msg, fields...) }
