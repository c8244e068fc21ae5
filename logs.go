package cronjob

import (
	"time"

	"go.uber.org/zap"
)

type Logger interface {
	Debug(msg string, args ...Field)
	Info(msg string, args ...Field)
	Warn(msg string, args ...Field)
	Error(msg string, args ...Field)
	// With 返回携带固定字段的子日志
	With(args ...Field) Logger
}

type Field struct {
	Key string
	Val any
}

func JobField(name string) Field {
	return Field{Key: "job", Val: name}
}

func TimeField(key string, t time.Time) Field {
	return Field{Key: key, Val: t.Format(time.RFC3339)}
}

func ErrField(err error) Field {
	if err == nil {
		return Field{Key: "err", Val: nil}
	}
	return Field{Key: "err", Val: err.Error()}
}

type ZapLogger struct {
	zap *zap.Logger
}

func NewZapLogger(l *zap.Logger) Logger {
	return &ZapLogger{zap: l}
}

// NopLogger 丢弃所有日志，未设置日志时的默认值
func NopLogger() Logger {
	return &ZapLogger{zap: zap.NewNop()}
}

func (z *ZapLogger) Debug(msg string, args ...Field) {
	z.zap.Debug(msg, toZapFields(args)...)
}

func (z *ZapLogger) Info(msg string, args ...Field) {
	z.zap.Info(msg, toZapFields(args)...)
}

func (z *ZapLogger) Warn(msg string, args ...Field) {
	z.zap.Warn(msg, toZapFields(args)...)
}

func (z *ZapLogger) Error(msg string, args ...Field) {
	z.zap.Error(msg, toZapFields(args)...)
}

func (z *ZapLogger) With(args ...Field) Logger {
	return &ZapLogger{zap: z.zap.With(toZapFields(args)...)}
}

func toZapFields(args []Field) []zap.Field {
	res := make([]zap.Field, 0, len(args))
	for _, arg := range args {
		res = append(res, zap.Any(arg.Key, arg.Val))
	}

	return res
}
