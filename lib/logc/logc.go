package logc

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var base *zap.Logger

// log file with rotation, console for info and above
func init() {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	rotate := &lumberjack.Logger{
		Filename:   "logs/publisher.log",
		MaxSize:    50, // MB
		MaxBackups: 3,
		MaxAge:     28, // days
	}

	fileCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(encCfg),
		zapcore.AddSync(rotate),
		zap.DebugLevel,
	)
	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(os.Stderr),
		zap.InfoLevel,
	)

	base = zap.New(zapcore.NewTee(fileCore, consoleCore))
}

// Logger returns a named logger for a module
func Logger(module string) *zap.SugaredLogger {
	return base.Sugar().Named(module)
}

// flush buffered entries, call before exit
func Sync() {
	_ = base.Sync()
}
