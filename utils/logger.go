package utils

import (
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log глобальный логгер; до InitLogger ничего не пишет
var Log = zap.NewNop()

// LoggerConfig параметры логирования
type LoggerConfig struct {
	Level      string
	Filename   string
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Compress   bool
}

// InitLogger инициализирует глобальный логгер: JSON в stdout и в файл с ротацией
func InitLogger(cfg LoggerConfig) error {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return err
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	encoder := zapcore.NewJSONEncoder(encoderConfig)

	syncers := []zapcore.WriteSyncer{zapcore.AddSync(os.Stdout)}
	if cfg.Filename != "" {
		fileWriter := &lumberjack.Logger{
			Filename:   cfg.Filename,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		}
		syncers = append(syncers, &zapcore.BufferedWriteSyncer{
			WS:            zapcore.AddSync(fileWriter),
			Size:          256 * 1024,
			FlushInterval: 5 * time.Second,
		})
	}

	core := zapcore.NewCore(encoder, zapcore.NewMultiWriteSyncer(syncers...), level)
	Log = zap.New(core, zap.AddCaller())
	zap.ReplaceGlobals(Log)

	return nil
}

// SyncLogger сбрасывает буферизованные записи
func SyncLogger() {
	_ = Log.Sync()
}

// LogOperation логирует операцию с длительностью и результатом
func LogOperation(operation string, startTime time.Time, err error, fields ...zap.Field) {
	fields = append(fields,
		zap.String("operation", operation),
		zap.Duration("duration", time.Since(startTime)),
	)
	if err != nil {
		Log.Error("operation failed", append(fields, zap.Error(err))...)
		return
	}
	Log.Info("operation completed", fields...)
}
