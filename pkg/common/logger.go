package common

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LoggerOpts controls where the process logger writes. It only has an effect
// when passed to ConfigureLogger before the first GetLogger call.
type LoggerOpts struct {
	// Dir holds app.log, relative to the working directory when not absolute.
	Dir string
	// Console tees output to stdout outside production.
	Console      bool
	ConsoleLevel zapcore.Level
}

var (
	logger *zap.Logger
	once   sync.Once

	loggerOpts = LoggerOpts{
		Dir:          "logs",
		Console:      true,
		ConsoleLevel: zap.DebugLevel,
	}
)

// ConfigureLogger overrides the defaults used by the lazily built logger.
func ConfigureLogger(opts LoggerOpts) {
	if opts.Dir == "" {
		opts.Dir = loggerOpts.Dir
	}
	loggerOpts = opts
}

func getLogger() *zap.Logger {
	if logger == nil {
		initLogger()
	}
	return logger
}

func GetLogger() *zap.Logger {
	logger = getLogger()
	return logger.Named("default")
}

func GetLoggerWith(name string, fields ...zap.Field) *zap.Logger {
	logger = getLogger()
	return logger.Named(name).With(fields...)
}

// GetCategoryLogger is GetLoggerWith plus the category field every package
// tags its lines with.
func GetCategoryLogger(name string, category string, fields ...zap.Field) *zap.Logger {
	return GetLoggerWith(name, append([]zap.Field{zap.String(LoggerFieldCategory, category)}, fields...)...)
}

func initLogger() {
	once.Do(func() {
		logsDir := loggerOpts.Dir
		if !filepath.IsAbs(logsDir) {
			dir, err := os.Getwd()
			if err != nil {
				log.Fatalf("Error getting current directory: %v", err)
			}
			logsDir = filepath.Join(dir, logsDir)
		}

		if err := os.MkdirAll(logsDir, os.ModePerm); err != nil {
			log.Fatalf("Error find/create logs directory: %v", err)
		}

		logFile := &lumberjack.Logger{
			Filename:   filepath.Join(logsDir, "app.log"),
			MaxSize:    10, // megabytes
			MaxBackups: 5,
			MaxAge:     28,   // days
			Compress:   true, // gzip
		}

		encoderCfg := zap.NewProductionEncoderConfig()
		encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

		fileCore := zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderCfg),
			zapcore.AddSync(logFile),
			zap.InfoLevel,
		)

		if IsProduction() || !loggerOpts.Console {
			logger = zap.New(fileCore, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
		} else {
			consoleEncoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
			consoleCore := zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stdout), loggerOpts.ConsoleLevel)

			combinedCore := zapcore.NewTee(fileCore, consoleCore)
			logger = zap.New(combinedCore, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
		}
	})
}

func SetTestCaptureLogger(buf *bytes.Buffer, level zapcore.Level) {
	_ = GetLogger()

	writer := zapcore.Lock(zapcore.AddSync(buf))
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encoderCfg)

	core := zapcore.NewCore(encoder, writer, level)
	logger = zap.New(core)
}

func SetTestLoggerNop() {
	_ = GetLogger()

	logger = zap.NewNop()
}

// ParseLogs decodes the JSON lines captured by SetTestCaptureLogger. Lines
// that are not JSON objects are ignored.
func ParseLogs(r io.Reader) []map[string]any {
	scanner := bufio.NewScanner(r)
	var logs []map[string]any

	for scanner.Scan() {
		var j map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &j); err == nil {
			logs = append(logs, j)
		}
	}
	return logs
}

// FindLogs returns the captured entries whose msg equals msg.
func FindLogs(logs []map[string]any, msg string) []map[string]any {
	return Filter(logs, func(l map[string]any) bool { return l["msg"] == msg })
}
