package logger

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Rotation limits a file output. Zero values keep lumberjack's defaults
// (100 MB per file, no age limit, all backups kept).
type Rotation struct {
	MaxSizeMB  int
	MaxAgeDays int
	MaxBackups int
	Compress   bool
}

var (
	atomicLevel = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	current     atomic.Pointer[zap.SugaredLogger]

	// fileMu guards file, the rotating writer of the current logger if any
	fileMu sync.Mutex
	file   io.Closer
)

func init() {
	l, _, err := build("text", "stdout", Rotation{})
	if err != nil {
		l = zap.NewNop()
	}
	current.Store(l.Sugar())
}

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l Level) zapLevel() zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// ParseLevel maps a case-insensitive level name to a Level.
func ParseLevel(level string) (Level, error) {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return LevelDebug, nil
	case "INFO":
		return LevelInfo, nil
	case "WARN":
		return LevelWarn, nil
	case "ERROR":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", level)
}

// SetLevel changes the minimum level. Unknown names are ignored.
func SetLevel(level string) {
	l, err := ParseLevel(level)
	if err != nil {
		return
	}
	atomicLevel.SetLevel(l.zapLevel())
}

// GetLevel returns the current minimum level.
func GetLevel() Level {
	switch atomicLevel.Level() {
	case zapcore.DebugLevel:
		return LevelDebug
	case zapcore.WarnLevel:
		return LevelWarn
	case zapcore.ErrorLevel, zapcore.DPanicLevel, zapcore.PanicLevel, zapcore.FatalLevel:
		return LevelError
	default:
		return LevelInfo
	}
}

// Configure rebuilds the global logger.
//
// format is "text" (console encoder) or "json". output is "stdout", "stderr"
// or a file path.
func Configure(level, format, output string) error {
	return ConfigureWithRotation(level, format, output, Rotation{})
}

// ConfigureWithRotation is Configure with size and age limits for file
// outputs. rot is ignored for stdout and stderr.
func ConfigureWithRotation(level, format, output string, rot Rotation) error {
	l, err := ParseLevel(level)
	if err != nil {
		return err
	}

	z, closer, err := build(format, output, rot)
	if err != nil {
		return err
	}

	atomicLevel.SetLevel(l.zapLevel())
	if old := current.Swap(z.Sugar()); old != nil {
		_ = old.Sync()
	}

	fileMu.Lock()
	prev := file
	file = closer
	fileMu.Unlock()
	if prev != nil {
		_ = prev.Close()
	}
	return nil
}

// Sync flushes buffered entries.
func Sync() error {
	return current.Load().Sync()
}

// build returns the logger and, for file outputs, the rotating writer to
// close when the logger is replaced.
func build(format, output string, rot Rotation) (*zap.Logger, io.Closer, error) {
	encoding := "console"
	switch strings.ToLower(format) {
	case "", "text":
	case "json":
		encoding = "json"
	default:
		return nil, nil, fmt.Errorf("unknown log format %q", format)
	}

	switch output {
	case "", "stdout", "stderr":
		if output == "" {
			output = "stdout"
		}
		cfg := zap.Config{
			Level:             atomicLevel,
			Encoding:          encoding,
			EncoderConfig:     encoderConfig(encoding),
			OutputPaths:       []string{output},
			ErrorOutputPaths:  []string{"stderr"},
			DisableCaller:     true,
			DisableStacktrace: true,
		}
		z, err := cfg.Build()
		return z, nil, err
	}

	w := &lumberjack.Logger{
		Filename:   output,
		MaxSize:    rot.MaxSizeMB,
		MaxAge:     rot.MaxAgeDays,
		MaxBackups: rot.MaxBackups,
		Compress:   rot.Compress,
	}

	var enc zapcore.Encoder
	if encoding == "json" {
		enc = zapcore.NewJSONEncoder(encoderConfig(encoding))
	} else {
		enc = zapcore.NewConsoleEncoder(encoderConfig(encoding))
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(w), atomicLevel)
	return zap.New(core), w, nil
}

func encoderConfig(encoding string) zapcore.EncoderConfig {
	cfg := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		MessageKey:     "msg",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05"),
		EncodeDuration: zapcore.StringDurationEncoder,
	}
	if encoding == "json" {
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.EncodeDuration = zapcore.MillisDurationEncoder
	}
	return cfg
}

func Debug(format string, v ...any) {
	current.Load().Debugf(format, v...)
}

func Info(format string, v ...any) {
	current.Load().Infof(format, v...)
}

func Warn(format string, v ...any) {
	current.Load().Warnf(format, v...)
}

func Error(format string, v ...any) {
	current.Load().Errorf(format, v...)
}
