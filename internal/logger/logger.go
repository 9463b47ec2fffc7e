package logger

import (
	"context"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	// global is the shared logger instance used throughout the application.
	//nolint:gochecknoglobals // Logger is used all over the project, so it's okay.
	global *zap.SugaredLogger
	// defaultLevel is the minimum log level for messages to be processed.
	//nolint:gochecknoglobals // Shared by every logger built through New.
	defaultLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
)

func init() { //nolint:gochecknoinits // Without a logger the application has no output.
	SetLogger(New(defaultLevel, os.Stdout))
}

// FileOptions describes a rotating log file.
type FileOptions struct {
	// Path is the log file location. Empty means stdout.
	Path string
	// MaxSizeMB is the size at which the file is rotated.
	MaxSizeMB int
	// MaxBackups is the number of rotated files kept.
	MaxBackups int
	// MaxAgeDays is the number of days rotated files are kept.
	MaxAgeDays int
}

// New creates a *zap.SugaredLogger writing console-formatted entries to w.
// A nil level falls back to the shared atomic level, a nil writer to stdout.
func New(level zapcore.LevelEnabler, w io.Writer, options ...zap.Option) *zap.SugaredLogger {
	if level == nil {
		level = defaultLevel
	}

	if w == nil {
		w = os.Stdout
	}

	//nolint:exhaustruct // Default encoder values are fine.
	encoder := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		TimeKey:          "time",
		MessageKey:       "message",
		LevelKey:         "level",
		NameKey:          "logger",
		CallerKey:        "caller",
		StacktraceKey:    "stacktrace",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		EncodeTime:       zapcore.ISO8601TimeEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		EncodeCaller:     zapcore.ShortCallerEncoder,
		EncodeName:       zapcore.FullNameEncoder,
		ConsoleSeparator: ", ",
	})

	core := zapcore.NewCore(encoder, zapcore.AddSync(w), level)

	return zap.New(core, options...).Sugar()
}

// NewFileWriter returns a rotating writer for the given options.
func NewFileWriter(opts FileOptions) io.WriteCloser {
	maxSize := opts.MaxSizeMB
	if maxSize <= 0 {
		maxSize = 10
	}

	maxBackups := opts.MaxBackups
	if maxBackups <= 0 {
		maxBackups = 3
	}

	return &lumberjack.Logger{
		Filename:   opts.Path,
		MaxSize:    maxSize,
		MaxBackups: maxBackups,
		MaxAge:     opts.MaxAgeDays,
	}
}

// Setup replaces the global logger with one writing at the given level to
// either stdout or a rotating file. The returned func flushes and closes the
// output and must be called before the process exits.
func Setup(level zapcore.Level, file FileOptions) func() {
	defaultLevel.SetLevel(level)

	if file.Path == "" {
		l := New(defaultLevel, os.Stdout)
		SetLogger(l)

		return func() {
			_ = l.Sync()
		}
	}

	w := NewFileWriter(file)
	l := New(defaultLevel, w)
	SetLogger(l)

	return func() {
		_ = l.Sync()
		_ = w.Close()
	}
}

// ParseLogLevel converts string input to zap log level.
func ParseLogLevel(s string) (zapcore.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel, true
	case "info", "":
		return zapcore.InfoLevel, true
	case "warn", "warning":
		return zapcore.WarnLevel, true
	case "error":
		return zapcore.ErrorLevel, true
	case "fatal":
		return zapcore.FatalLevel, true
	default:
		return zapcore.InfoLevel, false
	}
}

// Logger returns the global logger.
func Logger() *zap.SugaredLogger {
	return global
}

// SetLogger sets the global logger.
// This function is not thread-safe.
func SetLogger(l *zap.SugaredLogger) {
	global = l
}

// DebugKV writes a message and key-value pairs at the debug level.
func DebugKV(ctx context.Context, message string, kvs ...any) {
	FromContext(ctx).Debugw(message, kvs...)
}

// Info writes an information level message using the logger from the context.
func Info(ctx context.Context, args ...any) {
	FromContext(ctx).Info(args...)
}

// InfoKV writes a message and key-value pairs at the information level.
func InfoKV(ctx context.Context, message string, kvs ...any) {
	FromContext(ctx).Infow(message, kvs...)
}

// WarnKV writes a message and key-value pairs at the warning level.
func WarnKV(ctx context.Context, message string, kvs ...any) {
	FromContext(ctx).Warnw(message, kvs...)
}

// ErrorKV writes a message and key-value pairs at the error level.
func ErrorKV(ctx context.Context, message string, kvs ...any) {
	FromContext(ctx).Errorw(message, kvs...)
}
