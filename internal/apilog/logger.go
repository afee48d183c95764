// Package apilog records outbound LLM API calls to an append-only log
// file and the console. It is purely observational: a nil *Logger is
// valid and every method on it is a no-op, so logging can never affect
// the response returned to a caller.
package apilog

import (
	"fmt"
	"os"
	"sort"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const loggerName = "api.llm"

// previewLimit bounds how much of the last message is logged, to
// avoid writing full (potentially sensitive) payloads to disk.
const previewLimit = 100

// Call describes an outbound LLM request about to be made.
type Call struct {
	Model       string
	Temperature float32
	// Messages holds the message contents in send order; only the
	// count and a preview of the last entry are logged.
	Messages []string
	// Params are extra request parameters worth recording.
	Params map[string]string
}

// Logger writes fixed-format lines (timestamp, level, logger name,
// message) to both a log file and stderr.
type Logger struct {
	log  *zap.Logger
	file *os.File
}

// New opens (or creates) the append-only log file at path and returns
// a Logger teeing every line to the file and the console.
func New(path string) (*Logger, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file %q: %w", path, err)
	}

	encCfg := zapcore.EncoderConfig{
		TimeKey:          "ts",
		LevelKey:         "level",
		NameKey:          "logger",
		MessageKey:       "msg",
		StacktraceKey:    "stacktrace",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeTime:       zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05,000"),
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		EncodeName:       zapcore.FullNameEncoder,
		ConsoleSeparator: " - ",
	}
	enc := zapcore.NewConsoleEncoder(encCfg)

	core := zapcore.NewTee(
		zapcore.NewCore(enc, zapcore.AddSync(file), zapcore.InfoLevel),
		zapcore.NewCore(enc, zapcore.Lock(os.Stderr), zapcore.InfoLevel),
	)

	return &Logger{
		log:  zap.New(core).Named(loggerName),
		file: file,
	}, nil
}

// Request logs the details of an API request and returns the start
// timestamp for duration tracking.
func (l *Logger) Request(c Call) time.Time {
	start := time.Now()
	if l == nil {
		return start
	}

	l.log.Info("API REQUEST: " + c.Model)
	l.log.Info(fmt.Sprintf("Temperature: %.1f", c.Temperature))
	l.log.Info(fmt.Sprintf("Message count: %d", len(c.Messages)))
	if len(c.Messages) > 0 {
		l.log.Info("Last message preview: " + preview(c.Messages[len(c.Messages)-1]))
	}

	// Sorted for a stable line order.
	keys := make([]string, 0, len(c.Params))
	for k := range c.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		l.log.Info(fmt.Sprintf("Param %s: %s", k, c.Params[k]))
	}

	return start
}

// Response logs the outcome of an API call started at start.
// contentLength of zero is treated as unknown and omitted.
func (l *Logger) Response(start time.Time, status string, contentLength int, err error) {
	if l == nil {
		return
	}

	l.log.Info("API RESPONSE: " + status)
	l.log.Info(fmt.Sprintf("Duration: %.2fs", time.Since(start).Seconds()))
	if contentLength > 0 {
		l.log.Info(fmt.Sprintf("Content length: %d chars", contentLength))
	}
	if err != nil {
		l.log.Error("Error: " + err.Error())
	}
}

// ErrorWithStack records an error together with the current stack
// trace.
func (l *Logger) ErrorWithStack(msg string, err error) {
	if l == nil {
		return
	}
	l.log.Error(fmt.Sprintf("%s: %v", msg, err), zap.Stack("stacktrace"))
}

// Close flushes buffered entries and closes the log file.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	_ = l.log.Sync()
	return l.file.Close()
}

func preview(msg string) string {
	if len(msg) <= previewLimit {
		return msg
	}
	return msg[:previewLimit] + "..."
}
