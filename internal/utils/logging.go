// Copyright (c) 2025 @AmarnathCJD

package utils

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"
)

type LogLevel int

const (
	TraceLevel LogLevel = iota + 1
	DebugLevel
	InfoLevel
	WarnLevel
	ErrorLevel
	NoLevel
)

func (l LogLevel) String() string {
	switch l {
	case TraceLevel:
		return "TRACE"
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	case NoLevel:
		return "NONE"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a level name from configuration onto a LogLevel. Unknown
// names fall back to InfoLevel.
func ParseLevel(name string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "trace":
		return TraceLevel
	case "debug":
		return DebugLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	case "none", "off", "disabled":
		return NoLevel
	default:
		return InfoLevel
	}
}

var (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorPurple = "\033[35m"
	colorCyan   = "\033[36m"
)

type LogFormatter interface {
	Format(entry *LogEntry) string
}

type LogEntry struct {
	Time    time.Time      `json:"time"`
	Level   LogLevel       `json:"level"`
	Message string         `json:"message"`
	Prefix  string         `json:"prefix,omitempty"`
	File    string         `json:"file,omitempty"`
	Line    int            `json:"line,omitempty"`
	Fields  map[string]any `json:"fields,omitempty"`
	Error   error          `json:"error,omitempty"`
}

// Logger is a small levelled logger. Derived loggers (WithField, WithPrefix)
// share the output and its lock.
type Logger struct {
	mu         *sync.Mutex
	level      LogLevel
	prefix     string
	output     io.Writer
	formatter  LogFormatter
	fields     map[string]any
	showCaller bool
}

type LoggerConfig struct {
	Level      LogLevel
	Prefix     string
	Output     io.Writer
	Formatter  LogFormatter
	Color      bool
	ShowCaller bool
}

func DefaultLoggerConfig() *LoggerConfig {
	return &LoggerConfig{
		Level:  InfoLevel,
		Output: os.Stderr,
		Color:  true,
	}
}

func NewLogger(prefix string) *Logger {
	config := DefaultLoggerConfig()
	config.Prefix = prefix
	return NewLoggerWithConfig(config)
}

func NewLoggerWithConfig(config *LoggerConfig) *Logger {
	if config == nil {
		config = DefaultLoggerConfig()
	}
	if config.Level == 0 {
		config.Level = InfoLevel
	}
	if config.Output == nil {
		config.Output = os.Stderr
	}
	if config.Formatter == nil {
		config.Formatter = &TextFormatter{NoColor: !config.Color || !isTerminal(config.Output)}
	}

	return &Logger{
		mu:         new(sync.Mutex),
		level:      config.Level,
		prefix:     config.Prefix,
		output:     config.Output,
		formatter:  config.Formatter,
		fields:     make(map[string]any),
		showCaller: config.ShowCaller,
	}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return NewLoggerWithConfig(&LoggerConfig{Level: NoLevel, Output: io.Discard})
}

func (l *Logger) clone() *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	c := *l
	c.fields = make(map[string]any, len(l.fields))
	for k, v := range l.fields {
		c.fields[k] = v
	}
	return &c
}

func (l *Logger) WithPrefix(prefix string) *Logger {
	c := l.clone()
	c.prefix = prefix
	return c
}

func (l *Logger) WithField(key string, value any) *Logger {
	c := l.clone()
	c.fields[key] = value
	return c
}

func (l *Logger) WithFields(fields map[string]any) *Logger {
	c := l.clone()
	for k, v := range fields {
		c.fields[k] = v
	}
	return c
}

func (l *Logger) WithError(err error) *Logger {
	return l.WithField("error", err)
}

func (l *Logger) SetLevel(level LogLevel) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	if level == 0 {
		level = InfoLevel
	}
	l.level = level
	return l
}

func (l *Logger) Level() LogLevel {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

func (l *Logger) SetOutput(w io.Writer) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.output = w
	if tf, ok := l.formatter.(*TextFormatter); ok && !isTerminal(w) {
		tf.NoColor = true
	}
	return l
}

func (l *Logger) SetFormatter(formatter LogFormatter) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.formatter = formatter
	return l
}

// Enabled reports whether messages at level would be written.
func (l *Logger) Enabled(level LogLevel) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return level >= l.level && l.level != NoLevel
}

// core fn to log messages
func (l *Logger) log(level LogLevel, msg string, args ...any) {
	if !l.Enabled(level) {
		return
	}
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}

	entry := &LogEntry{
		Time:    time.Now(),
		Level:   level,
		Message: msg,
		Prefix:  l.prefix,
		Fields:  make(map[string]any, len(l.fields)),
	}
	for k, v := range l.fields {
		entry.Fields[k] = v
	}
	if err, ok := entry.Fields["error"].(error); ok {
		entry.Error = err
		delete(entry.Fields, "error")
	}

	if l.showCaller {
		// skip log and the exported level method
		if _, file, line, ok := runtime.Caller(2); ok {
			entry.File = filepath.Base(file)
			entry.Line = line
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = io.WriteString(l.output, l.formatter.Format(entry))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return f == os.Stdout || f == os.Stderr
}

func (l *Logger) Trace(msg string, args ...any) { l.log(TraceLevel, msg, args...) }
func (l *Logger) Debug(msg string, args ...any) { l.log(DebugLevel, msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.log(InfoLevel, msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.log(WarnLevel, msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.log(ErrorLevel, msg, args...) }

func (l *Logger) Tracef(format string, args ...any) { l.log(TraceLevel, format, args...) }
func (l *Logger) Debugf(format string, args ...any) { l.log(DebugLevel, format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.log(InfoLevel, format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.log(WarnLevel, format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.log(ErrorLevel, format, args...) }

// TextFormatter formats logs as human-readable text
type TextFormatter struct {
	NoColor         bool
	TimestampFormat string
}

func (f *TextFormatter) Format(entry *LogEntry) string {
	var b strings.Builder

	format := f.TimestampFormat
	if format == "" {
		format = "15:04:05.000"
	}
	f.paint(&b, colorDim, entry.Time.Format(format))
	b.WriteByte(' ')

	level := entry.Level.String()
	if len(level) < 5 {
		level += strings.Repeat(" ", 5-len(level))
	}
	f.paint(&b, levelColor(entry.Level)+colorBold, level)
	b.WriteByte(' ')

	if entry.Prefix != "" {
		f.paint(&b, colorBlue, entry.Prefix)
		b.WriteByte(' ')
	}
	if entry.File != "" {
		f.paint(&b, colorDim, fmt.Sprintf("%s:%d", entry.File, entry.Line))
		b.WriteByte(' ')
	}
	b.WriteString(entry.Message)

	if len(entry.Fields) > 0 {
		keys := make([]string, 0, len(entry.Fields))
		for k := range entry.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		b.WriteString(" [")
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(k)
			b.WriteByte('=')
			f.paint(&b, colorCyan, fmt.Sprintf("%v", entry.Fields[k]))
		}
		b.WriteByte(']')
	}

	if entry.Error != nil {
		b.WriteByte(' ')
		f.paint(&b, colorRed, "error="+entry.Error.Error())
	}

	b.WriteByte('\n')
	return b.String()
}

func (f *TextFormatter) paint(b *strings.Builder, color, s string) {
	if f.NoColor || color == "" {
		b.WriteString(s)
		return
	}
	b.WriteString(color)
	b.WriteString(s)
	b.WriteString(colorReset)
}

func levelColor(level LogLevel) string {
	switch level {
	case TraceLevel:
		return colorPurple
	case DebugLevel:
		return colorBlue
	case InfoLevel:
		return colorGreen
	case WarnLevel:
		return colorYellow
	case ErrorLevel:
		return colorRed
	default:
		return ""
	}
}

// JSONFormatter formats logs as JSON
type JSONFormatter struct {
	TimestampFormat string
}

func (f *JSONFormatter) Format(entry *LogEntry) string {
	format := f.TimestampFormat
	if format == "" {
		format = time.RFC3339Nano
	}

	data := make(map[string]any, len(entry.Fields)+5)
	for k, v := range entry.Fields {
		data[k] = v
	}
	data["timestamp"] = entry.Time.Format(format)
	data["level"] = entry.Level.String()
	data["message"] = entry.Message
	if entry.Prefix != "" {
		data["prefix"] = entry.Prefix
	}
	if entry.File != "" {
		data["caller"] = fmt.Sprintf("%s:%d", entry.File, entry.Line)
	}
	if entry.Error != nil {
		data["error"] = entry.Error.Error()
	}

	output, err := json.Marshal(data)
	if err != nil {
		return fmt.Sprintf(`{"error":"failed to marshal log entry: %v"}`+"\n", err)
	}
	return string(output) + "\n"
}
