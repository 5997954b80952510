package logging

import (
	"encoding/json"
	"log"
	"os"
	"sort"
	"time"
)

// Fields carries structured context on a log line.
type Fields map[string]interface{}

// Level is the log severity.
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelError Level = "ERROR"
	LevelFatal Level = "FATAL"
)

// Logger writes line-oriented structured logs for one component.
type Logger struct {
	component string
	debug     bool
	out       *log.Logger
}

// NewLogger creates a logger for the named component. Debug lines are
// emitted only when LOG_DEBUG is set.
func NewLogger(component string) *Logger {
	return &Logger{
		component: component,
		debug:     os.Getenv("LOG_DEBUG") != "",
		out:       log.New(os.Stdout, "", 0),
	}
}

func (l *Logger) log(level Level, msg string, fields Fields) {
	entry := map[string]interface{}{
		"ts":        time.Now().UTC().Format(time.RFC3339Nano),
		"level":     string(level),
		"component": l.component,
		"msg":       msg,
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		entry[k] = fields[k]
	}

	data, err := json.Marshal(entry)
	if err != nil {
		l.out.Printf("%s [%s] %s (unmarshalable fields)", level, l.component, msg)
		return
	}
	l.out.Println(string(data))
}

// Debug logs at debug level when enabled.
func (l *Logger) Debug(msg string, fields ...Fields) {
	if !l.debug {
		return
	}
	l.log(LevelDebug, msg, merge(fields))
}

// Info logs at info level.
func (l *Logger) Info(msg string, fields ...Fields) {
	l.log(LevelInfo, msg, merge(fields))
}

// Error logs at error level.
func (l *Logger) Error(msg string, fields ...Fields) {
	l.log(LevelError, msg, merge(fields))
}

// Fatal logs at fatal level and exits.
func (l *Logger) Fatal(msg string, fields ...Fields) {
	l.log(LevelFatal, msg, merge(fields))
	os.Exit(1)
}

func merge(fields []Fields) Fields {
	if len(fields) == 0 {
		return nil
	}
	if len(fields) == 1 {
		return fields[0]
	}
	merged := Fields{}
	for _, f := range fields {
		for k, v := range f {
			merged[k] = v
		}
	}
	return merged
}
