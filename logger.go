package ctxmenu

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// LogRecord is the structured shape handed to the pluggable logger.
type LogRecord struct {
	Event     string         `json:"event"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	IsError   bool           `json:"isError,omitempty"`
}

// LoggerFunc receives log records when logging is enabled. Loggers must not
// call back into the manager.
type LoggerFunc func(LogRecord)

// consoleSink is the default logger: JSON lines on stderr.
func consoleSink(rec LogRecord) {
	enc := json.NewEncoder(os.Stderr)
	if err := enc.Encode(rec); err != nil {
		fmt.Fprintf(os.Stderr, "ctxmenu: log encoding failed: %v\n", err)
	}
}

type logState struct {
	mu      sync.Mutex
	fn      LoggerFunc
	enabled bool
}

func newLogState() *logState {
	return &logState{fn: consoleSink}
}

func (l *logState) set(fn LoggerFunc) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if fn == nil {
		fn = consoleSink
	}
	l.fn = fn
}

func (l *logState) enable(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.enabled = enabled
}

func (l *logState) emit(event, message string, data map[string]any, isError bool) {
	l.mu.Lock()
	fn := l.fn
	enabled := l.enabled
	l.mu.Unlock()
	if !enabled || fn == nil {
		return
	}
	fn(LogRecord{
		Event:     event,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UTC(),
		IsError:   isError,
	})
}
