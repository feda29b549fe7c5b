package ui

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rivo/tview"
)

// LogLevel represents the severity of a log message
type LogLevel string

const (
	LogLevelInfo  LogLevel = "INFO"
	LogLevelWarn  LogLevel = "WARN"
	LogLevelError LogLevel = "ERROR"
)

// LogMessage represents a single log entry
type LogMessage struct {
	Time    time.Time
	Level   LogLevel
	Message string
}

// LogManager keeps recent log lines and shows them in a tview panel. It is an
// io.Writer so the standard logger can be teed into it.
type LogManager struct {
	textView *tview.TextView

	mu          sync.Mutex
	messages    []LogMessage
	maxMessages int
	now         func() time.Time
}

// NewLogManager creates a log panel holding at most maxMessages lines.
func NewLogManager(maxMessages int) *LogManager {
	textView := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetMaxLines(maxMessages)
	textView.SetBorder(true).SetTitle(" Logs ")

	// Follow new lines until the user scrolls up
	textView.ScrollToEnd()

	return &LogManager{
		textView:    textView,
		messages:    make([]LogMessage, 0, maxMessages),
		maxMessages: maxMessages,
		now:         time.Now,
	}
}

// View returns the tview component
func (lm *LogManager) View() tview.Primitive {
	return lm.textView
}

// AddLog adds a log message with the specified level
func (lm *LogManager) AddLog(level LogLevel, format string, args ...interface{}) {
	msg := LogMessage{
		Time:    lm.now(),
		Level:   level,
		Message: fmt.Sprintf(format, args...),
	}

	lm.mu.Lock()
	lm.messages = append(lm.messages, msg)
	if len(lm.messages) > lm.maxMessages {
		lm.messages = lm.messages[len(lm.messages)-lm.maxMessages:]
	}
	lm.mu.Unlock()

	// TextView serialises its own writes
	fmt.Fprintf(lm.textView, "[gray]%s[-] [%s]%-5s[-] %s\n",
		msg.Time.Format("15:04:05"), levelColor(msg.Level), msg.Level, tview.Escape(msg.Message))
}

// Write implements io.Writer for the standard logger. Each line becomes one
// message; the logger's own timestamp is dropped.
func (lm *LogManager) Write(p []byte) (int, error) {
	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		line = stripLogPrefix(line)
		if line == "" {
			continue
		}
		lm.AddLog(classify(line), "%s", line)
	}
	return len(p), nil
}

// Messages returns a copy of the retained messages.
func (lm *LogManager) Messages() []LogMessage {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	return append([]LogMessage(nil), lm.messages...)
}

// Clear removes all log messages
func (lm *LogManager) Clear() {
	lm.mu.Lock()
	lm.messages = lm.messages[:0]
	lm.mu.Unlock()

	lm.textView.Clear()
}

const logTimestamp = "2006/01/02 15:04:05.000000"

// stripLogPrefix removes the date and time the standard logger prepends.
func stripLogPrefix(line string) string {
	if len(line) > len(logTimestamp) {
		if _, err := time.Parse(logTimestamp, line[:len(logTimestamp)]); err == nil {
			return strings.TrimSpace(line[len(logTimestamp):])
		}
	}
	return strings.TrimSpace(line)
}

// classify guesses a level from the wording of a stdlib log line.
func classify(line string) LogLevel {
	lower := strings.ToLower(line)
	switch {
	case strings.Contains(lower, "error"), strings.Contains(lower, "fatal"):
		return LogLevelError
	case strings.Contains(lower, "failed"), strings.Contains(lower, "rate limit"):
		return LogLevelWarn
	default:
		return LogLevelInfo
	}
}

// levelColor returns the tview color tag for a log level
func levelColor(level LogLevel) string {
	switch level {
	case LogLevelWarn:
		return "yellow"
	case LogLevelError:
		return "red"
	default:
		return "white"
	}
}
