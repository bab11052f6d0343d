package framework

import (
	"fmt"
	"io"
	"sync"
	"time"
)

const timestampFormat = "2006-01-02 15:04:05.000"

// Logger is the minimal logging interface used throughout the test run. *log.Logger satisfies
// it, as do the per-test loggers that Context provides, so the webdriver client can write into
// whichever test is currently running.
type Logger interface {
	Printf(message string, args ...interface{})
}

type nullLogger struct{}

func (nullLogger) Printf(string, ...interface{}) {}

// NullLogger returns a Logger that discards everything.
func NullLogger() Logger { return nullLogger{} }

// OrNullLogger returns logger, or NullLogger if logger is nil.
func OrNullLogger(logger Logger) Logger {
	if logger == nil {
		return nullLogger{}
	}
	return logger
}

type prefixedLogger struct {
	target Logger
	prefix string
}

func (p prefixedLogger) Printf(message string, args ...interface{}) {
	p.target.Printf("%s%s", p.prefix, fmt.Sprintf(message, args...))
}

// PrefixedLogger returns a Logger that puts prefix in front of each message before passing it
// on to target. A nil target discards the output.
func PrefixedLogger(target Logger, prefix string) Logger {
	if target == nil {
		return nullLogger{}
	}
	return prefixedLogger{target: target, prefix: prefix}
}

// CapturedMessage is one line of a test's debug output.
type CapturedMessage struct {
	Time    time.Time
	Message string
}

// CapturedOutput is the debug output of a single test, in the order it was written.
type CapturedOutput []CapturedMessage

// CapturingLogger accumulates messages so they can be shown only if the test fails, or if the
// user asked for all debug output. It is safe for concurrent use.
type CapturingLogger struct {
	output []CapturedMessage
	lock   sync.Mutex
}

func (l *CapturingLogger) Printf(message string, args ...interface{}) {
	m := CapturedMessage{Time: time.Now(), Message: fmt.Sprintf(message, args...)}
	l.lock.Lock()
	l.output = append(l.output, m)
	l.lock.Unlock()
}

// Output returns a copy of everything logged so far.
func (l *CapturingLogger) Output() CapturedOutput {
	l.lock.Lock()
	defer l.lock.Unlock()
	return append(CapturedOutput(nil), l.output...)
}

// Messages returns just the message text, without timestamps.
func (output CapturedOutput) Messages() []string {
	ret := make([]string, 0, len(output))
	for _, m := range output {
		ret = append(ret, m.Message)
	}
	return ret
}

// Dump writes each message on its own line, after prefix and a timestamp.
func (output CapturedOutput) Dump(dest io.Writer, prefix string) {
	for _, m := range output {
		fmt.Fprintf(dest, "%s[%s] %s\n", prefix, m.Time.Format(timestampFormat), m.Message)
	}
}
