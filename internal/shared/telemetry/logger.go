package telemetry

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	mu     sync.RWMutex
	logger = newLogger(os.Stdout)
)

func newLogger(out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(logrus.DebugLevel)
	l.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "ts",
		},
	})
	return l
}

// SetOutput redirects log lines, mainly for tests. A nil writer restores stdout.
func SetOutput(out io.Writer) {
	if out == nil {
		out = os.Stdout
	}
	mu.Lock()
	defer mu.Unlock()
	logger.SetOutput(out)
}

// SetLevel changes the minimum level; unknown names are ignored.
func SetLevel(level string) {
	parsed, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	logger.SetLevel(parsed)
}

// Debug writes a debug-level log line with the given fields.
func Debug(msg string, fields map[string]any) {
	write(logrus.DebugLevel, msg, fields)
}

// Info writes an info-level log line with the given fields.
func Info(msg string, fields map[string]any) {
	write(logrus.InfoLevel, msg, fields)
}

// Warn writes a warn-level log line with the given fields.
func Warn(msg string, fields map[string]any) {
	write(logrus.WarnLevel, msg, fields)
}

// Error writes an error-level log line with the given fields.
func Error(msg string, fields map[string]any) {
	write(logrus.ErrorLevel, msg, fields)
}

func write(level logrus.Level, msg string, fields map[string]any) {
	mu.RLock()
	defer mu.RUnlock()
	logger.WithFields(logrus.Fields(fields)).Log(level, msg)
}
