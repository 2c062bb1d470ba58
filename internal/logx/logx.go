package logx

import (
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

const (
	levelDebug = iota
	levelInfo
	levelWarn
	levelError
)

var mu sync.Mutex

// leveledWriter drops lines whose bracketed level is below minLevel.
type leveledWriter struct {
	minLevel int
	target   io.Writer
}

func (w *leveledWriter) Write(p []byte) (int, error) {
	if levelFromMessage(string(p)) < w.minLevel {
		return len(p), nil
	}
	return w.target.Write(p)
}

// Setup routes the standard logger through a level filter writing to stderr.
func Setup(level string) {
	SetupWriter(level, os.Stderr)
}

// SetupWriter is Setup with an explicit destination.
func SetupWriter(level string, target io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	log.SetOutput(&leveledWriter{minLevel: parseLevel(level), target: target})
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}

func parseLevel(level string) int {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return levelDebug
	case "warn", "warning":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

// levelFromMessage reads the [LEVEL] tag; untagged lines count as info.
func levelFromMessage(msg string) int {
	switch {
	case strings.Contains(msg, "[DEBUG]"):
		return levelDebug
	case strings.Contains(msg, "[WARN]"):
		return levelWarn
	case strings.Contains(msg, "[ERROR]"), strings.Contains(msg, "[FATAL]"):
		return levelError
	default:
		return levelInfo
	}
}
