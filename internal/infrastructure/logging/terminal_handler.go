package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

const (
	ansiReset  = "\033[0m"
	ansiRed    = "\033[31m"
	ansiYellow = "\033[33m"
	ansiCyan   = "\033[36m"
	ansiGray   = "\033[90m"
)

// TerminalHandler is a slog.Handler that renders records Maven-style:
// [LEVEL] [SYSTEM] [HH:MM:SS] message key=value key=value
//
// The "system" attribute is hoisted into its own bracket instead of
// being printed as a key=value pair.
type TerminalHandler struct {
	w      io.Writer
	mu     *sync.Mutex
	level  slog.Level
	system string
	colors bool
	attrs  []slog.Attr
}

// NewTerminalHandler creates a handler writing to w at the given level.
// Colors are enabled only when w is a terminal.
func NewTerminalHandler(w io.Writer, level slog.Level) *TerminalHandler {
	colors := false
	if f, ok := w.(*os.File); ok {
		colors = term.IsTerminal(int(f.Fd()))
	}
	return &TerminalHandler{
		w:      w,
		mu:     &sync.Mutex{},
		level:  level,
		colors: colors,
	}
}

// Enabled reports whether the handler handles records at the given level.
func (h *TerminalHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

// Handle formats and writes a log record.
func (h *TerminalHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder

	h.paint(&b, h.levelColor(r.Level), "["+levelLabel(r.Level)+"]")
	if h.system != "" {
		b.WriteString(" [" + h.system + "]")
	}
	h.paint(&b, ansiGray, " ["+r.Time.Format("15:04:05")+"]")
	b.WriteString(" ")
	b.WriteString(r.Message)

	for _, attr := range h.attrs {
		writeAttr(&b, attr)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&b, a)
		return true
	})
	b.WriteString("\n")

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

// WithAttrs returns a handler with the attributes pre-bound. A "system"
// attribute moves into the bracket prefix.
func (h *TerminalHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append([]slog.Attr{}, h.attrs...)

	for _, attr := range attrs {
		if attr.Key == "system" {
			clone.system = attr.Value.String()
			continue
		}
		clone.attrs = append(clone.attrs, attr)
	}
	return &clone
}

// WithGroup is accepted but not rendered as nesting; the flat key=value
// form stays readable for the worker's output.
func (h *TerminalHandler) WithGroup(string) slog.Handler {
	return h
}

func (h *TerminalHandler) paint(b *strings.Builder, color, text string) {
	if h.colors {
		b.WriteString(color)
		b.WriteString(text)
		b.WriteString(ansiReset)
		return
	}
	b.WriteString(text)
}

func (h *TerminalHandler) levelColor(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return ansiRed
	case level >= slog.LevelWarn:
		return ansiYellow
	case level >= slog.LevelInfo:
		return ansiCyan
	default:
		return ansiGray
	}
}

func writeAttr(b *strings.Builder, a slog.Attr) {
	b.WriteString(" ")
	b.WriteString(a.Key)
	b.WriteString("=")
	b.WriteString(fmt.Sprint(a.Value.Any()))
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}
