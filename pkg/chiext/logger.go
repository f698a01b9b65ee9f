package chiext

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// Logger logs one line per request through slog.
func Logger() func(next http.Handler) http.Handler {
	return middleware.RequestLogger(&LogFormatter{})
}

type LogFormatter struct{}

func (l *LogFormatter) NewLogEntry(r *http.Request) middleware.LogEntry {
	attrs := []any{slog.String("from", r.RemoteAddr)}
	if reqID := middleware.GetReqID(r.Context()); reqID != "" {
		attrs = append(attrs, slog.String("request", reqID))
	}

	return &logEntry{
		attrs: attrs,
		msg:   fmt.Sprintf("%s %s %s", r.Method, r.RequestURI, r.Proto),
	}
}

type logEntry struct {
	attrs []any
	msg   string
}

func (l *logEntry) Write(status, bytes int, header http.Header, elapsed time.Duration, extra interface{}) {
	attrs := append(l.attrs,
		slog.Int("status", status),
		slog.Int("bytes", bytes),
		slog.String("elapsed", elapsed.String()),
	)

	switch {
	case status >= 500:
		slog.Error(l.msg, attrs...)
	case status >= 400:
		slog.Warn(l.msg, attrs...)
	default:
		slog.Debug(l.msg, attrs...)
	}
}

func (l *logEntry) Panic(v interface{}, stack []byte) {
	middleware.PrintPrettyStack(v)
}
