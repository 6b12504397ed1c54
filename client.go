package poster

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/hola-ivan/event-image-generator/version"
)

var userAgent = "event-image-generator/" + version.Version + " (+https://github.com/hola-ivan/event-image-generator)"

// newRetryClient builds the HTTP client used for image search, asset
// downloads and webhook delivery. The retry budget is deliberately small:
// one retry on transient failures, with an explicit request timeout.
func newRetryClient(logger *slog.Logger) *http.Client {
	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient = &http.Client{
		Timeout: 15 * time.Second,
	}
	retryClient.RetryMax = 1
	retryClient.RetryWaitMin = 500 * time.Millisecond
	retryClient.RetryWaitMax = 2 * time.Second
	retryClient.Logger = newAPILogger(logger)
	return retryClient.StandardClient()
}

var _ retryablehttp.LeveledLogger = (*apiLogger)(nil)

type apiLogger struct {
	l *slog.Logger
}

func (l *apiLogger) Error(msg string, keysAndValues ...any) {
	l.l.Error(msg, append([]any{slog.String("original_log_level", "error")}, keysAndValues...)...)
}
func (l *apiLogger) Info(msg string, keysAndValues ...any) {
	l.l.Info(msg, append([]any{slog.String("original_log_level", "info")}, keysAndValues...)...)
}
func (l *apiLogger) Debug(msg string, keysAndValues ...any) {
	if strings.HasPrefix(msg, "retrying") {
		// If the message starts with "retrying", log it as info instead of debug
		// For displaying spinner messages in the console
		l.l.Info(msg, append([]any{slog.String("original_log_level", "debug")}, keysAndValues...)...)
		return
	}
	l.l.Debug(msg, append([]any{slog.String("original_log_level", "debug")}, keysAndValues...)...)
}
func (l *apiLogger) Warn(msg string, keysAndValues ...any) {
	l.l.Warn(msg, append([]any{slog.String("original_log_level", "warn")}, keysAndValues...)...)
}

func newAPILogger(l *slog.Logger) retryablehttp.LeveledLogger {
	return &apiLogger{
		l: l.WithGroup("api"),
	}
}
