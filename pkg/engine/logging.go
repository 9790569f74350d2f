package engine

import (
	"io"
	"log/slog"
	"strings"
)

// LogOptions selects the log handler.
type LogOptions struct {
	JSON    bool
	Verbose bool
}

// NewLogger builds the job logger. Credential-like attributes are
// redacted in both handlers.
func NewLogger(w io.Writer, opts LogOptions) *slog.Logger {
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	ho := &slog.HandlerOptions{Level: level, ReplaceAttr: redactSensitiveData}
	if opts.JSON {
		return slog.New(slog.NewJSONHandler(w, ho))
	}
	return slog.New(slog.NewTextHandler(w, ho))
}

var sensitiveKeys = map[string]bool{
	"password": true, "access_key": true, "token": true,
	"secret": true, "api_key": true, "private_key": true, "auth_token": true,
	"session_token": true, "secret_access_key": true, "credential": true,
	"signature": true,
}

// redactSensitiveData scrubs sensitive keys from logs.
func redactSensitiveData(_ []string, a slog.Attr) slog.Attr {
	if sensitiveKeys[strings.ToLower(a.Key)] {
		return slog.String(a.Key, "[REDACTED]")
	}
	return a
}
