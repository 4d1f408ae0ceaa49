package collection

import (
	"log/slog"
	"sync"
)

var (
	logMu  sync.RWMutex
	logOut = slog.New(slog.DiscardHandler)
)

// SetLogger sets the logger used for debug output of grouping and joins.
// A nil logger discards output.
func SetLogger(l *slog.Logger) {
	logMu.Lock()
	defer logMu.Unlock()
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	logOut = l
}

func logger() *slog.Logger {
	logMu.RLock()
	defer logMu.RUnlock()
	return logOut
}
