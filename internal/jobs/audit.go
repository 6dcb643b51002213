package jobs

import (
	"fmt"
	"os"
	"sync"
	"time"
)

const timestampLayout = "02/01/2006-15:04:05"

// AuditLog is an append-only, line-oriented audit trail shared by the
// periodic jobs. Every append reopens the file so log rotation done by
// an operator does not require a restart.
type AuditLog struct {
	path string
	mu   sync.Mutex
}

func NewAuditLog(path string) *AuditLog {
	return &AuditLog{path: path}
}

func (a *AuditLog) Append(lines ...string) error {
	if len(lines) == 0 {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	f, err := os.OpenFile(a.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open audit log %s: %w", a.path, err)
	}
	defer f.Close()

	for _, line := range lines {
		if _, err := fmt.Fprintln(f, line); err != nil {
			return fmt.Errorf("append audit log %s: %w", a.path, err)
		}
	}

	return nil
}

func timestamp(t time.Time) string {
	return t.Format(timestampLayout)
}
