package httpapi

import (
	"net/http"
	"sync"
	"time"

	"github.com/mindsoothe/backend/pkg/logger"
)

// auditEntry records one security-relevant action.
type auditEntry struct {
	Time    time.Time `json:"time"`
	Action  string    `json:"action"`
	UserID  string    `json:"user_id,omitempty"`
	Remote  string    `json:"remote"`
	Success bool      `json:"success"`
}

// auditLog keeps a bounded in-memory trail of auth events and mirrors each
// one to the structured log.
type auditLog struct {
	mu      sync.Mutex
	entries []auditEntry
	max     int
	log     *logger.Logger
}

func newAuditLog(max int, log *logger.Logger) *auditLog {
	if max <= 0 {
		max = 1000
	}
	return &auditLog{max: max, log: log}
}

func (a *auditLog) record(r *http.Request, action, userID string, success bool) {
	if a == nil {
		return
	}
	e := auditEntry{
		Time:    time.Now().UTC(),
		Action:  action,
		UserID:  userID,
		Remote:  r.RemoteAddr,
		Success: success,
	}

	a.mu.Lock()
	a.entries = append(a.entries, e)
	if len(a.entries) > a.max {
		a.entries = a.entries[len(a.entries)-a.max:]
	}
	a.mu.Unlock()

	a.log.WithFields(map[string]interface{}{
		"action":  action,
		"user_id": userID,
		"remote":  e.Remote,
		"success": success,
	}).Info("audit event")
}
