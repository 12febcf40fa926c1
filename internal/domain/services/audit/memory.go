package audit

import (
	"context"
	"sync"
	"time"

	"github.com/jason-slatt/cameroon-voice-ai/internal/domain/models"
)

// MemoryLogger keeps the audit trail in memory. Used in tests and when the
// service runs without Postgres.
type MemoryLogger struct {
	mu      sync.Mutex
	entries []models.AuditEntry
	nextID  int64
}

func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{nextID: 1}
}

func (l *MemoryLogger) LogCommand(_ context.Context, userID string, intent models.Intent, details map[string]string) error {
	l.append(models.AuditEntry{Category: models.AuditCommand, UserID: userID, Intent: string(intent), Details: details})
	return nil
}

func (l *MemoryLogger) LogResult(_ context.Context, userID string, intent models.Intent, status models.CommandStatus, details map[string]string) error {
	l.append(models.AuditEntry{Category: models.AuditResult, UserID: userID, Intent: string(intent), Status: string(status), Details: details})
	return nil
}

func (l *MemoryLogger) LogTransaction(_ context.Context, userID, transactionID string, amount float64, details map[string]string) error {
	l.append(models.AuditEntry{
		Category: models.AuditTransaction, UserID: userID, Status: string(models.StatusSuccess),
		TransactionID: transactionID, Amount: amount, Details: details,
	})
	return nil
}

func (l *MemoryLogger) LogSecurityEvent(_ context.Context, userID, eventType, riskLevel string, details map[string]string) error {
	l.append(models.AuditEntry{Category: models.AuditSecurity, UserID: userID, EventType: eventType, RiskLevel: riskLevel, Details: details})
	return nil
}

func (l *MemoryLogger) LogError(_ context.Context, userID, operation string, cause error, details map[string]string) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	l.append(models.AuditEntry{Category: models.AuditError, UserID: userID, EventType: operation, Error: msg, Details: details})
	return nil
}

func (l *MemoryLogger) GetUserTrail(_ context.Context, userID string, limit int) ([]models.AuditEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var trail []models.AuditEntry
	for i := len(l.entries) - 1; i >= 0 && len(trail) < limit; i-- {
		e := l.entries[i]
		if e.UserID == userID && e.Category == models.AuditCommand {
			trail = append(trail, e)
		}
	}
	return trail, nil
}

// Entries returns a copy of the full trail, newest last.
func (l *MemoryLogger) Entries() []models.AuditEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.AuditEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// EntriesByCategory filters the trail by category, newest last.
func (l *MemoryLogger) EntriesByCategory(category models.AuditCategory) []models.AuditEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []models.AuditEntry
	for _, e := range l.entries {
		if e.Category == category {
			out = append(out, e)
		}
	}
	return out
}

func (l *MemoryLogger) append(entry models.AuditEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry.ID = l.nextID
	l.nextID++
	entry.Timestamp = time.Now().UTC()
	l.entries = append(l.entries, entry)
}
