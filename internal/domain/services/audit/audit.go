// Package audit writes the append-only trail of commands, results,
// transactions, security events and errors. Entries are never updated or
// deleted by the application; retention is an operational concern.
package audit

import (
	"context"

	"github.com/jason-slatt/cameroon-voice-ai/internal/domain/models"
)

// Risk levels that must also be surfaced on the alert channel.
const (
	AlertLevelHigh     = "high"
	AlertLevelCritical = "critical"
)

// Logger is the audit trail contract. One method per category; every method
// appends exactly one entry. GetUserTrail reads back the most recent command
// entries for one user.
type Logger interface {
	LogCommand(ctx context.Context, userID string, intent models.Intent, details map[string]string) error
	LogResult(ctx context.Context, userID string, intent models.Intent, status models.CommandStatus, details map[string]string) error
	LogTransaction(ctx context.Context, userID, transactionID string, amount float64, details map[string]string) error
	LogSecurityEvent(ctx context.Context, userID, eventType, riskLevel string, details map[string]string) error
	LogError(ctx context.Context, userID, operation string, cause error, details map[string]string) error
	GetUserTrail(ctx context.Context, userID string, limit int) ([]models.AuditEntry, error)
}

func alertworthy(riskLevel string) bool {
	return riskLevel == AlertLevelHigh || riskLevel == AlertLevelCritical
}
