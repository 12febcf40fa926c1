package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jason-slatt/cameroon-voice-ai/internal/domain/models"
	"github.com/jason-slatt/cameroon-voice-ai/internal/infrastructure/cache"
	"github.com/jason-slatt/cameroon-voice-ai/internal/infrastructure/database"
	"github.com/jason-slatt/cameroon-voice-ai/pkg/logger"
)

const insertEntry = `
	INSERT INTO audit_entries
		(category, user_id, intent, status, transaction_id, amount, event_type, risk_level, error, details, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

const selectUserTrail = `
	SELECT id, category, user_id, intent, status, transaction_id, amount, event_type, risk_level, error, details, created_at
	FROM audit_entries
	WHERE user_id = $1 AND category = 'command'
	ORDER BY created_at DESC
	LIMIT $2`

// PostgresLogger appends audit entries to the audit_entries table. Security
// events at high or critical risk are additionally pushed to a Redis alert
// list so an operator channel can consume them.
type PostgresLogger struct {
	db       *database.PostgresDB
	alerts   *cache.RedisCache
	alertTTL time.Duration
	logger   *logger.Logger
}

// NewPostgresLogger creates the production audit logger. alerts may be nil,
// in which case high-risk events are only written to the table.
func NewPostgresLogger(db *database.PostgresDB, alerts *cache.RedisCache, alertTTL time.Duration, log *logger.Logger) *PostgresLogger {
	return &PostgresLogger{
		db:       db,
		alerts:   alerts,
		alertTTL: alertTTL,
		logger:   log.WithComponent("audit"),
	}
}

func (l *PostgresLogger) LogCommand(ctx context.Context, userID string, intent models.Intent, details map[string]string) error {
	return l.append(ctx, models.AuditEntry{
		Category: models.AuditCommand,
		UserID:   userID,
		Intent:   string(intent),
		Details:  details,
	})
}

func (l *PostgresLogger) LogResult(ctx context.Context, userID string, intent models.Intent, status models.CommandStatus, details map[string]string) error {
	return l.append(ctx, models.AuditEntry{
		Category: models.AuditResult,
		UserID:   userID,
		Intent:   string(intent),
		Status:   string(status),
		Details:  details,
	})
}

func (l *PostgresLogger) LogTransaction(ctx context.Context, userID, transactionID string, amount float64, details map[string]string) error {
	return l.append(ctx, models.AuditEntry{
		Category:      models.AuditTransaction,
		UserID:        userID,
		Status:        string(models.StatusSuccess),
		TransactionID: transactionID,
		Amount:        amount,
		Details:       details,
	})
}

func (l *PostgresLogger) LogSecurityEvent(ctx context.Context, userID, eventType, riskLevel string, details map[string]string) error {
	entry := models.AuditEntry{
		Category:  models.AuditSecurity,
		UserID:    userID,
		EventType: eventType,
		RiskLevel: riskLevel,
		Details:   details,
	}
	if err := l.append(ctx, entry); err != nil {
		return err
	}

	if l.alerts != nil && alertworthy(riskLevel) {
		entry.Timestamp = time.Now().UTC()
		payload, err := json.Marshal(entry)
		if err == nil {
			key := cache.KeyAlertPrefix + entry.Timestamp.Format("2006-01-02")
			if err := l.alerts.RPushWithTTL(ctx, key, string(payload), l.alertTTL); err != nil {
				l.logger.Warn().Err(err).Msg("failed to push security alert")
			}
		}
	}
	return nil
}

func (l *PostgresLogger) LogError(ctx context.Context, userID, operation string, cause error, details map[string]string) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return l.append(ctx, models.AuditEntry{
		Category:  models.AuditError,
		UserID:    userID,
		EventType: operation,
		Error:     msg,
		Details:   details,
	})
}

func (l *PostgresLogger) GetUserTrail(ctx context.Context, userID string, limit int) ([]models.AuditEntry, error) {
	rows, err := l.db.Pool().Query(ctx, selectUserTrail, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit trail: %w", err)
	}
	defer rows.Close()

	var entries []models.AuditEntry
	for rows.Next() {
		var e models.AuditEntry
		var details []byte
		if err := rows.Scan(&e.ID, &e.Category, &e.UserID, &e.Intent, &e.Status,
			&e.TransactionID, &e.Amount, &e.EventType, &e.RiskLevel, &e.Error,
			&details, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &e.Details); err != nil {
				l.logger.Warn().Err(err).Int64("entry_id", e.ID).Msg("corrupt audit details")
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (l *PostgresLogger) append(ctx context.Context, entry models.AuditEntry) error {
	entry.Timestamp = time.Now().UTC()

	var details []byte
	if len(entry.Details) > 0 {
		var err error
		details, err = json.Marshal(entry.Details)
		if err != nil {
			return fmt.Errorf("failed to marshal audit details: %w", err)
		}
	}

	_, err := l.db.Pool().Exec(ctx, insertEntry,
		entry.Category, entry.UserID, entry.Intent, entry.Status,
		entry.TransactionID, entry.Amount, entry.EventType, entry.RiskLevel,
		entry.Error, details, entry.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}
