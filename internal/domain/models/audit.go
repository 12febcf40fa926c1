package models

import "time"

// AuditCategory partitions the append-only audit trail.
type AuditCategory string

const (
	AuditCommand     AuditCategory = "command"
	AuditResult      AuditCategory = "result"
	AuditTransaction AuditCategory = "transaction"
	AuditSecurity    AuditCategory = "security"
	AuditError       AuditCategory = "error"
)

// AuditEntry is one append-only audit record. Transaction entries carry
// TransactionID/Amount/Status in addition to the common fields.
type AuditEntry struct {
	ID            int64             `json:"id,omitempty"`
	Category      AuditCategory     `json:"category"`
	UserID        string            `json:"user_id"`
	Intent        string            `json:"intent,omitempty"`
	Status        string            `json:"status,omitempty"`
	TransactionID string            `json:"transaction_id,omitempty"`
	Amount        float64           `json:"amount,omitempty"`
	EventType     string            `json:"event_type,omitempty"`
	RiskLevel     string            `json:"risk_level,omitempty"`
	Error         string            `json:"error,omitempty"`
	Details       map[string]string `json:"details,omitempty"`
	Timestamp     time.Time         `json:"timestamp"`
}
