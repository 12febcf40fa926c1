package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/jason-slatt/cameroon-voice-ai/internal/domain/models"
)

func TestMemoryLoggerAppendsEveryCategory(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLogger()

	l.LogCommand(ctx, "user-1", models.IntentTransfer, map[string]string{"amount": "100"})
	l.LogResult(ctx, "user-1", models.IntentTransfer, models.StatusSuccess, nil)
	l.LogTransaction(ctx, "user-1", "tx-1", 100, nil)
	l.LogSecurityEvent(ctx, "user-1", "otp_failed", "medium", nil)
	l.LogError(ctx, "user-1", "transfer", errors.New("boom"), nil)

	entries := l.Entries()
	if len(entries) != 5 {
		t.Fatalf("len(entries) = %d, want 5", len(entries))
	}

	wantCategories := []models.AuditCategory{
		models.AuditCommand, models.AuditResult, models.AuditTransaction,
		models.AuditSecurity, models.AuditError,
	}
	for i, want := range wantCategories {
		if entries[i].Category != want {
			t.Errorf("entry %d category = %s, want %s", i, entries[i].Category, want)
		}
		if entries[i].ID == 0 {
			t.Errorf("entry %d has no ID", i)
		}
		if entries[i].Timestamp.IsZero() {
			t.Errorf("entry %d has no timestamp", i)
		}
	}

	if entries[4].Error != "boom" {
		t.Errorf("error entry message = %q", entries[4].Error)
	}
}

func TestMemoryLoggerUserTrail(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLogger()

	l.LogCommand(ctx, "user-1", models.IntentTransfer, nil)
	l.LogCommand(ctx, "user-2", models.IntentWithdrawal, nil)
	l.LogCommand(ctx, "user-1", models.IntentBalanceInquiry, nil)
	// Non-command categories never appear in the trail.
	l.LogResult(ctx, "user-1", models.IntentTransfer, models.StatusSuccess, nil)

	trail, err := l.GetUserTrail(ctx, "user-1", 10)
	if err != nil {
		t.Fatalf("GetUserTrail: %v", err)
	}
	if len(trail) != 2 {
		t.Fatalf("len(trail) = %d, want 2", len(trail))
	}
	// Newest first.
	if trail[0].Intent != string(models.IntentBalanceInquiry) {
		t.Errorf("trail[0].Intent = %s, want balance_inquiry", trail[0].Intent)
	}

	limited, _ := l.GetUserTrail(ctx, "user-1", 1)
	if len(limited) != 1 {
		t.Errorf("limit not applied: got %d entries", len(limited))
	}
}
