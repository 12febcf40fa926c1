package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jason-slatt/cameroon-voice-ai/internal/config"
	"github.com/jason-slatt/cameroon-voice-ai/internal/domain/models"
	"github.com/jason-slatt/cameroon-voice-ai/internal/domain/services/audit"
	"github.com/jason-slatt/cameroon-voice-ai/internal/domain/services/banking"
	"github.com/jason-slatt/cameroon-voice-ai/internal/domain/services/conversation"
	"github.com/jason-slatt/cameroon-voice-ai/internal/domain/services/flow"
	"github.com/jason-slatt/cameroon-voice-ai/internal/domain/services/i18n"
	"github.com/jason-slatt/cameroon-voice-ai/internal/domain/services/nlu"
	"github.com/jason-slatt/cameroon-voice-ai/internal/domain/services/storage"
	"github.com/jason-slatt/cameroon-voice-ai/pkg/logger"
)

// stubCommands satisfies conversation.CommandService with canned results.
type stubCommands struct{}

func (stubCommands) Execute(_ context.Context, req models.CommandRequest) (*models.CommandResult, error) {
	return &models.CommandResult{Status: models.StatusSuccess, Response: "done: " + string(req.Intent)}, nil
}

func (stubCommands) VerifyOTP(_ context.Context, _, _, _, _ string) (*models.CommandResult, error) {
	return &models.CommandResult{Status: models.StatusSuccess, Response: "confirmed"}, nil
}

func testManager(t *testing.T) *conversation.Manager {
	t.Helper()
	catalog, err := i18n.NewCatalog()
	if err != nil {
		t.Fatal(err)
	}

	accounts := banking.NewMockAccountAPI()
	auditLog := audit.NewMemoryLogger()
	registry := flow.NewRegistry(flow.Deps{
		Catalog:  catalog,
		Executor: stubCommands{},
		Accounts: accounts,
		Banking:  config.BankingConfig{MinTransferAmount: 100, MaxTransferAmount: 1000000, WithdrawalMin: 500, WithdrawalMax: 200000, TopUpMin: 100, TopUpMax: 500000},
		Currency: "XAF",
		Logger:   logger.Nop(),
	})

	manager := conversation.NewManager(
		storage.NewMemoryStore(time.Hour),
		nlu.NewClassifier(0.4, logger.Nop()),
		nlu.NewExtractor("XAF", logger.Nop()),
		registry,
		stubCommands{},
		accounts,
		catalog,
		auditLog,
		config.DialogConfig{MaxAttempts: 3, ConversationTTL: time.Hour},
		logger.Nop(),
	)
	return manager
}

func TestChatMessage(t *testing.T) {
	manager := testManager(t)
	h := NewChatHandler(manager, logger.Nop())

	body := `{"user_id":"demo-user-1","phone_number":"237671234567","message":"Hello"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.Message(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var reply conversation.Reply
	if err := json.Unmarshal(rec.Body.Bytes(), &reply); err != nil {
		t.Fatal(err)
	}
	if reply.ConversationID == "" {
		t.Error("no conversation ID minted")
	}
	if reply.Response == "" {
		t.Error("empty response")
	}
	if reply.Language != "en" {
		t.Errorf("language = %q, want en", reply.Language)
	}
}

func TestChatMessageValidation(t *testing.T) {
	manager := testManager(t)
	h := NewChatHandler(manager, logger.Nop())

	tests := []struct {
		name string
		body string
	}{
		{"bad json", `{`},
		{"no message", `{"user_id":"u1","phone_number":"237671234567"}`},
		{"no phone", `{"user_id":"u1","message":"hi"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.Message(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestChatConversationContinues(t *testing.T) {
	manager := testManager(t)
	h := NewChatHandler(manager, logger.Nop())

	body := `{"user_id":"demo-user-1","phone_number":"237671234567","message":"I want to withdraw money"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Message(rec, req)

	var first conversation.Reply
	if err := json.Unmarshal(rec.Body.Bytes(), &first); err != nil {
		t.Fatal(err)
	}
	if !first.InFlow {
		t.Fatalf("expected a flow to start, response = %q", first.Response)
	}

	// Second turn on the same conversation ID advances the flow.
	body = `{"conversation_id":"` + first.ConversationID + `","user_id":"demo-user-1","phone_number":"237671234567","message":"2500"}`
	req = httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader(body))
	rec = httptest.NewRecorder()
	h.Message(rec, req)

	var second conversation.Reply
	if err := json.Unmarshal(rec.Body.Bytes(), &second); err != nil {
		t.Fatal(err)
	}
	if second.ConversationID != first.ConversationID {
		t.Error("conversation ID changed between turns")
	}
	if !strings.Contains(second.Response, "2500") {
		t.Errorf("second response = %q, want confirmation prompt", second.Response)
	}
}

func TestVerifyOTPEndpoint(t *testing.T) {
	manager := testManager(t)
	h := NewChatHandler(manager, logger.Nop())

	body := `{"conversation_id":"c1","user_id":"demo-user-1","code":"123456"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat/otp", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.VerifyOTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var reply conversation.Reply
	if err := json.Unmarshal(rec.Body.Bytes(), &reply); err != nil {
		t.Fatal(err)
	}
	if reply.Response != "confirmed" {
		t.Errorf("response = %q", reply.Response)
	}
}

func TestVerifyOTPValidation(t *testing.T) {
	manager := testManager(t)
	h := NewChatHandler(manager, logger.Nop())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat/otp", strings.NewReader(`{"code":"123456"}`))
	rec := httptest.NewRecorder()
	h.VerifyOTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestAuditTrailEndpoint(t *testing.T) {
	auditLog := audit.NewMemoryLogger()
	ctx := context.Background()
	if err := auditLog.LogCommand(ctx, "u1", models.IntentTransfer, nil); err != nil {
		t.Fatal(err)
	}
	if err := auditLog.LogCommand(ctx, "u1", models.IntentBalanceInquiry, nil); err != nil {
		t.Fatal(err)
	}

	h := NewAuditHandler(auditLog, logger.Nop())
	router := chi.NewRouter()
	router.Get("/api/v1/audit/{user_id}", h.UserTrail)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/audit/u1?limit=10", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var payload struct {
		UserID  string              `json:"user_id"`
		Entries []models.AuditEntry `json:"entries"`
		Count   int                 `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatal(err)
	}
	if payload.Count != 2 {
		t.Errorf("count = %d, want 2", payload.Count)
	}
}

func TestHealthCheck(t *testing.T) {
	h := NewHealthHandler(nil, nil, "1.0.0", logger.Nop())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.Check(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "healthy" || resp.Version != "1.0.0" {
		t.Errorf("response = %+v", resp)
	}
}
