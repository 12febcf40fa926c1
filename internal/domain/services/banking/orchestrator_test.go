package banking

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jason-slatt/cameroon-voice-ai/internal/config"
	"github.com/jason-slatt/cameroon-voice-ai/internal/domain/models"
	"github.com/jason-slatt/cameroon-voice-ai/internal/domain/services/audit"
	"github.com/jason-slatt/cameroon-voice-ai/internal/domain/services/i18n"
	"github.com/jason-slatt/cameroon-voice-ai/pkg/logger"
)

// fakeLimitStore implements limitStore in memory.
type fakeLimitStore struct {
	totals map[string]float64
}

func newFakeLimitStore() *fakeLimitStore {
	return &fakeLimitStore{totals: make(map[string]float64)}
}

func (s *fakeLimitStore) GetFloat(_ context.Context, key string) (float64, error) {
	return s.totals[key], nil
}

func (s *fakeLimitStore) IncrByFloatWithTTL(_ context.Context, key string, value float64, _ time.Duration) (float64, error) {
	s.totals[key] += value
	return s.totals[key], nil
}

// fakeOTPProvider scripts the step-up interaction so tests can drive both
// sides of the challenge.
type fakeOTPProvider struct {
	lastAction   string
	lastMetadata map[string]string
	verification *OTPVerification
}

func (f *fakeOTPProvider) Generate(_ context.Context, _, _, action string, metadata map[string]string) (string, error) {
	f.lastAction = action
	f.lastMetadata = metadata
	return "123456", nil
}

func (f *fakeOTPProvider) Verify(_ context.Context, _, _, _ string) (*OTPVerification, error) {
	return f.verification, nil
}

type orchestratorFixture struct {
	orchestrator *Orchestrator
	api          *MockAccountAPI
	fraudStore   *fakeFraudStore
	otp          *fakeOTPProvider
	limits       *fakeLimitStore
	audit        *audit.MemoryLogger
}

func newOrchestratorFixture(t *testing.T) *orchestratorFixture {
	t.Helper()
	catalog, err := i18n.NewCatalog()
	if err != nil {
		t.Fatal(err)
	}

	fraudStore := newFakeFraudStore()
	otp := &fakeOTPProvider{}
	limits := newFakeLimitStore()
	auditLog := audit.NewMemoryLogger()
	api := NewMockAccountAPI()

	// Fixed mid-morning clock keeps the unusual-hour factor out of the way.
	clock := func() time.Time {
		return time.Date(2025, 6, 10, 10, 30, 0, 0, time.UTC)
	}

	detector := &FraudDetector{
		store:  fraudStore,
		cfg:    testFraudConfig(),
		logger: logger.Nop(),
		now:    clock,
	}

	o := &Orchestrator{
		api:       api,
		fraud:     detector,
		otp:       otp,
		limits:    limits,
		audit:     auditLog,
		catalog:   catalog,
		cfg:       testBankingConfig(),
		otpLength: 6,
		currency:  "XAF",
		logger:    logger.Nop(),
		now:       clock,
	}
	return &orchestratorFixture{
		orchestrator: o,
		api:          api,
		fraudStore:   fraudStore,
		otp:          otp,
		limits:       limits,
		audit:        auditLog,
	}
}

func testBankingConfig() config.BankingConfig {
	return config.BankingConfig{
		MinTransferAmount:  100,
		MaxTransferAmount:  1000000,
		MaxDailyTransfer:   500000,
		WithdrawalMin:      500,
		WithdrawalMax:      200000,
		TopUpMin:           100,
		TopUpMax:           500000,
		OTPAmountThreshold: 500,
		OTPRiskThreshold:   75,
	}
}

func transferRequest(amount string) models.CommandRequest {
	return models.CommandRequest{
		Intent:         models.IntentTransfer,
		UserID:         "demo-user-1",
		ConversationID: "c1",
		Language:       "en",
		Entities: models.Entities{
			models.EntityAmount:    amount,
			models.EntityRecipient: "Paul",
		},
	}
}

// knowBeneficiary marks the counterpart as previously used so the novelty
// factor does not force a step-up.
func (f *orchestratorFixture) knowBeneficiary(t *testing.T, name string) {
	t.Helper()
	if err := f.fraudStore.SAddWithTTL(context.Background(), "fraud:beneficiaries:demo-user-1", name, 0); err != nil {
		t.Fatal(err)
	}
}

func TestTransferSmallAmountExecutesWithoutOTP(t *testing.T) {
	f := newOrchestratorFixture(t)
	f.knowBeneficiary(t, "Paul")

	result, err := f.orchestrator.Execute(context.Background(), transferRequest("250"))
	if err != nil {
		t.Fatal(err)
	}
	if result.Status != models.StatusSuccess {
		t.Fatalf("status = %s, response = %q", result.Status, result.Response)
	}
	if result.RequiresOTP {
		t.Error("small transfer to a known beneficiary demanded an OTP")
	}
	if result.TransactionID == "" {
		t.Error("no transaction ID returned")
	}

	balance, err := f.api.GetBalance(context.Background(), "demo-user-1")
	if err != nil {
		t.Fatal(err)
	}
	if balance != 149750 {
		t.Errorf("balance = %v, want 149750", balance)
	}

	// Daily total advanced.
	key := "limits:daily:demo-user-1:2025-06-10"
	if f.limits.totals[key] != 250 {
		t.Errorf("daily total = %v, want 250", f.limits.totals[key])
	}

	// Command, result and transaction were all audited.
	for _, category := range []models.AuditCategory{models.AuditCommand, models.AuditResult, models.AuditTransaction} {
		if len(f.audit.EntriesByCategory(category)) == 0 {
			t.Errorf("no %s audit entry", category)
		}
	}
}

func TestTransferAboveThresholdRequiresOTP(t *testing.T) {
	f := newOrchestratorFixture(t)
	f.knowBeneficiary(t, "Paul")

	result, err := f.orchestrator.Execute(context.Background(), transferRequest("600"))
	if err != nil {
		t.Fatal(err)
	}
	if result.Status != models.StatusPending || !result.RequiresOTP {
		t.Fatalf("result = %+v, want pending with OTP", result)
	}
	if f.otp.lastAction != "transfer" {
		t.Errorf("otp action = %q", f.otp.lastAction)
	}
	if f.otp.lastMetadata["amount"] != "600" || f.otp.lastMetadata["beneficiary"] != "Paul" {
		t.Errorf("otp metadata = %v", f.otp.lastMetadata)
	}

	// Nothing moved yet.
	balance, err := f.api.GetBalance(context.Background(), "demo-user-1")
	if err != nil {
		t.Fatal(err)
	}
	if balance != 150000 {
		t.Errorf("balance = %v, want untouched 150000", balance)
	}

	// The user confirms with the right code; only now does money move.
	f.otp.verification = &OTPVerification{
		Valid:    true,
		Action:   "transfer",
		Metadata: f.otp.lastMetadata,
	}
	result, err = f.orchestrator.VerifyOTP(context.Background(), "demo-user-1", "c1", "123456", "en")
	if err != nil {
		t.Fatal(err)
	}
	if result.Status != models.StatusSuccess {
		t.Fatalf("post-OTP status = %s, response = %q", result.Status, result.Response)
	}

	balance, err = f.api.GetBalance(context.Background(), "demo-user-1")
	if err != nil {
		t.Fatal(err)
	}
	if balance != 149400 {
		t.Errorf("balance = %v, want 149400", balance)
	}
	if len(f.audit.EntriesByCategory(models.AuditTransaction)) != 1 {
		t.Error("transfer not audited as transaction")
	}

	// Both legs of the step-upped transfer appear in the command trail: the
	// initial pending attempt and the OTP-resumed settlement.
	results := f.audit.EntriesByCategory(models.AuditResult)
	if len(results) != 2 {
		t.Fatalf("result entries = %d, want 2", len(results))
	}
	if results[0].Status != string(models.StatusPending) || results[1].Status != string(models.StatusSuccess) {
		t.Errorf("result statuses = %s/%s, want pending then success", results[0].Status, results[1].Status)
	}
	if results[1].Details["stage"] != "otp_verification" {
		t.Errorf("resumed result stage = %q, want otp_verification", results[1].Details["stage"])
	}
	if len(f.audit.EntriesByCategory(models.AuditCommand)) != 2 {
		t.Error("OTP-resumed execution missing its command entry")
	}
}

func TestTransferNovelBeneficiaryRequiresOTP(t *testing.T) {
	f := newOrchestratorFixture(t)
	// Paul is a registered beneficiary at the bank, but this user has never
	// actually sent him money.

	result, err := f.orchestrator.Execute(context.Background(), transferRequest("250"))
	if err != nil {
		t.Fatal(err)
	}
	if result.Status != models.StatusPending || !result.RequiresOTP {
		t.Fatalf("result = %+v, want pending with OTP", result)
	}
}

func TestTransferUnknownBeneficiarySkipsRiskScoring(t *testing.T) {
	f := newOrchestratorFixture(t)

	req := transferRequest("250")
	req.Entities[models.EntityRecipient] = "Complete Stranger"

	result, err := f.orchestrator.Execute(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if result.Status != models.StatusPending {
		t.Fatalf("status = %s", result.Status)
	}
	if result.ActionRequired != ActionAddBeneficiary {
		t.Errorf("action = %q, want %q", result.ActionRequired, ActionAddBeneficiary)
	}
	if result.RequiresOTP {
		t.Error("unknown beneficiary path demanded an OTP")
	}

	// No velocity attempt was burned on a command that cannot proceed.
	if n := len(f.fraudStore.zsets["fraud:velocity:demo-user-1"]); n != 0 {
		t.Errorf("velocity attempts recorded = %d, want 0", n)
	}
}

func TestTransferDailyLimit(t *testing.T) {
	f := newOrchestratorFixture(t)
	f.knowBeneficiary(t, "Paul")
	f.limits.totals["limits:daily:demo-user-1:2025-06-10"] = 499900

	result, err := f.orchestrator.Execute(context.Background(), transferRequest("250"))
	if err != nil {
		t.Fatal(err)
	}
	if result.Status != models.StatusFailed {
		t.Fatalf("status = %s", result.Status)
	}
	if !strings.Contains(result.Response, "daily limit") {
		t.Errorf("response = %q", result.Response)
	}
}

func TestTransferInsufficientBalance(t *testing.T) {
	f := newOrchestratorFixture(t)
	f.knowBeneficiary(t, "Paul")

	result, err := f.orchestrator.Execute(context.Background(), transferRequest("200000"))
	if err != nil {
		t.Fatal(err)
	}
	if result.Status != models.StatusFailed {
		t.Fatalf("status = %s", result.Status)
	}
	if !strings.Contains(result.Response, "150000") {
		t.Errorf("response = %q, want available balance mentioned", result.Response)
	}
}

func TestTransferAmountOutOfRange(t *testing.T) {
	f := newOrchestratorFixture(t)

	result, err := f.orchestrator.Execute(context.Background(), transferRequest("50"))
	if err != nil {
		t.Fatal(err)
	}
	if result.Status != models.StatusFailed {
		t.Fatalf("status = %s", result.Status)
	}
}

func TestVerifyOTPWrongCode(t *testing.T) {
	f := newOrchestratorFixture(t)
	f.otp.verification = &OTPVerification{Remaining: 2}

	result, err := f.orchestrator.VerifyOTP(context.Background(), "demo-user-1", "c1", "000000", "en")
	if err != nil {
		t.Fatal(err)
	}
	if result.Status != models.StatusFailed {
		t.Fatalf("status = %s", result.Status)
	}
	if !strings.Contains(result.Response, "2 attempt") {
		t.Errorf("response = %q", result.Response)
	}

	events := f.audit.EntriesByCategory(models.AuditSecurity)
	if len(events) != 1 || events[0].EventType != "otp_failed" {
		t.Errorf("security events = %+v", events)
	}

	// Rejected attempts still get their result entry.
	results := f.audit.EntriesByCategory(models.AuditResult)
	if len(results) != 1 || results[0].Status != string(models.StatusFailed) {
		t.Errorf("result entries = %+v, want one failed entry", results)
	}
}

func TestVerifyOTPExhausted(t *testing.T) {
	f := newOrchestratorFixture(t)
	f.otp.verification = &OTPVerification{Exhausted: true}

	result, err := f.orchestrator.VerifyOTP(context.Background(), "demo-user-1", "c1", "000000", "en")
	if err != nil {
		t.Fatal(err)
	}
	if result.Status != models.StatusFailed {
		t.Fatalf("status = %s", result.Status)
	}

	events := f.audit.EntriesByCategory(models.AuditSecurity)
	if len(events) != 1 || events[0].EventType != "otp_exhausted" || events[0].RiskLevel != audit.AlertLevelHigh {
		t.Errorf("security events = %+v", events)
	}
}

func TestVerifyOTPWithoutPendingCommand(t *testing.T) {
	f := newOrchestratorFixture(t)
	f.otp.verification = &OTPVerification{NotFound: true}

	result, err := f.orchestrator.VerifyOTP(context.Background(), "demo-user-1", "c1", "000000", "en")
	if err != nil {
		t.Fatal(err)
	}
	if result.Status != models.StatusFailed {
		t.Fatalf("status = %s", result.Status)
	}
}

func TestBalanceInquiry(t *testing.T) {
	f := newOrchestratorFixture(t)

	result, err := f.orchestrator.Execute(context.Background(), models.CommandRequest{
		Intent: models.IntentBalanceInquiry, UserID: "demo-user-1", Language: "en",
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Status != models.StatusSuccess || result.Balance != 150000 {
		t.Errorf("result = %+v", result)
	}
	if !strings.Contains(result.Response, "150000") {
		t.Errorf("response = %q", result.Response)
	}
}

func TestWithdrawalExecutesAndAudits(t *testing.T) {
	f := newOrchestratorFixture(t)

	result, err := f.orchestrator.Execute(context.Background(), models.CommandRequest{
		Intent: models.IntentWithdrawal, UserID: "demo-user-1", Language: "en",
		Entities: models.Entities{models.EntityAmount: "2500"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Status != models.StatusSuccess || result.TransactionID == "" {
		t.Fatalf("result = %+v", result)
	}

	balance, err := f.api.GetBalance(context.Background(), "demo-user-1")
	if err != nil {
		t.Fatal(err)
	}
	if balance != 147500 {
		t.Errorf("balance = %v, want 147500", balance)
	}
	if len(f.audit.EntriesByCategory(models.AuditTransaction)) != 1 {
		t.Error("withdrawal not audited as transaction")
	}
}

func TestPayBill(t *testing.T) {
	f := newOrchestratorFixture(t)

	result, err := f.orchestrator.Execute(context.Background(), models.CommandRequest{
		Intent: models.IntentPayBill, UserID: "demo-user-1", Language: "en",
		Entities: models.Entities{
			models.EntityAmount: "15000",
			models.EntityBiller: "ENEO",
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Status != models.StatusSuccess || result.Reference == "" {
		t.Fatalf("result = %+v", result)
	}
	if !strings.Contains(result.Response, "ENEO") {
		t.Errorf("response = %q", result.Response)
	}
}

func TestAddBeneficiaryThenTransferUnblocked(t *testing.T) {
	f := newOrchestratorFixture(t)

	addReq := models.CommandRequest{
		Intent: models.IntentAddBeneficiary, UserID: "demo-user-1", Language: "en",
		Entities: models.Entities{models.EntityRecipient: "Awa"},
	}
	result, err := f.orchestrator.Execute(context.Background(), addReq)
	if err != nil {
		t.Fatal(err)
	}
	if result.Status != models.StatusSuccess {
		t.Fatalf("add beneficiary result = %+v", result)
	}

	req := transferRequest("250")
	req.Entities[models.EntityRecipient] = "Awa"
	result, err = f.orchestrator.Execute(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	// Known to the bank now, but still a first-time counterpart: step-up.
	if result.Status != models.StatusPending || !result.RequiresOTP {
		t.Fatalf("result = %+v, want pending with OTP", result)
	}
}

func TestBlockCardLogsSecurityEvent(t *testing.T) {
	f := newOrchestratorFixture(t)

	result, err := f.orchestrator.Execute(context.Background(), models.CommandRequest{
		Intent: models.IntentBlockCard, UserID: "demo-user-1", Language: "en",
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Status != models.StatusSuccess {
		t.Fatalf("result = %+v", result)
	}

	events := f.audit.EntriesByCategory(models.AuditSecurity)
	if len(events) != 1 || events[0].EventType != "card_blocked" {
		t.Errorf("security events = %+v", events)
	}
}

func TestTransactionHistoryAfterActivity(t *testing.T) {
	f := newOrchestratorFixture(t)
	f.knowBeneficiary(t, "Paul")

	if _, err := f.orchestrator.Execute(context.Background(), transferRequest("250")); err != nil {
		t.Fatal(err)
	}

	result, err := f.orchestrator.Execute(context.Background(), models.CommandRequest{
		Intent: models.IntentTransactionHistory, UserID: "demo-user-1", Language: "en",
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Status != models.StatusSuccess {
		t.Fatalf("result = %+v", result)
	}
	if !strings.Contains(result.Response, "250") {
		t.Errorf("response = %q, want the transfer listed", result.Response)
	}
}
