package banking

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jason-slatt/cameroon-voice-ai/internal/config"
	"github.com/jason-slatt/cameroon-voice-ai/internal/domain/models"
	"github.com/jason-slatt/cameroon-voice-ai/internal/domain/services/audit"
	"github.com/jason-slatt/cameroon-voice-ai/internal/domain/services/i18n"
	"github.com/jason-slatt/cameroon-voice-ai/internal/infrastructure/cache"
	"github.com/jason-slatt/cameroon-voice-ai/pkg/logger"
)

// Pending-action identifiers returned to the dialog layer.
const (
	ActionAddBeneficiary = "add_beneficiary"
	ActionOTP            = "verify_otp"

	otpActionTransfer = "transfer"

	historyLimit  = 5
	dailyTotalTTL = 48 * time.Hour
)

// RiskAssessor scores candidate transactions. Implemented by FraudDetector.
type RiskAssessor interface {
	AssessRisk(ctx context.Context, userID string, amount float64, beneficiary string) (*models.RiskAssessment, error)
	RecordBeneficiary(ctx context.Context, userID, beneficiary string) error
}

// OTPProvider issues and verifies step-up codes. Implemented by OTPService.
type OTPProvider interface {
	Generate(ctx context.Context, userID, conversationID, action string, metadata map[string]string) (string, error)
	Verify(ctx context.Context, userID, conversationID, code string) (*OTPVerification, error)
}

// limitStore tracks per-user rolling daily transfer totals.
type limitStore interface {
	GetFloat(ctx context.Context, key string) (float64, error)
	IncrByFloatWithTTL(ctx context.Context, key string, value float64, ttl time.Duration) (float64, error)
}

// Orchestrator executes authorized commands end to end: validation, daily
// limit, live balance, beneficiary check, risk scoring, OTP step-up, the
// account API call, and audit entries at every decision point.
type Orchestrator struct {
	api       AccountAPI
	fraud     RiskAssessor
	otp       OTPProvider
	limits    limitStore
	audit     audit.Logger
	catalog   *i18n.Catalog
	cfg       config.BankingConfig
	otpLength int
	currency  string
	logger    *logger.Logger

	// overridable in tests
	now func() time.Time
}

// NewOrchestrator wires the command pipeline.
func NewOrchestrator(
	api AccountAPI,
	fraud RiskAssessor,
	otp OTPProvider,
	limits *cache.RedisCache,
	auditLog audit.Logger,
	catalog *i18n.Catalog,
	cfg config.BankingConfig,
	otpLength int,
	currency string,
	log *logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		api:       api,
		fraud:     fraud,
		otp:       otp,
		limits:    limits,
		audit:     auditLog,
		catalog:   catalog,
		cfg:       cfg,
		otpLength: otpLength,
		currency:  currency,
		logger:    log.WithComponent("orchestrator"),
		now:       time.Now,
	}
}

// Execute runs one fully-specified command and returns the user-facing
// result. Pending results carry either an OTP challenge or a follow-up
// action; execution errors never propagate as Go errors to the dialog layer,
// they become failed results with a generic message.
func (o *Orchestrator) Execute(ctx context.Context, req models.CommandRequest) (*models.CommandResult, error) {
	o.auditOrWarn(o.audit.LogCommand(ctx, req.UserID, req.Intent, map[string]string{
		"conversation_id": req.ConversationID,
	}))

	var result *models.CommandResult
	switch req.Intent {
	case models.IntentTransfer:
		result = o.executeTransferCommand(ctx, req)
	case models.IntentWithdrawal:
		result = o.executeWithdrawal(ctx, req)
	case models.IntentTopUp:
		result = o.executeTopUp(ctx, req)
	case models.IntentBalanceInquiry:
		result = o.executeBalanceInquiry(ctx, req)
	case models.IntentTransactionHistory:
		result = o.executeHistory(ctx, req)
	case models.IntentAddBeneficiary:
		result = o.executeAddBeneficiary(ctx, req)
	case models.IntentBlockCard:
		result = o.executeBlockCard(ctx, req)
	case models.IntentViewBankDetails, models.IntentViewAccount:
		result = o.executeBankDetails(ctx, req)
	case models.IntentPayBill:
		result = o.executePayBill(ctx, req)
	case models.IntentChangeLimit:
		result = o.executeChangeLimit(ctx, req)
	default:
		result = &models.CommandResult{
			Status:   models.StatusFailed,
			Response: o.catalog.Message(i18n.MsgGeneralSupport, req.Language),
			Error:    fmt.Sprintf("unsupported intent %q", req.Intent),
		}
	}

	o.auditOrWarn(o.audit.LogResult(ctx, req.UserID, req.Intent, result.Status, map[string]string{
		"conversation_id": req.ConversationID,
		"requires_otp":    strconv.FormatBool(result.RequiresOTP),
	}))
	return result, nil
}

// VerifyOTP resumes a pending command once the user submits the step-up
// code. Only a valid code triggers the account API call. The attempt gets
// the same command/result bracket in the trail as a direct Execute, with a
// stage marker so the resumed leg is distinguishable.
func (o *Orchestrator) VerifyOTP(ctx context.Context, userID, conversationID, code, lang string) (*models.CommandResult, error) {
	o.auditOrWarn(o.audit.LogCommand(ctx, userID, models.IntentTransfer, map[string]string{
		"conversation_id": conversationID,
		"stage":           "otp_verification",
	}))

	result := o.resumeWithOTP(ctx, userID, conversationID, code, lang)

	o.auditOrWarn(o.audit.LogResult(ctx, userID, models.IntentTransfer, result.Status, map[string]string{
		"conversation_id": conversationID,
		"stage":           "otp_verification",
	}))
	return result, nil
}

func (o *Orchestrator) resumeWithOTP(ctx context.Context, userID, conversationID, code, lang string) *models.CommandResult {
	verification, err := o.otp.Verify(ctx, userID, conversationID, code)
	if err != nil {
		return o.failTransient(ctx, userID, "otp_verify", err, lang)
	}

	switch {
	case verification.NotFound:
		return &models.CommandResult{
			Status:   models.StatusFailed,
			Response: o.catalog.Message(i18n.MsgNoPendingOTP, lang),
		}

	case verification.Exhausted:
		o.auditOrWarn(o.audit.LogSecurityEvent(ctx, userID, "otp_exhausted", audit.AlertLevelHigh, map[string]string{
			"conversation_id": conversationID,
		}))
		return &models.CommandResult{
			Status:   models.StatusFailed,
			Response: o.catalog.Message(i18n.MsgOTPExhausted, lang),
		}

	case !verification.Valid:
		o.auditOrWarn(o.audit.LogSecurityEvent(ctx, userID, "otp_failed", "medium", map[string]string{
			"conversation_id": conversationID,
			"remaining":       strconv.Itoa(verification.Remaining),
		}))
		return &models.CommandResult{
			Status:   models.StatusFailed,
			Response: o.catalog.Message(i18n.MsgOTPInvalid, lang, verification.Remaining),
		}
	}

	if verification.Action != otpActionTransfer {
		return o.failTransient(ctx, userID, "otp_action",
			fmt.Errorf("unknown otp action %q", verification.Action), lang)
	}

	amount, err := strconv.ParseFloat(verification.Metadata["amount"], 64)
	if err != nil {
		return o.failTransient(ctx, userID, "otp_metadata", err, lang)
	}
	return o.settleTransfer(ctx, userID, amount,
		verification.Metadata["currency"], verification.Metadata["beneficiary"], lang)
}

func (o *Orchestrator) executeTransferCommand(ctx context.Context, req models.CommandRequest) *models.CommandResult {
	lang := req.Language
	amount, ok := req.Entities.Amount()
	if !ok {
		return &models.CommandResult{
			Status:   models.StatusFailed,
			Response: o.catalog.Message(i18n.MsgInvalidAmount, lang),
		}
	}
	if amount < o.cfg.MinTransferAmount || amount > o.cfg.MaxTransferAmount {
		return &models.CommandResult{
			Status: models.StatusFailed,
			Response: o.catalog.Message(i18n.MsgAmountRange, lang,
				formatMoney(o.cfg.MinTransferAmount), formatMoney(o.cfg.MaxTransferAmount), o.currency),
		}
	}

	currency := o.currencyFor(req.Entities)
	beneficiary := req.Entities[models.EntityRecipient]

	// Daily limit before anything irreversible.
	spent, err := o.limits.GetFloat(ctx, o.dailyKey(req.UserID))
	if err != nil {
		return o.failTransient(ctx, req.UserID, "daily_limit", err, lang)
	}
	if spent+amount > o.cfg.MaxDailyTransfer {
		return &models.CommandResult{
			Status: models.StatusFailed,
			Response: o.catalog.Message(i18n.MsgDailyLimitExceeded, lang,
				formatMoney(o.cfg.MaxDailyTransfer), o.currency),
		}
	}

	// Live balance, never the conversation cache.
	balance, err := o.api.GetBalance(ctx, req.UserID)
	if err != nil {
		return o.failTransient(ctx, req.UserID, "get_balance", err, lang)
	}
	if amount > balance {
		return &models.CommandResult{
			Status:   models.StatusFailed,
			Response: o.catalog.Message(i18n.MsgInsufficient, lang, formatMoney(balance), currency),
		}
	}

	exists, err := o.api.BeneficiaryExists(ctx, req.UserID, beneficiary)
	if err != nil {
		return o.failTransient(ctx, req.UserID, "beneficiary_check", err, lang)
	}
	if !exists {
		// Unknown counterpart: ask the user to add it first, without burning
		// a risk assessment (and its velocity side effect) on a command that
		// cannot proceed.
		return &models.CommandResult{
			Status:         models.StatusPending,
			ActionRequired: ActionAddBeneficiary,
			Response:       o.catalog.Message(i18n.MsgUnknownBeneficiary, lang, beneficiary),
		}
	}

	assessment, err := o.fraud.AssessRisk(ctx, req.UserID, amount, beneficiary)
	if err != nil {
		return o.failTransient(ctx, req.UserID, "risk_assessment", err, lang)
	}
	if level := assessment.Level(); level == audit.AlertLevelHigh || level == audit.AlertLevelCritical {
		o.auditOrWarn(o.audit.LogSecurityEvent(ctx, req.UserID, "high_risk_transaction", level, map[string]string{
			"score":       strconv.Itoa(assessment.Score),
			"factors":     strings.Join(assessment.Factors, ","),
			"amount":      formatMoney(amount),
			"beneficiary": beneficiary,
		}))
	}

	requiresOTP := amount > o.cfg.OTPAmountThreshold ||
		assessment.Score > o.cfg.OTPRiskThreshold ||
		assessment.HasFactor(FactorNewBeneficiary)

	if requiresOTP {
		code, err := o.otp.Generate(ctx, req.UserID, req.ConversationID, otpActionTransfer, map[string]string{
			"amount":      formatMoney(amount),
			"currency":    currency,
			"beneficiary": beneficiary,
		})
		if err != nil {
			return o.failTransient(ctx, req.UserID, "otp_generate", err, lang)
		}
		// Delivery goes through the SMS collaborator; in development the
		// code lands in the debug log.
		o.logger.Debug().Str("user_id", req.UserID).Str("code", code).Msg("otp generated")

		return &models.CommandResult{
			Status:         models.StatusPending,
			RequiresOTP:    true,
			ActionRequired: ActionOTP,
			Response:       o.catalog.Message(i18n.MsgOTPSent, lang, o.otpLength),
		}
	}

	return o.settleTransfer(ctx, req.UserID, amount, currency, beneficiary, lang)
}

// settleTransfer performs the account API call and the bookkeeping that
// follows a successful transfer.
func (o *Orchestrator) settleTransfer(ctx context.Context, userID string, amount float64, currency, beneficiary, lang string) *models.CommandResult {
	transfer, err := o.api.ExecuteTransfer(ctx, userID, amount, currency, beneficiary)
	if err != nil {
		return o.failTransient(ctx, userID, "execute_transfer", err, lang)
	}
	if !transfer.Success {
		return &models.CommandResult{
			Status:   models.StatusFailed,
			Error:    transfer.Error,
			Response: o.catalog.Message(i18n.MsgTransferFailed, lang, transfer.Error),
		}
	}

	if err := o.fraud.RecordBeneficiary(ctx, userID, beneficiary); err != nil {
		o.logger.Warn().Err(err).Msg("failed to record beneficiary usage")
	}
	if _, err := o.limits.IncrByFloatWithTTL(ctx, o.dailyKey(userID), amount, dailyTotalTTL); err != nil {
		o.logger.Warn().Err(err).Msg("failed to update daily total")
	}
	o.auditOrWarn(o.audit.LogTransaction(ctx, userID, transfer.TransactionID, amount, map[string]string{
		"currency":    currency,
		"beneficiary": beneficiary,
	}))

	return &models.CommandResult{
		Status:        models.StatusSuccess,
		TransactionID: transfer.TransactionID,
		Response: o.catalog.Message(i18n.MsgTransferSuccess, lang,
			formatMoney(amount), currency, beneficiary, transfer.TransactionID),
	}
}

func (o *Orchestrator) executeWithdrawal(ctx context.Context, req models.CommandRequest) *models.CommandResult {
	lang := req.Language
	amount, ok := req.Entities.Amount()
	if !ok {
		return &models.CommandResult{Status: models.StatusFailed, Response: o.catalog.Message(i18n.MsgInvalidAmount, lang)}
	}
	currency := o.currencyFor(req.Entities)

	result, err := o.api.Withdraw(ctx, req.UserID, amount, currency)
	if err != nil {
		return o.failTransient(ctx, req.UserID, "withdraw", err, lang)
	}
	if !result.Success {
		return &models.CommandResult{
			Status:   models.StatusFailed,
			Error:    result.Error,
			Response: o.catalog.Message(i18n.MsgTransferFailed, lang, result.Error),
		}
	}

	o.auditOrWarn(o.audit.LogTransaction(ctx, req.UserID, result.TransactionID, amount, map[string]string{
		"type": "withdrawal", "currency": currency,
	}))
	return &models.CommandResult{
		Status:        models.StatusSuccess,
		TransactionID: result.TransactionID,
		Response: o.catalog.Message(i18n.MsgWithdrawalSuccess, lang,
			formatMoney(amount), currency, result.TransactionID),
	}
}

func (o *Orchestrator) executeTopUp(ctx context.Context, req models.CommandRequest) *models.CommandResult {
	lang := req.Language
	amount, ok := req.Entities.Amount()
	if !ok {
		return &models.CommandResult{Status: models.StatusFailed, Response: o.catalog.Message(i18n.MsgInvalidAmount, lang)}
	}
	currency := o.currencyFor(req.Entities)

	result, err := o.api.Deposit(ctx, req.UserID, amount, currency)
	if err != nil {
		return o.failTransient(ctx, req.UserID, "deposit", err, lang)
	}
	if !result.Success {
		return &models.CommandResult{
			Status:   models.StatusFailed,
			Error:    result.Error,
			Response: o.catalog.Message(i18n.MsgTransferFailed, lang, result.Error),
		}
	}

	o.auditOrWarn(o.audit.LogTransaction(ctx, req.UserID, result.TransactionID, amount, map[string]string{
		"type": "deposit", "currency": currency,
	}))
	return &models.CommandResult{
		Status:        models.StatusSuccess,
		TransactionID: result.TransactionID,
		Response: o.catalog.Message(i18n.MsgTopUpSuccess, lang,
			formatMoney(amount), currency, result.TransactionID),
	}
}

func (o *Orchestrator) executeBalanceInquiry(ctx context.Context, req models.CommandRequest) *models.CommandResult {
	balance, err := o.api.GetBalance(ctx, req.UserID)
	if err != nil {
		return o.failTransient(ctx, req.UserID, "get_balance", err, req.Language)
	}
	return &models.CommandResult{
		Status:   models.StatusSuccess,
		Balance:  balance,
		Response: o.catalog.Message(i18n.MsgBalance, req.Language, formatMoney(balance), o.currency),
	}
}

func (o *Orchestrator) executeHistory(ctx context.Context, req models.CommandRequest) *models.CommandResult {
	transactions, err := o.api.TransactionHistory(ctx, req.UserID, historyLimit)
	if err != nil {
		return o.failTransient(ctx, req.UserID, "transaction_history", err, req.Language)
	}
	if len(transactions) == 0 {
		return &models.CommandResult{
			Status:   models.StatusSuccess,
			Response: o.catalog.Message(i18n.MsgHistoryEmpty, req.Language),
		}
	}

	var b strings.Builder
	b.WriteString(o.catalog.Message(i18n.MsgHistoryHeader, req.Language))
	for _, tx := range transactions {
		b.WriteString(fmt.Sprintf("\n- %s: %s %s (%s)", tx.Type, formatMoney(tx.Amount), tx.Currency, tx.Status))
	}
	return &models.CommandResult{Status: models.StatusSuccess, Response: b.String()}
}

func (o *Orchestrator) executeAddBeneficiary(ctx context.Context, req models.CommandRequest) *models.CommandResult {
	lang := req.Language
	name := req.Entities[models.EntityRecipient]
	if name == "" {
		return &models.CommandResult{
			Status:   models.StatusFailed,
			Response: o.catalog.Message(i18n.MsgGeneralSupport, lang),
			Error:    "missing recipient",
		}
	}

	result, err := o.api.AddBeneficiary(ctx, req.UserID, name, req.Entities[models.EntityIBAN])
	if err != nil {
		return o.failTransient(ctx, req.UserID, "add_beneficiary", err, lang)
	}
	if !result.Success {
		return &models.CommandResult{
			Status:   models.StatusFailed,
			Error:    result.Error,
			Response: o.catalog.Message(i18n.MsgServiceError, lang),
		}
	}
	return &models.CommandResult{
		Status:   models.StatusSuccess,
		Response: o.catalog.Message(i18n.MsgBeneficiaryAdded, lang, name),
	}
}

func (o *Orchestrator) executeBlockCard(ctx context.Context, req models.CommandRequest) *models.CommandResult {
	card, err := o.api.BlockCard(ctx, req.UserID)
	if err != nil {
		return o.failTransient(ctx, req.UserID, "block_card", err, req.Language)
	}

	o.auditOrWarn(o.audit.LogSecurityEvent(ctx, req.UserID, "card_blocked", "medium", map[string]string{
		"card_id": card.CardID,
	}))

	last4 := card.CardNumber
	if len(last4) > 4 {
		last4 = last4[len(last4)-4:]
	}
	return &models.CommandResult{
		Status:   models.StatusSuccess,
		Response: o.catalog.Message(i18n.MsgCardBlocked, req.Language, last4),
	}
}

func (o *Orchestrator) executeBankDetails(ctx context.Context, req models.CommandRequest) *models.CommandResult {
	info, err := o.api.AccountInfo(ctx, req.UserID)
	if err != nil {
		return o.failTransient(ctx, req.UserID, "account_info", err, req.Language)
	}
	return &models.CommandResult{
		Status:   models.StatusSuccess,
		Response: o.catalog.Message(i18n.MsgBankDetails, req.Language, info.IBAN, info.BIC, info.Holder),
	}
}

func (o *Orchestrator) executePayBill(ctx context.Context, req models.CommandRequest) *models.CommandResult {
	lang := req.Language
	amount, ok := req.Entities.Amount()
	if !ok {
		return &models.CommandResult{Status: models.StatusFailed, Response: o.catalog.Message(i18n.MsgInvalidAmount, lang)}
	}
	biller := req.Entities[models.EntityBiller]

	result, err := o.api.PayBill(ctx, req.UserID, amount, biller)
	if err != nil {
		return o.failTransient(ctx, req.UserID, "pay_bill", err, lang)
	}
	if !result.Success {
		return &models.CommandResult{
			Status:   models.StatusFailed,
			Error:    result.Error,
			Response: o.catalog.Message(i18n.MsgTransferFailed, lang, result.Error),
		}
	}

	currency := o.currencyFor(req.Entities)
	o.auditOrWarn(o.audit.LogTransaction(ctx, req.UserID, result.Reference, amount, map[string]string{
		"type": "bill_payment", "biller": biller,
	}))
	return &models.CommandResult{
		Status:    models.StatusSuccess,
		Reference: result.Reference,
		Response: o.catalog.Message(i18n.MsgBillPaid, lang,
			biller, formatMoney(amount), currency, result.Reference),
	}
}

func (o *Orchestrator) executeChangeLimit(ctx context.Context, req models.CommandRequest) *models.CommandResult {
	lang := req.Language
	amount, ok := req.Entities.Amount()
	if !ok {
		return &models.CommandResult{Status: models.StatusFailed, Response: o.catalog.Message(i18n.MsgInvalidAmount, lang)}
	}

	if err := o.api.SetDailyLimit(ctx, req.UserID, amount); err != nil {
		return o.failTransient(ctx, req.UserID, "set_daily_limit", err, lang)
	}

	o.auditOrWarn(o.audit.LogSecurityEvent(ctx, req.UserID, "limit_changed", "medium", map[string]string{
		"limit": formatMoney(amount),
	}))
	return &models.CommandResult{
		Status:   models.StatusSuccess,
		Response: o.catalog.Message(i18n.MsgLimitChanged, lang, formatMoney(amount), o.currency),
	}
}

// failTransient audits an external-dependency failure and maps it to a
// generic user-facing message.
func (o *Orchestrator) failTransient(ctx context.Context, userID, operation string, cause error, lang string) *models.CommandResult {
	o.logger.Error().Err(cause).Str("operation", operation).Str("user_id", userID).Msg("command failed")
	o.auditOrWarn(o.audit.LogError(ctx, userID, operation, cause, nil))
	return &models.CommandResult{
		Status:   models.StatusFailed,
		Error:    cause.Error(),
		Response: o.catalog.Message(i18n.MsgServiceError, lang),
	}
}

func (o *Orchestrator) auditOrWarn(err error) {
	if err != nil {
		o.logger.Warn().Err(err).Msg("audit write failed")
	}
}

func (o *Orchestrator) currencyFor(entities models.Entities) string {
	if c := entities[models.EntityCurrency]; c != "" {
		return c
	}
	return o.currency
}

func (o *Orchestrator) dailyKey(userID string) string {
	return cache.KeyDailyTotalPrefix + userID + ":" + o.now().UTC().Format("2006-01-02")
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
