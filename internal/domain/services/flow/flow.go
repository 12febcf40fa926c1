// Package flow implements the multi-turn dialogs: account creation, money
// movement, dashboard queries, password management and WhatsApp linking.
// Each flow is a small state machine over ConversationState; the manager
// drives it one user message at a time.
package flow

import (
	"context"

	"github.com/jason-slatt/cameroon-voice-ai/internal/config"
	"github.com/jason-slatt/cameroon-voice-ai/internal/domain/models"
	"github.com/jason-slatt/cameroon-voice-ai/internal/domain/services/i18n"
	"github.com/jason-slatt/cameroon-voice-ai/pkg/logger"
)

// Result is the outcome of processing one user message inside a flow. When
// Completed is set the flow has collected everything it needs and the caller
// must invoke Complete to run the side effects; Response is then empty.
type Result struct {
	Response  string
	Completed bool
}

// Flow is one multi-turn dialog. Start enters the flow and returns the first
// prompt. Process consumes one user message and either re-prompts, advances,
// or reports completion. Complete runs the flow's side effects and returns
// the final response; it is only valid after Process reported Completed.
type Flow interface {
	Type() models.FlowType
	Start(ctx context.Context, state *models.ConversationState) (string, error)
	Process(ctx context.Context, state *models.ConversationState, input string) (Result, error)
	Complete(ctx context.Context, state *models.ConversationState) (string, error)
}

// Executor runs a fully-specified command. Implemented by the command
// orchestrator.
type Executor interface {
	Execute(ctx context.Context, req models.CommandRequest) (*models.CommandResult, error)
}

// AccountGateway is the slice of the account API the flows call directly,
// outside the orchestrator's risk pipeline.
type AccountGateway interface {
	CreateAccount(ctx context.Context, phoneNumber, fullName string, age int, sex, groupement string) (*models.Account, error)
	DashboardSummary(ctx context.Context, userID string) (*models.DashboardSummary, error)
	RegistrationStats(ctx context.Context, userID string) (*models.RegistrationStats, error)
	RequestPasswordReset(ctx context.Context, userID, phoneNumber string) error
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error
	LinkWhatsApp(ctx context.Context, userID, phoneNumber string) error
}

// Deps carries everything the flows need, injected once at startup.
type Deps struct {
	Catalog  *i18n.Catalog
	Executor Executor
	Accounts AccountGateway
	Banking  config.BankingConfig
	Currency string
	Logger   *logger.Logger
}

// Registry holds one instance of every flow. Lookup is an exhaustive switch
// over the flow-type enum so a new flow type cannot be forgotten silently.
type Registry struct {
	accountCreation *AccountCreationFlow
	withdrawal      *MoneyFlow
	topUp           *MoneyFlow
	transfer        *TransferFlow
	dashboard       *DashboardFlow
	passwordReset   *PasswordResetFlow
	passwordChange  *PasswordChangeFlow
	whatsAppLink    *WhatsAppLinkFlow
}

// NewRegistry constructs every flow with the shared dependencies.
func NewRegistry(deps Deps) *Registry {
	return &Registry{
		accountCreation: NewAccountCreationFlow(deps),
		withdrawal:      NewWithdrawalFlow(deps),
		topUp:           NewTopUpFlow(deps),
		transfer:        NewTransferFlow(deps),
		dashboard:       NewDashboardFlow(deps),
		passwordReset:   NewPasswordResetFlow(deps),
		passwordChange:  NewPasswordChangeFlow(deps),
		whatsAppLink:    NewWhatsAppLinkFlow(deps),
	}
}

// Lookup returns the flow for a type, or ok=false for FlowNone and unknown
// values.
func (r *Registry) Lookup(flowType models.FlowType) (Flow, bool) {
	switch flowType {
	case models.FlowAccountCreation:
		return r.accountCreation, true
	case models.FlowWithdrawal:
		return r.withdrawal, true
	case models.FlowTopUp:
		return r.topUp, true
	case models.FlowTransfer:
		return r.transfer, true
	case models.FlowDashboard:
		return r.dashboard, true
	case models.FlowPasswordReset:
		return r.passwordReset, true
	case models.FlowPasswordChange:
		return r.passwordChange, true
	case models.FlowWhatsAppLink:
		return r.whatsAppLink, true
	case models.FlowNone:
		return nil, false
	}
	return nil, false
}

// ForIntent maps a classified intent to the flow that serves it, or ok=false
// when the intent is handled without a multi-turn flow.
func (r *Registry) ForIntent(intent models.Intent) (Flow, bool) {
	switch intent {
	case models.IntentAccountCreation:
		return r.accountCreation, true
	case models.IntentWithdrawal:
		return r.withdrawal, true
	case models.IntentTopUp:
		return r.topUp, true
	case models.IntentTransfer:
		return r.transfer, true
	case models.IntentDashboard:
		return r.dashboard, true
	case models.IntentPasswordReset:
		return r.passwordReset, true
	case models.IntentPasswordChange:
		return r.passwordChange, true
	case models.IntentWhatsAppLink:
		return r.whatsAppLink, true
	}
	return nil, false
}

// base carries the helpers shared by every flow implementation.
type base struct {
	catalog *i18n.Catalog
	logger  *logger.Logger
}

// reprompt counts the failed attempt and either repeats the corrective
// message or abandons the flow once the budget is exhausted.
func (b base) reprompt(state *models.ConversationState, msg i18n.MessageID, args ...any) Result {
	if state.IncrementAttempts() {
		state.ResetFlow()
		return Result{Response: b.catalog.Message(i18n.MsgMaxAttempts, state.Language)}
	}
	return Result{Response: b.catalog.Message(msg, state.Language, args...)}
}

// cancel abandons the flow on an explicit user denial.
func (b base) cancel(state *models.ConversationState) Result {
	state.ResetFlow()
	return Result{Response: b.catalog.Message(i18n.MsgCancelled, state.Language)}
}
