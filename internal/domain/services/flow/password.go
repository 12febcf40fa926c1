package flow

import (
	"context"
	"fmt"
	"strings"

	"github.com/jason-slatt/cameroon-voice-ai/internal/domain/models"
	"github.com/jason-slatt/cameroon-voice-ai/internal/domain/services/i18n"
)

const (
	dataOldPassword = "old_password"
	dataNewPassword = "new_password"

	minPasswordLength = 6
)

// PasswordResetFlow confirms the registered phone number, then asks the
// account API to send a reset code by SMS.
type PasswordResetFlow struct {
	base
	accounts AccountGateway
}

func NewPasswordResetFlow(deps Deps) *PasswordResetFlow {
	return &PasswordResetFlow{
		base:     base{catalog: deps.Catalog, logger: deps.Logger.WithFlow(string(models.FlowPasswordReset))},
		accounts: deps.Accounts,
	}
}

func (f *PasswordResetFlow) Type() models.FlowType { return models.FlowPasswordReset }

func (f *PasswordResetFlow) Start(_ context.Context, state *models.ConversationState) (string, error) {
	state.StartFlow(models.FlowPasswordReset, models.StepConfirmPhone)
	return f.catalog.Prompt(models.FlowPasswordReset, models.StepConfirmPhone, state.Language, state.PhoneNumber), nil
}

func (f *PasswordResetFlow) Process(_ context.Context, state *models.ConversationState, input string) (Result, error) {
	if state.FlowStep != models.StepConfirmPhone {
		return Result{}, fmt.Errorf("password reset flow: unexpected step %q", state.FlowStep)
	}

	yes, ok := parseYesNo(input)
	if !ok {
		return f.reprompt(state, i18n.MsgYesOrNo), nil
	}
	if !yes {
		return f.cancel(state), nil
	}
	state.NextStep(models.StepComplete)
	return Result{Completed: true}, nil
}

func (f *PasswordResetFlow) Complete(ctx context.Context, state *models.ConversationState) (string, error) {
	if err := f.accounts.RequestPasswordReset(ctx, state.UserID, state.PhoneNumber); err != nil {
		return "", fmt.Errorf("failed to request password reset: %w", err)
	}
	return f.catalog.Message(i18n.MsgPasswordResetSent, state.Language, state.PhoneNumber), nil
}

// PasswordChangeFlow collects the current and new passwords, then applies
// the change through the account API.
type PasswordChangeFlow struct {
	base
	accounts AccountGateway
}

func NewPasswordChangeFlow(deps Deps) *PasswordChangeFlow {
	return &PasswordChangeFlow{
		base:     base{catalog: deps.Catalog, logger: deps.Logger.WithFlow(string(models.FlowPasswordChange))},
		accounts: deps.Accounts,
	}
}

func (f *PasswordChangeFlow) Type() models.FlowType { return models.FlowPasswordChange }

func (f *PasswordChangeFlow) Start(_ context.Context, state *models.ConversationState) (string, error) {
	state.StartFlow(models.FlowPasswordChange, models.StepAskOldPassword)
	return f.catalog.Prompt(models.FlowPasswordChange, models.StepAskOldPassword, state.Language), nil
}

func (f *PasswordChangeFlow) Process(_ context.Context, state *models.ConversationState, input string) (Result, error) {
	switch state.FlowStep {
	case models.StepAskOldPassword:
		current := strings.TrimSpace(input)
		if current == "" {
			return f.reprompt(state, i18n.MsgInvalidPassword), nil
		}
		state.AddData(dataOldPassword, current)
		state.NextStep(models.StepAskNewPassword)
		return Result{Response: f.catalog.Prompt(models.FlowPasswordChange, models.StepAskNewPassword, state.Language)}, nil

	case models.StepAskNewPassword:
		next := strings.TrimSpace(input)
		if len(next) < minPasswordLength {
			return f.reprompt(state, i18n.MsgInvalidPassword), nil
		}
		state.AddData(dataNewPassword, next)
		state.NextStep(models.StepComplete)
		return Result{Completed: true}, nil
	}

	return Result{}, fmt.Errorf("password change flow: unexpected step %q", state.FlowStep)
}

func (f *PasswordChangeFlow) Complete(ctx context.Context, state *models.ConversationState) (string, error) {
	err := f.accounts.ChangePassword(ctx, state.UserID, state.Data(dataOldPassword), state.Data(dataNewPassword))

	// Passwords never stay in conversation state once the change is applied.
	state.DropData(dataOldPassword, dataNewPassword)

	if err != nil {
		return "", fmt.Errorf("failed to change password: %w", err)
	}
	return f.catalog.Message(i18n.MsgPasswordChanged, state.Language), nil
}
