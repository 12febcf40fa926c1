package flow

import (
	"context"
	"fmt"

	"github.com/jason-slatt/cameroon-voice-ai/internal/domain/models"
	"github.com/jason-slatt/cameroon-voice-ai/internal/domain/services/i18n"
	"github.com/jason-slatt/cameroon-voice-ai/internal/domain/services/nlu"
)

const dataWhatsAppNumber = "whatsapp_number"

// WhatsAppLinkFlow links the account to a WhatsApp number, defaulting to the
// caller's own number.
type WhatsAppLinkFlow struct {
	base
	accounts AccountGateway
}

func NewWhatsAppLinkFlow(deps Deps) *WhatsAppLinkFlow {
	return &WhatsAppLinkFlow{
		base:     base{catalog: deps.Catalog, logger: deps.Logger.WithFlow(string(models.FlowWhatsAppLink))},
		accounts: deps.Accounts,
	}
}

func (f *WhatsAppLinkFlow) Type() models.FlowType { return models.FlowWhatsAppLink }

func (f *WhatsAppLinkFlow) Start(_ context.Context, state *models.ConversationState) (string, error) {
	state.StartFlow(models.FlowWhatsAppLink, models.StepAskWhatsAppChoice)
	return f.catalog.Prompt(models.FlowWhatsAppLink, models.StepAskWhatsAppChoice, state.Language, state.PhoneNumber), nil
}

func (f *WhatsAppLinkFlow) Process(_ context.Context, state *models.ConversationState, input string) (Result, error) {
	switch state.FlowStep {
	case models.StepAskWhatsAppChoice:
		yes, ok := parseYesNo(input)
		if !ok {
			return f.reprompt(state, i18n.MsgYesOrNo), nil
		}
		if yes {
			state.AddData(dataWhatsAppNumber, state.PhoneNumber)
			state.NextStep(models.StepComplete)
			return Result{Completed: true}, nil
		}
		state.NextStep(models.StepAskWhatsAppNumber)
		return Result{Response: f.catalog.Prompt(models.FlowWhatsAppLink, models.StepAskWhatsAppNumber, state.Language)}, nil

	case models.StepAskWhatsAppNumber:
		phone, ok := nlu.ExtractPhone(input)
		if !ok {
			return f.reprompt(state, i18n.MsgInvalidPhone), nil
		}
		state.AddData(dataWhatsAppNumber, phone)
		state.NextStep(models.StepComplete)
		return Result{Completed: true}, nil
	}

	return Result{}, fmt.Errorf("whatsapp link flow: unexpected step %q", state.FlowStep)
}

func (f *WhatsAppLinkFlow) Complete(ctx context.Context, state *models.ConversationState) (string, error) {
	number := state.Data(dataWhatsAppNumber)
	if err := f.accounts.LinkWhatsApp(ctx, state.UserID, number); err != nil {
		return "", fmt.Errorf("failed to link whatsapp: %w", err)
	}
	return f.catalog.Message(i18n.MsgWhatsAppLinked, state.Language, number), nil
}
