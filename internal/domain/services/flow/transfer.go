package flow

import (
	"context"
	"fmt"

	"github.com/jason-slatt/cameroon-voice-ai/internal/domain/models"
	"github.com/jason-slatt/cameroon-voice-ai/internal/domain/services/i18n"
	"github.com/jason-slatt/cameroon-voice-ai/internal/domain/services/nlu"
)

// Collected-data keys for transfer.
const (
	dataReceiverPhone = "receiver_phone"
	dataPIN           = "pin"
)

// TransferFlow collects receiver, amount and PIN, confirms, then hands the
// command to the orchestrator for risk scoring and execution.
type TransferFlow struct {
	base
	minAmount float64
	maxAmount float64
	currency  string
	executor  Executor
}

func NewTransferFlow(deps Deps) *TransferFlow {
	return &TransferFlow{
		base:      base{catalog: deps.Catalog, logger: deps.Logger.WithFlow(string(models.FlowTransfer))},
		minAmount: deps.Banking.MinTransferAmount,
		maxAmount: deps.Banking.MaxTransferAmount,
		currency:  deps.Currency,
		executor:  deps.Executor,
	}
}

func (f *TransferFlow) Type() models.FlowType { return models.FlowTransfer }

func (f *TransferFlow) Start(_ context.Context, state *models.ConversationState) (string, error) {
	state.StartFlow(models.FlowTransfer, models.StepAskReceiver)
	return f.catalog.Prompt(models.FlowTransfer, models.StepAskReceiver, state.Language), nil
}

func (f *TransferFlow) Process(_ context.Context, state *models.ConversationState, input string) (Result, error) {
	switch state.FlowStep {
	case models.StepAskReceiver:
		phone, ok := nlu.ExtractPhone(input)
		if !ok {
			return f.reprompt(state, i18n.MsgInvalidPhone), nil
		}
		state.AddData(dataReceiverPhone, phone)
		state.NextStep(models.StepAskAmount)
		return Result{Response: f.catalog.Prompt(models.FlowTransfer, models.StepAskAmount, state.Language, phone)}, nil

	case models.StepAskAmount:
		amount, ok := parseAmount(input)
		if !ok {
			return f.reprompt(state, i18n.MsgInvalidAmount), nil
		}
		if amount < f.minAmount || amount > f.maxAmount {
			return f.reprompt(state, i18n.MsgAmountRange,
				formatAmount(f.minAmount), formatAmount(f.maxAmount), f.currency), nil
		}
		if state.BalanceKnown && amount > state.AccountBalance {
			return f.reprompt(state, i18n.MsgInsufficient,
				formatAmount(state.AccountBalance), f.currency), nil
		}
		state.AddData(dataAmount, formatAmount(amount))
		state.NextStep(models.StepAskPIN)
		return Result{Response: f.catalog.Prompt(models.FlowTransfer, models.StepAskPIN, state.Language)}, nil

	case models.StepAskPIN:
		pin, ok := nlu.ExtractPIN(input)
		if !ok {
			return f.reprompt(state, i18n.MsgInvalidPIN), nil
		}
		state.AddData(dataPIN, pin)
		state.NextStep(models.StepConfirm)
		return Result{Response: f.catalog.Prompt(models.FlowTransfer, models.StepConfirm, state.Language,
			state.Data(dataAmount), f.currency, state.Data(dataReceiverPhone))}, nil

	case models.StepConfirm:
		yes, ok := parseYesNo(input)
		if !ok {
			return f.reprompt(state, i18n.MsgYesOrNo), nil
		}
		if !yes {
			// "no" re-opens the amount; only "cancel" aborts.
			state.DropData(dataAmount, dataPIN)
			state.NextStep(models.StepAskAmount)
			return Result{Response: f.catalog.Message(i18n.MsgTransferRedo, state.Language)}, nil
		}
		state.NextStep(models.StepComplete)
		return Result{Completed: true}, nil
	}

	return Result{}, fmt.Errorf("transfer flow: unexpected step %q", state.FlowStep)
}

func (f *TransferFlow) Complete(ctx context.Context, state *models.ConversationState) (string, error) {
	result, err := f.executor.Execute(ctx, models.CommandRequest{
		Intent: models.IntentTransfer,
		Entities: models.Entities{
			models.EntityAmount:    state.Data(dataAmount),
			models.EntityCurrency:  f.currency,
			models.EntityRecipient: state.Data(dataReceiverPhone),
			models.EntityPIN:       state.Data(dataPIN),
		},
		UserID:         state.UserID,
		ConversationID: state.ConversationID,
		PhoneNumber:    state.PhoneNumber,
		Language:       state.Language,
	})
	if err != nil {
		return "", err
	}
	return result.Response, nil
}
