package flow

import (
	"context"
	"fmt"

	"github.com/jason-slatt/cameroon-voice-ai/internal/domain/models"
	"github.com/jason-slatt/cameroon-voice-ai/internal/domain/services/i18n"
)

// Collected-data keys shared by the money flows.
const (
	dataAmount = "amount"
)

// MoneyFlow is the shared shape of withdrawal and top-up: one amount within
// configured bounds, one confirmation, then the orchestrator executes.
type MoneyFlow struct {
	base
	flowType  models.FlowType
	intent    models.Intent
	minAmount float64
	maxAmount float64
	currency  string
	// withdrawals must not exceed the cached balance; deposits may
	checkBalance bool
	// re-prompt used when the user declines the confirmation
	redoMsg  i18n.MessageID
	executor Executor
}

func NewWithdrawalFlow(deps Deps) *MoneyFlow {
	return &MoneyFlow{
		base:         base{catalog: deps.Catalog, logger: deps.Logger.WithFlow(string(models.FlowWithdrawal))},
		flowType:     models.FlowWithdrawal,
		intent:       models.IntentWithdrawal,
		minAmount:    deps.Banking.WithdrawalMin,
		maxAmount:    deps.Banking.WithdrawalMax,
		currency:     deps.Currency,
		checkBalance: true,
		redoMsg:      i18n.MsgWithdrawRedo,
		executor:     deps.Executor,
	}
}

func NewTopUpFlow(deps Deps) *MoneyFlow {
	return &MoneyFlow{
		base:      base{catalog: deps.Catalog, logger: deps.Logger.WithFlow(string(models.FlowTopUp))},
		flowType:  models.FlowTopUp,
		intent:    models.IntentTopUp,
		minAmount: deps.Banking.TopUpMin,
		maxAmount: deps.Banking.TopUpMax,
		currency:  deps.Currency,
		redoMsg:   i18n.MsgDepositRedo,
		executor:  deps.Executor,
	}
}

func (f *MoneyFlow) Type() models.FlowType { return f.flowType }

func (f *MoneyFlow) Start(_ context.Context, state *models.ConversationState) (string, error) {
	state.StartFlow(f.flowType, models.StepAskAmount)
	return f.catalog.Prompt(f.flowType, models.StepAskAmount, state.Language,
		formatAmount(f.minAmount), formatAmount(f.maxAmount), f.currency), nil
}

func (f *MoneyFlow) Process(_ context.Context, state *models.ConversationState, input string) (Result, error) {
	switch state.FlowStep {
	case models.StepAskAmount:
		amount, ok := parseAmount(input)
		if !ok {
			return f.reprompt(state, i18n.MsgInvalidAmount), nil
		}
		if amount < f.minAmount || amount > f.maxAmount {
			return f.reprompt(state, i18n.MsgAmountRange,
				formatAmount(f.minAmount), formatAmount(f.maxAmount), f.currency), nil
		}
		if f.checkBalance && state.BalanceKnown && amount > state.AccountBalance {
			return f.reprompt(state, i18n.MsgInsufficient,
				formatAmount(state.AccountBalance), f.currency), nil
		}
		state.AddData(dataAmount, formatAmount(amount))
		state.NextStep(models.StepConfirm)
		return Result{Response: f.catalog.Prompt(f.flowType, models.StepConfirm, state.Language,
			formatAmount(amount), f.currency)}, nil

	case models.StepConfirm:
		yes, ok := parseYesNo(input)
		if !ok {
			return f.reprompt(state, i18n.MsgYesOrNo), nil
		}
		if !yes {
			state.DropData(dataAmount)
			state.NextStep(models.StepAskAmount)
			return Result{Response: f.catalog.Message(f.redoMsg, state.Language)}, nil
		}
		state.NextStep(models.StepComplete)
		return Result{Completed: true}, nil
	}

	return Result{}, fmt.Errorf("%s flow: unexpected step %q", f.flowType, state.FlowStep)
}

func (f *MoneyFlow) Complete(ctx context.Context, state *models.ConversationState) (string, error) {
	result, err := f.executor.Execute(ctx, models.CommandRequest{
		Intent: f.intent,
		Entities: models.Entities{
			models.EntityAmount:   state.Data(dataAmount),
			models.EntityCurrency: f.currency,
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
