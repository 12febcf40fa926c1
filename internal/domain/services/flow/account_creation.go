package flow

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jason-slatt/cameroon-voice-ai/internal/domain/models"
	"github.com/jason-slatt/cameroon-voice-ai/internal/domain/services/i18n"
	"github.com/jason-slatt/cameroon-voice-ai/internal/domain/services/nlu"
)

// Age bounds for account holders.
const (
	minAge = 18
	maxAge = 120
)

// Collected-data keys for account creation.
const (
	dataName       = "name"
	dataAge        = "age"
	dataSex        = "sex"
	dataGroupement = "groupement"
)

// AccountCreationFlow registers a new customer: name, age, sex and savings
// group, then a final confirmation before the account API call.
type AccountCreationFlow struct {
	base
	accounts AccountGateway
}

func NewAccountCreationFlow(deps Deps) *AccountCreationFlow {
	return &AccountCreationFlow{
		base:     base{catalog: deps.Catalog, logger: deps.Logger.WithFlow(string(models.FlowAccountCreation))},
		accounts: deps.Accounts,
	}
}

func (f *AccountCreationFlow) Type() models.FlowType { return models.FlowAccountCreation }

func (f *AccountCreationFlow) Start(_ context.Context, state *models.ConversationState) (string, error) {
	state.StartFlow(models.FlowAccountCreation, models.StepAskName)
	return f.catalog.Prompt(models.FlowAccountCreation, models.StepAskName, state.Language), nil
}

func (f *AccountCreationFlow) Process(_ context.Context, state *models.ConversationState, input string) (Result, error) {
	switch state.FlowStep {
	case models.StepAskName:
		name, ok := nlu.ExtractName(input)
		if !ok {
			return f.reprompt(state, i18n.MsgInvalidName), nil
		}
		state.AddData(dataName, name)
		state.NextStep(models.StepAskAge)
		return Result{Response: f.catalog.Prompt(models.FlowAccountCreation, models.StepAskAge, state.Language, name)}, nil

	case models.StepAskAge:
		age, ok := parseAge(input)
		if !ok || age < minAge || age > maxAge {
			return f.reprompt(state, i18n.MsgInvalidAge), nil
		}
		state.AddData(dataAge, strconv.Itoa(age))
		state.NextStep(models.StepAskSex)
		return Result{Response: f.catalog.Prompt(models.FlowAccountCreation, models.StepAskSex, state.Language)}, nil

	case models.StepAskSex:
		sex, ok := parseSex(input)
		if !ok {
			return f.reprompt(state, i18n.MsgInvalidSex), nil
		}
		state.AddData(dataSex, sex)
		state.NextStep(models.StepAskGroupement)
		return Result{Response: f.catalog.Prompt(models.FlowAccountCreation, models.StepAskGroupement, state.Language)}, nil

	case models.StepAskGroupement:
		groupement := strings.TrimSpace(input)
		if groupement == "" {
			return f.reprompt(state, i18n.MsgInvalidChoice), nil
		}
		state.AddData(dataGroupement, groupement)
		state.NextStep(models.StepConfirm)
		return Result{Response: f.catalog.Prompt(models.FlowAccountCreation, models.StepConfirm, state.Language,
			state.Data(dataName), state.Data(dataAge), state.Data(dataSex), state.Data(dataGroupement))}, nil

	case models.StepConfirm:
		yes, ok := parseYesNo(input)
		if !ok {
			return f.reprompt(state, i18n.MsgYesOrNo), nil
		}
		if !yes {
			state.NextStep(models.StepAskName)
			return Result{Response: f.catalog.Message(i18n.MsgCorrectName, state.Language)}, nil
		}
		state.NextStep(models.StepComplete)
		return Result{Completed: true}, nil
	}

	return Result{}, fmt.Errorf("account creation flow: unexpected step %q", state.FlowStep)
}

func (f *AccountCreationFlow) Complete(ctx context.Context, state *models.ConversationState) (string, error) {
	age, _ := strconv.Atoi(state.Data(dataAge))
	account, err := f.accounts.CreateAccount(ctx, state.PhoneNumber, state.Data(dataName), age,
		state.Data(dataSex), state.Data(dataGroupement))
	if err != nil {
		return "", fmt.Errorf("failed to create account: %w", err)
	}

	state.AccountExists = true
	state.AccountID = account.ID

	f.logger.Info().
		Str("user_id", state.UserID).
		Str("account_id", account.ID).
		Msg("account created")

	return f.catalog.Message(i18n.MsgAccountCreated, state.Language, account.FullName, account.AccountNumber), nil
}
