package flow

import (
	"context"
	"fmt"
	"strings"

	"github.com/jason-slatt/cameroon-voice-ai/internal/domain/models"
	"github.com/jason-slatt/cameroon-voice-ai/internal/domain/services/i18n"
)

const dataDashboardChoice = "dashboard_choice"

// Dashboard menu options.
const (
	dashboardSavings       = "1"
	dashboardTransactions  = "2"
	dashboardRegistrations = "3"
	dashboardFullSummary   = "4"
)

// DashboardFlow is a single-step menu over the read-only group statistics.
type DashboardFlow struct {
	base
	accounts AccountGateway
	currency string
}

func NewDashboardFlow(deps Deps) *DashboardFlow {
	return &DashboardFlow{
		base:     base{catalog: deps.Catalog, logger: deps.Logger.WithFlow(string(models.FlowDashboard))},
		accounts: deps.Accounts,
		currency: deps.Currency,
	}
}

func (f *DashboardFlow) Type() models.FlowType { return models.FlowDashboard }

func (f *DashboardFlow) Start(_ context.Context, state *models.ConversationState) (string, error) {
	state.StartFlow(models.FlowDashboard, models.StepAskDashboardAction)
	return f.catalog.Prompt(models.FlowDashboard, models.StepAskDashboardAction, state.Language), nil
}

func (f *DashboardFlow) Process(_ context.Context, state *models.ConversationState, input string) (Result, error) {
	if state.FlowStep != models.StepAskDashboardAction {
		return Result{}, fmt.Errorf("dashboard flow: unexpected step %q", state.FlowStep)
	}

	choice, ok := parseDashboardChoice(input)
	if !ok {
		return f.reprompt(state, i18n.MsgInvalidChoice), nil
	}
	state.AddData(dataDashboardChoice, choice)
	state.NextStep(models.StepComplete)
	return Result{Completed: true}, nil
}

func (f *DashboardFlow) Complete(ctx context.Context, state *models.ConversationState) (string, error) {
	choice := state.Data(dataDashboardChoice)

	if choice == dashboardRegistrations {
		stats, err := f.accounts.RegistrationStats(ctx, state.UserID)
		if err != nil {
			return "", fmt.Errorf("failed to load registration stats: %w", err)
		}
		return f.catalog.Message(i18n.MsgDashboardRegistrations, state.Language, stats.TotalRegistrations), nil
	}

	summary, err := f.accounts.DashboardSummary(ctx, state.UserID)
	if err != nil {
		return "", fmt.Errorf("failed to load dashboard summary: %w", err)
	}
	currency := summary.Currency
	if currency == "" {
		currency = f.currency
	}

	switch choice {
	case dashboardSavings:
		return f.catalog.Message(i18n.MsgDashboardSavings, state.Language,
			formatAmount(summary.TotalAmount), currency), nil
	case dashboardTransactions:
		return f.catalog.Message(i18n.MsgDashboardCount, state.Language, summary.Count), nil
	default:
		return f.catalog.Message(i18n.MsgDashboardSummary, state.Language,
			summary.Period, formatAmount(summary.TotalAmount), currency, summary.Count), nil
	}
}

func parseDashboardChoice(input string) (string, bool) {
	cleaned := strings.ToLower(strings.TrimSpace(input))
	switch {
	case strings.HasPrefix(cleaned, "1"), strings.Contains(cleaned, "saving"), strings.Contains(cleaned, "épargne"), strings.Contains(cleaned, "epargne"):
		return dashboardSavings, true
	case strings.HasPrefix(cleaned, "2"), strings.Contains(cleaned, "transaction"):
		return dashboardTransactions, true
	case strings.HasPrefix(cleaned, "3"), strings.Contains(cleaned, "registration"), strings.Contains(cleaned, "inscription"):
		return dashboardRegistrations, true
	case strings.HasPrefix(cleaned, "4"), strings.Contains(cleaned, "summary"), strings.Contains(cleaned, "résumé"), strings.Contains(cleaned, "resume"):
		return dashboardFullSummary, true
	}
	return "", false
}
