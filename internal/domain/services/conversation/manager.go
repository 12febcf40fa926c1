// Package conversation drives one dialog turn end to end: language
// detection, cancellation, flow delegation, intent classification and
// routing into flows or direct command execution.
package conversation

import (
	"context"
	"errors"
	"strings"

	"github.com/jason-slatt/cameroon-voice-ai/internal/config"
	"github.com/jason-slatt/cameroon-voice-ai/internal/domain/models"
	"github.com/jason-slatt/cameroon-voice-ai/internal/domain/services/audit"
	"github.com/jason-slatt/cameroon-voice-ai/internal/domain/services/banking"
	"github.com/jason-slatt/cameroon-voice-ai/internal/domain/services/flow"
	"github.com/jason-slatt/cameroon-voice-ai/internal/domain/services/i18n"
	"github.com/jason-slatt/cameroon-voice-ai/internal/domain/services/nlu"
	"github.com/jason-slatt/cameroon-voice-ai/internal/domain/services/storage"
	"github.com/jason-slatt/cameroon-voice-ai/pkg/logger"
)

// cancelWords abort the active flow when they dominate a short message.
var cancelWords = map[string]bool{
	"cancel": true, "stop": true, "quit": true, "exit": true, "nevermind": true,
	"annuler": true, "annule": true, "arrête": true, "arrete": true, "laisse": true,
}

const cancelMaxWords = 4

// CommandService executes fully-specified commands and resolves pending
// OTP challenges. Implemented by the banking orchestrator.
type CommandService interface {
	Execute(ctx context.Context, req models.CommandRequest) (*models.CommandResult, error)
	VerifyOTP(ctx context.Context, userID, conversationID, code, lang string) (*models.CommandResult, error)
}

// AccountLookup resolves a phone number to an existing account, if any.
type AccountLookup interface {
	AccountByPhone(ctx context.Context, phoneNumber string) (*models.Account, error)
}

// Reply is the user-facing outcome of one dialog turn.
type Reply struct {
	ConversationID string               `json:"conversation_id"`
	Response       string               `json:"response"`
	Intent         models.Intent        `json:"intent,omitempty"`
	Language       string               `json:"language"`
	InFlow         bool                 `json:"in_flow"`
	Status         models.CommandStatus `json:"status,omitempty"`
	RequiresOTP    bool                 `json:"requires_otp,omitempty"`
}

// Manager owns the per-conversation dialog loop.
type Manager struct {
	store      storage.ConversationStore
	classifier *nlu.Classifier
	extractor  *nlu.Extractor
	registry   *flow.Registry
	commands   CommandService
	accounts   AccountLookup
	catalog    *i18n.Catalog
	audit      audit.Logger
	cfg        config.DialogConfig
	logger     *logger.Logger
}

// NewManager wires the dialog loop.
func NewManager(
	store storage.ConversationStore,
	classifier *nlu.Classifier,
	extractor *nlu.Extractor,
	registry *flow.Registry,
	commands CommandService,
	accounts AccountLookup,
	catalog *i18n.Catalog,
	auditLog audit.Logger,
	cfg config.DialogConfig,
	log *logger.Logger,
) *Manager {
	return &Manager{
		store:      store,
		classifier: classifier,
		extractor:  extractor,
		registry:   registry,
		commands:   commands,
		accounts:   accounts,
		catalog:    catalog,
		audit:      auditLog,
		cfg:        cfg,
		logger:     log.WithComponent("conversation"),
	}
}

// ProcessMessage handles one user message and returns the reply. State is
// loaded (or created), mutated, and persisted on every path out.
func (m *Manager) ProcessMessage(ctx context.Context, conversationID, userID, phoneNumber, text string) (*Reply, error) {
	state, err := m.loadOrCreate(ctx, conversationID, userID, phoneNumber)
	if err != nil {
		return nil, err
	}

	// Language is detected once and sticks for the whole conversation.
	if state.Language == "" {
		state.Language = nlu.DetectLanguage(text)
	}
	log := m.logger.WithConversationID(conversationID).WithUserID(userID)

	text = strings.TrimSpace(text)
	if text == "" {
		return m.finish(ctx, state, &Reply{
			Response: m.catalog.Message(i18n.MsgGeneralSupport, state.Language),
		})
	}

	if state.InFlow() {
		return m.continueFlow(ctx, state, text, log)
	}

	classification := m.classifier.Classify(text)
	log.Debug().
		Str("intent", string(classification.Intent)).
		Float64("confidence", classification.Confidence).
		Msg("message classified")

	return m.route(ctx, state, classification.Intent, text, log)
}

// VerifyOTP resolves a pending step-up challenge for the conversation.
func (m *Manager) VerifyOTP(ctx context.Context, conversationID, userID, code string) (*Reply, error) {
	lang := i18n.English
	if state, err := m.store.Get(ctx, conversationID); err == nil && state.Language != "" {
		lang = state.Language
	}

	result, err := m.commands.VerifyOTP(ctx, userID, conversationID, code, lang)
	if err != nil {
		return nil, err
	}
	return &Reply{
		ConversationID: conversationID,
		Response:       result.Response,
		Language:       lang,
		Status:         result.Status,
	}, nil
}

func (m *Manager) loadOrCreate(ctx context.Context, conversationID, userID, phoneNumber string) (*models.ConversationState, error) {
	state, err := m.store.Get(ctx, conversationID)
	switch {
	case err == nil:
		return state, nil
	case errors.Is(err, storage.ErrNotFound):
		return models.NewConversationState(conversationID, userID, phoneNumber, m.cfg.MaxAttempts), nil
	default:
		return nil, err
	}
}

// continueFlow feeds one message to the active flow, honoring cancellation
// and running Complete when the flow reports it is done.
func (m *Manager) continueFlow(ctx context.Context, state *models.ConversationState, text string, log *logger.Logger) (*Reply, error) {
	if isCancellation(text) {
		state.ResetFlow()
		return m.finish(ctx, state, &Reply{
			Response: m.catalog.Message(i18n.MsgCancelled, state.Language),
		})
	}

	f, ok := m.registry.Lookup(state.FlowType)
	if !ok {
		// Unknown flow in stored state, likely from an old deployment.
		log.Warn().Str("flow", string(state.FlowType)).Msg("no handler for stored flow")
		state.ResetFlow()
		return m.finish(ctx, state, &Reply{
			Response: m.catalog.Message(i18n.MsgGeneralSupport, state.Language),
		})
	}

	result, err := f.Process(ctx, state, text)
	if err != nil {
		return m.flowFailure(ctx, state, f, err)
	}
	if !result.Completed {
		return m.finish(ctx, state, &Reply{Response: result.Response})
	}

	response, err := f.Complete(ctx, state)
	if err != nil {
		return m.flowFailure(ctx, state, f, err)
	}
	state.ResetFlow()
	return m.finish(ctx, state, &Reply{Response: response})
}

func (m *Manager) flowFailure(ctx context.Context, state *models.ConversationState, f flow.Flow, cause error) (*Reply, error) {
	m.auditOrWarn(m.audit.LogError(ctx, state.UserID, "flow_"+string(f.Type()), cause, map[string]string{
		"conversation_id": state.ConversationID,
		"step":            string(state.FlowStep),
	}))
	state.ResetFlow()
	return m.finish(ctx, state, &Reply{
		Response: m.catalog.Message(i18n.MsgServiceError, state.Language),
	})
}

// route dispatches a classified intent outside any flow.
func (m *Manager) route(ctx context.Context, state *models.ConversationState, intent models.Intent, text string, log *logger.Logger) (*Reply, error) {
	lang := state.Language

	switch intent {
	case models.IntentGreeting:
		return m.finish(ctx, state, &Reply{Intent: intent, Response: m.catalog.Message(i18n.MsgGreeting, lang)})
	case models.IntentGoodbye:
		return m.finish(ctx, state, &Reply{Intent: intent, Response: m.catalog.Message(i18n.MsgGoodbye, lang)})
	case models.IntentOffTopic:
		return m.finish(ctx, state, &Reply{Intent: intent, Response: m.catalog.Message(i18n.MsgOffTopic, lang)})
	case models.IntentConfirmation, models.IntentDenial:
		// A bare yes or no with nothing pending.
		return m.finish(ctx, state, &Reply{Intent: intent, Response: m.catalog.Message(i18n.MsgGeneralSupport, lang)})
	case models.IntentGeneralSupport:
		return m.finish(ctx, state, &Reply{Intent: intent, Response: m.catalog.Message(i18n.MsgGeneralSupport, lang)})

	case models.IntentAccountCreation:
		return m.startAccountCreation(ctx, state, intent)

	case models.IntentWithdrawal, models.IntentTopUp:
		return m.startMoneyFlow(ctx, state, intent, text)

	case models.IntentTransfer:
		return m.handleTransfer(ctx, state, intent, text, log)

	case models.IntentDashboard, models.IntentPasswordReset, models.IntentPasswordChange, models.IntentWhatsAppLink:
		return m.startFlow(ctx, state, intent)

	case models.IntentBalanceInquiry, models.IntentTransactionHistory,
		models.IntentViewAccount, models.IntentViewBankDetails, models.IntentBlockCard:
		return m.execute(ctx, state, intent, m.extractor.Extract(text))

	case models.IntentPayBill, models.IntentAddBeneficiary, models.IntentChangeLimit:
		entities := m.extractor.Extract(text)
		if valid, missing := m.extractor.Validate(intent, entities); !valid {
			return m.finish(ctx, state, &Reply{Intent: intent, Response: m.missingEntityMessage(missing, lang)})
		}
		return m.execute(ctx, state, intent, entities)
	}

	return m.finish(ctx, state, &Reply{Intent: intent, Response: m.catalog.Message(i18n.MsgGeneralSupport, lang)})
}

// startAccountCreation refuses when the phone already has an account.
func (m *Manager) startAccountCreation(ctx context.Context, state *models.ConversationState, intent models.Intent) (*Reply, error) {
	reply, err := m.ensureAccountChecked(ctx, state)
	if err != nil || reply != nil {
		return reply, err
	}
	if state.AccountExists {
		return m.finish(ctx, state, &Reply{Intent: intent, Response: m.catalog.Message(i18n.MsgAccountExists, state.Language)})
	}
	return m.startFlow(ctx, state, intent)
}

// startMoneyFlow requires an account, then enters the flow. When the message
// already carries an amount the flow consumes it immediately instead of
// asking again.
func (m *Manager) startMoneyFlow(ctx context.Context, state *models.ConversationState, intent models.Intent, text string) (*Reply, error) {
	reply, err := m.requireAccount(ctx, state, intent)
	if err != nil || reply != nil {
		return reply, err
	}

	f, ok := m.registry.ForIntent(intent)
	if !ok {
		return m.finish(ctx, state, &Reply{Intent: intent, Response: m.catalog.Message(i18n.MsgGeneralSupport, state.Language)})
	}
	prompt, err := f.Start(ctx, state)
	if err != nil {
		return m.flowFailure(ctx, state, f, err)
	}

	if _, ok := nlu.ParseAmount(text); ok {
		result, err := f.Process(ctx, state, text)
		if err != nil {
			return m.flowFailure(ctx, state, f, err)
		}
		return m.finish(ctx, state, &Reply{Intent: intent, InFlow: true, Response: result.Response})
	}
	return m.finish(ctx, state, &Reply{Intent: intent, InFlow: true, Response: prompt})
}

// handleTransfer executes directly when the message is fully specified,
// otherwise walks the user through the transfer flow.
func (m *Manager) handleTransfer(ctx context.Context, state *models.ConversationState, intent models.Intent, text string, log *logger.Logger) (*Reply, error) {
	reply, err := m.requireAccount(ctx, state, intent)
	if err != nil || reply != nil {
		return reply, err
	}

	entities := m.extractor.Extract(text)
	if valid, _ := m.extractor.Validate(intent, entities); valid {
		log.Debug().Msg("transfer fully specified, executing directly")
		return m.execute(ctx, state, intent, entities)
	}
	return m.startFlow(ctx, state, intent)
}

// startFlow enters the flow mapped to the intent and returns its first prompt.
func (m *Manager) startFlow(ctx context.Context, state *models.ConversationState, intent models.Intent) (*Reply, error) {
	f, ok := m.registry.ForIntent(intent)
	if !ok {
		return m.finish(ctx, state, &Reply{Intent: intent, Response: m.catalog.Message(i18n.MsgGeneralSupport, state.Language)})
	}
	prompt, err := f.Start(ctx, state)
	if err != nil {
		return m.flowFailure(ctx, state, f, err)
	}
	return m.finish(ctx, state, &Reply{Intent: intent, InFlow: true, Response: prompt})
}

// execute hands a fully-specified command to the orchestrator.
func (m *Manager) execute(ctx context.Context, state *models.ConversationState, intent models.Intent, entities models.Entities) (*Reply, error) {
	result, err := m.commands.Execute(ctx, models.CommandRequest{
		Intent:         intent,
		Entities:       entities,
		UserID:         state.UserID,
		ConversationID: state.ConversationID,
		PhoneNumber:    state.PhoneNumber,
		Language:       state.Language,
	})
	if err != nil {
		return nil, err
	}
	if result.Status == models.StatusSuccess && intent == models.IntentBalanceInquiry {
		state.SetBalance(state.AccountID, result.Balance)
	}
	return m.finish(ctx, state, &Reply{
		Intent:      intent,
		Response:    result.Response,
		Status:      result.Status,
		RequiresOTP: result.RequiresOTP,
	})
}

// requireAccount gates money movement on a verified account.
func (m *Manager) requireAccount(ctx context.Context, state *models.ConversationState, intent models.Intent) (*Reply, error) {
	reply, err := m.ensureAccountChecked(ctx, state)
	if err != nil || reply != nil {
		return reply, err
	}
	if !state.AccountExists {
		return m.finish(ctx, state, &Reply{Intent: intent, Response: m.catalog.Message(i18n.MsgAccountRequired, state.Language)})
	}
	return nil, nil
}

// ensureAccountChecked performs the one account-existence lookup per
// conversation. A non-nil reply means the turn should end with it.
func (m *Manager) ensureAccountChecked(ctx context.Context, state *models.ConversationState) (*Reply, error) {
	if state.PhoneChecked {
		return nil, nil
	}

	account, err := m.accounts.AccountByPhone(ctx, state.PhoneNumber)
	switch {
	case err == nil:
		state.PhoneChecked = true
		state.AccountExists = true
		state.SetBalance(account.ID, account.Balance)
		if state.UserID == "" {
			state.UserID = account.ID
		}
		return nil, nil
	case errors.Is(err, banking.ErrAccountNotFound):
		state.PhoneChecked = true
		state.AccountExists = false
		return nil, nil
	default:
		m.auditOrWarn(m.audit.LogError(ctx, state.UserID, "account_lookup", err, map[string]string{
			"conversation_id": state.ConversationID,
		}))
		return m.finish(ctx, state, &Reply{
			Response: m.catalog.Message(i18n.MsgAccountCheckFailed, state.Language),
		})
	}
}

// finish persists the state and stamps the reply with conversation fields.
func (m *Manager) finish(ctx context.Context, state *models.ConversationState, reply *Reply) (*Reply, error) {
	if err := m.store.Save(ctx, state); err != nil {
		m.logger.Warn().Err(err).Str("conversation_id", state.ConversationID).Msg("failed to persist conversation state")
	}
	reply.ConversationID = state.ConversationID
	reply.Language = state.Language
	reply.InFlow = reply.InFlow || state.InFlow()
	return reply, nil
}

func (m *Manager) missingEntityMessage(missing []string, lang string) string {
	for _, entity := range missing {
		if entity == models.EntityAmount {
			return m.catalog.Message(i18n.MsgInvalidAmount, lang)
		}
	}
	return m.catalog.Message(i18n.MsgGeneralSupport, lang)
}

func (m *Manager) auditOrWarn(err error) {
	if err != nil {
		m.logger.Warn().Err(err).Msg("audit write failed")
	}
}

// isCancellation reports whether a short message is an explicit abort.
func isCancellation(text string) bool {
	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 || len(words) > cancelMaxWords {
		return false
	}
	for _, w := range words {
		if cancelWords[strings.Trim(w, ".,!?")] {
			return true
		}
	}
	return false
}
