package models

import (
	"time"
)

// FlowType identifies the multi-turn dialog a conversation is currently in.
type FlowType string

const (
	FlowNone            FlowType = "none"
	FlowAccountCreation FlowType = "account_creation"
	FlowWithdrawal      FlowType = "withdrawal"
	FlowTopUp           FlowType = "topup"
	FlowTransfer        FlowType = "transfer"
	FlowDashboard       FlowType = "dashboard"
	FlowPasswordReset   FlowType = "password_reset"
	FlowPasswordChange  FlowType = "password_change"
	FlowWhatsAppLink    FlowType = "whatsapp_link"
)

// FlowStep identifies the current step within the active flow. Steps are
// scoped to a flow; a step value is only meaningful while FlowType != FlowNone.
type FlowStep string

const (
	StepNone     FlowStep = ""
	StepConfirm  FlowStep = "confirm"
	StepComplete FlowStep = "complete"

	// Account creation
	StepAskName       FlowStep = "ask_name"
	StepAskAge        FlowStep = "ask_age"
	StepAskSex        FlowStep = "ask_sex"
	StepAskGroupement FlowStep = "ask_groupement"

	// Money movement
	StepAskAmount   FlowStep = "ask_amount"
	StepAskReceiver FlowStep = "ask_receiver"
	StepAskPIN      FlowStep = "ask_pin"

	// Dashboard
	StepAskDashboardAction FlowStep = "ask_dashboard_action"

	// Password flows
	StepConfirmPhone   FlowStep = "confirm_phone"
	StepAskOldPassword FlowStep = "ask_old_password"
	StepAskNewPassword FlowStep = "ask_new_password"

	// WhatsApp linking
	StepAskWhatsAppChoice FlowStep = "ask_whatsapp_choice"
	StepAskWhatsAppNumber FlowStep = "ask_whatsapp_number"
)

// ConversationState is the per-conversation dialog state. One record exists
// per conversation ID; the store applies a TTL so abandoned conversations
// disappear on their own.
type ConversationState struct {
	ConversationID string `json:"conversation_id"`
	UserID         string `json:"user_id"`
	PhoneNumber    string `json:"phone_number"`

	FlowType FlowType `json:"flow_type"`
	FlowStep FlowStep `json:"flow_step"`

	CollectedData map[string]string `json:"collected_data"`

	// Cached from the account API. May be stale; must be re-validated before
	// money movement.
	AccountID      string  `json:"account_id,omitempty"`
	AccountBalance float64 `json:"account_balance"`
	BalanceKnown   bool    `json:"balance_known"`

	// Memoizes a single account-existence lookup per conversation so repeated
	// "create account" utterances cannot race a duplicate registration.
	PhoneChecked  bool `json:"phone_checked"`
	AccountExists bool `json:"account_exists"`

	// Detected on the first turn and sticky for the rest of the conversation.
	Language string `json:"language"`

	Attempts    int `json:"attempts"`
	MaxAttempts int `json:"max_attempts"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewConversationState creates a fresh state with no active flow.
func NewConversationState(conversationID, userID, phoneNumber string, maxAttempts int) *ConversationState {
	now := time.Now().UTC()
	return &ConversationState{
		ConversationID: conversationID,
		UserID:         userID,
		PhoneNumber:    phoneNumber,
		FlowType:       FlowNone,
		FlowStep:       StepNone,
		CollectedData:  make(map[string]string),
		MaxAttempts:    maxAttempts,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// InFlow reports whether a multi-turn flow is active.
func (s *ConversationState) InFlow() bool {
	return s.FlowType != FlowNone
}

// StartFlow enters a flow at the given step, clearing collected data and the
// attempt counter atomically with the flow change.
func (s *ConversationState) StartFlow(flowType FlowType, step FlowStep) {
	s.FlowType = flowType
	s.FlowStep = step
	s.CollectedData = make(map[string]string)
	s.Attempts = 0
	s.UpdatedAt = time.Now().UTC()
}

// ResetFlow returns the conversation to the no-flow state, clearing collected
// data and attempts.
func (s *ConversationState) ResetFlow() {
	s.FlowType = FlowNone
	s.FlowStep = StepNone
	s.CollectedData = make(map[string]string)
	s.Attempts = 0
	s.UpdatedAt = time.Now().UTC()
}

// NextStep advances to the given step and resets the attempt counter.
func (s *ConversationState) NextStep(step FlowStep) {
	s.FlowStep = step
	s.Attempts = 0
	s.UpdatedAt = time.Now().UTC()
}

// AddData records a collected field value.
func (s *ConversationState) AddData(key, value string) {
	if s.CollectedData == nil {
		s.CollectedData = make(map[string]string)
	}
	s.CollectedData[key] = value
	s.UpdatedAt = time.Now().UTC()
}

// Data returns a collected field value, or "" when absent.
func (s *ConversationState) Data(key string) string {
	return s.CollectedData[key]
}

// DropData removes a collected field value.
func (s *ConversationState) DropData(keys ...string) {
	for _, k := range keys {
		delete(s.CollectedData, k)
	}
	s.UpdatedAt = time.Now().UTC()
}

// IncrementAttempts bumps the per-step retry counter and reports whether the
// budget is exhausted.
func (s *ConversationState) IncrementAttempts() bool {
	s.Attempts++
	s.UpdatedAt = time.Now().UTC()
	return s.Attempts >= s.MaxAttempts
}

// SetBalance caches account identity and balance from the account API.
func (s *ConversationState) SetBalance(accountID string, balance float64) {
	s.AccountID = accountID
	s.AccountBalance = balance
	s.BalanceKnown = true
	s.UpdatedAt = time.Now().UTC()
}
