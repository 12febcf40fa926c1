package models

// CommandStatus is the terminal state of one orchestrated command.
type CommandStatus string

const (
	StatusSuccess CommandStatus = "success"
	StatusPending CommandStatus = "pending"
	StatusFailed  CommandStatus = "failed"
)

// CommandRequest is one fully-specified command handed to the orchestrator,
// typically assembled by a completed flow or a direct single-turn intent.
type CommandRequest struct {
	Intent         Intent   `json:"intent"`
	Entities       Entities `json:"entities"`
	UserID         string   `json:"user_id"`
	ConversationID string   `json:"conversation_id"`
	PhoneNumber    string   `json:"phone_number,omitempty"`
	Language       string   `json:"language,omitempty"`
}

// CommandResult is the orchestrator's reply for one command. Pending results
// carry either an OTP challenge (RequiresOTP) or a follow-up action such as
// adding an unknown beneficiary (ActionRequired).
type CommandResult struct {
	Response       string        `json:"response"`
	Status         CommandStatus `json:"status"`
	RequiresOTP    bool          `json:"requires_otp,omitempty"`
	ActionRequired string        `json:"action_required,omitempty"`
	TransactionID  string        `json:"transaction_id,omitempty"`
	Reference      string        `json:"reference,omitempty"`
	Balance        float64       `json:"balance,omitempty"`
	Error          string        `json:"error,omitempty"`
}
