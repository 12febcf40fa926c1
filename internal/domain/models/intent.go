package models

// Intent is the closed category of user request a dialog turn maps to.
type Intent string

const (
	IntentAccountCreation    Intent = "account_creation"
	IntentViewAccount        Intent = "view_account"
	IntentWithdrawal         Intent = "withdrawal"
	IntentTopUp              Intent = "topup"
	IntentTransfer           Intent = "transfer"
	IntentBalanceInquiry     Intent = "balance_inquiry"
	IntentTransactionHistory Intent = "transaction_history"
	IntentDashboard          Intent = "dashboard"
	IntentPasswordReset      Intent = "password_reset"
	IntentPasswordChange     Intent = "password_change"
	IntentWhatsAppLink       Intent = "whatsapp_link"
	IntentPayBill            Intent = "pay_bill"
	IntentAddBeneficiary     Intent = "add_beneficiary"
	IntentBlockCard          Intent = "block_card"
	IntentViewBankDetails    Intent = "view_bank_details"
	IntentChangeLimit        Intent = "change_limit"
	IntentGreeting           Intent = "greeting"
	IntentGoodbye            Intent = "goodbye"
	IntentConfirmation       Intent = "confirmation"
	IntentDenial             Intent = "denial"
	IntentOffTopic           Intent = "off_topic"
	IntentGeneralSupport     Intent = "general_support"
)

// Classification is one classifier result: the best intent and its
// confidence in [0,1].
type Classification struct {
	Intent     Intent  `json:"intent"`
	Confidence float64 `json:"confidence"`
}
