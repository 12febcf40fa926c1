package models

import "time"

// Account is the account API's view of a customer.
type Account struct {
	ID            string  `json:"id"`
	AccountNumber string  `json:"account_number"`
	FullName      string  `json:"full_name"`
	PhoneNumber   string  `json:"phone_number"`
	Balance       float64 `json:"balance"`
	Currency      string  `json:"currency"`
	Status        string  `json:"status"`
}

// AccountInfo holds the bank coordinates returned for a RIB/IBAN request.
type AccountInfo struct {
	IBAN   string `json:"iban"`
	BIC    string `json:"bic"`
	Holder string `json:"holder"`
}

// TransferResult is the outcome of an executed transfer.
type TransferResult struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transaction_id,omitempty"`
	Error         string `json:"error,omitempty"`
}

// BeneficiaryResult is the outcome of adding a beneficiary.
type BeneficiaryResult struct {
	Success       bool   `json:"success"`
	BeneficiaryID string `json:"beneficiary_id,omitempty"`
	Error         string `json:"error,omitempty"`
}

// BillResult is the outcome of a bill payment.
type BillResult struct {
	Success   bool   `json:"success"`
	Reference string `json:"reference,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Transaction is one account API ledger entry.
type Transaction struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Amount      float64   `json:"amount"`
	Currency    string    `json:"currency"`
	Status      string    `json:"status"`
	Description string    `json:"description,omitempty"`
	Reference   string    `json:"reference,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Card is one payment card attached to an account.
type Card struct {
	CardID     string `json:"card_id"`
	CardNumber string `json:"card_number"` // masked
	CardType   string `json:"card_type"`
	Status     string `json:"status"`
}

// DashboardSummary aggregates platform-wide transaction totals.
type DashboardSummary struct {
	TotalAmount float64 `json:"total_amount"`
	Currency    string  `json:"currency"`
	Count       int     `json:"count"`
	Period      string  `json:"period,omitempty"`
}

// RegistrationStats aggregates platform-wide signups.
type RegistrationStats struct {
	TotalRegistrations int            `json:"total_registrations"`
	Period             string         `json:"period,omitempty"`
	Breakdown          map[string]int `json:"breakdown,omitempty"`
}
