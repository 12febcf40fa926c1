// Package banking holds the command side of the assistant: the external
// account API contract, fraud scoring, OTP step-up and the orchestrator that
// ties them together.
package banking

import (
	"context"
	"errors"

	"github.com/jason-slatt/cameroon-voice-ai/internal/domain/models"
)

// ErrAccountNotFound is returned by account lookups when no account exists
// for the given identifier.
var ErrAccountNotFound = errors.New("account not found")

// AccountAPI is the external banking ledger. Implemented by the HTTP client
// in production and by the in-repo mock for development and tests. All
// failures beyond the client's own bounded retry surface as errors.
type AccountAPI interface {
	AccountByPhone(ctx context.Context, phoneNumber string) (*models.Account, error)
	CreateAccount(ctx context.Context, phoneNumber, fullName string, age int, sex, groupement string) (*models.Account, error)
	GetBalance(ctx context.Context, userID string) (float64, error)

	BeneficiaryExists(ctx context.Context, userID, name string) (bool, error)
	AddBeneficiary(ctx context.Context, userID, name, iban string) (*models.BeneficiaryResult, error)
	ExecuteTransfer(ctx context.Context, userID string, amount float64, currency, beneficiary string) (*models.TransferResult, error)
	Withdraw(ctx context.Context, userID string, amount float64, currency string) (*models.TransferResult, error)
	Deposit(ctx context.Context, userID string, amount float64, currency string) (*models.TransferResult, error)
	PayBill(ctx context.Context, userID string, amount float64, biller string) (*models.BillResult, error)

	TransactionHistory(ctx context.Context, userID string, limit int) ([]models.Transaction, error)
	AccountInfo(ctx context.Context, userID string) (*models.AccountInfo, error)
	BlockCard(ctx context.Context, userID string) (*models.Card, error)
	SetDailyLimit(ctx context.Context, userID string, limit float64) error

	DashboardSummary(ctx context.Context, userID string) (*models.DashboardSummary, error)
	RegistrationStats(ctx context.Context, userID string) (*models.RegistrationStats, error)
	RequestPasswordReset(ctx context.Context, userID, phoneNumber string) error
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error
	LinkWhatsApp(ctx context.Context, userID, phoneNumber string) error
}
