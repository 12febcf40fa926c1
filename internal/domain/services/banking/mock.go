package banking

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jason-slatt/cameroon-voice-ai/internal/domain/models"
)

// MockAccountAPI is the in-repo stand-in for the banking ledger. State lives
// in memory and is seeded with a couple of demo accounts so the assistant
// works end to end without the real backend.
type MockAccountAPI struct {
	mu            sync.Mutex
	accounts      map[string]*models.Account // keyed by user ID
	byPhone       map[string]string          // phone -> user ID
	beneficiaries map[string]map[string]bool // user ID -> set of names
	transactions  map[string][]models.Transaction
	dailyLimits   map[string]float64
}

// NewMockAccountAPI creates the mock with seeded demo data.
func NewMockAccountAPI() *MockAccountAPI {
	m := &MockAccountAPI{
		accounts:      make(map[string]*models.Account),
		byPhone:       make(map[string]string),
		beneficiaries: make(map[string]map[string]bool),
		transactions:  make(map[string][]models.Transaction),
		dailyLimits:   make(map[string]float64),
	}

	m.seed(&models.Account{
		ID:            "demo-user-1",
		AccountNumber: "CM2100045678",
		FullName:      "Marie Ngo",
		PhoneNumber:   "237671234567",
		Balance:       150000,
		Currency:      "XAF",
		Status:        "active",
	}, []string{"Paul", "698765432"})

	m.seed(&models.Account{
		ID:            "demo-user-2",
		AccountNumber: "CM2100045679",
		FullName:      "Jean Kamga",
		PhoneNumber:   "237699887766",
		Balance:       42000,
		Currency:      "XAF",
		Status:        "active",
	}, nil)

	return m
}

func (m *MockAccountAPI) seed(account *models.Account, beneficiaries []string) {
	m.accounts[account.ID] = account
	m.byPhone[account.PhoneNumber] = account.ID
	set := make(map[string]bool, len(beneficiaries))
	for _, b := range beneficiaries {
		set[strings.ToLower(b)] = true
	}
	m.beneficiaries[account.ID] = set
}

func (m *MockAccountAPI) AccountByPhone(_ context.Context, phoneNumber string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	userID, ok := m.byPhone[phoneNumber]
	if !ok {
		return nil, ErrAccountNotFound
	}
	clone := *m.accounts[userID]
	return &clone, nil
}

func (m *MockAccountAPI) CreateAccount(_ context.Context, phoneNumber, fullName string, age int, sex, groupement string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byPhone[phoneNumber]; exists {
		return nil, fmt.Errorf("account already exists for %s", phoneNumber)
	}

	account := &models.Account{
		ID:            uuid.NewString(),
		AccountNumber: "CM21" + uuid.NewString()[:8],
		FullName:      fullName,
		PhoneNumber:   phoneNumber,
		Balance:       0,
		Currency:      "XAF",
		Status:        "active",
	}
	m.accounts[account.ID] = account
	m.byPhone[phoneNumber] = account.ID
	m.beneficiaries[account.ID] = make(map[string]bool)

	clone := *account
	return &clone, nil
}

func (m *MockAccountAPI) GetBalance(_ context.Context, userID string) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.accounts[userID]
	if !ok {
		return 0, ErrAccountNotFound
	}
	return account.Balance, nil
}

func (m *MockAccountAPI) BeneficiaryExists(_ context.Context, userID, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.beneficiaries[userID][strings.ToLower(name)], nil
}

func (m *MockAccountAPI) AddBeneficiary(_ context.Context, userID, name, _ string) (*models.BeneficiaryResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[userID]; !ok {
		return nil, ErrAccountNotFound
	}
	if m.beneficiaries[userID] == nil {
		m.beneficiaries[userID] = make(map[string]bool)
	}
	m.beneficiaries[userID][strings.ToLower(name)] = true
	return &models.BeneficiaryResult{Success: true, BeneficiaryID: uuid.NewString()}, nil
}

func (m *MockAccountAPI) ExecuteTransfer(ctx context.Context, userID string, amount float64, currency, beneficiary string) (*models.TransferResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	account, ok := m.accounts[userID]
	if !ok {
		return nil, ErrAccountNotFound
	}
	if amount > account.Balance {
		return &models.TransferResult{Success: false, Error: "insufficient funds"}, nil
	}

	account.Balance -= amount
	txID := uuid.NewString()
	m.record(userID, models.Transaction{
		ID: txID, Type: "transfer", Amount: amount, Currency: currency,
		Status: "completed", Description: "transfer to " + beneficiary,
	})
	return &models.TransferResult{Success: true, TransactionID: txID}, nil
}

func (m *MockAccountAPI) Withdraw(_ context.Context, userID string, amount float64, currency string) (*models.TransferResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	account, ok := m.accounts[userID]
	if !ok {
		return nil, ErrAccountNotFound
	}
	if amount > account.Balance {
		return &models.TransferResult{Success: false, Error: "insufficient funds"}, nil
	}
	account.Balance -= amount
	txID := uuid.NewString()
	m.record(userID, models.Transaction{
		ID: txID, Type: "withdrawal", Amount: amount, Currency: currency, Status: "completed",
	})
	return &models.TransferResult{Success: true, TransactionID: txID}, nil
}

func (m *MockAccountAPI) Deposit(_ context.Context, userID string, amount float64, currency string) (*models.TransferResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	account, ok := m.accounts[userID]
	if !ok {
		return nil, ErrAccountNotFound
	}
	account.Balance += amount
	txID := uuid.NewString()
	m.record(userID, models.Transaction{
		ID: txID, Type: "deposit", Amount: amount, Currency: currency, Status: "completed",
	})
	return &models.TransferResult{Success: true, TransactionID: txID}, nil
}

func (m *MockAccountAPI) PayBill(_ context.Context, userID string, amount float64, biller string) (*models.BillResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	account, ok := m.accounts[userID]
	if !ok {
		return nil, ErrAccountNotFound
	}
	if amount > account.Balance {
		return &models.BillResult{Success: false, Error: "insufficient funds"}, nil
	}
	account.Balance -= amount
	reference := "BILL-" + uuid.NewString()[:8]
	m.record(userID, models.Transaction{
		ID: uuid.NewString(), Type: "bill_payment", Amount: amount, Currency: account.Currency,
		Status: "completed", Description: biller, Reference: reference,
	})
	return &models.BillResult{Success: true, Reference: reference}, nil
}

func (m *MockAccountAPI) TransactionHistory(_ context.Context, userID string, limit int) ([]models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	history := m.transactions[userID]
	if len(history) > limit {
		history = history[len(history)-limit:]
	}
	out := make([]models.Transaction, len(history))
	copy(out, history)
	// Newest first.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (m *MockAccountAPI) AccountInfo(_ context.Context, userID string) (*models.AccountInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	account, ok := m.accounts[userID]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return &models.AccountInfo{
		IBAN:   "CM21" + account.AccountNumber,
		BIC:    "VBCMCMCX",
		Holder: account.FullName,
	}, nil
}

func (m *MockAccountAPI) BlockCard(_ context.Context, userID string) (*models.Card, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	account, ok := m.accounts[userID]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return &models.Card{
		CardID:     uuid.NewString(),
		CardNumber: "**** **** **** " + account.AccountNumber[len(account.AccountNumber)-4:],
		CardType:   "debit",
		Status:     "blocked",
	}, nil
}

func (m *MockAccountAPI) SetDailyLimit(_ context.Context, userID string, limit float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[userID]; !ok {
		return ErrAccountNotFound
	}
	m.dailyLimits[userID] = limit
	return nil
}

func (m *MockAccountAPI) DashboardSummary(_ context.Context, _ string) (*models.DashboardSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var total float64
	var count int
	for _, history := range m.transactions {
		for _, tx := range history {
			total += tx.Amount
			count++
		}
	}
	return &models.DashboardSummary{TotalAmount: total, Currency: "XAF", Count: count, Period: "30d"}, nil
}

func (m *MockAccountAPI) RegistrationStats(_ context.Context, _ string) (*models.RegistrationStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return &models.RegistrationStats{TotalRegistrations: len(m.accounts), Period: "30d"}, nil
}

func (m *MockAccountAPI) RequestPasswordReset(_ context.Context, userID, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[userID]; !ok {
		return ErrAccountNotFound
	}
	return nil
}

func (m *MockAccountAPI) ChangePassword(_ context.Context, userID, _, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[userID]; !ok {
		return ErrAccountNotFound
	}
	return nil
}

func (m *MockAccountAPI) LinkWhatsApp(_ context.Context, userID, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[userID]; !ok {
		return ErrAccountNotFound
	}
	return nil
}

func (m *MockAccountAPI) record(userID string, tx models.Transaction) {
	tx.CreatedAt = time.Now().UTC()
	m.transactions[userID] = append(m.transactions[userID], tx)
}
