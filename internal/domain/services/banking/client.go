package banking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jason-slatt/cameroon-voice-ai/internal/config"
	"github.com/jason-slatt/cameroon-voice-ai/internal/domain/models"
	"github.com/jason-slatt/cameroon-voice-ai/pkg/logger"
)

// Client calls the external account API over HTTP. Transient failures
// (network errors and 5xx responses) are retried up to the configured count
// with a short backoff; 4xx responses are never retried.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	logger     *logger.Logger
}

// NewClient creates an account API client from configuration.
func NewClient(cfg config.AccountConfig, log *logger.Logger) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		maxRetries: cfg.MaxRetries,
		logger:     log.WithComponent("account-api"),
	}
}

type apiError struct {
	Error string `json:"error"`
}

type statusError struct {
	code int
	msg  string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("account api returned %d: %s", e.code, e.msg)
}

// do issues one request with retries and decodes a JSON response into dest
// when dest is non-nil. Returns the final status code.
func (c *Client) do(ctx context.Context, method, path string, body, dest any) (int, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return 0, ctx.Err()
			case <-time.After(time.Duration(attempt) * 200 * time.Millisecond):
			}
		}

		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return 0, fmt.Errorf("failed to build request: %w", err)
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			c.logger.Warn().Err(err).Int("attempt", attempt+1).Str("path", path).Msg("account api request failed")
			continue
		}

		data, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode >= 500 {
			lastErr = &statusError{code: resp.StatusCode, msg: string(data)}
			c.logger.Warn().Int("status", resp.StatusCode).Int("attempt", attempt+1).Str("path", path).Msg("account api server error")
			continue
		}

		if resp.StatusCode >= 400 {
			var apiErr apiError
			_ = json.Unmarshal(data, &apiErr)
			msg := apiErr.Error
			if msg == "" {
				msg = http.StatusText(resp.StatusCode)
			}
			return resp.StatusCode, &statusError{code: resp.StatusCode, msg: msg}
		}

		if dest != nil && len(data) > 0 {
			if err := json.Unmarshal(data, dest); err != nil {
				return resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
			}
		}
		return resp.StatusCode, nil
	}

	return 0, fmt.Errorf("account api unavailable after %d attempts: %w", c.maxRetries+1, lastErr)
}

func (c *Client) AccountByPhone(ctx context.Context, phoneNumber string) (*models.Account, error) {
	var account models.Account
	status, err := c.do(ctx, http.MethodGet, "/accounts/by-phone/"+url.PathEscape(phoneNumber), nil, &account)
	if err != nil {
		if status == http.StatusNotFound {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

func (c *Client) CreateAccount(ctx context.Context, phoneNumber, fullName string, age int, sex, groupement string) (*models.Account, error) {
	body := map[string]any{
		"phone_number": phoneNumber,
		"full_name":    fullName,
		"age":          age,
		"sex":          sex,
		"groupement":   groupement,
	}
	var account models.Account
	if _, err := c.do(ctx, http.MethodPost, "/accounts", body, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

func (c *Client) GetBalance(ctx context.Context, userID string) (float64, error) {
	var resp struct {
		Balance float64 `json:"balance"`
	}
	if _, err := c.do(ctx, http.MethodGet, "/accounts/"+url.PathEscape(userID)+"/balance", nil, &resp); err != nil {
		return 0, err
	}
	return resp.Balance, nil
}

func (c *Client) BeneficiaryExists(ctx context.Context, userID, name string) (bool, error) {
	path := "/accounts/" + url.PathEscape(userID) + "/beneficiaries/" + url.PathEscape(name)
	status, err := c.do(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		if status == http.StatusNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (c *Client) AddBeneficiary(ctx context.Context, userID, name, iban string) (*models.BeneficiaryResult, error) {
	body := map[string]string{"name": name, "iban": iban}
	var result models.BeneficiaryResult
	if _, err := c.do(ctx, http.MethodPost, "/accounts/"+url.PathEscape(userID)+"/beneficiaries", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ExecuteTransfer(ctx context.Context, userID string, amount float64, currency, beneficiary string) (*models.TransferResult, error) {
	body := map[string]any{"amount": amount, "currency": currency, "beneficiary": beneficiary}
	var result models.TransferResult
	if _, err := c.do(ctx, http.MethodPost, "/accounts/"+url.PathEscape(userID)+"/transfers", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Withdraw(ctx context.Context, userID string, amount float64, currency string) (*models.TransferResult, error) {
	body := map[string]any{"amount": amount, "currency": currency}
	var result models.TransferResult
	if _, err := c.do(ctx, http.MethodPost, "/accounts/"+url.PathEscape(userID)+"/withdrawals", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Deposit(ctx context.Context, userID string, amount float64, currency string) (*models.TransferResult, error) {
	body := map[string]any{"amount": amount, "currency": currency}
	var result models.TransferResult
	if _, err := c.do(ctx, http.MethodPost, "/accounts/"+url.PathEscape(userID)+"/deposits", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) PayBill(ctx context.Context, userID string, amount float64, biller string) (*models.BillResult, error) {
	body := map[string]any{"amount": amount, "biller": biller}
	var result models.BillResult
	if _, err := c.do(ctx, http.MethodPost, "/accounts/"+url.PathEscape(userID)+"/bills", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) TransactionHistory(ctx context.Context, userID string, limit int) ([]models.Transaction, error) {
	path := "/accounts/" + url.PathEscape(userID) + "/transactions?limit=" + strconv.Itoa(limit)
	var transactions []models.Transaction
	if _, err := c.do(ctx, http.MethodGet, path, nil, &transactions); err != nil {
		return nil, err
	}
	return transactions, nil
}

func (c *Client) AccountInfo(ctx context.Context, userID string) (*models.AccountInfo, error) {
	var info models.AccountInfo
	if _, err := c.do(ctx, http.MethodGet, "/accounts/"+url.PathEscape(userID)+"/details", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) BlockCard(ctx context.Context, userID string) (*models.Card, error) {
	var card models.Card
	if _, err := c.do(ctx, http.MethodPost, "/accounts/"+url.PathEscape(userID)+"/cards/block", nil, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

func (c *Client) SetDailyLimit(ctx context.Context, userID string, limit float64) error {
	body := map[string]float64{"limit": limit}
	_, err := c.do(ctx, http.MethodPut, "/accounts/"+url.PathEscape(userID)+"/limits/daily", body, nil)
	return err
}

func (c *Client) DashboardSummary(ctx context.Context, userID string) (*models.DashboardSummary, error) {
	var summary models.DashboardSummary
	if _, err := c.do(ctx, http.MethodGet, "/dashboard/summary?user_id="+url.QueryEscape(userID), nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (c *Client) RegistrationStats(ctx context.Context, userID string) (*models.RegistrationStats, error) {
	var stats models.RegistrationStats
	if _, err := c.do(ctx, http.MethodGet, "/dashboard/registrations?user_id="+url.QueryEscape(userID), nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *Client) RequestPasswordReset(ctx context.Context, userID, phoneNumber string) error {
	body := map[string]string{"phone_number": phoneNumber}
	_, err := c.do(ctx, http.MethodPost, "/accounts/"+url.PathEscape(userID)+"/password/reset", body, nil)
	return err
}

func (c *Client) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	body := map[string]string{"old_password": oldPassword, "new_password": newPassword}
	_, err := c.do(ctx, http.MethodPost, "/accounts/"+url.PathEscape(userID)+"/password/change", body, nil)
	return err
}

func (c *Client) LinkWhatsApp(ctx context.Context, userID, phoneNumber string) error {
	body := map[string]string{"phone_number": phoneNumber}
	_, err := c.do(ctx, http.MethodPost, "/accounts/"+url.PathEscape(userID)+"/whatsapp", body, nil)
	return err
}
