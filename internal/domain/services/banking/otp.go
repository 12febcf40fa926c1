package banking

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"github.com/jason-slatt/cameroon-voice-ai/internal/config"
	"github.com/jason-slatt/cameroon-voice-ai/internal/infrastructure/cache"
	"github.com/jason-slatt/cameroon-voice-ai/pkg/logger"
)

// Hash field names of the OTP record.
const (
	otpFieldHash     = "hash"
	otpFieldAction   = "action"
	otpFieldAttempts = "attempts"
	otpFieldMetadata = "metadata"
)

// otpStore is the slice of Redis the OTP service needs.
type otpStore interface {
	HSetWithTTL(ctx context.Context, key string, fields map[string]string, ttl time.Duration) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HIncrBy(ctx context.Context, key, field string, incr int64) (int64, error)
	Delete(ctx context.Context, keys ...string) error
}

// OTPVerification is the outcome of one verification attempt. When Valid is
// false, Remaining tells the user how many attempts are left; Exhausted and
// NotFound distinguish the terminal cases.
type OTPVerification struct {
	Valid     bool
	Action    string
	Metadata  map[string]string
	Remaining int
	Exhausted bool
	NotFound  bool
}

// OTPService issues and verifies one-time codes for step-up authentication.
// Codes are stored hashed, expire after the validity window, and allow a
// bounded number of verification attempts. A record is deleted on success
// and on attempt exhaustion, so a code can never be replayed.
type OTPService struct {
	store  otpStore
	cfg    config.OTPConfig
	logger *logger.Logger
}

// NewOTPService creates the OTP service over the shared Redis cache.
func NewOTPService(store *cache.RedisCache, cfg config.OTPConfig, log *logger.Logger) *OTPService {
	return &OTPService{
		store:  store,
		cfg:    cfg,
		logger: log.WithComponent("otp"),
	}
}

// Generate issues a fresh code for (user, conversation), replacing any prior
// record, and returns the plaintext exactly once for delivery to the user.
func (s *OTPService) Generate(ctx context.Context, userID, conversationID, action string, metadata map[string]string) (string, error) {
	code, err := randomCode(s.cfg.Length)
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}

	meta, err := json.Marshal(metadata)
	if err != nil {
		return "", fmt.Errorf("failed to encode otp metadata: %w", err)
	}

	fields := map[string]string{
		otpFieldHash:     hashCode(code),
		otpFieldAction:   action,
		otpFieldAttempts: "0",
		otpFieldMetadata: string(meta),
	}
	if err := s.store.HSetWithTTL(ctx, s.key(userID, conversationID), fields, s.cfg.Validity); err != nil {
		return "", fmt.Errorf("failed to store otp: %w", err)
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("conversation_id", conversationID).
		Str("action", action).
		Msg("otp issued")

	return code, nil
}

// Verify checks a submitted code. A success deletes the record; a failure
// counts against the attempt budget and deletes the record once exhausted.
func (s *OTPService) Verify(ctx context.Context, userID, conversationID, code string) (*OTPVerification, error) {
	key := s.key(userID, conversationID)

	record, err := s.store.HGetAll(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to load otp record: %w", err)
	}
	if len(record) == 0 {
		// Expired or never issued.
		return &OTPVerification{NotFound: true}, nil
	}

	stored := record[otpFieldHash]
	submitted := hashCode(code)
	if subtle.ConstantTimeCompare([]byte(stored), []byte(submitted)) == 1 {
		var metadata map[string]string
		if raw := record[otpFieldMetadata]; raw != "" {
			if err := json.Unmarshal([]byte(raw), &metadata); err != nil {
				s.logger.Warn().Err(err).Msg("corrupt otp metadata")
			}
		}
		if err := s.store.Delete(ctx, key); err != nil {
			return nil, fmt.Errorf("failed to consume otp: %w", err)
		}
		return &OTPVerification{Valid: true, Action: record[otpFieldAction], Metadata: metadata}, nil
	}

	attempts, err := s.store.HIncrBy(ctx, key, otpFieldAttempts, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to count otp attempt: %w", err)
	}
	if attempts >= int64(s.cfg.MaxAttempts) {
		if err := s.store.Delete(ctx, key); err != nil {
			return nil, fmt.Errorf("failed to revoke otp: %w", err)
		}
		s.logger.Warn().
			Str("user_id", userID).
			Str("conversation_id", conversationID).
			Msg("otp attempts exhausted")
		return &OTPVerification{Exhausted: true}, nil
	}

	return &OTPVerification{Remaining: s.cfg.MaxAttempts - int(attempts)}, nil
}

func (s *OTPService) key(userID, conversationID string) string {
	return cache.KeyOTPPrefix + userID + ":" + conversationID
}

func hashCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

func randomCode(length int) (string, error) {
	max := big.NewInt(10)
	code := make([]byte, length)
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		code[i] = byte('0' + n.Int64())
	}
	return string(code), nil
}
