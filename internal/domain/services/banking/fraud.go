package banking

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jason-slatt/cameroon-voice-ai/internal/config"
	"github.com/jason-slatt/cameroon-voice-ai/internal/domain/models"
	"github.com/jason-slatt/cameroon-voice-ai/internal/infrastructure/cache"
	"github.com/jason-slatt/cameroon-voice-ai/pkg/logger"
)

// Risk factor names, surfaced in assessments and audit records.
const (
	FactorHighAmount     = "high_amount"
	FactorVelocityHigh   = "velocity_high"
	FactorVelocityMedium = "velocity_medium"
	FactorNewBeneficiary = "new_beneficiary"
	FactorUnusualHour    = "unusual_hour"
	FactorRoundAmount    = "round_amount"
)

// fraudStore is the slice of Redis the detector needs. Velocity and
// beneficiary tracking rely on the store's atomic primitives so concurrent
// conversations of one user never race.
type fraudStore interface {
	ZAddWithTTL(ctx context.Context, key string, member redis.Z, ttl time.Duration) error
	ZCount(ctx context.Context, key, min, max string) (int64, error)
	SAddWithTTL(ctx context.Context, key, member string, ttl time.Duration) error
	SIsMember(ctx context.Context, key, member string) (bool, error)
}

// FraudDetector computes an additive, explainable 0-100 risk score per
// candidate transaction. Every assessment records the attempt in the
// velocity window, including attempts later rejected downstream, so repeated
// dry-runs cannot dodge the velocity check.
type FraudDetector struct {
	store  fraudStore
	cfg    config.FraudConfig
	logger *logger.Logger

	// overridable in tests
	now func() time.Time
}

// NewFraudDetector creates a detector over the shared Redis cache.
func NewFraudDetector(store *cache.RedisCache, cfg config.FraudConfig, log *logger.Logger) *FraudDetector {
	return &FraudDetector{
		store:  store,
		cfg:    cfg,
		logger: log.WithComponent("fraud"),
		now:    time.Now,
	}
}

// AssessRisk scores one candidate transaction for a user.
func (d *FraudDetector) AssessRisk(ctx context.Context, userID string, amount float64, beneficiary string) (*models.RiskAssessment, error) {
	now := d.now()
	assessment := &models.RiskAssessment{}

	if amount > d.cfg.HighAmountThreshold {
		d.addFactor(assessment, d.cfg.HighAmountPoints, FactorHighAmount)
	}

	// The attempt counts immediately, whatever the command's fate.
	velocityKey := cache.KeyVelocityPrefix + userID
	err := d.store.ZAddWithTTL(ctx, velocityKey,
		redis.Z{Score: float64(now.Unix()), Member: uuid.NewString()},
		d.cfg.VelocityExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to record transaction attempt: %w", err)
	}

	windowStart := now.Add(-d.cfg.VelocityWindow)
	recent, err := d.store.ZCount(ctx, velocityKey,
		strconv.FormatInt(windowStart.Unix(), 10), "+inf")
	if err != nil {
		return nil, fmt.Errorf("failed to read velocity window: %w", err)
	}

	switch {
	case recent >= int64(d.cfg.VelocityLimit):
		d.addFactor(assessment, d.cfg.VelocityHighPoints, FactorVelocityHigh)
	case recent >= int64(d.cfg.VelocityLimit)-1:
		d.addFactor(assessment, d.cfg.VelocityMediumPoints, FactorVelocityMedium)
	}

	if beneficiary != "" {
		known, err := d.store.SIsMember(ctx, cache.KeyBeneficiaryPrefix+userID, beneficiary)
		if err != nil {
			return nil, fmt.Errorf("failed to check beneficiary novelty: %w", err)
		}
		if !known {
			d.addFactor(assessment, d.cfg.NewBeneficiaryPoints, FactorNewBeneficiary)
		}
	}

	switch hour := now.Hour(); {
	case hour < 5:
		d.addFactor(assessment, d.cfg.NightHighPoints, FactorUnusualHour)
	case hour >= 22:
		d.addFactor(assessment, d.cfg.NightMediumPoints, FactorUnusualHour)
	}

	if amount >= d.cfg.RoundAmountMin && math.Mod(amount, 100) == 0 {
		d.addFactor(assessment, d.cfg.RoundAmountPoints, FactorRoundAmount)
	}

	if assessment.Score > 100 {
		assessment.Score = 100
	}

	d.logger.Debug().
		Str("user_id", userID).
		Float64("amount", amount).
		Int("score", assessment.Score).
		Strs("factors", assessment.Factors).
		Msg("risk assessed")

	return assessment, nil
}

// RecordBeneficiary marks a beneficiary as used by this user, so later
// transfers to the same counterpart stop scoring as novel.
func (d *FraudDetector) RecordBeneficiary(ctx context.Context, userID, beneficiary string) error {
	if beneficiary == "" {
		return nil
	}
	return d.store.SAddWithTTL(ctx, cache.KeyBeneficiaryPrefix+userID, beneficiary, d.cfg.BeneficiaryExpiry)
}

func (d *FraudDetector) addFactor(a *models.RiskAssessment, points int, factor string) {
	a.Score += points
	a.Factors = append(a.Factors, factor)
}
