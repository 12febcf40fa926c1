package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jason-slatt/cameroon-voice-ai/internal/domain/models"
	"github.com/jason-slatt/cameroon-voice-ai/internal/infrastructure/cache"
	"github.com/jason-slatt/cameroon-voice-ai/pkg/logger"
)

// RedisStore persists conversation state as a JSON document per conversation
// ID so every service instance sees the same session. The TTL restarts on
// every save; Redis expiry is the only cleanup.
type RedisStore struct {
	cache  *cache.RedisCache
	ttl    time.Duration
	logger *logger.Logger
}

// NewRedisStore creates a Redis-backed conversation store with the given
// state TTL.
func NewRedisStore(c *cache.RedisCache, ttl time.Duration, log *logger.Logger) *RedisStore {
	return &RedisStore{
		cache:  c,
		ttl:    ttl,
		logger: log.WithComponent("conversation-store"),
	}
}

// Get loads the state for a conversation. Expired keys behave exactly like
// absent ones.
func (s *RedisStore) Get(ctx context.Context, conversationID string) (*models.ConversationState, error) {
	var state models.ConversationState
	err := s.cache.GetJSON(ctx, cache.KeyConversationPrefix+conversationID, &state)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load conversation state: %w", err)
	}
	if state.CollectedData == nil {
		state.CollectedData = make(map[string]string)
	}
	return &state, nil
}

// Save serializes the full state and re-applies the TTL.
func (s *RedisStore) Save(ctx context.Context, state *models.ConversationState) error {
	key := cache.KeyConversationPrefix + state.ConversationID
	if err := s.cache.SetJSON(ctx, key, state, s.ttl); err != nil {
		return fmt.Errorf("failed to save conversation state: %w", err)
	}
	s.logger.Debug().
		Str("conversation_id", state.ConversationID).
		Str("flow", string(state.FlowType)).
		Str("step", string(state.FlowStep)).
		Msg("conversation state saved")
	return nil
}

// Delete removes the state for a conversation.
func (s *RedisStore) Delete(ctx context.Context, conversationID string) error {
	return s.cache.Delete(ctx, cache.KeyConversationPrefix+conversationID)
}
