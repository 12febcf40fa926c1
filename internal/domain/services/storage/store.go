// Package storage persists per-conversation dialog state. Two
// implementations exist: an in-memory TTL map for tests and single-node
// deployments, and a Redis-backed store so multiple instances can share
// sessions.
package storage

import (
	"context"
	"errors"

	"github.com/jason-slatt/cameroon-voice-ai/internal/domain/models"
)

// ErrNotFound is returned when no state exists for a conversation ID. An
// expired record is indistinguishable from an absent one.
var ErrNotFound = errors.New("conversation state not found")

// ConversationStore is the contract for conversation state persistence.
// Save is last-write-wins and must re-apply the TTL on every call.
type ConversationStore interface {
	Get(ctx context.Context, conversationID string) (*models.ConversationState, error)
	Save(ctx context.Context, state *models.ConversationState) error
	Delete(ctx context.Context, conversationID string) error
}
