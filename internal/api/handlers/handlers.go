package handlers

import (
	"github.com/jason-slatt/cameroon-voice-ai/internal/domain/services/audit"
	"github.com/jason-slatt/cameroon-voice-ai/internal/domain/services/conversation"
	"github.com/jason-slatt/cameroon-voice-ai/internal/infrastructure/cache"
	"github.com/jason-slatt/cameroon-voice-ai/internal/infrastructure/database"
	"github.com/jason-slatt/cameroon-voice-ai/pkg/logger"
)

// Handlers holds all API handlers
type Handlers struct {
	Health *HealthHandler
	Chat   *ChatHandler
	Audit  *AuditHandler
}

// Dependencies holds dependencies for handlers
type Dependencies struct {
	Manager *conversation.Manager
	Audit   audit.Logger
	Cache   *cache.RedisCache
	DB      *database.PostgresDB
	Version string
	Logger  *logger.Logger
}

// NewHandlers creates all handlers
func NewHandlers(deps Dependencies) *Handlers {
	return &Handlers{
		Health: NewHealthHandler(deps.Cache, deps.DB, deps.Version, deps.Logger),
		Chat:   NewChatHandler(deps.Manager, deps.Logger),
		Audit:  NewAuditHandler(deps.Audit, deps.Logger),
	}
}
