package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/plantpulse/messaging/internal/apperr"
	"github.com/plantpulse/messaging/internal/chat"
	"github.com/plantpulse/messaging/internal/config"
	"github.com/plantpulse/messaging/internal/contacts"
	"github.com/plantpulse/messaging/internal/models"
	"github.com/plantpulse/messaging/internal/presence"
	"github.com/plantpulse/messaging/internal/profiles"
	"github.com/plantpulse/messaging/internal/store/redisstore"
)

type Handler struct {
	DB  *gorm.DB
	Cfg config.Config

	Profiles *profiles.Service
	Contacts *contacts.Service
	Chat     *chat.Service
	Presence *presence.Service
}

func NewHandler(db *gorm.DB, cfg config.Config, live *redisstore.Store) *Handler {
	profileRepo := profiles.NewRepo(db)
	return &Handler{
		DB:  db,
		Cfg: cfg,

		Profiles: profiles.NewService(profileRepo),
		Contacts: contacts.NewService(contacts.NewRepo(db), profileRepo),
		Chat:     chat.NewService(chat.NewRepo(db), profileRepo, cfg.MessageRetention),
		Presence: presence.NewService(profileRepo, live, cfg.PresenceStaleAfter()),
	}
}

func (h *Handler) Ping(c *gin.Context) {
	c.JSON(200, gin.H{"message": "pong"})
}

// ensureProfile lazily creates the caller's profile on first
// chat-surface access, deriving the default username from the identity
// email.
func (h *Handler) ensureProfile(ctx context.Context, userID uint64) (*profiles.Profile, error) {
	var user models.User
	if err := h.DB.WithContext(ctx).First(&user, userID).Error; err != nil {
		return nil, apperr.Internal("failed to load identity", err)
	}
	return h.Profiles.Ensure(ctx, userID, user.Email)
}
