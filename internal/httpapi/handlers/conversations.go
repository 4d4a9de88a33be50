package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/plantpulse/messaging/internal/common"
	"github.com/plantpulse/messaging/internal/httpapi/middleware"
)

func (h *Handler) ListConversations(c *gin.Context) {
	uid, ok := middleware.UserID(c)
	if !ok {
		common.ErrorMsg(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	ctx := c.Request.Context()

	if _, err := h.ensureProfile(ctx, uid); err != nil {
		common.Error(c, err)
		return
	}

	list, err := h.Chat.List(ctx, uid)
	if err != nil {
		common.Error(c, err)
		return
	}
	for i := range list {
		if p := list[i].OtherParticipant; p != nil {
			p.Status = h.Presence.EffectiveStatus(ctx, p)
		}
	}
	c.JSON(http.StatusOK, gin.H{"conversations": list})
}

type createConversationReq struct {
	ContactID uint64 `json:"contactId"`
}

// CreateConversation handles POST /conversations: the idempotent
// get-or-create for the (caller, contact) pair.
func (h *Handler) CreateConversation(c *gin.Context) {
	uid, ok := middleware.UserID(c)
	if !ok {
		common.ErrorMsg(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req createConversationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorMsg(c, http.StatusBadRequest, "invalid json")
		return
	}

	id, err := h.Chat.GetOrCreate(c.Request.Context(), uid, req.ContactID)
	if err != nil {
		common.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversationId": id})
}
