package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/plantpulse/messaging/internal/common"
	"github.com/plantpulse/messaging/internal/httpapi/middleware"
)

type setStatusReq struct {
	Status string `json:"status"`
}

// SetStatus handles PUT /status, the presence heartbeat. Clients call
// it on mount, every 30s while mounted, and on visibility/unload
// transitions.
func (h *Handler) SetStatus(c *gin.Context) {
	uid, ok := middleware.UserID(c)
	if !ok {
		common.ErrorMsg(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req setStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorMsg(c, http.StatusBadRequest, "invalid json")
		return
	}
	ctx := c.Request.Context()

	// first heartbeat may arrive before any other chat-surface call
	if _, err := h.ensureProfile(ctx, uid); err != nil {
		common.Error(c, err)
		return
	}

	profile, err := h.Presence.Heartbeat(ctx, uid, req.Status)
	if err != nil {
		common.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"profile": profile,
	})
}
