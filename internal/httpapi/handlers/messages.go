package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/plantpulse/messaging/internal/common"
	"github.com/plantpulse/messaging/internal/httpapi/middleware"
)

// ListMessages handles GET /messages?conversationId=&limit=&before=.
// Side effect: the caller's read cursor advances to now.
func (h *Handler) ListMessages(c *gin.Context) {
	uid, ok := middleware.UserID(c)
	if !ok {
		common.ErrorMsg(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	conversationID := c.Query("conversationId")
	if conversationID == "" {
		common.ErrorMsg(c, http.StatusBadRequest, "conversation id required")
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))

	var before time.Time
	if v := c.Query("before"); v != "" {
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			common.ErrorMsg(c, http.StatusBadRequest, "before must be an RFC3339 timestamp")
			return
		}
		before = t
	}

	msgs, err := h.Chat.ListMessages(c.Request.Context(), conversationID, uid, limit, before)
	if err != nil {
		common.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

type sendMessageReq struct {
	ConversationID string  `json:"conversationId"`
	Content        string  `json:"content"`
	ReplyToID      *uint64 `json:"replyToId"`
}

func (h *Handler) SendMessage(c *gin.Context) {
	uid, ok := middleware.UserID(c)
	if !ok {
		common.ErrorMsg(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req sendMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorMsg(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.ConversationID == "" {
		common.ErrorMsg(c, http.StatusBadRequest, "conversation id and content required")
		return
	}

	msg, err := h.Chat.Send(c.Request.Context(), req.ConversationID, uid, req.Content, req.ReplyToID)
	if err != nil {
		common.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

type updateMessageReq struct {
	MessageID uint64 `json:"messageId"`
	Action    string `json:"action"`
}

// UpdateMessage handles PATCH /messages with action mark-read or
// soft-delete. Both are explicit about authorization: mark-read needs
// a participant, soft-delete needs the sender.
func (h *Handler) UpdateMessage(c *gin.Context) {
	uid, ok := middleware.UserID(c)
	if !ok {
		common.ErrorMsg(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req updateMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorMsg(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.MessageID == 0 || req.Action == "" {
		common.ErrorMsg(c, http.StatusBadRequest, "message id and action required")
		return
	}

	var err error
	switch req.Action {
	case "mark-read":
		err = h.Chat.MarkRead(c.Request.Context(), req.MessageID, uid)
	case "soft-delete":
		err = h.Chat.SoftDelete(c.Request.Context(), req.MessageID, uid)
	default:
		common.ErrorMsg(c, http.StatusBadRequest, "unknown action")
		return
	}
	if err != nil {
		common.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
