package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/plantpulse/messaging/internal/common"
	"github.com/plantpulse/messaging/internal/httpapi/middleware"
	"github.com/plantpulse/messaging/internal/profiles"
)

// ListContacts handles GET /contacts?search=. Returns the caller's
// contacts plus either search results or the full remaining directory,
// so the add-contact surface is never empty.
func (h *Handler) ListContacts(c *gin.Context) {
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

	list, err := h.Contacts.List(ctx, uid)
	if err != nil {
		common.Error(c, err)
		return
	}

	contactIDs := make([]uint64, 0, len(list))
	contactSet := make(map[uint64]bool, len(list))
	for _, edge := range list {
		contactIDs = append(contactIDs, edge.ContactID)
		contactSet[edge.ContactID] = true
	}

	var available []profiles.Profile
	if search := c.Query("search"); search != "" {
		found, err := h.Profiles.Search(ctx, uid, search)
		if err != nil {
			common.Error(c, err)
			return
		}
		available = make([]profiles.Profile, 0, len(found))
		for _, p := range found {
			if !contactSet[p.ID] {
				available = append(available, p)
			}
		}
	} else {
		available, err = h.Profiles.ListAvailable(ctx, uid, contactIDs)
		if err != nil {
			common.Error(c, err)
			return
		}
	}

	for i := range list {
		list[i].Profile.Status = h.Presence.EffectiveStatus(ctx, &list[i].Profile)
	}
	h.Presence.Annotate(ctx, available)

	c.JSON(http.StatusOK, gin.H{
		"contacts":       list,
		"availableUsers": available,
	})
}

type addContactReq struct {
	ContactID uint64 `json:"contactId"`
}

func (h *Handler) AddContact(c *gin.Context) {
	uid, ok := middleware.UserID(c)
	if !ok {
		common.ErrorMsg(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req addContactReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorMsg(c, http.StatusBadRequest, "invalid json")
		return
	}

	edge, err := h.Contacts.Add(c.Request.Context(), uid, req.ContactID)
	if err != nil {
		common.Error(c, err)
		return
	}
	edge.Profile.Status = h.Presence.EffectiveStatus(c.Request.Context(), &edge.Profile)
	c.JSON(http.StatusOK, gin.H{"contact": edge})
}

// RemoveContact handles DELETE /contacts?id=. The id is the contact's
// user id; removal is scoped to the caller's own edges.
func (h *Handler) RemoveContact(c *gin.Context) {
	uid, ok := middleware.UserID(c)
	if !ok {
		common.ErrorMsg(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	contactID, err := strconv.ParseUint(c.Query("id"), 10, 64)
	if err != nil {
		common.ErrorMsg(c, http.StatusBadRequest, "contact id required")
		return
	}

	if err := h.Contacts.Remove(c.Request.Context(), uid, contactID); err != nil {
		common.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
