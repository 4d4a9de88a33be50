package handlers

import (
	"crypto/rand"
	"errors"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/plantpulse/messaging/internal/auth"
	"github.com/plantpulse/messaging/internal/common"
	"github.com/plantpulse/messaging/internal/httpapi/middleware"
	"github.com/plantpulse/messaging/internal/models"
)

type createUserReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func randomSuffix(n int) (string, error) {
	const digits = "0123456789"
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		v, err := rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
		if err != nil {
			return "", err
		}
		out[i] = digits[v.Int64()]
	}
	return string(out), nil
}

func (h *Handler) CreateUser(c *gin.Context) {
	var req createUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorMsg(c, http.StatusBadRequest, "invalid json")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Password == "" || strings.Index(req.Email, "@") < 1 {
		common.ErrorMsg(c, http.StatusBadRequest, "email and password required")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		common.ErrorMsg(c, http.StatusInternalServerError, "failed to hash password")
		return
	}

	// username defaults to the email local-part; retry with a random
	// suffix on collision
	base := req.Email[:strings.Index(req.Email, "@")]
	username := base
	for i := 0; i < 5; i++ {
		var cnt int64
		if err := h.DB.Model(&models.User{}).Where("username = ?", username).Count(&cnt).Error; err != nil {
			common.ErrorMsg(c, http.StatusInternalServerError, "failed to check username")
			return
		}
		if cnt == 0 {
			break
		}
		suffix, err := randomSuffix(4)
		if err != nil {
			common.ErrorMsg(c, http.StatusInternalServerError, "failed to allocate username")
			return
		}
		username = base + suffix
	}

	user := models.User{
		Email:        req.Email,
		Username:     username,
		PasswordHash: hash,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		common.ErrorMsg(c, http.StatusBadRequest, "failed to create user (maybe email already exists)")
		return
	}

	token, err := auth.SignJWT(user.ID, h.Cfg.JWTSecret, 24*time.Hour)
	if err != nil {
		common.ErrorMsg(c, http.StatusInternalServerError, "failed to sign token")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":       user.ID,
		"email":    user.Email,
		"username": user.Username,
		"token":    token,
	})
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorMsg(c, http.StatusBadRequest, "invalid json")
		return
	}

	var user models.User
	if err := h.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.ErrorMsg(c, http.StatusUnauthorized, "invalid email or password")
			return
		}
		common.ErrorMsg(c, http.StatusInternalServerError, "db error")
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		common.ErrorMsg(c, http.StatusUnauthorized, "invalid email or password")
		return
	}

	token, err := auth.SignJWT(user.ID, h.Cfg.JWTSecret, 24*time.Hour)
	if err != nil {
		common.ErrorMsg(c, http.StatusInternalServerError, "failed to sign token")
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *Handler) Me(c *gin.Context) {
	uid, ok := middleware.UserID(c)
	if !ok {
		common.ErrorMsg(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	var user models.User
	if err := h.DB.First(&user, uid).Error; err != nil {
		common.ErrorMsg(c, http.StatusNotFound, "user not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":       user.ID,
		"email":    user.Email,
		"username": user.Username,
	})
}
