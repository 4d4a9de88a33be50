package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/plantpulse/messaging/internal/config"
	"github.com/plantpulse/messaging/internal/httpapi/handlers"
	"github.com/plantpulse/messaging/internal/httpapi/middleware"
	"github.com/plantpulse/messaging/internal/store/redisstore"
)

func NewRouter(db *gorm.DB, cfg config.Config, live *redisstore.Store) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
	})

	h := handlers.NewHandler(db, cfg, live)

	r.GET("/ping", h.Ping)

	// identity
	r.POST("/users", h.CreateUser)
	r.POST("/login", h.Login)

	authGroup := r.Group("/")
	authGroup.Use(middleware.AuthRequired(cfg.JWTSecret))
	authGroup.GET("/me", h.Me)

	// contact graph
	authGroup.GET("/contacts", h.ListContacts)
	authGroup.POST("/contacts", h.AddContact)
	authGroup.DELETE("/contacts", h.RemoveContact)

	// conversations & messages
	authGroup.GET("/conversations", h.ListConversations)
	authGroup.POST("/conversations", h.CreateConversation)
	authGroup.GET("/messages", h.ListMessages)
	authGroup.POST("/messages", h.SendMessage)
	authGroup.PATCH("/messages", h.UpdateMessage)

	// presence heartbeat
	authGroup.PUT("/status", h.SetStatus)

	return r
}
