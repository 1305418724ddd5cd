package handlers

import (
	"crypto/subtle"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/prudhivi99/Distributed-Systems/storefront/internal/models"
)

// Credentials is the single account the reference backend accepts.
type Credentials struct {
	Username string
	Password string
	Token    string
}

// UserHandler keeps the profile and notification preferences of the
// single configured account in memory.
type UserHandler struct {
	creds Credentials
	log   zerolog.Logger

	mu      sync.Mutex
	profile models.Profile
	prefs   models.NotificationPreferences
}

func NewUserHandler(creds Credentials, log zerolog.Logger) *UserHandler {
	return &UserHandler{
		creds: creds,
		log:   log,
		profile: models.Profile{
			ID:       1,
			Username: creds.Username,
		},
		prefs: models.NotificationPreferences{OrderUpdates: true},
	}
}

func (h *UserHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(h.creds.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.creds.Password)) == 1
	if !userOK || !passOK {
		h.log.Info().Str("username", req.Username).Msg("login rejected")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid credentials"})
		return
	}

	c.JSON(http.StatusOK, models.TokenResponse{Token: h.creds.Token})
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c.JSON(http.StatusOK, h.profile)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var upd models.ProfileUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	upd.Apply(&h.profile)
	c.JSON(http.StatusOK, h.profile)
}

func (h *UserHandler) GetNotifications(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c.JSON(http.StatusOK, h.prefs)
}

func (h *UserHandler) UpdateNotifications(c *gin.Context) {
	var upd models.NotificationPreferencesUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	upd.Apply(&h.prefs)
	c.JSON(http.StatusOK, h.prefs)
}
