package controller

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/iyhunko/inventory-service/internal/config"
	"github.com/iyhunko/inventory-service/internal/http/middleware"
	"github.com/iyhunko/inventory-service/internal/repository"
)

// Controller handles general HTTP requests.
type Controller struct {
	config *config.Config
	tokens repository.TokenRepository
}

// New creates a new Controller with the given configuration and token store.
func New(config *config.Config, tokens repository.TokenRepository) *Controller {
	return &Controller{
		config: config,
		tokens: tokens,
	}
}

// Ping handles the HTTP GET request for health check endpoint.
func (con *Controller) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "pong",
	})
}

// CurrentUser returns the identity of the authenticated caller.
func (con *Controller) CurrentUser(c *gin.Context) {
	respond(c, http.StatusOK, "", gin.H{"subject": c.GetString(middleware.SubjectKey)})
}

// Logout revokes the stored token used for the request.
// Tokens from the configuration can not be revoked.
func (con *Controller) Logout(c *gin.Context) {
	value, _ := c.Get(middleware.TokenIDKey)
	tokenID, ok := value.(uuid.UUID)
	if !ok || con.tokens == nil {
		respondError(c, http.StatusBadRequest, "This token can not be revoked.")
		return
	}

	if err := con.tokens.DeleteByID(c.Request.Context(), tokenID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(c, http.StatusUnauthorized, "Unauthenticated.")
			return
		}
		slog.Error("Failed to revoke api token", slog.String("token_id", tokenID.String()), slog.Any("err", err))
		respondError(c, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	respond(c, http.StatusOK, "Logged out successfully", nil)
}

// envelope is the body shape shared by every product API response.
type envelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Data    any                 `json:"data,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

func respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, envelope{Success: true, Message: message, Data: data})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, envelope{Success: false, Message: message})
}

func respondValidation(c *gin.Context, errs map[string][]string) {
	c.JSON(http.StatusUnprocessableEntity, envelope{
		Success: false,
		Message: "The given data was invalid.",
		Errors:  errs,
	})
}
