package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pulsegram/backend/internal/models"
	"github.com/pulsegram/backend/internal/services"
)

// TokenHandler exposes the token ledger: the balance surface, tier
// upgrades, the metered consume entry point AI features go through, and
// the usage audit history.
type TokenHandler struct {
	ledger   *services.Ledger
	notifier *services.Notifier
}

// NewTokenHandler creates a new TokenHandler
func NewTokenHandler(ledger *services.Ledger, notifier *services.Notifier) *TokenHandler {
	return &TokenHandler{ledger: ledger, notifier: notifier}
}

// RegisterTokenRoutes registers token ledger routes
func (h *TokenHandler) RegisterTokenRoutes(g *echo.Group) {
	g.GET("/tokens", h.GetBalance)
	g.GET("/tokens/history", h.GetHistory)
	g.POST("/tokens/upgrade", h.UpgradeTier)
	g.POST("/tokens/consume", h.Consume)
}

// GetBalance returns the caller's token limit surface. Creates the
// FREE-tier row on first touch and applies the lazy reset.
func (h *TokenHandler) GetBalance(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	availability, err := h.ledger.CheckAvailability(c.Request().Context(), currentUserID, 0, true)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": availability.TokenLimit})
}

// GetHistory returns recent usage audit records, newest first.
func (h *TokenHandler) GetHistory(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	limit, _ := strconv.ParseInt(c.QueryParam("limit"), 10, 64)
	if limit < 1 || limit > 100 {
		limit = 50
	}

	records, err := h.ledger.UsageHistory(c.Request().Context(), currentUserID, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"records": records}})
}

// UpgradeTier moves the caller to a new tier. Usage is not adjusted.
func (h *TokenHandler) UpgradeTier(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.UpgradeTierRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if !req.Tier.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "Unknown tier")
	}

	limit, err := h.ledger.UpgradeTier(c.Request().Context(), currentUserID, req.Tier)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": limit})
}

// Consume meters one AI-backed operation. Admission and increment are a
// single atomic step; budget exhaustion surfaces as a 429 with the
// TOKEN_LIMIT_EXCEEDED code, never a crash. Completion of the job raises
// an AI_JOB_COMPLETE notification for the caller.
func (h *TokenHandler) Consume(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.ConsumeTokensRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	started := time.Now()
	limit, err := h.ledger.Consume(c.Request().Context(), currentUserID, services.UsageInput{
		OperationType:    req.OperationType,
		TokensUsed:       req.Tokens,
		Model:            req.Model,
		PromptTokens:     req.PromptTokens,
		CompletionTokens: req.CompletionTokens,
		Success:          true,
		ResponseTimeMs:   time.Since(started).Milliseconds(),
		Metadata:         req.Metadata,
	})
	if err != nil {
		if err == services.ErrTokenLimitExceeded {
			return c.JSON(http.StatusTooManyRequests, echo.Map{
				"success": false,
				"error": echo.Map{
					"code":    "TOKEN_LIMIT_EXCEEDED",
					"message": "Daily token budget exhausted. Wait for the reset or upgrade your tier.",
				},
			})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if h.notifier != nil {
		_, notifErr := h.notifier.Notify(c.Request().Context(), &models.CreateNotificationRequest{
			RecipientID: currentUserID,
			Type:        models.NotificationAIJobComplete,
			URL:         "/ai/results",
		})
		if notifErr != nil {
			c.Logger().Warnf("ai completion notification failed: %v", notifErr)
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": limit})
}
