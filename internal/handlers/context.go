package handlers

import (
	"github.com/labstack/echo/v4"
	"github.com/pulsegram/backend/internal/models"
)

// getUserIDFromContext extracts the authenticated user id stored by the
// JWT middleware. Returns 0 when the request is unauthenticated.
func getUserIDFromContext(c echo.Context) uint {
	claims, ok := c.Get("user").(*models.JwtCustomClaims)
	if !ok {
		return 0
	}
	return claims.UserID
}
