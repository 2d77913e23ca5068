// Package middleware provides the middleware for the Echo instance
package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/tunely/tunelyapi/pkg/utils/response"
)

// UserIDHeader carries the opaque user identifier supplied by the frontend.
// It is a partition key, not a verified credential.
const UserIDHeader = "x-user-id"

// UserContextKey is where the user identifier is stored on the echo context
const UserContextKey = "user_id"

// UserIDMiddleware requires the user identifier header on every request and
// makes it available to handlers
func UserIDMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID := strings.TrimSpace(c.Request().Header.Get(UserIDHeader))
			if userID == "" {
				return response.ErrorResponse(c, http.StatusUnauthorized, "AuthorizationException", "Missing "+UserIDHeader+" header")
			}

			c.Set(UserContextKey, userID)
			return next(c)
		}
	}
}

// UserID returns the user identifier stored by UserIDMiddleware
func UserID(c echo.Context) string {
	userID, _ := c.Get(UserContextKey).(string)
	return userID
}
