package http

import (
	"errors"
	"net/http"
	"strings"

	"marketorder/internal/core/domain/model/kernel"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// userIDKey is the echo context key under which the authenticated user id is
// stored by AuthMiddleware and read by the handlers.
const userIDKey = "user_id"

// AuthMiddleware authenticates requests with a bearer JWT signed with the given
// secret and stores the token's user id in the echo context under "user_id".
// The acting role is never read from the token: handlers derive it from the
// order's stored participants.
func AuthMiddleware(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if header == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"success": false, "error": "missing authorization header",
				})
			}

			tokenStr, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"success": false, "error": "authorization header must be a bearer token",
				})
			}

			userID, err := parseUserID(tokenStr, secret)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"success": false, "error": "invalid token",
				})
			}

			c.Set(userIDKey, userID)
			return next(c)
		}
	}
}

// parseUserID verifies the token signature and extracts the "id" claim.
func parseUserID(tokenStr string, secret []byte) (kernel.UUID, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		return kernel.UUID{}, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return kernel.UUID{}, errors.New("invalid token claims")
	}

	id, ok := claims["id"].(string)
	if !ok {
		return kernel.UUID{}, errors.New("token has no user id claim")
	}

	return kernel.UUIDFromString(id)
}

// userIDFromContext returns the user id stored by AuthMiddleware.
func userIDFromContext(c echo.Context) (kernel.UUID, bool) {
	userID, ok := c.Get(userIDKey).(kernel.UUID)
	return userID, ok
}
