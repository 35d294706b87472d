package middleware

import (
	"context"
	"net/http"
	"strings"

	"depot/internal/common"
	"depot/internal/repositories"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// AuthMiddleware validates bearer tokens and resolves the caller's profile.
// Keys come from a JWKS endpoint when configured, otherwise a shared HMAC
// secret is used. The token subject must match a profile row.
type AuthMiddleware struct {
	userRepo   repositories.UserRepository
	jwks       *keyfunc.JWKS
	hmacSecret []byte
}

func NewAuthMiddleware(userRepo repositories.UserRepository, jwksURL, hmacSecret string) (*AuthMiddleware, error) {
	m := &AuthMiddleware{userRepo: userRepo}

	if jwksURL != "" {
		jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{})
		if err != nil {
			return nil, err
		}
		m.jwks = jwks
	} else {
		m.hmacSecret = []byte(hmacSecret)
	}
	return m, nil
}

func (m *AuthMiddleware) keyFunc(token *jwt.Token) (interface{}, error) {
	if m.jwks != nil {
		return m.jwks.Keyfunc(token)
	}
	return m.hmacSecret, nil
}

func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Missing token")
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token format")
		}

		token, err := jwt.Parse(tokenString, m.keyFunc)
		if err != nil || !token.Valid {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid claims")
		}

		sub, ok := claims["sub"].(string)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "Missing subject in token")
		}

		userID, err := uuid.Parse(sub)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid subject format")
		}

		user, err := m.userRepo.GetByID(c.Request().Context(), userID)
		if err != nil || user == nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
		}
		if !user.Active {
			return echo.NewHTTPError(http.StatusForbidden, "User is deactivated")
		}

		ctx := context.WithValue(c.Request().Context(), common.UserIDKey, userID)
		ctx = context.WithValue(ctx, common.RoleKey, user.Role)
		c.SetRequest(c.Request().WithContext(ctx))

		return next(c)
	}
}

// RequireRole gates a route group to the given roles. Authenticate must run
// first so the role is in the request context.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := common.GetRoleFromContext(c.Request().Context())
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
			}
			if _, ok := allowed[role]; !ok {
				return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
			}
			return next(c)
		}
	}
}
