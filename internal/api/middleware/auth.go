package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/h2eaux/gestion-api/internal/core/domain"
	"github.com/h2eaux/gestion-api/internal/core/ports"
)

// UserKey is the echo context key holding the authenticated *domain.User.
const UserKey = "user"

// Authenticate resolves the bearer token to an identity and stores it under
// UserKey.
//
// A missing header, a non-bearer scheme, or empty credentials fail with
// domain.ErrMissingAuth (403). A bearer token that does not validate fails
// with the authenticator's error, domain.ErrInvalidToken (401).
func Authenticate(auth ports.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return domain.ErrMissingAuth
			}

			user, err := auth.Validate(c.Request().Context(), token)
			if err != nil {
				return err
			}

			c.Set(UserKey, user)
			return next(c)
		}
	}
}

// UserFromContext returns the identity set by Authenticate, or nil.
func UserFromContext(c echo.Context) *domain.User {
	user, _ := c.Get(UserKey).(*domain.User)
	return user
}

func bearerToken(header string) (string, bool) {
	scheme, credentials, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	credentials = strings.TrimSpace(credentials)
	return credentials, credentials != ""
}
