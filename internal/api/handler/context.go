package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/h2eaux/gestion-api/internal/api/middleware"
	"github.com/h2eaux/gestion-api/internal/core/domain"
)

// currentUser returns the identity injected by middleware.Authenticate. Its
// absence means the route was registered without the middleware.
func currentUser(c echo.Context) (*domain.User, error) {
	user := middleware.UserFromContext(c)
	if user == nil {
		return nil, domain.ErrMissingAuth
	}
	return user, nil
}

// bindAndValidate decodes the body into req and runs the registered validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid payload")
	}
	return c.Validate(req)
}
