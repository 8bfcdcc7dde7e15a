package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/h2eaux/gestion-api/internal/api/metrics"
	"github.com/h2eaux/gestion-api/internal/core/domain"
	"github.com/h2eaux/gestion-api/internal/core/ports"
	"github.com/h2eaux/gestion-api/internal/core/service"
)

// Gate enforces per-route authorization on the identity stored by
// Authenticate. Denials are counted and written to the audit trail.
type Gate struct {
	audit ports.AuditRepository
	log   zerolog.Logger
}

// NewGate builds a Gate. audit may be nil.
func NewGate(audit ports.AuditRepository, log zerolog.Logger) *Gate {
	return &Gate{audit: audit, log: log}
}

// RequireCapability lets the request through only when the identity holds
// capability. It must run after Authenticate and before any body binding.
func (g *Gate) RequireCapability(capability domain.Capability) echo.MiddlewareFunc {
	return g.require(string(capability), func(u *domain.User) error {
		return service.Authorize(u, capability)
	})
}

// RequireRole lets the request through only when the identity has role.
func (g *Gate) RequireRole(role domain.Role) echo.MiddlewareFunc {
	return g.require("role:"+string(role), func(u *domain.User) error {
		if u == nil || u.Role != role {
			return domain.ErrForbidden
		}
		return nil
	})
}

func (g *Gate) require(requirement string, check func(*domain.User) error) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := UserFromContext(c)
			if user == nil {
				return domain.ErrMissingAuth
			}
			if err := check(user); err != nil {
				metrics.AuthorizationDecisionsTotal.WithLabelValues(requirement, "denied").Inc()
				g.recordDenial(c, user, requirement)
				return err
			}
			metrics.AuthorizationDecisionsTotal.WithLabelValues(requirement, "allowed").Inc()
			return next(c)
		}
	}
}

func (g *Gate) recordDenial(c echo.Context, user *domain.User, requirement string) {
	if g.audit == nil {
		return
	}
	ev := &domain.AuthEvent{
		Kind:       domain.EventAccessDenied,
		Username:   user.Username,
		UserID:     user.ID,
		Capability: requirement,
		Timestamp:  time.Now().UTC(),
	}
	if err := g.audit.InsertEvent(c.Request().Context(), ev); err != nil {
		g.log.Warn().Err(err).Str("user_id", user.ID).Str("requirement", requirement).Msg("failed to insert audit event")
	}
}
