package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/h2eaux/gestion-api/internal/core/domain"
)

type stubAudit struct {
	events []*domain.AuthEvent
	err    error
}

func (a *stubAudit) InsertEvent(_ context.Context, ev *domain.AuthEvent) error {
	a.events = append(a.events, ev)
	return a.err
}

func gateContext(user *domain.User) echo.Context {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	if user != nil {
		c.Set(UserKey, user)
	}
	return c
}

func TestGate_RequireCapability_Allows(t *testing.T) {
	audit := &stubAudit{}
	gate := NewGate(audit, zerolog.Nop())
	user := &domain.User{ID: "u1", Role: domain.RoleEmployee, Permissions: domain.DefaultPermissions(domain.RoleEmployee)}

	called := false
	handler := gate.RequireCapability(domain.CapClients)(func(c echo.Context) error {
		called = true
		return nil
	})

	if err := handler(gateContext(user)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next handler not called")
	}
	if len(audit.events) != 0 {
		t.Fatalf("expected no audit events, got %d", len(audit.events))
	}
}

func TestGate_RequireCapability_Denies(t *testing.T) {
	audit := &stubAudit{}
	gate := NewGate(audit, zerolog.Nop())
	user := &domain.User{ID: "u2", Username: "employe1", Role: domain.RoleEmployee, Permissions: domain.DefaultPermissions(domain.RoleEmployee)}

	handler := gate.RequireCapability(domain.CapParametres)(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})

	if err := handler(gateContext(user)); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if len(audit.events) != 1 {
		t.Fatalf("expected one audit event, got %d", len(audit.events))
	}
	ev := audit.events[0]
	if ev.Kind != domain.EventAccessDenied || ev.UserID != "u2" || ev.Capability != "parametres" {
		t.Fatalf("unexpected audit event: %+v", ev)
	}
}

func TestGate_AuditFailureStillDenies(t *testing.T) {
	gate := NewGate(&stubAudit{err: errors.New("mongo down")}, zerolog.Nop())
	user := &domain.User{ID: "u3"}

	err := gate.RequireCapability(domain.CapClients)(func(echo.Context) error { return nil })(gateContext(user))
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestGate_RequireRole(t *testing.T) {
	gate := NewGate(nil, zerolog.Nop())
	next := func(echo.Context) error { return nil }

	admin := &domain.User{ID: "a", Role: domain.RoleAdmin}
	if err := gate.RequireRole(domain.RoleAdmin)(next)(gateContext(admin)); err != nil {
		t.Fatalf("admin should pass, got %v", err)
	}

	employee := &domain.User{ID: "e", Role: domain.RoleEmployee, Permissions: domain.DefaultPermissions(domain.RoleAdmin)}
	if err := gate.RequireRole(domain.RoleAdmin)(next)(gateContext(employee)); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("employee should be denied, got %v", err)
	}
}

func TestGate_WithoutIdentity(t *testing.T) {
	gate := NewGate(nil, zerolog.Nop())
	err := gate.RequireCapability(domain.CapClients)(func(echo.Context) error { return nil })(gateContext(nil))
	if !errors.Is(err, domain.ErrMissingAuth) {
		t.Fatalf("expected ErrMissingAuth, got %v", err)
	}
}
