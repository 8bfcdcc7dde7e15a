package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/h2eaux/gestion-api/internal/core/domain"
	"github.com/h2eaux/gestion-api/internal/core/service"
)

// --- in-memory stores ---

type memUsers struct {
	mu    sync.Mutex
	byID  map[string]*domain.User
	names map[string]string
}

func newMemUsers() *memUsers {
	return &memUsers{byID: make(map[string]*domain.User), names: make(map[string]string)}
}

func (m *memUsers) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.names[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u := *m.byID[id]
	return &u, nil
}

func (m *memUsers) FindByID(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.names[user.Username]; ok {
		return nil, domain.ErrUserExists
	}
	cp := *user
	m.byID[user.ID] = &cp
	m.names[user.Username] = user.ID
	return user, nil
}

func (m *memUsers) setPermissions(username string, p domain.Permissions) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[m.names[username]].Permissions = p
}

type memClients struct {
	mu   sync.Mutex
	byID map[string]*domain.Client
}

func (m *memClients) Create(_ context.Context, c *domain.Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.byID[c.ID] = &cp
	return nil
}

func (m *memClients) List(_ context.Context, limit int) ([]*domain.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Client, 0, len(m.byID))
	for _, c := range m.byID {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memClients) FindByID(_ context.Context, id string) (*domain.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrClientNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memClients) Update(_ context.Context, id string, patch domain.ClientPatch, updatedAt time.Time) (*domain.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrClientNotFound
	}
	patch.Apply(c)
	c.UpdatedAt = updatedAt
	cp := *c
	return &cp, nil
}

func (m *memClients) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return domain.ErrClientNotFound
	}
	delete(m.byID, id)
	return nil
}

type memAudit struct {
	mu     sync.Mutex
	events []domain.AuthEvent
}

func (m *memAudit) InsertEvent(_ context.Context, ev *domain.AuthEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, *ev)
	return nil
}

func (m *memAudit) count(kind domain.AuthEventKind) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, ev := range m.events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

// --- harness ---

type testServer struct {
	e     *echo.Echo
	users *memUsers
	audit *memAudit
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	users := newMemUsers()
	clients := &memClients{byID: make(map[string]*domain.Client)}
	audit := &memAudit{}
	log := zerolog.Nop()

	if err := service.NewBootstrapper(users, log).EnsureSeedIdentities(context.Background(), service.DefaultSeeds()); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	auth, err := service.NewAuthService(users, audit, "router-test-secret", time.Hour, log)
	if err != nil {
		t.Fatalf("auth service: %v", err)
	}

	e := NewRouter(Dependencies{
		AuthService:   auth,
		ClientService: service.NewClientService(clients, nil, log),
		Audit:         audit,
		Logger:        log,
	})
	return &testServer{e: e, users: users, audit: audit}
}

func (s *testServer) do(t *testing.T, method, path, authorization, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if authorization != "" {
		req.Header.Set(echo.HeaderAuthorization, authorization)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) login(t *testing.T, username, password string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/auth/login", "", `{"username":"`+username+`","password":"`+password+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d: %s", username, rec.Code, rec.Body.String())
	}
	var resp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	decode(t, rec, &resp)
	if resp.AccessToken == "" || resp.TokenType != "bearer" {
		t.Fatalf("unexpected login response: %s", rec.Body.String())
	}
	return "Bearer " + resp.AccessToken
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp errorResponse
	decode(t, rec, &resp)
	return resp.Error
}

// --- scenarios ---

func TestRouter_Health(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/api/health", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp map[string]string
	decode(t, rec, &resp)
	if resp["status"] != "ok" || resp["message"] != "H2EAUX Gestion API is running" {
		t.Fatalf("unexpected body: %v", resp)
	}
}

func TestRouter_Login(t *testing.T) {
	s := newTestServer(t)

	s.login(t, "admin", "admin123")

	wrongPassword := s.do(t, http.MethodPost, "/api/auth/login", "", `{"username":"admin","password":"nope"}`)
	unknownUser := s.do(t, http.MethodPost, "/api/auth/login", "", `{"username":"ghost","password":"nope"}`)
	for _, rec := range []*httptest.ResponseRecorder{wrongPassword, unknownUser} {
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		if msg := errorMessage(t, rec); msg != "incorrect username or password" {
			t.Fatalf("unexpected message %q", msg)
		}
	}
	if wrongPassword.Body.String() != unknownUser.Body.String() {
		t.Fatalf("responses must not reveal whether the username exists")
	}

	missing := s.do(t, http.MethodPost, "/api/auth/login", "", `{"username":"admin"}`)
	if missing.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", missing.Code)
	}

	if n := s.audit.count(domain.EventLoginFailed); n != 2 {
		t.Fatalf("expected 2 login_failed events, got %d", n)
	}
}

func TestRouter_AuthHeaderAsymmetry(t *testing.T) {
	s := newTestServer(t)

	for _, header := range []string{"", "Token abc", "Bearer"} {
		rec := s.do(t, http.MethodGet, "/api/clients", header, "")
		if rec.Code != http.StatusForbidden {
			t.Fatalf("%q: expected 403, got %d", header, rec.Code)
		}
		if msg := errorMessage(t, rec); msg != "not authenticated" {
			t.Fatalf("%q: unexpected message %q", header, msg)
		}
	}

	rec := s.do(t, http.MethodGet, "/api/clients", "Bearer garbage", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if got := rec.Header().Get(echo.HeaderWWWAuthenticate); got != "Bearer" {
		t.Fatalf("expected WWW-Authenticate: Bearer, got %q", got)
	}
}

func TestRouter_ClientLifecycle(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, "admin", "admin123")

	rec := s.do(t, http.MethodPost, "/api/clients", admin, `{"nom":"Dubois","prenom":"Jean","ville":"Lyon"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("create: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var created domain.Client
	decode(t, rec, &created)
	if created.ID == "" || created.Nom != "Dubois" || created.Prenom != "Jean" {
		t.Fatalf("unexpected client: %+v", created)
	}
	if !created.CreatedAt.Equal(created.UpdatedAt) {
		t.Fatalf("created_at and updated_at should match on create")
	}

	rec = s.do(t, http.MethodGet, "/api/clients", admin, "")
	var list []domain.Client
	decode(t, rec, &list)
	if len(list) != 1 || list[0].ID != created.ID {
		t.Fatalf("unexpected list: %+v", list)
	}

	rec = s.do(t, http.MethodPut, "/api/clients/"+created.ID, admin, `{"telephone":"0600000000"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var updated domain.Client
	decode(t, rec, &updated)
	if updated.Telephone != "0600000000" || updated.Ville != "Lyon" || updated.Nom != "Dubois" {
		t.Fatalf("partial update lost fields: %+v", updated)
	}

	rec = s.do(t, http.MethodDelete, "/api/clients/"+created.ID, admin, "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Client deleted successfully") {
		t.Fatalf("delete: got %d %s", rec.Code, rec.Body.String())
	}

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		rec = s.do(t, method, "/api/clients/"+created.ID, admin, "")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("%s after delete: expected 404, got %d", method, rec.Code)
		}
	}

	rec = s.do(t, http.MethodPut, "/api/clients/unknown", admin, `{"notes":"x"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("update unknown: expected 404, got %d", rec.Code)
	}
}

func TestRouter_CreateClientValidation(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, "admin", "admin123")

	rec := s.do(t, http.MethodPost, "/api/clients", admin, `{"nom":"Dubois"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}

	rec = s.do(t, http.MethodGet, "/api/clients", admin, "")
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("nothing should be stored, got %s", rec.Body.String())
	}
}

func TestRouter_RegisterRequiresAdmin(t *testing.T) {
	s := newTestServer(t)
	employee := s.login(t, "employe1", "employe123")

	rec := s.do(t, http.MethodPost, "/api/auth/register", employee, `{"username":"tech2","password":"pw"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if _, err := s.users.FindByUsername(context.Background(), "tech2"); err == nil {
		t.Fatalf("identity must not be created")
	}

	rec = s.do(t, http.MethodGet, "/api/clients", employee, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("employee should reach clients, got %d", rec.Code)
	}
}

func TestRouter_RegisterByAdmin(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, "admin", "admin123")

	rec := s.do(t, http.MethodPost, "/api/auth/register", admin, `{"username":"tech2","password":"pw2"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var user map[string]any
	decode(t, rec, &user)
	if user["role"] != "employee" {
		t.Fatalf("role should default to employee: %v", user)
	}
	if _, ok := user["hashed_password"]; ok {
		t.Fatalf("password hash leaked: %v", user)
	}

	rec = s.do(t, http.MethodPost, "/api/auth/register", admin, `{"username":"tech2","password":"other"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("duplicate: expected 400, got %d", rec.Code)
	}

	tech := s.login(t, "tech2", "pw2")
	rec = s.do(t, http.MethodGet, "/api/auth/me", tech, "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"username":"tech2"`) {
		t.Fatalf("me: got %d %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_RegisterPasswordTooLong(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, "admin", "admin123")

	body := `{"username":"tech9","password":"` + strings.Repeat("a", 80) + `"}`
	rec := s.do(t, http.MethodPost, "/api/auth/register", admin, body)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "at most 72 bytes") {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
	if _, err := s.users.FindByUsername(context.Background(), "tech9"); err == nil {
		t.Fatalf("identity must not be created")
	}
}

func TestRouter_CapabilityDenied(t *testing.T) {
	s := newTestServer(t)
	perms := domain.DefaultPermissions(domain.RoleEmployee)
	perms.Clients = false
	s.users.setPermissions("employe1", perms)

	employee := s.login(t, "employe1", "employe123")
	rec := s.do(t, http.MethodPost, "/api/clients", employee, `{"nom":"Dubois","prenom":"Jean"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if n := s.audit.count(domain.EventAccessDenied); n != 1 {
		t.Fatalf("expected one access_denied event, got %d", n)
	}
}

func TestRouter_MetricsAndNotFound(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/api/auth/login", "", `{"username":"admin","password":"nope"}`)

	rec := s.do(t, http.MethodGet, "/metrics", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	for _, name := range []string{"h2eaux_login_attempts_total", "h2eaux_http_requests_total"} {
		if !strings.Contains(rec.Body.String(), name) {
			t.Fatalf("metrics output missing %s", name)
		}
	}

	rec = s.do(t, http.MethodGet, "/api/nowhere", "", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if msg := errorMessage(t, rec); msg != "Not Found" {
		t.Fatalf("unexpected message %q", msg)
	}
}
