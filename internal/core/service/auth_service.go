package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/h2eaux/gestion-api/internal/core/domain"
	"github.com/h2eaux/gestion-api/internal/core/ports"
)

// DefaultTokenTTL is the session lifetime used when none is configured.
const DefaultTokenTTL = 7 * 24 * time.Hour

// hashCost is the bcrypt work factor, matching the hashes already stored
// for existing accounts. Tests lower it to keep runs fast.
var hashCost = 12

// maxPasswordBytes is the longest input bcrypt accepts.
const maxPasswordBytes = 72

// AuthService implements login, token validation and account creation.
type AuthService struct {
	repo      ports.UserRepository
	audit     ports.AuditRepository
	jwtSecret []byte
	tokenTTL  time.Duration
	log       zerolog.Logger

	// dummyHash is compared against when the username is unknown so that
	// both failure paths pay for one bcrypt comparison.
	dummyHash []byte
}

func NewAuthService(repo ports.UserRepository, audit ports.AuditRepository, jwtSecret string, tokenTTL time.Duration, log zerolog.Logger) (*AuthService, error) {
	if tokenTTL <= 0 {
		tokenTTL = DefaultTokenTTL
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("h2eaux-dummy-password"), hashCost)
	if err != nil {
		return nil, fmt.Errorf("auth service: dummy hash: %w", err)
	}
	return &AuthService{
		repo:      repo,
		audit:     audit,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		log:       log,
		dummyHash: dummy,
	}, nil
}

// Login verifies the credentials and mints a session token. Unknown
// usernames and wrong passwords both yield domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return "", nil, fmt.Errorf("login: %w", err)
	}

	hash := s.dummyHash
	if user != nil {
		hash = []byte(user.PasswordHash)
	}
	if bcrypt.CompareHashAndPassword(hash, []byte(password)) != nil || user == nil {
		s.record(ctx, domain.AuthEvent{Kind: domain.EventLoginFailed, Username: username})
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, fmt.Errorf("login: sign token: %w", err)
	}

	s.record(ctx, domain.AuthEvent{Kind: domain.EventLoginSucceeded, Username: user.Username, UserID: user.ID})
	return token, user, nil
}

// Validate checks signature and expiry of token and resolves its subject to
// a live identity.
func (s *AuthService) Validate(ctx context.Context, token string) (*domain.User, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", domain.ErrInvalidToken, domain.ErrTokenExpired)
		}
		return nil, domain.ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, domain.ErrInvalidToken
	}

	user, err := s.repo.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, fmt.Errorf("validate token: %w", err)
	}
	return user, nil
}

// Register creates a new account on behalf of an admin requestor. The new
// account receives the default permission set of its role. No token is
// issued for it.
func (s *AuthService) Register(ctx context.Context, requestor *domain.User, username, password string, role domain.Role) (*domain.User, error) {
	if !requestor.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	created, err := newIdentity(ctx, s.repo, username, password, role, domain.DefaultPermissions(role))
	if err != nil {
		return nil, err
	}

	s.record(ctx, domain.AuthEvent{Kind: domain.EventIdentityCreated, Username: created.Username, UserID: created.ID, ActorID: requestor.ID})
	s.log.Info().Str("username", created.Username).Str("role", string(created.Role)).Str("by", requestor.Username).Msg("identity created")
	return created, nil
}

// newIdentity hashes the password and persists a new identity. Register and
// the startup bootstrap both go through it.
func newIdentity(ctx context.Context, repo ports.UserRepository, username, password string, role domain.Role, perms domain.Permissions) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", domain.ErrValidation)
	}
	if len(password) > maxPasswordBytes {
		return nil, fmt.Errorf("%w: password must be at most %d bytes", domain.ErrValidation, maxPasswordBytes)
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		Permissions:  perms,
		CreatedAt:    time.Now().UTC().Truncate(time.Millisecond),
	}
	return repo.Create(ctx, user)
}

func (s *AuthService) generateToken(user *domain.User) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   user.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.jwtSecret)
}

// record writes to the audit trail. Failures are logged, never returned.
func (s *AuthService) record(ctx context.Context, ev domain.AuthEvent) {
	if s.audit == nil {
		return
	}
	ev.Timestamp = time.Now().UTC()
	if err := s.audit.InsertEvent(ctx, &ev); err != nil {
		s.log.Warn().Err(err).Str("kind", string(ev.Kind)).Str("username", ev.Username).Msg("failed to insert audit event")
	}
}
