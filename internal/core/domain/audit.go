package domain

import "time"

// AuthEventKind classifies an entry of the security audit trail.
type AuthEventKind string

const (
	EventLoginSucceeded  AuthEventKind = "login_succeeded"
	EventLoginFailed     AuthEventKind = "login_failed"
	EventIdentityCreated AuthEventKind = "identity_created"
	EventAccessDenied    AuthEventKind = "access_denied"
)

// AuthEvent is one security-relevant action recorded for later review.
type AuthEvent struct {
	Kind       AuthEventKind
	Username   string
	UserID     string // subject of the event; empty when it could not be resolved
	ActorID    string // identity that performed the action, when it differs from UserID
	Capability string // set for access_denied
	Timestamp  time.Time
}
