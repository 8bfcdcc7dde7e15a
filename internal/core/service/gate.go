package service

import "github.com/h2eaux/gestion-api/internal/core/domain"

// Authorize is the permission gate: it returns nil when user holds the
// capability and domain.ErrForbidden otherwise. A nil user is denied.
func Authorize(user *domain.User, capability domain.Capability) error {
	if user == nil || !user.Permissions.Allows(capability) {
		return domain.ErrForbidden
	}
	return nil
}
