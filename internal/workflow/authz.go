package workflow

import (
	"fmt"

	"loan-service/internal/models"
)

// Principal is the authenticated caller of an operation.
type Principal struct {
	ID   string
	Role models.Role
}

// CanAdminister reports whether p may act on any user's requests.
func CanAdminister(p Principal) bool {
	return p.Role == models.RoleAdmin
}

// CanView reports whether p may read an entity owned by ownerID.
func CanView(p Principal, ownerID string) bool {
	return (p.ID != "" && p.ID == ownerID) || CanAdminister(p)
}

func requireAuthenticated(p Principal) error {
	if p.ID == "" {
		return ErrAuthentication
	}
	return nil
}

func requireAdmin(p Principal) error {
	if err := requireAuthenticated(p); err != nil {
		return err
	}
	if !CanAdminister(p) {
		return fmt.Errorf("%w: admin role required", ErrAuthorization)
	}
	return nil
}

func requireViewer(p Principal, ownerID string) error {
	if err := requireAuthenticated(p); err != nil {
		return err
	}
	if !CanView(p, ownerID) {
		return fmt.Errorf("%w: request belongs to another user", ErrAuthorization)
	}
	return nil
}
