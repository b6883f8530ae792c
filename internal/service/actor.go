package service

import (
	"context"

	"github.com/fitdash/fitdash-api/internal/domain"
	"github.com/fitdash/fitdash-api/internal/store"
	"github.com/google/uuid"
)

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UserID uuid.UUID
	Role   domain.Role
}

// IsAdmin reports whether the actor bypasses ownership checks.
func (a Actor) IsAdmin() bool {
	return a.Role == domain.RoleAdmin
}

// CanManage reports whether the actor may manage resources owned by ownerID.
func (a Actor) CanManage(ownerID uuid.UUID) bool {
	return a.IsAdmin() || a.UserID == ownerID
}

// HasRole reports whether the actor holds one of roles. Admins hold every role.
func (a Actor) HasRole(roles ...domain.Role) bool {
	if a.IsAdmin() {
		return true
	}
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}

// ownedGym loads a gym and checks that actor manages it.
func ownedGym(ctx context.Context, gyms store.GymStore, actor Actor, gymID uuid.UUID) (*domain.Gym, error) {
	gym, err := gyms.GetByID(ctx, gymID)
	if err != nil {
		return nil, err
	}
	if !actor.CanManage(gym.OwnerID) {
		return nil, ErrForbidden
	}
	return gym, nil
}
