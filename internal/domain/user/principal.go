package user

import "github.com/google/uuid"

// Principal is the authenticated identity attached to a request. Core
// operations receive it explicitly instead of reading ambient auth state.
// The zero value is the anonymous principal.
type Principal struct {
	UserID uuid.UUID
	Role   Role
}

// Anonymous is the principal of an unauthenticated request.
var Anonymous = Principal{}

func (p Principal) IsAnonymous() bool {
	return p.UserID == uuid.Nil
}

func (p Principal) IsModerator() bool {
	return p.Role == RoleModerator
}
