package user

import (
	"time"

	"github.com/google/uuid"
)

// Role is the closed set of user roles.
type Role string

const (
	RoleMember    Role = "member"
	RoleModerator Role = "moderator"
)

func (r Role) Valid() bool {
	return r == RoleMember || r == RoleModerator
}

// User represents a registered citizen or moderator.
type User struct {
	ID             uuid.UUID
	Handle         string
	Email          string
	Phone          string
	PasswordHashed string
	Role           Role
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
