package models

import (
	"time"

	"github.com/google/uuid"
)

// IssueModel represents the database model for Issue. Rows are never deleted;
// moderation only flips moderation_flag and status.
type IssueModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Title       string    `gorm:"type:varchar(200);not null"`
	Description string    `gorm:"type:text;not null"`
	Category    string    `gorm:"type:varchar(100);not null;index"`
	Status      string    `gorm:"type:varchar(20);not null;default:'open';index"`

	ModerationFlag string `gorm:"type:varchar(20);not null;default:'none';index"`

	ImageURL  string  `gorm:"type:text;not null"`
	Latitude  float64 `gorm:"type:double precision;not null;check:latitude >= -90 AND latitude <= 90"`
	Longitude float64 `gorm:"type:double precision;not null;check:longitude >= -180 AND longitude <= 180"`

	AuthorID  *uuid.UUID `gorm:"type:uuid;index"`
	Anonymous bool       `gorm:"not null;default:false"`

	ModeratedBy *uuid.UUID `gorm:"type:uuid"`
	ModeratedAt *time.Time `gorm:"type:timestamptz"`

	// Optimistic concurrency counter; bumped by every successful mutation.
	Version int64 `gorm:"type:bigint;not null;default:1"`

	CreatedAt time.Time `gorm:"not null;index"`
	UpdatedAt time.Time `gorm:"not null"`

	Author *UserModel `gorm:"foreignKey:AuthorID"`
}

func (IssueModel) TableName() string {
	return "issues"
}
