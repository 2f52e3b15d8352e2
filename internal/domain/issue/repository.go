package issue

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for issue repository operations.
//
// Mutations that take expectedVersion are compare-and-swap: the update
// applies only if the stored version still equals expectedVersion, otherwise
// ErrVersionConflict is returned and the caller must re-read and retry.
// There is deliberately no Delete: moderation is the only removal path and it
// is a soft one.
type Repository interface {
	Create(ctx context.Context, issue *Issue) error
	GetByID(ctx context.Context, issueID uuid.UUID) (*Issue, error)
	GetByIDs(ctx context.Context, issueIDs []uuid.UUID) ([]*Issue, error)
	List(ctx context.Context, filter *Filter) ([]*Issue, int64, error)

	UpdateStatus(ctx context.Context, issueID uuid.UUID, status Status, expectedVersion int64) error
	UpdateText(ctx context.Context, issueID uuid.UUID, title, description string, expectedVersion int64) error
	SetModeration(ctx context.Context, issueID uuid.UUID, flag ModerationFlag, moderatorID uuid.UUID, at time.Time, expectedVersion int64) error
	ClearModeration(ctx context.Context, issueID uuid.UUID, expectedVersion int64) error

	// ListLocations returns the coordinates of every discoverable issue, for
	// geo index rebuilds.
	ListLocations(ctx context.Context) ([]Location, error)
}

// Location is the projection the geo index is built from.
type Location struct {
	IssueID   uuid.UUID
	Latitude  float64
	Longitude float64
}

// Filter represents filtering options for listing issues without a center
// point. Results are ordered newest first.
type Filter struct {
	Category *Category
	Status   *Status
	AuthorID *uuid.UUID

	// Search is a case-insensitive substring match over title + description.
	Search string

	// IncludeFlagged widens the listing to moderated issues; only moderator
	// paths may set it.
	IncludeFlagged bool

	Page     int
	PageSize int
}
