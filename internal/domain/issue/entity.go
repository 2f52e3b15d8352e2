package issue

import (
	"time"

	"github.com/google/uuid"
)

// Status represents the lifecycle status of an issue
type Status string

const (
	StatusOpen       Status = "open"        // Reported, awaiting triage
	StatusInProgress Status = "in_progress" // A crew or department is on it
	StatusResolved   Status = "resolved"    // Fixed, pending confirmation
	StatusClosed     Status = "closed"      // Terminal unless a moderator reopens
)

func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusResolved, StatusClosed:
		return true
	}
	return false
}

// ModerationFlag is the terminal classification a moderator applies to remove
// an issue from discovery without deleting it.
type ModerationFlag string

const (
	FlagNone    ModerationFlag = "none"
	FlagSpam    ModerationFlag = "spam"
	FlagInvalid ModerationFlag = "invalid"
)

func (f ModerationFlag) Valid() bool {
	return f == FlagNone || f == FlagSpam || f == FlagInvalid
}

// Category is the closed set of issue categories.
type Category string

const (
	CategoryRoadTransportation Category = "Road & Transportation"
	CategoryWaterSanitation    Category = "Water & Sanitation"
	CategoryPublicSafety       Category = "Public Safety"
	CategoryParksRecreation    Category = "Parks & Recreation"
	CategoryStreetLighting     Category = "Street Lighting"
	CategoryWasteManagement    Category = "Waste Management"
	CategoryNoiseComplaints    Category = "Noise Complaints"
	CategoryOther              Category = "Other"
)

// Categories lists every valid category, in presentation order.
var Categories = []Category{
	CategoryRoadTransportation,
	CategoryWaterSanitation,
	CategoryPublicSafety,
	CategoryParksRecreation,
	CategoryStreetLighting,
	CategoryWasteManagement,
	CategoryNoiseComplaints,
	CategoryOther,
}

func (c Category) Valid() bool {
	for _, valid := range Categories {
		if c == valid {
			return true
		}
	}
	return false
}

// Issue represents a single reported civic problem.
//
// Invariants: location is always present and in WGS84 bounds; a non-none
// moderation flag forces status to closed and removes the issue from
// discovery; issues are never physically deleted.
type Issue struct {
	ID          uuid.UUID
	Title       string
	Description string
	Category    Category
	Status      Status
	Flag        ModerationFlag

	ImageURL  string
	Latitude  float64
	Longitude float64

	// AuthorID is nil for anonymous submissions; Anonymous additionally hides
	// a known author from public responses.
	AuthorID  *uuid.UUID
	Anonymous bool

	ModeratedBy *uuid.UUID
	ModeratedAt *time.Time

	// Version is the optimistic-concurrency counter; every successful
	// mutation bumps it.
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time

	Author *AuthorRef
}

// AuthorRef is the minimal author projection attached to read models.
type AuthorRef struct {
	ID     uuid.UUID
	Handle string
}

// Discoverable reports whether the issue may appear in search results.
func (i *Issue) Discoverable() bool {
	return i.Flag == FlagNone
}

// OwnedBy reports whether userID is the (non-anonymous) author of the issue.
func (i *Issue) OwnedBy(userID uuid.UUID) bool {
	return i.AuthorID != nil && *i.AuthorID == userID
}
