package search

import (
	issueUsecase "civicfix/internal/usecase/issue"
)

// Request carries one proximity search. Lat/Lng are optional: without a
// center the planner falls back to a newest-first listing.
type Request struct {
	Latitude  *float64 `form:"lat"`
	Longitude *float64 `form:"lng"`

	// RadiusLabel is one of "1 km".."5 km" or "All" (the default).
	RadiusLabel string `form:"radius"`

	Category string `form:"category" validate:"omitempty,issue_category"`
	Status   string `form:"status" validate:"omitempty,issue_status"`
	Text     string `form:"text" validate:"omitempty,max=200"`

	Page int `form:"page" validate:"omitempty,min=1"`
}

// Result is one page of matches plus the total count before pagination.
type Result struct {
	Items []*Item `json:"items"`
	Total int64   `json:"total"`
	Page  int     `json:"page"`
}

// Item is an issue plus its distance from the query center; DistanceMeters is
// nil for the no-center fallback listing.
type Item struct {
	*issueUsecase.IssueResponse
	DistanceMeters *float64 `json:"distance_meters,omitempty"`
}
