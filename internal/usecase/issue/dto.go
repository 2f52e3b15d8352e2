package issue

import (
	"time"

	"github.com/google/uuid"

	domainIssue "civicfix/internal/domain/issue"
)

type CreateIssueRequest struct {
	Title       string   `json:"title" validate:"required,min=5,max=200"`
	Description string   `json:"description" validate:"required,min=10,max=2000"`
	Category    string   `json:"category" validate:"required,issue_category"`
	ImageURL    string   `json:"image_url" validate:"required,url"`
	Latitude    *float64 `json:"lat" validate:"required"`
	Longitude   *float64 `json:"lng" validate:"required"`
	IsAnonymous bool     `json:"is_anonymous"`
}

type UpdateTextRequest struct {
	Title       string `json:"title" validate:"required,min=5,max=200"`
	Description string `json:"description" validate:"required,min=10,max=2000"`
	Version     int64  `json:"version" validate:"required,min=1"`
}

type UpdateStatusRequest struct {
	Status  string `json:"status" validate:"required,issue_status"`
	Version int64  `json:"version" validate:"required,min=1"`
}

type ModerateRequest struct {
	Version int64 `json:"version" validate:"required,min=1"`
}

type AuthorResponse struct {
	ID     uuid.UUID `json:"id"`
	Handle string    `json:"handle"`
}

type IssueResponse struct {
	ID             uuid.UUID       `json:"id"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Category       string          `json:"category"`
	Status         string          `json:"status"`
	ModerationFlag string          `json:"moderation_flag"`
	ImageURL       string          `json:"image_url"`
	Latitude       float64         `json:"lat"`
	Longitude      float64         `json:"lng"`
	Author         *AuthorResponse `json:"author,omitempty"`
	IsAnonymous    bool            `json:"is_anonymous"`
	Version        int64           `json:"version"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func ToIssueResponse(iss *domainIssue.Issue) *IssueResponse {
	if iss == nil {
		return nil
	}

	resp := &IssueResponse{
		ID:             iss.ID,
		Title:          iss.Title,
		Description:    iss.Description,
		Category:       string(iss.Category),
		Status:         string(iss.Status),
		ModerationFlag: string(iss.Flag),
		ImageURL:       iss.ImageURL,
		Latitude:       iss.Latitude,
		Longitude:      iss.Longitude,
		IsAnonymous:    iss.Anonymous,
		Version:        iss.Version,
		CreatedAt:      iss.CreatedAt,
		UpdatedAt:      iss.UpdatedAt,
	}

	// Anonymous submissions carry no author reference at all, so there is
	// nothing to hide here; a populated Author is always publishable.
	if iss.Author != nil {
		resp.Author = &AuthorResponse{
			ID:     iss.Author.ID,
			Handle: iss.Author.Handle,
		}
	}

	return resp
}
