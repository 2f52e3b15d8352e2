package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	domainIssue "civicfix/internal/domain/issue"
	"civicfix/internal/infrastructure/database/postgres/models"
)

type IssueRepository struct {
	db *DB
}

func NewIssueRepository(db *DB) *IssueRepository {
	return &IssueRepository{db: db}
}

func (r *IssueRepository) Create(ctx context.Context, iss *domainIssue.Issue) error {
	iss.ID = uuid.New()
	now := time.Now()
	iss.CreatedAt = now
	iss.UpdatedAt = now
	iss.Version = 1
	if iss.Status == "" {
		iss.Status = domainIssue.StatusOpen
	}
	if iss.Flag == "" {
		iss.Flag = domainIssue.FlagNone
	}

	dbModel := toIssueModel(iss)
	if err := r.db.DB.WithContext(ctx).Create(dbModel).Error; err != nil {
		return fmt.Errorf("failed to create issue: %w", err)
	}

	iss.ID = dbModel.ID

	return nil
}

func (r *IssueRepository) GetByID(ctx context.Context, issueID uuid.UUID) (*domainIssue.Issue, error) {
	var dbModel models.IssueModel
	err := r.db.DB.WithContext(ctx).
		Preload("Author").
		Where("id = ?", issueID).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainIssue.ErrIssueNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get issue: %w", err)
	}

	return toIssueEntity(&dbModel), nil
}

func (r *IssueRepository) GetByIDs(ctx context.Context, issueIDs []uuid.UUID) ([]*domainIssue.Issue, error) {
	if len(issueIDs) == 0 {
		return nil, nil
	}

	var dbModels []models.IssueModel
	err := r.db.DB.WithContext(ctx).
		Preload("Author").
		Where("id IN ?", issueIDs).
		Find(&dbModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get issues: %w", err)
	}

	issues := make([]*domainIssue.Issue, 0, len(dbModels))
	for i := range dbModels {
		issues = append(issues, toIssueEntity(&dbModels[i]))
	}

	return issues, nil
}

func (r *IssueRepository) List(ctx context.Context, filter *domainIssue.Filter) ([]*domainIssue.Issue, int64, error) {
	var dbModels []models.IssueModel
	var total int64

	db := r.db.DB.WithContext(ctx).Model(&models.IssueModel{}).Preload("Author")

	if !filter.IncludeFlagged {
		db = db.Where("moderation_flag = ?", string(domainIssue.FlagNone))
	}
	if filter.Category != nil {
		db = db.Where("category = ?", string(*filter.Category))
	}
	if filter.Status != nil {
		db = db.Where("status = ?", string(*filter.Status))
	}
	if filter.AuthorID != nil {
		db = db.Where("author_id = ?", *filter.AuthorID)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		db = db.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count issues: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	err := db.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&dbModels).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list issues: %w", err)
	}

	issues := make([]*domainIssue.Issue, 0, len(dbModels))
	for i := range dbModels {
		issues = append(issues, toIssueEntity(&dbModels[i]))
	}

	return issues, total, nil
}

// casUpdate applies updates only when the stored version still equals
// expectedVersion; the loser of a concurrent race sees ErrVersionConflict.
func (r *IssueRepository) casUpdate(ctx context.Context, issueID uuid.UUID, expectedVersion int64, updates map[string]interface{}) error {
	updates["version"] = expectedVersion + 1
	updates["updated_at"] = time.Now()

	result := r.db.DB.WithContext(ctx).
		Model(&models.IssueModel{}).
		Where("id = ? AND version = ?", issueID, expectedVersion).
		Updates(updates)

	if result.Error != nil {
		return fmt.Errorf("failed to update issue: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		// Distinguish a missing row from a lost race.
		var count int64
		if err := r.db.DB.WithContext(ctx).
			Model(&models.IssueModel{}).
			Where("id = ?", issueID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check issue existence: %w", err)
		}
		if count == 0 {
			return domainIssue.ErrIssueNotFound
		}
		return domainIssue.ErrVersionConflict
	}

	return nil
}

func (r *IssueRepository) UpdateStatus(ctx context.Context, issueID uuid.UUID, status domainIssue.Status, expectedVersion int64) error {
	return r.casUpdate(ctx, issueID, expectedVersion, map[string]interface{}{
		"status": string(status),
	})
}

func (r *IssueRepository) UpdateText(ctx context.Context, issueID uuid.UUID, title, description string, expectedVersion int64) error {
	return r.casUpdate(ctx, issueID, expectedVersion, map[string]interface{}{
		"title":       title,
		"description": description,
	})
}

func (r *IssueRepository) SetModeration(ctx context.Context, issueID uuid.UUID, flag domainIssue.ModerationFlag, moderatorID uuid.UUID, at time.Time, expectedVersion int64) error {
	return r.casUpdate(ctx, issueID, expectedVersion, map[string]interface{}{
		"moderation_flag": string(flag),
		"status":          string(domainIssue.StatusClosed),
		"moderated_by":    moderatorID,
		"moderated_at":    at,
	})
}

func (r *IssueRepository) ClearModeration(ctx context.Context, issueID uuid.UUID, expectedVersion int64) error {
	return r.casUpdate(ctx, issueID, expectedVersion, map[string]interface{}{
		"moderation_flag": string(domainIssue.FlagNone),
		"status":          string(domainIssue.StatusOpen),
		"moderated_by":    nil,
		"moderated_at":    nil,
	})
}

func (r *IssueRepository) ListLocations(ctx context.Context) ([]domainIssue.Location, error) {
	var rows []struct {
		ID        uuid.UUID
		Latitude  float64
		Longitude float64
	}

	err := r.db.DB.WithContext(ctx).
		Model(&models.IssueModel{}).
		Select("id", "latitude", "longitude").
		Where("moderation_flag = ?", string(domainIssue.FlagNone)).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list issue locations: %w", err)
	}

	locations := make([]domainIssue.Location, 0, len(rows))
	for _, row := range rows {
		locations = append(locations, domainIssue.Location{
			IssueID:   row.ID,
			Latitude:  row.Latitude,
			Longitude: row.Longitude,
		})
	}

	return locations, nil
}

func toIssueModel(iss *domainIssue.Issue) *models.IssueModel {
	return &models.IssueModel{
		ID:             iss.ID,
		Title:          iss.Title,
		Description:    iss.Description,
		Category:       string(iss.Category),
		Status:         string(iss.Status),
		ModerationFlag: string(iss.Flag),
		ImageURL:       iss.ImageURL,
		Latitude:       iss.Latitude,
		Longitude:      iss.Longitude,
		AuthorID:       iss.AuthorID,
		Anonymous:      iss.Anonymous,
		ModeratedBy:    iss.ModeratedBy,
		ModeratedAt:    iss.ModeratedAt,
		Version:        iss.Version,
		CreatedAt:      iss.CreatedAt,
		UpdatedAt:      iss.UpdatedAt,
	}
}

func toIssueEntity(m *models.IssueModel) *domainIssue.Issue {
	iss := &domainIssue.Issue{
		ID:             m.ID,
		Title:          m.Title,
		Description:    m.Description,
		Category:       domainIssue.Category(m.Category),
		Status:         domainIssue.Status(m.Status),
		Flag:           domainIssue.ModerationFlag(m.ModerationFlag),
		ImageURL:       m.ImageURL,
		Latitude:       m.Latitude,
		Longitude:      m.Longitude,
		AuthorID:       m.AuthorID,
		Anonymous:      m.Anonymous,
		ModeratedBy:    m.ModeratedBy,
		ModeratedAt:    m.ModeratedAt,
		Version:        m.Version,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}

	if m.Author != nil {
		iss.Author = &domainIssue.AuthorRef{
			ID:     m.Author.ID,
			Handle: m.Author.Handle,
		}
	}

	return iss
}
