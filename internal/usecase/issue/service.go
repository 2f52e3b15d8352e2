package issue

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domainIssue "civicfix/internal/domain/issue"
	domainUser "civicfix/internal/domain/user"
	"civicfix/internal/geo"
	"civicfix/internal/logger"
	"civicfix/internal/moderation"
	appErrors "civicfix/pkg/errors"
	"civicfix/pkg/utils"
)

// Service implements the issue store use cases: creation, reads, lifecycle
// transitions and moderation. Every operation takes the already-authenticated
// principal explicitly; there is no ambient auth state.
type Service struct {
	issueRepo domainIssue.Repository
	geoIndex  *geo.Index
}

func NewService(issueRepo domainIssue.Repository, geoIndex *geo.Index) *Service {
	return &Service{
		issueRepo: issueRepo,
		geoIndex:  geoIndex,
	}
}

// Create persists a new issue and indexes its location. Requires an
// authenticated principal; an anonymous submission drops the author
// reference entirely instead of hiding it.
func (s *Service) Create(ctx context.Context, actor domainUser.Principal, req *CreateIssueRequest) (*IssueResponse, error) {
	if actor.IsAnonymous() {
		return nil, appErrors.NewAppError(appErrors.CodeUnauthenticated,
			"authentication required", appErrors.ErrUnauthenticated)
	}

	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, "Invalid input", err)
	}

	lat, lng := *req.Latitude, *req.Longitude
	if !geo.ValidCoordinate(lat, lng) {
		return nil, appErrors.NewAppError(appErrors.CodeInvalidCoordinate,
			"latitude or longitude out of range", domainIssue.ErrInvalidCoordinate)
	}

	iss := &domainIssue.Issue{
		Title:       utils.SanitizeString(req.Title),
		Description: utils.SanitizeText(req.Description),
		Category:    domainIssue.Category(req.Category),
		Status:      domainIssue.StatusOpen,
		Flag:        domainIssue.FlagNone,
		ImageURL:    req.ImageURL,
		Latitude:    lat,
		Longitude:   lng,
		Anonymous:   req.IsAnonymous,
	}
	if !req.IsAnonymous {
		authorID := actor.UserID
		iss.AuthorID = &authorID
	}

	if err := s.issueRepo.Create(ctx, iss); err != nil {
		return nil, err
	}

	if err := s.geoIndex.Insert(iss.ID, lat, lng); err != nil {
		// The store is authoritative; the next index rebuild picks the issue
		// up even if this insert failed.
		logger.Warn("Failed to index new issue",
			zap.String("issue_id", iss.ID.String()),
			zap.Error(err),
		)
	}

	logger.Info("Issue created",
		zap.String("issue_id", iss.ID.String()),
		zap.String("category", string(iss.Category)),
		zap.Bool("anonymous", iss.Anonymous),
		zap.String("event", "issue_created"),
	)

	created, err := s.issueRepo.GetByID(ctx, iss.ID)
	if err != nil {
		return nil, err
	}

	return ToIssueResponse(created), nil
}

// Get returns one issue. Moderation-flagged issues stay visible to the
// moderators and to their own author, and are NotFound to everyone else.
func (s *Service) Get(ctx context.Context, actor domainUser.Principal, issueID uuid.UUID) (*IssueResponse, error) {
	iss, err := s.issueRepo.GetByID(ctx, issueID)
	if err != nil {
		return nil, mapRepoError(err)
	}

	if !iss.Discoverable() && !actor.IsModerator() && !iss.OwnedBy(actor.UserID) {
		return nil, appErrors.NewAppError(appErrors.CodeNotFound, "issue not found", domainIssue.ErrIssueNotFound)
	}

	return ToIssueResponse(iss), nil
}

// UpdateText lets the author revise title and description while the issue is
// still open. Compare-and-swap on the version the client last saw.
func (s *Service) UpdateText(ctx context.Context, actor domainUser.Principal, issueID uuid.UUID, req *UpdateTextRequest) (*IssueResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, "Invalid input", err)
	}

	iss, err := s.issueRepo.GetByID(ctx, issueID)
	if err != nil {
		return nil, mapRepoError(err)
	}

	if err := moderation.ValidateTextEdit(actor, iss); err != nil {
		return nil, err
	}

	title := utils.SanitizeString(req.Title)
	description := utils.SanitizeText(req.Description)

	if err := s.issueRepo.UpdateText(ctx, issueID, title, description, req.Version); err != nil {
		return nil, mapRepoError(err)
	}

	logger.Info("Issue text updated",
		zap.String("issue_id", issueID.String()),
		zap.String("actor_id", actor.UserID.String()),
		zap.String("event", "issue_text_updated"),
	)

	return s.reload(ctx, issueID)
}

// UpdateStatus moves an issue along its lifecycle. Legality is delegated to
// the moderation transition table; persistence is compare-and-swap, so of two
// concurrent writers exactly one wins and the loser gets a conflict.
func (s *Service) UpdateStatus(ctx context.Context, actor domainUser.Principal, issueID uuid.UUID, req *UpdateStatusRequest) (*IssueResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, "Invalid input", err)
	}

	iss, err := s.issueRepo.GetByID(ctx, issueID)
	if err != nil {
		return nil, mapRepoError(err)
	}

	newStatus := domainIssue.Status(req.Status)
	if err := moderation.ValidateStatusTransition(actor, iss, newStatus); err != nil {
		return nil, err
	}

	if err := s.issueRepo.UpdateStatus(ctx, issueID, newStatus, req.Version); err != nil {
		return nil, mapRepoError(err)
	}

	logger.Info("Issue status updated",
		zap.String("issue_id", issueID.String()),
		zap.String("from", string(iss.Status)),
		zap.String("to", string(newStatus)),
		zap.String("actor_id", actor.UserID.String()),
		zap.String("event", "issue_status_updated"),
	)

	return s.reload(ctx, issueID)
}

// Flag applies a spam/invalid moderation flag: the issue is forced to closed
// and drops out of discovery, but the record survives.
func (s *Service) Flag(ctx context.Context, actor domainUser.Principal, issueID uuid.UUID, flag domainIssue.ModerationFlag, req *ModerateRequest) (*IssueResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, "Invalid input", err)
	}

	iss, err := s.issueRepo.GetByID(ctx, issueID)
	if err != nil {
		return nil, mapRepoError(err)
	}

	if err := moderation.ValidateFlag(actor, iss, flag); err != nil {
		return nil, err
	}

	if err := s.issueRepo.SetModeration(ctx, issueID, flag, actor.UserID, time.Now(), req.Version); err != nil {
		return nil, mapRepoError(err)
	}

	s.geoIndex.Remove(issueID)

	logger.Info("Issue moderation-flagged",
		zap.String("issue_id", issueID.String()),
		zap.String("flag", string(flag)),
		zap.String("moderator_id", actor.UserID.String()),
		zap.String("event", "issue_flagged"),
	)

	return s.reload(ctx, issueID)
}

// Unflag clears a moderation flag and reopens the issue. Moderator-only
// administrative override.
func (s *Service) Unflag(ctx context.Context, actor domainUser.Principal, issueID uuid.UUID, req *ModerateRequest) (*IssueResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, "Invalid input", err)
	}

	iss, err := s.issueRepo.GetByID(ctx, issueID)
	if err != nil {
		return nil, mapRepoError(err)
	}

	if err := moderation.ValidateUnflag(actor, iss); err != nil {
		return nil, err
	}

	if err := s.issueRepo.ClearModeration(ctx, issueID, req.Version); err != nil {
		return nil, mapRepoError(err)
	}

	if err := s.geoIndex.Insert(issueID, iss.Latitude, iss.Longitude); err != nil {
		logger.Warn("Failed to re-index unflagged issue",
			zap.String("issue_id", issueID.String()),
			zap.Error(err),
		)
	}

	logger.Info("Issue moderation flag cleared",
		zap.String("issue_id", issueID.String()),
		zap.String("moderator_id", actor.UserID.String()),
		zap.String("event", "issue_unflagged"),
	)

	return s.reload(ctx, issueID)
}

// ListOwn returns the caller's own reports, newest first, including flagged
// ones so authors can see moderation outcomes.
func (s *Service) ListOwn(ctx context.Context, actor domainUser.Principal, page int) ([]*IssueResponse, int64, error) {
	if actor.IsAnonymous() {
		return nil, 0, appErrors.NewAppError(appErrors.CodeUnauthenticated,
			"authentication required", appErrors.ErrUnauthenticated)
	}

	authorID := actor.UserID
	issues, total, err := s.issueRepo.List(ctx, &domainIssue.Filter{
		AuthorID:       &authorID,
		IncludeFlagged: true,
		Page:           page,
		PageSize:       20,
	})
	if err != nil {
		return nil, 0, err
	}

	responses := make([]*IssueResponse, 0, len(issues))
	for _, iss := range issues {
		responses = append(responses, ToIssueResponse(iss))
	}

	return responses, total, nil
}

func (s *Service) reload(ctx context.Context, issueID uuid.UUID) (*IssueResponse, error) {
	iss, err := s.issueRepo.GetByID(ctx, issueID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return ToIssueResponse(iss), nil
}

// mapRepoError lifts the store's sentinel errors into the coded taxonomy.
func mapRepoError(err error) error {
	switch {
	case errors.Is(err, domainIssue.ErrIssueNotFound):
		return appErrors.NewAppError(appErrors.CodeNotFound, "issue not found", err)
	case errors.Is(err, domainIssue.ErrVersionConflict):
		return appErrors.NewAppError(appErrors.CodeConflict,
			"issue was modified concurrently, re-read and retry", err)
	default:
		return err
	}
}
