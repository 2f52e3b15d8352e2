package search

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	domainIssue "civicfix/internal/domain/issue"
	"civicfix/internal/geo"
	issueUsecase "civicfix/internal/usecase/issue"
	appErrors "civicfix/pkg/errors"
	"civicfix/pkg/utils"
)

// PageSize is the fixed page length of search results.
const PageSize = 20

// radiusMeters maps the fixed radius labels to meters. "All" is the default
// and caps discovery at 50 km.
var radiusMeters = map[string]float64{
	"1 km": 1000,
	"2 km": 2000,
	"3 km": 3000,
	"4 km": 4000,
	"5 km": 5000,
	"All":  50000,
}

// RadiusLabels lists the accepted labels, for input validation and clients.
var RadiusLabels = []string{"1 km", "2 km", "3 km", "4 km", "5 km", "All"}

// Service is the query planner: it composes the geo filter with category,
// status and free-text filters into a single pass over the issue store, then
// paginates. Reads are pure; an abandoned query has no side effects.
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

func (s *Service) Search(ctx context.Context, req *Request) (*Result, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, "Invalid input", err)
	}

	page := req.Page
	if page < 1 {
		page = 1
	}

	// No center point (location permission denied): deliberate fallback to a
	// newest-first listing, not an error.
	if req.Latitude == nil || req.Longitude == nil {
		return s.listWithoutCenter(ctx, req, page)
	}

	maxMeters, err := resolveRadius(req.RadiusLabel)
	if err != nil {
		return nil, err
	}

	matches, err := s.geoIndex.Query(*req.Latitude, *req.Longitude, maxMeters, 0)
	if err != nil {
		return nil, err
	}

	if len(matches) == 0 {
		return &Result{Items: []*Item{}, Total: 0, Page: page}, nil
	}

	ids := make([]uuid.UUID, 0, len(matches))
	distances := make(map[uuid.UUID]float64, len(matches))
	for _, m := range matches {
		ids = append(ids, m.IssueID)
		distances[m.IssueID] = m.DistanceMeters
	}

	issues, err := s.issueRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	filtered := make([]*domainIssue.Issue, 0, len(issues))
	for _, iss := range issues {
		if s.matches(iss, req) {
			filtered = append(filtered, iss)
		}
	}

	// Distance ascending; equidistant issues newest first.
	sort.Slice(filtered, func(i, j int) bool {
		di, dj := distances[filtered[i].ID], distances[filtered[j].ID]
		if di != dj {
			return di < dj
		}
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})

	total := int64(len(filtered))
	pageItems := paginate(filtered, page)

	items := make([]*Item, 0, len(pageItems))
	for _, iss := range pageItems {
		d := distances[iss.ID]
		items = append(items, &Item{
			IssueResponse:  issueUsecase.ToIssueResponse(iss),
			DistanceMeters: &d,
		})
	}

	return &Result{Items: items, Total: total, Page: page}, nil
}

func (s *Service) listWithoutCenter(ctx context.Context, req *Request, page int) (*Result, error) {
	filter := &domainIssue.Filter{
		Search:   req.Text,
		Page:     page,
		PageSize: PageSize,
	}
	if req.Category != "" {
		category := domainIssue.Category(req.Category)
		filter.Category = &category
	}
	if req.Status != "" {
		status := domainIssue.Status(req.Status)
		filter.Status = &status
	}

	issues, total, err := s.issueRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]*Item, 0, len(issues))
	for _, iss := range issues {
		items = append(items, &Item{IssueResponse: issueUsecase.ToIssueResponse(iss)})
	}

	return &Result{Items: items, Total: total, Page: page}, nil
}

// matches applies the categorical, status, free-text and moderation filters
// to one candidate from the geo index.
func (s *Service) matches(iss *domainIssue.Issue, req *Request) bool {
	if !iss.Discoverable() {
		return false
	}
	if req.Category != "" && string(iss.Category) != req.Category {
		return false
	}
	if req.Status != "" && string(iss.Status) != req.Status {
		return false
	}
	if req.Text != "" {
		needle := strings.ToLower(req.Text)
		haystack := strings.ToLower(iss.Title + " " + iss.Description)
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}

func resolveRadius(label string) (float64, error) {
	if label == "" {
		label = "All"
	}
	meters, ok := radiusMeters[label]
	if !ok {
		return 0, appErrors.NewAppError(appErrors.CodeValidation,
			"unknown radius label, expected one of: "+strings.Join(RadiusLabels, ", "), nil)
	}
	return meters, nil
}

func paginate(issues []*domainIssue.Issue, page int) []*domainIssue.Issue {
	start := (page - 1) * PageSize
	if start >= len(issues) {
		return nil
	}
	end := start + PageSize
	if end > len(issues) {
		end = len(issues)
	}
	return issues[start:end]
}
