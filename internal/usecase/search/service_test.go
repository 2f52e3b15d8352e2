package search

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainIssue "civicfix/internal/domain/issue"
	"civicfix/internal/geo"
	appErrors "civicfix/pkg/errors"
)

// stubIssueRepo serves a fixed set of issues; mutations are not part of the
// query planner's surface and just panic.
type stubIssueRepo struct {
	issues map[uuid.UUID]*domainIssue.Issue
}

func newStubIssueRepo() *stubIssueRepo {
	return &stubIssueRepo{issues: make(map[uuid.UUID]*domainIssue.Issue)}
}

func (s *stubIssueRepo) add(iss *domainIssue.Issue) {
	s.issues[iss.ID] = iss
}

func (s *stubIssueRepo) Create(context.Context, *domainIssue.Issue) error { panic("not used") }

func (s *stubIssueRepo) GetByID(_ context.Context, issueID uuid.UUID) (*domainIssue.Issue, error) {
	iss, ok := s.issues[issueID]
	if !ok {
		return nil, domainIssue.ErrIssueNotFound
	}
	return iss, nil
}

func (s *stubIssueRepo) GetByIDs(_ context.Context, issueIDs []uuid.UUID) ([]*domainIssue.Issue, error) {
	out := make([]*domainIssue.Issue, 0, len(issueIDs))
	for _, id := range issueIDs {
		if iss, ok := s.issues[id]; ok {
			out = append(out, iss)
		}
	}
	return out, nil
}

func (s *stubIssueRepo) List(_ context.Context, filter *domainIssue.Filter) ([]*domainIssue.Issue, int64, error) {
	var out []*domainIssue.Issue
	for _, iss := range s.issues {
		if !filter.IncludeFlagged && iss.Flag != domainIssue.FlagNone {
			continue
		}
		if filter.Category != nil && iss.Category != *filter.Category {
			continue
		}
		if filter.Status != nil && iss.Status != *filter.Status {
			continue
		}
		if filter.Search != "" {
			haystack := strings.ToLower(iss.Title + " " + iss.Description)
			if !strings.Contains(haystack, strings.ToLower(filter.Search)) {
				continue
			}
		}
		out = append(out, iss)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, int64(len(out)), nil
}

func (s *stubIssueRepo) UpdateStatus(context.Context, uuid.UUID, domainIssue.Status, int64) error {
	panic("not used")
}

func (s *stubIssueRepo) UpdateText(context.Context, uuid.UUID, string, string, int64) error {
	panic("not used")
}

func (s *stubIssueRepo) SetModeration(context.Context, uuid.UUID, domainIssue.ModerationFlag, uuid.UUID, time.Time, int64) error {
	panic("not used")
}

func (s *stubIssueRepo) ClearModeration(context.Context, uuid.UUID, int64) error {
	panic("not used")
}

func (s *stubIssueRepo) ListLocations(_ context.Context) ([]domainIssue.Location, error) {
	var out []domainIssue.Location
	for _, iss := range s.issues {
		if iss.Flag != domainIssue.FlagNone {
			continue
		}
		out = append(out, domainIssue.Location{IssueID: iss.ID, Latitude: iss.Latitude, Longitude: iss.Longitude})
	}
	return out, nil
}

// --- helpers ---

// Times Square is the query center for the proximity scenarios below.
const (
	timesSquareLat = 40.7580
	timesSquareLng = -73.9855
)

type fixture struct {
	svc  *Service
	repo *stubIssueRepo
	idx  *geo.Index
}

func newFixture() *fixture {
	repo := newStubIssueRepo()
	idx := geo.NewIndex()
	return &fixture{
		svc:  NewService(repo, idx),
		repo: repo,
		idx:  idx,
	}
}

func (f *fixture) seed(title string, lat, lng float64, opts ...func(*domainIssue.Issue)) *domainIssue.Issue {
	iss := &domainIssue.Issue{
		ID:          uuid.New(),
		Title:       title,
		Description: "Seeded report for proximity scenarios.",
		Category:    domainIssue.CategoryRoadTransportation,
		Status:      domainIssue.StatusOpen,
		Flag:        domainIssue.FlagNone,
		Latitude:    lat,
		Longitude:   lng,
		Version:     1,
		CreatedAt:   time.Now(),
	}
	for _, opt := range opts {
		opt(iss)
	}

	f.repo.add(iss)
	if iss.Flag == domainIssue.FlagNone {
		if err := f.idx.Insert(iss.ID, lat, lng); err != nil {
			panic(err)
		}
	}
	return iss
}

func withCategory(c domainIssue.Category) func(*domainIssue.Issue) {
	return func(iss *domainIssue.Issue) { iss.Category = c }
}

func withStatus(s domainIssue.Status) func(*domainIssue.Issue) {
	return func(iss *domainIssue.Issue) { iss.Status = s }
}

func withFlag(flag domainIssue.ModerationFlag) func(*domainIssue.Issue) {
	return func(iss *domainIssue.Issue) {
		iss.Flag = flag
		iss.Status = domainIssue.StatusClosed
	}
}

func withCreatedAt(at time.Time) func(*domainIssue.Issue) {
	return func(iss *domainIssue.Issue) { iss.CreatedAt = at }
}

func centerRequest(radius string) *Request {
	lat, lng := timesSquareLat, timesSquareLng
	return &Request{Latitude: &lat, Longitude: &lng, RadiusLabel: radius}
}

func ids(items []*Item) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

// --- proximity scenarios ---

func TestSearch_RadiusExcludesAndIncludes(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	near := f.seed("Pothole by the theater", 40.7589, -73.9851)          // ~100 m
	madison := f.seed("Cracked sidewalk at the arena", 40.7505, -73.9934) // ~1.07 km

	result, err := f.svc.Search(ctx, centerRequest("1 km"))
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, near.ID, result.Items[0].ID)

	result, err = f.svc.Search(ctx, centerRequest("2 km"))
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{near.ID, madison.ID}, ids(result.Items))

	result, err = f.svc.Search(ctx, centerRequest("All"))
	require.NoError(t, err)
	assert.Len(t, result.Items, 2)
}

func TestSearch_OrdersByDistanceAscending(t *testing.T) {
	f := newFixture()

	far := f.seed("Leaking hydrant downtown", 40.7128, -74.0060) // ~5.3 km
	near := f.seed("Pothole by the theater", 40.7589, -73.9851)  // ~100 m
	mid := f.seed("Dark underpass lighting", 40.7505, -73.9934)  // ~1.07 km

	result, err := f.svc.Search(context.Background(), centerRequest("All"))
	require.NoError(t, err)

	assert.Equal(t, []uuid.UUID{near.ID, mid.ID, far.ID}, ids(result.Items))

	require.NotNil(t, result.Items[0].DistanceMeters)
	require.NotNil(t, result.Items[2].DistanceMeters)
	assert.Less(t, *result.Items[0].DistanceMeters, *result.Items[2].DistanceMeters)
}

func TestSearch_EquidistantNewestFirst(t *testing.T) {
	f := newFixture()
	now := time.Now()

	older := f.seed("Pothole reported first", 40.7505, -73.9934, withCreatedAt(now.Add(-time.Hour)))
	newer := f.seed("Pothole reported second", 40.7505, -73.9934, withCreatedAt(now))

	result, err := f.svc.Search(context.Background(), centerRequest("2 km"))
	require.NoError(t, err)
	require.Len(t, result.Items, 2)
	assert.Equal(t, newer.ID, result.Items[0].ID)
	assert.Equal(t, older.ID, result.Items[1].ID)
}

func TestSearch_UnknownRadiusLabel(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Search(context.Background(), centerRequest("10 km"))
	require.Error(t, err)
	assert.Equal(t, appErrors.CodeValidation, appErrors.CodeOf(err))
}

func TestSearch_EmptyRadiusDefaultsToAll(t *testing.T) {
	f := newFixture()
	f.seed("Leaking hydrant downtown", 40.7128, -74.0060) // ~5.3 km, outside every km label

	result, err := f.svc.Search(context.Background(), centerRequest(""))
	require.NoError(t, err)
	assert.Len(t, result.Items, 1)
}

// --- filter composition ---

func TestSearch_CategoryAndStatusFilters(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	road := f.seed("Pothole by the theater", 40.7589, -73.9851)
	water := f.seed("Leaking hydrant nearby", 40.7575, -73.9860,
		withCategory(domainIssue.CategoryWaterSanitation))
	f.seed("Crew already on this pothole", 40.7570, -73.9850,
		withStatus(domainIssue.StatusInProgress))

	req := centerRequest("All")
	req.Category = string(domainIssue.CategoryWaterSanitation)
	result, err := f.svc.Search(ctx, req)
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, water.ID, result.Items[0].ID)

	req = centerRequest("All")
	req.Status = string(domainIssue.StatusOpen)
	result, err = f.svc.Search(ctx, req)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{road.ID, water.ID}, ids(result.Items))
}

func TestSearch_TextFilterIsCaseInsensitive(t *testing.T) {
	f := newFixture()

	hydrant := f.seed("Leaking HYDRANT on the corner", 40.7575, -73.9860)
	f.seed("Pothole by the theater", 40.7589, -73.9851)

	req := centerRequest("All")
	req.Text = "hydrant"

	result, err := f.svc.Search(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, hydrant.ID, result.Items[0].ID)
}

// Flagged issues never surface, no matter how the query is phrased.
func TestSearch_FlaggedNeverDiscoverable(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	visible := f.seed("Pothole by the theater", 40.7589, -73.9851)
	flagged := f.seed("Spam report right next door", 40.7589, -73.9851, withFlag(domainIssue.FlagSpam))

	requests := []*Request{
		centerRequest("All"),
		centerRequest("1 km"),
		{}, // no-center fallback
	}
	for _, req := range requests {
		result, err := f.svc.Search(ctx, req)
		require.NoError(t, err)
		for _, item := range result.Items {
			assert.NotEqual(t, flagged.ID, item.ID)
		}
	}

	result, err := f.svc.Search(ctx, centerRequest("All"))
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{visible.ID}, ids(result.Items))
}

// A flag applied between two identical queries only ever shrinks the result.
func TestSearch_ModerationShrinksResults(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.seed("Pothole by the theater", 40.7589, -73.9851)
	target := f.seed("Soon to be flagged", 40.7575, -73.9860)

	before, err := f.svc.Search(ctx, centerRequest("All"))
	require.NoError(t, err)
	require.Len(t, before.Items, 2)

	target.Flag = domainIssue.FlagSpam
	target.Status = domainIssue.StatusClosed
	f.idx.Remove(target.ID)

	after, err := f.svc.Search(ctx, centerRequest("All"))
	require.NoError(t, err)
	require.Len(t, after.Items, 1)

	seen := map[uuid.UUID]bool{}
	for _, item := range after.Items {
		seen[item.ID] = true
	}
	for _, item := range before.Items {
		if item.ID != target.ID {
			assert.True(t, seen[item.ID], "moderation removed an unrelated issue from the results")
		}
	}
}

// --- no-center fallback ---

func TestSearch_NoCenterListsNewestFirst(t *testing.T) {
	f := newFixture()
	now := time.Now()

	older := f.seed("Reported an hour ago", 40.7589, -73.9851, withCreatedAt(now.Add(-time.Hour)))
	newer := f.seed("Reported just now", 40.7128, -74.0060, withCreatedAt(now))

	result, err := f.svc.Search(context.Background(), &Request{})
	require.NoError(t, err)
	require.Len(t, result.Items, 2)
	assert.Equal(t, newer.ID, result.Items[0].ID)
	assert.Equal(t, older.ID, result.Items[1].ID)
	assert.Nil(t, result.Items[0].DistanceMeters)
}

func TestSearch_NoCenterAppliesFilters(t *testing.T) {
	f := newFixture()

	water := f.seed("Leaking hydrant", 40.7575, -73.9860, withCategory(domainIssue.CategoryWaterSanitation))
	f.seed("Pothole by the theater", 40.7589, -73.9851)

	result, err := f.svc.Search(context.Background(), &Request{
		Category: string(domainIssue.CategoryWaterSanitation),
	})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, water.ID, result.Items[0].ID)
}

// --- pagination ---

func TestSearch_Pagination(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	// 25 issues in a tight cluster, distances strictly increasing.
	for i := 0; i < 25; i++ {
		f.seed("Clustered report", timesSquareLat+float64(i)*0.0002, timesSquareLng)
	}

	first, err := f.svc.Search(ctx, centerRequest("All"))
	require.NoError(t, err)
	assert.Equal(t, int64(25), first.Total)
	assert.Len(t, first.Items, PageSize)
	assert.Equal(t, 1, first.Page)

	req := centerRequest("All")
	req.Page = 2
	second, err := f.svc.Search(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, int64(25), second.Total)
	assert.Len(t, second.Items, 5)
	assert.Equal(t, 2, second.Page)

	// Pages never overlap.
	firstIDs := map[uuid.UUID]bool{}
	for _, item := range first.Items {
		firstIDs[item.ID] = true
	}
	for _, item := range second.Items {
		assert.False(t, firstIDs[item.ID])
	}

	// The second page continues where the first ended, still distance ordered.
	lastOfFirst := first.Items[len(first.Items)-1]
	assert.LessOrEqual(t, *lastOfFirst.DistanceMeters, *second.Items[0].DistanceMeters)
}

func TestSearch_PageBeyondResults(t *testing.T) {
	f := newFixture()
	f.seed("Single report", 40.7589, -73.9851)

	req := centerRequest("All")
	req.Page = 3

	result, err := f.svc.Search(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, result.Items)
	assert.Equal(t, int64(1), result.Total)
}

func TestSearch_InvalidCenter(t *testing.T) {
	f := newFixture()

	lat, lng := 91.0, 0.0
	_, err := f.svc.Search(context.Background(), &Request{Latitude: &lat, Longitude: &lng})
	require.Error(t, err)
	assert.Equal(t, appErrors.CodeInvalidCoordinate, appErrors.CodeOf(err))
}

func TestSearch_EmptyAreaIsNotAnError(t *testing.T) {
	f := newFixture()

	result, err := f.svc.Search(context.Background(), centerRequest("All"))
	require.NoError(t, err)
	assert.Empty(t, result.Items)
	assert.Zero(t, result.Total)
}
