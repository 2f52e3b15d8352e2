package geo

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	domainIssue "civicfix/internal/domain/issue"
	appErrors "civicfix/pkg/errors"
)

// Match is one proximity query hit.
type Match struct {
	IssueID        uuid.UUID
	DistanceMeters float64
}

type entry struct {
	lat float64
	lng float64
}

// Index keeps issue locations in memory and answers radius queries ordered by
// ascending distance. Queries run against a snapshot taken under the read
// lock, so a concurrent insert or rebuild is never half-observed.
type Index struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]entry
}

func NewIndex() *Index {
	return &Index{
		entries: make(map[uuid.UUID]entry),
	}
}

// Insert adds or replaces the location of one issue. Idempotent on re-insert
// with the same id.
func (idx *Index) Insert(issueID uuid.UUID, lat, lng float64) error {
	if !ValidCoordinate(lat, lng) {
		return appErrors.NewAppError(appErrors.CodeInvalidCoordinate,
			"latitude or longitude out of range", domainIssue.ErrInvalidCoordinate)
	}

	idx.mu.Lock()
	idx.entries[issueID] = entry{lat: lat, lng: lng}
	idx.mu.Unlock()

	return nil
}

// Remove drops an issue from the index, e.g. after a moderation flag takes it
// out of discovery. Removing an unknown id is a no-op.
func (idx *Index) Remove(issueID uuid.UUID) {
	idx.mu.Lock()
	delete(idx.entries, issueID)
	idx.mu.Unlock()
}

// Rebuild atomically replaces the whole index with the given locations.
// Entries with out-of-range coordinates are skipped; the store guarantees
// they do not exist.
func (idx *Index) Rebuild(locations []domainIssue.Location) {
	fresh := make(map[uuid.UUID]entry, len(locations))
	for _, loc := range locations {
		if !ValidCoordinate(loc.Latitude, loc.Longitude) {
			continue
		}
		fresh[loc.IssueID] = entry{lat: loc.Latitude, lng: loc.Longitude}
	}

	idx.mu.Lock()
	idx.entries = fresh
	idx.mu.Unlock()
}

// Len returns the number of indexed issues.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.entries)
}

// Query returns every issue within maxMeters of the center, nearest first,
// capped at limit (limit <= 0 means no cap). An empty result is not an error.
func (idx *Index) Query(lat, lng, maxMeters float64, limit int) ([]Match, error) {
	if !ValidCoordinate(lat, lng) {
		return nil, appErrors.NewAppError(appErrors.CodeInvalidCoordinate,
			"latitude or longitude out of range", domainIssue.ErrInvalidCoordinate)
	}

	idx.mu.RLock()
	matches := make([]Match, 0, len(idx.entries))
	for id, e := range idx.entries {
		d := HaversineMeters(lat, lng, e.lat, e.lng)
		if d <= maxMeters {
			matches = append(matches, Match{IssueID: id, DistanceMeters: d})
		}
	}
	idx.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].DistanceMeters != matches[j].DistanceMeters {
			return matches[i].DistanceMeters < matches[j].DistanceMeters
		}
		// Deterministic order for equidistant issues.
		return matches[i].IssueID.String() < matches[j].IssueID.String()
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	return matches, nil
}
