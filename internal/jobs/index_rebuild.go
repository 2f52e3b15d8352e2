package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	domainIssue "civicfix/internal/domain/issue"
	"civicfix/internal/geo"
	"civicfix/internal/logger"
)

// IndexRebuilder periodically reloads the in-memory geo index from the issue
// store. The store stays authoritative; the rebuild reconciles any insert the
// index missed, e.g. after a crash or a failed write-through.
type IndexRebuilder struct {
	issueRepo domainIssue.Repository
	geoIndex  *geo.Index
	schedule  string
	cron      *cron.Cron
}

func NewIndexRebuilder(issueRepo domainIssue.Repository, geoIndex *geo.Index, schedule string) *IndexRebuilder {
	return &IndexRebuilder{
		issueRepo: issueRepo,
		geoIndex:  geoIndex,
		schedule:  schedule,
		cron:      cron.New(),
	}
}

// Start runs one immediate rebuild, then schedules the recurring one. The
// initial rebuild is fatal-on-error: a service that cannot load its index
// should not come up serving empty proximity results.
func (r *IndexRebuilder) Start(ctx context.Context) error {
	if err := r.Rebuild(ctx); err != nil {
		return err
	}

	if _, err := r.cron.AddFunc(r.schedule, func() {
		rebuildCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := r.Rebuild(rebuildCtx); err != nil {
			logger.Error("Scheduled geo index rebuild failed", zap.Error(err))
		}
	}); err != nil {
		return err
	}

	r.cron.Start()
	logger.Info("Geo index rebuild scheduled", zap.String("schedule", r.schedule))
	return nil
}

// Stop halts the schedule and waits for a running rebuild to finish.
func (r *IndexRebuilder) Stop() {
	stopCtx := r.cron.Stop()
	<-stopCtx.Done()
}

func (r *IndexRebuilder) Rebuild(ctx context.Context) error {
	start := time.Now()

	locations, err := r.issueRepo.ListLocations(ctx)
	if err != nil {
		return err
	}

	r.geoIndex.Rebuild(locations)

	logger.Info("Geo index rebuilt",
		zap.Int("indexed", r.geoIndex.Len()),
		zap.Duration("took", time.Since(start)),
	)
	return nil
}
