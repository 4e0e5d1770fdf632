// Package refresh re-fetches records on a cron schedule and publishes each
// good snapshot. A failed fetch keeps the previous snapshot in place.
package refresh

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"plancal/internal/config"
	appLog "plancal/internal/log"
	"plancal/internal/model"
)

// Loader produces a snapshot from a source configuration.
type Loader interface {
	Load(ctx context.Context, src config.SourceConfig) (model.Snapshot, error)
}

// Sink receives every successfully loaded snapshot.
type Sink interface {
	Set(snap model.Snapshot)
}

// Refresher wraps a cron scheduler running one refresh job.
type Refresher struct {
	loader Loader
	src    config.SourceConfig
	sink   Sink
	cron   *cron.Cron

	// serialises runs so a slow fetch never overlaps the next tick
	mu sync.Mutex
}

// New creates a Refresher whose schedule is evaluated in loc.
func New(loader Loader, src config.SourceConfig, sink Sink, loc *time.Location) *Refresher {
	if loc == nil {
		loc = time.Local
	}
	return &Refresher{
		loader: loader,
		src:    src,
		sink:   sink,
		cron:   cron.New(cron.WithLocation(loc)),
	}
}

// RefreshNow loads once and hands the snapshot to the sink.
func (r *Refresher) RefreshNow(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	snap, err := r.loader.Load(ctx, r.src)
	if err != nil {
		return err
	}
	r.sink.Set(snap)
	appLog.Info("snapshot refreshed",
		"tasks", len(snap.Tasks),
		"habits", len(snap.Habits),
		"logs", len(snap.Logs),
		"took", time.Since(start).Round(time.Millisecond).String(),
	)
	return nil
}

// Start schedules RefreshNow with a standard five-field cron spec and
// starts the scheduler. Jobs run with ctx; errors are logged.
func (r *Refresher) Start(ctx context.Context, spec string) error {
	_, err := r.cron.AddFunc(spec, func() {
		if err := r.RefreshNow(ctx); err != nil {
			appLog.Error("scheduled refresh failed; keeping previous snapshot", err)
		}
	})
	if err != nil {
		return fmt.Errorf("refresh: bad schedule %q: %w", spec, err)
	}
	r.cron.Start()
	appLog.Info("refresh scheduled", "cron", spec)
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (r *Refresher) Stop() {
	<-r.cron.Stop().Done()
}
