package main

import (
	"context"
	"time"

	"scenario-visualizer/internal/log"
	"scenario-visualizer/internal/playback"
)

// refresher loads the scenario once and, when an interval is set, keeps refetching
// it so a changed scenario replaces the current one.
type refresher struct {
	ctrl     *playback.Controller
	interval time.Duration
	timeout  time.Duration
}

func newRefresher(ctrl *playback.Controller, interval, timeout time.Duration) *refresher {
	return &refresher{ctrl: ctrl, interval: interval, timeout: timeout}
}

func (r *refresher) run(ctx context.Context) {
	r.load(ctx)
	if r.interval <= 0 {
		return
	}

	t := time.NewTimer(r.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.tick(ctx)
			t.Reset(r.interval)
		}
	}
}

// load performs the initial fetch. A failure leaves the board empty.
func (r *refresher) load(ctx context.Context) {
	cctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	if err := r.ctrl.Load(cctx); err != nil {
		log.Warn("Board stays empty until the scenario can be fetched", "error", err)
	}
}

func (r *refresher) tick(ctx context.Context) {
	cctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	changed, err := r.ctrl.Refresh(cctx)
	if err != nil {
		// Already logged by the controller; keep the current scenario.
		return
	}
	if changed {
		log.Info("Scenario replaced", "scenarioID", r.ctrl.Status().ScenarioID)
	}
}
