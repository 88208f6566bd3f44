package main

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scenario-visualizer/internal/playback"
)

// sequenceSource returns its scenarios in order, repeating the last one, and
// fails every call listed in failOn (1-based).
type sequenceSource struct {
	mu        sync.Mutex
	scenarios []*playback.Scenario
	failOn    map[int]bool
	calls     int
}

func (s *sequenceSource) Fetch(_ context.Context, _ int) (*playback.Scenario, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.failOn[s.calls] {
		return nil, errors.New("upstream unavailable")
	}
	return s.scenarios[min(s.calls, len(s.scenarios))-1], nil
}

func (s *sequenceSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func newRefresherController(t *testing.T, src playback.Source) *playback.Controller {
	t.Helper()
	ctrl := playback.NewController(src, newBoard(&recordingHub{}, false, fixedColor), playback.Options{})
	t.Cleanup(ctrl.Close)
	return ctrl
}

func TestRefresher_ZeroIntervalFetchesOnce(t *testing.T) {
	src := &sequenceSource{scenarios: []*playback.Scenario{demoScenario()}}
	ctrl := newRefresherController(t, src)

	newRefresher(ctrl, 0, time.Second).run(context.Background())

	assert.Equal(t, 1, src.callCount())
	require.NotNil(t, ctrl.Scenario())
	assert.Equal(t, "demo", ctrl.Scenario().Name)
}

func TestRefresher_LoadFailureLeavesBoardEmpty(t *testing.T) {
	src := &sequenceSource{scenarios: []*playback.Scenario{demoScenario()}, failOn: map[int]bool{1: true}}
	ctrl := newRefresherController(t, src)

	newRefresher(ctrl, 0, time.Second).run(context.Background())

	assert.Nil(t, ctrl.Scenario())
}

func TestRefresher_ReplacesChangedScenarioUntilCancelled(t *testing.T) {
	changed := demoScenario()
	changed.Name = "demo v2"
	src := &sequenceSource{
		scenarios: []*playback.Scenario{demoScenario(), demoScenario(), changed},
		failOn:    map[int]bool{2: true},
	}
	ctrl := newRefresherController(t, src)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		newRefresher(ctrl, 5*time.Millisecond, time.Second).run(ctx)
	}()

	assert.Eventually(t, func() bool {
		s := ctrl.Scenario()
		return s != nil && s.Name == "demo v2"
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("refresher did not stop after cancellation")
	}

	calls := src.callCount()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, calls, src.callCount())
}
