package playback

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/looplab/fsm"
	"k8s.io/utils/clock"

	"scenario-visualizer/internal/log"
	"scenario-visualizer/internal/metrics"
)

// Playback states and the single transition between them.
const (
	StatePlaying   = "playing"
	StateCompleted = "completed"

	EventComplete = "complete"
)

// DefaultScenarioID is the scenario loaded when none is configured.
const DefaultScenarioID = 1

// ErrNoSource is returned by Load and Refresh when the controller has no Source.
var ErrNoSource = errors.New("playback: no scenario source configured")

// Options selects the controller behaviour.
type Options struct {
	ScenarioID int
	// AutoCompleteEnabled arms the completion timer and makes Completed block Start.
	// With it off, Start always restarts the animation.
	AutoCompleteEnabled bool
	// SourceName labels fetch metrics.
	SourceName string
}

// Option customizes a Controller.
type Option func(*Controller)

// WithClock replaces the real clock, mostly for tests.
func WithClock(clk clock.WithDelayedExecution) Option {
	return func(c *Controller) { c.clock = clk }
}

// WithLogger sets the controller logger.
func WithLogger(l log.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// Controller owns the playback state of one board: the current scenario, the
// rendered vehicle handles, the board view context and the playing/completed machine.
// All methods are safe for concurrent use.
type Controller struct {
	source  Source
	surface Surface
	opts    Options
	clock   clock.WithDelayedExecution
	log     log.Logger

	mu       sync.Mutex
	scenario *Scenario
	handles  []VehicleHandle
	view     ViewContext
	machine  *fsm.FSM
	timer    clock.Timer
	// gen invalidates timers armed for a superseded scenario.
	gen    uint64
	closed bool
}

// NewController builds a controller in the playing state. A zero ScenarioID selects DefaultScenarioID.
func NewController(src Source, surface Surface, opts Options, options ...Option) *Controller {
	if opts.ScenarioID == 0 {
		opts.ScenarioID = DefaultScenarioID
	}
	c := &Controller{
		source:  src,
		surface: surface,
		opts:    opts,
		clock:   clock.RealClock{},
		log:     log.WithName("playback"),
	}
	for _, o := range options {
		o(c)
	}

	c.machine = fsm.NewFSM(
		StatePlaying,
		fsm.Events{
			{Name: EventComplete, Src: []string{StatePlaying}, Dst: StateCompleted},
		},
		fsm.Callbacks{
			"enter_" + StateCompleted: func(_ context.Context, e *fsm.Event) {
				metrics.PlaybackCompleted.Set(1)
				c.log.Info("Scenario completed", "from", e.Src)
			},
		},
	)
	metrics.PlaybackCompleted.Set(0)
	return c
}

// Load fetches the configured scenario once and makes it current. On failure the
// board keeps its previous (possibly empty) content.
func (c *Controller) Load(ctx context.Context) error {
	s, err := c.fetch(ctx)
	if err != nil {
		return err
	}
	c.SetScenario(s)
	return nil
}

// Refresh refetches the scenario and replaces the current one only if its content
// changed. It reports whether a replacement happened.
func (c *Controller) Refresh(ctx context.Context) (bool, error) {
	s, err := c.fetch(ctx)
	if err != nil {
		return false, err
	}

	c.mu.Lock()
	same := c.scenario.Equal(s)
	c.mu.Unlock()
	if same {
		return false, nil
	}
	c.SetScenario(s)
	return true, nil
}

func (c *Controller) fetch(ctx context.Context) (*Scenario, error) {
	if c.source == nil {
		return nil, ErrNoSource
	}
	id := c.opts.ScenarioID
	s, err := c.source.Fetch(ctx, id)
	if err == nil && s == nil {
		err = errors.New("empty scenario")
	}
	if err != nil {
		metrics.ScenarioFetchTotal.WithLabelValues(c.opts.SourceName, "error").Inc()
		c.log.Error(err, "Failed to fetch scenario", "scenarioID", id)
		return nil, fmt.Errorf("fetch scenario %d: %w", id, err)
	}
	metrics.ScenarioFetchTotal.WithLabelValues(c.opts.SourceName, "success").Inc()
	c.log.Info("Fetched scenario", "scenarioID", s.ID, "name", s.Name, "vehicles", len(s.Vehicles), "time", s.Time)
	return s, nil
}

// SetScenario replaces the current scenario wholesale, renders its vehicles and
// rearms the completion timer. The completion state is not reset.
func (c *Controller) SetScenario(s *Scenario) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	c.scenario = s
	c.handles = c.surface.Render(s, c.view)
	metrics.VehiclesRendered.Set(float64(len(c.handles)))
	c.rearmLocked()
	c.publishLocked()
}

func (c *Controller) rearmLocked() {
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if !c.opts.AutoCompleteEnabled || c.scenario == nil || c.scenario.Time <= 0 {
		return
	}

	gen := c.gen
	d := time.Duration(c.scenario.Time * float64(time.Second))
	c.timer = c.clock.AfterFunc(d, func() { c.complete(gen) })
	c.log.Debug("Armed completion timer", "scenarioID", c.scenario.ID, "after", d)
}

// complete is the timer callback: stop every vehicle, then enter Completed.
func (c *Controller) complete(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || gen != c.gen {
		return
	}
	c.timer = nil

	c.stopLocked()
	if c.machine.Is(StatePlaying) {
		if err := c.machine.Event(context.Background(), EventComplete); err != nil {
			c.log.Error(err, "Failed to complete scenario")
		}
	}
	c.publishLocked()
}

// MountBoard publishes the measured board size. It applies once per controller, so
// every viewer shares the first measurement; later calls and non-positive sizes are
// ignored and report false.
func (c *Controller) MountBoard(width, height float64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.view.Mounted {
		return false
	}
	if width <= 0 || height <= 0 {
		c.log.Debug("Board size unavailable", "width", width, "height", height)
		return false
	}

	c.view = ViewContext{BoardWidth: width, BoardHeight: height, Mounted: true}
	c.log.Info("Board mounted", "width", width, "height", height)
	c.publishLocked()
	return true
}

// Start attaches each vehicle's direction class and sets it running. Once the
// scenario has completed, Start does nothing and returns false.
func (c *Controller) Start() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.opts.AutoCompleteEnabled && c.machine.Is(StateCompleted) {
		metrics.PlaybackCommandsTotal.WithLabelValues("start", "ignored").Inc()
		c.log.Debug("Start ignored, scenario already completed")
		return false
	}

	for _, h := range c.handles {
		if d := h.Direction(); d.Valid() {
			h.SetDirectionClass(d)
		} else {
			c.log.Debug("Unknown vehicle direction", "direction", string(d))
		}
		h.SetRunning(true)
	}
	metrics.PlaybackCommandsTotal.WithLabelValues("start", "applied").Inc()
	c.publishLocked()
	return true
}

// Stop pauses every vehicle, in any state.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
	metrics.PlaybackCommandsTotal.WithLabelValues("stop", "applied").Inc()
	c.publishLocked()
}

func (c *Controller) stopLocked() {
	for _, h := range c.handles {
		h.SetRunning(false)
	}
}

// Completed reports whether the scenario reached its declared duration.
func (c *Controller) Completed() bool {
	return c.machine.Is(StateCompleted)
}

// Scenario returns the current scenario, or nil before the first successful load.
func (c *Controller) Scenario() *Scenario {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scenario
}

// Status returns a snapshot of what the surface shows besides vehicles.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statusLocked()
}

func (c *Controller) statusLocked() Status {
	st := Status{
		State:     c.machine.Current(),
		Completed: c.machine.Is(StateCompleted),
		View:      c.view,
	}
	if c.scenario != nil {
		st.ScenarioID = c.scenario.ID
		st.ScenarioName = c.scenario.Name
	}
	return st
}

func (c *Controller) publishLocked() {
	c.surface.Publish(c.statusLocked())
}

// Close disarms the completion timer. The controller ignores new scenarios afterwards.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
