package playback

import (
	"context"
	"slices"
	"sync"
)

type fakeHandle struct {
	mu        sync.Mutex
	dir       Direction
	classes   []string
	playState string
}

func (h *fakeHandle) Direction() Direction { return h.dir }

func (h *fakeHandle) SetDirectionClass(d Direction) {
	h.mu.Lock()
	defer h.mu.Unlock()
	class, ok := d.ClassName()
	if !ok || slices.Contains(h.classes, class) {
		return
	}
	h.classes = append(h.classes, class)
}

func (h *fakeHandle) SetRunning(running bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if running {
		h.playState = "running"
	} else {
		h.playState = "paused"
	}
}

func (h *fakeHandle) state() (classes []string, playState string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.classes), h.playState
}

type fakeSurface struct {
	mu        sync.Mutex
	handles   []*fakeHandle
	renders   int
	published []Status
}

func (s *fakeSurface) Render(sc *Scenario, _ ViewContext) []VehicleHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.renders++
	s.handles = nil
	out := make([]VehicleHandle, 0, len(sc.Vehicles))
	for _, v := range sc.Vehicles {
		h := &fakeHandle{dir: v.Direction}
		s.handles = append(s.handles, h)
		out = append(out, h)
	}
	return out
}

func (s *fakeSurface) Publish(st Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.published = append(s.published, st)
}

func (s *fakeSurface) lastStatus() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.published) == 0 {
		return Status{}
	}
	return s.published[len(s.published)-1]
}

func (s *fakeSurface) handle(i int) *fakeHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handles[i]
}

type fakeSource struct {
	mu        sync.Mutex
	scenarios []*Scenario
	err       error
	calls     int
	lastID    int
}

func (f *fakeSource) Fetch(_ context.Context, id int) (*Scenario, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastID = id
	if f.err != nil {
		return nil, f.err
	}
	i := min(f.calls-1, len(f.scenarios)-1)
	return f.scenarios[i], nil
}
