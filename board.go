package main

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"

	"scenario-visualizer/internal/playback"
)

// Marker attribute value carried by every vehicle element.
const vehicleAnimationMarker = "vehicle-move"

// Grid overlay dimensions of the board.
const (
	gridColumns = 14
	gridRows    = 6
)

// Play-state values mirrored into the element style.
const (
	playStateRunning = "running"
	playStatePaused  = "paused"
)

// elementState is the browser-side vehicle element as the board sees it.
type elementState struct {
	VehicleID         int      `json:"vehicleId"`
	Name              string   `json:"name"`
	Animation         string   `json:"animation"`
	Direction         string   `json:"direction"`
	Classes           []string `json:"classes"`
	PlayState         string   `json:"playState,omitempty"`
	Left              string   `json:"left"`
	Top               string   `json:"top"`
	Color             string   `json:"color"`
	AnimationDuration string   `json:"animationDuration"`
	AnimationFillMode string   `json:"animationFillMode"`
}

// boardSnapshot is the full board state pushed to viewers.
type boardSnapshot struct {
	Type        string            `json:"type"`
	Status      playback.Status   `json:"status"`
	Styles      map[string]string `json:"styles"`
	GridOverlay bool              `json:"gridOverlay"`
	GridColumns int               `json:"gridColumns"`
	GridRows    int               `json:"gridRows"`
	// Generation changes on every render; viewers rebuild their elements when it does.
	Generation uint64         `json:"generation"`
	Vehicles   []elementState `json:"vehicles"`
}

// board is the playback surface: it keeps the element model of the page and
// pushes it to every connected viewer through the hub.
type board struct {
	hub         broadcaster
	color       func() string
	gridOverlay bool

	mu         sync.Mutex
	elements   []*vehicleElement
	generation uint64
	status     playback.Status
}

type broadcaster interface {
	broadcast(msg any)
}

var _ playback.Surface = (*board)(nil)

func newBoard(hub broadcaster, gridOverlay bool, color func() string) *board {
	if color == nil {
		color = hslColor
	}
	return &board{
		hub:         hub,
		color:       color,
		gridOverlay: gridOverlay,
		status:      playback.Status{State: playback.StatePlaying},
	}
}

func (b *board) Render(s *playback.Scenario, _ playback.ViewContext) []playback.VehicleHandle {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.generation++
	b.elements = make([]*vehicleElement, 0, len(s.Vehicles))
	handles := make([]playback.VehicleHandle, 0, len(s.Vehicles))
	for _, v := range s.Vehicles {
		el := &vehicleElement{
			board: b,
			dir:   v.Direction,
			state: elementState{
				VehicleID:         v.ID,
				Name:              v.Name,
				Animation:         vehicleAnimationMarker,
				Direction:         string(v.Direction),
				Classes:           []string{},
				Left:              v.X,
				Top:               v.Y,
				Color:             b.color(),
				AnimationDuration: v.AnimationDuration(),
				AnimationFillMode: "forwards",
			},
		}
		b.elements = append(b.elements, el)
		handles = append(handles, el)
	}
	return handles
}

// Publish records the status and broadcasts the board. Broadcasting under the
// board lock keeps viewers from seeing snapshots out of order.
func (b *board) Publish(st playback.Status) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.status = st
	b.hub.broadcast(b.snapshotLocked())
}

func (b *board) snapshot() boardSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshotLocked()
}

// subscribe hands the current snapshot to fn while no Publish can interleave.
func (b *board) subscribe(fn func(boardSnapshot) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return fn(b.snapshotLocked())
}

func (b *board) snapshotLocked() boardSnapshot {
	out := boardSnapshot{
		Type:        "board",
		Status:      b.status,
		Styles:      b.status.View.StyleProperties(),
		GridOverlay: b.gridOverlay,
		GridColumns: gridColumns,
		GridRows:    gridRows,
		Generation:  b.generation,
		Vehicles:    make([]elementState, 0, len(b.elements)),
	}
	for _, el := range b.elements {
		st := el.state
		st.Classes = slices.Clone(st.Classes)
		out.Vehicles = append(out.Vehicles, st)
	}
	return out
}

// vehicleElement is the handle of one rendered vehicle. Its state is guarded by
// the board lock.
type vehicleElement struct {
	board *board
	dir   playback.Direction
	state elementState
}

func (e *vehicleElement) Direction() playback.Direction { return e.dir }

func (e *vehicleElement) SetDirectionClass(d playback.Direction) {
	class, ok := d.ClassName()
	if !ok {
		return
	}
	e.board.mu.Lock()
	defer e.board.mu.Unlock()
	if !slices.Contains(e.state.Classes, class) {
		e.state.Classes = append(e.state.Classes, class)
	}
}

func (e *vehicleElement) SetRunning(running bool) {
	e.board.mu.Lock()
	defer e.board.mu.Unlock()
	if running {
		e.state.PlayState = playStateRunning
	} else {
		e.state.PlayState = playStatePaused
	}
}

func hslColor() string {
	return fmt.Sprintf("hsl(%.0f, 100%%, 75%%)", rand.Float64()*360)
}

func hexColor() string {
	return fmt.Sprintf("#%06x", rand.IntN(0x1000000))
}

func colorFunc(mode string) func() string {
	if mode == "hex" {
		return hexColor
	}
	return hslColor
}
