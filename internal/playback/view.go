package playback

import "strconv"

// Style property names published for the animation keyframes.
const (
	PropBoardWidth  = "board-width"
	PropBoardHeight = "board-height"
)

// ViewContext carries the measured board dimensions to the rendering layer.
// The zero value is an unmounted board with unset style properties.
type ViewContext struct {
	BoardWidth  float64 `json:"boardWidth"`
	BoardHeight float64 `json:"boardHeight"`
	Mounted     bool    `json:"mounted"`
}

// StyleProperties returns the board-width and board-height properties in px,
// or an empty map if the board has not been measured.
func (v ViewContext) StyleProperties() map[string]string {
	if !v.Mounted {
		return map[string]string{}
	}
	return map[string]string{
		PropBoardWidth:  px(v.BoardWidth),
		PropBoardHeight: px(v.BoardHeight),
	}
}

func px(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64) + "px"
}

// VehicleHandle is the view of one rendered vehicle element.
type VehicleHandle interface {
	// Direction is the direction the element was rendered with.
	Direction() Direction
	// SetDirectionClass attaches the animation class for d; attaching it twice is a no-op.
	SetDirectionClass(d Direction)
	// SetRunning switches the element's animation play-state between running and paused.
	SetRunning(running bool)
}

// Status is what the surface shows besides vehicle elements.
type Status struct {
	ScenarioID   int         `json:"scenarioId,omitempty"`
	ScenarioName string      `json:"scenarioName,omitempty"`
	State        string      `json:"state"`
	Completed    bool        `json:"completed"`
	View         ViewContext `json:"view"`
}

// Surface is the rendering layer the controller drives.
type Surface interface {
	// Render replaces the board content with the scenario's vehicles at their
	// starting positions and returns one handle per vehicle, in scenario order.
	Render(s *Scenario, view ViewContext) []VehicleHandle
	// Publish pushes the current status and any pending element changes to viewers.
	Publish(st Status)
}
