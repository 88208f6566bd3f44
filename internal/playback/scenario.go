package playback

import (
	"context"
	"strconv"
)

// Scenario is one playback session: a named set of vehicles and an optional
// duration in seconds after which playback auto-completes.
type Scenario struct {
	ID       int       `json:"id" yaml:"id"`
	Name     string    `json:"name" yaml:"name"`
	Time     float64   `json:"time,omitempty" yaml:"time,omitempty"`
	Vehicles []Vehicle `json:"vehicles" yaml:"vehicles"`
}

// Vehicle is one animated entity. X and Y are CSS lengths of the starting position.
type Vehicle struct {
	ID        int       `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Speed     float64   `json:"speed" yaml:"speed"`
	Direction Direction `json:"direction" yaml:"direction"`
	X         string    `json:"x" yaml:"x"`
	Y         string    `json:"y" yaml:"y"`
}

// AnimationDuration is the CSS animation-duration for the vehicle: 11 - speed seconds.
// Speeds of 11 and above yield a non-positive duration and are rendered as computed.
func (v Vehicle) AnimationDuration() string {
	return strconv.FormatFloat(11-v.Speed, 'f', -1, 64) + "s"
}

// Equal reports whether two scenarios carry the same content.
func (s *Scenario) Equal(o *Scenario) bool {
	if s == nil || o == nil {
		return s == o
	}
	if s.ID != o.ID || s.Name != o.Name || s.Time != o.Time || len(s.Vehicles) != len(o.Vehicles) {
		return false
	}
	for i := range s.Vehicles {
		if s.Vehicles[i] != o.Vehicles[i] {
			return false
		}
	}
	return true
}

// Source fetches a scenario by id.
type Source interface {
	Fetch(ctx context.Context, id int) (*Scenario, error)
}
