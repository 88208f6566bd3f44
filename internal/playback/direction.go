package playback

// Direction selects one of the four predefined motion paths.
type Direction string

const (
	DirectionTowards   Direction = "towards"
	DirectionBackwards Direction = "backwards"
	DirectionUpwards   Direction = "upwards"
	DirectionDownwards Direction = "downwards"
)

// ClassName returns the animation class for d. ok is false for unrecognized values.
func (d Direction) ClassName() (class string, ok bool) {
	switch d {
	case DirectionTowards, DirectionBackwards, DirectionUpwards, DirectionDownwards:
		return "vehicle-" + string(d), true
	default:
		return "", false
	}
}

// Valid reports whether d is one of the four known directions.
func (d Direction) Valid() bool {
	_, ok := d.ClassName()
	return ok
}
