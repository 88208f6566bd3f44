package main

// feedVehicle is one vehicle position read from a live feed snapshot.
type feedVehicle struct {
	Ref string
	Lat float64
	Lon float64
	// Bearing in degrees clockwise from north, nil when the feed omits it.
	Bearing *float64
	// Speed in m/s, nil when the feed omits it.
	Speed *float64
}
