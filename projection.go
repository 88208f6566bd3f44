package main

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"scenario-visualizer/internal/playback"
)

// Share of the board used for projected positions, so vehicles on the bounding
// box edge stay visible.
const boardSpan = 95.0

const defaultSnapshotSpeed = 5

// snapshotScenario projects feed vehicles onto the board. Vehicles are ordered by
// ref so equal snapshots produce equal scenarios.
func snapshotScenario(id int, name string, duration float64, in []feedVehicle) *playback.Scenario {
	sorted := slices.Clone(in)
	slices.SortFunc(sorted, func(a, b feedVehicle) int { return cmp.Compare(a.Ref, b.Ref) })

	minLat, maxLat := math.Inf(1), math.Inf(-1)
	minLon, maxLon := math.Inf(1), math.Inf(-1)
	for _, v := range sorted {
		minLat, maxLat = min(minLat, v.Lat), max(maxLat, v.Lat)
		minLon, maxLon = min(minLon, v.Lon), max(maxLon, v.Lon)
	}

	sc := &playback.Scenario{
		ID:       id,
		Name:     name,
		Time:     duration,
		Vehicles: make([]playback.Vehicle, 0, len(sorted)),
	}
	for i, v := range sorted {
		sc.Vehicles = append(sc.Vehicles, playback.Vehicle{
			ID:        i + 1,
			Name:      v.Ref,
			Speed:     speedScale(v.Speed),
			Direction: directionFromBearing(v.Bearing),
			X:         percent(fraction(v.Lon, minLon, maxLon)),
			// North is at the top of the board.
			Y: percent(1 - fraction(v.Lat, minLat, maxLat)),
		})
	}
	return sc
}

func fraction(v, lo, hi float64) float64 {
	if hi <= lo {
		return 0.5
	}
	return (v - lo) / (hi - lo)
}

func percent(f float64) string {
	return fmt.Sprintf("%.2f%%", f*boardSpan)
}

// directionFromBearing maps a compass bearing onto the four motion paths:
// north upwards, east towards, south downwards, west backwards.
func directionFromBearing(bearing *float64) playback.Direction {
	if bearing == nil {
		return playback.DirectionTowards
	}
	b := math.Mod(*bearing, 360)
	if b < 0 {
		b += 360
	}
	switch {
	case b < 45 || b >= 315:
		return playback.DirectionUpwards
	case b < 135:
		return playback.DirectionTowards
	case b < 225:
		return playback.DirectionDownwards
	default:
		return playback.DirectionBackwards
	}
}

// speedScale maps m/s onto the 1..10 board speed scale.
func speedScale(mps *float64) float64 {
	if mps == nil {
		return defaultSnapshotSpeed
	}
	s := 1 + *mps/3
	s = math.Round(s*10) / 10
	return min(max(s, 1), 10)
}
