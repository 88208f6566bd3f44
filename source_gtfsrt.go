package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	gtfs "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"

	"scenario-visualizer/internal/playback"
)

// GtfsRtScenarioSource turns a GTFS-Realtime VehiclePositions snapshot into a scenario.
type GtfsRtScenarioSource struct {
	url        string
	httpClient *http.Client
	duration   float64
}

func NewGtfsRtScenarioSource(url string, timeout time.Duration, duration float64) *GtfsRtScenarioSource {
	return &GtfsRtScenarioSource{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		duration:   duration,
	}
}

func (s *GtfsRtScenarioSource) Fetch(ctx context.Context, id int) (*playback.Scenario, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gtfs-rt http status: %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var feed gtfs.FeedMessage
	if err := proto.Unmarshal(body, &feed); err != nil {
		return nil, err
	}
	return snapshotScenario(id, "GTFS-RT snapshot", s.duration, gtfsVehicles(&feed)), nil
}

func gtfsVehicles(feed *gtfs.FeedMessage) []feedVehicle {
	vehicles := make([]feedVehicle, 0, len(feed.Entity))
	for _, ent := range feed.Entity {
		if ent == nil || ent.Vehicle == nil {
			continue
		}
		vp := ent.Vehicle
		if vp.Vehicle == nil || vp.Position == nil {
			continue
		}
		id := vp.Vehicle.Id
		if id == nil || *id == "" {
			continue
		}
		pos := vp.Position
		if pos.Latitude == nil || pos.Longitude == nil {
			continue
		}
		v := feedVehicle{
			Ref: *id,
			Lat: float64(*pos.Latitude),
			Lon: float64(*pos.Longitude),
		}
		if pos.Bearing != nil {
			b := float64(*pos.Bearing)
			v.Bearing = &b
		}
		if pos.Speed != nil {
			sp := float64(*pos.Speed)
			v.Speed = &sp
		}
		vehicles = append(vehicles, v)
	}
	return vehicles
}
