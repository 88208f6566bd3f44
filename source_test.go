package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gtfs "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"

	"scenario-visualizer/internal/playback"
)

const demoScenarioJSON = `{"id":1,"name":"demo","time":2,"vehicles":[{"id":7,"name":"car","speed":9,"direction":"towards","x":"10px","y":"20px"}]}`

func TestRestScenarioSource_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/scenarios/1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(demoScenarioJSON))
	}))
	defer srv.Close()

	sc, err := NewRestScenarioSource(srv.URL+"/", time.Second).Fetch(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "demo", sc.Name)
	assert.Equal(t, 2.0, sc.Time)
	require.Len(t, sc.Vehicles, 1)
	assert.Equal(t, playback.Vehicle{
		ID: 7, Name: "car", Speed: 9, Direction: playback.DirectionTowards, X: "10px", Y: "20px",
	}, sc.Vehicles[0])
}

func TestRestScenarioSource_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		errPart string
	}{
		{"not found", http.StatusNotFound, "{}", "scenario http status: 404"},
		{"server error", http.StatusInternalServerError, "", "scenario http status: 500"},
		{"malformed body", http.StatusOK, "{not json", "decode scenario"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewRestScenarioSource(srv.URL, time.Second).Fetch(context.Background(), 1)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errPart)
		})
	}
}

func TestGtfsRtScenarioSource_Fetch(t *testing.T) {
	feed := &gtfs.FeedMessage{
		Header: &gtfs.FeedHeader{GtfsRealtimeVersion: proto.String("2.0")},
		Entity: []*gtfs.FeedEntity{
			{
				Id: proto.String("e1"),
				Vehicle: &gtfs.VehiclePosition{
					Vehicle: &gtfs.VehicleDescriptor{Id: proto.String("bus-2")},
					Position: &gtfs.Position{
						Latitude:  proto.Float32(52.0),
						Longitude: proto.Float32(4.0),
						Bearing:   proto.Float32(180),
						Speed:     proto.Float32(9),
					},
				},
			},
			{
				Id: proto.String("e2"),
				Vehicle: &gtfs.VehiclePosition{
					Vehicle:  &gtfs.VehicleDescriptor{Id: proto.String("bus-1")},
					Position: &gtfs.Position{Latitude: proto.Float32(53.0), Longitude: proto.Float32(5.0)},
				},
			},
			{Id: proto.String("no-vehicle")},
		},
	}
	body, err := proto.Marshal(feed)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	sc, err := NewGtfsRtScenarioSource(srv.URL, time.Second, 30).Fetch(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, 4, sc.ID)
	assert.Equal(t, 30.0, sc.Time)
	require.Len(t, sc.Vehicles, 2)

	first, second := sc.Vehicles[0], sc.Vehicles[1]
	assert.Equal(t, "bus-1", first.Name)
	assert.Equal(t, playback.DirectionTowards, first.Direction)
	assert.Equal(t, float64(defaultSnapshotSpeed), first.Speed)
	assert.Equal(t, "95.00%", first.X)
	assert.Equal(t, "0.00%", first.Y)

	assert.Equal(t, "bus-2", second.Name)
	assert.Equal(t, playback.DirectionDownwards, second.Direction)
	assert.Equal(t, 4.0, second.Speed)
	assert.Equal(t, "0.00%", second.X)
	assert.Equal(t, "95.00%", second.Y)
}

const siriXML = `<?xml version="1.0" encoding="UTF-8"?>
<Siri xmlns="http://www.siri.org.uk/siri" version="2.0">
  <ServiceDelivery>
    <VehicleMonitoringDelivery>
      <VehicleActivity>
        <MonitoredVehicleJourney>
          <Bearing>90</Bearing>
          <VehicleLocation><Longitude>10.5</Longitude><Latitude>59.9</Latitude></VehicleLocation>
          <VehicleRef>tram-7</VehicleRef>
        </MonitoredVehicleJourney>
      </VehicleActivity>
      <VehicleActivity>
        <MonitoredVehicleJourney>
          <VehicleRef>no-location</VehicleRef>
        </MonitoredVehicleJourney>
      </VehicleActivity>
    </VehicleMonitoringDelivery>
  </ServiceDelivery>
</Siri>`

func TestSiriXmlScenarioSource_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write([]byte(siriXML))
	}))
	defer srv.Close()

	sc, err := NewSiriXmlScenarioSource(srv.URL, time.Second, 0).Fetch(context.Background(), 1)
	require.NoError(t, err)
	assert.Zero(t, sc.Time)
	require.Len(t, sc.Vehicles, 1)
	v := sc.Vehicles[0]
	assert.Equal(t, "tram-7", v.Name)
	assert.Equal(t, playback.DirectionTowards, v.Direction)
	assert.Equal(t, "47.50%", v.X)
	assert.Equal(t, "47.50%", v.Y)
}

func TestSiriXmlScenarioSource_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewSiriXmlScenarioSource(srv.URL, time.Second, 0).Fetch(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "siri xml http status: 502")
}
