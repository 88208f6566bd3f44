package main

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"scenario-visualizer/internal/playback"
)

// SiriXmlScenarioSource turns a SIRI VehicleMonitoring XML snapshot into a scenario.
type SiriXmlScenarioSource struct {
	url        string
	httpClient *http.Client
	duration   float64
}

func NewSiriXmlScenarioSource(url string, timeout time.Duration, duration float64) *SiriXmlScenarioSource {
	return &SiriXmlScenarioSource{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		duration:   duration,
	}
}

func (s *SiriXmlScenarioSource) Fetch(ctx context.Context, id int) (*playback.Scenario, error) {
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
		return nil, fmt.Errorf("siri xml http status: %d", resp.StatusCode)
	}
	vehicles, err := decodeSiriVehicles(resp.Body)
	if err != nil {
		return nil, err
	}
	return snapshotScenario(id, "SIRI-VM snapshot", s.duration, vehicles), nil
}

// decodeSiriVehicles streams VehicleActivity entries, matching on local names so
// any namespace prefix is accepted.
func decodeSiriVehicles(r io.Reader) ([]feedVehicle, error) {
	dec := xml.NewDecoder(r)

	var (
		inSD, inVA, inVL bool
		cur              siriActivity
		vehicles         []feedVehicle
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch se := tok.(type) {
		case xml.StartElement:
			switch se.Name.Local {
			case "ServiceDelivery":
				inSD = true
			case "VehicleActivity":
				if inSD {
					inVA = true
					cur = siriActivity{}
				}
			case "VehicleLocation":
				if inVA {
					inVL = true
				}
			case "VehicleRef", "Bearing", "Latitude", "Longitude":
				if !inVA {
					continue
				}
				var v string
				if err := dec.DecodeElement(&v, &se); err != nil {
					continue
				}
				cur.set(se.Name.Local, v, inVL)
			}
		case xml.EndElement:
			switch se.Name.Local {
			case "VehicleLocation":
				inVL = false
			case "VehicleActivity":
				if inVA {
					inVA = false
					if v, ok := cur.vehicle(); ok {
						vehicles = append(vehicles, v)
					}
				}
			case "ServiceDelivery":
				inSD = false
			}
		}
	}
	return vehicles, nil
}

type siriActivity struct {
	ref, lat, lon, bearing string
}

func (a *siriActivity) set(name, value string, inLocation bool) {
	switch name {
	case "VehicleRef":
		a.ref = value
	case "Bearing":
		a.bearing = value
	case "Latitude":
		if inLocation {
			a.lat = value
		}
	case "Longitude":
		if inLocation {
			a.lon = value
		}
	}
}

func (a *siriActivity) vehicle() (feedVehicle, bool) {
	if a.ref == "" || a.lat == "" || a.lon == "" {
		return feedVehicle{}, false
	}
	lat, lon, ok := parseLatLon(a.lat, a.lon)
	if !ok {
		return feedVehicle{}, false
	}
	v := feedVehicle{Ref: a.ref, Lat: lat, Lon: lon}
	if b, err := strconv.ParseFloat(a.bearing, 64); err == nil {
		v.Bearing = &b
	}
	return v, true
}

func parseLatLon(lat, lon string) (float64, float64, bool) {
	lf, err1 := strconv.ParseFloat(lat, 64)
	if err1 != nil {
		return 0, 0, false
	}
	lo, err2 := strconv.ParseFloat(lon, 64)
	if err2 != nil {
		return 0, 0, false
	}
	return lf, lo, true
}
