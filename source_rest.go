package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"scenario-visualizer/internal/playback"
)

// RestScenarioSource reads scenarios from GET {baseURL}/scenarios/{id}.
type RestScenarioSource struct {
	baseURL    string
	httpClient *http.Client
}

func NewRestScenarioSource(baseURL string, timeout time.Duration) *RestScenarioSource {
	return &RestScenarioSource{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (s *RestScenarioSource) Fetch(ctx context.Context, id int) (*playback.Scenario, error) {
	url := fmt.Sprintf("%s/scenarios/%d", s.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scenario http status: %d", resp.StatusCode)
	}

	var sc playback.Scenario
	if err := json.NewDecoder(resp.Body).Decode(&sc); err != nil {
		return nil, fmt.Errorf("decode scenario: %w", err)
	}
	return &sc, nil
}
