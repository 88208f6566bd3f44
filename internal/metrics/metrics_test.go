package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerExposesPlaybackMetrics(t *testing.T) {
	PlaybackCommandsTotal.WithLabelValues("start", "applied").Inc()

	srv := httptest.NewServer(Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "scenario_visualizer_playback_commands_total")
	assert.Contains(t, string(body), "scenario_visualizer_playback_completed")
}

func TestScenarioFetchTotalLabels(t *testing.T) {
	before := testutil.ToFloat64(ScenarioFetchTotal.WithLabelValues("rest", "error"))
	ScenarioFetchTotal.WithLabelValues("rest", "error").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(ScenarioFetchTotal.WithLabelValues("rest", "error")))
}
