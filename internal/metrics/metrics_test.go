// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/aulagate/internal/metrics"
	"github.com/taibuivan/aulagate/internal/session"
)

/*
TestMetrics_Observers verifies that each observer increments the matching series.
*/
func TestMetrics_Observers(t *testing.T) {
	m := metrics.NewMetrics(prometheus.NewRegistry())

	m.ObserveDecision("redirect", "unauthenticated")
	m.ObserveDecision("redirect", "unauthenticated")
	m.ObserveDecision("allow", "public")
	m.ObserveLogout(session.CauseExpired)
	m.ObserveBackendRequest("login", "200")
	m.ObserveTransition("settled", 1)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.NavigationDecisions.WithLabelValues("redirect", "unauthenticated")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NavigationDecisions.WithLabelValues("allow", "public")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionLogouts.WithLabelValues("expired")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BackendRequests.WithLabelValues("login", "200")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.NavigationHops))
}

/*
TestHandler verifies that the exposition endpoint serves registered series.
*/
func TestHandler(t *testing.T) {
	registry := metrics.NewRegistry()
	m := metrics.NewMetrics(registry)
	m.ObserveLogout(session.CauseExplicit)

	server := httptest.NewServer(metrics.Handler(registry))
	defer server.Close()

	response, err := http.Get(server.URL)
	require.NoError(t, err)
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, response.StatusCode)
	assert.Contains(t, string(body), `aulagate_session_logouts_total{cause="explicit"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
