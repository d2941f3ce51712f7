package server

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runlab/unwrapped/internal/report"
)

func buildWith(rep report.Report, err error) BuildFunc {
	return func() (report.Report, error) { return rep, err }
}

func TestNew_InitialBuildFailure(t *testing.T) {
	_, err := New(buildWith(report.Report{}, errors.New("bad snapshot")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad snapshot")
}

func TestHandleReport(t *testing.T) {
	srv, err := New(buildWith(report.Report{Year: 2025}, nil))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/report", nil)
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json",
		rec.Header().Get("Content-Type"))

	var got report.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 2025, got.Year)
}

func TestHandleHealth(t *testing.T) {
	srv, err := New(buildWith(report.Report{}, nil))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}

func TestRebuild_KeepsPreviousReportOnFailure(t *testing.T) {
	calls := 0
	build := func() (report.Report, error) {
		calls++
		if calls > 1 {
			return report.Report{}, errors.New("half-written snapshot")
		}
		return report.Report{Year: 2025}, nil
	}

	srv, err := New(build)
	require.NoError(t, err)

	require.Error(t, srv.Rebuild())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/report", nil)
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var got report.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 2025, got.Year, "stale report still serves")
}

func TestRebuild_SwapsInNewReport(t *testing.T) {
	year := 2024
	build := func() (report.Report, error) {
		return report.Report{Year: year}, nil
	}

	srv, err := New(build)
	require.NoError(t, err)

	year = 2025
	require.NoError(t, srv.Rebuild())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/report", nil)
	srv.Handler().ServeHTTP(rec, req)

	var got report.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 2025, got.Year)
}

func TestFindAvailablePort_SkipsBusyPort(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	busy := ln.Addr().(*net.TCPAddr).Port

	port := FindAvailablePort("127.0.0.1", busy)
	assert.NotEqual(t, busy, port)
	assert.Greater(t, port, 0)
}
