package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"fiscaldash/internal/config"
	"fiscaldash/internal/services"
)

func writeRevenueFixture(t *testing.T, dir string, year int, base float64) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	require.NoError(t, f.SetCellValue(sheet, "A1", "ESPECIFICAÇÃO"))
	require.NoError(t, f.SetCellValue(sheet, "A2", "IPTU"))
	for m := 1; m <= 12; m++ {
		ref, err := excelize.CoordinatesToCellName(m+1, 1)
		require.NoError(t, err)
		header := time.Date(year, time.Month(m), 1, 0, 0, 0, 0, time.UTC).Format("01/2006")
		require.NoError(t, f.SetCellValue(sheet, ref, header))
		cell, err := excelize.CoordinatesToCellName(m+1, 2)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(sheet, cell, base+float64(m)*100))
	}

	require.NoError(t, f.SaveAs(filepath.Join(dir, fmt.Sprintf("RCL-%d.xlsx", year))))
}

// testRouter wires the full stack over a three-year fixture directory.
func testRouter(t *testing.T) *httptest.Server {
	t.Helper()

	dir := t.TempDir()
	writeRevenueFixture(t, dir, 2020, 1000)
	writeRevenueFixture(t, dir, 2021, 2200)
	writeRevenueFixture(t, dir, 2022, 3400)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	data := services.NewDataService(config.DataConfig{
		RevenueDir: dir,
		FilePrefix: "RCL",
		FileExt:    ".xlsx",
		ParseMode:  "punctuated",
	}, logger)
	fc := services.NewForecastService(data, config.ForecastConfig{
		HorizonMonths:   36,
		Transform:       "log",
		SplitPolicy:     "trailing-year",
		SeasonalityMode: "multiplicative",
		IntervalWidth:   0.95,
		FourierOrder:    3,
	}, logger)

	srv := httptest.NewServer(NewRouter(data, fc, config.ServerConfig{}, logger))
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, srv *httptest.Server, path string) (int, map[string]interface{}) {
	t.Helper()

	resp, err := http.Get(srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestHealthz(t *testing.T) {
	srv := testRouter(t)

	status, body := getJSON(t, srv, "/healthz")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestGetRevenueTable(t *testing.T) {
	srv := testRouter(t)

	status, body := getJSON(t, srv, "/api/revenue/")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])
	assert.EqualValues(t, 36, body["count"])
}

func TestGetRevenueTableFiltered(t *testing.T) {
	srv := testRouter(t)

	status, body := getJSON(t, srv, "/api/revenue/?specification=IPTU&from=2021&to=2021")
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 12, body["count"])

	status, body = getJSON(t, srv, "/api/revenue/?specification=ISS")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, false, body["success"])
}

func TestGetRevenueTableRejectsMalformedYearFilter(t *testing.T) {
	srv := testRouter(t)

	for _, path := range []string{"/api/revenue/?from=abc", "/api/revenue/?to=20x1", "/api/revenue/export?from=abc"} {
		status, body := getJSON(t, srv, path)
		assert.Equal(t, http.StatusBadRequest, status, path)
		assert.Equal(t, false, body["success"], path)
	}
}

func TestGetSpecifications(t *testing.T) {
	srv := testRouter(t)

	status, body := getJSON(t, srv, "/api/revenue/specifications")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []interface{}{"IPTU"}, body["specifications"])
}

func TestGetLabels(t *testing.T) {
	srv := testRouter(t)

	status, body := getJSON(t, srv, "/api/revenue/labels")
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, body["canonical"])
	assert.NotEmpty(t, body["forecastable"])
}

func TestExportRevenueCSV(t *testing.T) {
	srv := testRouter(t)

	resp, err := http.Get(srv.URL + "/api/revenue/export")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv; charset=utf-8", resp.Header.Get("Content-Type"))

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(raw, []byte{0xEF, 0xBB, 0xBF}))
	assert.Contains(t, string(raw), "specification;month_year;year;value")
	assert.Contains(t, string(raw), "IPTU;2020-01-01;2020;1100.00")
}

func TestPostForecast(t *testing.T) {
	srv := testRouter(t)

	payload := `{"specification":"IPTU","horizon_months":12,"transform":"linear"}`
	resp, err := http.Post(srv.URL+"/api/forecast/", "application/json", strings.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Trace-ID"))

	var body struct {
		Success bool `json:"success"`
		Result  struct {
			Forecast    []map[string]interface{} `json:"forecast"`
			TrainMonths int                      `json:"train_months"`
			TestMonths  int                      `json:"test_months"`
		} `json:"result"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Success)
	assert.Len(t, body.Result.Forecast, 12)
	assert.Equal(t, 24, body.Result.TrainMonths)
	assert.Equal(t, 12, body.Result.TestMonths)
}

func TestPostForecastValidation(t *testing.T) {
	srv := testRouter(t)

	tests := []struct {
		name    string
		payload string
		status  int
	}{
		{"missing specification", `{}`, http.StatusBadRequest},
		{"bad transform", `{"specification":"IPTU","transform":"quadratic"}`, http.StatusBadRequest},
		{"bad horizon", `{"specification":"IPTU","horizon_months":500}`, http.StatusBadRequest},
		{"not forecastable", `{"specification":"DEDUÇÕES (II)"}`, http.StatusBadRequest},
		{"unknown label", `{"specification":"ISS"}`, http.StatusNotFound},
		{"malformed json", `{`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/api/forecast/", "application/json", strings.NewReader(tt.payload))
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.status, resp.StatusCode)

			var body map[string]interface{}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, false, body["success"])
		})
	}
}

func TestExportForecastCSV(t *testing.T) {
	srv := testRouter(t)

	resp, err := http.Get(srv.URL + "/api/forecast/export?specification=IPTU&horizon_months=6&transform=linear")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(raw[3:])), "\n")
	assert.Equal(t, "date,predicted_value,lower_bound,upper_bound", lines[0])
	// Header plus six projected months.
	assert.Len(t, lines, 7)
	assert.True(t, strings.HasPrefix(lines[1], "2023-01-01,"))
}

func TestExportForecastCSVRequiresSpecification(t *testing.T) {
	srv := testRouter(t)

	resp, err := http.Get(srv.URL + "/api/forecast/export")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTraceIDRoundTrip(t *testing.T) {
	srv := testRouter(t)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/healthz", nil)
	require.NoError(t, err)
	req.Header.Set("X-Trace-ID", "trace-123")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "trace-123", resp.Header.Get("X-Trace-ID"))
}
