package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"sessionpulse/internal/analysis"
	apierrors "sessionpulse/internal/errors"
	"sessionpulse/internal/exporter"
	"sessionpulse/internal/services"
)

const successCSV = `session_id,success_rate
sess_1,0.8
sess_2,0.4
sess_3,1.0
`

const durationCSV = `session_id,duration
sess_1,1.5
sess_2,2.5
sess_3,3.5
`

func newAnalysisHandler(t *testing.T) *AnalysisHandler {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	svc := services.NewAnalysisService(analysis.Options{}, logger)
	errorHandler := apierrors.NewErrorHandler(logger, false)
	fused := exporter.NewFusedExporter(exporter.NewCSVWriter(t.TempDir()))
	return NewAnalysisHandler(svc, fused, logger, errorHandler, 1<<20)
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func postCSV(t *testing.T, h *AnalysisHandler, path, csv string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(csv))
	req.Header.Set("Content-Type", "text/csv")
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)
	return rec
}

func loadBoth(t *testing.T, h *AnalysisHandler) {
	t.Helper()
	require.Equal(t, http.StatusOK, postCSV(t, h, "/success", successCSV).Code)
	require.Equal(t, http.StatusOK, postCSV(t, h, "/duration", durationCSV).Code)
}

func TestUploadSuccess(t *testing.T) {
	h := newAnalysisHandler(t)

	rec := postCSV(t, h, "/success", successCSV)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeJSON(t, rec)
	assert.Equal(t, "success", body["status"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(3), data["parsed"])
	assert.Equal(t, float64(0), data["matched"])
}

func TestUploadMissingColumns(t *testing.T) {
	h := newAnalysisHandler(t)

	rec := postCSV(t, h, "/success", "foo,bar\n1,2\n")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeJSON(t, rec)
	assert.Equal(t, apierrors.TypeMissingColumns, body["type"])
	assert.Contains(t, body, "missing_fields")
	assert.Contains(t, body, "headers")
}

func TestUploadHeaderOnly(t *testing.T) {
	h := newAnalysisHandler(t)

	rec := postCSV(t, h, "/success", "session_id,success\n")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	body := decodeJSON(t, rec)
	assert.Equal(t, apierrors.TypeEmptyResult, body["type"])
}

func TestUploadEmptyBody(t *testing.T) {
	h := newAnalysisHandler(t)

	rec := postCSV(t, h, "/duration", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadMultipart(t *testing.T) {
	h := newAnalysisHandler(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "success.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(successCSV))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/success", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeJSON(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, float64(3), data["parsed"])
}

func TestUploadWorkbook(t *testing.T) {
	h := newAnalysisHandler(t)

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"session_id", "success_rate"},
		{"sess_1", 0.9},
		{"sess_2", 0.1},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	req := httptest.NewRequest(http.MethodPost, "/success", &buf)
	req.Header.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeJSON(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, float64(2), data["parsed"])
}

func TestGenerate(t *testing.T) {
	h := newAnalysisHandler(t)

	payload := `{"session_count":50,"inflection_index":30,"seed":11}`
	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeJSON(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, float64(50), data["matched"])

	// The generated pair is immediately queryable.
	req = httptest.NewRequest(http.MethodGet, "/result", nil)
	rec = httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGenerateInvalidParams(t *testing.T) {
	h := newAnalysisHandler(t)

	payload := `{"session_count":0}`
	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOptions(t *testing.T) {
	h := newAnalysisHandler(t)

	t.Run("update", func(t *testing.T) {
		payload := `{"strategy":"quantile","window_size":15}`
		req := httptest.NewRequest(http.MethodPut, "/options", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		h.Routes().ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		data := decodeJSON(t, rec)["data"].(map[string]interface{})
		assert.Equal(t, "quantile", data["strategy"])
		assert.Equal(t, float64(15), data["window_size"])
	})

	t.Run("get reflects update", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/options", nil)
		rec := httptest.NewRecorder()
		h.Routes().ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		data := decodeJSON(t, rec)["data"].(map[string]interface{})
		assert.Equal(t, "quantile", data["strategy"])
	})

	t.Run("unknown strategy rejected", func(t *testing.T) {
		payload := `{"strategy":"median"}`
		req := httptest.NewRequest(http.MethodPut, "/options", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		h.Routes().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetResult(t *testing.T) {
	h := newAnalysisHandler(t)

	t.Run("before any load", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/result", nil)
		rec := httptest.NewRecorder()
		h.Routes().ServeHTTP(rec, req)

		require.Equal(t, http.StatusNotFound, rec.Code)
		body := decodeJSON(t, rec)
		assert.Equal(t, apierrors.TypeResultNotFound, body["type"])
	})

	t.Run("one dataset missing", func(t *testing.T) {
		require.Equal(t, http.StatusOK, postCSV(t, h, "/success", successCSV).Code)

		req := httptest.NewRequest(http.MethodGet, "/result", nil)
		rec := httptest.NewRecorder()
		h.Routes().ServeHTTP(rec, req)

		require.Equal(t, http.StatusNotFound, rec.Code)
		body := decodeJSON(t, rec)
		assert.Equal(t, apierrors.TypeDatasetNotFound, body["type"])
	})

	t.Run("complete result", func(t *testing.T) {
		require.Equal(t, http.StatusOK, postCSV(t, h, "/duration", durationCSV).Code)

		req := httptest.NewRequest(http.MethodGet, "/result", nil)
		rec := httptest.NewRecorder()
		h.Routes().ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		data := decodeJSON(t, rec)["data"].(map[string]interface{})
		stats := data["statistics"].(map[string]interface{})
		assert.Equal(t, float64(3), stats["matched_sessions"])
		assert.Equal(t, false, data["zero_overlap"])
	})
}

func TestExport(t *testing.T) {
	h := newAnalysisHandler(t)

	t.Run("before load", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/export", nil)
		rec := httptest.NewRecorder()
		h.Routes().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("download", func(t *testing.T) {
		loadBoth(t, h)

		req := httptest.NewRequest(http.MethodGet, "/export", nil)
		rec := httptest.NewRecorder()
		h.Routes().ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "session_analysis.csv")

		lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
		require.Len(t, lines, 4)
		assert.Equal(t, "Session ID,Session Number,Session Length,Success Rate", lines[0])
	})
}
