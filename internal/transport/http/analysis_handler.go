package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"sessionpulse/internal/analysis"
	"sessionpulse/internal/datagen"
	apierrors "sessionpulse/internal/errors"
	"sessionpulse/internal/exporter"
	"sessionpulse/internal/infrastructure"
	"sessionpulse/internal/services"
)

// xlsxMagic is the zip local-file-header signature; uploaded workbooks are
// detected by content, not filename.
var xlsxMagic = []byte{0x50, 0x4B, 0x03, 0x04}

// AnalysisHandler handles dataset ingestion and analysis HTTP requests
// with RFC 7807 compliance.
type AnalysisHandler struct {
	service        *services.AnalysisService
	exporter       *exporter.FusedExporter
	logger         *slog.Logger
	errorHandler   *apierrors.ErrorHandler
	metrics        *infrastructure.AppMetrics
	maxUploadBytes int64
}

// NewAnalysisHandler creates a new analysis handler with RFC 7807 error handling
func NewAnalysisHandler(
	service *services.AnalysisService,
	fusedExporter *exporter.FusedExporter,
	logger *slog.Logger,
	errorHandler *apierrors.ErrorHandler,
	maxUploadBytes int64,
) *AnalysisHandler {
	return &AnalysisHandler{
		service:        service,
		exporter:       fusedExporter,
		logger:         logger.With(slog.String("component", "analysis_handler")),
		errorHandler:   errorHandler,
		maxUploadBytes: maxUploadBytes,
	}
}

// SetMetrics attaches the application metric instruments.
func (h *AnalysisHandler) SetMetrics(metrics *infrastructure.AppMetrics) {
	h.metrics = metrics
}

// Routes returns the analysis routes with proper Chi patterns
func (h *AnalysisHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/success", h.UploadSuccess)
	r.Post("/duration", h.UploadDuration)
	r.Post("/generate", h.Generate)
	r.Put("/options", h.UpdateOptions)
	r.Get("/options", h.GetOptions)
	r.Get("/result", h.GetResult)
	r.Get("/export", h.Export)

	return r
}

// UploadSuccess handles POST /api/analysis/success
func (h *AnalysisHandler) UploadSuccess(w http.ResponseWriter, r *http.Request) {
	body, err := h.readUpload(w, r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	var summary *services.IngestSummary
	if bytes.HasPrefix(body, xlsxMagic) {
		summary, err = h.service.LoadSuccessWorkbook(r.Context(), bytes.NewReader(body))
	} else {
		summary, err = h.service.LoadSuccess(r.Context(), string(body))
	}
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   summary,
	})
}

// UploadDuration handles POST /api/analysis/duration
func (h *AnalysisHandler) UploadDuration(w http.ResponseWriter, r *http.Request) {
	body, err := h.readUpload(w, r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	var summary *services.IngestSummary
	if bytes.HasPrefix(body, xlsxMagic) {
		summary, err = h.service.LoadDurationWorkbook(r.Context(), bytes.NewReader(body))
	} else {
		summary, err = h.service.LoadDuration(r.Context(), string(body))
	}
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   summary,
	})
}

// Generate handles POST /api/analysis/generate. Absent body fields keep
// their default values.
func (h *AnalysisHandler) Generate(w http.ResponseWriter, r *http.Request) {
	params := datagen.DefaultParams()

	if r.ContentLength != 0 {
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxUploadBytes)).Decode(&params); err != nil && !errors.Is(err, io.EOF) {
			h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
			return
		}
	}

	summary, err := h.service.LoadGenerated(r.Context(), params)
	if err != nil {
		if errors.Is(err, services.ErrInvalidInput) {
			h.errorHandler.HandleError(w, r, apierrors.New(
				http.StatusBadRequest,
				"VALIDATION_FAILED",
				err.Error(),
			))
			return
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   summary,
	})
}

// UpdateOptions handles PUT /api/analysis/options
func (h *AnalysisHandler) UpdateOptions(w http.ResponseWriter, r *http.Request) {
	var opts analysis.Options
	if err := render.DecodeJSON(http.MaxBytesReader(w, r.Body, h.maxUploadBytes), &opts); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	normalized, err := h.service.SetOptions(r.Context(), opts)
	if err != nil {
		if errors.Is(err, services.ErrInvalidOptions) {
			h.errorHandler.HandleError(w, r, apierrors.New(
				http.StatusBadRequest,
				"VALIDATION_FAILED",
				err.Error(),
			))
			return
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   normalized,
	})
}

// GetOptions handles GET /api/analysis/options
func (h *AnalysisHandler) GetOptions(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   h.service.Options(),
	})
}

// GetResult handles GET /api/analysis/result
func (h *AnalysisHandler) GetResult(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Result(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, h.datasetStateError(err))
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   result,
	})
}

// Export handles GET /api/analysis/export, streaming the fused records as
// a CSV download.
func (h *AnalysisHandler) Export(w http.ResponseWriter, r *http.Request) {
	fused, err := h.service.Fused(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, h.datasetStateError(err))
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="session_analysis.csv"`)

	if err := h.exporter.Write(w, fused); err != nil {
		// Headers are already out; log and give up on the response.
		h.logger.ErrorContext(r.Context(), "export stream failed",
			slog.String("error", err.Error()))
		return
	}

	if h.metrics != nil {
		h.metrics.ExportsWritten.Add(r.Context(), 1)
	}

	h.logger.InfoContext(r.Context(), "export written",
		slog.Int("records", len(fused)))
}

// datasetStateError maps service dataset-state sentinels to API errors.
func (h *AnalysisHandler) datasetStateError(err error) error {
	switch {
	case errors.Is(err, services.ErrNoDatasets):
		return apierrors.ErrResultNotFound
	case errors.Is(err, services.ErrSuccessDatasetMissing):
		return apierrors.New(
			http.StatusNotFound,
			"DATASET_NOT_FOUND",
			"Success dataset has not been loaded",
		)
	case errors.Is(err, services.ErrDurationDatasetMissing):
		return apierrors.New(
			http.StatusNotFound,
			"DATASET_NOT_FOUND",
			"Duration dataset has not been loaded",
		)
	}
	return err
}

// readUpload extracts the dataset payload from either a multipart form
// (field "file") or the raw request body, enforcing the upload size limit.
func (h *AnalysisHandler) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
			return nil, fmt.Errorf("parse multipart form: %w", err)
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			return nil, apierrors.ErrValidation("file", "Multipart upload must include a \"file\" field")
		}
		defer file.Close()

		body, err := io.ReadAll(file)
		if err != nil {
			return nil, fmt.Errorf("read upload: %w", err)
		}
		return body, nil
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(body) == 0 {
		return nil, apierrors.ErrValidation("body", "Request body is empty")
	}
	return body, nil
}
