package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apierrors "fiscaldash/internal/errors"
	"fiscaldash/internal/exporter"
	"fiscaldash/internal/services"
)

// ForecastHandler serves the forecast endpoint and its CSV export.
type ForecastHandler struct {
	service  *services.ForecastService
	exporter *exporter.CSVWriter
	validate *validator.Validate
	logger   *slog.Logger
}

// NewForecastHandler creates a forecast handler.
func NewForecastHandler(service *services.ForecastService, logger *slog.Logger) *ForecastHandler {
	return &ForecastHandler{
		service:  service,
		exporter: exporter.NewCSVWriter(logger),
		validate: validator.New(),
		logger:   logger.With(slog.String("component", "forecast_handler")),
	}
}

// Routes returns the forecast routes.
func (h *ForecastHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.With(render.SetContentType(render.ContentTypeJSON)).Post("/", h.Forecast)
	r.Get("/export", h.ExportCSV)

	return r
}

type forecastRequest struct {
	Specification string `json:"specification" validate:"required"`
	HorizonMonths int    `json:"horizon_months" validate:"omitempty,min=1,max=120"`
	Transform     string `json:"transform" validate:"omitempty,oneof=log linear"`
	SplitPolicy   string `json:"split_policy" validate:"omitempty,oneof=trailing-year half"`
}

// Forecast runs the model for one specification and returns projections
// plus holdout validation metrics.
func (h *ForecastHandler) Forecast(w http.ResponseWriter, r *http.Request) {
	var req forecastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.renderError(w, r, apierrors.ErrInvalidRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.renderError(w, r, h.validationError(err))
		return
	}

	result, err := h.service.Forecast(r.Context(), services.ForecastRequest{
		Specification: req.Specification,
		HorizonMonths: req.HorizonMonths,
		Transform:     req.Transform,
		SplitPolicy:   req.SplitPolicy,
	})
	if err != nil {
		h.renderError(w, r, h.mapServiceError(err))
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"success":       true,
		"specification": req.Specification,
		"result":        result,
	})
}

// ExportCSV runs the model and streams only the projected months.
func (h *ForecastHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := services.ForecastRequest{
		Specification: q.Get("specification"),
		Transform:     q.Get("transform"),
		SplitPolicy:   q.Get("split_policy"),
	}
	if raw := q.Get("horizon_months"); raw != "" {
		horizon, err := strconv.Atoi(raw)
		if err != nil || horizon < 1 || horizon > 120 {
			h.renderError(w, r, apierrors.ErrValidation("horizon_months", "must be an integer between 1 and 120"))
			return
		}
		req.HorizonMonths = horizon
	}
	if req.Specification == "" {
		h.renderError(w, r, apierrors.ErrValidation("specification", "is required"))
		return
	}

	result, err := h.service.Forecast(r.Context(), req)
	if err != nil {
		h.renderError(w, r, h.mapServiceError(err))
		return
	}

	// The exact delimiter is a caller preference, not a core contract.
	delimiter := exporter.CommaDelimiter
	if q.Get("delimiter") == "semicolon" {
		delimiter = exporter.SemicolonDelimiter
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="forecast.csv"`)
	if err := h.exporter.WriteForecastTo(w, result.Forecast, delimiter); err != nil {
		h.logger.ErrorContext(r.Context(), "forecast export failed", "error", err)
	}
}

func (h *ForecastHandler) mapServiceError(err error) *apierrors.APIError {
	switch {
	case errors.Is(err, services.ErrNotForecastable):
		return apierrors.ErrValidation("specification", "is not in the forecastable set")
	case errors.Is(err, services.ErrUnknownSpecification):
		return apierrors.NewWithDetails(http.StatusNotFound, "NOT_FOUND", "Specification not found", err.Error())
	default:
		return apierrors.FromDomain(err)
	}
}

func (h *ForecastHandler) validationError(err error) *apierrors.APIError {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return apierrors.ErrValidation(fe.Field(), "failed validation rule "+fe.Tag())
	}
	return apierrors.ErrInvalidRequest
}

func (h *ForecastHandler) renderError(w http.ResponseWriter, r *http.Request, apiErr *apierrors.APIError) {
	h.logger.WarnContext(r.Context(), "forecast request failed",
		slog.String("path", r.URL.Path),
		slog.String("error_code", apiErr.ErrorCode),
		slog.String("message", apiErr.Message))
	render.Render(w, r, apierrors.NewErrorResponse(apiErr))
}
