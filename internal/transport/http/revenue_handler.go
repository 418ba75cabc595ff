package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "fiscaldash/internal/errors"
	"fiscaldash/internal/exporter"
	"fiscaldash/internal/ledger"
	"fiscaldash/internal/services"
)

// RevenueHandler serves the canonical revenue table and the payroll ledger.
type RevenueHandler struct {
	service  *services.DataService
	exporter *exporter.CSVWriter
	logger   *slog.Logger
}

// NewRevenueHandler creates a revenue handler.
func NewRevenueHandler(service *services.DataService, logger *slog.Logger) *RevenueHandler {
	return &RevenueHandler{
		service:  service,
		exporter: exporter.NewCSVWriter(logger),
		logger:   logger.With(slog.String("component", "revenue_handler")),
	}
}

// Routes returns the revenue routes.
func (h *RevenueHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", h.GetTable)
	r.Get("/specifications", h.GetSpecifications)
	r.Get("/labels", h.GetLabels)
	r.Get("/export", h.ExportCSV)
	r.Get("/payroll", h.GetPayroll)

	return r
}

// GetTable returns the canonical table, optionally filtered by
// specification and a [from, to] year range.
func (h *RevenueHandler) GetTable(w http.ResponseWriter, r *http.Request) {
	table, apiErr := h.filteredTable(r)
	if apiErr != nil {
		h.renderError(w, r, apiErr)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"success": true,
		"count":   len(table),
		"records": table,
	})
}

// GetSpecifications lists the distinct specification labels.
func (h *RevenueHandler) GetSpecifications(w http.ResponseWriter, r *http.Request) {
	specs, err := h.service.Specifications(r.Context())
	if err != nil {
		h.renderError(w, r, apierrors.FromDomain(err))
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"success":        true,
		"specifications": specs,
	})
}

// GetLabels exposes the label-consolidation table and the category groups
// the dashboard filters by.
func (h *RevenueHandler) GetLabels(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"success":      true,
		"canonical":    ledger.CanonicalLabels(),
		"taxes":        ledger.TaxLabels,
		"transfers":    ledger.TransferLabels,
		"annexes":      ledger.AnnexLabels,
		"forecastable": ledger.ForecastableLabels(),
	})
}

// ExportCSV streams the canonical table as semicolon-delimited UTF-8 CSV.
func (h *RevenueHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	table, apiErr := h.filteredTable(r)
	if apiErr != nil {
		h.renderError(w, r, apiErr)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="revenue.csv"`)
	if err := h.exporter.WriteTableTo(w, table, exporter.SemicolonDelimiter); err != nil {
		h.logger.ErrorContext(r.Context(), "revenue export failed", "error", err)
	}
}

// GetPayroll returns the payroll ledger with its missing-months count.
func (h *RevenueHandler) GetPayroll(w http.ResponseWriter, r *http.Request) {
	payroll, err := h.service.Payroll(r.Context())
	if err != nil {
		h.renderError(w, r, apierrors.FromDomain(err))
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"success":        true,
		"count":          len(payroll),
		"missing_months": payroll.MissingMonths(),
		"records":        payroll,
	})
}

func (h *RevenueHandler) filteredTable(r *http.Request) (ledger.Table, *apierrors.APIError) {
	ctx := r.Context()

	var table ledger.Table
	var err error
	if spec := r.URL.Query().Get("specification"); spec != "" {
		table, err = h.service.Specification(ctx, spec)
		if errors.Is(err, services.ErrUnknownSpecification) {
			return nil, apierrors.NewWithDetails(http.StatusNotFound, "NOT_FOUND",
				fmt.Sprintf("specification %q not found", spec), err.Error())
		}
	} else {
		table, err = h.service.Revenue(ctx)
	}
	if err != nil {
		return nil, apierrors.FromDomain(err)
	}

	from, okFrom, err := queryInt(r, "from")
	if err != nil {
		return nil, apierrors.ErrValidation("from", "must be an integer year")
	}
	to, okTo, err := queryInt(r, "to")
	if err != nil {
		return nil, apierrors.ErrValidation("to", "must be an integer year")
	}
	if okFrom || okTo {
		if !okFrom {
			from = 0
		}
		if !okTo {
			to = 9999
		}
		table = table.FilterYears(from, to)
	}
	return table, nil
}

func (h *RevenueHandler) renderError(w http.ResponseWriter, r *http.Request, apiErr *apierrors.APIError) {
	h.logger.WarnContext(r.Context(), "request failed",
		slog.String("path", r.URL.Path),
		slog.String("error_code", apiErr.ErrorCode),
		slog.String("message", apiErr.Message))
	render.Render(w, r, apierrors.NewErrorResponse(apiErr))
}

func queryInt(r *http.Request, key string) (int, bool, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, false, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}
