package transport

import (
	"fmt"
	"net/http"
	"time"

	"corralon-jr/internal/export"
	"corralon-jr/internal/middleware"
	"corralon-jr/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ReportHandler handles HTTP requests for sales and demand reports
type ReportHandler struct {
	reports service.ReportService
	logger  *zap.Logger
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reports service.ReportService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{reports: reports, logger: logger}
}

// RegisterRoutes registers all report routes. Reports expose storewide
// revenue, so they stay admin-only.
func (h *ReportHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/reports", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(middleware.RequireAdmin(h.logger))

		r.Get("/sales-by-product", h.SalesByProduct)
		r.Get("/demand-by-day", h.DemandByDay)
	})
}

// SalesByProduct returns revenue per product over delivered orders
func (h *ReportHandler) SalesByProduct(w http.ResponseWriter, r *http.Request) {
	dateRange, err := parseDateRange(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	rows, err := h.reports.SalesByProduct(r.Context(), dateRange)
	if err != nil {
		h.logger.Error("Failed to build sales report", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to build report")
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" || format == "json" {
		middleware.RespondWithJSON(w, http.StatusOK, rows)
		return
	}

	headers := []string{"Producto", "Total Vendido"}
	table := make([][]string, 0, len(rows))
	for _, row := range rows {
		table = append(table, []string{row.Name, export.FormatARS(row.Total)})
	}

	h.writeTable(w, format, "ventas_por_producto", "Ventas por Producto", headers, table)
}

// DemandByDay returns order counts and totals per calendar day
func (h *ReportHandler) DemandByDay(w http.ResponseWriter, r *http.Request) {
	dateRange, err := parseDateRange(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	rows, err := h.reports.DemandByDay(r.Context(), dateRange)
	if err != nil {
		h.logger.Error("Failed to build demand report", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to build report")
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" || format == "json" {
		middleware.RespondWithJSON(w, http.StatusOK, rows)
		return
	}

	headers := []string{"Fecha", "Pedidos", "Total"}
	table := make([][]string, 0, len(rows))
	for _, row := range rows {
		table = append(table, []string{row.Date, fmt.Sprintf("%d", row.Orders), export.FormatARS(row.Total)})
	}

	h.writeTable(w, format, "demanda_por_dia", "Demanda por Día", headers, table)
}

func (h *ReportHandler) writeTable(w http.ResponseWriter, format, basename, title string, headers []string, rows [][]string) {
	stamp := time.Now().Format("2006-01-02")

	switch format {
	case "xlsx":
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", basename+"_"+stamp+".xlsx"))
		if err := export.WriteXLSX(w, title, headers, rows); err != nil {
			h.logger.Error("Failed to write XLSX report", zap.Error(err))
		}
	case "pdf":
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", basename+"_"+stamp+".pdf"))
		if err := export.WritePDF(w, title, headers, rows); err != nil {
			h.logger.Error("Failed to write PDF report", zap.Error(err))
		}
	default:
		middleware.RespondWithError(w, http.StatusBadRequest, "unsupported format: use json, xlsx or pdf")
	}
}

func parseDateRange(r *http.Request) (service.DateRange, error) {
	q := r.URL.Query()
	var dateRange service.DateRange

	if from := q.Get("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return dateRange, fmt.Errorf("invalid from date, expected YYYY-MM-DD")
		}
		dateRange.From = &t
	}
	if to := q.Get("to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return dateRange, fmt.Errorf("invalid to date, expected YYYY-MM-DD")
		}
		dateRange.To = &t
	}

	return dateRange, nil
}
