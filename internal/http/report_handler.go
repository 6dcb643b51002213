package http

import (
	"net/http"

	"github.com/tuanvumaihuynh/crm-backend/internal/service"
)

type reportHandler struct {
	reportSvc service.ReportService
	*responder
}

func newReportHandler(reportSvc service.ReportService, rsp *responder) *reportHandler {
	return &reportHandler{
		reportSvc: reportSvc,
		responder: rsp,
	}
}

type reportResponse struct {
	TotalCustomers int64   `json:"totalCustomers"`
	TotalOrders    int64   `json:"totalOrders"`
	TotalRevenue   float64 `json:"totalRevenue"`
}

func (h *reportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.reportSvc.GenerateReport(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, reportResponse{
		TotalCustomers: report.TotalCustomers,
		TotalOrders:    report.TotalOrders,
		TotalRevenue:   report.TotalRevenue,
	})
}
