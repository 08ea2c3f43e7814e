package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"smart-clinic-server/internal/documents"
	"smart-clinic-server/internal/services"
	"smart-clinic-server/internal/utils"
)

// ReportHandler serves the admin dashboard and revenue reports.
type ReportHandler struct {
	Reports  *services.ReportService
	Renderer *documents.Renderer
	Log      *logrus.Entry
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reports *services.ReportService, renderer *documents.Renderer, log *logrus.Entry) *ReportHandler {
	return &ReportHandler{Reports: reports, Renderer: renderer, Log: log}
}

// GetDashboard returns the admin dashboard counters.
func (h *ReportHandler) GetDashboard(c *gin.Context) {
	dashboard, err := h.Reports.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, h.Log, err, "build dashboard")
		return
	}
	utils.Success(c, "Dashboard retrieved successfully", dashboard)
}

// GetReport returns today's and this month's revenue with appointment totals.
func (h *ReportHandler) GetReport(c *gin.Context) {
	report, err := h.Reports.Report(c.Request.Context())
	if err != nil {
		respondError(c, h.Log, err, "build report")
		return
	}
	utils.Success(c, "Report retrieved successfully", report)
}

// ExportReport downloads the report as an XLSX workbook.
func (h *ReportHandler) ExportReport(c *gin.Context) {
	report, err := h.Reports.Report(c.Request.Context())
	if err != nil {
		respondError(c, h.Log, err, "build report")
		return
	}

	body, err := h.Renderer.RenderRevenueReport(documents.RevenueReport{
		GeneratedAt:           report.GeneratedAt.Format("2006-01-02 15:04"),
		DailyRevenue:          documents.Money(report.DailyRevenue),
		MonthlyRevenue:        documents.Money(report.MonthlyRevenue),
		TotalAppointments:     report.TotalAppointments,
		CompletedAppointments: report.CompletedAppointments,
		PaidInvoices:          report.PaidInvoices,
	})
	if err != nil {
		respondError(c, h.Log, err, "export report")
		return
	}
	utils.Attachment(c, "revenue-report-"+report.GeneratedAt.Format("2006-01")+".xlsx", documents.ContentTypeXLSX, body)
}
