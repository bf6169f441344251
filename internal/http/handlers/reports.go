package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/export"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/models"
)

// ReportHandler streams spreadsheet and PDF exports to admins.
type ReportHandler struct {
	deps *Deps
}

func NewReportHandler(deps *Deps) *ReportHandler {
	return &ReportHandler{deps: deps}
}

func (h *ReportHandler) Register(mux *http.ServeMux) {
	g := h.deps.Guard
	mux.Handle("GET /manage/export/payments", g.Admin(h.payments))
	mux.Handle("GET /manage/export/groceries", g.Admin(h.groceries))
	mux.Handle("GET /manage/export/monthly-report", g.Admin(h.monthlyWorkbook))
	mux.Handle("GET /manage/reports/monthly", g.Admin(h.monthlyPDF))
}

// attachment writes a fully rendered download.
func attachment(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func (h *ReportHandler) workbook(w http.ResponseWriter, r *http.Request, filename string, f *excelize.File, err error) {
	if err != nil {
		h.deps.internalError(w, r, "failed to build workbook", err)
		return
	}
	var buf bytes.Buffer
	if err := export.WriteWorkbook(&buf, f); err != nil {
		h.deps.internalError(w, r, "failed to build workbook", err)
		return
	}
	attachment(w, export.ContentTypeXLSX, filename, buf.Bytes())
}

func (h *ReportHandler) payments(w http.ResponseWriter, r *http.Request) {
	period, ok := h.deps.period(w, r)
	if !ok {
		return
	}
	payments, err := h.deps.Store.ListPayments(r.Context(), models.PaymentFilter{Period: period})
	if err != nil {
		h.deps.internalError(w, r, "failed to list payments", err)
		return
	}
	f, err := export.PaymentsWorkbook(period, payments)
	h.workbook(w, r, "payments_"+period+".xlsx", f, err)
}

func (h *ReportHandler) groceries(w http.ResponseWriter, r *http.Request) {
	period, ok := h.deps.period(w, r)
	if !ok {
		return
	}
	items, err := h.deps.Store.ListGroceries(r.Context(), period)
	if err != nil {
		h.deps.internalError(w, r, "failed to list groceries", err)
		return
	}
	f, err := export.GroceriesWorkbook(period, items)
	h.workbook(w, r, "groceries_"+period+".xlsx", f, err)
}

func (h *ReportHandler) monthlyWorkbook(w http.ResponseWriter, r *http.Request) {
	period, ok := h.deps.period(w, r)
	if !ok {
		return
	}
	report, err := export.BuildMonthlyReport(r.Context(), h.deps.Store, period)
	if err != nil {
		h.deps.internalError(w, r, "failed to build report", err)
		return
	}
	f, err := export.MonthlyWorkbook(report)
	h.workbook(w, r, "monthly_report_"+period+".xlsx", f, err)
}

func (h *ReportHandler) monthlyPDF(w http.ResponseWriter, r *http.Request) {
	period, ok := h.deps.period(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	report, err := export.BuildMonthlyReport(ctx, h.deps.Store, period)
	if err != nil {
		h.deps.internalError(w, r, "failed to build report", err)
		return
	}
	s, err := h.deps.messSettings(ctx)
	if err != nil {
		h.deps.internalError(w, r, "failed to build report", err)
		return
	}
	var buf bytes.Buffer
	if err := export.MonthlyReportPDF(&buf, s.MessName, report); err != nil {
		h.deps.internalError(w, r, "failed to build report", err)
		return
	}
	attachment(w, export.ContentTypePDF, "monthly_report_"+period+".pdf", buf.Bytes())
}
