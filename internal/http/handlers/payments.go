package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/export"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/http/respond"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/models"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/models/dto"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/notify"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/storage"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/uploads"
)

// PaymentHandler covers the admin payment ledger, reminders and the member
// payment page.
type PaymentHandler struct {
	deps *Deps
}

func NewPaymentHandler(deps *Deps) *PaymentHandler {
	return &PaymentHandler{deps: deps}
}

func (h *PaymentHandler) Register(mux *http.ServeMux) {
	g := h.deps.Guard
	mux.Handle("GET /manage/payments", g.Admin(h.list))
	mux.Handle("POST /manage/payments/create", g.Admin(h.create))
	mux.Handle("GET /manage/payments/{id}", g.Admin(h.detail))
	mux.Handle("POST /manage/payments/{id}/edit", g.Admin(h.edit))
	mux.Handle("POST /manage/payments/{id}/delete", g.Admin(h.delete))
	mux.Handle("POST /manage/payments/{id}/remind", g.Admin(h.remind))
	mux.Handle("POST /manage/reminders/run", g.Admin(h.runReminders))

	mux.Handle("GET /user/payment", g.Member(h.page))
	mux.Handle("POST /user/payment", g.Member(h.submit))
	mux.Handle("GET /user/payments", g.Member(h.history))
	mux.Handle("GET /user/receipt", g.Member(h.receipt))
}

func (h *PaymentHandler) list(w http.ResponseWriter, r *http.Request) {
	period, ok := h.deps.period(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	payments, err := h.deps.Store.ListPayments(ctx, models.PaymentFilter{Period: period})
	if err != nil {
		h.deps.internalError(w, r, "failed to list payments", err)
		return
	}
	periods, err := h.deps.Store.ListPaymentPeriods(ctx)
	if err != nil {
		h.deps.internalError(w, r, "failed to list periods", err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", map[string]any{
		"month_year": period,
		"payments":   payments,
		"summary":    models.SummarizePayments(payments),
		"periods":    periods,
	})
}

func (h *PaymentHandler) create(w http.ResponseWriter, r *http.Request) {
	var req dto.PaymentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if invalid(w, req.Validate()) {
		return
	}
	p := models.Payment{
		AccountID:     req.AccountID,
		Period:        req.Period,
		Amount:        req.Amount,
		Status:        req.Status,
		TransactionID: strings.TrimSpace(req.TransactionID),
	}
	if p.Status == models.PaymentPaid {
		now := h.deps.now()
		p.PaidAt = &now
	}
	created, err := h.deps.Store.CreatePayment(r.Context(), p)
	switch {
	case err == nil:
		h.deps.record(r.Context(), actor(r).ID, models.ActivityPayment,
			fmt.Sprintf("Created %s payment for user #%d (%s)", created.Status, created.AccountID, created.Period), ref(created.ID))
		respond.JSON(w, http.StatusCreated, "Payment created successfully.", created)
	case errors.Is(err, storage.ErrAlreadyExists):
		respond.Error(w, http.StatusConflict, "A payment for this user and month already exists.")
	case errors.Is(err, storage.ErrNotFound):
		respond.Validation(w, "Please correct the errors below.", map[string]string{"user": "unknown user"})
	default:
		h.deps.internalError(w, r, "failed to create payment", err)
	}
}

func (h *PaymentHandler) detail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "payment")
	if !ok {
		return
	}
	p, err := h.deps.Store.GetPayment(r.Context(), id)
	if err != nil {
		h.deps.storeError(w, r, "payment", err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", p)
}

func (h *PaymentHandler) edit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "payment")
	if !ok {
		return
	}
	var req dto.PaymentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if invalid(w, req.Validate()) {
		return
	}
	ctx := r.Context()
	p, err := h.deps.Store.GetPayment(ctx, id)
	if err != nil {
		h.deps.storeError(w, r, "payment", err)
		return
	}
	p.AccountID = req.AccountID
	p.Period = req.Period
	p.Amount = req.Amount
	p.Status = req.Status
	p.TransactionID = strings.TrimSpace(req.TransactionID)
	updated, err := h.deps.Store.UpdatePayment(ctx, p)
	switch {
	case err == nil:
		h.deps.record(ctx, actor(r).ID, models.ActivityPayment,
			fmt.Sprintf("Marked payment for user #%d (%s) as %s", updated.AccountID, updated.Period, updated.Status), ref(updated.ID))
		respond.JSON(w, http.StatusOK, "Payment updated successfully.", updated)
	case errors.Is(err, storage.ErrAlreadyExists):
		respond.Error(w, http.StatusConflict, "A payment for this user and month already exists.")
	default:
		h.deps.storeError(w, r, "payment", err)
	}
}

func (h *PaymentHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "payment")
	if !ok {
		return
	}
	ctx := r.Context()
	p, err := h.deps.Store.GetPayment(ctx, id)
	if err != nil {
		h.deps.storeError(w, r, "payment", err)
		return
	}
	if err := h.deps.Store.DeletePayment(ctx, id); err != nil {
		h.deps.storeError(w, r, "payment", err)
		return
	}
	if err := h.deps.Uploads.Remove(p.ProofPath); err != nil {
		h.deps.logger().Warn("delete payment: proof cleanup failed", "path", p.ProofPath, "error", err)
	}
	h.deps.record(ctx, actor(r).ID, models.ActivityPayment,
		fmt.Sprintf("Deleted payment for user #%d (%s)", p.AccountID, p.Period), ref(p.ID))
	respond.JSON(w, http.StatusOK, "Payment deleted successfully.", nil)
}

type reminderResult struct {
	Payment models.Payment `json:"payment"`
	Message models.Message `json:"message"`
	Emailed bool           `json:"emailed"`
}

// sendReminder leaves the payment untouched. The message body is a snapshot
// taken now and does not follow later edits.
func (h *PaymentHandler) sendReminder(ctx context.Context, s models.MessSettings, p models.Payment) (reminderResult, error) {
	acct, err := h.deps.Store.GetAccount(ctx, p.AccountID)
	if err != nil {
		return reminderResult{}, fmt.Errorf("load payment owner: %w", err)
	}
	text := notify.ReminderText(acct, p, s)
	msg, err := h.deps.Store.CreateMessage(ctx, models.Message{
		AccountID: acct.ID,
		Subject:   notify.ReminderSubject(p.Period),
		Body:      text,
		Type:      models.MessageSystem,
		Status:    models.MessagePending,
	})
	if err != nil {
		return reminderResult{}, fmt.Errorf("create reminder message: %w", err)
	}
	emailed := false
	prefs, err := h.deps.Store.GetOrCreateUserSettings(ctx, acct.ID)
	if err != nil {
		h.deps.logger().Warn("reminder email skipped", "account_id", acct.ID, "error", err)
	} else {
		emailed = h.deps.Notifier.PaymentReminder(ctx, s, prefs, acct, p.Period, text)
	}
	return reminderResult{Payment: p, Message: msg, Emailed: emailed}, nil
}

func (h *PaymentHandler) remind(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "payment")
	if !ok {
		return
	}
	ctx := r.Context()
	p, err := h.deps.Store.GetPayment(ctx, id)
	if err != nil {
		h.deps.storeError(w, r, "payment", err)
		return
	}
	s, err := h.deps.messSettings(ctx)
	if err != nil {
		h.deps.internalError(w, r, "failed to send reminder", err)
		return
	}
	res, err := h.sendReminder(ctx, s, p)
	if err != nil {
		h.deps.internalError(w, r, "failed to send reminder", err)
		return
	}
	h.deps.Accounts.Record(ctx, s, actor(r).ID, models.ActivityPayment,
		fmt.Sprintf("Sent payment reminder to user #%d for %s", p.AccountID, p.Period), ref(p.ID))
	respond.JSON(w, http.StatusOK, "Payment reminder sent to "+p.FullName+".", res)
}

func (h *PaymentHandler) runReminders(w http.ResponseWriter, r *http.Request) {
	period, ok := h.deps.period(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	s, err := h.deps.messSettings(ctx)
	if err != nil {
		h.deps.internalError(w, r, "failed to run reminders", err)
		return
	}
	payments, err := h.deps.Store.ListPayments(ctx, models.PaymentFilter{Period: period})
	if err != nil {
		h.deps.internalError(w, r, "failed to run reminders", err)
		return
	}
	sent, emailed, failed := 0, 0, 0
	for _, p := range payments {
		if p.Status == models.PaymentPaid {
			continue
		}
		res, err := h.sendReminder(ctx, s, p)
		if err != nil {
			failed++
			h.deps.logger().Warn("bulk reminder failed", "payment_id", p.ID, "error", err)
			continue
		}
		sent++
		if res.Emailed {
			emailed++
		}
	}
	h.deps.Accounts.Record(ctx, s, actor(r).ID, models.ActivityPayment,
		fmt.Sprintf("Ran payment reminders for %s (%d sent, %d failed)", period, sent, failed), nil)
	respond.JSON(w, http.StatusOK, fmt.Sprintf("Sent %d reminders for %s.", sent, period), map[string]any{
		"month_year": period,
		"sent":       sent,
		"emailed":    emailed,
		"failed":     failed,
	})
}

func (h *PaymentHandler) page(w http.ResponseWriter, r *http.Request) {
	period, ok := h.deps.period(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	s, err := h.deps.messSettings(ctx)
	if err != nil {
		h.deps.internalError(w, r, "failed to load payment", err)
		return
	}
	p, created, err := h.deps.Store.GetOrCreatePayment(ctx, actor(r).ID, period, s.DefaultMonthlyFee)
	if err != nil {
		h.deps.internalError(w, r, "failed to load payment", err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", map[string]any{
		"month_year":  period,
		"payment":     p,
		"created":     created,
		"upi_id":      s.UPIOrPlaceholder(),
		"upi_qr_code": s.UPIQRCodePath,
	})
}

func (h *PaymentHandler) submit(w http.ResponseWriter, r *http.Request) {
	period, ok := h.deps.period(w, r)
	if !ok {
		return
	}
	var req dto.PaymentSubmission
	proof := ""
	if isMultipart(r) {
		if !parseMultipart(w, r) {
			return
		}
		req.TransactionID = r.FormValue("transaction_id")
		if invalid(w, req.Validate()) {
			return
		}
		path, err := h.deps.Uploads.FromRequest(r, "payment_proof", uploads.KindPaymentProof)
		if err != nil {
			h.deps.uploadError(w, r, "payment_proof", err)
			return
		}
		proof = path
	} else {
		if !decodeJSON(w, r, &req) {
			return
		}
		if invalid(w, req.Validate()) {
			return
		}
	}

	ctx := r.Context()
	acct := actor(r)
	s, err := h.deps.messSettings(ctx)
	if err != nil {
		h.deps.internalError(w, r, "failed to submit payment", err)
		return
	}
	p, _, err := h.deps.Store.GetOrCreatePayment(ctx, acct.ID, period, s.DefaultMonthlyFee)
	if err != nil {
		h.deps.internalError(w, r, "failed to submit payment", err)
		return
	}
	previousProof := p.ProofPath
	txn := strings.TrimSpace(req.TransactionID)
	p, err = h.deps.Store.SubmitPayment(ctx, p.ID, txn, proof, h.deps.now())
	if err != nil {
		h.deps.storeError(w, r, "payment", err)
		return
	}
	if proof != "" && previousProof != "" && previousProof != proof {
		if err := h.deps.Uploads.Remove(previousProof); err != nil {
			h.deps.logger().Warn("submit payment: old proof cleanup failed", "path", previousProof, "error", err)
		}
	}

	h.deps.Accounts.Record(ctx, s, acct.ID, models.ActivityPayment,
		fmt.Sprintf("Submitted payment for %s (Transaction: %s)", period, txn), ref(p.ID))
	h.deps.Notifier.PaymentSubmitted(ctx, acct, p)
	respond.JSON(w, http.StatusOK, "Payment submitted successfully! Admin will verify it soon.", p)
}

func (h *PaymentHandler) history(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	acct := actor(r)
	prefs, err := h.deps.Store.GetOrCreateUserSettings(ctx, acct.ID)
	if err != nil {
		h.deps.internalError(w, r, "failed to load payments", err)
		return
	}
	payments, err := h.deps.Store.ListPayments(ctx, models.PaymentFilter{
		AccountID: acct.ID,
		Limit:     limitParam(r, prefs.PaymentHistoryMonths, 120),
	})
	if err != nil {
		h.deps.internalError(w, r, "failed to load payments", err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", map[string]any{
		"payments": payments,
		"summary":  models.SummarizePayments(payments),
	})
}

func (h *PaymentHandler) receipt(w http.ResponseWriter, r *http.Request) {
	period, ok := h.deps.period(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	acct := actor(r)
	p, err := h.deps.Store.FindPayment(ctx, acct.ID, period)
	if err != nil {
		h.deps.storeError(w, r, "payment", err)
		return
	}
	s, err := h.deps.messSettings(ctx)
	if err != nil {
		h.deps.internalError(w, r, "failed to build receipt", err)
		return
	}
	var buf bytes.Buffer
	if err := export.ReceiptPDF(&buf, s, acct, p, h.deps.now()); err != nil {
		h.deps.internalError(w, r, "failed to build receipt", err)
		return
	}
	attachment(w, export.ContentTypePDF, fmt.Sprintf("receipt_%s.pdf", period), buf.Bytes())
}
