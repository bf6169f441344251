package handlers

import (
	"errors"
	"net/http"

	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/export"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/http/respond"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/models"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/storage"
)

// DashboardHandler serves both landing pages and the activity feeds.
type DashboardHandler struct {
	deps *Deps
}

func NewDashboardHandler(deps *Deps) *DashboardHandler {
	return &DashboardHandler{deps: deps}
}

func (h *DashboardHandler) Register(mux *http.ServeMux) {
	g := h.deps.Guard
	mux.Handle("GET /manage/dashboard", g.Admin(h.admin))
	mux.Handle("GET /manage/activity", g.Admin(h.allActivity))
	mux.Handle("GET /user/dashboard", g.Member(h.member))
	mux.Handle("GET /user/activity", g.Member(h.ownActivity))
}

func (h *DashboardHandler) admin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	period := models.CurrentPeriod(h.deps.now())
	members, err := h.deps.Store.CountAccounts(ctx, models.RoleMember, true)
	if err != nil {
		h.deps.internalError(w, r, "failed to load dashboard", err)
		return
	}
	report, err := export.BuildMonthlyReport(ctx, h.deps.Store, period)
	if err != nil {
		h.deps.internalError(w, r, "failed to load dashboard", err)
		return
	}
	pendingMessages, err := h.deps.Store.CountMessages(ctx, models.MessageFilter{
		Type:   models.MessageFromUser,
		Status: models.MessagePending,
	})
	if err != nil {
		h.deps.internalError(w, r, "failed to load dashboard", err)
		return
	}
	recent, err := h.deps.Store.ListPayments(ctx, models.PaymentFilter{Limit: 5})
	if err != nil {
		h.deps.internalError(w, r, "failed to load dashboard", err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", map[string]any{
		"month_year":       period,
		"total_users":      members,
		"total_collected":  report.Summary.Collected,
		"pending_payments": report.Summary.Pending,
		"total_grocery":    report.GroceryTotal,
		"total_fixed":      report.FixedTotal,
		"total_expenses":   report.Expenses,
		"pending_messages": pendingMessages,
		"recent_payments":  recent,
	})
}

func (h *DashboardHandler) member(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	acct := actor(r)
	period := models.CurrentPeriod(h.deps.now())

	var payment *models.Payment
	p, err := h.deps.Store.FindPayment(ctx, acct.ID, period)
	switch {
	case err == nil:
		payment = &p
	case errors.Is(err, storage.ErrNotFound):
	default:
		h.deps.internalError(w, r, "failed to load dashboard", err)
		return
	}
	report, err := export.BuildMonthlyReport(ctx, h.deps.Store, period)
	if err != nil {
		h.deps.internalError(w, r, "failed to load dashboard", err)
		return
	}
	msgs, err := h.deps.Store.ListMessages(ctx, models.MessageFilter{AccountID: acct.ID, Limit: 5})
	if err != nil {
		h.deps.internalError(w, r, "failed to load dashboard", err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", map[string]any{
		"month_year":      period,
		"current_payment": payment,
		"total_expenses":  report.Expenses,
		"recent_messages": msgs,
	})
}

func (h *DashboardHandler) ownActivity(w http.ResponseWriter, r *http.Request) {
	h.activity(w, r, actor(r).ID, limitParam(r, 20, 100))
}

func (h *DashboardHandler) allActivity(w http.ResponseWriter, r *http.Request) {
	h.activity(w, r, 0, limitParam(r, 50, 200))
}

func (h *DashboardHandler) activity(w http.ResponseWriter, r *http.Request, accountID int64, limit int) {
	entries, err := h.deps.Store.RecentActivity(r.Context(), accountID, limit)
	if err != nil {
		h.deps.internalError(w, r, "failed to load activity", err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", map[string]any{"activities": entries})
}
