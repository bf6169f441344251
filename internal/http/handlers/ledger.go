package handlers

import (
	"net/http"

	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/export"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/http/respond"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/models"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/models/dto"
)

// LedgerHandler manages groceries and fixed expenses, plus the read-only
// data view every signed-in user gets.
type LedgerHandler struct {
	deps *Deps
}

func NewLedgerHandler(deps *Deps) *LedgerHandler {
	return &LedgerHandler{deps: deps}
}

func (h *LedgerHandler) Register(mux *http.ServeMux) {
	g := h.deps.Guard
	mux.Handle("GET /manage/groceries", g.Admin(h.listGroceries))
	mux.Handle("POST /manage/groceries/create", g.Admin(h.createGrocery))
	mux.Handle("GET /manage/groceries/{id}", g.Admin(h.getGrocery))
	mux.Handle("POST /manage/groceries/{id}/edit", g.Admin(h.editGrocery))
	mux.Handle("POST /manage/groceries/{id}/delete", g.Admin(h.deleteGrocery))

	mux.Handle("GET /manage/expenses", g.Admin(h.listExpenses))
	mux.Handle("POST /manage/expenses/create", g.Admin(h.createExpense))
	mux.Handle("GET /manage/expenses/{id}", g.Admin(h.getExpense))
	mux.Handle("POST /manage/expenses/{id}/edit", g.Admin(h.editExpense))
	mux.Handle("POST /manage/expenses/{id}/delete", g.Admin(h.deleteExpense))

	mux.Handle("GET /user/data", g.Any(h.dataView))
}

func (h *LedgerHandler) listGroceries(w http.ResponseWriter, r *http.Request) {
	period, ok := h.deps.period(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	items, err := h.deps.Store.ListGroceries(ctx, period)
	if err != nil {
		h.deps.internalError(w, r, "failed to list groceries", err)
		return
	}
	periods, err := h.deps.Store.ListGroceryPeriods(ctx)
	if err != nil {
		h.deps.internalError(w, r, "failed to list periods", err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", map[string]any{
		"month_year": period,
		"groceries":  items,
		"total":      models.GroceryTotal(items),
		"periods":    periods,
	})
}

func (h *LedgerHandler) createGrocery(w http.ResponseWriter, r *http.Request) {
	var req dto.GroceryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if invalid(w, req.Validate()) {
		return
	}
	item, err := h.deps.Store.CreateGrocery(r.Context(), req.Item())
	if err != nil {
		h.deps.storeError(w, r, "grocery item", err)
		return
	}
	respond.JSON(w, http.StatusCreated, "Grocery item added successfully.", item)
}

func (h *LedgerHandler) getGrocery(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "grocery item")
	if !ok {
		return
	}
	item, err := h.deps.Store.GetGrocery(r.Context(), id)
	if err != nil {
		h.deps.storeError(w, r, "grocery item", err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", item)
}

func (h *LedgerHandler) editGrocery(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "grocery item")
	if !ok {
		return
	}
	var req dto.GroceryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if invalid(w, req.Validate()) {
		return
	}
	item := req.Item()
	item.ID = id
	updated, err := h.deps.Store.UpdateGrocery(r.Context(), item)
	if err != nil {
		h.deps.storeError(w, r, "grocery item", err)
		return
	}
	respond.JSON(w, http.StatusOK, "Grocery item updated successfully.", updated)
}

func (h *LedgerHandler) deleteGrocery(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "grocery item")
	if !ok {
		return
	}
	if err := h.deps.Store.DeleteGrocery(r.Context(), id); err != nil {
		h.deps.storeError(w, r, "grocery item", err)
		return
	}
	respond.JSON(w, http.StatusOK, "Grocery item deleted successfully.", nil)
}

func (h *LedgerHandler) listExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.deps.Store.ListFixedExpenses(r.Context())
	if err != nil {
		h.deps.internalError(w, r, "failed to list expenses", err)
		return
	}
	views := make([]models.FixedExpenseView, 0, len(expenses))
	for _, e := range expenses {
		views = append(views, e.View())
	}
	respond.JSON(w, http.StatusOK, "ok", map[string]any{"expenses": views})
}

func (h *LedgerHandler) createExpense(w http.ResponseWriter, r *http.Request) {
	var req dto.FixedExpenseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if invalid(w, req.Validate()) {
		return
	}
	e, err := h.deps.Store.CreateFixedExpense(r.Context(), req.Expense())
	if err != nil {
		h.deps.storeError(w, r, "fixed expense for "+req.Period, err)
		return
	}
	respond.JSON(w, http.StatusCreated, "Fixed expenses added successfully.", e.View())
}

func (h *LedgerHandler) getExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "fixed expense")
	if !ok {
		return
	}
	e, err := h.deps.Store.GetFixedExpense(r.Context(), id)
	if err != nil {
		h.deps.storeError(w, r, "fixed expense", err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", e.View())
}

func (h *LedgerHandler) editExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "fixed expense")
	if !ok {
		return
	}
	var req dto.FixedExpenseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if invalid(w, req.Validate()) {
		return
	}
	e := req.Expense()
	e.ID = id
	updated, err := h.deps.Store.UpdateFixedExpense(r.Context(), e)
	if err != nil {
		h.deps.storeError(w, r, "fixed expense", err)
		return
	}
	respond.JSON(w, http.StatusOK, "Fixed expenses updated successfully.", updated.View())
}

func (h *LedgerHandler) deleteExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "fixed expense")
	if !ok {
		return
	}
	if err := h.deps.Store.DeleteFixedExpense(r.Context(), id); err != nil {
		h.deps.storeError(w, r, "fixed expense", err)
		return
	}
	respond.JSON(w, http.StatusOK, "Fixed expenses deleted successfully.", nil)
}

// dataView is the transparency page: every figure of the period, visible to
// members and admins alike.
func (h *LedgerHandler) dataView(w http.ResponseWriter, r *http.Request) {
	period, ok := h.deps.period(w, r)
	if !ok {
		return
	}
	report, err := export.BuildMonthlyReport(r.Context(), h.deps.Store, period)
	if err != nil {
		h.deps.internalError(w, r, "failed to load data", err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", report)
}
