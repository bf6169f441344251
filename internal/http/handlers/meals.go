package handlers

import (
	"net/http"

	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/http/respond"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/models"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/models/dto"
)

type MealHandler struct {
	deps *Deps
}

func NewMealHandler(deps *Deps) *MealHandler {
	return &MealHandler{deps: deps}
}

func (h *MealHandler) Register(mux *http.ServeMux) {
	g := h.deps.Guard
	mux.Handle("GET /manage/meals", g.Admin(h.calendar))
	mux.Handle("POST /manage/meals/create", g.Admin(h.create))
	mux.Handle("GET /manage/meals/{id}", g.Admin(h.get))
	mux.Handle("POST /manage/meals/{id}/edit", g.Admin(h.edit))
	mux.Handle("POST /manage/meals/{id}/delete", g.Admin(h.delete))
	mux.Handle("GET /user/meals", g.Member(h.calendar))
}

// calendar lists the plans of one calendar month.
func (h *MealHandler) calendar(w http.ResponseWriter, r *http.Request) {
	year, month, ok := h.deps.calendar(w, r)
	if !ok {
		return
	}
	from, to := models.MonthRange(year, month)
	plans, err := h.deps.Store.ListMealPlans(r.Context(), from, to)
	if err != nil {
		h.deps.internalError(w, r, "failed to list meal plans", err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", map[string]any{
		"year":       year,
		"month":      int(month),
		"month_name": month.String(),
		"meal_plans": plans,
	})
}

func (h *MealHandler) create(w http.ResponseWriter, r *http.Request) {
	var req dto.MealPlanRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if invalid(w, req.Validate()) {
		return
	}
	plan, err := h.deps.Store.CreateMealPlan(r.Context(), req.Plan())
	if err != nil {
		h.deps.storeError(w, r, "meal plan for "+req.Date, err)
		return
	}
	respond.JSON(w, http.StatusCreated, "Meal plan added successfully.", plan)
}

func (h *MealHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "meal plan")
	if !ok {
		return
	}
	plan, err := h.deps.Store.GetMealPlan(r.Context(), id)
	if err != nil {
		h.deps.storeError(w, r, "meal plan", err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", plan)
}

func (h *MealHandler) edit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "meal plan")
	if !ok {
		return
	}
	var req dto.MealPlanRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if invalid(w, req.Validate()) {
		return
	}
	plan := req.Plan()
	plan.ID = id
	updated, err := h.deps.Store.UpdateMealPlan(r.Context(), plan)
	if err != nil {
		h.deps.storeError(w, r, "meal plan", err)
		return
	}
	respond.JSON(w, http.StatusOK, "Meal plan updated successfully.", updated)
}

func (h *MealHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "meal plan")
	if !ok {
		return
	}
	if err := h.deps.Store.DeleteMealPlan(r.Context(), id); err != nil {
		h.deps.storeError(w, r, "meal plan", err)
		return
	}
	respond.JSON(w, http.StatusOK, "Meal plan deleted successfully.", nil)
}
