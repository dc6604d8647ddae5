package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"feedlot/internal/adapters/reports"
	"feedlot/internal/core"
)

func withOperator(ctx context.Context, operator string) context.Context {
	return context.WithValue(ctx, operatorKey, operator)
}

func operatorFrom(ctx context.Context) string {
	operator, _ := ctx.Value(operatorKey).(string)
	return operator
}

type createPenRequest struct {
	Name           string  `json:"name"`
	Capacity       int     `json:"capacity"`
	CurrentHead    int     `json:"current_head"`
	Category       string  `json:"category"`
	Crossbred      bool    `json:"crossbred"`
	FeedType       string  `json:"feed_type"`
	StartingWeight float64 `json:"starting_weight"`
	MarketWeight   float64 `json:"market_weight"`
	NutritionistID *string `json:"nutritionist_id,omitempty"`
}

func (a *API) createPen(w http.ResponseWriter, r *http.Request) {
	var req createPenRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	pen, _, err := a.service.CreatePen(r.Context(), core.PenSpec{
		Name:           req.Name,
		Capacity:       req.Capacity,
		CurrentHead:    req.CurrentHead,
		Category:       core.CattleCategory(req.Category),
		Crossbred:      req.Crossbred,
		FeedType:       req.FeedType,
		StartingWeight: req.StartingWeight,
		MarketWeight:   req.MarketWeight,
		OperatorID:     operatorFrom(r.Context()),
		NutritionistID: req.NutritionistID,
	})
	if err != nil {
		a.writeDomainError(w, err)
		return
	}
	a.writeJSON(w, http.StatusCreated, pen)
}

func (a *API) listPens(w http.ResponseWriter, r *http.Request) {
	pens := a.reporter.PensByOperator(operatorFrom(r.Context()))
	a.writeJSON(w, http.StatusOK, pens)
}

func (a *API) getPen(w http.ResponseWriter, r *http.Request) {
	operator := operatorFrom(r.Context())
	pen, ok := a.service.Store().GetPen(chi.URLParam(r, "penID"))
	if !ok || pen.OperatorID != operator {
		writeError(w, http.StatusNotFound, "pen not found")
		return
	}
	a.writeJSON(w, http.StatusOK, pen)
}

type updateWeightRequest struct {
	NewWeight float64 `json:"new_weight"`
}

func (a *API) updateWeight(w http.ResponseWriter, r *http.Request) {
	var req updateWeightRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	pen, _, err := a.service.UpdateWeight(r.Context(), chi.URLParam(r, "penID"), req.NewWeight, operatorFrom(r.Context()))
	if err != nil {
		a.writeDomainError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, pen)
}

type recordFeedingRequest struct {
	ScheduleID string `json:"schedule_id"`
	Actuals    []struct {
		Name   string  `json:"name"`
		Amount float64 `json:"amount"`
	} `json:"actuals"`
}

func (a *API) recordFeeding(w http.ResponseWriter, r *http.Request) {
	var req recordFeedingRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	in := core.FeedingInput{
		PenID:      chi.URLParam(r, "penID"),
		ScheduleID: req.ScheduleID,
		OperatorID: operatorFrom(r.Context()),
	}
	for _, actual := range req.Actuals {
		in.Actuals = append(in.Actuals, core.ActualIngredient{Name: actual.Name, Amount: actual.Amount})
	}
	record, _, err := a.service.RecordFeeding(r.Context(), in)
	if err != nil {
		a.writeDomainError(w, err)
		return
	}
	a.writeJSON(w, http.StatusCreated, record)
}

type recordDeathLossRequest struct {
	Count           int       `json:"count"`
	Reason          string    `json:"reason"`
	EstimatedWeight float64   `json:"estimated_weight"`
	EventDate       time.Time `json:"event_date"`
	TagNumbers      []string  `json:"tag_numbers,omitempty"`
	Notes           string    `json:"notes,omitempty"`
}

func (a *API) recordDeathLoss(w http.ResponseWriter, r *http.Request) {
	var req recordDeathLossRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	record, _, err := a.service.RecordDeathLoss(r.Context(), core.DeathLossInput{
		PenID:           chi.URLParam(r, "penID"),
		Count:           req.Count,
		Reason:          req.Reason,
		EstimatedWeight: req.EstimatedWeight,
		EventDate:       req.EventDate,
		TagNumbers:      req.TagNumbers,
		Notes:           req.Notes,
		OperatorID:      operatorFrom(r.Context()),
	})
	if err != nil {
		a.writeDomainError(w, err)
		return
	}
	a.writeJSON(w, http.StatusCreated, record)
}

type recordTreatmentRequest struct {
	TreatmentType string    `json:"treatment_type"`
	Product       string    `json:"product"`
	Dosage        string    `json:"dosage"`
	Count         int       `json:"count"`
	TreatedBy     string    `json:"treated_by"`
	EventDate     time.Time `json:"event_date"`
	TagNumbers    []string  `json:"tag_numbers,omitempty"`
	Notes         string    `json:"notes,omitempty"`
}

func (a *API) recordTreatment(w http.ResponseWriter, r *http.Request) {
	var req recordTreatmentRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	record, _, err := a.service.RecordTreatment(r.Context(), core.TreatmentInput{
		PenID:         chi.URLParam(r, "penID"),
		TreatmentType: req.TreatmentType,
		Product:       req.Product,
		Dosage:        req.Dosage,
		Count:         req.Count,
		TreatedBy:     req.TreatedBy,
		EventDate:     req.EventDate,
		TagNumbers:    req.TagNumbers,
		Notes:         req.Notes,
		OperatorID:    operatorFrom(r.Context()),
	})
	if err != nil {
		a.writeDomainError(w, err)
		return
	}
	a.writeJSON(w, http.StatusCreated, record)
}

type recordPartialSaleRequest struct {
	Count       int       `json:"count"`
	FinalWeight float64   `json:"final_weight"`
	PricePerCwt float64   `json:"price_per_cwt"`
	SaleDate    time.Time `json:"sale_date"`
	Buyer       string    `json:"buyer,omitempty"`
	TagNumbers  []string  `json:"tag_numbers,omitempty"`
	Notes       string    `json:"notes,omitempty"`
}

func (a *API) recordPartialSale(w http.ResponseWriter, r *http.Request) {
	var req recordPartialSaleRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	sale, _, err := a.service.RecordPartialSale(r.Context(), core.PartialSaleInput{
		PenID:       chi.URLParam(r, "penID"),
		Count:       req.Count,
		FinalWeight: req.FinalWeight,
		PricePerCwt: req.PricePerCwt,
		SaleDate:    req.SaleDate,
		Buyer:       req.Buyer,
		TagNumbers:  req.TagNumbers,
		Notes:       req.Notes,
		OperatorID:  operatorFrom(r.Context()),
	})
	if err != nil {
		a.writeDomainError(w, err)
		return
	}
	a.writeJSON(w, http.StatusCreated, sale)
}

type sellAllCattleRequest struct {
	FinalWeight float64   `json:"final_weight"`
	PricePerCwt float64   `json:"price_per_cwt"`
	SaleDate    time.Time `json:"sale_date"`
}

func (a *API) sellAllCattle(w http.ResponseWriter, r *http.Request) {
	var req sellAllCattleRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	sale, _, err := a.service.SellAllCattle(r.Context(), core.CattleSaleInput{
		PenID:       chi.URLParam(r, "penID"),
		FinalWeight: req.FinalWeight,
		PricePerCwt: req.PricePerCwt,
		SaleDate:    req.SaleDate,
		OperatorID:  operatorFrom(r.Context()),
	})
	if err != nil {
		a.writeDomainError(w, err)
		return
	}
	a.writeJSON(w, http.StatusCreated, sale)
}

func (a *API) weightProjection(w http.ResponseWriter, r *http.Request) {
	operator := operatorFrom(r.Context())
	store := a.service.Store()
	pen, ok := store.GetPen(chi.URLParam(r, "penID"))
	if !ok || pen.OperatorID != operator {
		writeError(w, http.StatusNotFound, "pen not found")
		return
	}
	now := time.Now().UTC()
	var windows []core.ProjectionWindow
	for _, plan := range store.ListFeedingPlans() {
		if plan.PenID == pen.ID && plan.Status == core.PlanStatusActive {
			windows = core.ProjectWeights(pen, plan, core.ObservedDailyGain(pen, now), now)
			break
		}
	}
	a.writeJSON(w, http.StatusOK, windows)
}

func (a *API) registerPlan(w http.ResponseWriter, r *http.Request) {
	var plan core.FeedingPlan
	if err := decodeBody(r, &plan); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	plan.OperatorID = operatorFrom(r.Context())
	stored, _, err := a.service.RegisterFeedingPlan(r.Context(), plan)
	if err != nil {
		a.writeDomainError(w, err)
		return
	}
	a.writeJSON(w, http.StatusCreated, stored)
}

type dashboardResponse struct {
	Stats           core.DashboardStats   `json:"stats"`
	UpcomingChanges []core.UpcomingChange `json:"upcoming_changes"`
}

func (a *API) dashboard(w http.ResponseWriter, r *http.Request) {
	operator := operatorFrom(r.Context())
	changes, err := a.reporter.UpcomingChanges(r.Context(), operator)
	if err != nil {
		a.writeDomainError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, dashboardResponse{
		Stats:           a.reporter.DashboardStats(operator),
		UpcomingChanges: changes,
	})
}

func (a *API) listSales(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, a.reporter.SalesByOperator(operatorFrom(r.Context())))
}

func (a *API) listFeedings(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, a.reporter.FeedingRecordsByOperator(operatorFrom(r.Context())))
}

func (a *API) listNutritionists(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, a.reporter.NutritionistsByOperator(operatorFrom(r.Context())))
}

type inviteNutritionistRequest struct {
	Name         string `json:"name"`
	BusinessName string `json:"business_name"`
	Email        string `json:"email"`
}

func (a *API) inviteNutritionist(w http.ResponseWriter, r *http.Request) {
	var req inviteNutritionistRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	invited, _, err := a.service.InviteNutritionist(r.Context(), core.NutritionistInvite{
		Name:         req.Name,
		BusinessName: req.BusinessName,
		Email:        req.Email,
		OperatorID:   operatorFrom(r.Context()),
	})
	if err != nil {
		a.writeDomainError(w, err)
		return
	}
	a.writeJSON(w, http.StatusCreated, invited)
}

func (a *API) acceptInvitation(w http.ResponseWriter, r *http.Request) {
	accepted, _, err := a.service.AcceptNutritionistInvitation(r.Context(), chi.URLParam(r, "nutritionistID"), operatorFrom(r.Context()))
	if err != nil {
		a.writeDomainError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, accepted)
}

type enqueueExportRequest struct {
	Formats []string `json:"formats,omitempty"`
}

func (a *API) enqueueExport(w http.ResponseWriter, r *http.Request) {
	var req enqueueExportRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	operator := operatorFrom(r.Context())
	in := reports.ExportInput{OperatorID: operator, RequestedBy: operator}
	for _, f := range req.Formats {
		in.Formats = append(in.Formats, reports.ExportFormat(f))
	}
	record, err := a.exports.EnqueueExport(r.Context(), in)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	a.writeJSON(w, http.StatusAccepted, record)
}

func (a *API) getExport(w http.ResponseWriter, r *http.Request) {
	record, ok := a.exports.GetExport(chi.URLParam(r, "exportID"))
	if !ok || record.OperatorID != operatorFrom(r.Context()) {
		writeError(w, http.StatusNotFound, "export not found")
		return
	}
	a.writeJSON(w, http.StatusOK, record)
}
