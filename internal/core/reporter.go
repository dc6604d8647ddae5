package core

import (
	"context"
	"sort"
	"time"

	"feedlot/pkg/domain"
)

// ChangeFeed supplies upcoming plan-change notices from the external planning
// collaborator. A nil feed means no notices.
type ChangeFeed interface {
	PendingChanges(ctx context.Context, operatorID string) ([]UpcomingChange, error)
}

// Reporter derives read-model views over the committed ledger state. It never
// mutates; everything is computed from store snapshots on demand.
type Reporter struct {
	store   domain.PersistentStore
	changes ChangeFeed
	nowFn   func() time.Time
}

// ReporterOption customises reporter construction.
type ReporterOption func(*Reporter)

// WithChangeFeed attaches the upcoming-change source.
func WithChangeFeed(feed ChangeFeed) ReporterOption {
	return func(r *Reporter) {
		r.changes = feed
	}
}

// WithReporterNow overrides the reporter clock (tests).
func WithReporterNow(fn func() time.Time) ReporterOption {
	return func(r *Reporter) {
		if fn != nil {
			r.nowFn = fn
		}
	}
}

// NewReporter constructs a reporter over the supplied store.
func NewReporter(store domain.PersistentStore, opts ...ReporterOption) *Reporter {
	r := &Reporter{
		store: store,
		nowFn: func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func sortByCreation[T any](items []T, created func(T) time.Time, id func(T) string) {
	sort.SliceStable(items, func(i, j int) bool {
		ci, cj := created(items[i]), created(items[j])
		if ci.Equal(cj) {
			return id(items[i]) < id(items[j])
		}
		return ci.Before(cj)
	})
}

// PensByOperator lists pens owned by the operator, oldest first.
func (r *Reporter) PensByOperator(operatorID string) []Pen {
	var out []Pen
	for _, pen := range r.store.ListPens() {
		if pen.OperatorID == operatorID {
			out = append(out, pen)
		}
	}
	sortByCreation(out, func(p Pen) time.Time { return p.CreatedAt }, func(p Pen) string { return p.ID })
	return out
}

// SalesReport aggregates full and partial sales with combined revenue.
type SalesReport struct {
	FullSales    []CattleSale  `json:"full_sales"`
	PartialSales []PartialSale `json:"partial_sales"`
	TotalRevenue float64       `json:"total_revenue"`
}

// SalesByOperator returns the operator's full sale history. Revenue sums both
// sale kinds.
func (r *Reporter) SalesByOperator(operatorID string) SalesReport {
	var report SalesReport
	for _, sale := range r.store.ListCattleSales() {
		if sale.OperatorID == operatorID {
			report.FullSales = append(report.FullSales, sale)
			report.TotalRevenue += sale.TotalRevenue
		}
	}
	for _, sale := range r.store.ListPartialSales() {
		if sale.OperatorID == operatorID {
			report.PartialSales = append(report.PartialSales, sale)
			report.TotalRevenue += sale.TotalRevenue
		}
	}
	sortByCreation(report.FullSales, func(s CattleSale) time.Time { return s.CreatedAt }, func(s CattleSale) string { return s.ID })
	sortByCreation(report.PartialSales, func(s PartialSale) time.Time { return s.CreatedAt }, func(s PartialSale) string { return s.ID })
	return report
}

// FeedingRecordsByOperator lists the operator's feeding history, oldest first.
func (r *Reporter) FeedingRecordsByOperator(operatorID string) []FeedingRecord {
	var out []FeedingRecord
	for _, rec := range r.store.ListFeedingRecords() {
		if rec.OperatorID == operatorID {
			out = append(out, rec)
		}
	}
	sortByCreation(out, func(f FeedingRecord) time.Time { return f.CreatedAt }, func(f FeedingRecord) string { return f.ID })
	return out
}

// DeathLossesByOperator lists the operator's death-loss history, oldest first.
func (r *Reporter) DeathLossesByOperator(operatorID string) []DeathLoss {
	var out []DeathLoss
	for _, loss := range r.store.ListDeathLosses() {
		if loss.OperatorID == operatorID {
			out = append(out, loss)
		}
	}
	sortByCreation(out, func(d DeathLoss) time.Time { return d.CreatedAt }, func(d DeathLoss) string { return d.ID })
	return out
}

// TreatmentsByOperator lists the operator's treatment history, oldest first.
func (r *Reporter) TreatmentsByOperator(operatorID string) []TreatmentRecord {
	var out []TreatmentRecord
	for _, t := range r.store.ListTreatments() {
		if t.OperatorID == operatorID {
			out = append(out, t)
		}
	}
	sortByCreation(out, func(t TreatmentRecord) time.Time { return t.CreatedAt }, func(t TreatmentRecord) string { return t.ID })
	return out
}

// NutritionistsByOperator lists nutritionists invited by the operator.
func (r *Reporter) NutritionistsByOperator(operatorID string) []Nutritionist {
	var out []Nutritionist
	for _, n := range r.store.ListNutritionists() {
		if n.OperatorID == operatorID {
			out = append(out, n)
		}
	}
	sortByCreation(out, func(n Nutritionist) time.Time { return n.CreatedAt }, func(n Nutritionist) string { return n.ID })
	return out
}

// DashboardStats summarises the operator's active pens and schedules.
func (r *Reporter) DashboardStats(operatorID string) DashboardStats {
	pens := r.PensByOperator(operatorID)
	var plans []FeedingPlan
	for _, plan := range r.store.ListFeedingPlans() {
		if plan.OperatorID == operatorID {
			plans = append(plans, plan)
		}
	}
	return ComputeDashboardStats(pens, plans)
}

// UpcomingChanges returns plan-change notices within the default horizon,
// soonest first. Without a change feed it returns nothing.
func (r *Reporter) UpcomingChanges(ctx context.Context, operatorID string) ([]UpcomingChange, error) {
	if r.changes == nil {
		return nil, nil
	}
	pending, err := r.changes.PendingChanges(ctx, operatorID)
	if err != nil {
		return nil, err
	}
	return FilterUpcomingChanges(pending, DefaultChangeHorizonDays), nil
}

// OperatorReport bundles the complete derived view for one operator. The
// report archive worker serialises this snapshot.
type OperatorReport struct {
	OperatorID    string            `json:"operator_id"`
	GeneratedAt   time.Time         `json:"generated_at"`
	Stats         DashboardStats    `json:"stats"`
	Pens          []Pen             `json:"pens"`
	Sales         SalesReport       `json:"sales"`
	Feedings      []FeedingRecord   `json:"feedings"`
	DeathLosses   []DeathLoss       `json:"death_losses"`
	Treatments    []TreatmentRecord `json:"treatments"`
	Nutritionists []Nutritionist    `json:"nutritionists"`
}

// BuildOperatorReport assembles the full report snapshot for one operator.
func (r *Reporter) BuildOperatorReport(operatorID string) OperatorReport {
	return OperatorReport{
		OperatorID:    operatorID,
		GeneratedAt:   r.nowFn(),
		Stats:         r.DashboardStats(operatorID),
		Pens:          r.PensByOperator(operatorID),
		Sales:         r.SalesByOperator(operatorID),
		Feedings:      r.FeedingRecordsByOperator(operatorID),
		DeathLosses:   r.DeathLossesByOperator(operatorID),
		Treatments:    r.TreatmentsByOperator(operatorID),
		Nutritionists: r.NutritionistsByOperator(operatorID),
	}
}
