package domain

import "context"

// IDGenerator produces opaque unique identifiers for new records. Injecting
// it keeps the uniqueness strategy out of the ledger logic.
type IDGenerator interface {
	NewID() string
}

// Transaction exposes the domain operations that a persistence implementation
// must support within an atomic scope. Event buckets (feeding records, death
// losses, treatments, sales) are append-only and expose no update surface.
type Transaction interface {
	Snapshot() TransactionView
	CreatePen(Pen) (Pen, error)
	UpdatePen(id string, mutator func(*Pen) error) (Pen, error)
	FindPen(id string) (Pen, bool)
	CreateFeedingPlan(FeedingPlan) (FeedingPlan, error)
	UpdateFeedingPlan(id string, mutator func(*FeedingPlan) error) (FeedingPlan, error)
	FindFeedingPlan(id string) (FeedingPlan, bool)
	AppendFeedingRecord(FeedingRecord) (FeedingRecord, error)
	AppendDeathLoss(DeathLoss) (DeathLoss, error)
	AppendTreatment(TreatmentRecord) (TreatmentRecord, error)
	AppendPartialSale(PartialSale) (PartialSale, error)
	AppendCattleSale(CattleSale) (CattleSale, error)
	CreateNutritionist(Nutritionist) (Nutritionist, error)
	UpdateNutritionist(id string, mutator func(*Nutritionist) error) (Nutritionist, error)
	FindNutritionist(id string) (Nutritionist, bool)
}

// TransactionView provides read-only access to snapshot data for rules and readers.
type TransactionView interface {
	RuleView
}

// PersistentStore is a minimal abstraction over durable backends. It mirrors
// the subset of store capabilities used directly by higher layers.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	GetPen(id string) (Pen, bool)
	ListPens() []Pen
	ListFeedingPlans() []FeedingPlan
	ListFeedingRecords() []FeedingRecord
	ListDeathLosses() []DeathLoss
	ListTreatments() []TreatmentRecord
	ListPartialSales() []PartialSale
	ListCattleSales() []CattleSale
	GetNutritionist(id string) (Nutritionist, bool)
	ListNutritionists() []Nutritionist
}
