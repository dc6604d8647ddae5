// Package domain defines the core persistent entities, value types, and
// rule evaluation primitives used by the feedlot ledger.
package domain

import "time"

// EntityType identifies the type of record stored in the core domain.
type EntityType string

// Supported entity type identifiers used in Change records and persistence buckets.
const (
	// EntityPen identifies a pen record.
	EntityPen EntityType = "pen"
	// EntityFeedingPlan identifies a feeding plan reference record.
	EntityFeedingPlan EntityType = "feeding_plan"
	// EntityFeedingSchedule identifies a daily schedule within a feeding plan.
	EntityFeedingSchedule EntityType = "feeding_schedule"
	// EntityFeedingRecord identifies a performed-feeding event record.
	EntityFeedingRecord EntityType = "feeding_record"
	// EntityDeathLoss identifies a death-loss event record.
	EntityDeathLoss EntityType = "death_loss"
	// EntityTreatment identifies a treatment event record.
	EntityTreatment EntityType = "treatment"
	// EntityPartialSale identifies a partial-sale event record.
	EntityPartialSale EntityType = "partial_sale"
	// EntityCattleSale identifies a full-sale event record.
	EntityCattleSale EntityType = "cattle_sale"
	// EntityNutritionist identifies a nutritionist record.
	EntityNutritionist EntityType = "nutritionist"
)

// PenStatus represents the canonical pen lifecycle states.
type PenStatus string

// Canonical pen statuses. Active and Maintenance interchange freely under
// external direction; Inactive is terminal and reached only through a full sale.
const (
	PenStatusActive      PenStatus = "active"
	PenStatusMaintenance PenStatus = "maintenance"
	PenStatusInactive    PenStatus = "inactive"
)

// CattleCategory classifies the animals grouped in a pen.
type CattleCategory string

// Supported cattle categories.
const (
	CategorySteers  CattleCategory = "steers"
	CategoryHeifers CattleCategory = "heifers"
	CategoryMixed   CattleCategory = "mixed"
)

// PlanStatus enumerates feeding plan workflow states.
type PlanStatus string

// Canonical feeding plan statuses.
const (
	PlanStatusActive    PlanStatus = "active"
	PlanStatusUpcoming  PlanStatus = "upcoming"
	PlanStatusCompleted PlanStatus = "completed"
)

// NutritionistStatus enumerates nutritionist invitation states.
type NutritionistStatus string

// Invitation states. Invited transitions to Active exactly once and never reverses.
const (
	NutritionistInvited NutritionistStatus = "invited"
	NutritionistActive  NutritionistStatus = "active"
)

// Severity captures rule outcomes.
type Severity string

// Rule evaluation severities determine commit behavior and logging.
const (
	// SeverityBlock blocks transaction commit.
	SeverityBlock Severity = "block"
	// SeverityWarn logs a warning but allows commit.
	SeverityWarn Severity = "warn"
	SeverityLog  Severity = "log"
)

// Base contains common fields for all domain records.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WeightRecord is a single append-only weight history entry. Ordering is
// append order, assumed chronological by the supplied date.
type WeightRecord struct {
	Date       time.Time `json:"date"`
	Weight     float64   `json:"weight"`
	RecordedBy string    `json:"recorded_by"`
}

// Pen is the single mutable root all ledger events react against: a grouping
// of cattle under common management, bounded by capacity.
type Pen struct {
	Base
	Name             string         `json:"name"`
	Capacity         int            `json:"capacity"`
	CurrentHead      int            `json:"current_head"`
	Status           PenStatus      `json:"status"`
	Category         CattleCategory `json:"category"`
	Crossbred        bool           `json:"crossbred"`
	FeedType         string         `json:"feed_type"`
	StartingWeight   float64        `json:"starting_weight"`
	CurrentWeight    float64        `json:"current_weight"`
	MarketWeight     float64        `json:"market_weight"`
	AverageDailyGain float64        `json:"average_daily_gain"`
	OperatorID       string         `json:"operator_id"`
	NutritionistID   *string        `json:"nutritionist_id"`
	LastFedAt        *time.Time     `json:"last_fed_at"`
	WeightHistory    []WeightRecord `json:"weight_history"`
}

// NutritionProfile summarises feed nutrition content.
type NutritionProfile struct {
	CrudeProtein            float64 `json:"crude_protein"`
	Fat                     float64 `json:"fat"`
	Fiber                   float64 `json:"fiber"`
	TotalDigestibleNutrient float64 `json:"total_digestible_nutrient"`
}

// Ingredient is one component of a scheduled feeding.
type Ingredient struct {
	Name       string            `json:"name"`
	Category   string            `json:"category"`
	Amount     float64           `json:"amount"`
	Unit       string            `json:"unit"`
	Percentage float64           `json:"percentage"`
	Nutrition  *NutritionProfile `json:"nutrition,omitempty"`
}

// FeedingSchedule describes one daily scheduled feeding within a plan.
type FeedingSchedule struct {
	ID             string           `json:"id"`
	TimeOfDay      string           `json:"time_of_day"`
	TotalAmount    float64          `json:"total_amount"`
	Unit           string           `json:"unit"`
	Ingredients    []Ingredient     `json:"ingredients"`
	TotalNutrition NutritionProfile `json:"total_nutrition"`
}

// FeedingPlan is read-mostly reference data supplied by an external planning
// collaborator and consulted by the ledger at feeding submission time.
type FeedingPlan struct {
	Base
	PenID        string            `json:"pen_id"`
	OperatorID   string            `json:"operator_id"`
	StartDate    time.Time         `json:"start_date"`
	DurationDays int               `json:"duration_days"`
	CurrentDay   int               `json:"current_day"`
	Status       PlanStatus        `json:"status"`
	Schedules    []FeedingSchedule `json:"schedules"`
}

// FedIngredient pairs a planned ingredient amount with the amount actually fed.
type FedIngredient struct {
	Name          string  `json:"name"`
	Category      string  `json:"category"`
	PlannedAmount float64 `json:"planned_amount"`
	ActualAmount  float64 `json:"actual_amount"`
	Unit          string  `json:"unit"`
}

// FeedingRecord captures one performed feeding. Immutable once appended.
type FeedingRecord struct {
	Base
	OperatorID   string          `json:"operator_id"`
	PenID        string          `json:"pen_id"`
	ScheduleID   string          `json:"schedule_id"`
	PlannedTotal float64         `json:"planned_total"`
	Ingredients  []FedIngredient `json:"ingredients"`
	FedAt        time.Time       `json:"fed_at"`
}

// DeathLoss records animals lost from a pen. Appending one decrements the
// pen head count within the same transaction.
type DeathLoss struct {
	Base
	OperatorID      string    `json:"operator_id"`
	PenID           string    `json:"pen_id"`
	EventDate       time.Time `json:"event_date"`
	Count           int       `json:"count"`
	Reason          string    `json:"reason"`
	EstimatedWeight float64   `json:"estimated_weight"`
	TagNumbers      []string  `json:"tag_numbers,omitempty"`
	Notes           string    `json:"notes,omitempty"`
}

// TreatmentRecord captures a veterinary treatment. Pure append; head count
// is unaffected.
type TreatmentRecord struct {
	Base
	OperatorID    string    `json:"operator_id"`
	PenID         string    `json:"pen_id"`
	EventDate     time.Time `json:"event_date"`
	TreatmentType string    `json:"treatment_type"`
	Product       string    `json:"product"`
	Dosage        string    `json:"dosage"`
	Count         int       `json:"count"`
	TreatedBy     string    `json:"treated_by"`
	TagNumbers    []string  `json:"tag_numbers,omitempty"`
	Notes         string    `json:"notes,omitempty"`
}

// PartialSale records a sale of part of a pen. It decrements head count but
// never transitions the pen to inactive, even when it empties the pen; only
// a full sale does that.
type PartialSale struct {
	Base
	OperatorID   string    `json:"operator_id"`
	PenID        string    `json:"pen_id"`
	SaleDate     time.Time `json:"sale_date"`
	Count        int       `json:"count"`
	FinalWeight  float64   `json:"final_weight"`
	PricePerCwt  float64   `json:"price_per_cwt"`
	TotalRevenue float64   `json:"total_revenue"`
	Buyer        string    `json:"buyer,omitempty"`
	TagNumbers   []string  `json:"tag_numbers,omitempty"`
	Notes        string    `json:"notes,omitempty"`
}

// CattleSale records a full sale closing out a pen. Pen attributes are
// denormalized at sale time; revenue, days-on-feed and average daily gain
// are computed at creation and stored with the event.
type CattleSale struct {
	Base
	OperatorID       string         `json:"operator_id"`
	PenID            string         `json:"pen_id"`
	SaleDate         time.Time      `json:"sale_date"`
	FinalWeight      float64        `json:"final_weight"`
	PricePerCwt      float64        `json:"price_per_cwt"`
	HeadCount        int            `json:"head_count"`
	TotalRevenue     float64        `json:"total_revenue"`
	DaysOnFeed       int            `json:"days_on_feed"`
	AverageDailyGain float64        `json:"average_daily_gain"`
	PenName          string         `json:"pen_name"`
	Category         CattleCategory `json:"category"`
	StartingWeight   float64        `json:"starting_weight"`
}

// Nutritionist is an invited consulting identity scoped to one operator.
type Nutritionist struct {
	Base
	Name         string             `json:"name"`
	BusinessName string             `json:"business_name"`
	Email        string             `json:"email"`
	OperatorID   string             `json:"operator_id"`
	Status       NutritionistStatus `json:"status"`
	InvitedAt    time.Time          `json:"invited_at"`
	AcceptedAt   *time.Time         `json:"accepted_at"`
}

// Change describes a mutation applied to an entity during a transaction.
type Change struct {
	Entity EntityType
	Action Action
	Before any
	After  any
}

// Action indicates the type of modification performed.
type Action string

// Change actions enumerate mutations captured in the audit trail. Event
// buckets are append-only and only ever produce creates.
const (
	// ActionCreate indicates an entity was created.
	ActionCreate Action = "create"
	// ActionUpdate indicates an entity was updated.
	ActionUpdate Action = "update"
)

// Violation reports a failed rule evaluation.
type Violation struct {
	Rule     string
	Severity Severity
	Message  string
	Entity   EntityType
	EntityID string
}

// Result aggregates violations from the rules engine.
type Result struct {
	Violations []Violation
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking returns true if the result contains blocking violations.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// Warnings returns the non-blocking violations contained in the result.
func (r Result) Warnings() []Violation {
	var out []Violation
	for _, v := range r.Violations {
		if v.Severity != SeverityBlock {
			out = append(out, v)
		}
	}
	return out
}

// RuleViolationError is returned when blocking violations are present.
type RuleViolationError struct {
	Result Result
}

func (e RuleViolationError) Error() string {
	return "transaction blocked by rules"
}
