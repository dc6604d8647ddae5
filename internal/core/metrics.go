package core

import (
	"math"
	"time"

	"feedlot/pkg/domain"
)

// Derived-metrics functions are pure and never fail: malformed input degrades
// to a documented sentinel (usually 0) because these values feed display
// surfaces that must render incomplete data.

// fallbackFeedingDays is the days-on-feed estimate used when a pen has no
// feeding plan on record. A deliberate heuristic, not a default to tune away.
const fallbackFeedingDays = 180

// projectionWindowDays is the synthetic window length used by weight projections.
const projectionWindowDays = 30

// Round2 rounds to two decimal places, the precision rates and revenue are
// reported in.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// VarianceRatio reports the feed variance (actual - planned) / planned.
// Returns 0 when planned is zero so the ratio never propagates NaN or Inf.
func VarianceRatio(planned, actual float64) float64 {
	if planned == 0 {
		return 0
	}
	return (actual - planned) / planned
}

// TotalRevenue computes sale revenue from a per-head final weight and a
// price quoted per hundredweight.
func TotalRevenue(finalWeight, pricePerCwt float64, head int) float64 {
	return finalWeight * pricePerCwt / 100 * float64(head)
}

// AverageDailyGain reports weight gained per day on feed, rounded to two
// decimals. Returns 0 when daysOnFeed is zero or negative.
func AverageDailyGain(startingWeight, finalWeight float64, daysOnFeed int) float64 {
	if daysOnFeed <= 0 {
		return 0
	}
	return Round2((finalWeight - startingWeight) / float64(daysOnFeed))
}

// ObservedDailyGain derives the pen's realized daily gain from its weight
// history as of the given time. Returns 0 when the history is empty or spans
// less than a full day.
func ObservedDailyGain(pen domain.Pen, asOf time.Time) float64 {
	if len(pen.WeightHistory) == 0 {
		return 0
	}
	days := int(asOf.Sub(pen.WeightHistory[0].Date).Hours() / 24)
	return AverageDailyGain(pen.StartingWeight, pen.CurrentWeight, days)
}

// DaysOnFeed derives elapsed feeding days from the earliest plan start date.
// Pens with no plan on record fall back to the 180-day estimate.
func DaysOnFeed(plans []domain.FeedingPlan, saleDate time.Time) int {
	var earliest time.Time
	for _, plan := range plans {
		if plan.StartDate.IsZero() {
			continue
		}
		if earliest.IsZero() || plan.StartDate.Before(earliest) {
			earliest = plan.StartDate
		}
	}
	if earliest.IsZero() {
		return fallbackFeedingDays
	}
	return int(saleDate.Sub(earliest).Hours() / 24)
}

// ProjectionWindow is one synthetic 30-day span of a weight projection.
// The dates are estimates derived from list order, not schedule dates; plans
// carry no per-schedule calendar data.
type ProjectionWindow struct {
	ScheduleID  string    `json:"schedule_id"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	StartWeight float64   `json:"start_weight"`
	EndWeight   float64   `json:"end_weight"`
}

// ProjectWeights chains one synthetic 30-day window per schedule in plan list
// order, starting from the pen's current weight at now. Each window gains
// 30 * adgPerDay and feeds its end weight into the next window's start.
func ProjectWeights(pen domain.Pen, plan domain.FeedingPlan, adgPerDay float64, now time.Time) []ProjectionWindow {
	windows := make([]ProjectionWindow, 0, len(plan.Schedules))
	startWeight := pen.CurrentWeight
	for i, sched := range plan.Schedules {
		start := now.AddDate(0, 0, i*projectionWindowDays)
		end := start.AddDate(0, 0, projectionWindowDays)
		endWeight := Round2(startWeight + projectionWindowDays*adgPerDay)
		windows = append(windows, ProjectionWindow{
			ScheduleID:  sched.ID,
			StartDate:   start,
			EndDate:     end,
			StartWeight: Round2(startWeight),
			EndWeight:   endWeight,
		})
		startWeight = endWeight
	}
	return windows
}

// DashboardStats aggregates the operator-facing dashboard counters.
type DashboardStats struct {
	TotalPens       int `json:"total_pens"`
	TotalCattle     int `json:"total_cattle"`
	ActiveSchedules int `json:"active_schedules"`
}

// ComputeDashboardStats counts pens, total head, and active feeding plans.
func ComputeDashboardStats(pens []domain.Pen, plans []domain.FeedingPlan) DashboardStats {
	stats := DashboardStats{TotalPens: len(pens)}
	for _, p := range pens {
		stats.TotalCattle += p.CurrentHead
	}
	for _, plan := range plans {
		if plan.Status == domain.PlanStatusActive {
			stats.ActiveSchedules++
		}
	}
	return stats
}

// UpcomingChange is one entry of the collaborator-supplied feed-change feed.
type UpcomingChange struct {
	PenID         string    `json:"pen_id"`
	Description   string    `json:"description"`
	DaysFromNow   int       `json:"days_from_now"`
	EffectiveDate time.Time `json:"effective_date"`
}

// DefaultChangeHorizonDays bounds the upcoming-change listing when callers
// pass no horizon.
const DefaultChangeHorizonDays = 5

// FilterUpcomingChanges keeps entries landing within horizonDays. The changes
// themselves originate externally; this is a pure filter.
func FilterUpcomingChanges(changes []UpcomingChange, horizonDays int) []UpcomingChange {
	if horizonDays <= 0 {
		horizonDays = DefaultChangeHorizonDays
	}
	out := make([]UpcomingChange, 0, len(changes))
	for _, c := range changes {
		if c.DaysFromNow >= 0 && c.DaysFromNow <= horizonDays {
			out = append(out, c)
		}
	}
	return out
}
