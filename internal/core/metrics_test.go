package core_test

import (
	"testing"
	"time"

	"feedlot/internal/core"
	"feedlot/pkg/domain"
)

func TestVarianceRatio(t *testing.T) {
	cases := []struct {
		name            string
		planned, actual float64
		want            float64
	}{
		{"under fed", 100, 90, -0.10},
		{"over fed", 100, 115, 0.15},
		{"exact", 250, 250, 0},
		{"zero planned", 0, 40, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := core.VarianceRatio(tc.planned, tc.actual)
			if diff := got - tc.want; diff > 1e-9 || diff < -1e-9 {
				t.Fatalf("VarianceRatio(%v, %v) = %v, want %v", tc.planned, tc.actual, got, tc.want)
			}
		})
	}
}

func TestTotalRevenue(t *testing.T) {
	if got := core.TotalRevenue(1200, 180, 5); got != 10800 {
		t.Fatalf("partial sale revenue = %v, want 10800", got)
	}
	if got := core.TotalRevenue(950, 175, 4); got != 6650 {
		t.Fatalf("full sale revenue = %v, want 6650", got)
	}
	if got := core.TotalRevenue(1300, 180, 16); got != 37440 {
		t.Fatalf("revenue = %v, want 37440", got)
	}
}

func TestAverageDailyGain(t *testing.T) {
	if got := core.AverageDailyGain(650, 1350, 200); got != 3.5 {
		t.Fatalf("ADG = %v, want 3.5", got)
	}
	if got := core.AverageDailyGain(650, 1350, 0); got != 0 {
		t.Fatalf("ADG with zero days = %v, want 0", got)
	}
	// rounding to two decimals
	if got := core.AverageDailyGain(600, 1000, 300); got != 1.33 {
		t.Fatalf("ADG = %v, want 1.33", got)
	}
}

func TestObservedDailyGain(t *testing.T) {
	asOf := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	pen := domain.Pen{
		StartingWeight: 600,
		CurrentWeight:  950,
		WeightHistory: []domain.WeightRecord{
			{Date: asOf.AddDate(0, 0, -100), Weight: 600},
			{Date: asOf.AddDate(0, 0, -10), Weight: 950},
		},
	}
	if got := core.ObservedDailyGain(pen, asOf); got != 3.5 {
		t.Fatalf("observed gain = %v, want 3.5", got)
	}

	if got := core.ObservedDailyGain(domain.Pen{}, asOf); got != 0 {
		t.Fatalf("observed gain without history = %v, want 0", got)
	}

	// a history younger than a day yields no rate
	pen.WeightHistory[0].Date = asOf.Add(-2 * time.Hour)
	pen.WeightHistory = pen.WeightHistory[:1]
	if got := core.ObservedDailyGain(pen, asOf); got != 0 {
		t.Fatalf("observed gain for fresh pen = %v, want 0", got)
	}
}

func TestDaysOnFeed(t *testing.T) {
	saleDate := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	plans := []domain.FeedingPlan{
		{StartDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		{StartDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
	}
	if got := core.DaysOnFeed(plans, saleDate); got != 151 {
		t.Fatalf("days on feed = %d, want 151", got)
	}

	if got := core.DaysOnFeed(nil, saleDate); got != 180 {
		t.Fatalf("fallback days on feed = %d, want 180", got)
	}
	if got := core.DaysOnFeed([]domain.FeedingPlan{{}}, saleDate); got != 180 {
		t.Fatalf("zero start date should fall back to 180, got %d", got)
	}
}

func TestProjectWeightsChainsWindows(t *testing.T) {
	now := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	pen := domain.Pen{CurrentWeight: 800}
	plan := domain.FeedingPlan{Schedules: []domain.FeedingSchedule{{ID: "s1"}, {ID: "s2"}}}

	windows := core.ProjectWeights(pen, plan, 3.5, now)
	if len(windows) != 2 {
		t.Fatalf("expected 2 windows, got %d", len(windows))
	}
	if windows[0].StartWeight != 800 || windows[0].EndWeight != 905 {
		t.Fatalf("first window %v-%v, want 800-905", windows[0].StartWeight, windows[0].EndWeight)
	}
	if windows[1].StartWeight != 905 || windows[1].EndWeight != 1010 {
		t.Fatalf("second window %v-%v, want 905-1010", windows[1].StartWeight, windows[1].EndWeight)
	}
	if !windows[1].StartDate.Equal(now.AddDate(0, 0, 30)) {
		t.Fatalf("second window start %v, want %v", windows[1].StartDate, now.AddDate(0, 0, 30))
	}
}

func TestComputeDashboardStats(t *testing.T) {
	pens := []domain.Pen{{CurrentHead: 40}, {CurrentHead: 25}, {CurrentHead: 0}}
	plans := []domain.FeedingPlan{
		{Status: domain.PlanStatusActive},
		{Status: domain.PlanStatusCompleted},
		{Status: domain.PlanStatusActive},
	}
	stats := core.ComputeDashboardStats(pens, plans)
	if stats.TotalPens != 3 {
		t.Fatalf("total pens = %d, want 3", stats.TotalPens)
	}
	if stats.TotalCattle != 65 {
		t.Fatalf("total cattle = %d, want 65", stats.TotalCattle)
	}
	if stats.ActiveSchedules != 2 {
		t.Fatalf("active schedules = %d, want 2", stats.ActiveSchedules)
	}
}

func TestFilterUpcomingChanges(t *testing.T) {
	changes := []core.UpcomingChange{
		{PenID: "a", DaysFromNow: 1},
		{PenID: "b", DaysFromNow: 5},
		{PenID: "c", DaysFromNow: 6},
		{PenID: "d", DaysFromNow: -1},
	}
	got := core.FilterUpcomingChanges(changes, 0)
	if len(got) != 2 {
		t.Fatalf("expected 2 changes within default horizon, got %d", len(got))
	}
	if got[0].PenID != "a" || got[1].PenID != "b" {
		t.Fatalf("unexpected filtered set: %+v", got)
	}
}
