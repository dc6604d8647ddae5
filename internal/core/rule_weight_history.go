package core

import (
	"context"
	"fmt"

	"feedlot/pkg/domain"
)

// NewWeightHistoryRule returns the rule watching weight-history ordering.
// Append order remains authoritative; a record dated before its predecessor
// is surfaced as a warning rather than blocking the commit.
func NewWeightHistoryRule() domain.Rule {
	return weightHistoryRule{}
}

type weightHistoryRule struct{}

func (weightHistoryRule) Name() string { return "weight_history_order" }

func (weightHistoryRule) Evaluate(_ context.Context, _ domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, change := range changes {
		if change.Entity != domain.EntityPen {
			continue
		}
		after, ok := change.After.(domain.Pen)
		if !ok {
			continue
		}
		// Only inspect records appended by this change; older regressions
		// have already been reported once.
		from := 1
		if before, ok := change.Before.(domain.Pen); ok && len(before.WeightHistory) > 1 {
			from = len(before.WeightHistory)
		}
		for i := from; i < len(after.WeightHistory); i++ {
			prev, cur := after.WeightHistory[i-1], after.WeightHistory[i]
			if cur.Date.Before(prev.Date) {
				res.Violations = append(res.Violations, domain.Violation{
					Rule:     "weight_history_order",
					Severity: domain.SeverityWarn,
					Message:  fmt.Sprintf("pen %s (%s) weight record %d dated before its predecessor", after.Name, after.ID, i),
					Entity:   domain.EntityPen,
					EntityID: after.ID,
				})
			}
		}
	}
	return res, nil
}

// DefaultRulesEngine wires the standard ledger rules into a fresh engine.
func DefaultRulesEngine() *domain.RulesEngine {
	engine := domain.NewRulesEngine()
	engine.Register(NewPenCapacityRule())
	engine.Register(NewPenStatusRule())
	engine.Register(NewWeightHistoryRule())
	return engine
}
