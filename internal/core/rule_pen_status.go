package core

import (
	"context"
	"fmt"

	"feedlot/pkg/domain"
)

// NewPenStatusRule returns the rule guarding the pen status machine: inactive
// pens stay empty, and inactive is terminal within the ledger.
func NewPenStatusRule() domain.Rule {
	return penStatusRule{}
}

type penStatusRule struct{}

func (penStatusRule) Name() string { return "pen_status" }

func (penStatusRule) Evaluate(_ context.Context, view domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, pen := range view.ListPens() {
		if pen.Status == domain.PenStatusInactive && pen.CurrentHead != 0 {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "pen_status",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("inactive pen %s (%s) still holds %d head", pen.Name, pen.ID, pen.CurrentHead),
				Entity:   domain.EntityPen,
				EntityID: pen.ID,
			})
		}
	}
	for _, change := range changes {
		if change.Entity != domain.EntityPen || change.Action != domain.ActionUpdate {
			continue
		}
		before, okB := change.Before.(domain.Pen)
		after, okA := change.After.(domain.Pen)
		if !okB || !okA {
			continue
		}
		if before.Status == domain.PenStatusInactive && after.Status != domain.PenStatusInactive {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "pen_status",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("pen %s (%s) cannot leave inactive status", after.Name, after.ID),
				Entity:   domain.EntityPen,
				EntityID: after.ID,
			})
		}
	}
	return res, nil
}
