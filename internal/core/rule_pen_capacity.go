package core

import (
	"context"
	"fmt"

	"feedlot/pkg/domain"
)

// NewPenCapacityRule returns the in-transaction rule enforcing head count bounds.
func NewPenCapacityRule() domain.Rule {
	return penCapacityRule{}
}

type penCapacityRule struct{}

func (penCapacityRule) Name() string { return "pen_capacity" }

func (penCapacityRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, pen := range view.ListPens() {
		if pen.CurrentHead < 0 {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "pen_capacity",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("pen %s (%s) has negative head count: %d", pen.Name, pen.ID, pen.CurrentHead),
				Entity:   domain.EntityPen,
				EntityID: pen.ID,
			})
			continue
		}
		if pen.CurrentHead > pen.Capacity {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "pen_capacity",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("pen %s (%s) over capacity: %d/%d head", pen.Name, pen.ID, pen.CurrentHead, pen.Capacity),
				Entity:   domain.EntityPen,
				EntityID: pen.ID,
			})
		}
	}
	return res, nil
}
