package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	memory "feedlot/internal/infra/persistence/memory"
	"feedlot/pkg/domain"
)

func seedPen(t *testing.T, store *memory.Store, pen domain.Pen) domain.Pen {
	t.Helper()
	var created domain.Pen
	_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreatePen(pen)
		return err
	})
	if err != nil {
		t.Fatalf("seed pen: %v", err)
	}
	return created
}

func TestTransactionRollbackOnError(t *testing.T) {
	store := memory.NewStore(nil)
	sentinel := errors.New("boom")

	_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		if _, err := tx.CreatePen(domain.Pen{Name: "A", Capacity: 10, OperatorID: "op"}); err != nil {
			return err
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel error, got %v", err)
	}
	if pens := store.ListPens(); len(pens) != 0 {
		t.Fatalf("failed transaction must not commit, found %d pens", len(pens))
	}
}

type blockAllRule struct{}

func (blockAllRule) Name() string { return "block_all" }

func (blockAllRule) Evaluate(_ context.Context, _ domain.RuleView, changes []domain.Change) (domain.Result, error) {
	if len(changes) == 0 {
		return domain.Result{}, nil
	}
	return domain.Result{Violations: []domain.Violation{{
		Rule:     "block_all",
		Severity: domain.SeverityBlock,
		Message:  "no mutations allowed",
	}}}, nil
}

func TestBlockingViolationAbortsCommit(t *testing.T) {
	engine := domain.NewRulesEngine()
	engine.Register(blockAllRule{})
	store := memory.NewStore(engine)

	res, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.CreatePen(domain.Pen{Name: "A", Capacity: 10, OperatorID: "op"})
		return err
	})
	var ruleErr domain.RuleViolationError
	if !errors.As(err, &ruleErr) {
		t.Fatalf("expected rule violation error, got %v", err)
	}
	if !res.HasBlocking() {
		t.Fatalf("expected blocking result")
	}
	if pens := store.ListPens(); len(pens) != 0 {
		t.Fatalf("blocked transaction must not commit, found %d pens", len(pens))
	}
}

func TestUpdatePenMutator(t *testing.T) {
	now := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	store := memory.NewStore(nil, memory.WithNowFunc(func() time.Time { return now }))
	pen := seedPen(t, store, domain.Pen{Name: "A", Capacity: 30, CurrentHead: 10, OperatorID: "op"})

	if pen.ID == "" {
		t.Fatalf("create must assign an ID")
	}
	if !pen.CreatedAt.Equal(now) {
		t.Fatalf("created at %v, want %v", pen.CreatedAt, now)
	}

	_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		updated, err := tx.UpdatePen(pen.ID, func(p *domain.Pen) error {
			p.CurrentHead = 12
			p.ID = "hijack" // must be ignored
			return nil
		})
		if err != nil {
			return err
		}
		if updated.ID != pen.ID {
			t.Fatalf("mutator must not change ID, got %q", updated.ID)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	got, ok := store.GetPen(pen.ID)
	if !ok || got.CurrentHead != 12 {
		t.Fatalf("committed head = %d, want 12", got.CurrentHead)
	}
}

func TestUpdateMissingPen(t *testing.T) {
	store := memory.NewStore(nil)
	_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.UpdatePen("missing", func(p *domain.Pen) error { return nil })
		return err
	})
	if err == nil {
		t.Fatalf("expected error updating missing pen")
	}
}

func TestAppendRejectsExistingID(t *testing.T) {
	store := memory.NewStore(nil)
	ctx := context.Background()

	var loss domain.DeathLoss
	_, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		var err error
		loss, err = tx.AppendDeathLoss(domain.DeathLoss{PenID: "p", Count: 1, OperatorID: "op"})
		return err
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	_, err = store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.AppendDeathLoss(loss)
		return err
	})
	if err == nil {
		t.Fatalf("expected error re-appending event with same ID")
	}
}

func TestReadersReturnClones(t *testing.T) {
	store := memory.NewStore(nil)
	pen := seedPen(t, store, domain.Pen{
		Name: "A", Capacity: 30, CurrentHead: 10, OperatorID: "op",
		WeightHistory: []domain.WeightRecord{{Weight: 600}},
	})

	got, _ := store.GetPen(pen.ID)
	got.WeightHistory[0].Weight = 999

	again, _ := store.GetPen(pen.ID)
	if again.WeightHistory[0].Weight != 600 {
		t.Fatalf("reader leaked shared state: weight %v", again.WeightHistory[0].Weight)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	store := memory.NewStore(nil)
	pen := seedPen(t, store, domain.Pen{Name: "A", Capacity: 30, CurrentHead: 10, OperatorID: "op"})
	_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.AppendPartialSale(domain.PartialSale{PenID: pen.ID, Count: 2, TotalRevenue: 4000, OperatorID: "op"})
		return err
	})
	if err != nil {
		t.Fatalf("append sale: %v", err)
	}

	snapshot := store.ExportState()
	restored := memory.NewStore(nil)
	restored.ImportState(snapshot)

	if got, ok := restored.GetPen(pen.ID); !ok || got.Name != "A" {
		t.Fatalf("restored pen missing or wrong: %+v", got)
	}
	if sales := restored.ListPartialSales(); len(sales) != 1 || sales[0].TotalRevenue != 4000 {
		t.Fatalf("restored sales wrong: %+v", sales)
	}
}

type fixedIDs struct{ next string }

func (g *fixedIDs) NewID() string { return g.next }

func TestInjectedIDGenerator(t *testing.T) {
	gen := &fixedIDs{next: "id-001"}
	store := memory.NewStore(nil, memory.WithIDGenerator(gen))
	pen := seedPen(t, store, domain.Pen{Name: "A", Capacity: 5, OperatorID: "op"})
	if pen.ID != "id-001" {
		t.Fatalf("pen ID %q, want injected id-001", pen.ID)
	}
}

func TestViewSeesCommittedState(t *testing.T) {
	store := memory.NewStore(nil)
	pen := seedPen(t, store, domain.Pen{Name: "A", Capacity: 5, OperatorID: "op"})

	err := store.View(context.Background(), func(view domain.TransactionView) error {
		if _, ok := view.FindPen(pen.ID); !ok {
			t.Fatalf("view missing committed pen")
		}
		if n := len(view.ListPens()); n != 1 {
			t.Fatalf("view pen count %d, want 1", n)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
}
