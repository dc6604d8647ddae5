package postgres_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"feedlot/internal/infra/persistence/postgres"
	"feedlot/pkg/domain"

	_ "modernc.org/sqlite"
)

// openViaSQLite routes the postgres store at a throwaway SQLite database.
// SQLite accepts the $N placeholders and upsert syntax the store emits, so
// the snapshot round trip can be exercised without a running server.
func openViaSQLite(t *testing.T) (restore func(), path string) {
	t.Helper()
	path = filepath.Join(t.TempDir(), "fake-pg.db")
	restore = postgres.OverrideSQLOpen(func(_, _ string) (*sql.DB, error) {
		return sql.Open("sqlite", path)
	})
	return restore, path
}

func TestSnapshotRoundTrip(t *testing.T) {
	restore, _ := openViaSQLite(t)
	defer restore()

	store, err := postgres.NewStore("postgres://ignored", nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}

	var pen domain.Pen
	_, err = store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		var err error
		pen, err = tx.CreatePen(domain.Pen{Name: "East 7", Capacity: 60, CurrentHead: 45, OperatorID: "op-1"})
		return err
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := postgres.NewStore("postgres://ignored", nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = reopened.Close() }()

	got, ok := reopened.GetPen(pen.ID)
	if !ok || got.CurrentHead != 45 {
		t.Fatalf("reloaded pen wrong: %+v ok=%v", got, ok)
	}
}

func TestFailedLoadClosesHandle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake-pg.db")

	seed, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open seed db: %v", err)
	}
	if _, err := seed.Exec(`CREATE TABLE state (bucket TEXT PRIMARY KEY, payload JSONB NOT NULL)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	if _, err := seed.Exec(`INSERT INTO state(bucket,payload) VALUES('pens','not-json')`); err != nil {
		t.Fatalf("seed bad payload: %v", err)
	}
	if err := seed.Close(); err != nil {
		t.Fatalf("close seed db: %v", err)
	}

	var handle *sql.DB
	restore := postgres.OverrideSQLOpen(func(_, _ string) (*sql.DB, error) {
		db, err := sql.Open("sqlite", path)
		handle = db
		return db, err
	})
	defer restore()

	if _, err := postgres.NewStore("postgres://ignored", nil); err == nil {
		t.Fatalf("expected snapshot decode error")
	}
	if handle == nil {
		t.Fatalf("open hook never called")
	}
	if err := handle.Ping(); err == nil {
		t.Fatalf("handle left open after constructor failure")
	}
}

func TestOpenFailurePropagates(t *testing.T) {
	restore := postgres.OverrideSQLOpen(func(_, _ string) (*sql.DB, error) {
		return nil, context.DeadlineExceeded
	})
	defer restore()

	if _, err := postgres.NewStore("postgres://ignored", nil); err == nil {
		t.Fatalf("expected open error")
	}
}
