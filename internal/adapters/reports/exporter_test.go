package reports

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"feedlot/internal/blob"
	"feedlot/internal/core"
	"feedlot/pkg/domain"
)

type stubSource struct {
	report core.OperatorReport
}

func (s stubSource) BuildOperatorReport(operatorID string) core.OperatorReport {
	report := s.report
	report.OperatorID = operatorID
	return report
}

func sampleReport() core.OperatorReport {
	saleDate := time.Date(2026, time.February, 10, 0, 0, 0, 0, time.UTC)
	return core.OperatorReport{
		GeneratedAt: time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC),
		Stats:       core.DashboardStats{TotalPens: 1, TotalCattle: 16, ActiveSchedules: 1},
		Sales: core.SalesReport{
			FullSales: []domain.CattleSale{{
				Base:         domain.Base{ID: "cs-1"},
				PenID:        "pen-1",
				SaleDate:     saleDate,
				HeadCount:    16,
				FinalWeight:  1300,
				PricePerCwt:  180,
				TotalRevenue: 37440,
			}},
			PartialSales: []domain.PartialSale{{
				Base:         domain.Base{ID: "ps-1"},
				PenID:        "pen-1",
				SaleDate:     saleDate,
				Count:        4,
				FinalWeight:  950,
				PricePerCwt:  175,
				TotalRevenue: 6650,
			}},
			TotalRevenue: 44090,
		},
	}
}

func newTestWorker(t *testing.T) (*Worker, blob.Store, *MemoryAuditLog) {
	t.Helper()
	store := blob.NewMemory()
	audit := &MemoryAuditLog{}
	worker := NewWorker(stubSource{report: sampleReport()}, store, audit)
	worker.Start()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := worker.Stop(ctx); err != nil {
			t.Errorf("stop worker: %v", err)
		}
	})
	return worker, store, audit
}

func waitForExport(t *testing.T, worker *Worker, id string) ExportRecord {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		record, ok := worker.GetExport(id)
		if !ok {
			t.Fatalf("export %s not tracked", id)
		}
		if record.Status == ExportStatusSucceeded || record.Status == ExportStatusFailed {
			return record
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("export %s did not finish", id)
	return ExportRecord{}
}

func TestEnqueueExportWritesArtifacts(t *testing.T) {
	worker, store, audit := newTestWorker(t)

	queued, err := worker.EnqueueExport(context.Background(), ExportInput{
		OperatorID:  "op-1",
		Formats:     []ExportFormat{FormatJSON, FormatCSV},
		RequestedBy: "user-1",
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if queued.Status != ExportStatusQueued {
		t.Fatalf("expected queued status, got %s", queued.Status)
	}

	record := waitForExport(t, worker, queued.ID)
	if record.Status != ExportStatusSucceeded {
		t.Fatalf("export failed: %s", record.Error)
	}
	if record.CompletedAt == nil {
		t.Fatal("expected completion timestamp")
	}
	if len(record.Artifacts) != 2 {
		t.Fatalf("expected 2 artifacts, got %d", len(record.Artifacts))
	}

	jsonKey := "reports/op-1/" + queued.ID + ".json"
	if record.Artifacts[0].Key != jsonKey {
		t.Fatalf("unexpected artifact key: %s", record.Artifacts[0].Key)
	}
	info, body, err := store.Get(context.Background(), jsonKey)
	if err != nil {
		t.Fatalf("fetch json artifact: %v", err)
	}
	defer body.Close()
	if info.ContentType != "application/json" {
		t.Fatalf("unexpected content type: %s", info.ContentType)
	}
	if info.Metadata["operator_id"] != "op-1" {
		t.Fatalf("unexpected metadata: %+v", info.Metadata)
	}
	var report core.OperatorReport
	if err := json.NewDecoder(body).Decode(&report); err != nil {
		t.Fatalf("decode stored report: %v", err)
	}
	if report.OperatorID != "op-1" || report.Sales.TotalRevenue != 44090 {
		t.Fatalf("unexpected stored report: operator %s revenue %v", report.OperatorID, report.Sales.TotalRevenue)
	}

	statuses := make([]ExportStatus, 0, 4)
	for _, entry := range audit.Entries() {
		if entry.Action != "report_export" {
			t.Fatalf("unexpected audit action: %s", entry.Action)
		}
		statuses = append(statuses, entry.Status)
	}
	if len(statuses) < 3 || statuses[0] != ExportStatusQueued || statuses[len(statuses)-1] != ExportStatusSucceeded {
		t.Fatalf("unexpected audit trail: %v", statuses)
	}
}

func TestExportCSVContainsSalesRows(t *testing.T) {
	worker, store, _ := newTestWorker(t)

	queued, err := worker.EnqueueExport(context.Background(), ExportInput{
		OperatorID: "op-1",
		Formats:    []ExportFormat{FormatCSV},
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	record := waitForExport(t, worker, queued.ID)
	if record.Status != ExportStatusSucceeded {
		t.Fatalf("export failed: %s", record.Error)
	}

	_, body, err := store.Get(context.Background(), record.Artifacts[0].Key)
	if err != nil {
		t.Fatalf("fetch csv artifact: %v", err)
	}
	defer body.Close()
	rows, err := csv.NewReader(body).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "kind" || rows[0][6] != "revenue" {
		t.Fatalf("unexpected header: %v", rows[0])
	}
	if rows[1][0] != "full" || rows[1][3] != "16" || rows[1][6] != "37440.00" {
		t.Fatalf("unexpected full-sale row: %v", rows[1])
	}
	if rows[2][0] != "partial" || rows[2][3] != "4" || rows[2][6] != "6650.00" {
		t.Fatalf("unexpected partial-sale row: %v", rows[2])
	}
}

func TestEnqueueExportDefaultsToJSON(t *testing.T) {
	worker, _, _ := newTestWorker(t)
	queued, err := worker.EnqueueExport(context.Background(), ExportInput{OperatorID: "op-1"})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if len(queued.Formats) != 1 || queued.Formats[0] != FormatJSON {
		t.Fatalf("expected json default, got %v", queued.Formats)
	}
	record := waitForExport(t, worker, queued.ID)
	if record.Status != ExportStatusSucceeded {
		t.Fatalf("export failed: %s", record.Error)
	}
}

func TestEnqueueExportDeduplicatesFormats(t *testing.T) {
	worker, _, _ := newTestWorker(t)
	queued, err := worker.EnqueueExport(context.Background(), ExportInput{
		OperatorID: "op-1",
		Formats:    []ExportFormat{FormatJSON, FormatJSON, FormatCSV},
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if len(queued.Formats) != 2 {
		t.Fatalf("expected dedup to 2 formats, got %v", queued.Formats)
	}
}

func TestEnqueueExportRejectsBadInput(t *testing.T) {
	worker, _, _ := newTestWorker(t)
	if _, err := worker.EnqueueExport(context.Background(), ExportInput{}); err == nil {
		t.Fatal("expected error for missing operator")
	}
	_, err := worker.EnqueueExport(context.Background(), ExportInput{
		OperatorID: "op-1",
		Formats:    []ExportFormat{"xlsx"},
	})
	if err == nil || !strings.Contains(err.Error(), "unsupported export format") {
		t.Fatalf("expected unsupported format error, got %v", err)
	}
}

func TestGetExportUnknownID(t *testing.T) {
	worker, _, _ := newTestWorker(t)
	if _, ok := worker.GetExport("missing"); ok {
		t.Fatal("expected miss for unknown export id")
	}
}

func TestExportArtifactsAreCreateOnly(t *testing.T) {
	worker, store, _ := newTestWorker(t)
	queued, err := worker.EnqueueExport(context.Background(), ExportInput{OperatorID: "op-1"})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	record := waitForExport(t, worker, queued.ID)
	key := record.Artifacts[0].Key
	if _, err := store.Put(context.Background(), key, strings.NewReader("x"), blob.PutOptions{}); err == nil {
		t.Fatal("expected overwrite to fail")
	}
	infos, err := store.List(context.Background(), "reports/op-1/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 1 || infos[0].Key != key {
		t.Fatalf("unexpected listing: %+v", infos)
	}
}
