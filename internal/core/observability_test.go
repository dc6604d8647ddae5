package core_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"feedlot/internal/core"
)

func TestExpvarMetricsRecorderAggregates(t *testing.T) {
	rec := core.NewExpvarMetricsRecorder("")
	rec.RecordOperation("create_pen", 20*time.Millisecond, nil)
	rec.RecordOperation("create_pen", 30*time.Millisecond, nil)
	rec.RecordOperation("create_pen", 5*time.Millisecond, errors.New("boom"))
	rec.RecordOperation("record_feeding", 10*time.Millisecond, nil)

	snap := rec.Snapshot()
	if got := snap.DurationsMS["create_pen"]; got != 55 {
		t.Fatalf("expected 55ms total, got %v", got)
	}
	if got := snap.Results["create_pen"]["success"]; got != 2 {
		t.Fatalf("expected 2 successes, got %d", got)
	}
	if got := snap.Results["create_pen"]["error"]; got != 1 {
		t.Fatalf("expected 1 error, got %d", got)
	}
	if got := snap.Results["record_feeding"]["success"]; got != 1 {
		t.Fatalf("expected 1 feeding success, got %d", got)
	}
	if rec.Name() == "" {
		t.Fatal("expected generated expvar name")
	}
}

func TestExpvarMetricsSnapshotIsACopy(t *testing.T) {
	rec := core.NewExpvarMetricsRecorder("")
	rec.RecordOperation("sell_all_cattle", time.Millisecond, nil)

	snap := rec.Snapshot()
	snap.Results["sell_all_cattle"]["success"] = 99
	snap.DurationsMS["sell_all_cattle"] = 99

	fresh := rec.Snapshot()
	if fresh.Results["sell_all_cattle"]["success"] != 1 {
		t.Fatalf("snapshot mutation leaked into recorder: %+v", fresh.Results)
	}
}

func TestPrometheusMetricsRecorderCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := core.NewPrometheusMetricsRecorder(reg)
	rec.RecordOperation("create_pen", 15*time.Millisecond, nil)
	rec.RecordOperation("create_pen", 5*time.Millisecond, errors.New("boom"))

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	counts := map[string]float64{}
	for _, fam := range families {
		if fam.GetName() != "feedlot_ledger_operation_results_total" {
			continue
		}
		for _, m := range fam.GetMetric() {
			var status string
			for _, label := range m.GetLabel() {
				if label.GetName() == "status" {
					status = label.GetValue()
				}
			}
			counts[status] = m.GetCounter().GetValue()
		}
	}
	if counts["success"] != 1 || counts["error"] != 1 {
		t.Fatalf("unexpected counter values: %+v", counts)
	}
}

func TestJSONTracerRecordsSpans(t *testing.T) {
	var buf bytes.Buffer
	tracer := core.NewJSONTracer(&buf)

	_, span := tracer.Start(context.Background(), "record_death_loss")
	span.End(nil)
	_, span = tracer.Start(context.Background(), "sell_all_cattle")
	span.End(errors.New("pen is empty"))

	entries := tracer.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Operation != "record_death_loss" || entries[0].Status != "success" {
		t.Fatalf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].Status != "error" || entries[1].Error != "pen is empty" {
		t.Fatalf("unexpected second entry: %+v", entries[1])
	}

	dec := json.NewDecoder(&buf)
	var lines []core.JSONTraceEntry
	for dec.More() {
		var entry core.JSONTraceEntry
		if err := dec.Decode(&entry); err != nil {
			t.Fatalf("decode trace line: %v", err)
		}
		lines = append(lines, entry)
	}
	if len(lines) != 2 || lines[1].Operation != "sell_all_cattle" {
		t.Fatalf("unexpected encoded lines: %+v", lines)
	}
}

func TestJSONTracerNilWriter(t *testing.T) {
	tracer := core.NewJSONTracer(nil)
	_, span := tracer.Start(context.Background(), "register_feeding_plan")
	span.End(nil)
	if len(tracer.Entries()) != 1 {
		t.Fatal("expected span retained without a writer")
	}
}
