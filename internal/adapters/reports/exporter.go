// Package reports archives operator report snapshots to blob storage.
package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"path"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"feedlot/internal/blob"
	"feedlot/internal/core"
)

// ExportFormat selects a report serialization.
type ExportFormat string

const (
	FormatJSON ExportFormat = "json"
	FormatCSV  ExportFormat = "csv"
)

// ExportStatus describes the lifecycle stage of an export request.
type ExportStatus string

const (
	ExportStatusQueued    ExportStatus = "queued"
	ExportStatusRunning   ExportStatus = "running"
	ExportStatusSucceeded ExportStatus = "succeeded"
	ExportStatusFailed    ExportStatus = "failed"
)

// ExportArtifact captures one stored report document.
type ExportArtifact struct {
	Key         string       `json:"key"`
	Format      ExportFormat `json:"format"`
	ContentType string       `json:"content_type"`
	SizeBytes   int64        `json:"size_bytes"`
	URL         string       `json:"url,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

// ExportRecord tracks an export request and resulting artifacts.
type ExportRecord struct {
	ID          string           `json:"id"`
	OperatorID  string           `json:"operator_id"`
	Formats     []ExportFormat   `json:"formats"`
	Status      ExportStatus     `json:"status"`
	Error       string           `json:"error,omitempty"`
	Artifacts   []ExportArtifact `json:"artifacts,omitempty"`
	RequestedBy string           `json:"requested_by"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
}

// ExportInput represents an enqueue request for the worker.
type ExportInput struct {
	OperatorID  string
	Formats     []ExportFormat
	RequestedBy string
}

// ReportSource produces the report snapshot to archive. The core Reporter
// satisfies it.
type ReportSource interface {
	BuildOperatorReport(operatorID string) core.OperatorReport
}

// AuditLogger records export audit entries.
type AuditLogger interface {
	Record(ctx context.Context, entry AuditEntry)
}

// AuditEntry captures audit trail metadata for report exports.
type AuditEntry struct {
	ID         string       `json:"id"`
	Action     string       `json:"action"`
	Actor      string       `json:"actor"`
	OperatorID string       `json:"operator_id"`
	Status     ExportStatus `json:"status"`
	Note       string       `json:"note,omitempty"`
	OccurredAt time.Time    `json:"occurred_at"`
}

const auditAction = "report_export"

// Worker archives operator reports asynchronously. Artifacts are written
// create-only under reports/<operator>/<export-id>.<ext>.
type Worker struct {
	source ReportSource
	store  blob.Store
	audit  AuditLogger

	queue chan exportTask
	mu    sync.RWMutex
	jobs  map[string]*ExportRecord

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type exportTask struct {
	id    string
	input ExportInput
}

// NewWorker constructs a report export worker.
func NewWorker(source ReportSource, store blob.Store, audit AuditLogger) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		source: source,
		store:  store,
		audit:  audit,
		queue:  make(chan exportTask, 32),
		jobs:   make(map[string]*ExportRecord),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start begins processing export requests.
func (w *Worker) Start() {
	w.wg.Add(1)
	go w.loop()
}

// Stop signals the worker to halt and waits for completion.
func (w *Worker) Stop(ctx context.Context) error {
	w.cancel()
	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Worker) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case task := <-w.queue:
			w.process(task)
		}
	}
}

// EnqueueExport schedules a report export and returns the queued record.
func (w *Worker) EnqueueExport(ctx context.Context, input ExportInput) (ExportRecord, error) {
	if w.source == nil {
		return ExportRecord{}, fmt.Errorf("report source not configured")
	}
	if input.OperatorID == "" {
		return ExportRecord{}, fmt.Errorf("operator id required")
	}

	formats := input.Formats
	if len(formats) == 0 {
		formats = []ExportFormat{FormatJSON}
	}
	uniq := make([]ExportFormat, 0, len(formats))
	seen := make(map[ExportFormat]struct{})
	for _, format := range formats {
		if _, dup := seen[format]; dup {
			continue
		}
		switch format {
		case FormatJSON, FormatCSV:
		default:
			return ExportRecord{}, fmt.Errorf("unsupported export format %s", format)
		}
		uniq = append(uniq, format)
		seen[format] = struct{}{}
	}

	id := uuid.NewString()
	now := time.Now().UTC()
	record := ExportRecord{
		ID:          id,
		OperatorID:  input.OperatorID,
		Formats:     uniq,
		Status:      ExportStatusQueued,
		RequestedBy: input.RequestedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	w.mu.Lock()
	w.jobs[id] = &record
	queued := record.copy()
	w.mu.Unlock()

	w.recordAudit(ctx, input.RequestedBy, input.OperatorID, ExportStatusQueued, "")

	select {
	case w.queue <- exportTask{id: id, input: input}:
	default:
		return ExportRecord{}, fmt.Errorf("export queue full")
	}
	return queued, nil
}

// GetExport returns a snapshot of the export record.
func (w *Worker) GetExport(id string) (ExportRecord, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	record, ok := w.jobs[id]
	if !ok {
		return ExportRecord{}, false
	}
	return record.copy(), true
}

func (w *Worker) process(task exportTask) {
	w.mu.RLock()
	record, ok := w.jobs[task.id]
	var formats []ExportFormat
	if ok {
		formats = append(formats, record.Formats...)
	}
	w.mu.RUnlock()
	if !ok {
		return
	}

	w.updateStatus(task.id, ExportStatusRunning, "")

	report := w.source.BuildOperatorReport(task.input.OperatorID)
	artifacts := make([]ExportArtifact, 0, len(formats))
	for _, format := range formats {
		payload, contentType, err := materialize(format, report)
		if err != nil {
			w.fail(task.id, err.Error())
			return
		}
		artifact := ExportArtifact{
			Key:         path.Join("reports", task.input.OperatorID, task.id+"."+string(format)),
			Format:      format,
			ContentType: contentType,
			SizeBytes:   int64(len(payload)),
			CreatedAt:   time.Now().UTC(),
		}
		if w.store != nil {
			info, err := w.store.Put(w.ctx, artifact.Key, bytes.NewReader(payload), blob.PutOptions{
				ContentType: contentType,
				Metadata:    map[string]string{"operator_id": task.input.OperatorID},
			})
			if err != nil {
				w.fail(task.id, fmt.Sprintf("store artifact failed: %v", err))
				return
			}
			artifact.SizeBytes = info.Size
			artifact.URL = info.URL
		}
		artifacts = append(artifacts, artifact)
	}
	w.complete(task.id, artifacts)
}

func (w *Worker) updateStatus(id string, status ExportStatus, note string) {
	now := time.Now().UTC()
	w.mu.Lock()
	actor, operator := "", ""
	if record, ok := w.jobs[id]; ok {
		record.Status = status
		record.Error = note
		record.UpdatedAt = now
		actor, operator = record.RequestedBy, record.OperatorID
	}
	w.mu.Unlock()
	w.recordAudit(w.ctx, actor, operator, status, note)
}

func (w *Worker) complete(id string, artifacts []ExportArtifact) {
	now := time.Now().UTC()
	w.mu.Lock()
	actor, operator := "", ""
	if record, ok := w.jobs[id]; ok {
		record.Status = ExportStatusSucceeded
		record.Error = ""
		record.Artifacts = artifacts
		record.UpdatedAt = now
		record.CompletedAt = &now
		actor, operator = record.RequestedBy, record.OperatorID
	}
	w.mu.Unlock()
	w.recordAudit(w.ctx, actor, operator, ExportStatusSucceeded, "")
}

func (w *Worker) fail(id, reason string) {
	now := time.Now().UTC()
	w.mu.Lock()
	actor, operator := "", ""
	if record, ok := w.jobs[id]; ok {
		record.Status = ExportStatusFailed
		record.Error = reason
		record.UpdatedAt = now
		record.CompletedAt = &now
		actor, operator = record.RequestedBy, record.OperatorID
	}
	w.mu.Unlock()
	w.recordAudit(w.ctx, actor, operator, ExportStatusFailed, reason)
}

func (w *Worker) recordAudit(ctx context.Context, actor, operator string, status ExportStatus, note string) {
	if w.audit == nil {
		return
	}
	w.audit.Record(ctx, AuditEntry{
		ID:         uuid.NewString(),
		Action:     auditAction,
		Actor:      actor,
		OperatorID: operator,
		Status:     status,
		Note:       note,
		OccurredAt: time.Now().UTC(),
	})
}

func materialize(format ExportFormat, report core.OperatorReport) ([]byte, string, error) {
	switch format {
	case FormatJSON:
		payload, err := json.Marshal(report)
		if err != nil {
			return nil, "", fmt.Errorf("marshal json: %w", err)
		}
		return payload, "application/json", nil
	case FormatCSV:
		payload, err := salesCSV(report)
		if err != nil {
			return nil, "", err
		}
		return payload, "text/csv", nil
	default:
		return nil, "", fmt.Errorf("unsupported export format %s", format)
	}
}

// salesCSV flattens full and partial sales into one table.
func salesCSV(report core.OperatorReport) ([]byte, error) {
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	header := []string{"kind", "pen_id", "sale_date", "head", "final_weight", "price_per_cwt", "revenue"}
	if err := writer.Write(header); err != nil {
		return nil, err
	}
	for _, sale := range report.Sales.FullSales {
		row := []string{
			"full",
			sale.PenID,
			sale.SaleDate.Format(time.RFC3339),
			strconv.Itoa(sale.HeadCount),
			strconv.FormatFloat(sale.FinalWeight, 'f', -1, 64),
			strconv.FormatFloat(sale.PricePerCwt, 'f', -1, 64),
			strconv.FormatFloat(sale.TotalRevenue, 'f', 2, 64),
		}
		if err := writer.Write(row); err != nil {
			return nil, err
		}
	}
	for _, sale := range report.Sales.PartialSales {
		row := []string{
			"partial",
			sale.PenID,
			sale.SaleDate.Format(time.RFC3339),
			strconv.Itoa(sale.Count),
			strconv.FormatFloat(sale.FinalWeight, 'f', -1, 64),
			strconv.FormatFloat(sale.PricePerCwt, 'f', -1, 64),
			strconv.FormatFloat(sale.TotalRevenue, 'f', 2, 64),
		}
		if err := writer.Write(row); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r ExportRecord) copy() ExportRecord {
	dup := r
	dup.Formats = append([]ExportFormat(nil), r.Formats...)
	if len(r.Artifacts) > 0 {
		dup.Artifacts = append([]ExportArtifact(nil), r.Artifacts...)
	}
	return dup
}

// MemoryAuditLog captures audit entries in-memory for assertions.
type MemoryAuditLog struct {
	mu      sync.Mutex
	entries []AuditEntry
}

// Record stores an audit entry.
func (l *MemoryAuditLog) Record(ctx context.Context, entry AuditEntry) {
	l.mu.Lock()
	l.entries = append(l.entries, entry)
	l.mu.Unlock()
}

// Entries returns a defensive copy of recorded audit entries.
func (l *MemoryAuditLog) Entries() []AuditEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]AuditEntry, len(l.entries))
	copy(out, l.entries)
	return out
}
