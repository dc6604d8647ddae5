// Package memory implements the transactional in-memory store backing the
// feedlot ledger. Durable backends wrap this store and persist its snapshots.
package memory

import (
	"context"
	"sync"
	"time"

	"feedlot/pkg/domain"

	"github.com/google/uuid"
)

type (
	Pen             = domain.Pen
	FeedingPlan     = domain.FeedingPlan
	FeedingRecord   = domain.FeedingRecord
	DeathLoss       = domain.DeathLoss
	TreatmentRecord = domain.TreatmentRecord
	PartialSale     = domain.PartialSale
	CattleSale      = domain.CattleSale
	Nutritionist    = domain.Nutritionist
	Change          = domain.Change
	Result          = domain.Result
	RulesEngine     = domain.RulesEngine
	Transaction     = domain.Transaction
	TransactionView = domain.TransactionView
)

type memoryState struct {
	pens          map[string]Pen
	plans         map[string]FeedingPlan
	feedings      map[string]FeedingRecord
	deathLosses   map[string]DeathLoss
	treatments    map[string]TreatmentRecord
	partialSales  map[string]PartialSale
	cattleSales   map[string]CattleSale
	nutritionists map[string]Nutritionist
}

// Snapshot captures a point-in-time clone of the store state.
type Snapshot struct {
	Pens          []Pen             `json:"pens"`
	Plans         []FeedingPlan     `json:"plans"`
	Feedings      []FeedingRecord   `json:"feedings"`
	DeathLosses   []DeathLoss       `json:"death_losses"`
	Treatments    []TreatmentRecord `json:"treatments"`
	PartialSales  []PartialSale     `json:"partial_sales"`
	CattleSales   []CattleSale      `json:"cattle_sales"`
	Nutritionists []Nutritionist    `json:"nutritionists"`
}

func newMemoryState() memoryState {
	return memoryState{
		pens:          make(map[string]Pen),
		plans:         make(map[string]FeedingPlan),
		feedings:      make(map[string]FeedingRecord),
		deathLosses:   make(map[string]DeathLoss),
		treatments:    make(map[string]TreatmentRecord),
		partialSales:  make(map[string]PartialSale),
		cattleSales:   make(map[string]CattleSale),
		nutritionists: make(map[string]Nutritionist),
	}
}

func snapshotFromMemoryState(state memoryState) Snapshot {
	snap := Snapshot{}
	for _, p := range state.pens {
		snap.Pens = append(snap.Pens, clonePen(p))
	}
	for _, p := range state.plans {
		snap.Plans = append(snap.Plans, clonePlan(p))
	}
	for _, f := range state.feedings {
		snap.Feedings = append(snap.Feedings, cloneFeeding(f))
	}
	for _, d := range state.deathLosses {
		snap.DeathLosses = append(snap.DeathLosses, cloneDeathLoss(d))
	}
	for _, t := range state.treatments {
		snap.Treatments = append(snap.Treatments, cloneTreatment(t))
	}
	for _, ps := range state.partialSales {
		snap.PartialSales = append(snap.PartialSales, clonePartialSale(ps))
	}
	for _, cs := range state.cattleSales {
		snap.CattleSales = append(snap.CattleSales, cs)
	}
	for _, n := range state.nutritionists {
		snap.Nutritionists = append(snap.Nutritionists, n)
	}
	return snap
}

func memoryStateFromSnapshot(s Snapshot) memoryState {
	state := newMemoryState()
	for _, p := range s.Pens {
		state.pens[p.ID] = clonePen(p)
	}
	for _, p := range s.Plans {
		state.plans[p.ID] = clonePlan(p)
	}
	for _, f := range s.Feedings {
		state.feedings[f.ID] = cloneFeeding(f)
	}
	for _, d := range s.DeathLosses {
		state.deathLosses[d.ID] = cloneDeathLoss(d)
	}
	for _, t := range s.Treatments {
		state.treatments[t.ID] = cloneTreatment(t)
	}
	for _, ps := range s.PartialSales {
		state.partialSales[ps.ID] = clonePartialSale(ps)
	}
	for _, cs := range s.CattleSales {
		state.cattleSales[cs.ID] = cs
	}
	for _, n := range s.Nutritionists {
		state.nutritionists[n.ID] = n
	}
	return state
}

func (s memoryState) clone() memoryState {
	cloned := newMemoryState()
	for k, v := range s.pens {
		cloned.pens[k] = clonePen(v)
	}
	for k, v := range s.plans {
		cloned.plans[k] = clonePlan(v)
	}
	for k, v := range s.feedings {
		cloned.feedings[k] = cloneFeeding(v)
	}
	for k, v := range s.deathLosses {
		cloned.deathLosses[k] = cloneDeathLoss(v)
	}
	for k, v := range s.treatments {
		cloned.treatments[k] = cloneTreatment(v)
	}
	for k, v := range s.partialSales {
		cloned.partialSales[k] = clonePartialSale(v)
	}
	for k, v := range s.cattleSales {
		cloned.cattleSales[k] = v
	}
	for k, v := range s.nutritionists {
		cloned.nutritionists[k] = v
	}
	return cloned
}

func clonePen(p Pen) Pen {
	cp := p
	cp.WeightHistory = append([]domain.WeightRecord(nil), p.WeightHistory...)
	if p.NutritionistID != nil {
		id := *p.NutritionistID
		cp.NutritionistID = &id
	}
	if p.LastFedAt != nil {
		at := *p.LastFedAt
		cp.LastFedAt = &at
	}
	return cp
}

func clonePlan(p FeedingPlan) FeedingPlan {
	cp := p
	cp.Schedules = make([]domain.FeedingSchedule, len(p.Schedules))
	for i, sched := range p.Schedules {
		cs := sched
		cs.Ingredients = append([]domain.Ingredient(nil), sched.Ingredients...)
		cp.Schedules[i] = cs
	}
	return cp
}

func cloneFeeding(f FeedingRecord) FeedingRecord {
	cp := f
	cp.Ingredients = append([]domain.FedIngredient(nil), f.Ingredients...)
	return cp
}

func cloneDeathLoss(d DeathLoss) DeathLoss {
	cp := d
	cp.TagNumbers = append([]string(nil), d.TagNumbers...)
	return cp
}

func cloneTreatment(t TreatmentRecord) TreatmentRecord {
	cp := t
	cp.TagNumbers = append([]string(nil), t.TagNumbers...)
	return cp
}

func clonePartialSale(ps PartialSale) PartialSale {
	cp := ps
	cp.TagNumbers = append([]string(nil), ps.TagNumbers...)
	return cp
}

// Store provides an in-memory transactional store for the feedlot domain.
type Store struct {
	mu     sync.RWMutex
	state  memoryState
	engine *RulesEngine
	nowFn  func() time.Time
	ids    domain.IDGenerator
}

// Option customises store construction.
type Option func(*Store)

// WithNowFunc overrides the store's time provider (tests).
func WithNowFunc(fn func() time.Time) Option {
	return func(s *Store) {
		if fn != nil {
			s.nowFn = fn
		}
	}
}

// WithIDGenerator overrides the identifier generator.
func WithIDGenerator(gen domain.IDGenerator) Option {
	return func(s *Store) {
		if gen != nil {
			s.ids = gen
		}
	}
}

// UUIDGenerator issues random UUIDv4 identifiers. The default strategy.
type UUIDGenerator struct{}

// NewID returns a fresh UUID string.
func (UUIDGenerator) NewID() string { return uuid.NewString() }

// NewStore constructs an in-memory store backed by the provided rules engine.
func NewStore(engine *RulesEngine, opts ...Option) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	s := &Store{
		state:  newMemoryState(),
		engine: engine,
		nowFn:  func() time.Time { return time.Now().UTC() },
		ids:    UUIDGenerator{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) newID() string {
	return s.ids.NewID()
}

// ExportState clones the current store state for external persistence.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotFromMemoryState(s.state)
}

// ImportState replaces the store state with the provided snapshot.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = memoryStateFromSnapshot(snapshot)
}

// RulesEngine exposes the currently configured engine.
func (s *Store) RulesEngine() *RulesEngine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

// NowFunc returns the time provider used by the in-memory store.
func (s *Store) NowFunc() func() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nowFn
}

// transaction represents a mutation set applied to the store state.
type transaction struct {
	store   *Store
	state   memoryState
	changes []Change
	now     time.Time
}

// transactionView exposes a read-only snapshot of the transactional state to rules.
type transactionView struct {
	state *memoryState
}

func newTransactionView(state *memoryState) TransactionView {
	return transactionView{state: state}
}

// ListPens returns all pens within the transaction snapshot.
func (v transactionView) ListPens() []Pen {
	out := make([]Pen, 0, len(v.state.pens))
	for _, p := range v.state.pens {
		out = append(out, clonePen(p))
	}
	return out
}

// ListFeedingPlans returns all feeding plans.
func (v transactionView) ListFeedingPlans() []FeedingPlan {
	out := make([]FeedingPlan, 0, len(v.state.plans))
	for _, p := range v.state.plans {
		out = append(out, clonePlan(p))
	}
	return out
}

// ListFeedingRecords returns all feeding records in the snapshot.
func (v transactionView) ListFeedingRecords() []FeedingRecord {
	out := make([]FeedingRecord, 0, len(v.state.feedings))
	for _, f := range v.state.feedings {
		out = append(out, cloneFeeding(f))
	}
	return out
}

// ListDeathLosses returns all death-loss records in the snapshot.
func (v transactionView) ListDeathLosses() []DeathLoss {
	out := make([]DeathLoss, 0, len(v.state.deathLosses))
	for _, d := range v.state.deathLosses {
		out = append(out, cloneDeathLoss(d))
	}
	return out
}

// ListTreatments returns all treatment records in the snapshot.
func (v transactionView) ListTreatments() []TreatmentRecord {
	out := make([]TreatmentRecord, 0, len(v.state.treatments))
	for _, t := range v.state.treatments {
		out = append(out, cloneTreatment(t))
	}
	return out
}

// ListPartialSales returns all partial sales in the snapshot.
func (v transactionView) ListPartialSales() []PartialSale {
	out := make([]PartialSale, 0, len(v.state.partialSales))
	for _, ps := range v.state.partialSales {
		out = append(out, clonePartialSale(ps))
	}
	return out
}

// ListCattleSales returns all full sales in the snapshot.
func (v transactionView) ListCattleSales() []CattleSale {
	out := make([]CattleSale, 0, len(v.state.cattleSales))
	for _, cs := range v.state.cattleSales {
		out = append(out, cs)
	}
	return out
}

// ListNutritionists returns all nutritionists in the snapshot.
func (v transactionView) ListNutritionists() []Nutritionist {
	out := make([]Nutritionist, 0, len(v.state.nutritionists))
	for _, n := range v.state.nutritionists {
		out = append(out, n)
	}
	return out
}

// FindPen retrieves a pen by ID from the snapshot.
func (v transactionView) FindPen(id string) (Pen, bool) {
	p, ok := v.state.pens[id]
	if !ok {
		return Pen{}, false
	}
	return clonePen(p), true
}

// FindFeedingPlan retrieves a feeding plan by ID from the snapshot.
func (v transactionView) FindFeedingPlan(id string) (FeedingPlan, bool) {
	p, ok := v.state.plans[id]
	if !ok {
		return FeedingPlan{}, false
	}
	return clonePlan(p), true
}

// FindNutritionist retrieves a nutritionist by ID from the snapshot.
func (v transactionView) FindNutritionist(id string) (Nutritionist, bool) {
	n, ok := v.state.nutritionists[id]
	if !ok {
		return Nutritionist{}, false
	}
	return n, true
}

// RunInTransaction executes fn within a transactional copy of the store state.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx Transaction) error) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{
		store: s,
		state: s.state.clone(),
		now:   s.nowFn(),
	}

	if err := fn(tx); err != nil {
		return Result{}, err
	}

	var result Result
	if s.engine != nil {
		view := newTransactionView(&tx.state)
		res, err := s.engine.Evaluate(ctx, view, tx.changes)
		if err != nil {
			return Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	s.state = tx.state
	return result, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(_ context.Context, fn func(TransactionView) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.state.clone()
	view := newTransactionView(&snapshot)
	return fn(view)
}
