package core

import (
	"context"
	"time"

	"feedlot/pkg/domain"

	"go.uber.org/zap"
)

// NotificationSender delivers nutritionist invitation notices. It is an
// external collaborator; the ledger tolerates its absence and its failures.
type NotificationSender interface {
	SendInvitation(ctx context.Context, n domain.Nutritionist) error
}

// Service exposes the transactional ledger operations for the feedlot domain.
// Every write validates before mutating and commits the event append together
// with its pen mutation as one atomic unit.
type Service struct {
	store   domain.PersistentStore
	log     *zap.Logger
	metrics MetricsRecorder
	tracer  Tracer
	notify  NotificationSender
	nowFn   func() time.Time
}

// ServiceOption customises service construction.
type ServiceOption func(*Service)

// WithLogger attaches a structured logger to the service.
func WithLogger(log *zap.Logger) ServiceOption {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithMetrics attaches an operation metrics recorder.
func WithMetrics(rec MetricsRecorder) ServiceOption {
	return func(s *Service) {
		s.metrics = rec
	}
}

// WithTracer attaches an operation tracer.
func WithTracer(tr Tracer) ServiceOption {
	return func(s *Service) {
		s.tracer = tr
	}
}

// WithNotificationSender attaches the invitation delivery collaborator.
func WithNotificationSender(n NotificationSender) ServiceOption {
	return func(s *Service) {
		s.notify = n
	}
}

// WithNow overrides the service clock (tests).
func WithNow(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.nowFn = fn
		}
	}
}

// NewService constructs a service backed by the supplied store.
func NewService(store domain.PersistentStore, opts ...ServiceOption) *Service {
	s := &Service{
		store: store,
		log:   zap.NewNop(),
		nowFn: func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the underlying storage implementation.
func (s *Service) Store() domain.PersistentStore {
	return s.store
}

func (s *Service) now() time.Time {
	return s.nowFn()
}

// run wraps a transaction with tracing, metrics, and warning logging.
func (s *Service) run(ctx context.Context, operation string, fn func(tx domain.Transaction) error) (Result, error) {
	var span TraceSpan
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operation)
	}
	start := time.Now()
	res, err := s.store.RunInTransaction(ctx, fn)
	if s.metrics != nil {
		s.metrics.RecordOperation(operation, time.Since(start), err)
	}
	if span != nil {
		span.End(err)
	}
	for _, w := range res.Warnings() {
		s.log.Warn("rule warning",
			zap.String("operation", operation),
			zap.String("rule", w.Rule),
			zap.String("entity_id", w.EntityID),
			zap.String("message", w.Message))
	}
	if err != nil {
		s.log.Debug("operation failed", zap.String("operation", operation), zap.Error(err))
		return res, err
	}
	s.log.Debug("operation committed", zap.String("operation", operation))
	return res, nil
}

// PenSpec carries the inputs required to create a pen.
type PenSpec struct {
	Name           string
	Capacity       int
	CurrentHead    int
	Category       CattleCategory
	Crossbred      bool
	FeedType       string
	StartingWeight float64
	MarketWeight   float64
	OperatorID     string
	NutritionistID *string
}

func (spec PenSpec) validate() error {
	switch {
	case spec.Name == "":
		return domain.ValidationError{Field: "name", Reason: "required"}
	case spec.OperatorID == "":
		return domain.ValidationError{Field: "operator_id", Reason: "required"}
	case spec.Capacity <= 0:
		return domain.ValidationError{Field: "capacity", Reason: "must be positive"}
	case spec.CurrentHead < 0:
		return domain.ValidationError{Field: "current_head", Reason: "cannot be negative"}
	case spec.CurrentHead > spec.Capacity:
		return domain.ValidationError{Field: "current_head", Reason: "exceeds capacity"}
	case spec.StartingWeight <= 0:
		return domain.ValidationError{Field: "starting_weight", Reason: "must be positive"}
	case spec.MarketWeight <= spec.StartingWeight:
		return domain.ValidationError{Field: "market_weight", Reason: "must exceed starting weight"}
	}
	switch spec.Category {
	case CategorySteers, CategoryHeifers, CategoryMixed:
	default:
		return domain.ValidationError{Field: "category", Reason: "unknown cattle category"}
	}
	return nil
}

// CreatePen registers a new active pen seeded with one weight-history entry.
func (s *Service) CreatePen(ctx context.Context, spec PenSpec) (Pen, Result, error) {
	if err := spec.validate(); err != nil {
		return Pen{}, Result{}, err
	}
	now := s.now()
	var created Pen
	res, err := s.run(ctx, "create_pen", func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreatePen(Pen{
			Name:           spec.Name,
			Capacity:       spec.Capacity,
			CurrentHead:    spec.CurrentHead,
			Status:         PenStatusActive,
			Category:       spec.Category,
			Crossbred:      spec.Crossbred,
			FeedType:       spec.FeedType,
			StartingWeight: spec.StartingWeight,
			CurrentWeight:  spec.StartingWeight,
			MarketWeight:   spec.MarketWeight,
			OperatorID:     spec.OperatorID,
			NutritionistID: spec.NutritionistID,
			WeightHistory: []WeightRecord{{
				Date:       now,
				Weight:     spec.StartingWeight,
				RecordedBy: spec.OperatorID,
			}},
		})
		return err
	})
	return created, res, err
}

// findOwnedPen resolves a pen scoped to the calling operator. An operator
// mismatch reports not-found rather than leaking the record's existence.
func findOwnedPen(tx domain.Transaction, penID, operator string) (Pen, error) {
	pen, ok := tx.FindPen(penID)
	if !ok || pen.OperatorID != operator {
		return Pen{}, domain.NotFoundError{Entity: EntityPen, ID: penID}
	}
	return pen, nil
}

// UpdateWeight appends a weight-history record and advances the pen's current
// weight. The cached average daily gain is not recomputed here; it is derived
// on demand.
func (s *Service) UpdateWeight(ctx context.Context, penID string, newWeight float64, operator string) (Pen, Result, error) {
	now := s.now()
	var updated Pen
	res, err := s.run(ctx, "update_weight", func(tx domain.Transaction) error {
		pen, err := findOwnedPen(tx, penID, operator)
		if err != nil {
			return err
		}
		if newWeight <= pen.StartingWeight {
			return domain.InvariantViolation{
				Entity: EntityPen,
				ID:     penID,
				Reason: "new weight must exceed starting weight",
			}
		}
		updated, err = tx.UpdatePen(penID, func(p *Pen) error {
			p.CurrentWeight = newWeight
			p.WeightHistory = append(p.WeightHistory, WeightRecord{
				Date:       now,
				Weight:     newWeight,
				RecordedBy: operator,
			})
			return nil
		})
		return err
	})
	return updated, res, err
}

const (
	causeDeath       = "death"
	causePartialSale = "partial sale"
	causeFullSale    = "full sale"
)

// applyHeadcountDelta adjusts a pen's head count inside the transaction that
// appended the triggering event, keeping the pair atomic. A full-sale cause
// forces the pen empty and inactive regardless of delta.
func applyHeadcountDelta(tx domain.Transaction, penID string, delta int, cause string) (Pen, error) {
	return tx.UpdatePen(penID, func(p *Pen) error {
		if cause == causeFullSale {
			p.CurrentHead = 0
			p.Status = PenStatusInactive
			return nil
		}
		next := p.CurrentHead + delta
		if next < 0 {
			return domain.InvariantViolation{
				Entity: EntityPen,
				ID:     penID,
				Reason: "head count cannot go negative",
			}
		}
		p.CurrentHead = next
		return nil
	})
}

// ActualIngredient reports the amount actually fed for one named ingredient.
type ActualIngredient struct {
	Name   string
	Amount float64
}

// FeedingInput carries a feeding submission against a planned schedule.
type FeedingInput struct {
	PenID      string
	ScheduleID string
	Actuals    []ActualIngredient
	OperatorID string
}

// RecordFeeding appends a feeding event, copying planned amounts from the
// referenced schedule. Actual amounts are accepted as supplied; validating
// them is a caller-side form concern. The pen's weight is untouched; only its
// last-fed timestamp advances.
func (s *Service) RecordFeeding(ctx context.Context, in FeedingInput) (FeedingRecord, Result, error) {
	now := s.now()
	var created FeedingRecord
	res, err := s.run(ctx, "record_feeding", func(tx domain.Transaction) error {
		pen, err := findOwnedPen(tx, in.PenID, in.OperatorID)
		if err != nil {
			return err
		}
		schedule, ok := findSchedule(tx, pen.ID, in.ScheduleID)
		if !ok {
			return domain.NotFoundError{Entity: EntityFeedingSchedule, ID: in.ScheduleID}
		}
		actuals := make(map[string]float64, len(in.Actuals))
		for _, a := range in.Actuals {
			actuals[a.Name] = a.Amount
		}
		fed := make([]FedIngredient, 0, len(schedule.Ingredients))
		for _, ing := range schedule.Ingredients {
			fed = append(fed, FedIngredient{
				Name:          ing.Name,
				Category:      ing.Category,
				PlannedAmount: ing.Amount,
				ActualAmount:  actuals[ing.Name],
				Unit:          ing.Unit,
			})
		}
		created, err = tx.AppendFeedingRecord(FeedingRecord{
			OperatorID:   in.OperatorID,
			PenID:        pen.ID,
			ScheduleID:   schedule.ID,
			PlannedTotal: schedule.TotalAmount,
			Ingredients:  fed,
			FedAt:        now,
		})
		if err != nil {
			return err
		}
		_, err = tx.UpdatePen(pen.ID, func(p *Pen) error {
			at := now
			p.LastFedAt = &at
			return nil
		})
		return err
	})
	return created, res, err
}

// findSchedule locates a schedule belonging to one of the pen's plans.
func findSchedule(tx domain.Transaction, penID, scheduleID string) (FeedingSchedule, bool) {
	for _, plan := range tx.Snapshot().ListFeedingPlans() {
		if plan.PenID != penID {
			continue
		}
		for _, sched := range plan.Schedules {
			if sched.ID == scheduleID {
				return sched, true
			}
		}
	}
	return FeedingSchedule{}, false
}

// DeathLossInput carries a death-loss submission.
type DeathLossInput struct {
	PenID           string
	Count           int
	Reason          string
	EstimatedWeight float64
	EventDate       time.Time
	TagNumbers      []string
	Notes           string
	OperatorID      string
}

// RecordDeathLoss appends a death-loss event and decrements the pen's head
// count in the same transaction.
func (s *Service) RecordDeathLoss(ctx context.Context, in DeathLossInput) (DeathLoss, Result, error) {
	now := s.now()
	var created DeathLoss
	res, err := s.run(ctx, "record_death_loss", func(tx domain.Transaction) error {
		pen, err := findOwnedPen(tx, in.PenID, in.OperatorID)
		if err != nil {
			return err
		}
		if in.Count < 1 {
			return domain.ValidationError{Field: "count", Reason: "must be at least 1"}
		}
		if in.Count > pen.CurrentHead {
			return domain.ValidationError{Field: "count", Reason: "exceeds current head count; reconcile the pen before recording"}
		}
		eventDate := in.EventDate
		if eventDate.IsZero() {
			eventDate = now
		}
		created, err = tx.AppendDeathLoss(DeathLoss{
			OperatorID:      in.OperatorID,
			PenID:           pen.ID,
			EventDate:       eventDate,
			Count:           in.Count,
			Reason:          in.Reason,
			EstimatedWeight: in.EstimatedWeight,
			TagNumbers:      in.TagNumbers,
			Notes:           in.Notes,
		})
		if err != nil {
			return err
		}
		_, err = applyHeadcountDelta(tx, pen.ID, -in.Count, causeDeath)
		return err
	})
	return created, res, err
}

// TreatmentInput carries a treatment submission.
type TreatmentInput struct {
	PenID         string
	TreatmentType string
	Product       string
	Dosage        string
	Count         int
	TreatedBy     string
	EventDate     time.Time
	TagNumbers    []string
	Notes         string
	OperatorID    string
}

// RecordTreatment appends a treatment event. Head count is unaffected.
func (s *Service) RecordTreatment(ctx context.Context, in TreatmentInput) (TreatmentRecord, Result, error) {
	now := s.now()
	var created TreatmentRecord
	res, err := s.run(ctx, "record_treatment", func(tx domain.Transaction) error {
		pen, err := findOwnedPen(tx, in.PenID, in.OperatorID)
		if err != nil {
			return err
		}
		if in.Count < 1 {
			return domain.ValidationError{Field: "count", Reason: "must be at least 1"}
		}
		eventDate := in.EventDate
		if eventDate.IsZero() {
			eventDate = now
		}
		created, err = tx.AppendTreatment(TreatmentRecord{
			OperatorID:    in.OperatorID,
			PenID:         pen.ID,
			EventDate:     eventDate,
			TreatmentType: in.TreatmentType,
			Product:       in.Product,
			Dosage:        in.Dosage,
			Count:         in.Count,
			TreatedBy:     in.TreatedBy,
			TagNumbers:    in.TagNumbers,
			Notes:         in.Notes,
		})
		return err
	})
	return created, res, err
}

// PartialSaleInput carries a partial-sale submission.
type PartialSaleInput struct {
	PenID       string
	Count       int
	FinalWeight float64
	PricePerCwt float64
	SaleDate    time.Time
	Buyer       string
	TagNumbers  []string
	Notes       string
	OperatorID  string
}

// RecordPartialSale appends a partial-sale event and decrements the pen's
// head count. A partial sale that empties the pen leaves it active: only an
// explicit full sale retires a pen. The asymmetry is intentional.
func (s *Service) RecordPartialSale(ctx context.Context, in PartialSaleInput) (PartialSale, Result, error) {
	now := s.now()
	var created PartialSale
	res, err := s.run(ctx, "record_partial_sale", func(tx domain.Transaction) error {
		pen, err := findOwnedPen(tx, in.PenID, in.OperatorID)
		if err != nil {
			return err
		}
		if in.Count < 1 {
			return domain.ValidationError{Field: "count", Reason: "must be at least 1"}
		}
		if in.Count > pen.CurrentHead {
			return domain.ValidationError{Field: "count", Reason: "exceeds current head count"}
		}
		saleDate := in.SaleDate
		if saleDate.IsZero() {
			saleDate = now
		}
		created, err = tx.AppendPartialSale(PartialSale{
			OperatorID:   in.OperatorID,
			PenID:        pen.ID,
			SaleDate:     saleDate,
			Count:        in.Count,
			FinalWeight:  in.FinalWeight,
			PricePerCwt:  in.PricePerCwt,
			TotalRevenue: TotalRevenue(in.FinalWeight, in.PricePerCwt, in.Count),
			Buyer:        in.Buyer,
			TagNumbers:   in.TagNumbers,
			Notes:        in.Notes,
		})
		if err != nil {
			return err
		}
		_, err = applyHeadcountDelta(tx, pen.ID, -in.Count, causePartialSale)
		return err
	})
	return created, res, err
}

// CattleSaleInput carries a full-sale submission.
type CattleSaleInput struct {
	PenID       string
	FinalWeight float64
	PricePerCwt float64
	SaleDate    time.Time
	OperatorID  string
}

// SellAllCattle closes out a pen: it appends a full-sale event carrying a
// denormalized pen snapshot and derived metrics, then forces the pen empty
// and inactive. Revenue uses the head count before zeroing. A sale against an
// already-empty pen fails rather than silently succeeding.
func (s *Service) SellAllCattle(ctx context.Context, in CattleSaleInput) (CattleSale, Result, error) {
	now := s.now()
	var created CattleSale
	res, err := s.run(ctx, "sell_all_cattle", func(tx domain.Transaction) error {
		pen, err := findOwnedPen(tx, in.PenID, in.OperatorID)
		if err != nil {
			return err
		}
		if pen.CurrentHead < 1 {
			return domain.ValidationError{Field: "pen_id", Reason: "pen has no cattle to sell"}
		}
		saleDate := in.SaleDate
		if saleDate.IsZero() {
			saleDate = now
		}
		plans := plansForPen(tx, pen.ID)
		daysOnFeed := DaysOnFeed(plans, saleDate)
		adg := AverageDailyGain(pen.StartingWeight, in.FinalWeight, daysOnFeed)
		created, err = tx.AppendCattleSale(CattleSale{
			OperatorID:       in.OperatorID,
			PenID:            pen.ID,
			SaleDate:         saleDate,
			FinalWeight:      in.FinalWeight,
			PricePerCwt:      in.PricePerCwt,
			HeadCount:        pen.CurrentHead,
			TotalRevenue:     TotalRevenue(in.FinalWeight, in.PricePerCwt, pen.CurrentHead),
			DaysOnFeed:       daysOnFeed,
			AverageDailyGain: adg,
			PenName:          pen.Name,
			Category:         pen.Category,
			StartingWeight:   pen.StartingWeight,
		})
		if err != nil {
			return err
		}
		if _, err = applyHeadcountDelta(tx, pen.ID, 0, causeFullSale); err != nil {
			return err
		}
		_, err = tx.UpdatePen(pen.ID, func(p *Pen) error {
			p.AverageDailyGain = adg
			return nil
		})
		return err
	})
	return created, res, err
}

func plansForPen(tx domain.Transaction, penID string) []FeedingPlan {
	var out []FeedingPlan
	for _, plan := range tx.Snapshot().ListFeedingPlans() {
		if plan.PenID == penID {
			out = append(out, plan)
		}
	}
	return out
}

// RegisterFeedingPlan installs or replaces reference plan data supplied by the
// external planning collaborator.
func (s *Service) RegisterFeedingPlan(ctx context.Context, plan FeedingPlan) (FeedingPlan, Result, error) {
	var stored FeedingPlan
	res, err := s.run(ctx, "register_feeding_plan", func(tx domain.Transaction) error {
		if _, err := findOwnedPen(tx, plan.PenID, plan.OperatorID); err != nil {
			return err
		}
		if plan.ID != "" {
			if existing, ok := tx.FindFeedingPlan(plan.ID); ok {
				if existing.OperatorID != plan.OperatorID {
					return domain.NotFoundError{Entity: EntityFeedingPlan, ID: plan.ID}
				}
				var err error
				stored, err = tx.UpdateFeedingPlan(plan.ID, func(p *FeedingPlan) error {
					created := p.CreatedAt
					*p = plan
					p.CreatedAt = created
					return nil
				})
				return err
			}
		}
		var err error
		stored, err = tx.CreateFeedingPlan(plan)
		return err
	})
	return stored, res, err
}

// NutritionistInvite carries an invitation request.
type NutritionistInvite struct {
	Name         string
	BusinessName string
	Email        string
	OperatorID   string
}

// InviteNutritionist creates an invited nutritionist record and dispatches
// the invitation through the notification collaborator. Delivery failure is
// logged, never surfaced: the ledger write already committed.
func (s *Service) InviteNutritionist(ctx context.Context, in NutritionistInvite) (Nutritionist, Result, error) {
	if in.Name == "" {
		return Nutritionist{}, Result{}, domain.ValidationError{Field: "name", Reason: "required"}
	}
	if in.OperatorID == "" {
		return Nutritionist{}, Result{}, domain.ValidationError{Field: "operator_id", Reason: "required"}
	}
	now := s.now()
	var created Nutritionist
	res, err := s.run(ctx, "invite_nutritionist", func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreateNutritionist(Nutritionist{
			Name:         in.Name,
			BusinessName: in.BusinessName,
			Email:        in.Email,
			OperatorID:   in.OperatorID,
			Status:       NutritionistInvited,
			InvitedAt:    now,
		})
		return err
	})
	if err != nil {
		return created, res, err
	}
	if s.notify != nil {
		if sendErr := s.notify.SendInvitation(ctx, created); sendErr != nil {
			s.log.Warn("invitation delivery failed",
				zap.String("nutritionist_id", created.ID),
				zap.Error(sendErr))
		}
	}
	return created, res, nil
}

// AcceptNutritionistInvitation transitions an invited nutritionist to active
// and stamps the acceptance time. Accepting an already-active record is a
// no-op returning current state.
func (s *Service) AcceptNutritionistInvitation(ctx context.Context, id, operator string) (Nutritionist, Result, error) {
	now := s.now()
	var accepted Nutritionist
	res, err := s.run(ctx, "accept_nutritionist_invitation", func(tx domain.Transaction) error {
		current, ok := tx.FindNutritionist(id)
		if !ok || current.OperatorID != operator {
			return domain.NotFoundError{Entity: EntityNutritionist, ID: id}
		}
		if current.Status != NutritionistInvited {
			accepted = current
			return nil
		}
		var err error
		accepted, err = tx.UpdateNutritionist(id, func(n *Nutritionist) error {
			n.Status = NutritionistActive
			at := now
			n.AcceptedAt = &at
			return nil
		})
		return err
	})
	return accepted, res, err
}
