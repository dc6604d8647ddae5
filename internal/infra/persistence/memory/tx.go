package memory

import (
	"fmt"

	"feedlot/pkg/domain"
)

// helper to record and append change entries.
func (tx *transaction) recordChange(change Change) {
	tx.changes = append(tx.changes, change)
}

// Snapshot returns a read-only view over the transactional state.
func (tx *transaction) Snapshot() TransactionView {
	return newTransactionView(&tx.state)
}

// FindPen exposes pen lookup within the transaction scope.
func (tx *transaction) FindPen(id string) (Pen, bool) {
	p, ok := tx.state.pens[id]
	if !ok {
		return Pen{}, false
	}
	return clonePen(p), true
}

// FindFeedingPlan exposes plan lookup within the transaction scope.
func (tx *transaction) FindFeedingPlan(id string) (FeedingPlan, bool) {
	p, ok := tx.state.plans[id]
	if !ok {
		return FeedingPlan{}, false
	}
	return clonePlan(p), true
}

// FindNutritionist exposes nutritionist lookup within the transaction scope.
func (tx *transaction) FindNutritionist(id string) (Nutritionist, bool) {
	n, ok := tx.state.nutritionists[id]
	if !ok {
		return Nutritionist{}, false
	}
	return n, true
}

// CreatePen stores a new pen within the transaction.
func (tx *transaction) CreatePen(p Pen) (Pen, error) {
	if p.ID == "" {
		p.ID = tx.store.newID()
	}
	if _, exists := tx.state.pens[p.ID]; exists {
		return Pen{}, fmt.Errorf("pen %q already exists", p.ID)
	}
	p.CreatedAt = tx.now
	p.UpdatedAt = tx.now
	tx.state.pens[p.ID] = clonePen(p)
	tx.recordChange(Change{Entity: domain.EntityPen, Action: domain.ActionCreate, After: clonePen(p)})
	return clonePen(p), nil
}

// UpdatePen mutates a pen using the provided mutator function.
func (tx *transaction) UpdatePen(id string, mutator func(*Pen) error) (Pen, error) {
	current, ok := tx.state.pens[id]
	if !ok {
		return Pen{}, fmt.Errorf("pen %q not found", id)
	}
	before := clonePen(current)
	if err := mutator(&current); err != nil {
		return Pen{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.pens[id] = clonePen(current)
	tx.recordChange(Change{Entity: domain.EntityPen, Action: domain.ActionUpdate, Before: before, After: clonePen(current)})
	return clonePen(current), nil
}

// CreateFeedingPlan stores reference plan data.
func (tx *transaction) CreateFeedingPlan(p FeedingPlan) (FeedingPlan, error) {
	if p.ID == "" {
		p.ID = tx.store.newID()
	}
	if _, exists := tx.state.plans[p.ID]; exists {
		return FeedingPlan{}, fmt.Errorf("feeding plan %q already exists", p.ID)
	}
	p.CreatedAt = tx.now
	p.UpdatedAt = tx.now
	tx.state.plans[p.ID] = clonePlan(p)
	tx.recordChange(Change{Entity: domain.EntityFeedingPlan, Action: domain.ActionCreate, After: clonePlan(p)})
	return clonePlan(p), nil
}

// UpdateFeedingPlan mutates an existing feeding plan.
func (tx *transaction) UpdateFeedingPlan(id string, mutator func(*FeedingPlan) error) (FeedingPlan, error) {
	current, ok := tx.state.plans[id]
	if !ok {
		return FeedingPlan{}, fmt.Errorf("feeding plan %q not found", id)
	}
	before := clonePlan(current)
	if err := mutator(&current); err != nil {
		return FeedingPlan{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.plans[id] = clonePlan(current)
	tx.recordChange(Change{Entity: domain.EntityFeedingPlan, Action: domain.ActionUpdate, Before: before, After: clonePlan(current)})
	return clonePlan(current), nil
}

// AppendFeedingRecord appends an immutable feeding event.
func (tx *transaction) AppendFeedingRecord(f FeedingRecord) (FeedingRecord, error) {
	if f.ID == "" {
		f.ID = tx.store.newID()
	}
	if _, exists := tx.state.feedings[f.ID]; exists {
		return FeedingRecord{}, fmt.Errorf("feeding record %q already exists", f.ID)
	}
	f.CreatedAt = tx.now
	f.UpdatedAt = tx.now
	tx.state.feedings[f.ID] = cloneFeeding(f)
	tx.recordChange(Change{Entity: domain.EntityFeedingRecord, Action: domain.ActionCreate, After: cloneFeeding(f)})
	return cloneFeeding(f), nil
}

// AppendDeathLoss appends an immutable death-loss event.
func (tx *transaction) AppendDeathLoss(d DeathLoss) (DeathLoss, error) {
	if d.ID == "" {
		d.ID = tx.store.newID()
	}
	if _, exists := tx.state.deathLosses[d.ID]; exists {
		return DeathLoss{}, fmt.Errorf("death loss %q already exists", d.ID)
	}
	d.CreatedAt = tx.now
	d.UpdatedAt = tx.now
	tx.state.deathLosses[d.ID] = cloneDeathLoss(d)
	tx.recordChange(Change{Entity: domain.EntityDeathLoss, Action: domain.ActionCreate, After: cloneDeathLoss(d)})
	return cloneDeathLoss(d), nil
}

// AppendTreatment appends an immutable treatment event.
func (tx *transaction) AppendTreatment(t TreatmentRecord) (TreatmentRecord, error) {
	if t.ID == "" {
		t.ID = tx.store.newID()
	}
	if _, exists := tx.state.treatments[t.ID]; exists {
		return TreatmentRecord{}, fmt.Errorf("treatment %q already exists", t.ID)
	}
	t.CreatedAt = tx.now
	t.UpdatedAt = tx.now
	tx.state.treatments[t.ID] = cloneTreatment(t)
	tx.recordChange(Change{Entity: domain.EntityTreatment, Action: domain.ActionCreate, After: cloneTreatment(t)})
	return cloneTreatment(t), nil
}

// AppendPartialSale appends an immutable partial-sale event.
func (tx *transaction) AppendPartialSale(ps PartialSale) (PartialSale, error) {
	if ps.ID == "" {
		ps.ID = tx.store.newID()
	}
	if _, exists := tx.state.partialSales[ps.ID]; exists {
		return PartialSale{}, fmt.Errorf("partial sale %q already exists", ps.ID)
	}
	ps.CreatedAt = tx.now
	ps.UpdatedAt = tx.now
	tx.state.partialSales[ps.ID] = clonePartialSale(ps)
	tx.recordChange(Change{Entity: domain.EntityPartialSale, Action: domain.ActionCreate, After: clonePartialSale(ps)})
	return clonePartialSale(ps), nil
}

// AppendCattleSale appends an immutable full-sale event.
func (tx *transaction) AppendCattleSale(cs CattleSale) (CattleSale, error) {
	if cs.ID == "" {
		cs.ID = tx.store.newID()
	}
	if _, exists := tx.state.cattleSales[cs.ID]; exists {
		return CattleSale{}, fmt.Errorf("cattle sale %q already exists", cs.ID)
	}
	cs.CreatedAt = tx.now
	cs.UpdatedAt = tx.now
	tx.state.cattleSales[cs.ID] = cs
	tx.recordChange(Change{Entity: domain.EntityCattleSale, Action: domain.ActionCreate, After: cs})
	return cs, nil
}

// CreateNutritionist stores a new nutritionist record.
func (tx *transaction) CreateNutritionist(n Nutritionist) (Nutritionist, error) {
	if n.ID == "" {
		n.ID = tx.store.newID()
	}
	if _, exists := tx.state.nutritionists[n.ID]; exists {
		return Nutritionist{}, fmt.Errorf("nutritionist %q already exists", n.ID)
	}
	n.CreatedAt = tx.now
	n.UpdatedAt = tx.now
	tx.state.nutritionists[n.ID] = n
	tx.recordChange(Change{Entity: domain.EntityNutritionist, Action: domain.ActionCreate, After: n})
	return n, nil
}

// UpdateNutritionist mutates an existing nutritionist record.
func (tx *transaction) UpdateNutritionist(id string, mutator func(*Nutritionist) error) (Nutritionist, error) {
	current, ok := tx.state.nutritionists[id]
	if !ok {
		return Nutritionist{}, fmt.Errorf("nutritionist %q not found", id)
	}
	before := current
	if err := mutator(&current); err != nil {
		return Nutritionist{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.nutritionists[id] = current
	tx.recordChange(Change{Entity: domain.EntityNutritionist, Action: domain.ActionUpdate, Before: before, After: current})
	return current, nil
}
