package memory

// Read helpers over committed state.

// GetPen retrieves a pen by ID from committed state.
func (s *Store) GetPen(id string) (Pen, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.state.pens[id]
	if !ok {
		return Pen{}, false
	}
	return clonePen(p), true
}

// ListPens returns all pens from committed state.
func (s *Store) ListPens() []Pen {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Pen, 0, len(s.state.pens))
	for _, p := range s.state.pens {
		out = append(out, clonePen(p))
	}
	return out
}

// ListFeedingPlans returns all feeding plans.
func (s *Store) ListFeedingPlans() []FeedingPlan {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]FeedingPlan, 0, len(s.state.plans))
	for _, p := range s.state.plans {
		out = append(out, clonePlan(p))
	}
	return out
}

// ListFeedingRecords returns all feeding events.
func (s *Store) ListFeedingRecords() []FeedingRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]FeedingRecord, 0, len(s.state.feedings))
	for _, f := range s.state.feedings {
		out = append(out, cloneFeeding(f))
	}
	return out
}

// ListDeathLosses returns all death-loss events.
func (s *Store) ListDeathLosses() []DeathLoss {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]DeathLoss, 0, len(s.state.deathLosses))
	for _, d := range s.state.deathLosses {
		out = append(out, cloneDeathLoss(d))
	}
	return out
}

// ListTreatments returns all treatment events.
func (s *Store) ListTreatments() []TreatmentRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]TreatmentRecord, 0, len(s.state.treatments))
	for _, t := range s.state.treatments {
		out = append(out, cloneTreatment(t))
	}
	return out
}

// ListPartialSales returns all partial-sale events.
func (s *Store) ListPartialSales() []PartialSale {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]PartialSale, 0, len(s.state.partialSales))
	for _, ps := range s.state.partialSales {
		out = append(out, clonePartialSale(ps))
	}
	return out
}

// ListCattleSales returns all full-sale events.
func (s *Store) ListCattleSales() []CattleSale {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]CattleSale, 0, len(s.state.cattleSales))
	for _, cs := range s.state.cattleSales {
		out = append(out, cs)
	}
	return out
}

// GetNutritionist retrieves a nutritionist by ID from committed state.
func (s *Store) GetNutritionist(id string) (Nutritionist, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.state.nutritionists[id]
	if !ok {
		return Nutritionist{}, false
	}
	return n, true
}

// ListNutritionists returns all nutritionist records.
func (s *Store) ListNutritionists() []Nutritionist {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Nutritionist, 0, len(s.state.nutritionists))
	for _, n := range s.state.nutritionists {
		out = append(out, n)
	}
	return out
}
