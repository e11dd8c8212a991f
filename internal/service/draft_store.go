package service

import (
	"sync"

	"github.com/lifequest/lifequest/internal/model"
)

// DraftStore holds candidate plans per goal until they are confirmed or
// replaced. Nothing in it is persisted.
type DraftStore struct {
	mu     sync.RWMutex
	drafts map[string][]*model.PlanStep
}

func NewDraftStore() *DraftStore {
	return &DraftStore{drafts: make(map[string][]*model.PlanStep)}
}

func (s *DraftStore) Get(goalID string) ([]*model.PlanStep, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	draft, ok := s.drafts[goalID]
	if !ok {
		return nil, false
	}
	return clonePlan(draft), true
}

func (s *DraftStore) Put(goalID string, draft []*model.PlanStep) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[goalID] = clonePlan(draft)
}

func (s *DraftStore) Delete(goalID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, goalID)
}

func clonePlan(plan []*model.PlanStep) []*model.PlanStep {
	out := make([]*model.PlanStep, len(plan))
	for i, ps := range plan {
		c := *ps
		c.Substeps = append([]string(nil), ps.Substeps...)
		out[i] = &c
	}
	return out
}
