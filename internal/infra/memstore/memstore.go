// Package memstore keeps progress rows and digest claims in process memory.
// Data is lost on restart.
package memstore

import (
	"context"
	"sync"
	"time"

	"writer_digest_bot/internal/domain/digest"
	"writer_digest_bot/internal/domain/progress"
)

type ProgressRepository struct {
	mu      sync.RWMutex
	entries []progress.Entry
	works   []progress.Work
}

func NewProgressRepository() *ProgressRepository {
	return &ProgressRepository{}
}

func (r *ProgressRepository) AppendEntry(_ context.Context, e *progress.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *e)
	return nil
}

func (r *ProgressRepository) ListEntries(_ context.Context, filter progress.EntryFilter) ([]*progress.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*progress.Entry, 0)
	for i := range r.entries {
		if filter.Match(r.entries[i]) {
			e := r.entries[i]
			result = append(result, &e)
		}
	}
	return result, nil
}

func (r *ProgressRepository) AppendWork(_ context.Context, w *progress.Work) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.works = append(r.works, *w)
	return nil
}

func (r *ProgressRepository) FindWork(_ context.Context, title string) (*progress.Work, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, w := range r.works {
		if w.Title == title {
			found := w
			return &found, nil
		}
	}
	return nil, progress.ErrWorkNotFound
}

type RunLedger struct {
	mu      sync.Mutex
	claimed map[string]string
}

func NewRunLedger() *RunLedger {
	return &RunLedger{claimed: make(map[string]string)}
}

func (l *RunLedger) Claim(_ context.Context, day time.Time, runID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := digest.DayKey(day)
	if _, ok := l.claimed[key]; ok {
		return false, nil
	}
	l.claimed[key] = runID
	return true, nil
}
