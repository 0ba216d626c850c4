package activity

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
)

// MemoryStore implements Store using an in-memory slice.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewMemoryStore creates a new empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) WriteEntries(_ context.Context, entries []Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entries...)
	return nil
}

func (s *MemoryStore) Recent(_ context.Context, opts QueryOptions) ([]Entry, string, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cursor, hasCursor := parseCursor(opts.Cursor)
	var matched []Entry
	for _, e := range s.entries {
		if opts.Since != nil && e.OccurredAt.Before(*opts.Since) {
			continue
		}
		if opts.Until != nil && e.OccurredAt.After(*opts.Until) {
			continue
		}
		if len(opts.EventTypes) > 0 && !slices.Contains(opts.EventTypes, e.EventType) {
			continue
		}
		if len(opts.Kinds) > 0 && !slices.Contains(opts.Kinds, e.Kind) {
			continue
		}
		if opts.FailedOnly && !e.Failed() {
			continue
		}
		matched = append(matched, e)
	}
	total := len(matched)

	// Newest first.
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].OccurredAt.After(matched[j].OccurredAt)
	})
	if hasCursor {
		n := sort.Search(len(matched), func(i int) bool { return matched[i].OccurredAt.Before(cursor) })
		matched = matched[n:]
	}

	var next string
	if limit := opts.limit(); len(matched) > limit {
		matched = matched[:limit]
		next = formatCursor(matched[len(matched)-1].OccurredAt)
	}
	return matched, next, total, nil
}

func (s *MemoryStore) Search(_ context.Context, query string, opts SearchOptions) ([]Entry, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q := strings.ToLower(query)
	var matched []Entry
	for _, e := range s.entries {
		if !strings.Contains(strings.ToLower(e.Query), q) && !strings.Contains(strings.ToLower(e.Summary), q) {
			continue
		}
		if opts.EventType != "" && e.EventType != opts.EventType {
			continue
		}
		if opts.Since != nil && e.OccurredAt.Before(*opts.Since) {
			continue
		}
		matched = append(matched, e)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].OccurredAt.After(matched[j].OccurredAt)
	})
	total := len(matched)
	if limit := opts.limit(); len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, total, nil
}
