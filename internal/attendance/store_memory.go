package attendance

import (
	"context"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/cases"
)

type dayKey struct {
	learnerID string
	sessionID string
	signedOn  string
}

// MemoryStore keeps records in process. Used with the "memory" driver and in tests.
type MemoryStore struct {
	mu      sync.RWMutex
	ids     IDGen
	records []Record
	taken   map[dayKey]struct{}
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		ids:   ulidGen{},
		taken: make(map[dayKey]struct{}),
	}
}

func (s *MemoryStore) Insert(_ context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := dayKey{rec.LearnerID, rec.SessionID, rec.SignedOn}
	if _, ok := s.taken[k]; ok {
		return ErrRecordExists
	}
	id, err := s.ids.New(rec.CapturedAt)
	if err != nil {
		return err
	}
	rec.ID = id
	s.taken[k] = struct{}{}
	s.records = append(s.records, *rec)
	return nil
}

func (s *MemoryStore) List(_ context.Context, q ListQuery) ([]Record, int64, error) {
	// Caser は goroutine 間で共有できないので呼び出しごとに作る
	fold := cases.Fold()
	needle := fold.String(q.Search)

	s.mu.RLock()
	matched := make([]Record, 0, len(s.records))
	for _, r := range s.records {
		if needle == "" ||
			strings.Contains(fold.String(r.LearnerID), needle) ||
			strings.Contains(fold.String(r.SessionID), needle) {
			matched = append(matched, r)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].CapturedAt.Equal(matched[j].CapturedAt) {
			return matched[i].CapturedAt.After(matched[j].CapturedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	total := int64(len(matched))
	from := q.Offset()
	if from >= len(matched) {
		return []Record{}, total, nil
	}
	to := min(from+q.Limit, len(matched))
	return matched[from:to], total, nil
}

func (s *MemoryStore) Latest(_ context.Context, learnerID, sessionID string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		latest Record
		found  bool
	)
	for _, r := range s.records {
		if r.LearnerID != learnerID || r.SessionID != sessionID {
			continue
		}
		if !found || r.CapturedAt.After(latest.CapturedAt) ||
			(r.CapturedAt.Equal(latest.CapturedAt) && r.ID > latest.ID) {
			latest, found = r, true
		}
	}
	if !found {
		return Record{}, ErrRecordNotFound
	}
	return latest, nil
}

func (s *MemoryStore) HasLearner(_ context.Context, learnerID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.records {
		if r.LearnerID == learnerID {
			return true, nil
		}
	}
	return false, nil
}
