// Package testutil provides an in-memory store for unit tests. It mirrors
// the semantics of the SQL store (LIKE patterns, deterministic ordering,
// per-entry atomic updates) without needing a running database.
package testutil

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"todust/models"

	"github.com/google/uuid"
)

type MemStore struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*models.Entry
	nextID  int64
	failErr error
}

func NewMemStore() *MemStore {
	return &MemStore{
		entries: map[uuid.UUID]*models.Entry{},
		nextID:  1,
	}
}

// FailWith makes every subsequent operation fail with err. Pass nil to
// restore normal behavior. Used to simulate store unavailability.
func (s *MemStore) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failErr = err
}

// Len returns the number of stored entries.
func (s *MemStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *MemStore) Insert(ctx context.Context, entry *models.Entry) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failErr != nil {
		return 0, s.failErr
	}
	if _, exists := s.entries[entry.UUID]; exists {
		return 0, fmt.Errorf("%w: duplicate uuid %s", models.ErrConstraintViolation, entry.UUID)
	}

	stored := clone(entry)
	stored.ID = s.nextID
	s.nextID++
	s.entries[stored.UUID] = stored

	return stored.ID, nil
}

func (s *MemStore) Get(ctx context.Context, id uuid.UUID) (*models.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failErr != nil {
		return nil, s.failErr
	}
	entry, ok := s.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrNotFound, id)
	}

	return clone(entry), nil
}

func (s *MemStore) Query(ctx context.Context, projectPattern string, activeOnly bool) ([]models.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failErr != nil {
		return nil, s.failErr
	}

	matched := []models.Entry{}
	for _, entry := range s.entries {
		if !likeMatch(projectPattern, entry.Project) {
			continue
		}
		if activeOnly && !entry.Active() {
			continue
		}
		matched = append(matched, *clone(entry))
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Started.Equal(matched[j].Started) {
			return matched[i].ID < matched[j].ID
		}
		return matched[i].Started.Before(matched[j].Started)
	})

	return matched, nil
}

func (s *MemStore) Update(ctx context.Context, id uuid.UUID, mutate func(*models.Entry) error) (*models.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failErr != nil {
		return nil, s.failErr
	}
	entry, ok := s.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrNotFound, id)
	}

	// mutate a copy so a failed mutation leaves the stored state intact
	mutated := clone(entry)
	if err := mutate(mutated); err != nil {
		return nil, err
	}
	s.entries[id] = mutated

	return clone(mutated), nil
}

func (s *MemStore) ProjectCounts(ctx context.Context) ([]models.ProjectCount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failErr != nil {
		return nil, s.failErr
	}

	byProject := map[string]*models.ProjectCount{}
	for _, entry := range s.entries {
		count, ok := byProject[entry.Project]
		if !ok {
			count = &models.ProjectCount{Project: entry.Project}
			byProject[entry.Project] = count
		}
		if entry.Active() {
			count.ActiveCount++
		} else {
			count.DoneCount++
		}
		count.TotalCount++
	}

	counts := []models.ProjectCount{}
	for _, count := range byProject {
		counts = append(counts, *count)
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].Project < counts[j].Project })

	return counts, nil
}

func clone(entry *models.Entry) *models.Entry {
	copied := *entry
	if entry.Finished != nil {
		finished := *entry.Finished
		copied.Finished = &finished
	}
	if entry.Due != nil {
		due := *entry.Due
		copied.Due = &due
	}
	return &copied
}

// likeMatch implements SQL LIKE semantics: % matches any sequence and _
// a single character, everything else matches literally.
func likeMatch(pattern, s string) bool {
	var b strings.Builder
	b.WriteString("^")
	for _, r := range pattern {
		switch r {
		case '%':
			b.WriteString(".*")
		case '_':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")

	re, err := regexp.Compile(b.String())
	if err != nil {
		return false
	}
	return re.MatchString(s)
}
