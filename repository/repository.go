// Package repository is the core of the todo service. It is the only
// component allowed to mutate entries: it generates UUIDs, keeps the
// timestamp discipline (last_change never moves backward) and enforces
// lifecycle rules on top of a Store that knows nothing about them.
package repository

import (
	"context"
	"fmt"
	"log"
	"time"

	"todust/models"

	"github.com/google/uuid"
)

// DefaultProject is used when an entry is added without naming a project.
const DefaultProject = "default"

// Store is the persistence contract the repository drives. The production
// implementation is database.DB; tests use an in-memory store. Every
// operation is atomic at single-entry granularity, and Update serializes
// concurrent mutations of the same UUID.
type Store interface {
	Insert(ctx context.Context, entry *models.Entry) (int64, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Entry, error)
	Query(ctx context.Context, projectPattern string, activeOnly bool) ([]models.Entry, error)
	Update(ctx context.Context, id uuid.UUID, mutate func(*models.Entry) error) (*models.Entry, error)
	ProjectCounts(ctx context.Context) ([]models.ProjectCount, error)
}

type Repository struct {
	store Store
}

// New wires the repository to its store. The store handle is owned by the
// caller and injected here, which keeps the repository testable without a
// running database.
func New(store Store) *Repository {
	return &Repository{store: store}
}

// touch advances last_change, clamped so it never moves backward even
// under clock skew.
func touch(entry *models.Entry) {
	now := time.Now().UTC()
	if now.After(entry.LastChange) {
		entry.LastChange = now
	}
}

// AddEntry creates a new active entry. The UUID is generated here, never
// by callers, and started equals last_change at birth.
func (r *Repository) AddEntry(ctx context.Context, project, text string) (*models.Entry, error) {
	if project == "" {
		project = DefaultProject
	}

	now := time.Now().UTC()
	entry := &models.Entry{
		UUID:       uuid.New(),
		Project:    project,
		Text:       text,
		Started:    now,
		LastChange: now,
	}

	id, err := r.store.Insert(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("failed to add entry: %w", err)
	}
	entry.ID = id

	log.Printf("AddEntry: uuid=%s project=%s", entry.UUID, entry.Project)
	return entry, nil
}

// GetEntry returns the entry for the given UUID or models.ErrNotFound.
func (r *Repository) GetEntry(ctx context.Context, id uuid.UUID) (*models.Entry, error) {
	entry, err := r.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}
	return entry, nil
}

// ListEntries returns the project's entries partitioned into active and
// done. Active entries are always returned; done ones only when showDone
// is set. Both partitions are ordered by started ascending with the
// surrogate id breaking ties.
func (r *Repository) ListEntries(ctx context.Context, project string, showDone bool) (active, done []models.Entry, err error) {
	if !showDone {
		active, err = r.store.Query(ctx, project, true)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to list entries: %w", err)
		}
		return active, []models.Entry{}, nil
	}

	entries, err := r.store.Query(ctx, project, false)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list entries: %w", err)
	}

	active = []models.Entry{}
	done = []models.Entry{}
	for _, entry := range entries {
		if entry.Active() {
			active = append(active, entry)
		} else {
			done = append(done, entry)
		}
	}

	return active, done, nil
}

// EditText replaces the entry text. last_change is refreshed only when
// touchTime is set; editing text for clarity should not reset the
// active-duration clock unless the caller asks for it.
func (r *Repository) EditText(ctx context.Context, id uuid.UUID, text string, touchTime bool) (*models.Entry, error) {
	entry, err := r.store.Update(ctx, id, func(e *models.Entry) error {
		e.Text = text
		if touchTime {
			touch(e)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to edit entry text: %w", err)
	}

	return entry, nil
}

// MoveProject reassigns the entry to another project and always refreshes
// last_change. The empty project name is rejected before the store is
// touched, so a failed move leaves no trace.
func (r *Repository) MoveProject(ctx context.Context, id uuid.UUID, newProject string) (*models.Entry, error) {
	if newProject == "" {
		return nil, fmt.Errorf("%w: project must not be empty", models.ErrInvalidProject)
	}

	entry, err := r.store.Update(ctx, id, func(e *models.Entry) error {
		e.Project = newProject
		touch(e)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to move entry: %w", err)
	}

	log.Printf("MoveProject: uuid=%s project=%s", id, newProject)
	return entry, nil
}

// SetDone transitions the entry between Active and Done. The operation is
// idempotent: when the entry is already in the requested state nothing
// changes, last_change included.
func (r *Repository) SetDone(ctx context.Context, id uuid.UUID, done bool) (*models.Entry, error) {
	entry, err := r.store.Update(ctx, id, func(e *models.Entry) error {
		if done == !e.Active() {
			return nil
		}

		if done {
			now := time.Now().UTC()
			e.Finished = &now
		} else {
			e.Finished = nil
		}
		touch(e)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set entry state: %w", err)
	}

	return entry, nil
}

// SetDue sets or clears the presentation-only due date and refreshes
// last_change.
func (r *Repository) SetDue(ctx context.Context, id uuid.UUID, due *time.Time) (*models.Entry, error) {
	entry, err := r.store.Update(ctx, id, func(e *models.Entry) error {
		e.Due = due
		touch(e)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set due date: %w", err)
	}

	return entry, nil
}

// RenameProject moves every entry of one project to another, which is all
// renaming means here since projects are implicit groupings. Returns the
// number of entries moved.
func (r *Repository) RenameProject(ctx context.Context, from, to string) (int, error) {
	if from == "" || to == "" {
		return 0, fmt.Errorf("%w: project must not be empty", models.ErrInvalidProject)
	}

	entries, err := r.store.Query(ctx, from, false)
	if err != nil {
		return 0, fmt.Errorf("failed to rename project: %w", err)
	}

	moved := 0
	for _, entry := range entries {
		if entry.Project != from {
			// the LIKE pattern may overmatch when the name carries wildcards
			continue
		}

		_, err := r.store.Update(ctx, entry.UUID, func(e *models.Entry) error {
			e.Project = to
			touch(e)
			return nil
		})
		if err != nil {
			return moved, fmt.Errorf("failed to rename project: %w", err)
		}
		moved++
	}

	log.Printf("RenameProject: from=%s to=%s moved=%d", from, to, moved)
	return moved, nil
}

// ProjectCounts aggregates active/done/total counts per project, sorted
// by project name. Projects are derived from entries, so an empty project
// never appears.
func (r *Repository) ProjectCounts(ctx context.Context) ([]models.ProjectCount, error) {
	counts, err := r.store.ProjectCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count projects: %w", err)
	}
	return counts, nil
}
