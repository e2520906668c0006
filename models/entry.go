package models

import (
	"time"

	"github.com/google/uuid"
)

// Entry is a single todo item. Entries belong to exactly one project, which
// is nothing more than the set of entries sharing the same project string.
// The surrogate ID is assigned by the store and never leaves the process;
// the UUID is the only identifier collaborators may reference.
type Entry struct {
	ID         int64      `json:"-"`
	UUID       uuid.UUID  `json:"uuid"`
	Project    string     `json:"project"`
	Text       string     `json:"text"`
	Started    time.Time  `json:"started"`
	Finished   *time.Time `json:"finished,omitempty"`
	LastChange time.Time  `json:"last_change"`
	Due        *time.Time `json:"due,omitempty"`
}

// Active reports whether the entry has not been finished yet.
func (e *Entry) Active() bool {
	return e.Finished == nil
}

// ProjectCount is one row of the per-project aggregate. Total is always
// Active + Done; projects without entries never produce a row.
type ProjectCount struct {
	Project     string `json:"project"`
	ActiveCount int    `json:"active_count"`
	DoneCount   int    `json:"done_count"`
	TotalCount  int    `json:"total_count"`
}

type AddEntryRequest struct {
	Project string `json:"project"`
	Text    string `json:"text" binding:"required"`
}

type EditTextRequest struct {
	Text string `json:"text" binding:"required"`
	// UpdateTime controls whether last_change is refreshed. Editing text
	// for clarity should not always reset the active-duration clock.
	UpdateTime bool `json:"update_time"`
}

type MoveEntryRequest struct {
	Project string `json:"project"`
}

type SetDoneRequest struct {
	Done bool `json:"done"`
}

type SetDueRequest struct {
	// Due is a date in 2006-01-02 form; empty clears the due date.
	Due string `json:"due"`
}

type RenameProjectRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type ListResponse struct {
	Project string  `json:"project"`
	Active  []Entry `json:"active"`
	Done    []Entry `json:"done"`
}

type ProjectsResponse struct {
	Projects []ProjectCount `json:"projects"`
	Total    int            `json:"total"`
}
