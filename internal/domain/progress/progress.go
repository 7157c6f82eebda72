package progress

import (
	"context"
	"fmt"
	"time"
)

var ErrWorkNotFound = fmt.Errorf("work not found")

// StatusWriting is the status given to newly declared works.
const StatusWriting = "執筆中"

// Entry is one logged writing session. Rows are append-only.
type Entry struct {
	LoggedAt   time.Time
	AuthorName string
	WorkTitle  string
	CharCount  int
}

// Work is a declared writing project, looked up by exact title.
type Work struct {
	Title     string
	Theme     string
	GoalCount int
	Deadline  time.Time
	Status    string
}

// EntryFilter selects entries. Empty fields match everything.
type EntryFilter struct {
	AuthorName string
	WorkTitle  string
}

// Match reports whether e passes the filter.
func (f EntryFilter) Match(e Entry) bool {
	if f.AuthorName != "" && e.AuthorName != f.AuthorName {
		return false
	}
	if f.WorkTitle != "" && e.WorkTitle != f.WorkTitle {
		return false
	}
	return true
}

// Repository is the progress store. The backing store is the source of truth;
// no uniqueness or ordering is enforced here.
type Repository interface {
	AppendEntry(ctx context.Context, e *Entry) error
	ListEntries(ctx context.Context, filter EntryFilter) ([]*Entry, error)
	AppendWork(ctx context.Context, w *Work) error
	// FindWork returns the first work whose title equals title, or ErrWorkNotFound.
	FindWork(ctx context.Context, title string) (*Work, error)
}

// Total sums the character counts of entries.
func Total(entries []*Entry) int {
	total := 0
	for _, e := range entries {
		total += e.CharCount
	}
	return total
}
