package domain

import (
	"strings"
	"time"
)

// ColumnID identifies one of the three fixed board columns.
type ColumnID string

const (
	ColumnTodo       ColumnID = "todo"
	ColumnInProgress ColumnID = "in-progress"
	ColumnDone       ColumnID = "done"
)

// FixedColumnOrder is the display sequence of the board's columns. It never
// changes for the lifetime of a board.
var FixedColumnOrder = []ColumnID{ColumnTodo, ColumnInProgress, ColumnDone}

// ColumnTitle returns the display label for a column id.
func ColumnTitle(id ColumnID) string {
	switch id {
	case ColumnTodo:
		return "To Do"
	case ColumnInProgress:
		return "In Progress"
	case ColumnDone:
		return "Done"
	}
	return string(id)
}

// ValidColumn reports whether id names one of the three board columns.
func ValidColumn(id ColumnID) bool {
	return id == ColumnTodo || id == ColumnInProgress || id == ColumnDone
}

// Priority is a task's urgency level.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Task represents a single board item.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Priority    Priority   `json:"priority"`
	DueDate     string     `json:"dueDate,omitempty"` // calendar day, YYYY-MM-DD
	Tags        []string   `json:"tags,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	ColumnID    ColumnID   `json:"columnId"`
}

// Column holds an ordered list of task ids. The order is the display order.
type Column struct {
	ID      ColumnID `json:"id"`
	Title   string   `json:"title"`
	TaskIDs []string `json:"taskIds"`
}

// NormalizeTags lowercases tags, trims whitespace and drops duplicates while
// preserving insertion order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
