package domain

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

type randReader struct{}

func (randReader) Read(p []byte) (int, error) { return rand.Read(p) }

// NewTaskID returns a fresh, lexicographically sortable task id.
func NewTaskID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now().UTC()), randReader{}).String()
}

// Board is the full normalized board state: the task records, the three
// columns with their ordered id lists, and the fixed column order.
type Board struct {
	Tasks       map[string]Task     `json:"tasks"`
	Columns     map[ColumnID]Column `json:"columns"`
	ColumnOrder []ColumnID          `json:"columnOrder"`
}

// NewEmptyBoard returns a board with the three fixed columns and no tasks.
func NewEmptyBoard() *Board {
	b := &Board{
		Tasks:       map[string]Task{},
		Columns:     map[ColumnID]Column{},
		ColumnOrder: append([]ColumnID(nil), FixedColumnOrder...),
	}
	for _, id := range FixedColumnOrder {
		b.Columns[id] = Column{ID: id, Title: ColumnTitle(id)}
	}
	return b
}

// NewSeedBoard builds the default starter board shown on first run and after
// a reset. Every call allocates fresh task ids.
func NewSeedBoard(now time.Time) *Board {
	b := NewEmptyBoard()
	seed := []Task{
		{Title: "Welcome to your board", Description: "Drag cards between columns or just tell the assistant what to do.", Priority: PriorityMedium, Tags: []string{"getting-started"}, ColumnID: ColumnTodo},
		{Title: "Try the assistant", Description: "Type: create a task called \"Plan sprint\" due tomorrow", Priority: PriorityHigh, Tags: []string{"getting-started"}, ColumnID: ColumnTodo},
		{Title: "Review the keyboard shortcuts", Priority: PriorityLow, ColumnID: ColumnInProgress},
	}
	for _, t := range seed {
		t.ID = NewTaskID()
		t.CreatedAt = now
		t.Tags = NormalizeTags(t.Tags)
		col := b.Columns[t.ColumnID]
		col.TaskIDs = append(col.TaskIDs, t.ID)
		b.Columns[t.ColumnID] = col
		b.Tasks[t.ID] = t
	}
	return b
}

// Clone returns a deep copy of the board. Snapshots taken for the undo
// history must not share any mutable state with the live board.
func (b *Board) Clone() *Board {
	out := &Board{
		Tasks:       make(map[string]Task, len(b.Tasks)),
		Columns:     make(map[ColumnID]Column, len(b.Columns)),
		ColumnOrder: append([]ColumnID(nil), b.ColumnOrder...),
	}
	for id, t := range b.Tasks {
		t.Tags = append([]string(nil), t.Tags...)
		if t.CompletedAt != nil {
			ts := *t.CompletedAt
			t.CompletedAt = &ts
		}
		out.Tasks[id] = t
	}
	for id, c := range b.Columns {
		c.TaskIDs = append([]string(nil), c.TaskIDs...)
		out.Columns[id] = c
	}
	return out
}

// TaskList returns the board's tasks in display order: columns in fixed
// order, tasks in their column order.
func (b *Board) TaskList() []Task {
	out := make([]Task, 0, len(b.Tasks))
	for _, colID := range b.ColumnOrder {
		for _, id := range b.Columns[colID].TaskIDs {
			if t, ok := b.Tasks[id]; ok {
				out = append(out, t)
			}
		}
	}
	return out
}

// Consistent reports whether the board has the three fixed columns and every
// referenced task id resolves to a task in the matching column. Blobs loaded
// from storage that fail this check are treated as corrupt.
func (b *Board) Consistent() bool {
	if b == nil || len(b.ColumnOrder) != len(FixedColumnOrder) {
		return false
	}
	for i, id := range FixedColumnOrder {
		if b.ColumnOrder[i] != id {
			return false
		}
		if _, ok := b.Columns[id]; !ok {
			return false
		}
	}
	seen := make(map[string]struct{}, len(b.Tasks))
	for _, colID := range b.ColumnOrder {
		for _, id := range b.Columns[colID].TaskIDs {
			t, ok := b.Tasks[id]
			if !ok || t.ColumnID != colID {
				return false
			}
			if _, dup := seen[id]; dup {
				return false
			}
			seen[id] = struct{}{}
		}
	}
	return len(seen) == len(b.Tasks)
}
