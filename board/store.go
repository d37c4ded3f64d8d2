package board

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"boardbot/domain"
)

const (
	defaultHistoryCap = 50
	defaultSaveDelay  = 400 * time.Millisecond
)

// Saver persists board snapshots. The store debounces calls to it; a failed
// save is logged and retried on the next flush.
type Saver interface {
	Save(ctx context.Context, b *domain.Board) error
}

// Config tunes a Store. Zero values pick the defaults.
type Config struct {
	Saver      Saver
	SaveDelay  time.Duration
	HistoryCap int
	Logger     *log.Logger
}

// Store owns the board state and its linear undo/redo history. Every
// mutation snapshots the pre-mutation board onto the undo stack (bounded)
// and clears the redo stack. Reads always reflect the latest mutation;
// persistence is debounced and never observable through Board().
type Store struct {
	mu      sync.Mutex
	current *domain.Board
	undo    []*domain.Board
	redo    []*domain.Board

	histCap int
	saver   Saver
	delay   time.Duration
	timer   *time.Timer
	logger  *log.Logger

	now   func() time.Time
	newID func() string
}

// New creates a store owning the given board.
func New(b *domain.Board, cfg Config) *Store {
	if cfg.HistoryCap <= 0 {
		cfg.HistoryCap = defaultHistoryCap
	}
	if cfg.SaveDelay <= 0 {
		cfg.SaveDelay = defaultSaveDelay
	}
	if cfg.Logger == nil {
		cfg.Logger = log.StandardLogger()
	}
	return &Store{
		current: b,
		histCap: cfg.HistoryCap,
		saver:   cfg.Saver,
		delay:   cfg.SaveDelay,
		logger:  cfg.Logger,
		now:     time.Now,
		newID:   domain.NewTaskID,
	}
}

// Board returns a deep copy of the current board.
func (s *Store) Board() *domain.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Clone()
}

func (s *Store) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.undo) > 0
}

func (s *Store) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.redo) > 0
}

// snapshotLocked pushes the current board onto the undo stack and clears
// redo. Must run before any field of the current board changes.
func (s *Store) snapshotLocked() {
	s.undo = append(s.undo, s.current.Clone())
	if len(s.undo) > s.histCap {
		s.undo = s.undo[len(s.undo)-s.histCap:]
	}
	s.redo = nil
}

// Create adds a task to the end of the given column and returns its id.
// Unknown columns fall back to todo.
func (s *Store) Create(columnID domain.ColumnID, title, description string, priority domain.Priority, dueDate string, tags []string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshotLocked()

	if !domain.ValidColumn(columnID) {
		columnID = domain.ColumnTodo
	}
	if priority == "" {
		priority = domain.PriorityMedium
	}
	now := s.now()
	task := domain.Task{
		ID:          s.newID(),
		Title:       title,
		Description: description,
		Priority:    priority,
		DueDate:     dueDate,
		Tags:        domain.NormalizeTags(tags),
		CreatedAt:   now,
		ColumnID:    columnID,
	}
	if columnID == domain.ColumnDone {
		ts := now
		task.CompletedAt = &ts
	}

	col := s.current.Columns[columnID]
	col.TaskIDs = append(col.TaskIDs, task.ID)
	s.current.Columns[columnID] = col
	s.current.Tasks[task.ID] = task

	s.scheduleSaveLocked()
	return task.ID
}

// Update merges a partial field set into a task. Ids, creation timestamps
// and column membership never change here; moving between columns is Move's
// job. Unknown ids are a safe no-op that leaves history untouched.
func (s *Store) Update(taskID string, patch domain.TaskPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.current.Tasks[taskID]
	if !ok || patch.Empty() {
		return
	}
	s.snapshotLocked()

	if patch.Title != nil {
		task.Title = *patch.Title
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.Priority != nil {
		task.Priority = *patch.Priority
	}
	if patch.DueDate != nil {
		task.DueDate = *patch.DueDate
	}
	if patch.Tags != nil {
		task.Tags = domain.NormalizeTags(*patch.Tags)
	}
	s.current.Tasks[taskID] = task

	s.scheduleSaveLocked()
}

// Delete removes a task and its column membership. Unknown ids are a safe
// no-op that leaves history untouched.
func (s *Store) Delete(taskID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.current.Tasks[taskID]
	if !ok {
		return
	}
	s.snapshotLocked()

	col := s.current.Columns[task.ColumnID]
	col.TaskIDs = removeID(col.TaskIDs, taskID)
	s.current.Columns[task.ColumnID] = col
	delete(s.current.Tasks, taskID)

	s.scheduleSaveLocked()
}

// Move relocates a task to destIndex in the destination column. The index
// is clamped to the valid insertion range; for same-column moves the
// removal happens before the index is interpreted. Entering done stamps
// completedAt once; leaving done clears it.
func (s *Store) Move(taskID string, source, dest domain.ColumnID, destIndex int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.current.Tasks[taskID]
	if !ok || !domain.ValidColumn(source) || !domain.ValidColumn(dest) {
		return
	}
	// The task's own membership is authoritative; a stale source from the
	// caller must not leave the id in two lists.
	source = task.ColumnID
	s.snapshotLocked()

	src := s.current.Columns[source]
	src.TaskIDs = removeID(src.TaskIDs, taskID)
	s.current.Columns[source] = src

	dst := s.current.Columns[dest]
	if destIndex < 0 {
		destIndex = 0
	}
	if destIndex > len(dst.TaskIDs) {
		destIndex = len(dst.TaskIDs)
	}
	ids := make([]string, 0, len(dst.TaskIDs)+1)
	ids = append(ids, dst.TaskIDs[:destIndex]...)
	ids = append(ids, taskID)
	ids = append(ids, dst.TaskIDs[destIndex:]...)
	dst.TaskIDs = ids
	s.current.Columns[dest] = dst

	task.ColumnID = dest
	if dest == domain.ColumnDone {
		if task.CompletedAt == nil {
			ts := s.now()
			task.CompletedAt = &ts
		}
	} else {
		task.CompletedAt = nil
	}
	s.current.Tasks[taskID] = task

	s.scheduleSaveLocked()
}

// Undo restores the most recent pre-mutation snapshot. It reports whether
// anything was undone.
func (s *Store) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.undo) == 0 {
		return false
	}
	prev := s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]
	s.redo = append(s.redo, s.current)
	s.current = prev
	s.scheduleSaveLocked()
	return true
}

// Redo re-applies the most recently undone mutation.
func (s *Store) Redo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.redo) == 0 {
		return false
	}
	next := s.redo[len(s.redo)-1]
	s.redo = s.redo[:len(s.redo)-1]
	s.undo = append(s.undo, s.current)
	s.current = next
	s.scheduleSaveLocked()
	return true
}

// Reset replaces the board with a freshly seeded one and persists it.
func (s *Store) Reset() {
	s.mu.Lock()
	s.snapshotLocked()
	s.current = domain.NewSeedBoard(s.now())
	s.mu.Unlock()
	s.flushNow()
}

// Clear empties every column and persists the result.
func (s *Store) Clear() {
	s.mu.Lock()
	s.snapshotLocked()
	s.current = domain.NewEmptyBoard()
	s.mu.Unlock()
	s.flushNow()
}

// scheduleSaveLocked arms (or re-arms) the debounce timer. The actual save
// runs off the calling sequence so mutations never wait on storage.
func (s *Store) scheduleSaveLocked() {
	if s.saver == nil {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, s.flushNow)
}

func (s *Store) flushNow() {
	if err := s.Flush(context.Background()); err != nil {
		s.logger.WithField("err", err).Error("board save failed; will retry on next mutation")
	}
}

// Flush persists the current board immediately and disarms any pending
// debounce timer.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	saver := s.saver
	snapshot := s.current.Clone()
	s.mu.Unlock()

	if saver == nil {
		return nil
	}
	return saver.Save(ctx, snapshot)
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
