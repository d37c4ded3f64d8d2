package domain

// Action is a structured board instruction emitted by the chat engine. The
// caller applies it to the board store. The variants form a closed set so
// call sites can switch exhaustively.
type Action interface {
	isAction()
}

// CreateAction adds a new task to the end of a column.
type CreateAction struct {
	ColumnID    ColumnID
	Title       string
	Description string
	Priority    Priority
	DueDate     string
	Tags        []string
}

// UpdateAction merges a partial field set into an existing task.
type UpdateAction struct {
	TaskID string
	Patch  TaskPatch
}

// DeleteAction removes a task from the board.
type DeleteAction struct {
	TaskID string
}

// MoveAction relocates a task between columns. The destination index is
// chosen by the caller; chat messages rarely specify ordinal position.
type MoveAction struct {
	TaskID string
	Source ColumnID
	Dest   ColumnID
}

func (CreateAction) isAction() {}
func (UpdateAction) isAction() {}
func (DeleteAction) isAction() {}
func (MoveAction) isAction()   {}

// TaskPatch carries optional task field changes. Nil fields are left
// untouched. A non-nil empty DueDate clears the due date.
type TaskPatch struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Priority    *Priority `json:"priority,omitempty"`
	DueDate     *string   `json:"dueDate,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Priority == nil && p.DueDate == nil && p.Tags == nil
}
