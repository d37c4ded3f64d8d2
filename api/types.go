package api

import (
	"boardbot/chat"
	"boardbot/domain"
)

// BoardStore is the snapshot and mutation surface the handlers drive.
type BoardStore interface {
	Board() *domain.Board
	Create(columnID domain.ColumnID, title, description string, priority domain.Priority, dueDate string, tags []string) string
	Update(taskID string, patch domain.TaskPatch)
	Delete(taskID string)
	Move(taskID string, source, dest domain.ColumnID, destIndex int)
	Undo() bool
	Redo() bool
	CanUndo() bool
	CanRedo() bool
	Reset()
	Clear()
}

// Assistant turns one chat message plus a board snapshot into a reply and an
// optional board action.
type Assistant interface {
	Process(message string, b *domain.Board) chat.Reply
}
