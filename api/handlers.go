package api

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"boardbot/domain"
)

const (
	postChatMaxSize = 16 << 10
	postMoveMaxSize = 4 << 10
)

// Register wires up all API routes on the provided Echo instance.
func Register(e *echo.Echo, store BoardStore, assistant Assistant, logger *log.Logger) {
	e.GET("/api/board", getBoard(store))
	e.POST("/api/chat", postChat(store, assistant, logger))
	e.POST("/api/board/move", postMove(store))
	e.POST("/api/board/undo", postUndo(store))
	e.POST("/api/board/redo", postRedo(store))
	e.POST("/api/board/reset", postReset(store))
	e.POST("/api/board/clear", postClear(store))
	e.GET("/api/export", exportBoard(store))
	e.GET("/healthz", healthz())
}

type boardResponse struct {
	Board   *domain.Board `json:"board"`
	CanUndo bool          `json:"canUndo"`
	CanRedo bool          `json:"canRedo"`
}

func boardState(store BoardStore) boardResponse {
	return boardResponse{
		Board:   store.Board(),
		CanUndo: store.CanUndo(),
		CanRedo: store.CanRedo(),
	}
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	ID        string      `json:"id"`
	Timestamp int64       `json:"timestamp"`
	Text      string      `json:"text"`
	Action    *actionWire `json:"action,omitempty"`
	boardResponse
}

// actionWire is the JSON shape of a board action taken on behalf of a chat
// message. Type discriminates the variant; unused fields are omitted.
type actionWire struct {
	Type        string            `json:"type"`
	TaskID      string            `json:"taskId,omitempty"`
	ColumnID    domain.ColumnID   `json:"columnId,omitempty"`
	Source      domain.ColumnID   `json:"source,omitempty"`
	Dest        domain.ColumnID   `json:"dest,omitempty"`
	Title       string            `json:"title,omitempty"`
	Description string            `json:"description,omitempty"`
	Priority    domain.Priority   `json:"priority,omitempty"`
	DueDate     string            `json:"dueDate,omitempty"`
	Tags        []string          `json:"tags,omitempty"`
	Patch       *domain.TaskPatch `json:"patch,omitempty"`
}

func wireAction(act domain.Action) *actionWire {
	switch a := act.(type) {
	case domain.CreateAction:
		return &actionWire{
			Type:        "create",
			ColumnID:    a.ColumnID,
			Title:       a.Title,
			Description: a.Description,
			Priority:    a.Priority,
			DueDate:     a.DueDate,
			Tags:        a.Tags,
		}
	case domain.UpdateAction:
		p := a.Patch
		return &actionWire{Type: "update", TaskID: a.TaskID, Patch: &p}
	case domain.DeleteAction:
		return &actionWire{Type: "delete", TaskID: a.TaskID}
	case domain.MoveAction:
		return &actionWire{Type: "move", TaskID: a.TaskID, Source: a.Source, Dest: a.Dest}
	}
	return nil
}

func actionKind(act domain.Action) string {
	if w := wireAction(act); w != nil {
		return w.Type
	}
	return ""
}

// applyAction translates an assistant action into store mutations. Chat moves
// land at the end of the destination column; drag-and-drop is the only way to
// pick an exact position.
func applyAction(store BoardStore, act domain.Action) {
	switch a := act.(type) {
	case domain.CreateAction:
		store.Create(a.ColumnID, a.Title, a.Description, a.Priority, a.DueDate, a.Tags)
	case domain.UpdateAction:
		store.Update(a.TaskID, a.Patch)
	case domain.DeleteAction:
		store.Delete(a.TaskID)
	case domain.MoveAction:
		dest := store.Board().Columns[a.Dest]
		store.Move(a.TaskID, a.Source, a.Dest, len(dest.TaskIDs))
	}
}

func healthz() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}
}

func getBoard(store BoardStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, boardState(store))
	}
}

func postChat(store BoardStore, assistant Assistant, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		metrics := newChatRequestMetrics(logger)
		defer func() {
			metrics.Log(c.Response().Status, err)
		}()

		lr := io.LimitReader(c.Request().Body, postChatMaxSize)
		dec := sonic.ConfigStd.NewDecoder(lr)
		dec.DisallowUnknownFields()

		var req chatRequest
		if decodeErr := dec.Decode(&req); decodeErr != nil {
			metrics.SetErrorStage("decode")
			err = c.String(http.StatusBadRequest, "invalid body")
			return err
		}
		if strings.TrimSpace(req.Message) == "" {
			metrics.SetErrorStage("empty_message")
			err = c.String(http.StatusBadRequest, "message is required")
			return err
		}
		metrics.SetMessageLength(len(req.Message))

		processStart := time.Now()
		reply := assistant.Process(req.Message, store.Board())
		metrics.ObserveProcess(time.Since(processStart))

		if reply.Action != nil {
			applyStart := time.Now()
			applyAction(store, reply.Action)
			metrics.ObserveApply(time.Since(applyStart))
			metrics.SetActionKind(actionKind(reply.Action))
		}

		resp := chatResponse{
			ID:            uuid.NewString(),
			Timestamp:     nextTimestamp(),
			Text:          reply.Text,
			Action:        wireAction(reply.Action),
			boardResponse: boardState(store),
		}
		err = c.JSON(http.StatusOK, resp)
		if err != nil {
			metrics.SetErrorStage("encode_response")
		}
		return err
	}
}

type moveRequest struct {
	TaskID    string          `json:"taskId"`
	Source    domain.ColumnID `json:"source"`
	Dest      domain.ColumnID `json:"dest"`
	DestIndex int             `json:"destIndex"`
}

func postMove(store BoardStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		lr := io.LimitReader(c.Request().Body, postMoveMaxSize)
		dec := sonic.ConfigStd.NewDecoder(lr)
		dec.DisallowUnknownFields()

		var req moveRequest
		if err := dec.Decode(&req); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}
		if req.TaskID == "" || !domain.ValidColumn(req.Source) || !domain.ValidColumn(req.Dest) {
			return c.String(http.StatusBadRequest, "invalid move")
		}
		if _, ok := store.Board().Tasks[req.TaskID]; !ok {
			return c.String(http.StatusNotFound, "task not found")
		}

		store.Move(req.TaskID, req.Source, req.Dest, req.DestIndex)
		return c.JSON(http.StatusOK, boardState(store))
	}
}

type historyResponse struct {
	Applied bool `json:"applied"`
	boardResponse
}

func postUndo(store BoardStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		applied := store.Undo()
		return c.JSON(http.StatusOK, historyResponse{Applied: applied, boardResponse: boardState(store)})
	}
}

func postRedo(store BoardStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		applied := store.Redo()
		return c.JSON(http.StatusOK, historyResponse{Applied: applied, boardResponse: boardState(store)})
	}
}

func postReset(store BoardStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		store.Reset()
		return c.JSON(http.StatusOK, boardState(store))
	}
}

func postClear(store BoardStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		store.Clear()
		return c.JSON(http.StatusOK, boardState(store))
	}
}
