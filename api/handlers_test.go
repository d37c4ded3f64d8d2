package api

import (
	"encoding/csv"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"boardbot/board"
	"boardbot/chat"
	"boardbot/domain"
)

type scriptedAssistant struct {
	reply chat.Reply
	last  string
}

func (s *scriptedAssistant) Process(message string, _ *domain.Board) chat.Reply {
	s.last = message
	return s.reply
}

func newTestServer(assistant Assistant) (*echo.Echo, *board.Store) {
	e := echo.New()
	store := board.New(domain.NewEmptyBoard(), board.Config{})
	logger := log.New()
	logger.SetOutput(io.Discard)
	Register(e, store, assistant, logger)
	return e, store
}

func do(t *testing.T, e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

type boardPayload struct {
	Board   *domain.Board `json:"board"`
	CanUndo bool          `json:"canUndo"`
	CanRedo bool          `json:"canRedo"`
}

type chatPayload struct {
	ID        string        `json:"id"`
	Timestamp int64         `json:"timestamp"`
	Text      string        `json:"text"`
	Action    *actionWire   `json:"action"`
	Board     *domain.Board `json:"board"`
	CanUndo   bool          `json:"canUndo"`
	CanRedo   bool          `json:"canRedo"`
}

type historyPayload struct {
	Applied bool          `json:"applied"`
	Board   *domain.Board `json:"board"`
	CanUndo bool          `json:"canUndo"`
	CanRedo bool          `json:"canRedo"`
}

func decodeInto(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := sonic.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response: %v (body %s)", err, rec.Body.String())
	}
}

func TestGetBoard(t *testing.T) {
	e, store := newTestServer(&scriptedAssistant{})
	store.Create(domain.ColumnTodo, "first", "", "", "", nil)

	rec := do(t, e, http.MethodGet, "/api/board", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var p boardPayload
	decodeInto(t, rec, &p)
	if len(p.Board.Tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(p.Board.Tasks))
	}
	if !p.CanUndo || p.CanRedo {
		t.Fatalf("history flags wrong: undo=%v redo=%v", p.CanUndo, p.CanRedo)
	}
}

func TestPostChatAppliesAction(t *testing.T) {
	assistant := &scriptedAssistant{reply: chat.Reply{
		Text: `Created "Ship it" in To Do with medium priority.`,
		Action: domain.CreateAction{
			ColumnID: domain.ColumnTodo,
			Title:    "Ship it",
			Priority: domain.PriorityMedium,
			DueDate:  "2026-09-01",
			Tags:     []string{"release"},
		},
	}}
	e, store := newTestServer(assistant)

	rec := do(t, e, http.MethodPost, "/api/chat", `{"message":"create a task called Ship it"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	var p chatPayload
	decodeInto(t, rec, &p)
	if p.ID == "" || p.Timestamp == 0 {
		t.Fatalf("missing reply identity: %+v", p)
	}
	if p.Action == nil || p.Action.Type != "create" || p.Action.Title != "Ship it" {
		t.Fatalf("action = %+v", p.Action)
	}
	if p.Action.Priority != domain.PriorityMedium || p.Action.DueDate != "2026-09-01" {
		t.Fatalf("action drops create fields: %+v", p.Action)
	}
	if len(p.Action.Tags) != 1 || p.Action.Tags[0] != "release" {
		t.Fatalf("action tags = %v", p.Action.Tags)
	}
	if len(p.Board.Tasks) != 1 {
		t.Fatalf("response board should reflect the mutation, got %d tasks", len(p.Board.Tasks))
	}
	if len(store.Board().Tasks) != 1 {
		t.Fatal("store not mutated")
	}
	if assistant.last != "create a task called Ship it" {
		t.Fatalf("assistant saw %q", assistant.last)
	}
}

func TestPostChatInformationalReply(t *testing.T) {
	assistant := &scriptedAssistant{reply: chat.Reply{Text: "Hi!"}}
	e, store := newTestServer(assistant)

	rec := do(t, e, http.MethodPost, "/api/chat", `{"message":"hello"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var p chatPayload
	decodeInto(t, rec, &p)
	if p.Action != nil {
		t.Fatalf("no action expected, got %+v", p.Action)
	}
	if len(store.Board().Tasks) != 0 || store.CanUndo() {
		t.Fatal("informational reply must not mutate the board")
	}
}

func TestPostChatRejectsEmptyMessage(t *testing.T) {
	e, _ := newTestServer(&scriptedAssistant{})
	rec := do(t, e, http.MethodPost, "/api/chat", `{"message":"   "}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestPostChatRejectsUnknownFields(t *testing.T) {
	e, _ := newTestServer(&scriptedAssistant{})
	rec := do(t, e, http.MethodPost, "/api/chat", `{"message":"hi","extra":true}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestPostChatWithRealAssistant(t *testing.T) {
	e := echo.New()
	store := board.New(domain.NewEmptyBoard(), board.Config{})
	logger := log.New()
	logger.SetOutput(io.Discard)
	Register(e, store, chat.NewEngine(), logger)

	rec := do(t, e, http.MethodPost, "/api/chat", `{"message":"create a task called Write release notes"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	tasks := store.Board().TaskList()
	if len(tasks) != 1 || tasks[0].Title != "Write release notes" {
		t.Fatalf("unexpected board state: %+v", tasks)
	}
}

func TestPostMove(t *testing.T) {
	e, store := newTestServer(&scriptedAssistant{})
	id := store.Create(domain.ColumnTodo, "movable", "", "", "", nil)

	rec := do(t, e, http.MethodPost, "/api/board/move",
		`{"taskId":"`+id+`","source":"todo","dest":"done","destIndex":0}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	var p boardPayload
	decodeInto(t, rec, &p)
	task := p.Board.Tasks[id]
	if task.ColumnID != domain.ColumnDone {
		t.Fatalf("task column = %s", task.ColumnID)
	}
	if task.CompletedAt == nil {
		t.Fatal("completedAt not stamped by the move")
	}
}

func TestPostMoveValidation(t *testing.T) {
	e, store := newTestServer(&scriptedAssistant{})
	id := store.Create(domain.ColumnTodo, "movable", "", "", "", nil)

	cases := map[string]struct {
		body string
		want int
	}{
		"bad json":      {`{`, http.StatusBadRequest},
		"unknown field": {`{"taskId":"` + id + `","source":"todo","dest":"done","destIndex":0,"x":1}`, http.StatusBadRequest},
		"missing id":    {`{"source":"todo","dest":"done","destIndex":0}`, http.StatusBadRequest},
		"bad column":    {`{"taskId":"` + id + `","source":"todo","dest":"archive","destIndex":0}`, http.StatusBadRequest},
		"unknown task":  {`{"taskId":"nope","source":"todo","dest":"done","destIndex":0}`, http.StatusNotFound},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			rec := do(t, e, http.MethodPost, "/api/board/move", tc.body)
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestUndoRedoEndpoints(t *testing.T) {
	e, store := newTestServer(&scriptedAssistant{})
	store.Create(domain.ColumnTodo, "only", "", "", "", nil)

	rec := do(t, e, http.MethodPost, "/api/board/undo", "")
	var p historyPayload
	decodeInto(t, rec, &p)
	if !p.Applied || len(p.Board.Tasks) != 0 || !p.CanRedo {
		t.Fatalf("undo payload wrong: %+v", p)
	}

	rec = do(t, e, http.MethodPost, "/api/board/redo", "")
	decodeInto(t, rec, &p)
	if !p.Applied || len(p.Board.Tasks) != 1 {
		t.Fatalf("redo payload wrong: %+v", p)
	}

	rec = do(t, e, http.MethodPost, "/api/board/redo", "")
	decodeInto(t, rec, &p)
	if p.Applied {
		t.Fatal("redo with empty stack should report applied=false")
	}
}

func TestResetAndClearEndpoints(t *testing.T) {
	e, _ := newTestServer(&scriptedAssistant{})

	rec := do(t, e, http.MethodPost, "/api/board/reset", "")
	var p boardPayload
	decodeInto(t, rec, &p)
	if len(p.Board.Tasks) == 0 {
		t.Fatal("reset should seed starter tasks")
	}

	rec = do(t, e, http.MethodPost, "/api/board/clear", "")
	var cleared boardPayload
	decodeInto(t, rec, &cleared)
	if len(cleared.Board.Tasks) != 0 {
		t.Fatalf("clear left %d tasks", len(cleared.Board.Tasks))
	}
}

func TestExportCSV(t *testing.T) {
	e, store := newTestServer(&scriptedAssistant{})
	store.Create(domain.ColumnTodo, "write docs", "for the api", domain.PriorityHigh, "2026-09-01", []string{"docs", "api"})
	store.Create(domain.ColumnDone, "ship it", "", "", "", nil)

	rec := do(t, e, http.MethodGet, "/api/export", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); !strings.Contains(ct, "text/csv") {
		t.Fatalf("content type = %q", ct)
	}

	rows, err := csv.NewReader(strings.NewReader(rec.Body.String())).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "column" || rows[0][1] != "title" {
		t.Fatalf("unexpected header: %v", rows[0])
	}
	if rows[1][1] != "write docs" || rows[1][5] != "docs;api" {
		t.Fatalf("unexpected first row: %v", rows[1])
	}
	if rows[2][0] != "done" || rows[2][7] == "" {
		t.Fatalf("done row should carry completedAt: %v", rows[2])
	}
}

func TestHealthz(t *testing.T) {
	e, _ := newTestServer(&scriptedAssistant{})
	rec := do(t, e, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}
