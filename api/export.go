package api

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

var exportHeader = []string{"column", "title", "description", "priority", "dueDate", "tags", "createdAt", "completedAt"}

// exportBoard streams the board as CSV, one row per task, columns in board
// order. Tags are joined with ";" so the list survives the comma-separated
// container.
func exportBoard(store BoardStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		b := store.Board()

		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		if err := w.Write(exportHeader); err != nil {
			return c.String(http.StatusInternalServerError, err.Error())
		}
		for _, colID := range b.ColumnOrder {
			for _, id := range b.Columns[colID].TaskIDs {
				t, ok := b.Tasks[id]
				if !ok {
					continue
				}
				completed := ""
				if t.CompletedAt != nil {
					completed = t.CompletedAt.UTC().Format(time.RFC3339)
				}
				row := []string{
					string(colID),
					t.Title,
					t.Description,
					string(t.Priority),
					t.DueDate,
					strings.Join(t.Tags, ";"),
					t.CreatedAt.UTC().Format(time.RFC3339),
					completed,
				}
				if err := w.Write(row); err != nil {
					return c.String(http.StatusInternalServerError, err.Error())
				}
			}
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return c.String(http.StatusInternalServerError, err.Error())
		}

		c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="board.csv"`)
		return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
	}
}
