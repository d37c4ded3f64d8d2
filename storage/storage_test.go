package storage

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"boardbot/domain"
)

func newTestStorage(t *testing.T) (*Storage, *miniredis.Miniredis) {
	t.Helper()
	m, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(m.Close)

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	t.Cleanup(func() {
		if cerr := client.Close(); cerr != nil {
			t.Logf("redis close: %v", cerr)
		}
	})
	return New(client, "board:test", log.New()), m
}

func TestSaveLoadRoundTrip(t *testing.T) {
	st, _ := newTestStorage(t)
	ctx := context.Background()

	b := domain.NewSeedBoard(time.Now())
	var someID string
	for id := range b.Tasks {
		someID = id
		break
	}

	if err := st.Save(ctx, b); err != nil {
		t.Fatalf("save: %v", err)
	}
	got := st.Load(ctx)
	if !got.Consistent() {
		t.Fatalf("loaded board inconsistent: %#v", got)
	}
	if len(got.Tasks) != len(b.Tasks) {
		t.Fatalf("expected %d tasks, got %d", len(b.Tasks), len(got.Tasks))
	}
	if _, ok := got.Tasks[someID]; !ok {
		t.Fatalf("task %s missing after round trip", someID)
	}
}

func TestLoadMissingKeyFallsBackToSeed(t *testing.T) {
	st, _ := newTestStorage(t)

	got := st.Load(context.Background())
	if got == nil || !got.Consistent() {
		t.Fatalf("expected a consistent seed board, got %#v", got)
	}
	if len(got.Tasks) == 0 {
		t.Fatal("seed board has no tasks")
	}
}

func TestLoadCorruptBlobFallsBackToSeed(t *testing.T) {
	cases := map[string]string{
		"garbage":      "{not json at all",
		"wrong shape":  `{"tasks": 42}`,
		"inconsistent": `{"tasks":{},"columns":{"todo":{"id":"todo","title":"To Do","taskIds":["ghost"]}},"columnOrder":["todo","in-progress","done"]}`,
	}
	for name, blob := range cases {
		t.Run(name, func(t *testing.T) {
			st, m := newTestStorage(t)
			if err := m.Set("board:test", blob); err != nil {
				t.Fatalf("seed redis: %v", err)
			}
			got := st.Load(context.Background())
			if got == nil || !got.Consistent() {
				t.Fatalf("expected seed fallback, got %#v", got)
			}
		})
	}
}

func TestSaveOverwrites(t *testing.T) {
	st, _ := newTestStorage(t)
	ctx := context.Background()

	first := domain.NewSeedBoard(time.Now())
	if err := st.Save(ctx, first); err != nil {
		t.Fatalf("save first: %v", err)
	}
	second := domain.NewEmptyBoard()
	if err := st.Save(ctx, second); err != nil {
		t.Fatalf("save second: %v", err)
	}
	got := st.Load(ctx)
	if len(got.Tasks) != 0 {
		t.Fatalf("expected empty board after overwrite, got %d tasks", len(got.Tasks))
	}
}
