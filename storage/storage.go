package storage

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"boardbot/domain"
)

// Storage persists the whole board as a single keyed blob in redis. The
// layout is schema-free: a missing or undecodable blob is replaced by a
// freshly seeded board, never surfaced as an error.
type Storage struct {
	client *redis.Client
	key    string
	logger *log.Logger
}

// New creates a Storage writing the board under the given key.
func New(client *redis.Client, key string, logger *log.Logger) *Storage {
	if client == nil {
		panic("storage.New: redis client is nil")
	}
	if key == "" {
		key = "board"
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Storage{client: client, key: key, logger: logger}
}

// Load returns the persisted board. Absent, unreadable or inconsistent
// blobs all fall back to a seed board; the caller never sees an error.
func (s *Storage) Load(ctx context.Context) *domain.Board {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.WithField("err", err).Warn("board read failed; starting from seed board")
		}
		return domain.NewSeedBoard(time.Now())
	}

	var b domain.Board
	if err := sonic.Unmarshal(data, &b); err != nil {
		s.logger.WithField("err", err).Warn("board blob undecodable; starting from seed board")
		return domain.NewSeedBoard(time.Now())
	}
	if !b.Consistent() {
		s.logger.Warn("board blob inconsistent; starting from seed board")
		return domain.NewSeedBoard(time.Now())
	}
	return &b
}

// Save writes the board blob. The key has no TTL; the board lives until the
// next Save overwrites it.
func (s *Storage) Save(ctx context.Context, b *domain.Board) error {
	data, err := sonic.Marshal(b)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key, data, 0).Err()
}
