// Package redis mirrors persisted totals and ranks into Redis so other
// services can read the leaderboard without touching the primary store.
//
// Layout under the configured prefix:
//
//	<prefix>scores   sorted set, member = actor id, score = total points
//	<prefix>ranks    hash, actor id -> competition rank
//	<prefix>meta     JSON {updatedAt, actors}
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/okian/leaderboard/internal/domain/model"
)

// ErrConnection is returned when the server cannot be reached on startup.
var ErrConnection = errors.New("redis connection failed")

// Meta describes the last published snapshot.
type Meta struct {
	UpdatedAt time.Time `json:"updatedAt"`
	Actors    int       `json:"actors"`
}

// Standing is one mirrored leaderboard row.
type Standing struct {
	ActorID string
	Total   int64
	Rank    int
}

// RankMirror publishes and reads mirrored standings.
type RankMirror struct {
	client *goredis.Client
	prefix string
	ttl    time.Duration
}

// Option configures a RankMirror.
type Option func(*RankMirror)

// WithKeyPrefix namespaces every key.
func WithKeyPrefix(prefix string) Option {
	return func(m *RankMirror) {
		m.prefix = prefix
	}
}

// WithTTL expires mirrored keys after d. Zero keeps them forever.
func WithTTL(d time.Duration) Option {
	return func(m *RankMirror) {
		if d >= 0 {
			m.ttl = d
		}
	}
}

// Dial connects to addr and verifies the connection.
func Dial(ctx context.Context, addr string, opts ...Option) (*RankMirror, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	return New(client, opts...), nil
}

// New wraps an existing client.
func New(client *goredis.Client, opts ...Option) *RankMirror {
	m := &RankMirror{client: client, prefix: "leaderboard:"}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Close closes the underlying client.
func (m *RankMirror) Close() error {
	return m.client.Close()
}

func (m *RankMirror) scoresKey() string { return m.prefix + "scores" }
func (m *RankMirror) ranksKey() string  { return m.prefix + "ranks" }
func (m *RankMirror) metaKey() string   { return m.prefix + "meta" }

// Publish atomically replaces the mirrored standings with actors.
// Actors without a rank are mirrored with rank 0.
func (m *RankMirror) Publish(ctx context.Context, actors []model.Actor) error {
	members, ranks := toRedis(actors)
	meta, err := json.Marshal(Meta{UpdatedAt: time.Now().UTC(), Actors: len(actors)})
	if err != nil {
		return fmt.Errorf("encode meta: %w", err)
	}

	_, err = m.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Del(ctx, m.scoresKey(), m.ranksKey())
		if len(members) > 0 {
			pipe.ZAdd(ctx, m.scoresKey(), members...)
			pipe.HSet(ctx, m.ranksKey(), ranks)
		}
		pipe.Set(ctx, m.metaKey(), meta, m.ttl)
		if m.ttl > 0 && len(members) > 0 {
			pipe.Expire(ctx, m.scoresKey(), m.ttl)
			pipe.Expire(ctx, m.ranksKey(), m.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("publish ranks: %w", err)
	}
	return nil
}

// Top returns up to n standings ordered by total descending.
func (m *RankMirror) Top(ctx context.Context, n int) ([]Standing, error) {
	if n <= 0 {
		return nil, nil
	}
	zs, err := m.client.ZRevRangeWithScores(ctx, m.scoresKey(), 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("read scores: %w", err)
	}
	if len(zs) == 0 {
		return nil, nil
	}

	ids := make([]string, len(zs))
	for i, z := range zs {
		ids[i], _ = z.Member.(string)
	}
	rawRanks, err := m.client.HMGet(ctx, m.ranksKey(), ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("read ranks: %w", err)
	}

	out := make([]Standing, len(zs))
	for i, z := range zs {
		out[i] = Standing{ActorID: ids[i], Total: int64(z.Score), Rank: parseRank(rawRanks[i])}
	}
	return out, nil
}

// LastMeta returns the metadata of the last publication; ok is false if none.
func (m *RankMirror) LastMeta(ctx context.Context) (meta Meta, ok bool, err error) {
	raw, err := m.client.Get(ctx, m.metaKey()).Bytes()
	if errors.Is(err, goredis.Nil) {
		return Meta{}, false, nil
	}
	if err != nil {
		return Meta{}, false, fmt.Errorf("read meta: %w", err)
	}
	if err := json.Unmarshal(raw, &meta); err != nil {
		return Meta{}, false, fmt.Errorf("decode meta: %w", err)
	}
	return meta, true, nil
}

func toRedis(actors []model.Actor) ([]goredis.Z, map[string]any) {
	members := make([]goredis.Z, 0, len(actors))
	ranks := make(map[string]any, len(actors))
	for _, a := range actors {
		if a.ID == "" {
			continue
		}
		members = append(members, goredis.Z{Score: float64(a.TotalPoints), Member: a.ID})
		rank := 0
		if a.Rank != nil {
			rank = *a.Rank
		}
		ranks[a.ID] = rank
	}
	return members, ranks
}

func parseRank(v any) int {
	s, ok := v.(string)
	if !ok {
		return 0
	}
	r, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return r
}
