// Package store archives completed runs so they can be fetched again by ID.
// Archiving is best-effort at the HTTP boundary: a storage failure never
// fails the run that produced the result.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/errandlabs/errand/config"
	"github.com/errandlabs/errand/internal/agent/core"
)

// ErrNotFound reports that no archived run exists for the requested ID.
var ErrNotFound = errors.New("run not found")

// Storage persists and retrieves run results.
type Storage interface {
	SaveRun(ctx context.Context, result core.Result) error
	GetRun(ctx context.Context, id string) (core.Result, error)
	Close() error
}

// New selects the archive backend from configuration. Backend "none" (or
// empty) disables archiving entirely.
func New(cfg config.StorageConfig) (Storage, error) {
	switch cfg.Backend {
	case "", "none":
		return nil, nil
	case "postgres":
		return NewPostgresStore(cfg.Postgres)
	case "redis":
		return NewRedisStore(cfg.Redis), nil
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.Backend)
	}
}

// PostgresStore archives runs in a single table, upserting on ID.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore connects and ensures the schema exists.
func NewPostgresStore(cfg config.PostgresConfig) (*PostgresStore, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	s := &PostgresStore{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

// newPostgresStoreWithDB wires a pre-opened connection; tests use it with a
// mock driver.
func newPostgresStoreWithDB(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    query TEXT NOT NULL,
    response TEXT,
    steps JSONB,
    processing_time BIGINT,
    tokens_used BIGINT,
    cost_estimate DOUBLE PRECISION,
    created_at TIMESTAMPTZ DEFAULT NOW()
);
`)
	return err
}

func (s *PostgresStore) SaveRun(ctx context.Context, result core.Result) error {
	steps, err := json.Marshal(result.Steps)
	if err != nil {
		return fmt.Errorf("marshal steps: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO runs (id, query, response, steps, processing_time, tokens_used, cost_estimate, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO UPDATE SET
  query = EXCLUDED.query,
  response = EXCLUDED.response,
  steps = EXCLUDED.steps,
  processing_time = EXCLUDED.processing_time,
  tokens_used = EXCLUDED.tokens_used,
  cost_estimate = EXCLUDED.cost_estimate;
`,
		result.ID, result.Query, result.Response, steps,
		int64(result.ProcessingTime), result.TokensUsed, result.CostEstimate, result.CreatedAt,
	)
	return err
}

func (s *PostgresStore) GetRun(ctx context.Context, id string) (core.Result, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, query, response, steps, processing_time, tokens_used, cost_estimate, created_at
FROM runs WHERE id = $1`, id)

	var (
		res      core.Result
		steps    []byte
		procTime int64
	)
	err := row.Scan(&res.ID, &res.Query, &res.Response, &steps, &procTime, &res.TokensUsed, &res.CostEstimate, &res.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Result{}, ErrNotFound
	}
	if err != nil {
		return core.Result{}, err
	}
	res.ProcessingTime = time.Duration(procTime)
	if len(steps) > 0 {
		if err := json.Unmarshal(steps, &res.Steps); err != nil {
			return core.Result{}, fmt.Errorf("unmarshal steps: %w", err)
		}
	}
	return res, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// RedisStore archives runs as JSON values with a TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to Redis. The connection is verified lazily on
// first use.
func NewRedisStore(cfg config.RedisConfig) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Host + ":" + cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &RedisStore{client: client, ttl: ttl}
}

func runKey(id string) string { return "errand:run:" + id }

func (s *RedisStore) SaveRun(ctx context.Context, result core.Result) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal run: %w", err)
	}
	return s.client.Set(ctx, runKey(result.ID), data, s.ttl).Err()
}

func (s *RedisStore) GetRun(ctx context.Context, id string) (core.Result, error) {
	data, err := s.client.Get(ctx, runKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return core.Result{}, ErrNotFound
	}
	if err != nil {
		return core.Result{}, err
	}
	var res core.Result
	if err := json.Unmarshal(data, &res); err != nil {
		return core.Result{}, fmt.Errorf("unmarshal run: %w", err)
	}
	return res, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
