package persist

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/sectoralphagame/sector-alpha-sub002/internal/config"
	"github.com/sectoralphagame/sector-alpha-sub002/internal/core/observability/log"
)

//go:embed migrations/*.sql
var migrations embed.FS

// ErrNoSnapshot is returned by Latest on an empty store.
var ErrNoSnapshot = errors.New("no snapshot stored")

// Store keeps world snapshots.
type Store interface {
	Save(ctx context.Context, s WorldSnapshot) error
	Latest(ctx context.Context) (WorldSnapshot, error)
	Close()
}

// PostgresStore keeps snapshots as JSONB rows.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger log.Log
}

// Open connects to the database, verifies the connection and applies pending
// migrations.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger log.Log) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to db: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if err := Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &PostgresStore{pool: pool, logger: logger}, nil
}

// Migrate applies every embedded migration not yet applied.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	goose.SetLogger(goose.NopLogger())
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() { s.pool.Close() }

func (s *PostgresStore) Save(ctx context.Context, snap WorldSnapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	start := time.Now()
	_, err = s.pool.Exec(ctx,
		`INSERT INTO world_snapshots (tick, entities, payload) VALUES ($1, $2, $3)`,
		snap.Tick, len(snap.Entities), payload,
	)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	s.logger.Debug("snapshot saved",
		log.Int64("tick", snap.Tick), log.Int("entities", len(snap.Entities)), log.Duration("took", time.Since(start)))
	return nil
}

func (s *PostgresStore) Latest(ctx context.Context) (WorldSnapshot, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT payload FROM world_snapshots ORDER BY tick DESC, id DESC LIMIT 1`,
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return WorldSnapshot{}, ErrNoSnapshot
	}
	if err != nil {
		return WorldSnapshot{}, fmt.Errorf("load snapshot: %w", err)
	}
	var snap WorldSnapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return WorldSnapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}

// Prune deletes all but the newest keep snapshots and returns how many rows
// were removed.
func (s *PostgresStore) Prune(ctx context.Context, keep int) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM world_snapshots WHERE id NOT IN (
		     SELECT id FROM world_snapshots ORDER BY tick DESC, id DESC LIMIT $1
		 )`, keep,
	)
	if err != nil {
		return 0, fmt.Errorf("prune snapshots: %w", err)
	}
	return tag.RowsAffected(), nil
}
