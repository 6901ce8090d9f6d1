package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"phishguard/internal/models"
)

const (
	historyTable      = "report_history"
	DefaultHistoryKey = "default"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresBackend keeps the history as a JSONB array in one row. Update
// locks that row with SELECT ... FOR UPDATE for the read-modify-write.
type PostgresBackend struct {
	Pool *pgxpool.Pool
	Key  string
}

func NewPostgresBackend(pool *pgxpool.Pool, key string) *PostgresBackend {
	if key == "" {
		key = DefaultHistoryKey
	}
	return &PostgresBackend{Pool: pool, Key: key}
}

type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (b *PostgresBackend) read(ctx context.Context, q queryRower, forUpdate bool) ([]models.Report, error) {
	sb := psql.Select("reports").From(historyTable).Where(sq.Eq{"key": b.Key})
	if forUpdate {
		sb = sb.Suffix("FOR UPDATE")
	}
	query, args, err := sb.ToSql()
	if err != nil {
		return nil, err
	}

	var data []byte
	err = q.QueryRow(ctx, query, args...).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select history: %w", err)
	}
	return decode(data)
}

func (b *PostgresBackend) Get(ctx context.Context) ([]models.Report, error) {
	return b.read(ctx, b.Pool, false)
}

func (b *PostgresBackend) Set(ctx context.Context, reports []models.Report) error {
	data, err := encode(reports)
	if err != nil {
		return err
	}

	query, args, err := psql.Insert(historyTable).
		Columns("key", "reports").
		Values(b.Key, json.RawMessage(data)).
		Suffix("ON CONFLICT (key) DO UPDATE SET reports = EXCLUDED.reports, updated_at = NOW()").
		ToSql()
	if err != nil {
		return err
	}
	if _, err := b.Pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert history: %w", err)
	}
	return nil
}

func (b *PostgresBackend) Update(ctx context.Context, fn UpdateFunc) error {
	tx, err := b.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	// Make sure there is a row to lock.
	ensure, args, err := psql.Insert(historyTable).
		Columns("key", "reports").
		Values(b.Key, json.RawMessage("[]")).
		Suffix("ON CONFLICT (key) DO NOTHING").
		ToSql()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, ensure, args...); err != nil {
		return fmt.Errorf("ensure history row: %w", err)
	}

	current, err := b.read(ctx, tx, true)
	if err != nil {
		return err
	}

	next, changed := fn(current)
	if !changed {
		return tx.Commit(ctx)
	}

	data, err := encode(next)
	if err != nil {
		return err
	}
	update, args, err := psql.Update(historyTable).
		Set("reports", json.RawMessage(data)).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"key": b.Key}).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, update, args...); err != nil {
		return fmt.Errorf("update history: %w", err)
	}
	return tx.Commit(ctx)
}
