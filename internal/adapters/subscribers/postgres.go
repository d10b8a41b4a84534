package subscribers

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"westport-blog/internal/domain"
	"westport-blog/internal/infra/metrics"
)

// Schema таблицы, с которыми работает PostgresStore.
const Schema = `
CREATE TABLE IF NOT EXISTS subscribers (
	email      TEXT PRIMARY KEY,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS unsubscribes (
	email      TEXT PRIMARY KEY,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

// PostgresStore хранит подписчиков и отписки в Postgres.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var (
	_ domain.SubscriberSource = (*PostgresStore)(nil)
	_ domain.Unsubscriber     = (*PostgresStore)(nil)
)

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (p *PostgresStore) connCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, 5*time.Second)
}

// EnsureSchema создаёт таблицы, если их нет.
func (p *PostgresStore) EnsureSchema(ctx context.Context) error {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()
	_, err := p.pool.Exec(ctx, Schema)
	return err
}

func (p *PostgresStore) Subscribers(ctx context.Context) ([]string, error) {
	emails, err := p.emails(ctx, "subscribers", `SELECT email FROM subscribers ORDER BY email`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSubscribersUnavailable, err)
	}
	return emails, nil
}

func (p *PostgresStore) Unsubscribed(ctx context.Context) ([]string, error) {
	return p.emails(ctx, "unsubscribes", `SELECT email FROM unsubscribes ORDER BY email`)
}

func (p *PostgresStore) Unsubscribe(ctx context.Context, email string) (err error) {
	start := time.Now()
	defer func() {
		metrics.ObserveNetworkRequest("postgres", "insert", "unsubscribes", start, err)
	}()
	ctx, cancel := p.connCtx(ctx)
	defer cancel()
	_, err = p.pool.Exec(ctx, `INSERT INTO unsubscribes (email) VALUES ($1) ON CONFLICT (email) DO NOTHING`, email)
	return err
}

func (p *PostgresStore) emails(ctx context.Context, table, query string) (out []string, err error) {
	start := time.Now()
	defer func() {
		metrics.ObserveNetworkRequest("postgres", "select", table, start, err)
	}()
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, err
		}
		out = append(out, email)
	}
	return out, rows.Err()
}
