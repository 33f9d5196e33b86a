package storage

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/iwebix/webixbot/core/logger"
	"github.com/iwebix/webixbot/internal/wizard"
)

// QuoteRow is a recorded completed calculation.
type QuoteRow struct {
	ID        uuid.UUID      `db:"id"`
	UserID    int64          `db:"user_id"`
	Template  string         `db:"template"`
	Modules   pq.StringArray `db:"modules"`
	Support   string         `db:"support"`
	Total     int            `db:"total"`
	Discount  int            `db:"discount"`
	Coupon    sql.NullString `db:"coupon"`
	CreatedAt time.Time      `db:"created_at"`
}

// QuoteStore records completed calculations for follow-up by the owner.
type QuoteStore struct {
	db *sqlx.DB
}

// NewQuoteStore wraps the shared database handle.
func NewQuoteStore(db *sqlx.DB) *QuoteStore {
	return &QuoteStore{db: db}
}

// Record inserts a new quote row.
func (s *QuoteStore) Record(ctx context.Context, rec wizard.QuoteRecord) error {
	id := uuid.New()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO calc_quotes (id, user_id, template, modules, support, total, discount, coupon, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		id, rec.UserID, rec.Template, pq.StringArray(rec.Modules), rec.Support,
		rec.Total, rec.Discount, nullable(rec.Coupon), time.Now().UTC())
	if err != nil {
		return wrap("quote record", err)
	}
	logger.Debug(ctx, "service.quotes", "quote.recorded",
		slog.String("status", "ok"),
		slog.String("quote_id", id.String()),
		slog.Int64("user_id", rec.UserID),
		slog.Int("total", rec.Total),
	)
	return nil
}

// Recent returns the newest quotes, most recent first.
func (s *QuoteStore) Recent(ctx context.Context, limit int) ([]QuoteRow, error) {
	if limit <= 0 {
		limit = 10
	}
	var rows []QuoteRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT id, user_id, template, modules, support, total, discount, coupon, created_at
		   FROM calc_quotes ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, wrap("quote recent", err)
	}
	return rows, nil
}
