package storage

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/iwebix/webixbot/core/logger"
)

// CouponStore persists the optional discount code a user has earned. Codes
// have no expiry and are never cleared on use; the flow reads them at
// price-total time only.
type CouponStore struct {
	db *sqlx.DB
}

// NewCouponStore wraps the shared database handle.
func NewCouponStore(db *sqlx.DB) *CouponStore {
	return &CouponStore{db: db}
}

// Code returns the user's coupon code. Absence (no row, or a row without a
// code) is reported via the bool.
func (s *CouponStore) Code(ctx context.Context, userID int64) (string, bool, error) {
	var code sql.NullString
	err := s.db.GetContext(ctx, &code,
		`SELECT coupon_code FROM bot_users WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, wrap("coupon get", err)
	}
	if !code.Valid || code.String == "" {
		return "", false, nil
	}
	return code.String, true, nil
}

// Award stores a coupon code for the user, replacing any previous one.
func (s *CouponStore) Award(ctx context.Context, userID int64, code string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO bot_users (user_id, coupon_code) VALUES ($1, $2)
		 ON CONFLICT (user_id) DO UPDATE SET coupon_code = EXCLUDED.coupon_code`,
		userID, code)
	if err != nil {
		return wrap("coupon award", err)
	}
	logger.Info(ctx, "service.coupons", "coupon.awarded",
		slog.String("status", "ok"),
		slog.Int64("user_id", userID),
	)
	return nil
}
