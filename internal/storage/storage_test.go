package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iwebix/webixbot/internal/wizard"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestSessionStore_GetAbsent(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewSessionStore(db)

	mock.ExpectQuery(`SELECT user_id, step, category, template, modules, support`).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "step", "category", "template", "modules", "support"}))

	_, ok, err := store.Get(context.Background(), 42)
	require.NoError(t, err, "a missing row is not an error")
	assert.False(t, ok)
}

func TestSessionStore_GetPresent(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewSessionStore(db)

	mock.ExpectQuery(`SELECT user_id, step, category, template, modules, support`).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.
			NewRows([]string{"user_id", "step", "category", "template", "modules", "support"}).
			AddRow(int64(42), 3, "services", "infobot", "{calendar,payments}", nil))

	s, ok, err := store.Get(context.Background(), 42)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, wizard.Session{
		UserID:   42,
		Step:     wizard.StepModules,
		Category: "services",
		Template: "infobot",
		Modules:  []string{"calendar", "payments"},
	}, s)
}

func TestSessionStore_PutUpserts(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewSessionStore(db)

	mock.ExpectExec(`INSERT INTO calc_sessions .+ ON CONFLICT \(user_id\) DO UPDATE`).
		WithArgs(int64(42), 3, "services", "infobot", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.Put(context.Background(), wizard.Session{
		UserID:   42,
		Step:     wizard.StepModules,
		Category: "services",
		Template: "infobot",
		Modules:  []string{"calendar"},
	})
	require.NoError(t, err)
}

func TestSessionStore_FailureWrapped(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewSessionStore(db)
	boom := errors.New("connection reset")

	mock.ExpectExec(`DELETE FROM calc_sessions`).
		WithArgs(int64(42)).
		WillReturnError(boom)

	err := store.Delete(context.Background(), 42)
	var pe *PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "PERSISTENCE_ERROR", pe.Code())
	assert.ErrorIs(t, err, boom)
}

func TestCouponStore_Code(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewCouponStore(db)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT coupon_code FROM bot_users`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"coupon_code"}))
	_, ok, err := store.Code(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok, "no row means no coupon")

	mock.ExpectQuery(`SELECT coupon_code FROM bot_users`).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"coupon_code"}).AddRow(nil))
	_, ok, err = store.Code(ctx, 2)
	require.NoError(t, err)
	assert.False(t, ok, "a row without a code means no coupon")

	mock.ExpectQuery(`SELECT coupon_code FROM bot_users`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"coupon_code"}).AddRow("QUIZ5"))
	code, ok, err := store.Code(ctx, 3)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "QUIZ5", code)
}

func TestCouponStore_Award(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewCouponStore(db)

	mock.ExpectExec(`INSERT INTO bot_users .+ ON CONFLICT \(user_id\) DO UPDATE`).
		WithArgs(int64(1), "QUIZ5").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Award(context.Background(), 1, "QUIZ5"))
}

func TestQuoteStore_Record(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewQuoteStore(db)

	mock.ExpectExec(`INSERT INTO calc_quotes`).
		WithArgs(sqlmock.AnyArg(), int64(7), "infobot", sqlmock.AnyArg(), "support_6",
			35000, 1750, "QUIZ5", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.Record(context.Background(), wizard.QuoteRecord{
		UserID:   7,
		Template: "infobot",
		Modules:  []string{"calendar", "payments"},
		Support:  "support_6",
		Total:    35000,
		Discount: 1750,
		Coupon:   "QUIZ5",
	})
	require.NoError(t, err)
}

func TestQuoteStore_Recent(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewQuoteStore(db)

	mock.ExpectQuery(`SELECT id, user_id, template, modules, support, total, discount, coupon, created_at`).
		WithArgs(10).
		WillReturnRows(sqlmock.
			NewRows([]string{"id", "user_id", "template", "modules", "support", "total", "discount", "coupon", "created_at"}).
			AddRow("3f1f9a2c-8df1-4b56-9f7b-5b1f2a3c4d5e", int64(7), "infobot", "{calendar}", "support_6", 28000, 0, nil, time.Now().UTC()))

	// Passing a zero limit falls back to the default window.
	rows, err := store.Recent(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "infobot", rows[0].Template)
	assert.Equal(t, []string{"calendar"}, []string(rows[0].Modules))
	assert.False(t, rows[0].Coupon.Valid)
}
