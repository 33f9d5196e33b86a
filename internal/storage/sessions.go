package storage

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/iwebix/webixbot/core/logger"
	"github.com/iwebix/webixbot/internal/wizard"
)

type sessionRow struct {
	UserID   int64          `db:"user_id"`
	Step     int            `db:"step"`
	Category sql.NullString `db:"category"`
	Template sql.NullString `db:"template"`
	Modules  pq.StringArray `db:"modules"`
	Support  sql.NullString `db:"support"`
}

// SessionStore persists one wizard session row per user.
type SessionStore struct {
	db *sqlx.DB
}

// NewSessionStore wraps the shared database handle.
func NewSessionStore(db *sqlx.DB) *SessionStore {
	return &SessionStore{db: db}
}

// Get loads the session for a user. Absence is reported via the bool.
func (s *SessionStore) Get(ctx context.Context, userID int64) (wizard.Session, bool, error) {
	var row sessionRow
	err := s.db.GetContext(ctx, &row,
		`SELECT user_id, step, category, template, modules, support
		   FROM calc_sessions WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return wizard.Session{}, false, nil
	}
	if err != nil {
		return wizard.Session{}, false, wrap("session get", err)
	}
	return wizard.Session{
		UserID:   row.UserID,
		Step:     wizard.Step(row.Step),
		Category: row.Category.String,
		Template: row.Template.String,
		Modules:  append([]string(nil), row.Modules...),
		Support:  row.Support.String,
	}, true, nil
}

// Put inserts or fully replaces the session row for the user.
func (s *SessionStore) Put(ctx context.Context, sess wizard.Session) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO calc_sessions (user_id, step, category, template, modules, support)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (user_id) DO UPDATE SET
		   step = EXCLUDED.step,
		   category = EXCLUDED.category,
		   template = EXCLUDED.template,
		   modules = EXCLUDED.modules,
		   support = EXCLUDED.support`,
		sess.UserID, int(sess.Step),
		nullable(sess.Category), nullable(sess.Template),
		pq.StringArray(sess.Modules), nullable(sess.Support))
	if err != nil {
		return wrap("session put", err)
	}
	logger.Debug(ctx, "service.sessions", "session.put",
		slog.String("status", "ok"),
		slog.Int64("user_id", sess.UserID),
		slog.Int("step", int(sess.Step)),
	)
	return nil
}

// Delete removes the session row; deleting an absent row is not an error.
func (s *SessionStore) Delete(ctx context.Context, userID int64) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM calc_sessions WHERE user_id = $1`, userID)
	return wrap("session delete", err)
}

func nullable(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}
