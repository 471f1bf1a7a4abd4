package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/minhvt/photobooth-backend/internal/model"
)

// SessionRepo persists session rows and the session_filters join
// table.  Status transitions are plain UPDATEs here; the legality of
// a transition is decided by the lifecycle coordinator, except for
// MarkExpired whose PENDING guard lives in SQL so the periodic sweep
// stays idempotent under races.
type SessionRepo struct{ DB *sql.DB }

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{DB: db} }

const sessionColumns = `id, status, user_id, photobooth_id, photo_count, max_photos,
 started_at, completed_at, expires_at, COALESCE(notes,''), created_at, updated_at`

func scanSession(row interface{ Scan(...any) error }) (model.Session, error) {
	var s model.Session
	err := row.Scan(&s.ID, &s.Status, &s.UserID, &s.PhotoboothID, &s.PhotoCount, &s.MaxPhotos,
		&s.StartedAt, &s.CompletedAt, &s.ExpiresAt, &s.Notes, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

// Create inserts a session row.  The caller supplies the id, status
// and expiry; timestamps default to now.
func (r *SessionRepo) Create(ctx context.Context, s *model.Session) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO sessions (id, status, user_id, photobooth_id, photo_count, max_photos,
		   expires_at, notes, created_at, updated_at)
		 VALUES (?,?,?,?,0,?,?,?,UTC_TIMESTAMP(),UTC_TIMESTAMP())`,
		s.ID, s.Status, s.UserID, s.PhotoboothID, s.MaxPhotos, s.ExpiresAt, s.Notes)
	return err
}

// Get fetches a session with its ordered filter list.
func (r *SessionRepo) Get(ctx context.Context, id string) (model.Session, error) {
	s, err := scanSession(r.DB.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE id=? LIMIT 1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Session{}, ErrSessionNotFound
	}
	if err != nil {
		return model.Session{}, err
	}
	s.FilterIDs, err = r.Filters(ctx, id)
	return s, err
}

// SetStarted moves a session to ACTIVE with the given start time.
func (r *SessionRepo) SetStarted(ctx context.Context, id string, at time.Time) error {
	return r.exec(ctx,
		`UPDATE sessions SET status='ACTIVE', started_at=?, updated_at=UTC_TIMESTAMP() WHERE id=?`,
		at, id)
}

// SetCompleted moves a session to COMPLETED with the given end time.
func (r *SessionRepo) SetCompleted(ctx context.Context, id string, at time.Time) error {
	return r.exec(ctx,
		`UPDATE sessions SET status='COMPLETED', completed_at=?, updated_at=UTC_TIMESTAMP() WHERE id=?`,
		at, id)
}

// SetCancelled moves a session to CANCELLED.
func (r *SessionRepo) SetCancelled(ctx context.Context, id string) error {
	return r.exec(ctx,
		`UPDATE sessions SET status='CANCELLED', updated_at=UTC_TIMESTAMP() WHERE id=?`, id)
}

// MarkExpired flips a session to EXPIRED only while it is still
// PENDING.  Returns whether this call performed the transition, so
// concurrent sweeps count each expiry once.
func (r *SessionRepo) MarkExpired(ctx context.Context, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE sessions SET status='EXPIRED', updated_at=UTC_TIMESTAMP()
		 WHERE id=? AND status='PENDING'`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// UpdateNotes stores admin-edited metadata on a session.
func (r *SessionRepo) UpdateNotes(ctx context.Context, id, notes string) error {
	return r.exec(ctx,
		`UPDATE sessions SET notes=?, updated_at=UTC_TIMESTAMP() WHERE id=?`, notes, id)
}

// Delete removes a session; photos go with it via FK cascade, filter
// links are removed explicitly.
func (r *SessionRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.DB.ExecContext(ctx,
		`DELETE FROM session_filters WHERE session_id=?`, id); err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, `DELETE FROM sessions WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// HasActive reports whether the user currently has an ACTIVE session.
func (r *SessionRepo) HasActive(ctx context.Context, userID string) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		`SELECT 1 FROM sessions WHERE user_id=? AND status='ACTIVE' LIMIT 1`,
		userID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// ExpiredPending returns PENDING sessions whose deadline has strictly
// passed.  The comparison is expires_at < now: a session is still
// startable at the exact deadline instant.
func (r *SessionRepo) ExpiredPending(ctx context.Context, now time.Time) ([]model.Session, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions
		 WHERE status='PENDING' AND expires_at IS NOT NULL AND expires_at < ?`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// AddFilter appends a filter to the session's ordered list.
func (r *SessionRepo) AddFilter(ctx context.Context, sessionID, filterID string) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO session_filters (session_id, filter_id, position)
		 SELECT ?, ?, COALESCE(MAX(position),0)+1 FROM session_filters WHERE session_id=?`,
		sessionID, filterID, sessionID)
	if err != nil && strings.Contains(strings.ToLower(err.Error()), "1062") {
		return ErrFilterExists
	}
	return err
}

// RemoveFilter detaches a filter from the session.
func (r *SessionRepo) RemoveFilter(ctx context.Context, sessionID, filterID string) error {
	res, err := r.DB.ExecContext(ctx,
		`DELETE FROM session_filters WHERE session_id=? AND filter_id=?`, sessionID, filterID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrFilterNotFound
	}
	return nil
}

// Filters returns the session's filter ids in attachment order.
func (r *SessionRepo) Filters(ctx context.Context, sessionID string) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT filter_id FROM session_filters WHERE session_id=? ORDER BY position`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// List returns a page of sessions with optional status and user
// filters, newest first, plus the total match count.
func (r *SessionRepo) List(ctx context.Context, status model.SessionStatus, userID string, limit, offset int) ([]model.Session, int64, error) {
	where := []string{}
	args := []any{}
	if status != "" {
		where = append(where, "status=?")
		args = append(args, status)
	}
	if userID != "" {
		where = append(where, "user_id=?")
		args = append(args, userID)
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	if err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sessions`+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions`+clause+
			` ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	sessions := make([]model.Session, 0, limit)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, 0, err
		}
		sessions = append(sessions, s)
	}
	return sessions, total, rows.Err()
}

// StatusCounts aggregates session counts for stats endpoints.
func (r *SessionRepo) StatusCounts(ctx context.Context) (model.SessionStatusCounts, error) {
	var c model.SessionStatusCounts
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(status='PENDING'),0),
		        COALESCE(SUM(status='ACTIVE'),0),
		        COALESCE(SUM(status='COMPLETED'),0),
		        COALESCE(SUM(status='CANCELLED'),0),
		        COALESCE(SUM(status='EXPIRED'),0)
		 FROM sessions`).
		Scan(&c.Total, &c.Pending, &c.Active, &c.Completed, &c.Cancelled, &c.Expired)
	return c, err
}

func (r *SessionRepo) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var one int
		err := r.DB.QueryRowContext(ctx,
			`SELECT 1 FROM sessions WHERE id=? LIMIT 1`, args[len(args)-1]).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrSessionNotFound
		}
		return err
	}
	return nil
}
