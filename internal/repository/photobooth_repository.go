package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/minhvt/photobooth-backend/internal/model"
)

// PhotoboothRepo persists kiosk rows.  The acquire/release pair keeps
// the (status, current_session_id) columns consistent: acquire is a
// conditional UPDATE that succeeds only on a free booth, so two
// concurrent session creations can never both win the same kiosk.
type PhotoboothRepo struct{ DB *sql.DB }

func NewPhotoboothRepo(db *sql.DB) *PhotoboothRepo { return &PhotoboothRepo{DB: db} }

const boothColumns = `id, name, COALESCE(description,''), COALESCE(location,''), status,
 is_active, current_session_id, created_at, updated_at`

func scanBooth(row interface{ Scan(...any) error }) (model.Photobooth, error) {
	var b model.Photobooth
	err := row.Scan(&b.ID, &b.Name, &b.Description, &b.Location, &b.Status,
		&b.IsActive, &b.CurrentSessionID, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

// Create inserts a booth.  Name collisions map to ErrBoothNameExists.
func (r *PhotoboothRepo) Create(ctx context.Context, name, description, location string, isActive bool) (model.Photobooth, error) {
	id := uuid.NewString()
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO photobooths (id, name, description, location, status, is_active, created_at, updated_at)
		 VALUES (?,?,?,?,'AVAILABLE',?,UTC_TIMESTAMP(),UTC_TIMESTAMP())`,
		id, name, description, location, isActive)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return model.Photobooth{}, ErrBoothNameExists
		}
		return model.Photobooth{}, err
	}
	return r.Get(ctx, id)
}

// Get fetches a booth by id.
func (r *PhotoboothRepo) Get(ctx context.Context, id string) (model.Photobooth, error) {
	b, err := scanBooth(r.DB.QueryRowContext(ctx,
		`SELECT `+boothColumns+` FROM photobooths WHERE id=? LIMIT 1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Photobooth{}, ErrBoothNotFound
	}
	return b, err
}

// List returns a page of booths ordered by name plus the total count.
func (r *PhotoboothRepo) List(ctx context.Context, limit, offset int) ([]model.Photobooth, int64, error) {
	var total int64
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM photobooths`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+boothColumns+` FROM photobooths ORDER BY name LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	booths := make([]model.Photobooth, 0, limit)
	for rows.Next() {
		b, err := scanBooth(rows)
		if err != nil {
			return nil, 0, err
		}
		booths = append(booths, b)
	}
	return booths, total, rows.Err()
}

// ListAvailable returns active booths currently open for allocation.
func (r *PhotoboothRepo) ListAvailable(ctx context.Context) ([]model.Photobooth, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+boothColumns+` FROM photobooths
		 WHERE status='AVAILABLE' AND is_active=1 ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var booths []model.Photobooth
	for rows.Next() {
		b, err := scanBooth(rows)
		if err != nil {
			return nil, err
		}
		booths = append(booths, b)
	}
	return booths, rows.Err()
}

// Update applies metadata changes.  Nil pointers leave columns untouched.
func (r *PhotoboothRepo) Update(ctx context.Context, id string, name, description, location *string, isActive *bool) (model.Photobooth, error) {
	sets := []string{"updated_at=UTC_TIMESTAMP()"}
	args := []any{}
	if name != nil {
		sets = append(sets, "name=?")
		args = append(args, *name)
	}
	if description != nil {
		sets = append(sets, "description=?")
		args = append(args, *description)
	}
	if location != nil {
		sets = append(sets, "location=?")
		args = append(args, *location)
	}
	if isActive != nil {
		sets = append(sets, "is_active=?")
		args = append(args, *isActive)
	}
	args = append(args, id)

	_, err := r.DB.ExecContext(ctx,
		fmt.Sprintf("UPDATE photobooths SET %s WHERE id=?", strings.Join(sets, ", ")), args...)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return model.Photobooth{}, ErrBoothNameExists
		}
		return model.Photobooth{}, err
	}
	return r.Get(ctx, id)
}

// SetStatus moves a booth into an operator-chosen state.  Forcing a
// booth back to AVAILABLE while a session still references it would
// break the allocation invariant, so that combination is rejected.
func (r *PhotoboothRepo) SetStatus(ctx context.Context, id string, status model.BoothStatus) (model.Photobooth, error) {
	if status == model.BoothAvailable {
		res, err := r.DB.ExecContext(ctx,
			`UPDATE photobooths SET status='AVAILABLE', updated_at=UTC_TIMESTAMP()
			 WHERE id=? AND current_session_id IS NULL`, id)
		if err != nil {
			return model.Photobooth{}, err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			b, err := r.Get(ctx, id)
			if err != nil {
				return model.Photobooth{}, err
			}
			if b.CurrentSessionID != nil {
				return model.Photobooth{}, ErrConflict
			}
			// Row existed and was already AVAILABLE; no-op.
			return b, nil
		}
		return r.Get(ctx, id)
	}

	res, err := r.DB.ExecContext(ctx,
		`UPDATE photobooths SET status=?, updated_at=UTC_TIMESTAMP() WHERE id=?`, status, id)
	if err != nil {
		return model.Photobooth{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.Get(ctx, id); err != nil {
			return model.Photobooth{}, err
		}
	}
	return r.Get(ctx, id)
}

// Delete removes a booth unless a session still references it.
func (r *PhotoboothRepo) Delete(ctx context.Context, id string) error {
	b, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if b.CurrentSessionID != nil {
		return ErrConflict
	}
	res, err := r.DB.ExecContext(ctx, `DELETE FROM photobooths WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrBoothNotFound
	}
	return nil
}

// Acquire claims a free booth for a session.  The WHERE clause carries
// the whole precondition; zero affected rows means somebody else holds
// the booth or it is out of rotation.
func (r *PhotoboothRepo) Acquire(ctx context.Context, id, sessionID string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE photobooths SET status='BUSY', current_session_id=?, updated_at=UTC_TIMESTAMP()
		 WHERE id=? AND status='AVAILABLE' AND is_active=1 AND current_session_id IS NULL`,
		sessionID, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := r.Get(ctx, id); err != nil {
			return err
		}
		return ErrBoothUnavailable
	}
	return nil
}

// Release returns a booth to the pool unconditionally.
func (r *PhotoboothRepo) Release(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE photobooths SET status='AVAILABLE', current_session_id=NULL, updated_at=UTC_TIMESTAMP()
		 WHERE id=?`, id)
	return err
}

// ReleaseIfSession releases the booth only while it still points at
// the given session, so a stale release cannot clobber a newer holder.
func (r *PhotoboothRepo) ReleaseIfSession(ctx context.Context, boothID, sessionID string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE photobooths SET status='AVAILABLE', current_session_id=NULL, updated_at=UTC_TIMESTAMP()
		 WHERE id=? AND current_session_id=?`, boothID, sessionID)
	return err
}

// StatusCounts aggregates booth counts for the status endpoint.
func (r *PhotoboothRepo) StatusCounts(ctx context.Context) (model.BoothStatusCounts, error) {
	var c model.BoothStatusCounts
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(status='AVAILABLE' AND is_active=1),0),
		        COALESCE(SUM(status='BUSY'),0),
		        COALESCE(SUM(status='MAINTENANCE'),0),
		        COALESCE(SUM(status='OFFLINE'),0)
		 FROM photobooths`).
		Scan(&c.Total, &c.Available, &c.Busy, &c.Maintenance, &c.Offline)
	return c, err
}
