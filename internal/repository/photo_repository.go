package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/minhvt/photobooth-backend/internal/model"
)

// PhotoRepo persists captured photos.  Create and Delete run inside a
// transaction that locks the owning session row, so the photo_count
// column and the photo rows can never drift apart under concurrent
// captures on the same session.
type PhotoRepo struct{ DB *sql.DB }

func NewPhotoRepo(db *sql.DB) *PhotoRepo { return &PhotoRepo{DB: db} }

// ErrSessionNotActive is returned when a photo mutation targets a
// session that is not in the ACTIVE state.
var ErrSessionNotActive = errors.New("session is not active")

const photoColumns = `id, session_id, image_url, public_id, thumbnail_url, sort_order,
 COALESCE(caption,''), is_processed, processed_at, created_at, updated_at`

func scanPhoto(row interface{ Scan(...any) error }) (model.Photo, error) {
	var p model.Photo
	err := row.Scan(&p.ID, &p.SessionID, &p.ImageURL, &p.PublicID, &p.ThumbnailURL,
		&p.SortOrder, &p.Caption, &p.IsProcessed, &p.ProcessedAt, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// Create captures a photo for an ACTIVE session.  The session row is
// locked for the duration of the transaction; the capture is rejected
// when the session is not ACTIVE or its photo budget is spent.  The
// new photo takes the next sort position and the session counter is
// incremented in the same transaction.
func (r *PhotoRepo) Create(ctx context.Context, sessionID, imageURL, caption string, publicID, thumbnailURL *string) (model.Photo, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.Photo{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var status model.SessionStatus
	var count, max int
	err = tx.QueryRowContext(ctx,
		`SELECT status, photo_count, max_photos FROM sessions WHERE id=? FOR UPDATE`,
		sessionID).Scan(&status, &count, &max)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Photo{}, ErrSessionNotFound
	}
	if err != nil {
		return model.Photo{}, err
	}
	if status != model.SessionActive {
		return model.Photo{}, ErrSessionNotActive
	}
	if count >= max {
		return model.Photo{}, ErrPhotoLimitReached
	}

	var next int
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(sort_order),0)+1 FROM photos WHERE session_id=?`,
		sessionID).Scan(&next); err != nil {
		return model.Photo{}, err
	}

	id := uuid.NewString()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO photos (id, session_id, image_url, public_id, thumbnail_url, sort_order,
		   caption, is_processed, created_at, updated_at)
		 VALUES (?,?,?,?,?,?,?,0,UTC_TIMESTAMP(),UTC_TIMESTAMP())`,
		id, sessionID, imageURL, publicID, thumbnailURL, next, caption); err != nil {
		return model.Photo{}, err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE sessions SET photo_count = photo_count + 1, updated_at=UTC_TIMESTAMP() WHERE id=?`,
		sessionID); err != nil {
		return model.Photo{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.Photo{}, err
	}
	committed = true
	return r.GetByID(ctx, id)
}

// GetByID fetches a photo by id.
func (r *PhotoRepo) GetByID(ctx context.Context, id string) (model.Photo, error) {
	p, err := scanPhoto(r.DB.QueryRowContext(ctx,
		`SELECT `+photoColumns+` FROM photos WHERE id=? LIMIT 1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Photo{}, ErrPhotoNotFound
	}
	return p, err
}

// ListBySession returns a page of the session's photos in capture order.
func (r *PhotoRepo) ListBySession(ctx context.Context, sessionID string, limit, offset int) ([]model.Photo, int64, error) {
	var total int64
	if err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM photos WHERE session_id=?`, sessionID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+photoColumns+` FROM photos WHERE session_id=? ORDER BY sort_order LIMIT ? OFFSET ?`,
		sessionID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	photos := make([]model.Photo, 0, limit)
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, 0, err
		}
		photos = append(photos, p)
	}
	return photos, total, rows.Err()
}

// Update applies caption and processing changes.  processed_at is
// stamped on the first transition of is_processed to true and kept
// on later updates.
func (r *PhotoRepo) Update(ctx context.Context, id string, caption *string, isProcessed *bool, now time.Time) (model.Photo, error) {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return model.Photo{}, err
	}

	sets := []string{"updated_at=UTC_TIMESTAMP()"}
	args := []any{}
	if caption != nil {
		sets = append(sets, "caption=?")
		args = append(args, *caption)
	}
	if isProcessed != nil {
		sets = append(sets, "is_processed=?")
		args = append(args, *isProcessed)
		if *isProcessed && !current.IsProcessed {
			sets = append(sets, "processed_at=?")
			args = append(args, now)
		}
	}
	args = append(args, id)

	if _, err := r.DB.ExecContext(ctx,
		fmt.Sprintf("UPDATE photos SET %s WHERE id=?", strings.Join(sets, ", ")), args...); err != nil {
		return model.Photo{}, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes a photo and decrements the owning session's counter
// in one transaction.
func (r *PhotoRepo) Delete(ctx context.Context, id string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var sessionID string
	err = tx.QueryRowContext(ctx,
		`SELECT session_id FROM photos WHERE id=? FOR UPDATE`, id).Scan(&sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrPhotoNotFound
	}
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM photos WHERE id=?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE sessions SET photo_count = GREATEST(photo_count - 1, 0), updated_at=UTC_TIMESTAMP()
		 WHERE id=?`, sessionID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Reorder rewrites the sort positions of the session's photos to match
// the given id order.  Ids must belong to the session; unknown ids
// fail the whole batch.
func (r *PhotoRepo) Reorder(ctx context.Context, sessionID string, photoIDs []string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	for i, photoID := range photoIDs {
		res, err := tx.ExecContext(ctx,
			`UPDATE photos SET sort_order=?, updated_at=UTC_TIMESTAMP()
			 WHERE id=? AND session_id=?`, i+1, photoID, sessionID)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			var one int
			err := tx.QueryRowContext(ctx,
				`SELECT 1 FROM photos WHERE id=? AND session_id=?`, photoID, sessionID).Scan(&one)
			if errors.Is(err, sql.ErrNoRows) {
				return ErrPhotoNotFound
			}
			if err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
