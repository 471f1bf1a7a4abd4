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

type AssetRepo struct{ DB *sql.DB }

func NewAssetRepo(db *sql.DB) *AssetRepo { return &AssetRepo{DB: db} }

const assetColumns = `id, type, image_url, public_id, filter_type, scale, offset_y,
 anchor_idx, left_idx, right_idx, created_at, updated_at`

func scanAsset(row interface{ Scan(...any) error }) (model.Asset, error) {
	var a model.Asset
	err := row.Scan(&a.ID, &a.Type, &a.ImageURL, &a.PublicID, &a.FilterType, &a.Scale,
		&a.OffsetY, &a.AnchorIdx, &a.LeftIdx, &a.RightIdx, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

// Create inserts an asset row.  Layout validation happens before this
// call; the repository stores whatever it is handed.
func (r *AssetRepo) Create(ctx context.Context, a *model.Asset) (model.Asset, error) {
	a.ID = uuid.NewString()
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO assets (id, type, image_url, public_id, filter_type, scale, offset_y,
		   anchor_idx, left_idx, right_idx, created_at, updated_at)
		 VALUES (?,?,?,?,?,?,?,?,?,?,UTC_TIMESTAMP(),UTC_TIMESTAMP())`,
		a.ID, a.Type, a.ImageURL, a.PublicID, a.FilterType, a.Scale, a.OffsetY,
		a.AnchorIdx, a.LeftIdx, a.RightIdx)
	if err != nil {
		return model.Asset{}, err
	}
	return r.Get(ctx, a.ID)
}

// Get fetches an asset by id.
func (r *AssetRepo) Get(ctx context.Context, id string) (model.Asset, error) {
	a, err := scanAsset(r.DB.QueryRowContext(ctx,
		`SELECT `+assetColumns+` FROM assets WHERE id=? LIMIT 1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Asset{}, ErrAssetNotFound
	}
	return a, err
}

// List returns a page of assets, optionally restricted to one type.
func (r *AssetRepo) List(ctx context.Context, typ model.AssetType, limit, offset int) ([]model.Asset, int64, error) {
	where := ""
	args := []any{}
	if typ != "" {
		where = ` WHERE type=?`
		args = append(args, typ)
	}

	var total int64
	if err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM assets`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+assetColumns+` FROM assets`+where+` ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	assets := make([]model.Asset, 0, limit)
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, 0, err
		}
		assets = append(assets, a)
	}
	return assets, total, rows.Err()
}

// Update overwrites the mutable columns of an asset.  The type is
// immutable after creation; changing it would orphan layout fields.
func (r *AssetRepo) Update(ctx context.Context, a *model.Asset) (model.Asset, error) {
	sets := []string{
		"image_url=?", "public_id=?", "filter_type=?", "scale=?", "offset_y=?",
		"anchor_idx=?", "left_idx=?", "right_idx=?", "updated_at=UTC_TIMESTAMP()",
	}
	res, err := r.DB.ExecContext(ctx,
		fmt.Sprintf("UPDATE assets SET %s WHERE id=?", strings.Join(sets, ", ")),
		a.ImageURL, a.PublicID, a.FilterType, a.Scale, a.OffsetY,
		a.AnchorIdx, a.LeftIdx, a.RightIdx, a.ID)
	if err != nil {
		return model.Asset{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.Get(ctx, a.ID); err != nil {
			return model.Asset{}, err
		}
	}
	return r.Get(ctx, a.ID)
}

// Delete removes an asset row.
func (r *AssetRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM assets WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAssetNotFound
	}
	return nil
}
