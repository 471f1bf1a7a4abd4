package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/minhvt/photobooth-backend/internal/model"
)

// BankInfoRepo persists the receiving bank account shown to users for
// point top-ups.  The table holds at most a handful of rows but only
// the newest one is ever "current".
type BankInfoRepo struct{ DB *sql.DB }

func NewBankInfoRepo(db *sql.DB) *BankInfoRepo { return &BankInfoRepo{DB: db} }

const bankColumns = `id, bank_code, bank_name, account_number, account_holder_name,
 branch, qr_code_url, created_at, updated_at`

func scanBankInfo(row interface{ Scan(...any) error }) (model.BankInfo, error) {
	var b model.BankInfo
	err := row.Scan(&b.ID, &b.BankCode, &b.BankName, &b.AccountNumber, &b.AccountHolderName,
		&b.Branch, &b.QRCodeURL, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

// Current returns the most recently created bank info row.
func (r *BankInfoRepo) Current(ctx context.Context) (model.BankInfo, error) {
	b, err := scanBankInfo(r.DB.QueryRowContext(ctx,
		`SELECT `+bankColumns+` FROM bank_info ORDER BY created_at DESC LIMIT 1`))
	if errors.Is(err, sql.ErrNoRows) {
		return model.BankInfo{}, ErrBankInfoNotFound
	}
	return b, err
}

// CreateOrUpdate upserts the current bank info: if a row exists it is
// updated in place, otherwise a new row is inserted.
func (r *BankInfoRepo) CreateOrUpdate(ctx context.Context, in *model.BankInfo) (model.BankInfo, error) {
	current, err := r.Current(ctx)
	if errors.Is(err, ErrBankInfoNotFound) {
		in.ID = uuid.NewString()
		_, err := r.DB.ExecContext(ctx,
			`INSERT INTO bank_info (id, bank_code, bank_name, account_number, account_holder_name,
			   branch, qr_code_url, created_at, updated_at)
			 VALUES (?,?,?,?,?,?,?,UTC_TIMESTAMP(),UTC_TIMESTAMP())`,
			in.ID, in.BankCode, in.BankName, in.AccountNumber, in.AccountHolderName,
			in.Branch, in.QRCodeURL)
		if err != nil {
			return model.BankInfo{}, err
		}
		return r.Current(ctx)
	}
	if err != nil {
		return model.BankInfo{}, err
	}
	in.ID = current.ID
	return r.Update(ctx, in)
}

// Update overwrites a bank info row by id.
func (r *BankInfoRepo) Update(ctx context.Context, in *model.BankInfo) (model.BankInfo, error) {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE bank_info SET bank_code=?, bank_name=?, account_number=?, account_holder_name=?,
		   branch=?, qr_code_url=?, updated_at=UTC_TIMESTAMP()
		 WHERE id=?`,
		in.BankCode, in.BankName, in.AccountNumber, in.AccountHolderName,
		in.Branch, in.QRCodeURL, in.ID)
	if err != nil {
		return model.BankInfo{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.get(ctx, in.ID); err != nil {
			return model.BankInfo{}, err
		}
	}
	return r.get(ctx, in.ID)
}

// Delete removes a bank info row.
func (r *BankInfoRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM bank_info WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrBankInfoNotFound
	}
	return nil
}

func (r *BankInfoRepo) get(ctx context.Context, id string) (model.BankInfo, error) {
	b, err := scanBankInfo(r.DB.QueryRowContext(ctx,
		`SELECT `+bankColumns+` FROM bank_info WHERE id=? LIMIT 1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.BankInfo{}, ErrBankInfoNotFound
	}
	return b, err
}
