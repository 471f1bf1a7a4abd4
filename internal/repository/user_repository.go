package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/minhvt/photobooth-backend/internal/model"
	"github.com/minhvt/photobooth-backend/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

var ErrEmailExists = errors.New("email already exists")

const userColumns = `u.id, u.email, u.name, u.password_hash, u.role_id, COALESCE(r.name,''),
 u.points, u.payment_code, u.created_at, u.updated_at`

func scanUser(row interface{ Scan(...any) error }) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.RoleID, &u.RoleName,
		&u.Points, &u.PaymentCode, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// Create inserts a user with a bcrypt-hashed password and returns the
// stored record.  The payment code is assigned here, exactly once; it
// is never updated afterwards.
func (r *UserRepo) Create(ctx context.Context, email, name, password, roleID, paymentCode string, cost int) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return model.User{}, err
	}
	id := uuid.NewString()
	_, err = r.DB.ExecContext(ctx,
		`INSERT INTO users (id, email, name, password_hash, role_id, points, payment_code, created_at, updated_at)
		 VALUES (?,?,?,?,?,0,?,UTC_TIMESTAMP(),UTC_TIMESTAMP())`,
		id, email, name, hash, roleID, paymentCode)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return model.User{}, ErrEmailExists
		}
		return model.User{}, err
	}
	return r.GetByID(ctx, id)
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users u LEFT JOIN roles r ON r.id=u.role_id WHERE u.email=? LIMIT 1`,
		email))
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrUserNotFound
	}
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users u LEFT JOIN roles r ON r.id=u.role_id WHERE u.id=? LIMIT 1`,
		id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrUserNotFound
	}
	return u, err
}

// GetByPaymentCode fetches a user by their transfer code.
func (r *UserRepo) GetByPaymentCode(ctx context.Context, code string) (model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users u LEFT JOIN roles r ON r.id=u.role_id WHERE u.payment_code=? LIMIT 1`,
		code))
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrUserNotFound
	}
	return u, err
}

// PaymentCodeExists reports whether a payment code is already taken.
func (r *UserRepo) PaymentCodeExists(ctx context.Context, code string) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		`SELECT 1 FROM users WHERE payment_code=? LIMIT 1`, code).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// List returns a page of users, optionally filtered by a case-insensitive
// search over email and name, together with the total match count.
func (r *UserRepo) List(ctx context.Context, search string, limit, offset int) ([]model.User, int64, error) {
	where := ""
	args := []any{}
	if search != "" {
		where = ` WHERE u.email LIKE ? OR u.name LIKE ?`
		pat := "%" + search + "%"
		args = append(args, pat, pat)
	}

	var total int64
	if err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users u`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users u LEFT JOIN roles r ON r.id=u.role_id`+where+
			` ORDER BY u.created_at DESC LIMIT ? OFFSET ?`,
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	users := make([]model.User, 0, limit)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

// Update applies the provided fields to a user row.  Nil pointers leave
// the column untouched.  Email uniqueness violations map to ErrEmailExists.
func (r *UserRepo) Update(ctx context.Context, id string, email, name, roleID *string) (model.User, error) {
	sets := []string{"updated_at=UTC_TIMESTAMP()"}
	args := []any{}
	if email != nil {
		sets = append(sets, "email=?")
		args = append(args, strings.ToLower(strings.TrimSpace(*email)))
	}
	if name != nil {
		sets = append(sets, "name=?")
		args = append(args, *name)
	}
	if roleID != nil {
		sets = append(sets, "role_id=?")
		args = append(args, *roleID)
	}
	args = append(args, id)

	res, err := r.DB.ExecContext(ctx,
		fmt.Sprintf("UPDATE users SET %s WHERE id=?", strings.Join(sets, ", ")), args...)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return model.User{}, ErrEmailExists
		}
		return model.User{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Could also be a no-op update; confirm the row exists.
		if _, err := r.GetByID(ctx, id); err != nil {
			return model.User{}, err
		}
	}
	return r.GetByID(ctx, id)
}

// Delete removes a user row.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM users WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// AddPoints credits amount to the user's balance unconditionally.
func (r *UserRepo) AddPoints(ctx context.Context, id string, amount int64) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE users SET points = points + ?, updated_at=UTC_TIMESTAMP() WHERE id=?`,
		amount, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// DebitPoints subtracts amount iff the balance covers it.  The guard
// lives in the WHERE clause so concurrent debits can never drive the
// balance negative.
func (r *UserRepo) DebitPoints(ctx context.Context, id string, amount int64) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE users SET points = points - ?, updated_at=UTC_TIMESTAMP() WHERE id=? AND points >= ?`,
		amount, id, amount)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrInsufficientPoints
	}
	return nil
}
