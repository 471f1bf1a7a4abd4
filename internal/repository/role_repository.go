package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/minhvt/photobooth-backend/internal/model"
)

type RoleRepo struct{ DB *sql.DB }

func NewRoleRepo(db *sql.DB) *RoleRepo { return &RoleRepo{DB: db} }

// GetByName fetches a role by its unique name.
func (r *RoleRepo) GetByName(ctx context.Context, name string) (model.Role, error) {
	var role model.Role
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, name, COALESCE(description,'') FROM roles WHERE name=? LIMIT 1`,
		name).Scan(&role.ID, &role.Name, &role.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Role{}, ErrRoleNotFound
	}
	return role, err
}

// GetByID fetches a role by id.
func (r *RoleRepo) GetByID(ctx context.Context, id string) (model.Role, error) {
	var role model.Role
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, name, COALESCE(description,'') FROM roles WHERE id=? LIMIT 1`,
		id).Scan(&role.ID, &role.Name, &role.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Role{}, ErrRoleNotFound
	}
	return role, err
}

// Seed inserts the fixed role set when the table is empty.  Called
// once at startup; a non-empty table is left untouched.
func (r *RoleRepo) Seed(ctx context.Context) error {
	var count int64
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM roles`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	seed := []model.Role{
		{ID: uuid.NewString(), Name: model.RoleAdmin, Description: "Administrator with full access"},
		{ID: uuid.NewString(), Name: model.RoleUser, Description: "Regular kiosk user"},
	}
	for _, role := range seed {
		if _, err := r.DB.ExecContext(ctx,
			`INSERT INTO roles (id, name, description) VALUES (?,?,?)`,
			role.ID, role.Name, role.Description); err != nil {
			return err
		}
	}
	return nil
}
