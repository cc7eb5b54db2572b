package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vortex07x/steamsurf/internal/model"
)

// Unique constraint names on the users table.
const (
	UsersEmailKey    = "users_email_key"
	UsersUsernameKey = "users_username_key"
)

const userColumns = `id, username, email, password_hash, role, mode, is_active, last_login, created_at, updated_at`

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.Mode,
		&u.IsActive, &u.LastLogin, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new account. Username and email must already be normalized.
func (r *UserRepo) Create(ctx context.Context, u *model.User) (*model.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	query := `
		INSERT INTO users (id, username, email, password_hash, role, mode, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + userColumns

	created, err := scanUser(r.pool.QueryRow(ctx, query,
		u.ID, u.Username, u.Email, u.PasswordHash, u.Role, u.Mode, u.IsActive))
	if err != nil {
		return nil, translate(err)
	}
	return created, nil
}

// FindByID returns a single user by primary key.
func (r *UserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// FindByEmail returns a single user by normalized email.
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

// ExistsByUsername reports whether a normalized username is taken.
func (r *UserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username).Scan(&exists)
	return exists, err
}

// List returns every account, newest first.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// TouchLastLogin records a successful sign-in.
func (r *UserRepo) TouchLastLogin(ctx context.Context, id string) (*model.User, error) {
	return r.update(ctx, `last_login = NOW()`, id)
}

// UpdateMode sets the visibility mode.
func (r *UserRepo) UpdateMode(ctx context.Context, id string, mode model.Mode) (*model.User, error) {
	return r.update(ctx, `mode = $2`, id, mode)
}

// UpdateEmail sets a normalized email. Returns ErrDuplicate if taken.
func (r *UserRepo) UpdateEmail(ctx context.Context, id, email string) (*model.User, error) {
	return r.update(ctx, `email = $2`, id, email)
}

// UpdateRole sets the account role.
func (r *UserRepo) UpdateRole(ctx context.Context, id string, role model.Role) (*model.User, error) {
	return r.update(ctx, `role = $2`, id, role)
}

// UpdateActive sets the active flag.
func (r *UserRepo) UpdateActive(ctx context.Context, id string, active bool) (*model.User, error) {
	return r.update(ctx, `is_active = $2`, id, active)
}

// UpdatePassword replaces the stored credential hash.
func (r *UserRepo) UpdatePassword(ctx context.Context, id, passwordHash string) (*model.User, error) {
	return r.update(ctx, `password_hash = $2`, id, passwordHash)
}

// Delete removes an account; interactions and saves cascade.
// Returns pgx.ErrNoRows if the account does not exist.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *UserRepo) update(ctx context.Context, set, id string, args ...any) (*model.User, error) {
	query := `UPDATE users SET ` + set + `, updated_at = NOW() WHERE id = $1 RETURNING ` + userColumns
	u, err := scanUser(r.pool.QueryRow(ctx, query, append([]any{id}, args...)...))
	if err != nil {
		return nil, translate(err)
	}
	return u, nil
}
