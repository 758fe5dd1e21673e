package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/stock-api/internal/domain"
	"github.com/jhoicas/stock-api/internal/domain/entity"
	"github.com/jhoicas/stock-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

const userColumns = `id, email, username, first_name, last_name, phone, password_hash,
	is_staff, is_superuser, is_active, created_at, updated_at`

// UserRepo implementación del puerto UserRepository sobre PostgreSQL.
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador de persistencia para usuarios. Pasar pool o tx (Querier).
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

// Create persiste un nuevo usuario. Email o username repetidos devuelven un ValidationError.
func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		user.ID, user.Email, user.Username, user.FirstName, user.LastName, user.Phone, user.PasswordHash,
		user.IsStaff, user.IsSuperuser, user.IsActive, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if tErr := translateConstraint(err); tErr != err {
			return tErr
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID obtiene un usuario por ID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByEmail busca por email sin distinguir mayúsculas.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
}

// GetByUsername busca por username exacto.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (r *UserRepo) getOne(ctx context.Context, query string, arg string) (*entity.User, error) {
	var u entity.User
	err := r.q.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.Email, &u.Username, &u.FirstName, &u.LastName, &u.Phone, &u.PasswordHash,
		&u.IsStaff, &u.IsSuperuser, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// Update actualiza perfil, contraseña y flags.
func (r *UserRepo) Update(ctx context.Context, user *entity.User) error {
	query := `
		UPDATE users SET email = $2, username = $3, first_name = $4, last_name = $5, phone = $6,
			password_hash = $7, is_staff = $8, is_superuser = $9, is_active = $10, updated_at = $11
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		user.ID, user.Email, user.Username, user.FirstName, user.LastName, user.Phone,
		user.PasswordHash, user.IsStaff, user.IsSuperuser, user.IsActive, user.UpdatedAt,
	)
	if err != nil {
		if tErr := translateConstraint(err); tErr != err {
			return tErr
		}
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListStaffEmails devuelve los emails de usuarios staff activos, ordenados.
func (r *UserRepo) ListStaffEmails(ctx context.Context) ([]string, error) {
	rows, err := r.q.Query(ctx, `
		SELECT email FROM users
		WHERE is_staff AND is_active AND email <> ''
		ORDER BY email`)
	if err != nil {
		return nil, fmt.Errorf("list staff emails: %w", err)
	}
	emails, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan staff emails: %w", err)
	}
	return emails, nil
}
