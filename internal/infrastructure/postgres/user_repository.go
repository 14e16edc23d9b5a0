package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/albaranes-api/internal/domain"
	"github.com/jhoicas/albaranes-api/internal/domain/entity"
	"github.com/jhoicas/albaranes-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

const userColumns = `id, email, password_hash, status, role, is_autonomo, verification_code, attempts,
	name, surnames, nif, address, company, company_owner, logo, password_recovery_code,
	deleted_at, created_at, updated_at`

// UserRepo implementación del puerto UserRepository sobre PostgreSQL.
type UserRepo struct {
	pool *pgxpool.Pool
}

// NewUserRepository construye el adaptador de persistencia para usuarios.
func NewUserRepository(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

// Create persiste un nuevo usuario.
func (r *UserRepo) Create(ctx context.Context, u *entity.User) error {
	query := `INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`
	_, err := r.pool.Exec(ctx, query,
		u.ID, strings.ToLower(u.Email), u.PasswordHash, u.Status, u.Role, u.IsAutonomo,
		u.VerificationCode, u.Attempts, u.Name, u.Surnames, u.NIF, u.Address, u.Company,
		nullIfEmpty(u.CompanyOwner), u.Logo, u.PasswordRecoveryCode,
		u.DeletedAt, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID obtiene un usuario activo por ID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.findOne(ctx, `id = $1`, id)
}

// GetByEmail obtiene un usuario activo por email (sin distinguir mayúsculas).
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, `lower(email) = $1`, strings.ToLower(strings.TrimSpace(email)))
}

func (r *UserRepo) findOne(ctx context.Context, cond string, arg any) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + cond + ` AND deleted_at IS NULL`
	u, err := scanUser(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// Update reescribe todos los campos mutables.
func (r *UserRepo) Update(ctx context.Context, u *entity.User) error {
	query := `
		UPDATE users SET email = $2, password_hash = $3, status = $4, role = $5, is_autonomo = $6,
			verification_code = $7, attempts = $8, name = $9, surnames = $10, nif = $11,
			address = $12, company = $13, company_owner = $14, logo = $15,
			password_recovery_code = $16, updated_at = $17
		WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query,
		u.ID, strings.ToLower(u.Email), u.PasswordHash, u.Status, u.Role, u.IsAutonomo,
		u.VerificationCode, u.Attempts, u.Name, u.Surnames, u.NIF, u.Address, u.Company,
		nullIfEmpty(u.CompanyOwner), u.Logo, u.PasswordRecoveryCode, u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// SoftDelete marca el usuario como dado de baja.
func (r *UserRepo) SoftDelete(ctx context.Context, id string, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET deleted_at = $2, updated_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("soft delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// Delete elimina un usuario por ID.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*entity.User, error) {
	var u entity.User
	var owner *string
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Status, &u.Role, &u.IsAutonomo,
		&u.VerificationCode, &u.Attempts, &u.Name, &u.Surnames, &u.NIF, &u.Address, &u.Company,
		&owner, &u.Logo, &u.PasswordRecoveryCode, &u.DeletedAt, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.CompanyOwner = deref(owner)
	return &u, nil
}
