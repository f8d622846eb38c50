package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/roamio-app/roamio-backend/internal/domain"
	"github.com/roamio-app/roamio-backend/internal/repository/ports"
)

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, nickname, password_hash, password_salt, role,
	avatar_url, verified, verify_otp, verify_expires_at, reset_otp,
	reset_expires_at, created_at, updated_at`

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	const query = `
		INSERT INTO user_account (email, nickname, password_hash, password_salt, role, verify_otp, verify_expires_at)
		VALUES (:email, :nickname, :password_hash, :password_salt, :role, :verify_otp, :verify_expires_at)
		RETURNING id, email, nickname, password_hash, password_salt, role,
			avatar_url, verified, verify_otp, verify_expires_at, reset_otp,
			reset_expires_at, created_at, updated_at
	`
	args := map[string]any{
		"email":             user.Email,
		"nickname":          user.Nickname,
		"password_hash":     user.PasswordHash,
		"password_salt":     user.PasswordSalt,
		"role":              user.Role,
		"verify_otp":        user.VerifyOTP,
		"verify_expires_at": user.VerifyExpiresAt,
	}

	rows, err := r.db.NamedQueryContext(ctx, query, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if rows.Next() {
		var stored domain.User
		if err := rows.StructScan(&stored); err != nil {
			return nil, err
		}
		return &stored, nil
	}
	return nil, sql.ErrNoRows
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
		UPDATE user_account
		SET nickname = $2, password_hash = $3, password_salt = $4, role = $5,
			avatar_url = $6, verified = $7, verify_otp = $8,
			verify_expires_at = $9, reset_otp = $10, reset_expires_at = $11,
			updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, user.ID,
		user.Nickname, user.PasswordHash, user.PasswordSalt, user.Role,
		user.AvatarURL, user.Verified, user.VerifyOTP, user.VerifyExpiresAt,
		user.ResetOTP, user.ResetExpiresAt)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM user_account WHERE id = $1`

	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM user_account WHERE lower(email) = lower($1)`

	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) CountNicknamePrefix(ctx context.Context, prefix string) (int, error) {
	const query = `
		SELECT COUNT(*)::int
		FROM user_account
		WHERE nickname = $1 OR nickname LIKE $1 || '#%'
	`
	var count int
	if err := r.db.GetContext(ctx, &count, query, prefix); err != nil {
		return 0, err
	}
	return count, nil
}

var _ ports.UserRepository = (*UserRepository)(nil)
