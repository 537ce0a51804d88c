package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/colegioadm/colegio-api/internal/models"
)

// CredentialRepository persists login credentials and refresh tokens.
// Credentials are keyed by DNI and shared by both person variants.
type CredentialRepository struct {
	db *sqlx.DB
}

// NewCredentialRepository creates a new instance of CredentialRepository.
func NewCredentialRepository(db *sqlx.DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

// FindByDNI returns the credential for a DNI.
func (r *CredentialRepository) FindByDNI(ctx context.Context, dni string) (*models.Credential, error) {
	const query = `SELECT dni, password_hash, enabled, created_at, updated_at FROM credentials WHERE dni = $1 LIMIT 1`
	var cred models.Credential
	if err := r.db.GetContext(ctx, &cred, query, dni); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find credential: %w", err)
	}
	return &cred, nil
}

// Create inserts a new credential.
func (r *CredentialRepository) Create(ctx context.Context, cred *models.Credential) error {
	now := time.Now().UTC()
	if cred.CreatedAt.IsZero() {
		cred.CreatedAt = now
	}
	cred.UpdatedAt = now
	const query = `INSERT INTO credentials (dni, password_hash, enabled, created_at, updated_at)
        VALUES (:dni, :password_hash, :enabled, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, cred); err != nil {
		return fmt.Errorf("create credential: %w", err)
	}
	return nil
}

// UpdatePassword replaces the stored password hash.
func (r *CredentialRepository) UpdatePassword(ctx context.Context, dni, passwordHash string) error {
	const query = `UPDATE credentials SET password_hash = $2, updated_at = $3 WHERE dni = $1`
	res, err := r.db.ExecContext(ctx, query, dni, passwordHash, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update credential password: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes the credential for a DNI, reporting whether one existed.
func (r *CredentialRepository) Delete(ctx context.Context, dni string) (bool, error) {
	const query = `DELETE FROM credentials WHERE dni = $1`
	res, err := r.db.ExecContext(ctx, query, dni)
	if err != nil {
		return false, fmt.Errorf("delete credential: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete credential: %w", err)
	}
	return n > 0, nil
}

// CreateRefreshToken persists a refresh token entry.
func (r *CredentialRepository) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if token.ID == "" {
		token.ID = uuid.NewString()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO refresh_tokens (id, dni, token, expires_at, created_at, revoked, revoked_at, ip_address, user_agent)
        VALUES (:id, :dni, :token, :expires_at, :created_at, :revoked, :revoked_at, :ip_address, :user_agent)`
	if _, err := r.db.NamedExecContext(ctx, query, token); err != nil {
		return fmt.Errorf("create refresh token: %w", err)
	}
	return nil
}

// FindRefreshToken returns a refresh token by token string.
func (r *CredentialRepository) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	const query = `SELECT id, dni, token, expires_at, created_at, revoked, revoked_at, ip_address, user_agent FROM refresh_tokens WHERE token = $1 LIMIT 1`
	var rt models.RefreshToken
	if err := r.db.GetContext(ctx, &rt, query, token); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find refresh token: %w", err)
	}
	return &rt, nil
}

// RevokeRefreshToken marks a token as revoked.
func (r *CredentialRepository) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	const query = `UPDATE refresh_tokens SET revoked = TRUE, revoked_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, revokedAt); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

// RevokeRefreshTokensByDNI revokes all refresh tokens for a DNI.
func (r *CredentialRepository) RevokeRefreshTokensByDNI(ctx context.Context, dni string) error {
	const query = `UPDATE refresh_tokens SET revoked = TRUE, revoked_at = $2 WHERE dni = $1 AND revoked = FALSE`
	if _, err := r.db.ExecContext(ctx, query, dni, time.Now().UTC()); err != nil {
		return fmt.Errorf("revoke refresh tokens: %w", err)
	}
	return nil
}
