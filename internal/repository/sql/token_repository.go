package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/iyhunko/inventory-service/internal/model"
	"github.com/iyhunko/inventory-service/internal/repository"
)

// TokenRepository implements repository.TokenRepository on PostgreSQL.
type TokenRepository struct {
	db *sql.DB
}

// NewTokenRepository creates a new TokenRepository instance.
func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// Create inserts a new API token into the database.
func (r *TokenRepository) Create(ctx context.Context, token *model.APIToken) error {
	token.InitMeta()

	query := `INSERT INTO api_tokens (id, name, token_hash, last_used_at, created_at)
	          VALUES ($1, $2, $3, $4, $5)`

	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx, token.ID, token.Name, token.TokenHash, token.LastUsedAt, token.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert api token: %w", mapConstraintError(err))
	}

	return nil
}

// FindByHash retrieves the API token with the given hash.
func (r *TokenRepository) FindByHash(ctx context.Context, hash string) (*model.APIToken, error) {
	query := `SELECT id, name, token_hash, last_used_at, created_at FROM api_tokens WHERE token_hash = $1`

	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare select statement: %w", err)
	}
	defer stmt.Close()

	var token model.APIToken
	var lastUsedAt sql.NullTime
	err = stmt.QueryRowContext(ctx, hash).Scan(&token.ID, &token.Name, &token.TokenHash, &lastUsedAt, &token.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("api token: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to query api token: %w", err)
	}
	if lastUsedAt.Valid {
		token.LastUsedAt = &lastUsedAt.Time
	}

	return &token, nil
}

// MarkUsed sets last_used_at of the token to the current time.
func (r *TokenRepository) MarkUsed(ctx context.Context, id uuid.UUID) error {
	return r.exec(ctx, `UPDATE api_tokens SET last_used_at = NOW() WHERE id = $1`, id, "update")
}

// DeleteByID revokes an API token.
func (r *TokenRepository) DeleteByID(ctx context.Context, id uuid.UUID) error {
	return r.exec(ctx, `DELETE FROM api_tokens WHERE id = $1`, id, "delete")
}

func (r *TokenRepository) exec(ctx context.Context, query string, id uuid.UUID, op string) error {
	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare %s statement: %w", op, err)
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to %s api token: %w", op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("api token %s: %w", id, repository.ErrNotFound)
	}

	return nil
}
