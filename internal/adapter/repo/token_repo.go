package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"server/internal/domain"
	"server/internal/infra"
	"server/internal/sqlinline"
)

// TokenRepositoryPG implements domain.TokenRepository on PostgreSQL.
type TokenRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewTokenRepository constructs the repository.
func NewTokenRepository(sql infra.SQLExecutor) *TokenRepositoryPG {
	return &TokenRepositoryPG{sql: sql}
}

// Resolve looks up the opaque collector token. Unknown tokens map to
// domain.ErrUnauthorized.
func (r *TokenRepositoryPG) Resolve(ctx context.Context, token string) (*domain.CollectorToken, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QSelectCollectorToken, token)

	var (
		resolved domain.CollectorToken
		lastUsed sql.NullTime
	)
	if err := row.Scan(&resolved.ID, &resolved.AccountID, &resolved.Token, &lastUsed, &resolved.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("resolve token: %w", err)
	}
	if lastUsed.Valid {
		resolved.LastUsed = &lastUsed.Time
	}
	return &resolved, nil
}

// RecordUsage stores one usage marker row.
func (r *TokenRepositoryPG) RecordUsage(ctx context.Context, usage domain.TokenUsage) error {
	_, err := r.sql.Exec(ctx, sqlinline.QInsertTokenUsage,
		usage.TokenID, usage.UsedAt, usage.IPAddress, usage.UserAgent, usage.CountryCode)
	if err != nil {
		return fmt.Errorf("record token usage: %w", err)
	}
	return nil
}

// TouchLastUsed bumps the token's last_used_at.
func (r *TokenRepositoryPG) TouchLastUsed(ctx context.Context, tokenID string) error {
	if _, err := r.sql.Exec(ctx, sqlinline.QTouchTokenLastUsed, tokenID); err != nil {
		return fmt.Errorf("touch token: %w", err)
	}
	return nil
}

var _ domain.TokenRepository = (*TokenRepositoryPG)(nil)
