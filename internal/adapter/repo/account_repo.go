package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"server/internal/domain"
	"server/internal/infra"
	"server/internal/sqlinline"
)

// AccountRepositoryPG implements domain.AccountRepository on PostgreSQL.
type AccountRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewAccountRepository constructs the repository.
func NewAccountRepository(sql infra.SQLExecutor) *AccountRepositoryPG {
	return &AccountRepositoryPG{sql: sql}
}

// OwnedBy verifies the account exists and belongs to the user.
func (r *AccountRepositoryPG) OwnedBy(ctx context.Context, accountID, userID string) error {
	row := r.sql.QueryRow(ctx, sqlinline.QAccountOwnedBy, accountID, userID)
	var one int
	if err := row.Scan(&one); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("account ownership: %w", err)
	}
	return nil
}

var _ domain.AccountRepository = (*AccountRepositoryPG)(nil)
