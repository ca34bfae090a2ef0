package repo

import (
	"context"

	"server/internal/domain"
	"server/internal/infra"
	"server/internal/sqlinline"
)

// VillageRepositoryPG implements domain.VillageRepository on PostgreSQL. The
// villages table always holds the latest known roster of an account.
type VillageRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewVillageRepository constructs the repository.
func NewVillageRepository(sql infra.SQLExecutor) *VillageRepositoryPG {
	return &VillageRepositoryPG{sql: sql}
}

// ListCurrent returns the account's current village roster.
func (r *VillageRepositoryPG) ListCurrent(ctx context.Context, accountID string) ([]domain.VillageDescriptor, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListCurrentVillages, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var villages []domain.VillageDescriptor
	for rows.Next() {
		var village domain.VillageDescriptor
		if err := rows.Scan(&village.VillageID, &village.Name, &village.IsMainVillage, &village.IsCity); err != nil {
			return nil, err
		}
		villages = append(villages, village)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return villages, nil
}

var _ domain.VillageRepository = (*VillageRepositoryPG)(nil)
