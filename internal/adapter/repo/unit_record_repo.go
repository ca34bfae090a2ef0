package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"server/internal/domain"
	"server/internal/infra"
	"server/internal/sqlinline"
)

// UnitRecordRepositoryPG implements domain.UnitRecordRepository on PostgreSQL.
// The table is append-only; there is no update or delete path.
type UnitRecordRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewUnitRecordRepository constructs the repository.
func NewUnitRecordRepository(sql infra.SQLExecutor) *UnitRecordRepositoryPG {
	return &UnitRecordRepositoryPG{sql: sql}
}

type unitRecordPayload struct {
	VillageID  string  `json:"villageId"`
	Units      []int64 `json:"units"`
	CapturedAt string  `json:"capturedAt"`
}

// AppendBatch stores the batch with a single INSERT statement so a concurrent
// history read never observes a partially applied batch.
func (r *UnitRecordRepositoryPG) AppendBatch(ctx context.Context, snapshots []domain.UnitSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	accountID := snapshots[0].AccountID
	records := make([]unitRecordPayload, 0, len(snapshots))
	for _, snap := range snapshots {
		if snap.AccountID != accountID {
			return fmt.Errorf("append batch: mixed account ids in one batch")
		}
		records = append(records, unitRecordPayload{
			VillageID:  snap.VillageID,
			Units:      snap.Units,
			CapturedAt: snap.CapturedAt.UTC().Format(time.RFC3339Nano),
		})
	}

	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("append batch: encode payload: %w", err)
	}
	if _, err := r.sql.Exec(ctx, sqlinline.QInsertUnitRecordBatch, accountID, payload); err != nil {
		return fmt.Errorf("append batch: %w", err)
	}
	return nil
}

// ListRange returns the account's snapshots with captured_at in [from, to),
// ascending. The (captured_at, id) order is the stable-scan contract the
// aggregator's last-wins rule depends on.
func (r *UnitRecordRepositoryPG) ListRange(ctx context.Context, accountID string, from, to time.Time) ([]domain.UnitSnapshot, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListUnitRecordsInRange, accountID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snapshots []domain.UnitSnapshot
	for rows.Next() {
		snap := domain.UnitSnapshot{AccountID: accountID}
		if err := rows.Scan(&snap.VillageID, &snap.Units, &snap.CapturedAt); err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return snapshots, nil
}

// LatestPerVillage returns the newest snapshot of each village the account
// has ever recorded.
func (r *UnitRecordRepositoryPG) LatestPerVillage(ctx context.Context, accountID string) ([]domain.UnitSnapshot, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QLatestUnitRecordsPerVillage, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snapshots []domain.UnitSnapshot
	for rows.Next() {
		snap := domain.UnitSnapshot{AccountID: accountID}
		if err := rows.Scan(&snap.VillageID, &snap.Units, &snap.CapturedAt); err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return snapshots, nil
}

var _ domain.UnitRecordRepository = (*UnitRecordRepositoryPG)(nil)
