package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"server/internal/domain"
	"server/internal/sqlinline"
)

type recordRow struct {
	villageID  string
	units      []int64
	capturedAt time.Time
}

type unitRecordTestSQL struct {
	rows      []recordRow
	execQuery string
	execArgs  []any
}

func (s *unitRecordTestSQL) Exec(_ context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	s.execQuery = query
	s.execArgs = args
	return pgconn.CommandTag{}, nil
}

func (s *unitRecordTestSQL) QueryRow(context.Context, string, ...any) pgx.Row {
	return simpleRow{}
}

func (s *unitRecordTestSQL) Query(_ context.Context, query string, args ...any) (pgx.Rows, error) {
	if query != sqlinline.QListUnitRecordsInRange && query != sqlinline.QLatestUnitRecordsPerVillage {
		return nil, fmt.Errorf("unexpected query: %s", query)
	}
	return &recordRowsIterator{rows: s.rows}, nil
}

type recordRowsIterator struct {
	testRowsBase
	rows []recordRow
	idx  int
}

func (it *recordRowsIterator) Next() bool {
	if it.idx >= len(it.rows) {
		return false
	}
	it.idx++
	return true
}

func (it *recordRowsIterator) Scan(dest ...any) error {
	if it.idx == 0 || it.idx > len(it.rows) {
		return pgx.ErrNoRows
	}
	row := it.rows[it.idx-1]
	if len(dest) != 3 {
		return fmt.Errorf("unexpected scan args: %d", len(dest))
	}
	if v, ok := dest[0].(*string); ok {
		*v = row.villageID
	}
	if v, ok := dest[1].(*[]int64); ok {
		*v = append([]int64(nil), row.units...)
	}
	if v, ok := dest[2].(*time.Time); ok {
		*v = row.capturedAt
	}
	return nil
}

func (it *recordRowsIterator) Err() error { return nil }

func (it *recordRowsIterator) Close() {}

func TestAppendBatchSendsSingleStatement(t *testing.T) {
	sql := &unitRecordTestSQL{}
	r := NewUnitRecordRepository(sql)
	capturedAt := time.Date(2024, 1, 5, 14, 0, 0, 0, time.UTC)

	err := r.AppendBatch(context.Background(), []domain.UnitSnapshot{
		{AccountID: "acc-1", VillageID: "V1", Units: []int64{1, 2}, CapturedAt: capturedAt},
		{AccountID: "acc-1", VillageID: "V2", Units: []int64{3}, CapturedAt: capturedAt},
	})
	if err != nil {
		t.Fatalf("AppendBatch() error: %v", err)
	}
	if sql.execQuery != sqlinline.QInsertUnitRecordBatch {
		t.Fatalf("unexpected query executed")
	}
	if len(sql.execArgs) != 2 {
		t.Fatalf("exec args = %d, want 2", len(sql.execArgs))
	}
	if sql.execArgs[0] != "acc-1" {
		t.Fatalf("account arg = %v, want acc-1", sql.execArgs[0])
	}

	payload, ok := sql.execArgs[1].([]byte)
	if !ok {
		t.Fatalf("payload arg is %T, want []byte", sql.execArgs[1])
	}
	var decoded []struct {
		VillageID  string  `json:"villageId"`
		Units      []int64 `json:"units"`
		CapturedAt string  `json:"capturedAt"`
	}
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("payload is not valid json: %v", err)
	}
	if len(decoded) != 2 || decoded[0].VillageID != "V1" || decoded[1].VillageID != "V2" {
		t.Fatalf("payload = %+v", decoded)
	}
	if decoded[0].CapturedAt != decoded[1].CapturedAt {
		t.Fatalf("batch rows carry different capture stamps")
	}
}

func TestAppendBatchRejectsMixedAccounts(t *testing.T) {
	sql := &unitRecordTestSQL{}
	r := NewUnitRecordRepository(sql)

	err := r.AppendBatch(context.Background(), []domain.UnitSnapshot{
		{AccountID: "acc-1", VillageID: "V1", Units: []int64{1}},
		{AccountID: "acc-2", VillageID: "V2", Units: []int64{2}},
	})
	if err == nil {
		t.Fatalf("expected error for mixed account ids")
	}
	if sql.execQuery != "" {
		t.Fatalf("statement executed despite invalid batch")
	}
}

func TestAppendBatchNoopOnEmptyInput(t *testing.T) {
	sql := &unitRecordTestSQL{}
	r := NewUnitRecordRepository(sql)

	if err := r.AppendBatch(context.Background(), nil); err != nil {
		t.Fatalf("AppendBatch(nil) error: %v", err)
	}
	if sql.execQuery != "" {
		t.Fatalf("statement executed for empty batch")
	}
}

func TestListRangeScansAscendingRows(t *testing.T) {
	sql := &unitRecordTestSQL{rows: []recordRow{
		{villageID: "V1", units: []int64{1, 2}, capturedAt: time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)},
		{villageID: "V1", units: []int64{3, 4}, capturedAt: time.Date(2024, 1, 5, 14, 0, 0, 0, time.UTC)},
	}}
	r := NewUnitRecordRepository(sql)

	snapshots, err := r.ListRange(context.Background(), "acc-1",
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ListRange() error: %v", err)
	}
	if len(snapshots) != 2 {
		t.Fatalf("snapshots = %d, want 2", len(snapshots))
	}
	if snapshots[0].AccountID != "acc-1" || snapshots[0].VillageID != "V1" {
		t.Fatalf("snapshot[0] = %+v", snapshots[0])
	}
	if snapshots[1].Units[0] != 3 {
		t.Fatalf("snapshot[1] units = %v", snapshots[1].Units)
	}
}
