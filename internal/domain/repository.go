package domain

import (
	"context"
	"time"
)

// UnitRecordRepository is the append-only store of unit snapshots.
type UnitRecordRepository interface {
	// AppendBatch stores every snapshot or none of them; a concurrent reader
	// must never observe a partially applied batch.
	AppendBatch(ctx context.Context, snapshots []UnitSnapshot) error
	// ListRange returns all snapshots for the account with capturedAt in the
	// half-open interval [from, to), ordered ascending by capturedAt. The
	// ascending order is part of the contract: the aggregator's last-wins
	// rule relies on it.
	ListRange(ctx context.Context, accountID string, from, to time.Time) ([]UnitSnapshot, error)
	// LatestPerVillage returns the most recent snapshot for each village of
	// the account, regardless of age.
	LatestPerVillage(ctx context.Context, accountID string) ([]UnitSnapshot, error)
}

// VillageRepository exposes the current roster of an account's villages.
type VillageRepository interface {
	ListCurrent(ctx context.Context, accountID string) ([]VillageDescriptor, error)
}

// TokenRepository resolves collector tokens and records their usage.
type TokenRepository interface {
	// Resolve returns ErrUnauthorized when the token is unknown.
	Resolve(ctx context.Context, token string) (*CollectorToken, error)
	RecordUsage(ctx context.Context, usage TokenUsage) error
	TouchLastUsed(ctx context.Context, tokenID string) error
}

// AccountRepository answers ownership checks for the read API.
type AccountRepository interface {
	// OwnedBy returns ErrNotFound when the account does not exist or does not
	// belong to the user.
	OwnedBy(ctx context.Context, accountID, userID string) error
}
