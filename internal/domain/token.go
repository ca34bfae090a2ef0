package domain

import "time"

// CollectorToken is an opaque credential that identifies the game account a
// collector submits snapshots for.
type CollectorToken struct {
	ID        string
	AccountID string
	Token     string
	LastUsed  *time.Time
	CreatedAt time.Time
}

// TokenUsage is the lightweight marker recorded on every ingestion call. It
// exists for operational visibility and plays no part in aggregation.
type TokenUsage struct {
	TokenID     string
	UsedAt      time.Time
	IPAddress   string
	UserAgent   string
	CountryCode string
}
