package domain

import "time"

// UnitSlots is the fixed width of a unit-count vector. Slots 0-9 are the
// tribe-specific troop types; slot 10 is the catch-all "other" type that
// exists for every tribe.
const UnitSlots = 11

// UnitSnapshot is one timestamped observation of unit counts for one village.
// Snapshots are append-only; duplicates per (account, village) are expected and
// resolved by the aggregator, never by the store.
type UnitSnapshot struct {
	AccountID  string
	VillageID  string
	Units      []int64
	CapturedAt time.Time
}

// DailyHistoryEntry is the derived per-day breakdown of unit counts.
// It is computed on demand and never persisted.
type DailyHistoryEntry struct {
	// Date is the UTC calendar day in "2006-01-02" form.
	Date string
	// PerVillageUnits maps villageId to its normalized unit vector for the
	// day, restricted to villages present in the current roster.
	PerVillageUnits map[string][]int64
	// TotalUnits is the element-wise sum of PerVillageUnits.
	TotalUnits []int64
	// TotalCount is the sum of all TotalUnits slots.
	TotalCount int64
}

// NormalizeUnits returns a copy of units with exactly UnitSlots elements,
// zero-padded when shorter and truncated when longer. Stored rows are never
// rewritten; normalization happens on the read side only.
func NormalizeUnits(units []int64) []int64 {
	normalized := make([]int64, UnitSlots)
	copy(normalized, units)
	return normalized
}

// DayKey returns the UTC calendar-day bucket for a capture timestamp.
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
