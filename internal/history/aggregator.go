// Package history reconstructs daily troop-count history from raw unit
// snapshots. The grouping rules live here as pure functions over in-memory
// slices; the store only fetches raw rows in range.
package history

import (
	"sort"

	"server/internal/domain"
)

// BuildDailyHistory reduces raw snapshots into one entry per UTC calendar day.
//
// Rules:
//   - only villages present in the current roster contribute; an empty or
//     unknown roster yields an empty result
//   - within a (day, village) group the last snapshot in scan order wins, so
//     snapshots must arrive ascending by capturedAt (the store's contract)
//   - unit vectors are normalized to the fixed slot width before summation
//   - days without any surviving record are absent from the output; gaps mean
//     "no data", not "zero troops"
func BuildDailyHistory(snapshots []domain.UnitSnapshot, roster []domain.VillageDescriptor) []domain.DailyHistoryEntry {
	if len(roster) == 0 {
		return nil
	}

	current := make(map[string]struct{}, len(roster))
	for _, v := range roster {
		current[v.VillageID] = struct{}{}
	}

	// day -> village -> normalized units of the latest snapshot seen so far
	days := make(map[string]map[string][]int64)
	for _, snap := range snapshots {
		if _, ok := current[snap.VillageID]; !ok {
			continue
		}
		day := domain.DayKey(snap.CapturedAt)
		villages, ok := days[day]
		if !ok {
			villages = make(map[string][]int64)
			days[day] = villages
		}
		villages[snap.VillageID] = domain.NormalizeUnits(snap.Units)
	}

	entries := make([]domain.DailyHistoryEntry, 0, len(days))
	for day, villages := range days {
		totals := make([]int64, domain.UnitSlots)
		var count int64
		for _, units := range villages {
			for i, n := range units {
				totals[i] += n
				count += n
			}
		}
		entries = append(entries, domain.DailyHistoryEntry{
			Date:            day,
			PerVillageUnits: villages,
			TotalUnits:      totals,
			TotalCount:      count,
		})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Date < entries[j].Date })
	return entries
}

// LatestUnits keeps the most recent snapshot per village, ignoring day
// buckets. Snapshots must be ascending by capturedAt; villages outside the
// roster are dropped.
func LatestUnits(snapshots []domain.UnitSnapshot, roster []domain.VillageDescriptor) map[string]domain.UnitSnapshot {
	current := make(map[string]struct{}, len(roster))
	for _, v := range roster {
		current[v.VillageID] = struct{}{}
	}

	latest := make(map[string]domain.UnitSnapshot, len(roster))
	for _, snap := range snapshots {
		if _, ok := current[snap.VillageID]; !ok {
			continue
		}
		latest[snap.VillageID] = snap
	}
	return latest
}
