package domain

import "time"

// VillageDescriptor is one entry of the current village roster for an account.
// The roster always reflects the latest known state of the game account, not a
// historical one.
type VillageDescriptor struct {
	VillageID     string
	Name          string
	IsMainVillage bool
	IsCity        bool
}

// VillageUnits pairs a roster village with its most recent unit record, used
// by the current-units view. UnitsUpdatedAt is nil when no record exists yet.
type VillageUnits struct {
	VillageDescriptor
	Units          []int64
	UnitsUpdatedAt *time.Time
}
