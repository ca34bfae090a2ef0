package history

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"server/internal/domain"
)

const (
	// DefaultLookbackDays applies when the caller does not specify a window.
	DefaultLookbackDays = 30
	// MaxLookbackDays caps the queryable window.
	MaxLookbackDays = 90
)

// Service computes daily history for an account from its raw snapshots and
// current roster. The reference instant is injected by the caller, keeping
// the computation deterministic.
type Service struct {
	units    domain.UnitRecordRepository
	villages domain.VillageRepository
}

func NewService(units domain.UnitRecordRepository, villages domain.VillageRepository) *Service {
	return &Service{units: units, villages: villages}
}

// Compute returns one entry per day with data inside [now-days, now),
// ascending by date, together with the roster the entries were filtered
// against. days outside [1, MaxLookbackDays] is a caller error rejected
// before any query.
func (s *Service) Compute(ctx context.Context, accountID string, days int, now time.Time) ([]domain.DailyHistoryEntry, []domain.VillageDescriptor, error) {
	if days < 1 || days > MaxLookbackDays {
		return nil, nil, fmt.Errorf("%w: days must be between 1 and %d", domain.ErrValidation, MaxLookbackDays)
	}

	from := now.AddDate(0, 0, -days)

	// The two reads are independent; issue them concurrently. A cancelled
	// request context aborts both queries.
	var (
		snapshots []domain.UnitSnapshot
		roster    []domain.VillageDescriptor
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snapshots, err = s.units.ListRange(gctx, accountID, from, now)
		if err != nil {
			return fmt.Errorf("list unit records: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		roster, err = s.villages.ListCurrent(gctx, accountID)
		if err != nil {
			return fmt.Errorf("list villages: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	return BuildDailyHistory(snapshots, roster), roster, nil
}

// CurrentUnits joins the roster with each village's most recent snapshot.
// Villages without any record report a zero vector and no update time.
func (s *Service) CurrentUnits(ctx context.Context, accountID string) ([]domain.VillageUnits, error) {
	var (
		snapshots []domain.UnitSnapshot
		roster    []domain.VillageDescriptor
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snapshots, err = s.units.LatestPerVillage(gctx, accountID)
		if err != nil {
			return fmt.Errorf("latest unit records: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		roster, err = s.villages.ListCurrent(gctx, accountID)
		if err != nil {
			return fmt.Errorf("list villages: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	latest := LatestUnits(snapshots, roster)
	out := make([]domain.VillageUnits, 0, len(roster))
	for _, village := range roster {
		vu := domain.VillageUnits{
			VillageDescriptor: village,
			Units:             make([]int64, domain.UnitSlots),
		}
		if snap, ok := latest[village.VillageID]; ok {
			vu.Units = domain.NormalizeUnits(snap.Units)
			capturedAt := snap.CapturedAt
			vu.UnitsUpdatedAt = &capturedAt
		}
		out = append(out, vu)
	}
	return out, nil
}
