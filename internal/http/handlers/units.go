package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"server/internal/domain"
)

type currentVillageDTO struct {
	VillageID      string     `json:"villageId"`
	Name           string     `json:"name"`
	IsMainVillage  bool       `json:"isMainVillage"`
	IsCity         bool       `json:"isCity"`
	Units          []int64    `json:"units"`
	UnitsUpdatedAt *time.Time `json:"unitsUpdatedAt"`
}

// CurrentUnits returns the latest recorded unit counts for every village in
// the account's current roster. Villages without any record yet report a zero
// vector and a null update time.
func (a *App) CurrentUnits(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	accountID := chi.URLParam(r, "accountID")

	if err := a.Accounts.OwnedBy(r.Context(), accountID, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "game account not found")
			return
		}
		a.Logger.Error().Err(err).Msg("account ownership check")
		a.error(w, http.StatusInternalServerError, "internal", "internal server error")
		return
	}

	villages, err := a.History.CurrentUnits(r.Context(), accountID)
	if err != nil {
		a.Logger.Error().Err(err).Str("account_id", accountID).Msg("load current units")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load units")
		return
	}

	out := make([]currentVillageDTO, 0, len(villages))
	for _, v := range villages {
		out = append(out, currentVillageDTO{
			VillageID:      v.VillageID,
			Name:           v.Name,
			IsMainVillage:  v.IsMainVillage,
			IsCity:         v.IsCity,
			Units:          v.Units,
			UnitsUpdatedAt: v.UnitsUpdatedAt,
		})
	}

	a.json(w, http.StatusOK, map[string]any{"villages": out})
}
