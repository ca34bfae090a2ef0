package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"server/internal/domain"
	"server/internal/history"
)

type historyVillageDTO struct {
	VillageID string `json:"villageId"`
	Name      string `json:"name"`
}

type historyEntryDTO struct {
	Date     string             `json:"date"`
	Units    []int64            `json:"units"`
	Total    int64              `json:"total"`
	Villages map[string][]int64 `json:"villages"`
}

// UnitsHistory returns the per-day troop breakdown for one of the caller's
// accounts, ascending by date. Days without data are absent from the result.
func (a *App) UnitsHistory(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	accountID := chi.URLParam(r, "accountID")

	days := history.DefaultLookbackDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			a.error(w, http.StatusBadRequest, "validation_failed", "days must be an integer")
			return
		}
		days = parsed
	}
	if days < 1 || days > history.MaxLookbackDays {
		a.error(w, http.StatusBadRequest, "validation_failed", "days must be between 1 and 90")
		return
	}

	if err := a.Accounts.OwnedBy(r.Context(), accountID, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "game account not found")
			return
		}
		a.Logger.Error().Err(err).Msg("account ownership check")
		a.error(w, http.StatusInternalServerError, "internal", "internal server error")
		return
	}

	entries, roster, err := a.History.Compute(r.Context(), accountID, days, a.Now().UTC())
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			a.error(w, http.StatusBadRequest, "validation_failed", "invalid lookback window")
			return
		}
		a.Logger.Error().Err(err).Str("account_id", accountID).Msg("compute units history")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load history")
		return
	}

	villages := make([]historyVillageDTO, 0, len(roster))
	for _, v := range roster {
		villages = append(villages, historyVillageDTO{VillageID: v.VillageID, Name: v.Name})
	}
	historyOut := make([]historyEntryDTO, 0, len(entries))
	for _, entry := range entries {
		historyOut = append(historyOut, historyEntryDTO{
			Date:     entry.Date,
			Units:    entry.TotalUnits,
			Total:    entry.TotalCount,
			Villages: entry.PerVillageUnits,
		})
	}

	a.json(w, http.StatusOK, map[string]any{
		"villages": villages,
		"history":  historyOut,
	})
}
