package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"server/internal/domain"
	"server/internal/middleware"
)

type ingestVillage struct {
	VillageID string  `json:"villageId"`
	Units     []int64 `json:"units"`
}

type ingestRequest struct {
	Villages []ingestVillage `json:"villages"`
}

// IngestUnits accepts a batch of per-village unit snapshots pushed by the
// collector. The whole batch shares one server-observed capture timestamp and
// lands in the store as a single append.
func (a *App) IngestUnits(w http.ResponseWriter, r *http.Request) {
	tokenValue := r.Header.Get("X-Token")
	if tokenValue == "" {
		a.error(w, http.StatusUnauthorized, "auth_invalid", "token not provided")
		return
	}

	token, err := a.Tokens.Resolve(r.Context(), tokenValue)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			a.error(w, http.StatusUnauthorized, "auth_invalid", "invalid token")
			return
		}
		a.Logger.Error().Err(err).Msg("resolve collector token")
		a.error(w, http.StatusInternalServerError, "internal", "internal server error")
		return
	}

	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "validation_failed", "invalid payload")
		return
	}
	for _, village := range req.Villages {
		if village.VillageID == "" {
			a.error(w, http.StatusBadRequest, "validation_failed", "villageId is required")
			return
		}
		if village.Units == nil {
			a.error(w, http.StatusBadRequest, "validation_failed", "units are required")
			return
		}
		for _, n := range village.Units {
			if n < 0 {
				a.error(w, http.StatusBadRequest, "validation_failed", "unit counts must be non-negative")
				return
			}
		}
	}

	if len(req.Villages) > 0 {
		capturedAt := a.Now().UTC()
		snapshots := make([]domain.UnitSnapshot, 0, len(req.Villages))
		for _, village := range req.Villages {
			snapshots = append(snapshots, domain.UnitSnapshot{
				AccountID:  token.AccountID,
				VillageID:  village.VillageID,
				Units:      village.Units,
				CapturedAt: capturedAt,
			})
		}
		if err := a.Units.AppendBatch(r.Context(), snapshots); err != nil {
			a.Logger.Error().Err(err).Str("account_id", token.AccountID).Msg("append unit records")
			a.error(w, http.StatusInternalServerError, "internal", "internal server error")
			return
		}
	}

	a.markTokenUsage(r, token)

	a.json(w, http.StatusOK, map[string]any{"success": true})
}

// markTokenUsage records the operational usage marker. Failures are logged
// and never fail the ingestion itself.
func (a *App) markTokenUsage(r *http.Request, token *domain.CollectorToken) {
	ip := middleware.ClientIP(r)
	usage := domain.TokenUsage{
		TokenID:   token.ID,
		UsedAt:    a.Now().UTC(),
		IPAddress: ip,
		UserAgent: r.Header.Get("User-Agent"),
	}
	if a.Country != nil && ip != "" {
		if country, err := a.Country(ip); err == nil {
			usage.CountryCode = country
		}
	}
	if err := a.Tokens.RecordUsage(r.Context(), usage); err != nil {
		a.Logger.Error().Err(err).Str("token_id", token.ID).Msg("record token usage")
	}
	if err := a.Tokens.TouchLastUsed(r.Context(), token.ID); err != nil {
		a.Logger.Error().Err(err).Str("token_id", token.ID).Msg("touch token last used")
	}
}
