package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"server/internal/adapter/repo"
	"server/internal/domain"
	"server/internal/history"
	"server/internal/infra"
	"server/internal/middleware"
)

// CountryLookup resolves ISO country codes for an IP address. Nil disables
// country enrichment of token-usage markers.
type CountryLookup func(ip string) (string, error)

// App bundles everything the HTTP handlers need.
type App struct {
	SQL      infra.SQLExecutor
	Logger   zerolog.Logger
	Units    domain.UnitRecordRepository
	Villages domain.VillageRepository
	Tokens   domain.TokenRepository
	Accounts domain.AccountRepository
	History  *history.Service
	Country  CountryLookup

	// Now is the reference clock; injectable so handler tests stay
	// deterministic.
	Now func() time.Time
}

// NewApp wires the repositories and the history service over the SQL executor.
func NewApp(sql infra.SQLExecutor, logger zerolog.Logger, country CountryLookup) *App {
	units := repo.NewUnitRecordRepository(sql)
	villages := repo.NewVillageRepository(sql)
	return &App{
		SQL:      sql,
		Logger:   logger,
		Units:    units,
		Villages: villages,
		Tokens:   repo.NewTokenRepository(sql),
		Accounts: repo.NewAccountRepository(sql),
		History:  history.NewService(units, villages),
		Country:  country,
		Now:      time.Now,
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, slug, message string) {
	a.json(w, code, map[string]any{"error": slug, "message": message})
}

func (a *App) currentUserID(r *http.Request) string {
	return middleware.UserIDFromContext(r.Context())
}
