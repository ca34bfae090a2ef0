package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"server/internal/domain"
)

type fakeTokens struct {
	token     *domain.CollectorToken
	usages    []domain.TokenUsage
	touched   []string
	usageErr  error
	resolveIn string
}

func (f *fakeTokens) Resolve(_ context.Context, token string) (*domain.CollectorToken, error) {
	f.resolveIn = token
	if f.token == nil || f.token.Token != token {
		return nil, domain.ErrUnauthorized
	}
	return f.token, nil
}

func (f *fakeTokens) RecordUsage(_ context.Context, usage domain.TokenUsage) error {
	if f.usageErr != nil {
		return f.usageErr
	}
	f.usages = append(f.usages, usage)
	return nil
}

func (f *fakeTokens) TouchLastUsed(_ context.Context, tokenID string) error {
	f.touched = append(f.touched, tokenID)
	return nil
}

type fakeUnitStore struct {
	batches   [][]domain.UnitSnapshot
	snapshots []domain.UnitSnapshot
}

func (f *fakeUnitStore) AppendBatch(_ context.Context, snapshots []domain.UnitSnapshot) error {
	f.batches = append(f.batches, snapshots)
	return nil
}

func (f *fakeUnitStore) ListRange(_ context.Context, _ string, from, to time.Time) ([]domain.UnitSnapshot, error) {
	var out []domain.UnitSnapshot
	for _, s := range f.snapshots {
		if !s.CapturedAt.Before(from) && s.CapturedAt.Before(to) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeUnitStore) LatestPerVillage(context.Context, string) ([]domain.UnitSnapshot, error) {
	return f.snapshots, nil
}

func newIngestApp(tokens *fakeTokens, units *fakeUnitStore, now time.Time) *App {
	return &App{
		Logger: zerolog.Nop(),
		Tokens: tokens,
		Units:  units,
		Now:    func() time.Time { return now },
	}
}

func TestIngestUnitsRejectsMissingToken(t *testing.T) {
	app := newIngestApp(&fakeTokens{}, &fakeUnitStore{}, time.Now())

	req := httptest.NewRequest("POST", "/api/event", strings.NewReader(`{"villages":[]}`))
	rr := httptest.NewRecorder()
	app.IngestUnits(rr, req)

	if rr.Code != 401 {
		t.Fatalf("status = %d, want 401", rr.Code)
	}
}

func TestIngestUnitsRejectsUnknownToken(t *testing.T) {
	units := &fakeUnitStore{}
	app := newIngestApp(&fakeTokens{}, units, time.Now())

	req := httptest.NewRequest("POST", "/api/event", strings.NewReader(`{"villages":[]}`))
	req.Header.Set("X-Token", "nope")
	rr := httptest.NewRecorder()
	app.IngestUnits(rr, req)

	if rr.Code != 401 {
		t.Fatalf("status = %d, want 401", rr.Code)
	}
	if len(units.batches) != 0 {
		t.Fatalf("store written despite auth failure")
	}
}

func validToken() *domain.CollectorToken {
	return &domain.CollectorToken{ID: "tok-1", AccountID: "acc-1", Token: "secret"}
}

func TestIngestUnitsRejectsInvalidPayload(t *testing.T) {
	cases := map[string]string{
		"not json":         `{{`,
		"empty village id": `{"villages":[{"villageId":"","units":[1]}]}`,
		"missing units":    `{"villages":[{"villageId":"V1"}]}`,
		"negative units":   `{"villages":[{"villageId":"V1","units":[1,-2]}]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			units := &fakeUnitStore{}
			app := newIngestApp(&fakeTokens{token: validToken()}, units, time.Now())

			req := httptest.NewRequest("POST", "/api/event", strings.NewReader(body))
			req.Header.Set("X-Token", "secret")
			rr := httptest.NewRecorder()
			app.IngestUnits(rr, req)

			if rr.Code != 400 {
				t.Fatalf("status = %d, want 400", rr.Code)
			}
			if len(units.batches) != 0 {
				t.Fatalf("store written despite validation failure")
			}
		})
	}
}

func TestIngestUnitsStampsBatchWithOneTimestamp(t *testing.T) {
	now := time.Date(2024, 1, 5, 14, 30, 0, 0, time.UTC)
	tokens := &fakeTokens{token: validToken()}
	units := &fakeUnitStore{}
	app := newIngestApp(tokens, units, now)

	body := `{"villages":[{"villageId":"V1","units":[1,2,3]},{"villageId":"V2","units":[4]}]}`
	req := httptest.NewRequest("POST", "/api/event", strings.NewReader(body))
	req.Header.Set("X-Token", "secret")
	req.Header.Set("User-Agent", "collector/1.0")
	req.RemoteAddr = "203.0.113.7:4711"
	rr := httptest.NewRecorder()
	app.IngestUnits(rr, req)

	if rr.Code != 200 {
		t.Fatalf("status = %d, want 200; body: %s", rr.Code, rr.Body.String())
	}
	var resp map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["success"] != true {
		t.Fatalf("response = %#v, want success=true", resp)
	}

	if len(units.batches) != 1 {
		t.Fatalf("expected a single batch append, got %d", len(units.batches))
	}
	batch := units.batches[0]
	if len(batch) != 2 {
		t.Fatalf("batch size = %d, want 2", len(batch))
	}
	for _, snap := range batch {
		if snap.AccountID != "acc-1" {
			t.Fatalf("snapshot account = %q, want acc-1", snap.AccountID)
		}
		if !snap.CapturedAt.Equal(now) {
			t.Fatalf("capturedAt = %v, want %v (whole batch shares one stamp)", snap.CapturedAt, now)
		}
	}

	if len(tokens.usages) != 1 {
		t.Fatalf("expected 1 usage marker, got %d", len(tokens.usages))
	}
	usage := tokens.usages[0]
	if usage.TokenID != "tok-1" || usage.IPAddress != "203.0.113.7" || usage.UserAgent != "collector/1.0" {
		t.Fatalf("usage = %+v", usage)
	}
	if len(tokens.touched) != 1 || tokens.touched[0] != "tok-1" {
		t.Fatalf("touched = %v, want [tok-1]", tokens.touched)
	}
}

func TestIngestUnitsAcceptsEmptyBatch(t *testing.T) {
	tokens := &fakeTokens{token: validToken()}
	units := &fakeUnitStore{}
	app := newIngestApp(tokens, units, time.Now())

	req := httptest.NewRequest("POST", "/api/event", strings.NewReader(`{"villages":[]}`))
	req.Header.Set("X-Token", "secret")
	rr := httptest.NewRecorder()
	app.IngestUnits(rr, req)

	if rr.Code != 200 {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if len(units.batches) != 0 {
		t.Fatalf("empty batch must not hit the store")
	}
	if len(tokens.usages) != 1 {
		t.Fatalf("usage marker still expected for empty batch, got %d", len(tokens.usages))
	}
}

func TestIngestUnitsSucceedsWhenUsageMarkerFails(t *testing.T) {
	tokens := &fakeTokens{token: validToken(), usageErr: context.DeadlineExceeded}
	units := &fakeUnitStore{}
	app := newIngestApp(tokens, units, time.Now())

	body := `{"villages":[{"villageId":"V1","units":[1]}]}`
	req := httptest.NewRequest("POST", "/api/event", strings.NewReader(body))
	req.Header.Set("X-Token", "secret")
	rr := httptest.NewRecorder()
	app.IngestUnits(rr, req)

	if rr.Code != 200 {
		t.Fatalf("status = %d, want 200 (marker failure must not fail ingestion)", rr.Code)
	}
	if len(units.batches) != 1 {
		t.Fatalf("expected batch append despite marker failure")
	}
}
