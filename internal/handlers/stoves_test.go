package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"cookstove_tracker/internal/metrics"
	"cookstove_tracker/internal/models"
	"cookstove_tracker/internal/service"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

const validUsage = `{"stoveId":"S1","date":"2024-03-07","cookingEvents":2,"totalMinutes":45,"fuelUsedKg":1.25}`

func TestRegisterStove(t *testing.T) {
	code := "ABC123"
	f := newFixture()
	f.registry.registered = models.Stove{ID: 7, StoveID: "S1", Model: "EcoChef", Status: models.StoveStatusUnpaired, PairingCode: &code}
	r := f.router()

	if w := do(r, http.MethodPost, "/api/admin/stoves/register", `{"stoveId":"S1","model":"EcoChef"}`, "user"); w.Code != http.StatusForbidden {
		t.Fatalf("non-admin: got %d", w.Code)
	}

	w := do(r, http.MethodPost, "/api/admin/stoves/register", `{"stoveId":"S1","stoveModel":"EcoChef"}`, "admin")
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if f.registry.lastRegisterModel != "EcoChef" {
		t.Fatalf("stoveModel alias not applied: %q", f.registry.lastRegisterModel)
	}
	out := decode(t, w)
	if out["message"] != "Stove registered successfully" {
		t.Fatalf("message=%v", out["message"])
	}
	stove, _ := out["stove"].(map[string]any)
	if stove["pairing_code"] != "ABC123" || stove["status"] != "unpaired" || stove["id"] != float64(7) {
		t.Fatalf("stove=%v", stove)
	}
}

func TestRegisterStove_Conflict(t *testing.T) {
	f := newFixture()
	f.registry.registerErr = svcErr(service.ErrConflict, "stove already registered")
	w := do(f.router(), http.MethodPost, "/api/admin/stoves/register", `{"stoveId":"S1","model":"m"}`, "admin")
	if w.Code != http.StatusConflict || errorOf(t, w) != "stove already registered" {
		t.Fatalf("got %d %s", w.Code, w.Body.String())
	}
}

func TestPairStove(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		code   int
		result string
	}{
		{"success", nil, http.StatusOK, metrics.PairingSuccess},
		{"bad code", svcErr(service.ErrNotFound, "invalid stove ID or pairing code"), http.StatusNotFound, metrics.PairingNotFound},
		{"already paired", svcErr(service.ErrConflict, "stove already paired"), http.StatusConflict, metrics.PairingConflict},
		{"missing fields", svcErr(service.ErrValidation, "stoveId and pairingCode are required"), http.StatusBadRequest, metrics.PairingInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := metrics.New()
			f := newFixture()
			f.registry.paired = models.PairedStove{StoveID: "S1", Model: "EcoChef", APIKey: "key-1"}
			f.registry.pairErr = tc.err

			w := do(f.router(WithMetrics(m)), http.MethodPost, "/api/stoves/pair", `{"stoveId":"S1","pairingCode":"ABC123"}`, "user")
			if w.Code != tc.code {
				t.Fatalf("status=%d want %d body=%s", w.Code, tc.code, w.Body.String())
			}
			if got := testutil.ToFloat64(m.PairingAttempts.WithLabelValues(tc.result)); got != 1 {
				t.Fatalf("pairing metric %q = %v", tc.result, got)
			}
			if tc.err != nil {
				return
			}
			if f.registry.lastPairUser != testUserID {
				t.Fatalf("paired to %d", f.registry.lastPairUser)
			}
			out := decode(t, w)
			stove, _ := out["stove"].(map[string]any)
			if out["message"] != "Stove paired successfully" || stove["api_key"] != "key-1" {
				t.Fatalf("body=%v", out)
			}
		})
	}
}

func TestIngestData(t *testing.T) {
	m := metrics.New()
	f := newFixture()
	f.registry.keys["key-1"] = models.Stove{StoveID: "S1", Status: models.StoveStatusPaired}
	f.ingest.rec = models.UsageRecord{ID: 1, StoveID: "S1", Date: "2024-03-07", CookingEvents: 2, TotalMinutes: 45, FuelUsedKg: 1.25}
	r := f.router(WithMetrics(m))

	w := do(r, http.MethodPost, "/api/stoves/data", validUsage, "key-1")
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	out := decode(t, w)
	usage, _ := out["usage"].(map[string]any)
	if out["message"] != "Usage data saved successfully" || usage["fuel_used_kg"] != 1.25 {
		t.Fatalf("body=%v", out)
	}
	if f.ingest.lastStove.StoveID != "S1" || *f.ingest.lastInput.TotalMinutes != 45 {
		t.Fatalf("service args: %+v", f.ingest.lastStove)
	}
	if got := testutil.ToFloat64(m.IngestRecords.WithLabelValues(metrics.PathAuthenticated)); got != 1 {
		t.Fatalf("accepted metric = %v", got)
	}

	// missing key never reaches the service
	w = do(r, http.MethodPost, "/api/stoves/data", validUsage, "")
	if w.Code != http.StatusUnauthorized || f.ingest.auth != 1 {
		t.Fatalf("missing key: %d, calls=%d", w.Code, f.ingest.auth)
	}

	f.ingest.err = svcErr(service.ErrForbidden, "stove ID mismatch")
	w = do(r, http.MethodPost, "/api/stoves/data", validUsage, "key-1")
	if w.Code != http.StatusForbidden || errorOf(t, w) != "stove ID mismatch" {
		t.Fatalf("mismatch: %d %s", w.Code, w.Body.String())
	}
	if got := testutil.ToFloat64(m.IngestRejected.WithLabelValues(metrics.PathAuthenticated, "mismatch")); got != 1 {
		t.Fatalf("rejected metric = %v", got)
	}
}

func TestIngestData_MissingFieldsStayNil(t *testing.T) {
	f := newFixture()
	f.registry.keys["key-1"] = models.Stove{StoveID: "S1"}
	f.ingest.err = svcErr(service.ErrValidation, "stoveId, date, cookingEvents, totalMinutes and fuelUsedKg are required")

	w := do(f.router(), http.MethodPost, "/api/stoves/data", `{"stoveId":"S1","date":"2024-03-07","cookingEvents":0,"totalMinutes":0}`, "key-1")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", w.Code)
	}
	in := f.ingest.lastInput
	if in.CookingEvents == nil || *in.CookingEvents != 0 || in.FuelUsedKg != nil {
		t.Fatalf("zero vs missing not preserved: %+v", in)
	}
}

func TestIngestOpen(t *testing.T) {
	f := newFixture()
	f.ingest.rec = models.UsageRecord{ID: 3, StoveID: "S1", Date: "2024-03-07"}
	r := f.router()

	w := do(r, http.MethodPost, "/api/stoves/data/open", validUsage, "")
	if w.Code != http.StatusCreated || f.ingest.open != 1 {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}

	f.ingest.err = svcErr(service.ErrNotFound, "stove not found")
	w = do(r, http.MethodPost, "/api/stoves/data/open", validUsage, "")
	if w.Code != http.StatusNotFound || errorOf(t, w) != "stove not found" {
		t.Fatalf("unknown stove: %d %s", w.Code, w.Body.String())
	}

	f.ingest.err = errors.New("disk full")
	w = do(r, http.MethodPost, "/api/stoves/data/open", validUsage, "")
	if w.Code != http.StatusInternalServerError || errorOf(t, w) != errInternal {
		t.Fatalf("store failure: %d %s", w.Code, w.Body.String())
	}
}

func TestIngestOpen_RateLimited(t *testing.T) {
	m := metrics.New()
	limiter := NewRateLimiter(1, 2)
	defer limiter.Stop()
	frozen := time.Date(2024, 3, 7, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return frozen }

	f := newFixture()
	f.registry.known["S1"] = models.Stove{StoveID: "S1"}
	f.registry.known["S2"] = models.Stove{StoveID: "S2"}
	r := f.router(WithMetrics(m), WithOpenIngestLimiter(limiter))

	for i := 0; i < 2; i++ {
		if w := do(r, http.MethodPost, "/api/stoves/data/open", validUsage, ""); w.Code != http.StatusCreated {
			t.Fatalf("request %d: %d", i, w.Code)
		}
	}
	w := do(r, http.MethodPost, "/api/stoves/data/open", validUsage, "")
	if w.Code != http.StatusTooManyRequests || errorOf(t, w) != "rate limit exceeded" {
		t.Fatalf("third request: %d %s", w.Code, w.Body.String())
	}
	if f.ingest.open != 2 {
		t.Fatalf("service calls = %d, want 2", f.ingest.open)
	}
	if got := testutil.ToFloat64(m.IngestRejected.WithLabelValues(metrics.PathOpen, "rate_limited")); got != 1 {
		t.Fatalf("rate_limited metric = %v", got)
	}

	// another stove has its own bucket
	other := `{"stoveId":"S2","date":"2024-03-07","cookingEvents":1,"totalMinutes":10,"fuelUsedKg":0.5}`
	if w := do(r, http.MethodPost, "/api/stoves/data/open", other, ""); w.Code != http.StatusCreated {
		t.Fatalf("other stove: %d", w.Code)
	}
}

func TestIngestOpen_BucketIgnoresWhitespace(t *testing.T) {
	limiter := NewRateLimiter(1, 1)
	defer limiter.Stop()
	frozen := time.Date(2024, 3, 7, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return frozen }

	f := newFixture()
	f.registry.known["S1"] = models.Stove{StoveID: "S1"}
	r := f.router(WithOpenIngestLimiter(limiter))

	accepted := 0
	for _, id := range []string{"S1", " S1", "S1 ", "  S1", "S1\t"} {
		body := fmt.Sprintf(`{"stoveId":%q,"date":"2024-03-07","cookingEvents":1,"totalMinutes":10,"fuelUsedKg":0.5}`, id)
		if w := do(r, http.MethodPost, "/api/stoves/data/open", body, ""); w.Code == http.StatusCreated {
			accepted++
		}
	}
	if accepted != 1 {
		t.Fatalf("accepted %d submissions with burst 1, want 1", accepted)
	}
	if n := limiter.size(); n != 1 {
		t.Fatalf("limiter buckets = %d, want 1", n)
	}
}

func TestIngestOpen_UnknownStoveGetsNoBucket(t *testing.T) {
	m := metrics.New()
	limiter := NewRateLimiter(1, 1)
	defer limiter.Stop()

	f := newFixture()
	r := f.router(WithMetrics(m), WithOpenIngestLimiter(limiter))

	for i := 0; i < 50; i++ {
		body := fmt.Sprintf(`{"stoveId":"ghost-%d","date":"2024-03-07","cookingEvents":1,"totalMinutes":10,"fuelUsedKg":0.5}`, i)
		w := do(r, http.MethodPost, "/api/stoves/data/open", body, "")
		if w.Code != http.StatusNotFound || errorOf(t, w) != "stove not found" {
			t.Fatalf("ghost-%d: %d %s", i, w.Code, w.Body.String())
		}
	}
	if n := limiter.size(); n != 0 {
		t.Fatalf("limiter buckets = %d, want 0", n)
	}
	if f.ingest.open != 0 {
		t.Fatalf("service calls = %d, want 0", f.ingest.open)
	}
	if got := testutil.ToFloat64(m.IngestRejected.WithLabelValues(metrics.PathOpen, "unknown_stove")); got != 50 {
		t.Fatalf("unknown_stove metric = %v", got)
	}
}

func TestIngestOpen_BlankStoveSkipsLimiter(t *testing.T) {
	limiter := NewRateLimiter(1, 1)
	defer limiter.Stop()

	f := newFixture()
	f.ingest.err = svcErr(service.ErrValidation, "stoveId is required")
	r := f.router(WithOpenIngestLimiter(limiter))

	w := do(r, http.MethodPost, "/api/stoves/data/open", `{"stoveId":"  ","date":"2024-03-07"}`, "")
	if w.Code != http.StatusBadRequest || f.registry.lookups != 0 || limiter.size() != 0 {
		t.Fatalf("status=%d lookups=%d buckets=%d", w.Code, f.registry.lookups, limiter.size())
	}
}

func TestListStoves(t *testing.T) {
	f := newFixture()
	r := f.router()

	w := do(r, http.MethodGet, "/api/stoves", "", "user")
	if w.Code != http.StatusOK || w.Body.String() != `{"stoves":[]}` {
		t.Fatalf("empty: %d %s", w.Code, w.Body.String())
	}

	f.registry.stoves = []models.Stove{{ID: 1, StoveID: "S1", Model: "m", Status: models.StoveStatusPaired}}
	w = do(r, http.MethodGet, "/api/stoves", "", "user")
	stoves, _ := decode(t, w)["stoves"].([]any)
	if len(stoves) != 1 {
		t.Fatalf("stoves=%v", stoves)
	}
	if _, leaked := stoves[0].(map[string]any)["api_key"]; leaked {
		t.Fatal("api key serialized in listing")
	}
}
