package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"cookstove_tracker/internal/models"
	"cookstove_tracker/internal/service"
)

func TestEventsHandler_ListAndValidation(t *testing.T) {
	f := newFixture()
	now := time.Now().UTC().Truncate(time.Second)
	f.activity.resp = []models.ActivityEvent{
		{EventID: "e1", OccurredAt: now, Type: models.EventStoveRegistered, Description: "registered"},
		{EventID: "e2", OccurredAt: now.Add(time.Second), Type: models.EventStovePaired, Description: "paired"},
	}
	r := f.router()

	if w := do(r, http.MethodGet, "/api/admin/events?from=notatime", "", "admin"); w.Code != http.StatusBadRequest || errorOf(t, w) != errFromInvalid {
		t.Fatalf("expected 400 invalid 'from', got %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/api/admin/events?to=31/12/2024", "", "admin"); w.Code != http.StatusBadRequest || errorOf(t, w) != errToInvalid {
		t.Fatalf("expected 400 invalid 'to', got %d", w.Code)
	}

	q := "/api/admin/events?from=" + now.Format(time.RFC3339) + "&to=" + now.Add(2*time.Second).Format(time.RFC3339) + "&type=stove_paired"
	w := do(r, http.MethodGet, q, "", "admin")
	if w.Code != http.StatusOK {
		t.Fatalf("events status=%d, body=%s", w.Code, w.Body.String())
	}
	var out struct {
		Count  int                    `json:"count"`
		Events []models.ActivityEvent `json:"events"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	if out.Count != 2 || len(out.Events) != 2 || out.Events[0].EventID != "e1" {
		t.Fatalf("unexpected response: %+v", out)
	}
	got := f.activity.lastFilter
	if !got.From.Equal(now) || !got.To.Equal(now.Add(2*time.Second)) || got.Type != "stove_paired" {
		t.Fatalf("filter=%+v", got)
	}
}

func TestEventsHandler_DateOnlyToIsEndOfDay(t *testing.T) {
	f := newFixture()
	w := do(f.router(), http.MethodGet, "/api/admin/events?from=2024-03-01&to=2024-03-07", "", "admin")
	if w.Code != http.StatusOK || w.Body.String() != `{"count":0,"events":[]}` {
		t.Fatalf("%d %s", w.Code, w.Body.String())
	}
	want := time.Date(2024, 3, 7, 23, 59, 59, 999999999, time.UTC)
	if !f.activity.lastFilter.To.Equal(want) {
		t.Fatalf("to=%v want %v", f.activity.lastFilter.To, want)
	}
	if !f.activity.lastFilter.From.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("from=%v", f.activity.lastFilter.From)
	}
}

func TestEventsHandler_InvalidRange(t *testing.T) {
	f := newFixture()
	f.activity.err = svcErr(service.ErrValidation, "invalid time range: from must be <= to")
	w := do(f.router(), http.MethodGet, "/api/admin/events?from=2024-03-07&to=2024-03-01", "", "admin")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("got %d", w.Code)
	}
}

func TestEventsHandler_StoveAndLimit(t *testing.T) {
	f := newFixture()
	r := f.router()

	w := do(r, http.MethodGet, "/api/admin/events?stoveId=S1&limit=25", "", "admin")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if got := f.activity.lastFilter; got.StoveID != "S1" || got.Limit != 25 {
		t.Fatalf("filter=%+v", got)
	}

	if w := do(r, http.MethodGet, "/api/admin/events?limit=ten", "", "admin"); w.Code != http.StatusBadRequest || errorOf(t, w) != errLimit {
		t.Fatalf("bad limit: %d %s", w.Code, w.Body.String())
	}

	f.activity.err = svcErr(service.ErrValidation, "limit must be at most 1000")
	if w := do(r, http.MethodGet, "/api/admin/events?limit=5000", "", "admin"); w.Code != http.StatusBadRequest || errorOf(t, w) != "limit must be at most 1000" {
		t.Fatalf("limit over cap: %d %s", w.Code, w.Body.String())
	}
}

func TestParseQueryTime(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"2024-03-07T10:00:00+03:00", time.Date(2024, 3, 7, 7, 0, 0, 0, time.UTC), true},
		{"2024-03-07 10:00:00", time.Date(2024, 3, 7, 10, 0, 0, 0, time.UTC), true},
		{"2024-03-07", time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC), true},
		{"07.03.2024", time.Time{}, false},
	}
	for _, tc := range cases {
		got, err := parseQueryTime(tc.in)
		if (err == nil) != tc.ok {
			t.Fatalf("%q: err=%v", tc.in, err)
		}
		if tc.ok && !got.Equal(tc.want) {
			t.Fatalf("%q: got %v want %v", tc.in, got, tc.want)
		}
	}
	if isDateOnly("2024-03-07T00:00:00Z") || !isDateOnly("2024-03-07") {
		t.Fatal("isDateOnly")
	}
}
