package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cookstove_tracker/internal/models"
	"cookstove_tracker/internal/service"

	"github.com/gin-gonic/gin"
)

func svcErr(kind error, msg string) error {
	return &service.Error{Kind: kind, Msg: msg}
}

// ---- Service Mocks ----

type mockAuth struct {
	signUpID  int
	signUpErr error
	genToken  string
	genUser   models.User
	genErr    error
	parseID   int
	parseErr  error
	users     map[int]models.User
	getErr    error

	lastSignUpName  string
	lastSignUpEmail string
	lastGenEmail    string
	lastParseToken  string
}

func (m *mockAuth) SignUp(_ context.Context, name, email, _ string) (int, error) {
	m.lastSignUpName = name
	m.lastSignUpEmail = email
	return m.signUpID, m.signUpErr
}

func (m *mockAuth) CreateUser(_ context.Context, _, _, _, _ string) (int, error) {
	return m.signUpID, m.signUpErr
}

func (m *mockAuth) GenerateToken(_ context.Context, email, _ string) (string, models.User, error) {
	m.lastGenEmail = email
	return m.genToken, m.genUser, m.genErr
}

func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

func (m *mockAuth) GetUser(_ context.Context, id int) (models.User, error) {
	if m.getErr != nil {
		return models.User{}, m.getErr
	}
	u, ok := m.users[id]
	if !ok {
		return models.User{}, svcErr(service.ErrNotFound, "user not found")
	}
	return u, nil
}

type mockRegistry struct {
	registered  models.Stove
	registerErr error
	paired      models.PairedStove
	pairErr     error
	stoves      []models.Stove
	listErr     error
	keys        map[string]models.Stove
	resolveErr  error
	known       map[string]models.Stove
	lookups     int

	lastRegisterID    string
	lastRegisterModel string
	lastPairUser      int
}

func (m *mockRegistry) RegisterStove(_ context.Context, stoveID, model string) (models.Stove, error) {
	m.lastRegisterID = stoveID
	m.lastRegisterModel = model
	return m.registered, m.registerErr
}

func (m *mockRegistry) PairStove(_ context.Context, _, _ string, userID int) (models.PairedStove, error) {
	m.lastPairUser = userID
	return m.paired, m.pairErr
}

func (m *mockRegistry) ListUserStoves(_ context.Context, _ int) ([]models.Stove, error) {
	return m.stoves, m.listErr
}

func (m *mockRegistry) GetStove(_ context.Context, stoveID string) (models.Stove, error) {
	m.lookups++
	st, ok := m.known[stoveID]
	if !ok {
		return models.Stove{}, svcErr(service.ErrNotFound, "stove not found")
	}
	return st, nil
}

func (m *mockRegistry) ResolveAPIKey(_ context.Context, key string) (models.Stove, error) {
	if m.resolveErr != nil {
		return models.Stove{}, m.resolveErr
	}
	st, ok := m.keys[key]
	if !ok {
		return models.Stove{}, svcErr(service.ErrUnauthorized, "invalid API key")
	}
	return st, nil
}

type mockIngest struct {
	rec  models.UsageRecord
	err  error
	auth int
	open int

	lastStove models.Stove
	lastInput service.UsageInput
}

func (m *mockIngest) IngestAuthenticated(_ context.Context, stove models.Stove, in service.UsageInput) (models.UsageRecord, error) {
	m.auth++
	m.lastStove = stove
	m.lastInput = in
	return m.rec, m.err
}

func (m *mockIngest) IngestOpen(_ context.Context, in service.UsageInput) (models.UsageRecord, error) {
	m.open++
	m.lastInput = in
	return m.rec, m.err
}

type mockAggregation struct {
	summary models.UsageSummary
	weekly  models.WeeklyStats
	fleet   models.FleetStats
	stove   models.StoveUsage
	err     error

	fleetCalls  int
	lastStoveID string
	lastUserID  int
}

func (m *mockAggregation) UsageSummary(_ context.Context, userID int) (models.UsageSummary, error) {
	m.lastUserID = userID
	return m.summary, m.err
}

func (m *mockAggregation) UserWeeklyStats(_ context.Context, userID int) (models.WeeklyStats, error) {
	m.lastUserID = userID
	return m.weekly, m.err
}

func (m *mockAggregation) FleetStats(_ context.Context) (models.FleetStats, error) {
	m.fleetCalls++
	return m.fleet, m.err
}

func (m *mockAggregation) StoveUsage(_ context.Context, userID int, stoveID string) (models.StoveUsage, error) {
	m.lastUserID = userID
	m.lastStoveID = stoveID
	return m.stove, m.err
}

type mockReporting struct {
	grouped models.GroupedUsage
	users   []models.UserRollup
	stoves  []models.StoveRollup
	changed models.User
	err     error

	lastRoleUser int
	lastRole     string
}

func (m *mockReporting) GroupedUsage(_ context.Context) (models.GroupedUsage, error) {
	return m.grouped, m.err
}

func (m *mockReporting) UserRollups(_ context.Context) ([]models.UserRollup, error) {
	return m.users, m.err
}

func (m *mockReporting) StoveRollups(_ context.Context) ([]models.StoveRollup, error) {
	return m.stoves, m.err
}

func (m *mockReporting) ChangeRole(_ context.Context, userID int, role string) (models.User, error) {
	m.lastRoleUser = userID
	m.lastRole = role
	return m.changed, m.err
}

type mockActivity struct {
	resp []models.ActivityEvent
	err  error

	lastFilter service.LogFilter
}

func (m *mockActivity) Record(context.Context, models.ActivityEvent) {}

func (m *mockActivity) List(_ context.Context, f service.LogFilter) ([]models.ActivityEvent, error) {
	m.lastFilter = f
	return m.resp, m.err
}

// ---- Test helpers ----

const (
	testUserID  = 1
	testAdminID = 2
)

// newAuthMock knows a regular user under token "user" and an admin under "admin".
func newAuthMock() *mockAuth {
	return &mockAuth{
		users: map[int]models.User{
			testUserID:  {ID: testUserID, Name: "Alice", Email: "a@example.com", Role: models.RoleUser},
			testAdminID: {ID: testAdminID, Name: "Root", Email: "root@example.com", Role: models.RoleAdmin},
		},
	}
}

// tokenAuth resolves tokens "user" and "admin" to the matching fixture ids.
type tokenAuth struct {
	*mockAuth
}

func (a tokenAuth) ParseToken(token string) (int, error) {
	a.lastParseToken = token
	switch token {
	case "user":
		return testUserID, nil
	case "admin":
		return testAdminID, nil
	}
	return 0, svcErr(service.ErrUnauthorized, "invalid or expired token")
}

func newTestRouter(s *service.Service, opts ...Option) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(s, nil, opts...)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+token)
	return h
}

type fixture struct {
	auth      *mockAuth
	registry  *mockRegistry
	ingest    *mockIngest
	agg       *mockAggregation
	reporting *mockReporting
	activity  *mockActivity
	svc       *service.Service
}

func newFixture() *fixture {
	f := &fixture{
		auth:      newAuthMock(),
		registry:  &mockRegistry{keys: map[string]models.Stove{}, known: map[string]models.Stove{}},
		ingest:    &mockIngest{},
		agg:       &mockAggregation{},
		reporting: &mockReporting{},
		activity:  &mockActivity{},
	}
	f.svc = &service.Service{
		Authorization: tokenAuth{f.auth},
		Registry:      f.registry,
		Ingest:        f.ingest,
		Aggregation:   f.agg,
		Reporting:     f.reporting,
		ActivityLog:   f.activity,
	}
	return f
}

func (f *fixture) router(opts ...Option) *gin.Engine {
	return newTestRouter(f.svc, opts...)
}

// do sends a request with an optional JSON body and bearer token.
func do(r http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		for k, vv := range authHeader(token) {
			for _, v := range vv {
				req.Header.Add(k, v)
			}
		}
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &m); err != nil {
		t.Fatalf("unmarshal %q: %v", w.Body.String(), err)
	}
	return m
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	msg, _ := decode(t, w)["error"].(string)
	return msg
}
