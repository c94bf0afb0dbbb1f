package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"cookstove_tracker/internal/events"
	"cookstove_tracker/internal/models"
	"cookstove_tracker/internal/repository"
)

// fakeStoveRepo is an in-memory repository.StoveRepo keyed by stove_id.
type fakeStoveRepo struct {
	mu      sync.Mutex
	stoves  map[string]*models.Stove
	nextID  int
	err     error // returned by every call when set
	pairHit int
}

func newFakeStoveRepo() *fakeStoveRepo {
	return &fakeStoveRepo{stoves: map[string]*models.Stove{}}
}

func (f *fakeStoveRepo) Create(ctx context.Context, stoveID, model, code string) (models.Stove, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return models.Stove{}, f.err
	}
	if _, ok := f.stoves[stoveID]; ok {
		return models.Stove{}, repository.ErrDuplicate
	}
	f.nextID++
	c := code
	s := &models.Stove{ID: f.nextID, StoveID: stoveID, Model: model, Status: models.StoveStatusUnpaired, PairingCode: &c, CreatedAt: time.Unix(int64(f.nextID), 0).UTC()}
	f.stoves[stoveID] = s
	return *s, nil
}

func (f *fakeStoveRepo) GetByStoveID(ctx context.Context, stoveID string) (models.Stove, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return models.Stove{}, f.err
	}
	s, ok := f.stoves[stoveID]
	if !ok {
		return models.Stove{}, repository.ErrNotFound
	}
	return *s, nil
}

func (f *fakeStoveRepo) GetByPairing(ctx context.Context, stoveID, code string) (models.Stove, error) {
	s, err := f.GetByStoveID(ctx, stoveID)
	if err != nil {
		return s, err
	}
	if s.PairingCode == nil || *s.PairingCode != code {
		return models.Stove{}, repository.ErrNotFound
	}
	return s, nil
}

func (f *fakeStoveRepo) Pair(ctx context.Context, stoveID, code string, userID int, apiKey string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pairHit++
	if f.err != nil {
		return false, f.err
	}
	s, ok := f.stoves[stoveID]
	if !ok || s.Status != models.StoveStatusUnpaired || s.PairingCode == nil || *s.PairingCode != code {
		return false, nil
	}
	uid, key := userID, apiKey
	s.UserID, s.APIKey, s.PairingCode, s.Status = &uid, &key, nil, models.StoveStatusPaired
	return true, nil
}

func (f *fakeStoveRepo) GetPairedByAPIKey(ctx context.Context, apiKey string) (models.Stove, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.stoves {
		if s.APIKey != nil && *s.APIKey == apiKey && s.Status == models.StoveStatusPaired {
			return *s, nil
		}
	}
	return models.Stove{}, repository.ErrNotFound
}

func (f *fakeStoveRepo) GetOwnedPaired(ctx context.Context, userID int, stoveID string) (models.Stove, error) {
	s, err := f.GetByStoveID(ctx, stoveID)
	if err != nil {
		return s, err
	}
	if s.UserID == nil || *s.UserID != userID || s.Status != models.StoveStatusPaired {
		return models.Stove{}, repository.ErrNotFound
	}
	return s, nil
}

func (f *fakeStoveRepo) ListByOwner(ctx context.Context, userID int, pairedOnly bool) ([]models.Stove, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := []models.Stove{}
	for _, s := range f.stoves {
		if s.UserID == nil || *s.UserID != userID {
			continue
		}
		if pairedOnly && s.Status != models.StoveStatusPaired {
			continue
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStoveRepo) CountPaired(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, s := range f.stoves {
		if s.Status == models.StoveStatusPaired {
			n++
		}
	}
	return n, nil
}

// fakeUsageRepo is an in-memory append-only repository.UsageRepo.
type fakeUsageRepo struct {
	mu      sync.Mutex
	records []models.UsageRecord
	err     error

	lastRangeScope []string
}

func (f *fakeUsageRepo) Append(ctx context.Context, r models.UsageRecord) (models.UsageRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return models.UsageRecord{}, f.err
	}
	r.ID = len(f.records) + 1
	r.CreatedAt = time.Unix(int64(r.ID), 0).UTC()
	f.records = append(f.records, r)
	return r, nil
}

func (f *fakeUsageRepo) filter(keep func(models.UsageRecord) bool) []models.UsageRecord {
	out := []models.UsageRecord{}
	for _, r := range f.records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func (f *fakeUsageRepo) ListByStoves(ctx context.Context, ids []string) ([]models.UsageRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	set := toSet(ids)
	return f.filter(func(r models.UsageRecord) bool { return set[r.StoveID] }), nil
}

func (f *fakeUsageRepo) ListByStoveDesc(ctx context.Context, id string) ([]models.UsageRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.filter(func(r models.UsageRecord) bool { return r.StoveID == id })
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (f *fakeUsageRepo) ListInRange(ctx context.Context, ids []string, from, to string) ([]models.UsageRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.lastRangeScope = ids
	set := toSet(ids)
	return f.filter(func(r models.UsageRecord) bool {
		if ids != nil && !set[r.StoveID] {
			return false
		}
		return r.Date >= from && r.Date <= to
	}), nil
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

// fakeUserRepo is an in-memory repository.UserRepo.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[int]*models.User
	err   error

	createCalls int
}

func newFakeUserRepo() *fakeUserRepo { return &fakeUserRepo{users: map[int]*models.User{}} }

func (f *fakeUserRepo) Create(ctx context.Context, u models.User) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.err != nil {
		return 0, f.err
	}
	for _, x := range f.users {
		if x.Email == u.Email {
			return 0, repository.ErrDuplicate
		}
	}
	u.ID = len(f.users) + 1
	f.users[u.ID] = &u
	return u.ID, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return models.User{}, f.err
	}
	for _, u := range f.users {
		if u.Email == email {
			return *u, nil
		}
	}
	return models.User{}, repository.ErrNotFound
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return models.User{}, repository.ErrNotFound
	}
	return *u, nil
}

func (f *fakeUserRepo) UpdateRole(ctx context.Context, id int, role string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Role = role
	return nil
}

func (f *fakeUserRepo) Count(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.users), nil
}

// fakeEventRepo is a minimal stub that satisfies the repository.EventRepo interface.
type fakeEventRepo struct {
	got repository.EventQuery

	events    []models.ActivityEvent
	appended  []models.ActivityEvent
	err       error
	appendErr error

	calls int
}

func (f *fakeEventRepo) List(ctx context.Context, q repository.EventQuery) ([]models.ActivityEvent, error) {
	f.calls++
	f.got = q
	return f.events, f.err
}

func (f *fakeEventRepo) Append(ctx context.Context, e models.ActivityEvent) error {
	f.appended = append(f.appended, e)
	return f.appendErr
}

// fakeRecorder captures recorded activity.
type fakeRecorder struct {
	mu     sync.Mutex
	events []models.ActivityEvent
}

func (f *fakeRecorder) Record(ctx context.Context, e models.ActivityEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
}

func (f *fakeRecorder) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.events))
	for i, e := range f.events {
		out[i] = e.Type
	}
	return out
}

// fakePublisher captures published events.
type fakePublisher struct {
	published []events.Event
	err       error
}

func (f *fakePublisher) Publish(ctx context.Context, e events.Event) error {
	f.published = append(f.published, e)
	return f.err
}

func (f *fakePublisher) Close() error { return nil }
