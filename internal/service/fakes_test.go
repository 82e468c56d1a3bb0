package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/atinyakov/HydroPal/internal/models"
	"github.com/atinyakov/HydroPal/internal/repository"
)

// memStore is an in-memory stand-in for the Postgres repositories.
type memStore struct {
	mu      sync.Mutex
	users   map[string]*models.User
	entries map[string]*models.Entry
	now     func() time.Time
}

func newMemStore(now func() time.Time) *memStore {
	return &memStore{
		users:   map[string]*models.User{},
		entries: map[string]*models.Entry{},
		now:     now,
	}
}

func (m *memStore) CreateUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	u.CreatedAt = m.now()
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memStore) EmailExists(_ context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memStore) GetUserByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) CreateEntry(_ context.Context, e *models.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.CreatedAt = m.now()
	e.UpdatedAt = e.CreatedAt
	cp := *e
	m.entries[e.ID] = &cp
	return nil
}

// put stores e verbatim, keeping its CreatedAt.
func (m *memStore) put(e models.Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[e.ID] = &e
}

func (m *memStore) ListEntries(_ context.Context, userID string, logType models.LogType) ([]models.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Entry, 0)
	for _, e := range m.entries {
		if e.UserID == userID && (logType == "" || e.LogType == logType) {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) GetEntry(_ context.Context, id, ownerID string) (*models.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok || (ownerID != "" && e.UserID != ownerID) {
		return nil, repository.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (m *memStore) UpdateEntryData(_ context.Context, id, ownerID string, data models.Data, amount float64) (*models.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok || e.UserID != ownerID {
		return nil, repository.ErrNotFound
	}
	e.Data = data
	e.Amount = amount
	e.UpdatedAt = m.now()
	cp := *e
	return &cp, nil
}

func (m *memStore) DeleteEntry(_ context.Context, id, ownerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok || (ownerID != "" && e.UserID != ownerID) {
		return repository.ErrNotFound
	}
	delete(m.entries, id)
	return nil
}

func inRange(t, from, to time.Time) bool {
	return !t.Before(from) && t.Before(to)
}

func (m *memStore) SumAmount(_ context.Context, userID string, logType models.LogType, from, to time.Time) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var total float64
	for _, e := range m.entries {
		if e.UserID == userID && e.LogType == logType && inRange(e.CreatedAt, from, to) {
			total += e.Amount
		}
	}
	return total, nil
}

func (m *memStore) DeleteRange(_ context.Context, userID string, logType models.LogType, from, to time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, e := range m.entries {
		if e.UserID == userID && e.LogType == logType && inRange(e.CreatedAt, from, to) {
			delete(m.entries, id)
			n++
		}
	}
	return n, nil
}

func (m *memStore) Ranking(_ context.Context, logType models.LogType, from, to time.Time, limit int) ([]models.RankEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	totals := map[string]float64{}
	for _, e := range m.entries {
		if e.LogType == logType && inRange(e.CreatedAt, from, to) {
			totals[e.UserID] += e.Amount
		}
	}
	out := make([]models.RankEntry, 0, len(totals))
	for id, total := range totals {
		u, ok := m.users[id]
		if !ok {
			continue
		}
		out = append(out, models.RankEntry{UserID: id, Name: u.Name, TotalAmount: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalAmount != out[j].TotalAmount {
			return out[i].TotalAmount > out[j].TotalAmount
		}
		return out[i].UserID < out[j].UserID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) MonthlyTotals(_ context.Context, userID string, logType models.LogType, from, to time.Time, tz string) (map[int]float64, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[int]float64{}
	for _, e := range m.entries {
		if e.UserID == userID && e.LogType == logType && inRange(e.CreatedAt, from, to) {
			out[int(e.CreatedAt.In(loc).Month())] += e.Amount
		}
	}
	return out, nil
}

// staticTokens is a TokenManager that encodes the identity verbatim.
type staticTokens struct {
	generateErr error
}

func (s staticTokens) Generate(userID string, role models.Role) (string, error) {
	if s.generateErr != nil {
		return "", s.generateErr
	}
	return "tok:" + string(role) + ":" + userID, nil
}

func (s staticTokens) Parse(token string) (models.Identity, error) {
	parts := strings.SplitN(token, ":", 3)
	if len(parts) != 3 || parts[0] != "tok" {
		return models.Identity{}, errors.New("bad token")
	}
	return models.Identity{UserID: parts[2], Role: models.Role(parts[1])}, nil
}
