package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/atinyakov/HydroPal/internal/models"
	"github.com/atinyakov/HydroPal/internal/service"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	alice = models.Identity{UserID: "11111111-1111-4111-8111-111111111111", Role: models.RoleUser}
	errDB = errors.New("db down")
)

// fakeVerifier accepts "alice-token" only.
type fakeVerifier struct{}

func (fakeVerifier) Verify(_ context.Context, token string) (models.Identity, error) {
	if token == "alice-token" {
		return alice, nil
	}
	return models.Identity{}, service.ErrUnauthorized
}

type fakeAuthService struct {
	RegisterFunc func(ctx context.Context, name, email, password string) (*service.AuthResult, error)
	LoginFunc    func(ctx context.Context, email, password string) (*service.AuthResult, error)
	ProfileFunc  func(ctx context.Context, userID string) (*models.PublicUser, error)
}

func (f *fakeAuthService) Register(ctx context.Context, name, email, password string) (*service.AuthResult, error) {
	return f.RegisterFunc(ctx, name, email, password)
}
func (f *fakeAuthService) Login(ctx context.Context, email, password string) (*service.AuthResult, error) {
	return f.LoginFunc(ctx, email, password)
}
func (f *fakeAuthService) Profile(ctx context.Context, userID string) (*models.PublicUser, error) {
	return f.ProfileFunc(ctx, userID)
}

type fakeEntryService struct {
	ListFunc   func(ctx context.Context, actor models.Identity, logType models.LogType) ([]models.Entry, error)
	GetFunc    func(ctx context.Context, actor models.Identity, id string) (*models.Entry, error)
	CreateFunc func(ctx context.Context, actor models.Identity, logType models.LogType, data models.Data) (*models.CreatedEntry, error)
	UpdateFunc func(ctx context.Context, actor models.Identity, id string, data models.Data) (*models.Entry, error)
	DeleteFunc func(ctx context.Context, actor models.Identity, id string) error
}

func (f *fakeEntryService) List(ctx context.Context, actor models.Identity, logType models.LogType) ([]models.Entry, error) {
	return f.ListFunc(ctx, actor, logType)
}
func (f *fakeEntryService) Get(ctx context.Context, actor models.Identity, id string) (*models.Entry, error) {
	return f.GetFunc(ctx, actor, id)
}
func (f *fakeEntryService) Create(ctx context.Context, actor models.Identity, logType models.LogType, data models.Data) (*models.CreatedEntry, error) {
	return f.CreateFunc(ctx, actor, logType, data)
}
func (f *fakeEntryService) Update(ctx context.Context, actor models.Identity, id string, data models.Data) (*models.Entry, error) {
	return f.UpdateFunc(ctx, actor, id, data)
}
func (f *fakeEntryService) Delete(ctx context.Context, actor models.Identity, id string) error {
	return f.DeleteFunc(ctx, actor, id)
}

type fakeWaterService struct {
	LogWaterFunc      func(ctx context.Context, userID string, amountMl float64) (*models.Entry, error)
	TodayTotalFunc    func(ctx context.Context, userID string) (float64, error)
	ClearTodayFunc    func(ctx context.Context, userID string) (int64, error)
	RankingFunc       func(ctx context.Context, limit int) ([]models.RankEntry, error)
	MonthlyTotalsFunc func(ctx context.Context, userID string, year int) ([]float64, error)
}

func (f *fakeWaterService) LogWater(ctx context.Context, userID string, amountMl float64) (*models.Entry, error) {
	return f.LogWaterFunc(ctx, userID, amountMl)
}
func (f *fakeWaterService) TodayTotal(ctx context.Context, userID string) (float64, error) {
	return f.TodayTotalFunc(ctx, userID)
}
func (f *fakeWaterService) ClearToday(ctx context.Context, userID string) (int64, error) {
	return f.ClearTodayFunc(ctx, userID)
}
func (f *fakeWaterService) Ranking(ctx context.Context, limit int) ([]models.RankEntry, error) {
	return f.RankingFunc(ctx, limit)
}
func (f *fakeWaterService) MonthlyTotals(ctx context.Context, userID string, year int) ([]float64, error) {
	return f.MonthlyTotalsFunc(ctx, userID, year)
}

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

// testServer wires the given fakes; nil services are replaced by empty fakes.
type testServer struct {
	auth   *fakeAuthService
	data   *fakeEntryService
	water  *fakeWaterService
	db     fakePinger
	opts   RouterOptions
	detail bool
	logger *zap.Logger
}

func (ts testServer) handler() http.Handler {
	if ts.auth == nil {
		ts.auth = &fakeAuthService{}
	}
	if ts.data == nil {
		ts.data = &fakeEntryService{}
	}
	if ts.water == nil {
		ts.water = &fakeWaterService{}
	}
	if ts.opts.FrontendURL == "" {
		ts.opts.FrontendURL = "http://localhost:3000"
	}
	if ts.logger == nil {
		ts.logger = zap.NewNop()
	}
	rs := Responder{Log: zap.NewNop(), Detail: ts.detail}
	return NewRouter(Handlers{
		Auth:   &AuthHandler{AuthService: ts.auth, Responder: rs},
		Data:   &DataHandler{EntryService: ts.data, Responder: rs},
		Water:  &WaterHandler{WaterService: ts.water, Responder: rs},
		Health: &HealthHandler{DB: ts.db, Version: "test"},
	}, fakeVerifier{}, ts.opts, ts.logger)
}

// do sends a request with an optional JSON body and alice's token when
// authed is set, and decodes the response body.
func do(t *testing.T, h http.Handler, method, path, body string, authed bool) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if authed {
		req.Header.Set("Authorization", "Bearer alice-token")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec, out
}
