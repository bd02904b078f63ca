package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devwell-dashboard/internal/apperr"
	"devwell-dashboard/internal/auth"
	"devwell-dashboard/internal/model"
)

const testSecret = "test-secret"

type fakeSleep struct {
	records   []model.SleepRecord
	createErr error
	created   *model.SleepRecord
}

func (f *fakeSleep) GetRecords(ctx context.Context, userID string, start, end time.Time) []model.SleepRecord {
	return f.records
}

func (f *fakeSleep) Create(ctx context.Context, rec model.SleepRecord) (*model.SleepRecord, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	rec.ID = "sleep-1"
	f.created = &rec
	return &rec, nil
}

func (f *fakeSleep) Update(ctx context.Context, rec model.SleepRecord) (*model.SleepRecord, error) {
	return nil, apperr.ErrNotFound
}

func (f *fakeSleep) Delete(ctx context.Context, userID, id string) error {
	return apperr.ErrNotFound
}

type fakeCommits struct {
	records []model.CommitRecord
	stats   model.CommitStats
}

func (f *fakeCommits) GetRecords(ctx context.Context, userID string, start, end time.Time) []model.CommitRecord {
	return f.records
}

func (f *fakeCommits) GetCommitStats(ctx context.Context, userID string, day time.Time) model.CommitStats {
	return f.stats
}

type fakeInsights struct {
	records []model.ActivityInsight
}

func (f *fakeInsights) GetRecords(ctx context.Context, userID string, start, end time.Time) []model.ActivityInsight {
	return f.records
}

type fakeProfiles struct {
	profile *model.Profile
}

func (f *fakeProfiles) Get(ctx context.Context, userID string) *model.Profile {
	return f.profile
}

func (f *fakeProfiles) Upsert(ctx context.Context, p *model.Profile) error {
	f.profile = p
	return nil
}

func (f *fakeProfiles) Update(ctx context.Context, p *model.Profile) (*model.Profile, error) {
	if f.profile == nil {
		return nil, apperr.ErrNotFound
	}
	f.profile = p
	return p, nil
}

type fakeSync struct {
	err    error
	synced []string
}

func (f *fakeSync) SyncCommits(ctx context.Context, userID string) error {
	if f.err != nil {
		return f.err
	}
	f.synced = append(f.synced, userID)
	return nil
}

type testEnv struct {
	router   http.Handler
	sleep    *fakeSleep
	commits  *fakeCommits
	insights *fakeInsights
	profiles *fakeProfiles
	sync     *fakeSync
	token    string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		sleep:    &fakeSleep{},
		commits:  &fakeCommits{},
		insights: &fakeInsights{},
		profiles: &fakeProfiles{},
		sync:     &fakeSync{},
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	env.router = NewRouter(RouterConfig{
		Sleep:    env.sleep,
		Commits:  env.commits,
		Insights: env.insights,
		Profiles: env.profiles,
		Sync:     env.sync,
		Parser:   auth.NewParser(testSecret),
		Hub:      auth.NewHub(),
		Logger:   logger,
	})

	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":            "user-1",
		"provider_token": "gh-token",
		"exp":            time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	env.token = raw
	return env
}

func (e *testEnv) request(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+e.token)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestRouter_Auth(t *testing.T) {
	env := newTestEnv(t)

	t.Run("health needs no session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("v1 routes reject missing tokens", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/sleep", nil)
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("v1 routes reject garbage tokens", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/sleep", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRouter_Sleep(t *testing.T) {
	validBody := `{
		"date": "2025-03-01",
		"start_time": "2025-02-28T23:00:00Z",
		"end_time": "2025-03-01T07:00:00Z",
		"quality": 85
	}`

	t.Run("creates a record", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.request(t, http.MethodPost, "/v1/sleep", validBody)

		assert.Equal(t, http.StatusCreated, rec.Code)
		require.NotNil(t, env.sleep.created)
		assert.Equal(t, "user-1", env.sleep.created.UserID)
		assert.Equal(t, 85, env.sleep.created.Quality)
	})

	t.Run("rejects end before start", func(t *testing.T) {
		env := newTestEnv(t)
		body := `{
			"date": "2025-03-01",
			"start_time": "2025-03-01T07:00:00Z",
			"end_time": "2025-02-28T23:00:00Z",
			"quality": 85
		}`
		rec := env.request(t, http.MethodPost, "/v1/sleep", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects an out-of-range quality", func(t *testing.T) {
		env := newTestEnv(t)
		body := strings.Replace(validBody, "85", "101", 1)
		rec := env.request(t, http.MethodPost, "/v1/sleep", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("maps duplicate dates to 409", func(t *testing.T) {
		env := newTestEnv(t)
		env.sleep.createErr = apperr.ErrDuplicate
		rec := env.request(t, http.MethodPost, "/v1/sleep", validBody)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("empty store reads render as an empty array", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.request(t, http.MethodGet, "/v1/sleep", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "[]\n", rec.Body.String())
	})
}

func TestRouter_CommitStats(t *testing.T) {
	env := newTestEnv(t)
	env.commits.stats = model.CommitStats{Count: 3, Hours: 2}

	rec := env.request(t, http.MethodGet, "/v1/commits/stats?date=2025-03-01", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count": 3, "hours": 2}`, rec.Body.String())

	t.Run("rejects a malformed date", func(t *testing.T) {
		rec := env.request(t, http.MethodGet, "/v1/commits/stats?date=March", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRouter_MonthlyReport(t *testing.T) {
	env := newTestEnv(t)
	sleep1, prod1 := 80.0, 75.0
	sleep2, prod2 := 60.0, 90.0
	env.insights.records = []model.ActivityInsight{
		{Date: time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC), SleepScore: &sleep1, ProductivityScore: &prod1},
		{Date: time.Date(2025, time.March, 2, 0, 0, 0, 0, time.UTC), SleepScore: &sleep2, ProductivityScore: &prod2},
	}

	rec := env.request(t, http.MethodGet, "/v1/reports/monthly?year=2025&month=3", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"goals_met_days":1`)

	t.Run("rejects an invalid month", func(t *testing.T) {
		rec := env.request(t, http.MethodGet, "/v1/reports/monthly?year=2025&month=13", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRouter_Sync(t *testing.T) {
	t.Run("reports success", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.request(t, http.MethodPost, "/v1/sync", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"synced": true}`, rec.Body.String())
		assert.Equal(t, []string{"user-1"}, env.sync.synced)
	})

	t.Run("surfaces failures without being fatal", func(t *testing.T) {
		env := newTestEnv(t)
		env.sync.err = errors.New("github unavailable")
		rec := env.request(t, http.MethodPost, "/v1/sync", "")

		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Contains(t, rec.Body.String(), `"synced":false`)
	})
}

func TestRouter_Profile(t *testing.T) {
	t.Run("provisions on first read", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.request(t, http.MethodGet, "/v1/profile", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, env.profiles.profile)
		assert.Equal(t, "user-1", env.profiles.profile.UserID)
	})

	t.Run("updates goals", func(t *testing.T) {
		env := newTestEnv(t)
		env.profiles.profile = &model.Profile{UserID: "user-1"}
		body := `{"sleep_goal_hours": 7.5, "commit_goal_daily": 5}`
		rec := env.request(t, http.MethodPut, "/v1/profile", body)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 7.5, env.profiles.profile.SleepGoalHours)
	})

	t.Run("rejects an impossible sleep goal", func(t *testing.T) {
		env := newTestEnv(t)
		body := `{"sleep_goal_hours": 30}`
		rec := env.request(t, http.MethodPut, "/v1/profile", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
