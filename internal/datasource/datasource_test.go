package datasource

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vibermm/internal/db/dbtest"
	"vibermm/internal/models"
	"vibermm/internal/poller"
	"vibermm/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeCollector struct {
	m   models.DeviceMetrics
	err error
}

func (f fakeCollector) Collect(context.Context) (models.DeviceMetrics, error) {
	return f.m, f.err
}

func newTestService(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	st := store.New(dbtest.New(t), zap.NewNop())
	collector := fakeCollector{m: models.DeviceMetrics{
		CPU:     models.CPUMetrics{Usage: 12.5},
		Memory:  models.CapacityMetrics{Total: 100, Used: 40},
		Disk:    models.CapacityMetrics{Total: 400, Used: 100},
		Network: models.NetworkMetrics{Download: 3 << 20, Upload: 1 << 19},
	}}
	s := New(st, collector, zap.NewNop())
	s.Load(context.Background())
	return s, st
}

func TestLoadDefaults(t *testing.T) {
	s, _ := newTestService(t)
	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, SystemMetricsID, list[0].ID)
	assert.Equal(t, NetworkMetricsID, list[1].ID)
	assert.True(t, list[0].Config.MockData)
}

func TestLoadCorruptFallsBackToDefaults(t *testing.T) {
	ctx := context.Background()
	st := store.New(dbtest.New(t), zap.NewNop())
	require.NoError(t, st.SetRaw(ctx, store.KeyDataSources, "[{"))

	s := New(st, fakeCollector{}, zap.NewNop())
	s.Load(ctx)
	assert.Equal(t, Defaults(), s.List())
}

func TestAddUpdateRemove(t *testing.T) {
	ctx := context.Background()
	s, st := newTestService(t)
	now := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	a, err := s.Add(ctx, DataSource{Name: "Ticket API", Config: Config{Type: TypeAPI, Endpoint: "http://tickets"}})
	require.NoError(t, err)
	b, err := s.Add(ctx, DataSource{Name: "Core switch", Config: Config{Type: TypeSNMP, Endpoint: "10.0.0.2"}})
	require.NoError(t, err)
	assert.Equal(t, "datasource-1751360400000", a.ID)
	assert.Equal(t, "datasource-1751360400001", b.ID)
	assert.Nil(t, a.LastUpdated)

	name := "Ticketing API"
	updated, err := s.Update(ctx, a.ID, Update{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Ticketing API", updated.Name)
	assert.Equal(t, TypeAPI, updated.Config.Type)
	require.NotNil(t, updated.LastUpdated)
	assert.True(t, updated.LastUpdated.Equal(now))

	require.NoError(t, s.Remove(ctx, b.ID))
	assert.ErrorIs(t, s.Remove(ctx, b.ID), ErrNotFound)

	var saved []DataSource
	require.NoError(t, st.Load(ctx, store.KeyDataSources, &saved))
	require.Len(t, saved, 3)
	assert.Equal(t, "Ticketing API", saved[2].Name)

	got, err := s.Get(a.ID)
	require.NoError(t, err)
	assert.Equal(t, updated.Name, got.Name)
}

func TestValidation(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)

	_, err := s.Add(ctx, DataSource{Name: " ", Config: Config{Type: TypeStatic}})
	assert.ErrorIs(t, err, ErrNameMissing)

	_, err = s.Add(ctx, DataSource{Name: "x", Config: Config{Type: "graphql"}})
	assert.ErrorIs(t, err, ErrInvalidType)

	_, err = s.Update(ctx, "nope", Update{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTestConnectionAPI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/down" {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		assert.Equal(t, "secret", r.Header.Get("X-API-Key"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s, _ := newTestService(t)
	ctx := context.Background()
	creds := &Credentials{APIKey: "secret"}

	ok, err := s.TestConnection(ctx, Config{Type: TypeAPI, Endpoint: srv.URL + "/health", Credentials: creds})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.TestConnection(ctx, Config{Type: TypeAPI, Endpoint: srv.URL + "/down", Credentials: creds})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.TestConnection(ctx, Config{Type: TypeAPI, Endpoint: "http://127.0.0.1:1/unreachable"})
	require.NoError(t, err)
	assert.False(t, ok)

	// api sources without an endpoint, static and realtime sources pass
	for _, cfg := range []Config{{Type: TypeAPI}, {Type: TypeStatic}, {Type: TypeRealtime}} {
		ok, err := s.TestConnection(ctx, cfg)
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestTestConnectionSNMP(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	var gotCommunity string
	s.snmpGet = func(_ context.Context, target, community string, _ time.Duration) (poller.SystemInfo, error) {
		gotCommunity = community
		if target == "10.0.0.2" {
			return poller.SystemInfo{Name: "core"}, nil
		}
		return poller.SystemInfo{}, errors.New("request timeout")
	}

	ok, err := s.TestConnection(ctx, Config{Type: TypeSNMP, Endpoint: "10.0.0.2", Credentials: &Credentials{Password: "private"}})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "private", gotCommunity)

	ok, err = s.TestConnection(ctx, Config{Type: TypeSNMP, Endpoint: "10.0.0.9"})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "public", gotCommunity)

	_, err = s.TestConnection(ctx, Config{Type: TypeSNMP})
	assert.ErrorIs(t, err, ErrNoEndpoint)
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService(t)

	sys, err := s.Resolve(ctx, SystemMetricsID)
	require.NoError(t, err)
	assert.Equal(t, []string{"CPU", "Memory", "Disk"}, sys.Labels)
	assert.Equal(t, []float64{12.5, 40, 25}, sys.Datasets[0].Data)

	netData, err := s.Resolve(ctx, NetworkMetricsID)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 0.5}, netData.Datasets[0].Data)

	custom, err := s.Add(ctx, DataSource{Name: "c", Config: Config{Type: TypeStatic}})
	require.NoError(t, err)
	empty, err := s.Resolve(ctx, custom.ID)
	require.NoError(t, err)
	assert.True(t, empty.Empty())

	_, err = s.Resolve(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolveCollectorError(t *testing.T) {
	st := store.New(dbtest.New(t), zap.NewNop())
	s := New(st, fakeCollector{err: errors.New("boom")}, zap.NewNop())
	s.Load(context.Background())

	_, err := s.Resolve(context.Background(), SystemMetricsID)
	assert.Error(t, err)
}
