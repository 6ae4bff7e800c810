// Package datasource manages the data sources a dashboard widget can be
// bound to and resolves their chart data.
package datasource

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"vibermm/internal/dashboard"
	"vibermm/internal/hostmetrics"
	"vibermm/internal/models"
	"vibermm/internal/poller"
	"vibermm/internal/store"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

type Type string

const (
	TypeStatic   Type = "static"
	TypeAPI      Type = "api"
	TypeRealtime Type = "realtime"
	TypeSNMP     Type = "snmp"
)

func (t Type) Valid() bool {
	switch t {
	case TypeStatic, TypeAPI, TypeRealtime, TypeSNMP:
		return true
	}
	return false
}

// Built-in sources.
const (
	SystemMetricsID  = "mock-system-metrics"
	NetworkMetricsID = "mock-network-metrics"
)

var (
	ErrNotFound    = errors.New("data source not found")
	ErrInvalidType = errors.New("invalid data source type")
	ErrNameMissing = errors.New("data source name is required")
	ErrNoEndpoint  = errors.New("data source endpoint is required")
)

type Credentials struct {
	APIKey   string `json:"apiKey,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
}

type Config struct {
	Type            Type         `json:"type"`
	Endpoint        string       `json:"endpoint,omitempty"`
	RefreshInterval int          `json:"refreshInterval,omitempty"`
	MockData        bool         `json:"mockData,omitempty"`
	Credentials     *Credentials `json:"credentials,omitempty"`
}

type DataSource struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Config      Config     `json:"config"`
	LastUpdated *time.Time `json:"lastUpdated,omitempty"`
}

// Update carries the fields of a partial update; nil fields are kept.
type Update struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Config      *Config `json:"config"`
}

// Defaults returns the predefined sources.
func Defaults() []DataSource {
	return []DataSource{
		{
			ID:          SystemMetricsID,
			Name:        "System Metrics",
			Description: "CPU, Memory, and Disk usage metrics",
			Config:      Config{Type: TypeStatic, MockData: true, RefreshInterval: 60},
		},
		{
			ID:          NetworkMetricsID,
			Name:        "Network Metrics",
			Description: "Network traffic and performance metrics",
			Config:      Config{Type: TypeStatic, MockData: true, RefreshInterval: 60},
		},
	}
}

// MetricsCollector samples the local host.
type MetricsCollector interface {
	Collect(ctx context.Context) (models.DeviceMetrics, error)
}

type Service struct {
	mu      sync.Mutex
	store   *store.Store
	log     *zap.Logger
	metrics MetricsCollector
	client  *resty.Client
	now     func() time.Time
	sources []DataSource
	lastID  int64

	snmpGet func(ctx context.Context, target, community string, timeout time.Duration) (poller.SystemInfo, error)
}

func New(st *store.Store, metrics MetricsCollector, log *zap.Logger) *Service {
	return &Service{
		store:   st,
		log:     log,
		metrics: metrics,
		client:  resty.New().SetTimeout(10 * time.Second).SetRetryCount(0),
		now:     time.Now,
		snmpGet: poller.SnmpSystemGet,
	}
}

// Load reads the saved sources. A missing or unreadable list is replaced by
// the defaults.
func (s *Service) Load(ctx context.Context) {
	var sources []DataSource
	store.LoadOrDefault(ctx, s.store, store.KeyDataSources, &sources, Defaults())
	if len(sources) == 0 {
		sources = Defaults()
	}

	s.mu.Lock()
	s.sources = sources
	s.mu.Unlock()
}

func (s *Service) save(ctx context.Context) error {
	s.mu.Lock()
	sources := append([]DataSource(nil), s.sources...)
	s.mu.Unlock()

	if len(sources) == 0 {
		// an empty list is never written, so the defaults come back on reload
		return nil
	}
	return s.store.Set(ctx, store.KeyDataSources, sources)
}

func (s *Service) List() []DataSource {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]DataSource{}, s.sources...)
}

func (s *Service) Get(id string) (DataSource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ds := range s.sources {
		if ds.ID == id {
			return ds, nil
		}
	}
	return DataSource{}, ErrNotFound
}

func validate(name string, cfg Config) error {
	if strings.TrimSpace(name) == "" {
		return ErrNameMissing
	}
	if !cfg.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, cfg.Type)
	}
	return nil
}

// Add stores a new source under a generated datasource-<unixmilli> id.
func (s *Service) Add(ctx context.Context, ds DataSource) (DataSource, error) {
	if err := validate(ds.Name, ds.Config); err != nil {
		return DataSource{}, err
	}

	s.mu.Lock()
	id := s.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	ds.ID = fmt.Sprintf("datasource-%d", id)
	s.sources = append(s.sources, ds)
	s.mu.Unlock()

	return ds, s.save(ctx)
}

// Update merges u into the source and stamps lastUpdated.
func (s *Service) Update(ctx context.Context, id string, u Update) (DataSource, error) {
	s.mu.Lock()
	idx := -1
	for i := range s.sources {
		if s.sources[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return DataSource{}, ErrNotFound
	}

	ds := s.sources[idx]
	if u.Name != nil {
		ds.Name = *u.Name
	}
	if u.Description != nil {
		ds.Description = *u.Description
	}
	if u.Config != nil {
		ds.Config = *u.Config
	}
	if err := validate(ds.Name, ds.Config); err != nil {
		s.mu.Unlock()
		return DataSource{}, err
	}
	now := s.now().UTC()
	ds.LastUpdated = &now
	s.sources[idx] = ds
	s.mu.Unlock()

	return ds, s.save(ctx)
}

func (s *Service) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	out := s.sources[:0:0]
	for _, ds := range s.sources {
		if ds.ID != id {
			out = append(out, ds)
		}
	}
	found := len(out) != len(s.sources)
	s.sources = out
	s.mu.Unlock()

	if !found {
		return ErrNotFound
	}
	return s.save(ctx)
}

// TestConnection checks that a source is reachable. API sources with an
// endpoint must answer a GET with 2xx; SNMP sources must answer a system
// group get. Other sources always succeed.
func (s *Service) TestConnection(ctx context.Context, cfg Config) (bool, error) {
	switch {
	case cfg.Type == TypeAPI && cfg.Endpoint != "":
		req := s.client.R().SetContext(ctx)
		if cfg.Credentials != nil {
			if cfg.Credentials.APIKey != "" {
				req.SetHeader("X-API-Key", cfg.Credentials.APIKey)
			}
			if cfg.Credentials.Username != "" {
				req.SetBasicAuth(cfg.Credentials.Username, cfg.Credentials.Password)
			}
		}
		resp, err := req.Get(cfg.Endpoint)
		if err != nil {
			s.log.Info("data source connection failed", zap.String("endpoint", cfg.Endpoint), zap.Error(err))
			return false, nil
		}
		return resp.IsSuccess(), nil

	case cfg.Type == TypeSNMP:
		if cfg.Endpoint == "" {
			return false, ErrNoEndpoint
		}
		community := "public"
		if cfg.Credentials != nil && cfg.Credentials.Password != "" {
			community = cfg.Credentials.Password
		}
		if _, err := s.snmpGet(ctx, cfg.Endpoint, community, 2*time.Second); err != nil {
			s.log.Info("data source connection failed", zap.String("endpoint", cfg.Endpoint), zap.Error(err))
			return false, nil
		}
		return true, nil
	}
	return true, nil
}

// Resolve produces chart data for a widget bound to the source id.
func (s *Service) Resolve(ctx context.Context, id string) (dashboard.ChartData, error) {
	if _, err := s.Get(id); err != nil {
		return dashboard.ChartData{}, err
	}

	switch id {
	case SystemMetricsID:
		m, err := s.metrics.Collect(ctx)
		if err != nil {
			return dashboard.ChartData{}, err
		}
		cpu, mem, disk := hostmetrics.Percentages(m)
		return dashboard.ChartData{
			Labels: []string{"CPU", "Memory", "Disk"},
			Datasets: []dashboard.Dataset{{
				Label:           "Usage (%)",
				Data:            []float64{cpu, mem, disk},
				BackgroundColor: dashboard.Colors{"#a5b4fc", "#818cf8", "#6366f1"},
			}},
		}, nil

	case NetworkMetricsID:
		m, err := s.metrics.Collect(ctx)
		if err != nil {
			return dashboard.ChartData{}, err
		}
		return dashboard.ChartData{
			Labels: []string{"Received (MB)", "Sent (MB)"},
			Datasets: []dashboard.Dataset{{
				Label:           "Network",
				Data:            []float64{megabytes(m.Network.Download), megabytes(m.Network.Upload)},
				BackgroundColor: dashboard.Colors{"#6366f1", "#10b981"},
			}},
		}, nil
	}

	// user sources carry no data of their own yet
	return dashboard.ChartData{Labels: []string{}, Datasets: []dashboard.Dataset{}}, nil
}

func megabytes(b uint64) float64 {
	return float64(int64(float64(b)/(1<<20)*10)) / 10
}
