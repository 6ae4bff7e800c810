// Package assets is the asset inventory: the asset table, its saved column
// and density preferences, spreadsheet export and remote actions.
package assets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"vibermm/internal/events"
	"vibermm/internal/models"
	"vibermm/internal/store"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrNotFound      = errors.New("asset not found")
	ErrInvalidAction = errors.New("invalid asset action")
	ErrInvalidTable  = errors.New("invalid table preferences")
)

// Remote actions offered on an asset row.
const (
	ActionRunScript = "runScript"
	ActionReboot    = "reboot"
	ActionShutdown  = "shutdown"
)

type Column struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Visible bool   `json:"visible"`
}

type TableSettings struct {
	RowHeight   string `json:"rowHeight"` // compact, default, relaxed
	ShowBorders bool   `json:"showBorders"`
	StripedRows bool   `json:"stripedRows"`
}

// Table is the saved presentation of the asset table.
type Table struct {
	Columns  []Column      `json:"columns"`
	Settings TableSettings `json:"settings"`
}

func DefaultColumns() []Column {
	return []Column{
		{ID: "name", Title: "Name", Visible: true},
		{ID: "type", Title: "Type", Visible: true},
		{ID: "ip", Title: "IP Address", Visible: true},
		{ID: "lastCheckIn", Title: "Last Check In", Visible: true},
		{ID: "customer", Title: "Customer", Visible: true},
		{ID: "osName", Title: "OS", Visible: true},
		{ID: "status", Title: "Status", Visible: true},
	}
}

func DefaultTableSettings() TableSettings {
	return TableSettings{RowHeight: "default", ShowBorders: true, StripedRows: true}
}

var rowHeights = map[string]bool{"compact": true, "default": true, "relaxed": true}

// Filter narrows List. Empty fields match everything.
type Filter struct {
	Search string
	OSName string
}

type Service struct {
	db        *gorm.DB
	store     *store.Store
	publisher events.Publisher
	log       *zap.Logger
}

func New(db *gorm.DB, st *store.Store, publisher events.Publisher, log *zap.Logger) *Service {
	return &Service{db: db, store: st, publisher: publisher, log: log}
}

func (s *Service) List(ctx context.Context, f Filter) ([]models.Asset, error) {
	q := s.db.WithContext(ctx).Order("name")
	if f.Search != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(f.Search)+"%")
	}
	if f.OSName != "" {
		q = q.Where("os_name = ?", f.OSName)
	}

	assets := []models.Asset{}
	if err := q.Find(&assets).Error; err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	return assets, nil
}

func (s *Service) Get(ctx context.Context, id string) (models.Asset, error) {
	var a models.Asset
	err := s.db.WithContext(ctx).First(&a, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Asset{}, ErrNotFound
	}
	if err != nil {
		return models.Asset{}, fmt.Errorf("get asset %s: %w", id, err)
	}
	return a, nil
}

// Table returns the saved table preferences, falling back to the defaults
// for each key that is missing or unreadable.
func (s *Service) Table(ctx context.Context) Table {
	var t Table
	store.LoadOrDefault(ctx, s.store, store.KeyTableColumns, &t.Columns, DefaultColumns())
	store.LoadOrDefault(ctx, s.store, store.KeyTableSettings, &t.Settings, DefaultTableSettings())
	if len(t.Columns) == 0 {
		t.Columns = DefaultColumns()
	}
	return t
}

// SaveTable stores column order, visibility and density.
func (s *Service) SaveTable(ctx context.Context, t Table) error {
	known := map[string]bool{}
	for _, c := range DefaultColumns() {
		known[c.ID] = true
	}
	seen := map[string]bool{}
	for _, c := range t.Columns {
		if !known[c.ID] {
			return fmt.Errorf("%w: unknown column %q", ErrInvalidTable, c.ID)
		}
		if seen[c.ID] {
			return fmt.Errorf("%w: duplicate column %q", ErrInvalidTable, c.ID)
		}
		seen[c.ID] = true
	}
	if !rowHeights[t.Settings.RowHeight] {
		return fmt.Errorf("%w: row height %q", ErrInvalidTable, t.Settings.RowHeight)
	}

	if len(t.Columns) > 0 {
		if err := s.store.Set(ctx, store.KeyTableColumns, t.Columns); err != nil {
			return err
		}
	}
	return s.store.Set(ctx, store.KeyTableSettings, t.Settings)
}

// RunAction requests a remote action on an asset. Nothing runs on the asset
// itself; the request is published for an agent to pick up.
func (s *Service) RunAction(ctx context.Context, id, action string) (events.Event, error) {
	switch action {
	case ActionRunScript, ActionReboot, ActionShutdown:
	default:
		return events.Event{}, fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}

	a, err := s.Get(ctx, id)
	if err != nil {
		return events.Event{}, err
	}

	ev, err := s.publisher.Publish(ctx, events.TopicAssetAction, map[string]string{
		"assetId": a.ID,
		"name":    a.Name,
		"action":  action,
	})
	if err != nil {
		return events.Event{}, fmt.Errorf("request %s on %s: %w", action, a.Name, err)
	}
	s.log.Info("asset action requested", zap.String("asset_id", a.ID), zap.String("action", action))
	return ev, nil
}
