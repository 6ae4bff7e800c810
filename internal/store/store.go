// Package store keeps the console's client-side state: small JSON documents
// addressed by the same keys the browser console kept in local storage.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"vibermm/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Keys used by the console.
const (
	KeyUser           = "user"
	KeyLayouts        = "dashboard-layouts"
	KeyDashboardState = "vibermm-dashboard-state"
	KeySavedLayout    = "saved-layout"
	KeyTableColumns   = "tableColumns"
	KeyTableSettings  = "tableSettings"
	KeyDataSources    = "vibermm-datasources"
)

var (
	ErrNotFound = errors.New("preference not found")
	ErrCorrupt  = errors.New("preference is not valid JSON")
)

type Store struct {
	db  *gorm.DB
	log *zap.Logger
}

func New(db *gorm.DB, log *zap.Logger) *Store {
	return &Store{db: db, log: log}
}

// Get returns the raw stored value.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var p models.Preference
	err := s.db.WithContext(ctx).First(&p, "pref_key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return p.Value, true, nil
}

// SetRaw stores value verbatim.
func (s *Store) SetRaw(ctx context.Context, key, value string) error {
	p := models.Preference{Key: key, Value: value, UpdatedAt: time.Now()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "pref_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&p).Error
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Set marshals v and stores it under key.
func (s *Store) Set(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return s.SetRaw(ctx, key, string(b))
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Delete(&models.Preference{}, "pref_key = ?", key).Error; err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Load decodes the value under key into dst. It returns ErrNotFound when the
// key is absent and an error wrapping ErrCorrupt when it does not decode.
func (s *Store) Load(ctx context.Context, key string, dst any) error {
	raw, ok, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorrupt, key, err)
	}
	return nil
}

// LoadOrDefault decodes key into dst, or sets *dst = def when the key is
// missing, corrupt or unreadable. It never fails.
func LoadOrDefault[T any](ctx context.Context, s *Store, key string, dst *T, def T) {
	var v T
	err := s.Load(ctx, key, &v)
	switch {
	case err == nil:
		*dst = v
		return
	case errors.Is(err, ErrNotFound):
	default:
		s.log.Error("error loading preference, using default", zap.String("key", key), zap.Error(err))
	}
	*dst = def
}
