// Package patch tracks patch compliance per device, patch profiles and
// deployment rules, and requests patch deployments.
package patch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"vibermm/internal/db"
	"vibermm/internal/events"
	"vibermm/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("patch record not found")
	ErrInvalid  = errors.New("invalid patch request")
)

// Stats counts devices per compliance status.
type Stats struct {
	UpToDate       int `json:"upToDate"`
	NeedsAttention int `json:"needsAttention"`
	Critical       int `json:"critical"`
	NotAssessed    int `json:"notAssessed"`
}

func statsOf(list []models.PatchStatus) Stats {
	var st Stats
	for _, p := range list {
		switch p.Status {
		case models.PatchUpToDate:
			st.UpToDate++
		case models.PatchNeedsAttention:
			st.NeedsAttention++
		case models.PatchCritical:
			st.Critical++
		case models.PatchNotAssessed:
			st.NotAssessed++
		}
	}
	return st
}

type Service struct {
	db        *gorm.DB
	publisher events.Publisher
	log       *zap.Logger
	now       func() time.Time

	mu     sync.Mutex
	lastID int64
}

func New(gdb *gorm.DB, publisher events.Publisher, log *zap.Logger) *Service {
	return &Service{db: gdb, publisher: publisher, log: log, now: time.Now}
}

func (s *Service) nextID(prefix string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return fmt.Sprintf("%s-%d", prefix, id)
}

func (s *Service) today() string {
	return s.now().Format("2006-01-02")
}

// Status returns the per-device patch status and its summary.
func (s *Service) Status(ctx context.Context) ([]models.PatchStatus, Stats, error) {
	list := []models.PatchStatus{}
	if err := s.db.WithContext(ctx).Order("id").Find(&list).Error; err != nil {
		return nil, Stats{}, fmt.Errorf("list patch status: %w", err)
	}
	return list, statsOf(list), nil
}

// Refresh replaces the stored status with the latest scan result.
func (s *Service) Refresh(ctx context.Context) ([]models.PatchStatus, Stats, error) {
	scan := append([]models.PatchStatus(nil), db.SeedPatchStatus...)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.PatchStatus{}).Error; err != nil {
			return err
		}
		return tx.Create(&scan).Error
	})
	if err != nil {
		return nil, Stats{}, fmt.Errorf("refresh patch status: %w", err)
	}
	return s.Status(ctx)
}

// ---------- PROFILES ----------

func (s *Service) Profiles(ctx context.Context) ([]models.PatchProfile, error) {
	return list[models.PatchProfile](ctx, s.db)
}

func (s *Service) AddProfile(ctx context.Context, p models.PatchProfile) (models.PatchProfile, error) {
	if strings.TrimSpace(p.Name) == "" {
		return models.PatchProfile{}, fmt.Errorf("%w: profile name is required", ErrInvalid)
	}
	p.ID = s.nextID("profile")
	p.LastModified = s.today()
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return models.PatchProfile{}, fmt.Errorf("add profile: %w", err)
	}
	return p, nil
}

// UpdateProfile replaces a profile and stamps its modification date.
func (s *Service) UpdateProfile(ctx context.Context, id string, p models.PatchProfile) (models.PatchProfile, error) {
	if strings.TrimSpace(p.Name) == "" {
		return models.PatchProfile{}, fmt.Errorf("%w: profile name is required", ErrInvalid)
	}
	if err := exists[models.PatchProfile](ctx, s.db, id); err != nil {
		return models.PatchProfile{}, err
	}
	p.ID = id
	p.LastModified = s.today()
	if err := s.db.WithContext(ctx).Save(&p).Error; err != nil {
		return models.PatchProfile{}, fmt.Errorf("update profile %s: %w", id, err)
	}
	return p, nil
}

func (s *Service) DeleteProfile(ctx context.Context, id string) error {
	return remove[models.PatchProfile](ctx, s.db, id)
}

// ---------- DEPLOYMENT RULES ----------

func (s *Service) Rules(ctx context.Context) ([]models.DeploymentRule, error) {
	return list[models.DeploymentRule](ctx, s.db)
}

func validateRule(r *models.DeploymentRule) error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: rule name is required", ErrInvalid)
	}
	switch r.Status {
	case "":
		r.Status = "Active"
	case "Active", "Paused":
	default:
		return fmt.Errorf("%w: rule status %q", ErrInvalid, r.Status)
	}
	return nil
}

func (s *Service) AddRule(ctx context.Context, r models.DeploymentRule) (models.DeploymentRule, error) {
	if err := validateRule(&r); err != nil {
		return models.DeploymentRule{}, err
	}
	r.ID = s.nextID("rule")
	if err := s.db.WithContext(ctx).Create(&r).Error; err != nil {
		return models.DeploymentRule{}, fmt.Errorf("add deployment rule: %w", err)
	}
	return r, nil
}

func (s *Service) UpdateRule(ctx context.Context, id string, r models.DeploymentRule) (models.DeploymentRule, error) {
	if err := validateRule(&r); err != nil {
		return models.DeploymentRule{}, err
	}
	if err := exists[models.DeploymentRule](ctx, s.db, id); err != nil {
		return models.DeploymentRule{}, err
	}
	r.ID = id
	if err := s.db.WithContext(ctx).Save(&r).Error; err != nil {
		return models.DeploymentRule{}, fmt.Errorf("update deployment rule %s: %w", id, err)
	}
	return r, nil
}

func (s *Service) DeleteRule(ctx context.Context, id string) error {
	return remove[models.DeploymentRule](ctx, s.db, id)
}

// ---------- DEPLOY ----------

// Deploy requests installation of approved patches on the given devices.
// The request is published; nothing is installed by the console itself.
func (s *Service) Deploy(ctx context.Context, deviceIDs []string) (events.Event, error) {
	if len(deviceIDs) == 0 {
		return events.Event{}, fmt.Errorf("%w: no devices selected", ErrInvalid)
	}
	ev, err := s.publisher.Publish(ctx, events.TopicPatchDeploy, map[string]any{"deviceIds": deviceIDs})
	if err != nil {
		return events.Event{}, fmt.Errorf("deploy patches: %w", err)
	}
	s.log.Info("patch deployment requested", zap.Strings("device_ids", deviceIDs), zap.String("event_id", ev.ID))
	return ev, nil
}

// ---------- HELPERS ----------

func list[T any](ctx context.Context, gdb *gorm.DB) ([]T, error) {
	out := []T{}
	if err := gdb.WithContext(ctx).Order("rowid").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func exists[T any](ctx context.Context, gdb *gorm.DB, id string) error {
	var n int64
	if err := gdb.WithContext(ctx).Model(new(T)).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func remove[T any](ctx context.Context, gdb *gorm.DB, id string) error {
	res := gdb.WithContext(ctx).Where("id = ?", id).Delete(new(T))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
