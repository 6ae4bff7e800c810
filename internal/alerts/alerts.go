// Package alerts serves monitoring alerts, alert policies and the alert
// events raised by those policies.
package alerts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"vibermm/internal/events"
	"vibermm/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrNotFound       = errors.New("alert not found")
	ErrPolicyNotFound = errors.New("alert policy not found")
	ErrInvalidPolicy  = errors.New("invalid alert policy")
)

// DefaultAcknowledger names whoever acknowledges an event without a session.
const DefaultAcknowledger = "Current User"

var policySeverities = map[string]bool{"critical": true, "warning": true, "info": true}

var policyCategories = map[string]bool{
	"system": true, "security": true, "performance": true, "availability": true, "backup": true, "custom": true,
}

type Service struct {
	db        *gorm.DB
	publisher events.Publisher
	log       *zap.Logger
	now       func() time.Time
}

func New(db *gorm.DB, publisher events.Publisher, log *zap.Logger) *Service {
	return &Service{db: db, publisher: publisher, log: log, now: time.Now}
}

// Alerts returns the monitoring alerts, newest first.
func (s *Service) Alerts(ctx context.Context) ([]models.Alert, error) {
	alerts := []models.Alert{}
	if err := s.db.WithContext(ctx).Order("timestamp DESC").Find(&alerts).Error; err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	return alerts, nil
}

// ---------- POLICIES ----------

// NewPolicyForm is the blank add-policy form.
func NewPolicyForm() models.AlertPolicy {
	return models.AlertPolicy{
		Enabled:              true,
		Severity:             "warning",
		Category:             "system",
		NotificationChannels: []string{"Email"},
		AppliedTo:            []string{},
	}
}

func (s *Service) Policies(ctx context.Context) ([]models.AlertPolicy, error) {
	policies := []models.AlertPolicy{}
	if err := s.db.WithContext(ctx).Order("created_at").Find(&policies).Error; err != nil {
		return nil, fmt.Errorf("list policies: %w", err)
	}
	return policies, nil
}

// AddPolicy stores p under a fresh ap-xxxxx id. Only the name is required;
// empty fields take the values of NewPolicyForm.
func (s *Service) AddPolicy(ctx context.Context, p models.AlertPolicy) (models.AlertPolicy, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return models.AlertPolicy{}, fmt.Errorf("%w: name is required", ErrInvalidPolicy)
	}

	form := NewPolicyForm()
	if p.Severity == "" {
		p.Severity = form.Severity
	}
	if p.Category == "" {
		p.Category = form.Category
	}
	if p.NotificationChannels == nil {
		p.NotificationChannels = form.NotificationChannels
	}
	if p.AppliedTo == nil {
		p.AppliedTo = form.AppliedTo
	}
	if !policySeverities[p.Severity] {
		return models.AlertPolicy{}, fmt.Errorf("%w: severity %q", ErrInvalidPolicy, p.Severity)
	}
	if !policyCategories[p.Category] {
		return models.AlertPolicy{}, fmt.Errorf("%w: category %q", ErrInvalidPolicy, p.Category)
	}

	p.ID = "ap-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:5]
	p.CreatedAt = s.now().UTC()

	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return models.AlertPolicy{}, fmt.Errorf("add policy: %w", err)
	}
	s.log.Info("alert policy added", zap.String("policy_id", p.ID), zap.String("name", p.Name))
	return p, nil
}

func (s *Service) DeletePolicy(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&models.AlertPolicy{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete policy %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrPolicyNotFound
	}
	return nil
}

// ---------- EVENTS ----------

// Active returns unacknowledged events, newest first.
func (s *Service) Active(ctx context.Context) ([]models.AlertEvent, error) {
	return s.events(ctx, false)
}

// History returns acknowledged events, newest first.
func (s *Service) History(ctx context.Context) ([]models.AlertEvent, error) {
	return s.events(ctx, true)
}

func (s *Service) events(ctx context.Context, acknowledged bool) ([]models.AlertEvent, error) {
	out := []models.AlertEvent{}
	err := s.db.WithContext(ctx).
		Where("acknowledged = ?", acknowledged).
		Order("timestamp DESC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list alert events: %w", err)
	}
	return out, nil
}

// Acknowledge marks an event as handled by by. Acknowledging an event twice
// keeps the first acknowledgement.
func (s *Service) Acknowledge(ctx context.Context, id, by string) (models.AlertEvent, error) {
	var ev models.AlertEvent
	err := s.db.WithContext(ctx).First(&ev, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.AlertEvent{}, ErrNotFound
	}
	if err != nil {
		return models.AlertEvent{}, fmt.Errorf("get alert event %s: %w", id, err)
	}
	if ev.Acknowledged {
		return ev, nil
	}

	if strings.TrimSpace(by) == "" {
		by = DefaultAcknowledger
	}
	now := s.now().UTC()
	ev.Acknowledged = true
	ev.AcknowledgedBy = by
	ev.AcknowledgedAt = &now

	if err := s.db.WithContext(ctx).Save(&ev).Error; err != nil {
		return models.AlertEvent{}, fmt.Errorf("acknowledge %s: %w", id, err)
	}

	if _, err := s.publisher.Publish(ctx, events.TopicAlertAck, map[string]string{
		"id": ev.ID, "policyId": ev.PolicyID, "acknowledgedBy": by,
	}); err != nil {
		s.log.Warn("failed to publish acknowledgement", zap.String("event_id", ev.ID), zap.Error(err))
	}
	return ev, nil
}
