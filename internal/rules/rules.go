// Package rules stores automation rules: conditions that, when matched on
// a device, trigger actions such as running a script.
package rules

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"vibermm/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrInvalid = errors.New("invalid automation rule")

type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

func New(db *gorm.DB, log *zap.Logger) *Service {
	return &Service{db: db, log: log}
}

func (s *Service) List(ctx context.Context) ([]models.AutomationRule, error) {
	out := []models.AutomationRule{}
	if err := s.db.WithContext(ctx).Order("rowid").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	return out, nil
}

// Create stores r under a new id. Any id on the input is ignored.
func (s *Service) Create(ctx context.Context, r models.AutomationRule) (models.AutomationRule, error) {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return models.AutomationRule{}, fmt.Errorf("%w: name is required", ErrInvalid)
	}
	for _, c := range r.Conditions {
		if c.Type == "" || c.Operator == "" {
			return models.AutomationRule{}, fmt.Errorf("%w: condition needs a type and an operator", ErrInvalid)
		}
	}
	for _, a := range r.Actions {
		if a.Type == "" {
			return models.AutomationRule{}, fmt.Errorf("%w: action needs a type", ErrInvalid)
		}
	}
	if r.Conditions == nil {
		r.Conditions = []models.RuleCondition{}
	}
	if r.Actions == nil {
		r.Actions = []models.RuleAction{}
	}
	r.ID = "rule-" + uuid.NewString()[:8]
	r.LastTriggered = nil

	if err := s.db.WithContext(ctx).Create(&r).Error; err != nil {
		return models.AutomationRule{}, fmt.Errorf("create rule: %w", err)
	}
	s.log.Info("automation rule created", zap.String("rule_id", r.ID), zap.Bool("enabled", r.Enabled))
	return r, nil
}
