package companies

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

var (
	ErrNotFound = errors.New("company not found")
	ErrInvalid  = errors.New("invalid company")
)

// NewForm is the blank add-company form: active, no sites, no assets.
func NewForm() models.Company {
	return models.Company{Active: true}
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

func New(db *gorm.DB, log *zap.Logger) *Service {
	return &Service{db: db, log: log}
}

// List returns companies in the order they were added.
func (s *Service) List(ctx context.Context) ([]models.Company, error) {
	out := []models.Company{}
	if err := s.db.WithContext(ctx).Order("rowid").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (models.Company, error) {
	var c models.Company
	err := s.db.WithContext(ctx).First(&c, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Company{}, ErrNotFound
	}
	if err != nil {
		return models.Company{}, fmt.Errorf("get company %s: %w", id, err)
	}
	return c, nil
}

func validate(c *models.Company) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if c.Sites < 0 || c.Assets < 0 {
		return fmt.Errorf("%w: counts cannot be negative", ErrInvalid)
	}
	return nil
}

// Add stores c under a fresh seven character id.
func (s *Service) Add(ctx context.Context, c models.Company) (models.Company, error) {
	if err := validate(&c); err != nil {
		return models.Company{}, err
	}
	c.ID = strings.ReplaceAll(uuid.NewString(), "-", "")[:7]

	if err := s.db.WithContext(ctx).Create(&c).Error; err != nil {
		return models.Company{}, fmt.Errorf("add company: %w", err)
	}
	s.log.Info("company added", zap.String("company_id", c.ID), zap.String("name", c.Name))
	return c, nil
}

// Update replaces every field of the company except its id.
func (s *Service) Update(ctx context.Context, id string, c models.Company) (models.Company, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return models.Company{}, err
	}
	if err := validate(&c); err != nil {
		return models.Company{}, err
	}
	c.ID = id

	if err := s.db.WithContext(ctx).Save(&c).Error; err != nil {
		return models.Company{}, fmt.Errorf("update company %s: %w", id, err)
	}
	return c, nil
}

// Delete removes the company only; its devices and assets keep their
// customer name.
func (s *Service) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&models.Company{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete company %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
