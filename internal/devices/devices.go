// Package devices is the managed device inventory.
package devices

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"vibermm/internal/dashboard"
	"vibermm/internal/events"
	"vibermm/internal/hostmetrics"
	"vibermm/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("device not found")
	ErrInvalid  = errors.New("invalid device")
)

var deviceTypes = map[string]bool{
	"workstation": true, "server": true, "laptop": true, "mobile": true, "network": true,
}

var statuses = map[string]bool{
	models.StatusOnline: true, models.StatusOffline: true, models.StatusMaintenance: true,
}

// Filter narrows List. Empty fields match everything.
type Filter struct {
	Search string // case-insensitive substring of the name
	OSType string // windows, linux, mac
	OSName string
	Type   string
	Status string
}

// Patch is a partial device update; nil fields are left unchanged.
type Patch struct {
	Name          *string             `json:"name"`
	Type          *string             `json:"type"`
	Status        *string             `json:"status"`
	OSType        *string             `json:"osType"`
	OSName        *string             `json:"osName"`
	OSArch        *string             `json:"osArch"`
	IPAddress     *string             `json:"ipAddress"`
	MACAddress    *string             `json:"macAddress"`
	Customer      *string             `json:"customer"`
	SNMPCommunity *string             `json:"snmpCommunity"`
	Specs         *models.DeviceSpecs `json:"specs"`
}

// Summary is the dashboard overview served by GET /dashboard/summary.
type Summary struct {
	Devices int                 `json:"devices"`
	Alerts  int                 `json:"alerts"`
	Uptime  float64             `json:"uptime"`
	Stats   dashboard.ChartData `json:"stats"`
}

type MetricsCollector interface {
	Collect(ctx context.Context) (models.DeviceMetrics, error)
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	metrics   MetricsCollector
	publisher events.Publisher
}

func New(db *gorm.DB, metrics MetricsCollector, publisher events.Publisher, log *zap.Logger) *Service {
	return &Service{db: db, log: log, metrics: metrics, publisher: publisher}
}

func (s *Service) List(ctx context.Context, f Filter) ([]models.Device, error) {
	q := s.db.WithContext(ctx).Order("name")
	if f.Search != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(f.Search)+"%")
	}
	if f.OSType != "" {
		q = q.Where("os_type = ?", strings.ToLower(f.OSType))
	}
	if f.OSName != "" {
		q = q.Where("os_name = ?", f.OSName)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	devices := []models.Device{}
	if err := q.Find(&devices).Error; err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	return devices, nil
}

func (s *Service) Get(ctx context.Context, id string) (models.Device, error) {
	var d models.Device
	err := s.db.WithContext(ctx).First(&d, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Device{}, ErrNotFound
	}
	if err != nil {
		return models.Device{}, fmt.Errorf("get device %s: %w", id, err)
	}
	return d, nil
}

// Add registers a device. New devices are offline until first seen.
func (s *Service) Add(ctx context.Context, d models.Device) (models.Device, error) {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return models.Device{}, fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if d.Type == "" {
		d.Type = "workstation"
	}
	if !deviceTypes[d.Type] {
		return models.Device{}, fmt.Errorf("%w: unknown type %q", ErrInvalid, d.Type)
	}
	if d.Status == "" {
		d.Status = models.StatusOffline
	}
	if !statuses[d.Status] {
		return models.Device{}, fmt.Errorf("%w: unknown status %q", ErrInvalid, d.Status)
	}
	d.ID = "device-" + uuid.NewString()[:8]

	if err := s.db.WithContext(ctx).Create(&d).Error; err != nil {
		return models.Device{}, fmt.Errorf("add device: %w", err)
	}
	s.log.Info("device added", zap.String("device_id", d.ID), zap.String("name", d.Name))
	return d, nil
}

// Update applies the set fields of p and returns the updated device.
func (s *Service) Update(ctx context.Context, id string, p Patch) (models.Device, error) {
	d, err := s.Get(ctx, id)
	if err != nil {
		return models.Device{}, err
	}

	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&d.Name, p.Name)
	set(&d.Type, p.Type)
	set(&d.Status, p.Status)
	set(&d.OSType, p.OSType)
	set(&d.OSName, p.OSName)
	set(&d.OSArch, p.OSArch)
	set(&d.IPAddress, p.IPAddress)
	set(&d.MACAddress, p.MACAddress)
	set(&d.Customer, p.Customer)
	set(&d.SNMPCommunity, p.SNMPCommunity)
	if p.Specs != nil {
		d.Specs = *p.Specs
	}

	if strings.TrimSpace(d.Name) == "" {
		return models.Device{}, fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if !deviceTypes[d.Type] {
		return models.Device{}, fmt.Errorf("%w: unknown type %q", ErrInvalid, d.Type)
	}
	if !statuses[d.Status] {
		return models.Device{}, fmt.Errorf("%w: unknown status %q", ErrInvalid, d.Status)
	}

	if err := s.db.WithContext(ctx).Save(&d).Error; err != nil {
		return models.Device{}, fmt.Errorf("update device %s: %w", id, err)
	}
	return d, nil
}

// DeleteMany removes the devices with the given ids and reports how many
// existed.
func (s *Service) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := s.db.WithContext(ctx).Where("id IN ?", ids).Delete(&models.Device{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete devices: %w", res.Error)
	}

	if res.RowsAffected > 0 {
		if _, err := s.publisher.Publish(ctx, events.TopicDevicesDeleted, map[string]any{"ids": ids}); err != nil {
			s.log.Warn("failed to publish device deletion", zap.Error(err))
		}
	}
	return res.RowsAffected, nil
}

// DeletedMessage is the toast shown after DeleteMany.
func DeletedMessage(n int64) string {
	return fmt.Sprintf("Deleted %d device(s)", n)
}

// Metrics samples the console host for the local device and returns stable
// synthetic values for every other device.
func (s *Service) Metrics(ctx context.Context, id string) (models.DeviceMetrics, error) {
	d, err := s.Get(ctx, id)
	if err != nil {
		return models.DeviceMetrics{}, err
	}
	if d.Local {
		return s.metrics.Collect(ctx)
	}
	return hostmetrics.Synthetic(d.ID), nil
}

func (s *Service) Summary(ctx context.Context) (Summary, error) {
	type row struct {
		Status string
		N      int
	}
	var rows []row
	if err := s.db.WithContext(ctx).Model(&models.Device{}).
		Select("status, COUNT(*) AS n").Group("status").Scan(&rows).Error; err != nil {
		return Summary{}, fmt.Errorf("count devices: %w", err)
	}

	counts := map[string]int{}
	total := 0
	for _, r := range rows {
		counts[r.Status] = r.N
		total += r.N
	}

	var openAlerts int64
	if err := s.db.WithContext(ctx).Model(&models.Alert{}).
		Where("status <> ?", "resolved").Count(&openAlerts).Error; err != nil {
		return Summary{}, fmt.Errorf("count alerts: %w", err)
	}

	uptime := 0.0
	if total > 0 {
		uptime = math.Round(float64(counts[models.StatusOnline])/float64(total)*1000) / 10
	}

	return Summary{
		Devices: total,
		Alerts:  int(openAlerts),
		Uptime:  uptime,
		Stats: dashboard.ChartData{
			Labels: []string{"Online", "Offline", "Maintenance"},
			Datasets: []dashboard.Dataset{{
				Data: []float64{
					float64(counts[models.StatusOnline]),
					float64(counts[models.StatusOffline]),
					float64(counts[models.StatusMaintenance]),
				},
				BackgroundColor: dashboard.Colors{"#22c55e", "#ef4444", "#f59e0b"},
			}},
		},
	}, nil
}
