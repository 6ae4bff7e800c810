// Package hostmetrics samples resource usage of the machine the console runs
// on, and fabricates stable metrics for devices it cannot reach.
package hostmetrics

import (
	"context"
	"hash/fnv"
	"time"

	"vibermm/internal/models"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"
	"go.uber.org/zap"
)

const gib = 1 << 30

// Collector reads host metrics through gopsutil. A failing source is logged
// and reported as zeroes rather than failing the whole sample.
type Collector struct {
	log            *zap.Logger
	diskPath       string
	sampleInterval time.Duration

	usageCollector func(context.Context, time.Duration, bool) ([]float64, error)
	memCollector   func(context.Context) (*mem.VirtualMemoryStat, error)
	diskCollector  func(context.Context, string) (*disk.UsageStat, error)
	netCollector   func(context.Context, bool) ([]net.IOCountersStat, error)
}

func NewCollector(log *zap.Logger) *Collector {
	return &Collector{
		log:            log,
		diskPath:       "/",
		usageCollector: cpu.PercentWithContext,
		memCollector:   mem.VirtualMemoryWithContext,
		diskCollector:  disk.UsageWithContext,
		netCollector:   net.IOCountersWithContext,
	}
}

// Collect takes one sample. CPU usage is measured since the previous call.
func (c *Collector) Collect(ctx context.Context) (models.DeviceMetrics, error) {
	var m models.DeviceMetrics

	if percent, err := c.usageCollector(ctx, c.sampleInterval, false); err != nil {
		c.log.Warn("cpu usage collection failed; reporting zero", zap.Error(err))
	} else if len(percent) > 0 {
		m.CPU.Usage = percent[0]
	}

	if vm, err := c.memCollector(ctx); err != nil {
		c.log.Warn("memory collection failed; reporting zeroes", zap.Error(err))
	} else {
		m.Memory = models.CapacityMetrics{Total: vm.Total, Used: vm.Used, Free: vm.Available}
	}

	if du, err := c.diskCollector(ctx, c.diskPath); err != nil {
		c.log.Warn("disk collection failed; reporting zeroes", zap.String("path", c.diskPath), zap.Error(err))
	} else {
		m.Disk = models.CapacityMetrics{Total: du.Total, Used: du.Used, Free: du.Free}
	}

	if counters, err := c.netCollector(ctx, false); err != nil {
		c.log.Warn("network collection failed; reporting zeroes", zap.Error(err))
	} else if len(counters) > 0 {
		m.Network = models.NetworkMetrics{Download: counters[0].BytesRecv, Upload: counters[0].BytesSent}
	}

	if err := ctx.Err(); err != nil {
		return models.DeviceMetrics{}, err
	}
	return m, nil
}

// Percentages reduces a sample to CPU, memory and disk usage in percent.
func Percentages(m models.DeviceMetrics) (cpuPct, memPct, diskPct float64) {
	return round1(m.CPU.Usage), ratio(m.Memory.Used, m.Memory.Total), ratio(m.Disk.Used, m.Disk.Total)
}

func ratio(used, total uint64) float64 {
	if total == 0 {
		return 0
	}
	return round1(float64(used) / float64(total) * 100)
}

func round1(v float64) float64 {
	return float64(int64(v*10+0.5)) / 10
}

// Synthetic returns metrics for a device the console has no agent on. The
// values are derived from the device id so repeated calls agree.
func Synthetic(deviceID string) models.DeviceMetrics {
	h := fnv.New64a()
	_, _ = h.Write([]byte(deviceID))
	seed := h.Sum64()

	pick := func(shift uint, span uint64) uint64 {
		return (seed >> shift) % span
	}

	memTotal := uint64(8+pick(0, 4)*8) * gib
	memUsed := memTotal * (30 + pick(8, 60)) / 100
	diskTotal := uint64(256+pick(16, 4)*256) * gib
	diskUsed := diskTotal * (20 + pick(24, 70)) / 100

	return models.DeviceMetrics{
		CPU: models.CPUMetrics{
			Usage:       float64(5 + pick(32, 90)),
			Temperature: float64(35 + pick(40, 40)),
		},
		Memory:  models.CapacityMetrics{Total: memTotal, Used: memUsed, Free: memTotal - memUsed},
		Disk:    models.CapacityMetrics{Total: diskTotal, Used: diskUsed, Free: diskTotal - diskUsed},
		Network: models.NetworkMetrics{Download: (1 + pick(48, 100)) << 20, Upload: (1 + pick(56, 50)) << 20},
	}
}
