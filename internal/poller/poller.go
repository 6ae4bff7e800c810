package poller

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"vibermm/internal/models"
	"vibermm/internal/oid"
	"vibermm/internal/osname"
	"vibermm/internal/telemetry"

	"github.com/gosnmp/gosnmp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SystemInfo is the SNMP system group of a device.
type SystemInfo struct {
	Descr  string
	Name   string
	UpTime time.Duration
}

// ---------- SNMP FUNCTIONS ----------

func splitTarget(target string) (string, uint16) {
	host, portStr, err := net.SplitHostPort(target)
	if err != nil {
		return target, 161
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return host, 161
	}
	return host, uint16(port)
}

// SnmpSystemGet reads sysDescr, sysUpTime and sysName from target, given as
// host or host:port.
func SnmpSystemGet(ctx context.Context, target, community string, timeout time.Duration) (SystemInfo, error) {
	host, port := splitTarget(target)
	g := &gosnmp.GoSNMP{
		Context:   ctx,
		Target:    host,
		Port:      port,
		Community: community,
		Version:   gosnmp.Version2c,
		Timeout:   timeout,
		Retries:   1,
	}

	if err := g.Connect(); err != nil {
		return SystemInfo{}, fmt.Errorf("connect error: %w", err)
	}
	defer g.Conn.Close()

	pkt, err := g.Get(oid.System())
	if err != nil {
		return SystemInfo{}, fmt.Errorf("SNMP get error: %w", err)
	}

	var info SystemInfo
	found := false
	for _, pdu := range pkt.Variables {
		switch pdu.Type {
		case gosnmp.NoSuchObject, gosnmp.NoSuchInstance, gosnmp.EndOfMibView, gosnmp.Null:
			continue
		}
		found = true

		switch strings.TrimPrefix(pdu.Name, ".") {
		case oid.SysDescr:
			info.Descr = pduString(pdu)
		case oid.SysName:
			info.Name = pduString(pdu)
		case oid.SysUpTime:
			// TimeTicks are hundredths of a second
			info.UpTime = time.Duration(gosnmp.ToBigInt(pdu.Value).Int64()) * 10 * time.Millisecond
		}
	}
	if !found {
		return SystemInfo{}, fmt.Errorf("SNMP get error: %s returned no system objects", target)
	}
	return info, nil
}

func pduString(pdu gosnmp.SnmpPDU) string {
	if b, ok := pdu.Value.([]byte); ok {
		return strings.TrimSpace(string(b))
	}
	return fmt.Sprint(pdu.Value)
}

// ---------- POLLER LOOP ----------

// Poller keeps the status of SNMP-managed devices current. Devices without
// a community string, and devices in maintenance, are left alone.
type Poller struct {
	db       *gorm.DB
	log      *zap.Logger
	interval time.Duration
	timeout  time.Duration
	now      func() time.Time
	probe    func(ctx context.Context, target, community string, timeout time.Duration) (SystemInfo, error)
}

func New(db *gorm.DB, log *zap.Logger, interval time.Duration) *Poller {
	return &Poller{
		db:       db,
		log:      log,
		interval: interval,
		timeout:  gosnmp.Default.Timeout,
		now:      time.Now,
		probe:    SnmpSystemGet,
	}
}

// Run polls immediately and then every interval until ctx is done.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if n, err := p.PollOnce(ctx); err != nil {
			p.log.Error("polling cycle failed", zap.Error(err))
		} else {
			p.log.Info("polling cycle complete", zap.Int("devices", n))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// PollOnce polls every eligible device once and returns how many it polled.
func (p *Poller) PollOnce(ctx context.Context) (int, error) {
	var devices []models.Device
	err := p.db.WithContext(ctx).
		Where("snmp_community <> '' AND status <> ?", models.StatusMaintenance).
		Find(&devices).Error
	if err != nil {
		return 0, fmt.Errorf("list devices: %w", err)
	}

	for _, d := range devices {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		p.pollDevice(ctx, d)
	}
	return len(devices), nil
}

func (p *Poller) pollDevice(ctx context.Context, d models.Device) {
	p.log.Debug("polling device", zap.String("device_id", d.ID), zap.String("ip", d.IPAddress))

	updates := map[string]any{}
	info, err := p.probe(ctx, d.IPAddress, d.SNMPCommunity, p.timeout)
	if err != nil {
		p.log.Warn("device unreachable", zap.String("device_id", d.ID), zap.Error(err))
		updates["status"] = models.StatusOffline
	} else {
		updates["status"] = models.StatusOnline
		updates["last_seen"] = p.now()
		if info.Descr != "" {
			updates["os_type"] = osname.Normalize(info.Descr)
		}
	}

	if err := p.db.WithContext(ctx).Model(&models.Device{}).Where("id = ?", d.ID).Updates(updates).Error; err != nil {
		p.log.Error("failed to update device status", zap.String("device_id", d.ID), zap.Error(err))
		return
	}
	telemetry.DevicePolled(updates["status"].(string))
}
