package db

import (
	"time"

	"vibermm/internal/models"

	"gorm.io/gorm"
)

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func tsPtr(s string) *time.Time {
	t := ts(s)
	return &t
}

// seedTable inserts rows only when the table for T is empty.
func seedTable[T any](db *gorm.DB, rows []T) error {
	var n int64
	if err := db.Model(new(T)).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 || len(rows) == 0 {
		return nil
	}
	return db.Create(&rows).Error
}

// Seed loads the mock data shown by the console into empty tables.
func Seed(db *gorm.DB) error {
	steps := []func(*gorm.DB) error{
		func(db *gorm.DB) error { return seedTable(db, seedDevices) },
		func(db *gorm.DB) error { return seedTable(db, seedAlerts) },
		func(db *gorm.DB) error { return seedTable(db, seedAlertPolicies) },
		func(db *gorm.DB) error { return seedTable(db, seedAlertEvents) },
		func(db *gorm.DB) error { return seedTable(db, seedCompanies) },
		func(db *gorm.DB) error { return seedTable(db, seedAssets) },
		func(db *gorm.DB) error { return seedTable(db, seedRules) },
		func(db *gorm.DB) error { return seedTable(db, SeedPatchStatus) },
		func(db *gorm.DB) error { return seedTable(db, seedPatchProfiles) },
		func(db *gorm.DB) error { return seedTable(db, seedDeploymentRules) },
	}
	for _, step := range steps {
		if err := step(db); err != nil {
			return err
		}
	}
	return nil
}

var seedDevices = []models.Device{
	{
		ID: "device-1", Name: "DESKTOP-001", Type: "workstation", Status: models.StatusOnline,
		LastSeen: ts("2025-06-01T10:30:00Z"), OSType: "windows", OSName: "Windows 10", OSArch: "x64",
		IPAddress: "192.168.1.100", MACAddress: "00:1a:2b:3c:4d:5e", Customer: "Acme Corporation",
		Specs: models.DeviceSpecs{CPU: "Intel i7-13700K", Memory: "32GB", Disk: "1TB SSD"},
	},
	{
		ID: "device-2", Name: "SERVER-DB-01", Type: "server", Status: models.StatusOnline,
		LastSeen: ts("2025-06-01T10:28:00Z"), OSType: "windows", OSName: "Windows Server 2022", OSArch: "x64",
		IPAddress: "10.0.0.12", MACAddress: "00:1a:2b:3c:4d:60", Customer: "TechSolutions Inc.",
		Specs: models.DeviceSpecs{CPU: "Xeon Silver 4314", Memory: "128GB", Disk: "4TB RAID10"},
	},
	{
		ID: "device-3", Name: "DESKTOP-002", Type: "workstation", Status: models.StatusOffline,
		LastSeen: ts("2025-05-30T17:02:00Z"), OSType: "windows", OSName: "Windows 11", OSArch: "x64",
		IPAddress: "192.168.1.101", MACAddress: "00:1a:2b:3c:4d:61", Customer: "Acme Corporation",
		Specs: models.DeviceSpecs{CPU: "Intel i5-12400", Memory: "16GB", Disk: "512GB SSD"},
	},
	{
		ID: "device-4", Name: "WEBSRV-01", Type: "server", Status: models.StatusMaintenance,
		LastSeen: ts("2025-06-01T09:00:00Z"), OSType: "linux", OSName: "Ubuntu 22.04", OSArch: "x64",
		IPAddress: "10.0.0.20", MACAddress: "00:1a:2b:3c:4d:70", Customer: "Acme Corporation",
		Specs: models.DeviceSpecs{CPU: "AMD EPYC 7302", Memory: "64GB", Disk: "2TB NVMe"},
	},
	{
		ID: "device-5", Name: "MBP-DESIGN-03", Type: "laptop", Status: models.StatusOnline,
		LastSeen: ts("2025-06-01T10:12:00Z"), OSType: "mac", OSName: "macOS 14", OSArch: "arm64",
		IPAddress: "192.168.1.140", MACAddress: "a4:83:e7:11:22:33", Customer: "Global Enterprises",
		Specs: models.DeviceSpecs{CPU: "Apple M2 Pro", Memory: "32GB", Disk: "1TB SSD"},
	},
}

var seedAlerts = []models.Alert{
	{ID: "alert-1", DeviceID: "device-2", Severity: "critical", Type: "cpu", Message: "CPU usage above 95% for 15 minutes", Timestamp: ts("2025-06-01T10:20:00Z"), Status: "new"},
	{ID: "alert-2", DeviceID: "device-3", Severity: "medium", Type: "availability", Message: "Device has not checked in for 24 hours", Timestamp: ts("2025-05-31T17:02:00Z"), Status: "new"},
	{ID: "alert-3", DeviceID: "device-1", Severity: "low", Type: "patch", Message: "2 important updates pending", Timestamp: ts("2025-05-28T08:00:00Z"), Status: "acknowledged"},
	{ID: "alert-4", DeviceID: "device-4", Severity: "high", Type: "disk", Message: "Disk /var above 90%", Timestamp: ts("2025-05-20T12:00:00Z"), Status: "resolved"},
}

var seedAlertPolicies = []models.AlertPolicy{
	{
		ID: "ap-001", Name: "Critical CPU Usage", Description: "Alerts when CPU usage exceeds 90% for more than 10 minutes",
		Enabled: true, Severity: "critical", Category: "performance", Conditions: "CPU usage > 90% for 10 minutes",
		NotificationChannels: []string{"Email", "Slack"}, AppliedTo: []string{"All Devices"}, CreatedAt: ts("2025-07-15T10:30:00Z"),
	},
	{
		ID: "ap-002", Name: "Low Disk Space", Description: "Alerts when disk space falls below 10%",
		Enabled: true, Severity: "warning", Category: "system", Conditions: "Free disk space < 10%",
		NotificationChannels: []string{"Email"}, AppliedTo: []string{"Windows Servers", "Linux Servers"}, CreatedAt: ts("2025-07-20T14:15:00Z"),
	},
	{
		ID: "ap-003", Name: "Failed Backup", Description: "Alerts when a scheduled backup fails",
		Enabled: true, Severity: "critical", Category: "backup", Conditions: "Backup status = Failed",
		NotificationChannels: []string{"Email", "SMS"}, AppliedTo: []string{"All Servers"}, CreatedAt: ts("2025-07-25T09:45:00Z"),
	},
	{
		ID: "ap-004", Name: "Security Updates Available", Description: "Notifies when security updates are available for installation",
		Enabled: true, Severity: "info", Category: "security", Conditions: "Security updates available > 0",
		NotificationChannels: []string{"Email"}, AppliedTo: []string{"Windows Devices", "Linux Devices"}, CreatedAt: ts("2025-07-28T11:20:00Z"),
	},
}

var seedAlertEvents = []models.AlertEvent{
	{ID: "ae-001", PolicyID: "ap-001", PolicyName: "Critical CPU Usage", DeviceName: "WEBSRV-01", Company: "Acme Corporation", Message: "CPU usage exceeded 90% for 15 minutes", Severity: "critical", Timestamp: ts("2025-08-03T14:22:00Z")},
	{ID: "ae-002", PolicyID: "ap-002", PolicyName: "Low Disk Space", DeviceName: "DBSRV-03", Company: "TechSolutions Inc.", Message: "Disk C: has only 8% free space remaining", Severity: "warning", Timestamp: ts("2025-08-03T13:45:00Z")},
	{
		ID: "ae-003", PolicyID: "ap-003", PolicyName: "Failed Backup", DeviceName: "FILSRV-02", Company: "Global Enterprises", Message: "Daily backup job failed: Access denied", Severity: "critical", Timestamp: ts("2025-08-03T08:15:00Z"),
		Acknowledged: true, AcknowledgedBy: "Sarah Johnson", AcknowledgedAt: tsPtr("2025-08-03T09:22:00Z"),
	},
	{ID: "ae-004", PolicyID: "ap-004", PolicyName: "Security Updates Available", DeviceName: "WKSTN-15", Company: "Acme Corporation", Message: "12 security updates available for installation", Severity: "info", Timestamp: ts("2025-08-02T22:10:00Z")},
}

var seedCompanies = []models.Company{
	{ID: "1", Name: "Acme Corporation", ContactName: "John Smith", Email: "john@acmecorp.com", Phone: "(555) 123-4567", Address: "123 Main St, Anytown, USA", Active: true, Sites: 3, Assets: 45},
	{ID: "2", Name: "TechSolutions Inc.", ContactName: "Sarah Johnson", Email: "sarah@techsolutions.com", Phone: "(555) 987-6543", Address: "456 Tech Blvd, Innovation City, USA", Active: true, Sites: 2, Assets: 32},
	{ID: "3", Name: "Global Enterprises", ContactName: "Michael Chen", Email: "michael@globalent.com", Phone: "(555) 555-5555", Address: "789 Global Ave, Metropolis, USA", Active: false, Sites: 5, Assets: 78},
}

var seedAssets = []models.Asset{
	{
		ID: "1", Name: "DESKTOP-FFHVSFD", Type: "workstation", Manufacturer: "Dell", Model: "OptiPlex 7010", SerialNumber: "DL7010-88213",
		PurchaseDate: "2024-02-11", WarrantyExpiration: "2027-02-11", AssignedTo: "John Smith", Location: "HQ Floor 2",
		IPAddress: "192.168.1.100", LastCheckIn: "2025-06-11 10:30 AM", Customer: "Acme Corporation", OSName: "Windows 11", OSArch: "x64", Status: models.StatusOnline,
	},
	{
		ID: "2", Name: "SERVER-DB-01", Type: "server", Manufacturer: "HPE", Model: "ProLiant DL380 Gen10", SerialNumber: "HPE-DL380-0042",
		PurchaseDate: "2023-09-01", WarrantyExpiration: "2028-09-01", Location: "Datacenter Rack 4",
		IPAddress: "10.0.0.12", LastCheckIn: "2025-06-11 10:28 AM", Customer: "TechSolutions Inc.", OSName: "Windows Server 2022", OSArch: "x64", Status: models.StatusOnline,
	},
	{
		ID: "3", Name: "MBP-DESIGN-03", Type: "laptop", Manufacturer: "Apple", Model: "MacBook Pro 14", SerialNumber: "C02XL0AAJGH5",
		PurchaseDate: "2024-05-20", WarrantyExpiration: "2025-05-20", AssignedTo: "Michael Chen", Location: "Remote",
		IPAddress: "192.168.1.140", LastCheckIn: "2025-06-10 04:12 PM", Customer: "Global Enterprises", OSName: "macOS 14", OSArch: "arm64", Status: models.StatusOffline,
	},
}

var seedRules = []models.AutomationRule{
	{
		ID: "rule-1", Name: "Restart spooler on failure", Description: "Restart the print spooler when the service stops",
		Conditions: []models.RuleCondition{{Type: "service", Operator: "equals", Value: "spooler:stopped"}},
		Actions:    []models.RuleAction{{Type: "runScript", Params: map[string]any{"script": "Restart-Service spooler"}}},
		Enabled:    true, LastTriggered: tsPtr("2025-05-29T07:45:00Z"),
	},
	{
		ID: "rule-2", Name: "Disk cleanup", Description: "Clear temp files when free disk drops below 10%",
		Conditions: []models.RuleCondition{{Type: "diskFree", Operator: "lessThan", Value: float64(10)}},
		Actions:    []models.RuleAction{{Type: "runScript", Params: map[string]any{"script": "cleanmgr /sagerun:1"}}},
		Enabled:    false,
	},
}

// SeedPatchStatus is the patch scan result the console reports on refresh.
var SeedPatchStatus = []models.PatchStatus{
	{ID: "1", DeviceID: "device-1", DeviceName: "DESKTOP-001", OSType: "Windows", OSVersion: "Windows 10", Important: 2, Moderate: 5, Low: 3, LastScanned: "2025-05-28", Status: models.PatchNeedsAttention},
	{ID: "2", DeviceID: "device-2", DeviceName: "SERVER-DB-01", OSType: "Windows", OSVersion: "Windows Server 2022", Critical: 1, Important: 3, LastScanned: "2025-05-20", Status: models.PatchCritical},
	{ID: "3", DeviceID: "device-3", DeviceName: "DESKTOP-002", OSType: "Windows", OSVersion: "Windows 11", Low: 1, LastScanned: "2025-05-30", Status: models.PatchUpToDate},
}

var seedPatchProfiles = []models.PatchProfile{
	{
		ID: "1", Name: "Default Profile", Description: "Default patch settings for all devices", DeviceCount: 45, LastModified: "2025-05-15",
		Settings: models.PatchProfileSettings{
			AutoApprove: true, AutoApproveCategories: []string{"security", "critical"},
			Schedule: models.PatchSchedule{Enabled: true, Type: "weekly", Time: "22:00", Days: []string{"Sunday"}},
		},
	},
	{
		ID: "2", Name: "Servers", Description: "Conservative patching for production servers", DeviceCount: 12, LastModified: "2025-05-20",
		Settings: models.PatchProfileSettings{
			AutoApproveCategories: []string{"critical"},
			Schedule:              models.PatchSchedule{Enabled: true, Type: "monthly", Time: "01:00", Date: 15},
		},
	},
}

var seedDeploymentRules = []models.DeploymentRule{
	{
		ID: "1", Name: "Workstation Business Hours", Description: "Deploy patches to workstations during business hours",
		Schedule: "Weekdays, 10:00 AM - 4:00 PM", Targets: "All Workstations", Status: "Active",
		Conditions: []models.RuleClause{{Type: "deviceType", Value: "workstation"}, {Type: "online", Value: "true"}},
		Actions:    []models.RuleClause{{Type: "install", Value: "approved"}, {Type: "restart", Value: "ifNeeded"}},
	},
	{
		ID: "2", Name: "Server Maintenance Window", Description: "Deploy patches to servers during maintenance window",
		Schedule: "Sundays, 1:00 AM - 5:00 AM", Targets: "Production Servers", Status: "Active",
		Conditions: []models.RuleClause{{Type: "deviceType", Value: "server"}, {Type: "tag", Value: "production"}},
		Actions:    []models.RuleClause{{Type: "install", Value: "approved"}, {Type: "restart", Value: "scheduled"}},
	},
}
