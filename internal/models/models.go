package models

import "time"

// Device status values.
const (
	StatusOnline      = "online"
	StatusOffline     = "offline"
	StatusMaintenance = "maintenance"
)

type DeviceSpecs struct {
	CPU    string `json:"cpu,omitempty"`
	Memory string `json:"memory,omitempty"`
	Disk   string `json:"disk,omitempty"`
}

type Device struct {
	ID            string      `gorm:"primaryKey" json:"id"`
	Name          string      `json:"name"`
	Type          string      `json:"type"` // workstation, server, laptop, mobile, network
	Status        string      `json:"status"`
	LastSeen      time.Time   `json:"lastSeen"`
	OSType        string      `json:"osType"` // windows, linux, mac
	OSName        string      `json:"osName"`
	OSArch        string      `json:"osArch"`
	IPAddress     string      `json:"ipAddress"`
	MACAddress    string      `json:"macAddress"`
	Customer      string      `json:"customer"`
	Specs         DeviceSpecs `gorm:"serializer:json" json:"specs"`
	SNMPCommunity string      `json:"snmpCommunity,omitempty"`
	// Local marks the host the console itself runs on.
	Local bool `json:"local"`
}

type CPUMetrics struct {
	Usage       float64 `json:"usage"`
	Temperature float64 `json:"temperature"`
}

type CapacityMetrics struct {
	Total uint64 `json:"total"`
	Used  uint64 `json:"used"`
	Free  uint64 `json:"free"`
}

type NetworkMetrics struct {
	Download uint64 `json:"download"`
	Upload   uint64 `json:"upload"`
}

// DeviceMetrics is a point-in-time resource snapshot. It is never stored.
type DeviceMetrics struct {
	CPU     CPUMetrics      `json:"cpu"`
	Memory  CapacityMetrics `json:"memory"`
	Disk    CapacityMetrics `json:"disk"`
	Network NetworkMetrics  `json:"network"`
}

// Alert is the monitoring alert served by GET /alerts.
type Alert struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	DeviceID  string    `json:"deviceId"`
	Severity  string    `json:"severity"` // low, medium, high, critical
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Status    string    `json:"status"` // new, acknowledged, resolved
}

type AlertPolicy struct {
	ID                   string    `gorm:"primaryKey" json:"id"`
	Name                 string    `json:"name"`
	Description          string    `json:"description"`
	Enabled              bool      `json:"enabled"`
	Severity             string    `json:"severity"` // critical, warning, info
	Category             string    `json:"category"` // system, security, performance, availability, backup, custom
	Conditions           string    `json:"conditions"`
	NotificationChannels []string  `gorm:"serializer:json" json:"notificationChannels"`
	AppliedTo            []string  `gorm:"serializer:json" json:"appliedTo"`
	CreatedAt            time.Time `json:"createdAt"`
}

type AlertEvent struct {
	ID             string     `gorm:"primaryKey" json:"id"`
	PolicyID       string     `json:"policyId"`
	PolicyName     string     `json:"policyName"`
	DeviceName     string     `json:"deviceName"`
	Company        string     `json:"company"`
	Message        string     `json:"message"`
	Severity       string     `json:"severity"`
	Timestamp      time.Time  `json:"timestamp"`
	Acknowledged   bool       `json:"acknowledged"`
	AcknowledgedBy string     `json:"acknowledgedBy,omitempty"`
	AcknowledgedAt *time.Time `json:"acknowledgedAt,omitempty"`
}

type Company struct {
	ID          string `gorm:"primaryKey" json:"id"`
	Name        string `json:"name"`
	ContactName string `json:"contactName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	Active      bool   `json:"active"`
	Sites       int    `json:"sites"`
	Assets      int    `json:"assets"`
}

type Asset struct {
	ID                 string `gorm:"primaryKey" json:"id"`
	Name               string `json:"name"`
	Type               string `json:"type"`
	Manufacturer       string `json:"manufacturer"`
	Model              string `json:"model"`
	SerialNumber       string `json:"serialNumber"`
	PurchaseDate       string `json:"purchaseDate,omitempty"`
	WarrantyExpiration string `json:"warrantyExpiration,omitempty"`
	AssignedTo         string `json:"assignedTo,omitempty"`
	Location           string `json:"location,omitempty"`
	IPAddress          string `json:"ip"`
	LastCheckIn        string `json:"lastCheckIn"`
	Customer           string `json:"customer"`
	OSName             string `json:"osName"`
	OSArch             string `json:"osArch"`
	Status             string `json:"status"`
}

type RuleCondition struct {
	Type     string `json:"type"`
	Operator string `json:"operator"`
	Value    any    `json:"value"`
}

type RuleAction struct {
	Type   string         `json:"type"`
	Params map[string]any `json:"params"`
}

type AutomationRule struct {
	ID            string          `gorm:"primaryKey" json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	Conditions    []RuleCondition `gorm:"serializer:json" json:"conditions"`
	Actions       []RuleAction    `gorm:"serializer:json" json:"actions"`
	Enabled       bool            `json:"enabled"`
	LastTriggered *time.Time      `json:"lastTriggered,omitempty"`
}

// Patch status values.
const (
	PatchUpToDate       = "Up to Date"
	PatchNeedsAttention = "Needs Attention"
	PatchCritical       = "Critical"
	PatchNotAssessed    = "Not Assessed"
)

type PatchStatus struct {
	ID          string `gorm:"primaryKey" json:"id"`
	DeviceID    string `json:"deviceId"`
	DeviceName  string `json:"deviceName"`
	OSType      string `json:"osType"`
	OSVersion   string `json:"osVersion"`
	Critical    int    `json:"critical"`
	Important   int    `json:"important"`
	Moderate    int    `json:"moderate"`
	Low         int    `json:"low"`
	LastScanned string `json:"lastScanned"`
	Status      string `json:"status"`
}

type PatchSchedule struct {
	Enabled bool     `json:"enabled"`
	Type    string   `json:"type"` // daily, weekly, monthly
	Time    string   `json:"time"`
	Days    []string `json:"days,omitempty"`
	Date    int      `json:"date,omitempty"`
}

type PatchProfileSettings struct {
	AutoApprove           bool          `json:"autoApprove"`
	AutoApproveCategories []string      `json:"autoApproveCategories"`
	Schedule              PatchSchedule `json:"schedule"`
}

type PatchProfile struct {
	ID           string               `gorm:"primaryKey" json:"id"`
	Name         string               `json:"name"`
	Description  string               `json:"description"`
	DeviceCount  int                  `json:"deviceCount"`
	LastModified string               `json:"lastModified"`
	Settings     PatchProfileSettings `gorm:"serializer:json" json:"settings"`
}

type RuleClause struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type DeploymentRule struct {
	ID          string       `gorm:"primaryKey" json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Schedule    string       `json:"schedule"`
	Targets     string       `json:"targets"`
	Status      string       `json:"status"` // Active, Paused
	Conditions  []RuleClause `gorm:"serializer:json" json:"conditions"`
	Actions     []RuleClause `gorm:"serializer:json" json:"actions"`
}

// Preference is one key of the console's client-side state.
type Preference struct {
	Key       string `gorm:"primaryKey;column:pref_key"`
	Value     string
	UpdatedAt time.Time
}

// All lists every model for migration.
func All() []any {
	return []any{
		&Device{}, &Alert{}, &AlertPolicy{}, &AlertEvent{}, &Company{}, &Asset{},
		&AutomationRule{}, &PatchStatus{}, &PatchProfile{}, &DeploymentRule{}, &Preference{},
	}
}
