package oid

import (
	"encoding/json"
	"os"
)

// System group objects polled from every SNMP-managed device.
var (
	SysDescr  = "1.3.6.1.2.1.1.1.0"
	SysUpTime = "1.3.6.1.2.1.1.3.0"
	SysName   = "1.3.6.1.2.1.1.5.0"
)

// Load overrides the OIDs from a JSON file. Keys that are missing or empty
// keep their current value.
func Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var cfg struct {
		SysDescr  string `json:"sys_descr"`
		SysUpTime string `json:"sys_uptime"`
		SysName   string `json:"sys_name"`
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return err
	}

	if cfg.SysDescr != "" {
		SysDescr = cfg.SysDescr
	}
	if cfg.SysUpTime != "" {
		SysUpTime = cfg.SysUpTime
	}
	if cfg.SysName != "" {
		SysName = cfg.SysName
	}
	return nil
}

// System returns the OIDs fetched when probing a device.
func System() []string {
	return []string{SysDescr, SysUpTime, SysName}
}
