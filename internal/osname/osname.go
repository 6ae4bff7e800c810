package osname

import (
	"regexp"
	"strings"
)

// OS families reported as a device's osType.
const (
	Windows = "windows"
	Linux   = "linux"
	Mac     = "mac"
)

type Rule struct {
	Regex   *regexp.Regexp
	Handler func(match []string) string
}

var Rules = []Rule{
	// "Windows 11", "Microsoft Windows Server 2022", "Hardware: ... Software: Windows Version 6.3"
	{
		regexp.MustCompile(`(?i)\bwindows\b`),
		func(m []string) string { return Windows },
	},
	// "Darwin Kernel Version 23.1.0", "macOS 14", "Mac OS X 10.15"
	{
		regexp.MustCompile(`(?i)\b(?:darwin|macos|mac\s*os(?:\s*x)?)\b`),
		func(m []string) string { return Mac },
	},
	// "Linux web01 5.15.0-91-generic", "Ubuntu 22.04", "Red Hat Enterprise Linux 9"
	{
		regexp.MustCompile(`(?i)\b(?:linux|ubuntu|debian|centos|fedora|red\s*hat|rhel|suse|alpine|rocky|alma)\b`),
		func(m []string) string { return Linux },
	},
}

// Normalize maps an OS name or SNMP sysDescr to windows, linux or mac.
// Unrecognised descriptions come back lower-cased and trimmed.
func Normalize(desc string) string {
	for _, rule := range Rules {
		if match := rule.Regex.FindStringSubmatch(desc); match != nil {
			return rule.Handler(match)
		}
	}
	return strings.ToLower(strings.TrimSpace(desc))
}
