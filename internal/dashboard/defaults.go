package dashboard

func boolPtr(b bool) *bool { return &b }

// DefaultData returns a fresh copy of the sample dataset a new widget of type
// t starts with. Stats and table widgets start empty.
func DefaultData(t WidgetType) ChartData {
	switch t {
	case TypeBar:
		return ChartData{
			Labels: []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun"},
			Datasets: []Dataset{{
				Label:           "Devices",
				Data:            []float64{65, 59, 80, 81, 56, 55},
				BackgroundColor: Colors{"#818cf8"},
			}},
		}
	case TypeLine:
		return ChartData{
			Labels: []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"},
			Datasets: []Dataset{{
				Label:       "Active Alerts",
				Data:        []float64{12, 19, 3, 5, 2, 3, 7},
				BorderColor: Colors{"#6366f1"},
				Tension:     0.4,
			}},
		}
	case TypeDoughnut:
		return ChartData{
			Labels: []string{"Online", "Offline", "Maintenance"},
			Datasets: []Dataset{{
				Data:            []float64{300, 50, 100},
				BackgroundColor: Colors{"#22c55e", "#ef4444", "#f59e0b"},
			}},
		}
	default:
		return ChartData{Labels: []string{}, Datasets: []Dataset{}}
	}
}

// DefaultOptions returns the chart options a new widget of type t starts with.
func DefaultOptions(t WidgetType) *ChartOptions {
	position := "top"
	if t == TypeDoughnut {
		position = "bottom"
	}
	return &ChartOptions{
		Responsive: boolPtr(true),
		Plugins:    &PluginOptions{Legend: &LegendOptions{Position: position}},
	}
}

// Settings defaults backfilled into widgets saved by older consoles.
const (
	DefaultRefreshInterval = 60
	DefaultTheme           = "default"
	DefaultDisplayMode     = "detailed"
)

type Theme struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Colors     []string `json:"colors"`
	Background string   `json:"background,omitempty"`
	GridColor  string   `json:"gridColor,omitempty"`
	TextColor  string   `json:"textColor,omitempty"`
}

var themes = []Theme{
	{ID: "default", Name: "Default", Colors: []string{"#6366f1", "#10b981", "#f59e0b", "#ef4444", "#8b5cf6", "#ec4899"}, Background: "transparent", GridColor: "#e5e7eb", TextColor: "#374151"},
	{ID: "corporate", Name: "Corporate", Colors: []string{"#0369a1", "#0891b2", "#0e7490", "#155e75", "#1e40af", "#1d4ed8"}, Background: "transparent", GridColor: "#e5e7eb", TextColor: "#1f2937"},
	{ID: "vibrant", Name: "Vibrant", Colors: []string{"#f43f5e", "#8b5cf6", "#3b82f6", "#10b981", "#f59e0b", "#ef4444"}, Background: "transparent", GridColor: "#d1d5db", TextColor: "#111827"},
	{ID: "pastel", Name: "Pastel", Colors: []string{"#a78bfa", "#93c5fd", "#6ee7b7", "#fcd34d", "#fca5a5", "#fdba74"}, Background: "transparent", GridColor: "#e5e7eb", TextColor: "#374151"},
	{ID: "monochrome", Name: "Monochrome", Colors: []string{"#1f2937", "#374151", "#4b5563", "#6b7280", "#9ca3af", "#d1d5db"}, Background: "transparent", GridColor: "#e5e7eb", TextColor: "#111827"},
}

// Themes lists the chart themes a widget can select.
func Themes() []Theme {
	out := make([]Theme, len(themes))
	copy(out, themes)
	return out
}

// ThemeExists reports whether id names a known theme.
func ThemeExists(id string) bool {
	for _, t := range themes {
		if t.ID == id {
			return true
		}
	}
	return false
}

// TemplateWidget is a widget definition without id or layout.
type TemplateWidget struct {
	Type     WidgetType     `json:"type"`
	Title    string         `json:"title"`
	Data     ChartData      `json:"data"`
	Settings WidgetSettings `json:"settings"`
}

type Template struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Thumbnail   string           `json:"thumbnail"`
	Widgets     []TemplateWidget `json:"widgets"`
}

func legendAt(position string) *ChartOptions {
	return &ChartOptions{Plugins: &PluginOptions{Legend: &LegendOptions{Position: position}}}
}

// Templates builds the predefined dashboards.
func Templates() []Template {
	white := func(n int) Colors {
		c := make(Colors, n)
		for i := range c {
			c[i] = "#fff"
		}
		return c
	}

	return []Template{
		{
			ID:          "device-health",
			Name:        "Device Health",
			Description: "Monitor your device status, uptime, and resource utilization",
			Thumbnail:   "/templates/device-health.png",
			Widgets: []TemplateWidget{
				{
					Type:  TypeDoughnut,
					Title: "Device Status Overview",
					Data: ChartData{
						Labels: []string{"Online", "Offline", "Maintenance"},
						Datasets: []Dataset{{
							Data: []float64{85, 10, 5}, BackgroundColor: Colors{"#22c55e", "#ef4444", "#f59e0b"},
							BorderColor: white(3), BorderWidth: 2, HoverOffset: 6,
						}},
					},
					Settings: WidgetSettings{ChartOptions: legendAt("bottom"), RefreshInterval: 300},
				},
				{
					Type:  TypeLine,
					Title: "System Uptime Trends",
					Data: ChartData{
						Labels: []string{"Jun 26", "Jun 27", "Jun 28", "Jun 29", "Jun 30", "Jul 1"},
						Datasets: []Dataset{{
							Label: "Average Uptime (%)", Data: []float64{99.2, 98.7, 99.5, 99.8, 99.1, 99.6},
							BorderColor: Colors{"#6366f1"}, BackgroundColor: Colors{"rgba(99, 102, 241, 0.1)"}, Fill: true, Tension: 0.4,
						}},
					},
					Settings: WidgetSettings{RefreshInterval: 300},
				},
				{
					Type:  TypeBar,
					Title: "Resource Utilization",
					Data: ChartData{
						Labels: []string{"Server 1", "Server 2", "Server 3", "Server 4"},
						Datasets: []Dataset{
							{Label: "CPU (%)", Data: []float64{65, 48, 72, 31}, BackgroundColor: Colors{"#a5b4fc"}},
							{Label: "Memory (%)", Data: []float64{72, 55, 60, 42}, BackgroundColor: Colors{"#818cf8"}},
							{Label: "Disk (%)", Data: []float64{45, 38, 62, 53}, BackgroundColor: Colors{"#6366f1"}},
						},
					},
					Settings: WidgetSettings{RefreshInterval: 60, DataSourceID: "mock-system-metrics"},
				},
			},
		},
		{
			ID:          "security-monitoring",
			Name:        "Security Monitoring",
			Description: "Track security alerts, events, and potential threats",
			Thumbnail:   "/templates/security-monitoring.png",
			Widgets: []TemplateWidget{
				{
					Type:  TypeLine,
					Title: "Security Alerts Trend",
					Data: ChartData{
						Labels: []string{"Jun 26", "Jun 27", "Jun 28", "Jun 29", "Jun 30", "Jul 1"},
						Datasets: []Dataset{
							{Label: "Critical Alerts", Data: []float64{2, 5, 1, 0, 3, 4}, BorderColor: Colors{"#ef4444"}, BackgroundColor: Colors{"rgba(239, 68, 68, 0.1)"}, Fill: true, Tension: 0.4},
							{Label: "Warning Alerts", Data: []float64{8, 12, 6, 5, 7, 9}, BorderColor: Colors{"#f59e0b"}, BackgroundColor: Colors{"rgba(245, 158, 11, 0.1)"}, Fill: true, Tension: 0.4},
						},
					},
					Settings: WidgetSettings{RefreshInterval: 60},
				},
				{
					Type:  TypeDoughnut,
					Title: "Alert Category Distribution",
					Data: ChartData{
						Labels: []string{"Authentication", "Malware", "Network", "Policy Violation", "Other"},
						Datasets: []Dataset{{
							Data: []float64{35, 20, 25, 15, 5}, BackgroundColor: Colors{"#ef4444", "#f59e0b", "#6366f1", "#10b981", "#8b5cf6"},
							BorderColor: white(5), BorderWidth: 2, HoverOffset: 6,
						}},
					},
					Settings: WidgetSettings{ChartOptions: legendAt("right"), RefreshInterval: 300},
				},
				{
					Type:     TypeTable,
					Title:    "Recent Security Events",
					Data:     DefaultData(TypeTable),
					Settings: WidgetSettings{RefreshInterval: 60},
				},
			},
		},
		{
			ID:          "performance-monitoring",
			Name:        "Performance Monitoring",
			Description: "Monitor network, application, and system performance metrics",
			Thumbnail:   "/templates/performance-monitoring.png",
			Widgets: []TemplateWidget{
				{
					Type:  TypeLine,
					Title: "Network Throughput",
					Data: ChartData{
						Labels: []string{"9:00", "10:00", "11:00", "12:00", "13:00", "14:00"},
						Datasets: []Dataset{
							{Label: "Inbound (Mbps)", Data: []float64{125, 142, 164, 187, 156, 172}, BorderColor: Colors{"#6366f1"}, BackgroundColor: Colors{"rgba(99, 102, 241, 0.1)"}, Fill: true, Tension: 0.4},
							{Label: "Outbound (Mbps)", Data: []float64{95, 102, 124, 142, 113, 132}, BorderColor: Colors{"#10b981"}, BackgroundColor: Colors{"rgba(16, 185, 129, 0.1)"}, Fill: true, Tension: 0.4},
						},
					},
					Settings: WidgetSettings{RefreshInterval: 60, DataSourceID: "mock-network-metrics"},
				},
				{
					Type:  TypeBar,
					Title: "Average Response Time",
					Data: ChartData{
						Labels:   []string{"API", "Database", "Web Server", "Authentication"},
						Datasets: []Dataset{{Label: "Response Time (ms)", Data: []float64{85, 120, 45, 65}, BackgroundColor: Colors{"#6366f1"}}},
					},
					Settings: WidgetSettings{RefreshInterval: 60},
				},
				{
					Type:     TypeStats,
					Title:    "System Performance Overview",
					Data:     DefaultData(TypeStats),
					Settings: WidgetSettings{RefreshInterval: 60},
				},
			},
		},
	}
}

// TemplateByID finds a predefined dashboard.
func TemplateByID(id string) (Template, bool) {
	for _, t := range Templates() {
		if t.ID == id {
			return t, true
		}
	}
	return Template{}, false
}
