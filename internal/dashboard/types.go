package dashboard

import (
	"encoding/json"
	"fmt"
)

type WidgetType string

const (
	TypeLine     WidgetType = "line"
	TypeBar      WidgetType = "bar"
	TypeDoughnut WidgetType = "doughnut"
	TypeStats    WidgetType = "stats"
	TypeTable    WidgetType = "table"
)

func (t WidgetType) Valid() bool {
	switch t {
	case TypeLine, TypeBar, TypeDoughnut, TypeStats, TypeTable:
		return true
	}
	return false
}

// Colors is a chart colour list. A single colour is written as a plain
// string, the form the charting library accepts for one colour per dataset.
type Colors []string

func (c Colors) MarshalJSON() ([]byte, error) {
	if len(c) == 1 {
		return json.Marshal(c[0])
	}
	return json.Marshal([]string(c))
}

func (c *Colors) UnmarshalJSON(b []byte) error {
	var one string
	if err := json.Unmarshal(b, &one); err == nil {
		*c = Colors{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return fmt.Errorf("colors: %w", err)
	}
	*c = many
	return nil
}

type Dataset struct {
	Label           string    `json:"label,omitempty"`
	Data            []float64 `json:"data"`
	BackgroundColor Colors    `json:"backgroundColor,omitempty"`
	BorderColor     Colors    `json:"borderColor,omitempty"`
	BorderWidth     int       `json:"borderWidth,omitempty"`
	Fill            bool      `json:"fill,omitempty"`
	HoverOffset     int       `json:"hoverOffset,omitempty"`
	Tension         float64   `json:"tension,omitempty"`
}

type ChartData struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// Empty reports whether the chart carries no labels and no datasets.
func (d ChartData) Empty() bool {
	return len(d.Labels) == 0 && len(d.Datasets) == 0
}

type LegendOptions struct {
	Display  *bool  `json:"display,omitempty"`
	Position string `json:"position,omitempty"` // top, bottom, left, right
}

type TitleOptions struct {
	Display *bool  `json:"display,omitempty"`
	Text    string `json:"text,omitempty"`
}

type PluginOptions struct {
	Legend *LegendOptions `json:"legend,omitempty"`
	Title  *TitleOptions  `json:"title,omitempty"`
}

type GridOptions struct {
	Display *bool `json:"display,omitempty"`
}

type AxisOptions struct {
	Display *bool        `json:"display,omitempty"`
	Grid    *GridOptions `json:"grid,omitempty"`
}

type ScaleOptions struct {
	X *AxisOptions `json:"x,omitempty"`
	Y *AxisOptions `json:"y,omitempty"`
}

type ChartOptions struct {
	Responsive          *bool          `json:"responsive,omitempty"`
	MaintainAspectRatio *bool          `json:"maintainAspectRatio,omitempty"`
	Plugins             *PluginOptions `json:"plugins,omitempty"`
	Scales              *ScaleOptions  `json:"scales,omitempty"`
}

// WidgetSettings is also the shape of a partial settings update: zero values
// leave the current setting untouched.
type WidgetSettings struct {
	ChartOptions    *ChartOptions `json:"chartOptions,omitempty"`
	RefreshInterval int           `json:"refreshInterval,omitempty"` // seconds
	Theme           string        `json:"theme,omitempty"`
	DataSourceID    string        `json:"dataSourceId,omitempty"`
	DisplayMode     string        `json:"displayMode,omitempty"` // compact, detailed
	Columns         []string      `json:"columns,omitempty"`
	IsSettingsOpen  *bool         `json:"isSettingsOpen,omitempty"`
}

// merge overlays the set fields of p onto s.
func (s WidgetSettings) merge(p WidgetSettings) WidgetSettings {
	if p.ChartOptions != nil {
		s.ChartOptions = p.ChartOptions
	}
	if p.RefreshInterval != 0 {
		s.RefreshInterval = p.RefreshInterval
	}
	if p.Theme != "" {
		s.Theme = p.Theme
	}
	if p.DataSourceID != "" {
		s.DataSourceID = p.DataSourceID
	}
	if p.DisplayMode != "" {
		s.DisplayMode = p.DisplayMode
	}
	if p.Columns != nil {
		s.Columns = p.Columns
	}
	if p.IsSettingsOpen != nil {
		s.IsSettingsOpen = p.IsSettingsOpen
	}
	return s
}

// LayoutItem is one grid rectangle, keyed by widget id in I.
type LayoutItem struct {
	I    string `json:"i"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
	W    int    `json:"w"`
	H    int    `json:"h"`
	MinW int    `json:"minW,omitempty"`
	MaxW int    `json:"maxW,omitempty"`
	MinH int    `json:"minH,omitempty"`
	MaxH int    `json:"maxH,omitempty"`
}

type Widget struct {
	ID       string         `json:"id"`
	Type     WidgetType     `json:"type"`
	Title    string         `json:"title"`
	Data     ChartData      `json:"data"`
	Layout   LayoutItem     `json:"layout"`
	Settings WidgetSettings `json:"settings"`
}

// Layouts holds one layout per breakpoint, the dashboard-layouts document.
type Layouts map[Breakpoint][]LayoutItem

// ---------- COPIES ----------

func (d ChartData) clone() ChartData {
	if d.Labels != nil {
		d.Labels = append([]string{}, d.Labels...)
	}
	if d.Datasets != nil {
		sets := make([]Dataset, len(d.Datasets))
		for i, ds := range d.Datasets {
			if ds.Data != nil {
				ds.Data = append([]float64{}, ds.Data...)
			}
			if ds.BackgroundColor != nil {
				ds.BackgroundColor = append(Colors{}, ds.BackgroundColor...)
			}
			if ds.BorderColor != nil {
				ds.BorderColor = append(Colors{}, ds.BorderColor...)
			}
			sets[i] = ds
		}
		d.Datasets = sets
	}
	return d
}

func (s WidgetSettings) clone() WidgetSettings {
	s.ChartOptions = s.ChartOptions.clone()
	if s.Columns != nil {
		s.Columns = append([]string{}, s.Columns...)
	}
	s.IsSettingsOpen = cloneBool(s.IsSettingsOpen)
	return s
}

func (o *ChartOptions) clone() *ChartOptions {
	if o == nil {
		return nil
	}
	c := *o
	c.Responsive = cloneBool(o.Responsive)
	c.MaintainAspectRatio = cloneBool(o.MaintainAspectRatio)
	if o.Plugins != nil {
		p := *o.Plugins
		if p.Legend != nil {
			l := *p.Legend
			l.Display = cloneBool(l.Display)
			p.Legend = &l
		}
		if p.Title != nil {
			t := *p.Title
			t.Display = cloneBool(t.Display)
			p.Title = &t
		}
		c.Plugins = &p
	}
	if o.Scales != nil {
		sc := ScaleOptions{X: o.Scales.X.clone(), Y: o.Scales.Y.clone()}
		c.Scales = &sc
	}
	return &c
}

func (a *AxisOptions) clone() *AxisOptions {
	if a == nil {
		return nil
	}
	c := AxisOptions{Display: cloneBool(a.Display)}
	if a.Grid != nil {
		c.Grid = &GridOptions{Display: cloneBool(a.Grid.Display)}
	}
	return &c
}

func cloneBool(b *bool) *bool {
	if b == nil {
		return nil
	}
	v := *b
	return &v
}
