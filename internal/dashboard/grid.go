package dashboard

import "time"

type Breakpoint string

const (
	BreakpointLG  Breakpoint = "lg"
	BreakpointMD  Breakpoint = "md"
	BreakpointSM  Breakpoint = "sm"
	BreakpointXS  Breakpoint = "xs"
	BreakpointXXS Breakpoint = "xxs"
)

// Breakpoints in descending width order.
var Breakpoints = []Breakpoint{BreakpointLG, BreakpointMD, BreakpointSM, BreakpointXS, BreakpointXXS}

var breakpointWidths = map[Breakpoint]int{
	BreakpointLG:  1200,
	BreakpointMD:  996,
	BreakpointSM:  768,
	BreakpointXS:  480,
	BreakpointXXS: 0,
}

var breakpointCols = map[Breakpoint]int{
	BreakpointLG:  12,
	BreakpointMD:  10,
	BreakpointSM:  6,
	BreakpointXS:  4,
	BreakpointXXS: 2,
}

// Widget size constraints, in grid units.
const (
	MinW = 2
	MaxW = 12
	MinH = 2
	MaxH = 6

	DefaultW = 3
	DefaultH = 2
)

const (
	CommitDelay = 50 * time.Millisecond
	SaveDelay   = 500 * time.Millisecond
)

func (b Breakpoint) Valid() bool {
	_, ok := breakpointCols[b]
	return ok
}

// Cols is the column count of the breakpoint; unknown names get the lg grid.
func (b Breakpoint) Cols() int {
	if c, ok := breakpointCols[b]; ok {
		return c
	}
	return breakpointCols[BreakpointLG]
}

// BreakpointForWidth picks the widest breakpoint whose threshold fits width.
func BreakpointForWidth(width int) Breakpoint {
	for _, bp := range Breakpoints {
		if width >= breakpointWidths[bp] {
			return bp
		}
	}
	return BreakpointLG
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// placement is the initial rectangle of the n-th widget on the lg grid.
func placement(id string, n int) LayoutItem {
	cols := BreakpointLG.Cols()
	return LayoutItem{
		I:    id,
		X:    (n * DefaultW) % cols,
		Y:    (n * DefaultW / cols) * MinH,
		W:    DefaultW,
		H:    DefaultH,
		MinW: MinW,
		MaxW: MaxW,
		MinH: MinH,
		MaxH: MaxH,
	}
}

// constrain clamps a rectangle coming from the grid to the widget size limits.
func constrain(item LayoutItem) LayoutItem {
	item.W = clamp(item.W, MinW, MaxW)
	item.H = clamp(item.H, MinH, MaxH)
	if item.X < 0 {
		item.X = 0
	}
	if item.Y < 0 {
		item.Y = 0
	}
	item.MinW, item.MaxW, item.MinH, item.MaxH = MinW, MaxW, MinH, MaxH
	return item
}

// Normalize fits a grid layout inside the column count of bp.
func Normalize(items []LayoutItem, bp Breakpoint) []LayoutItem {
	cols := bp.Cols()
	maxW := min(cols, MaxW)
	out := make([]LayoutItem, len(items))
	for i, item := range items {
		item.W = clamp(item.W, MinW, cols)
		item.H = clamp(item.H, MinH, MaxH)
		item.X = clamp(item.X, 0, max(cols-item.W, 0))
		if item.Y < 0 {
			item.Y = 0
		}
		item.MinW, item.MaxW, item.MinH, item.MaxH = MinW, maxW, MinH, MaxH
		out[i] = item
	}
	return out
}

// GenerateLayout derives the layout of widgets for bp, narrowing widths to
// the available columns and keeping every widget inside the grid.
func GenerateLayout(widgets []Widget, bp Breakpoint) []LayoutItem {
	cols := bp.Cols()
	maxW := min(cols, MaxW)
	out := make([]LayoutItem, 0, len(widgets))
	for i, w := range widgets {
		width := w.Layout.W
		if width == 0 {
			width = DefaultW
		}
		width = min(width, maxW)

		height := w.Layout.H
		if height == 0 {
			height = MinH
		}

		x, y := w.Layout.X, w.Layout.Y
		if w.Layout.W == 0 {
			x = (i * width) % cols
			y = (i * width / cols) * MinH
		}

		out = append(out, LayoutItem{
			I:    w.ID,
			X:    clamp(x, 0, max(cols-width, 0)),
			Y:    max(y, 0),
			W:    width,
			H:    height,
			MinW: MinW,
			MaxW: maxW,
			MinH: MinH,
			MaxH: MaxH,
		})
	}
	return out
}

// Presets arrange every widget in an even grid of the given column count.
var Presets = map[string]int{
	"2x2": 2,
	"3x2": 3,
	"4x2": 4,
}

func presetLayout(widgets []Widget, cols int) []LayoutItem {
	full := BreakpointLG.Cols()
	w := full / cols
	out := make([]LayoutItem, len(widgets))
	for i, widget := range widgets {
		item := widget.Layout
		item.I = widget.ID
		item.W = w
		item.H = 2
		item.X = (i % cols) * w
		item.Y = (i / cols) * 2
		out[i] = item
	}
	return out
}
