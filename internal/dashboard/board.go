package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"vibermm/internal/store"
	"vibermm/internal/telemetry"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
)

var (
	ErrNotFound          = errors.New("widget not found")
	ErrInvalidType       = errors.New("invalid widget type")
	ErrInvalidBreakpoint = errors.New("invalid breakpoint")
	ErrUnknownPreset     = errors.New("unknown layout preset")
	ErrUnknownTemplate   = errors.New("unknown dashboard template")
	ErrUnknownTheme      = errors.New("unknown chart theme")
)

const stateVersion = 2

// State is the vibermm-dashboard-state document.
type State struct {
	Version int      `json:"version"`
	Widgets []Widget `json:"widgets"`
}

// Board is the dashboard widget grid. All methods are safe for concurrent
// use. Layout commits and saves are debounced; Flush forces them.
type Board struct {
	mu         sync.Mutex
	store      *store.Store
	log        *zap.Logger
	now        func() time.Time
	widgets    []Widget
	layouts    Layouts
	breakpoint Breakpoint
	lastID     int64

	// last committed layout, to drop repeated callbacks
	lastLayout string
	pending    []LayoutItem
	pendingBP  Breakpoint

	commit      *debouncer
	saveState   *debouncer
	saveLayouts *debouncer
}

func NewBoard(st *store.Store, log *zap.Logger) *Board {
	b := &Board{
		store:      st,
		log:        log,
		now:        time.Now,
		layouts:    Layouts{},
		breakpoint: BreakpointLG,
	}
	b.commit = newDebouncer(CommitDelay, b.commitPending)
	b.saveState = newDebouncer(SaveDelay, b.persistState)
	b.saveLayouts = newDebouncer(SaveDelay, b.persistLayouts)
	return b
}

// Load restores the grid from the store. Unreadable state is logged and the
// grid starts empty; widgets saved by older consoles get their missing
// settings backfilled.
func (b *Board) Load(ctx context.Context) {
	var state State
	store.LoadOrDefault(ctx, b.store, store.KeyDashboardState, &state, State{})

	var layouts Layouts
	store.LoadOrDefault(ctx, b.store, store.KeyLayouts, &layouts, Layouts{})
	if layouts == nil {
		layouts = Layouts{}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.widgets = b.migrate(state.Widgets)
	b.layouts = layouts
	if items, ok := layouts[b.breakpoint]; ok {
		b.mergeLayout(items)
		b.lastLayout = layoutKey(items)
	}
	telemetry.SetWidgetCount(len(b.widgets))

	b.log.Info("dashboard loaded",
		zap.Int("widgets", len(b.widgets)),
		zap.Int("state_version", state.Version),
	)
}

func (b *Board) migrate(in []Widget) []Widget {
	out := make([]Widget, 0, len(in))
	for _, w := range in {
		if !w.Type.Valid() {
			b.log.Warn("dropping widget with unknown type", zap.String("widget_id", w.ID), zap.String("type", string(w.Type)))
			continue
		}
		if w.ID == "" {
			w.ID = b.nextID()
		}
		if w.Settings.RefreshInterval <= 0 {
			w.Settings.RefreshInterval = DefaultRefreshInterval
		}
		if w.Settings.Theme == "" {
			w.Settings.Theme = DefaultTheme
		}
		if w.Settings.DisplayMode == "" {
			w.Settings.DisplayMode = DefaultDisplayMode
		}
		if w.Settings.ChartOptions == nil {
			w.Settings.ChartOptions = DefaultOptions(w.Type)
		}
		if w.Data.Labels == nil && w.Data.Datasets == nil {
			w.Data = DefaultData(w.Type)
		}
		if w.Layout.W == 0 || w.Layout.H == 0 {
			w.Layout = placement(w.ID, len(out))
		} else {
			w.Layout = constrain(w.Layout)
			w.Layout.I = w.ID
		}
		out = append(out, w)
	}
	return out
}

func (b *Board) nextID() string {
	id := b.now().UnixMilli()
	if id <= b.lastID {
		id = b.lastID + 1
	}
	b.lastID = id
	return fmt.Sprintf("widget-%d", id)
}

// Widgets returns a copy of the grid's widgets in insertion order.
func (b *Board) Widgets() []Widget {
	b.mu.Lock()
	defer b.mu.Unlock()
	return cloneWidgets(b.widgets)
}

func (b *Board) Widget(id string) (Widget, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.indexOf(id)
	if i < 0 {
		return Widget{}, ErrNotFound
	}
	return cloneWidgets(b.widgets[i : i+1])[0], nil
}

func (b *Board) indexOf(id string) int {
	for i, w := range b.widgets {
		if w.ID == id {
			return i
		}
	}
	return -1
}

// AddWidget appends a widget placed after the existing ones. Empty data is
// replaced by the default dataset of the type.
func (b *Board) AddWidget(t WidgetType, title string, data ChartData) (Widget, error) {
	return b.addWidget(t, title, data, WidgetSettings{})
}

func (b *Board) addWidget(t WidgetType, title string, data ChartData, settings WidgetSettings) (Widget, error) {
	if !t.Valid() {
		return Widget{}, fmt.Errorf("%w: %q", ErrInvalidType, t)
	}

	b.mu.Lock()
	w := b.addLocked(t, title, data, settings)
	n := len(b.widgets)
	b.mu.Unlock()

	telemetry.SetWidgetCount(n)
	b.saveState.trigger()
	return w, nil
}

func (b *Board) addLocked(t WidgetType, title string, data ChartData, settings WidgetSettings) Widget {
	if data.Empty() {
		data = DefaultData(t)
	}
	defaults := WidgetSettings{
		ChartOptions:    DefaultOptions(t),
		RefreshInterval: DefaultRefreshInterval,
		Theme:           DefaultTheme,
		DisplayMode:     DefaultDisplayMode,
	}

	id := b.nextID()
	w := Widget{
		ID:       id,
		Type:     t,
		Title:    title,
		Data:     data,
		Layout:   placement(id, len(b.widgets)),
		Settings: defaults.merge(settings),
	}
	b.widgets = append(b.widgets, w)
	return cloneWidgets([]Widget{w})[0]
}

// RemoveWidget drops a widget from the grid and from every breakpoint of
// the saved layouts.
func (b *Board) RemoveWidget(ctx context.Context, id string) error {
	b.mu.Lock()
	i := b.indexOf(id)
	if i < 0 {
		b.mu.Unlock()
		return ErrNotFound
	}
	b.widgets = append(b.widgets[:i:i], b.widgets[i+1:]...)
	for bp, items := range b.layouts {
		b.layouts[bp] = withoutItem(items, id)
	}
	b.pending = withoutItem(b.pending, id)
	layouts := cloneLayouts(b.layouts)
	state := State{Version: stateVersion, Widgets: cloneWidgets(b.widgets)}
	n := len(b.widgets)
	b.mu.Unlock()

	telemetry.SetWidgetCount(n)

	b.saveLayouts.stop()
	b.saveState.stop()
	if err := b.store.Set(ctx, store.KeyLayouts, layouts); err != nil {
		return err
	}
	return b.store.Set(ctx, store.KeyDashboardState, state)
}

func withoutItem(items []LayoutItem, id string) []LayoutItem {
	if items == nil {
		return nil
	}
	out := items[:0:0]
	for _, it := range items {
		if it.I != id {
			out = append(out, it)
		}
	}
	return out
}

// UpdateWidgetLayout merges rectangles into widgets by id. Sizes are clamped
// to the widget limits; unknown ids are ignored.
func (b *Board) UpdateWidgetLayout(items []LayoutItem) {
	b.mu.Lock()
	b.mergeLayout(items)
	b.syncLayoutLocked()
	b.mu.Unlock()
}

func (b *Board) mergeLayout(items []LayoutItem) {
	byID := make(map[string]LayoutItem, len(items))
	for _, it := range items {
		byID[it.I] = it
	}
	for i := range b.widgets {
		if it, ok := byID[b.widgets[i].ID]; ok {
			b.widgets[i].Layout = constrain(it)
		}
	}
}

// syncLayoutLocked records the widget rectangles as the layout of the active
// breakpoint, so Load does not restore an older one over them.
func (b *Board) syncLayoutLocked() {
	items := make([]LayoutItem, len(b.widgets))
	for i, w := range b.widgets {
		items[i] = w.Layout
	}
	b.layouts[b.breakpoint] = items
	b.lastLayout = layoutKey(items)

	b.saveLayouts.trigger()
	b.saveState.trigger()
}

// UpdateWidgetSettings shallow-merges the set fields of partial.
func (b *Board) UpdateWidgetSettings(id string, partial WidgetSettings) (Widget, error) {
	if partial.Theme != "" && !ThemeExists(partial.Theme) {
		return Widget{}, fmt.Errorf("%w: %q", ErrUnknownTheme, partial.Theme)
	}

	b.mu.Lock()
	i := b.indexOf(id)
	if i < 0 {
		b.mu.Unlock()
		return Widget{}, ErrNotFound
	}
	b.widgets[i].Settings = b.widgets[i].Settings.merge(partial)
	w := cloneWidgets(b.widgets[i : i+1])[0]
	b.mu.Unlock()

	b.saveState.trigger()
	return w, nil
}

// ApplyLayoutChange takes a layout reported by the grid. It is ignored while
// a widget is being dragged or when it matches the last committed layout;
// otherwise it is normalised and committed after CommitDelay, and the
// per-breakpoint layouts are saved SaveDelay after that. It reports whether
// a commit was scheduled.
func (b *Board) ApplyLayoutChange(bp Breakpoint, items []LayoutItem, dragging bool) (bool, error) {
	if !bp.Valid() {
		return false, fmt.Errorf("%w: %q", ErrInvalidBreakpoint, bp)
	}
	if dragging {
		return false, nil
	}

	normalized := Normalize(items, bp)

	b.mu.Lock()
	if layoutKey(normalized) == b.lastLayout {
		b.mu.Unlock()
		return false, nil
	}
	b.pending = normalized
	b.pendingBP = bp
	b.mu.Unlock()

	b.commit.trigger()
	return true, nil
}

func (b *Board) commitPending() {
	b.mu.Lock()
	if b.pending == nil {
		b.mu.Unlock()
		return
	}
	items := make([]LayoutItem, 0, len(b.pending))
	for _, it := range b.pending {
		if b.indexOf(it.I) >= 0 {
			items = append(items, it)
		}
	}
	bp := b.pendingBP
	b.pending = nil

	b.mergeLayout(items)
	b.layouts[bp] = items
	b.lastLayout = layoutKey(items)

	// scheduled before unlocking so a Flush that sees the commit also sees the saves
	b.saveLayouts.trigger()
	b.saveState.trigger()
	b.mu.Unlock()
}

// ChangeBreakpoint switches the active breakpoint and regenerates every
// widget's rectangle to fit its columns.
func (b *Board) ChangeBreakpoint(bp Breakpoint) ([]LayoutItem, error) {
	if !bp.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBreakpoint, bp)
	}

	b.mu.Lock()
	b.breakpoint = bp
	generated := GenerateLayout(b.widgets, bp)
	for i := range b.widgets {
		b.widgets[i].Layout = generated[i]
	}
	b.layouts[bp] = generated
	b.lastLayout = layoutKey(generated)
	out := append([]LayoutItem(nil), generated...)
	b.mu.Unlock()

	b.saveLayouts.trigger()
	b.saveState.trigger()
	return out, nil
}

func (b *Board) Breakpoint() Breakpoint {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.breakpoint
}

// Layouts generates the layout of every breakpoint from the current widgets.
func (b *Board) Layouts() Layouts {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(Layouts, len(Breakpoints))
	for _, bp := range Breakpoints {
		out[bp] = GenerateLayout(b.widgets, bp)
	}
	return out
}

// SavedLayouts returns the per-breakpoint layouts as committed by the grid.
func (b *Board) SavedLayouts() Layouts {
	b.mu.Lock()
	defer b.mu.Unlock()
	return cloneLayouts(b.layouts)
}

// SaveLayout stores the current rectangles under saved-layout.
func (b *Board) SaveLayout(ctx context.Context) error {
	b.mu.Lock()
	items := make([]LayoutItem, len(b.widgets))
	for i, w := range b.widgets {
		items[i] = w.Layout
	}
	b.mu.Unlock()
	return b.store.Set(ctx, store.KeySavedLayout, items)
}

// LoadLayout applies the layout stored by SaveLayout. A missing or
// unreadable saved layout leaves the grid unchanged.
func (b *Board) LoadLayout(ctx context.Context) bool {
	var items []LayoutItem
	err := b.store.Load(ctx, store.KeySavedLayout, &items)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			b.log.Error("error loading layout", zap.Error(err))
		}
		return false
	}
	b.UpdateWidgetLayout(items)
	return true
}

// ApplyPreset arranges the widgets in one of the Presets grids.
func (b *Board) ApplyPreset(name string) ([]LayoutItem, error) {
	cols, ok := Presets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}

	b.mu.Lock()
	items := presetLayout(b.widgets, cols)
	b.mergeLayout(items)
	b.syncLayoutLocked()
	b.mu.Unlock()

	return items, nil
}

// ApplyTemplate replaces every widget with the widgets of a template.
func (b *Board) ApplyTemplate(ctx context.Context, id string) ([]Widget, error) {
	tpl, ok := TemplateByID(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTemplate, id)
	}

	b.mu.Lock()
	b.widgets = nil
	b.layouts = Layouts{}
	b.pending = nil
	b.lastLayout = ""
	for _, tw := range tpl.Widgets {
		b.addLocked(tw.Type, tw.Title, tw.Data, tw.Settings)
	}
	out := cloneWidgets(b.widgets)
	layouts := cloneLayouts(b.layouts)
	state := State{Version: stateVersion, Widgets: cloneWidgets(b.widgets)}
	b.mu.Unlock()

	telemetry.SetWidgetCount(len(out))
	b.commit.stop()
	b.saveLayouts.stop()
	b.saveState.stop()
	// both keys are written even if the first fails
	var result *multierror.Error
	if err := b.store.Set(ctx, store.KeyLayouts, layouts); err != nil {
		result = multierror.Append(result, err)
	}
	if err := b.store.Set(ctx, store.KeyDashboardState, state); err != nil {
		result = multierror.Append(result, err)
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	return out, nil
}

// Flush runs any pending commit and saves immediately.
func (b *Board) Flush() {
	b.commit.flush()
	b.saveLayouts.flush()
	b.saveState.flush()
}

func (b *Board) persistState() {
	b.mu.Lock()
	state := State{Version: stateVersion, Widgets: cloneWidgets(b.widgets)}
	b.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := b.store.Set(ctx, store.KeyDashboardState, state); err != nil {
		b.log.Error("failed to save dashboard state", zap.Error(err))
	}
}

func (b *Board) persistLayouts() {
	b.mu.Lock()
	layouts := cloneLayouts(b.layouts)
	b.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := b.store.Set(ctx, store.KeyLayouts, layouts); err != nil {
		b.log.Error("failed to save dashboard layouts", zap.Error(err))
	}
}

func layoutKey(items []LayoutItem) string {
	raw, _ := json.Marshal(items)
	return string(raw)
}

func cloneWidgets(in []Widget) []Widget {
	out := make([]Widget, len(in))
	for i, w := range in {
		w.Data = w.Data.clone()
		w.Settings = w.Settings.clone()
		out[i] = w
	}
	return out
}

func cloneLayouts(in Layouts) Layouts {
	out := make(Layouts, len(in))
	for bp, items := range in {
		out[bp] = append([]LayoutItem(nil), items...)
	}
	return out
}
