package dashboard

import (
	"context"
	"testing"
	"time"

	"vibermm/internal/db/dbtest"
	"vibermm/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestBoard(t *testing.T) (*Board, *store.Store) {
	t.Helper()
	st := store.New(dbtest.New(t), zap.NewNop())
	b := NewBoard(st, zap.NewNop())
	b.Load(context.Background())
	t.Cleanup(b.Flush)
	return b, st
}

func TestAddWidgetUsesDefaultDataAndLimits(t *testing.T) {
	for _, typ := range []WidgetType{TypeLine, TypeBar, TypeDoughnut, TypeStats, TypeTable} {
		t.Run(string(typ), func(t *testing.T) {
			b, _ := newTestBoard(t)

			w, err := b.AddWidget(typ, "New widget", ChartData{})
			require.NoError(t, err)

			assert.Equal(t, DefaultData(typ), w.Data)
			assert.Equal(t, w.ID, w.Layout.I)
			assert.GreaterOrEqual(t, w.Layout.W, MinW)
			assert.LessOrEqual(t, w.Layout.W, min(MaxW, b.Breakpoint().Cols()))
			assert.GreaterOrEqual(t, w.Layout.H, MinH)
			assert.LessOrEqual(t, w.Layout.H, MaxH)
			assert.Equal(t, DefaultRefreshInterval, w.Settings.RefreshInterval)
			assert.Equal(t, DefaultTheme, w.Settings.Theme)
		})
	}
}

func TestAddWidgetPlacement(t *testing.T) {
	b, _ := newTestBoard(t)

	first, err := b.AddWidget(TypeBar, "Devices", ChartData{})
	require.NoError(t, err)
	second, err := b.AddWidget(TypeBar, "Devices", ChartData{})
	require.NoError(t, err)

	assert.Equal(t, 0, first.Layout.X)
	assert.Equal(t, 0, first.Layout.Y)
	assert.Equal(t, 3, second.Layout.X)
	assert.Equal(t, 0, second.Layout.Y)
	assert.NotEqual(t, first.ID, second.ID)

	// the fifth widget wraps onto the next row
	for i := 0; i < 2; i++ {
		_, err := b.AddWidget(TypeLine, "Alerts", ChartData{})
		require.NoError(t, err)
	}
	fifth, err := b.AddWidget(TypeLine, "Alerts", ChartData{})
	require.NoError(t, err)
	assert.Equal(t, 0, fifth.Layout.X)
	assert.Equal(t, MinH, fifth.Layout.Y)
}

func TestAddWidgetKeepsProvidedData(t *testing.T) {
	b, _ := newTestBoard(t)
	data := ChartData{Labels: []string{"a"}, Datasets: []Dataset{{Label: "x", Data: []float64{1}}}}

	w, err := b.AddWidget(TypeBar, "Custom", data)
	require.NoError(t, err)
	assert.Equal(t, data, w.Data)
}

func TestAddWidgetRejectsUnknownType(t *testing.T) {
	b, _ := newTestBoard(t)
	_, err := b.AddWidget("pie", "Pie", ChartData{})
	assert.ErrorIs(t, err, ErrInvalidType)
}

func TestRemoveWidgetClearsPersistedLayouts(t *testing.T) {
	ctx := context.Background()
	b, st := newTestBoard(t)

	keep, err := b.AddWidget(TypeBar, "keep", ChartData{})
	require.NoError(t, err)
	drop, err := b.AddWidget(TypeLine, "drop", ChartData{})
	require.NoError(t, err)

	_, err = b.ChangeBreakpoint(BreakpointMD)
	require.NoError(t, err)
	_, err = b.ChangeBreakpoint(BreakpointLG)
	require.NoError(t, err)
	b.Flush()

	var saved Layouts
	require.NoError(t, st.Load(ctx, store.KeyLayouts, &saved))
	require.Len(t, saved[BreakpointMD], 2)

	require.NoError(t, b.RemoveWidget(ctx, drop.ID))

	widgets := b.Widgets()
	require.Len(t, widgets, 1)
	assert.Equal(t, keep.ID, widgets[0].ID)

	saved = nil
	require.NoError(t, st.Load(ctx, store.KeyLayouts, &saved))
	for bp, items := range saved {
		for _, it := range items {
			assert.NotEqual(t, drop.ID, it.I, "breakpoint %s", bp)
		}
	}

	assert.ErrorIs(t, b.RemoveWidget(ctx, drop.ID), ErrNotFound)
}

func TestUpdateWidgetLayoutClamps(t *testing.T) {
	b, _ := newTestBoard(t)
	w, err := b.AddWidget(TypeBar, "Devices", ChartData{})
	require.NoError(t, err)

	b.UpdateWidgetLayout([]LayoutItem{
		{I: w.ID, X: 4, Y: 2, W: 40, H: 1},
		{I: "ghost", X: 1, Y: 1, W: 3, H: 3},
	})

	got, err := b.Widget(w.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Layout.X)
	assert.Equal(t, 2, got.Layout.Y)
	assert.Equal(t, MaxW, got.Layout.W)
	assert.Equal(t, MinH, got.Layout.H)
	assert.Len(t, b.Widgets(), 1)
}

func TestUpdateWidgetSettingsMerges(t *testing.T) {
	b, _ := newTestBoard(t)
	w, err := b.AddWidget(TypeLine, "Alerts", ChartData{})
	require.NoError(t, err)

	got, err := b.UpdateWidgetSettings(w.ID, WidgetSettings{RefreshInterval: 300, DataSourceID: "mock-system-metrics"})
	require.NoError(t, err)
	assert.Equal(t, 300, got.Settings.RefreshInterval)
	assert.Equal(t, "mock-system-metrics", got.Settings.DataSourceID)
	assert.Equal(t, DefaultTheme, got.Settings.Theme)

	got, err = b.UpdateWidgetSettings(w.ID, WidgetSettings{Theme: "pastel"})
	require.NoError(t, err)
	assert.Equal(t, "pastel", got.Settings.Theme)
	assert.Equal(t, 300, got.Settings.RefreshInterval)

	_, err = b.UpdateWidgetSettings(w.ID, WidgetSettings{Theme: "neon"})
	assert.ErrorIs(t, err, ErrUnknownTheme)

	_, err = b.UpdateWidgetSettings("missing", WidgetSettings{Theme: "pastel"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestApplyLayoutChange(t *testing.T) {
	ctx := context.Background()
	b, st := newTestBoard(t)
	w, err := b.AddWidget(TypeBar, "Devices", ChartData{})
	require.NoError(t, err)

	items := []LayoutItem{{I: w.ID, X: 5, Y: -1, W: 9, H: 9}}

	scheduled, err := b.ApplyLayoutChange(BreakpointSM, items, true)
	require.NoError(t, err)
	assert.False(t, scheduled, "layout changes are ignored while dragging")

	scheduled, err = b.ApplyLayoutChange(BreakpointSM, items, false)
	require.NoError(t, err)
	require.True(t, scheduled)

	require.Eventually(t, func() bool {
		got, _ := b.Widget(w.ID)
		return got.Layout.W == 6
	}, time.Second, 10*time.Millisecond)

	got, err := b.Widget(w.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Layout.X)
	assert.Equal(t, 0, got.Layout.Y)
	assert.Equal(t, MaxH, got.Layout.H)

	scheduled, err = b.ApplyLayoutChange(BreakpointSM, items, false)
	require.NoError(t, err)
	assert.False(t, scheduled, "repeated layouts are not committed twice")

	b.Flush()
	var saved Layouts
	require.NoError(t, st.Load(ctx, store.KeyLayouts, &saved))
	require.Len(t, saved[BreakpointSM], 1)
	assert.Equal(t, 6, saved[BreakpointSM][0].W)

	_, err = b.ApplyLayoutChange("huge", items, false)
	assert.ErrorIs(t, err, ErrInvalidBreakpoint)
}

func TestChangeBreakpointFitsColumns(t *testing.T) {
	b, _ := newTestBoard(t)
	w, err := b.AddWidget(TypeBar, "Devices", ChartData{})
	require.NoError(t, err)
	b.UpdateWidgetLayout([]LayoutItem{{I: w.ID, X: 6, Y: 0, W: 6, H: 2}})

	items, err := b.ChangeBreakpoint(BreakpointXS)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 4, items[0].W)
	assert.Equal(t, 0, items[0].X)
	assert.Equal(t, 4, items[0].MaxW)
	assert.Equal(t, BreakpointXS, b.Breakpoint())
}

func TestSaveAndLoadLayout(t *testing.T) {
	ctx := context.Background()
	b, st := newTestBoard(t)
	w, err := b.AddWidget(TypeBar, "Devices", ChartData{})
	require.NoError(t, err)

	require.NoError(t, b.SaveLayout(ctx))
	b.UpdateWidgetLayout([]LayoutItem{{I: w.ID, X: 8, Y: 4, W: 4, H: 4}})

	assert.True(t, b.LoadLayout(ctx))
	got, _ := b.Widget(w.ID)
	assert.Equal(t, 0, got.Layout.X)
	assert.Equal(t, DefaultW, got.Layout.W)

	require.NoError(t, st.SetRaw(ctx, store.KeySavedLayout, "oops"))
	assert.False(t, b.LoadLayout(ctx))
}

func TestApplyPreset(t *testing.T) {
	b, _ := newTestBoard(t)
	for i := 0; i < 3; i++ {
		_, err := b.AddWidget(TypeBar, "w", ChartData{})
		require.NoError(t, err)
	}

	items, err := b.ApplyPreset("2x2")
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, LayoutItem{I: items[2].I, X: 0, Y: 2, W: 6, H: 2, MinW: MinW, MaxW: MaxW, MinH: MinH, MaxH: MaxH}, items[2])
	assert.Equal(t, 6, items[1].X)

	_, err = b.ApplyPreset("9x9")
	assert.ErrorIs(t, err, ErrUnknownPreset)
}

func TestApplyTemplateReplacesWidgets(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBoard(t)
	old, err := b.AddWidget(TypeBar, "old", ChartData{})
	require.NoError(t, err)

	widgets, err := b.ApplyTemplate(ctx, "device-health")
	require.NoError(t, err)
	require.Len(t, widgets, 3)
	for _, w := range widgets {
		assert.NotEqual(t, old.ID, w.ID)
	}
	assert.Equal(t, "Device Status Overview", widgets[0].Title)
	assert.Equal(t, 300, widgets[0].Settings.RefreshInterval)
	assert.Equal(t, 3, widgets[1].Layout.X)

	_, err = b.ApplyTemplate(ctx, "nope")
	assert.ErrorIs(t, err, ErrUnknownTemplate)
}

func TestLoadRestoresAndMigrates(t *testing.T) {
	ctx := context.Background()
	st := store.New(dbtest.New(t), zap.NewNop())

	legacy := `{"widgets":[
		{"id":"widget-1","type":"bar","title":"Old","data":{"labels":["a"],"datasets":[{"data":[1],"backgroundColor":"#fff"}]}},
		{"id":"widget-2","type":"line","title":"Sized","data":{"labels":[],"datasets":[]},"layout":{"i":"widget-2","x":3,"y":0,"w":20,"h":4},"settings":{"refreshInterval":15}},
		{"id":"widget-3","type":"sparkline","title":"Unknown"}
	]}`
	require.NoError(t, st.SetRaw(ctx, store.KeyDashboardState, legacy))
	require.NoError(t, st.Set(ctx, store.KeyLayouts, Layouts{
		BreakpointLG: {{I: "widget-1", X: 6, Y: 2, W: 4, H: 3}},
	}))

	b := NewBoard(st, zap.NewNop())
	b.Load(ctx)

	widgets := b.Widgets()
	require.Len(t, widgets, 2)

	assert.Equal(t, DefaultRefreshInterval, widgets[0].Settings.RefreshInterval)
	assert.Equal(t, DefaultTheme, widgets[0].Settings.Theme)
	assert.Equal(t, DefaultDisplayMode, widgets[0].Settings.DisplayMode)
	assert.Equal(t, LayoutItem{I: "widget-1", X: 6, Y: 2, W: 4, H: 3, MinW: MinW, MaxW: MaxW, MinH: MinH, MaxH: MaxH}, widgets[0].Layout)

	assert.Equal(t, 15, widgets[1].Settings.RefreshInterval)
	assert.Equal(t, MaxW, widgets[1].Layout.W)
}

func TestLoadCorruptStateStartsEmpty(t *testing.T) {
	ctx := context.Background()
	st := store.New(dbtest.New(t), zap.NewNop())
	require.NoError(t, st.SetRaw(ctx, store.KeyDashboardState, "{{{"))
	require.NoError(t, st.SetRaw(ctx, store.KeyLayouts, "nope"))

	b := NewBoard(st, zap.NewNop())
	assert.NotPanics(t, func() { b.Load(ctx) })
	assert.Empty(t, b.Widgets())
	assert.Empty(t, b.SavedLayouts())
}

func TestStateSurvivesReload(t *testing.T) {
	ctx := context.Background()
	st := store.New(dbtest.New(t), zap.NewNop())

	b := NewBoard(st, zap.NewNop())
	b.Load(ctx)
	w, err := b.AddWidget(TypeDoughnut, "Status", ChartData{})
	require.NoError(t, err)
	b.Flush()

	reloaded := NewBoard(st, zap.NewNop())
	reloaded.Load(ctx)
	widgets := reloaded.Widgets()
	require.Len(t, widgets, 1)
	assert.Equal(t, w.ID, widgets[0].ID)
	assert.Equal(t, DefaultData(TypeDoughnut), widgets[0].Data)
}

func TestLayoutEditsSurviveReload(t *testing.T) {
	ctx := context.Background()
	st := store.New(dbtest.New(t), zap.NewNop())

	b := NewBoard(st, zap.NewNop())
	b.Load(ctx)
	first, err := b.AddWidget(TypeBar, "Devices", ChartData{})
	require.NoError(t, err)
	second, err := b.AddWidget(TypeLine, "Alerts", ChartData{})
	require.NoError(t, err)

	// commits a dashboard-layouts entry for lg
	_, err = b.ChangeBreakpoint(BreakpointLG)
	require.NoError(t, err)
	b.Flush()

	reload := func(id string) LayoutItem {
		t.Helper()
		r := NewBoard(st, zap.NewNop())
		r.Load(ctx)
		w, err := r.Widget(id)
		require.NoError(t, err)
		return w.Layout
	}

	_, err = b.ApplyPreset("2x2")
	require.NoError(t, err)
	b.Flush()
	got := reload(second.ID)
	assert.Equal(t, 6, got.X)
	assert.Equal(t, 6, got.W)

	b.UpdateWidgetLayout([]LayoutItem{{I: first.ID, X: 4, Y: 0, W: 5, H: 4}})
	b.Flush()
	got = reload(first.ID)
	assert.Equal(t, 4, got.X)
	assert.Equal(t, 5, got.W)
	assert.Equal(t, 4, got.H)

	require.NoError(t, b.SaveLayout(ctx))
	b.UpdateWidgetLayout([]LayoutItem{{I: first.ID, X: 0, Y: 4, W: 2, H: 2}})
	require.True(t, b.LoadLayout(ctx))
	b.Flush()
	got = reload(first.ID)
	assert.Equal(t, 4, got.X)
	assert.Equal(t, 5, got.W)

	var saved Layouts
	require.NoError(t, st.Load(ctx, store.KeyLayouts, &saved))
	require.Len(t, saved[BreakpointLG], 2)
	assert.Equal(t, 5, saved[BreakpointLG][0].W)
}

func TestWidgetsAreCopies(t *testing.T) {
	b, _ := newTestBoard(t)
	open := true
	w, err := b.addWidget(TypeLine, "CPU", ChartData{}, WidgetSettings{Columns: []string{"name"}, IsSettingsOpen: &open})
	require.NoError(t, err)

	got := b.Widgets()[0]
	got.Data.Labels[0] = "changed"
	got.Data.Datasets[0].Data[0] = -1
	got.Settings.Columns[0] = "changed"
	*got.Settings.IsSettingsOpen = false
	*got.Settings.ChartOptions.Responsive = false

	again, err := b.Widget(w.ID)
	require.NoError(t, err)
	assert.Equal(t, DefaultData(TypeLine), again.Data)
	assert.Equal(t, []string{"name"}, again.Settings.Columns)
	assert.True(t, *again.Settings.IsSettingsOpen)
	assert.True(t, *again.Settings.ChartOptions.Responsive)
}
