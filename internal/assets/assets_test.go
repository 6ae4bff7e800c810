package assets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"vibermm/internal/db/dbtest"
	"vibermm/internal/events"
	"vibermm/internal/events/eventstest"
	"vibermm/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) (*Service, *store.Store, *eventstest.Recorder) {
	t.Helper()
	gdb := dbtest.New(t)
	st := store.New(gdb, zap.NewNop())
	rec := &eventstest.Recorder{}
	return New(gdb, st, rec, zap.NewNop()), st, rec
}

func TestList(t *testing.T) {
	s, _, _ := newTestService(t)
	ctx := context.Background()

	all, err := s.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "DESKTOP-FFHVSFD", all[0].Name)

	mac, err := s.List(ctx, Filter{OSName: "macOS 14"})
	require.NoError(t, err)
	require.Len(t, mac, 1)
	assert.Equal(t, "3", mac[0].ID)

	found, err := s.List(ctx, Filter{Search: "server"})
	require.NoError(t, err)
	require.Len(t, found, 1)

	_, err = s.Get(ctx, "42")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTableDefaults(t *testing.T) {
	s, st, _ := newTestService(t)
	ctx := context.Background()

	table := s.Table(ctx)
	assert.Equal(t, DefaultColumns(), table.Columns)
	assert.Equal(t, DefaultTableSettings(), table.Settings)

	require.NoError(t, st.SetRaw(ctx, store.KeyTableColumns, "not json"))
	require.NoError(t, st.SetRaw(ctx, store.KeyTableSettings, `{"rowHeight":`))
	table = s.Table(ctx)
	assert.Equal(t, DefaultColumns(), table.Columns)
	assert.Equal(t, DefaultTableSettings(), table.Settings)
}

func TestSaveTable(t *testing.T) {
	s, _, _ := newTestService(t)
	ctx := context.Background()

	cols := DefaultColumns()
	cols[0], cols[2] = cols[2], cols[0]
	cols[3].Visible = false
	settings := TableSettings{RowHeight: "compact", ShowBorders: false, StripedRows: true}

	require.NoError(t, s.SaveTable(ctx, Table{Columns: cols, Settings: settings}))
	table := s.Table(ctx)
	assert.Equal(t, cols, table.Columns)
	assert.Equal(t, settings, table.Settings)

	err := s.SaveTable(ctx, Table{Columns: []Column{{ID: "serial"}}, Settings: settings})
	assert.ErrorIs(t, err, ErrInvalidTable)
	err = s.SaveTable(ctx, Table{Columns: cols, Settings: TableSettings{RowHeight: "huge"}})
	assert.ErrorIs(t, err, ErrInvalidTable)
	err = s.SaveTable(ctx, Table{Columns: []Column{{ID: "name"}, {ID: "name"}}, Settings: settings})
	assert.ErrorIs(t, err, ErrInvalidTable)
}

func TestExportUsesVisibleColumns(t *testing.T) {
	s, _, _ := newTestService(t)
	ctx := context.Background()

	cols := []Column{
		{ID: "ip", Title: "IP Address", Visible: true},
		{ID: "name", Title: "Name", Visible: true},
		{ID: "status", Title: "Status", Visible: false},
	}
	require.NoError(t, s.SaveTable(ctx, Table{Columns: cols, Settings: DefaultTableSettings()}))

	raw, err := s.Export(ctx, Filter{})
	require.NoError(t, err)

	x, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer x.Close()

	rows, err := x.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"IP Address", "Name"}, rows[0])
	assert.Equal(t, []string{"192.168.1.100", "DESKTOP-FFHVSFD"}, rows[1])
}

func TestRunAction(t *testing.T) {
	s, _, rec := newTestService(t)
	ctx := context.Background()

	ev, err := s.RunAction(ctx, "2", ActionReboot)
	require.NoError(t, err)
	assert.Equal(t, events.TopicAssetAction, ev.Topic)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(rec.Events()[0].Payload, &payload))
	assert.Equal(t, map[string]string{"assetId": "2", "name": "SERVER-DB-01", "action": "reboot"}, payload)

	_, err = s.RunAction(ctx, "2", "format")
	assert.ErrorIs(t, err, ErrInvalidAction)
	_, err = s.RunAction(ctx, "99", ActionShutdown)
	assert.ErrorIs(t, err, ErrNotFound)

	rec.Err = errors.New("bus down")
	_, err = s.RunAction(ctx, "1", ActionRunScript)
	assert.Error(t, err)
}
