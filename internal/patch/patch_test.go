package patch

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"vibermm/internal/db/dbtest"
	"vibermm/internal/events"
	"vibermm/internal/events/eventstest"
	"vibermm/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) (*Service, *eventstest.Recorder) {
	t.Helper()
	rec := &eventstest.Recorder{}
	s := New(dbtest.New(t), rec, zap.NewNop())
	s.now = func() time.Time { return time.Date(2025, 6, 3, 12, 0, 0, 0, time.UTC) }
	return s, rec
}

func TestStatusAndRefresh(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	list, stats, err := s.Status(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, Stats{UpToDate: 1, NeedsAttention: 1, Critical: 1}, stats)

	require.NoError(t, s.db.Create(&models.PatchStatus{ID: "9", DeviceID: "device-5", Status: models.PatchNotAssessed}).Error)
	_, stats, err = s.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.NotAssessed)

	list, stats, err = s.Refresh(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 3)
	assert.Equal(t, Stats{UpToDate: 1, NeedsAttention: 1, Critical: 1}, stats)
}

func TestProfiles(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	p, err := s.AddProfile(ctx, models.PatchProfile{
		Name:     "Laptops",
		Settings: models.PatchProfileSettings{Schedule: models.PatchSchedule{Enabled: true, Type: "daily", Time: "12:30"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "profile-1748952000000", p.ID)
	assert.Equal(t, "2025-06-03", p.LastModified)

	p.Description = "Remote laptops"
	_, err = s.UpdateProfile(ctx, p.ID, p)
	require.NoError(t, err)

	profiles, err := s.Profiles(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 3)
	assert.Equal(t, "Remote laptops", profiles[2].Description)
	assert.Equal(t, "daily", profiles[2].Settings.Schedule.Type)

	require.NoError(t, s.DeleteProfile(ctx, "1"))
	assert.ErrorIs(t, s.DeleteProfile(ctx, "1"), ErrNotFound)

	_, err = s.UpdateProfile(ctx, "1", p)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.AddProfile(ctx, models.PatchProfile{})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestDeploymentRules(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	r, err := s.AddRule(ctx, models.DeploymentRule{
		Name:       "Kiosks overnight",
		Conditions: []models.RuleClause{{Type: "deviceType", Value: "kiosk"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Active", r.Status)

	r.Status = "Paused"
	updated, err := s.UpdateRule(ctx, r.ID, r)
	require.NoError(t, err)
	assert.Equal(t, "Paused", updated.Status)

	r.Status = "Sleeping"
	_, err = s.UpdateRule(ctx, r.ID, r)
	assert.ErrorIs(t, err, ErrInvalid)

	rules, err := s.Rules(ctx)
	require.NoError(t, err)
	require.Len(t, rules, 3)
	assert.Equal(t, "Paused", rules[2].Status)
	assert.Equal(t, []models.RuleClause{{Type: "deviceType", Value: "kiosk"}}, rules[2].Conditions)

	require.NoError(t, s.DeleteRule(ctx, r.ID))
	assert.ErrorIs(t, s.DeleteRule(ctx, r.ID), ErrNotFound)
}

func TestDeploy(t *testing.T) {
	s, rec := newTestService(t)
	ctx := context.Background()

	_, err := s.Deploy(ctx, nil)
	assert.ErrorIs(t, err, ErrInvalid)

	ev, err := s.Deploy(ctx, []string{"device-1", "device-2"})
	require.NoError(t, err)
	assert.Equal(t, events.TopicPatchDeploy, ev.Topic)

	var payload struct {
		DeviceIDs []string `json:"deviceIds"`
	}
	require.NoError(t, json.Unmarshal(rec.Events()[0].Payload, &payload))
	assert.Equal(t, []string{"device-1", "device-2"}, payload.DeviceIDs)
}
