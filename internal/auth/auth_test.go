package auth

import (
	"context"
	"testing"

	"vibermm/internal/db/dbtest"
	"vibermm/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	st := store.New(dbtest.New(t), zap.NewNop())
	return New(st, zap.NewNop()), st
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		ok       bool
	}{
		{"admin", "admin@vibermm.com", "admin", true},
		{"tech mixed case", " Tech@ViberMM.com", "tech", true},
		{"wrong password", "admin@vibermm.com", "tech", false},
		{"unknown user", "nobody@vibermm.com", "admin", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestService(t)
			ctx := context.Background()

			u, ok, err := s.Login(ctx, tt.email, tt.password)
			require.NoError(t, err)
			assert.Equal(t, tt.ok, ok)

			cur, signedIn := s.Current(ctx)
			assert.Equal(t, tt.ok, signedIn)
			if tt.ok {
				assert.Equal(t, u, cur)
				assert.True(t, cur.Can(PermViewDashboard))
			}
		})
	}
}

func TestPermissions(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	admin, _, err := s.Login(ctx, "admin@vibermm.com", "admin")
	require.NoError(t, err)
	assert.True(t, admin.Can(PermEditAssets))

	tech, _, err := s.Login(ctx, "tech@vibermm.com", "tech")
	require.NoError(t, err)
	assert.False(t, tech.Can(PermEditAssets))
	assert.Equal(t, "Tech Support", tech.DisplayName)
}

func TestCorruptSessionIsCleared(t *testing.T) {
	s, st := newTestService(t)
	ctx := context.Background()

	require.NoError(t, st.SetRaw(ctx, store.KeyUser, "{not json"))
	_, ok := s.Current(ctx)
	assert.False(t, ok)

	_, found, err := st.Get(ctx, store.KeyUser)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestLogoutAndProfile(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	name := "Renamed"
	_, err := s.UpdateProfile(ctx, ProfileUpdate{DisplayName: &name})
	assert.ErrorIs(t, err, ErrNotSignedIn)

	_, _, err = s.Login(ctx, "admin@vibermm.com", "admin")
	require.NoError(t, err)

	u, err := s.UpdateProfile(ctx, ProfileUpdate{DisplayName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", u.DisplayName)
	assert.Contains(t, u.PhotoURL, "gravatar")

	cur, ok := s.Current(ctx)
	require.True(t, ok)
	assert.Equal(t, "Renamed", cur.DisplayName)

	require.NoError(t, s.Logout(ctx))
	_, ok = s.Current(ctx)
	assert.False(t, ok)
}
