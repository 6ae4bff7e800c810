// Package auth is the console's mock sign-in. Accounts are a fixed table;
// the signed-in user is kept under the "user" preference key.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"vibermm/internal/store"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Permissions granted to mock accounts.
const (
	PermViewDashboard = "view_dashboard"
	PermEditAssets    = "edit_assets"
)

var ErrNotSignedIn = errors.New("no user signed in")

type User struct {
	Email       string   `json:"email"`
	Permissions []string `json:"permissions"`
	DisplayName string   `json:"displayName,omitempty"`
	PhotoURL    string   `json:"photoURL,omitempty"`
}

// ProfileUpdate holds the fields a user may change on their own profile.
type ProfileUpdate struct {
	DisplayName *string `json:"displayName"`
	PhotoURL    *string `json:"photoURL"`
}

type account struct {
	user User
	hash []byte
}

var mockAccounts = []struct {
	user     User
	password string
}{
	{
		user: User{
			Email: "admin@vibermm.com", Permissions: []string{PermViewDashboard, PermEditAssets},
			DisplayName: "Admin User",
			PhotoURL:    "https://www.gravatar.com/avatar/64e1b8d34f425d19e1ee2ea7236d3028?d=identicon",
		},
		password: "admin",
	},
	{
		user: User{
			Email: "tech@vibermm.com", Permissions: []string{PermViewDashboard},
			DisplayName: "Tech Support",
			PhotoURL:    "https://www.gravatar.com/avatar/00000000000000000000000000000000?d=identicon",
		},
		password: "tech",
	},
}

var (
	accountsOnce sync.Once
	accounts     []account
)

// loadAccounts hashes the mock passwords once per process.
func loadAccounts() []account {
	accountsOnce.Do(func() {
		for _, m := range mockAccounts {
			hash, err := bcrypt.GenerateFromPassword([]byte(m.password), bcrypt.DefaultCost)
			if err != nil {
				panic(fmt.Sprintf("hash mock password for %s: %v", m.user.Email, err))
			}
			accounts = append(accounts, account{user: m.user, hash: hash})
		}
	})
	return accounts
}

type Service struct {
	st       *store.Store
	log      *zap.Logger
	accounts []account
}

func New(st *store.Store, log *zap.Logger) *Service {
	return &Service{st: st, log: log, accounts: loadAccounts()}
}

// Login checks the credentials against the account table and, on a match,
// stores the user as the current session.
func (s *Service) Login(ctx context.Context, email, password string) (User, bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, a := range s.accounts {
		if a.user.Email != email {
			continue
		}
		if bcrypt.CompareHashAndPassword(a.hash, []byte(password)) != nil {
			break
		}
		u := a.user
		u.Permissions = append([]string(nil), a.user.Permissions...)
		if err := s.st.Set(ctx, store.KeyUser, u); err != nil {
			return User{}, false, err
		}
		s.log.Info("user signed in", zap.String("email", u.Email))
		return u, true, nil
	}
	s.log.Warn("failed sign-in", zap.String("email", email))
	return User{}, false, nil
}

// Current returns the signed-in user. A stored session that does not decode
// is removed.
func (s *Service) Current(ctx context.Context) (User, bool) {
	var u User
	err := s.st.Load(ctx, store.KeyUser, &u)
	switch {
	case err == nil:
		return u, true
	case errors.Is(err, store.ErrNotFound):
		return User{}, false
	}

	s.log.Error("failed to parse stored user data", zap.Error(err))
	if errors.Is(err, store.ErrCorrupt) {
		if err := s.st.Delete(ctx, store.KeyUser); err != nil {
			s.log.Error("error clearing stored user", zap.Error(err))
		}
	}
	return User{}, false
}

func (s *Service) Logout(ctx context.Context) error {
	return s.st.Delete(ctx, store.KeyUser)
}

// UpdateProfile merges upd into the signed-in user and stores the result.
func (s *Service) UpdateProfile(ctx context.Context, upd ProfileUpdate) (User, error) {
	u, ok := s.Current(ctx)
	if !ok {
		return User{}, ErrNotSignedIn
	}
	if upd.DisplayName != nil {
		u.DisplayName = *upd.DisplayName
	}
	if upd.PhotoURL != nil {
		u.PhotoURL = *upd.PhotoURL
	}
	if err := s.st.Set(ctx, store.KeyUser, u); err != nil {
		return User{}, err
	}
	return u, nil
}

// Can reports whether u holds perm.
func (u User) Can(perm string) bool {
	for _, p := range u.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}
