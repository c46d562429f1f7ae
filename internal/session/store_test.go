package session_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/golang-jwt/jwt/v5"

	"petcare-client/internal/adapters/storage/memory"
	"petcare-client/internal/domain/users"
	"petcare-client/internal/platform/httpclient"
	"petcare-client/internal/session"
)

type fakeAPI struct {
	mu       sync.Mutex
	loginRes map[string]any
	meStatus int
	me       users.User
	byID     map[int64]users.User
	seenAuth []string
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login/", func(w http.ResponseWriter, r *http.Request) {
		var c session.Credentials
		_ = json.NewDecoder(r.Body).Decode(&c)
		if c.Password != "secret123" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Credenciales inválidas"})
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		writeJSON(w, http.StatusOK, f.loginRes)
	})
	mux.HandleFunc("POST /auth/refresh/", func(w http.ResponseWriter, r *http.Request) {
		var in map[string]string
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in["refresh"] != "ref-1" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "token expirado"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"access": "acc-2"})
	})
	mux.HandleFunc("GET /users/me/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.seenAuth = append(f.seenAuth, r.Header.Get("Authorization"))
		if f.meStatus != 0 && f.meStatus != http.StatusOK {
			writeJSON(w, f.meStatus, map[string]any{"detail": "nope"})
			return
		}
		writeJSON(w, http.StatusOK, f.me)
	})
	mux.HandleFunc("GET /users/{id}/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.seenAuth = append(f.seenAuth, r.Header.Get("Authorization"))
		for id, u := range f.byID {
			if r.PathValue("id") == jsonNumber(id) {
				writeJSON(w, http.StatusOK, u)
				return
			}
		}
		writeJSON(w, http.StatusNotFound, map[string]any{"detail": "not found"})
	})
	return mux
}

func (f *fakeAPI) auths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.seenAuth...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonNumber(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}

func signedToken(t *testing.T, userID int64) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": userID})
	s, err := tok.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func newStore(t *testing.T, f *fakeAPI) (*session.Store, session.Repository) {
	t.Helper()
	ts := httptest.NewServer(f.handler())
	t.Cleanup(ts.Close)

	api, err := httpclient.New(httpclient.Options{BaseURL: ts.URL})
	if err != nil {
		t.Fatalf("httpclient: %v", err)
	}
	repo := memory.NewSessionRepo()
	return session.NewStore(api, repo, nil), repo
}

func TestLogin_UserInResponse(t *testing.T) {
	f := &fakeAPI{loginRes: map[string]any{
		"access":  "acc-1",
		"refresh": "ref-1",
		"user":    map[string]any{"id": 5, "email": "ana@mail.com", "role": "OWNER"},
	}}
	st, repo := newStore(t, f)
	ctx := context.Background()

	s, err := st.Login(ctx, session.Credentials{Email: " ana@mail.com ", Password: "secret123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if s.User.ID != 5 || !s.User.IsOwner() {
		t.Fatalf("unexpected user %+v", s.User)
	}
	if st.AccessToken() != "acc-1" {
		t.Fatalf("token not published")
	}

	saved, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("repo load: %v", err)
	}
	if saved.Tokens.Access != "acc-1" || saved.User.ID != 5 {
		t.Fatalf("persisted session mismatch: %+v", saved)
	}
}

func TestLogin_WhoamiWhenUserMissing(t *testing.T) {
	f := &fakeAPI{
		loginRes: map[string]any{"access": "acc-1", "refresh": "ref-1"},
		me:       users.User{ID: 11, Email: "p@mail.com", Role: users.RoleProvider},
	}
	st, _ := newStore(t, f)

	s, err := st.Login(context.Background(), session.Credentials{Email: "p@mail.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if s.User.ID != 11 || !s.User.IsProvider() {
		t.Fatalf("unexpected user %+v", s.User)
	}
	if got := f.auths(); len(got) == 0 || got[0] != "Bearer acc-1" {
		t.Fatalf("whoami should carry the new token, got %v", got)
	}
}

func TestLogin_FallsBackToTokenClaim(t *testing.T) {
	access := signedToken(t, 42)
	f := &fakeAPI{
		loginRes: map[string]any{"access": access},
		meStatus: http.StatusNotFound,
		byID:     map[int64]users.User{42: {ID: 42, Email: "z@mail.com", Role: users.RoleOwner}},
	}
	st, _ := newStore(t, f)

	s, err := st.Login(context.Background(), session.Credentials{Email: "z@mail.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if s.User.ID != 42 {
		t.Fatalf("expected user 42 from claim, got %+v", s.User)
	}
}

func TestLogin_RejectedKeepsNoSession(t *testing.T) {
	f := &fakeAPI{loginRes: map[string]any{"access": "acc-1"}}
	st, _ := newStore(t, f)

	_, err := st.Login(context.Background(), session.Credentials{Email: "a@b.c", Password: "wrong"})
	if httpclient.Classify(err) != httpclient.KindRejected {
		t.Fatalf("expected rejected, got %v", err)
	}
	if httpclient.UserMessage(err) != "Credenciales inválidas" {
		t.Fatalf("unexpected message %q", httpclient.UserMessage(err))
	}
	if _, ok := st.Current(); ok {
		t.Fatalf("no session expected after failed login")
	}
}

func TestLogin_ValidatesInput(t *testing.T) {
	st, _ := newStore(t, &fakeAPI{})
	_, err := st.Login(context.Background(), session.Credentials{Email: "", Password: "x"})
	if httpclient.Classify(err) != httpclient.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLogout_ClearsMemoryAndRepo(t *testing.T) {
	f := &fakeAPI{loginRes: map[string]any{
		"access": "acc-1",
		"user":   map[string]any{"id": 5, "role": "OWNER"},
	}}
	st, repo := newStore(t, f)
	ctx := context.Background()

	if _, err := st.Login(ctx, session.Credentials{Email: "a@b.c", Password: "secret123"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := st.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if st.AccessToken() != "" {
		t.Fatalf("token should be gone")
	}
	if _, err := repo.Load(ctx); !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("repo should be empty, got %v", err)
	}
	if _, err := st.RequireUser(); !errors.Is(err, session.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestRefreshProfile_UnauthorizedClearsSession(t *testing.T) {
	f := &fakeAPI{
		loginRes: map[string]any{"access": "acc-1", "user": map[string]any{"id": 5, "role": "OWNER"}},
		meStatus: http.StatusUnauthorized,
	}
	st, repo := newStore(t, f)
	ctx := context.Background()

	if _, err := st.Login(ctx, session.Credentials{Email: "a@b.c", Password: "secret123"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	_, err := st.RefreshProfile(ctx)
	if !errors.Is(err, session.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
	if _, ok := st.Current(); ok {
		t.Fatalf("session should be cleared")
	}
	if _, err := repo.Load(ctx); !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("repo should be cleared, got %v", err)
	}
}

func TestSetUser_PatchesLocally(t *testing.T) {
	f := &fakeAPI{loginRes: map[string]any{
		"access": "acc-1",
		"user":   map[string]any{"id": 5, "first_name": "Ana", "role": "OWNER"},
	}}
	st, repo := newStore(t, f)
	ctx := context.Background()

	if _, err := st.Login(ctx, session.Credentials{Email: "a@b.c", Password: "secret123"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	name := "Ana María"
	u, err := st.SetUser(ctx, users.UpdateInput{FirstName: &name})
	if err != nil {
		t.Fatalf("set user: %v", err)
	}
	if u.FirstName != name {
		t.Fatalf("patch not applied: %+v", u)
	}
	saved, _ := repo.Load(ctx)
	if saved.User.FirstName != name || saved.Tokens.Access != "acc-1" {
		t.Fatalf("persisted session mismatch: %+v", saved)
	}
}

func TestRestore_LoadsPersistedAndRefreshes(t *testing.T) {
	f := &fakeAPI{me: users.User{ID: 5, FirstName: "Nuevo", Role: users.RoleOwner}}
	st, repo := newStore(t, f)
	ctx := context.Background()

	_ = repo.Save(ctx, session.Session{
		Tokens: session.Tokens{Access: "acc-old"},
		User:   users.User{ID: 5, FirstName: "Viejo", Role: users.RoleOwner},
	})

	s, err := st.Restore(ctx)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if s.User.FirstName != "Nuevo" {
		t.Fatalf("expected refreshed profile, got %+v", s.User)
	}
	if got := f.auths(); len(got) == 0 || got[0] != "Bearer acc-old" {
		t.Fatalf("refresh should use restored token, got %v", got)
	}
}

func TestRestore_EmptyRepo(t *testing.T) {
	st, _ := newStore(t, &fakeAPI{})
	if _, err := st.Restore(context.Background()); !errors.Is(err, session.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestRefreshToken(t *testing.T) {
	f := &fakeAPI{loginRes: map[string]any{
		"access":  "acc-1",
		"refresh": "ref-1",
		"user":    map[string]any{"id": 5, "role": "OWNER"},
	}}
	st, repo := newStore(t, f)
	ctx := context.Background()

	if _, err := st.Login(ctx, session.Credentials{Email: "a@b.c", Password: "secret123"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := st.RefreshToken(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if st.AccessToken() != "acc-2" {
		t.Fatalf("expected new access token, got %q", st.AccessToken())
	}
	saved, _ := repo.Load(ctx)
	if saved.Tokens.Access != "acc-2" || saved.Tokens.Refresh != "ref-1" {
		t.Fatalf("persisted tokens mismatch: %+v", saved.Tokens)
	}
}
