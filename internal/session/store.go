package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"petcare-client/internal/domain/users"
	"petcare-client/internal/platform/httpclient"
	"petcare-client/internal/platform/logger"
)

// Store es el slot de sesión del proceso. Los requests leen el token en cada
// dispatch (AccessToken); solo Login/Logout/Refresh* lo cambian.
type Store struct {
	api  *httpclient.Client
	repo Repository
	log  logger.Logger
	now  func() time.Time

	// wmu serializa las mutaciones (incluida la persistencia); mu protege el slot.
	wmu sync.Mutex
	mu  sync.RWMutex
	cur *Session
}

// NewStore engancha el store como TokenSource del cliente.
func NewStore(api *httpclient.Client, repo Repository, log logger.Logger) *Store {
	if log == nil {
		log = logger.Nop()
	}
	s := &Store{
		api:  api,
		repo: repo,
		log:  log,
		now:  time.Now,
	}
	api.SetTokenSource(s)
	return s
}

func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cur == nil {
		return ""
	}
	return s.cur.Tokens.Access
}

func (s *Store) Current() (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cur == nil {
		return Session{}, false
	}
	return *s.cur, true
}

// RequireUser es el guard de las vistas autenticadas: sin sesión devuelve
// ErrNotAuthenticated y la vista manda a login en vez de mostrar cache.
func (s *Store) RequireUser() (users.User, error) {
	cur, ok := s.Current()
	if !ok || !cur.Valid() {
		return users.User{}, ErrNotAuthenticated
	}
	return cur.User, nil
}

type loginResponse struct {
	Access  string      `json:"access"`
	Refresh string      `json:"refresh"`
	User    *users.User `json:"user"`
}

func (s *Store) Login(ctx context.Context, c Credentials) (Session, error) {
	c.Email = strings.TrimSpace(c.Email)
	if c.Email == "" {
		return Session{}, httpclient.Invalid("email", "required")
	}
	if c.Password == "" {
		return Session{}, httpclient.Invalid("password", "required")
	}

	s.wmu.Lock()
	defer s.wmu.Unlock()

	var resp loginResponse
	err := s.api.Do(ctx, httpclient.Request{
		Method:    http.MethodPost,
		Path:      "/auth/login/",
		Body:      c,
		Anonymous: true,
	}, &resp)
	if err != nil {
		return Session{}, fmt.Errorf("login: %w", err)
	}
	if strings.TrimSpace(resp.Access) == "" {
		return Session{}, errors.New("login: response missing access token")
	}

	var user users.User
	if resp.User != nil && resp.User.ID > 0 {
		user = *resp.User
	} else {
		user, err = s.resolveUser(ctx, resp.Access)
		if err != nil {
			return Session{}, fmt.Errorf("login: resolve user: %w", err)
		}
	}

	next := Session{
		Tokens:  Tokens{Access: resp.Access, Refresh: resp.Refresh},
		User:    user,
		SavedAt: s.now(),
	}
	if err := s.commit(ctx, &next); err != nil {
		return Session{}, err
	}

	s.log.Info("logged in", map[string]any{"user_id": user.ID, "role": string(user.Role)})
	return next, nil
}

// resolveUser cuando el login no trae el usuario: primero whoami, y si el
// endpoint no existe, el user_id del token contra /users/{id}/.
func (s *Store) resolveUser(ctx context.Context, access string) (users.User, error) {
	auth := map[string]string{"Authorization": "Bearer " + access}

	var me users.User
	err := s.api.Do(ctx, httpclient.Request{
		Method:    http.MethodGet,
		Path:      "/users/me/",
		Anonymous: true,
		Headers:   auth,
	}, &me)
	if err == nil && me.ID > 0 {
		return me, nil
	}
	if err != nil && !httpclient.IsNotFound(err) {
		return users.User{}, err
	}

	id, ok := userIDFromToken(access)
	if !ok {
		return users.User{}, errors.New("cannot determine current user")
	}

	var u users.User
	err = s.api.Do(ctx, httpclient.Request{
		Method:    http.MethodGet,
		Path:      fmt.Sprintf("/users/%d/", id),
		Anonymous: true,
		Headers:   auth,
	}, &u)
	if err != nil {
		return users.User{}, err
	}
	return u, nil
}

// Logout borra token y usuario juntos. El slot en memoria se vacía aunque
// falle la persistencia; el error se devuelve igual.
func (s *Store) Logout(ctx context.Context) error {
	s.wmu.Lock()
	defer s.wmu.Unlock()

	s.mu.Lock()
	s.cur = nil
	s.mu.Unlock()

	if err := s.repo.Clear(ctx); err != nil {
		return fmt.Errorf("logout: clear session: %w", err)
	}
	s.log.Info("logged out", nil)
	return nil
}

// RefreshProfile vuelve a pedir el usuario actual. Un 401 cierra la sesión.
func (s *Store) RefreshProfile(ctx context.Context) (users.User, error) {
	s.wmu.Lock()
	defer s.wmu.Unlock()

	cur, ok := s.Current()
	if !ok {
		return users.User{}, ErrNotAuthenticated
	}

	var me users.User
	err := s.api.Get(ctx, "/users/me/", nil, &me)
	if httpclient.IsNotFound(err) {
		err = s.api.Get(ctx, fmt.Sprintf("/users/%d/", cur.User.ID), nil, &me)
	}
	if err != nil {
		if httpclient.IsUnauthorized(err) {
			s.clearLocked(ctx)
			return users.User{}, fmt.Errorf("%w: %v", ErrNotAuthenticated, err)
		}
		return users.User{}, fmt.Errorf("refresh profile: %w", err)
	}

	cur.User = me
	cur.SavedAt = s.now()
	if err := s.commit(ctx, &cur); err != nil {
		return users.User{}, err
	}
	return me, nil
}

// SetUser aplica un patch local al usuario cacheado (sin llamar a la API).
func (s *Store) SetUser(ctx context.Context, patch users.UpdateInput) (users.User, error) {
	s.wmu.Lock()
	defer s.wmu.Unlock()

	cur, ok := s.Current()
	if !ok {
		return users.User{}, ErrNotAuthenticated
	}
	cur.User = patch.Apply(cur.User)
	cur.SavedAt = s.now()
	if err := s.commit(ctx, &cur); err != nil {
		return users.User{}, err
	}
	return cur.User, nil
}

// ReplaceUser guarda un usuario devuelto por la API (p.ej. switch_role).
func (s *Store) ReplaceUser(ctx context.Context, u users.User) error {
	s.wmu.Lock()
	defer s.wmu.Unlock()

	cur, ok := s.Current()
	if !ok {
		return ErrNotAuthenticated
	}
	if u.ID != cur.User.ID {
		return ErrInvalidInput
	}
	cur.User = u
	cur.SavedAt = s.now()
	return s.commit(ctx, &cur)
}

// Restore carga la sesión persistida al arrancar y refresca el perfil.
// Sin red se queda con la copia persistida.
func (s *Store) Restore(ctx context.Context) (Session, error) {
	s.wmu.Lock()
	saved, err := s.repo.Load(ctx)
	if err != nil {
		s.wmu.Unlock()
		if errors.Is(err, ErrNotFound) {
			return Session{}, ErrNotAuthenticated
		}
		return Session{}, fmt.Errorf("restore session: %w", err)
	}
	if !saved.Valid() {
		s.clearLocked(ctx)
		s.wmu.Unlock()
		return Session{}, ErrNotAuthenticated
	}
	s.mu.Lock()
	s.cur = &saved
	s.mu.Unlock()
	s.wmu.Unlock()

	if _, err := s.RefreshProfile(ctx); err != nil {
		if errors.Is(err, ErrNotAuthenticated) {
			return Session{}, err
		}
		s.log.Warn("profile refresh failed, using cached session", map[string]any{"err": err})
	}
	cur, _ := s.Current()
	return cur, nil
}

type refreshResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// RefreshToken cambia el access token usando el refresh token. Nunca se
// llama sola: la decide quien maneja el error.
func (s *Store) RefreshToken(ctx context.Context) error {
	s.wmu.Lock()
	defer s.wmu.Unlock()

	cur, ok := s.Current()
	if !ok || cur.Tokens.Refresh == "" {
		return ErrNotAuthenticated
	}

	var resp refreshResponse
	err := s.api.Do(ctx, httpclient.Request{
		Method:    http.MethodPost,
		Path:      "/auth/refresh/",
		Body:      map[string]string{"refresh": cur.Tokens.Refresh},
		Anonymous: true,
	}, &resp)
	if err != nil {
		if httpclient.IsUnauthorized(err) {
			s.clearLocked(ctx)
			return fmt.Errorf("%w: %v", ErrNotAuthenticated, err)
		}
		return fmt.Errorf("refresh token: %w", err)
	}
	if resp.Access == "" {
		return errors.New("refresh token: response missing access token")
	}

	cur.Tokens.Access = resp.Access
	if resp.Refresh != "" {
		cur.Tokens.Refresh = resp.Refresh
	}
	cur.SavedAt = s.now()
	return s.commit(ctx, &cur)
}

// commit persiste y recién después publica en el slot. Requiere wmu.
func (s *Store) commit(ctx context.Context, next *Session) error {
	if err := s.repo.Save(ctx, *next); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	s.mu.Lock()
	s.cur = next
	s.mu.Unlock()
	return nil
}

// clearLocked requiere wmu.
func (s *Store) clearLocked(ctx context.Context) {
	s.mu.Lock()
	s.cur = nil
	s.mu.Unlock()
	if err := s.repo.Clear(ctx); err != nil {
		s.log.Warn("clear session failed", map[string]any{"err": err})
	}
}
