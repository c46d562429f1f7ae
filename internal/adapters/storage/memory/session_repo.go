package memory

import (
	"context"
	"sync"

	"petcare-client/internal/session"
)

type sessionRepo struct {
	mu  sync.RWMutex
	cur *session.Session
}

func NewSessionRepo() session.Repository {
	return &sessionRepo{}
}

func (r *sessionRepo) Load(ctx context.Context) (session.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.cur == nil {
		return session.Session{}, session.ErrNotFound
	}
	return *r.cur, nil
}

func (r *sessionRepo) Save(ctx context.Context, s session.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := s
	r.cur = &cp
	return nil
}

func (r *sessionRepo) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cur = nil
	return nil
}
