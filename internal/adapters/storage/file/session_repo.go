package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"petcare-client/internal/session"
)

// SessionRepo guarda la sesión en un archivo JSON (0600). Save escribe a un
// temporal y renombra, así nunca queda un archivo con token sin usuario.
type SessionRepo struct {
	mu   sync.Mutex
	path string
}

func NewSessionRepo(path string) (*SessionRepo, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("session file path required")
	}
	return &SessionRepo{path: path}, nil
}

func (r *SessionRepo) Load(ctx context.Context) (session.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return session.Session{}, session.ErrNotFound
		}
		return session.Session{}, err
	}

	var s session.Session
	if err := json.Unmarshal(b, &s); err != nil {
		return session.Session{}, fmt.Errorf("session file corrupt: %w", err)
	}
	return s, nil
}

func (r *SessionRepo) Save(ctx context.Context, s session.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0o700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".session-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), r.path)
}

func (r *SessionRepo) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.Remove(r.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
