package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"petcare-client/internal/domain/users"
	"petcare-client/internal/session"
)

// SessionRepo guarda una fila por perfil; token y usuario van en la misma fila,
// así Save (upsert) y Clear (delete) son atómicos.
type SessionRepo struct {
	db      *sql.DB
	profile string
}

func NewSessionRepo(db *sql.DB, profile string) *SessionRepo {
	profile = strings.TrimSpace(profile)
	if profile == "" {
		profile = "default"
	}
	return &SessionRepo{db: db, profile: profile}
}

func (r *SessionRepo) Load(ctx context.Context) (session.Session, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT access_token, refresh_token, user_json, saved_at
		FROM client_sessions
		WHERE profile = $1
	`, r.profile)

	var (
		s        session.Session
		userJSON []byte
	)
	if err := row.Scan(&s.Tokens.Access, &s.Tokens.Refresh, &userJSON, &s.SavedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return session.Session{}, session.ErrNotFound
		}
		return session.Session{}, err
	}

	var u users.User
	if err := json.Unmarshal(userJSON, &u); err != nil {
		return session.Session{}, fmt.Errorf("session user corrupt: %w", err)
	}
	s.User = u
	return s, nil
}

func (r *SessionRepo) Save(ctx context.Context, s session.Session) error {
	userJSON, err := json.Marshal(s.User)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO client_sessions (profile, access_token, refresh_token, user_json, saved_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (profile) DO UPDATE SET
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			user_json = EXCLUDED.user_json,
			saved_at = EXCLUDED.saved_at
	`,
		r.profile,
		s.Tokens.Access,
		s.Tokens.Refresh,
		userJSON,
		s.SavedAt,
	)
	return err
}

func (r *SessionRepo) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM client_sessions WHERE profile = $1`, r.profile)
	return err
}
