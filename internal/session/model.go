package session

import (
	"context"
	"errors"
	"time"

	"petcare-client/internal/domain/users"
)

var (
	ErrNotFound         = errors.New("session not found")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrInvalidInput     = errors.New("invalid input")
)

type Tokens struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Session: token y usuario viajan siempre juntos; no existe uno sin el otro.
type Session struct {
	Tokens  Tokens     `json:"tokens"`
	User    users.User `json:"user"`
	SavedAt time.Time  `json:"saved_at"`
}

func (s Session) Valid() bool {
	return s.Tokens.Access != "" && s.User.ID > 0
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Repository persiste la sesión como una sola unidad. Save y Clear deben ser
// atómicos respecto de token+usuario.
type Repository interface {
	Load(ctx context.Context) (Session, error)
	Save(ctx context.Context, s Session) error
	Clear(ctx context.Context) error
}
