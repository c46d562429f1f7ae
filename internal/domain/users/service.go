package users

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strings"

	"petcare-client/internal/platform/httpclient"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

type Service struct {
	api *httpclient.Client
}

func NewService(api *httpclient.Client) *Service {
	return &Service{api: api}
}

// Register crea la cuenta (anónimo, sin bearer).
func (s *Service) Register(ctx context.Context, in RegisterInput) (User, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)

	if _, err := mail.ParseAddress(in.Email); err != nil {
		return User{}, httpclient.Invalid("email", "enter a valid email address")
	}
	if len(in.Password) < 8 {
		return User{}, httpclient.Invalid("password", "password must have at least 8 characters")
	}
	if in.FirstName == "" {
		return User{}, httpclient.Invalid("first_name", "required")
	}
	if in.Role == "" {
		in.Role = RoleOwner
	}
	if _, ok := ParseRole(string(in.Role)); !ok {
		return User{}, httpclient.Invalid("role", "must be OWNER or PROVIDER")
	}

	var out User
	err := s.api.Do(ctx, httpclient.Request{
		Method:    http.MethodPost,
		Path:      "/users/",
		Body:      in,
		Anonymous: true,
	}, &out)
	if err != nil {
		return User{}, fmt.Errorf("register: %w", err)
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id int64) (User, error) {
	if id <= 0 {
		return User{}, ErrInvalidInput
	}
	var out User
	if err := s.api.Get(ctx, fmt.Sprintf("/users/%d/", id), nil, &out); err != nil {
		return User{}, err
	}
	return out, nil
}

// Me es el endpoint "whoami".
func (s *Service) Me(ctx context.Context) (User, error) {
	var out User
	if err := s.api.Get(ctx, "/users/me/", nil, &out); err != nil {
		return User{}, err
	}
	return out, nil
}

func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (User, error) {
	if id <= 0 {
		return User{}, ErrInvalidInput
	}
	var out User
	if err := s.api.Patch(ctx, fmt.Sprintf("/users/%d/", id), in, &out); err != nil {
		return User{}, err
	}
	return out, nil
}

// SwitchRole cambia el rol activo. Devuelve el usuario actualizado.
func (s *Service) SwitchRole(ctx context.Context, role Role) (User, error) {
	r, ok := ParseRole(string(role))
	if !ok {
		return User{}, httpclient.Invalid("role", "must be OWNER or PROVIDER")
	}
	var out User
	if err := s.api.Post(ctx, "/users/switch_role/", map[string]Role{"role": r}, &out); err != nil {
		return User{}, err
	}
	return out, nil
}
