package pets

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strconv"
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

// List trae las mascotas visibles para el usuario (el servidor filtra por dueño).
func (s *Service) List(ctx context.Context) ([]Pet, error) {
	return httpclient.GetList[Pet](ctx, s.api, "/pets/", nil)
}

func (s *Service) Get(ctx context.Context, id int64) (Pet, error) {
	if id <= 0 {
		return Pet{}, ErrInvalidInput
	}
	var out Pet
	if err := s.api.Get(ctx, fmt.Sprintf("/pets/%d/", id), nil, &out); err != nil {
		return Pet{}, err
	}
	return out, nil
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Pet, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return Pet{}, httpclient.Invalid("name", "required")
	}
	if in.Species <= 0 {
		return Pet{}, httpclient.Invalid("species", "required")
	}

	var out Pet
	if err := s.api.Post(ctx, "/pets/", in, &out); err != nil {
		return Pet{}, fmt.Errorf("create pet: %w", err)
	}
	return out, nil
}

func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (Pet, error) {
	if id <= 0 {
		return Pet{}, ErrInvalidInput
	}
	if in.Name != nil {
		n := strings.TrimSpace(*in.Name)
		if n == "" {
			return Pet{}, httpclient.Invalid("name", "cannot be empty")
		}
		in.Name = &n
	}

	var out Pet
	if err := s.api.Patch(ctx, fmt.Sprintf("/pets/%d/", id), in, &out); err != nil {
		return Pet{}, fmt.Errorf("update pet: %w", err)
	}
	return out, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrInvalidInput
	}
	return s.api.Delete(ctx, fmt.Sprintf("/pets/%d/", id))
}

type linkRequest struct {
	PetID int64  `json:"pet_id"`
	Email string `json:"email"`
}

// Link comparte la mascota con otra cuenta (co-dueño) por email.
func (s *Service) Link(ctx context.Context, petID int64, email string) error {
	if petID <= 0 {
		return ErrInvalidInput
	}
	email = strings.TrimSpace(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return httpclient.Invalid("email", "enter a valid email address")
	}
	if err := s.api.Post(ctx, "/pets/link-pet/", linkRequest{PetID: petID, Email: email}, nil); err != nil {
		return fmt.Errorf("link pet: %w", err)
	}
	return nil
}

func (s *Service) Species(ctx context.Context) ([]Species, error) {
	return httpclient.GetList[Species](ctx, s.api, "/species/", nil)
}

// Breeds trae las razas; speciesID > 0 filtra en el servidor y además
// localmente por si el endpoint ignora el parámetro.
func (s *Service) Breeds(ctx context.Context, speciesID int64) ([]Breed, error) {
	var q url.Values
	if speciesID > 0 {
		q = url.Values{"species": {strconv.FormatInt(speciesID, 10)}}
	}
	list, err := httpclient.GetList[Breed](ctx, s.api, "/breeds/", q)
	if err != nil {
		return nil, err
	}
	if speciesID <= 0 {
		return list, nil
	}
	out := list[:0]
	for _, b := range list {
		if b.Species == speciesID {
			out = append(out, b)
		}
	}
	return out, nil
}
