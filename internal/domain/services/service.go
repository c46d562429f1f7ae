package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"petcare-client/internal/platform/httpclient"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotCertified = errors.New("an approved certification is required to publish services")
	ErrUsePublish   = errors.New("activate services with Publish")
)

// Certifier responde si un prestador puede publicar (certificaciones.Service).
type Certifier interface {
	HasApproved(ctx context.Context, providerID int64) (bool, error)
}

// Catalog es la capa de servicio del catálogo; Service es el modelo.
type Catalog struct {
	api   *httpclient.Client
	certs Certifier
}

func NewCatalog(api *httpclient.Client, certs Certifier) *Catalog {
	return &Catalog{api: api, certs: certs}
}

// List trae el catálogo. El filtrado fino es local (Filter); q se manda tal
// cual por si el servidor soporta filtros.
func (s *Catalog) List(ctx context.Context, q url.Values) ([]Service, error) {
	return httpclient.GetList[Service](ctx, s.api, "/services/", q)
}

// Search = List + Filter local.
func (s *Catalog) Search(ctx context.Context, f Filter) ([]Service, error) {
	list, err := s.List(ctx, nil)
	if err != nil {
		return nil, err
	}
	return f.Apply(list), nil
}

func (s *Catalog) Get(ctx context.Context, id int64) (Service, error) {
	if id <= 0 {
		return Service{}, ErrInvalidInput
	}
	var out Service
	if err := s.api.Get(ctx, fmt.Sprintf("/services/%d/", id), nil, &out); err != nil {
		return Service{}, err
	}
	return out, nil
}

// Create publica un servicio nuevo del prestador. Requiere certificación aprobada.
func (s *Catalog) Create(ctx context.Context, providerID int64, in CreateInput) (Service, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if in.Name == "" {
		return Service{}, httpclient.Invalid("name", "required")
	}
	if _, ok := ParseType(string(in.Type)); !ok {
		return Service{}, httpclient.Invalid("service_type", "unknown service type")
	}
	if in.Price <= 0 {
		return Service{}, httpclient.Invalid("price", "must be greater than zero")
	}
	if err := s.requireCertified(ctx, providerID); err != nil {
		return Service{}, err
	}

	var out Service
	if err := s.api.Post(ctx, "/services/", in, &out); err != nil {
		return Service{}, fmt.Errorf("create service: %w", err)
	}
	return out, nil
}

// Update no activa: is_active=true pasa por Publish y su chequeo de certificación.
func (s *Catalog) Update(ctx context.Context, id int64, in UpdateInput) (Service, error) {
	if in.IsActive != nil && *in.IsActive {
		return Service{}, ErrUsePublish
	}
	return s.patch(ctx, id, in)
}

func (s *Catalog) patch(ctx context.Context, id int64, in UpdateInput) (Service, error) {
	if id <= 0 {
		return Service{}, ErrInvalidInput
	}
	if in.Type != nil {
		if _, ok := ParseType(string(*in.Type)); !ok {
			return Service{}, httpclient.Invalid("service_type", "unknown service type")
		}
	}
	if in.Price != nil && *in.Price <= 0 {
		return Service{}, httpclient.Invalid("price", "must be greater than zero")
	}

	var out Service
	if err := s.api.Patch(ctx, fmt.Sprintf("/services/%d/", id), in, &out); err != nil {
		return Service{}, fmt.Errorf("update service: %w", err)
	}
	return out, nil
}

// Publish activa un servicio existente (is_active=true).
func (s *Catalog) Publish(ctx context.Context, providerID, id int64) (Service, error) {
	if err := s.requireCertified(ctx, providerID); err != nil {
		return Service{}, err
	}
	active := true
	return s.patch(ctx, id, UpdateInput{IsActive: &active})
}

// Unpublish no necesita certificación.
func (s *Catalog) Unpublish(ctx context.Context, id int64) (Service, error) {
	inactive := false
	return s.Update(ctx, id, UpdateInput{IsActive: &inactive})
}

func (s *Catalog) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrInvalidInput
	}
	return s.api.Delete(ctx, fmt.Sprintf("/services/%d/", id))
}

func (s *Catalog) requireCertified(ctx context.Context, providerID int64) error {
	if providerID <= 0 {
		return ErrInvalidInput
	}
	if s.certs == nil {
		return ErrNotCertified
	}
	ok, err := s.certs.HasApproved(ctx, providerID)
	if err != nil {
		return fmt.Errorf("check certifications: %w", err)
	}
	if !ok {
		return ErrNotCertified
	}
	return nil
}
