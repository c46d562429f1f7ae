package services

import (
	"strings"

	"petcare-client/internal/platform/money"
)

// Type es la categoría del servicio.
type Type string

const (
	TypeWalk     Type = "WALK"
	TypeBoarding Type = "BOARDING"
	TypeGrooming Type = "GROOMING"
	TypeVet      Type = "VET"
	TypeDaycare  Type = "DAYCARE"
)

func ParseType(s string) (Type, bool) {
	switch t := Type(strings.ToUpper(strings.TrimSpace(s))); t {
	case TypeWalk, TypeBoarding, TypeGrooming, TypeVet, TypeDaycare:
		return t, true
	default:
		return "", false
	}
}

// PerNight: el precio de BOARDING es por noche; el resto por evento.
func (t Type) PerNight() bool { return t == TypeBoarding }

func (t Type) Unit() string {
	if t.PerNight() {
		return "night"
	}
	return "event"
}

type Service struct {
	ID          int64        `json:"id"`
	Provider    int64        `json:"provider"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Type        Type         `json:"service_type"`
	Price       money.Amount `json:"price"`
	IsActive    bool         `json:"is_active"`
	Photos      []string     `json:"photos,omitempty"`
}

type CreateInput struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Type        Type         `json:"service_type"`
	Price       money.Amount `json:"price"`
	IsActive    bool         `json:"is_active"`
	Photos      []string     `json:"photos,omitempty"`
}

// UpdateInput: punteros para PATCH real (nil = no tocar).
type UpdateInput struct {
	Name        *string       `json:"name,omitempty"`
	Description *string       `json:"description,omitempty"`
	Type        *Type         `json:"service_type,omitempty"`
	Price       *money.Amount `json:"price,omitempty"`
	IsActive    *bool         `json:"is_active,omitempty"`
	Photos      []string      `json:"photos,omitempty"`
}

// Filter es el buscador local del catálogo. Campos en cero no filtran.
type Filter struct {
	Query      string
	Type       Type
	ActiveOnly bool
	MaxPrice   money.Amount
	Provider   int64
}

func (f Filter) Match(s Service) bool {
	if f.Type != "" && s.Type != f.Type {
		return false
	}
	if f.ActiveOnly && !s.IsActive {
		return false
	}
	if f.MaxPrice > 0 && s.Price.Cents() > f.MaxPrice.Cents() {
		return false
	}
	if f.Provider > 0 && s.Provider != f.Provider {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(f.Query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s.Name), q) ||
		strings.Contains(strings.ToLower(s.Description), q)
}

func (f Filter) Apply(list []Service) []Service {
	out := make([]Service, 0, len(list))
	for _, s := range list {
		if f.Match(s) {
			out = append(out, s)
		}
	}
	return out
}
