package pets

import "strings"

// Species y Breed son lookups del servidor; la mascota guarda solo los ids.
type Species struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Breed struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Species int64  `json:"species"`
}

// Pet representa una mascota de un dueño.
type Pet struct {
	ID      int64  `json:"id"`
	Owner   int64  `json:"owner"`
	Name    string `json:"name"`
	Species int64  `json:"species"`
	Breed   int64  `json:"breed,omitempty"`

	// Characteristics es libre (peso, color, alergias...).
	Characteristics map[string]any `json:"characteristics,omitempty"`

	IsFriendlyWithDogs     bool `json:"is_friendly_with_dogs"`
	IsFriendlyWithCats     bool `json:"is_friendly_with_cats"`
	IsFriendlyWithChildren bool `json:"is_friendly_with_children"`
	NeedsMedication        bool `json:"needs_medication"`

	Photo string `json:"photo,omitempty"`
}

type CreateInput struct {
	Name            string         `json:"name"`
	Species         int64          `json:"species"`
	Breed           int64          `json:"breed,omitempty"`
	Characteristics map[string]any `json:"characteristics,omitempty"`

	IsFriendlyWithDogs     bool `json:"is_friendly_with_dogs"`
	IsFriendlyWithCats     bool `json:"is_friendly_with_cats"`
	IsFriendlyWithChildren bool `json:"is_friendly_with_children"`
	NeedsMedication        bool `json:"needs_medication"`

	Photo string `json:"photo,omitempty"`
}

// UpdateInput: punteros para PATCH real (nil = no tocar).
type UpdateInput struct {
	Name            *string        `json:"name,omitempty"`
	Species         *int64         `json:"species,omitempty"`
	Breed           *int64         `json:"breed,omitempty"`
	Characteristics map[string]any `json:"characteristics,omitempty"`

	IsFriendlyWithDogs     *bool `json:"is_friendly_with_dogs,omitempty"`
	IsFriendlyWithCats     *bool `json:"is_friendly_with_cats,omitempty"`
	IsFriendlyWithChildren *bool `json:"is_friendly_with_children,omitempty"`
	NeedsMedication        *bool `json:"needs_medication,omitempty"`

	Photo *string `json:"photo,omitempty"`
}

// Filter es el buscador local de la lista de mascotas.
type Filter struct {
	Query   string
	Species int64
}

func (f Filter) Match(p Pet) bool {
	if f.Species > 0 && p.Species != f.Species {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(f.Query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Name), q)
}

// Apply filtra sin modificar la lista original.
func (f Filter) Apply(list []Pet) []Pet {
	out := make([]Pet, 0, len(list))
	for _, p := range list {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out
}

// SpeciesName resuelve el nombre de una especie en el lookup; "" si no está.
func SpeciesName(lookup []Species, id int64) string {
	for _, s := range lookup {
		if s.ID == id {
			return s.Name
		}
	}
	return ""
}

// BreedName idem para razas.
func BreedName(lookup []Breed, id int64) string {
	for _, b := range lookup {
		if b.ID == id {
			return b.Name
		}
	}
	return ""
}
