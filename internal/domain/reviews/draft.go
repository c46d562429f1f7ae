package reviews

import (
	"sort"
	"strings"

	"petcare-client/internal/domain/bookings"
	"petcare-client/internal/platform/httpclient"
)

// KindsFor deriva las reseñas posibles desde la reserva y quién llama.
// Dueño: servicio + prestador. Prestador: cliente + cada mascota.
func KindsFor(b bookings.Booking, callerID int64) ([]KindKey, error) {
	p, err := bookings.PartyOf(b, callerID)
	if err != nil {
		return nil, ErrNotParticipant
	}

	switch p {
	case bookings.PartyOwner:
		return []KindKey{{Kind: KindClientToService}, {Kind: KindClientToProvider}}, nil
	default:
		out := []KindKey{{Kind: KindProviderToClient}}
		for _, pet := range b.Pets {
			out = append(out, KindKey{Kind: KindProviderToPet, Pet: pet})
		}
		return out, nil
	}
}

// Draft es el formulario de reseñas de una reserva.
type Draft struct {
	booking bookings.Booking
	kinds   []KindKey
	entries map[KindKey]Entry
}

func NewDraft(b bookings.Booking, callerID int64) (*Draft, error) {
	kinds, err := KindsFor(b, callerID)
	if err != nil {
		return nil, err
	}
	if b.Status != bookings.StatusCompleted {
		return nil, ErrNotReviewable
	}
	return &Draft{booking: b, kinds: kinds, entries: map[KindKey]Entry{}}, nil
}

func (d *Draft) Booking() bookings.Booking { return d.booking }

func (d *Draft) Kinds() []KindKey {
	return append([]KindKey(nil), d.kinds...)
}

func (d *Draft) allowed(k KindKey) bool {
	for _, a := range d.kinds {
		if a == k {
			return true
		}
	}
	return false
}

// Set guarda rating+comentario de una entrada. Rating 0 la deja sin enviar.
func (d *Draft) Set(k KindKey, rating int, comment string) error {
	if !d.allowed(k) {
		return ErrKindNotAllowed
	}
	if rating != 0 && (rating < MinRating || rating > MaxRating) {
		return httpclient.Invalid("rating", "rating must be between 1 and 5")
	}
	d.entries[k] = Entry{Rating: rating, Comment: strings.TrimSpace(comment)}
	return nil
}

func (d *Draft) Get(k KindKey) Entry { return d.entries[k] }

// Batch arma los requests de las entradas con rating > 0, en el orden de Kinds.
func (d *Draft) Batch() ([]KindKey, []CreateRequest, error) {
	var (
		keys []KindKey
		reqs []CreateRequest
	)
	for _, k := range d.kinds {
		e, ok := d.entries[k]
		if !ok || e.Rating <= 0 {
			continue
		}
		keys = append(keys, k)
		reqs = append(reqs, d.request(k, e))
	}
	if len(reqs) == 0 {
		return nil, nil, ErrEmptyBatch
	}
	return keys, reqs, nil
}

func (d *Draft) request(k KindKey, e Entry) CreateRequest {
	r := CreateRequest{
		Booking: d.booking.ID,
		Kind:    k.Kind,
		Rating:  e.Rating,
		Comment: e.Comment,
	}
	switch k.Kind {
	case KindClientToService:
		r.Service = d.booking.Service
	case KindClientToProvider:
		r.Provider = d.booking.Provider
	case KindProviderToClient:
		r.Client = d.booking.Owner
	case KindProviderToPet:
		r.Pet = k.Pet
	}
	return r
}

func sortKeys(keys []KindKey) {
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
}
