package reviews

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrNotParticipant = errors.New("only booking participants can review it")
	ErrNotReviewable  = errors.New("booking must be completed before reviewing")
	ErrEmptyBatch     = errors.New("rate at least one item before submitting")
	ErrKindNotAllowed = errors.New("review kind not allowed for this user")
)

// Kind es la dirección de la reseña.
type Kind string

const (
	KindClientToService  Kind = "CLIENT_TO_SERVICE"
	KindClientToProvider Kind = "CLIENT_TO_PROVIDER"
	KindProviderToClient Kind = "PROVIDER_TO_CLIENT"
	KindProviderToPet    Kind = "PROVIDER_TO_PET"
)

// KindKey identifica una entrada del borrador; Pet solo aplica a PROVIDER_TO_PET.
type KindKey struct {
	Kind Kind
	Pet  int64
}

func (k KindKey) String() string {
	if k.Kind == KindProviderToPet {
		return fmt.Sprintf("%s:%d", k.Kind, k.Pet)
	}
	return string(k.Kind)
}

type Entry struct {
	Rating  int
	Comment string
}

const (
	MinRating = 1
	MaxRating = 5
)

type Review struct {
	ID       int64  `json:"id"`
	Booking  int64  `json:"booking"`
	Kind     Kind   `json:"review_type"`
	Author   int64  `json:"author,omitempty"`
	Service  int64  `json:"service,omitempty"`
	Provider int64  `json:"provider,omitempty"`
	Client   int64  `json:"client,omitempty"`
	Pet      int64  `json:"pet,omitempty"`
	Rating   int    `json:"rating"`
	Comment  string `json:"comment"`

	CreatedAt time.Time `json:"created_at,omitzero"`
}

// CreateRequest es el body de POST /reviews/; solo uno de los targets va seteado.
type CreateRequest struct {
	Booking  int64  `json:"booking"`
	Kind     Kind   `json:"review_type"`
	Service  int64  `json:"service,omitempty"`
	Provider int64  `json:"provider,omitempty"`
	Client   int64  `json:"client,omitempty"`
	Pet      int64  `json:"pet,omitempty"`
	Rating   int    `json:"rating"`
	Comment  string `json:"comment,omitempty"`
}

type Filter struct {
	Booking  int64
	Service  int64
	Provider int64
}

// Average promedia ratings válidos; 0 si no hay.
func Average(list []Review) float64 {
	sum, n := 0, 0
	for _, r := range list {
		if r.Rating >= MinRating && r.Rating <= MaxRating {
			sum += r.Rating
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}
