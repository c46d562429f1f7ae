package notifications

import (
	"errors"
	"time"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("notification not found")
)

type Type string

const (
	TypeBooking Type = "BOOKING"
	TypePayment Type = "PAYMENT"
	TypeReview  Type = "REVIEW"
	TypeChat    Type = "CHAT"
)

type Notification struct {
	ID              int64     `json:"id"`
	Type            Type      `json:"notification_type"`
	Title           string    `json:"title"`
	Message         string    `json:"message"`
	IsRead          bool      `json:"is_read"`
	RelatedObjectID *int64    `json:"related_object_id,omitempty"`
	CreatedAt       time.Time `json:"created_at,omitzero"`
}

// Target es a dónde lleva tocar la notificación.
type Target struct {
	View string // booking | payment | review | chat
	ID   int64
}

// DeepLink resuelve el destino. ok=false si no hay objeto relacionado o el
// tipo no es navegable.
func DeepLink(n Notification) (Target, bool) {
	if n.RelatedObjectID == nil || *n.RelatedObjectID <= 0 {
		return Target{}, false
	}
	id := *n.RelatedObjectID
	switch n.Type {
	case TypeBooking:
		return Target{View: "booking", ID: id}, true
	case TypePayment:
		return Target{View: "payment", ID: id}, true
	case TypeReview:
		return Target{View: "review", ID: id}, true
	case TypeChat:
		return Target{View: "chat", ID: id}, true
	default:
		return Target{}, false
	}
}

// CountUnread es el conteo local (fallback sin endpoint de conteo).
func CountUnread(list []Notification) int {
	n := 0
	for _, it := range list {
		if !it.IsRead {
			n++
		}
	}
	return n
}
