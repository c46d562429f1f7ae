package bookings

import (
	"errors"

	"petcare-client/internal/platform/money"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNotAllowed        = errors.New("action not allowed for this party")
	ErrNotParticipant    = errors.New("user is not a participant of this booking")
	ErrStaleQuote        = errors.New("quote no longer matches the booking inputs")
	ErrNoQuote           = errors.New("a price quote is required before booking")
	ErrInconsistentQuote = errors.New("quote total does not match base price plus fee")
)

// Booking: los campos de precio los calcula siempre el servidor.
type Booking struct {
	ID        int64   `json:"id"`
	Service   int64   `json:"service"`
	Owner     int64   `json:"owner"`
	Provider  int64   `json:"provider"`
	Pets      []int64 `json:"pets"`
	StartDate Date    `json:"start_date"`
	EndDate   Date    `json:"end_date"`
	Status    Status  `json:"status"`
	Notes     string  `json:"notes,omitempty"`

	BasePrice   money.Amount `json:"base_price"`
	PlatformFee money.Amount `json:"platform_fee"`
	TotalPrice  money.Amount `json:"total_price"`
}

// CreateRequest es el body de POST /bookings/. TotalPrice viene del quote.
type CreateRequest struct {
	Service    int64        `json:"service"`
	Pets       []int64      `json:"pets"`
	StartDate  Date         `json:"start_date"`
	EndDate    Date         `json:"end_date"`
	Notes      string       `json:"notes,omitempty"`
	TotalPrice money.Amount `json:"total_price"`
}

// Party es el lado de la reserva que ocupa un usuario.
type Party string

const (
	PartyOwner    Party = "owner"
	PartyProvider Party = "provider"
)

// PartyOf deriva el lado desde la reserva misma, nunca desde la UI.
func PartyOf(b Booking, userID int64) (Party, error) {
	switch {
	case userID > 0 && userID == b.Owner:
		return PartyOwner, nil
	case userID > 0 && userID == b.Provider:
		return PartyProvider, nil
	default:
		return "", ErrNotParticipant
	}
}
