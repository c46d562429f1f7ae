package bookings

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"petcare-client/internal/domain/users"
	"petcare-client/internal/platform/httpclient"
	"petcare-client/internal/platform/logger"
)

type Service struct {
	api *httpclient.Client
	log logger.Logger
}

func NewService(api *httpclient.Client, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{api: api, log: log.With(map[string]any{"flow": "bookings"})}
}

// Quote pide el precio al servidor para las entradas dadas.
func (s *Service) Quote(ctx context.Context, in QuoteInput) (Quote, error) {
	if err := in.Validate(); err != nil {
		return Quote{}, err
	}
	qty := in.Units()

	var resp quoteResponse
	err := s.api.Post(ctx, "/payments/calculate/", quoteRequest{ServiceID: in.Service.ID, Quantity: qty}, &resp)
	if err != nil {
		return Quote{}, fmt.Errorf("quote: %w", err)
	}
	return resp.toQuote(in.Key(), qty)
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (Booking, error) {
	if req.Service <= 0 || len(req.Pets) == 0 {
		return Booking{}, ErrInvalidInput
	}
	if req.StartDate.IsZero() {
		return Booking{}, httpclient.Invalid("start_date", "required")
	}
	if req.EndDate.IsZero() {
		req.EndDate = req.StartDate
	}
	req.Notes = strings.TrimSpace(req.Notes)

	var out Booking
	if err := s.api.Post(ctx, "/bookings/", req, &out); err != nil {
		return Booking{}, fmt.Errorf("create booking: %w", err)
	}
	s.log.Info("booking created", map[string]any{"booking_id": out.ID, "total": req.TotalPrice.String()})
	return out, nil
}

type ListFilter struct {
	Status Status
}

// List trae las reservas y deja las del rol activo del usuario: como dueño
// las que pidió, como prestador las que recibe.
func (s *Service) List(ctx context.Context, u users.User, f ListFilter) ([]Booking, error) {
	q := url.Values{}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	list, err := httpclient.GetList[Booking](ctx, s.api, "/bookings/", q)
	if err != nil {
		return nil, err
	}

	out := make([]Booking, 0, len(list))
	for _, b := range list {
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		switch {
		case u.IsProvider() && b.Provider == u.ID:
		case u.IsOwner() && b.Owner == u.ID:
		default:
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id int64) (Booking, error) {
	if id <= 0 {
		return Booking{}, ErrInvalidInput
	}
	var out Booking
	if err := s.api.Get(ctx, fmt.Sprintf("/bookings/%d/", id), nil, &out); err != nil {
		return Booking{}, err
	}
	return out, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrInvalidInput
	}
	return s.api.Delete(ctx, fmt.Sprintf("/bookings/%d/", id))
}

// Apply ejecuta la acción de userID sobre la reserva. La reserva se vuelve
// a pedir antes de validar: el estado en pantalla puede estar viejo.
func (s *Service) Apply(ctx context.Context, bookingID, userID int64, a Action) (Booking, error) {
	b, err := s.Get(ctx, bookingID)
	if err != nil {
		return Booking{}, err
	}
	to, err := CheckAction(b, userID, a)
	if err != nil {
		return Booking{}, err
	}

	var out Booking
	err = s.api.Patch(ctx, fmt.Sprintf("/bookings/%d/", b.ID), map[string]Status{"status": to}, &out)
	if err != nil {
		return Booking{}, fmt.Errorf("%s booking: %w", a, err)
	}
	if out.ID == 0 {
		out = b
		out.Status = to
	}
	s.log.Info("booking status changed", map[string]any{
		"booking_id": b.ID,
		"from":       string(b.Status),
		"to":         string(to),
	})
	return out, nil
}

type preferenceResponse struct {
	InitPoint  string `json:"init_point"`
	PaymentURL string `json:"payment_url"`
}

// PaymentLink crea la preferencia de pago y devuelve la URL de checkout.
func (s *Service) PaymentLink(ctx context.Context, bookingID int64) (string, error) {
	if bookingID <= 0 {
		return "", ErrInvalidInput
	}
	var resp preferenceResponse
	if err := s.api.Post(ctx, fmt.Sprintf("/payments/create-preference/%d/", bookingID), nil, &resp); err != nil {
		return "", fmt.Errorf("payment link: %w", err)
	}
	link := strings.TrimSpace(resp.InitPoint)
	if link == "" {
		link = strings.TrimSpace(resp.PaymentURL)
	}
	if link == "" {
		return "", errors.New("payment link: response has no checkout url")
	}
	return link, nil
}

// CanPay: solo el dueño paga, y solo una reserva confirmada.
func CanPay(b Booking, userID int64) bool {
	p, err := PartyOf(b, userID)
	return err == nil && p == PartyOwner && b.Status == StatusConfirmed
}
