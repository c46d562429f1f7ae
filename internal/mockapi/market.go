package mockapi

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"petcare-client/internal/domain/bookings"
	"petcare-client/internal/domain/chat"
	"petcare-client/internal/domain/notifications"
	"petcare-client/internal/domain/reviews"
	"petcare-client/internal/domain/services"
	"petcare-client/internal/platform/money"
)

var (
	errPriceMismatch = errors.New("total_price does not match the current price")
	errBadPets       = errors.New("pets must belong to the requester")
	errBadDates      = errors.New("end_date must not be before start_date")
	errInactive      = errors.New("service is not active")
	errNotPayable    = errors.New("only confirmed bookings can be paid")
	errNotReviewable = errors.New("booking is not completed")
	errBadTarget     = errors.New("review target does not match the booking")
)

type QuoteResult struct {
	BasePrice          money.Amount `json:"base_price"`
	RatePercentage     money.Amount `json:"rate_percentage"`
	PlatformFee        money.Amount `json:"platform_fee"`
	ClientTotalPayment money.Amount `json:"client_total_payment"`
}

func (s *Store) quoteLocked(sv *services.Service, qty int) QuoteResult {
	base := money.Amount(float64(sv.Price) * float64(max(1, qty))).Round()
	fee := money.Percent(base, s.rate)
	return QuoteResult{
		BasePrice:          base,
		RatePercentage:     money.Amount(s.rate),
		PlatformFee:        fee,
		ClientTotalPayment: (base + fee).Round(),
	}
}

func (s *Store) Quote(serviceID int64, qty int) (QuoteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sv, ok := s.services[serviceID]
	if !ok {
		return QuoteResult{}, errNotFound
	}
	return s.quoteLocked(sv, qty), nil
}

// unitsFor replica la regla del cliente: por noche multiplica noches.
func unitsFor(sv *services.Service, pets int, start, end bookings.Date) int {
	u := max(1, pets)
	if sv.Type.PerNight() {
		u *= max(1, start.NightsUntil(end))
	}
	return u
}

func (s *Store) CreateBooking(owner int64, req bookings.CreateRequest) (bookings.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sv, ok := s.services[req.Service]
	if !ok {
		return bookings.Booking{}, errNotFound
	}
	if !sv.IsActive {
		return bookings.Booking{}, errInactive
	}
	if len(req.Pets) == 0 {
		return bookings.Booking{}, errBadPets
	}
	for _, id := range req.Pets {
		p, ok := s.pets[id]
		if !ok || !s.canSeePet(p, owner) {
			return bookings.Booking{}, errBadPets
		}
	}
	end := req.EndDate
	if end.IsZero() {
		end = req.StartDate
	}
	if end.Before(req.StartDate.Time) || (sv.Type.PerNight() && !end.After(req.StartDate.Time)) {
		return bookings.Booking{}, errBadDates
	}

	q := s.quoteLocked(sv, unitsFor(sv, len(req.Pets), req.StartDate, end))
	if req.TotalPrice != 0 && !money.Equal(req.TotalPrice, q.ClientTotalPayment) {
		return bookings.Booking{}, errPriceMismatch
	}

	b := bookings.Booking{
		ID:          s.nextID(),
		Service:     sv.ID,
		Owner:       owner,
		Provider:    sv.Provider,
		Pets:        slices.Clone(req.Pets),
		StartDate:   req.StartDate,
		EndDate:     end,
		Status:      bookings.StatusPending,
		Notes:       strings.TrimSpace(req.Notes),
		BasePrice:   q.BasePrice,
		PlatformFee: q.PlatformFee,
		TotalPrice:  q.ClientTotalPayment,
	}
	s.bookings[b.ID] = &b
	s.notifyLocked(b.Provider, notifications.TypeBooking, b.ID, "Nueva reserva", fmt.Sprintf("Reserva de %s para el %s", sv.Name, b.StartDate))
	return b, nil
}

func (s *Store) Bookings(user int64, status bookings.Status) []bookings.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []bookings.Booking{}
	for _, b := range sorted(s.bookings) {
		if b.Owner != user && b.Provider != user {
			continue
		}
		if status != "" && b.Status != status {
			continue
		}
		out = append(out, b)
	}
	return out
}

func (s *Store) Booking(user, id int64) (bookings.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return bookings.Booking{}, errNotFound
	}
	if b.Owner != user && b.Provider != user {
		return bookings.Booking{}, errForbidden
	}
	return *b, nil
}

// actionTo es la acción que lleva a st (cada estado destino tiene una sola).
func actionTo(st bookings.Status) (bookings.Action, bool) {
	for _, a := range []bookings.Action{
		bookings.ActionConfirm, bookings.ActionReject, bookings.ActionStart,
		bookings.ActionComplete, bookings.ActionCancel,
	} {
		if a.Target() == st {
			return a, true
		}
	}
	return "", false
}

func (s *Store) SetBookingStatus(user, id int64, to bookings.Status) (bookings.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return bookings.Booking{}, errNotFound
	}
	a, ok := actionTo(to)
	if !ok {
		return bookings.Booking{}, bookings.ErrInvalidTransition
	}
	if _, err := bookings.CheckAction(*b, user, a); err != nil {
		return bookings.Booking{}, err
	}
	b.Status = to

	other := b.Owner
	if user == b.Owner {
		other = b.Provider
	}
	s.notifyLocked(other, notifications.TypeBooking, b.ID, "Reserva actualizada", "Estado: "+to.Label())
	return *b, nil
}

func (s *Store) DeleteBooking(user, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return errNotFound
	}
	if b.Owner != user {
		return errForbidden
	}
	if b.Status != bookings.StatusPending && !b.Status.Terminal() {
		return bookings.ErrInvalidTransition
	}
	delete(s.bookings, id)
	return nil
}

// PaymentPreference simula la preferencia de pago del gateway.
func (s *Store) PaymentPreference(user, id int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return "", errNotFound
	}
	if !bookings.CanPay(*b, user) {
		if b.Owner != user {
			return "", errForbidden
		}
		return "", errNotPayable
	}
	s.notifyLocked(b.Provider, notifications.TypePayment, b.ID, "Pago iniciado", "El cliente inició el pago")
	return fmt.Sprintf("https://payments.example/checkout/%d", b.ID), nil
}

// ---- reseñas ----

func (s *Store) Reviews() []reviews.Review {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sorted(s.reviews)
}

func (s *Store) CreateReview(user int64, in reviews.CreateRequest) (reviews.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[in.Booking]
	if !ok {
		return reviews.Review{}, errNotFound
	}
	if b.Status != bookings.StatusCompleted {
		return reviews.Review{}, errNotReviewable
	}
	kinds, err := reviews.KindsFor(*b, user)
	if err != nil {
		return reviews.Review{}, errForbidden
	}
	key := reviews.KindKey{Kind: in.Kind, Pet: in.Pet}
	if in.Kind != reviews.KindProviderToPet {
		key.Pet = 0
	}
	if !slices.Contains(kinds, key) {
		return reviews.Review{}, errBadTarget
	}
	if !targetMatches(*b, in) {
		return reviews.Review{}, errBadTarget
	}
	for _, r := range s.reviews {
		if r.Booking == in.Booking && r.Kind == in.Kind && r.Pet == in.Pet && r.Author == user {
			return reviews.Review{}, errDuplicate
		}
	}

	r := reviews.Review{
		ID:        s.nextID(),
		Booking:   in.Booking,
		Kind:      in.Kind,
		Author:    user,
		Service:   in.Service,
		Provider:  in.Provider,
		Client:    in.Client,
		Pet:       in.Pet,
		Rating:    in.Rating,
		Comment:   strings.TrimSpace(in.Comment),
		CreatedAt: s.now().UTC(),
	}
	s.reviews[r.ID] = &r

	other := b.Provider
	if user == b.Provider {
		other = b.Owner
	}
	s.notifyLocked(other, notifications.TypeReview, r.ID, "Nueva reseña", fmt.Sprintf("%d estrellas", r.Rating))
	return r, nil
}

func targetMatches(b bookings.Booking, in reviews.CreateRequest) bool {
	switch in.Kind {
	case reviews.KindClientToService:
		return in.Service == b.Service
	case reviews.KindClientToProvider:
		return in.Provider == b.Provider
	case reviews.KindProviderToClient:
		return in.Client == b.Owner
	case reviews.KindProviderToPet:
		return slices.Contains(b.Pets, in.Pet)
	default:
		return false
	}
}

// ---- chat ----

func (s *Store) Rooms(user int64) []chat.Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []chat.Room{}
	for _, r := range sorted(s.rooms) {
		if r.Owner == user || r.Provider == user {
			out = append(out, r)
		}
	}
	return out
}

func (s *Store) roomFor(user, id int64) (*chat.Room, error) {
	r, ok := s.rooms[id]
	if !ok {
		return nil, errNotFound
	}
	if r.Owner != user && r.Provider != user {
		return nil, errForbidden
	}
	return r, nil
}

// OpenRoom devuelve la sala existente del par (owner, provider) o crea una.
func (s *Store) OpenRoom(owner, provider, booking int64) chat.Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rooms {
		if r.Owner == owner && r.Provider == provider && !r.IsSupport {
			return *r
		}
	}
	r := chat.Room{ID: s.nextID(), Owner: owner, Provider: provider, Booking: booking, UpdatedAt: s.now().UTC()}
	s.rooms[r.ID] = &r
	return r
}

func (s *Store) DeleteRoom(user, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.roomFor(user, id); err != nil {
		return err
	}
	delete(s.rooms, id)
	for mid, m := range s.messages {
		if m.Room == id {
			delete(s.messages, mid)
		}
	}
	return nil
}

func (s *Store) Messages(user, room int64) ([]chat.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.roomFor(user, room); err != nil {
		return nil, err
	}
	out := []chat.Message{}
	for _, m := range sorted(s.messages) {
		if m.Room == room {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *Store) SendMessage(user int64, in chat.SendRequest) (chat.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.roomFor(user, in.Room)
	if err != nil {
		return chat.Message{}, err
	}
	m := chat.Message{
		ID:             s.nextID(),
		Room:           r.ID,
		Sender:         user,
		Content:        strings.TrimSpace(in.Content),
		AttachmentURL:  strings.TrimSpace(in.AttachmentURL),
		AttachmentType: in.AttachmentType,
		CreatedAt:      s.now().UTC(),
	}
	s.messages[m.ID] = &m
	r.LastMessage = m.Content
	r.UpdatedAt = m.CreatedAt

	other := r.Provider
	if user == r.Provider {
		other = r.Owner
	}
	s.notifyLocked(other, notifications.TypeChat, r.ID, "Nuevo mensaje", m.Content)
	return m, nil
}

// CreateTicket abre una sala de soporte con el primer mensaje.
func (s *Store) CreateTicket(user int64, in chat.TicketRequest) chat.Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now().UTC()
	r := chat.Room{ID: s.nextID(), Owner: user, IsSupport: true, LastMessage: in.Message, UpdatedAt: now}
	s.rooms[r.ID] = &r
	m := chat.Message{
		ID:        s.nextID(),
		Room:      r.ID,
		Sender:    user,
		Content:   strings.TrimSpace(in.Subject + "\n\n" + in.Message),
		CreatedAt: now,
	}
	s.messages[m.ID] = &m
	return r
}

// SendMessageAs es un atajo del seed y los tests.
func (s *Store) SendMessageAs(user, room int64, content string) (chat.Message, error) {
	return s.SendMessage(user, chat.SendRequest{Room: room, Content: content})
}
