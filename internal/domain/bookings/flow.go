package bookings

import (
	"context"
	"slices"
	"strings"
	"sync"

	"petcare-client/internal/domain/services"
	"petcare-client/internal/platform/httpclient"
)

// Flow es el estado del formulario de reserva. Cada cambio de entradas
// invalida el precio; un quote que vuelve tarde, con entradas que ya
// cambiaron, se descarta con ErrStaleQuote.
type Flow struct {
	svc *Service

	mu       sync.Mutex
	in       QuoteInput
	notes    string
	quote    *Quote
	quoteErr string
}

// FlowState es lo que la vista necesita para dibujarse.
type FlowState struct {
	Units     int
	Quote     *Quote
	Error     string
	CanSubmit bool
}

func NewFlow(svc *Service, s services.Service) *Flow {
	return &Flow{svc: svc, in: QuoteInput{Service: s}}
}

func (f *Flow) SetPets(ids []int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.in.Pets = petSet(ids)
	f.invalidateLocked()
}

func (f *Flow) SetDates(start, end Date) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.in.Start, f.in.End = start, end
	f.invalidateLocked()
}

// SetNotes no afecta el precio.
func (f *Flow) SetNotes(notes string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notes = notes
}

func (f *Flow) invalidateLocked() {
	f.quote = nil
	f.quoteErr = ""
}

func (f *Flow) State() FlowState {
	f.mu.Lock()
	defer f.mu.Unlock()

	st := FlowState{Units: f.in.Units(), Error: f.quoteErr}
	if f.quote != nil {
		q := *f.quote
		st.Quote = &q
	}
	st.CanSubmit = f.quote != nil && f.quote.Key == f.in.Key()
	return st
}

// RefreshQuote pide precio para las entradas actuales. Si mientras vuelve la
// respuesta las entradas cambian, el resultado no se guarda.
func (f *Flow) RefreshQuote(ctx context.Context) (Quote, error) {
	f.mu.Lock()
	in := f.in
	in.Pets = slices.Clone(f.in.Pets)
	f.mu.Unlock()

	q, err := f.svc.Quote(ctx, in)

	f.mu.Lock()
	defer f.mu.Unlock()
	if in.Key() != f.in.Key() {
		return Quote{}, ErrStaleQuote
	}
	if err != nil {
		f.quote = nil
		f.quoteErr = httpclient.UserMessage(err)
		return Quote{}, err
	}
	f.quote = &q
	f.quoteErr = ""
	return q, nil
}

// Submit crea la reserva con el total del quote vigente.
func (f *Flow) Submit(ctx context.Context) (Booking, error) {
	f.mu.Lock()
	in := f.in
	in.Pets = slices.Clone(f.in.Pets)
	notes := strings.TrimSpace(f.notes)
	q := f.quote
	f.mu.Unlock()

	if err := in.Validate(); err != nil {
		return Booking{}, err
	}
	if q == nil {
		return Booking{}, ErrNoQuote
	}
	if q.Key != in.Key() {
		return Booking{}, ErrStaleQuote
	}

	end := in.End
	if !in.Service.Type.PerNight() {
		end = in.Start
	}
	return f.svc.Create(ctx, CreateRequest{
		Service:    in.Service.ID,
		Pets:       in.Pets,
		StartDate:  in.Start,
		EndDate:    end,
		Notes:      notes,
		TotalPrice: q.Total,
	})
}
