package bookings

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"petcare-client/internal/domain/users"
	"petcare-client/internal/platform/httpclient"
	"petcare-client/internal/platform/money"
)

type fakeBackend struct {
	mu        sync.Mutex
	bookings  map[int64]Booking
	created   []CreateRequest
	quoteReqs []quoteRequest
	patches   []string

	// gate, si no es nil, bloquea /payments/calculate/ hasta que se cierre.
	arrived chan struct{}
	gate    chan struct{}
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{bookings: map[int64]Booking{}}
}

func (f *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /payments/calculate/", func(w http.ResponseWriter, r *http.Request) {
		var in quoteRequest
		_ = json.NewDecoder(r.Body).Decode(&in)
		if f.gate != nil {
			f.arrived <- struct{}{}
			<-f.gate
		}
		f.mu.Lock()
		f.quoteReqs = append(f.quoteReqs, in)
		f.mu.Unlock()

		base := 5000.0 * float64(in.Quantity)
		writeJSON(w, http.StatusOK, map[string]any{
			"base_price":           strconv.FormatFloat(base, 'f', 2, 64),
			"rate_percentage":      10,
			"client_total_payment": base * 1.1,
		})
	})
	mux.HandleFunc("POST /bookings/", func(w http.ResponseWriter, r *http.Request) {
		var in CreateRequest
		_ = json.NewDecoder(r.Body).Decode(&in)
		f.mu.Lock()
		defer f.mu.Unlock()
		f.created = append(f.created, in)
		b := Booking{
			ID: int64(len(f.created)), Service: in.Service, Owner: 10, Provider: 20, Pets: in.Pets,
			StartDate: in.StartDate, EndDate: in.EndDate, Status: StatusPending, TotalPrice: in.TotalPrice,
		}
		f.bookings[b.ID] = b
		writeJSON(w, http.StatusCreated, b)
	})
	mux.HandleFunc("GET /bookings/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		list := make([]Booking, 0, len(f.bookings))
		for i := int64(1); i <= int64(len(f.bookings))+10; i++ {
			if b, ok := f.bookings[i]; ok {
				list = append(list, b)
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{"results": list})
	})
	mux.HandleFunc("GET /bookings/{id}/", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
		f.mu.Lock()
		defer f.mu.Unlock()
		b, ok := f.bookings[id]
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]any{"detail": "No encontrado."})
			return
		}
		writeJSON(w, http.StatusOK, b)
	})
	mux.HandleFunc("PATCH /bookings/{id}/", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
		var in struct {
			Status Status `json:"status"`
		}
		_ = json.NewDecoder(r.Body).Decode(&in)
		f.mu.Lock()
		defer f.mu.Unlock()
		b := f.bookings[id]
		b.Status = in.Status
		f.bookings[id] = b
		f.patches = append(f.patches, string(in.Status))
		writeJSON(w, http.StatusOK, b)
	})
	mux.HandleFunc("POST /payments/create-preference/{id}/", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") == "2" {
			writeJSON(w, http.StatusOK, map[string]any{"payment_url": "https://pay.example/2"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"init_point": "https://checkout.example/" + r.PathValue("id")})
	})
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newTestService(t *testing.T, f *fakeBackend) *Service {
	t.Helper()
	ts := httptest.NewServer(f.handler())
	t.Cleanup(ts.Close)
	api, err := httpclient.New(httpclient.Options{BaseURL: ts.URL})
	if err != nil {
		t.Fatalf("httpclient: %v", err)
	}
	return NewService(api, nil)
}

func TestFlow_WalkExampleSubmitsQuotedTotal(t *testing.T) {
	f := newFakeBackend()
	svc := newTestService(t, f)
	ctx := context.Background()

	flow := NewFlow(svc, walk)
	flow.SetPets([]int64{7})
	flow.SetDates(NewDate(2026, time.March, 1), Date{})

	if _, err := flow.Submit(ctx); !errors.Is(err, ErrNoQuote) {
		t.Fatalf("submit before quote: expected ErrNoQuote, got %v", err)
	}

	q, err := flow.RefreshQuote(ctx)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if !money.Equal(q.BasePrice, 5000) || !money.Equal(q.PlatformFee, 500) || !money.Equal(q.Total, 5500) {
		t.Fatalf("unexpected quote %+v", q)
	}
	if !flow.State().CanSubmit {
		t.Fatalf("flow should allow submit")
	}

	b, err := flow.Submit(ctx)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !money.Equal(b.TotalPrice, 5500) {
		t.Fatalf("expected total 5500, got %s", b.TotalPrice)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.quoteReqs[0].ServiceID != 1 || f.quoteReqs[0].Quantity != 1 {
		t.Fatalf("unexpected quote request %+v", f.quoteReqs[0])
	}
	if len(f.created) != 1 || !money.Equal(f.created[0].TotalPrice, 5500) {
		t.Fatalf("unexpected create %+v", f.created)
	}
}

func TestFlow_RepeatedPetsAreOneSelection(t *testing.T) {
	f := newFakeBackend()
	svc := newTestService(t, f)
	ctx := context.Background()

	flow := NewFlow(svc, walk)
	flow.SetPets([]int64{7, 7})
	flow.SetDates(NewDate(2026, time.March, 1), Date{})
	if _, err := flow.RefreshQuote(ctx); err != nil {
		t.Fatalf("quote: %v", err)
	}
	if _, err := flow.Submit(ctx); err != nil {
		t.Fatalf("submit: %v", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.quoteReqs[0].Quantity != 1 {
		t.Fatalf("expected quantity 1, got %d", f.quoteReqs[0].Quantity)
	}
	if len(f.created) != 1 || len(f.created[0].Pets) != 1 || f.created[0].Pets[0] != 7 {
		t.Fatalf("unexpected create %+v", f.created)
	}
}

func TestFlow_InputChangeInvalidatesQuote(t *testing.T) {
	f := newFakeBackend()
	svc := newTestService(t, f)
	ctx := context.Background()

	flow := NewFlow(svc, boarding)
	flow.SetPets([]int64{1, 2})
	flow.SetDates(NewDate(2026, time.March, 1), NewDate(2026, time.March, 4))
	if _, err := flow.RefreshQuote(ctx); err != nil {
		t.Fatalf("quote: %v", err)
	}

	flow.SetDates(NewDate(2026, time.March, 1), NewDate(2026, time.March, 5))
	if flow.State().CanSubmit {
		t.Fatalf("changed dates must block submit")
	}
	if _, err := flow.Submit(ctx); !errors.Is(err, ErrNoQuote) {
		t.Fatalf("expected ErrNoQuote, got %v", err)
	}

	q, err := flow.RefreshQuote(ctx)
	if err != nil {
		t.Fatalf("requote: %v", err)
	}
	if q.Quantity != 8 {
		t.Fatalf("expected 2 pets x 4 nights = 8 units, got %d", q.Quantity)
	}
}

func TestFlow_StaleQuoteIsDiscarded(t *testing.T) {
	f := newFakeBackend()
	f.arrived = make(chan struct{})
	f.gate = make(chan struct{})
	svc := newTestService(t, f)

	flow := NewFlow(svc, walk)
	flow.SetPets([]int64{1})

	errc := make(chan error, 1)
	go func() {
		_, err := flow.RefreshQuote(context.Background())
		errc <- err
	}()

	<-f.arrived
	flow.SetPets([]int64{1, 2})
	close(f.gate)

	if err := <-errc; !errors.Is(err, ErrStaleQuote) {
		t.Fatalf("expected ErrStaleQuote, got %v", err)
	}
	st := flow.State()
	if st.Quote != nil || st.CanSubmit {
		t.Fatalf("stale quote must not be kept: %+v", st)
	}
}

func TestFlow_ValidationBeforeRequest(t *testing.T) {
	f := newFakeBackend()
	svc := newTestService(t, f)

	flow := NewFlow(svc, boarding)
	flow.SetPets([]int64{1})
	flow.SetDates(NewDate(2026, time.March, 3), NewDate(2026, time.March, 3))

	_, err := flow.RefreshQuote(context.Background())
	if httpclient.Classify(err) != httpclient.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if flow.State().Error == "" {
		t.Fatalf("quote error should be recorded for the view")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.quoteReqs) != 0 {
		t.Fatalf("no request expected")
	}
}

func TestApply_ProviderRejectsPending(t *testing.T) {
	f := newFakeBackend()
	f.bookings[1] = Booking{ID: 1, Owner: 10, Provider: 20, Status: StatusPending}
	svc := newTestService(t, f)
	ctx := context.Background()

	b, err := svc.Apply(ctx, 1, 20, ActionReject)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if b.Status != StatusRejected {
		t.Fatalf("expected REJECTED, got %s", b.Status)
	}
	if got := AvailableActions(b, 10); len(got) != 0 {
		t.Fatalf("owner has actions after reject: %v", got)
	}

	if _, err := svc.Apply(ctx, 1, 10, ActionCancel); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("cancel after reject: expected ErrInvalidTransition, got %v", err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.patches) != 1 {
		t.Fatalf("expected one PATCH, got %v", f.patches)
	}
}

func TestList_FiltersByActiveRole(t *testing.T) {
	f := newFakeBackend()
	f.bookings[1] = Booking{ID: 1, Owner: 10, Provider: 20, Status: StatusPending}
	f.bookings[2] = Booking{ID: 2, Owner: 20, Provider: 30, Status: StatusConfirmed}
	f.bookings[3] = Booking{ID: 3, Owner: 40, Provider: 20, Status: StatusConfirmed}
	svc := newTestService(t, f)
	ctx := context.Background()

	asProvider, err := svc.List(ctx, users.User{ID: 20, Role: users.RoleProvider}, ListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(asProvider) != 2 || asProvider[0].ID != 1 || asProvider[1].ID != 3 {
		t.Fatalf("unexpected provider list %+v", asProvider)
	}

	asOwner, err := svc.List(ctx, users.User{ID: 20, Role: users.RoleOwner}, ListFilter{Status: StatusConfirmed})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(asOwner) != 1 || asOwner[0].ID != 2 {
		t.Fatalf("unexpected owner list %+v", asOwner)
	}
}

func TestPaymentLink_FallsBackToPaymentURL(t *testing.T) {
	svc := newTestService(t, newFakeBackend())
	ctx := context.Background()

	link, err := svc.PaymentLink(ctx, 1)
	if err != nil || link != "https://checkout.example/1" {
		t.Fatalf("unexpected link %q (err=%v)", link, err)
	}
	link, err = svc.PaymentLink(ctx, 2)
	if err != nil || link != "https://pay.example/2" {
		t.Fatalf("unexpected fallback link %q (err=%v)", link, err)
	}
}

func TestCanPay(t *testing.T) {
	b := Booking{Owner: 10, Provider: 20, Status: StatusConfirmed}
	if !CanPay(b, 10) || CanPay(b, 20) {
		t.Fatalf("only the owner pays")
	}
	b.Status = StatusPending
	if CanPay(b, 10) {
		t.Fatalf("pending bookings cannot be paid")
	}
}

func TestExport_WritesWorkbook(t *testing.T) {
	list := []Booking{
		{ID: 1, Service: 1, Owner: 10, Provider: 20, Pets: []int64{7}, StartDate: NewDate(2026, time.March, 1),
			EndDate: NewDate(2026, time.March, 1), Status: StatusCompleted, BasePrice: 5000, PlatformFee: 500, TotalPrice: 5500},
		{ID: 2, Service: 2, Owner: 10, Provider: 20, Pets: []int64{7, 8}, Status: StatusCancelled, TotalPrice: 100},
	}
	names := Names{
		Services: map[int64]string{1: "Paseo"},
		Users:    map[int64]string{10: "Ana", 20: "Beto"},
		Pets:     map[int64]string{7: "Milo"},
	}

	var buf bytes.Buffer
	if err := Export(&buf, list, names); err != nil {
		t.Fatalf("export: %v", err)
	}

	x, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer x.Close()

	checks := map[string]string{
		"A1": "ID",
		"B2": "Paseo",
		"B3": "#2",
		"C2": "Ana",
		"E3": "Milo, #8",
		"F2": "2026-03-01",
		"H2": "Completada",
		"H4": "Total completadas",
		"K4": "5500",
	}
	for cell, want := range checks {
		got, err := x.GetCellValue(exportSheet, cell)
		if err != nil {
			t.Fatalf("cell %s: %v", cell, err)
		}
		if got != want {
			t.Errorf("cell %s: expected %q, got %q", cell, want, got)
		}
	}
}
