package mockapi_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"petcare-client/internal/adapters/auth/jwtauth"
	mem "petcare-client/internal/adapters/storage/memory"
	"petcare-client/internal/domain/bookings"
	"petcare-client/internal/domain/certifications"
	"petcare-client/internal/domain/chat"
	"petcare-client/internal/domain/notifications"
	"petcare-client/internal/domain/pets"
	"petcare-client/internal/domain/reviews"
	"petcare-client/internal/domain/services"
	"petcare-client/internal/domain/users"
	"petcare-client/internal/mockapi"
	"petcare-client/internal/platform/httpclient"
	"petcare-client/internal/session"
)

type env struct {
	url   string
	store *mockapi.Store
	demo  mockapi.Demo
}

func newEnv(t *testing.T, mut func(*mockapi.Options)) env {
	t.Helper()
	store := mockapi.NewStore()
	demo, err := mockapi.Seed(store)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	signer, err := jwtauth.NewSigner(jwtauth.Config{Secret: "test-secret"})
	if err != nil {
		t.Fatalf("signer: %v", err)
	}
	opts := mockapi.Options{Store: store, Verifier: signer, Issuer: signer}
	if mut != nil {
		mut(&opts)
	}
	ts := httptest.NewServer(mockapi.NewRouter(opts))
	t.Cleanup(ts.Close)
	return env{url: ts.URL, store: store, demo: demo}
}

// client es un "dispositivo": api + sesión propia.
type client struct {
	api  *httpclient.Client
	sess *session.Store
	user users.User
}

func (e env) login(t *testing.T, email string) client {
	t.Helper()
	api, err := httpclient.New(httpclient.Options{BaseURL: e.url})
	if err != nil {
		t.Fatalf("httpclient: %v", err)
	}
	sess := session.NewStore(api, mem.NewSessionRepo(), nil)
	s, err := sess.Login(context.Background(), session.Credentials{Email: email, Password: mockapi.DemoPassword})
	if err != nil {
		t.Fatalf("login %s: %v", email, err)
	}
	return client{api: api, sess: sess, user: s.User}
}

func TestHTTP_EndToEnd_BookingLifecycle(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()

	owner := e.login(t, mockapi.DemoOwnerEmail)
	provider := e.login(t, mockapi.DemoProviderEmail)
	if !owner.user.IsOwner() || !provider.user.IsProvider() {
		t.Fatalf("unexpected roles %s/%s", owner.user.Role, provider.user.Role)
	}

	// 1) Owner busca paseos activos
	catalog := services.NewCatalog(owner.api, certifications.NewService(owner.api))
	found, err := catalog.Search(ctx, services.Filter{Type: services.TypeWalk, ActiveOnly: true})
	if err != nil || len(found) != 1 {
		t.Fatalf("expected 1 walk, got %d (%v)", len(found), err)
	}
	walk := found[0]

	// 2) Cotiza y reserva: 5000 + 10% = 5500
	bk := bookings.NewService(owner.api, nil)
	flow := bookings.NewFlow(bk, walk)
	flow.SetPets([]int64{e.demo.Milo})
	day := bookings.NewDate(2030, time.March, 10)
	flow.SetDates(day, day)
	q, err := flow.RefreshQuote(ctx)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if q.Total.Cents() != 550000 {
		t.Fatalf("expected total 5500, got %s", q.Total)
	}
	b, err := flow.Submit(ctx)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if b.Status != bookings.StatusPending || b.TotalPrice.Cents() != 550000 {
		t.Fatalf("unexpected booking %+v", b)
	}

	// 3) No se puede pagar en PENDING
	if bookings.CanPay(b, owner.user.ID) {
		t.Fatalf("pending booking must not be payable")
	}
	if _, err := bk.PaymentLink(ctx, b.ID); httpclient.Classify(err) != httpclient.KindRejected {
		t.Fatalf("expected rejected payment link, got %v", err)
	}

	// 4) El owner no puede confirmar; el prestador sí
	if _, err := bk.Apply(ctx, b.ID, owner.user.ID, bookings.ActionConfirm); !errors.Is(err, bookings.ErrNotAllowed) {
		t.Fatalf("expected ErrNotAllowed for owner confirm, got %v", err)
	}
	pbk := bookings.NewService(provider.api, nil)
	if b, err = pbk.Apply(ctx, b.ID, provider.user.ID, bookings.ActionConfirm); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	// 5) Link de pago en CONFIRMED
	link, err := bk.PaymentLink(ctx, b.ID)
	if err != nil || !strings.HasPrefix(link, "https://") {
		t.Fatalf("expected payment link, got %q (%v)", link, err)
	}

	// 6) start + complete
	for _, a := range []bookings.Action{bookings.ActionStart, bookings.ActionComplete} {
		if b, err = pbk.Apply(ctx, b.ID, provider.user.ID, a); err != nil {
			t.Fatalf("%s: %v", a, err)
		}
	}
	if b.Status != bookings.StatusCompleted || len(bookings.AvailableActions(b, provider.user.ID)) != 0 {
		t.Fatalf("expected completed with no actions, got %s", b.Status)
	}

	// 7) Listado por rol
	mine, err := bk.List(ctx, owner.user, bookings.ListFilter{Status: bookings.StatusCompleted})
	if err != nil || len(mine) != 1 {
		t.Fatalf("expected 1 completed booking for owner, got %d (%v)", len(mine), err)
	}

	// 8) Reseñas del owner
	rv := reviews.NewService(owner.api, nil)
	d, err := reviews.NewDraft(b, owner.user.ID)
	if err != nil {
		t.Fatalf("draft: %v", err)
	}
	_ = d.Set(reviews.KindKey{Kind: reviews.KindClientToService}, 5, "Excelente")
	_ = d.Set(reviews.KindKey{Kind: reviews.KindClientToProvider}, 4, "")
	res, err := rv.Submit(ctx, d)
	if err != nil || len(res) != 2 {
		t.Fatalf("expected 2 reviews, got %d (%v)", len(res), err)
	}

	// reenviar lo mismo: el server lo rechaza (idempotente por booking+kind)
	if _, err := rv.Submit(ctx, d); err == nil {
		t.Fatalf("expected duplicate batch to fail")
	}

	list, err := rv.List(ctx, reviews.Filter{Booking: b.ID})
	if err != nil || len(list) != 2 {
		t.Fatalf("expected 2 reviews listed, got %d (%v)", len(list), err)
	}

	// 9) El prestador tiene notificaciones (reserva + pago + reseñas)
	ns := notifications.NewService(provider.api)
	n, err := ns.UnreadCount(ctx)
	if err != nil || n < 3 {
		t.Fatalf("expected provider unread >= 3, got %d (%v)", n, err)
	}
	inbox := notifications.NewInbox(ns, nil, nil)
	items, err := inbox.Load(ctx)
	if err != nil {
		t.Fatalf("inbox: %v", err)
	}
	if target, ok := notifications.DeepLink(items[len(items)-1]); !ok || target.View != "booking" || target.ID != b.ID {
		t.Fatalf("oldest notification should link to booking %d, got %+v", b.ID, target)
	}
	if err := inbox.MarkAllRead(ctx); err != nil {
		t.Fatalf("mark all: %v", err)
	}
	if n, _ := ns.UnreadCount(ctx); n != 0 {
		t.Fatalf("expected 0 unread after mark all, got %d", n)
	}
}

func TestHTTP_ProviderRejectsPending(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	owner := e.login(t, mockapi.DemoOwnerEmail)
	provider := e.login(t, mockapi.DemoProviderEmail)

	walk, _ := services.NewCatalog(owner.api, nil).Get(ctx, e.demo.Walk)
	flow := bookings.NewFlow(bookings.NewService(owner.api, nil), walk)
	flow.SetPets([]int64{e.demo.Milo, e.demo.Luna})
	day := bookings.NewDate(2030, time.April, 1)
	flow.SetDates(day, day)
	if _, err := flow.RefreshQuote(ctx); err != nil {
		t.Fatalf("quote: %v", err)
	}
	b, err := flow.Submit(ctx)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if b.TotalPrice.Cents() != 1100000 {
		t.Fatalf("two pets walk should be 11000, got %s", b.TotalPrice)
	}

	b, err = bookings.NewService(provider.api, nil).Apply(ctx, b.ID, provider.user.ID, bookings.ActionReject)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if b.Status != bookings.StatusRejected {
		t.Fatalf("expected REJECTED, got %s", b.Status)
	}
	if len(bookings.AvailableActions(b, provider.user.ID)) != 0 || len(bookings.AvailableActions(b, owner.user.ID)) != 0 {
		t.Fatalf("rejected booking must have no actions")
	}
	if _, err := reviews.NewDraft(b, owner.user.ID); !errors.Is(err, reviews.ErrNotReviewable) {
		t.Fatalf("expected ErrNotReviewable, got %v", err)
	}
}

func TestHTTP_BoardingPerNightAndPriceMismatch(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	owner := e.login(t, mockapi.DemoOwnerEmail)

	board, _ := services.NewCatalog(owner.api, nil).Get(ctx, e.demo.Board)
	bk := bookings.NewService(owner.api, nil)

	in := bookings.QuoteInput{
		Service: board,
		Pets:    []int64{e.demo.Milo},
		Start:   bookings.NewDate(2030, time.May, 1),
		End:     bookings.NewDate(2030, time.May, 4),
	}
	q, err := bk.Quote(ctx, in)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	// 3 noches x 8000 = 24000 + 10%
	if q.Quantity != 3 || q.Total.Cents() != 2640000 {
		t.Fatalf("unexpected quote %+v", q)
	}

	// un total viejo lo rechaza el server con error por campo
	_, err = bk.Create(ctx, bookings.CreateRequest{
		Service:    board.ID,
		Pets:       in.Pets,
		StartDate:  in.Start,
		EndDate:    in.End,
		TotalPrice: 1000,
	})
	if httpclient.Classify(err) != httpclient.KindRejected {
		t.Fatalf("expected rejected, got %v", err)
	}
	if msg := httpclient.UserMessage(err); !strings.Contains(msg, "quote") {
		t.Fatalf("expected field message, got %q", msg)
	}
}

func TestHTTP_ProviderReviewPartialFailure(t *testing.T) {
	e := newEnv(t, func(o *mockapi.Options) { o.FailReviewKind = reviews.KindProviderToPet })
	ctx := context.Background()
	owner := e.login(t, mockapi.DemoOwnerEmail)
	provider := e.login(t, mockapi.DemoProviderEmail)

	b := completedBooking(t, e, owner, provider)

	d, err := reviews.NewDraft(b, provider.user.ID)
	if err != nil {
		t.Fatalf("draft: %v", err)
	}
	if len(d.Kinds()) != 2 {
		t.Fatalf("provider kinds: client + 1 pet, got %v", d.Kinds())
	}
	_ = d.Set(reviews.KindKey{Kind: reviews.KindProviderToClient}, 5, "Puntual")
	_ = d.Set(reviews.KindKey{Kind: reviews.KindProviderToPet, Pet: e.demo.Milo}, 5, "Muy bueno")

	_, err = reviews.NewService(provider.api, nil).Submit(ctx, d)
	var be *reviews.BatchError
	if !errors.As(err, &be) {
		t.Fatalf("expected BatchError, got %v", err)
	}
	if len(be.Succeeded) != 1 || be.Succeeded[0].Kind != reviews.KindProviderToClient {
		t.Fatalf("unexpected succeeded %v", be.Succeeded)
	}
	if keys := reviews.FailedKeys(err); len(keys) != 1 || keys[0].Pet != e.demo.Milo {
		t.Fatalf("unexpected failed %v", keys)
	}
}

func completedBooking(t *testing.T, e env, owner, provider client) bookings.Booking {
	t.Helper()
	ctx := context.Background()
	walk, _ := services.NewCatalog(owner.api, nil).Get(ctx, e.demo.Walk)
	flow := bookings.NewFlow(bookings.NewService(owner.api, nil), walk)
	flow.SetPets([]int64{e.demo.Milo})
	day := bookings.NewDate(2030, time.June, 2)
	flow.SetDates(day, day)
	if _, err := flow.RefreshQuote(ctx); err != nil {
		t.Fatalf("quote: %v", err)
	}
	b, err := flow.Submit(ctx)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	pbk := bookings.NewService(provider.api, nil)
	for _, a := range []bookings.Action{bookings.ActionConfirm, bookings.ActionStart, bookings.ActionComplete} {
		if b, err = pbk.Apply(ctx, b.ID, provider.user.ID, a); err != nil {
			t.Fatalf("%s: %v", a, err)
		}
	}
	return b
}

func TestHTTP_PublishRequiresApprovedCertification(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	pending := e.login(t, mockapi.DemoPendingEmail)

	svc := services.NewCatalog(pending.api, certifications.NewService(pending.api))
	mine, err := svc.Search(ctx, services.Filter{Provider: pending.user.ID})
	if err != nil || len(mine) != 1 || mine[0].IsActive {
		t.Fatalf("expected one inactive service, got %+v (%v)", mine, err)
	}
	if _, err := svc.Publish(ctx, pending.user.ID, mine[0].ID); !errors.Is(err, services.ErrNotCertified) {
		t.Fatalf("expected ErrNotCertified, got %v", err)
	}

	if err := e.store.SetCertificationStatus(e.demo.PendingCert, certifications.StatusApproved); err != nil {
		t.Fatalf("approve: %v", err)
	}
	pub, err := svc.Publish(ctx, pending.user.ID, mine[0].ID)
	if err != nil || !pub.IsActive {
		t.Fatalf("expected published service, got %+v (%v)", pub, err)
	}
}

func TestHTTP_ChatSendAndTicket(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	owner := e.login(t, mockapi.DemoOwnerEmail)

	cs := chat.NewService(owner.api, nil)
	rooms, err := cs.Rooms(ctx)
	if err != nil || len(rooms) != 1 {
		t.Fatalf("expected seeded room, got %d (%v)", len(rooms), err)
	}

	feed := chat.NewFeed(cs, rooms[0].ID, chat.FeedOptions{Interval: time.Hour})
	comp := chat.NewComposer(cs, rooms[0].ID, feed, nil)
	comp.SetText("¿Mañana a las 9?")
	if _, err := comp.Send(ctx); err != nil {
		t.Fatalf("send: %v", err)
	}
	msgs, err := cs.Messages(ctx, rooms[0].ID)
	if err != nil || len(msgs) != 2 || msgs[1].Sender != owner.user.ID {
		t.Fatalf("unexpected messages %+v (%v)", msgs, err)
	}

	room, err := cs.CreateSupportTicket(ctx, "Pago", "No me llegó el link")
	if err != nil || !room.IsSupport {
		t.Fatalf("ticket: %+v (%v)", room, err)
	}

	yes := chat.ConfirmFunc(func(context.Context, string) (bool, error) { return true, nil })
	if err := cs.DeleteRoom(ctx, room.ID, yes); err != nil {
		t.Fatalf("delete room: %v", err)
	}
	if rooms, _ := cs.Rooms(ctx); len(rooms) != 1 {
		t.Fatalf("expected ticket room deleted, got %d rooms", len(rooms))
	}
}

func TestHTTP_PetsCatalog(t *testing.T) {
	e := newEnv(t, func(o *mockapi.Options) { o.WrapLists = true })
	ctx := context.Background()
	owner := e.login(t, mockapi.DemoOwnerEmail)
	ps := pets.NewService(owner.api)

	list, err := ps.List(ctx)
	if err != nil || len(list) != 2 {
		t.Fatalf("expected 2 pets from paginated list, got %d (%v)", len(list), err)
	}
	breeds, err := ps.Breeds(ctx, e.demo.Dog)
	if err != nil || len(breeds) != 2 {
		t.Fatalf("expected 2 dog breeds, got %d (%v)", len(breeds), err)
	}

	p, err := ps.Create(ctx, pets.CreateInput{Name: "Toby", Species: e.demo.Dog})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := ps.Link(ctx, p.ID, mockapi.DemoProviderEmail); err != nil {
		t.Fatalf("link: %v", err)
	}
	provider := e.login(t, mockapi.DemoProviderEmail)
	shared, err := pets.NewService(provider.api).List(ctx)
	if err != nil || len(shared) != 1 || shared[0].ID != p.ID {
		t.Fatalf("linked pet should be visible, got %+v (%v)", shared, err)
	}
	if err := pets.NewService(provider.api).Delete(ctx, p.ID); httpclient.StatusCode(err) != http.StatusForbidden {
		t.Fatalf("linked user must not delete, got %v", err)
	}
}

func TestHTTP_LoginFallbacksAndLegacyCount(t *testing.T) {
	e := newEnv(t, func(o *mockapi.Options) {
		o.LoginOmitsUser = true
		o.NoWhoami = true
		o.NoUnreadCount = true
	})
	ctx := context.Background()

	// sin user en el login ni whoami: el user_id sale del token
	owner := e.login(t, mockapi.DemoOwnerEmail)
	if owner.user.ID != e.demo.Owner || owner.user.Email != mockapi.DemoOwnerEmail {
		t.Fatalf("expected owner resolved from token, got %+v", owner.user)
	}

	// el mensaje del seed dejó una notificación de chat; se cuenta sobre la lista
	n, err := notifications.NewService(owner.api).UnreadCount(ctx)
	if err != nil || n != 1 {
		t.Fatalf("expected legacy count 1, got %d (%v)", n, err)
	}
}

func TestHTTP_SessionRefreshAndLogout(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	owner := e.login(t, mockapi.DemoOwnerEmail)

	if err := owner.sess.RefreshToken(ctx); err != nil {
		t.Fatalf("refresh token: %v", err)
	}
	if _, err := owner.sess.RefreshProfile(ctx); err != nil {
		t.Fatalf("refresh profile: %v", err)
	}
	name := "Ana María"
	u, err := users.NewService(owner.api).Update(ctx, owner.user.ID, users.UpdateInput{FirstName: &name})
	if err != nil || u.FirstName != name {
		t.Fatalf("update: %+v (%v)", u, err)
	}
	sw, err := users.NewService(owner.api).SwitchRole(ctx, users.RoleProvider)
	if err != nil || !sw.IsProvider() || sw.ProviderProfile == nil {
		t.Fatalf("switch role: %+v (%v)", sw, err)
	}

	if err := owner.sess.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := owner.sess.RequireUser(); !errors.Is(err, session.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
	if _, err := pets.NewService(owner.api).List(ctx); !httpclient.IsUnauthorized(err) {
		t.Fatalf("expected 401 after logout, got %v", err)
	}
}

func TestHTTP_RegisterValidation(t *testing.T) {
	e := newEnv(t, nil)
	api, _ := httpclient.New(httpclient.Options{BaseURL: e.url})
	us := users.NewService(api)
	ctx := context.Background()

	_, err := us.Register(ctx, users.RegisterInput{Email: mockapi.DemoOwnerEmail, Password: "longenough", FirstName: "X"})
	if msg := httpclient.UserMessage(err); !strings.Contains(msg, "already exists") {
		t.Fatalf("expected duplicate email message, got %q (%v)", msg, err)
	}
	u, err := us.Register(ctx, users.RegisterInput{Email: "nuevo@petcare.test", Password: "longenough", FirstName: "Nuevo"})
	if err != nil || u.ID == 0 || !u.IsOwner() {
		t.Fatalf("register: %+v (%v)", u, err)
	}
}

func TestHTTP_DevHeaderMetricsAndSwagger(t *testing.T) {
	reg := prometheus.NewRegistry()
	store := mockapi.NewStore()
	demo, _ := mockapi.Seed(store)
	ts := httptest.NewServer(mockapi.NewRouter(mockapi.Options{Store: store, Registry: reg}))
	defer ts.Close()

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/pets/", nil)
	req.Header.Set("X-Debug-User-ID", "1")
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusOK || demo.Owner != 1 {
		t.Fatalf("expected 200 with dev header, got %d", res.StatusCode)
	}

	res, err = http.Get(ts.URL + "/pets/")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without claims, got %d", res.StatusCode)
	}

	res, err = http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	body, _ := io.ReadAll(res.Body)
	res.Body.Close()
	if !strings.Contains(string(body), `petcare_mockapi_requests_total{code="200",method="GET",route="/pets/"}`) {
		t.Fatalf("expected route metric, got:\n%s", body)
	}

	res, err = http.Get(ts.URL + "/swagger/doc.json")
	if err != nil {
		t.Fatalf("swagger: %v", err)
	}
	body, _ = io.ReadAll(res.Body)
	res.Body.Close()
	if res.StatusCode != http.StatusOK || !strings.Contains(string(body), "/payments/calculate/") {
		t.Fatalf("unexpected swagger doc %d", res.StatusCode)
	}
}
