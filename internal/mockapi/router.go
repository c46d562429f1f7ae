package mockapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"petcare-client/internal/domain/reviews"
	"petcare-client/internal/middleware"
	_ "petcare-client/internal/mockapi/docs"
	"petcare-client/internal/platform/logger"
	"petcare-client/internal/ports/auth"
)

type Options struct {
	Store    *Store
	Verifier auth.AuthVerifier // nil = modo dev (X-Debug-User-ID)
	Issuer   auth.TokenIssuer
	Log      logger.Logger

	// RateLimit en requests/s por usuario; 0 = sin límite.
	RateLimit int
	// Registry opcional: si viene, métricas del server y /metrics.
	Registry *prometheus.Registry

	// Variantes del backend real que el cliente tiene que tolerar.
	WrapLists      bool         // listas como {"results": [...]}
	LoginOmitsUser bool         // login sin el objeto user
	NoWhoami       bool         // /users/me/ responde 404
	NoUnreadCount  bool         // sin /notifications/unread_count/
	FailReviewKind reviews.Kind // ese tipo de reseña responde 503
}

type handlers struct {
	store  *Store
	issuer auth.TokenIssuer
	list   lister
	opts   Options
}

func NewRouter(opts Options) http.Handler {
	if opts.Store == nil {
		opts.Store = NewStore()
	}
	if opts.Log == nil {
		opts.Log = logger.Nop()
	}
	h := &handlers{store: opts.Store, issuer: opts.Issuer, list: lister{wrap: opts.WrapLists}, opts: opts}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recover(opts.Log))
	r.Use(middleware.AuthContext(opts.Verifier))
	r.Use(middleware.AccessLog(opts.Log))
	if opts.Registry != nil {
		r.Use(newHTTPMetrics(opts.Registry).handler)
	}
	if opts.RateLimit > 0 {
		r.Use(middleware.NewRateLimiter(opts.RateLimit, opts.RateLimit*2).Handler)
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeDetail(w, http.StatusNotFound, "Not found.")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeDetail(w, http.StatusMethodNotAllowed, "Method not allowed.")
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("doc.json")))
	if opts.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{}))
	}

	// anónimas
	if h.issuer != nil {
		r.Post("/auth/login/", h.login)
		r.Post("/auth/refresh/", h.refresh)
	}
	r.Post("/users/", h.register)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		r.Get("/users/me/", h.me)
		r.Post("/users/switch_role/", h.switchRole)
		r.Get("/users/{id}/", h.getUser)
		r.Patch("/users/{id}/", h.updateUser)

		r.Get("/species/", h.listSpecies)
		r.Get("/breeds/", h.listBreeds)

		r.Get("/pets/", h.listPets)
		r.Post("/pets/", h.createPet)
		r.Post("/pets/link-pet/", h.linkPet)
		r.Get("/pets/{id}/", h.getPet)
		r.Patch("/pets/{id}/", h.updatePet)
		r.Delete("/pets/{id}/", h.deletePet)

		r.Get("/services/", h.listServices)
		r.Post("/services/", h.createService)
		r.Get("/services/{id}/", h.getService)
		r.Patch("/services/{id}/", h.updateService)
		r.Delete("/services/{id}/", h.deleteService)

		r.Get("/certifications/", h.listCertifications)
		r.Post("/certifications/", h.createCertification)

		r.Get("/bookings/", h.listBookings)
		r.Post("/bookings/", h.createBooking)
		r.Get("/bookings/{id}/", h.getBooking)
		r.Patch("/bookings/{id}/", h.updateBooking)
		r.Delete("/bookings/{id}/", h.deleteBooking)

		r.Post("/payments/calculate/", h.quote)
		r.Post("/payments/create-preference/{id}/", h.paymentPreference)

		r.Get("/reviews/", h.listReviews)
		r.Post("/reviews/", h.createReview)

		r.Get("/chat-rooms/", h.listRooms)
		r.Delete("/chat-rooms/{id}/", h.deleteRoom)
		r.Get("/messages/", h.listMessages)
		r.Post("/messages/", h.sendMessage)
		r.Post("/chat/create-ticket/", h.createTicket)

		r.Get("/notifications/", h.listNotifications)
		if !opts.NoUnreadCount {
			r.Get("/notifications/unread_count/", h.unreadCount)
		}
		r.Post("/notifications/mark_all_read/", h.markAllRead)
		r.Post("/notifications/{id}/mark_read/", h.markRead)
	})

	return r
}
