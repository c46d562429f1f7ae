package mockapi

import (
	"net/http"
	"strings"

	"petcare-client/internal/domain/bookings"
	"petcare-client/internal/domain/chat"
	"petcare-client/internal/domain/reviews"
	"petcare-client/internal/middleware"
)

func (h *handlers) quote(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ServiceID int64 `json:"service_id"`
		Quantity  int   `json:"quantity"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.Quantity <= 0 {
		writeField(w, "quantity", "Ensure this value is greater than or equal to 1.")
		return
	}
	q, err := h.store.Quote(req.ServiceID, req.Quantity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *handlers) paymentPreference(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	link, err := h.store.PaymentPreference(middleware.UserID(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"init_point": link})
}

func (h *handlers) listBookings(w http.ResponseWriter, r *http.Request) {
	status := bookings.Status(strings.ToUpper(r.URL.Query().Get("status")))
	list := h.store.Bookings(middleware.UserID(r.Context()), status)
	h.list.write(w, list, len(list))
}

func (h *handlers) createBooking(w http.ResponseWriter, r *http.Request) {
	var req bookings.CreateRequest
	if !decode(w, r, &req) {
		return
	}
	if req.StartDate.IsZero() {
		writeField(w, "start_date", "This field is required.")
		return
	}
	b, err := h.store.CreateBooking(middleware.UserID(r.Context()), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (h *handlers) getBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	b, err := h.store.Booking(middleware.UserID(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *handlers) updateBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req struct {
		Status bookings.Status `json:"status"`
	}
	if !decode(w, r, &req) {
		return
	}
	if !req.Status.Valid() {
		writeField(w, "status", "Invalid status.")
		return
	}
	b, err := h.store.SetBookingStatus(middleware.UserID(r.Context()), id, req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *handlers) deleteBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.store.DeleteBooking(middleware.UserID(r.Context()), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) listReviews(w http.ResponseWriter, r *http.Request) {
	booking, service, provider := queryID(r, "booking"), queryID(r, "service"), queryID(r, "provider")
	out := []reviews.Review{}
	for _, rv := range h.store.Reviews() {
		if booking > 0 && rv.Booking != booking {
			continue
		}
		if service > 0 && rv.Service != service {
			continue
		}
		if provider > 0 && rv.Provider != provider {
			continue
		}
		out = append(out, rv)
	}
	h.list.write(w, out, len(out))
}

func (h *handlers) createReview(w http.ResponseWriter, r *http.Request) {
	var in reviews.CreateRequest
	if !decode(w, r, &in) {
		return
	}
	if in.Rating < reviews.MinRating || in.Rating > reviews.MaxRating {
		writeField(w, "rating", "Ensure this value is between 1 and 5.")
		return
	}
	if h.opts.FailReviewKind != "" && in.Kind == h.opts.FailReviewKind {
		writeDetail(w, http.StatusServiceUnavailable, "Reviews are temporarily unavailable.")
		return
	}
	rv, err := h.store.CreateReview(middleware.UserID(r.Context()), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rv)
}

func (h *handlers) listRooms(w http.ResponseWriter, r *http.Request) {
	list := h.store.Rooms(middleware.UserID(r.Context()))
	h.list.write(w, list, len(list))
}

func (h *handlers) deleteRoom(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.store.DeleteRoom(middleware.UserID(r.Context()), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) listMessages(w http.ResponseWriter, r *http.Request) {
	room := queryID(r, "room")
	if room <= 0 {
		writeField(w, "room", "This field is required.")
		return
	}
	list, err := h.store.Messages(middleware.UserID(r.Context()), room)
	if err != nil {
		writeError(w, err)
		return
	}
	h.list.write(w, list, len(list))
}

func (h *handlers) sendMessage(w http.ResponseWriter, r *http.Request) {
	var in chat.SendRequest
	if !decode(w, r, &in) {
		return
	}
	if strings.TrimSpace(in.Content) == "" && strings.TrimSpace(in.AttachmentURL) == "" {
		writeField(w, "content", "This field may not be blank.")
		return
	}
	m, err := h.store.SendMessage(middleware.UserID(r.Context()), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (h *handlers) createTicket(w http.ResponseWriter, r *http.Request) {
	var in chat.TicketRequest
	if !decode(w, r, &in) {
		return
	}
	if strings.TrimSpace(in.Subject) == "" || strings.TrimSpace(in.Message) == "" {
		writeDetail(w, http.StatusBadRequest, "subject and message are required")
		return
	}
	writeJSON(w, http.StatusCreated, h.store.CreateTicket(middleware.UserID(r.Context()), in))
}

func (h *handlers) listNotifications(w http.ResponseWriter, r *http.Request) {
	list := h.store.Notifications(middleware.UserID(r.Context()))
	h.list.write(w, list, len(list))
}

func (h *handlers) unreadCount(w http.ResponseWriter, r *http.Request) {
	n := 0
	for _, it := range h.store.Notifications(middleware.UserID(r.Context())) {
		if !it.IsRead {
			n++
		}
	}
	writeJSON(w, http.StatusOK, map[string]int{"unread_count": n})
}

func (h *handlers) markRead(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.store.MarkRead(middleware.UserID(r.Context()), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) markAllRead(w http.ResponseWriter, r *http.Request) {
	n := h.store.MarkAllRead(middleware.UserID(r.Context()))
	writeJSON(w, http.StatusOK, map[string]int{"updated": n})
}
