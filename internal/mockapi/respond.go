package mockapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"petcare-client/internal/domain/bookings"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeDetail usa la forma {"detail": "..."} de los errores del backend real.
func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// writeField usa la forma {"campo": ["mensaje"]}.
func writeField(w http.ResponseWriter, field, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string][]string{field: {msg}})
}

type lister struct {
	wrap bool
}

// list responde un array o, con wrap, la forma paginada {"count","results"}.
func (l lister) write(w http.ResponseWriter, items any, n int) {
	if l.wrap {
		writeJSON(w, http.StatusOK, map[string]any{"count": n, "next": nil, "previous": nil, "results": items})
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeDetail(w, http.StatusBadRequest, "JSON parse error")
		return false
	}
	return true
}

func idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeDetail(w, http.StatusNotFound, "Not found.")
		return 0, false
	}
	return id, true
}

func queryID(r *http.Request, key string) int64 {
	id, _ := strconv.ParseInt(r.URL.Query().Get(key), 10, 64)
	return id
}

// writeError traduce los errores del store a la respuesta HTTP.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errNotFound):
		writeDetail(w, http.StatusNotFound, "Not found.")
	case errors.Is(err, errForbidden), errors.Is(err, bookings.ErrNotParticipant):
		writeDetail(w, http.StatusForbidden, "You do not have permission to perform this action.")
	case errors.Is(err, errNotCertified):
		writeDetail(w, http.StatusForbidden, "An approved certification is required to publish services.")
	case errors.Is(err, bookings.ErrNotAllowed):
		writeDetail(w, http.StatusForbidden, "This party cannot perform that status change.")
	case errors.Is(err, bookings.ErrInvalidTransition):
		writeField(w, "status", "Invalid status transition.")
	case errors.Is(err, errDuplicate):
		writeJSON(w, http.StatusBadRequest, map[string][]string{"non_field_errors": {"This record already exists."}})
	case errors.Is(err, errPriceMismatch):
		writeField(w, "total_price", "Price changed, request a new quote.")
	case errors.Is(err, errBadPets):
		writeField(w, "pets", "Select at least one of your pets.")
	case errors.Is(err, errBadDates):
		writeField(w, "end_date", "End date must be after start date.")
	case errors.Is(err, errInactive):
		writeField(w, "service", "Service is not available.")
	case errors.Is(err, errNotPayable):
		writeDetail(w, http.StatusBadRequest, "Only confirmed bookings can be paid.")
	case errors.Is(err, errNotReviewable):
		writeDetail(w, http.StatusBadRequest, "Booking must be completed before reviewing.")
	case errors.Is(err, errBadTarget):
		writeDetail(w, http.StatusBadRequest, "Review target does not match this booking.")
	default:
		writeDetail(w, http.StatusInternalServerError, "internal error")
	}
}
