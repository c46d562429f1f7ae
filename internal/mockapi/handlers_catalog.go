package mockapi

import (
	"net/http"
	"net/url"
	"strings"

	"petcare-client/internal/domain/certifications"
	"petcare-client/internal/domain/pets"
	"petcare-client/internal/domain/services"
	"petcare-client/internal/middleware"
)

func (h *handlers) listSpecies(w http.ResponseWriter, r *http.Request) {
	list := h.store.Species()
	h.list.write(w, list, len(list))
}

func (h *handlers) listBreeds(w http.ResponseWriter, r *http.Request) {
	list := h.store.Breeds(queryID(r, "species"))
	h.list.write(w, list, len(list))
}

func (h *handlers) listPets(w http.ResponseWriter, r *http.Request) {
	list := h.store.Pets(middleware.UserID(r.Context()))
	if list == nil {
		list = []pets.Pet{}
	}
	h.list.write(w, list, len(list))
}

func (h *handlers) createPet(w http.ResponseWriter, r *http.Request) {
	var in pets.CreateInput
	if !decode(w, r, &in) {
		return
	}
	if strings.TrimSpace(in.Name) == "" {
		writeField(w, "name", "This field is required.")
		return
	}
	if in.Species <= 0 {
		writeField(w, "species", "This field is required.")
		return
	}
	writeJSON(w, http.StatusCreated, h.store.CreatePet(middleware.UserID(r.Context()), in))
}

func (h *handlers) getPet(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	p, err := h.store.PetByID(middleware.UserID(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *handlers) updatePet(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var in pets.UpdateInput
	if !decode(w, r, &in) {
		return
	}
	p, err := h.store.UpdatePet(middleware.UserID(r.Context()), id, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *handlers) deletePet(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.store.DeletePet(middleware.UserID(r.Context()), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) linkPet(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PetID int64  `json:"pet_id"`
		Email string `json:"email"`
	}
	if !decode(w, r, &req) {
		return
	}
	if err := h.store.LinkPet(middleware.UserID(r.Context()), req.PetID, req.Email); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"detail": "Pet linked."})
}

// listServices acepta los filtros que el backend real soporta; el cliente
// igual filtra local.
func (h *handlers) listServices(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	provider := queryID(r, "provider")
	typ := services.Type(strings.ToUpper(q.Get("service_type")))

	out := []services.Service{}
	for _, sv := range h.store.Services() {
		if provider > 0 && sv.Provider != provider {
			continue
		}
		if typ != "" && sv.Type != typ {
			continue
		}
		if isTrue(q, "is_active") && !sv.IsActive {
			continue
		}
		out = append(out, sv)
	}
	h.list.write(w, out, len(out))
}

func isTrue(q url.Values, key string) bool {
	v := strings.ToLower(q.Get(key))
	return v == "true" || v == "1"
}

func (h *handlers) createService(w http.ResponseWriter, r *http.Request) {
	var in services.CreateInput
	if !decode(w, r, &in) {
		return
	}
	if strings.TrimSpace(in.Name) == "" {
		writeField(w, "name", "This field is required.")
		return
	}
	if _, ok := services.ParseType(string(in.Type)); !ok {
		writeField(w, "service_type", "Invalid service type.")
		return
	}
	if in.Price <= 0 {
		writeField(w, "price", "Ensure this value is greater than 0.")
		return
	}
	sv, err := h.store.CreateService(middleware.UserID(r.Context()), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sv)
}

func (h *handlers) getService(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	sv, ok := h.store.Service(id)
	if !ok {
		writeDetail(w, http.StatusNotFound, "Not found.")
		return
	}
	writeJSON(w, http.StatusOK, sv)
}

func (h *handlers) updateService(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var in services.UpdateInput
	if !decode(w, r, &in) {
		return
	}
	sv, err := h.store.UpdateService(middleware.UserID(r.Context()), id, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sv)
}

func (h *handlers) deleteService(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.store.DeleteService(middleware.UserID(r.Context()), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) listCertifications(w http.ResponseWriter, r *http.Request) {
	list := h.store.Certifications(queryID(r, "provider"))
	if list == nil {
		list = []certifications.Certification{}
	}
	h.list.write(w, list, len(list))
}

func (h *handlers) createCertification(w http.ResponseWriter, r *http.Request) {
	var in certifications.CreateInput
	if !decode(w, r, &in) {
		return
	}
	if strings.TrimSpace(in.Title) == "" {
		writeField(w, "title", "This field is required.")
		return
	}
	if u, err := url.Parse(strings.TrimSpace(in.Document)); err != nil || !u.IsAbs() {
		writeField(w, "document", "Enter a valid URL.")
		return
	}
	writeJSON(w, http.StatusCreated, h.store.CreateCertification(middleware.UserID(r.Context()), in))
}
