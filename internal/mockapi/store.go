package mockapi

import (
	"cmp"
	"errors"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"petcare-client/internal/domain/bookings"
	"petcare-client/internal/domain/certifications"
	"petcare-client/internal/domain/chat"
	"petcare-client/internal/domain/notifications"
	"petcare-client/internal/domain/pets"
	"petcare-client/internal/domain/reviews"
	"petcare-client/internal/domain/services"
	"petcare-client/internal/domain/users"
)

var (
	errNotFound  = errors.New("not found")
	errForbidden = errors.New("forbidden")
	errDuplicate = errors.New("duplicate")
)

// DefaultRate es el porcentaje de comisión de la plataforma.
const DefaultRate = 10.0

type account struct {
	user users.User
	hash []byte
}

type notification struct {
	user int64
	n    notifications.Notification
}

// Store es el estado completo del backend falso. Un solo mutex: es para
// tests y desarrollo, no para carga.
type Store struct {
	mu  sync.Mutex
	seq int64
	now func() time.Time

	rate float64

	accounts map[int64]*account
	species  []pets.Species
	breeds   []pets.Breed
	pets     map[int64]*pets.Pet
	links    map[int64][]int64 // pet -> usuarios vinculados además del dueño
	services map[int64]*services.Service
	certs    map[int64]*certifications.Certification
	bookings map[int64]*bookings.Booking
	reviews  map[int64]*reviews.Review
	rooms    map[int64]*chat.Room
	messages map[int64]*chat.Message
	notifs   map[int64]*notification
}

func NewStore() *Store {
	return &Store{
		now:      time.Now,
		rate:     DefaultRate,
		accounts: map[int64]*account{},
		pets:     map[int64]*pets.Pet{},
		links:    map[int64][]int64{},
		services: map[int64]*services.Service{},
		certs:    map[int64]*certifications.Certification{},
		bookings: map[int64]*bookings.Booking{},
		reviews:  map[int64]*reviews.Review{},
		rooms:    map[int64]*chat.Room{},
		messages: map[int64]*chat.Message{},
		notifs:   map[int64]*notification{},
	}
}

func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

// sorted devuelve los valores de m ordenados por id.
func sorted[T any](m map[int64]*T) []T {
	out := make([]T, 0, len(m))
	for _, id := range slices.Sorted(maps.Keys(m)) {
		out = append(out, *m[id])
	}
	return out
}

// ---- usuarios ----

// Register crea la cuenta con la contraseña hasheada (bcrypt).
func (s *Store) Register(in users.RegisterInput) (users.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return users.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(strings.TrimSpace(in.Email))
	for _, a := range s.accounts {
		if strings.EqualFold(a.user.Email, email) {
			return users.User{}, errDuplicate
		}
	}

	role := in.Role
	if role == "" {
		role = users.RoleOwner
	}
	u := users.User{
		ID:        s.nextID(),
		Email:     email,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Phone:     strings.TrimSpace(in.Phone),
		Role:      role,
	}
	ensureProfile(&u)
	s.accounts[u.ID] = &account{user: u, hash: hash}
	return u, nil
}

func ensureProfile(u *users.User) {
	switch u.Role {
	case users.RoleOwner:
		if u.OwnerProfile == nil {
			u.OwnerProfile = &users.OwnerProfile{}
		}
	case users.RoleProvider:
		if u.ProviderProfile == nil {
			u.ProviderProfile = &users.ProviderProfile{}
		}
	}
}

// Authenticate compara contra el hash; cualquier fallo es el mismo error.
func (s *Store) Authenticate(email, password string) (users.User, bool) {
	s.mu.Lock()
	var found *account
	for _, a := range s.accounts {
		if strings.EqualFold(a.user.Email, strings.TrimSpace(email)) {
			found = a
			break
		}
	}
	s.mu.Unlock()

	if found == nil {
		return users.User{}, false
	}
	if err := bcrypt.CompareHashAndPassword(found.hash, []byte(password)); err != nil {
		return users.User{}, false
	}
	return s.User(found.user.ID)
}

func (s *Store) User(id int64) (users.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return users.User{}, false
	}
	return a.user, true
}

func (s *Store) userByEmail(email string) (*account, bool) {
	for _, a := range s.accounts {
		if strings.EqualFold(a.user.Email, strings.TrimSpace(email)) {
			return a, true
		}
	}
	return nil, false
}

func (s *Store) UpdateUser(caller, id int64, in users.UpdateInput) (users.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return users.User{}, errNotFound
	}
	if caller != id {
		return users.User{}, errForbidden
	}
	a.user = in.Apply(a.user)
	return a.user, nil
}

func (s *Store) SwitchRole(id int64, role users.Role) (users.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return users.User{}, errNotFound
	}
	a.user.Role = role
	ensureProfile(&a.user)
	return a.user, nil
}

// ---- mascotas ----

func (s *Store) Species() []pets.Species {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.species)
}

func (s *Store) Breeds(species int64) []pets.Breed {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]pets.Breed, 0, len(s.breeds))
	for _, b := range s.breeds {
		if species == 0 || b.Species == species {
			out = append(out, b)
		}
	}
	return out
}

func (s *Store) canSeePet(p *pets.Pet, user int64) bool {
	return p.Owner == user || slices.Contains(s.links[p.ID], user)
}

func (s *Store) Pets(user int64) []pets.Pet {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []pets.Pet
	for _, p := range sorted(s.pets) {
		if s.canSeePet(&p, user) {
			out = append(out, p)
		}
	}
	return out
}

// PetByID lo ve el dueño, un vinculado o el prestador de una reserva con la mascota.
func (s *Store) PetByID(user, id int64) (pets.Pet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pets[id]
	if !ok {
		return pets.Pet{}, errNotFound
	}
	if s.canSeePet(p, user) {
		return *p, nil
	}
	for _, b := range s.bookings {
		if b.Provider == user && slices.Contains(b.Pets, id) {
			return *p, nil
		}
	}
	return pets.Pet{}, errForbidden
}

func (s *Store) CreatePet(owner int64, in pets.CreateInput) pets.Pet {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := pets.Pet{
		ID:                     s.nextID(),
		Owner:                  owner,
		Name:                   strings.TrimSpace(in.Name),
		Species:                in.Species,
		Breed:                  in.Breed,
		Characteristics:        in.Characteristics,
		IsFriendlyWithDogs:     in.IsFriendlyWithDogs,
		IsFriendlyWithCats:     in.IsFriendlyWithCats,
		IsFriendlyWithChildren: in.IsFriendlyWithChildren,
		NeedsMedication:        in.NeedsMedication,
		Photo:                  in.Photo,
	}
	s.pets[p.ID] = &p
	return p
}

func (s *Store) UpdatePet(user, id int64, in pets.UpdateInput) (pets.Pet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pets[id]
	if !ok {
		return pets.Pet{}, errNotFound
	}
	if !s.canSeePet(p, user) {
		return pets.Pet{}, errForbidden
	}
	applyPet(p, in)
	return *p, nil
}

func applyPet(p *pets.Pet, in pets.UpdateInput) {
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Species != nil {
		p.Species = *in.Species
	}
	if in.Breed != nil {
		p.Breed = *in.Breed
	}
	if in.Characteristics != nil {
		p.Characteristics = in.Characteristics
	}
	if in.IsFriendlyWithDogs != nil {
		p.IsFriendlyWithDogs = *in.IsFriendlyWithDogs
	}
	if in.IsFriendlyWithCats != nil {
		p.IsFriendlyWithCats = *in.IsFriendlyWithCats
	}
	if in.IsFriendlyWithChildren != nil {
		p.IsFriendlyWithChildren = *in.IsFriendlyWithChildren
	}
	if in.NeedsMedication != nil {
		p.NeedsMedication = *in.NeedsMedication
	}
	if in.Photo != nil {
		p.Photo = *in.Photo
	}
}

func (s *Store) DeletePet(user, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pets[id]
	if !ok {
		return errNotFound
	}
	if p.Owner != user {
		return errForbidden
	}
	delete(s.pets, id)
	delete(s.links, id)
	return nil
}

// LinkPet comparte la mascota con otra cuenta (por email).
func (s *Store) LinkPet(user, petID int64, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pets[petID]
	if !ok {
		return errNotFound
	}
	if p.Owner != user {
		return errForbidden
	}
	other, ok := s.userByEmail(email)
	if !ok {
		return errNotFound
	}
	if other.user.ID == user || slices.Contains(s.links[petID], other.user.ID) {
		return nil
	}
	s.links[petID] = append(s.links[petID], other.user.ID)
	return nil
}

// ---- certificaciones y servicios ----

func (s *Store) Certifications(provider int64) []certifications.Certification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []certifications.Certification
	for _, c := range sorted(s.certs) {
		if provider == 0 || c.Provider == provider {
			out = append(out, c)
		}
	}
	return out
}

func (s *Store) CreateCertification(provider int64, in certifications.CreateInput) certifications.Certification {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := certifications.Certification{
		ID:       s.nextID(),
		Provider: provider,
		Title:    strings.TrimSpace(in.Title),
		Document: strings.TrimSpace(in.Document),
		Status:   certifications.StatusPending,
	}
	s.certs[c.ID] = &c
	return c
}

// SetCertificationStatus es la "revisión" del admin; solo la usa el seed y los tests.
func (s *Store) SetCertificationStatus(id int64, st certifications.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.certs[id]
	if !ok {
		return errNotFound
	}
	c.Status = st
	return nil
}

func (s *Store) certifiedLocked(provider int64) bool {
	for _, c := range s.certs {
		if c.Provider == provider && c.Status == certifications.StatusApproved {
			return true
		}
	}
	return false
}

func (s *Store) Services() []services.Service {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sorted(s.services)
}

func (s *Store) Service(id int64) (services.Service, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sv, ok := s.services[id]
	if !ok {
		return services.Service{}, false
	}
	return *sv, true
}

var errNotCertified = errors.New("provider has no approved certification")

func (s *Store) CreateService(provider int64, in services.CreateInput) (services.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if in.IsActive && !s.certifiedLocked(provider) {
		return services.Service{}, errNotCertified
	}
	sv := services.Service{
		ID:          s.nextID(),
		Provider:    provider,
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Type:        in.Type,
		Price:       in.Price.Round(),
		IsActive:    in.IsActive,
		Photos:      in.Photos,
	}
	s.services[sv.ID] = &sv
	return sv, nil
}

func (s *Store) UpdateService(user, id int64, in services.UpdateInput) (services.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sv, ok := s.services[id]
	if !ok {
		return services.Service{}, errNotFound
	}
	if sv.Provider != user {
		return services.Service{}, errForbidden
	}
	if in.IsActive != nil && *in.IsActive && !sv.IsActive && !s.certifiedLocked(user) {
		return services.Service{}, errNotCertified
	}
	if in.Name != nil {
		sv.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		sv.Description = strings.TrimSpace(*in.Description)
	}
	if in.Type != nil {
		sv.Type = *in.Type
	}
	if in.Price != nil {
		sv.Price = in.Price.Round()
	}
	if in.IsActive != nil {
		sv.IsActive = *in.IsActive
	}
	if in.Photos != nil {
		sv.Photos = in.Photos
	}
	return *sv, nil
}

func (s *Store) DeleteService(user, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sv, ok := s.services[id]
	if !ok {
		return errNotFound
	}
	if sv.Provider != user {
		return errForbidden
	}
	delete(s.services, id)
	return nil
}

// ---- notificaciones ----

func (s *Store) notifyLocked(user int64, t notifications.Type, related int64, title, msg string) {
	if user <= 0 {
		return
	}
	id := s.nextID()
	n := notifications.Notification{
		ID:        id,
		Type:      t,
		Title:     title,
		Message:   msg,
		CreatedAt: s.now().UTC(),
	}
	if related > 0 {
		n.RelatedObjectID = &related
	}
	s.notifs[id] = &notification{user: user, n: n}
}

func (s *Store) Notifications(user int64) []notifications.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []notifications.Notification{}
	for _, rec := range sorted(s.notifs) {
		if rec.user == user {
			out = append(out, rec.n)
		}
	}
	// más nuevas primero
	slices.SortStableFunc(out, func(a, b notifications.Notification) int { return cmp.Compare(b.ID, a.ID) })
	return out
}

func (s *Store) MarkRead(user, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.notifs[id]
	if !ok || rec.user != user {
		return errNotFound
	}
	rec.n.IsRead = true
	return nil
}

func (s *Store) MarkAllRead(user int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, rec := range s.notifs {
		if rec.user == user && !rec.n.IsRead {
			rec.n.IsRead = true
			n++
		}
	}
	return n
}
