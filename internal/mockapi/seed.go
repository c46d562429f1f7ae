package mockapi

import (
	"fmt"

	"petcare-client/internal/domain/certifications"
	"petcare-client/internal/domain/pets"
	"petcare-client/internal/domain/services"
	"petcare-client/internal/domain/users"
	"petcare-client/internal/platform/money"
)

// Credenciales de las cuentas demo.
const (
	DemoPassword      = "demo1234"
	DemoOwnerEmail    = "ana@petcare.test"
	DemoProviderEmail = "bruno@petcare.test"
	DemoPendingEmail  = "carla@petcare.test"
)

// Demo son los ids que deja el seed, para tests y para el CLI.
type Demo struct {
	Owner, Provider, PendingProvider int64

	Dog, Cat     int64 // especies
	Milo, Luna   int64 // mascotas de Owner
	Walk, Board  int64 // servicios de Provider
	ApprovedCert int64
	PendingCert  int64
	Room         int64
}

// Seed carga datos demo. Se llama sobre un Store vacío.
func Seed(s *Store) (Demo, error) {
	var d Demo

	owner, err := s.Register(users.RegisterInput{
		Email: DemoOwnerEmail, Password: DemoPassword,
		FirstName: "Ana", LastName: "Suárez", Phone: "+54 11 5555 0001",
		Role: users.RoleOwner,
	})
	if err != nil {
		return d, fmt.Errorf("seed owner: %w", err)
	}
	provider, err := s.Register(users.RegisterInput{
		Email: DemoProviderEmail, Password: DemoPassword,
		FirstName: "Bruno", LastName: "Paz", Role: users.RoleProvider,
	})
	if err != nil {
		return d, fmt.Errorf("seed provider: %w", err)
	}
	pending, err := s.Register(users.RegisterInput{
		Email: DemoPendingEmail, Password: DemoPassword,
		FirstName: "Carla", LastName: "Ríos", Role: users.RoleProvider,
	})
	if err != nil {
		return d, fmt.Errorf("seed pending provider: %w", err)
	}
	d.Owner, d.Provider, d.PendingProvider = owner.ID, provider.ID, pending.ID

	s.mu.Lock()
	d.Dog, d.Cat = s.nextID(), s.nextID()
	s.species = []pets.Species{{ID: d.Dog, Name: "Perro"}, {ID: d.Cat, Name: "Gato"}}
	s.breeds = []pets.Breed{
		{ID: s.nextID(), Name: "Mestizo", Species: d.Dog},
		{ID: s.nextID(), Name: "Labrador", Species: d.Dog},
		{ID: s.nextID(), Name: "Siamés", Species: d.Cat},
	}
	labrador := s.breeds[1].ID
	if a, ok := s.accounts[provider.ID]; ok {
		a.user.ProviderProfile.Bio = "Paseos y guardería en Palermo"
		a.user.ProviderProfile.ServiceArea = "CABA"
		a.user.ProviderProfile.ExperienceYears = 5
		a.user.ProviderProfile.IsVerified = true
	}
	s.mu.Unlock()

	d.Milo = s.CreatePet(owner.ID, pets.CreateInput{
		Name: "Milo", Species: d.Dog, Breed: labrador,
		IsFriendlyWithDogs: true, IsFriendlyWithChildren: true,
	}).ID
	d.Luna = s.CreatePet(owner.ID, pets.CreateInput{
		Name: "Luna", Species: d.Cat, NeedsMedication: true,
		Characteristics: map[string]any{"peso_kg": 4.2},
	}).ID

	approved := s.CreateCertification(provider.ID, certifications.CreateInput{
		Title: "Primeros auxilios caninos", Document: "https://files.petcare.test/certs/bruno.pdf",
	})
	if err := s.SetCertificationStatus(approved.ID, certifications.StatusApproved); err != nil {
		return d, err
	}
	d.ApprovedCert = approved.ID
	d.PendingCert = s.CreateCertification(pending.ID, certifications.CreateInput{
		Title: "Peluquería", Document: "https://files.petcare.test/certs/carla.pdf",
	}).ID

	walk, err := s.CreateService(provider.ID, services.CreateInput{
		Name: "Paseo de 1 hora", Description: "Paseo por el barrio, hasta 3 perros",
		Type: services.TypeWalk, Price: money.Amount(5000), IsActive: true,
	})
	if err != nil {
		return d, fmt.Errorf("seed walk: %w", err)
	}
	board, err := s.CreateService(provider.ID, services.CreateInput{
		Name: "Guardería nocturna", Description: "Alojamiento en casa con patio",
		Type: services.TypeBoarding, Price: money.Amount(8000), IsActive: true,
	})
	if err != nil {
		return d, fmt.Errorf("seed board: %w", err)
	}
	// sin certificación aprobada queda inactivo
	if _, err := s.CreateService(pending.ID, services.CreateInput{
		Name: "Baño y corte", Type: services.TypeGrooming, Price: money.Amount(12000),
	}); err != nil {
		return d, fmt.Errorf("seed grooming: %w", err)
	}
	d.Walk, d.Board = walk.ID, board.ID

	d.Room = s.OpenRoom(owner.ID, provider.ID, 0).ID
	if _, err := s.SendMessageAs(provider.ID, d.Room, "¡Hola Ana! Cualquier consulta escribime."); err != nil {
		return d, err
	}
	return d, nil
}
