package users

import "strings"

// Role es el rol activo de la cuenta. Una cuenta puede tener ambos perfiles,
// pero solo un rol activo a la vez.
type Role string

const (
	RoleOwner    Role = "OWNER"
	RoleProvider Role = "PROVIDER"
)

func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleOwner:
		return RoleOwner, true
	case RoleProvider:
		return RoleProvider, true
	default:
		return "", false
	}
}

type OwnerProfile struct {
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
}

type ProviderProfile struct {
	Bio             string  `json:"bio,omitempty"`
	ServiceArea     string  `json:"service_area,omitempty"`
	ExperienceYears int     `json:"experience_years,omitempty"`
	AverageRating   float64 `json:"average_rating,omitempty"`
	IsVerified      bool    `json:"is_verified"`
}

type User struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone,omitempty"`
	Avatar    string `json:"avatar,omitempty"`
	Role      Role   `json:"role"`

	OwnerProfile    *OwnerProfile    `json:"owner_profile,omitempty"`
	ProviderProfile *ProviderProfile `json:"provider_profile,omitempty"`
}

func (u User) IsOwner() bool    { return u.Role == RoleOwner }
func (u User) IsProvider() bool { return u.Role == RoleProvider }

func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// UpdateInput: punteros para PATCH real (nil = no tocar).
type UpdateInput struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Avatar    *string `json:"avatar,omitempty"`
}

// Apply aplica el patch sobre u (sin red). Lo usa la sesión para setUser.
func (in UpdateInput) Apply(u User) User {
	if in.FirstName != nil {
		u.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		u.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.Phone != nil {
		u.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Avatar != nil {
		u.Avatar = strings.TrimSpace(*in.Avatar)
	}
	return u
}

type RegisterInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone,omitempty"`
	Role      Role   `json:"role"`
}
