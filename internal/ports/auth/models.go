package auth

import "time"

// Claims representa la información extraída del token.
type Claims struct {
	UserID int64
	Email  string
	Role   string
}

// TokenPair es lo que devuelve el login.
type TokenPair struct {
	Access    string
	Refresh   string
	ExpiresAt time.Time
}
