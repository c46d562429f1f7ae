package auth

import "context"

// AuthVerifier verifica un token y devuelve claims o error.
type AuthVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}

// TokenIssuer firma tokens para unos claims.
type TokenIssuer interface {
	Issue(c Claims) (TokenPair, error)
	// Refresh valida un refresh token y emite un access nuevo.
	Refresh(ctx context.Context, refresh string) (TokenPair, error)
}
