package session

import (
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// userIDFromToken lee el claim user_id (o sub) del access token sin verificar
// la firma: la verificación es del server, acá solo buscamos a quién pedir.
func userIDFromToken(token string) (int64, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return 0, false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return 0, false
	}

	for _, key := range []string{"user_id", "sub"} {
		switch v := claims[key].(type) {
		case float64:
			if v > 0 {
				return int64(v), true
			}
		case string:
			if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil && n > 0 {
				return n, true
			}
		}
	}
	return 0, false
}
