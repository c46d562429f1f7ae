package jwtauth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"petcare-client/internal/ports/auth"
)

var (
	ErrTokenEmpty    = errors.New("token is empty")
	ErrNotConfigured = errors.New("jwt secret not configured")
	ErrWrongKind     = errors.New("wrong token kind")
)

const (
	kindAccess  = "access"
	kindRefresh = "refresh"
)

type Config struct {
	Secret string

	AccessTTL  time.Duration // default 1h
	RefreshTTL time.Duration // default 7d
}

type tokenClaims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`
	Kind   string `json:"token_type"`
	jwt.RegisteredClaims
}

// Signer implementa auth.AuthVerifier y auth.TokenIssuer con HS256.
type Signer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewSigner(cfg Config) (*Signer, error) {
	secret := strings.TrimSpace(cfg.Secret)
	if secret == "" {
		return nil, ErrNotConfigured
	}
	s := &Signer{
		secret:     []byte(secret),
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		now:        time.Now,
	}
	if s.accessTTL <= 0 {
		s.accessTTL = time.Hour
	}
	if s.refreshTTL <= 0 {
		s.refreshTTL = 7 * 24 * time.Hour
	}
	return s, nil
}

func (s *Signer) Issue(c auth.Claims) (auth.TokenPair, error) {
	if c.UserID <= 0 {
		return auth.TokenPair{}, errors.New("claims missing user id")
	}
	now := s.now()
	access, err := s.sign(c, kindAccess, now, s.accessTTL)
	if err != nil {
		return auth.TokenPair{}, err
	}
	refresh, err := s.sign(c, kindRefresh, now, s.refreshTTL)
	if err != nil {
		return auth.TokenPair{}, err
	}
	return auth.TokenPair{Access: access, Refresh: refresh, ExpiresAt: now.Add(s.accessTTL)}, nil
}

func (s *Signer) Refresh(ctx context.Context, refresh string) (auth.TokenPair, error) {
	c, err := s.parse(refresh, kindRefresh)
	if err != nil {
		return auth.TokenPair{}, err
	}
	now := s.now()
	access, err := s.sign(c, kindAccess, now, s.accessTTL)
	if err != nil {
		return auth.TokenPair{}, err
	}
	return auth.TokenPair{Access: access, Refresh: refresh, ExpiresAt: now.Add(s.accessTTL)}, nil
}

func (s *Signer) Verify(ctx context.Context, token string) (auth.Claims, error) {
	return s.parse(token, kindAccess)
}

func (s *Signer) sign(c auth.Claims, kind string, now time.Time, ttl time.Duration) (string, error) {
	claims := tokenClaims{
		UserID: c.UserID,
		Email:  c.Email,
		Role:   c.Role,
		Kind:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(c.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Signer) parse(token, kind string) (auth.Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrTokenEmpty
	}

	var tc tokenClaims
	_, err := jwt.ParseWithClaims(token, &tc, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return auth.Claims{}, fmt.Errorf("jwt verify failed: %w", err)
	}
	if tc.Kind != kind {
		return auth.Claims{}, ErrWrongKind
	}
	if tc.UserID <= 0 {
		return auth.Claims{}, errors.New("jwt claims missing user id")
	}
	return auth.Claims{UserID: tc.UserID, Email: tc.Email, Role: tc.Role}, nil
}
