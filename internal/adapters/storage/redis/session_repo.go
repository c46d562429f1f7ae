package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"petcare-client/internal/session"
)

type Config struct {
	Address  string
	Password string
	DB       int
	Key      string

	// TTL opcional; 0 = sin vencimiento.
	TTL time.Duration
}

// SessionRepo guarda la sesión como un único valor JSON bajo Key: SET y DEL
// son atómicos, token y usuario nunca quedan separados.
type SessionRepo struct {
	client *goredis.Client
	key    string
	ttl    time.Duration
}

// NewClient crea el cliente Redis a partir de la config.
func NewClient(cfg Config) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// Ping verifica la conexión con Redis.
func Ping(ctx context.Context, client *goredis.Client) error {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

func NewSessionRepo(client *goredis.Client, cfg Config) *SessionRepo {
	key := strings.TrimSpace(cfg.Key)
	if key == "" {
		key = "petcare:session"
	}
	return &SessionRepo{client: client, key: key, ttl: cfg.TTL}
}

func (r *SessionRepo) Load(ctx context.Context) (session.Session, error) {
	b, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return session.Session{}, session.ErrNotFound
		}
		return session.Session{}, err
	}

	var s session.Session
	if err := json.Unmarshal(b, &s); err != nil {
		return session.Session{}, fmt.Errorf("session value corrupt: %w", err)
	}
	return s, nil
}

func (r *SessionRepo) Save(ctx context.Context, s session.Session) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key, b, r.ttl).Err()
}

func (r *SessionRepo) Clear(ctx context.Context) error {
	return r.client.Del(ctx, r.key).Err()
}

func (r *SessionRepo) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}
