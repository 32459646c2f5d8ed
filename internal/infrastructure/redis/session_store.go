// Package redis guarda las sesiones (jti del JWT) en Redis para poder revocarlas con logout.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/vanstock-api/internal/application/ports"
	"github.com/jhoicas/vanstock-api/pkg/config"
)

var _ ports.SessionStore = (*SessionStore)(nil)

const (
	keyPrefix     = "vanstock:session:"
	userKeyPrefix = "vanstock:user-sessions:"
)

// NewClient crea el cliente y verifica la conexión con un ping.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return client, nil
}

// SessionStore sesiones con TTL igual al vencimiento del token.
type SessionStore struct {
	client *redis.Client
	now    func() time.Time
}

// NewSessionStore construye el almacén sobre un cliente ya conectado.
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client, now: time.Now}
}

type sessionPayload struct {
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *SessionStore) Save(ctx context.Context, sess ports.Session) error {
	ttl := time.Duration(0)
	if !sess.ExpiresAt.IsZero() {
		ttl = sess.ExpiresAt.Sub(s.now())
		if ttl <= 0 {
			return nil
		}
	}
	data, err := json.Marshal(sessionPayload{UserID: sess.UserID, Role: sess.Role, ExpiresAt: sess.ExpiresAt})
	if err != nil {
		return err
	}
	// índice por usuario para DeleteByUser; vive lo mismo que la última sesión guardada
	userKey := userKeyPrefix + sess.UserID
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, keyPrefix+sess.ID, data, ttl)
		pipe.SAdd(ctx, userKey, sess.ID)
		if ttl > 0 {
			pipe.Expire(ctx, userKey, ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis: guardar sesión: %w", err)
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, id string) (*ports.Session, error) {
	data, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ports.ErrSessionNotFound
		}
		return nil, fmt.Errorf("redis: leer sesión: %w", err)
	}
	var p sessionPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("redis: sesión corrupta: %w", err)
	}
	return &ports.Session{ID: id, UserID: p.UserID, Role: p.Role, ExpiresAt: p.ExpiresAt}, nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, keyPrefix+id).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("redis: borrar sesión: %w", err)
	}
	return nil
}

func (s *SessionStore) DeleteByUser(ctx context.Context, userID string) error {
	userKey := userKeyPrefix + userID
	ids, err := s.client.SMembers(ctx, userKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("redis: sesiones del usuario: %w", err)
	}
	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, keyPrefix+id)
	}
	keys = append(keys, userKey)
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis: borrar sesiones del usuario: %w", err)
	}
	return nil
}
