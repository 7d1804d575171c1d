package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"

	"github.com/marloe/showbill/internal/domain"
)

const redisKeyPrefix = "showbill:session:"

// RedisStore keeps sessions in Redis so they survive restarts. Expiry rides on
// the key TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to Redis and verifies the connection before use.
func NewRedisStore(addr, password string, db int, ttl time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisStore{client: client, ttl: ttl}, nil
}

var _ Store = (*RedisStore)(nil)

type redisSession struct {
	UserID       string    `json:"user_id"`
	Username     string    `json:"username"`
	PasswordHash []byte    `json:"password_hash"`
	UserCreated  time.Time `json:"user_created_at"`
	CreatedAt    time.Time `json:"created_at"`
}

// Create mints a fresh UUID token and stores the session blob under it.
func (s *RedisStore) Create(ctx context.Context, user domain.User) (string, error) {
	token := uuid.NewString()
	blob, err := json.Marshal(redisSession{
		UserID:       user.ID,
		Username:     user.Username,
		PasswordHash: user.PasswordHash,
		UserCreated:  user.CreatedAt,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return "", fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, redisKeyPrefix+token, blob, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return token, nil
}

// Get returns the live session for token.
func (s *RedisStore) Get(ctx context.Context, token string) (*Session, error) {
	data, err := s.client.Get(ctx, redisKeyPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	var rec redisSession
	if err := json.Unmarshal(data, &rec); err != nil {
		// Corrupt blob: treat as invalid rather than surfacing decode detail.
		_, _ = s.client.Del(ctx, redisKeyPrefix+token).Result()
		return nil, ErrInvalidToken
	}
	return &Session{
		Token: token,
		User: domain.User{
			ID:           rec.UserID,
			Username:     rec.Username,
			PasswordHash: rec.PasswordHash,
			CreatedAt:    rec.UserCreated,
		},
		CreatedAt: rec.CreatedAt,
	}, nil
}

// Destroy deletes token. Idempotent: deleting an absent key succeeds.
func (s *RedisStore) Destroy(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+token).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Close releases the Redis connection.
func (s *RedisStore) Close() {
	_ = s.client.Close()
}
