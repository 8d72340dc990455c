package auth

import (
	"context"
	"time"

	"filesmanager/internal/domain"
)

// UserRepository lists the user store methods the auth service needs.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// SessionCache is the expiring key-value store holding live tokens.
type SessionCache interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, bool, error)
	Del(ctx context.Context, key string) (bool, error)
}

type JobProducer interface {
	Enqueue(ctx context.Context, queue string, payload any) error
}
