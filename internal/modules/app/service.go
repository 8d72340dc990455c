// Package app serves the health and statistics endpoints.
package app

import (
	"context"

	"filesmanager/internal/pkg/apperr"
)

type Pinger interface {
	IsAlive(ctx context.Context) bool
}

type Counter interface {
	Count(ctx context.Context) (int64, error)
}

type Status struct {
	Redis bool `json:"redis"`
	DB    bool `json:"db"`
}

type Stats struct {
	Users int64 `json:"users"`
	Files int64 `json:"files"`
}

type Service struct {
	cache Pinger
	db    Pinger
	users Counter
	files Counter
}

func NewService(cache, db Pinger, users, files Counter) *Service {
	return &Service{cache: cache, db: db, users: users, files: files}
}

func (s *Service) Status(ctx context.Context) Status {
	return Status{Redis: s.cache.IsAlive(ctx), DB: s.db.IsAlive(ctx)}
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	users, err := s.users.Count(ctx)
	if err != nil {
		return Stats{}, apperr.Internal(err)
	}
	files, err := s.files.Count(ctx)
	if err != nil {
		return Stats{}, apperr.Internal(err)
	}
	return Stats{Users: users, Files: files}, nil
}
