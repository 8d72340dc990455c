package auth

import (
	"context"
	"errors"
	"strconv"
	"time"

	"filesmanager/internal/domain"
	"filesmanager/internal/pkg/apperr"
	"filesmanager/internal/pkg/validator"
	"filesmanager/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const sessionKeyPrefix = "auth_"

func sessionKey(token string) string {
	return sessionKeyPrefix + token
}

type Options struct {
	SessionTTL     time.Duration
	EnqueueTimeout time.Duration
	HashCost       int
}

// Service owns user accounts and the sessions issued for them. A session is
// an opaque token whose cache entry maps to the user id until it expires or
// is revoked.
type Service struct {
	users    UserRepository
	sessions SessionCache
	jobs     JobProducer
	log      *zap.Logger
	opts     Options
}

func NewService(users UserRepository, sessions SessionCache, jobs JobProducer, log *zap.Logger, opts Options) *Service {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 24 * time.Hour
	}
	if opts.EnqueueTimeout <= 0 {
		opts.EnqueueTimeout = 2 * time.Second
	}
	if opts.HashCost == 0 {
		opts.HashCost = bcrypt.DefaultCost
	}
	return &Service{users: users, sessions: sessions, jobs: jobs, log: log, opts: opts}
}

// Authenticate checks the credentials and issues a new session token.
func (s *Service) Authenticate(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", ErrUnauthorized
	}

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return "", ErrUnauthorized
	}
	if err != nil {
		return "", apperr.Internal(err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", ErrUnauthorized
	}

	token := uuid.NewString()
	if err := s.sessions.Set(ctx, sessionKey(token), strconv.FormatInt(user.ID, 10), s.opts.SessionTTL); err != nil {
		return "", apperr.Internal(err)
	}
	return token, nil
}

// Resolve maps a token to its user id. Resolving does not extend the session.
func (s *Service) Resolve(ctx context.Context, token string) (int64, bool, error) {
	if token == "" {
		return 0, false, nil
	}
	v, ok, err := s.sessions.Get(ctx, sessionKey(token))
	if err != nil {
		return 0, false, apperr.Internal(err)
	}
	if !ok {
		return 0, false, nil
	}
	userID, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		s.log.Warn("malformed session entry", zap.String("value", v))
		return 0, false, nil
	}
	return userID, true, nil
}

// Revoke deletes the session and reports whether it was live.
func (s *Service) Revoke(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	ok, err := s.sessions.Del(ctx, sessionKey(token))
	if err != nil {
		return false, apperr.Internal(err)
	}
	return ok, nil
}

// Register creates a user and queues its welcome job. The job is best
// effort: a failed enqueue is logged and the user is still created.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	if fe := validator.First(req); fe != nil {
		return nil, apperr.InvalidInput(fe.Code(), fe.Message())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.opts.HashCost)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	user := &domain.User{Email: req.Email, PasswordHash: string(hash)}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrUserExists
		}
		return nil, apperr.Internal(err)
	}

	enqueueCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.EnqueueTimeout)
	defer cancel()
	if err := s.jobs.Enqueue(enqueueCtx, domain.UserQueue, domain.WelcomeJob{UserID: user.ID}); err != nil {
		s.log.Warn("enqueue welcome job", zap.Int64("user_id", user.ID), zap.Error(err))
	}
	return user, nil
}

// Me returns the session user. A session whose user is gone is unauthorized.
func (s *Service) Me(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return user, nil
}
