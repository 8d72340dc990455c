package worker

import (
	"context"
	"errors"
	"fmt"

	"filesmanager/internal/domain"
	"filesmanager/internal/repository"

	"go.uber.org/zap"
)

type WelcomeProcessor struct {
	users UserLoader
	log   *zap.Logger
}

func NewWelcomeProcessor(users UserLoader, log *zap.Logger) *WelcomeProcessor {
	return &WelcomeProcessor{users: users, log: log}
}

func (p *WelcomeProcessor) Handle(ctx context.Context, payload []byte) error {
	var job domain.WelcomeJob
	err := decode(payload, &job)
	if err == nil {
		err = p.greet(ctx, job)
	}
	if err != nil {
		p.log.Error("welcome job failed", zap.Int64("user_id", job.UserID), zap.Error(err))
		return err
	}
	return nil
}

func (p *WelcomeProcessor) greet(ctx context.Context, job domain.WelcomeJob) error {
	if job.UserID == 0 {
		return errors.New("missing userId")
	}

	user, err := p.users.GetByID(ctx, job.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return errors.New("user not found")
	}
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}

	p.log.Info(fmt.Sprintf("Welcome %s!", user.Email), zap.Int64("user_id", user.ID))
	return nil
}
