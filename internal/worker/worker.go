// Package worker holds the background pipelines fed by the job queue.
package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"filesmanager/internal/domain"
	"filesmanager/internal/queue"
)

type FileLoader interface {
	GetByID(ctx context.Context, owner, id int64) (*domain.FileRecord, error)
}

type UserLoader interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

type BlobStore interface {
	Read(ctx context.Context, path string) ([]byte, error)
	WriteDerivative(ctx context.Context, base string, width int, data []byte) error
}

// Register binds both pipelines to their queues.
func Register(c queue.Consumer, thumbnails *ThumbnailProcessor, welcome *WelcomeProcessor) {
	c.Process(domain.FileQueue, thumbnails.Handle)
	c.Process(domain.UserQueue, welcome.Handle)
}

func decode(payload []byte, v any) error {
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	return nil
}
