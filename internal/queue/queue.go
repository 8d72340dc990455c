// Package queue carries background jobs between the API and the pipelines.
// Jobs run at most once: a failed job is recorded as failed and never retried.
package queue

import (
	"context"
)

// Handler processes one job payload. A nil return marks the job completed;
// an error marks it failed with the error text as the reason.
type Handler func(ctx context.Context, payload []byte) error

type Producer interface {
	Enqueue(ctx context.Context, queue string, payload any) error
}

type Consumer interface {
	Process(queue string, h Handler)
	Run(ctx context.Context) error
}
