package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

func (o RedisOptions) clientOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{Addr: o.Addr, Password: o.Password, DB: o.DB}
}

// AsynqProducer enqueues jobs onto Redis. The task type equals the queue name.
type AsynqProducer struct {
	client *asynq.Client
}

func NewAsynqProducer(opts RedisOptions) *AsynqProducer {
	return &AsynqProducer{client: asynq.NewClient(opts.clientOpt())}
}

func (p *AsynqProducer) Enqueue(ctx context.Context, queue string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", queue, err)
	}
	task := asynq.NewTask(queue, data)
	if _, err := p.client.EnqueueContext(ctx, task, asynq.Queue(queue), asynq.MaxRetry(0)); err != nil {
		return fmt.Errorf("enqueue %s: %w", queue, err)
	}
	return nil
}

func (p *AsynqProducer) Close() error {
	return p.client.Close()
}

type AsynqConsumer struct {
	opts        RedisOptions
	concurrency int
	log         *zap.Logger
	mux         *asynq.ServeMux
	queues      map[string]int
}

func NewAsynqConsumer(opts RedisOptions, concurrency int, log *zap.Logger) *AsynqConsumer {
	if concurrency < 1 {
		concurrency = 1
	}
	return &AsynqConsumer{
		opts:        opts,
		concurrency: concurrency,
		log:         log,
		mux:         asynq.NewServeMux(),
		queues:      map[string]int{},
	}
}

func (c *AsynqConsumer) Process(queue string, h Handler) {
	c.queues[queue] = 1
	c.mux.HandleFunc(queue, wrapHandler(h))
}

// Run serves registered queues until ctx is done.
func (c *AsynqConsumer) Run(ctx context.Context) error {
	srv := asynq.NewServer(c.opts.clientOpt(), asynq.Config{
		Concurrency: c.concurrency,
		Queues:      c.queues,
		Logger:      c.log.Sugar(),
	})
	if err := srv.Start(c.mux); err != nil {
		return fmt.Errorf("start queue consumer: %w", err)
	}
	<-ctx.Done()
	srv.Shutdown()
	return nil
}

func wrapHandler(h Handler) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		if err := h(ctx, t.Payload()); err != nil {
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return nil
	}
}
