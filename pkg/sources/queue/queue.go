// Package queue consumes domain events pushed onto a redis list and hands them to the dispatcher.
//
// Each list item is a JSON object {"event": "EXAM_SUBMITTED", "payload": {...}}.
package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	redis "github.com/redis/go-redis/v9"
)

const (
	DefaultQueue = "classflow:events"

	pollTimeout = time.Second
	retryDelay  = time.Second
)

var ErrQueueRequired = errors.New("queue name is required")

// Popper is the part of the redis client the consumer uses.
type Popper interface {
	BLPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd
}

type Dispatcher interface {
	TriggerWorkflowsByEvent(ctx context.Context, name string, payload map[string]any) ([]string, error)
}

// Message is one queued domain event.
type Message struct {
	Event   string         `json:"event"`
	Payload map[string]any `json:"payload"`
}

type Source struct {
	client     Popper
	queue      string
	dispatcher Dispatcher
	logger     *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewSource(client Popper, queue string, dispatcher Dispatcher, logger *slog.Logger) (*Source, error) {
	if strings.TrimSpace(queue) == "" {
		return nil, ErrQueueRequired
	}

	return &Source{
		client:     client,
		queue:      queue,
		dispatcher: dispatcher,
		logger:     logger.With("module", "queue_source", "queue", queue),
	}, nil
}

// Connect opens a redis client from a redis:// URL and checks it answers.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()

		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

// Start consumes the queue in the background until Stop is called or ctx ends.
func (s *Source) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	s.logger.InfoContext(ctx, "Starting queue consumer")

	s.wg.Add(1)

	go s.consume(ctx)
}

func (s *Source) Stop() {
	if s.cancel != nil {
		s.cancel()
	}

	s.wg.Wait()
	s.logger.Info("Queue consumer stopped")
}

func (s *Source) consume(ctx context.Context) {
	defer s.wg.Done()

	for ctx.Err() == nil {
		if err := s.processMessage(ctx); err != nil && ctx.Err() == nil {
			s.logger.ErrorContext(ctx, "Error processing message", "error", err)

			select {
			case <-ctx.Done():
			case <-time.After(retryDelay):
			}
		}
	}
}

func (s *Source) processMessage(ctx context.Context) error {
	result, err := s.client.BLPop(ctx, pollTimeout, s.queue).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}

		return fmt.Errorf("failed to pop message from queue: %w", err)
	}

	if len(result) < 2 {
		return nil
	}

	var msg Message
	if err := json.Unmarshal([]byte(result[1]), &msg); err != nil {
		s.logger.WarnContext(ctx, "Dropping malformed queue message", "message", result[1], "error", err)

		return nil
	}

	if msg.Event == "" {
		s.logger.WarnContext(ctx, "Dropping queue message without event name", "message", result[1])

		return nil
	}

	started, err := s.dispatcher.TriggerWorkflowsByEvent(ctx, msg.Event, msg.Payload)
	if err != nil {
		return fmt.Errorf("dispatch %s: %w", msg.Event, err)
	}

	s.logger.DebugContext(ctx, "Queue message dispatched", "event_name", msg.Event, "executions", started)

	return nil
}
