package indexing

import (
	"context"
	"errors"
	"log"
	"time"

	"jobmate/search-service/internal/model"
	"jobmate/search-service/internal/queue"
)

// EventConsumer feeds candidate-changed events from a durable stream into
// the Pipeline. An event is acked only once its job is enqueued; transient
// failures leave it pending for the reclaim sweep.
type EventConsumer struct {
	source   Source[model.CandidateRecord]
	pipeline *Pipeline
	batch    int64
	block    time.Duration
	minIdle  time.Duration
}

// NewEventConsumer returns a consumer reclaiming events idle for minIdle.
func NewEventConsumer(source Source[model.CandidateRecord], pipeline *Pipeline, minIdle time.Duration) *EventConsumer {
	return &EventConsumer{
		source:   source,
		pipeline: pipeline,
		batch:    32,
		block:    5 * time.Second,
		minIdle:  minIdle,
	}
}

// Run consumes events until ctx is cancelled.
func (c *EventConsumer) Run(ctx context.Context) {
	log.Println("[events] Candidate event consumer started")
	defer log.Println("[events] Candidate event consumer stopped")

	for ctx.Err() == nil {
		deliveries, err := c.source.Read(ctx, c.batch, c.block)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("[events] Read error: %v", err)
			sleep(ctx, time.Second)
			continue
		}
		for _, d := range deliveries {
			c.Handle(ctx, d)
		}
	}
}

// ReclaimStale re-handles events left pending longer than minIdle.
func (c *EventConsumer) ReclaimStale(ctx context.Context) (int, error) {
	deliveries, err := c.source.Claim(ctx, c.minIdle, c.batch)
	for _, d := range deliveries {
		c.Handle(ctx, d)
	}
	return len(deliveries), err
}

// Handle processes one event delivery.
func (c *EventConsumer) Handle(ctx context.Context, d queue.Delivery[model.CandidateRecord]) {
	if d.Err != nil {
		c.reject(ctx, d.Message, d.Err)
		return
	}
	if _, err := c.pipeline.HandleCandidateChanged(ctx, d.Value); err != nil {
		if errors.Is(err, ErrInvalidEvent) {
			c.reject(ctx, d.Message, err)
			return
		}
		log.Printf("[events] Event %s for candidate %s not enqueued, will retry: %v", d.ID, d.Value.ID, err)
		return
	}
	if err := c.source.Ack(ctx, d.ID); err != nil {
		log.Printf("[events] Ack %s failed: %v", d.ID, err)
	}
}

func (c *EventConsumer) reject(ctx context.Context, msg queue.Message, cause error) {
	log.Printf("[events] Rejecting event %s: %v", msg.ID, cause)
	if err := c.source.DeadLetter(ctx, msg, cause.Error()); err != nil {
		log.Printf("[events] Dead-letter %s failed: %v", msg.ID, err)
		return
	}
	if err := c.source.Ack(ctx, msg.ID); err != nil {
		log.Printf("[events] Ack %s failed: %v", msg.ID, err)
	}
}
