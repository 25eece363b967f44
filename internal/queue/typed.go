package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Delivery is a decoded message. Err is set when the payload could not be
// decoded into T; such deliveries should be dead-lettered.
type Delivery[T any] struct {
	Message
	Value T
	Err   error
}

// Queue is a JSON-typed view over a Stream.
type Queue[T any] struct {
	stream *Stream
}

// NewQueue wraps s.
func NewQueue[T any](s *Stream) *Queue[T] {
	return &Queue[T]{stream: s}
}

// Stream exposes the underlying stream for ack and dead-lettering.
func (q *Queue[T]) Stream() *Stream { return q.stream }

// Enqueue publishes v and returns the entry id.
func (q *Queue[T]) Enqueue(ctx context.Context, v T) (string, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode message: %w", err)
	}
	return q.stream.Publish(ctx, payload)
}

// Read returns decoded new deliveries.
func (q *Queue[T]) Read(ctx context.Context, count int64, block time.Duration) ([]Delivery[T], error) {
	msgs, err := q.stream.Read(ctx, count, block)
	if err != nil {
		return nil, err
	}
	return Decode[T](msgs), nil
}

// Claim returns decoded stalled deliveries now owned by this consumer.
func (q *Queue[T]) Claim(ctx context.Context, minIdle time.Duration, count int64) ([]Delivery[T], error) {
	msgs, err := q.stream.Claim(ctx, minIdle, count)
	return Decode[T](msgs), err
}

// Decode unmarshals each message payload into T.
func Decode[T any](msgs []Message) []Delivery[T] {
	out := make([]Delivery[T], 0, len(msgs))
	for _, m := range msgs {
		d := Delivery[T]{Message: m}
		if len(m.Payload) == 0 {
			d.Err = fmt.Errorf("message %s has no payload", m.ID)
		} else if err := json.Unmarshal(m.Payload, &d.Value); err != nil {
			d.Err = fmt.Errorf("decode message %s: %w", m.ID, err)
		}
		out = append(out, d)
	}
	return out
}

// Ack acknowledges a delivery.
func (q *Queue[T]) Ack(ctx context.Context, id string) error {
	return q.stream.Ack(ctx, id)
}

// Touch resets the idle time of a delivery still in progress.
func (q *Queue[T]) Touch(ctx context.Context, id string) error {
	return q.stream.Touch(ctx, id)
}

// DeadLetter copies a delivery to the dead-letter stream.
func (q *Queue[T]) DeadLetter(ctx context.Context, msg Message, reason string) error {
	return q.stream.DeadLetter(ctx, msg, reason)
}
