// Package queue is a durable at-least-once work queue on Redis Streams.
//
// Producers XADD a JSON payload; consumers in a group XREADGROUP, process,
// then XACK. Deliveries left pending by a crashed consumer are reclaimed with
// XAUTOCLAIM, and poison messages are copied to a dead-letter stream before
// being acknowledged.
package queue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const payloadField = "payload"

// Message is one raw stream delivery.
type Message struct {
	ID      string
	Payload []byte
}

// Stream is a consumer's handle on one stream and consumer group.
type Stream struct {
	rdb        *redis.Client
	name       string
	group      string
	consumer   string
	deadLetter string
}

// NewStream returns a handle for consumer in group on stream name. Dead
// letters go to name + ":dead".
func NewStream(rdb *redis.Client, name, group, consumer string) *Stream {
	return &Stream{
		rdb:        rdb,
		name:       name,
		group:      group,
		consumer:   consumer,
		deadLetter: name + ":dead",
	}
}

// Name returns the stream key.
func (s *Stream) Name() string { return s.name }

// DeadLetterName returns the dead-letter stream key.
func (s *Stream) DeadLetterName() string { return s.deadLetter }

// EnsureGroup creates the stream and consumer group if missing. The group
// starts at the beginning of the stream so entries added before the first
// consumer started are still delivered.
func (s *Stream) EnsureGroup(ctx context.Context) error {
	err := s.rdb.XGroupCreateMkStream(ctx, s.name, s.group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("create group %s on %s: %w", s.group, s.name, err)
	}
	return nil
}

// Publish appends payload and returns the entry id.
func (s *Stream) Publish(ctx context.Context, payload []byte) (string, error) {
	id, err := s.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: s.name,
		Values: map[string]any{payloadField: payload},
	}).Result()
	if err != nil {
		return "", fmt.Errorf("xadd %s: %w", s.name, err)
	}
	return id, nil
}

// Read returns up to count new deliveries, blocking up to block. It returns
// an empty slice, not an error, when nothing arrived.
func (s *Stream) Read(ctx context.Context, count int64, block time.Duration) ([]Message, error) {
	res, err := s.rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    s.group,
		Consumer: s.consumer,
		Streams:  []string{s.name, ">"},
		Count:    count,
		Block:    block,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("xreadgroup %s: %w", s.name, err)
	}
	var msgs []Message
	for _, st := range res {
		msgs = append(msgs, toMessages(st.Messages)...)
	}
	return msgs, nil
}

// Ack acknowledges a delivery so it is not redelivered.
func (s *Stream) Ack(ctx context.Context, id string) error {
	if err := s.rdb.XAck(ctx, s.name, s.group, id).Err(); err != nil {
		return fmt.Errorf("xack %s %s: %w", s.name, id, err)
	}
	return nil
}

// Claim takes over up to count deliveries that have been pending on any
// consumer for at least minIdle.
func (s *Stream) Claim(ctx context.Context, minIdle time.Duration, count int64) ([]Message, error) {
	var msgs []Message
	start := "0-0"
	for {
		batch, next, err := s.rdb.XAutoClaim(ctx, &redis.XAutoClaimArgs{
			Stream:   s.name,
			Group:    s.group,
			Consumer: s.consumer,
			MinIdle:  minIdle,
			Start:    start,
			Count:    count,
		}).Result()
		if err != nil {
			return msgs, fmt.Errorf("xautoclaim %s: %w", s.name, err)
		}
		msgs = append(msgs, toMessages(batch)...)
		if next == "0-0" || int64(len(msgs)) >= count {
			return msgs, nil
		}
		start = next
	}
}

// Touch re-claims a delivery for this consumer with JUSTID, resetting its
// idle time so Claim on other consumers leaves it alone while it is still
// being processed.
func (s *Stream) Touch(ctx context.Context, id string) error {
	err := s.rdb.XClaimJustID(ctx, &redis.XClaimArgs{
		Stream:   s.name,
		Group:    s.group,
		Consumer: s.consumer,
		MinIdle:  0,
		Messages: []string{id},
	}).Err()
	if err != nil {
		return fmt.Errorf("xclaim %s %s: %w", s.name, id, err)
	}
	return nil
}

// DeadLetter copies msg to the dead-letter stream with reason. The caller
// still acks the original delivery.
func (s *Stream) DeadLetter(ctx context.Context, msg Message, reason string) error {
	err := s.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: s.deadLetter,
		Values: map[string]any{
			payloadField: msg.Payload,
			"sourceId":   msg.ID,
			"reason":     reason,
			"failedAt":   time.Now().UTC().Format(time.RFC3339),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("dead-letter %s: %w", msg.ID, err)
	}
	return nil
}

func toMessages(in []redis.XMessage) []Message {
	out := make([]Message, 0, len(in))
	for _, m := range in {
		msg := Message{ID: m.ID}
		switch v := m.Values[payloadField].(type) {
		case string:
			msg.Payload = []byte(v)
		case []byte:
			msg.Payload = v
		}
		out = append(out, msg)
	}
	return out
}
