package indexing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"jobmate/search-service/internal/model"
)

// ErrJobNotFound is returned when no status is stored for a job id.
var ErrJobNotFound = errors.New("indexing job not found")

// FailedChannel is the Pub/Sub channel for exhausted jobs.
const FailedChannel = "EVENT_INDEXING_FAILED"

const (
	statusTTL             = 7 * 24 * time.Hour
	maxStatusWatchRetries = 3
)

// JobStatus is the externally visible progress of a job.
type JobStatus struct {
	JobID       string         `json:"jobId"`
	CandidateID string         `json:"candidateId"`
	State       model.JobState `json:"state"`
	RetryCount  int            `json:"retryCount"`
	LastError   string         `json:"lastError,omitempty"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// ─── Redis status tracker ────────────────────────────────────────────────────

// RedisStatusTracker stores one hash per job under search:index:job:{id}.
type RedisStatusTracker struct {
	rdb *redis.Client
	now func() time.Time
}

func NewRedisStatusTracker(rdb *redis.Client) *RedisStatusTracker {
	return &RedisStatusTracker{rdb: rdb, now: time.Now}
}

func statusKey(jobID string) string { return "search:index:job:" + jobID }

// Record overwrites the job's status hash and refreshes its TTL. The write
// runs under WATCH and is skipped when IsStatusUpdateAllowed rejects moving
// the stored state to job.State.
func (t *RedisStatusTracker) Record(ctx context.Context, job model.IndexingJob, lastErr string) error {
	key := statusKey(job.ID)
	write := func(tx *redis.Tx) error {
		stored, err := tx.HGet(ctx, key, "state").Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if stored != "" && !IsStatusUpdateAllowed(model.JobState(stored), job.State) {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.HSet(ctx, key,
				"jobId", job.ID,
				"candidateId", job.CandidateID,
				"state", string(job.State),
				"retryCount", job.RetryCount,
				"lastError", lastErr,
				"updatedAt", t.now().UTC().Format(time.RFC3339Nano),
			)
			p.Expire(ctx, key, statusTTL)
			return nil
		})
		return err
	}

	var err error
	for range maxStatusWatchRetries {
		if err = t.rdb.Watch(ctx, write, key); !errors.Is(err, redis.TxFailedErr) {
			break
		}
	}
	if err != nil {
		return fmt.Errorf("record job status %s: %w", job.ID, err)
	}
	return nil
}

// Get returns ErrJobNotFound when the hash is missing or expired.
func (t *RedisStatusTracker) Get(ctx context.Context, jobID string) (*JobStatus, error) {
	fields, err := t.rdb.HGetAll(ctx, statusKey(jobID)).Result()
	if err != nil {
		return nil, fmt.Errorf("get job status %s: %w", jobID, err)
	}
	if len(fields) == 0 {
		return nil, ErrJobNotFound
	}
	return statusFromHash(fields)
}

func statusFromHash(fields map[string]string) (*JobStatus, error) {
	state, err := ParseJobState(fields["state"])
	if err != nil {
		return nil, err
	}
	st := &JobStatus{
		JobID:       fields["jobId"],
		CandidateID: fields["candidateId"],
		State:       state,
		LastError:   fields["lastError"],
	}
	if v := fields["retryCount"]; v != "" {
		if st.RetryCount, err = strconv.Atoi(v); err != nil {
			return nil, fmt.Errorf("bad retryCount %q: %w", v, err)
		}
	}
	if v := fields["updatedAt"]; v != "" {
		if st.UpdatedAt, err = time.Parse(time.RFC3339Nano, v); err != nil {
			return nil, fmt.Errorf("bad updatedAt %q: %w", v, err)
		}
	}
	return st, nil
}

// ─── Failure signal ──────────────────────────────────────────────────────────

// RedisNotifier publishes FailureEvents on FailedChannel.
type RedisNotifier struct {
	rdb *redis.Client
}

func NewRedisNotifier(rdb *redis.Client) *RedisNotifier {
	return &RedisNotifier{rdb: rdb}
}

func (n *RedisNotifier) IndexingFailed(ctx context.Context, ev FailureEvent) error {
	event, err := json.Marshal(struct {
		Type string `json:"type"`
		FailureEvent
	}{Type: FailedChannel, FailureEvent: ev})
	if err != nil {
		return err
	}
	if err := n.rdb.Publish(ctx, FailedChannel, event).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", FailedChannel, err)
	}
	return nil
}
