package indexing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobmate/search-service/internal/model"
)

func TestStatusFromHash(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 6, time.UTC)
	st, err := statusFromHash(map[string]string{
		"jobId":       "j1",
		"candidateId": "c1",
		"state":       "FAILED",
		"retryCount":  "5",
		"lastError":   "provider down",
		"updatedAt":   at.Format(time.RFC3339Nano),
	})
	require.NoError(t, err)
	assert.Equal(t, &JobStatus{
		JobID: "j1", CandidateID: "c1", State: model.JobFailed,
		RetryCount: 5, LastError: "provider down", UpdatedAt: at,
	}, st)
}

func TestStatusFromHash_Invalid(t *testing.T) {
	_, err := statusFromHash(map[string]string{"state": "DONE"})
	assert.Error(t, err)

	_, err = statusFromHash(map[string]string{"state": "PENDING", "retryCount": "x"})
	assert.Error(t, err)
}

func TestStatusKey(t *testing.T) {
	assert.Equal(t, "search:index:job:abc", statusKey("abc"))
}
