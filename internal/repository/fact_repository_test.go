package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/cellgroup-api/internal/models"
)

type fakeOutbox struct {
	seen    map[string]bool
	pushed  [][]byte
	pushErr error
	deleted []string
}

func (f *fakeOutbox) SetNX(_ context.Context, key string, _ interface{}, _ time.Duration) *redis.BoolCmd {
	if f.seen == nil {
		f.seen = map[string]bool{}
	}
	if f.seen[key] {
		return redis.NewBoolResult(false, nil)
	}
	f.seen[key] = true
	return redis.NewBoolResult(true, nil)
}

func (f *fakeOutbox) RPush(_ context.Context, _ string, values ...interface{}) *redis.IntCmd {
	if f.pushErr != nil {
		return redis.NewIntResult(0, f.pushErr)
	}
	for _, v := range values {
		f.pushed = append(f.pushed, v.([]byte))
	}
	return redis.NewIntResult(int64(len(f.pushed)), nil)
}

func (f *fakeOutbox) Del(_ context.Context, keys ...string) *redis.IntCmd {
	for _, k := range keys {
		delete(f.seen, k)
		f.deleted = append(f.deleted, k)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func sampleFact() models.Fact {
	return models.Fact{
		Kind:        models.FactNeedsFollowUp,
		CellGroupID: "cg-1",
		EntityID:    "m-1",
		Week:        "Aug 4–Aug 10, 2025",
		Value:       3,
		ObservedAt:  time.Date(2025, 8, 10, 12, 0, 0, 0, time.UTC),
	}
}

func TestFactRepositoryPublishDedupesWithinWeek(t *testing.T) {
	outbox := &fakeOutbox{}
	repo := NewFactRepository(nil, "facts", time.Hour, nil)
	repo.client = outbox

	pushed, err := repo.Publish(context.Background(), sampleFact())
	require.NoError(t, err)
	assert.True(t, pushed)

	pushed, err = repo.Publish(context.Background(), sampleFact())
	require.NoError(t, err)
	assert.False(t, pushed)

	require.Len(t, outbox.pushed, 1)
	var decoded models.Fact
	require.NoError(t, json.Unmarshal(outbox.pushed[0], &decoded))
	assert.Equal(t, models.FactNeedsFollowUp, decoded.Kind)
	assert.Equal(t, 3, decoded.Value)
}

func TestFactRepositoryReleasesKeyOnPushFailure(t *testing.T) {
	outbox := &fakeOutbox{pushErr: errors.New("connection reset")}
	repo := NewFactRepository(nil, "facts", time.Hour, nil)
	repo.client = outbox

	pushed, err := repo.Publish(context.Background(), sampleFact())
	assert.Error(t, err)
	assert.False(t, pushed)
	assert.Equal(t, []string{repo.DedupeKey(sampleFact())}, outbox.deleted)
}

func TestFactRepositoryWithoutClient(t *testing.T) {
	repo := NewFactRepository(nil, "facts", time.Hour, nil)

	pushed, err := repo.Publish(context.Background(), sampleFact())
	assert.NoError(t, err)
	assert.False(t, pushed)
}

func TestFactRepositoryDedupeKey(t *testing.T) {
	repo := NewFactRepository(nil, "facts", time.Hour, nil)

	assert.Equal(t, "facts:seen:needs_follow_up:cg-1:m-1:Aug 4–Aug 10, 2025", repo.DedupeKey(sampleFact()))
}
