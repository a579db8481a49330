package queue

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"strconv"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	quiet = log.New(io.Discard, "", 0)
	qNow  = time.Date(2030, 5, 1, 12, 0, 0, 0, time.UTC)
)

const (
	readyKey   = "tb:queues:notifications"
	delayedKey = "tb:queues:notifications:delayed"
)

func sampleJob() *Job {
	return &Job{
		ID:          "job-1",
		Type:        "mail.welcome",
		Payload:     json.RawMessage(`{"user_id":7}`),
		MaxAttempts: 3,
	}
}

func encoded(t *testing.T, job Job, delay time.Duration) string {
	t.Helper()
	job.CreatedAt = qNow
	job.AvailableAt = qNow.Add(delay)
	data, err := json.Marshal(job)
	require.NoError(t, err)
	return string(data)
}

func newRedisQueue() (*RedisQueue, redismock.ClientMock) {
	client, mock := redismock.NewClientMock()
	q := NewRedisQueue(client, quiet, "tb:")
	q.now = func() time.Time { return qNow }
	return q, mock
}

func TestNewJob(t *testing.T) {
	job, err := NewJob("mail.purchase_receipt", map[string]int64{"order_id": 9}, 0)
	require.NoError(t, err)
	assert.NotEmpty(t, job.ID)
	assert.Equal(t, DefaultMaxAttempts, job.MaxAttempts)

	var payload struct {
		OrderID int64 `json:"order_id"`
	}
	require.NoError(t, job.Decode(&payload))
	assert.Equal(t, int64(9), payload.OrderID)
}

func TestRedisQueue_PushAndLater(t *testing.T) {
	q, mock := newRedisQueue()
	ctx := context.Background()

	mock.ExpectRPush(readyKey, encoded(t, *sampleJob(), 0)).SetVal(1)
	require.NoError(t, q.Push(ctx, "notifications", sampleJob()))

	mock.ExpectZAdd(delayedKey, redis.Z{
		Score:  float64(qNow.Add(time.Minute).Unix()),
		Member: encoded(t, *sampleJob(), time.Minute),
	}).SetVal(1)
	require.NoError(t, q.Later(ctx, "notifications", sampleJob(), time.Minute))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisQueue_PopMigratesDueJobs(t *testing.T) {
	q, mock := newRedisQueue()
	ctx := context.Background()
	data := encoded(t, *sampleJob(), 0)
	maxScore := strconv.FormatInt(qNow.Unix(), 10)

	mock.ExpectZRangeByScore(delayedKey, &redis.ZRangeBy{Min: "-inf", Max: maxScore}).SetVal([]string{data})
	mock.ExpectZRem(delayedKey, data).SetVal(1)
	mock.ExpectRPush(readyKey, data).SetVal(1)
	mock.ExpectBLPop(5*time.Second, readyKey).SetVal([]string{readyKey, data})

	job, err := q.Pop(ctx, "notifications")
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, "job-1", job.ID)
	assert.Equal(t, "mail.welcome", job.Type)

	mock.ExpectZRangeByScore(delayedKey, &redis.ZRangeBy{Min: "-inf", Max: maxScore}).SetVal([]string{})
	mock.ExpectBLPop(5*time.Second, readyKey).RedisNil()

	job, err = q.Pop(ctx, "notifications")
	require.NoError(t, err)
	assert.Nil(t, job)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisQueue_Size(t *testing.T) {
	q, mock := newRedisQueue()

	mock.ExpectLLen(readyKey).SetVal(2)
	mock.ExpectZCard(delayedKey).SetVal(1)

	size, err := q.Size(context.Background(), "notifications")
	require.NoError(t, err)
	assert.Equal(t, int64(3), size)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMemoryQueue_Delayed(t *testing.T) {
	q := NewMemoryQueue(quiet)
	now := qNow
	q.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, q.Later(ctx, "notifications", sampleJob(), time.Minute))
	size, _ := q.Size(ctx, "notifications")
	assert.Equal(t, int64(1), size)

	job, err := q.Pop(ctx, "notifications")
	require.NoError(t, err)
	assert.Nil(t, job, "gecikmeli job erken çekilmemeli")

	now = now.Add(time.Minute)
	job, err = q.Pop(ctx, "notifications")
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, "job-1", job.ID)
}

func TestWorker_RetriesThenFails(t *testing.T) {
	q := NewMemoryQueue(quiet)
	ctx := context.Background()
	w := NewWorker(q, quiet).SetRetryDelay(0)

	calls := 0
	w.Handle("mail.welcome", func(context.Context, *Job) error {
		calls++
		return errors.New("smtp kapalı")
	})

	job := sampleJob()
	job.MaxAttempts = 2
	w.process(ctx, "notifications", job)

	retried, err := q.Pop(ctx, "notifications")
	require.NoError(t, err)
	require.NotNil(t, retried, "ilk hatada job tekrar kuyruğa konmalı")
	assert.Equal(t, 1, retried.Attempts)

	w.process(ctx, "notifications", retried)
	assert.Equal(t, 2, calls)

	failed := q.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "smtp kapalı", failed[0].Error)
	size, _ := q.Size(ctx, "notifications")
	assert.Zero(t, size)
}

func TestWorker_UnknownTypeAndPanic(t *testing.T) {
	q := NewMemoryQueue(quiet)
	ctx := context.Background()
	w := NewWorker(q, quiet)

	unknown := sampleJob()
	unknown.Type = "mail.unknown"
	w.process(ctx, "notifications", unknown)

	w.Handle("mail.welcome", func(context.Context, *Job) error { panic("boom") })
	exhausted := sampleJob()
	exhausted.MaxAttempts = 1
	w.process(ctx, "notifications", exhausted)

	failed := q.Failed()
	require.Len(t, failed, 2)
	assert.Contains(t, failed[0].Error, "handler yok")
	assert.Contains(t, failed[1].Error, "panic: boom")
}

func TestWorker_RunUntilCanceled(t *testing.T) {
	q := NewMemoryQueue(quiet)
	ctx, cancel := context.WithCancel(context.Background())
	w := NewWorker(q, quiet)
	w.idleDelay = time.Millisecond

	handled := make(chan string, 1)
	w.Handle("mail.welcome", func(_ context.Context, job *Job) error {
		handled <- job.ID
		return nil
	})
	require.NoError(t, q.Push(ctx, "notifications", sampleJob()))

	done := make(chan struct{})
	go func() {
		w.Run(ctx, "notifications")
		close(done)
	}()

	select {
	case id := <-handled:
		assert.Equal(t, "job-1", id)
	case <-time.After(2 * time.Second):
		t.Fatal("job işlenmedi")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker durmadı")
	}
}
