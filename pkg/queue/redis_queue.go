// -----------------------------------------------------------------------------
// Redis Queue Driver
// -----------------------------------------------------------------------------
// Anahtarlar:
//
//	{prefix}queues:{name}          hazır job'lar (LIST, RPUSH/BLPOP)
//	{prefix}queues:{name}:delayed  gecikmeli job'lar (ZSET, skor = unix saniye)
//	{prefix}queues:failed          deneme hakkı biten job'lar (LIST)
//
// Pop her çağrıda önce zamanı gelmiş gecikmeli job'ları hazır listeye taşır.
// -----------------------------------------------------------------------------

package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisQueue struct {
	client redis.UniversalClient
	logger *log.Logger
	prefix string

	// Pop'un BLPOP ile bekleyeceği en uzun süre.
	blockTimeout time.Duration
	now          func() time.Time
}

func NewRedisQueue(client redis.UniversalClient, logger *log.Logger, prefix string) *RedisQueue {
	return &RedisQueue{
		client:       client,
		logger:       logger,
		prefix:       prefix,
		blockTimeout: 5 * time.Second,
		now:          time.Now,
	}
}

func (r *RedisQueue) queueKey(queue string) string {
	return r.prefix + "queues:" + queue
}

func (r *RedisQueue) delayedKey(queue string) string {
	return r.prefix + "queues:" + queue + ":delayed"
}

func (r *RedisQueue) failedKey() string {
	return r.prefix + "queues:failed"
}

func (r *RedisQueue) Push(ctx context.Context, queue string, job *Job) error {
	return r.Later(ctx, queue, job, 0)
}

func (r *RedisQueue) Later(ctx context.Context, queue string, job *Job, delay time.Duration) error {
	now := r.now()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	job.AvailableAt = now.Add(delay)

	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("job encode edilemedi: %w", err)
	}

	if delay > 0 {
		err = r.client.ZAdd(ctx, r.delayedKey(queue), redis.Z{
			Score:  float64(job.AvailableAt.Unix()),
			Member: string(data),
		}).Err()
		if err != nil {
			r.logger.Printf("❌ Delayed job push hatası [%s]: %v", queue, err)
			return fmt.Errorf("delayed job push hatası: %w", err)
		}
		return nil
	}

	if err := r.client.RPush(ctx, r.queueKey(queue), string(data)).Err(); err != nil {
		r.logger.Printf("❌ Job push hatası [%s]: %v", queue, err)
		return fmt.Errorf("job push hatası: %w", err)
	}
	return nil
}

func (r *RedisQueue) Pop(ctx context.Context, queue string) (*Job, error) {
	if err := r.migrateDelayed(ctx, queue); err != nil {
		return nil, err
	}

	result, err := r.client.BLPop(ctx, r.blockTimeout, r.queueKey(queue)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("job pop hatası: %w", err)
	}

	// BLPOP [key, value] döndürür.
	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		return nil, fmt.Errorf("job decode edilemedi: %w", err)
	}
	return &job, nil
}

func (r *RedisQueue) Fail(ctx context.Context, queue string, job *Job, cause error) error {
	entry := FailedJob{Job: job, Queue: queue, FailedAt: r.now()}
	if cause != nil {
		entry.Error = cause.Error()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed job encode edilemedi: %w", err)
	}
	if err := r.client.RPush(ctx, r.failedKey(), string(data)).Err(); err != nil {
		return fmt.Errorf("failed job yazılamadı: %w", err)
	}

	r.logger.Printf("⚠️  Job failed listesine taşındı: %s (queue: %s, attempts: %d)", job.ID, queue, job.Attempts)
	return nil
}

func (r *RedisQueue) Size(ctx context.Context, queue string) (int64, error) {
	ready, err := r.client.LLen(ctx, r.queueKey(queue)).Result()
	if err != nil {
		return 0, err
	}
	delayed, err := r.client.ZCard(ctx, r.delayedKey(queue)).Result()
	if err != nil {
		return 0, err
	}
	return ready + delayed, nil
}

// migrateDelayed, zamanı gelmiş gecikmeli job'ları hazır listeye taşır.
// ZREM sonucu 1 olan job taşınır; böylece iki worker aynı job'ı iki kez
// kuyruğa koymaz.
func (r *RedisQueue) migrateDelayed(ctx context.Context, queue string) error {
	due, err := r.client.ZRangeByScore(ctx, r.delayedKey(queue), &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(r.now().Unix(), 10),
	}).Result()
	if err != nil {
		return fmt.Errorf("gecikmeli job'lar okunamadı: %w", err)
	}

	moved := 0
	for _, data := range due {
		removed, err := r.client.ZRem(ctx, r.delayedKey(queue), data).Result()
		if err != nil {
			return fmt.Errorf("gecikmeli job silinemedi: %w", err)
		}
		if removed == 0 {
			continue
		}
		if err := r.client.RPush(ctx, r.queueKey(queue), data).Err(); err != nil {
			return fmt.Errorf("gecikmeli job taşınamadı: %w", err)
		}
		moved++
	}

	if moved > 0 {
		r.logger.Printf("🔄 %d gecikmeli job taşındı (queue: %s)", moved, queue)
	}
	return nil
}
