package worker

// retry_cron.go
// Failed jobs wait in a Redis sorted set scored by their next attempt time.
// A background goroutine moves due jobs back onto their queues. With several
// API replicas only the holder of the cron lock scans on a given tick.

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	RetrySetKey       = "jobs:retry"
	retryLockKey      = "lock:jobs:retry"
	retryTickInterval = 5 * time.Second
	retryBatchSize    = 50
)

// ScheduleRetry parks job until at.
func ScheduleRetry(ctx context.Context, rdb *redis.Client, job Job, at time.Time) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	log.Warn().
		Str("job_id", job.ID).
		Str("type", job.Type).
		Int("attempts", job.Attempts).
		Time("next_attempt_at", at).
		Msg("retry_cron: job scheduled for retry")
	return rdb.ZAdd(ctx, RetrySetKey, redis.Z{Score: float64(at.Unix()), Member: data}).Err()
}

// StartRetryCron launches the goroutine that re-queues due jobs. It stops
// when ctx is cancelled.
func StartRetryCron(ctx context.Context, rdb *redis.Client) {
	locker := redislock.New(rdb)
	go func() {
		ticker := time.NewTicker(retryTickInterval)
		defer ticker.Stop()

		log.Info().Msg("retry_cron: started")
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron: shutting down")
				return
			case <-ticker.C:
				tick(ctx, rdb, locker)
			}
		}
	}()
}

// tick runs one requeue pass under the cron lock. Another replica holding
// the lock means this one skips the tick.
func tick(ctx context.Context, rdb *redis.Client, locker *redislock.Client) {
	lock, err := locker.Obtain(ctx, retryLockKey, retryTickInterval, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return
	}
	if err != nil {
		log.Warn().Err(err).Msg("retry_cron: lock unavailable, scanning anyway")
		requeueDue(ctx, rdb, time.Now())
		return
	}
	defer func() { _ = lock.Release(context.Background()) }()
	requeueDue(ctx, rdb, time.Now())
}

func requeueDue(ctx context.Context, rdb *redis.Client, now time.Time) {
	due, err := rdb.ZRangeByScore(ctx, RetrySetKey, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(now.Unix(), 10),
		Count: retryBatchSize,
	}).Result()
	if err != nil {
		log.Error().Err(err).Msg("retry_cron: failed to query due jobs")
		return
	}
	for _, raw := range due {
		// ZREM still decides ownership if the lock expired mid-pass.
		removed, err := rdb.ZRem(ctx, RetrySetKey, raw).Result()
		if err != nil || removed == 0 {
			continue
		}
		var job Job
		if err := json.Unmarshal([]byte(raw), &job); err != nil || job.Queue == "" {
			log.Error().Err(err).Msg("retry_cron: dropping malformed job")
			continue
		}
		if err := rdb.LPush(ctx, job.Queue, raw).Err(); err != nil {
			log.Error().Err(err).Str("job_id", job.ID).Msg("retry_cron: requeue failed")
		}
	}
}

// retryBackoff returns the wait before the next attempt: 30s, 1m, 2m, 4m ...
// capped at 30 minutes.
func retryBackoff(attempts int) time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	d := 30 * time.Second
	for i := 1; i < attempts; i++ {
		d *= 2
		if d >= 30*time.Minute {
			return 30 * time.Minute
		}
	}
	return d
}
