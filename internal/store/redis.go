package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"activitybot/internal/models"
)

const redisPrefix = "activity"

// Redis is an alternative backend keeping one hash per member plus a
// per-guild sorted set per metric for leaderboard reads. HINCRBY and
// ZINCRBY are atomic server-side, so concurrent increments cannot lose
// updates.
type Redis struct {
	rdb *redis.Client
}

func NewRedis(ctx context.Context, addr string) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return &Redis{rdb: rdb}, nil
}

// NewRedisWithClient wraps an existing client; Close closes it.
func NewRedisWithClient(rdb *redis.Client) *Redis {
	return &Redis{rdb: rdb}
}

func (r *Redis) Close() error {
	return r.rdb.Close()
}

func memberHashKey(userID, guildID string) string {
	return redisPrefix + ":" + guildID + ":" + userID
}

func topKey(guildID string, metric Metric) string {
	return redisPrefix + ":top:" + string(metric) + ":" + guildID
}

func (r *Redis) add(ctx context.Context, userID, guildID, field string, metric Metric, n int64) error {
	pipe := r.rdb.Pipeline()
	key := memberHashKey(userID, guildID)
	pipe.HIncrBy(ctx, key, field, n)
	pipe.HSet(ctx, key, "last_updated", time.Now().UTC().Unix())
	pipe.ZIncrBy(ctx, topKey(guildID, metric), float64(n), userID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to increment %s: %w", field, err)
	}
	return nil
}

// AddMessages implements Store.
func (r *Redis) AddMessages(ctx context.Context, userID, guildID string, n int64) error {
	return r.add(ctx, userID, guildID, "messages", MetricMessages, n)
}

// AddVoiceSeconds implements Store.
func (r *Redis) AddVoiceSeconds(ctx context.Context, userID, guildID string, n int64) error {
	return r.add(ctx, userID, guildID, "voice_seconds", MetricVoice, n)
}

// Get implements Store.
func (r *Redis) Get(ctx context.Context, userID, guildID string) (*models.ActivityRecord, error) {
	fields, err := r.rdb.HGetAll(ctx, memberHashKey(userID, guildID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get activity record: %w", err)
	}
	if len(fields) == 0 {
		return nil, ErrNotFound
	}

	rec := models.ActivityRecord{UserID: userID, GuildID: guildID}
	rec.MessageCount, _ = strconv.ParseInt(fields["messages"], 10, 64)
	rec.VoiceSeconds, _ = strconv.ParseInt(fields["voice_seconds"], 10, 64)
	if unix, err := strconv.ParseInt(fields["last_updated"], 10, 64); err == nil {
		rec.LastUpdated = time.Unix(unix, 0).UTC()
	}
	return &rec, nil
}

// Top implements Store.
func (r *Redis) Top(ctx context.Context, guildID string, metric Metric, limit int) ([]models.MemberTotal, error) {
	if metric != MetricMessages && metric != MetricVoice {
		return nil, fmt.Errorf("unknown metric %q", metric)
	}

	entries, err := r.rdb.ZRevRangeWithScores(ctx, topKey(guildID, metric), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}

	totals := make([]models.MemberTotal, 0, len(entries))
	for _, e := range entries {
		userID, ok := e.Member.(string)
		if !ok {
			continue
		}
		totals = append(totals, models.MemberTotal{UserID: userID, Total: int64(e.Score)})
	}
	return totals, nil
}
