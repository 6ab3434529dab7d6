package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"activitybot/internal/models"
)

// Postgres is the default durable backend. All increments are single
// upsert statements with the addition done inside the database, so
// concurrent writers for the same key cannot lose updates.
type Postgres struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgres opens a connection, waits for the database to become
// reachable and ensures the schema exists. The initial ping is retried
// with exponential backoff so the bot survives starting before its
// database does.
func NewPostgres(ctx context.Context, dsn string, logger *zap.Logger) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 5 * time.Second
	bo.MaxElapsedTime = 30 * time.Second

	err = backoff.Retry(func() error {
		if err := db.PingContext(ctx); err != nil {
			logger.Warn("database not reachable yet, retrying", zap.Error(err))
			return err
		}
		return nil
	}, backoff.WithContext(bo, ctx))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	p := &Postgres{db: db, logger: logger}
	if err := p.createTable(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return p, nil
}

func (p *Postgres) createTable(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS activity_stats (
		user_id TEXT NOT NULL,
		guild_id TEXT NOT NULL,
		message_count BIGINT NOT NULL DEFAULT 0,
		voice_seconds BIGINT NOT NULL DEFAULT 0,
		last_updated TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (user_id, guild_id)
	)`)
	if err != nil {
		return fmt.Errorf("failed to create activity_stats table: %w", err)
	}
	return nil
}

// Close closes the underlying connection pool.
func (p *Postgres) Close() error {
	return p.db.Close()
}

// AddMessages implements Store.
func (p *Postgres) AddMessages(ctx context.Context, userID, guildID string, n int64) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO activity_stats (user_id, guild_id, message_count, last_updated)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (user_id, guild_id) DO UPDATE SET
			message_count = activity_stats.message_count + EXCLUDED.message_count,
			last_updated = now()`,
		userID, guildID, n)
	if err != nil {
		return fmt.Errorf("failed to add messages: %w", err)
	}
	return nil
}

// AddVoiceSeconds implements Store.
func (p *Postgres) AddVoiceSeconds(ctx context.Context, userID, guildID string, n int64) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO activity_stats (user_id, guild_id, voice_seconds, last_updated)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (user_id, guild_id) DO UPDATE SET
			voice_seconds = activity_stats.voice_seconds + EXCLUDED.voice_seconds,
			last_updated = now()`,
		userID, guildID, n)
	if err != nil {
		return fmt.Errorf("failed to add voice seconds: %w", err)
	}
	return nil
}

// Get implements Store.
func (p *Postgres) Get(ctx context.Context, userID, guildID string) (*models.ActivityRecord, error) {
	rec := models.ActivityRecord{UserID: userID, GuildID: guildID}
	err := p.db.QueryRowContext(ctx,
		"SELECT message_count, voice_seconds, last_updated FROM activity_stats WHERE user_id = $1 AND guild_id = $2",
		userID, guildID).Scan(&rec.MessageCount, &rec.VoiceSeconds, &rec.LastUpdated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get activity record: %w", err)
	}
	return &rec, nil
}

// Top implements Store.
func (p *Postgres) Top(ctx context.Context, guildID string, metric Metric, limit int) ([]models.MemberTotal, error) {
	var column string
	switch metric {
	case MetricMessages:
		column = "message_count"
	case MetricVoice:
		column = "voice_seconds"
	default:
		return nil, fmt.Errorf("unknown metric %q", metric)
	}

	rows, err := p.db.QueryContext(ctx,
		"SELECT user_id, "+column+" FROM activity_stats WHERE guild_id = $1 ORDER BY "+column+" DESC LIMIT $2",
		guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	var totals []models.MemberTotal
	for rows.Next() {
		var mt models.MemberTotal
		if err := rows.Scan(&mt.UserID, &mt.Total); err != nil {
			p.logger.Warn("skipping unreadable leaderboard row", zap.Error(err))
			continue
		}
		totals = append(totals, mt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read leaderboard rows: %w", err)
	}
	return totals, nil
}
