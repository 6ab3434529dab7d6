package store

import (
	"context"
	"errors"

	"activitybot/internal/models"
)

// ErrNotFound is returned by Get for a member with no recorded activity.
// It is a normal outcome, not a storage failure.
var ErrNotFound = errors.New("no activity recorded")

// Metric selects which counter a leaderboard query ranks by.
type Metric string

const (
	MetricMessages Metric = "messages"
	MetricVoice    Metric = "voice"
)

// Store is a durable keyed aggregate table mapping (user, guild) to the
// member's running totals. Increments are atomic per key: concurrent calls
// for the same member must never lose an update, and calls for different
// members must not serialize against each other beyond what the backend
// itself requires. Counters only ever grow; there is no decrement, reset,
// or delete.
type Store interface {
	// AddMessages adds n to the member's message count, creating the
	// record if it does not exist, and refreshes last_updated.
	AddMessages(ctx context.Context, userID, guildID string, n int64) error

	// AddVoiceSeconds adds n to the member's connected voice seconds,
	// creating the record if it does not exist, and refreshes last_updated.
	AddVoiceSeconds(ctx context.Context, userID, guildID string, n int64) error

	// Get returns the member's current totals, or ErrNotFound if no event
	// was ever recorded for the key.
	Get(ctx context.Context, userID, guildID string) (*models.ActivityRecord, error)

	// Top returns up to limit members of a guild ordered by the given
	// metric, highest first.
	Top(ctx context.Context, guildID string, metric Metric, limit int) ([]models.MemberTotal, error)

	Close() error
}
