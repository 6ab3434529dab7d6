package tracker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"activitybot/internal/models"
	"activitybot/internal/store"
)

type sessionKey struct {
	userID  string
	guildID string
}

// Tracker translates gateway events into accounting operations. It owns
// the in-memory voice-session map; open sessions are lost on restart and
// the matching leave events become no-ops.
type Tracker struct {
	store  store.Store
	logger *zap.Logger

	mu       sync.Mutex
	sessions map[sessionKey]models.VoiceSession
}

func New(st store.Store, logger *zap.Logger) *Tracker {
	return &Tracker{
		store:    st,
		logger:   logger,
		sessions: make(map[sessionKey]models.VoiceSession),
	}
}

// HandleMessage counts one message for the author. Messages from bot
// accounts are ignored. Storage failures propagate to the caller; the
// event is not retried.
func (t *Tracker) HandleMessage(ctx context.Context, userID, guildID string, authorIsBot bool) error {
	if authorIsBot {
		return nil
	}
	return t.store.AddMessages(ctx, userID, guildID, 1)
}

// HandleVoiceState reacts to a voice-state transition. Only a true join
// (no channel -> some channel) opens a session and only a true leave
// (some channel -> no channel) closes one; moving between channels does
// neither. A leave with no open session, such as one opened before the
// process started, is a silent no-op. Bot accounts are ignored, same as
// for messages.
func (t *Tracker) HandleVoiceState(ctx context.Context, userID, guildID, prevChannel, newChannel string, isBot bool, now time.Time) error {
	if isBot {
		return nil
	}

	switch {
	case prevChannel == "" && newChannel != "":
		t.openSession(userID, guildID, now)
		return nil
	case prevChannel != "" && newChannel == "":
		return t.closeSession(ctx, userID, guildID, now)
	default:
		return nil
	}
}

func (t *Tracker) openSession(userID, guildID string, now time.Time) {
	key := sessionKey{userID: userID, guildID: guildID}

	t.mu.Lock()
	if _, ok := t.sessions[key]; ok {
		// Missed leave event; start over from the new join.
		t.logger.Warn("overwriting stale voice session",
			zap.String("user_id", userID), zap.String("guild_id", guildID))
	}
	t.sessions[key] = models.VoiceSession{JoinedAt: now}
	t.mu.Unlock()

	t.logger.Debug("voice session opened",
		zap.String("user_id", userID), zap.String("guild_id", guildID))
}

func (t *Tracker) closeSession(ctx context.Context, userID, guildID string, now time.Time) error {
	key := sessionKey{userID: userID, guildID: guildID}

	t.mu.Lock()
	session, ok := t.sessions[key]
	if ok {
		delete(t.sessions, key)
	}
	t.mu.Unlock()

	if !ok {
		t.logger.Debug("leave without open voice session, ignoring",
			zap.String("user_id", userID), zap.String("guild_id", guildID))
		return nil
	}

	seconds := int64(now.Sub(session.JoinedAt).Seconds())
	if seconds < 0 {
		seconds = 0
	}

	if err := t.store.AddVoiceSeconds(ctx, userID, guildID, seconds); err != nil {
		return err
	}

	t.logger.Debug("voice session closed",
		zap.String("user_id", userID), zap.String("guild_id", guildID),
		zap.Int64("seconds", seconds))
	return nil
}

// Stats returns the member's current totals; store.ErrNotFound passes
// through when no activity was ever recorded.
func (t *Tracker) Stats(ctx context.Context, userID, guildID string) (*models.ActivityRecord, error) {
	return t.store.Get(ctx, userID, guildID)
}

// Top returns the guild's leaderboard for one metric.
func (t *Tracker) Top(ctx context.Context, guildID string, metric store.Metric, limit int) ([]models.MemberTotal, error) {
	return t.store.Top(ctx, guildID, metric, limit)
}

// OpenSessions reports how many voice sessions are currently tracked.
func (t *Tracker) OpenSessions() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sessions)
}
