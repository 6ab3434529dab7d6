package models

import "time"

// ActivityRecord holds the running totals for one member in one guild.
// A record is created on the member's first counted event; absence of a
// record means zero activity.
type ActivityRecord struct {
	UserID       string
	GuildID      string
	MessageCount int64
	VoiceSeconds int64
	LastUpdated  time.Time
}

// VoiceSession represents a user's open voice channel session. It lives
// only in memory; sessions open at process exit are lost.
type VoiceSession struct {
	JoinedAt time.Time
}

// MemberTotal is one leaderboard row: a member and the counter the
// leaderboard was ranked by.
type MemberTotal struct {
	UserID string
	Total  int64
}
