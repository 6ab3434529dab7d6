package discord

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"activitybot/internal/store"
	"activitybot/internal/tracker"
	"activitybot/pkg/utils"
)

const leaderboardSize = 5

// Bot wires the Discord gateway to the activity tracker.
type Bot struct {
	session *discordgo.Session
	tracker *tracker.Tracker
	logger  *zap.Logger
}

// New creates a new Discord bot.
func New(token string, tr *tracker.Tracker, logger *zap.Logger) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildVoiceStates |
		discordgo.IntentMessageContent

	bot := &Bot{
		session: session,
		tracker: tr,
		logger:  logger,
	}

	session.AddHandler(bot.messageCreate)
	session.AddHandler(bot.voiceStateUpdate)

	return bot, nil
}

// Start opens the gateway connection.
func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}
	b.logger.Info("bot is running")
	return nil
}

// Stop closes the gateway connection.
func (b *Bot) Stop() error {
	return b.session.Close()
}

// voiceStateUpdate handles voice state transitions.
func (b *Bot) voiceStateUpdate(s *discordgo.Session, vs *discordgo.VoiceStateUpdate) {
	prevChannel := ""
	if vs.BeforeUpdate != nil {
		prevChannel = vs.BeforeUpdate.ChannelID
	}

	// Member is absent on some gateway paths; treat those as human rather
	// than undercount real users.
	isBot := vs.Member != nil && vs.Member.User != nil && vs.Member.User.Bot

	err := b.tracker.HandleVoiceState(context.Background(),
		vs.UserID, vs.GuildID, prevChannel, vs.ChannelID, isBot, time.Now().UTC())
	if err != nil {
		// The gateway does not replay events; the session is dropped.
		b.logger.Error("failed to record voice session",
			zap.String("user_id", vs.UserID), zap.String("guild_id", vs.GuildID),
			zap.Error(err))
	}
}

// messageCreate counts the message and dispatches commands.
func (b *Bot) messageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.GuildID == "" {
		return
	}

	// Count before dispatch so command messages are tracked too.
	err := b.tracker.HandleMessage(context.Background(), m.Author.ID, m.GuildID, m.Author.Bot)
	if err != nil {
		b.logger.Error("failed to count message",
			zap.String("user_id", m.Author.ID), zap.String("guild_id", m.GuildID),
			zap.Error(err))
	}

	if m.Author.Bot {
		return
	}

	content := strings.TrimSpace(m.Content)
	switch {
	case strings.HasPrefix(content, "!stats"):
		b.handleStatsCommand(s, m, content)
	case strings.HasPrefix(content, "!top"):
		b.handleTopCommand(s, m, content)
	}
}

// handleStatsCommand handles !stats [@member].
func (b *Bot) handleStatsCommand(s *discordgo.Session, m *discordgo.MessageCreate, content string) {
	targetID := m.Author.ID
	parts := strings.Fields(content)
	if len(parts) > 1 {
		if !utils.IsUserMention(parts[1]) {
			s.ChannelMessageSend(m.ChannelID, "Format: !stats [@member]")
			return
		}
		targetID = utils.ExtractUserIDFromMention(parts[1])
	}

	rec, err := b.tracker.Stats(context.Background(), targetID, m.GuildID)
	if errors.Is(err, store.ErrNotFound) {
		s.ChannelMessageSend(m.ChannelID,
			fmt.Sprintf("No activity recorded for %s yet.", utils.FormatUserMention(targetID)))
		return
	}
	if err != nil {
		b.logger.Error("failed to fetch stats",
			zap.String("user_id", targetID), zap.String("guild_id", m.GuildID),
			zap.Error(err))
		s.ChannelMessageSend(m.ChannelID, "Something went wrong fetching stats, try again later.")
		return
	}

	msg := fmt.Sprintf("📊 %s\nMessages sent: %d\nVoice time: %s",
		utils.FormatUserMention(targetID), rec.MessageCount,
		utils.FormatHoursMinutes(rec.VoiceSeconds))
	s.ChannelMessageSend(m.ChannelID, msg)
}

// handleTopCommand handles !top [messages|voice].
func (b *Bot) handleTopCommand(s *discordgo.Session, m *discordgo.MessageCreate, content string) {
	metric := store.MetricMessages
	parts := strings.Fields(content)
	if len(parts) > 1 {
		switch parts[1] {
		case "messages":
			metric = store.MetricMessages
		case "voice":
			metric = store.MetricVoice
		default:
			s.ChannelMessageSend(m.ChannelID, "Format: !top [messages|voice]")
			return
		}
	}

	totals, err := b.tracker.Top(context.Background(), m.GuildID, metric, leaderboardSize)
	if err != nil {
		b.logger.Error("failed to fetch leaderboard",
			zap.String("guild_id", m.GuildID), zap.String("metric", string(metric)),
			zap.Error(err))
		s.ChannelMessageSend(m.ChannelID, "Something went wrong fetching the leaderboard, try again later.")
		return
	}

	if len(totals) == 0 {
		s.ChannelMessageSend(m.ChannelID, "No activity recorded in this server yet.")
		return
	}

	var lines []string
	for i, mt := range totals {
		value := fmt.Sprintf("%d messages", mt.Total)
		if metric == store.MetricVoice {
			value = utils.FormatDuration(mt.Total)
		}
		lines = append(lines, utils.FormatLeaderboardEntry(i+1, utils.FormatUserMention(mt.UserID), value))
	}

	msg := fmt.Sprintf("🏆 Top %s:\n%s", metric, strings.Join(lines, "\n"))
	s.ChannelMessageSend(m.ChannelID, msg)
}
