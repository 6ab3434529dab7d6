package utils_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"activitybot/pkg/utils"
)

func TestMentionHelpers(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "<@123>", utils.FormatUserMention("123"))

	assert.Equal(t, "123", utils.ExtractUserIDFromMention("<@123>"))
	assert.Equal(t, "123", utils.ExtractUserIDFromMention("<@!123>"))

	assert.True(t, utils.IsUserMention("<@123>"))
	assert.True(t, utils.IsUserMention("<@!123>"))
	assert.False(t, utils.IsUserMention("123"))
	assert.False(t, utils.IsUserMention("!stats"))
}

func TestFormatLeaderboardEntry(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "🥇 <@1> - 30 messages", utils.FormatLeaderboardEntry(1, "<@1>", "30 messages"))
	assert.Equal(t, "🥈 <@2> - 20 messages", utils.FormatLeaderboardEntry(2, "<@2>", "20 messages"))
	assert.Equal(t, "🥉 <@3> - 10 messages", utils.FormatLeaderboardEntry(3, "<@3>", "10 messages"))
	assert.Equal(t, "4. <@4> - 5 messages", utils.FormatLeaderboardEntry(4, "<@4>", "5 messages"))
}
