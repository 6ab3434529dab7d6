package utils_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"activitybot/pkg/utils"
)

func TestFormatDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		seconds int64
		want    string
	}{
		{0, "0:00:00"},
		{59, "0:00:59"},
		{125, "0:02:05"},
		{3600, "1:00:00"},
		{3725, "1:02:05"},
		{90000, "25:00:00"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, utils.FormatDuration(tt.seconds))
	}
}

func TestFormatHoursMinutes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		seconds int64
		want    string
	}{
		{0, "0 hours, 0 minutes"},
		{59, "0 hours, 0 minutes"},
		{125, "0 hours, 2 minutes"},
		{3600, "1 hours, 0 minutes"},
		{7325, "2 hours, 2 minutes"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, utils.FormatHoursMinutes(tt.seconds))
	}
}
