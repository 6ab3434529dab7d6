package utils

import "fmt"

// FormatDuration formats seconds into HH:MM:SS format.
func FormatDuration(totalSeconds int64) string {
	h := totalSeconds / 3600
	m := (totalSeconds % 3600) / 60
	s := totalSeconds % 60
	return fmt.Sprintf("%d:%02d:%02d", h, m, s)
}

// FormatHoursMinutes formats seconds as "H hours, M minutes", dropping
// the seconds remainder.
func FormatHoursMinutes(totalSeconds int64) string {
	h := totalSeconds / 3600
	m := (totalSeconds % 3600) / 60
	return fmt.Sprintf("%d hours, %d minutes", h, m)
}
