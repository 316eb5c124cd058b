package domain

import (
	"fmt"
	"time"
)

// LeaderboardWindow is a trailing time range for leaderboard aggregation.
type LeaderboardWindow string

const (
	WindowWeekly  LeaderboardWindow = "weekly"
	WindowMonthly LeaderboardWindow = "monthly"
	WindowAllTime LeaderboardWindow = "allTime"
)

// ParseLeaderboardWindow maps raw input to a window. Empty input means allTime.
func ParseLeaderboardWindow(raw string) (LeaderboardWindow, error) {
	switch LeaderboardWindow(raw) {
	case WindowWeekly, WindowMonthly, WindowAllTime:
		return LeaderboardWindow(raw), nil
	case "":
		return WindowAllTime, nil
	}
	return "", fmt.Errorf("%w: leaderboard window %q", ErrInvalidInput, raw)
}

// Since returns the earliest completion time included by w, or nil for no bound.
func (w LeaderboardWindow) Since(now time.Time) *time.Time {
	var span time.Duration
	switch w {
	case WindowWeekly:
		span = 7 * 24 * time.Hour
	case WindowMonthly:
		span = 30 * 24 * time.Hour
	default:
		return nil
	}
	since := now.Add(-span)
	return &since
}
