package app

import (
	"context"
	"errors"
	"sort"
	"time"

	"quiz-engine/internal/domain"
)

// AnonymousName is shown for users without a display name.
const AnonymousName = "Anonymous"

// LeaderboardAggregator ranks users over a trailing window of attempts.
type LeaderboardAggregator struct {
	attempts AttemptRepository
	users    UserDirectory
	cache    LeaderboardCache
	now      func() time.Time
}

func NewLeaderboardAggregator(attempts AttemptRepository, users UserDirectory, cache LeaderboardCache) *LeaderboardAggregator {
	return NewLeaderboardAggregatorWithClock(attempts, users, cache, time.Now)
}

// NewLeaderboardAggregatorWithClock allows deterministic windows in tests.
func NewLeaderboardAggregatorWithClock(attempts AttemptRepository, users UserDirectory, cache LeaderboardCache, now func() time.Time) *LeaderboardAggregator {
	return &LeaderboardAggregator{attempts: attempts, users: users, cache: cache, now: now}
}

// Aggregate ranks every user with attempts in window, optionally restricted to the
// subject named by scope. An unknown subject yields an empty leaderboard, not an error.
func (a *LeaderboardAggregator) Aggregate(ctx context.Context, window domain.LeaderboardWindow, scope string) ([]domain.LeaderboardEntry, error) {
	if a.cache != nil {
		if entries, ok := a.cache.Get(ctx, window, scope); ok {
			return entries, nil
		}
	}

	since := window.Since(a.now())
	attempts, err := a.attempts.FindAttemptsInWindow(ctx, since, scope)
	if errors.Is(err, domain.ErrSubjectNotFound) {
		return []domain.LeaderboardEntry{}, nil
	}
	if err != nil {
		return nil, err
	}
	attempts = filterSince(attempts, since)

	var displays map[string]domain.UserDisplay
	if len(attempts) > 0 {
		displays, err = a.users.FindUserDisplayInfoByIDs(ctx, distinctUsers(attempts))
		if err != nil {
			return nil, err
		}
	}

	entries := RankAttempts(attempts, displays)
	if a.cache != nil {
		a.cache.Set(ctx, window, scope, entries)
	}
	return entries, nil
}

type userTotals struct {
	userID          string
	attempts        int
	percentageTotal float64
	points          float64
	correct         int
}

// RankAttempts groups attempts per user and orders them by summed score, highest
// first. Equal scores keep the order in which users first appear in attempts.
func RankAttempts(attempts []domain.AttemptRecord, displays map[string]domain.UserDisplay) []domain.LeaderboardEntry {
	order := make([]*userTotals, 0)
	byUser := make(map[string]*userTotals)
	for _, attempt := range attempts {
		totals, ok := byUser[attempt.UserID]
		if !ok {
			totals = &userTotals{userID: attempt.UserID}
			byUser[attempt.UserID] = totals
			order = append(order, totals)
		}
		totals.attempts++
		totals.percentageTotal += attempt.Percentage
		totals.points += attempt.Score
		totals.correct += attempt.CorrectAnswers
	}

	entries := make([]domain.LeaderboardEntry, 0, len(order))
	for _, totals := range order {
		display := displays[totals.userID]
		name := display.Name
		if name == "" {
			name = AnonymousName
		}
		entries = append(entries, domain.LeaderboardEntry{
			UserID:            totals.userID,
			DisplayName:       name,
			Email:             display.Email,
			Avatar:            display.Avatar,
			TotalAttempts:     totals.attempts,
			AveragePercentage: totals.percentageTotal / float64(totals.attempts),
			TotalPoints:       totals.points,
			TotalCorrect:      totals.correct,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].TotalPoints > entries[j].TotalPoints
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

func filterSince(attempts []domain.AttemptRecord, since *time.Time) []domain.AttemptRecord {
	if since == nil {
		return attempts
	}
	kept := attempts[:0:0]
	for _, attempt := range attempts {
		if !attempt.CompletedAt.Before(*since) {
			kept = append(kept, attempt)
		}
	}
	return kept
}

func distinctUsers(attempts []domain.AttemptRecord) []string {
	ids := make([]string, 0)
	seen := make(map[string]struct{})
	for _, attempt := range attempts {
		if _, ok := seen[attempt.UserID]; ok {
			continue
		}
		seen[attempt.UserID] = struct{}{}
		ids = append(ids, attempt.UserID)
	}
	return ids
}
