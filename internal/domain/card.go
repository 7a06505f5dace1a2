package domain

import (
	"sort"
	"strings"
	"time"
)

// Card represents a single front/back study entry and its Leitner scheduling state.
type Card struct {
	ID     string
	Front  string
	Back   string
	Tags   []string
	Source string // markdown file the card was parsed from, if any

	CurrentBox     int
	IsActive       bool
	LastReviewed   *time.Time
	NextReviewDate *time.Time
	CreatedAt      time.Time

	Statistics CardStatistics
}

// CardStatistics holds the per-card review counters.
type CardStatistics struct {
	TotalReviews     int
	CorrectAnswers   int
	IncorrectAnswers int
	// Streak counts consecutive correct answers since the last box change or miss.
	Streak        int
	LongestStreak int
	// AverageResponseTime is the running mean of response times, in seconds.
	AverageResponseTime float64
	TotalStudyTime      time.Duration
	LastStudySession    *time.Time
}

// IsNew reports whether the card has never been reviewed and still sits in box 0.
func (c *Card) IsNew() bool {
	return c.CurrentBox == 0 && c.Statistics.TotalReviews == 0
}

// SideText returns the text printed on the given side of the card.
func (c *Card) SideText(side Side) string {
	if side == SideBack {
		return c.Back
	}
	return c.Front
}

// NormalizeTags lowercases, trims, de-duplicates and sorts a tag list.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
