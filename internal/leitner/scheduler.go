package leitner

import (
	"math/rand"
	"time"

	"github.com/conorfennell/knolbox/internal/domain"
)

const day = 24 * time.Hour

// Scheduler applies a RuleSet to cards. Apart from reading the clock it is
// pure: every method works only on the card or deck it is handed.
type Scheduler struct {
	rules   RuleSet
	now     func() time.Time
	shuffle func(n int, swap func(i, j int))
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock replaces time.Now as the scheduler's time source.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// WithShuffle replaces the function used to randomise study batches.
func WithShuffle(shuffle func(n int, swap func(i, j int))) Option {
	return func(s *Scheduler) { s.shuffle = shuffle }
}

// NewScheduler creates a scheduler for the given rules.
func NewScheduler(rules RuleSet, opts ...Option) *Scheduler {
	s := &Scheduler{
		rules:   rules,
		now:     time.Now,
		shuffle: rand.Shuffle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Rules returns the rule set the scheduler was built with.
func (s *Scheduler) Rules() RuleSet {
	return s.rules
}

// Now returns the scheduler's current time.
func (s *Scheduler) Now() time.Time {
	return s.now()
}

// ProcessCorrectAnswer records a correct answer and promotes the card when
// its streak reaches the box threshold.
func (s *Scheduler) ProcessCorrectAnswer(card *domain.Card) {
	st := &card.Statistics
	st.CorrectAnswers++
	st.TotalReviews++
	st.Streak++
	if st.Streak > st.LongestStreak {
		st.LongestStreak = st.Streak
	}

	rule, ok := s.rules.Promotion[card.CurrentBox]
	switch {
	case !ok:
		// No rule: the card stays where it is.
	case card.CurrentBox >= s.rules.TopBox():
		// Top box: nothing to promote into, the streak keeps growing.
	case st.Streak >= rule.CorrectAnswersNeeded:
		card.CurrentBox++
		st.Streak = 0
	}

	s.UpdateNextReviewDate(card)
	now := s.now()
	card.LastReviewed = &now
}

// ProcessIncorrectAnswer records a miss. A single miss demotes: to the
// configured target if the box has a rule, otherwise to box 0.
func (s *Scheduler) ProcessIncorrectAnswer(card *domain.Card) {
	st := &card.Statistics
	st.Streak = 0
	st.IncorrectAnswers++
	st.TotalReviews++

	if rule, ok := s.rules.Demotion[card.CurrentBox]; ok {
		card.CurrentBox = rule.DemoteToBox
	} else if card.CurrentBox > 0 {
		card.CurrentBox = 0
	}

	s.UpdateNextReviewDate(card)
	now := s.now()
	card.LastReviewed = &now
}

// UpdateNextReviewDate schedules the card using its box interval, or
// 2^box days when the box has no configured interval.
func (s *Scheduler) UpdateNextReviewDate(card *domain.Card) {
	next := s.now().Add(s.Interval(card.CurrentBox))
	card.NextReviewDate = &next
}

// Interval returns the review interval for a box, capped at MaxIntervalDays.
func (s *Scheduler) Interval(box int) time.Duration {
	days, ok := s.rules.Intervals[box]
	if !ok {
		box = max(box, 0)
		if box >= maxDoublingBox {
			days = MaxIntervalDays
		} else {
			days = 1 << box
		}
	}
	return time.Duration(min(max(days, 0), MaxIntervalDays)) * day
}

// IsDueForReview reports whether the card was never scheduled or its date has passed.
func (s *Scheduler) IsDueForReview(card *domain.Card) bool {
	return card.NextReviewDate == nil || !card.NextReviewDate.After(s.now())
}

// SelectDueCards returns the active due cards in deck order.
func (s *Scheduler) SelectDueCards(deck *domain.Deck) []*domain.Card {
	var due []*domain.Card
	for _, c := range deck.Cards {
		if c.IsActive && s.IsDueForReview(c) {
			due = append(due, c)
		}
	}
	return due
}

// SelectNewCards returns at most limit active, never reviewed box 0 cards in deck order.
func (s *Scheduler) SelectNewCards(deck *domain.Deck, limit int) []*domain.Card {
	var fresh []*domain.Card
	for _, c := range deck.Cards {
		if len(fresh) >= limit {
			break
		}
		if c.IsActive && c.IsNew() {
			fresh = append(fresh, c)
		}
	}
	return fresh
}

// BuildStudyBatch picks the card ids for a session. Due cards come first;
// new cards only fill the remaining room and are the first to be dropped.
func (s *Scheduler) BuildStudyBatch(deck *domain.Deck, maxCards int, shuffle bool) []string {
	if deck == nil || maxCards <= 0 {
		return nil
	}

	seen := make(map[string]bool)
	ids := make([]string, 0, maxCards)
	add := func(cards []*domain.Card) {
		for _, c := range cards {
			if len(ids) >= maxCards {
				return
			}
			if seen[c.ID] {
				continue
			}
			seen[c.ID] = true
			ids = append(ids, c.ID)
		}
	}

	add(s.SelectDueCards(deck))
	if len(ids) < maxCards {
		add(s.SelectNewCards(deck, s.rules.MaxNewCardsPerDay))
	}

	if shuffle {
		s.shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	}
	return ids
}

// UpdateResponseStatistics folds one response time into the card's running
// mean. It must run after the matching Process call so TotalReviews already
// counts this answer. wasCorrect does not change the formula.
func (s *Scheduler) UpdateResponseStatistics(card *domain.Card, responseTime time.Duration, wasCorrect bool) {
	st := &card.Statistics
	st.TotalStudyTime += responseTime

	n := st.TotalReviews
	if n < 1 {
		n = 1
	}
	st.AverageResponseTime = (st.AverageResponseTime*float64(n-1) + responseTime.Seconds()) / float64(n)

	now := s.now()
	st.LastStudySession = &now
}

// BoxHistogram counts active cards per box. Out of range boxes are clamped
// so the counts always sum to the number of active cards.
func (s *Scheduler) BoxHistogram(deck *domain.Deck) []int {
	boxes := s.rules.NumberOfBoxes
	if boxes < 1 {
		boxes = 1
	}
	counts := make([]int, boxes)
	for _, c := range deck.Cards {
		if !c.IsActive {
			continue
		}
		counts[min(max(c.CurrentBox, 0), boxes-1)]++
	}
	return counts
}

// Summarize recomputes the aggregate statistics of a deck.
func (s *Scheduler) Summarize(deck *domain.Deck) domain.DeckStatistics {
	stats := domain.DeckStatistics{
		TotalCards: len(deck.Cards),
		BoxCounts:  s.BoxHistogram(deck),
	}
	for _, c := range deck.Cards {
		stats.TotalReviews += c.Statistics.TotalReviews
		stats.CorrectAnswers += c.Statistics.CorrectAnswers
		stats.IncorrectAnswers += c.Statistics.IncorrectAnswers
		if last := c.Statistics.LastStudySession; last != nil {
			if stats.LastStudied == nil || last.After(*stats.LastStudied) {
				t := *last
				stats.LastStudied = &t
			}
		}
		if !c.IsActive {
			continue
		}
		stats.ActiveCards++
		if c.IsNew() {
			stats.NewCards++
		}
		if s.IsDueForReview(c) {
			stats.DueCards++
		}
	}
	return stats
}
