package domain

import "time"

// Deck is a named collection of cards studied together.
type Deck struct {
	ID         string
	Name       string
	Cards      []*Card
	Statistics DeckStatistics
	CreatedAt  time.Time
}

// DeckStatistics aggregates the state of every card in a deck.
type DeckStatistics struct {
	TotalCards       int
	ActiveCards      int
	NewCards         int
	DueCards         int
	TotalReviews     int
	CorrectAnswers   int
	IncorrectAnswers int
	BoxCounts        []int
	LastStudied      *time.Time
}

// CardByID returns the card with the given id, or nil.
func (d *Deck) CardByID(id string) *Card {
	for _, c := range d.Cards {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// ActiveCount returns the number of active cards in the deck.
func (d *Deck) ActiveCount() int {
	n := 0
	for _, c := range d.Cards {
		if c.IsActive {
			n++
		}
	}
	return n
}
