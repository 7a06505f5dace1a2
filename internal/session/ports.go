package session

import (
	"context"

	"github.com/conorfennell/knolbox/internal/domain"
)

// DeckRepository persists the cards mutated during a session.
type DeckRepository interface {
	SaveDeck(ctx context.Context, deck *domain.Deck) error
}

// StateStore keeps the single resumable session record.
// LoadSession returns (nil, nil) when no record exists for deckID.
type StateStore interface {
	LoadSession(ctx context.Context, deckID string) (*domain.SessionState, error)
	SaveSession(ctx context.Context, state *domain.SessionState) error
	ClearSession(ctx context.Context, deckID string) error
}

// Progress tells the interaction where the presented card sits in the session.
type Progress struct {
	Position int
	Total    int
	Retry    bool
}

// Interaction is the learner facing side of a session. It renders cards and
// turns input into typed decisions; the machine never sees raw input.
type Interaction interface {
	PresentCard(ctx context.Context, card *domain.Card, side domain.Side, progress Progress) (domain.Decision, error)
	RequestResumeChoice(ctx context.Context, existing *domain.SessionState) (domain.ResumeChoice, error)
	NotifyEdit(ctx context.Context, card *domain.Card) error
	NotifyHelp(ctx context.Context) error
}
