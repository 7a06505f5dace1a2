package session

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/conorfennell/knolbox/internal/domain"
	"github.com/conorfennell/knolbox/internal/leitner"
)

// DefaultCheckpointEvery is how many studied cards pass between checkpoints.
const DefaultCheckpointEvery = 5

// Request describes the session a caller wants to run.
type Request struct {
	Deck     *domain.Deck
	Mode     domain.StudyMode
	MaxCards int
	Shuffle  bool
}

// Machine runs study sessions. It is synchronous: it blocks only while the
// Interaction is waiting for the learner.
type Machine struct {
	scheduler       *leitner.Scheduler
	decks           DeckRepository
	states          StateStore
	ui              Interaction
	log             *slog.Logger
	checkpointEvery int
	pickSide        func() domain.Side
}

// Option configures a Machine.
type Option func(*Machine)

// WithCheckpointEvery sets how many studied cards pass between checkpoints.
func WithCheckpointEvery(n int) Option {
	return func(m *Machine) {
		if n > 0 {
			m.checkpointEvery = n
		}
	}
}

// WithSidePicker replaces the coin flip used in mixed mode.
func WithSidePicker(pick func() domain.Side) Option {
	return func(m *Machine) { m.pickSide = pick }
}

// NewMachine wires a session machine to its collaborators.
func NewMachine(
	log *slog.Logger,
	scheduler *leitner.Scheduler,
	decks DeckRepository,
	states StateStore,
	ui Interaction,
	opts ...Option,
) *Machine {
	m := &Machine{
		scheduler:       scheduler,
		decks:           decks,
		states:          states,
		ui:              ui,
		log:             log.With("component", "session"),
		checkpointEvery: DefaultCheckpointEvery,
		pickSide: func() domain.Side {
			if rand.Intn(2) == 0 {
				return domain.SideFront
			}
			return domain.SideBack
		},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start runs a study session to completion or until the learner quits.
// Problems are reported through the result, never as an error.
func (m *Machine) Start(ctx context.Context, req Request) domain.SessionResult {
	deck := req.Deck
	if deck == nil {
		return failed("no deck selected")
	}
	if deck.ActiveCount() == 0 {
		return failed(fmt.Sprintf("deck %q has no active cards", deck.Name))
	}

	state, err := m.resumeOrDiscard(ctx, deck)
	if err != nil {
		return failed(err.Error())
	}

	if state == nil {
		batch := m.scheduler.BuildStudyBatch(deck, req.MaxCards, req.Shuffle)
		if len(batch) == 0 {
			return failed("no cards available for study")
		}
		state = m.newState(deck, req.Mode, batch)
		m.log.Info("session started",
			"deck_id", deck.ID,
			"mode", state.StudyMode,
			"cards", len(batch),
		)
	}

	return m.run(ctx, deck, state)
}

// Discard drops any resumable session stored for the deck.
func (m *Machine) Discard(ctx context.Context, deckID string) error {
	if err := m.states.ClearSession(ctx, deckID); err != nil {
		return fmt.Errorf("failed to clear session for deck %s: %w", deckID, err)
	}
	return nil
}

// resumeOrDiscard returns the stored state when the learner resumes it, and
// nil when a fresh session should start.
func (m *Machine) resumeOrDiscard(ctx context.Context, deck *domain.Deck) (*domain.SessionState, error) {
	existing, err := m.states.LoadSession(ctx, deck.ID)
	if err != nil {
		m.log.Warn("failed to load saved session, starting fresh", "deck_id", deck.ID, "error", err)
		return nil, nil
	}
	if existing == nil || !existing.IsActive || existing.DeckID != deck.ID {
		return nil, nil
	}
	if existing.CurrentCardIndex < 0 || existing.CurrentCardIndex > len(existing.CardsToStudy) {
		m.log.Warn("saved session has an invalid cursor, starting fresh",
			"deck_id", deck.ID,
			"index", existing.CurrentCardIndex,
			"cards", len(existing.CardsToStudy),
		)
		return nil, nil
	}

	choice, err := m.ui.RequestResumeChoice(ctx, existing)
	if err != nil {
		return nil, fmt.Errorf("failed to ask whether to resume: %w", err)
	}
	if choice == domain.ResumeChoiceResume {
		m.log.Info("session resumed",
			"deck_id", deck.ID,
			"index", existing.CurrentCardIndex,
			"cards", len(existing.CardsToStudy),
			"retry_queue", len(existing.IncorrectCards),
		)
		return existing, nil
	}

	if err := m.states.ClearSession(ctx, deck.ID); err != nil {
		m.log.Warn("failed to clear previous session", "deck_id", deck.ID, "error", err)
	}
	return nil, nil
}

func (m *Machine) newState(deck *domain.Deck, mode domain.StudyMode, batch []string) *domain.SessionState {
	now := m.scheduler.Now()
	if mode == "" {
		mode = domain.StudyModeFrontToBack
	}
	return &domain.SessionState{
		DeckID:           deck.ID,
		StudyMode:        mode,
		CardsToStudy:     batch,
		StudiedCards:     []string{},
		IncorrectCards:   []string{},
		SessionStartTime: now,
		IsActive:         true,
		Statistics: domain.SessionStatistics{
			TotalCards:       len(batch),
			SessionStartTime: now,
			LastActivityTime: now,
		},
	}
}

func (m *Machine) run(ctx context.Context, deck *domain.Deck, state *domain.SessionState) domain.SessionResult {
	cards := make(map[string]*domain.Card, len(deck.Cards))
	for _, c := range deck.Cards {
		cards[c.ID] = c
	}
	touched := &touchedCards{seen: make(map[string]bool)}

	for state.HasWork() {
		if err := ctx.Err(); err != nil {
			return m.pause(ctx, deck, state, touched, false, fmt.Sprintf("session interrupted: %v", err))
		}

		retry := !state.InPrimaryPass()
		id, progress := m.next(state)

		card, ok := cards[id]
		if !ok {
			m.log.Warn("card in session no longer exists, skipping", "deck_id", deck.ID, "card_id", id)
			m.advance(state, retry)
			continue
		}

		decision, err := m.ui.PresentCard(ctx, card, m.sideFor(state.StudyMode), progress)
		if err != nil {
			m.log.Error("interaction failed, pausing session", "deck_id", deck.ID, "card_id", id, "error", err)
			return m.pause(ctx, deck, state, touched, false, fmt.Sprintf("session paused: %v", err))
		}

		switch decision.Kind {
		case domain.DecisionEdit:
			if err := m.ui.NotifyEdit(ctx, card); err != nil {
				m.log.Warn("edit failed", "card_id", id, "error", err)
			}
			touched.add(card)
			continue
		case domain.DecisionHelp:
			if err := m.ui.NotifyHelp(ctx); err != nil {
				m.log.Warn("help failed", "error", err)
			}
			continue
		case domain.DecisionSkip:
			continue
		case domain.DecisionQuit:
			return m.pause(ctx, deck, state, touched, true, "session paused")
		case domain.DecisionCorrect:
			m.scheduler.ProcessCorrectAnswer(card)
			m.scheduler.UpdateResponseStatistics(card, decision.ResponseTime, true)
			state.RemoveIncorrect(id)
			if !retry {
				state.StudiedCards = append(state.StudiedCards, id)
				state.CurrentCardIndex++
			}
		case domain.DecisionIncorrect:
			m.scheduler.ProcessIncorrectAnswer(card)
			m.scheduler.UpdateResponseStatistics(card, decision.ResponseTime, false)
			if retry {
				// One retry per card and session, whatever the outcome.
				state.IncorrectCards = state.IncorrectCards[1:]
			} else {
				state.StudiedCards = append(state.StudiedCards, id)
				state.CurrentCardIndex++
				state.Enqueue(id)
			}
		default:
			m.log.Warn("unknown decision ignored", "kind", decision.Kind, "card_id", id)
			continue
		}

		touched.add(card)
		m.recordAnswer(state, decision)

		if state.Statistics.CardsStudied%m.checkpointEvery == 0 {
			m.log.Debug("checkpoint", "deck_id", deck.ID, "cards_studied", state.Statistics.CardsStudied)
			m.persist(ctx, deck, state)
		}
	}

	state.IsActive = false
	m.persist(ctx, deck, state)
	m.log.Info("session completed",
		"deck_id", deck.ID,
		"cards_studied", state.Statistics.CardsStudied,
		"correct", state.Statistics.CorrectAnswers,
		"incorrect", state.Statistics.IncorrectAnswers,
	)

	return domain.SessionResult{
		Success:      true,
		Outcome:      domain.OutcomeCompleted,
		Message:      "session completed",
		Statistics:   state.Statistics,
		StudiedCards: touched.cards,
		State:        state,
	}
}

// next picks the card for this iteration: the cursor in the primary pass,
// the head of the retry queue afterwards.
func (m *Machine) next(state *domain.SessionState) (string, Progress) {
	if state.InPrimaryPass() {
		return state.CardsToStudy[state.CurrentCardIndex], Progress{
			Position: state.CurrentCardIndex + 1,
			Total:    len(state.CardsToStudy),
		}
	}
	return state.IncorrectCards[0], Progress{
		Position: 1,
		Total:    len(state.IncorrectCards),
		Retry:    true,
	}
}

func (m *Machine) advance(state *domain.SessionState, retry bool) {
	if retry {
		state.IncorrectCards = state.IncorrectCards[1:]
		return
	}
	state.CurrentCardIndex++
}

func (m *Machine) sideFor(mode domain.StudyMode) domain.Side {
	switch mode {
	case domain.StudyModeBackToFront:
		return domain.SideBack
	case domain.StudyModeMixed:
		return m.pickSide()
	default:
		return domain.SideFront
	}
}

func (m *Machine) recordAnswer(state *domain.SessionState, decision domain.Decision) {
	st := &state.Statistics
	st.CardsStudied++
	if decision.Kind == domain.DecisionCorrect {
		st.CorrectAnswers++
	} else {
		st.IncorrectAnswers++
	}
	st.TotalStudyTime += decision.ResponseTime
	st.LastActivityTime = m.scheduler.Now()
}

func (m *Machine) pause(ctx context.Context, deck *domain.Deck, state *domain.SessionState, touched *touchedCards, asked bool, msg string) domain.SessionResult {
	state.IsActive = true
	// Persist through a cancelled ctx.
	m.persist(context.WithoutCancel(ctx), deck, state)
	m.log.Info("session paused",
		"deck_id", deck.ID,
		"index", state.CurrentCardIndex,
		"cards_studied", state.Statistics.CardsStudied,
	)
	return domain.SessionResult{
		Success:      asked,
		Outcome:      domain.OutcomePaused,
		Message:      msg,
		Statistics:   state.Statistics,
		StudiedCards: touched.cards,
		State:        state,
	}
}

// persist saves the session state and the deck. Failures are logged and the
// in-memory session carries on.
func (m *Machine) persist(ctx context.Context, deck *domain.Deck, state *domain.SessionState) {
	state.LastSaveTime = m.scheduler.Now()
	if err := m.states.SaveSession(ctx, state); err != nil {
		m.log.Error("failed to save session state", "deck_id", deck.ID, "error", err)
	}
	deck.Statistics = m.scheduler.Summarize(deck)
	if err := m.decks.SaveDeck(ctx, deck); err != nil {
		m.log.Error("failed to save deck", "deck_id", deck.ID, "error", err)
	}
}

func failed(msg string) domain.SessionResult {
	return domain.SessionResult{
		Success: false,
		Outcome: domain.OutcomeFailed,
		Message: msg,
	}
}

type touchedCards struct {
	seen  map[string]bool
	cards []*domain.Card
}

func (t *touchedCards) add(c *domain.Card) {
	if t.seen[c.ID] {
		return
	}
	t.seen[c.ID] = true
	t.cards = append(t.cards, c)
}
