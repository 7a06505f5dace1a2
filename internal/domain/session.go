package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// StudyMode selects which side of a card is shown first.
type StudyMode string

const (
	StudyModeFrontToBack StudyMode = "front-to-back"
	StudyModeBackToFront StudyMode = "back-to-front"
	StudyModeMixed       StudyMode = "mixed"
)

// ParseStudyMode converts a user supplied string to a StudyMode.
func ParseStudyMode(s string) (StudyMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "front-to-back", "front":
		return StudyModeFrontToBack, nil
	case "back-to-front", "back":
		return StudyModeBackToFront, nil
	case "mixed", "random":
		return StudyModeMixed, nil
	default:
		return "", fmt.Errorf("unknown study mode %q", s)
	}
}

// Side is one face of a card.
type Side string

const (
	SideFront Side = "front"
	SideBack  Side = "back"
)

// Other returns the opposite side.
func (s Side) Other() Side {
	if s == SideBack {
		return SideFront
	}
	return SideBack
}

// DecisionKind is the typed answer returned by an interaction for one card.
type DecisionKind string

const (
	DecisionCorrect   DecisionKind = "correct"
	DecisionIncorrect DecisionKind = "incorrect"
	DecisionSkip      DecisionKind = "skip"
	DecisionEdit      DecisionKind = "edit"
	DecisionHelp      DecisionKind = "help"
	DecisionQuit      DecisionKind = "quit"
)

// Decision pairs a decision with the time the learner took to reach it.
type Decision struct {
	Kind         DecisionKind
	ResponseTime time.Duration
}

// ResumeChoice is the answer to "a paused session exists, resume it?".
type ResumeChoice string

const (
	ResumeChoiceResume  ResumeChoice = "resume"
	ResumeChoiceRestart ResumeChoice = "restart"
)

// SessionState is the resumable unit of a study session.
// IsActive stays true while the session can be resumed and flips to false once it finishes.
type SessionState struct {
	DeckID           string            `json:"deck_id"`
	StudyMode        StudyMode         `json:"study_mode"`
	CardsToStudy     []string          `json:"cards_to_study"`
	CurrentCardIndex int               `json:"current_card_index"`
	StudiedCards     []string          `json:"studied_cards"`
	IncorrectCards   []string          `json:"incorrect_cards"`
	SessionStartTime time.Time         `json:"session_start_time"`
	LastSaveTime     time.Time         `json:"last_save_time"`
	IsActive         bool              `json:"is_active"`
	Statistics       SessionStatistics `json:"statistics"`
}

// InPrimaryPass reports whether the cursor still points into CardsToStudy.
func (s *SessionState) InPrimaryPass() bool {
	return s.CurrentCardIndex < len(s.CardsToStudy)
}

// HasWork reports whether any card is left to present.
func (s *SessionState) HasWork() bool {
	return s.InPrimaryPass() || len(s.IncorrectCards) > 0
}

// Enqueue appends id to the retry queue unless it is already queued.
func (s *SessionState) Enqueue(id string) {
	if !slices.Contains(s.IncorrectCards, id) {
		s.IncorrectCards = append(s.IncorrectCards, id)
	}
}

// RemoveIncorrect drops id from the retry queue wherever it sits.
func (s *SessionState) RemoveIncorrect(id string) {
	s.IncorrectCards = slices.DeleteFunc(s.IncorrectCards, func(v string) bool { return v == id })
}

// SessionStatistics are the counters aggregated over one session.
type SessionStatistics struct {
	TotalCards       int           `json:"total_cards"`
	CardsStudied     int           `json:"cards_studied"`
	CorrectAnswers   int           `json:"correct_answers"`
	IncorrectAnswers int           `json:"incorrect_answers"`
	SessionStartTime time.Time     `json:"session_start_time"`
	LastActivityTime time.Time     `json:"last_activity_time"`
	TotalStudyTime   time.Duration `json:"total_study_time"`
}

// SuccessRate returns the share of correct answers as a percentage.
func (s SessionStatistics) SuccessRate() float64 {
	answered := s.CorrectAnswers + s.IncorrectAnswers
	if answered == 0 {
		return 0
	}
	return float64(s.CorrectAnswers) / float64(answered) * 100
}

// AverageResponseTime returns the mean time spent per studied card.
func (s SessionStatistics) AverageResponseTime() time.Duration {
	if s.CardsStudied == 0 {
		return 0
	}
	return s.TotalStudyTime / time.Duration(s.CardsStudied)
}

// Outcome is how a session ended.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomePaused    Outcome = "paused"
	OutcomeFailed    Outcome = "failed"
)

// SessionResult is returned to the caller that started a study session.
type SessionResult struct {
	Success      bool
	Outcome      Outcome
	Message      string
	Statistics   SessionStatistics
	StudiedCards []*Card
	State        *SessionState
}
