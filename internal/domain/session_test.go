package domain

import (
	"testing"
	"time"
)

func TestParseStudyMode(t *testing.T) {
	testCases := []struct {
		input    string
		expected StudyMode
		wantErr  bool
	}{
		{"", StudyModeFrontToBack, false},
		{"front-to-back", StudyModeFrontToBack, false},
		{"Back-To-Front", StudyModeBackToFront, false},
		{" mixed ", StudyModeMixed, false},
		{"sideways", "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			mode, err := ParseStudyMode(tc.input)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ParseStudyMode(%q) error = %v, wantErr %v", tc.input, err, tc.wantErr)
			}
			if mode != tc.expected {
				t.Errorf("Expected mode %q, but got %q", tc.expected, mode)
			}
		})
	}
}

func TestSessionStatistics(t *testing.T) {
	var empty SessionStatistics
	if empty.SuccessRate() != 0 || empty.AverageResponseTime() != 0 {
		t.Error("Expected zero derived values for an empty session")
	}

	stats := SessionStatistics{
		CardsStudied:     4,
		CorrectAnswers:   3,
		IncorrectAnswers: 1,
		TotalStudyTime:   10 * time.Second,
	}
	if stats.SuccessRate() != 75 {
		t.Errorf("Expected success rate 75, but got %.2f", stats.SuccessRate())
	}
	if stats.AverageResponseTime() != 2500*time.Millisecond {
		t.Errorf("Expected average 2.5s, but got %v", stats.AverageResponseTime())
	}
}

func TestSessionStateRetryQueue(t *testing.T) {
	s := &SessionState{CardsToStudy: []string{"a", "b"}}

	s.Enqueue("a")
	s.Enqueue("b")
	s.Enqueue("a")
	if len(s.IncorrectCards) != 2 {
		t.Fatalf("Expected 2 queued ids, but got %v", s.IncorrectCards)
	}

	s.RemoveIncorrect("a")
	if len(s.IncorrectCards) != 1 || s.IncorrectCards[0] != "b" {
		t.Errorf("Expected [b] after removing a, but got %v", s.IncorrectCards)
	}

	s.CurrentCardIndex = 2
	if s.InPrimaryPass() {
		t.Error("Expected primary pass to be over")
	}
	if !s.HasWork() {
		t.Error("Expected retry queue to keep the session going")
	}
}

func TestNormalizeTags(t *testing.T) {
	got := NormalizeTags([]string{" Go ", "sql", "go", "", "SQL", "algorithms"})
	expected := []string{"algorithms", "go", "sql"}
	if len(got) != len(expected) {
		t.Fatalf("Expected %v, but got %v", expected, got)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("Expected %v, but got %v", expected, got)
		}
	}
}
