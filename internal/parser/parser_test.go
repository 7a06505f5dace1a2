package parser

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name          string
		input         string
		expectedCards int
		expectedFront string
		expectedBack  string
		expectedTags  []string
	}{
		{
			name:          "Simple front and back",
			input:         "Q: What is the capital of France?\nA: Paris",
			expectedCards: 1,
			expectedFront: "What is the capital of France?",
			expectedBack:  "Paris",
		},
		{
			name:          "Tags line",
			input:         "Q: What is 1+1?\nA: 2\nT: math, Arithmetic ,",
			expectedCards: 1,
			expectedFront: "What is 1+1?",
			expectedBack:  "2",
			expectedTags:  []string{"math", "Arithmetic"},
		},
		{
			name: "Multiline back",
			input: `
Q: What are the primary colors?
A: Red
Blue
Yellow
`,
			expectedCards: 1,
			expectedFront: "What are the primary colors?",
			expectedBack:  "Red\nBlue\nYellow",
		},
		{
			name: "Two cards",
			input: `
Q: First question
A: First answer

Q: Second question
A: Second answer
`,
			expectedCards: 2,
		},
		{
			name:          "Separator closes a card",
			input:         "Q: One\nA: 1\n---\nstray text\nQ: Two\nA: 2",
			expectedCards: 2,
		},
		{
			name:          "Front without back is dropped",
			input:         "Q: Unanswered\n---\nQ: Answered\nA: yes",
			expectedCards: 1,
			expectedFront: "Answered",
			expectedBack:  "yes",
		},
		{
			name:          "No cards, just text",
			input:         "This is a file with no questions.\nA: orphan answer",
			expectedCards: 0,
		},
		{
			name:          "Prefixes with no space",
			input:         "Q:Question\r\nA:Answer\r\n",
			expectedCards: 1,
			expectedFront: "Question",
			expectedBack:  "Answer",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			entries, err := Parse(strings.NewReader(tc.input))
			if err != nil {
				t.Fatalf("Parse() returned an unexpected error: %v", err)
			}

			if len(entries) != tc.expectedCards {
				t.Fatalf("Expected %d cards, but got %d", tc.expectedCards, len(entries))
			}

			if tc.expectedCards == 1 {
				e := entries[0]
				if e.Front != tc.expectedFront {
					t.Errorf("Expected Front to be '%s', but got '%s'", tc.expectedFront, e.Front)
				}
				if e.Back != tc.expectedBack {
					t.Errorf("Expected Back to be '%s', but got '%s'", tc.expectedBack, e.Back)
				}
				if !reflect.DeepEqual(e.Tags, tc.expectedTags) {
					t.Errorf("Expected Tags to be %v, but got %v", tc.expectedTags, e.Tags)
				}
			}
		})
	}
}

func TestParseLineNumbers(t *testing.T) {
	input := "# Notes\n\nQ: One\nA: 1\n\nQ: Two\nA: 2\n"
	entries, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse() returned an unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 cards, but got %d", len(entries))
	}
	if entries[0].Line != 3 || entries[1].Line != 6 {
		t.Errorf("Expected lines 3 and 6, but got %d and %d", entries[0].Line, entries[1].Line)
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "go.md")
	if err := os.WriteFile(path, []byte("Q: Zero value of a slice?\nA: nil\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	entries, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile() returned an unexpected error: %v", err)
	}
	if len(entries) != 1 || entries[0].Back != "nil" {
		t.Errorf("Expected one card with back 'nil', but got %+v", entries)
	}

	if _, err := ParseFile(filepath.Join(t.TempDir(), "missing.md")); err == nil {
		t.Error("Expected an error for a missing file")
	}
}
