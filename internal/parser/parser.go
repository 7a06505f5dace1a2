// Package parser extracts flashcards from plain-text markdown notes.
//
// A card starts with a "Q:" line holding the front text and continues with an
// "A:" line holding the back text. An optional "T:" line lists comma separated
// tags. Text after a prefix line continues that field until the next prefix,
// a "---" separator or the next "Q:".
package parser

import (
	"bufio"
	"io"
	"os"
	"strings"
)

const (
	frontPrefix = "Q:"
	backPrefix  = "A:"
	tagsPrefix  = "T:"
	separator   = "---"
)

// Entry is one card as written in a source file.
type Entry struct {
	Front string
	Back  string
	Tags  []string
	// Line is the 1-based line on which the entry's front starts.
	Line int
}

type field int

const (
	none field = iota
	front
	back
	tags
)

type builder struct {
	entries []Entry
	current Entry
	field   field
	block   []string
}

// flushField moves the buffered lines into the field being read.
func (b *builder) flushField() {
	if len(b.block) == 0 {
		return
	}
	content := strings.TrimRight(strings.Join(b.block, "\n"), "\n ")
	switch b.field {
	case front:
		b.current.Front = content
	case back:
		b.current.Back = content
	case tags:
		b.current.Tags = append(b.current.Tags, splitTags(content)...)
	}
	b.block = nil
}

// finish closes the current entry. Entries without both sides are dropped.
func (b *builder) finish() {
	b.flushField()
	if b.current.Front != "" && b.current.Back != "" {
		b.entries = append(b.entries, b.current)
	}
	b.current = Entry{}
	b.field = none
}

func (b *builder) start(f field, rest string) {
	b.flushField()
	b.field = f
	b.block = append(b.block, strings.TrimPrefix(rest, " "))
}

// ParseFile reads a file from the given path and extracts all entries.
func ParseFile(path string) ([]Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads from an io.Reader and extracts all entries.
func Parse(r io.Reader) ([]Entry, error) {
	scanner := bufio.NewScanner(r)
	var b builder
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSuffix(scanner.Text(), "\r")

		switch {
		case strings.TrimSpace(line) == separator:
			b.finish()
		case strings.HasPrefix(line, frontPrefix):
			if b.field != none {
				b.finish()
			}
			b.current.Line = lineNo
			b.start(front, line[len(frontPrefix):])
		case strings.HasPrefix(line, backPrefix) && b.field != none:
			b.start(back, line[len(backPrefix):])
		case strings.HasPrefix(line, tagsPrefix) && b.field != none:
			b.start(tags, line[len(tagsPrefix):])
		case b.field != none:
			b.block = append(b.block, line)
		}
	}

	b.finish()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return b.entries, nil
}

func splitTags(s string) []string {
	var out []string
	for _, t := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '\n' }) {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
