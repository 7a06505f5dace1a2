package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/conorfennell/knolbox/internal/domain"
)

// CreateDeck inserts an empty deck with a fresh id.
func (db *DB) CreateDeck(ctx context.Context, name string) (*domain.Deck, error) {
	deck := &domain.Deck{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: db.now(),
	}
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO decks (id, name, created_at)
		VALUES (?, ?, ?)
	`, deck.ID, deck.Name, deck.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert deck %s: %w", name, err)
	}
	return deck, nil
}

// ListDecks returns every deck without its cards.
func (db *DB) ListDecks(ctx context.Context) ([]*domain.Deck, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, name, created_at, last_studied
		FROM decks ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list decks: %w", err)
	}
	defer rows.Close()

	var decks []*domain.Deck
	for rows.Next() {
		var d domain.Deck
		var lastStudied sql.NullTime
		if err := rows.Scan(&d.ID, &d.Name, &d.CreatedAt, &lastStudied); err != nil {
			return nil, fmt.Errorf("failed to scan deck row: %w", err)
		}
		d.Statistics.LastStudied = timePtr(lastStudied)
		decks = append(decks, &d)
	}
	return decks, rows.Err()
}

// DeckByName loads a deck and all of its cards by name.
func (db *DB) DeckByName(ctx context.Context, name string) (*domain.Deck, error) {
	var id string
	err := db.conn.QueryRowContext(ctx, `SELECT id FROM decks WHERE name = ?`, name).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrDeckNotFound, name)
		}
		return nil, fmt.Errorf("failed to find deck %s: %w", name, err)
	}
	return db.LoadDeck(ctx, id)
}

// LoadDeck loads a deck and all of its cards in storage order.
func (db *DB) LoadDeck(ctx context.Context, id string) (*domain.Deck, error) {
	var d domain.Deck
	var lastStudied sql.NullTime
	err := db.conn.QueryRowContext(ctx, `
		SELECT id, name, created_at, last_studied
		FROM decks WHERE id = ?
	`, id).Scan(&d.ID, &d.Name, &d.CreatedAt, &lastStudied)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrDeckNotFound, id)
		}
		return nil, fmt.Errorf("failed to load deck %s: %w", id, err)
	}
	d.Statistics.LastStudied = timePtr(lastStudied)

	cards, err := db.cardsByDeck(ctx, id)
	if err != nil {
		return nil, err
	}
	d.Cards = cards
	return &d, nil
}

func (db *DB) cardsByDeck(ctx context.Context, deckID string) ([]*domain.Card, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, front, back, tags, source, current_box, is_active,
		       last_reviewed, next_review_date, created_at,
		       total_reviews, correct_answers, incorrect_answers, streak, longest_streak,
		       average_response_time, total_study_time, last_study_session
		FROM cards WHERE deck_id = ?
		ORDER BY position, created_at
	`, deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cards for deck %s: %w", deckID, err)
	}
	defer rows.Close()

	var cards []*domain.Card
	for rows.Next() {
		var c domain.Card
		var tags string
		var lastReviewed, nextReview, lastStudySession sql.NullTime
		var studyTime int64
		if err := rows.Scan(
			&c.ID,
			&c.Front,
			&c.Back,
			&tags,
			&c.Source,
			&c.CurrentBox,
			&c.IsActive,
			&lastReviewed,
			&nextReview,
			&c.CreatedAt,
			&c.Statistics.TotalReviews,
			&c.Statistics.CorrectAnswers,
			&c.Statistics.IncorrectAnswers,
			&c.Statistics.Streak,
			&c.Statistics.LongestStreak,
			&c.Statistics.AverageResponseTime,
			&studyTime,
			&lastStudySession,
		); err != nil {
			return nil, fmt.Errorf("failed to scan card row for deck %s: %w", deckID, err)
		}
		if err := json.Unmarshal([]byte(tags), &c.Tags); err != nil {
			return nil, fmt.Errorf("failed to decode tags of card %s: %w", c.ID, err)
		}
		c.LastReviewed = timePtr(lastReviewed)
		c.NextReviewDate = timePtr(nextReview)
		c.Statistics.TotalStudyTime = time.Duration(studyTime)
		c.Statistics.LastStudySession = timePtr(lastStudySession)
		cards = append(cards, &c)
	}
	return cards, rows.Err()
}

// SaveDeck writes the deck row and upserts every card in one transaction.
// Cards missing from deck.Cards are left untouched.
func (db *DB) SaveDeck(ctx context.Context, deck *domain.Deck) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for deck %s: %w", deck.ID, err)
	}
	defer tx.Rollback()

	if deck.CreatedAt.IsZero() {
		deck.CreatedAt = db.now()
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO decks (id, name, created_at, last_studied)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, last_studied = excluded.last_studied
	`, deck.ID, deck.Name, deck.CreatedAt, nullTime(deck.Statistics.LastStudied))
	if err != nil {
		return fmt.Errorf("failed to save deck %s: %w", deck.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO cards (
			deck_id, id, position, front, back, tags, source, current_box, is_active,
			last_reviewed, next_review_date, created_at,
			total_reviews, correct_answers, incorrect_answers, streak, longest_streak,
			average_response_time, total_study_time, last_study_session
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(deck_id, id) DO UPDATE SET
			position = excluded.position,
			front = excluded.front,
			back = excluded.back,
			tags = excluded.tags,
			source = excluded.source,
			current_box = excluded.current_box,
			is_active = excluded.is_active,
			last_reviewed = excluded.last_reviewed,
			next_review_date = excluded.next_review_date,
			total_reviews = excluded.total_reviews,
			correct_answers = excluded.correct_answers,
			incorrect_answers = excluded.incorrect_answers,
			streak = excluded.streak,
			longest_streak = excluded.longest_streak,
			average_response_time = excluded.average_response_time,
			total_study_time = excluded.total_study_time,
			last_study_session = excluded.last_study_session
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare card upsert: %w", err)
	}
	defer stmt.Close()

	for i, c := range deck.Cards {
		tags, err := json.Marshal(domain.NormalizeTags(c.Tags))
		if err != nil {
			return fmt.Errorf("failed to encode tags of card %s: %w", c.ID, err)
		}
		if c.CreatedAt.IsZero() {
			c.CreatedAt = db.now()
		}
		st := c.Statistics
		if _, err := stmt.ExecContext(ctx,
			deck.ID, c.ID, i, c.Front, c.Back, string(tags), c.Source, c.CurrentBox, c.IsActive,
			nullTime(c.LastReviewed), nullTime(c.NextReviewDate), c.CreatedAt,
			st.TotalReviews, st.CorrectAnswers, st.IncorrectAnswers, st.Streak, st.LongestStreak,
			st.AverageResponseTime, int64(st.TotalStudyTime), nullTime(st.LastStudySession),
		); err != nil {
			return fmt.Errorf("failed to save card %s: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit deck %s: %w", deck.ID, err)
	}
	return nil
}

// DeleteDeck removes a deck with its cards and sources.
func (db *DB) DeleteDeck(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM decks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete deck %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrDeckNotFound, id)
	}
	return nil
}
