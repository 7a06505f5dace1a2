package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/conorfennell/knolbox/internal/domain"
)

// LoadSession returns the stored session when it belongs to deckID.
// It returns (nil, nil) when the slot is empty or holds another deck's session.
func (db *DB) LoadSession(ctx context.Context, deckID string) (*domain.SessionState, error) {
	state, err := db.CurrentSession(ctx)
	if err != nil || state == nil {
		return nil, err
	}
	if state.DeckID != deckID {
		return nil, nil
	}
	return state, nil
}

// CurrentSession returns whatever session occupies the slot, or nil.
func (db *DB) CurrentSession(ctx context.Context) (*domain.SessionState, error) {
	var raw string
	err := db.conn.QueryRowContext(ctx, `SELECT state FROM session_state WHERE id = 1`).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load session state: %w", err)
	}

	var state domain.SessionState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, fmt.Errorf("failed to decode session state: %w", err)
	}
	return &state, nil
}

// SaveSession overwrites the single session slot.
func (db *DB) SaveSession(ctx context.Context, state *domain.SessionState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode session state: %w", err)
	}
	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO session_state (id, deck_id, state, updated_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			deck_id = excluded.deck_id,
			state = excluded.state,
			updated_at = excluded.updated_at
	`, state.DeckID, string(raw), db.now())
	if err != nil {
		return fmt.Errorf("failed to save session state for deck %s: %w", state.DeckID, err)
	}
	return nil
}

// ClearSession empties the slot if it holds deckID's session.
func (db *DB) ClearSession(ctx context.Context, deckID string) error {
	_, err := db.conn.ExecContext(ctx, `DELETE FROM session_state WHERE deck_id = ?`, deckID)
	if err != nil {
		return fmt.Errorf("failed to clear session state for deck %s: %w", deckID, err)
	}
	return nil
}
