package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conorfennell/knolbox/internal/domain"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestDB_Decks(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	deck, err := db.CreateDeck(ctx, "golang")
	require.NoError(t, err)
	assert.NotEmpty(t, deck.ID)

	_, err = db.CreateDeck(ctx, "golang")
	assert.Error(t, err, "deck names are unique")

	_, err = db.CreateDeck(ctx, "algorithms")
	require.NoError(t, err)

	decks, err := db.ListDecks(ctx)
	require.NoError(t, err)
	require.Len(t, decks, 2)
	assert.Equal(t, "algorithms", decks[0].Name)
	assert.Equal(t, "golang", decks[1].Name)

	loaded, err := db.DeckByName(ctx, "golang")
	require.NoError(t, err)
	assert.Equal(t, deck.ID, loaded.ID)
	assert.Empty(t, loaded.Cards)

	_, err = db.DeckByName(ctx, "missing")
	assert.ErrorIs(t, err, ErrDeckNotFound)

	_, err = db.LoadDeck(ctx, "missing-id")
	assert.ErrorIs(t, err, ErrDeckNotFound)

	require.NoError(t, db.DeleteDeck(ctx, deck.ID))
	_, err = db.LoadDeck(ctx, deck.ID)
	assert.ErrorIs(t, err, ErrDeckNotFound)
	assert.ErrorIs(t, db.DeleteDeck(ctx, deck.ID), ErrDeckNotFound)
}

func TestDB_SaveDeckRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	deck, err := db.CreateDeck(ctx, "golang")
	require.NoError(t, err)

	reviewed := time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)
	next := reviewed.Add(48 * time.Hour)
	deck.Cards = []*domain.Card{
		{
			ID:             "c1",
			Front:          "What does defer do?",
			Back:           "Runs a call when the function returns.",
			Tags:           []string{"Go", "basics", "go"},
			Source:         "notes/go.md",
			CurrentBox:     2,
			IsActive:       true,
			LastReviewed:   &reviewed,
			NextReviewDate: &next,
			Statistics: domain.CardStatistics{
				TotalReviews:        3,
				CorrectAnswers:      2,
				IncorrectAnswers:    1,
				Streak:              2,
				LongestStreak:       2,
				AverageResponseTime: 4.5,
				TotalStudyTime:      13500 * time.Millisecond,
				LastStudySession:    &reviewed,
			},
		},
		{ID: "c2", Front: "Zero value of a map?", Back: "nil", IsActive: false},
	}
	deck.Statistics.LastStudied = &reviewed

	require.NoError(t, db.SaveDeck(ctx, deck))

	loaded, err := db.LoadDeck(ctx, deck.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Cards, 2)
	require.NotNil(t, loaded.Statistics.LastStudied)
	assert.True(t, loaded.Statistics.LastStudied.Equal(reviewed))

	c1 := loaded.Cards[0]
	assert.Equal(t, "c1", c1.ID)
	assert.Equal(t, []string{"basics", "go"}, c1.Tags)
	assert.Equal(t, "notes/go.md", c1.Source)
	assert.Equal(t, 2, c1.CurrentBox)
	assert.True(t, c1.IsActive)
	require.NotNil(t, c1.LastReviewed)
	assert.True(t, c1.LastReviewed.Equal(reviewed))
	require.NotNil(t, c1.NextReviewDate)
	assert.True(t, c1.NextReviewDate.Equal(next))
	assert.Equal(t, 3, c1.Statistics.TotalReviews)
	assert.Equal(t, 2, c1.Statistics.Streak)
	assert.Equal(t, 4.5, c1.Statistics.AverageResponseTime)
	assert.Equal(t, 13500*time.Millisecond, c1.Statistics.TotalStudyTime)

	c2 := loaded.Cards[1]
	assert.False(t, c2.IsActive)
	assert.Nil(t, c2.NextReviewDate)
	assert.Nil(t, c2.LastReviewed)
	assert.Empty(t, c2.Tags)

	// Update in place.
	c2.IsActive = true
	c2.CurrentBox = 1
	require.NoError(t, db.SaveDeck(ctx, loaded))

	reloaded, err := db.LoadDeck(ctx, deck.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Cards, 2)
	assert.True(t, reloaded.Cards[1].IsActive)
	assert.Equal(t, 1, reloaded.Cards[1].CurrentBox)
}

func TestDB_SessionSlot(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	state, err := db.LoadSession(ctx, "d1")
	require.NoError(t, err)
	assert.Nil(t, state)

	started := time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)
	saved := &domain.SessionState{
		DeckID:           "d1",
		StudyMode:        domain.StudyModeMixed,
		CardsToStudy:     []string{"a", "b", "c"},
		CurrentCardIndex: 2,
		StudiedCards:     []string{"a", "b"},
		IncorrectCards:   []string{"b"},
		SessionStartTime: started,
		LastSaveTime:     started.Add(time.Minute),
		IsActive:         true,
		Statistics: domain.SessionStatistics{
			TotalCards:       3,
			CardsStudied:     2,
			CorrectAnswers:   1,
			IncorrectAnswers: 1,
			TotalStudyTime:   9 * time.Second,
		},
	}
	require.NoError(t, db.SaveSession(ctx, saved))

	loaded, err := db.LoadSession(ctx, "d1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, saved.CardsToStudy, loaded.CardsToStudy)
	assert.Equal(t, 2, loaded.CurrentCardIndex)
	assert.Equal(t, []string{"b"}, loaded.IncorrectCards)
	assert.True(t, loaded.IsActive)
	assert.Equal(t, domain.StudyModeMixed, loaded.StudyMode)
	assert.Equal(t, 9*time.Second, loaded.Statistics.TotalStudyTime)
	assert.True(t, loaded.SessionStartTime.Equal(started))

	other, err := db.LoadSession(ctx, "d2")
	require.NoError(t, err)
	assert.Nil(t, other, "the slot belongs to d1")

	// A second deck takes over the single slot.
	require.NoError(t, db.SaveSession(ctx, &domain.SessionState{DeckID: "d2", IsActive: true}))
	gone, err := db.LoadSession(ctx, "d1")
	require.NoError(t, err)
	assert.Nil(t, gone)

	// Clearing another deck leaves the slot alone.
	require.NoError(t, db.ClearSession(ctx, "d1"))
	current, err := db.CurrentSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, "d2", current.DeckID)

	require.NoError(t, db.ClearSession(ctx, "d2"))
	current, err = db.CurrentSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, current)
}

func TestDB_Sources(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	deck, err := db.CreateDeck(ctx, "golang")
	require.NoError(t, err)

	id, err := db.InsertSource(ctx, deck.ID, "/notes/go", SourceLocal)
	require.NoError(t, err)
	_, err = db.InsertSource(ctx, deck.ID, "https://github.com/example/cards.git", SourceGit)
	require.NoError(t, err)

	src, err := db.FindSourceByPath(ctx, "/notes/go")
	require.NoError(t, err)
	require.NotNil(t, src)
	assert.Equal(t, id, src.ID)
	assert.Equal(t, deck.ID, src.DeckID)
	assert.False(t, src.LastScanned.Valid)

	missing, err := db.FindSourceByPath(ctx, "/nowhere")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, db.UpdateSourceLastScanned(ctx, id))
	sources, err := db.GetAllSources(ctx)
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.True(t, sources[0].LastScanned.Valid)
	assert.Equal(t, SourceGit, sources[1].Type)

	require.NoError(t, db.DeleteSource(ctx, id))
	sources, err = db.GetAllSources(ctx)
	require.NoError(t, err)
	assert.Len(t, sources, 1)

	_, err = db.InsertSource(ctx, "no-such-deck", "/orphan", SourceLocal)
	assert.Error(t, err, "sources must reference an existing deck")
}
