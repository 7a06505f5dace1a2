package storage

const schema = `
-- A deck groups the cards studied together.
CREATE TABLE IF NOT EXISTS decks (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    created_at DATETIME NOT NULL,
    last_studied DATETIME
);

-- Cards carry their Leitner box and review counters. The id is the content
-- hash at creation time and is unique within a deck.
CREATE TABLE IF NOT EXISTS cards (
    deck_id TEXT NOT NULL,
    id TEXT NOT NULL,
    position INTEGER NOT NULL DEFAULT 0,
    front TEXT NOT NULL,
    back TEXT NOT NULL,
    tags TEXT NOT NULL DEFAULT '[]',
    source TEXT NOT NULL DEFAULT '',
    current_box INTEGER NOT NULL DEFAULT 0,
    is_active INTEGER NOT NULL DEFAULT 1,
    last_reviewed DATETIME,
    next_review_date DATETIME,
    created_at DATETIME NOT NULL,
    total_reviews INTEGER NOT NULL DEFAULT 0,
    correct_answers INTEGER NOT NULL DEFAULT 0,
    incorrect_answers INTEGER NOT NULL DEFAULT 0,
    streak INTEGER NOT NULL DEFAULT 0,
    longest_streak INTEGER NOT NULL DEFAULT 0,
    average_response_time REAL NOT NULL DEFAULT 0,
    total_study_time INTEGER NOT NULL DEFAULT 0, -- nanoseconds
    last_study_session DATETIME,

    PRIMARY KEY (deck_id, id),
    FOREIGN KEY (deck_id) REFERENCES decks(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_cards_next_review ON cards(deck_id, next_review_date);

-- Sources are local directories or git repositories feeding a deck.
CREATE TABLE IF NOT EXISTS sources (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    deck_id TEXT NOT NULL,
    path TEXT NOT NULL UNIQUE,
    type TEXT NOT NULL DEFAULT 'local', -- local | git
    last_scanned DATETIME,

    FOREIGN KEY (deck_id) REFERENCES decks(id) ON DELETE CASCADE
);

-- A single slot holding the one resumable study session.
CREATE TABLE IF NOT EXISTS session_state (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    deck_id TEXT NOT NULL,
    state TEXT NOT NULL,
    updated_at DATETIME NOT NULL
);
`
