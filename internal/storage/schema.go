package storage

const schema = `
-- One row per card identity. review_count = 0 and NULL reviewed columns
-- encode a card that has never been reviewed. Rows are never deleted here;
-- a row whose hash no longer appears in any source file is simply inert.
CREATE TABLE IF NOT EXISTS cards (
    card_hash        TEXT PRIMARY KEY,
    added_at         DATETIME NOT NULL,
    last_reviewed_at DATETIME,
    stability        REAL,
    difficulty       REAL,
    interval_raw     REAL,
    interval_days    INTEGER NOT NULL DEFAULT 0,
    due_date         DATETIME,
    review_count     INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_cards_due_date ON cards(due_date);

-- Immutable append-only record of every graded review.
CREATE TABLE IF NOT EXISTS review_log (
    id          TEXT PRIMARY KEY,
    card_hash   TEXT NOT NULL,
    reviewed_at DATETIME NOT NULL,
    grade       INTEGER NOT NULL
);

-- The 'sources' table tracks where cards come from, either a local
-- directory or a git repository.
CREATE TABLE IF NOT EXISTS sources (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    path         TEXT NOT NULL UNIQUE,
    kind         TEXT NOT NULL,
    last_scanned DATETIME
);
`
