package storage

const schema = `
-- The 'ratings' table is an append-only log of review outcomes.
-- Timestamps are fixed-width ISO-8601 UTC text so they sort as strings.
CREATE TABLE IF NOT EXISTS ratings (
    outcome TEXT NOT NULL,
    item_id TEXT NOT NULL,
    timestamp TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS ratings_item_id ON ratings (item_id, timestamp);
`
