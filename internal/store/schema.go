package store

const Schema = `
CREATE TABLE IF NOT EXISTS preferences (
	id TEXT PRIMARY KEY,
	genre TEXT NOT NULL,
	song_id INTEGER NOT NULL DEFAULT 0,
	score REAL NOT NULL,
	immutable BOOLEAN NOT NULL DEFAULT 0,
	inserted_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_preferences_genre ON preferences(genre);
CREATE INDEX IF NOT EXISTS idx_preferences_song ON preferences(song_id) WHERE immutable = 0;

CREATE TABLE IF NOT EXISTS queue_items (
	position INTEGER PRIMARY KEY,
	track_id INTEGER NOT NULL,
	title TEXT NOT NULL,
	artist TEXT,
	album TEXT,
	genre TEXT NOT NULL,
	stream_locator TEXT NOT NULL,
	thumbnail BLOB
);

CREATE TABLE IF NOT EXISTS queue_state (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`
