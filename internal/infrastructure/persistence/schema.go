package persistence

const schema = `
CREATE TABLE IF NOT EXISTS groups (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	color TEXT NOT NULL DEFAULT '',
	card_count INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS cards (
	id TEXT PRIMARY KEY,
	text TEXT NOT NULL,
	translation TEXT NOT NULL,
	phonetic TEXT NOT NULL DEFAULT '',
	notes TEXT NOT NULL DEFAULT '',
	examples TEXT NOT NULL DEFAULT '[]',
	senses TEXT NOT NULL DEFAULT '[]',
	group_id TEXT NOT NULL DEFAULT 'default',
	tags TEXT NOT NULL DEFAULT '[]',
	due INTEGER NOT NULL,
	stability REAL NOT NULL DEFAULT 1.0,
	difficulty REAL NOT NULL DEFAULT 5.0,
	elapsed_days INTEGER NOT NULL DEFAULT 0,
	scheduled_days INTEGER NOT NULL DEFAULT 0,
	reps INTEGER NOT NULL DEFAULT 0,
	lapses INTEGER NOT NULL DEFAULT 0,
	last_review INTEGER NOT NULL DEFAULT 0,
	state TEXT NOT NULL DEFAULT 'new',
	proficiency TEXT NOT NULL DEFAULT 'new',
	total_reviews INTEGER NOT NULL DEFAULT 0,
	correct_count INTEGER NOT NULL DEFAULT 0,
	wrong_count INTEGER NOT NULL DEFAULT 0,
	avg_response_ms REAL NOT NULL DEFAULT 0,
	favorite INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL,

	FOREIGN KEY(group_id) REFERENCES groups(id)
);

CREATE INDEX IF NOT EXISTS idx_cards_due ON cards(due);
CREATE INDEX IF NOT EXISTS idx_cards_group ON cards(group_id);
CREATE INDEX IF NOT EXISTS idx_cards_favorite ON cards(favorite);

-- Append-only review log. Rows are never updated or deleted.
CREATE TABLE IF NOT EXISTS review_log (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	card_id TEXT NOT NULL,
	rating INTEGER NOT NULL,
	response_time_ms INTEGER NOT NULL DEFAULT 0,
	reviewed_at INTEGER NOT NULL,
	state_before TEXT NOT NULL,
	state_after TEXT NOT NULL,
	stability REAL NOT NULL DEFAULT 0,
	difficulty REAL NOT NULL DEFAULT 0,
	scheduled_days INTEGER NOT NULL DEFAULT 0,
	elapsed_days INTEGER NOT NULL DEFAULT 0,

	FOREIGN KEY(card_id) REFERENCES cards(id)
);

CREATE INDEX IF NOT EXISTS idx_review_log_card ON review_log(card_id);
CREATE INDEX IF NOT EXISTS idx_review_log_reviewed_at ON review_log(reviewed_at);

CREATE TABLE IF NOT EXISTS daily_stats (
	date TEXT PRIMARY KEY,
	new_cards INTEGER NOT NULL DEFAULT 0,
	reviewed_cards INTEGER NOT NULL DEFAULT 0,
	mastered_cards INTEGER NOT NULL DEFAULT 0,
	total_answers INTEGER NOT NULL DEFAULT 0,
	correct_answers INTEGER NOT NULL DEFAULT 0,
	wrong_answers INTEGER NOT NULL DEFAULT 0,
	study_time_ms INTEGER NOT NULL DEFAULT 0,
	studied_ids TEXT NOT NULL DEFAULT '[]',
	new_ids TEXT NOT NULL DEFAULT '[]',
	mastered_ids TEXT NOT NULL DEFAULT '[]'
);

CREATE TABLE IF NOT EXISTS settings (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`
