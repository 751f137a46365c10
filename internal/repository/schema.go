package repository

const Schema = `
CREATE TABLE IF NOT EXISTS labels (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT,
	genre_tags TEXT NOT NULL DEFAULT '[]',
	label_dna TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS artists (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	bio TEXT,
	image_url TEXT,
	genre_tags TEXT NOT NULL DEFAULT '[]',
	is_candidate INTEGER NOT NULL DEFAULT 0,
	provenance TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS roster_memberships (
	label_id TEXT NOT NULL REFERENCES labels(id),
	artist_id TEXT NOT NULL REFERENCES artists(id),
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (label_id, artist_id)
);

CREATE TABLE IF NOT EXISTS platform_accounts (
	id TEXT PRIMARY KEY,
	artist_id TEXT NOT NULL REFERENCES artists(id),
	platform TEXT NOT NULL,
	platform_id TEXT NOT NULL,
	url TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	UNIQUE (platform, platform_id)
);

CREATE TABLE IF NOT EXISTS snapshots (
	id TEXT PRIMARY KEY,
	artist_id TEXT NOT NULL REFERENCES artists(id),
	platform TEXT NOT NULL,
	captured_at DATETIME NOT NULL,
	captured_day TEXT NOT NULL,
	followers INTEGER NOT NULL DEFAULT 0,
	views INTEGER NOT NULL DEFAULT 0,
	likes INTEGER NOT NULL DEFAULT 0,
	comments INTEGER NOT NULL DEFAULT 0,
	engagement_rate REAL NOT NULL DEFAULT 0,
	UNIQUE (artist_id, platform, captured_day)
);
CREATE INDEX IF NOT EXISTS ix_snapshots_artist_time ON snapshots (artist_id, captured_at);

CREATE TABLE IF NOT EXISTS embeddings (
	artist_id TEXT NOT NULL REFERENCES artists(id),
	provider TEXT NOT NULL,
	vector TEXT NOT NULL,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (artist_id, provider)
);

CREATE TABLE IF NOT EXISTS artist_features (
	id TEXT PRIMARY KEY,
	artist_id TEXT NOT NULL REFERENCES artists(id),
	computed_at DATETIME NOT NULL,
	growth_7d REAL,
	growth_30d REAL,
	acceleration REAL NOT NULL DEFAULT 0,
	engagement_rate REAL NOT NULL DEFAULT 0,
	momentum_score REAL NOT NULL DEFAULT 0,
	risk_score REAL NOT NULL DEFAULT 0,
	risk_flags TEXT NOT NULL DEFAULT '[]',
	fallback INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS ix_features_artist_time ON artist_features (artist_id, computed_at);

CREATE TABLE IF NOT EXISTS taste_maps (
	id TEXT PRIMARY KEY,
	label_id TEXT NOT NULL REFERENCES labels(id),
	version INTEGER NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	UNIQUE (label_id, version)
);

CREATE TABLE IF NOT EXISTS taste_map_clusters (
	id TEXT PRIMARY KEY,
	taste_map_id TEXT NOT NULL REFERENCES taste_maps(id),
	cluster_index INTEGER NOT NULL,
	name TEXT NOT NULL,
	centroid TEXT NOT NULL,
	artist_ids TEXT NOT NULL DEFAULT '[]'
);

CREATE TABLE IF NOT EXISTS feed_batches (
	id TEXT PRIMARY KEY,
	label_id TEXT NOT NULL REFERENCES labels(id),
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS feed_items (
	id TEXT PRIMARY KEY,
	batch_id TEXT NOT NULL,
	label_id TEXT NOT NULL REFERENCES labels(id),
	artist_id TEXT NOT NULL REFERENCES artists(id),
	fit_score REAL NOT NULL,
	momentum_score REAL NOT NULL,
	risk_score REAL NOT NULL,
	final_score REAL NOT NULL,
	reasons TEXT NOT NULL DEFAULT '[]',
	nearest_cluster_id TEXT,
	nearest_cluster_name TEXT,
	nearest_roster_artist_id TEXT,
	fallback_scoring INTEGER NOT NULL DEFAULT 0,
	rank INTEGER NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS ix_feed_items_batch ON feed_items (batch_id, rank);

CREATE TABLE IF NOT EXISTS feedback (
	id TEXT PRIMARY KEY,
	label_id TEXT NOT NULL REFERENCES labels(id),
	artist_id TEXT NOT NULL REFERENCES artists(id),
	action TEXT NOT NULL,
	notes TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS alert_rules (
	id TEXT PRIMARY KEY,
	label_id TEXT NOT NULL REFERENCES labels(id),
	name TEXT NOT NULL,
	severity TEXT NOT NULL DEFAULT 'medium',
	active INTEGER NOT NULL DEFAULT 1,
	criteria TEXT NOT NULL DEFAULT '{}',
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS alerts (
	id TEXT PRIMARY KEY,
	label_id TEXT NOT NULL REFERENCES labels(id),
	artist_id TEXT NOT NULL REFERENCES artists(id),
	rule_id TEXT NOT NULL REFERENCES alert_rules(id),
	severity TEXT NOT NULL DEFAULT 'medium',
	status TEXT NOT NULL DEFAULT 'new',
	title TEXT NOT NULL,
	description TEXT,
	context TEXT NOT NULL DEFAULT '{}',
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS ix_alerts_dedupe ON alerts (label_id, artist_id, rule_id, created_at);

CREATE TABLE IF NOT EXISTS watchlists (
	id TEXT PRIMARY KEY,
	label_id TEXT NOT NULL REFERENCES labels(id),
	name TEXT NOT NULL,
	description TEXT,
	active INTEGER NOT NULL DEFAULT 1,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS watchlist_items (
	id TEXT PRIMARY KEY,
	watchlist_id TEXT NOT NULL REFERENCES watchlists(id),
	artist_id TEXT NOT NULL REFERENCES artists(id),
	source TEXT NOT NULL DEFAULT 'manual',
	notes TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	UNIQUE (watchlist_id, artist_id)
);

CREATE TABLE IF NOT EXISTS artist_briefs (
	artist_id TEXT NOT NULL REFERENCES artists(id),
	label_id TEXT NOT NULL REFERENCES labels(id),
	input_hash TEXT NOT NULL,
	summary TEXT NOT NULL,
	highlights TEXT NOT NULL DEFAULT '[]',
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (artist_id, label_id)
);

CREATE TABLE IF NOT EXISTS pipeline_runs (
	label_id TEXT PRIMARY KEY REFERENCES labels(id),
	state TEXT NOT NULL DEFAULT 'idle',
	started_at DATETIME,
	completed_at DATETIME,
	error TEXT,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`
