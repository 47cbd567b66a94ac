package indexer

// Statements are executed one by one, the mysql driver does not accept
// multiple statements in a single call.
var schemas = map[string][]string{
	"sqlite": {
		`CREATE TABLE IF NOT EXISTS events (
			id         TEXT PRIMARY KEY,
			height     INTEGER NOT NULL,
			position   INTEGER NOT NULL,
			kind       TEXT NOT NULL,
			payload    TEXT NOT NULL,
			created_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS event_topics (
			event_id TEXT NOT NULL,
			topic    TEXT NOT NULL,
			PRIMARY KEY (event_id, topic),
			FOREIGN KEY (event_id) REFERENCES events(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_kind ON events(kind, height, position)`,
		`CREATE INDEX IF NOT EXISTS idx_events_order ON events(height, position)`,
		`CREATE INDEX IF NOT EXISTS idx_event_topics_topic ON event_topics(topic)`,
	},
	"mysql": {
		`CREATE TABLE IF NOT EXISTS events (
			id         CHAR(36) PRIMARY KEY,
			height     BIGINT NOT NULL,
			position   INT NOT NULL,
			kind       VARCHAR(64) NOT NULL,
			payload    LONGTEXT NOT NULL,
			created_at BIGINT NOT NULL,
			INDEX idx_events_kind (kind, height, position),
			INDEX idx_events_order (height, position)
		)`,
		`CREATE TABLE IF NOT EXISTS event_topics (
			event_id CHAR(36) NOT NULL,
			topic    VARCHAR(128) NOT NULL,
			PRIMARY KEY (event_id, topic),
			INDEX idx_event_topics_topic (topic),
			FOREIGN KEY (event_id) REFERENCES events(id) ON DELETE CASCADE
		)`,
	},
}
