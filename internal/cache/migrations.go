package cache

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS emails (
	id          TEXT PRIMARY KEY,
	position    INTEGER NOT NULL,
	sender      TEXT NOT NULL DEFAULT '',
	subject     TEXT NOT NULL DEFAULT '',
	body        TEXT NOT NULL DEFAULT '',
	timestamp   TEXT NOT NULL DEFAULT '',
	category    TEXT NOT NULL DEFAULT 'other',
	actions     TEXT NOT NULL DEFAULT '[]',
	summary     TEXT NOT NULL DEFAULT '',
	draft_reply TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS drafts (
	id        TEXT PRIMARY KEY,
	position  INTEGER NOT NULL,
	recipient TEXT NOT NULL DEFAULT '',
	subject   TEXT NOT NULL DEFAULT '',
	body      TEXT NOT NULL DEFAULT '',
	timestamp TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_emails_position ON emails(position);
CREATE INDEX IF NOT EXISTS idx_drafts_position ON drafts(position);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE TABLE IF NOT EXISTS sync_meta (
	name      TEXT PRIMARY KEY,
	synced_at INTEGER NOT NULL
);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
