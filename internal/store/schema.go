package store

// Schema is applied on every Open. All statements are idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
	uid          TEXT PRIMARY KEY,
	email        TEXT NOT NULL DEFAULT '',
	display_name TEXT NOT NULL DEFAULT '',
	photo_url    TEXT NOT NULL DEFAULT '',
	provider     TEXT NOT NULL DEFAULT '',
	updated_at   INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS projects (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	html       TEXT NOT NULL DEFAULT '',
	css        TEXT NOT NULL DEFAULT '',
	js         TEXT NOT NULL DEFAULT '',
	output     TEXT NOT NULL DEFAULT '',
	owner_uid  TEXT NOT NULL REFERENCES users(uid),
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_projects_owner ON projects(owner_uid, id DESC);

CREATE TABLE IF NOT EXISTS collections (
	id         TEXT PRIMARY KEY,
	owner_uid  TEXT NOT NULL REFERENCES users(uid) ON DELETE CASCADE,
	name       TEXT NOT NULL,
	created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_collections_owner ON collections(owner_uid, id);

CREATE TABLE IF NOT EXISTS collection_projects (
	collection_id TEXT NOT NULL REFERENCES collections(id) ON DELETE CASCADE,
	project_id    TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
	added_at      INTEGER NOT NULL,
	PRIMARY KEY (collection_id, project_id)
);
`
