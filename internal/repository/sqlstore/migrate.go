package sqlstore

import (
	"context"
	"fmt"
	"strings"
)

// schema is applied statement by statement on every start. Each statement is
// idempotent. {{ts}} and {{bool}} are replaced with the dialect's column types.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		email         TEXT NOT NULL UNIQUE,
		name          TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL DEFAULT '',
		role          TEXT NOT NULL DEFAULT 'admin',
		created_at    {{ts}} NOT NULL,
		updated_at    {{ts}} NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS skills (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL UNIQUE,
		icon_url   TEXT NOT NULL DEFAULT '',
		created_at {{ts}} NOT NULL,
		updated_at {{ts}} NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS projects (
		id          TEXT PRIMARY KEY,
		title       TEXT NOT NULL,
		description TEXT NOT NULL,
		image_url   TEXT NOT NULL,
		github_url  TEXT NOT NULL DEFAULT '',
		live_url    TEXT NOT NULL DEFAULT '',
		featured    {{bool}} NOT NULL DEFAULT FALSE,
		sort_order  INTEGER NOT NULL DEFAULT 0,
		created_at  {{ts}} NOT NULL,
		updated_at  {{ts}} NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_projects_order ON projects(sort_order, created_at)`,

	`CREATE TABLE IF NOT EXISTS project_skills (
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		skill_id   TEXT NOT NULL REFERENCES skills(id) ON DELETE CASCADE,
		position   INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (project_id, skill_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_project_skills_skill ON project_skills(skill_id)`,

	`CREATE TABLE IF NOT EXISTS general_skills (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		icon_url   TEXT NOT NULL DEFAULT '',
		sort_order INTEGER NOT NULL DEFAULT 0,
		created_at {{ts}} NOT NULL,
		updated_at {{ts}} NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS experiences (
		id          TEXT PRIMARY KEY,
		title       TEXT NOT NULL,
		company     TEXT NOT NULL,
		location    TEXT NOT NULL DEFAULT '',
		start_date  {{ts}} NOT NULL,
		end_date    {{ts}},
		description TEXT NOT NULL DEFAULT '',
		skills      TEXT NOT NULL DEFAULT '[]',
		sort_order  INTEGER NOT NULL DEFAULT 0,
		logo_url    TEXT NOT NULL DEFAULT '',
		created_at  {{ts}} NOT NULL,
		updated_at  {{ts}} NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS education (
		id           TEXT PRIMARY KEY,
		institution  TEXT NOT NULL,
		degree       TEXT NOT NULL,
		field        TEXT NOT NULL DEFAULT '',
		location     TEXT NOT NULL DEFAULT '',
		start_date   {{ts}} NOT NULL,
		end_date     {{ts}},
		description  TEXT NOT NULL DEFAULT '',
		achievements TEXT NOT NULL DEFAULT '[]',
		sort_order   INTEGER NOT NULL DEFAULT 0,
		logo_url     TEXT NOT NULL DEFAULT '',
		created_at   {{ts}} NOT NULL,
		updated_at   {{ts}} NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS quotes (
		id         TEXT PRIMARY KEY,
		text       TEXT NOT NULL,
		author     TEXT NOT NULL DEFAULT '',
		sort_order INTEGER NOT NULL DEFAULT 0,
		created_at {{ts}} NOT NULL,
		updated_at {{ts}} NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS profile (
		id              TEXT PRIMARY KEY,
		name            TEXT NOT NULL DEFAULT '',
		title           TEXT NOT NULL DEFAULT '',
		bio             TEXT NOT NULL DEFAULT '',
		avatar_url      TEXT NOT NULL DEFAULT '',
		email           TEXT NOT NULL DEFAULT '',
		location        TEXT NOT NULL DEFAULT '',
		github_url      TEXT NOT NULL DEFAULT '',
		linkedin_url    TEXT NOT NULL DEFAULT '',
		twitter_url     TEXT NOT NULL DEFAULT '',
		resume_url      TEXT NOT NULL DEFAULT '',
		scheduling_link TEXT NOT NULL DEFAULT '',
		show_avatar     {{bool}} NOT NULL DEFAULT TRUE,
		created_at      {{ts}} NOT NULL,
		updated_at      {{ts}} NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS about (
		id         TEXT PRIMARY KEY,
		content    TEXT NOT NULL DEFAULT '',
		updated_at {{ts}} NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS site_settings (
		id                TEXT PRIMARY KEY,
		title             TEXT NOT NULL DEFAULT '',
		description       TEXT NOT NULL DEFAULT '',
		keywords          TEXT NOT NULL DEFAULT '',
		dark_mode_default {{bool}} NOT NULL DEFAULT FALSE,
		updated_at        {{ts}} NOT NULL
	)`,
}

func (db *DB) columnTypes() *strings.Replacer {
	if db.dialect == Postgres {
		return strings.NewReplacer("{{ts}}", "TIMESTAMPTZ", "{{bool}}", "BOOLEAN")
	}
	return strings.NewReplacer("{{ts}}", "DATETIME", "{{bool}}", "BOOLEAN")
}

// migrate creates any missing tables and indexes.
func (db *DB) migrate(ctx context.Context) error {
	types := db.columnTypes()
	for i, stmt := range schema {
		if _, err := db.conn.ExecContext(ctx, types.Replace(stmt)); err != nil {
			return fmt.Errorf("applying schema statement %d: %w", i, err)
		}
	}
	return nil
}

// Migrate re-applies the schema. Open already does this; the CLI exposes it so
// an operator can check a database without starting the server.
func (db *DB) Migrate(ctx context.Context) error {
	return db.migrate(ctx)
}
