package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/m-mizutani/goerr/v2"
	_ "modernc.org/sqlite"

	"github.com/aztralwrld/eve/pkg/model"
)

// sqliteRepo implements Repository on a local SQLite database. It is the
// default backend for single-machine use.
type sqliteRepo struct {
	db *sql.DB
}

// NewSQLite opens or creates a SQLite database at the given path
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, goerr.Wrap(err, "failed to create database directory")
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open database", goerr.V("path", dbPath))
	}

	r := &sqliteRepo{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, goerr.Wrap(err, "failed to migrate database")
	}

	return r, nil
}

func (r *sqliteRepo) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS messages (
		seq         INTEGER PRIMARY KEY AUTOINCREMENT,
		id          TEXT NOT NULL UNIQUE,
		role        TEXT NOT NULL,
		content     TEXT NOT NULL,
		created_at  INTEGER NOT NULL,
		attachment  TEXT NOT NULL DEFAULT '',
		state       TEXT,
		image_url   TEXT NOT NULL DEFAULT '',
		audio_data  TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS patches (
		id                   TEXT PRIMARY KEY,
		name                 TEXT NOT NULL,
		description          TEXT NOT NULL,
		logic                TEXT NOT NULL,
		instruction_modifier TEXT NOT NULL,
		created_at           INTEGER NOT NULL,
		active               INTEGER NOT NULL DEFAULT 1
	);

	CREATE TABLE IF NOT EXISTS nexus_entries (
		id          TEXT PRIMARY KEY,
		content     TEXT NOT NULL,
		category    TEXT NOT NULL,
		created_at  INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS settings (
		id             INTEGER PRIMARY KEY CHECK (id = 1),
		detail         INTEGER NOT NULL,
		creativity     INTEGER NOT NULL,
		warmth         INTEGER NOT NULL,
		developer_mode INTEGER NOT NULL,
		enable_voice   INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_messages_created ON messages(created_at);
	`

	if _, err := r.db.Exec(schema); err != nil {
		return goerr.Wrap(err, "failed to create schema")
	}
	return nil
}

func (r *sqliteRepo) PutMessage(ctx context.Context, msg *model.Message) error {
	var stateJSON sql.NullString
	if msg.State != nil {
		data, err := json.Marshal(msg.State)
		if err != nil {
			return goerr.Wrap(err, "failed to marshal message state")
		}
		stateJSON = sql.NullString{String: string(data), Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO messages (id, role, content, created_at, attachment, state, image_url, audio_data)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		string(msg.ID), string(msg.Role), msg.Content, msg.CreatedAt.UnixNano(),
		msg.Attachment, stateJSON, msg.ImageURL, msg.AudioData,
	)
	if err != nil {
		return goerr.Wrap(err, "failed to insert message", goerr.V("id", msg.ID))
	}
	return nil
}

func (r *sqliteRepo) ListMessages(ctx context.Context) ([]*model.Message, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, role, content, created_at, attachment, state, image_url, audio_data
		FROM messages ORDER BY seq`)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query messages")
	}
	defer rows.Close()

	var messages []*model.Message
	for rows.Next() {
		var (
			msg       model.Message
			createdAt int64
			stateJSON sql.NullString
		)
		if err := rows.Scan(&msg.ID, &msg.Role, &msg.Content, &createdAt,
			&msg.Attachment, &stateJSON, &msg.ImageURL, &msg.AudioData); err != nil {
			return nil, goerr.Wrap(err, "failed to scan message")
		}
		msg.CreatedAt = time.Unix(0, createdAt)

		if stateJSON.Valid {
			var state model.State
			if err := json.Unmarshal([]byte(stateJSON.String), &state); err == nil {
				msg.State = &state
			}
		}

		messages = append(messages, &msg)
	}

	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate messages")
	}
	return messages, nil
}

func (r *sqliteRepo) ClearMessages(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM messages`); err != nil {
		return goerr.Wrap(err, "failed to clear messages")
	}
	return nil
}

func (r *sqliteRepo) GetSettings(ctx context.Context) (model.Settings, error) {
	var (
		s             model.Settings
		developerMode int
		enableVoice   int
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT detail, creativity, warmth, developer_mode, enable_voice
		FROM settings WHERE id = 1`).
		Scan(&s.Detail, &s.Creativity, &s.Warmth, &developerMode, &enableVoice)
	if errors.Is(err, sql.ErrNoRows) {
		return model.DefaultSettings(), nil
	}
	if err != nil {
		return model.Settings{}, goerr.Wrap(err, "failed to query settings")
	}

	s.DeveloperMode = developerMode != 0
	s.EnableVoice = enableVoice != 0
	return s, nil
}

func (r *sqliteRepo) PutSettings(ctx context.Context, settings model.Settings) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO settings (id, detail, creativity, warmth, developer_mode, enable_voice)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			detail = excluded.detail,
			creativity = excluded.creativity,
			warmth = excluded.warmth,
			developer_mode = excluded.developer_mode,
			enable_voice = excluded.enable_voice`,
		settings.Detail, settings.Creativity, settings.Warmth,
		boolToInt(settings.DeveloperMode), boolToInt(settings.EnableVoice),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to store settings")
	}
	return nil
}

func (r *sqliteRepo) PutPatch(ctx context.Context, patch *model.Patch) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO patches (id, name, description, logic, instruction_modifier, created_at, active)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			logic = excluded.logic,
			instruction_modifier = excluded.instruction_modifier,
			active = excluded.active`,
		string(patch.ID), patch.Name, patch.Description, patch.Logic,
		patch.InstructionModifier, patch.CreatedAt.UnixNano(), boolToInt(patch.Active),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to store patch", goerr.V("id", patch.ID))
	}
	return nil
}

func (r *sqliteRepo) GetPatch(ctx context.Context, id model.PatchID) (*model.Patch, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, description, logic, instruction_modifier, created_at, active
		FROM patches WHERE id = ?`, string(id))

	patch, err := scanPatch(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(model.ErrNotFound, "patch not found", goerr.V("id", id))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query patch", goerr.V("id", id))
	}
	return patch, nil
}

func (r *sqliteRepo) ListPatches(ctx context.Context) ([]*model.Patch, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, description, logic, instruction_modifier, created_at, active
		FROM patches ORDER BY created_at`)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query patches")
	}
	defer rows.Close()

	var patches []*model.Patch
	for rows.Next() {
		patch, err := scanPatch(rows.Scan)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan patch")
		}
		patches = append(patches, patch)
	}

	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate patches")
	}
	return patches, nil
}

func (r *sqliteRepo) DeletePatch(ctx context.Context, id model.PatchID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM patches WHERE id = ?`, string(id)); err != nil {
		return goerr.Wrap(err, "failed to delete patch", goerr.V("id", id))
	}
	return nil
}

func (r *sqliteRepo) PutNexusEntry(ctx context.Context, entry *model.NexusEntry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO nexus_entries (id, content, category, created_at)
		VALUES (?, ?, ?, ?)`,
		string(entry.ID), entry.Content, string(entry.Category), entry.CreatedAt.UnixNano(),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to insert nexus entry", goerr.V("id", entry.ID))
	}
	return nil
}

func (r *sqliteRepo) ListNexusEntries(ctx context.Context) ([]*model.NexusEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, content, category, created_at
		FROM nexus_entries ORDER BY created_at`)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query nexus entries")
	}
	defer rows.Close()

	var entries []*model.NexusEntry
	for rows.Next() {
		var (
			entry     model.NexusEntry
			createdAt int64
		)
		if err := rows.Scan(&entry.ID, &entry.Content, &entry.Category, &createdAt); err != nil {
			return nil, goerr.Wrap(err, "failed to scan nexus entry")
		}
		entry.CreatedAt = time.Unix(0, createdAt)
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate nexus entries")
	}
	return entries, nil
}

func (r *sqliteRepo) DeleteNexusEntry(ctx context.Context, id model.NexusEntryID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM nexus_entries WHERE id = ?`, string(id)); err != nil {
		return goerr.Wrap(err, "failed to delete nexus entry", goerr.V("id", id))
	}
	return nil
}

func (r *sqliteRepo) ClearNexus(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM nexus_entries`); err != nil {
		return goerr.Wrap(err, "failed to clear nexus entries")
	}
	return nil
}

func (r *sqliteRepo) Close() error {
	return r.db.Close()
}

func scanPatch(scan func(dest ...any) error) (*model.Patch, error) {
	var (
		patch     model.Patch
		createdAt int64
		active    int
	)
	if err := scan(&patch.ID, &patch.Name, &patch.Description, &patch.Logic,
		&patch.InstructionModifier, &createdAt, &active); err != nil {
		return nil, err
	}
	patch.CreatedAt = time.Unix(0, createdAt)
	patch.Active = active != 0
	return &patch, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
