// Package sqlitestore provides a durable revision store backed by SQLite.
package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/agentfoundry/agentkernel/agent"
	"github.com/agentfoundry/agentkernel/registry"
)

const schema = `
CREATE TABLE IF NOT EXISTS revisions (
	seq              INTEGER PRIMARY KEY AUTOINCREMENT,
	agent_id         TEXT NOT NULL,
	version          TEXT NOT NULL,
	blueprint_json   TEXT NOT NULL,
	author           TEXT NOT NULL,
	description      TEXT NOT NULL,
	created_at       TEXT NOT NULL,
	tags_json        TEXT NOT NULL,
	previous_version TEXT,
	diff_json        TEXT,
	UNIQUE(agent_id, version)
);
CREATE INDEX IF NOT EXISTS idx_revisions_agent ON revisions(agent_id, seq DESC);
`

// Store persists revisions in a SQLite database. Blueprint snapshots, tags,
// and diffs are stored as JSON columns; ordering derives from the append
// sequence, not timestamps.
type Store struct {
	db *sql.DB
}

var _ registry.Store = (*Store)(nil)

// Open opens (creating if needed) a SQLite database at path and migrates the
// schema. Use ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	// modernc.org/sqlite serializes access per connection; a single
	// connection avoids SQLITE_BUSY on concurrent writers.
	db.SetMaxOpenConns(1)
	store, err := New(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// New wraps an existing database handle and migrates the schema.
func New(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate revisions schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Append(ctx context.Context, revision registry.Revision) error {
	blueprintJSON, err := json.Marshal(revision.Blueprint)
	if err != nil {
		return fmt.Errorf("marshal blueprint: %w", err)
	}
	tagsJSON, err := json.Marshal(revision.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}
	var diffJSON any
	if revision.Diff != nil {
		data, err := json.Marshal(revision.Diff)
		if err != nil {
			return fmt.Errorf("marshal diff: %w", err)
		}
		diffJSON = string(data)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO revisions(agent_id,version,blueprint_json,author,description,created_at,tags_json,previous_version,diff_json)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		revision.AgentID,
		revision.Version,
		string(blueprintJSON),
		revision.Author,
		revision.Description,
		revision.CreatedAt.UTC().Format(time.RFC3339Nano),
		string(tagsJSON),
		nullable(revision.PreviousVersion),
		diffJSON,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf(
				"%w: agent %q version %s",
				registry.ErrVersionConflict,
				revision.AgentID,
				revision.Version,
			)
		}
		return fmt.Errorf("insert revision: %w", err)
	}
	return nil
}

const revisionColumns = `agent_id,version,blueprint_json,author,description,created_at,tags_json,COALESCE(previous_version,''),diff_json`

func (s *Store) Get(ctx context.Context, agentID, version string) (registry.Revision, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+revisionColumns+` FROM revisions WHERE agent_id=? AND version=?`,
		agentID, version,
	)
	return scanRevision(row.Scan)
}

func (s *Store) Latest(ctx context.Context, agentID string) (registry.Revision, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+revisionColumns+` FROM revisions WHERE agent_id=? ORDER BY seq DESC LIMIT 1`,
		agentID,
	)
	return scanRevision(row.Scan)
}

func (s *Store) List(ctx context.Context, agentID string) ([]registry.Revision, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+revisionColumns+` FROM revisions WHERE agent_id=? ORDER BY seq DESC`,
		agentID,
	)
	if err != nil {
		return nil, fmt.Errorf("list revisions: %w", err)
	}
	defer rows.Close()

	var out []registry.Revision
	for rows.Next() {
		revision, ok, err := scanRevision(rows.Scan)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, revision)
		}
	}
	return out, rows.Err()
}

func (s *Store) Agents(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT agent_id FROM revisions`)
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var agentID string
		if err := rows.Scan(&agentID); err != nil {
			return nil, err
		}
		out = append(out, agentID)
	}
	return out, rows.Err()
}

func (s *Store) Purge(ctx context.Context, agentID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM revisions WHERE agent_id=?`, agentID)
	return err
}

func scanRevision(scan func(dest ...any) error) (registry.Revision, bool, error) {
	var (
		revision      registry.Revision
		blueprintJSON string
		createdAt     string
		tagsJSON      string
		diffJSON      sql.NullString
	)
	err := scan(
		&revision.AgentID,
		&revision.Version,
		&blueprintJSON,
		&revision.Author,
		&revision.Description,
		&createdAt,
		&tagsJSON,
		&revision.PreviousVersion,
		&diffJSON,
	)
	if err == sql.ErrNoRows {
		return registry.Revision{}, false, nil
	}
	if err != nil {
		return registry.Revision{}, false, fmt.Errorf("scan revision: %w", err)
	}

	var blueprint agent.Blueprint
	if err := json.Unmarshal([]byte(blueprintJSON), &blueprint); err != nil {
		return registry.Revision{}, false, fmt.Errorf("unmarshal blueprint: %w", err)
	}
	revision.Blueprint = blueprint
	if err := json.Unmarshal([]byte(tagsJSON), &revision.Tags); err != nil {
		return registry.Revision{}, false, fmt.Errorf("unmarshal tags: %w", err)
	}
	if diffJSON.Valid {
		var diff registry.Diff
		if err := json.Unmarshal([]byte(diffJSON.String), &diff); err != nil {
			return registry.Revision{}, false, fmt.Errorf("unmarshal diff: %w", err)
		}
		revision.Diff = &diff
	}
	parsed, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return registry.Revision{}, false, fmt.Errorf("parse created_at: %w", err)
	}
	revision.CreatedAt = parsed
	return revision, true, nil
}

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func isUniqueViolation(err error) bool {
	// modernc.org/sqlite reports constraint failures in the error text;
	// the driver does not export a typed constraint error.
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
