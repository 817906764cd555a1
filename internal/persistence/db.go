// Package persistence provides SQLite-based storage for civilization
// snapshots and era reports. The evolution core only owns the in-memory
// serialize/restore contract; this store is the reference embedding the CLIs
// and tests use.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/deeptime/internal/evolution"
)

// DB wraps a SQLite connection.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS civilizations (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		noise_seed INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS snapshots (
		civ_id TEXT NOT NULL,
		turn INTEGER NOT NULL,
		era TEXT NOT NULL,
		year REAL NOT NULL,
		blob BLOB NOT NULL,
		PRIMARY KEY (civ_id, turn)
	);

	CREATE TABLE IF NOT EXISTS reports (
		civ_id TEXT NOT NULL,
		turn INTEGER NOT NULL,
		status TEXT NOT NULL,
		report_json TEXT NOT NULL,
		PRIMARY KEY (civ_id, turn)
	);

	CREATE INDEX IF NOT EXISTS idx_snapshots_civ ON snapshots(civ_id);
	CREATE INDEX IF NOT EXISTS idx_reports_status ON reports(status);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// RegisterCivilization records a civilization's identity and noise seed.
func (db *DB) RegisterCivilization(id uuid.UUID, name string, noiseSeed int64) error {
	_, err := db.conn.Exec(
		`INSERT OR REPLACE INTO civilizations (id, name, noise_seed) VALUES (?, ?, ?)`,
		id.String(), name, noiseSeed)
	if err != nil {
		return fmt.Errorf("register civilization: %w", err)
	}
	return nil
}

// SaveSnapshot persists a serialized state at its current turn.
func (db *DB) SaveSnapshot(st *evolution.State) error {
	blob, err := st.Serialize()
	if err != nil {
		return err
	}
	_, err = db.conn.Exec(
		`INSERT OR REPLACE INTO snapshots (civ_id, turn, era, year, blob) VALUES (?, ?, ?, ?, ?)`,
		st.CivID.String(), st.Turn, st.Era.Name(), st.Year, blob)
	if err != nil {
		return fmt.Errorf("save snapshot turn %d: %w", st.Turn, err)
	}
	return nil
}

// LoadLatestSnapshot restores the most recent snapshot for a civilization.
// Returns (nil, nil) when none exists.
func (db *DB) LoadLatestSnapshot(civID uuid.UUID) (*evolution.State, error) {
	var blob []byte
	err := db.conn.Get(&blob,
		`SELECT blob FROM snapshots WHERE civ_id = ? ORDER BY turn DESC LIMIT 1`, civID.String())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	st, err := evolution.Deserialize(blob)
	if err != nil {
		return nil, err
	}
	slog.Info("snapshot restored", "civ", civID, "turn", st.Turn, "era", st.Era.Name())
	return st, nil
}

// SaveReport persists one era report.
func (db *DB) SaveReport(rep *evolution.Report) error {
	raw, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	_, err = db.conn.Exec(
		`INSERT OR REPLACE INTO reports (civ_id, turn, status, report_json) VALUES (?, ?, ?, ?)`,
		rep.CivID, rep.Turn, string(rep.Status), string(raw))
	if err != nil {
		return fmt.Errorf("save report turn %d: %w", rep.Turn, err)
	}
	return nil
}

// LoadReports returns every stored report for a civilization in turn order.
func (db *DB) LoadReports(civID uuid.UUID) ([]*evolution.Report, error) {
	var rows []string
	err := db.conn.Select(&rows,
		`SELECT report_json FROM reports WHERE civ_id = ? ORDER BY turn ASC`, civID.String())
	if err != nil {
		return nil, fmt.Errorf("load reports: %w", err)
	}
	out := make([]*evolution.Report, 0, len(rows))
	for _, raw := range rows {
		var rep evolution.Report
		if err := json.Unmarshal([]byte(raw), &rep); err != nil {
			return nil, fmt.Errorf("decode report: %w", err)
		}
		out = append(out, &rep)
	}
	return out, nil
}
