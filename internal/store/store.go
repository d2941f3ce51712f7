// Package store persists a decoded snapshot into a local SQLite
// database so repeated report builds (and serve mode) can work
// without the original snapshot file. Row ordinals preserve
// input order; the aggregation core's tie-break contracts
// depend on records coming back in the order they went in.
package store

import (
	"database/sql"
	_ "embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/runlab/unwrapped/internal/record"
)

//go:embed schema.sql
var schemaSQL string

// DB manages a write connection and a read-only pool over the
// snapshot database.
type DB struct {
	writer *sql.DB
	reader *sql.DB
	mu     sync.Mutex // serializes writes
}

// makeDSN builds a SQLite connection string with shared pragmas.
func makeDSN(path string, readOnly bool) string {
	params := url.Values{}
	params.Set("_journal_mode", "WAL")
	params.Set("_busy_timeout", "5000")
	params.Set("_foreign_keys", "ON")
	if readOnly {
		params.Set("mode", "ro")
	} else {
		params.Set("_synchronous", "NORMAL")
	}
	return path + "?" + params.Encode()
}

// Open creates or opens the snapshot database at the given
// path, configuring WAL mode and separate writer and reader
// connections.
func Open(path string) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating db directory: %w", err)
	}

	writer, err := sql.Open("sqlite3", makeDSN(path, false))
	if err != nil {
		return nil, fmt.Errorf("opening writer: %w", err)
	}
	writer.SetMaxOpenConns(1)

	if _, err := writer.Exec(schemaSQL); err != nil {
		writer.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	reader, err := sql.Open("sqlite3", makeDSN(path, true))
	if err != nil {
		writer.Close()
		return nil, fmt.Errorf("opening reader: %w", err)
	}
	reader.SetMaxOpenConns(4)

	return &DB{writer: writer, reader: reader}, nil
}

// Close closes both connections.
func (db *DB) Close() error {
	rErr := db.reader.Close()
	wErr := db.writer.Close()
	if wErr != nil {
		return wErr
	}
	return rErr
}

// timePtr renders a nullable timestamp for storage.
func timePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// Save replaces the stored snapshot with snap in one
// transaction.
func (db *DB) Save(snap record.Snapshot) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	tx, err := db.writer.Begin()
	if err != nil {
		return fmt.Errorf("beginning save: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{
		"meta", "projects", "runs", "pipelines", "users",
		"artifacts", "models", "schedules", "services",
	} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	_, err = tx.Exec(
		`INSERT INTO meta (id, workspace, year, stacks, saved_at)
		 VALUES (1, ?, ?, ?, ?)`,
		snap.Workspace, snap.Year, snap.Records.Stacks,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("saving meta: %w", err)
	}

	if err := saveSet(tx, "", snap.Records); err != nil {
		return err
	}
	for i, p := range snap.Projects {
		_, err := tx.Exec(
			`INSERT INTO projects
			 (id, name, display_name, stacks, ordinal)
			 VALUES (?, ?, ?, ?, ?)`,
			p.ID, p.Name, p.DisplayName, p.Records.Stacks, i,
		)
		if err != nil {
			return fmt.Errorf("saving project %s: %w", p.Name, err)
		}
		if err := saveSet(tx, p.ID, p.Records); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing save: %w", err)
	}
	return nil
}

// saveSet inserts one record set scoped to projectID ("" for
// the top-level set).
func saveSet(tx *sql.Tx, projectID string, set record.Set) error {
	for i, r := range set.Runs {
		_, err := tx.Exec(
			`INSERT INTO runs (id, project_id, pipeline_id,
			 pipeline_name, config_name, user_id, created,
			 status, ordinal)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, projectID, r.PipelineID, r.PipelineName,
			r.ConfigName, r.UserID, timePtr(r.Created), r.Status, i,
		)
		if err != nil {
			return fmt.Errorf("saving run: %w", err)
		}
	}
	for i, p := range set.Pipelines {
		_, err := tx.Exec(
			`INSERT INTO pipelines
			 (id, project_id, name, owner_project, ordinal)
			 VALUES (?, ?, ?, ?, ?)`,
			p.ID, projectID, p.Name, p.ProjectID, i,
		)
		if err != nil {
			return fmt.Errorf("saving pipeline: %w", err)
		}
	}
	for i, u := range set.Users {
		_, err := tx.Exec(
			`INSERT INTO users (id, project_id, name, full_name,
			 avatar_url, is_service_account, ordinal)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			u.ID, projectID, u.Name, u.FullName, u.AvatarURL,
			u.IsServiceAccount, i,
		)
		if err != nil {
			return fmt.Errorf("saving user: %w", err)
		}
	}
	for i, a := range set.Artifacts {
		_, err := tx.Exec(
			`INSERT INTO artifacts (id, project_id, created, ordinal)
			 VALUES (?, ?, ?, ?)`,
			a.ID, projectID, timePtr(a.Created), i,
		)
		if err != nil {
			return fmt.Errorf("saving artifact: %w", err)
		}
	}
	for i, m := range set.Models {
		var numVersions, latestNumber any
		if m.NumVersions != nil {
			numVersions = *m.NumVersions
		}
		if m.LatestVersionNumber != nil {
			latestNumber = *m.LatestVersionNumber
		}
		_, err := tx.Exec(
			`INSERT INTO models (id, project_id, created,
			 num_versions, latest_version_name, latest_version_id,
			 latest_version_number, ordinal)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			m.ID, projectID, timePtr(m.Created), numVersions,
			m.LatestVersionName, m.LatestVersionID, latestNumber, i,
		)
		if err != nil {
			return fmt.Errorf("saving model: %w", err)
		}
	}
	for i, s := range set.Schedules {
		_, err := tx.Exec(
			`INSERT INTO schedules (id, project_id, active, ordinal)
			 VALUES (?, ?, ?, ?)`,
			s.ID, projectID, s.Active, i,
		)
		if err != nil {
			return fmt.Errorf("saving schedule: %w", err)
		}
	}
	for i, s := range set.Services {
		_, err := tx.Exec(
			`INSERT INTO services (id, project_id, state, ordinal)
			 VALUES (?, ?, ?, ?)`,
			s.ID, projectID, s.State, i,
		)
		if err != nil {
			return fmt.Errorf("saving service: %w", err)
		}
	}
	return nil
}

// Load reads the stored snapshot back, with every record set in
// its original input order.
func (db *DB) Load() (record.Snapshot, error) {
	var snap record.Snapshot
	var topStacks int

	err := db.reader.QueryRow(
		`SELECT workspace, year, stacks FROM meta WHERE id = 1`,
	).Scan(&snap.Workspace, &snap.Year, &topStacks)
	if err == sql.ErrNoRows {
		return snap, fmt.Errorf("no snapshot stored")
	}
	if err != nil {
		return snap, fmt.Errorf("loading meta: %w", err)
	}

	snap.Records, err = db.loadSet("")
	if err != nil {
		return snap, err
	}
	snap.Records.Stacks = topStacks

	rows, err := db.reader.Query(
		`SELECT id, name, display_name, stacks
		 FROM projects ORDER BY ordinal`,
	)
	if err != nil {
		return snap, fmt.Errorf("loading projects: %w", err)
	}
	defer rows.Close()

	type projMeta struct {
		p      record.Project
		stacks int
	}
	var metas []projMeta
	for rows.Next() {
		var m projMeta
		if err := rows.Scan(
			&m.p.ID, &m.p.Name, &m.p.DisplayName, &m.stacks,
		); err != nil {
			return snap, fmt.Errorf("scanning project: %w", err)
		}
		metas = append(metas, m)
	}
	if err := rows.Err(); err != nil {
		return snap, fmt.Errorf("iterating projects: %w", err)
	}

	for _, m := range metas {
		set, err := db.loadSet(m.p.ID)
		if err != nil {
			return snap, err
		}
		set.Stacks = m.stacks
		m.p.Records = set
		snap.Projects = append(snap.Projects, m.p)
	}
	return snap, nil
}

// loadSet reads one project's record set (or the top-level set
// for projectID "").
func (db *DB) loadSet(projectID string) (record.Set, error) {
	var set record.Set

	rows, err := db.reader.Query(
		`SELECT id, pipeline_id, pipeline_name, config_name,
		 user_id, created, status
		 FROM runs WHERE project_id = ? ORDER BY ordinal`,
		projectID,
	)
	if err != nil {
		return set, fmt.Errorf("loading runs: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var r record.Run
		var created sql.NullString
		if err := rows.Scan(
			&r.ID, &r.PipelineID, &r.PipelineName, &r.ConfigName,
			&r.UserID, &created, &r.Status,
		); err != nil {
			return set, fmt.Errorf("scanning run: %w", err)
		}
		if created.Valid {
			r.Created = record.ParseTime(created.String)
		}
		set.Runs = append(set.Runs, r)
	}
	if err := rows.Err(); err != nil {
		return set, fmt.Errorf("iterating runs: %w", err)
	}

	if err := db.loadPipelines(projectID, &set); err != nil {
		return set, err
	}
	if err := db.loadUsers(projectID, &set); err != nil {
		return set, err
	}
	if err := db.loadArtifacts(projectID, &set); err != nil {
		return set, err
	}
	if err := db.loadModels(projectID, &set); err != nil {
		return set, err
	}
	if err := db.loadTriggers(projectID, &set); err != nil {
		return set, err
	}
	return set, nil
}

func (db *DB) loadPipelines(projectID string, set *record.Set) error {
	rows, err := db.reader.Query(
		`SELECT id, name, owner_project
		 FROM pipelines WHERE project_id = ? ORDER BY ordinal`,
		projectID,
	)
	if err != nil {
		return fmt.Errorf("loading pipelines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var p record.Pipeline
		if err := rows.Scan(&p.ID, &p.Name, &p.ProjectID); err != nil {
			return fmt.Errorf("scanning pipeline: %w", err)
		}
		set.Pipelines = append(set.Pipelines, p)
	}
	return rows.Err()
}

func (db *DB) loadUsers(projectID string, set *record.Set) error {
	rows, err := db.reader.Query(
		`SELECT id, name, full_name, avatar_url, is_service_account
		 FROM users WHERE project_id = ? ORDER BY ordinal`,
		projectID,
	)
	if err != nil {
		return fmt.Errorf("loading users: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var u record.User
		if err := rows.Scan(
			&u.ID, &u.Name, &u.FullName, &u.AvatarURL,
			&u.IsServiceAccount,
		); err != nil {
			return fmt.Errorf("scanning user: %w", err)
		}
		set.Users = append(set.Users, u)
	}
	return rows.Err()
}

func (db *DB) loadArtifacts(projectID string, set *record.Set) error {
	rows, err := db.reader.Query(
		`SELECT id, created
		 FROM artifacts WHERE project_id = ? ORDER BY ordinal`,
		projectID,
	)
	if err != nil {
		return fmt.Errorf("loading artifacts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var a record.Artifact
		var created sql.NullString
		if err := rows.Scan(&a.ID, &created); err != nil {
			return fmt.Errorf("scanning artifact: %w", err)
		}
		if created.Valid {
			a.Created = record.ParseTime(created.String)
		}
		set.Artifacts = append(set.Artifacts, a)
	}
	return rows.Err()
}

func (db *DB) loadModels(projectID string, set *record.Set) error {
	rows, err := db.reader.Query(
		`SELECT id, created, num_versions, latest_version_name,
		 latest_version_id, latest_version_number
		 FROM models WHERE project_id = ? ORDER BY ordinal`,
		projectID,
	)
	if err != nil {
		return fmt.Errorf("loading models: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var m record.Model
		var created sql.NullString
		var numVersions, latestNumber sql.NullInt64
		if err := rows.Scan(
			&m.ID, &created, &numVersions, &m.LatestVersionName,
			&m.LatestVersionID, &latestNumber,
		); err != nil {
			return fmt.Errorf("scanning model: %w", err)
		}
		if created.Valid {
			m.Created = record.ParseTime(created.String)
		}
		if numVersions.Valid {
			n := int(numVersions.Int64)
			m.NumVersions = &n
		}
		if latestNumber.Valid {
			n := int(latestNumber.Int64)
			m.LatestVersionNumber = &n
		}
		set.Models = append(set.Models, m)
	}
	return rows.Err()
}

func (db *DB) loadTriggers(projectID string, set *record.Set) error {
	rows, err := db.reader.Query(
		`SELECT id, active
		 FROM schedules WHERE project_id = ? ORDER BY ordinal`,
		projectID,
	)
	if err != nil {
		return fmt.Errorf("loading schedules: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var s record.Schedule
		if err := rows.Scan(&s.ID, &s.Active); err != nil {
			return fmt.Errorf("scanning schedule: %w", err)
		}
		set.Schedules = append(set.Schedules, s)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	svcRows, err := db.reader.Query(
		`SELECT id, state
		 FROM services WHERE project_id = ? ORDER BY ordinal`,
		projectID,
	)
	if err != nil {
		return fmt.Errorf("loading services: %w", err)
	}
	defer svcRows.Close()
	for svcRows.Next() {
		var s record.Service
		if err := svcRows.Scan(&s.ID, &s.State); err != nil {
			return fmt.Errorf("scanning service: %w", err)
		}
		set.Services = append(set.Services, s)
	}
	return svcRows.Err()
}
