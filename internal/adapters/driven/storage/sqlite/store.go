package sqlite

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/custodia-labs/sercha-lens/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-lens/internal/logger"
)

// dbFile is the database file inside the data directory.
const dbFile = "library.db"

//go:embed migrations/*.sql
var migrationFS embed.FS

// dsnPragmas apply to every pooled connection.
var dsnPragmas = []string{
	"journal_mode(WAL)",
	"busy_timeout(5000)",
	"foreign_keys(1)",
}

// Store owns the SQLite connection.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens or creates library.db in dataDir and migrates it.
// An empty dataDir selects ~/.sercha-lens/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".sercha-lens", "data")
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFile)
	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, path: dbPath}
	if err := s.migrate(migrationFS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

func dsn(dbPath string) string {
	var b strings.Builder
	b.WriteString(dbPath)
	for i, p := range dsnPragmas {
		if i == 0 {
			b.WriteString("?")
		} else {
			b.WriteString("&")
		}
		b.WriteString("_pragma=" + p)
	}
	return b.String()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// DocumentStore returns the document, section and vector store.
func (s *Store) DocumentStore() driven.DocumentStore {
	return &documentStore{store: s}
}

// SchemaVersion returns the last applied migration.
func (s *Store) SchemaVersion() (int, error) {
	var v int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return v, nil
}

// migration is one numbered .up.sql script.
type migration struct {
	version int
	name    string
	script  string
}

// loadMigrations reads NNN_name.up.sql files from dir in fsys, ordered by
// version. Down scripts are ignored.
func loadMigrations(fsys fs.FS, dir string) ([]migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("reading migrations directory: %w", err)
	}

	var out []migration
	seen := map[int]string{}
	for _, e := range entries {
		name := e.Name()
		if !strings.HasSuffix(name, ".up.sql") {
			continue
		}
		prefix, _, ok := strings.Cut(name, "_")
		version, err := strconv.Atoi(prefix)
		if !ok || err != nil || version <= 0 {
			return nil, fmt.Errorf("migration %s: name must start with a positive version", name)
		}
		if other, dup := seen[version]; dup {
			return nil, fmt.Errorf("migrations %s and %s share version %d", other, name, version)
		}
		seen[version] = name

		script, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("reading migration %s: %w", name, err)
		}
		out = append(out, migration{version: version, name: name, script: string(script)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].version < out[j].version })
	return out, nil
}

// migrate applies every migration newer than PRAGMA user_version, each in
// its own transaction together with the version bump.
func (s *Store) migrate(fsys fs.FS) error {
	pending, err := loadMigrations(fsys, "migrations")
	if err != nil {
		return err
	}
	current, err := s.SchemaVersion()
	if err != nil {
		return err
	}
	if n := len(pending); n > 0 && current > pending[n-1].version {
		return fmt.Errorf("database schema %d is newer than this build supports (%d)", current, pending[n-1].version)
	}

	for _, m := range pending {
		if m.version <= current {
			continue
		}
		if err := s.apply(m); err != nil {
			return fmt.Errorf("executing migration %s: %w", m.name, err)
		}
		logger.Debug("sqlite: applied migration %s", m.name)
	}
	return nil
}

func (s *Store) apply(m migration) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(m.script); err != nil {
		return err
	}
	// PRAGMA does not take bind parameters.
	if _, err := tx.Exec("PRAGMA user_version = " + strconv.Itoa(m.version)); err != nil {
		return err
	}
	return tx.Commit()
}
