package assembly

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/docsmith/docsmith/internal/doc"
)

// Artifact is one generated document held by the output store.
type Artifact struct {
	ID        string
	Filename  string
	Template  string
	Kind      doc.Kind
	Size      int64
	CreatedAt time.Time
	Content   []byte
}

const artifactSchema = `
CREATE TABLE IF NOT EXISTS artifacts (
    id TEXT PRIMARY KEY,
    filename TEXT UNIQUE NOT NULL,
    template TEXT NOT NULL,
    kind TEXT NOT NULL,
    size INTEGER NOT NULL,
    created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_artifacts_created ON artifacts(created_at);
CREATE INDEX IF NOT EXISTS idx_artifacts_filename ON artifacts(filename);
`

// OutputStore persists artifacts on disk with a SQLite index for lookups and
// retention. Writes go to a temporary name first and are renamed into place,
// so a concurrent or failed generation never exposes a partial file under
// its final name; the unique-identifier-derived filename keeps concurrent
// writers from colliding.
type OutputStore struct {
	dir string
	db  *sql.DB
}

func NewOutputStore(dir, indexPath string) (*OutputStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(indexPath), 0o755); err != nil {
		return nil, fmt.Errorf("create index dir: %w", err)
	}

	db, err := sql.Open("sqlite", indexPath)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, err
		}
	}
	if _, err := db.Exec(artifactSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize artifact index: %w", err)
	}
	return &OutputStore{dir: dir, db: db}, nil
}

func (s *OutputStore) Close() error { return s.db.Close() }

// Save persists the artifact bytes and indexes them.
func (s *OutputStore) Save(art *Artifact) error {
	if err := validateArtifactFilename(art.Filename); err != nil {
		return err
	}

	final := filepath.Join(s.dir, art.Filename)
	tmp := final + ".partial"
	if err := os.WriteFile(tmp, art.Content, 0o644); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := os.Rename(tmp, final); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("publish artifact: %w", err)
	}

	_, err := s.db.Exec(`
		INSERT INTO artifacts (id, filename, template, kind, size, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		art.ID, art.Filename, art.Template, string(art.Kind), art.Size, art.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("index artifact: %w", err)
	}
	return nil
}

// Open returns the bytes of a stored artifact by filename.
func (s *OutputStore) Open(filename string) ([]byte, error) {
	if err := validateArtifactFilename(filename); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.dir, filename))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, doc.NotFoundf("document %q not found", filename)
		}
		return nil, fmt.Errorf("read artifact %q: %w", filename, err)
	}
	return data, nil
}

// Stat looks up index metadata for a stored artifact.
func (s *OutputStore) Stat(filename string) (*Artifact, error) {
	if err := validateArtifactFilename(filename); err != nil {
		return nil, err
	}
	row := s.db.QueryRow(`
		SELECT id, filename, template, kind, size, created_at
		FROM artifacts WHERE filename = ?`, filename)

	var art Artifact
	var kind string
	if err := row.Scan(&art.ID, &art.Filename, &art.Template, &kind, &art.Size, &art.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, doc.NotFoundf("document %q not found", filename)
		}
		return nil, fmt.Errorf("look up artifact %q: %w", filename, err)
	}
	art.Kind = doc.Kind(kind)
	return &art, nil
}

// Sweep removes artifacts older than maxAge from disk and index, returning
// the number removed. A zero maxAge disables the sweep.
func (s *OutputStore) Sweep(maxAge time.Duration) (int, error) {
	if maxAge <= 0 {
		return 0, nil
	}
	cutoff := time.Now().UTC().Add(-maxAge)

	rows, err := s.db.Query(`SELECT filename FROM artifacts WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("query expired artifacts: %w", err)
	}
	var expired []string
	for rows.Next() {
		var filename string
		if err := rows.Scan(&filename); err != nil {
			rows.Close()
			return 0, err
		}
		expired = append(expired, filename)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	removed := 0
	for _, filename := range expired {
		if err := os.Remove(filepath.Join(s.dir, filename)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.Warn("failed to remove expired artifact", "filename", filename, "error", err)
			continue
		}
		if _, err := s.db.Exec(`DELETE FROM artifacts WHERE filename = ?`, filename); err != nil {
			return removed, fmt.Errorf("unindex artifact %q: %w", filename, err)
		}
		removed++
	}
	return removed, nil
}

func validateArtifactFilename(filename string) error {
	if filename == "" {
		return doc.Validationf("filename is required")
	}
	if strings.ContainsAny(filename, `/\`) || strings.Contains(filename, "..") {
		return doc.Validationf("filename %q must not contain path separators", filename)
	}
	return nil
}
