package migration

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"skill-swap/internal/database"
)

// lockKey serializes runners across processes sharing one database.
const lockKey int64 = 746295114

var ErrChecksumMismatch = errors.New("applied migration was modified")

// Runner applies V{n}__{name}.sql files in version order. Each file runs in
// its own transaction together with its schema_migrations row, so a failed
// file leaves no partial state behind.
type Runner struct {
	// Dir is read when FS is nil.
	Dir    string
	FS     fs.FS
	Logger *log.Logger
}

type Migration struct {
	Version  int64
	Name     string
	Filename string
	SQL      string
	Checksum string
}

var fileRe = regexp.MustCompile(`^V(\d+)__([A-Za-z0-9_.-]+)\.sql$`)

func (r Runner) Run(ctx context.Context, db database.DB) error {
	if db == nil {
		return errors.New("nil db")
	}

	migs, err := Load(r.source())
	if err != nil {
		return err
	}
	if len(migs) == 0 {
		return nil
	}

	if _, err := db.Exec(ctx, `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version BIGINT PRIMARY KEY,
	name TEXT NOT NULL,
	checksum TEXT NOT NULL,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	for _, m := range migs {
		applied, err := r.apply(ctx, db, m)
		if err != nil {
			return err
		}
		if applied {
			r.logf("[Migrate] applied version=%d name=%s", m.Version, m.Name)
		}
	}
	return nil
}

// apply takes the transaction-scoped advisory lock before checking
// schema_migrations, so concurrent runners see each other's commits.
func (r Runner) apply(ctx context.Context, db database.DB, m Migration) (bool, error) {
	applied := false
	err := database.WithTx(ctx, db, func(tx database.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, lockKey); err != nil {
			return fmt.Errorf("lock: %w", err)
		}

		var checksum string
		err := tx.QueryRow(ctx, `SELECT checksum FROM schema_migrations WHERE version = $1`, m.Version).Scan(&checksum)
		switch {
		case err == nil:
			if checksum != m.Checksum {
				return fmt.Errorf("%w: version=%d file=%s", ErrChecksumMismatch, m.Version, m.Filename)
			}
			return nil
		case !errors.Is(err, database.ErrNoRows):
			return fmt.Errorf("read schema_migrations: %w", err)
		}

		if _, err := tx.Exec(ctx, m.SQL); err != nil {
			return fmt.Errorf("apply migration version=%d file=%s: %w", m.Version, m.Filename, err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO schema_migrations (version, name, checksum) VALUES ($1, $2, $3)`,
			m.Version, m.Name, m.Checksum,
		); err != nil {
			return fmt.Errorf("record migration version=%d: %w", m.Version, err)
		}
		applied = true
		return nil
	})
	return applied, err
}

func (r Runner) source() fs.FS {
	if r.FS != nil {
		return r.FS
	}
	dir := strings.TrimSpace(r.Dir)
	if dir == "" {
		dir = "migrations"
	}
	return os.DirFS(dir)
}

func (r Runner) logf(format string, args ...any) {
	if r.Logger != nil {
		r.Logger.Printf(format, args...)
	}
}

// Load reads and orders the migration files at the root of fsys. A missing
// directory yields no migrations.
func Load(fsys fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	migs := make([]Migration, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		parts := fileRe.FindStringSubmatch(name)
		if parts == nil {
			continue
		}
		v, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid migration version: %s", name)
		}

		b, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, err
		}
		sqlText := strings.TrimSpace(string(b))
		if sqlText == "" {
			return nil, fmt.Errorf("empty migration file: %s", name)
		}

		sum := sha256.Sum256([]byte(sqlText))
		migs = append(migs, Migration{
			Version:  v,
			Name:     parts[2],
			Filename: name,
			SQL:      sqlText,
			Checksum: hex.EncodeToString(sum[:]),
		})
	}

	sort.Slice(migs, func(i, j int) bool { return migs[i].Version < migs[j].Version })
	for i := 1; i < len(migs); i++ {
		if migs[i].Version == migs[i-1].Version {
			return nil, fmt.Errorf("duplicate migration version: %d", migs[i].Version)
		}
	}
	return migs, nil
}
