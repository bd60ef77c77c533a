package database

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
)

const migrationLockID int64 = 7029001

const migrationSuffix = ".up.sql"

// ApplyMigrations runs every *.up.sql file in fsys in name order. Each file
// runs in its own transaction holding an advisory lock, so concurrent
// deploys apply a file at most once. Changing an applied file is an error.
func ApplyMigrations(ctx context.Context, db DB, fsys fs.FS) ([]string, error) {
	if fsys == nil {
		return nil, fmt.Errorf("migrations filesystem is required")
	}

	if _, err := db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			checksum TEXT NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`); err != nil {
		return nil, fmt.Errorf("create schema_migrations table: %w", err)
	}

	names, err := listMigrationFiles(fsys)
	if err != nil {
		return nil, err
	}

	var applied []string
	for _, name := range names {
		raw, err := fs.ReadFile(fsys, name)
		if err != nil {
			return applied, fmt.Errorf("read migration %s: %w", name, err)
		}

		version := strings.TrimSuffix(name, migrationSuffix)
		ran, err := applyOne(ctx, db, version, string(raw), checksumHex(raw))
		if err != nil {
			return applied, err
		}
		if ran {
			applied = append(applied, version)
		}
	}

	return applied, nil
}

func applyOne(ctx context.Context, db DB, version, sql, checksum string) (bool, error) {
	tx, err := db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin migration transaction %s: %w", version, err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, migrationLockID); err != nil {
		return false, fmt.Errorf("acquire migration lock: %w", err)
	}

	appliedChecksum, alreadyApplied, err := migrationChecksum(ctx, tx, version)
	if err != nil {
		return false, err
	}
	if alreadyApplied {
		if appliedChecksum != checksum {
			return false, fmt.Errorf("migration %s was changed after being applied", version)
		}
		return false, nil
	}

	if _, err := tx.Exec(ctx, sql); err != nil {
		return false, fmt.Errorf("apply migration %s: %w", version, err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO schema_migrations (version, checksum)
		VALUES ($1, $2)
	`, version, checksum); err != nil {
		return false, fmt.Errorf("record migration %s: %w", version, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit migration %s: %w", version, err)
	}
	committed = true
	return true, nil
}

func listMigrationFiles(fsys fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read migrations directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(entry.Name(), migrationSuffix) {
			names = append(names, entry.Name())
		}
	}

	sort.Strings(names)
	return names, nil
}

func migrationChecksum(ctx context.Context, tx pgx.Tx, version string) (checksum string, exists bool, err error) {
	row := tx.QueryRow(ctx, `
		SELECT checksum
		FROM schema_migrations
		WHERE version=$1
	`, version)

	if err := row.Scan(&checksum); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read migration state %s: %w", version, err)
	}

	return checksum, true, nil
}

func checksumHex(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
