package database

import (
	"context"
	"regexp"
	"testing"
	"testing/fstest"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func migrationFS() fstest.MapFS {
	return fstest.MapFS{
		"0002_b.up.sql": {Data: []byte("CREATE TABLE b (id INT);")},
		"0001_a.up.sql": {Data: []byte("CREATE TABLE a (id INT);")},
		"README.md":     {Data: []byte("ignored")},
	}
}

func expectSchemaTable(mock pgxmock.PgxPoolIface) {
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS schema_migrations`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
}

func TestApplyMigrations(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	fsys := migrationFS()
	expectSchemaTable(mock)

	// 0001 already applied with the same checksum.
	mock.ExpectBegin()
	mock.ExpectExec(`SELECT pg_advisory_xact_lock`).WithArgs(migrationLockID).
		WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mock.ExpectQuery(`SELECT checksum`).WithArgs("0001_a").
		WillReturnRows(pgxmock.NewRows([]string{"checksum"}).AddRow(checksumHex(fsys["0001_a.up.sql"].Data)))
	mock.ExpectRollback()

	// 0002 is new.
	mock.ExpectBegin()
	mock.ExpectExec(`SELECT pg_advisory_xact_lock`).WithArgs(migrationLockID).
		WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mock.ExpectQuery(`SELECT checksum`).WithArgs("0002_b").WillReturnError(pgx.ErrNoRows)
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE b (id INT);")).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec(`INSERT INTO schema_migrations`).
		WithArgs("0002_b", checksumHex(fsys["0002_b.up.sql"].Data)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	applied, err := ApplyMigrations(context.Background(), mock, fsys)
	require.NoError(t, err)
	assert.Equal(t, []string{"0002_b"}, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyMigrations_ChangedFile(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	expectSchemaTable(mock)
	mock.ExpectBegin()
	mock.ExpectExec(`SELECT pg_advisory_xact_lock`).WithArgs(migrationLockID).
		WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mock.ExpectQuery(`SELECT checksum`).WithArgs("0001_a").
		WillReturnRows(pgxmock.NewRows([]string{"checksum"}).AddRow("stale"))
	mock.ExpectRollback()

	applied, err := ApplyMigrations(context.Background(), mock, migrationFS())
	assert.ErrorContains(t, err, "was changed after being applied")
	assert.Empty(t, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyMigrations_NilFS(t *testing.T) {
	_, err := ApplyMigrations(context.Background(), nil, nil)
	assert.Error(t, err)
}
