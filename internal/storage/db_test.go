package storage_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neexbeast/citywalk/internal/storage"
)

func writeSQLFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestRunMigrations_MissingDir(t *testing.T) {
	_, err := storage.RunMigrations(context.Background(), nil, "/nonexistent/dir")
	require.Error(t, err)
}

func TestRunMigrations_EmptyDir(t *testing.T) {
	applied, err := storage.RunMigrations(context.Background(), nil, t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, applied)
}

func TestRunMigrations_SkipsNonSQL(t *testing.T) {
	dir := t.TempDir()
	writeSQLFile(t, dir, "001_profiles.sql", "SELECT 1;")
	writeSQLFile(t, dir, "README.md", "notes")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "002_dir.sql"), 0o755))

	pool := &mockMigrationPool{
		beginFn: func(_ context.Context) (pgx.Tx, error) { return okTx(), nil },
	}

	applied, err := storage.RunMigrations(context.Background(), pool, dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_profiles.sql"}, applied)
}

func TestRunMigrations_BeginError(t *testing.T) {
	dir := t.TempDir()
	writeSQLFile(t, dir, "001_test.sql", "SELECT 1;")

	pool := &mockMigrationPool{
		beginFn: func(_ context.Context) (pgx.Tx, error) { return nil, fmt.Errorf("cannot begin") },
	}

	_, err := storage.RunMigrations(context.Background(), pool, dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "executing migration")
}

func TestRunMigrations_ExecErrorRollsBack(t *testing.T) {
	dir := t.TempDir()
	writeSQLFile(t, dir, "001_ok.sql", "SELECT 1;")
	writeSQLFile(t, dir, "002_bad.sql", "INVALID SQL;")

	var last *mockTx
	pool := &mockMigrationPool{
		beginFn: func(_ context.Context) (pgx.Tx, error) {
			last = okTx()
			last.execFn = func(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
				if sql == "INVALID SQL;" {
					return pgconn.CommandTag{}, fmt.Errorf("syntax error")
				}
				return pgconn.CommandTag{}, nil
			}
			return last, nil
		},
	}

	applied, err := storage.RunMigrations(context.Background(), pool, dir)
	require.Error(t, err)
	assert.Equal(t, []string{"001_ok.sql"}, applied)
	assert.True(t, last.rolledBack)
}

func TestRunMigrations_CommitError(t *testing.T) {
	dir := t.TempDir()
	writeSQLFile(t, dir, "001_test.sql", "SELECT 1;")

	tx := okTx()
	tx.commitFn = func(_ context.Context) error { return fmt.Errorf("commit failed") }
	pool := &mockMigrationPool{
		beginFn: func(_ context.Context) (pgx.Tx, error) { return tx, nil },
	}

	_, err := storage.RunMigrations(context.Background(), pool, dir)
	require.Error(t, err)
}

func TestRunMigrations_SortsFilesLexicographically(t *testing.T) {
	dir := t.TempDir()
	var order []string
	writeSQLFile(t, dir, "003_c.sql", "SELECT 3;")
	writeSQLFile(t, dir, "001_a.sql", "SELECT 1;")
	writeSQLFile(t, dir, "002_b.sql", "SELECT 2;")

	tx := okTx()
	tx.execFn = func(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
		order = append(order, sql)
		return pgconn.CommandTag{}, nil
	}
	pool := &mockMigrationPool{
		beginFn: func(_ context.Context) (pgx.Tx, error) { return tx, nil },
	}

	applied, err := storage.RunMigrations(context.Background(), pool, dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"SELECT 1;", "SELECT 2;", "SELECT 3;"}, order)
	assert.Equal(t, []string{"001_a.sql", "002_b.sql", "003_c.sql"}, applied)
}

func TestRunMigrations_RepositoryMigrations(t *testing.T) {
	var executed []string
	tx := okTx()
	tx.execFn = func(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
		executed = append(executed, sql)
		return pgconn.CommandTag{}, nil
	}
	pool := &mockMigrationPool{
		beginFn: func(_ context.Context) (pgx.Tx, error) { return tx, nil },
	}

	applied, err := storage.RunMigrations(context.Background(), pool, "../../migrations")
	require.NoError(t, err)
	require.NotEmpty(t, applied)
	assert.Contains(t, executed[0], "CREATE TABLE IF NOT EXISTS profiles")
}

func TestConnect_BadURL(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := storage.Connect(ctx, "postgres://invalid-host-xyz:5432/db?sslmode=disable", 2)
	require.Error(t, err)
}

func TestConnect_UnparsableURL(t *testing.T) {
	_, err := storage.Connect(context.Background(), "postgres://%zz", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing database url")
}
