// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the CLI against the database at dsn and returns its output.
func run(t *testing.T, dsn string, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd := newCommand()
	cmd.Writer = &buf
	cmd.ErrWriter = &buf

	argv := append([]string{"portal", "--database-dsn", dsn, "--log-level", "error"}, args...)
	err := cmd.Run(context.Background(), argv)
	return buf.String(), err
}

func testDSN(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "portal.db")
}

func TestMigrateUp(t *testing.T) {
	out, err := run(t, testDSN(t), "migrate", "up")

	require.NoError(t, err)
	assert.Equal(t, "schema version 3\n", out)
}

func TestMigrateDown(t *testing.T) {
	out, err := run(t, testDSN(t), "migrate", "down")

	require.NoError(t, err)
	assert.Equal(t, "schema version 2\n", out)
}

func TestClientLifecycle(t *testing.T) {
	dsn := testDSN(t)

	out, err := run(t, dsn, "client", "add", "--email", "ana@example.com", "--name", "Ana", "--sucursal", "Centro")
	require.NoError(t, err)
	assert.Contains(t, out, "added client 1 <ana@example.com>")

	_, err = run(t, dsn, "client", "add", "--email", "luis@example.com", "--name", "Luis")
	require.NoError(t, err)

	out, err = run(t, dsn, "client", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "ana@example.com")
	assert.Contains(t, out, "Centro")
	assert.Contains(t, out, "luis@example.com")
	assert.NotContains(t, out, "archived")

	out, err = run(t, dsn, "client", "archive", "ana@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "archived client 1 <ana@example.com>, ended 0 sessions")

	out, err = run(t, dsn, "client", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "archived")
}

func TestClientAdd_Duplicate(t *testing.T) {
	dsn := testDSN(t)

	_, err := run(t, dsn, "client", "add", "--email", "ana@example.com", "--name", "Ana")
	require.NoError(t, err)

	_, err = run(t, dsn, "client", "add", "--email", "ana@example.com", "--name", "Ana")
	assert.Error(t, err)
}

func TestClientArchive_Unknown(t *testing.T) {
	_, err := run(t, testDSN(t), "client", "archive", "nobody@example.com")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no client")
}

func TestClientArchive_MissingArgument(t *testing.T) {
	_, err := run(t, testDSN(t), "client", "archive")

	assert.Error(t, err)
}

func TestSweep(t *testing.T) {
	out, err := run(t, testDSN(t), "sweep")

	require.NoError(t, err)
	assert.Equal(t, "removed 0 tokens and 0 sessions\n", out)
}
