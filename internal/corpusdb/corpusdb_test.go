package corpusdb

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect_CreatesDirAndMigrates(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "nested", "history.sqlite")

	db, err := Connect(dbPath, false)
	require.NoError(t, err)

	assert.True(t, db.Migrator().HasTable(&RunRecord{}))
}

func TestRecordAndPreviousResult_RoundTrips(t *testing.T) {
	db, err := Connect(filepath.Join(t.TempDir(), "history.sqlite"), false)
	require.NoError(t, err)

	require.NoError(t, Record(db, "inv-1", "a.move", "hash1", false, "boom", time.Second))
	require.NoError(t, Record(db, "inv-2", "a.move", "hash2", true, "", 2*time.Second))

	prev, err := PreviousResult(db, "a.move")
	require.NoError(t, err)
	require.NotNil(t, prev)
	assert.Equal(t, "hash2", prev.ContentHash)
	assert.True(t, prev.Passed)
}

func TestPreviousResult_UnknownFileReturnsNil(t *testing.T) {
	db, err := Connect(filepath.Join(t.TempDir(), "history.sqlite"), false)
	require.NoError(t, err)

	prev, err := PreviousResult(db, "never-seen.move")
	require.NoError(t, err)
	assert.Nil(t, prev)
}
