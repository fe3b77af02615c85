package database

import (
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(Config{Path: filepath.Join(t.TempDir(), "test.db"), MaxOpenConns: 1}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestMigrator_RunEmbedded(t *testing.T) {
	db := newTestDB(t)
	m := NewMigrator(db, zap.NewNop())

	applied, err := m.Run()
	require.NoError(t, err)
	assert.Equal(t, 1, applied)

	for _, table := range []string{"users", "trips", "daily_plans", "expenses", "user_settings"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		require.NoError(t, err, table)
	}

	// second run is a no-op
	applied, err = m.Run()
	require.NoError(t, err)
	assert.Equal(t, 0, applied)

	versions, err := m.AppliedVersions()
	require.NoError(t, err)
	assert.True(t, versions[1])
}

func TestMigrator_CascadeDeletes(t *testing.T) {
	db := newTestDB(t)
	_, err := NewMigrator(db, zap.NewNop()).Run()
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO users (id) VALUES ('u1')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO trips (id, user_id, destination) VALUES (1, 'u1', '成都')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO expenses (trip_id, user_id, amount, category, spent_at) VALUES (1, 'u1', '50', 'TRANSPORT', CURRENT_TIMESTAMP)`)
	require.NoError(t, err)

	_, err = db.Exec(`DELETE FROM trips WHERE id = 1`)
	require.NoError(t, err)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM expenses`).Scan(&count))
	assert.Equal(t, 0, count)
}

func TestMigrator_RejectsUnknownCategory(t *testing.T) {
	db := newTestDB(t)
	_, err := NewMigrator(db, zap.NewNop()).Run()
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO users (id) VALUES ('u1')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO trips (id, user_id, destination) VALUES (1, 'u1', '成都')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO expenses (trip_id, user_id, amount, category, spent_at) VALUES (1, 'u1', '50', 'GAMBLING', CURRENT_TIMESTAMP)`)
	assert.Error(t, err)
}

func TestMigrator_FailedMigrationRollsBack(t *testing.T) {
	db := newTestDB(t)
	m := NewMigrator(db, zap.NewNop())

	fsys := fstest.MapFS{
		"001_ok.sql":     {Data: []byte("CREATE TABLE a (id INTEGER);")},
		"002_broken.sql": {Data: []byte("CREATE TABLE b (id INTEGER); NOT SQL;")},
	}

	applied, err := m.RunMigrations(fsys)
	require.Error(t, err)
	assert.Equal(t, 1, applied)

	versions, err := m.AppliedVersions()
	require.NoError(t, err)
	assert.True(t, versions[1])
	assert.False(t, versions[2])
}

func TestLoadMigrations(t *testing.T) {
	migrations, err := loadMigrations(fstest.MapFS{
		"010_later.sql":   {Data: []byte("SELECT 1;")},
		"002_earlier.sql": {Data: []byte("SELECT 2;")},
		"README.md":       {Data: []byte("ignored")},
	})
	require.NoError(t, err)
	require.Len(t, migrations, 2)
	assert.Equal(t, 2, migrations[0].Version)
	assert.Equal(t, "earlier", migrations[0].Name)
	assert.Equal(t, 10, migrations[1].Version)

	_, err = loadMigrations(fstest.MapFS{"init.sql": {Data: []byte("SELECT 1;")}})
	assert.Error(t, err)

	_, err = loadMigrations(fstest.MapFS{
		"001_a.sql": {Data: []byte("SELECT 1;")},
		"1_b.sql":   {Data: []byte("SELECT 1;")},
	})
	assert.Error(t, err)
}
