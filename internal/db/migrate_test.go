package db

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMigrations_SortedWithChecksums(t *testing.T) {
	fsys := fstest.MapFS{
		"002_orders.sql": {Data: []byte("CREATE TABLE orders (id int);")},
		"001_init.sql":   {Data: []byte("CREATE TABLE users (id int);")},
		"README.md":      {Data: []byte("ignored")},
	}

	migrations, err := LoadMigrations(fsys)
	require.NoError(t, err)
	require.Len(t, migrations, 2)

	assert.Equal(t, "001", migrations[0].Version)
	assert.Equal(t, "002_orders.sql", migrations[1].Filename)
	assert.Len(t, migrations[0].Checksum, 64)
	assert.NotEqual(t, migrations[0].Checksum, migrations[1].Checksum)
}

func TestLoadMigrations_DuplicateVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"001_init.sql":  {Data: []byte("SELECT 1;")},
		"001_again.sql": {Data: []byte("SELECT 2;")},
	}
	_, err := LoadMigrations(fsys)
	assert.ErrorContains(t, err, "duplicate migration version")
}

func TestLoadMigrations_BadFilename(t *testing.T) {
	fsys := fstest.MapFS{"init.sql": {Data: []byte("SELECT 1;")}}
	_, err := LoadMigrations(fsys)
	assert.ErrorContains(t, err, "invalid migration filename")
}
