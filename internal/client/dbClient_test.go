package client

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialector(t *testing.T) {
	assert.Equal(t, "postgres", Dialector("postgres://u:p@localhost:5432/shop").Name())
	assert.Equal(t, "postgres", Dialector("postgresql://localhost/shop").Name())
	assert.Equal(t, "sqlite", Dialector("sqlite://bunah.db").Name())
	assert.Equal(t, "sqlite", Dialector("file::memory:?cache=shared").Name())
	assert.Equal(t, "mysql", Dialector("user:pass@tcp(127.0.0.1:3306)/shop?parseTime=true").Name())
}

func TestNewDBClientAndMigrate(t *testing.T) {
	db, err := NewDBClient("sqlite://" + filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	require.NoError(t, Migrate(db))
	for _, table := range []string{"products", "orders", "order_items", "checkout_drafts"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}
