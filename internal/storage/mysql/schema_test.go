package mysql

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMigrations(t *testing.T) {
	migs, err := loadMigrations()
	require.NoError(t, err)
	require.NotEmpty(t, migs)
	assert.Equal(t, 1, migs[0].version)
	assert.Equal(t, 1, LatestSchemaVersion())

	var tables []string
	for _, s := range migs[0].stmts {
		assert.True(t, strings.HasPrefix(s, "CREATE TABLE IF NOT EXISTS"), s)
		tables = append(tables, strings.Fields(s)[5])
	}
	assert.Equal(t, []string{"chains", "hotels", "images", "image_tags", "availability_price"}, tables)
}

func TestSplitStatements(t *testing.T) {
	got := splitStatements("-- header\nCREATE TABLE a (x INT);\n\n  -- note\nCREATE TABLE b (y INT);\n")
	assert.Equal(t, []string{"CREATE TABLE a (x INT)", "CREATE TABLE b (y INT)"}, got)
}
