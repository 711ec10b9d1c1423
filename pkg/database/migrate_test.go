package database

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsAreGooseAnnotated(t *testing.T) {
	entries, err := fs.ReadDir(migrations, "migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	for _, entry := range entries {
		raw, err := fs.ReadFile(migrations, "migrations/"+entry.Name())
		require.NoError(t, err)
		body := string(raw)
		assert.True(t, strings.Contains(body, "-- +goose Up"), entry.Name())
		assert.True(t, strings.Contains(body, "-- +goose Down"), entry.Name())
	}
}

func TestInitialSchemaEnforcesEnrollmentUniqueness(t *testing.T) {
	raw, err := fs.ReadFile(migrations, "migrations/00001_init_schema.sql")
	require.NoError(t, err)
	assert.Contains(t, string(raw), "UNIQUE (student_id, course_id)")
	assert.Contains(t, string(raw), "slides_single_default_idx")
}
