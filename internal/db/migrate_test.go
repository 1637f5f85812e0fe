package db

import (
	"strings"
	"testing"

	"checkinbot/migrations"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderMigrationUsesConfiguredTables(t *testing.T) {
	source, err := migrations.Files.ReadFile("001_initial_schema.sql")
	require.NoError(t, err)

	cfg := testConfig()
	cfg.EventsTable = "conf_events"

	sql, err := RenderMigration("001_initial_schema.sql", string(source), cfg)
	require.NoError(t, err)

	assert.Contains(t, sql, `CREATE TABLE IF NOT EXISTS "conf_events" (`)
	assert.Contains(t, sql, `CREATE TABLE IF NOT EXISTS "conf""attendees" (`)
	assert.Contains(t, sql, `REFERENCES "conf_events" (id)`)
	assert.Contains(t, sql, `CREATE INDEX IF NOT EXISTS "conf_events_server_idx" ON "conf_events"`)
	assert.NotContains(t, sql, "{{")
	assert.False(t, strings.Contains(sql, " events "), "no hard-coded table names remain")
}

func TestRenderMigrationErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"bad template", "CREATE TABLE {{.Events"},
		{"unknown name", "CREATE TABLE {{.Sessions}} ()"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RenderMigration("bad.sql", tt.source, testConfig())
			assert.Error(t, err)
		})
	}
}
