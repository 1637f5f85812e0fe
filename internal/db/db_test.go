package db

import (
	"testing"

	"checkinbot/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() config.DatabaseConfig {
	return config.DatabaseConfig{
		Host:           "127.0.0.1",
		Port:           1,
		User:           "bot",
		Password:       "secret",
		DBName:         "checkins",
		SSLMode:        "disable",
		MaxConns:       4,
		EventsTable:    "events",
		AttendeesTable: `conf"attendees`,
	}
}

func TestNewQuotesTableNames(t *testing.T) {
	database, err := New(testConfig())
	require.NoError(t, err)
	defer database.Close()

	assert.Equal(t, `"events"`, database.events)
	assert.Equal(t, `"conf""attendees"`, database.attendees)
	assert.Equal(t, int32(4), database.Config().MaxConns)
}

func TestNewRejectsBadConfig(t *testing.T) {
	cfg := testConfig()
	cfg.SSLMode = "sometimes"

	_, err := New(cfg)
	assert.Error(t, err)
}
