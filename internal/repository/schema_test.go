package repository

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"userhub/migrations"
)

// columnsInMigration returns the column names declared by the CREATE TABLE
// statement in a migration file, so column drift between the queries and the
// migrated schema fails here instead of against a live database.
func columnsInMigration(t *testing.T, file string) map[string]bool {
	t.Helper()

	raw, err := migrations.Migrations.ReadFile(file)
	require.NoError(t, err)

	match := regexp.MustCompile(`(?s)CREATE TABLE \w+ \((.*?)\);`).FindStringSubmatch(string(raw))
	require.Len(t, match, 2, "no CREATE TABLE statement in %s", file)

	cols := make(map[string]bool)
	for _, line := range strings.Split(match[1], "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		cols[strings.ToLower(fields[0])] = true
	}
	return cols
}

func TestUserQueriesMatchSchema(t *testing.T) {
	cols := columnsInMigration(t, "00001_create_users.sql")

	for _, col := range strings.Split(userColumns, ",") {
		col = strings.TrimSpace(col)
		assert.True(t, cols[col], "users queries reference column %q missing from the migration", col)
	}
}

func TestRefreshTokenQueriesMatchSchema(t *testing.T) {
	cols := columnsInMigration(t, "00002_create_refresh_tokens.sql")

	for _, col := range []string{"id", "user_id", "token", "device_info", "ip_address", "expires_at", "created_at"} {
		assert.True(t, cols[col], "refresh_tokens queries reference column %q missing from the migration", col)
	}
}

func TestPasswordResetQueriesMatchSchema(t *testing.T) {
	cols := columnsInMigration(t, "00003_create_password_reset_tokens.sql")

	for _, col := range []string{"id", "user_id", "token", "retry_count", "expires_at", "created_at"} {
		assert.True(t, cols[col], "password_reset_tokens queries reference column %q missing from the migration", col)
	}
}

func TestOutboxQueriesMatchSchema(t *testing.T) {
	cols := columnsInMigration(t, "00004_create_outbox_events.sql")

	for _, col := range []string{
		"id", "aggregate_type", "aggregate_id", "routing_key", "payload",
		"status", "retry_count", "next_retry_at", "created_at", "updated_at",
	} {
		assert.True(t, cols[col], "outbox_events queries reference column %q missing from the migration", col)
	}
}
