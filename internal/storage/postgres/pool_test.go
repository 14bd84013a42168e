package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMigrateURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@db:5432/canteen?sslmode=disable",
		migrateURL("postgres://u:p@db:5432/canteen?sslmode=disable"))
	assert.Equal(t, "pgx5://db/canteen", migrateURL("postgresql://db/canteen"))
	assert.Equal(t, "pgx5://db/canteen", migrateURL("pgx5://db/canteen"))
}
