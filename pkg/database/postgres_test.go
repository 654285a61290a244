package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/libvisit-api/pkg/config"
)

func TestDriverName(t *testing.T) {
	for raw, want := range map[string]string{"": DriverPQ, "postgres": DriverPQ, "pq": DriverPQ, "pgx": DriverPGX} {
		got, err := driverName(raw)
		require.NoError(t, err)
		assert.Equal(t, want, got, raw)
	}

	_, err := driverName("mysql")
	assert.Error(t, err)
}

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "db", Port: 5432, User: "lib", Password: "pw", Name: "visitors", SSLMode: "disable"})
	assert.Equal(t, "host=db port=5432 user=lib password=pw dbname=visitors sslmode=disable", dsn)
}
