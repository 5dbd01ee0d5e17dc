package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_PROVIDER", "memory")
	t.Setenv("MONEROO_SUCCESS_STATUSES", " success , paid,, ")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 500, cfg.Store.BatchLimit)
	assert.Equal(t, []string{"success", "paid"}, cfg.Payments.SuccessStatuses)
	assert.Empty(t, cfg.MissingStoreEnv())
}

func TestLoadRejectsBadStore(t *testing.T) {
	t.Setenv("STORE_PROVIDER", "mongo")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("STORE_PROVIDER", "memory")
	t.Setenv("STORE_BATCH_LIMIT", "1")
	_, err = Load()
	assert.Error(t, err)
}

func TestMissingStoreEnv(t *testing.T) {
	cfg := &Config{Store: StoreConfig{Provider: "postgres"}}
	assert.Equal(t, "POSTGRES_HOST", cfg.MissingStoreEnv())

	cfg.Database.Host = "db"
	assert.Equal(t, "POSTGRES_USER", cfg.MissingStoreEnv())

	cfg.Database.User = "ndara"
	cfg.Database.Name = "ndara"
	assert.Empty(t, cfg.MissingStoreEnv())
}
