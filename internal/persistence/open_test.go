package persistence

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/angelmondragon/rocketshoes-cart/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenMemory(t *testing.T) {
	backend, err := Open(context.Background(), &config.Config{Storage: config.StorageConfig{Driver: config.StorageDriverMemory}}, nil)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, backend.Store)
	assert.Nil(t, backend.Pinger)
	assert.NoError(t, backend.Close())
}

func TestOpenSQLiteRunsMigrations(t *testing.T) {
	cfg := &config.Config{
		App:     config.AppConfig{Env: "dev"},
		Storage: config.StorageConfig{Driver: config.StorageDriverSQLite, AutoMigrate: true},
		DB:      config.DBConfig{SQLitePath: filepath.Join(t.TempDir(), "cart.db"), MaxOpenConns: 1, MaxIdleConns: 1},
	}

	backend, err := Open(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })

	require.NotNil(t, backend.Pinger)
	require.NoError(t, backend.Pinger.Ping(context.Background()))
	require.NoError(t, backend.Store.Set(context.Background(), config.DefaultStorageKey, `[{"id":1,"amount":1}]`))
	got, err := backend.Store.Get(context.Background(), config.DefaultStorageKey)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":1,"amount":1}]`, got)
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{Storage: config.StorageConfig{Driver: "dynamo"}}, nil)
	require.Error(t, err)
}
