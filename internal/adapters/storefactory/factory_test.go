package storefactory

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jade/internal/config"
	"jade/internal/domain"
)

func testConfig(t *testing.T, backend string) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Backend = backend
	cfg.SQLite.Path = filepath.Join(t.TempDir(), "jade.db")
	cfg.Badger.Path = filepath.Join(t.TempDir(), "badger")
	cfg.Badger.SyncWrites = false
	cfg.Badger.GCInterval = 0
	cfg.Remote.Server = "ws://127.0.0.1:1/ws"
	cfg.Remote.DialTimeout = time.Second
	return cfg
}

func TestOpenDatabase_Embedded(t *testing.T) {
	for _, backend := range []string{config.BackendSQLite, config.BackendBadger} {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()

			db, store, err := OpenDatabase(ctx, testConfig(t, backend), nil)
			require.NoError(t, err)
			defer store.Close()

			require.NoError(t, db.Init(ctx, nil, []domain.Concept{{"id": "a"}}))
			c, err := db.GetConcept(ctx, "a")
			require.NoError(t, err)
			assert.Equal(t, "a", c.ID())
		})
	}
}

func TestOpen_RemoteUnreachable(t *testing.T) {
	_, err := Open(context.Background(), testConfig(t, config.BackendRemote), nil)
	assert.Error(t, err)
}

func TestOpenBackend_Unknown(t *testing.T) {
	_, err := OpenBackend(context.Background(), testConfig(t, "mysql"), "mysql", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown backend")
}
