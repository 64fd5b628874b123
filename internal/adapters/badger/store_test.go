package badger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jade/internal/adapters/objstore/storetest"
	"jade/internal/ports"
)

func TestStore_Contract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) ports.GraphStore {
		s, err := Open(InMemoryConfig(), nil)
		require.NoError(t, err)
		return s
	})
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open(Config{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "path is required")
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultConfig(t.TempDir())
	cfg.SyncWrites = false

	s, err := Open(cfg, nil)
	require.NoError(t, err)
	require.NoError(t, s.AddPackage(ctx, storetest.Package()))
	uid, err := s.AddObject(ctx, "$/schema/test_note", map[string]string{"slug": "kept"})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(cfg, nil)
	require.NoError(t, err)
	defer s.Close()

	obj, err := s.GetObject(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, "kept", obj.Fields["slug"])

	pkgs, err := s.GetPackages(ctx, []string{"store.tests"})
	require.NoError(t, err)
	assert.Len(t, pkgs, 1)
}

func TestStore_CloseTwice(t *testing.T) {
	s, err := Open(InMemoryConfig(), nil)
	require.NoError(t, err)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	err = s.AddPackage(context.Background(), storetest.Package())
	assert.ErrorIs(t, err, ports.ErrStoreClosed)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("/tmp/x")
	assert.Equal(t, "/tmp/x", cfg.Path)
	assert.True(t, cfg.SyncWrites)
	assert.Equal(t, 5*time.Minute, cfg.GCInterval)
	assert.Equal(t, 0.5, cfg.GCDiscardRatio)
}

func TestStore_CancelledContext(t *testing.T) {
	s, err := Open(InMemoryConfig(), nil)
	require.NoError(t, err)
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = s.GetPackages(ctx, []string{"x"})
	assert.ErrorIs(t, err, context.Canceled)
}
