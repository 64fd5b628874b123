package remote_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jade/internal/adapters/badger"
	"jade/internal/adapters/graphserver"
	"jade/internal/adapters/objstore/storetest"
	"jade/internal/adapters/remote"
	"jade/internal/domain"
	"jade/internal/ports"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// startServer serves a fresh in-memory store and returns its websocket URL
func startServer(t *testing.T) (string, ports.GraphStore) {
	t.Helper()

	backing, err := badger.Open(badger.InMemoryConfig(), nil)
	require.NoError(t, err)

	srv := httptest.NewServer(graphserver.New(backing, nil).Handler())
	t.Cleanup(func() {
		srv.Close()
		backing.Close()
	})

	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws", backing
}

func dial(t *testing.T, url string) *remote.Client {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, err := remote.Dial(ctx, url, "test", nil)
	require.NoError(t, err)
	return c
}

func TestClient_Contract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) ports.GraphStore {
		url, _ := startServer(t)
		return dial(t, url)
	})
}

func TestClient_SeesWritesFromOtherClients(t *testing.T) {
	ctx := context.Background()
	url, _ := startServer(t)

	writer := dial(t, url)
	defer writer.Close()
	watcher := dial(t, url)
	defer watcher.Close()

	require.NoError(t, writer.AddPackage(ctx, storetest.Package()))

	events := make(chan domain.ObjectEvent, 4)
	_, err := watcher.Subscribe(ctx, domain.Query{Schema: "$/schema/test_note"}, func(ev domain.ObjectEvent) {
		events <- ev
	})
	require.NoError(t, err)

	uid, err := writer.AddObject(ctx, "$/schema/test_note", map[string]string{"slug": "shared"})
	require.NoError(t, err)

	select {
	case ev := <-events:
		assert.Equal(t, uid, ev.Object.UID)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not receive the event")
	}
}

func TestClient_DisconnectDropsSubscriptions(t *testing.T) {
	ctx := context.Background()
	url, backing := startServer(t)

	c := dial(t, url)
	require.NoError(t, c.AddPackage(ctx, storetest.Package()))
	_, err := c.Subscribe(ctx, domain.Query{}, func(domain.ObjectEvent) {})
	require.NoError(t, err)
	require.NoError(t, c.Close())

	// Writing after the client left must not fail or block
	require.Eventually(t, func() bool {
		_, err := backing.AddObject(ctx, "$/schema/test_note", map[string]string{})
		return err == nil
	}, 2*time.Second, 50*time.Millisecond)
}

func TestClient_CallAfterClose(t *testing.T) {
	url, _ := startServer(t)
	c := dial(t, url)
	require.NoError(t, c.Close())

	_, err := c.GetPackages(context.Background(), []string{"x"})
	assert.ErrorIs(t, err, ports.ErrStoreClosed)
}

func TestDial_BadURL(t *testing.T) {
	_, err := remote.Dial(context.Background(), "ws://127.0.0.1:1/ws", "test", nil)
	assert.Error(t, err)
}

func TestWireError_Unwrap(t *testing.T) {
	err := remote.EncodeError(ports.ErrUniqueViolation)
	assert.Equal(t, remote.CodeUniqueViolation, err.Code)
	assert.ErrorIs(t, err, ports.ErrUniqueViolation)

	internal := remote.EncodeError(assert.AnError)
	assert.Equal(t, remote.CodeInternal, internal.Code)
	assert.Nil(t, internal.Unwrap())

	assert.Nil(t, remote.EncodeError(nil))
}

func TestClient_ResyncFrameReachesEverySubscription(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		for i := 0; i < 2; i++ {
			var req remote.Request
			if err := conn.ReadJSON(&req); err != nil {
				return
			}
			if err := conn.WriteJSON(remote.Frame{Type: remote.FrameResponse, ID: req.ID}); err != nil {
				return
			}
		}
		if err := conn.WriteJSON(remote.Frame{Type: remote.FrameResync}); err != nil {
			return
		}

		var req remote.Request
		_ = conn.ReadJSON(&req)
	}))
	defer srv.Close()

	c := dial(t, "ws"+strings.TrimPrefix(srv.URL, "http"))
	defer c.Close()

	kinds := make(chan domain.EventKind, 4)
	for i := 0; i < 2; i++ {
		_, err := c.Subscribe(context.Background(), domain.Query{}, func(ev domain.ObjectEvent) {
			kinds <- ev.Kind
		})
		require.NoError(t, err)
	}

	for i := 0; i < 2; i++ {
		select {
		case kind := <-kinds:
			assert.Equal(t, domain.EventResync, kind)
		case <-time.After(2 * time.Second):
			t.Fatal("subscription was not told to resync")
		}
	}
}
