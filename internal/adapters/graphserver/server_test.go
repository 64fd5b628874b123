package graphserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jade/internal/adapters/badger"
	"jade/internal/adapters/remote"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := badger.Open(badger.InMemoryConfig(), nil)
	require.NoError(t, err)

	srv := httptest.NewServer(New(store, nil).Handler())
	t.Cleanup(func() {
		srv.Close()
		store.Close()
	})
	return srv
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMetrics(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestBadRequests(t *testing.T) {
	srv := newTestServer(t)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	tests := []struct {
		name string
		req  remote.Request
		code string
	}{
		{
			name: "unknown op",
			req:  remote.Request{ID: 1, Op: "drop_database"},
			code: remote.CodeBadRequest,
		},
		{
			name: "missing params",
			req:  remote.Request{ID: 2, Op: remote.OpQuery},
			code: remote.CodeBadRequest,
		},
		{
			name: "malformed params",
			req:  remote.Request{ID: 3, Op: remote.OpGetObject, Params: json.RawMessage(`[1,2]`)},
			code: remote.CodeBadRequest,
		},
		{
			name: "missing object",
			req:  remote.Request{ID: 4, Op: remote.OpGetObject, Params: json.RawMessage(`{"uid":"0xnope"}`)},
			code: remote.CodeObjectNotFound,
		},
		{
			name: "subscription without id",
			req:  remote.Request{ID: 5, Op: remote.OpSubscribe, Params: json.RawMessage(`{"query":{}}`)},
			code: remote.CodeBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, conn.WriteJSON(tt.req))

			var frame remote.Frame
			require.NoError(t, conn.ReadJSON(&frame))

			assert.Equal(t, remote.FrameResponse, frame.Type)
			assert.Equal(t, tt.req.ID, frame.ID)
			require.NotNil(t, frame.Error)
			assert.Equal(t, tt.code, frame.Error.Code)
		})
	}
}

func TestQueryReturnsEmptyList(t *testing.T) {
	srv := newTestServer(t)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(remote.Request{
		ID: 1, Op: remote.OpQuery, Params: json.RawMessage(`{"query":{"schema":"$/schema/none"}}`),
	}))

	var frame remote.Frame
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Nil(t, frame.Error)
	assert.JSONEq(t, `[]`, string(frame.Result))
}
