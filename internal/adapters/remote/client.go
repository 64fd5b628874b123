// Package remote implements ports.GraphStore as a websocket client of a
// graph server (see internal/adapters/graphserver).
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"jade/internal/domain"
	"jade/internal/ports"
)

const (
	eventBuffer  = 256
	writeTimeout = 10 * time.Second
)

// Client is a GraphStore backed by a remote graph server
type Client struct {
	conn   *websocket.Conn
	logger *slog.Logger

	writeMu sync.Mutex

	mu       sync.Mutex
	nextID   uint64
	pending  map[uint64]chan Frame
	handlers map[string]ports.EventHandler

	events    chan Frame
	done      chan struct{}
	closeOnce sync.Once
	readErr   error
}

// Ensure Client implements GraphStore
var _ ports.GraphStore = (*Client)(nil)

// Dial connects to the graph server at serverURL (ws:// or wss://)
func Dial(ctx context.Context, serverURL, browserID string, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server location %q: %w", serverURL, err)
	}
	if browserID != "" {
		q := u.Query()
		q.Set(BrowserParam, browserID)
		u.RawQuery = q.Encode()
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), http.Header{})
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: %w (status %d)", serverURL, err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial %s: %w", serverURL, err)
	}

	c := &Client{
		conn:     conn,
		logger:   logger.With("server", serverURL),
		pending:  make(map[uint64]chan Frame),
		handlers: make(map[string]ports.EventHandler),
		events:   make(chan Frame, eventBuffer),
		done:     make(chan struct{}),
	}

	go c.readLoop()
	go c.eventLoop()

	c.logger.Info("connected to graph server", "browser", browserID)
	return c, nil
}

// Close shuts the connection down; pending calls fail with ErrStoreClosed
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)

		c.writeMu.Lock()
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		c.writeMu.Unlock()

		err = c.conn.Close()
	})
	return err
}

func (c *Client) readLoop() {
	defer c.Close()
	defer close(c.events)

	for {
		var frame Frame
		if err := c.conn.ReadJSON(&frame); err != nil {
			select {
			case <-c.done:
			default:
				c.logger.Warn("graph server connection lost", "error", err)
			}
			c.mu.Lock()
			c.readErr = err
			c.mu.Unlock()
			return
		}

		switch frame.Type {
		case FrameResponse:
			c.mu.Lock()
			ch, ok := c.pending[frame.ID]
			delete(c.pending, frame.ID)
			c.mu.Unlock()

			if ok {
				ch <- frame
			}
		case FrameEvent, FrameResync:
			c.events <- frame
		default:
			c.logger.Warn("unknown frame type", "type", frame.Type)
		}
	}
}

// eventLoop runs handlers off the read goroutine so a handler may call
// back into the client.
func (c *Client) eventLoop() {
	for frame := range c.events {
		if frame.Type == FrameResync {
			c.resync()
			continue
		}
		if frame.Event == nil {
			continue
		}

		c.mu.Lock()
		handler, ok := c.handlers[frame.Subscription]
		c.mu.Unlock()

		if !ok {
			c.logger.Debug("event for unknown subscription", "subscription", frame.Subscription)
			continue
		}
		c.dispatch(handler, *frame.Event)
	}
}

// resync tells every subscription that events were lost on the server
func (c *Client) resync() {
	c.mu.Lock()
	handlers := make([]ports.EventHandler, 0, len(c.handlers))
	for _, h := range c.handlers {
		handlers = append(handlers, h)
	}
	c.mu.Unlock()

	c.logger.Warn("graph server dropped events, resyncing", "subscriptions", len(handlers))
	for _, h := range handlers {
		c.dispatch(h, domain.ObjectEvent{Kind: domain.EventResync})
	}
}

func (c *Client) dispatch(handler ports.EventHandler, ev domain.ObjectEvent) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("subscription handler panicked", "uid", ev.Object.UID, "panic", r)
		}
	}()
	handler(ev)
}

// call sends one request and decodes the result into out (if non-nil)
func (c *Client) call(ctx context.Context, op string, params, out any) error {
	raw, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("encode %s params: %w", op, err)
	}

	ch := make(chan Frame, 1)

	c.mu.Lock()
	select {
	case <-c.done:
		c.mu.Unlock()
		return ports.ErrStoreClosed
	default:
	}
	c.nextID++
	id := c.nextID
	c.pending[id] = ch
	c.mu.Unlock()

	forget := func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}

	c.writeMu.Lock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	err = c.conn.WriteJSON(Request{ID: id, Op: op, Params: raw})
	c.writeMu.Unlock()
	if err != nil {
		forget()
		return fmt.Errorf("send %s: %w", op, err)
	}

	select {
	case frame := <-ch:
		if frame.Error != nil {
			return frame.Error
		}
		if out != nil && len(frame.Result) > 0 {
			if err := json.Unmarshal(frame.Result, out); err != nil {
				return fmt.Errorf("decode %s result: %w", op, err)
			}
		}
		return nil
	case <-ctx.Done():
		forget()
		return ctx.Err()
	case <-c.done:
		forget()
		return ports.ErrStoreClosed
	}
}

// GetPackages returns the registered packages among names, keyed by package name
func (c *Client) GetPackages(ctx context.Context, names []string) (map[string]domain.Package, error) {
	out := make(map[string]domain.Package)
	if err := c.call(ctx, OpGetPackages, GetPackagesParams{Names: names}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddPackage registers a package on the server
func (c *Client) AddPackage(ctx context.Context, pkg domain.Package) error {
	return c.call(ctx, OpAddPackage, AddPackageParams{Package: pkg}, nil)
}

// AddObject inserts one object and returns its UID
func (c *Client) AddObject(ctx context.Context, schemaID string, fields map[string]string) (string, error) {
	uids, err := c.AddObjects(ctx, schemaID, []map[string]string{fields})
	if err != nil {
		return "", err
	}
	if len(uids) != 1 {
		return "", fmt.Errorf("server returned %d uids for one object", len(uids))
	}
	return uids[0], nil
}

// AddObjects inserts a batch of objects
func (c *Client) AddObjects(ctx context.Context, schemaID string, batch []map[string]string) ([]string, error) {
	var uids []string
	if err := c.call(ctx, OpAddObjects, AddObjectsParams{Schema: schemaID, Batch: batch}, &uids); err != nil {
		return nil, err
	}
	return uids, nil
}

// UpdateObject merges fields into an existing object
func (c *Client) UpdateObject(ctx context.Context, uid string, fields map[string]string) error {
	return c.call(ctx, OpUpdateObject, UpdateObjectParams{UID: uid, Fields: fields}, nil)
}

// GetObject retrieves an object by UID
func (c *Client) GetObject(ctx context.Context, uid string) (*domain.Object, error) {
	var obj domain.Object
	if err := c.call(ctx, OpGetObject, GetObjectParams{UID: uid}, &obj); err != nil {
		return nil, err
	}
	return &obj, nil
}

// Query returns objects matching q
func (c *Client) Query(ctx context.Context, q domain.Query) ([]domain.Object, error) {
	var objs []domain.Object
	if err := c.call(ctx, OpQuery, QueryParams{Query: q}, &objs); err != nil {
		return nil, err
	}
	return objs, nil
}

// Subscribe registers handler for changes to objects matching q
func (c *Client) Subscribe(ctx context.Context, q domain.Query, handler ports.EventHandler) (string, error) {
	if handler == nil {
		return "", errors.New("handler is required")
	}

	id := uuid.NewString()
	c.mu.Lock()
	c.handlers[id] = handler
	c.mu.Unlock()

	if err := c.call(ctx, OpSubscribe, SubscribeParams{Subscription: id, Query: q}, nil); err != nil {
		c.mu.Lock()
		delete(c.handlers, id)
		c.mu.Unlock()
		return "", err
	}
	return id, nil
}

// Unsubscribe removes a subscription locally and on the server
func (c *Client) Unsubscribe(ctx context.Context, subscriptionID string) error {
	c.mu.Lock()
	_, known := c.handlers[subscriptionID]
	delete(c.handlers, subscriptionID)
	c.mu.Unlock()

	if !known {
		return nil
	}
	return c.call(ctx, OpUnsubscribe, UnsubscribeParams{Subscription: subscriptionID}, nil)
}

// Err returns the error that ended the connection, if any
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.readErr
}
