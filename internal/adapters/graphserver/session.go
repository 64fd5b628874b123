package graphserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"jade/internal/adapters/remote"
	"jade/internal/domain"
	"jade/internal/observability"
	"jade/internal/ports"
)

const (
	outboundBuffer = 256
	writeTimeout   = 10 * time.Second
)

var errBadRequest = errors.New("bad request")

// session is one websocket connection. Requests are served in order;
// events are queued and written by a separate goroutine.
type session struct {
	conn   *websocket.Conn
	store  ports.GraphStore
	logger *slog.Logger

	writeMu sync.Mutex

	mu   sync.Mutex
	subs map[string]string // client subscription ID -> store subscription ID

	events  chan remote.Frame
	lagging atomic.Bool // events were dropped since the last resync frame
	done    chan struct{}
}

func newSession(conn *websocket.Conn, store ports.GraphStore, logger *slog.Logger) *session {
	return &session{
		conn:   conn,
		store:  store,
		logger: logger,
		subs:   make(map[string]string),
		events: make(chan remote.Frame, outboundBuffer),
		done:   make(chan struct{}),
	}
}

func (s *session) serve(ctx context.Context) {
	defer s.conn.Close()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.writeEvents()
	}()

	defer func() {
		close(s.done)
		s.dropSubscriptions()
		wg.Wait()
	}()

	for {
		var req remote.Request
		if err := s.conn.ReadJSON(&req); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("websocket read ended", "error", err)
			}
			return
		}

		start := time.Now()
		result, err := s.handle(ctx, req)
		observability.ObserveRequest(req.Op, start, err)
		if err != nil {
			s.logger.Debug("request failed", "op", req.Op, "error", err)
		}

		if werr := s.respond(req.ID, result, err); werr != nil {
			s.logger.Warn("failed to write response", "op", req.Op, "error", werr)
			return
		}
	}
}

func (s *session) respond(id uint64, result any, err error) error {
	frame := remote.Frame{Type: remote.FrameResponse, ID: id}

	if err != nil {
		frame.Error = remote.EncodeError(err)
		if errors.Is(err, errBadRequest) {
			frame.Error.Code = remote.CodeBadRequest
		}
	} else if result != nil {
		raw, merr := json.Marshal(result)
		if merr != nil {
			frame.Error = remote.EncodeError(merr)
		} else {
			frame.Result = raw
		}
	}

	return s.write(frame)
}

func (s *session) write(frame remote.Frame) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return s.conn.WriteJSON(frame)
}

func (s *session) writeEvents() {
	for {
		select {
		case <-s.done:
			return
		case frame := <-s.events:
			if err := s.write(frame); err != nil {
				s.logger.Warn("failed to push event", "subscription", frame.Subscription, "error", err)
				continue
			}
			observability.EventsPushedTotal.Inc()

			if s.resyncDue() {
				if err := s.write(remote.Frame{Type: remote.FrameResync}); err != nil {
					s.logger.Warn("failed to push resync", "error", err)
				}
			}
		}
	}
}

// resyncDue reports, once per overflow, that the backlog has drained and the
// client must be told to re-read.
func (s *session) resyncDue() bool {
	return len(s.events) == 0 && s.lagging.Swap(false)
}

// enqueue is called on the store's writer goroutine and never blocks
func (s *session) enqueue(subscription string, ev domain.ObjectEvent) {
	frame := remote.Frame{Type: remote.FrameEvent, Subscription: subscription, Event: &ev}
	select {
	case <-s.done:
	case s.events <- frame:
	default:
		observability.EventsDroppedTotal.Inc()
		if s.lagging.CompareAndSwap(false, true) {
			s.logger.Warn("event queue full, dropping events until the client resyncs", "subscription", subscription)
		}
	}
}

func (s *session) handle(ctx context.Context, req remote.Request) (any, error) {
	switch req.Op {
	case remote.OpGetPackages:
		var p remote.GetPackagesParams
		if err := decode(req, &p); err != nil {
			return nil, err
		}
		return s.store.GetPackages(ctx, p.Names)

	case remote.OpAddPackage:
		var p remote.AddPackageParams
		if err := decode(req, &p); err != nil {
			return nil, err
		}
		return nil, s.store.AddPackage(ctx, p.Package)

	case remote.OpAddObjects:
		var p remote.AddObjectsParams
		if err := decode(req, &p); err != nil {
			return nil, err
		}
		return s.store.AddObjects(ctx, p.Schema, p.Batch)

	case remote.OpUpdateObject:
		var p remote.UpdateObjectParams
		if err := decode(req, &p); err != nil {
			return nil, err
		}
		return nil, s.store.UpdateObject(ctx, p.UID, p.Fields)

	case remote.OpGetObject:
		var p remote.GetObjectParams
		if err := decode(req, &p); err != nil {
			return nil, err
		}
		return s.store.GetObject(ctx, p.UID)

	case remote.OpQuery:
		var p remote.QueryParams
		if err := decode(req, &p); err != nil {
			return nil, err
		}
		objs, err := s.store.Query(ctx, p.Query)
		if objs == nil && err == nil {
			objs = []domain.Object{}
		}
		return objs, err

	case remote.OpSubscribe:
		var p remote.SubscribeParams
		if err := decode(req, &p); err != nil {
			return nil, err
		}
		return nil, s.subscribe(ctx, p)

	case remote.OpUnsubscribe:
		var p remote.UnsubscribeParams
		if err := decode(req, &p); err != nil {
			return nil, err
		}
		return nil, s.unsubscribe(ctx, p.Subscription)

	default:
		return nil, fmt.Errorf("unknown operation %q: %w", req.Op, errBadRequest)
	}
}

func (s *session) subscribe(ctx context.Context, p remote.SubscribeParams) error {
	if p.Subscription == "" {
		return fmt.Errorf("subscription id is required: %w", errBadRequest)
	}

	s.mu.Lock()
	_, taken := s.subs[p.Subscription]
	s.mu.Unlock()
	if taken {
		return fmt.Errorf("subscription %s already exists: %w", p.Subscription, errBadRequest)
	}

	clientID := p.Subscription
	storeID, err := s.store.Subscribe(ctx, p.Query, func(ev domain.ObjectEvent) {
		s.enqueue(clientID, ev)
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.subs[clientID] = storeID
	s.mu.Unlock()
	observability.SubscriptionsActive.Inc()
	return nil
}

func (s *session) unsubscribe(ctx context.Context, clientID string) error {
	s.mu.Lock()
	storeID, ok := s.subs[clientID]
	delete(s.subs, clientID)
	s.mu.Unlock()

	if !ok {
		return nil
	}
	observability.SubscriptionsActive.Dec()
	return s.store.Unsubscribe(ctx, storeID)
}

func (s *session) dropSubscriptions() {
	s.mu.Lock()
	subs := s.subs
	s.subs = make(map[string]string)
	s.mu.Unlock()

	for _, storeID := range subs {
		observability.SubscriptionsActive.Dec()
		if err := s.store.Unsubscribe(context.Background(), storeID); err != nil {
			s.logger.Warn("failed to drop subscription", "id", storeID, "error", err)
		}
	}
}

func decode(req remote.Request, v any) error {
	if len(req.Params) == 0 {
		return fmt.Errorf("%s: missing params: %w", req.Op, errBadRequest)
	}
	if err := json.Unmarshal(req.Params, v); err != nil {
		return fmt.Errorf("%s: %v: %w", req.Op, err, errBadRequest)
	}
	return nil
}
