package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"jade/internal/application"
	"jade/internal/domain"
	"jade/internal/ports"
)

// fakeDB is an in-memory ports.ConceptDatabase for command tests
type fakeDB struct {
	mu          sync.Mutex
	initialized bool
	concepts    map[string]domain.Concept
	order       []string
	settings    domain.Settings
	version     int
	updated     time.Time
	subs        map[string]string
	nextSub     int
	failWith    error
}

var _ ports.ConceptDatabase = (*fakeDB)(nil)

func newFakeDB() *fakeDB {
	return &fakeDB{
		concepts: make(map[string]domain.Concept),
		subs:     make(map[string]string),
		version:  5,
	}
}

func (f *fakeDB) IsValid(ctx context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.initialized, f.failWith
}

func (f *fakeDB) Init(ctx context.Context, settings domain.Settings, concepts []domain.Concept) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	f.initialized = true
	f.settings = settings
	for _, c := range concepts {
		f.put(c)
	}
	return nil
}

func (f *fakeDB) put(c domain.Concept) {
	if _, ok := f.concepts[c.ID()]; !ok {
		f.order = append(f.order, c.ID())
	}
	f.concepts[c.ID()] = c
	f.updated = time.Now()
}

func (f *fakeDB) GetConcept(ctx context.Context, id string) (domain.Concept, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.concepts[id]
	if !ok {
		return nil, &application.ConceptError{ID: id, Err: application.ErrNotFound}
	}
	return c, nil
}

func (f *fakeDB) GetAllConcepts(ctx context.Context) ([]domain.Concept, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	out := make([]domain.Concept, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.concepts[id])
	}
	return out, nil
}

func (f *fakeDB) UpdateConcept(ctx context.Context, c domain.Concept) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.concepts[c.ID()]; !ok {
		return &application.ConceptError{ID: c.ID(), Err: application.ErrNotFound}
	}
	f.put(c)
	return nil
}

func (f *fakeDB) CreateConcept(ctx context.Context, c domain.Concept) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.concepts[c.ID()]; ok {
		return &application.ConceptError{ID: c.ID(), Err: application.ErrAlreadyExists}
	}
	f.put(c.WithDefaultRelations())
	return nil
}

func (f *fakeDB) GetSettings(ctx context.Context) (domain.Settings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.settings == nil {
		return domain.DefaultSettings(), nil
	}
	return f.settings.Clone(), nil
}

func (f *fakeDB) SaveSettings(ctx context.Context, s domain.Settings) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settings = s.Clone()
	return nil
}

func (f *fakeDB) GetVersion(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.version, nil
}

func (f *fakeDB) SetVersion(ctx context.Context, v int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.version = v
	return nil
}

func (f *fakeDB) GetLastUpdatedTime(ctx context.Context) (time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.updated, nil
}

func (f *fakeDB) SubscribeConcept(ctx context.Context, channel string, listener ports.ConceptListener) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return "", f.failWith
	}
	f.nextSub++
	id := fmt.Sprintf("sub-%d", f.nextSub)
	f.subs[id] = channel
	return id, nil
}

func (f *fakeDB) UnsubscribeConcept(ctx context.Context, channel, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subs[id] != channel {
		return errors.New("unknown subscription")
	}
	delete(f.subs, id)
	return nil
}

func (f *fakeDB) subscriptions() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

func wantError(t *testing.T, err error, substr string) {
	t.Helper()
	if substr == "" {
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		return
	}
	if err == nil {
		t.Errorf("expected error containing %q, got nil", substr)
		return
	}
	if !strings.Contains(err.Error(), substr) {
		t.Errorf("expected error containing %q, got %q", substr, err.Error())
	}
}
