// Package storetest is a behavioural test suite shared by every
// ports.GraphStore implementation.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jade/internal/domain"
	"jade/internal/ports"
)

// Factory returns a fresh, empty store. The suite closes it.
type Factory func(t *testing.T) ports.GraphStore

const (
	notesSchema = "$/schema/test_note"
	tagsSchema  = "$/schema/test_tag"
	eventWait   = 2 * time.Second
)

// Package returns the package registered by every test in the suite
func Package() domain.Package {
	return domain.Package{
		Manifest: domain.Manifest{
			Name:        "Store tests",
			PackageName: "store.tests",
			Version:     "0.0.1",
		},
		Schemas: map[string]domain.Schema{
			"test_note": {
				Name: "Note",
				Properties: []domain.Property{
					{Key: "slug", Type: domain.TypeString, Unique: true},
					{Key: "body", Type: domain.TypeString},
				},
			},
			"test_tag": {
				Name:       "Tag",
				Properties: []domain.Property{{Key: "label", Type: domain.TypeString}},
			},
		},
	}
}

// Run executes the suite against stores produced by factory
func Run(t *testing.T, factory Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s ports.GraphStore)
	}{
		{"packages", testPackages},
		{"add and get", testAddAndGet},
		{"unknown schema", testUnknownSchema},
		{"unknown field", testUnknownField},
		{"unique on add", testUniqueOnAdd},
		{"batch is atomic", testBatchAtomic},
		{"query", testQuery},
		{"update", testUpdate},
		{"unique on update", testUniqueOnUpdate},
		{"subscribe", testSubscribe},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := factory(t)
			t.Cleanup(func() { s.Close() })
			require.NoError(t, s.AddPackage(context.Background(), Package()))
			tt.fn(t, s)
		})
	}
}

func testPackages(t *testing.T, s ports.GraphStore) {
	ctx := context.Background()

	pkgs, err := s.GetPackages(ctx, []string{"store.tests", "missing.pkg"})
	require.NoError(t, err)
	require.Len(t, pkgs, 1)

	pkg := pkgs["store.tests"]
	assert.Equal(t, "Store tests", pkg.Manifest.Name)
	assert.Contains(t, pkg.Schemas, "test_note")

	// Re-registering is allowed
	require.NoError(t, s.AddPackage(ctx, Package()))
}

func testAddAndGet(t *testing.T, s ports.GraphStore) {
	ctx := context.Background()

	uid, err := s.AddObject(ctx, notesSchema, map[string]string{"slug": "a", "body": "hello"})
	require.NoError(t, err)
	require.NotEmpty(t, uid)

	obj, err := s.GetObject(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, uid, obj.UID)
	assert.Equal(t, notesSchema, obj.Schema)
	assert.Equal(t, "hello", obj.Fields["body"])
	assert.False(t, obj.CreatedAt.IsZero())

	_, err = s.GetObject(ctx, "0xmissing")
	assert.ErrorIs(t, err, ports.ErrObjectNotFound)
}

func testUnknownSchema(t *testing.T, s ports.GraphStore) {
	ctx := context.Background()

	_, err := s.AddObject(ctx, "$/schema/nope", map[string]string{"x": "y"})
	assert.ErrorIs(t, err, ports.ErrUnknownSchema)

	_, err = s.Query(ctx, domain.Query{Schema: "$/schema/nope"})
	assert.ErrorIs(t, err, ports.ErrUnknownSchema)

	_, err = s.Query(ctx, domain.Query{Schema: "$/schema/nope", Field: "x", Value: "y"})
	assert.ErrorIs(t, err, ports.ErrUnknownSchema)
}

func testUnknownField(t *testing.T, s ports.GraphStore) {
	_, err := s.AddObject(context.Background(), notesSchema, map[string]string{"title": "x"})
	assert.ErrorIs(t, err, ports.ErrUnknownField)
}

func testUniqueOnAdd(t *testing.T, s ports.GraphStore) {
	ctx := context.Background()

	_, err := s.AddObject(ctx, notesSchema, map[string]string{"slug": "dup"})
	require.NoError(t, err)

	_, err = s.AddObject(ctx, notesSchema, map[string]string{"slug": "dup"})
	assert.ErrorIs(t, err, ports.ErrUniqueViolation)

	// Objects without the unique key don't collide
	_, err = s.AddObject(ctx, notesSchema, map[string]string{"body": "x"})
	require.NoError(t, err)
	_, err = s.AddObject(ctx, notesSchema, map[string]string{"body": "y"})
	require.NoError(t, err)
}

func testBatchAtomic(t *testing.T, s ports.GraphStore) {
	ctx := context.Background()

	_, err := s.AddObjects(ctx, notesSchema, []map[string]string{
		{"slug": "one"},
		{"slug": "two"},
		{"slug": "one"},
	})
	assert.ErrorIs(t, err, ports.ErrUniqueViolation)

	objs, err := s.Query(ctx, domain.Query{Schema: notesSchema})
	require.NoError(t, err)
	assert.Empty(t, objs)

	uids, err := s.AddObjects(ctx, notesSchema, []map[string]string{{"slug": "one"}, {"slug": "two"}})
	require.NoError(t, err)
	assert.Len(t, uids, 2)
}

func testQuery(t *testing.T, s ports.GraphStore) {
	ctx := context.Background()

	_, err := s.AddObjects(ctx, notesSchema, []map[string]string{
		{"slug": "n1", "body": "red"},
		{"slug": "n2", "body": "blue"},
		{"slug": "n3", "body": "red"},
	})
	require.NoError(t, err)
	_, err = s.AddObject(ctx, tagsSchema, map[string]string{"label": "red"})
	require.NoError(t, err)

	all, err := s.Query(ctx, domain.Query{Schema: notesSchema})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "n1", all[0].Fields["slug"])
	assert.Equal(t, "n3", all[2].Fields["slug"])

	red, err := s.Query(ctx, domain.Query{Schema: notesSchema, Field: "body", Value: "red"})
	require.NoError(t, err)
	assert.Len(t, red, 2)

	limited, err := s.Query(ctx, domain.Query{Schema: notesSchema, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	none, err := s.Query(ctx, domain.Query{Schema: notesSchema, Field: "slug", Value: "zzz"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func testUpdate(t *testing.T, s ports.GraphStore) {
	ctx := context.Background()

	uid, err := s.AddObject(ctx, notesSchema, map[string]string{"slug": "u", "body": "v1"})
	require.NoError(t, err)

	require.NoError(t, s.UpdateObject(ctx, uid, map[string]string{"body": "v2"}))

	obj, err := s.GetObject(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, "v2", obj.Fields["body"])
	assert.Equal(t, "u", obj.Fields["slug"], "update merges fields")
	assert.False(t, obj.UpdatedAt.Before(obj.CreatedAt))

	err = s.UpdateObject(ctx, "0xmissing", map[string]string{"body": "x"})
	assert.ErrorIs(t, err, ports.ErrObjectNotFound)

	err = s.UpdateObject(ctx, uid, map[string]string{"nope": "x"})
	assert.ErrorIs(t, err, ports.ErrUnknownField)
}

func testUniqueOnUpdate(t *testing.T, s ports.GraphStore) {
	ctx := context.Background()

	a, err := s.AddObject(ctx, notesSchema, map[string]string{"slug": "a"})
	require.NoError(t, err)
	b, err := s.AddObject(ctx, notesSchema, map[string]string{"slug": "b"})
	require.NoError(t, err)

	err = s.UpdateObject(ctx, b, map[string]string{"slug": "a"})
	assert.ErrorIs(t, err, ports.ErrUniqueViolation)

	// Renaming releases the old value
	require.NoError(t, s.UpdateObject(ctx, a, map[string]string{"slug": "c"}))
	require.NoError(t, s.UpdateObject(ctx, b, map[string]string{"slug": "a"}))

	// Rewriting the same value is not a conflict
	require.NoError(t, s.UpdateObject(ctx, b, map[string]string{"slug": "a", "body": "x"}))
}

func testSubscribe(t *testing.T, s ports.GraphStore) {
	ctx := context.Background()
	events := make(chan domain.ObjectEvent, 16)

	subID, err := s.Subscribe(ctx, domain.Query{Schema: notesSchema, Field: "slug", Value: "watched"},
		func(ev domain.ObjectEvent) { events <- ev })
	require.NoError(t, err)
	require.NotEmpty(t, subID)

	_, err = s.AddObject(ctx, notesSchema, map[string]string{"slug": "other"})
	require.NoError(t, err)
	uid, err := s.AddObject(ctx, notesSchema, map[string]string{"slug": "watched", "body": "1"})
	require.NoError(t, err)

	ev := waitEvent(t, events)
	assert.Equal(t, domain.EventCreated, ev.Kind)
	assert.Equal(t, uid, ev.Object.UID)

	require.NoError(t, s.UpdateObject(ctx, uid, map[string]string{"body": "2"}))
	ev = waitEvent(t, events)
	assert.Equal(t, domain.EventUpdated, ev.Kind)
	assert.Equal(t, "2", ev.Object.Fields["body"])

	require.NoError(t, s.Unsubscribe(ctx, subID))
	require.NoError(t, s.UpdateObject(ctx, uid, map[string]string{"body": "3"}))

	select {
	case ev := <-events:
		t.Fatalf("unexpected event after unsubscribe: %+v", ev)
	case <-time.After(100 * time.Millisecond):
	}

	// Unknown IDs are not an error
	assert.NoError(t, s.Unsubscribe(ctx, "unknown"))
}

func waitEvent(t *testing.T, events <-chan domain.ObjectEvent) domain.ObjectEvent {
	t.Helper()
	select {
	case ev := <-events:
		return ev
	case <-time.After(eventWait):
		t.Fatal("timed out waiting for event")
		return domain.ObjectEvent{}
	}
}
