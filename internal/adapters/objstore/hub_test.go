package objstore

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"jade/internal/domain"
)

func TestHub_PublishMatching(t *testing.T) {
	h := NewHub(nil)

	var got []string
	h.Add(domain.Query{Schema: "$/schema/a"}, func(ev domain.ObjectEvent) {
		got = append(got, "a:"+ev.Object.UID)
	})
	h.Add(domain.Query{Schema: "$/schema/a", Field: "id", Value: "x"}, func(ev domain.ObjectEvent) {
		got = append(got, "ax:"+ev.Object.UID)
	})

	h.Publish(
		domain.ObjectEvent{Object: domain.Object{UID: "1", Schema: "$/schema/a", Fields: map[string]string{"id": "x"}}},
		domain.ObjectEvent{Object: domain.Object{UID: "2", Schema: "$/schema/b"}},
	)

	assert.ElementsMatch(t, []string{"a:1", "ax:1"}, got)
}

func TestHub_RemoveAndClear(t *testing.T) {
	h := NewHub(nil)
	id := h.Add(domain.Query{}, func(domain.ObjectEvent) {})
	h.Add(domain.Query{}, func(domain.ObjectEvent) {})

	assert.Equal(t, 2, h.Len())
	assert.True(t, h.Remove(id))
	assert.False(t, h.Remove(id))
	assert.Equal(t, 1, h.Len())

	h.Clear()
	assert.Equal(t, 0, h.Len())
}

func TestHub_HandlerPanicDoesNotStopDelivery(t *testing.T) {
	h := NewHub(nil)
	delivered := 0

	h.Add(domain.Query{}, func(domain.ObjectEvent) { panic("boom") })
	h.Add(domain.Query{}, func(domain.ObjectEvent) { delivered++ })

	assert.NotPanics(t, func() {
		h.Publish(domain.ObjectEvent{Object: domain.Object{UID: "1"}})
	})
	assert.Equal(t, 1, delivered)
}

func TestHub_HandlerMayUnsubscribe(t *testing.T) {
	h := NewHub(nil)
	var id string
	calls := 0
	id = h.Add(domain.Query{}, func(domain.ObjectEvent) {
		calls++
		h.Remove(id)
	})

	h.Publish(domain.ObjectEvent{}, domain.ObjectEvent{})
	assert.Equal(t, 1, calls)
}
