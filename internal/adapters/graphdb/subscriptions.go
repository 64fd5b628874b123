package graphdb

import (
	"context"
	"fmt"
	"time"

	"jade/internal/application"
	"jade/internal/domain"
	"jade/internal/ports"
)

// SubscribeConcept calls listener with the new value of every concept on
// channel after it is created or updated. channel is a concept ID or "*".
// When the store reports lost events, every concept on the channel is
// delivered again.
func (d *Database) SubscribeConcept(ctx context.Context, channel string, listener ports.ConceptListener) (id string, err error) {
	defer d.observe("subscribe", &err)

	if err := application.ValidateChannel(channel); err != nil {
		return "", err
	}
	if listener == nil {
		return "", &application.ValidationError{Field: "listener", Message: "listener is required"}
	}

	q := domain.Query{Schema: ConceptSchemaID}
	if channel != ports.WildcardChannel {
		q.Field = fieldID
		q.Value = channel
	}

	id, err = d.store.Subscribe(ctx, q, func(ev domain.ObjectEvent) {
		if ev.Kind == domain.EventResync {
			d.resync(channel, q, listener)
			return
		}
		c, err := d.hydrate(ev.Object)
		if err != nil {
			return
		}
		listener(c)
	})
	if err != nil {
		return "", fmt.Errorf("failed to subscribe to %s: %w", channel, mapStoreError(err))
	}

	d.mu.Lock()
	d.subs[id] = channel
	d.mu.Unlock()

	d.logger.Debug("subscribed", "channel", channel, "subscription", id)
	return id, nil
}

// UnsubscribeConcept removes a subscription made by SubscribeConcept on the same channel
func (d *Database) UnsubscribeConcept(ctx context.Context, channel, subscriptionID string) (err error) {
	defer d.observe("unsubscribe", &err)

	if err := application.ValidateChannel(channel); err != nil {
		return err
	}
	if err := application.ValidateRequired("subscriptionID", subscriptionID); err != nil {
		return err
	}

	d.mu.Lock()
	subscribed, ok := d.subs[subscriptionID]
	d.mu.Unlock()
	if !ok {
		return fmt.Errorf("subscription %s: %w", subscriptionID, application.ErrNotFound)
	}
	if subscribed != channel {
		return &application.ValidationError{
			Field:   "channel",
			Message: fmt.Sprintf("subscription %s is on %s, not %s", subscriptionID, subscribed, channel),
		}
	}

	if err := d.store.Unsubscribe(ctx, subscriptionID); err != nil {
		return fmt.Errorf("failed to unsubscribe %s: %w", subscriptionID, mapStoreError(err))
	}

	d.mu.Lock()
	delete(d.subs, subscriptionID)
	d.mu.Unlock()

	d.logger.Debug("unsubscribed", "channel", channel, "subscription", subscriptionID)
	return nil
}

const resyncTimeout = 30 * time.Second

// resync re-delivers the current value of every concept on the channel after
// the store reported lost events.
func (d *Database) resync(channel string, q domain.Query, listener ports.ConceptListener) {
	ctx, cancel := context.WithTimeout(context.Background(), resyncTimeout)
	defer cancel()

	objs, err := d.store.Query(ctx, q)
	if err != nil {
		d.logger.Warn("resync failed", "channel", channel, "error", err)
		return
	}
	d.logger.Info("resyncing subscription", "channel", channel, "concepts", len(objs))

	for _, obj := range objs {
		c, err := d.hydrate(obj)
		if err != nil {
			continue
		}
		listener(c)
	}
}
