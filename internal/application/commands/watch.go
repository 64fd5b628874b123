package commands

import (
	"context"
	"fmt"
	"time"

	"jade/internal/application"
	"jade/internal/ports"
)

const unsubscribeTimeout = 5 * time.Second

// WatchCommand delivers concept changes on a channel until its context ends
type WatchCommand struct {
	db       ports.ConceptDatabase
	Channel  string
	Listener ports.ConceptListener
}

// NewWatchCommand creates a new WatchCommand. channel is a concept ID or "*".
func NewWatchCommand(db ports.ConceptDatabase, channel string, listener ports.ConceptListener) *WatchCommand {
	return &WatchCommand{db: db, Channel: channel, Listener: listener}
}

// Validate checks if the watch operation is valid
func (c *WatchCommand) Validate() error {
	if err := application.ValidateChannel(c.Channel); err != nil {
		return err
	}
	if c.Listener == nil {
		return &application.ValidationError{
			Field:   "listener",
			Message: "listener is required",
		}
	}
	return nil
}

// Execute subscribes and blocks until ctx is done, then unsubscribes.
// Cancellation is the normal way to stop and is not reported as an error.
func (c *WatchCommand) Execute(ctx context.Context) error {
	if err := c.Validate(); err != nil {
		return err
	}

	id, err := c.db.SubscribeConcept(ctx, c.Channel, c.Listener)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", c.Channel, err)
	}

	<-ctx.Done()

	unsubCtx, cancel := context.WithTimeout(context.Background(), unsubscribeTimeout)
	defer cancel()
	if err := c.db.UnsubscribeConcept(unsubCtx, c.Channel, id); err != nil {
		return fmt.Errorf("failed to stop watching %s: %w", c.Channel, err)
	}
	return nil
}
