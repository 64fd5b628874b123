package commands

import (
	"context"
	"testing"
	"time"

	"jade/internal/domain"
)

func TestWatchCommand_Validate(t *testing.T) {
	listener := func(domain.Concept) {}

	tests := []struct {
		name     string
		channel  string
		listener func(domain.Concept)
		errMsg   string
	}{
		{name: "concept", channel: "c1", listener: listener},
		{name: "wildcard", channel: "*", listener: listener},
		{name: "empty channel", channel: "", listener: listener, errMsg: "channel is required"},
		{name: "partial wildcard", channel: "c*", listener: listener, errMsg: "expected concept ID"},
		{name: "no listener", channel: "c1", errMsg: "listener is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &WatchCommand{Channel: tt.channel, Listener: tt.listener}
			wantError(t, cmd.Validate(), tt.errMsg)
		})
	}
}

func TestWatchCommand_UnsubscribesOnCancel(t *testing.T) {
	db := newFakeDB()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- NewWatchCommand(db, "*", func(domain.Concept) {}).Execute(ctx)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for db.subscriptions() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for subscription")
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not return after cancel")
	}

	if n := db.subscriptions(); n != 0 {
		t.Errorf("expected no subscriptions, got %d", n)
	}
}
