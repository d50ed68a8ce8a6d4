// Package notify publishes repository change events.
//
// The core owns no process-wide listener state: a repository handle writes
// events to the Bus it was given, and whoever constructed the Bus owns the
// subscriber registry and its lifecycle.
package notify

import (
	events "github.com/docker/go-events"
)

// RepositoryCountChanged is emitted when a repository is created or deleted
// under a repos root.
type RepositoryCountChanged struct {
	// Root is the repos root whose repository set changed.
	Root string
}

// Bus broadcasts events to its subscribers. The zero value is unusable;
// use NewBus. A nil *Bus discards every publish, so library code never has
// to branch on "events wired or not".
type Bus struct {
	broadcaster *events.Broadcaster
}

// NewBus returns a bus with no subscribers.
func NewBus() *Bus {
	return &Bus{broadcaster: events.NewBroadcaster()}
}

// Publish delivers the event to every subscriber. Safe on a nil bus.
func (b *Bus) Publish(event events.Event) {
	if b == nil {
		return
	}
	// Broadcaster.Write only errors once closed; a closed bus drops events.
	_ = b.broadcaster.Write(event)
}

// Subscribe registers a channel sink and returns its receive side. buffer
// bounds how many undelivered events are held before delivery blocks, so
// subscribers must drain their channel.
func (b *Bus) Subscribe(buffer int) (<-chan events.Event, func()) {
	ch := events.NewChannel(buffer)
	b.broadcaster.Add(ch)
	cancel := func() {
		b.broadcaster.Remove(ch)
		ch.Close()
	}
	return ch.C, cancel
}

// Close shuts the bus down; later publishes are discarded.
func (b *Bus) Close() error {
	if b == nil {
		return nil
	}
	return b.broadcaster.Close()
}
