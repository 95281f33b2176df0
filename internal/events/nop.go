package events

import "context"

// nopPublisher discards all events. Used when the broker is disabled and in
// tests that do not assert on published events.
type nopPublisher struct{}

// NewNop returns a Publisher that discards everything.
func NewNop() Publisher {
	return nopPublisher{}
}

func (nopPublisher) Publish(_ context.Context, _ string, _ any) {}

func (nopPublisher) Close() error { return nil }
