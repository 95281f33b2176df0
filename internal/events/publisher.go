// Package events publishes lifecycle notifications to named broker queues.
//
// Publishing is best-effort by contract: delivery failures are logged and
// counted, never returned to the caller. Authentication decisions must not
// depend on whether an event reached the broker.
package events

import (
	"context"
	"time"
)

// Queue names declared by the publisher.
const (
	QueueUserEvents         = "user-events"
	QueueEmailNotifications = "email-notifications"
)

// User lifecycle event names.
const (
	EventUserRegistered = "user.registered"
	EventUserLogin      = "user.login"
	EventUserUpdated    = "user.updated"
	EventUserDeleted    = "user.deleted"
)

// Message is a user lifecycle event record.
type Message struct {
	Event     string         `json:"event"`
	UserID    int64          `json:"userId"`
	Data      map[string]any `json:"data"`
	Timestamp time.Time      `json:"timestamp"`
}

// EmailNotification is a queued outbound email request.
type EmailNotification struct {
	To        string    `json:"to"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher emits JSON-encoded payloads to a named queue. Implementations
// absorb delivery failures; Publish never reports them to the caller.
type Publisher interface {
	Publish(ctx context.Context, queue string, payload any)
	Close() error
}

// NewMessage builds a user event message stamped with the current time.
func NewMessage(event string, userID int64, data map[string]any) Message {
	if data == nil {
		data = map[string]any{}
	}
	return Message{
		Event:     event,
		UserID:    userID,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}

// NewEmailNotification builds an email notification stamped with the current time.
func NewEmailNotification(to, subject, body string) EmailNotification {
	return EmailNotification{
		To:        to,
		Subject:   subject,
		Body:      body,
		Timestamp: time.Now().UTC(),
	}
}
