package ports

import "context"

// Event is a notification pushed to connected dashboards.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// EventPublisher fans events out to subscribers. Publishing is best effort.
type EventPublisher interface {
	Publish(ctx context.Context, e Event)
}
