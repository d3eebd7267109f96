package domain

import "context"

// Topic is a named subject shared across events and speakers (e.g. "golang",
// "leadership").
// swagger:model Topic
type Topic struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TopicRepository defines storage for topics and event–topic links.
type TopicRepository interface {
	// EnsureTopic resolves a topic by name, creating it if missing, and
	// returns its ID.
	EnsureTopic(ctx context.Context, name string) (topicID string, err error)
	// SetEventTopics replaces the event's topic links with the given names,
	// creating missing topics.
	SetEventTopics(ctx context.Context, eventID string, names []string) error
	ListByEventID(ctx context.Context, eventID string) ([]*Topic, error)
}
