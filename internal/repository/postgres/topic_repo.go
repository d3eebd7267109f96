package postgres

import (
	"context"
	"database/sql"
	"strings"

	"speakermarket/internal/domain"
)

type topicRepository struct {
	DB *sql.DB
}

func NewTopicRepository(db *sql.DB) domain.TopicRepository {
	return &topicRepository{DB: db}
}

func (r *topicRepository) EnsureTopic(ctx context.Context, name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return "", domain.ErrInvalidInput
	}
	// Upsert keeps this race-free: a concurrent insert of the same name
	// resolves to the existing row.
	query := `
		INSERT INTO topics (name)
		VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`
	var id string
	if err := r.DB.QueryRowContext(ctx, query, name).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func (r *topicRepository) SetEventTopics(ctx context.Context, eventID string, names []string) error {
	if _, err := r.DB.ExecContext(ctx, `DELETE FROM event_topics WHERE event_id = $1`, eventID); err != nil {
		return err
	}
	seen := make(map[string]struct{})
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		topicID, err := r.EnsureTopic(ctx, name)
		if err != nil {
			return err
		}
		link := `
			INSERT INTO event_topics (event_id, topic_id)
			VALUES ($1, $2)
			ON CONFLICT (event_id, topic_id) DO NOTHING
		`
		if _, err := r.DB.ExecContext(ctx, link, eventID, topicID); err != nil {
			return err
		}
	}
	return nil
}

func (r *topicRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.Topic, error) {
	query := `
		SELECT t.id, t.name
		FROM event_topics et
		JOIN topics t ON t.id = et.topic_id
		WHERE et.event_id = $1
		ORDER BY t.name
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var topics []*domain.Topic
	for rows.Next() {
		t := &domain.Topic{}
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		topics = append(topics, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if topics == nil {
		topics = []*domain.Topic{}
	}
	return topics, nil
}
