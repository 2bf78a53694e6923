package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Dhrubajit-says/FormForge/internal/config"
	"github.com/Dhrubajit-says/FormForge/internal/model"
)

// Feed fans template events out over Redis PubSub so every server instance
// can serve the owner's live connection.
type Feed struct {
	client *redis.Client
}

// NewFeed creates a new Feed.
func NewFeed(client *redis.Client) *Feed {
	return &Feed{client: client}
}

// Publish sends an event to the template's channel.
func (f *Feed) Publish(ctx context.Context, ev model.FeedEvent) error {
	raw, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode feed event: %w", err)
	}
	return f.client.Publish(ctx, config.CacheKey.TemplateFeedChannel(ev.TemplateID.String()), raw).Err()
}

// PublishBatch sends several events in one round trip.
func (f *Feed) PublishBatch(ctx context.Context, events []model.FeedEvent) error {
	pipe := f.client.Pipeline()
	for _, ev := range events {
		raw, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("encode feed event: %w", err)
		}
		pipe.Publish(ctx, config.CacheKey.TemplateFeedChannel(ev.TemplateID.String()), raw)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// Subscribe opens a subscription to one template's channel. The caller
// must close it.
func (f *Feed) Subscribe(ctx context.Context, templateID uuid.UUID) *redis.PubSub {
	return f.client.Subscribe(ctx, config.CacheKey.TemplateFeedChannel(templateID.String()))
}

// Listen subscribes to a template's channel and decodes its messages. The
// returned channel closes when ctx is done or the subscription fails.
// Undecodable payloads are skipped.
func (f *Feed) Listen(ctx context.Context, templateID uuid.UUID) (<-chan model.FeedEvent, error) {
	sub := f.Subscribe(ctx, templateID)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("subscribe feed: %w", err)
	}

	out := make(chan model.FeedEvent)
	go func() {
		defer close(out)
		defer sub.Close()

		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var ev model.FeedEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
