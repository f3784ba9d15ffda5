package config

import (
	"context"
	"log"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

// NewPubSubClient returns nil without error when no project is configured;
// settlement events are then only logged.
// It uses Application Default Credentials unless PUBSUB_CREDENTIALS_JSON is provided.
func NewPubSubClient(ctx context.Context, cfg *Config) (*pubsub.Client, error) {
	if cfg.PubSub.ProjectID == "" || cfg.PubSub.Topic == "" {
		log.Printf("PUBSUB_PROJECT_ID/PUBSUB_TOPIC not set; settlement events disabled")
		return nil, nil
	}

	var opts []option.ClientOption
	if cfg.PubSub.CredentialsJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.PubSub.CredentialsJSON)))
	}
	c, err := pubsub.NewClient(ctx, cfg.PubSub.ProjectID, opts...)
	if err != nil {
		return nil, err
	}
	log.Printf("pubsub client ready (project_id=%s)", cfg.PubSub.ProjectID)
	return c, nil
}
