// Package publish sends approved content out to the social networks.
package publish

import (
	"context"
	"fmt"

	"amplify/internal/models"
)

// Result carries the network-side identity of a published post.
type Result struct {
	ExternalID  string
	ExternalURL string
}

// Publisher pushes a draft to one social network.
type Publisher interface {
	Channel() string
	Publish(ctx context.Context, draft *models.PostDraft) (*Result, error)
}

// Registry routes drafts to the publisher for their channel.
type Registry struct {
	publishers map[string]Publisher
}

// NewRegistry builds a registry from the given publishers.
func NewRegistry(publishers ...Publisher) *Registry {
	m := make(map[string]Publisher, len(publishers))
	for _, p := range publishers {
		m[p.Channel()] = p
	}
	return &Registry{publishers: m}
}

// For returns the publisher for a channel.
func (r *Registry) For(channel string) (Publisher, error) {
	p, ok := r.publishers[channel]
	if !ok {
		return nil, fmt.Errorf("no publisher configured for channel %q", channel)
	}
	return p, nil
}
