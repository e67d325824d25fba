package repository

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// PresenceRepository mirrors online chat users into a Redis set so other
// API replicas and the dashboard can read presence.
type PresenceRepository struct {
	client *redis.Client
	key    string
}

// NewPresenceRepository constructs the repository. A nil client disables it.
func NewPresenceRepository(client *redis.Client, key string) *PresenceRepository {
	if key == "" {
		key = "chat:online"
	}
	return &PresenceRepository{client: client, key: key}
}

// Add marks userID online.
func (r *PresenceRepository) Add(ctx context.Context, userID string) error {
	if r.client == nil {
		return nil
	}
	if err := r.client.SAdd(ctx, r.key, userID).Err(); err != nil {
		return fmt.Errorf("presence add: %w", err)
	}
	return nil
}

// Remove marks userID offline.
func (r *PresenceRepository) Remove(ctx context.Context, userID string) error {
	if r.client == nil {
		return nil
	}
	if err := r.client.SRem(ctx, r.key, userID).Err(); err != nil {
		return fmt.Errorf("presence remove: %w", err)
	}
	return nil
}

// Members lists online user IDs.
func (r *PresenceRepository) Members(ctx context.Context) ([]string, error) {
	if r.client == nil {
		return nil, nil
	}
	members, err := r.client.SMembers(ctx, r.key).Result()
	if err != nil {
		return nil, fmt.Errorf("presence members: %w", err)
	}
	return members, nil
}

// Reset clears the set, used at startup so stale entries from a previous
// process do not linger.
func (r *PresenceRepository) Reset(ctx context.Context) error {
	if r.client == nil {
		return nil
	}
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("presence reset: %w", err)
	}
	return nil
}
