package cleanup

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	orphanKeyPrefix = "bid:orphan:" // Orphan record: bid:orphan:{project_id}
	orphanIndexKey  = "bid:orphans" // Set of orphaned project IDs
	orphanTTL       = 7 * 24 * time.Hour
)

// Orphan is a project row left behind without its line items by a failed
// duplication. It stays registered until the sweeper deletes the row.
type Orphan struct {
	ProjectID string    `json:"projectId"`
	OwnerID   string    `json:"ownerId"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"createdAt"`
}

// Registry stores orphan records in Redis.
type Registry struct {
	client *redis.Client
}

// NewRegistry creates a new orphan registry
func NewRegistry(client *redis.Client) *Registry {
	return &Registry{client: client}
}

// Record registers an orphaned project for later cleanup.
func (r *Registry) Record(ctx context.Context, projectID, ownerID, reason string) error {
	o := Orphan{
		ProjectID: projectID,
		OwnerID:   ownerID,
		Reason:    reason,
		CreatedAt: time.Now().UTC(),
	}
	data, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("marshal orphan: %w", err)
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, orphanKeyPrefix+projectID, data, orphanTTL)
	pipe.SAdd(ctx, orphanIndexKey, projectID)
	pipe.Expire(ctx, orphanIndexKey, orphanTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record orphan: %w", err)
	}
	return nil
}

// List returns every registered orphan. Index entries whose record has
// expired are skipped and pruned.
func (r *Registry) List(ctx context.Context) ([]Orphan, error) {
	ids, err := r.client.SMembers(ctx, orphanIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list orphans: %w", err)
	}

	out := make([]Orphan, 0, len(ids))
	for _, id := range ids {
		data, err := r.client.Get(ctx, orphanKeyPrefix+id).Result()
		if err == redis.Nil {
			r.client.SRem(ctx, orphanIndexKey, id)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("get orphan %s: %w", id, err)
		}
		var o Orphan
		if err := json.Unmarshal([]byte(data), &o); err != nil {
			return nil, fmt.Errorf("unmarshal orphan %s: %w", id, err)
		}
		out = append(out, o)
	}
	return out, nil
}

// Remove drops an orphan from the registry after cleanup.
func (r *Registry) Remove(ctx context.Context, projectID string) error {
	pipe := r.client.Pipeline()
	pipe.Del(ctx, orphanKeyPrefix+projectID)
	pipe.SRem(ctx, orphanIndexKey, projectID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("remove orphan: %w", err)
	}
	return nil
}
