package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/SAP-F-2025/form-service/internal/models"
	"github.com/SAP-F-2025/form-service/internal/repositories"
)

const defaultDraftTTL = 7 * 24 * time.Hour

// ErrStoreUnavailable is returned when no Redis client is configured.
var ErrStoreUnavailable = errors.New("draft store not available")

// DraftRedis keeps one JSON-encoded draft per owner under draft:<owner id>.
type DraftRedis struct {
	client      *redis.Client
	cachePrefix string
	ttl         time.Duration
}

func NewDraftRedis(client *redis.Client, ttl time.Duration) repositories.DraftRepository {
	if ttl <= 0 {
		ttl = defaultDraftTTL
	}
	return &DraftRedis{
		client:      client,
		cachePrefix: "draft:",
		ttl:         ttl,
	}
}

func (d *DraftRedis) key(ownerID string) string {
	return d.cachePrefix + ownerID
}

// Save overwrites the owner's draft and restarts its expiry.
func (d *DraftRedis) Save(ctx context.Context, draft *models.FormDraft) error {
	if d.client == nil {
		return ErrStoreUnavailable
	}

	data, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("failed to marshal draft: %w", err)
	}

	if err := d.client.Set(ctx, d.key(draft.OwnerID), data, d.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	return nil
}

func (d *DraftRedis) Get(ctx context.Context, ownerID string) (*models.FormDraft, error) {
	if d.client == nil {
		return nil, ErrStoreUnavailable
	}

	data, err := d.client.Get(ctx, d.key(ownerID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("draft for %s: %w", ownerID, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}

	var draft models.FormDraft
	if err := json.Unmarshal(data, &draft); err != nil {
		return nil, fmt.Errorf("failed to unmarshal draft: %w", err)
	}
	return &draft, nil
}

// Delete discards the owner's draft. Deleting a missing draft is not an error.
func (d *DraftRedis) Delete(ctx context.Context, ownerID string) error {
	if d.client == nil {
		return ErrStoreUnavailable
	}

	if err := d.client.Del(ctx, d.key(ownerID)).Err(); err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	return nil
}
