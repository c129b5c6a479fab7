package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gosgconsulting/new-cms-sub013/internal/domain"
	"github.com/gosgconsulting/new-cms-sub013/internal/ports"
)

// ReportCache keeps the last sync report per tenant and entity in Redis so
// the admin surface can show run results without a database round trip.
type ReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewReportCache creates a Redis-backed report cache.
func NewReportCache(client *redis.Client, ttl time.Duration) ports.ReportCache {
	return &ReportCache{client: client, ttl: ttl}
}

func reportKey(tenantID, entity string) string {
	return fmt.Sprintf("sync:report:%s:%s", tenantID, entity)
}

// SaveReport stores the report under the tenant/entity key.
func (c *ReportCache) SaveReport(ctx context.Context, report *domain.SyncReport) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := c.client.Set(ctx, reportKey(report.TenantID, report.Entity), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache report: %w", err)
	}
	return nil
}

// LastReport returns the most recent cached report, or nil, nil when the
// tenant has never synced within the TTL window.
func (c *ReportCache) LastReport(ctx context.Context, tenantID, entity string) (*domain.SyncReport, error) {
	payload, err := c.client.Get(ctx, reportKey(tenantID, entity)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached report: %w", err)
	}
	var report domain.SyncReport
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, fmt.Errorf("failed to decode cached report: %w", err)
	}
	return &report, nil
}
