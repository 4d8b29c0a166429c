package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/andresuchdata/dpr-report/backend-go/internal/config"
	"github.com/andresuchdata/dpr-report/backend-go/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	financialKeyPrefix        = "financial:"
	financialReportKeyPrefix  = financialKeyPrefix + "report"
	financialSummaryKeyPrefix = financialKeyPrefix + "summary"
)

// FinancialCache holds read models of stored calculations, keyed by plan.
type FinancialCache interface {
	GetReport(ctx context.Context, planID int64) (*domain.ProjectionReport, bool, error)
	SetReport(ctx context.Context, report *domain.ProjectionReport) error
	GetSummary(ctx context.Context, planID int64) (*domain.SummaryReport, bool, error)
	SetSummary(ctx context.Context, summary *domain.SummaryReport) error
	InvalidatePlan(ctx context.Context, planID int64) error
	InvalidateAll(ctx context.Context) error
}

type redisFinancialCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopFinancialCache struct{}

func NewFinancialCache(cfg config.CacheConfig) (FinancialCache, error) {
	if !cfg.Enabled {
		return &noopFinancialCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisFinancialCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopFinancialCache() FinancialCache {
	return &noopFinancialCache{}
}

func (c *redisFinancialCache) GetReport(ctx context.Context, planID int64) (*domain.ProjectionReport, bool, error) {
	var report domain.ProjectionReport
	ok, err := c.get(ctx, reportKey(planID), &report)
	if err != nil || !ok {
		return nil, false, err
	}
	return &report, true, nil
}

func (c *redisFinancialCache) SetReport(ctx context.Context, report *domain.ProjectionReport) error {
	return c.set(ctx, reportKey(report.PlanID), report)
}

func (c *redisFinancialCache) GetSummary(ctx context.Context, planID int64) (*domain.SummaryReport, bool, error) {
	var summary domain.SummaryReport
	ok, err := c.get(ctx, summaryKey(planID), &summary)
	if err != nil || !ok {
		return nil, false, err
	}
	return &summary, true, nil
}

func (c *redisFinancialCache) SetSummary(ctx context.Context, summary *domain.SummaryReport) error {
	return c.set(ctx, summaryKey(summary.PlanID), summary)
}

func (c *redisFinancialCache) InvalidatePlan(ctx context.Context, planID int64) error {
	if err := c.client.Del(ctx, reportKey(planID), summaryKey(planID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (c *redisFinancialCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, financialKeyPrefix, scanBatchSize)
}

func (c *redisFinancialCache) get(ctx context.Context, key string, dest interface{}) (bool, error) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get failed: %w", err)
	}

	if err := json.Unmarshal(payload, dest); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (c *redisFinancialCache) set(ctx context.Context, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (n *noopFinancialCache) GetReport(ctx context.Context, planID int64) (*domain.ProjectionReport, bool, error) {
	return nil, false, nil
}

func (n *noopFinancialCache) SetReport(ctx context.Context, report *domain.ProjectionReport) error {
	return nil
}

func (n *noopFinancialCache) GetSummary(ctx context.Context, planID int64) (*domain.SummaryReport, bool, error) {
	return nil, false, nil
}

func (n *noopFinancialCache) SetSummary(ctx context.Context, summary *domain.SummaryReport) error {
	return nil
}

func (n *noopFinancialCache) InvalidatePlan(ctx context.Context, planID int64) error {
	return nil
}

func (n *noopFinancialCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func reportKey(planID int64) string {
	return fmt.Sprintf("%s:%d", financialReportKeyPrefix, planID)
}

func summaryKey(planID int64) string {
	return fmt.Sprintf("%s:%d", financialSummaryKeyPrefix, planID)
}
