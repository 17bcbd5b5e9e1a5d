package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"motoloans/ledger"
	"motoloans/models"

	"github.com/redis/go-redis/v9"
)

// SummaryCache хранит готовые сводки по кредитам
type SummaryCache interface {
	Get(ctx context.Context, key string) (*ledger.Summary, bool, error)
	Set(ctx context.Context, key string, summary *ledger.Summary) error
}

// summaryKey включает версию кредита и день по часовому поясу кредита,
// поэтому после платежа или смены дня ключ меняется сам
func summaryKey(loan *models.Loan, asOf time.Time) string {
	return fmt.Sprintf("loan-summary:%s:v%d:%s", loan.ID, loan.Version, ledger.LoanDay(loan, asOf).Format("2006-01-02"))
}

// RedisSummaryCache реализует SummaryCache на Redis
type RedisSummaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSummaryCache создает кэш сводок
func NewRedisSummaryCache(client *redis.Client, ttl time.Duration) *RedisSummaryCache {
	return &RedisSummaryCache{client: client, ttl: ttl}
}

// Get возвращает сводку; второе значение false, если ключа нет
func (c *RedisSummaryCache) Get(ctx context.Context, key string) (*ledger.Summary, bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read summary cache: %w", err)
	}

	var summary ledger.Summary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached summary: %w", err)
	}
	return &summary, true, nil
}

// Set сохраняет сводку с TTL
func (c *RedisSummaryCache) Set(ctx context.Context, key string, summary *ledger.Summary) error {
	raw, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write summary cache: %w", err)
	}
	return nil
}
