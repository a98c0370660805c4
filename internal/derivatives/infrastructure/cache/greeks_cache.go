// Package cache 基于 Redis 的读路径缓存。
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wyfcoding/investmentplatform/internal/derivatives/domain"
)

const defaultGreeksTTL = 5 * time.Minute

// cachedGreeksRepository 为 GreeksRepository 提供最新记录的 Redis 缓存。
// 只缓存 FindLatest 热路径；历史查询与单条读取直接穿透。
type cachedGreeksRepository struct {
	inner  domain.GreeksRepository
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewCachedGreeksRepository 包装底层仓储，写入时同步刷新缓存。
func NewCachedGreeksRepository(inner domain.GreeksRepository, client redis.UniversalClient) domain.GreeksRepository {
	return &cachedGreeksRepository{
		inner:  inner,
		client: client,
		prefix: "derivatives:greeks:",
		ttl:    defaultGreeksTTL,
	}
}

func (r *cachedGreeksRepository) latestKey(tenantID, instrumentID string) string {
	return fmt.Sprintf("%slatest:%s:%s", r.prefix, tenantID, instrumentID)
}

func (r *cachedGreeksRepository) Save(ctx context.Context, calc *domain.GreeksCalculation) error {
	if err := r.inner.Save(ctx, calc); err != nil {
		return err
	}
	if data, err := json.Marshal(calc); err == nil {
		// 缓存刷新失败不影响主流程
		_ = r.client.Set(ctx, r.latestKey(calc.TenantID, calc.InstrumentID), data, r.ttl).Err()
	}
	return nil
}

func (r *cachedGreeksRepository) Get(ctx context.Context, tenantID, id string) (*domain.GreeksCalculation, error) {
	return r.inner.Get(ctx, tenantID, id)
}

func (r *cachedGreeksRepository) FindLatest(ctx context.Context, tenantID, instrumentID string) (*domain.GreeksCalculation, error) {
	key := r.latestKey(tenantID, instrumentID)
	data, err := r.client.Get(ctx, key).Bytes()
	if err == nil {
		var calc domain.GreeksCalculation
		if err := json.Unmarshal(data, &calc); err == nil {
			return &calc, nil
		}
	} else if err != redis.Nil {
		// Redis 故障时穿透到数据库
		return r.inner.FindLatest(ctx, tenantID, instrumentID)
	}

	calc, err := r.inner.FindLatest(ctx, tenantID, instrumentID)
	if err != nil || calc == nil {
		return calc, err
	}
	if data, err := json.Marshal(calc); err == nil {
		_ = r.client.Set(ctx, key, data, r.ttl).Err()
	}
	return calc, nil
}

func (r *cachedGreeksRepository) FindByInstrument(ctx context.Context, tenantID, instrumentID string, limit int) ([]*domain.GreeksCalculation, error) {
	return r.inner.FindByInstrument(ctx, tenantID, instrumentID, limit)
}
