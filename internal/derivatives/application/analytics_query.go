package application

import (
	"context"
	"fmt"
	"time"

	"github.com/wyfcoding/investmentplatform/internal/derivatives/domain"
)

// 查询侧默认新鲜度要求：超过该时长的希腊字母视为过期。
const defaultGreeksMaxAge = 15 * time.Minute

// AnalyticsQuery 处理衍生品分析相关的查询操作（Queries）。
type AnalyticsQuery struct {
	greeksRepo    domain.GreeksRepository
	ivRepo        domain.ImpliedVolRepository
	strategyRepo  domain.StrategyRepository
	marginRepo    domain.MarginRepository
	valuationRepo domain.ValuationRepository
	portfolioRepo domain.PortfolioAnalyticsRepository
}

// NewAnalyticsQuery 构造函数。
func NewAnalyticsQuery(
	greeksRepo domain.GreeksRepository,
	ivRepo domain.ImpliedVolRepository,
	strategyRepo domain.StrategyRepository,
	marginRepo domain.MarginRepository,
	valuationRepo domain.ValuationRepository,
	portfolioRepo domain.PortfolioAnalyticsRepository,
) *AnalyticsQuery {
	return &AnalyticsQuery{
		greeksRepo:    greeksRepo,
		ivRepo:        ivRepo,
		strategyRepo:  strategyRepo,
		marginRepo:    marginRepo,
		valuationRepo: valuationRepo,
		portfolioRepo: portfolioRepo,
	}
}

// GetLatestGreeks 获取合约最近一次希腊字母计算，并按新鲜度要求校验。
// maxAge <= 0 时使用默认 15 分钟。
func (q *AnalyticsQuery) GetLatestGreeks(ctx context.Context, tenantID, instrumentID string, maxAge time.Duration) (*GreeksDTO, error) {
	if maxAge <= 0 {
		maxAge = defaultGreeksMaxAge
	}
	calc, err := q.greeksRepo.FindLatest(ctx, tenantID, instrumentID)
	if err != nil {
		return nil, err
	}
	if calc == nil {
		return nil, domain.ErrNoGreeksHistory
	}
	if !calc.IsFresh(time.Now(), maxAge) {
		return nil, fmt.Errorf("%w: calculated at %s", domain.ErrStaleGreeks, calc.CalculatedAt.Format(time.RFC3339))
	}
	return toGreeksDTO(calc), nil
}

// GetGreeksHistory 获取合约希腊字母计算历史。
func (q *AnalyticsQuery) GetGreeksHistory(ctx context.Context, tenantID, instrumentID string, limit int) ([]*GreeksDTO, error) {
	calcs, err := q.greeksRepo.FindByInstrument(ctx, tenantID, instrumentID, limit)
	if err != nil {
		return nil, err
	}
	dtos := make([]*GreeksDTO, 0, len(calcs))
	for _, calc := range calcs {
		dtos = append(dtos, toGreeksDTO(calc))
	}
	return dtos, nil
}

// GetIVHistory 获取合约隐含波动率分析历史。
func (q *AnalyticsQuery) GetIVHistory(ctx context.Context, tenantID, instrumentID string, limit int) ([]*ImpliedVolDTO, error) {
	analyses, err := q.ivRepo.FindByInstrument(ctx, tenantID, instrumentID, limit)
	if err != nil {
		return nil, err
	}
	dtos := make([]*ImpliedVolDTO, 0, len(analyses))
	for _, a := range analyses {
		dtos = append(dtos, toImpliedVolDTO(a))
	}
	return dtos, nil
}

// GetStrategy 获取策略评估记录。
func (q *AnalyticsQuery) GetStrategy(ctx context.Context, tenantID, strategyID string) (*StrategyDTO, error) {
	strategy, err := q.strategyRepo.Get(ctx, tenantID, strategyID)
	if err != nil {
		return nil, err
	}
	if strategy == nil {
		return nil, fmt.Errorf("strategy %s not found", strategyID)
	}
	return toStrategyDTO(strategy), nil
}

// GetLatestMargin 获取租户最近一次保证金估算。
func (q *AnalyticsQuery) GetLatestMargin(ctx context.Context, tenantID string) (*MarginDTO, error) {
	result, err := q.marginRepo.FindLatest(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, fmt.Errorf("no margin calculation found for tenant %s", tenantID)
	}
	return toMarginDTO(result), nil
}

// GetValuationHistory 获取合约盯市估值链。
func (q *AnalyticsQuery) GetValuationHistory(ctx context.Context, tenantID, instrumentID string, limit int) ([]*ValuationDTO, error) {
	valuations, err := q.valuationRepo.FindByInstrument(ctx, tenantID, instrumentID, limit)
	if err != nil {
		return nil, err
	}
	dtos := make([]*ValuationDTO, 0, len(valuations))
	for _, v := range valuations {
		dtos = append(dtos, toValuationDTO(v))
	}
	return dtos, nil
}

// GetLatestPortfolioAnalytics 获取租户最近一次组合分析快照。
func (q *AnalyticsQuery) GetLatestPortfolioAnalytics(ctx context.Context, tenantID string) (*PortfolioDTO, error) {
	analytics, err := q.portfolioRepo.FindLatest(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if analytics == nil {
		return nil, fmt.Errorf("no portfolio analytics found for tenant %s", tenantID)
	}
	return toPortfolioDTO(analytics), nil
}
