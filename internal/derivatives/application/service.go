package application

import (
	"log/slog"

	"github.com/wyfcoding/investmentplatform/internal/derivatives/domain"
)

// AnalyticsService 衍生品分析应用服务门面，组合命令与查询两侧。
type AnalyticsService struct {
	*AnalyticsCommand
	*AnalyticsQuery
}

// NewAnalyticsService 创建衍生品分析应用服务。
func NewAnalyticsService(
	greeksRepo domain.GreeksRepository,
	ivRepo domain.ImpliedVolRepository,
	strategyRepo domain.StrategyRepository,
	marginRepo domain.MarginRepository,
	valuationRepo domain.ValuationRepository,
	portfolioRepo domain.PortfolioAnalyticsRepository,
	marketData domain.MarketDataProvider,
	kernel *domain.PricingKernel,
	publisher domain.EventPublisher,
	logger *slog.Logger,
) *AnalyticsService {
	return &AnalyticsService{
		AnalyticsCommand: NewAnalyticsCommand(
			greeksRepo, ivRepo, strategyRepo, marginRepo, valuationRepo, portfolioRepo,
			marketData, kernel, publisher, logger,
		),
		AnalyticsQuery: NewAnalyticsQuery(
			greeksRepo, ivRepo, strategyRepo, marginRepo, valuationRepo, portfolioRepo,
		),
	}
}
