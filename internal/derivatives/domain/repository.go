package domain

import (
	"context"
	"time"
)

// GreeksRepository repository interface
type GreeksRepository interface {
	Save(ctx context.Context, calc *GreeksCalculation) error
	Get(ctx context.Context, tenantID, id string) (*GreeksCalculation, error)
	FindLatest(ctx context.Context, tenantID, instrumentID string) (*GreeksCalculation, error)
	FindByInstrument(ctx context.Context, tenantID, instrumentID string, limit int) ([]*GreeksCalculation, error)
}

// ImpliedVolRepository repository interface
type ImpliedVolRepository interface {
	Save(ctx context.Context, analysis *ImpliedVolatilityAnalysis) error
	FindByInstrument(ctx context.Context, tenantID, instrumentID string, limit int) ([]*ImpliedVolatilityAnalysis, error)
}

// StrategyRepository repository interface
type StrategyRepository interface {
	Save(ctx context.Context, strategy *OptionStrategy) error
	Get(ctx context.Context, tenantID, id string) (*OptionStrategy, error)
	FindByTenant(ctx context.Context, tenantID string, limit int) ([]*OptionStrategy, error)
}

// MarginRepository repository interface
type MarginRepository interface {
	Save(ctx context.Context, result *MarginCalculationResult) error
	FindLatest(ctx context.Context, tenantID string) (*MarginCalculationResult, error)
}

// ValuationRepository repository interface
type ValuationRepository interface {
	Save(ctx context.Context, valuation *MarkToMarketValuation) error
	// FindPrevious 返回某合约在给定估值日之前最近一条估值，无则返回 nil
	FindPrevious(ctx context.Context, tenantID, instrumentID string, before time.Time) (*MarkToMarketValuation, error)
	FindByInstrument(ctx context.Context, tenantID, instrumentID string, limit int) ([]*MarkToMarketValuation, error)
}

// PortfolioAnalyticsRepository repository interface
type PortfolioAnalyticsRepository interface {
	Save(ctx context.Context, analytics *DerivativesPortfolioAnalytics) error
	FindLatest(ctx context.Context, tenantID string) (*DerivativesPortfolioAnalytics, error)
}
