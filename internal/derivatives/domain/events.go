package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// GreeksCalculatedEvent 希腊字母计算完成事件
type GreeksCalculatedEvent struct {
	CalculationID string
	TenantID      string
	InstrumentID  string
	Symbol        string
	Model         string
	Delta         decimal.Decimal
	Gamma         decimal.Decimal
	Theta         decimal.Decimal
	Vega          decimal.Decimal
	Rho           decimal.Decimal
	OccurredOn    time.Time
}

// ImpliedVolSolvedEvent 隐含波动率求解完成事件
type ImpliedVolSolvedEvent struct {
	AnalysisID        string
	TenantID          string
	InstrumentID      string
	Symbol            string
	ImpliedVolatility decimal.Decimal
	IVRank            decimal.Decimal
	Iterations        int
	Converged         bool
	OccurredOn        time.Time
}

// StrategyEvaluatedEvent 策略评估完成事件
type StrategyEvaluatedEvent struct {
	StrategyID   string
	TenantID     string
	StrategyType string
	Underlying   string
	LegCount     int
	NetPremium   decimal.Decimal
	MaxProfit    decimal.Decimal
	MaxLoss      decimal.Decimal
	OccurredOn   time.Time
}

// MarginCalculatedEvent 保证金估算完成事件
type MarginCalculatedEvent struct {
	CalculationID  string
	TenantID       string
	RequiredMargin decimal.Decimal
	InitialMargin  decimal.Decimal
	ExcessLiquidity decimal.Decimal
	PositionCount  int
	OccurredOn     time.Time
}

// ValuationCompletedEvent 盯市估值完成事件
type ValuationCompletedEvent struct {
	ValuationID  string
	TenantID     string
	InstrumentID string
	Symbol       string
	MarketValue  decimal.Decimal
	DailyPnL     decimal.Decimal
	OccurredOn   time.Time
}

// PortfolioAnalyzedEvent 组合分析完成事件
type PortfolioAnalyzedEvent struct {
	AnalyticsID    string
	TenantID       string
	TotalPositions int
	TotalNotional  decimal.Decimal
	ParametricVaR  decimal.Decimal
	VaR95          decimal.Decimal
	OccurredOn     time.Time
}

// EventPublisher 事件发布者接口
type EventPublisher interface {
	// PublishGreeksCalculated 发布希腊字母计算完成事件
	PublishGreeksCalculated(event GreeksCalculatedEvent) error

	// PublishImpliedVolSolved 发布隐含波动率求解完成事件
	PublishImpliedVolSolved(event ImpliedVolSolvedEvent) error

	// PublishStrategyEvaluated 发布策略评估完成事件
	PublishStrategyEvaluated(event StrategyEvaluatedEvent) error

	// PublishMarginCalculated 发布保证金估算完成事件
	PublishMarginCalculated(event MarginCalculatedEvent) error

	// PublishValuationCompleted 发布盯市估值完成事件
	PublishValuationCompleted(event ValuationCompletedEvent) error

	// PublishPortfolioAnalyzed 发布组合分析完成事件
	PublishPortfolioAnalyzed(event PortfolioAnalyzedEvent) error
}
