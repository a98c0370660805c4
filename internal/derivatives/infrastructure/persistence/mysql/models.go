package mysql

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/wyfcoding/investmentplatform/internal/derivatives/domain"
)

// GreeksCalculationModel MySQL 希腊字母计算记录表映射
type GreeksCalculationModel struct {
	gorm.Model
	CalcID       string `gorm:"column:calc_id;type:varchar(36);uniqueIndex;not null"`
	TenantID     string `gorm:"column:tenant_id;type:varchar(36);index:idx_greeks_tenant_instrument;not null"`
	InstrumentID string `gorm:"column:instrument_id;type:varchar(36);index:idx_greeks_tenant_instrument;not null"`
	Symbol       string `gorm:"column:symbol;type:varchar(40);not null"`
	PricingModel string `gorm:"column:pricing_model;type:varchar(20);not null"`

	TheoreticalPrice decimal.Decimal `gorm:"column:theoretical_price;type:decimal(20,8);not null"`
	Delta            decimal.Decimal `gorm:"column:delta;type:decimal(20,8);not null"`
	Gamma            decimal.Decimal `gorm:"column:gamma;type:decimal(20,8);not null"`
	Theta            decimal.Decimal `gorm:"column:theta;type:decimal(20,8);not null"`
	Vega             decimal.Decimal `gorm:"column:vega;type:decimal(20,8);not null"`
	Rho              decimal.Decimal `gorm:"column:rho;type:decimal(20,8);not null"`
	Vanna            decimal.Decimal `gorm:"column:vanna;type:decimal(20,8)"`
	Charm            decimal.Decimal `gorm:"column:charm;type:decimal(20,8)"`
	Color            decimal.Decimal `gorm:"column:color;type:decimal(20,8)"`
	Volga            decimal.Decimal `gorm:"column:volga;type:decimal(20,8)"`
	Lambda           decimal.Decimal `gorm:"column:lambda;type:decimal(20,8)"`
	DeltaCash        decimal.Decimal `gorm:"column:delta_cash;type:decimal(20,8)"`
	ThetaDaily       decimal.Decimal `gorm:"column:theta_daily;type:decimal(20,8)"`

	UnderlyingPrice decimal.Decimal `gorm:"column:underlying_price;type:decimal(20,8);not null"`
	Volatility      decimal.Decimal `gorm:"column:volatility;type:decimal(10,6);not null"`
	RiskFreeRate    decimal.Decimal `gorm:"column:risk_free_rate;type:decimal(10,6);not null"`
	DividendYield   decimal.Decimal `gorm:"column:dividend_yield;type:decimal(10,6);not null"`
	TimeToExpiry    decimal.Decimal `gorm:"column:time_to_expiry;type:decimal(12,8);not null"`

	Steps         int     `gorm:"column:steps"`
	Paths         int     `gorm:"column:paths"`
	StandardError float64 `gorm:"column:standard_error"`
	ComputeTimeNs int64   `gorm:"column:compute_time_ns"`
	Warnings      string  `gorm:"column:warnings;type:text"`
	CalculatedAt  time.Time `gorm:"column:calculated_at;index;not null"`
}

func (GreeksCalculationModel) TableName() string { return "derivative_greeks_calculations" }

// ImpliedVolAnalysisModel MySQL 隐含波动率分析表映射
type ImpliedVolAnalysisModel struct {
	gorm.Model
	AnalysisID   string `gorm:"column:analysis_id;type:varchar(36);uniqueIndex;not null"`
	TenantID     string `gorm:"column:tenant_id;type:varchar(36);index:idx_iv_tenant_instrument;not null"`
	InstrumentID string `gorm:"column:instrument_id;type:varchar(36);index:idx_iv_tenant_instrument;not null"`
	Symbol       string `gorm:"column:symbol;type:varchar(40);not null"`
	PricingModel string `gorm:"column:pricing_model;type:varchar(20);not null"`
	AnalysisDate time.Time `gorm:"column:analysis_date;index;not null"`

	ImpliedVolatility  decimal.Decimal `gorm:"column:implied_volatility;type:decimal(10,6);not null"`
	HistoricalVolMean  decimal.Decimal `gorm:"column:historical_vol_mean;type:decimal(10,6)"`
	IVRank             decimal.Decimal `gorm:"column:iv_rank;type:decimal(6,2)"`
	Confidence95Lower  decimal.Decimal `gorm:"column:confidence_95_lower;type:decimal(10,6)"`
	Confidence95Upper  decimal.Decimal `gorm:"column:confidence_95_upper;type:decimal(10,6)"`
	WindowDays         int             `gorm:"column:window_days"`
	WindowObservations int             `gorm:"column:window_observations"`

	Iterations   int       `gorm:"column:iterations;not null"`
	Converged    bool      `gorm:"column:converged;not null"`
	Warnings     string    `gorm:"column:warnings;type:text"`
	CalculatedAt time.Time `gorm:"column:calculated_at;not null"`
}

func (ImpliedVolAnalysisModel) TableName() string { return "derivative_iv_analyses" }

// StrategyModel MySQL 策略评估表映射，腿与盈亏平衡点以 JSON 存储
type StrategyModel struct {
	gorm.Model
	StrategyID   string `gorm:"column:strategy_id;type:varchar(36);uniqueIndex;not null"`
	TenantID     string `gorm:"column:tenant_id;type:varchar(36);index;not null"`
	StrategyType string `gorm:"column:strategy_type;type:varchar(30);not null"`
	Underlying   string `gorm:"column:underlying;type:varchar(40);not null"`
	Legs         string `gorm:"column:legs;type:text;not null"`

	NetPremium decimal.Decimal `gorm:"column:net_premium;type:decimal(20,8);not null"`
	NetDelta   decimal.Decimal `gorm:"column:net_delta;type:decimal(20,8)"`
	NetGamma   decimal.Decimal `gorm:"column:net_gamma;type:decimal(20,8)"`
	NetTheta   decimal.Decimal `gorm:"column:net_theta;type:decimal(20,8)"`
	NetVega    decimal.Decimal `gorm:"column:net_vega;type:decimal(20,8)"`
	NetRho     decimal.Decimal `gorm:"column:net_rho;type:decimal(20,8)"`

	MaxProfit          decimal.Decimal `gorm:"column:max_profit;type:decimal(20,8)"`
	MaxProfitUnbounded bool            `gorm:"column:max_profit_unbounded;not null"`
	MaxLoss            decimal.Decimal `gorm:"column:max_loss;type:decimal(20,8)"`
	MaxLossUnbounded   bool            `gorm:"column:max_loss_unbounded;not null"`
	BreakevenPoints    string          `gorm:"column:breakeven_points;type:text"`
	MarginRequirement  decimal.Decimal `gorm:"column:margin_requirement;type:decimal(20,8)"`
	Warnings           string          `gorm:"column:warnings;type:text"`
}

func (StrategyModel) TableName() string { return "derivative_strategies" }

// MarginCalculationModel MySQL 保证金估算表映射
type MarginCalculationModel struct {
	gorm.Model
	CalcID   string `gorm:"column:calc_id;type:varchar(36);uniqueIndex;not null"`
	TenantID string `gorm:"column:tenant_id;type:varchar(36);index;not null"`

	ScenarioMargin      decimal.Decimal `gorm:"column:scenario_margin;type:decimal(20,8);not null"`
	InitialMargin       decimal.Decimal `gorm:"column:initial_margin;type:decimal(20,8);not null"`
	MaintenanceMargin   decimal.Decimal `gorm:"column:maintenance_margin;type:decimal(20,8);not null"`
	RequiredMargin      decimal.Decimal `gorm:"column:required_margin;type:decimal(20,8);not null"`
	NetLiquidationValue decimal.Decimal `gorm:"column:net_liquidation_value;type:decimal(20,8)"`
	ExcessLiquidity     decimal.Decimal `gorm:"column:excess_liquidity;type:decimal(20,8)"`
	MarginUtilization   decimal.Decimal `gorm:"column:margin_utilization;type:decimal(10,4)"`
	Scenarios           string          `gorm:"column:scenarios;type:text"`
	CalculatedAt        time.Time       `gorm:"column:calculated_at;index;not null"`
}

func (MarginCalculationModel) TableName() string { return "derivative_margin_calculations" }

// ValuationModel MySQL 盯市估值表映射
type ValuationModel struct {
	gorm.Model
	ValuationID  string    `gorm:"column:valuation_id;type:varchar(36);uniqueIndex;not null"`
	TenantID     string    `gorm:"column:tenant_id;type:varchar(36);index:idx_val_tenant_instrument;not null"`
	InstrumentID string    `gorm:"column:instrument_id;type:varchar(36);index:idx_val_tenant_instrument;not null"`
	Symbol       string    `gorm:"column:symbol;type:varchar(40);not null"`
	ValuationDate time.Time `gorm:"column:valuation_date;index;not null"`

	MarketPrice      decimal.Decimal `gorm:"column:market_price;type:decimal(20,8);not null"`
	TheoreticalPrice decimal.Decimal `gorm:"column:theoretical_price;type:decimal(20,8);not null"`
	UnderlyingPrice  decimal.Decimal `gorm:"column:underlying_price;type:decimal(20,8);not null"`
	Volatility       decimal.Decimal `gorm:"column:volatility;type:decimal(10,6);not null"`
	Quantity         decimal.Decimal `gorm:"column:quantity;type:decimal(20,8);not null"`
	Multiplier       decimal.Decimal `gorm:"column:multiplier;type:decimal(20,8);not null"`
	EntryPrice       decimal.Decimal `gorm:"column:entry_price;type:decimal(20,8)"`
	MarketValue      decimal.Decimal `gorm:"column:market_value;type:decimal(20,8);not null"`
	IntrinsicValue   decimal.Decimal `gorm:"column:intrinsic_value;type:decimal(20,8)"`
	TimeValue        decimal.Decimal `gorm:"column:time_value;type:decimal(20,8)"`
	DailyPnL         decimal.Decimal `gorm:"column:daily_pnl;type:decimal(20,8);not null"`
	UnrealizedPnL    decimal.Decimal `gorm:"column:unrealized_pnl;type:decimal(20,8)"`

	Greeks      string `gorm:"column:greeks;type:text"`
	Attribution string `gorm:"column:attribution;type:text"`
}

func (ValuationModel) TableName() string { return "derivative_valuations" }

// PortfolioAnalyticsModel MySQL 组合分析快照表映射
type PortfolioAnalyticsModel struct {
	gorm.Model
	AnalyticsID string `gorm:"column:analytics_id;type:varchar(36);uniqueIndex;not null"`
	TenantID    string `gorm:"column:tenant_id;type:varchar(36);index;not null"`

	TotalPositions int             `gorm:"column:total_positions;not null"`
	TotalNotional  decimal.Decimal `gorm:"column:total_notional;type:decimal(24,8);not null"`
	NetGreeks      string          `gorm:"column:net_greeks;type:text"`

	ParametricVaR decimal.Decimal `gorm:"column:parametric_var;type:decimal(20,8)"`
	VaR95         decimal.Decimal `gorm:"column:var_95;type:decimal(20,8)"`
	VaR99         decimal.Decimal `gorm:"column:var_99;type:decimal(20,8)"`
	ES95          decimal.Decimal `gorm:"column:es_95;type:decimal(20,8)"`
	ES99          decimal.Decimal `gorm:"column:es_99;type:decimal(20,8)"`

	ExpiryBuckets     string          `gorm:"column:expiry_buckets;type:text"`
	AllocationByClass string          `gorm:"column:allocation_by_class;type:text"`
	MarginRequirement decimal.Decimal `gorm:"column:margin_requirement;type:decimal(20,8)"`
	MarginUtilization decimal.Decimal `gorm:"column:margin_utilization;type:decimal(10,4)"`
	CalculatedAt      time.Time       `gorm:"column:calculated_at;index;not null"`
}

func (PortfolioAnalyticsModel) TableName() string { return "derivative_portfolio_analytics" }

// AllModels 返回本服务需要迁移的全部表模型。
func AllModels() []any {
	return []any{
		&GreeksCalculationModel{},
		&ImpliedVolAnalysisModel{},
		&StrategyModel{},
		&MarginCalculationModel{},
		&ValuationModel{},
		&PortfolioAnalyticsModel{},
	}
}

// --- mapping helpers ---

func marshalJSON(v any) string {
	if v == nil {
		return ""
	}
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}

func unmarshalWarnings(raw string) []string {
	if raw == "" {
		return nil
	}
	var warnings []string
	if err := json.Unmarshal([]byte(raw), &warnings); err != nil {
		return nil
	}
	return warnings
}

func toGreeksModel(calc *domain.GreeksCalculation) *GreeksCalculationModel {
	return &GreeksCalculationModel{
		CalcID:           calc.ID,
		TenantID:         calc.TenantID,
		InstrumentID:     calc.InstrumentID,
		Symbol:           calc.Symbol,
		PricingModel:     string(calc.Model),
		TheoreticalPrice: calc.TheoreticalPrice,
		Delta:            calc.Delta,
		Gamma:            calc.Gamma,
		Theta:            calc.Theta,
		Vega:             calc.Vega,
		Rho:              calc.Rho,
		Vanna:            calc.Vanna,
		Charm:            calc.Charm,
		Color:            calc.Color,
		Volga:            calc.Volga,
		Lambda:           calc.Lambda,
		DeltaCash:        calc.DeltaCash,
		ThetaDaily:       calc.ThetaDaily,
		UnderlyingPrice:  calc.UnderlyingPrice,
		Volatility:       calc.Volatility,
		RiskFreeRate:     calc.RiskFreeRate,
		DividendYield:    calc.DividendYield,
		TimeToExpiry:     calc.TimeToExpiry,
		Steps:            calc.Steps,
		Paths:            calc.Paths,
		StandardError:    calc.StandardError,
		ComputeTimeNs:    calc.ComputeTime.Nanoseconds(),
		Warnings:         marshalJSON(calc.Warnings),
		CalculatedAt:     calc.CalculatedAt,
	}
}

func toGreeksCalculation(m *GreeksCalculationModel) *domain.GreeksCalculation {
	return &domain.GreeksCalculation{
		ID:               m.CalcID,
		TenantID:         m.TenantID,
		InstrumentID:     m.InstrumentID,
		Symbol:           m.Symbol,
		Model:            domain.PricingModelType(m.PricingModel),
		TheoreticalPrice: m.TheoreticalPrice,
		Delta:            m.Delta,
		Gamma:            m.Gamma,
		Theta:            m.Theta,
		Vega:             m.Vega,
		Rho:              m.Rho,
		Vanna:            m.Vanna,
		Charm:            m.Charm,
		Color:            m.Color,
		Volga:            m.Volga,
		Lambda:           m.Lambda,
		DeltaCash:        m.DeltaCash,
		ThetaDaily:       m.ThetaDaily,
		UnderlyingPrice:  m.UnderlyingPrice,
		Volatility:       m.Volatility,
		RiskFreeRate:     m.RiskFreeRate,
		DividendYield:    m.DividendYield,
		TimeToExpiry:     m.TimeToExpiry,
		Steps:            m.Steps,
		Paths:            m.Paths,
		StandardError:    m.StandardError,
		ComputeTime:      time.Duration(m.ComputeTimeNs),
		Warnings:         unmarshalWarnings(m.Warnings),
		CalculatedAt:     m.CalculatedAt,
	}
}

func toImpliedVolModel(a *domain.ImpliedVolatilityAnalysis) *ImpliedVolAnalysisModel {
	return &ImpliedVolAnalysisModel{
		AnalysisID:         a.ID,
		TenantID:           a.TenantID,
		InstrumentID:       a.InstrumentID,
		Symbol:             a.Symbol,
		PricingModel:       string(a.Model),
		AnalysisDate:       a.AnalysisDate,
		ImpliedVolatility:  a.ImpliedVolatility,
		HistoricalVolMean:  a.HistoricalVolMean,
		IVRank:             a.IVRank,
		Confidence95Lower:  a.Confidence95Lower,
		Confidence95Upper:  a.Confidence95Upper,
		WindowDays:         a.WindowDays,
		WindowObservations: a.WindowObservations,
		Iterations:         a.Iterations,
		Converged:          a.Converged,
		Warnings:           marshalJSON(a.Warnings),
		CalculatedAt:       a.CalculatedAt,
	}
}

func toImpliedVolAnalysis(m *ImpliedVolAnalysisModel) *domain.ImpliedVolatilityAnalysis {
	return &domain.ImpliedVolatilityAnalysis{
		ID:                 m.AnalysisID,
		TenantID:           m.TenantID,
		InstrumentID:       m.InstrumentID,
		Symbol:             m.Symbol,
		Model:              domain.PricingModelType(m.PricingModel),
		AnalysisDate:       m.AnalysisDate,
		ImpliedVolatility:  m.ImpliedVolatility,
		HistoricalVolMean:  m.HistoricalVolMean,
		IVRank:             m.IVRank,
		Confidence95Lower:  m.Confidence95Lower,
		Confidence95Upper:  m.Confidence95Upper,
		WindowDays:         m.WindowDays,
		WindowObservations: m.WindowObservations,
		Iterations:         m.Iterations,
		Converged:          m.Converged,
		Warnings:           unmarshalWarnings(m.Warnings),
		CalculatedAt:       m.CalculatedAt,
	}
}

func toStrategyModel(s *domain.OptionStrategy) *StrategyModel {
	m := &StrategyModel{
		StrategyID:         s.ID,
		TenantID:           s.TenantID,
		StrategyType:       string(s.StrategyType),
		Underlying:         s.Underlying,
		Legs:               marshalJSON(s.Legs),
		NetPremium:         s.NetPremium,
		MaxProfit:          s.MaxProfit,
		MaxProfitUnbounded: s.MaxProfitUnbounded,
		MaxLoss:            s.MaxLoss,
		MaxLossUnbounded:   s.MaxLossUnbounded,
		BreakevenPoints:    marshalJSON(s.BreakevenPoints),
		MarginRequirement:  s.MarginRequirement,
		Warnings:           marshalJSON(s.Warnings),
	}
	if s.NetGreeks != nil {
		m.NetDelta = s.NetGreeks.Delta
		m.NetGamma = s.NetGreeks.Gamma
		m.NetTheta = s.NetGreeks.Theta
		m.NetVega = s.NetGreeks.Vega
		m.NetRho = s.NetGreeks.Rho
	}
	return m
}

func toStrategy(m *StrategyModel) *domain.OptionStrategy {
	s := &domain.OptionStrategy{
		ID:                 m.StrategyID,
		TenantID:           m.TenantID,
		StrategyType:       domain.StrategyType(m.StrategyType),
		Underlying:         m.Underlying,
		NetPremium:         m.NetPremium,
		NetGreeks: &domain.PositionGreeks{
			Delta: m.NetDelta,
			Gamma: m.NetGamma,
			Theta: m.NetTheta,
			Vega:  m.NetVega,
			Rho:   m.NetRho,
		},
		MaxProfit:          m.MaxProfit,
		MaxProfitUnbounded: m.MaxProfitUnbounded,
		MaxLoss:            m.MaxLoss,
		MaxLossUnbounded:   m.MaxLossUnbounded,
		MarginRequirement:  m.MarginRequirement,
		Warnings:           unmarshalWarnings(m.Warnings),
		CreatedAt:          m.CreatedAt,
	}
	if m.Legs != "" {
		_ = json.Unmarshal([]byte(m.Legs), &s.Legs)
	}
	if m.BreakevenPoints != "" {
		_ = json.Unmarshal([]byte(m.BreakevenPoints), &s.BreakevenPoints)
	}
	return s
}

func toMarginModel(r *domain.MarginCalculationResult) *MarginCalculationModel {
	return &MarginCalculationModel{
		CalcID:              r.ID,
		TenantID:            r.TenantID,
		ScenarioMargin:      r.ScenarioMargin,
		InitialMargin:       r.InitialMargin,
		MaintenanceMargin:   r.MaintenanceMargin,
		RequiredMargin:      r.RequiredMargin,
		NetLiquidationValue: r.NetLiquidationValue,
		ExcessLiquidity:     r.ExcessLiquidity,
		MarginUtilization:   r.MarginUtilization,
		Scenarios:           marshalJSON(r.Scenarios),
		CalculatedAt:        r.CalculatedAt,
	}
}

func toMarginResult(m *MarginCalculationModel) *domain.MarginCalculationResult {
	r := &domain.MarginCalculationResult{
		ID:                  m.CalcID,
		TenantID:            m.TenantID,
		ScenarioMargin:      m.ScenarioMargin,
		InitialMargin:       m.InitialMargin,
		MaintenanceMargin:   m.MaintenanceMargin,
		RequiredMargin:      m.RequiredMargin,
		NetLiquidationValue: m.NetLiquidationValue,
		ExcessLiquidity:     m.ExcessLiquidity,
		MarginUtilization:   m.MarginUtilization,
		CalculatedAt:        m.CalculatedAt,
	}
	if m.Scenarios != "" {
		_ = json.Unmarshal([]byte(m.Scenarios), &r.Scenarios)
	}
	return r
}

func toValuationModel(v *domain.MarkToMarketValuation) *ValuationModel {
	return &ValuationModel{
		ValuationID:      v.ID,
		TenantID:         v.TenantID,
		InstrumentID:     v.InstrumentID,
		Symbol:           v.Symbol,
		ValuationDate:    v.ValuationDate,
		MarketPrice:      v.MarketPrice,
		TheoreticalPrice: v.TheoreticalPrice,
		UnderlyingPrice:  v.UnderlyingPrice,
		Volatility:       v.Volatility,
		Quantity:         v.Quantity,
		Multiplier:       v.Multiplier,
		EntryPrice:       v.EntryPrice,
		MarketValue:      v.MarketValue,
		IntrinsicValue:   v.IntrinsicValue,
		TimeValue:        v.TimeValue,
		DailyPnL:         v.DailyPnL,
		UnrealizedPnL:    v.UnrealizedPnL,
		Greeks:           marshalJSON(v.Greeks),
		Attribution:      marshalJSON(v.Attribution),
	}
}

func toValuation(m *ValuationModel) *domain.MarkToMarketValuation {
	v := &domain.MarkToMarketValuation{
		ID:               m.ValuationID,
		TenantID:         m.TenantID,
		InstrumentID:     m.InstrumentID,
		Symbol:           m.Symbol,
		ValuationDate:    m.ValuationDate,
		MarketPrice:      m.MarketPrice,
		TheoreticalPrice: m.TheoreticalPrice,
		UnderlyingPrice:  m.UnderlyingPrice,
		Volatility:       m.Volatility,
		Quantity:         m.Quantity,
		Multiplier:       m.Multiplier,
		EntryPrice:       m.EntryPrice,
		MarketValue:      m.MarketValue,
		IntrinsicValue:   m.IntrinsicValue,
		TimeValue:        m.TimeValue,
		DailyPnL:         m.DailyPnL,
		UnrealizedPnL:    m.UnrealizedPnL,
		CreatedAt:        m.CreatedAt,
	}
	if m.Greeks != "" {
		_ = json.Unmarshal([]byte(m.Greeks), &v.Greeks)
	}
	if m.Attribution != "" {
		_ = json.Unmarshal([]byte(m.Attribution), &v.Attribution)
	}
	return v
}

func toPortfolioModel(a *domain.DerivativesPortfolioAnalytics) *PortfolioAnalyticsModel {
	return &PortfolioAnalyticsModel{
		AnalyticsID:       a.ID,
		TenantID:          a.TenantID,
		TotalPositions:    a.TotalPositions,
		TotalNotional:     a.TotalNotional,
		NetGreeks:         marshalJSON(a.NetGreeks),
		ParametricVaR:     a.ParametricVaR,
		VaR95:             a.VaR95,
		VaR99:             a.VaR99,
		ES95:              a.ES95,
		ES99:              a.ES99,
		ExpiryBuckets:     marshalJSON(a.ExpiryBuckets),
		AllocationByClass: marshalJSON(a.AllocationByClass),
		MarginRequirement: a.MarginRequirement,
		MarginUtilization: a.MarginUtilization,
		CalculatedAt:      a.CalculatedAt,
	}
}

func toPortfolioAnalytics(m *PortfolioAnalyticsModel) *domain.DerivativesPortfolioAnalytics {
	a := &domain.DerivativesPortfolioAnalytics{
		ID:                m.AnalyticsID,
		TenantID:          m.TenantID,
		TotalPositions:    m.TotalPositions,
		TotalNotional:     m.TotalNotional,
		NetGreeks:         domain.NewPositionGreeks(),
		ParametricVaR:     m.ParametricVaR,
		VaR95:             m.VaR95,
		VaR99:             m.VaR99,
		ES95:              m.ES95,
		ES99:              m.ES99,
		AllocationByClass: make(map[domain.InstrumentClass]decimal.Decimal),
		MarginRequirement: m.MarginRequirement,
		MarginUtilization: m.MarginUtilization,
		CalculatedAt:      m.CalculatedAt,
	}
	if m.NetGreeks != "" {
		_ = json.Unmarshal([]byte(m.NetGreeks), a.NetGreeks)
	}
	if m.ExpiryBuckets != "" {
		_ = json.Unmarshal([]byte(m.ExpiryBuckets), &a.ExpiryBuckets)
	}
	if m.AllocationByClass != "" {
		_ = json.Unmarshal([]byte(m.AllocationByClass), &a.AllocationByClass)
	}
	return a
}
