package application

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/investmentplatform/internal/derivatives/domain"
)

// CalculateGreeksRequest 希腊字母计算请求 DTO
// 市场参数为空时由行情源补齐，显式传入时覆盖行情源取值。
type CalculateGreeksRequest struct {
	TenantID     string `json:"tenant_id"`
	InstrumentID string `json:"instrument_id"`
	Model        string `json:"model"`

	UnderlyingPrice string `json:"underlying_price,omitempty"`
	Volatility      string `json:"volatility,omitempty"`
	RiskFreeRate    string `json:"risk_free_rate,omitempty"`
	DividendYield   string `json:"dividend_yield,omitempty"`

	Steps int `json:"steps,omitempty"`
	Paths int `json:"paths,omitempty"`
}

// GreeksDTO 希腊字母计算结果 DTO
type GreeksDTO struct {
	CalculationID    string   `json:"calculation_id"`
	InstrumentID     string   `json:"instrument_id"`
	Symbol           string   `json:"symbol"`
	Model            string   `json:"model"`
	TheoreticalPrice string   `json:"theoretical_price"`
	Delta            string   `json:"delta"`
	Gamma            string   `json:"gamma"`
	Theta            string   `json:"theta"`
	Vega             string   `json:"vega"`
	Rho              string   `json:"rho"`
	Vanna            string   `json:"vanna"`
	Volga            string   `json:"volga"`
	DeltaCash        string   `json:"delta_cash"`
	StandardError    float64  `json:"standard_error,omitempty"`
	Warnings         []string `json:"warnings,omitempty"`
	CalculatedAt     int64    `json:"calculated_at"`
}

// SolveImpliedVolRequest 隐含波动率求解请求 DTO
type SolveImpliedVolRequest struct {
	TenantID     string `json:"tenant_id"`
	InstrumentID string `json:"instrument_id"`
	MarketPrice  string `json:"market_price,omitempty"` // 为空时取行情最新价
	WindowDays   int    `json:"window_days,omitempty"`  // 历史 IV 窗口，默认 30
}

// ImpliedVolDTO 隐含波动率分析结果 DTO
type ImpliedVolDTO struct {
	AnalysisID        string   `json:"analysis_id"`
	InstrumentID      string   `json:"instrument_id"`
	Symbol            string   `json:"symbol"`
	ImpliedVolatility string   `json:"implied_volatility"`
	HistoricalVolMean string   `json:"historical_vol_mean"`
	IVRank            string   `json:"iv_rank"`
	Confidence95Lower string   `json:"confidence_95_lower"`
	Confidence95Upper string   `json:"confidence_95_upper"`
	Iterations        int      `json:"iterations"`
	Converged         bool     `json:"converged"`
	Warnings          []string `json:"warnings,omitempty"`
}

// StrategyLegRequest 策略腿请求 DTO
type StrategyLegRequest struct {
	InstrumentID string `json:"instrument_id"`
	Side         string `json:"side"`
	Quantity     string `json:"quantity"`
	EntryPrice   string `json:"entry_price,omitempty"` // 为空时取行情最新价
}

// EvaluateStrategyRequest 策略评估请求 DTO
type EvaluateStrategyRequest struct {
	TenantID     string               `json:"tenant_id"`
	StrategyType string               `json:"strategy_type"`
	Underlying   string               `json:"underlying"`
	Legs         []StrategyLegRequest `json:"legs"`
}

// StrategyDTO 策略评估结果 DTO
type StrategyDTO struct {
	StrategyID         string   `json:"strategy_id"`
	StrategyType       string   `json:"strategy_type"`
	Underlying         string   `json:"underlying"`
	LegCount           int      `json:"leg_count"`
	NetPremium         string   `json:"net_premium"`
	NetDelta           string   `json:"net_delta"`
	NetGamma           string   `json:"net_gamma"`
	NetTheta           string   `json:"net_theta"`
	NetVega            string   `json:"net_vega"`
	NetRho             string   `json:"net_rho"`
	MaxProfit          string   `json:"max_profit,omitempty"`
	MaxProfitUnbounded bool     `json:"max_profit_unbounded"`
	MaxLoss            string   `json:"max_loss,omitempty"`
	MaxLossUnbounded   bool     `json:"max_loss_unbounded"`
	BreakevenPoints    []string `json:"breakeven_points"`
	MarginRequirement  string   `json:"margin_requirement"`
	Warnings           []string `json:"warnings,omitempty"`
}

// MarginPositionRequest 保证金持仓请求 DTO
type MarginPositionRequest struct {
	InstrumentID string `json:"instrument_id"`
	Side         string `json:"side"`
	Quantity     string `json:"quantity"`
}

// EstimateMarginRequest 保证金估算请求 DTO。Scenarios 为可选的
// 自定义压力网格，为空时使用默认的基准 ±15% 网格。
type EstimateMarginRequest struct {
	TenantID      string                  `json:"tenant_id"`
	AccountEquity string                  `json:"account_equity"`
	Positions     []MarginPositionRequest `json:"positions"`
	Scenarios     []MarginScenarioRequest `json:"scenarios,omitempty"`
}

// MarginScenarioRequest 调用方自定义压力情景
type MarginScenarioRequest struct {
	Name       string `json:"name"`
	PriceShock string `json:"price_shock"` // 相对现价的冲击比例（小数）
	VolShock   string `json:"vol_shock"`
}

// MarginScenarioDTO 压力情景 DTO
type MarginScenarioDTO struct {
	Name          string `json:"name"`
	PriceShock    string `json:"price_shock"`
	VolShock      string `json:"vol_shock"`
	PortfolioPnL  string `json:"portfolio_pnl"`
	WorstScenario bool   `json:"worst_scenario"`
}

// MarginDTO 保证金估算结果 DTO
type MarginDTO struct {
	CalculationID       string              `json:"calculation_id"`
	ScenarioMargin      string              `json:"scenario_margin"`
	InitialMargin       string              `json:"initial_margin"`
	MaintenanceMargin   string              `json:"maintenance_margin"`
	RequiredMargin      string              `json:"required_margin"`
	NetLiquidationValue string              `json:"net_liquidation_value"`
	ExcessLiquidity     string              `json:"excess_liquidity"`
	MarginUtilization   string              `json:"margin_utilization"`
	Scenarios           []MarginScenarioDTO `json:"scenarios"`
}

// MarkToMarketRequest 盯市估值请求 DTO
type MarkToMarketRequest struct {
	TenantID      string `json:"tenant_id"`
	InstrumentID  string `json:"instrument_id"`
	Quantity      string `json:"quantity"`
	EntryPrice    string `json:"entry_price,omitempty"`    // 建仓均价，为空时不计算累计损益
	ValuationDate string `json:"valuation_date,omitempty"` // RFC3339，为空时取当前时间
	RateChange    string `json:"rate_change,omitempty"`    // 无风险利率较前日变动（小数）
}

// AttributionDTO 损益归因 DTO
type AttributionDTO struct {
	DeltaPnL string `json:"delta_pnl"`
	GammaPnL string `json:"gamma_pnl"`
	ThetaPnL string `json:"theta_pnl"`
	VegaPnL  string `json:"vega_pnl"`
	RhoPnL   string `json:"rho_pnl"`
	Residual string `json:"residual"`
}

// ValuationDTO 盯市估值结果 DTO
type ValuationDTO struct {
	ValuationID      string          `json:"valuation_id"`
	InstrumentID     string          `json:"instrument_id"`
	Symbol           string          `json:"symbol"`
	ValuationDate    string          `json:"valuation_date"`
	MarketPrice      string          `json:"market_price"`
	TheoreticalPrice string          `json:"theoretical_price"`
	MarketValue      string          `json:"market_value"`
	IntrinsicValue   string          `json:"intrinsic_value"`
	TimeValue        string          `json:"time_value"`
	DailyPnL         string          `json:"daily_pnl"`
	UnrealizedPnL    string          `json:"unrealized_pnl"`
	Attribution      *AttributionDTO `json:"attribution,omitempty"`
}

// PortfolioPositionRequest 组合持仓请求 DTO
type PortfolioPositionRequest struct {
	InstrumentID string `json:"instrument_id"`
	Side         string `json:"side"`
	Quantity     string `json:"quantity"`
}

// AnalyzePortfolioRequest 组合分析请求 DTO
type AnalyzePortfolioRequest struct {
	TenantID      string                     `json:"tenant_id"`
	AccountEquity string                     `json:"account_equity"`
	Positions     []PortfolioPositionRequest `json:"positions"`
}

// ExpiryBucketDTO 到期分布桶 DTO
type ExpiryBucketDTO struct {
	Label     string `json:"label"`
	Notional  string `json:"notional"`
	Positions int    `json:"positions"`
}

// PortfolioDTO 组合分析结果 DTO
type PortfolioDTO struct {
	AnalyticsID       string            `json:"analytics_id"`
	TotalPositions    int               `json:"total_positions"`
	TotalNotional     string            `json:"total_notional"`
	NetDelta          string            `json:"net_delta"`
	NetGamma          string            `json:"net_gamma"`
	NetTheta          string            `json:"net_theta"`
	NetVega           string            `json:"net_vega"`
	NetRho            string            `json:"net_rho"`
	ParametricVaR     string            `json:"parametric_var"`
	VaR95             string            `json:"var_95"`
	VaR99             string            `json:"var_99"`
	ES95              string            `json:"es_95"`
	ES99              string            `json:"es_99"`
	ExpiryBuckets     []ExpiryBucketDTO `json:"expiry_buckets"`
	AllocationByClass map[string]string `json:"allocation_by_class"`
	MarginRequirement string            `json:"margin_requirement"`
	MarginUtilization string            `json:"margin_utilization"`
}

func toGreeksDTO(calc *domain.GreeksCalculation) *GreeksDTO {
	return &GreeksDTO{
		CalculationID:    calc.ID,
		InstrumentID:     calc.InstrumentID,
		Symbol:           calc.Symbol,
		Model:            string(calc.Model),
		TheoreticalPrice: calc.TheoreticalPrice.String(),
		Delta:            calc.Delta.String(),
		Gamma:            calc.Gamma.String(),
		Theta:            calc.Theta.String(),
		Vega:             calc.Vega.String(),
		Rho:              calc.Rho.String(),
		Vanna:            calc.Vanna.String(),
		Volga:            calc.Volga.String(),
		DeltaCash:        calc.DeltaCash.String(),
		StandardError:    calc.StandardError,
		Warnings:         calc.Warnings,
		CalculatedAt:     calc.CalculatedAt.Unix(),
	}
}

func toImpliedVolDTO(analysis *domain.ImpliedVolatilityAnalysis) *ImpliedVolDTO {
	return &ImpliedVolDTO{
		AnalysisID:        analysis.ID,
		InstrumentID:      analysis.InstrumentID,
		Symbol:            analysis.Symbol,
		ImpliedVolatility: analysis.ImpliedVolatility.String(),
		HistoricalVolMean: analysis.HistoricalVolMean.String(),
		IVRank:            analysis.IVRank.String(),
		Confidence95Lower: analysis.Confidence95Lower.String(),
		Confidence95Upper: analysis.Confidence95Upper.String(),
		Iterations:        analysis.Iterations,
		Converged:         analysis.Converged,
		Warnings:          analysis.Warnings,
	}
}

func toStrategyDTO(strategy *domain.OptionStrategy) *StrategyDTO {
	dto := &StrategyDTO{
		StrategyID:         strategy.ID,
		StrategyType:       string(strategy.StrategyType),
		Underlying:         strategy.Underlying,
		LegCount:           len(strategy.Legs),
		NetPremium:         strategy.NetPremium.String(),
		NetDelta:           strategy.NetGreeks.Delta.String(),
		NetGamma:           strategy.NetGreeks.Gamma.String(),
		NetTheta:           strategy.NetGreeks.Theta.String(),
		NetVega:            strategy.NetGreeks.Vega.String(),
		NetRho:             strategy.NetGreeks.Rho.String(),
		MaxProfitUnbounded: strategy.MaxProfitUnbounded,
		MaxLossUnbounded:   strategy.MaxLossUnbounded,
		MarginRequirement:  strategy.MarginRequirement.String(),
		Warnings:           strategy.Warnings,
	}
	if !strategy.MaxProfitUnbounded {
		dto.MaxProfit = strategy.MaxProfit.String()
	}
	if !strategy.MaxLossUnbounded {
		dto.MaxLoss = strategy.MaxLoss.String()
	}
	dto.BreakevenPoints = make([]string, 0, len(strategy.BreakevenPoints))
	for _, be := range strategy.BreakevenPoints {
		dto.BreakevenPoints = append(dto.BreakevenPoints, be.String())
	}
	return dto
}

func toMarginDTO(result *domain.MarginCalculationResult) *MarginDTO {
	dto := &MarginDTO{
		CalculationID:       result.ID,
		ScenarioMargin:      result.ScenarioMargin.String(),
		InitialMargin:       result.InitialMargin.String(),
		MaintenanceMargin:   result.MaintenanceMargin.String(),
		RequiredMargin:      result.RequiredMargin.String(),
		NetLiquidationValue: result.NetLiquidationValue.String(),
		ExcessLiquidity:     result.ExcessLiquidity.String(),
		MarginUtilization:   result.MarginUtilization.String(),
	}
	dto.Scenarios = make([]MarginScenarioDTO, 0, len(result.Scenarios))
	for _, sc := range result.Scenarios {
		dto.Scenarios = append(dto.Scenarios, MarginScenarioDTO{
			Name:          sc.Name,
			PriceShock:    sc.PriceShock.String(),
			VolShock:      sc.VolShock.String(),
			PortfolioPnL:  sc.PortfolioPnL.String(),
			WorstScenario: sc.WorstScenario,
		})
	}
	return dto
}

func toValuationDTO(v *domain.MarkToMarketValuation) *ValuationDTO {
	dto := &ValuationDTO{
		ValuationID:      v.ID,
		InstrumentID:     v.InstrumentID,
		Symbol:           v.Symbol,
		ValuationDate:    v.ValuationDate.Format(time.RFC3339),
		MarketPrice:      v.MarketPrice.String(),
		TheoreticalPrice: v.TheoreticalPrice.String(),
		MarketValue:      v.MarketValue.String(),
		IntrinsicValue:   v.IntrinsicValue.String(),
		TimeValue:        v.TimeValue.String(),
		DailyPnL:         v.DailyPnL.String(),
		UnrealizedPnL:    v.UnrealizedPnL.String(),
	}
	if v.Attribution != nil {
		dto.Attribution = &AttributionDTO{
			DeltaPnL: v.Attribution.DeltaPnL.String(),
			GammaPnL: v.Attribution.GammaPnL.String(),
			ThetaPnL: v.Attribution.ThetaPnL.String(),
			VegaPnL:  v.Attribution.VegaPnL.String(),
			RhoPnL:   v.Attribution.RhoPnL.String(),
			Residual: v.Attribution.Residual.String(),
		}
	}
	return dto
}

func toPortfolioDTO(a *domain.DerivativesPortfolioAnalytics) *PortfolioDTO {
	dto := &PortfolioDTO{
		AnalyticsID:       a.ID,
		TotalPositions:    a.TotalPositions,
		TotalNotional:     a.TotalNotional.String(),
		NetDelta:          a.NetGreeks.Delta.String(),
		NetGamma:          a.NetGreeks.Gamma.String(),
		NetTheta:          a.NetGreeks.Theta.String(),
		NetVega:           a.NetGreeks.Vega.String(),
		NetRho:            a.NetGreeks.Rho.String(),
		ParametricVaR:     a.ParametricVaR.String(),
		VaR95:             a.VaR95.String(),
		VaR99:             a.VaR99.String(),
		ES95:              a.ES95.String(),
		ES99:              a.ES99.String(),
		MarginRequirement: a.MarginRequirement.String(),
		MarginUtilization: a.MarginUtilization.String(),
		AllocationByClass: make(map[string]string, len(a.AllocationByClass)),
	}
	dto.ExpiryBuckets = make([]ExpiryBucketDTO, 0, len(a.ExpiryBuckets))
	for _, b := range a.ExpiryBuckets {
		dto.ExpiryBuckets = append(dto.ExpiryBuckets, ExpiryBucketDTO{
			Label:     b.Label,
			Notional:  b.Notional.String(),
			Positions: b.Positions,
		})
	}
	for class, pct := range a.AllocationByClass {
		dto.AllocationByClass[string(class)] = pct.String()
	}
	return dto
}

// parseDecimal 解析可选的十进制字段。空串表示调用方未提供，由行情源
// 或默认值补齐；非法字面量是校验错误，不做静默回退。
func parseDecimal(raw string) (decimal.Decimal, bool, error) {
	if raw == "" {
		return decimal.Zero, false, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("%w: %q", domain.ErrInvalidDecimal, raw)
	}
	return d, true, nil
}
