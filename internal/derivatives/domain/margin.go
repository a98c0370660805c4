package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// 保证金情景参数。价格冲击取 ±15%，波动率随价格下跌同向抬升、
// 随价格上涨回落，近似 SPAN 的价格/波动率联动扫描。
const (
	marginPriceShock = 0.15
	marginVolShock   = 0.25

	initialMarginRate     = 0.15
	maintenanceMarginRate = 0.10
)

// MarginScenario 单个压力情景下的组合估值结果。
type MarginScenario struct {
	Name          string          `json:"name"`
	PriceShock    decimal.Decimal `json:"price_shock"` // 相对现价的冲击比例
	VolShock      decimal.Decimal `json:"vol_shock"`
	PortfolioPnL  decimal.Decimal `json:"portfolio_pnl"`
	WorstScenario bool            `json:"worst_scenario"`
}

// MarginPosition 参与保证金计算的一笔持仓。
type MarginPosition struct {
	InstrumentID string          `json:"instrument_id"`
	Symbol       string          `json:"symbol"`
	Class        InstrumentClass `json:"class"`
	OptionType   OptionType      `json:"option_type,omitempty"`
	StrikePrice  decimal.Decimal `json:"strike_price"`
	Side         Side            `json:"side"`
	Quantity     decimal.Decimal `json:"quantity"`
	Multiplier   decimal.Decimal `json:"multiplier"`

	UnderlyingPrice decimal.Decimal `json:"underlying_price"`
	MarketPrice     decimal.Decimal `json:"market_price"`
	Volatility      decimal.Decimal `json:"volatility"`
	TimeToExpiry    decimal.Decimal `json:"time_to_expiry"`
	RiskFreeRate    decimal.Decimal `json:"risk_free_rate"`
	DividendYield   decimal.Decimal `json:"dividend_yield"`
}

// Notional 持仓名义价值：|数量| × 标的价 × 乘数。
func (p *MarginPosition) Notional() decimal.Decimal {
	return p.Quantity.Abs().Mul(p.UnderlyingPrice).Mul(p.Multiplier)
}

// MarginCalculationResult 一次组合保证金估算的完整输出。
type MarginCalculationResult struct {
	ID       string `json:"id"`
	TenantID string `json:"tenant_id"`

	ScenarioMargin     decimal.Decimal  `json:"scenario_margin"` // 情景法：最坏情景绝对亏损
	InitialMargin      decimal.Decimal  `json:"initial_margin"`  // 逐仓比例法初始保证金
	MaintenanceMargin  decimal.Decimal  `json:"maintenance_margin"`
	RequiredMargin     decimal.Decimal  `json:"required_margin"` // 两种口径取较大者
	Scenarios          []MarginScenario `json:"scenarios"`
	NetLiquidationValue decimal.Decimal `json:"net_liquidation_value"`
	ExcessLiquidity    decimal.Decimal  `json:"excess_liquidity"`
	MarginUtilization  decimal.Decimal  `json:"margin_utilization"` // required / NLV，百分比
	CalculatedAt       time.Time        `json:"calculated_at"`
}

// MarginEstimator 基于情景重估与比例法的组合保证金估算器。
// 情景重估复用定价内核对每个冲击点全量重新定价。
type MarginEstimator struct {
	kernel *PricingKernel
}

func NewMarginEstimator(kernel *PricingKernel) *MarginEstimator {
	return &MarginEstimator{kernel: kernel}
}

// marginScenarioGrid 情景网格：基准、价格 ±15%（带联动波动率冲击）。
func marginScenarioGrid() []MarginScenario {
	return []MarginScenario{
		{Name: "BASE", PriceShock: decimal.Zero, VolShock: decimal.Zero},
		{Name: "PRICE_DOWN_VOL_UP", PriceShock: decimal.NewFromFloat(-marginPriceShock), VolShock: decimal.NewFromFloat(marginVolShock)},
		{Name: "PRICE_UP_VOL_DOWN", PriceShock: decimal.NewFromFloat(marginPriceShock), VolShock: decimal.NewFromFloat(-marginVolShock)},
	}
}

// Estimate 计算组合保证金。情景法对每个情景重估所有持仓并取最坏
// 绝对亏损；比例法对每笔持仓按 名义价值 × 比例 × (1 + 波动率) 计提。
// scenarios 可由调用方自带压力网格，为空时使用默认的基准 ±15% 网格。
func (e *MarginEstimator) Estimate(ctx context.Context, id, tenantID string, positions []MarginPosition, accountEquity decimal.Decimal, scenarios []MarginScenario) (*MarginCalculationResult, error) {
	if len(positions) == 0 {
		return nil, ErrEmptyPositions
	}
	for _, p := range positions {
		if !p.Side.IsValid() {
			return nil, ErrInvalidLegSide
		}
		if !p.Quantity.IsPositive() {
			return nil, ErrInvalidQuantity
		}
	}

	if len(scenarios) == 0 {
		scenarios = marginScenarioGrid()
	} else {
		scenarios = append([]MarginScenario(nil), scenarios...)
	}
	worstLoss := decimal.Zero
	worstIdx := 0
	for i := range scenarios {
		pnl := e.scenarioPnL(ctx, positions, scenarios[i])
		scenarios[i].PortfolioPnL = pnl
		if pnl.Neg().GreaterThan(worstLoss) {
			worstLoss = pnl.Neg()
			worstIdx = i
		}
	}
	scenarios[worstIdx].WorstScenario = true

	initial := decimal.Zero
	maintenance := decimal.Zero
	for _, p := range positions {
		volFactor := decimal.NewFromInt(1).Add(p.Volatility)
		base := p.Notional().Mul(volFactor)
		initial = initial.Add(base.Mul(decimal.NewFromFloat(initialMarginRate)))
		maintenance = maintenance.Add(base.Mul(decimal.NewFromFloat(maintenanceMarginRate)))
	}

	required := decimal.Max(worstLoss, initial)

	result := &MarginCalculationResult{
		ID:                  id,
		TenantID:            tenantID,
		ScenarioMargin:      worstLoss.Round(4),
		InitialMargin:       initial.Round(4),
		MaintenanceMargin:   maintenance.Round(4),
		RequiredMargin:      required.Round(4),
		Scenarios:           scenarios,
		NetLiquidationValue: accountEquity.Round(4),
		ExcessLiquidity:     accountEquity.Sub(required).Round(4),
		CalculatedAt:        time.Now(),
	}
	if accountEquity.IsPositive() {
		result.MarginUtilization = required.Div(accountEquity).Mul(decimal.NewFromInt(100)).Round(4)
	}
	return result, nil
}

// scenarioPnL 在给定情景下重估组合：期权腿用定价内核重算理论价，
// 线性腿直接按价格冲击折算。定价失败的腿退化为线性近似。
func (e *MarginEstimator) scenarioPnL(ctx context.Context, positions []MarginPosition, sc MarginScenario) decimal.Decimal {
	total := decimal.Zero
	priceFactor := decimal.NewFromInt(1).Add(sc.PriceShock)
	volFactor := decimal.NewFromInt(1).Add(sc.VolShock)

	for _, p := range positions {
		sign := decimal.NewFromInt(int64(p.Side.Sign()))
		scale := sign.Mul(p.Quantity).Mul(p.Multiplier)
		shockedSpot := p.UnderlyingPrice.Mul(priceFactor)

		var shockedValue decimal.Decimal
		if p.Class == InstrumentClassOption {
			shockedValue = e.repriceOption(ctx, p, shockedSpot, p.Volatility.Mul(volFactor))
		} else {
			shockedValue = shockedSpot
		}

		var baseValue decimal.Decimal
		if p.Class == InstrumentClassOption {
			baseValue = p.MarketPrice
		} else {
			baseValue = p.UnderlyingPrice
		}
		total = total.Add(scale.Mul(shockedValue.Sub(baseValue)))
	}
	return total.Round(4)
}

func (e *MarginEstimator) repriceOption(ctx context.Context, p MarginPosition, spot, vol decimal.Decimal) decimal.Decimal {
	input := PricingInput{
		OptionType:      p.OptionType,
		OptionStyle:     OptionStyleEuropean,
		UnderlyingPrice: spot.InexactFloat64(),
		StrikePrice:     p.StrikePrice.InexactFloat64(),
		Volatility:      vol.InexactFloat64(),
		RiskFreeRate:    p.RiskFreeRate.InexactFloat64(),
		DividendYield:   p.DividendYield.InexactFloat64(),
		TimeToExpiry:    p.TimeToExpiry.InexactFloat64(),
	}
	result, err := e.kernel.PriceAndGreeks(ctx, PricingModelBlackScholes, input)
	if err != nil {
		// 定价失败退化为线性近似：价值随标的等比例变动
		ratio := decimal.Zero
		if p.UnderlyingPrice.IsPositive() {
			ratio = spot.Div(p.UnderlyingPrice)
		}
		return p.MarketPrice.Mul(ratio)
	}
	return decimal.NewFromFloat(result.Price)
}
