package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MarkToMarketValuation 单合约单日盯市估值记录。
// 记录估值时点的希腊字母快照，作为下一次估值做损益归因的基准。
type MarkToMarketValuation struct {
	ID           string `json:"id"`
	TenantID     string `json:"tenant_id"`
	InstrumentID string `json:"instrument_id"`
	Symbol       string `json:"symbol"`

	ValuationDate   time.Time       `json:"valuation_date"`
	MarketPrice     decimal.Decimal `json:"market_price"`
	TheoreticalPrice decimal.Decimal `json:"theoretical_price"`
	UnderlyingPrice decimal.Decimal `json:"underlying_price"`
	Volatility      decimal.Decimal `json:"volatility"`
	Quantity        decimal.Decimal `json:"quantity"`
	Multiplier      decimal.Decimal `json:"multiplier"`
	EntryPrice      decimal.Decimal `json:"entry_price"`
	MarketValue     decimal.Decimal `json:"market_value"`

	// 单位合约的内在/时间价值拆分
	IntrinsicValue decimal.Decimal `json:"intrinsic_value"`
	TimeValue      decimal.Decimal `json:"time_value"`

	Greeks *PositionGreeks `json:"greeks"`

	DailyPnL      decimal.Decimal `json:"daily_pnl"`
	UnrealizedPnL decimal.Decimal `json:"unrealized_pnl"` // 相对建仓价的累计损益，未提供建仓价时为零
	Attribution   *PnLAttribution `json:"attribution,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// PnLAttribution 希腊字母损益归因。Residual 为实际损益与
// 各希腊字母解释量之差，始终如实上报，不摊入任何分项。
type PnLAttribution struct {
	DeltaPnL decimal.Decimal `json:"delta_pnl"`
	GammaPnL decimal.Decimal `json:"gamma_pnl"`
	ThetaPnL decimal.Decimal `json:"theta_pnl"`
	VegaPnL  decimal.Decimal `json:"vega_pnl"`
	RhoPnL   decimal.Decimal `json:"rho_pnl"`
	Residual decimal.Decimal `json:"residual"`
}

// NewMarkToMarketValuation 生成一条盯市记录。previous 为 nil 时是该合约
// 首条估值：日内损益与归因无基准，全部置零。entryPrice 为建仓均价，
// 未提供（非正）时不计算累计损益。
func NewMarkToMarketValuation(
	id, tenantID string,
	option *OptionContract,
	valuationDate time.Time,
	marketPrice, theoreticalPrice decimal.Decimal,
	volatility decimal.Decimal,
	quantity decimal.Decimal,
	entryPrice decimal.Decimal,
	greeks *PositionGreeks,
	rateChange decimal.Decimal,
	previous *MarkToMarketValuation,
) *MarkToMarketValuation {
	v := &MarkToMarketValuation{
		ID:               id,
		TenantID:         tenantID,
		InstrumentID:     option.InstrumentID,
		Symbol:           option.Symbol,
		ValuationDate:    valuationDate,
		MarketPrice:      marketPrice,
		TheoreticalPrice: theoreticalPrice,
		UnderlyingPrice:  option.UnderlyingPrice,
		Volatility:       volatility,
		Quantity:         quantity,
		Multiplier:       option.Multiplier,
		EntryPrice:       entryPrice,
		MarketValue:      quantity.Mul(marketPrice).Mul(option.Multiplier),
		IntrinsicValue:   option.IntrinsicValue(option.UnderlyingPrice),
		TimeValue:        option.TimeValue(option.UnderlyingPrice, marketPrice),
		Greeks:           greeks,
		CreatedAt:        time.Now(),
	}

	if entryPrice.IsPositive() {
		v.UnrealizedPnL = marketPrice.Sub(entryPrice).Mul(quantity).Mul(option.Multiplier)
	}

	if previous == nil {
		v.DailyPnL = decimal.Zero
		return v
	}

	v.DailyPnL = v.MarketValue.Sub(previous.MarketValue)
	v.Attribution = attributePnL(v, previous, rateChange)
	return v
}

// attributePnL 用前一日希腊字母快照对当日损益做泰勒展开归因：
//
//	delta 项 = Δ · dS
//	gamma 项 = 0.5 · Γ · dS²
//	theta 项 = Θ · 天数
//	vega 项  = ν · dσ（σ 变动以百分点计）
//	rho 项   = ρ · dr（r 变动以百分点计）
//
// 希腊字母快照为持仓口径（已含数量与乘数），残差 = 实际损益 - 各项之和。
func attributePnL(current, previous *MarkToMarketValuation, rateChange decimal.Decimal) *PnLAttribution {
	g := previous.Greeks
	if g == nil {
		g = NewPositionGreeks()
	}

	dS := current.UnderlyingPrice.Sub(previous.UnderlyingPrice)
	dVolPct := current.Volatility.Sub(previous.Volatility).Mul(decimal.NewFromInt(100))
	dRatePct := rateChange.Mul(decimal.NewFromInt(100))

	days := decimal.NewFromFloat(current.ValuationDate.Sub(previous.ValuationDate).Hours() / 24)
	if days.IsNegative() {
		days = decimal.Zero
	}

	attr := &PnLAttribution{
		DeltaPnL: g.Delta.Mul(dS).Round(4),
		GammaPnL: g.Gamma.Mul(dS).Mul(dS).Div(decimal.NewFromInt(2)).Round(4),
		ThetaPnL: g.Theta.Mul(days).Round(4),
		VegaPnL:  g.Vega.Mul(dVolPct).Round(4),
		RhoPnL:   g.Rho.Mul(dRatePct).Round(4),
	}
	explained := attr.DeltaPnL.Add(attr.GammaPnL).Add(attr.ThetaPnL).Add(attr.VegaPnL).Add(attr.RhoPnL)
	attr.Residual = current.DailyPnL.Sub(explained).Round(4)
	return attr
}
