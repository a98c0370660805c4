package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Greeks 定价模型输出的敏感度集合。
// theta 按日（年化值/365），vega 与 rho 按 1% 变动（原始敏感度/100），
// 其余为原始单位。高阶希腊字母仅由闭式模型填充。
type Greeks struct {
	Delta float64
	Gamma float64
	Theta float64
	Vega  float64
	Rho   float64

	// 高阶
	Vanna  float64
	Charm  float64
	Color  float64
	Volga  float64
	Lambda float64
}

func (g Greeks) Add(other Greeks) Greeks {
	return Greeks{
		Delta:  g.Delta + other.Delta,
		Gamma:  g.Gamma + other.Gamma,
		Theta:  g.Theta + other.Theta,
		Vega:   g.Vega + other.Vega,
		Rho:    g.Rho + other.Rho,
		Vanna:  g.Vanna + other.Vanna,
		Charm:  g.Charm + other.Charm,
		Color:  g.Color + other.Color,
		Volga:  g.Volga + other.Volga,
		Lambda: g.Lambda + other.Lambda,
	}
}

func (g Greeks) Scale(factor float64) Greeks {
	return Greeks{
		Delta:  g.Delta * factor,
		Gamma:  g.Gamma * factor,
		Theta:  g.Theta * factor,
		Vega:   g.Vega * factor,
		Rho:    g.Rho * factor,
		Vanna:  g.Vanna * factor,
		Charm:  g.Charm * factor,
		Color:  g.Color * factor,
		Volga:  g.Volga * factor,
		Lambda: g.Lambda * factor,
	}
}

// PositionGreeks 持仓/组合层面的希腊字母汇总，使用 decimal 以便与
// 资金字段一起持久化与上报。
type PositionGreeks struct {
	Delta decimal.Decimal `json:"delta"`
	Gamma decimal.Decimal `json:"gamma"`
	Theta decimal.Decimal `json:"theta"`
	Vega  decimal.Decimal `json:"vega"`
	Rho   decimal.Decimal `json:"rho"`
}

func NewPositionGreeks() *PositionGreeks {
	return &PositionGreeks{
		Delta: decimal.Zero,
		Gamma: decimal.Zero,
		Theta: decimal.Zero,
		Vega:  decimal.Zero,
		Rho:   decimal.Zero,
	}
}

func PositionGreeksFrom(g Greeks) *PositionGreeks {
	return &PositionGreeks{
		Delta: decimal.NewFromFloat(g.Delta),
		Gamma: decimal.NewFromFloat(g.Gamma),
		Theta: decimal.NewFromFloat(g.Theta),
		Vega:  decimal.NewFromFloat(g.Vega),
		Rho:   decimal.NewFromFloat(g.Rho),
	}
}

func (pg *PositionGreeks) Add(other *PositionGreeks) *PositionGreeks {
	return &PositionGreeks{
		Delta: pg.Delta.Add(other.Delta),
		Gamma: pg.Gamma.Add(other.Gamma),
		Theta: pg.Theta.Add(other.Theta),
		Vega:  pg.Vega.Add(other.Vega),
		Rho:   pg.Rho.Add(other.Rho),
	}
}

func (pg *PositionGreeks) Multiply(factor decimal.Decimal) *PositionGreeks {
	return &PositionGreeks{
		Delta: pg.Delta.Mul(factor),
		Gamma: pg.Gamma.Mul(factor),
		Theta: pg.Theta.Mul(factor),
		Vega:  pg.Vega.Mul(factor),
		Rho:   pg.Rho.Mul(factor),
	}
}

// GreeksCalculation 一次希腊字母计算的结果快照。
// 创建后不再修改；重新计算生成新的记录。
type GreeksCalculation struct {
	ID           string           `json:"id"`
	TenantID     string           `json:"tenant_id"`
	InstrumentID string           `json:"instrument_id"`
	Symbol       string           `json:"symbol"`
	Model        PricingModelType `json:"model"`

	TheoreticalPrice decimal.Decimal `json:"theoretical_price"`
	Delta            decimal.Decimal `json:"delta"`
	Gamma            decimal.Decimal `json:"gamma"`
	Theta            decimal.Decimal `json:"theta"`
	Vega             decimal.Decimal `json:"vega"`
	Rho              decimal.Decimal `json:"rho"`
	Vanna            decimal.Decimal `json:"vanna"`
	Charm            decimal.Decimal `json:"charm"`
	Color            decimal.Decimal `json:"color"`
	Volga            decimal.Decimal `json:"volga"`
	Lambda           decimal.Decimal `json:"lambda"`

	// 现金等价形式
	DeltaCash  decimal.Decimal `json:"delta_cash"`
	ThetaDaily decimal.Decimal `json:"theta_daily"`

	// 计算所使用的精确输入
	UnderlyingPrice decimal.Decimal `json:"underlying_price"`
	Volatility      decimal.Decimal `json:"volatility"`
	RiskFreeRate    decimal.Decimal `json:"risk_free_rate"`
	DividendYield   decimal.Decimal `json:"dividend_yield"`
	TimeToExpiry    decimal.Decimal `json:"time_to_expiry"`

	Steps         int           `json:"steps,omitempty"`
	Paths         int           `json:"paths,omitempty"`
	StandardError float64       `json:"standard_error,omitempty"`
	ComputeTime   time.Duration `json:"compute_time"`
	Warnings      []string      `json:"warnings,omitempty"`
	CalculatedAt  time.Time     `json:"calculated_at"`
}

// IsFresh 判断记录是否满足调用方的新鲜度要求。
func (gc *GreeksCalculation) IsFresh(asOf time.Time, maxAge time.Duration) bool {
	return asOf.Sub(gc.CalculatedAt) <= maxAge
}

// NewGreeksCalculation 从定价结果构造不可变的计算记录。
func NewGreeksCalculation(id string, option *OptionContract, result *PricingResult, input PricingInput) *GreeksCalculation {
	g := result.Greeks
	deltaCash := decimal.NewFromFloat(g.Delta * input.UnderlyingPrice).Mul(option.Multiplier)
	return &GreeksCalculation{
		ID:               id,
		TenantID:         option.TenantID,
		InstrumentID:     option.InstrumentID,
		Symbol:           option.Symbol,
		Model:            result.Model,
		TheoreticalPrice: decimal.NewFromFloat(result.Price),
		Delta:            decimal.NewFromFloat(g.Delta),
		Gamma:            decimal.NewFromFloat(g.Gamma),
		Theta:            decimal.NewFromFloat(g.Theta),
		Vega:             decimal.NewFromFloat(g.Vega),
		Rho:              decimal.NewFromFloat(g.Rho),
		Vanna:            decimal.NewFromFloat(g.Vanna),
		Charm:            decimal.NewFromFloat(g.Charm),
		Color:            decimal.NewFromFloat(g.Color),
		Volga:            decimal.NewFromFloat(g.Volga),
		Lambda:           decimal.NewFromFloat(g.Lambda),
		DeltaCash:        deltaCash,
		ThetaDaily:       decimal.NewFromFloat(g.Theta),
		UnderlyingPrice:  decimal.NewFromFloat(input.UnderlyingPrice),
		Volatility:       decimal.NewFromFloat(input.Volatility),
		RiskFreeRate:     decimal.NewFromFloat(input.RiskFreeRate),
		DividendYield:    decimal.NewFromFloat(input.DividendYield),
		TimeToExpiry:     decimal.NewFromFloat(input.TimeToExpiry),
		Steps:            result.Steps,
		Paths:            result.Paths,
		StandardError:    result.StandardError,
		ComputeTime:      result.ComputeTime,
		Warnings:         result.Warnings,
		CalculatedAt:     time.Now(),
	}
}
