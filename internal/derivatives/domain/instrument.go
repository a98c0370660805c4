// Package domain 包含衍生品定价与风险分析引擎的领域模型。
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type InstrumentClass string

const (
	InstrumentClassOption InstrumentClass = "OPTION"
	InstrumentClassFuture InstrumentClass = "FUTURE"
	InstrumentClassOther  InstrumentClass = "OTHER"
)

type InstrumentStatus string

const (
	InstrumentStatusActive    InstrumentStatus = "ACTIVE"
	InstrumentStatusExpired   InstrumentStatus = "EXPIRED"
	InstrumentStatusExercised InstrumentStatus = "EXERCISED"
	InstrumentStatusAssigned  InstrumentStatus = "ASSIGNED"
	InstrumentStatusClosed    InstrumentStatus = "CLOSED"
	InstrumentStatusCancelled InstrumentStatus = "CANCELLED"
)

type OptionType string

const (
	OptionTypeCall OptionType = "CALL"
	OptionTypePut  OptionType = "PUT"
)

type OptionStyle string

const (
	OptionStyleEuropean OptionStyle = "EUROPEAN"
	OptionStyleAmerican OptionStyle = "AMERICAN"
	OptionStyleBermudan OptionStyle = "BERMUDAN"
)

type ExerciseType string

const (
	ExerciseTypePhysical ExerciseType = "PHYSICAL"
	ExerciseTypeCash     ExerciseType = "CASH"
)

type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Sign 返回方向符号：BUY = +1，SELL = -1。
func (s Side) Sign() int {
	if s == SideSell {
		return -1
	}
	return 1
}

func (s Side) IsValid() bool {
	return s == SideBuy || s == SideSell
}

// DerivativeInstrument 衍生品合约主档。
// 合约条款不可变；市场快照字段仅由外部行情摄入更新，引擎只读。
type DerivativeInstrument struct {
	TenantID     string          `json:"tenant_id"`
	InstrumentID string          `json:"instrument_id"`
	Symbol       string          `json:"symbol"`
	Underlying   string          `json:"underlying"`
	Class        InstrumentClass `json:"class"`
	Currency     string          `json:"currency"`

	Multiplier   decimal.Decimal `json:"multiplier"`
	ContractSize decimal.Decimal `json:"contract_size"`
	TickSize     decimal.Decimal `json:"tick_size"`

	IssueDate       time.Time  `json:"issue_date"`
	ExpiryDate      time.Time  `json:"expiry_date"`
	LastTradingDate time.Time  `json:"last_trading_date"`
	SettlementDate  *time.Time `json:"settlement_date,omitempty"`

	// 市场快照
	MarketPrice     decimal.Decimal `json:"market_price"`
	UnderlyingPrice decimal.Decimal `json:"underlying_price"`
	MarketAsOf      time.Time       `json:"market_as_of"`

	Status    InstrumentStatus `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

func (d *DerivativeInstrument) IsExpired(asOf time.Time) bool {
	return asOf.After(d.ExpiryDate)
}

// DaysToExpiry 距到期的自然日数，已到期返回 0。
func (d *DerivativeInstrument) DaysToExpiry(asOf time.Time) int {
	if d.IsExpired(asOf) {
		return 0
	}
	return int(d.ExpiryDate.Sub(asOf).Hours() / 24)
}

// TimeToExpiry 距到期的年化时间（ACT/365）。已到期返回 0。
func (d *DerivativeInstrument) TimeToExpiry(asOf time.Time) float64 {
	ttl := d.ExpiryDate.Sub(asOf).Hours() / 24 / 365
	if ttl < 0 {
		return 0
	}
	return ttl
}

// OptionContract 期权合约，扩展 DerivativeInstrument。
// 注意：最近一次计算的 Greeks/IV 不缓存在合约对象上，而是作为
// 带时间戳的 GreeksCalculation 历史记录单独持有，读取时必须
// 对照调用方给定的新鲜度要求检查时间戳。
type OptionContract struct {
	DerivativeInstrument

	OptionType     OptionType      `json:"option_type"`
	OptionStyle    OptionStyle     `json:"option_style"`
	StrikePrice    decimal.Decimal `json:"strike_price"`
	ExerciseType   ExerciseType    `json:"exercise_type"`
	SettlementType string          `json:"settlement_type"`
}

// IntrinsicValue 内在价值（单位合约，不含乘数）。
func (oc *OptionContract) IntrinsicValue(underlyingPrice decimal.Decimal) decimal.Decimal {
	var intrinsic decimal.Decimal
	if oc.OptionType == OptionTypeCall {
		intrinsic = underlyingPrice.Sub(oc.StrikePrice)
	} else {
		intrinsic = oc.StrikePrice.Sub(underlyingPrice)
	}
	if intrinsic.IsNegative() {
		return decimal.Zero
	}
	return intrinsic
}

// TimeValue 时间价值 = 期权价格 - 内在价值，下限为 0。
func (oc *OptionContract) TimeValue(underlyingPrice, optionPrice decimal.Decimal) decimal.Decimal {
	timeValue := optionPrice.Sub(oc.IntrinsicValue(underlyingPrice))
	if timeValue.IsNegative() {
		return decimal.Zero
	}
	return timeValue
}

func (oc *OptionContract) IsInTheMoney(underlyingPrice decimal.Decimal) bool {
	if oc.OptionType == OptionTypeCall {
		return underlyingPrice.GreaterThan(oc.StrikePrice)
	}
	return underlyingPrice.LessThan(oc.StrikePrice)
}

// Moneyness 按标的/行权价比值分档：ITM / ATM / OTM。
func (oc *OptionContract) Moneyness(underlyingPrice decimal.Decimal) string {
	if oc.StrikePrice.IsZero() {
		return "ATM"
	}
	ratio := underlyingPrice.Div(oc.StrikePrice)
	lower := decimal.NewFromFloat(0.95)
	upper := decimal.NewFromFloat(1.05)
	switch {
	case ratio.GreaterThanOrEqual(lower) && ratio.LessThanOrEqual(upper):
		return "ATM"
	case oc.IsInTheMoney(underlyingPrice):
		return "ITM"
	default:
		return "OTM"
	}
}
