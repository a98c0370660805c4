package domain

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

type StrategyType string

const (
	StrategyTypeCoveredCall    StrategyType = "COVERED_CALL"
	StrategyTypeProtectivePut  StrategyType = "PROTECTIVE_PUT"
	StrategyTypeStraddle       StrategyType = "STRADDLE"
	StrategyTypeStrangle       StrategyType = "STRANGLE"
	StrategyTypeBullCallSpread StrategyType = "BULL_CALL_SPREAD"
	StrategyTypeBearCallSpread StrategyType = "BEAR_CALL_SPREAD"
	StrategyTypeBullPutSpread  StrategyType = "BULL_PUT_SPREAD"
	StrategyTypeBearPutSpread  StrategyType = "BEAR_PUT_SPREAD"
	StrategyTypeIronCondor     StrategyType = "IRON_CONDOR"
	StrategyTypeIronButterfly  StrategyType = "IRON_BUTTERFLY"
	StrategyTypeCollar         StrategyType = "COLLAR"
	StrategyTypeCustom         StrategyType = "CUSTOM"
)

var supportedStrategyTypes = map[StrategyType]bool{
	StrategyTypeCoveredCall:    true,
	StrategyTypeProtectivePut:  true,
	StrategyTypeStraddle:       true,
	StrategyTypeStrangle:       true,
	StrategyTypeBullCallSpread: true,
	StrategyTypeBearCallSpread: true,
	StrategyTypeBullPutSpread:  true,
	StrategyTypeBearPutSpread:  true,
	StrategyTypeIronCondor:     true,
	StrategyTypeIronButterfly:  true,
	StrategyTypeCollar:         true,
	StrategyTypeCustom:         true,
}

// StrategyLeg 策略中的一腿。非期权腿（期货/现货）按线性损益处理。
type StrategyLeg struct {
	InstrumentID string          `json:"instrument_id"`
	Symbol       string          `json:"symbol"`
	Class        InstrumentClass `json:"class"`
	OptionType   OptionType      `json:"option_type,omitempty"`
	StrikePrice  decimal.Decimal `json:"strike_price"`
	Side         Side            `json:"side"`
	Quantity     decimal.Decimal `json:"quantity"`
	EntryPrice   decimal.Decimal `json:"entry_price"`
	CurrentPrice decimal.Decimal `json:"current_price"`
	Multiplier   decimal.Decimal `json:"multiplier"`
	Greeks       *PositionGreeks `json:"greeks,omitempty"`
}

// OptionStrategy 多腿期权策略及其派生的聚合字段。
// 聚合希腊字母恒等于各腿贡献的带符号和（SELL 腿取 BUY 腿贡献的相反数）。
// 策略只能整体重算，不支持就地修改单腿。
type OptionStrategy struct {
	ID           string        `json:"id"`
	TenantID     string        `json:"tenant_id"`
	StrategyType StrategyType  `json:"strategy_type"`
	Underlying   string        `json:"underlying"`
	Legs         []StrategyLeg `json:"legs"`

	NetPremium decimal.Decimal `json:"net_premium"` // 正数为净权利金支出 (debit)
	NetGreeks  *PositionGreeks `json:"net_greeks"`

	MaxProfit          decimal.Decimal   `json:"max_profit"`
	MaxProfitUnbounded bool              `json:"max_profit_unbounded"`
	MaxLoss            decimal.Decimal   `json:"max_loss"`
	MaxLossUnbounded   bool              `json:"max_loss_unbounded"`
	BreakevenPoints    []decimal.Decimal `json:"breakeven_points"`
	MarginRequirement  decimal.Decimal   `json:"margin_requirement"`

	Warnings  []string  `json:"warnings,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ValidateLegs 校验腿集合：至少一腿，方向合法，数量为正。
func ValidateLegs(legs []StrategyLeg) error {
	if len(legs) == 0 {
		return ErrEmptyLegs
	}
	for i, leg := range legs {
		if !leg.Side.IsValid() {
			return fmt.Errorf("%w: leg %d side %q", ErrInvalidLegSide, i, leg.Side)
		}
		if !leg.Quantity.IsPositive() {
			return fmt.Errorf("%w: leg %d quantity %s", ErrInvalidQuantity, i, leg.Quantity)
		}
	}
	return nil
}

// EvaluateStrategy 将各腿组合为一个策略：汇总净权利金与净希腊字母，
// 并计算最大盈利/最大亏损/盈亏平衡点。
func EvaluateStrategy(id, tenantID string, strategyType StrategyType, underlying string, legs []StrategyLeg) (*OptionStrategy, error) {
	if !supportedStrategyTypes[strategyType] {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedStrategy, strategyType)
	}
	if err := ValidateLegs(legs); err != nil {
		return nil, err
	}

	strategy := &OptionStrategy{
		ID:           id,
		TenantID:     tenantID,
		StrategyType: strategyType,
		Underlying:   underlying,
		Legs:         legs,
		NetGreeks:    NewPositionGreeks(),
		CreatedAt:    time.Now(),
	}

	netPremium := decimal.Zero
	for _, leg := range legs {
		sign := decimal.NewFromInt(int64(leg.Side.Sign()))
		scale := sign.Mul(leg.Quantity).Mul(leg.Multiplier)
		netPremium = netPremium.Add(scale.Mul(leg.EntryPrice))
		if leg.Greeks != nil {
			strategy.NetGreeks = strategy.NetGreeks.Add(leg.Greeks.Multiply(scale))
		}
	}
	strategy.NetPremium = netPremium

	strategy.computePayoffAnalytics()
	return strategy, nil
}

// computePayoffAnalytics 按策略类型计算收益图指标。
// 垂直价差与跨式使用闭式捷径，其余类型（含 CUSTOM）对到期价格
// 网格做通用扫描，不依赖闭式公式。
func (s *OptionStrategy) computePayoffAnalytics() {
	switch s.StrategyType {
	case StrategyTypeBullCallSpread, StrategyTypeBearCallSpread,
		StrategyTypeBullPutSpread, StrategyTypeBearPutSpread:
		if s.verticalAnalytics() {
			return
		}
	case StrategyTypeStraddle:
		if s.straddleAnalytics() {
			return
		}
	}
	s.gridAnalytics()
}

// payoffAt 策略在到期价 sT 下的总损益。
func (s *OptionStrategy) payoffAt(sT float64) float64 {
	total := 0.0
	for _, leg := range s.Legs {
		sign := float64(leg.Side.Sign())
		qty := leg.Quantity.InexactFloat64()
		mult := leg.Multiplier.InexactFloat64()
		entry := leg.EntryPrice.InexactFloat64()

		var value float64
		if leg.Class == InstrumentClassOption {
			value = intrinsicValue(leg.OptionType, sT, leg.StrikePrice.InexactFloat64())
		} else {
			value = sT
		}
		total += sign * qty * mult * (value - entry)
	}
	return total
}

// gridAnalytics 通用收益网格扫描：在 [0, 2*max(strike, entry)] 上取样，
// 行权价处补采样点以捕捉拐点；边缘斜率非零视为无界盈亏。
func (s *OptionStrategy) gridAnalytics() {
	maxRef := 0.0
	for _, leg := range s.Legs {
		if k := leg.StrikePrice.InexactFloat64(); k > maxRef {
			maxRef = k
		}
		if p := leg.EntryPrice.InexactFloat64(); p > maxRef {
			maxRef = p
		}
	}
	if maxRef <= 0 {
		maxRef = 100
	}
	upper := 2 * maxRef

	const samples = 400
	points := make([]float64, 0, samples+len(s.Legs))
	step := upper / samples
	for i := 0; i <= samples; i++ {
		points = append(points, float64(i)*step)
	}
	for _, leg := range s.Legs {
		if k := leg.StrikePrice.InexactFloat64(); k > 0 {
			points = append(points, k)
		}
	}
	sort.Float64s(points)

	payoffs := make([]float64, len(points))
	maxProfit := math.Inf(-1)
	maxLoss := math.Inf(1)
	for i, p := range points {
		v := s.payoffAt(p)
		payoffs[i] = v
		if v > maxProfit {
			maxProfit = v
		}
		if v < maxLoss {
			maxLoss = v
		}
	}

	// 盈亏平衡点：相邻采样点符号翻转处线性插值
	var breakevens []decimal.Decimal
	for i := 1; i < len(points); i++ {
		prev, cur := payoffs[i-1], payoffs[i]
		if prev == 0 {
			continue
		}
		if (prev < 0 && cur >= 0) || (prev > 0 && cur <= 0) {
			frac := prev / (prev - cur)
			be := points[i-1] + frac*(points[i]-points[i-1])
			breakevens = append(breakevens, decimal.NewFromFloat(be).Round(4))
		}
	}
	s.BreakevenPoints = breakevens

	// 上端边缘斜率判断无界性（下端被 sT >= 0 自然封顶）
	n := len(points)
	edgeSlope := (payoffs[n-1] - payoffs[n-2]) / (points[n-1] - points[n-2])
	if edgeSlope > 1e-9 {
		s.MaxProfitUnbounded = true
	} else if edgeSlope < -1e-9 {
		s.MaxLossUnbounded = true
	}

	if !s.MaxProfitUnbounded {
		s.MaxProfit = decimal.NewFromFloat(maxProfit).Round(4)
	}
	if !s.MaxLossUnbounded {
		s.MaxLoss = decimal.NewFromFloat(-maxLoss).Round(4) // 以正数表示最大亏损额
	}
}

// verticalAnalytics 垂直价差闭式捷径。
// 要求恰好两腿、同类型期权、一买一卖、数量与乘数一致；
// 不满足时返回 false 走网格扫描。
func (s *OptionStrategy) verticalAnalytics() bool {
	if len(s.Legs) != 2 {
		return false
	}
	a, b := s.Legs[0], s.Legs[1]
	if a.Class != InstrumentClassOption || b.Class != InstrumentClassOption {
		return false
	}
	if a.OptionType != b.OptionType || a.Side == b.Side {
		return false
	}
	if !a.Quantity.Equal(b.Quantity) || !a.Multiplier.Equal(b.Multiplier) {
		return false
	}

	width := a.StrikePrice.Sub(b.StrikePrice).Abs()
	scale := a.Quantity.Mul(a.Multiplier)
	widthAmt := width.Mul(scale)

	long, short := a, b
	if a.Side == SideSell {
		long, short = b, a
	}

	net := s.NetPremium // debit 为正
	if net.IsPositive() {
		// 借方价差：max loss = 净支出，max profit = 行权价宽度 - 净支出
		s.MaxLoss = net
		s.MaxProfit = widthAmt.Sub(net)
	} else {
		// 贷方价差：max profit = 净收入，max loss = 行权价宽度 - 净收入
		credit := net.Neg()
		s.MaxProfit = credit
		s.MaxLoss = widthAmt.Sub(credit)
	}

	perUnit := net.Div(scale)
	var be decimal.Decimal
	if a.OptionType == OptionTypeCall {
		// 以较低行权价为基准：bull call 加净支出，bear call 加净收入
		lowStrike := decimal.Min(long.StrikePrice, short.StrikePrice)
		be = lowStrike.Add(perUnit.Abs())
	} else {
		highStrike := decimal.Max(long.StrikePrice, short.StrikePrice)
		be = highStrike.Sub(perUnit.Abs())
	}
	s.BreakevenPoints = []decimal.Decimal{be.Round(4)}
	return true
}

// straddleAnalytics 买入跨式闭式捷径：同行权价一 call 一 put 双买。
func (s *OptionStrategy) straddleAnalytics() bool {
	if len(s.Legs) != 2 {
		return false
	}
	a, b := s.Legs[0], s.Legs[1]
	if a.Side != SideBuy || b.Side != SideBuy {
		return false
	}
	if a.OptionType == b.OptionType || !a.StrikePrice.Equal(b.StrikePrice) {
		return false
	}
	if !a.Quantity.Equal(b.Quantity) || !a.Multiplier.Equal(b.Multiplier) {
		return false
	}

	debit := s.NetPremium
	scale := a.Quantity.Mul(a.Multiplier)
	perUnit := debit.Div(scale)

	s.MaxLoss = debit
	s.MaxProfitUnbounded = true
	s.BreakevenPoints = []decimal.Decimal{
		a.StrikePrice.Sub(perUnit).Round(4),
		a.StrikePrice.Add(perUnit).Round(4),
	}
	return true
}
