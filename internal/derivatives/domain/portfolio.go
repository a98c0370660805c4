package domain

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// 参数法 VaR 直接按总名义价值的固定比例近似。
const parametricVaRRate = 0.05

// expiryBucketDays 到期分布桶的上界（天），最后追加一个 >365 桶。
var expiryBucketDays = []int{7, 14, 30, 60, 90, 180, 365}

// PortfolioPosition 参与组合聚合的一笔衍生品持仓。
type PortfolioPosition struct {
	InstrumentID string          `json:"instrument_id"`
	Symbol       string          `json:"symbol"`
	Class        InstrumentClass `json:"class"`
	Side         Side            `json:"side"`
	Quantity     decimal.Decimal `json:"quantity"`
	Multiplier   decimal.Decimal `json:"multiplier"`

	UnderlyingPrice decimal.Decimal `json:"underlying_price"`
	MarketPrice     decimal.Decimal `json:"market_price"`
	Volatility      decimal.Decimal `json:"volatility"`
	DaysToExpiry    int             `json:"days_to_expiry"`

	Greeks            *PositionGreeks `json:"greeks,omitempty"`
	MarginRequirement decimal.Decimal `json:"margin_requirement"`
}

// Notional 持仓名义价值：|数量| × 标的价 × 乘数。
func (p *PortfolioPosition) Notional() decimal.Decimal {
	return p.Quantity.Abs().Mul(p.UnderlyingPrice).Mul(p.Multiplier)
}

// ExpiryBucket 到期分布中的一个桶。
type ExpiryBucket struct {
	Label     string          `json:"label"` // 如 "0-7D"、">365D"
	MaxDays   int             `json:"max_days"`
	Notional  decimal.Decimal `json:"notional"`
	Positions int             `json:"positions"`
}

// DerivativesPortfolioAnalytics 组合级分析快照：净希腊字母、风险价值、
// 到期分布与保证金占用。空组合返回全零快照而非错误。
type DerivativesPortfolioAnalytics struct {
	ID       string `json:"id"`
	TenantID string `json:"tenant_id"`

	TotalPositions int             `json:"total_positions"`
	TotalNotional  decimal.Decimal `json:"total_notional"`
	NetGreeks      *PositionGreeks `json:"net_greeks"`

	ParametricVaR decimal.Decimal `json:"parametric_var"`
	VaR95         decimal.Decimal `json:"var_95"`
	VaR99         decimal.Decimal `json:"var_99"`
	ES95          decimal.Decimal `json:"es_95"`
	ES99          decimal.Decimal `json:"es_99"`

	ExpiryBuckets     []ExpiryBucket             `json:"expiry_buckets"`
	AllocationByClass map[InstrumentClass]decimal.Decimal `json:"allocation_by_class"` // 名义本金占比（百分比）

	MarginRequirement decimal.Decimal `json:"margin_requirement"`
	MarginUtilization decimal.Decimal `json:"margin_utilization"` // 百分比
	CalculatedAt      time.Time       `json:"calculated_at"`
}

// AggregatePortfolio 聚合组合持仓。各持仓的希腊字母按 BUY/SELL 符号
// 带方向汇总；VaR 先给参数法近似，再叠加蒙特卡洛口径。
// 空持仓集合返回全零聚合；非法方向或数量在任何计算开始前拒绝。
func AggregatePortfolio(id, tenantID string, positions []PortfolioPosition, accountEquity decimal.Decimal, mcSeed int64) (*DerivativesPortfolioAnalytics, error) {
	for _, p := range positions {
		if !p.Side.IsValid() {
			return nil, ErrInvalidLegSide
		}
		if !p.Quantity.IsPositive() {
			return nil, ErrInvalidQuantity
		}
	}

	analytics := &DerivativesPortfolioAnalytics{
		ID:                id,
		TenantID:          tenantID,
		TotalPositions:    len(positions),
		TotalNotional:     decimal.Zero,
		NetGreeks:         NewPositionGreeks(),
		ExpiryBuckets:     newExpiryBuckets(),
		AllocationByClass: make(map[InstrumentClass]decimal.Decimal),
		CalculatedAt:      time.Now(),
	}
	if len(positions) == 0 {
		return analytics, nil
	}

	margin := decimal.Zero
	weightedVol := decimal.Zero
	for _, p := range positions {
		notional := p.Notional()
		analytics.TotalNotional = analytics.TotalNotional.Add(notional)
		margin = margin.Add(p.MarginRequirement)
		weightedVol = weightedVol.Add(p.Volatility.Mul(notional))

		if p.Greeks != nil {
			sign := decimal.NewFromInt(int64(p.Side.Sign()))
			scale := sign.Mul(p.Quantity).Mul(p.Multiplier)
			analytics.NetGreeks = analytics.NetGreeks.Add(p.Greeks.Multiply(scale))
		}

		bucketPosition(analytics.ExpiryBuckets, p.DaysToExpiry, notional)
		prev := analytics.AllocationByClass[p.Class]
		analytics.AllocationByClass[p.Class] = prev.Add(notional)
	}

	// 持仓分布换算为名义本金占比（百分比）
	if analytics.TotalNotional.IsPositive() {
		for class, notional := range analytics.AllocationByClass {
			analytics.AllocationByClass[class] = notional.Div(analytics.TotalNotional).Mul(decimal.NewFromInt(100)).Round(4)
		}
	}

	analytics.ParametricVaR = analytics.TotalNotional.Mul(decimal.NewFromFloat(parametricVaRRate)).Round(4)
	analytics.MarginRequirement = margin.Round(4)
	if accountEquity.IsPositive() {
		analytics.MarginUtilization = margin.Div(accountEquity).Mul(decimal.NewFromInt(100)).Round(4)
	}

	if analytics.TotalNotional.IsPositive() {
		avgVol := weightedVol.Div(analytics.TotalNotional).InexactFloat64()
		mc := simulatePortfolioVaR(analytics.TotalNotional.InexactFloat64(), avgVol, mcSeed)
		analytics.VaR95 = mc.VaR95
		analytics.VaR99 = mc.VaR99
		analytics.ES95 = mc.ES95
		analytics.ES99 = mc.ES99
	}
	return analytics, nil
}

func newExpiryBuckets() []ExpiryBucket {
	buckets := make([]ExpiryBucket, 0, len(expiryBucketDays)+1)
	prev := 0
	for _, d := range expiryBucketDays {
		buckets = append(buckets, ExpiryBucket{
			Label:    bucketLabel(prev, d),
			MaxDays:  d,
			Notional: decimal.Zero,
		})
		prev = d
	}
	buckets = append(buckets, ExpiryBucket{Label: ">365D", MaxDays: math.MaxInt32, Notional: decimal.Zero})
	return buckets
}

func bucketLabel(from, to int) string {
	return decimal.NewFromInt(int64(from)).String() + "-" + decimal.NewFromInt(int64(to)).String() + "D"
}

func bucketPosition(buckets []ExpiryBucket, daysToExpiry int, notional decimal.Decimal) {
	if daysToExpiry < 0 {
		daysToExpiry = 0
	}
	for i := range buckets {
		if daysToExpiry <= buckets[i].MaxDays {
			buckets[i].Notional = buckets[i].Notional.Add(notional)
			buckets[i].Positions++
			return
		}
	}
}

// portfolioVaRResult 蒙特卡洛组合风险价值输出。
type portfolioVaRResult struct {
	VaR95 decimal.Decimal
	VaR99 decimal.Decimal
	ES95  decimal.Decimal
	ES99  decimal.Decimal
}

// simulatePortfolioVaR 对组合总名义价值跑一日持有期的几何布朗运动模拟，
// 取损益分布的 5%/1% 分位数为 VaR，尾部均值为 ES。
func simulatePortfolioVaR(notional, vol float64, seed int64) *portfolioVaRResult {
	const iterations = 10000
	horizon := 1.0 / 252

	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	r := rand.New(rand.NewSource(seed))

	pnl := make([]float64, iterations)
	drift := -0.5 * vol * vol * horizon
	diffusion := vol * math.Sqrt(horizon)
	for i := 0; i < iterations; i++ {
		z := r.NormFloat64()
		pnl[i] = notional * (math.Exp(drift+diffusion*z) - 1)
	}
	sort.Float64s(pnl)

	idx95 := iterations * 5 / 100
	idx99 := iterations * 1 / 100

	var sumTail95, sumTail99 float64
	for i := 0; i < idx95; i++ {
		sumTail95 += pnl[i]
	}
	for i := 0; i < idx99; i++ {
		sumTail99 += pnl[i]
	}

	return &portfolioVaRResult{
		VaR95: decimal.NewFromFloat(-pnl[idx95]).Round(4),
		VaR99: decimal.NewFromFloat(-pnl[idx99]).Round(4),
		ES95:  decimal.NewFromFloat(-sumTail95 / float64(idx95)).Round(4),
		ES99:  decimal.NewFromFloat(-sumTail99 / float64(idx99)).Round(4),
	}
}
