package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func portfolioOptionPosition(side Side, daysToExpiry int, greeks *PositionGreeks) PortfolioPosition {
	return PortfolioPosition{
		InstrumentID:    "OPT-AAPL-C-100",
		Class:           InstrumentClassOption,
		Side:            side,
		Quantity:        decimal.NewFromInt(1),
		Multiplier:      decimal.NewFromInt(100),
		UnderlyingPrice: decimal.NewFromInt(100),
		MarketPrice:     decimal.NewFromFloat(10.45),
		Volatility:      decimal.NewFromFloat(0.2),
		DaysToExpiry:    daysToExpiry,
		Greeks:          greeks,
	}
}

func TestAggregateEmptyPortfolio(t *testing.T) {
	analytics, err := AggregatePortfolio("P-1", "tenant-1", nil, decimal.Zero, 1)
	require.NoError(t, err)

	assert.Equal(t, 0, analytics.TotalPositions)
	assert.True(t, analytics.TotalNotional.IsZero())
	assert.True(t, analytics.ParametricVaR.IsZero())
	assert.True(t, analytics.VaR95.IsZero())
	assert.True(t, analytics.NetGreeks.Delta.IsZero())
	// 空组合也返回完整的桶骨架
	require.Len(t, analytics.ExpiryBuckets, 8)
	for _, b := range analytics.ExpiryBuckets {
		assert.True(t, b.Notional.IsZero())
		assert.Zero(t, b.Positions)
	}
}

func TestAggregateNetGreeksSigning(t *testing.T) {
	greeks := &PositionGreeks{Delta: decimal.NewFromFloat(0.6), Vega: decimal.NewFromFloat(0.37)}

	long := portfolioOptionPosition(SideBuy, 30, greeks)
	short := portfolioOptionPosition(SideSell, 30, greeks)

	analytics, err := AggregatePortfolio("P-1", "tenant-1", []PortfolioPosition{long, short}, decimal.Zero, 1)
	require.NoError(t, err)

	// 一买一卖互相抵消
	assert.True(t, analytics.NetGreeks.Delta.IsZero(), "delta=%s", analytics.NetGreeks.Delta)
	assert.True(t, analytics.NetGreeks.Vega.IsZero())
	// 名义价值不轧差：2 * 100 * 100
	assert.True(t, analytics.TotalNotional.Equal(decimal.NewFromInt(20000)))
	// 参数法 VaR = 名义价值的 5%
	assert.True(t, analytics.ParametricVaR.Equal(decimal.NewFromInt(1000)), "var=%s", analytics.ParametricVaR)
}

func TestAggregateExpiryBuckets(t *testing.T) {
	positions := []PortfolioPosition{
		portfolioOptionPosition(SideBuy, 3, nil),   // 0-7D
		portfolioOptionPosition(SideBuy, 7, nil),   // 0-7D（含上界）
		portfolioOptionPosition(SideBuy, 45, nil),  // 30-60D
		portfolioOptionPosition(SideBuy, 400, nil), // >365D
		portfolioOptionPosition(SideBuy, -2, nil),  // 已到期归入 0-7D
	}

	analytics, err := AggregatePortfolio("P-1", "tenant-1", positions, decimal.Zero, 1)
	require.NoError(t, err)

	byLabel := map[string]ExpiryBucket{}
	for _, b := range analytics.ExpiryBuckets {
		byLabel[b.Label] = b
	}
	assert.Equal(t, 3, byLabel["0-7D"].Positions)
	assert.Equal(t, 1, byLabel["30-60D"].Positions)
	assert.Equal(t, 1, byLabel[">365D"].Positions)
	assert.Equal(t, 0, byLabel["7-14D"].Positions)
	assert.True(t, byLabel["30-60D"].Notional.Equal(decimal.NewFromInt(10000)))
}

func TestAggregateMarginAndAllocation(t *testing.T) {
	opt := portfolioOptionPosition(SideBuy, 30, nil)
	opt.MarginRequirement = decimal.NewFromInt(1800)

	fut := PortfolioPosition{
		InstrumentID:    "FUT-ES",
		Class:           InstrumentClassFuture,
		Side:            SideSell,
		Quantity:        decimal.NewFromInt(2),
		Multiplier:      decimal.NewFromInt(50),
		UnderlyingPrice: decimal.NewFromInt(100),
		Volatility:      decimal.NewFromFloat(0.15),
		DaysToExpiry:    90,
		MarginRequirement: decimal.NewFromInt(1200),
	}

	analytics, err := AggregatePortfolio("P-1", "tenant-1", []PortfolioPosition{opt, fut},
		decimal.NewFromInt(30000), 1)
	require.NoError(t, err)

	assert.True(t, analytics.MarginRequirement.Equal(decimal.NewFromInt(3000)))
	// 3000 / 30000 = 10%
	assert.True(t, analytics.MarginUtilization.Equal(decimal.NewFromInt(10)), "util=%s", analytics.MarginUtilization)
	// 两类各占名义本金 10000/20000 = 50%
	assert.True(t, analytics.AllocationByClass[InstrumentClassOption].Equal(decimal.NewFromInt(50)), "opt=%s", analytics.AllocationByClass[InstrumentClassOption])
	assert.True(t, analytics.AllocationByClass[InstrumentClassFuture].Equal(decimal.NewFromInt(50)), "fut=%s", analytics.AllocationByClass[InstrumentClassFuture])
}

func TestAggregateVaRDeterministicWithSeed(t *testing.T) {
	positions := []PortfolioPosition{portfolioOptionPosition(SideBuy, 30, nil)}

	a, err := AggregatePortfolio("P-1", "tenant-1", positions, decimal.Zero, 42)
	require.NoError(t, err)
	b, err := AggregatePortfolio("P-2", "tenant-1", positions, decimal.Zero, 42)
	require.NoError(t, err)

	assert.True(t, a.VaR95.Equal(b.VaR95))
	assert.True(t, a.VaR99.Equal(b.VaR99))
	assert.True(t, a.ES95.Equal(b.ES95))
	assert.True(t, a.ES99.Equal(b.ES99))

	// 更深的尾部分位数更保守
	assert.True(t, a.VaR99.GreaterThan(a.VaR95))
	assert.True(t, a.ES95.GreaterThan(a.VaR95))
	assert.True(t, a.ES99.GreaterThanOrEqual(a.VaR99))
}

func TestAggregateRejectsInvalidPosition(t *testing.T) {
	greeks := &PositionGreeks{Delta: decimal.NewFromFloat(0.6)}

	held := portfolioOptionPosition("HOLD", 30, greeks)
	analytics, err := AggregatePortfolio("P-1", "tenant-1", []PortfolioPosition{held}, decimal.Zero, 1)
	// 非法方向不允许按多头默认符号聚合
	assert.ErrorIs(t, err, ErrInvalidLegSide)
	assert.Nil(t, analytics)

	zero := portfolioOptionPosition(SideBuy, 30, greeks)
	zero.Quantity = decimal.Zero
	_, err = AggregatePortfolio("P-1", "tenant-1", []PortfolioPosition{zero}, decimal.Zero, 1)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}
