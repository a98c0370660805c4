package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstValuationHasNoAttribution(t *testing.T) {
	contract := testOptionContract()
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	v := NewMarkToMarketValuation(
		"MTM-1", "tenant-1", contract, date,
		decimal.NewFromFloat(10.45), decimal.NewFromFloat(10.4506),
		decimal.NewFromFloat(0.2), decimal.NewFromInt(10), decimal.Zero,
		NewPositionGreeks(), decimal.Zero, nil)

	// 市值 = 10 * 10.45 * 100
	assert.True(t, v.MarketValue.Equal(decimal.NewFromInt(10450)), "mv=%s", v.MarketValue)
	assert.True(t, v.DailyPnL.IsZero())
	assert.Nil(t, v.Attribution)

	// 平值合约：内在价值为零，全部是时间价值；未给建仓价则累计损益为零
	assert.True(t, v.IntrinsicValue.IsZero())
	assert.True(t, v.TimeValue.Equal(decimal.NewFromFloat(10.45)), "tv=%s", v.TimeValue)
	assert.True(t, v.UnrealizedPnL.IsZero())
}

func TestIntrinsicTimeSplitAndUnrealized(t *testing.T) {
	contract := testOptionContract()
	contract.UnderlyingPrice = decimal.NewFromInt(108)
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	v := NewMarkToMarketValuation(
		"MTM-1", "tenant-1", contract, date,
		decimal.NewFromFloat(12.5), decimal.NewFromFloat(12.4),
		decimal.NewFromFloat(0.2), decimal.NewFromInt(10), decimal.NewFromFloat(10.45),
		NewPositionGreeks(), decimal.Zero, nil)

	// S=108, K=100 的看涨：内在 8，时间价值 12.5-8=4.5
	assert.True(t, v.IntrinsicValue.Equal(decimal.NewFromInt(8)), "iv=%s", v.IntrinsicValue)
	assert.True(t, v.TimeValue.Equal(decimal.NewFromFloat(4.5)), "tv=%s", v.TimeValue)

	// 累计损益 = (12.5 - 10.45) * 10 * 100 = 2050
	assert.True(t, v.UnrealizedPnL.Equal(decimal.NewFromInt(2050)), "upnl=%s", v.UnrealizedPnL)
}

func TestAttributionResidualIdentity(t *testing.T) {
	contract := testOptionContract()
	day1 := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	day2 := day1.Add(24 * time.Hour)

	// 持仓口径希腊字母快照（已含数量与乘数）
	greeks := &PositionGreeks{
		Delta: decimal.NewFromInt(637), // 0.637 * 10 * 100
		Gamma: decimal.NewFromFloat(18.76),
		Theta: decimal.NewFromFloat(-17.57),
		Vega:  decimal.NewFromFloat(375.2),
		Rho:   decimal.NewFromFloat(532.3),
	}

	prev := NewMarkToMarketValuation(
		"MTM-1", "tenant-1", contract, day1,
		decimal.NewFromFloat(10.45), decimal.NewFromFloat(10.4506),
		decimal.NewFromFloat(0.2), decimal.NewFromInt(10), decimal.Zero,
		greeks, decimal.Zero, nil)

	next := testOptionContract()
	next.UnderlyingPrice = decimal.NewFromInt(102)

	cur := NewMarkToMarketValuation(
		"MTM-2", "tenant-1", next, day2,
		decimal.NewFromFloat(11.90), decimal.NewFromFloat(11.88),
		decimal.NewFromFloat(0.21), decimal.NewFromInt(10), decimal.Zero,
		greeks, decimal.NewFromFloat(0.001), prev)

	require.NotNil(t, cur.Attribution)
	attr := cur.Attribution

	// 实际损益 = (11.90 - 10.45) * 10 * 100 = 1450
	assert.True(t, cur.DailyPnL.Equal(decimal.NewFromInt(1450)), "pnl=%s", cur.DailyPnL)

	// dS=2: delta 项 637*2=1274，gamma 项 0.5*18.76*4=37.52
	assert.True(t, attr.DeltaPnL.Equal(decimal.NewFromInt(1274)), "delta=%s", attr.DeltaPnL)
	assert.True(t, attr.GammaPnL.Equal(decimal.NewFromFloat(37.52)), "gamma=%s", attr.GammaPnL)
	// 过了 1 天：theta 项 -17.57
	assert.True(t, attr.ThetaPnL.Equal(decimal.NewFromFloat(-17.57)), "theta=%s", attr.ThetaPnL)
	// dσ = +1 个百分点：vega 项 375.2；dr = +0.1 个百分点：rho 项 53.23
	assert.True(t, attr.VegaPnL.Equal(decimal.NewFromFloat(375.2)), "vega=%s", attr.VegaPnL)
	assert.True(t, attr.RhoPnL.Equal(decimal.NewFromFloat(53.23)), "rho=%s", attr.RhoPnL)

	// 残差恒等式：实际损益 = 各项之和 + 残差
	explained := attr.DeltaPnL.Add(attr.GammaPnL).Add(attr.ThetaPnL).Add(attr.VegaPnL).Add(attr.RhoPnL)
	assert.True(t, cur.DailyPnL.Sub(explained).Equal(attr.Residual),
		"residual=%s explained=%s", attr.Residual, explained)
}

func TestAttributionMissingPreviousGreeks(t *testing.T) {
	contract := testOptionContract()
	day1 := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	prev := NewMarkToMarketValuation(
		"MTM-1", "tenant-1", contract, day1,
		decimal.NewFromFloat(10.45), decimal.NewFromFloat(10.4506),
		decimal.NewFromFloat(0.2), decimal.NewFromInt(10), decimal.Zero,
		nil, decimal.Zero, nil)

	cur := NewMarkToMarketValuation(
		"MTM-2", "tenant-1", contract, day1.Add(24*time.Hour),
		decimal.NewFromFloat(11), decimal.NewFromFloat(11),
		decimal.NewFromFloat(0.2), decimal.NewFromInt(10), decimal.Zero,
		nil, decimal.Zero, prev)

	// 缺少基准希腊字母时全部解释量为零，残差 = 全部日内损益
	require.NotNil(t, cur.Attribution)
	assert.True(t, cur.Attribution.DeltaPnL.IsZero())
	assert.True(t, cur.Attribution.Residual.Equal(cur.DailyPnL))
}
