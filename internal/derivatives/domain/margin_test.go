package domain

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func futureMarginPosition() MarginPosition {
	return MarginPosition{
		InstrumentID:    "FUT-ES",
		Class:           InstrumentClassFuture,
		Side:            SideBuy,
		Quantity:        decimal.NewFromInt(1),
		Multiplier:      decimal.NewFromInt(1),
		UnderlyingPrice: decimal.NewFromInt(100),
		Volatility:      decimal.NewFromFloat(0.2),
	}
}

func TestMarginRejectsEmptyPositions(t *testing.T) {
	estimator := NewMarginEstimator(NewPricingKernel())
	_, err := estimator.Estimate(context.Background(), "M-1", "tenant-1", nil, decimal.Zero, nil)
	assert.ErrorIs(t, err, ErrEmptyPositions)
}

func TestMarginRejectsBadPosition(t *testing.T) {
	estimator := NewMarginEstimator(NewPricingKernel())

	pos := futureMarginPosition()
	pos.Side = "HOLD"
	_, err := estimator.Estimate(context.Background(), "M-1", "tenant-1", []MarginPosition{pos}, decimal.Zero, nil)
	assert.ErrorIs(t, err, ErrInvalidLegSide)

	pos = futureMarginPosition()
	pos.Quantity = decimal.NewFromInt(-1)
	_, err = estimator.Estimate(context.Background(), "M-1", "tenant-1", []MarginPosition{pos}, decimal.Zero, nil)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestMarginLinearPositionScenarios(t *testing.T) {
	estimator := NewMarginEstimator(NewPricingKernel())
	equity := decimal.NewFromInt(100)

	result, err := estimator.Estimate(context.Background(), "M-1", "tenant-1",
		[]MarginPosition{futureMarginPosition()}, equity, nil)
	require.NoError(t, err)

	// 多头线性仓：价格 -15% 情景亏 15，为最坏情景
	require.Len(t, result.Scenarios, 3)
	byName := map[string]MarginScenario{}
	for _, sc := range result.Scenarios {
		byName[sc.Name] = sc
	}
	assert.True(t, byName["BASE"].PortfolioPnL.IsZero())
	assert.True(t, byName["PRICE_DOWN_VOL_UP"].PortfolioPnL.Equal(decimal.NewFromInt(-15)))
	assert.True(t, byName["PRICE_UP_VOL_DOWN"].PortfolioPnL.Equal(decimal.NewFromInt(15)))
	assert.True(t, byName["PRICE_DOWN_VOL_UP"].WorstScenario)
	assert.False(t, byName["PRICE_UP_VOL_DOWN"].WorstScenario)

	assert.True(t, result.ScenarioMargin.Equal(decimal.NewFromInt(15)), "scenario=%s", result.ScenarioMargin)

	// 比例法：100 * (1+0.2) * 0.15 = 18 > 情景法 15，取较大者
	assert.True(t, result.InitialMargin.Equal(decimal.NewFromInt(18)), "initial=%s", result.InitialMargin)
	assert.True(t, result.MaintenanceMargin.Equal(decimal.NewFromInt(12)), "maintenance=%s", result.MaintenanceMargin)
	assert.True(t, result.RequiredMargin.Equal(decimal.NewFromInt(18)), "required=%s", result.RequiredMargin)

	assert.True(t, result.ExcessLiquidity.Equal(decimal.NewFromInt(82)))
	assert.True(t, result.MarginUtilization.Equal(decimal.NewFromInt(18)))
}

func TestMarginShortCallWorstOnUpside(t *testing.T) {
	estimator := NewMarginEstimator(NewPricingKernel())

	pos := MarginPosition{
		InstrumentID:    "OPT-AAPL-C-100",
		Class:           InstrumentClassOption,
		OptionType:      OptionTypeCall,
		StrikePrice:     decimal.NewFromInt(100),
		Side:            SideSell,
		Quantity:        decimal.NewFromInt(1),
		Multiplier:      decimal.NewFromInt(100),
		UnderlyingPrice: decimal.NewFromInt(100),
		MarketPrice:     decimal.NewFromFloat(10.4506),
		Volatility:      decimal.NewFromFloat(0.2),
		TimeToExpiry:    decimal.NewFromInt(1),
		RiskFreeRate:    decimal.NewFromFloat(0.05),
	}

	result, err := estimator.Estimate(context.Background(), "M-2", "tenant-1",
		[]MarginPosition{pos}, decimal.NewFromInt(10000), nil)
	require.NoError(t, err)

	// 卖出认购在价格上行情景亏损最大
	var worst MarginScenario
	for _, sc := range result.Scenarios {
		if sc.WorstScenario {
			worst = sc
		}
	}
	assert.Equal(t, "PRICE_UP_VOL_DOWN", worst.Name)
	assert.True(t, worst.PortfolioPnL.IsNegative())
	assert.True(t, result.ScenarioMargin.IsPositive())
	assert.True(t, result.RequiredMargin.GreaterThanOrEqual(result.ScenarioMargin))
	assert.True(t, result.RequiredMargin.GreaterThanOrEqual(result.InitialMargin))
}

func TestMarginCustomScenarioMonotonicity(t *testing.T) {
	estimator := NewMarginEstimator(NewPricingKernel())
	positions := []MarginPosition{futureMarginPosition()}

	grid := func(shock float64) []MarginScenario {
		return []MarginScenario{
			{Name: "BASE", PriceShock: decimal.Zero, VolShock: decimal.Zero},
			{Name: "DOWN", PriceShock: decimal.NewFromFloat(-shock), VolShock: decimal.NewFromFloat(0.25)},
			{Name: "UP", PriceShock: decimal.NewFromFloat(shock), VolShock: decimal.NewFromFloat(-0.25)},
		}
	}

	small, err := estimator.Estimate(context.Background(), "M-1", "tenant-1", positions, decimal.NewFromInt(100), grid(0.10))
	require.NoError(t, err)
	large, err := estimator.Estimate(context.Background(), "M-2", "tenant-1", positions, decimal.NewFromInt(100), grid(0.20))
	require.NoError(t, err)

	// 自定义网格原样回显，不退回默认网格
	require.Len(t, small.Scenarios, 3)
	assert.Equal(t, "DOWN", small.Scenarios[1].Name)

	// 净多头线性仓：冲击 10% 亏 10，冲击 20% 亏 20，幅度加大最坏亏损只增不减
	assert.True(t, small.ScenarioMargin.Equal(decimal.NewFromInt(10)), "small=%s", small.ScenarioMargin)
	assert.True(t, large.ScenarioMargin.Equal(decimal.NewFromInt(20)), "large=%s", large.ScenarioMargin)
	assert.True(t, large.ScenarioMargin.GreaterThanOrEqual(small.ScenarioMargin))
	assert.True(t, large.RequiredMargin.GreaterThanOrEqual(small.RequiredMargin))
}

func TestMarginCustomScenariosDoNotMutateCallerSlice(t *testing.T) {
	estimator := NewMarginEstimator(NewPricingKernel())
	scenarios := []MarginScenario{
		{Name: "BASE", PriceShock: decimal.Zero, VolShock: decimal.Zero},
		{Name: "CRASH", PriceShock: decimal.NewFromFloat(-0.30), VolShock: decimal.NewFromFloat(0.50)},
	}

	result, err := estimator.Estimate(context.Background(), "M-1", "tenant-1",
		[]MarginPosition{futureMarginPosition()}, decimal.NewFromInt(100), scenarios)
	require.NoError(t, err)

	require.Len(t, result.Scenarios, 2)
	assert.True(t, result.Scenarios[1].WorstScenario)
	// 调用方切片保持原样
	assert.False(t, scenarios[1].WorstScenario)
	assert.True(t, scenarios[1].PortfolioPnL.IsZero())
}
