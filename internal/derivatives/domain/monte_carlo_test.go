package domain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonteCarloMatchesClosedForm(t *testing.T) {
	bs := NewBlackScholesModel()
	mc := NewMonteCarloModel(100000, 42) // 固定种子保证可重复

	input := benchmarkInput()
	closed, err := bs.PriceAndGreeks(context.Background(), input)
	require.NoError(t, err)
	simulated, err := mc.PriceAndGreeks(context.Background(), input)
	require.NoError(t, err)

	require.Positive(t, simulated.StandardError)
	assert.Less(t, simulated.StandardError, 0.1)

	// 蒙特卡洛结果带标准误，用 4 倍标准误作为容差
	assert.InDelta(t, closed.Price, simulated.Price, 4*simulated.StandardError)
	assert.InDelta(t, closed.Greeks.Delta, simulated.Greeks.Delta, 0.01)
	assert.InDelta(t, closed.Greeks.Vega, simulated.Greeks.Vega, 0.02)
}

func TestMonteCarloDeterministicWithSeed(t *testing.T) {
	input := benchmarkInput()

	first, err := NewMonteCarloModel(20000, 7).PriceAndGreeks(context.Background(), input)
	require.NoError(t, err)
	second, err := NewMonteCarloModel(20000, 7).PriceAndGreeks(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, first.Price, second.Price)
	assert.Equal(t, first.Greeks.Delta, second.Greeks.Delta)
}

func TestMonteCarloPutPrice(t *testing.T) {
	bs := NewBlackScholesModel()
	mc := NewMonteCarloModel(100000, 99)

	input := benchmarkInput()
	input.OptionType = OptionTypePut

	closed, err := bs.PriceAndGreeks(context.Background(), input)
	require.NoError(t, err)
	simulated, err := mc.PriceAndGreeks(context.Background(), input)
	require.NoError(t, err)

	assert.InDelta(t, closed.Price, simulated.Price, 4*simulated.StandardError+0.01)
	assert.Negative(t, simulated.Greeks.Delta)
}
