package domain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinomialConvergesToClosedForm(t *testing.T) {
	bs := NewBlackScholesModel()
	tree := NewBinomialModel(500)
	input := benchmarkInput()

	closed, err := bs.PriceAndGreeks(context.Background(), input)
	require.NoError(t, err)
	discrete, err := tree.PriceAndGreeks(context.Background(), input)
	require.NoError(t, err)

	assert.InDelta(t, closed.Price, discrete.Price, 0.02)
	assert.InDelta(t, closed.Greeks.Delta, discrete.Greeks.Delta, 0.01)
	assert.InDelta(t, closed.Greeks.Vega, discrete.Greeks.Vega, 0.01)
}

func TestBinomialAmericanPutPremium(t *testing.T) {
	tree := NewBinomialModel(200)

	european := benchmarkInput()
	european.OptionType = OptionTypePut
	european.UnderlyingPrice = 80 // 深度实值，提前行权有价值

	american := european
	american.OptionStyle = OptionStyleAmerican

	euResult, err := tree.PriceAndGreeks(context.Background(), european)
	require.NoError(t, err)
	amResult, err := tree.PriceAndGreeks(context.Background(), american)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, amResult.Price, euResult.Price)
	// 深度实值美式认沽不应低于内在价值
	assert.GreaterOrEqual(t, amResult.Price, 20.0-1e-9)
}

func TestBinomialDefaultSteps(t *testing.T) {
	tree := NewBinomialModel(0)
	result, err := tree.PriceAndGreeks(context.Background(), benchmarkInput())
	require.NoError(t, err)
	assert.Equal(t, 100, result.Steps)
}
