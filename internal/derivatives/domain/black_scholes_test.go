package domain

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func benchmarkInput() PricingInput {
	return PricingInput{
		OptionType:      OptionTypeCall,
		OptionStyle:     OptionStyleEuropean,
		UnderlyingPrice: 100,
		StrikePrice:     100,
		Volatility:      0.2,
		RiskFreeRate:    0.05,
		DividendYield:   0,
		TimeToExpiry:    1,
	}
}

func TestBlackScholesCallBenchmark(t *testing.T) {
	model := NewBlackScholesModel()
	result, err := model.PriceAndGreeks(context.Background(), benchmarkInput())
	require.NoError(t, err)

	// S=100, K=100, sigma=0.2, r=0.05, T=1 的标准教科书值
	assert.InDelta(t, 10.4506, result.Price, 1e-3)
	assert.InDelta(t, 0.6368, result.Greeks.Delta, 1e-3)
	assert.InDelta(t, 0.01876, result.Greeks.Gamma, 1e-4)
	assert.InDelta(t, 0.3752, result.Greeks.Vega, 1e-3)   // 每 1 个波动率百分点
	assert.InDelta(t, -0.01757, result.Greeks.Theta, 1e-4) // 每日
	assert.InDelta(t, 0.5323, result.Greeks.Rho, 1e-3)    // 每 1 个利率百分点
}

func TestBlackScholesPutCallParity(t *testing.T) {
	model := NewBlackScholesModel()
	callInput := benchmarkInput()
	putInput := benchmarkInput()
	putInput.OptionType = OptionTypePut

	call, err := model.PriceAndGreeks(context.Background(), callInput)
	require.NoError(t, err)
	put, err := model.PriceAndGreeks(context.Background(), putInput)
	require.NoError(t, err)

	// C - P = S - K*e^{-rT}
	parity := callInput.UnderlyingPrice - callInput.StrikePrice*math.Exp(-callInput.RiskFreeRate*callInput.TimeToExpiry)
	assert.InDelta(t, parity, call.Price-put.Price, 1e-6)

	// 认沽 delta = 认购 delta - e^{-qT}
	assert.InDelta(t, call.Greeks.Delta-1, put.Greeks.Delta, 1e-9)
	// gamma 与 vega 认购认沽相同
	assert.InDelta(t, call.Greeks.Gamma, put.Greeks.Gamma, 1e-9)
	assert.InDelta(t, call.Greeks.Vega, put.Greeks.Vega, 1e-9)
}

func TestBlackScholesDividendYieldLowersCall(t *testing.T) {
	model := NewBlackScholesModel()
	base := benchmarkInput()
	withYield := benchmarkInput()
	withYield.DividendYield = 0.03

	noDiv, err := model.PriceAndGreeks(context.Background(), base)
	require.NoError(t, err)
	div, err := model.PriceAndGreeks(context.Background(), withYield)
	require.NoError(t, err)

	assert.Less(t, div.Price, noDiv.Price)
}

func TestBlackScholesAmericanStyleWarns(t *testing.T) {
	model := NewBlackScholesModel()
	input := benchmarkInput()
	input.OptionStyle = OptionStyleAmerican

	result, err := model.PriceAndGreeks(context.Background(), input)
	require.NoError(t, err)
	assert.NotEmpty(t, result.Warnings)
}

func TestKernelRejectsInvalidInput(t *testing.T) {
	kernel := NewPricingKernel()

	bad := benchmarkInput()
	bad.UnderlyingPrice = 0
	_, err := kernel.PriceAndGreeks(context.Background(), PricingModelBlackScholes, bad)
	assert.ErrorIs(t, err, ErrInvalidUnderlyingPrice)

	bad = benchmarkInput()
	bad.Volatility = -0.1
	_, err = kernel.PriceAndGreeks(context.Background(), PricingModelBlackScholes, bad)
	assert.ErrorIs(t, err, ErrInvalidVolatility)

	_, err = kernel.PriceAndGreeks(context.Background(), "TRINOMIAL", benchmarkInput())
	assert.ErrorIs(t, err, ErrUnsupportedModel)
}

func TestKernelExpiredContract(t *testing.T) {
	kernel := NewPricingKernel()

	input := benchmarkInput()
	input.TimeToExpiry = 0
	input.UnderlyingPrice = 110

	result, err := kernel.PriceAndGreeks(context.Background(), PricingModelBlackScholes, input)
	require.NoError(t, err)
	assert.InDelta(t, 10, result.Price, 1e-9)
	assert.InDelta(t, 1, result.Greeks.Delta, 1e-9)
	assert.Zero(t, result.Greeks.Gamma)
	assert.NotEmpty(t, result.Warnings)

	// 到期的虚值认沽：价格与 delta 均为 0
	input.OptionType = OptionTypePut
	result, err = kernel.PriceAndGreeks(context.Background(), PricingModelBlackScholes, input)
	require.NoError(t, err)
	assert.Zero(t, result.Price)
	assert.Zero(t, result.Greeks.Delta)
}
