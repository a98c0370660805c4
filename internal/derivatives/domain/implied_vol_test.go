package domain

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIVSolverRoundTrip(t *testing.T) {
	kernel := NewPricingKernel()
	solver := NewIVSolver(kernel)
	bs := NewBlackScholesModel()

	for _, trueVol := range []float64{0.05, 0.15, 0.3, 0.6, 1.0} {
		input := benchmarkInput()
		input.Volatility = trueVol

		priced, err := bs.PriceAndGreeks(context.Background(), input)
		require.NoError(t, err)

		solve, err := solver.Solve(context.Background(), PricingModelBlackScholes, input, priced.Price)
		require.NoError(t, err)
		assert.True(t, solve.Converged, "vol=%v should converge", trueVol)
		assert.InDelta(t, trueVol, solve.ImpliedVolatility, 1e-3)
	}
}

func TestIVSolverRejectsBadMarketPrice(t *testing.T) {
	solver := NewIVSolver(NewPricingKernel())

	_, err := solver.Solve(context.Background(), PricingModelBlackScholes, benchmarkInput(), 0)
	assert.ErrorIs(t, err, ErrInvalidMarketPrice)

	_, err = solver.Solve(context.Background(), PricingModelBlackScholes, benchmarkInput(), -1)
	assert.ErrorIs(t, err, ErrInvalidMarketPrice)
}

func TestIVSolverDeepOTMWarnsInsteadOfFailing(t *testing.T) {
	solver := NewIVSolver(NewPricingKernel())

	input := benchmarkInput()
	input.StrikePrice = 500
	input.TimeToExpiry = 0.01

	// 深度虚值短期限：市场价远高于任何可达模型价，解不收敛但不报错
	solve, err := solver.Solve(context.Background(), PricingModelBlackScholes, input, 50)
	require.NoError(t, err)
	if !solve.Converged {
		assert.NotEmpty(t, solve.Warnings)
	}
}

func TestBuildIVAnalysisRank(t *testing.T) {
	option := testOptionContract()
	solve := &IVSolveResult{ImpliedVolatility: 0.3, Iterations: 5, Converged: true}
	history := []float64{0.1, 0.2, 0.25, 0.3, 0.4}

	analysis := BuildIVAnalysis("IVA-1", option, PricingModelBlackScholes, solve, history, 30)

	// 5 个观测中 4 个 <= 0.3
	assert.True(t, analysis.IVRank.Equal(decimal.NewFromInt(80)), "rank=%s", analysis.IVRank)
	assert.Equal(t, 5, analysis.WindowObservations)
	assert.True(t, analysis.Confidence95Lower.LessThan(analysis.ImpliedVolatility))
	assert.True(t, analysis.Confidence95Upper.GreaterThan(analysis.ImpliedVolatility))
}

func TestBuildIVAnalysisEmptyHistory(t *testing.T) {
	option := testOptionContract()
	solve := &IVSolveResult{ImpliedVolatility: 0.3, Iterations: 3, Converged: true}

	analysis := BuildIVAnalysis("IVA-2", option, PricingModelBlackScholes, solve, nil, 30)
	assert.True(t, analysis.IVRank.IsZero())
	assert.Zero(t, analysis.WindowObservations)
}

func TestHistoricalVolatility(t *testing.T) {
	// 恒定对数收益率序列：波动率为 0
	flat := []float64{100, 101, 102.01, 103.0301}
	vol, err := HistoricalVolatility(flat)
	require.NoError(t, err)
	assert.InDelta(t, 0, vol, 1e-6)

	_, err = HistoricalVolatility([]float64{100})
	assert.Error(t, err)

	_, err = HistoricalVolatility([]float64{100, -5})
	assert.Error(t, err)
}
