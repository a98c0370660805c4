package domain

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/shopspring/decimal"
)

const (
	ivInitialGuess  = 0.3
	ivLowerBound    = 0.001
	ivUpperBound    = 3.0
	ivTolerance     = 1e-4
	ivMaxIterations = 100
	ivVegaEpsilon   = 1e-10
)

// IVSolver 用牛顿迭代反解定价内核的隐含波动率。
// 不收敛时返回最优估计并附带告警而不抛错：构建波动率曲面的
// 调用方需要每个行权价都有值，哪怕收敛是边缘性的。
type IVSolver struct {
	kernel *PricingKernel
}

func NewIVSolver(kernel *PricingKernel) *IVSolver {
	return &IVSolver{kernel: kernel}
}

// IVSolveResult 单次求解的结果与收敛凭证。
type IVSolveResult struct {
	ImpliedVolatility float64
	Iterations        int
	Converged         bool
	Warnings          []string
}

// Solve 求解使模型价格复现市场价的波动率。
// 每步用内核重新定价取得 vega；vega 接近 0（深度实/虚值或临近到期）
// 时中止当前步而不是除以近零值。
func (s *IVSolver) Solve(ctx context.Context, model PricingModelType, input PricingInput, marketPrice float64) (*IVSolveResult, error) {
	if marketPrice <= 0 {
		return nil, fmt.Errorf("%w: market price %v", ErrInvalidMarketPrice, marketPrice)
	}
	if input.UnderlyingPrice <= 0 {
		return nil, fmt.Errorf("%w: S=%v", ErrInvalidUnderlyingPrice, input.UnderlyingPrice)
	}

	sigma := ivInitialGuess
	result := &IVSolveResult{ImpliedVolatility: sigma}

	for i := 0; i < ivMaxIterations; i++ {
		result.Iterations = i + 1

		trial := input
		trial.Volatility = sigma
		priced, err := s.kernel.PriceAndGreeks(ctx, model, trial)
		if err != nil {
			return nil, err
		}

		diff := priced.Price - marketPrice
		if math.Abs(diff) < ivTolerance {
			result.ImpliedVolatility = sigma
			result.Converged = true
			return result, nil
		}

		vegaRaw := priced.Greeks.Vega * 100 // 还原为按单位波动率的敏感度
		if math.Abs(vegaRaw) < ivVegaEpsilon {
			result.ImpliedVolatility = sigma
			result.Warnings = append(result.Warnings,
				"vega near zero, newton step aborted (deep ITM/OTM or near expiry)")
			return result, nil
		}

		sigma -= diff / vegaRaw
		if sigma < ivLowerBound {
			sigma = ivLowerBound
		} else if sigma > ivUpperBound {
			sigma = ivUpperBound
		}
		result.ImpliedVolatility = sigma
	}

	result.Warnings = append(result.Warnings,
		fmt.Sprintf("iv solver hit iteration cap (%d), returning best estimate", ivMaxIterations))
	return result, nil
}

// ImpliedVolatilityAnalysis 分析日维度的 IV 快照：求解出的 IV、
// 历史波动率背景、在回看窗口内的百分位，以及 ±1.96σ 的置信区间。
// 注意置信区间是统计量而非硬性约束，不保证包含当前 IV。
type ImpliedVolatilityAnalysis struct {
	ID           string          `json:"id"`
	TenantID     string          `json:"tenant_id"`
	InstrumentID string          `json:"instrument_id"`
	Symbol       string          `json:"symbol"`
	AnalysisDate time.Time       `json:"analysis_date"`
	Model        PricingModelType `json:"model"`

	ImpliedVolatility  decimal.Decimal `json:"implied_volatility"`
	HistoricalVolMean  decimal.Decimal `json:"historical_vol_mean"`
	IVRank             decimal.Decimal `json:"iv_rank"`
	Confidence95Lower  decimal.Decimal `json:"confidence_95_lower"`
	Confidence95Upper  decimal.Decimal `json:"confidence_95_upper"`
	WindowDays         int             `json:"window_days"`
	WindowObservations int             `json:"window_observations"`

	Iterations   int      `json:"iterations"`
	Converged    bool     `json:"converged"`
	Warnings     []string `json:"warnings,omitempty"`
	CalculatedAt time.Time `json:"calculated_at"`
}

// BuildIVAnalysis 基于回看窗口内的历史 IV 观测构建分析记录。
// rank = count(v <= solved) / N * 100，恒在 [0,100]。
func BuildIVAnalysis(id string, option *OptionContract, model PricingModelType, solve *IVSolveResult, history []float64, windowDays int) *ImpliedVolatilityAnalysis {
	analysis := &ImpliedVolatilityAnalysis{
		ID:                 id,
		TenantID:           option.TenantID,
		InstrumentID:       option.InstrumentID,
		Symbol:             option.Symbol,
		AnalysisDate:       time.Now().Truncate(24 * time.Hour),
		Model:              model,
		ImpliedVolatility:  decimal.NewFromFloat(solve.ImpliedVolatility),
		WindowDays:         windowDays,
		WindowObservations: len(history),
		Iterations:         solve.Iterations,
		Converged:          solve.Converged,
		Warnings:           solve.Warnings,
		CalculatedAt:       time.Now(),
	}

	if len(history) == 0 {
		return analysis
	}

	count := 0
	for _, v := range history {
		if v <= solve.ImpliedVolatility {
			count++
		}
	}
	rank := float64(count) / float64(len(history)) * 100
	analysis.IVRank = decimal.NewFromFloat(rank)

	mean, _ := stats.Mean(history)
	analysis.HistoricalVolMean = decimal.NewFromFloat(mean)

	if len(history) > 1 {
		stdDev, err := stats.StandardDeviationSample(history)
		if err == nil {
			analysis.Confidence95Lower = decimal.NewFromFloat(solve.ImpliedVolatility - 1.96*stdDev)
			analysis.Confidence95Upper = decimal.NewFromFloat(solve.ImpliedVolatility + 1.96*stdDev)
		}
	}
	return analysis
}

// HistoricalVolatility 从收盘价序列计算年化历史波动率
// （对数收益率样本标准差 × sqrt(252)）。
func HistoricalVolatility(closes []float64) (float64, error) {
	if len(closes) < 2 {
		return 0, fmt.Errorf("historical volatility requires at least 2 closes, got %d", len(closes))
	}
	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] <= 0 || closes[i] <= 0 {
			return 0, fmt.Errorf("close prices must be positive")
		}
		returns = append(returns, math.Log(closes[i]/closes[i-1]))
	}
	stdDev, err := stats.StandardDeviationSample(returns)
	if err != nil {
		return 0, err
	}
	return stdDev * math.Sqrt(252), nil
}
