package domain

import (
	"context"
	"math"
)

const defaultBinomialSteps = 100

// BinomialModel Cox-Ross-Rubinstein 重组二叉树模型。
// 美式合约在每个节点取 max(持有价值, 内在价值) 以体现提前行权；
// 希腊字母通过在树根上做有限差分得到（spot/vol/rate ±1%，theta 用
// 少一天的树重算），离散化误差下界约为 O(1/steps)。需要精确一阶
// 希腊字母的欧式香草期权调用方应选择闭式模型。
type BinomialModel struct {
	defaultSteps int
}

func NewBinomialModel(steps int) *BinomialModel {
	if steps <= 0 {
		steps = defaultBinomialSteps
	}
	return &BinomialModel{defaultSteps: steps}
}

func (bm *BinomialModel) Type() PricingModelType {
	return PricingModelBinomial
}

func (bm *BinomialModel) PriceAndGreeks(_ context.Context, input PricingInput) (*PricingResult, error) {
	steps := input.Steps
	if steps <= 0 {
		steps = bm.defaultSteps
	}

	price, warnings := bm.treePrice(input, steps)

	S := input.UnderlyingPrice
	sigma := input.Volatility
	r := input.RiskFreeRate

	bump := func(modify func(*PricingInput)) float64 {
		bumped := input
		modify(&bumped)
		p, _ := bm.treePrice(bumped, steps)
		return p
	}

	dS := 0.01 * S
	priceUp := bump(func(in *PricingInput) { in.UnderlyingPrice = S + dS })
	priceDown := bump(func(in *PricingInput) { in.UnderlyingPrice = S - dS })
	delta := (priceUp - priceDown) / (2 * dS)
	gamma := (priceUp - 2*price + priceDown) / (dS * dS)

	dV := 0.01
	vegaUp := bump(func(in *PricingInput) { in.Volatility = sigma + dV })
	vegaDown := bump(func(in *PricingInput) { in.Volatility = math.Max(sigma-dV, 1e-4) })
	vega := (vegaUp - vegaDown) / 2 // 已是按 1% 变动

	dR := 0.01
	rhoUp := bump(func(in *PricingInput) { in.RiskFreeRate = r + dR })
	rhoDown := bump(func(in *PricingInput) { in.RiskFreeRate = r - dR })
	rho := (rhoUp - rhoDown) / 2

	// theta：缩短一天重建树
	oneDay := 1.0 / 365
	theta := 0.0
	if input.TimeToExpiry > oneDay {
		shorter := bump(func(in *PricingInput) { in.TimeToExpiry = input.TimeToExpiry - oneDay })
		theta = shorter - price
	}

	return &PricingResult{
		Price: price,
		Greeks: Greeks{
			Delta: delta,
			Gamma: gamma,
			Theta: theta,
			Vega:  vega,
			Rho:   rho,
		},
		Model:    PricingModelBinomial,
		Steps:    steps,
		Warnings: warnings,
	}, nil
}

// treePrice 单次 CRR 树定价。
func (bm *BinomialModel) treePrice(input PricingInput, steps int) (float64, []string) {
	S := input.UnderlyingPrice
	K := input.StrikePrice
	T := input.TimeToExpiry
	r := input.RiskFreeRate
	q := input.DividendYield
	sigma := input.Volatility

	dt := T / float64(steps)
	u := math.Exp(sigma * math.Sqrt(dt))
	d := 1 / u
	p := (math.Exp((r-q)*dt) - d) / (u - d)
	disc := math.Exp(-r * dt)

	var warnings []string
	if p < 0 || p > 1 {
		warnings = append(warnings, "risk-neutral probability outside [0,1], tree parameters degenerate")
		p = math.Min(math.Max(p, 0), 1)
	}

	american := input.OptionStyle == OptionStyleAmerican

	// 到期层 payoff
	values := make([]float64, steps+1)
	for i := 0; i <= steps; i++ {
		sT := S * math.Pow(u, float64(i)) * math.Pow(d, float64(steps-i))
		values[i] = intrinsicValue(input.OptionType, sT, K)
	}

	// 向后归纳
	for step := steps - 1; step >= 0; step-- {
		for i := 0; i <= step; i++ {
			continuation := disc * (p*values[i+1] + (1-p)*values[i])
			if american {
				sNode := S * math.Pow(u, float64(i)) * math.Pow(d, float64(step-i))
				values[i] = math.Max(continuation, intrinsicValue(input.OptionType, sNode, K))
			} else {
				values[i] = continuation
			}
		}
	}

	return values[0], warnings
}
