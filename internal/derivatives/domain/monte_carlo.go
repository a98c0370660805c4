package domain

import (
	"context"
	"math"
	"math/rand"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
)

const defaultMonteCarloPaths = 10000

// MonteCarloModel 风险中性几何布朗运动路径模拟定价。
// delta/vega 使用路径导数估计量，gamma/theta/rho 在同一组随机数上
// 做有限差分（common random numbers，降低差分方差）。结果是随机的，
// 收敛速度为 1/sqrt(N)；StandardError 随结果一并上报，调用方校验
// 该模型输出时必须容忍相应的标准误而不是做精确相等比较。
type MonteCarloModel struct {
	defaultPaths int
	seed         int64 // 0 表示按时间播种
}

func NewMonteCarloModel(paths int, seed int64) *MonteCarloModel {
	if paths <= 0 {
		paths = defaultMonteCarloPaths
	}
	return &MonteCarloModel{defaultPaths: paths, seed: seed}
}

func (mc *MonteCarloModel) Type() PricingModelType {
	return PricingModelMonteCarlo
}

// mcPartial 单个 worker 的累加结果。
type mcPartial struct {
	sumPayoff   float64
	sumPayoffSq float64
	sumDelta    float64
	sumVega     float64
	sumUp       float64 // S*1.01
	sumDown     float64 // S*0.99
	sumShorter  float64 // T - 1 天
	sumRhoUp    float64 // r + 1%
	sumRhoDown  float64 // r - 1%
}

func (mc *MonteCarloModel) PriceAndGreeks(ctx context.Context, input PricingInput) (*PricingResult, error) {
	paths := input.Paths
	if paths <= 0 {
		paths = mc.defaultPaths
	}

	seed := mc.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	workers := runtime.NumCPU()
	if workers > 8 {
		workers = 8
	}
	if workers < 1 {
		workers = 1
	}

	S := input.UnderlyingPrice
	K := input.StrikePrice
	T := input.TimeToExpiry
	r := input.RiskFreeRate
	q := input.DividendYield
	sigma := input.Volatility
	isCall := input.OptionType == OptionTypeCall

	sqrtT := math.Sqrt(T)
	drift := (r - q - 0.5*sigma*sigma) * T
	disc := math.Exp(-r * T)

	oneDay := 1.0 / 365
	tShort := T - oneDay
	hasTheta := tShort > 0
	driftShort := (r - q - 0.5*sigma*sigma) * tShort
	sqrtTShort := math.Sqrt(math.Max(tShort, 0))
	discShort := math.Exp(-r * tShort)

	dR := 0.01
	dS := 0.01 * S

	payoff := func(sT float64) float64 {
		return intrinsicValue(input.OptionType, sT, K)
	}

	partials := make([]mcPartial, workers)
	base := paths / workers
	rem := paths % workers

	g, _ := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		n := base
		if w < rem {
			n++
		}
		part := &partials[w]
		rng := rand.New(rand.NewSource(seed + int64(w)))
		g.Go(func() error {
			bm := newBoxMuller(rng)
			for i := 0; i < n; i++ {
				z := bm.next()
				growth := math.Exp(drift + sigma*sqrtT*z)
				sT := S * growth

				p := payoff(sT)
				part.sumPayoff += p
				part.sumPayoffSq += p * p

				// 路径导数：dST/dS = ST/S，dST/dsigma = ST*(-sigma*T + sqrt(T)*z)
				if isCall {
					if sT > K {
						part.sumDelta += sT / S
						part.sumVega += sT * (-sigma*T + sqrtT*z)
					}
				} else {
					if sT < K {
						part.sumDelta -= sT / S
						part.sumVega -= sT * (-sigma*T + sqrtT*z)
					}
				}

				// 同一随机数下的差分重估值
				part.sumUp += payoff((S + dS) * growth)
				part.sumDown += payoff((S - dS) * growth)
				if hasTheta {
					part.sumShorter += payoff(S * math.Exp(driftShort+sigma*sqrtTShort*z))
				}
				part.sumRhoUp += payoff(S * math.Exp(drift+dR*T+sigma*sqrtT*z))
				part.sumRhoDown += payoff(S * math.Exp(drift-dR*T+sigma*sqrtT*z))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var total mcPartial
	for _, p := range partials {
		total.sumPayoff += p.sumPayoff
		total.sumPayoffSq += p.sumPayoffSq
		total.sumDelta += p.sumDelta
		total.sumVega += p.sumVega
		total.sumUp += p.sumUp
		total.sumDown += p.sumDown
		total.sumShorter += p.sumShorter
		total.sumRhoUp += p.sumRhoUp
		total.sumRhoDown += p.sumRhoDown
	}

	n := float64(paths)
	price := disc * total.sumPayoff / n
	mean := total.sumPayoff / n
	variance := total.sumPayoffSq/n - mean*mean
	if variance < 0 {
		variance = 0
	}
	stdError := disc * math.Sqrt(variance/n)

	priceUp := disc * total.sumUp / n
	priceDown := disc * total.sumDown / n
	gamma := (priceUp - 2*price + priceDown) / (dS * dS)

	theta := 0.0
	if hasTheta {
		theta = discShort*total.sumShorter/n - price
	}

	rhoUp := math.Exp(-(r+dR)*T) * total.sumRhoUp / n
	rhoDown := math.Exp(-(r-dR)*T) * total.sumRhoDown / n
	rho := (rhoUp - rhoDown) / 2

	return &PricingResult{
		Price: price,
		Greeks: Greeks{
			Delta: disc * total.sumDelta / n,
			Gamma: gamma,
			Theta: theta,
			Vega:  disc * total.sumVega / n / 100,
			Rho:   rho,
		},
		Model:         PricingModelMonteCarlo,
		Paths:         paths,
		StandardError: stdError,
	}, nil
}

// boxMuller Box-Muller 正态随机数生成器，缓存成对生成的第二个值。
type boxMuller struct {
	rng      *rand.Rand
	spare    float64
	hasSpare bool
}

func newBoxMuller(rng *rand.Rand) *boxMuller {
	return &boxMuller{rng: rng}
}

func (b *boxMuller) next() float64 {
	if b.hasSpare {
		b.hasSpare = false
		return b.spare
	}
	var u1 float64
	for u1 <= 0 {
		u1 = b.rng.Float64()
	}
	u2 := b.rng.Float64()
	radius := math.Sqrt(-2 * math.Log(u1))
	theta := 2 * math.Pi * u2
	b.spare = radius * math.Sin(theta)
	b.hasSpare = true
	return radius * math.Cos(theta)
}
