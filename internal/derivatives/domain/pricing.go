package domain

import (
	"context"
	"fmt"
	"time"
)

type PricingModelType string

const (
	PricingModelBlackScholes PricingModelType = "BLACK_SCHOLES"
	PricingModelBinomial     PricingModelType = "BINOMIAL"
	PricingModelMonteCarlo   PricingModelType = "MONTE_CARLO"
)

// PricingInput 定价模型的输入参数。
// 所有字段为年化单位（T 为年，利率/波动率为小数）。
type PricingInput struct {
	OptionType  OptionType
	OptionStyle OptionStyle

	UnderlyingPrice float64 // S
	StrikePrice     float64 // K
	Volatility      float64 // sigma
	RiskFreeRate    float64 // r
	DividendYield   float64 // q
	TimeToExpiry    float64 // T (年)

	// 模型专用参数，为 0 时由模型使用自身默认值
	Steps int // 二叉树步数
	Paths int // 蒙特卡洛路径数
}

// PricingResult 定价模型的输出。Warnings 携带数值收敛类告警，
// 永不致命；调用方依赖 Model/Steps/Paths 作为结果来源凭证。
type PricingResult struct {
	Price         float64
	Greeks        Greeks
	Model         PricingModelType
	Steps         int
	Paths         int
	StandardError float64
	Warnings      []string
	ComputeTime   time.Duration
}

// PricingModel 定价模型能力接口。
// 各模型独立实现同一契约，便于单测与后续扩展，不改动调用方。
type PricingModel interface {
	Type() PricingModelType
	PriceAndGreeks(ctx context.Context, input PricingInput) (*PricingResult, error)
}

// PricingKernel 定价内核：按模型类型显式分发，模型之间没有静默回退。
type PricingKernel struct {
	models map[PricingModelType]PricingModel
}

// NewPricingKernel 创建注册了全部内置模型的定价内核。
func NewPricingKernel(models ...PricingModel) *PricingKernel {
	k := &PricingKernel{models: make(map[PricingModelType]PricingModel)}
	if len(models) == 0 {
		models = []PricingModel{
			NewBlackScholesModel(),
			NewBinomialModel(0),
			NewMonteCarloModel(0, 0),
		}
	}
	for _, m := range models {
		k.models[m.Type()] = m
	}
	return k
}

// PriceAndGreeks 校验输入后分发到指定模型。
// T <= 0 允许通过：返回内在价值与边界希腊字母并附带告警，而不是报错，
// 因为批量估值时日终链路里总会撞到当日到期的合约。
func (k *PricingKernel) PriceAndGreeks(ctx context.Context, model PricingModelType, input PricingInput) (*PricingResult, error) {
	if err := ValidatePricingInput(input); err != nil {
		return nil, err
	}

	if input.TimeToExpiry <= 0 {
		return expiredResult(model, input), nil
	}

	m, ok := k.models[model]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedModel, model)
	}

	start := time.Now()
	result, err := m.PriceAndGreeks(ctx, input)
	if err != nil {
		return nil, err
	}
	result.ComputeTime = time.Since(start)
	return result, nil
}

// ValidatePricingInput 在任何模型运行前拒绝非法输入。
func ValidatePricingInput(input PricingInput) error {
	if input.UnderlyingPrice <= 0 {
		return fmt.Errorf("%w: S=%v", ErrInvalidUnderlyingPrice, input.UnderlyingPrice)
	}
	if input.Volatility <= 0 {
		return fmt.Errorf("%w: sigma=%v", ErrInvalidVolatility, input.Volatility)
	}
	if input.OptionType != OptionTypeCall && input.OptionType != OptionTypePut {
		return fmt.Errorf("invalid option type %q", input.OptionType)
	}
	return nil
}

// expiredResult 已到期合约的退化结果：价格 = 内在价值，
// delta 取边界值 {0,1}（call）/{-1,0}（put），其余希腊字母为 0。
func expiredResult(model PricingModelType, input PricingInput) *PricingResult {
	intrinsic := intrinsicValue(input.OptionType, input.UnderlyingPrice, input.StrikePrice)

	var delta float64
	if input.OptionType == OptionTypeCall && input.UnderlyingPrice > input.StrikePrice {
		delta = 1
	} else if input.OptionType == OptionTypePut && input.UnderlyingPrice < input.StrikePrice {
		delta = -1
	}

	return &PricingResult{
		Price:    intrinsic,
		Greeks:   Greeks{Delta: delta},
		Model:    model,
		Warnings: []string{"option expired, greeks may not be meaningful"},
	}
}

func intrinsicValue(optionType OptionType, s, k float64) float64 {
	var intrinsic float64
	if optionType == OptionTypeCall {
		intrinsic = s - k
	} else {
		intrinsic = k - s
	}
	if intrinsic < 0 {
		return 0
	}
	return intrinsic
}
