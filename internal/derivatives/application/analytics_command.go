// Package application 衍生品分析服务的用例逻辑、DTO 与事务边界。
package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/pkg/idgen"

	"github.com/wyfcoding/investmentplatform/internal/derivatives/domain"
)

const defaultIVWindowDays = 30

// AnalyticsCommand 处理衍生品分析相关的命令操作
type AnalyticsCommand struct {
	greeksRepo    domain.GreeksRepository
	ivRepo        domain.ImpliedVolRepository
	strategyRepo  domain.StrategyRepository
	marginRepo    domain.MarginRepository
	valuationRepo domain.ValuationRepository
	portfolioRepo domain.PortfolioAnalyticsRepository

	marketData domain.MarketDataProvider
	kernel     *domain.PricingKernel
	ivSolver   *domain.IVSolver
	estimator  *domain.MarginEstimator
	publisher  domain.EventPublisher
	logger     *slog.Logger
}

// NewAnalyticsCommand 创建新的 AnalyticsCommand 实例
func NewAnalyticsCommand(
	greeksRepo domain.GreeksRepository,
	ivRepo domain.ImpliedVolRepository,
	strategyRepo domain.StrategyRepository,
	marginRepo domain.MarginRepository,
	valuationRepo domain.ValuationRepository,
	portfolioRepo domain.PortfolioAnalyticsRepository,
	marketData domain.MarketDataProvider,
	kernel *domain.PricingKernel,
	publisher domain.EventPublisher,
	logger *slog.Logger,
) *AnalyticsCommand {
	return &AnalyticsCommand{
		greeksRepo:    greeksRepo,
		ivRepo:        ivRepo,
		strategyRepo:  strategyRepo,
		marginRepo:    marginRepo,
		valuationRepo: valuationRepo,
		portfolioRepo: portfolioRepo,
		marketData:    marketData,
		kernel:        kernel,
		ivSolver:      domain.NewIVSolver(kernel),
		estimator:     domain.NewMarginEstimator(kernel),
		publisher:     publisher,
		logger:        logger,
	}
}

// CalculateGreeks 计算单合约希腊字母并持久化计算记录。
func (c *AnalyticsCommand) CalculateGreeks(ctx context.Context, req CalculateGreeksRequest) (*GreeksDTO, error) {
	model := domain.PricingModelType(req.Model)
	if model == "" {
		model = domain.PricingModelBlackScholes
	}

	option, err := c.marketData.GetInstrument(ctx, req.TenantID, req.InstrumentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load instrument %s: %w", req.InstrumentID, err)
	}

	input, err := c.buildPricingInput(ctx, option, req)
	if err != nil {
		return nil, err
	}

	result, err := c.kernel.PriceAndGreeks(ctx, model, input)
	if err != nil {
		return nil, err
	}

	calcID := fmt.Sprintf("GRK-%d", idgen.GenID())
	calc := domain.NewGreeksCalculation(calcID, option, result, input)
	if err := c.greeksRepo.Save(ctx, calc); err != nil {
		return nil, fmt.Errorf("failed to save greeks calculation: %w", err)
	}

	c.publish(ctx, "greeks calculated", func() error {
		return c.publisher.PublishGreeksCalculated(domain.GreeksCalculatedEvent{
			CalculationID: calc.ID,
			TenantID:      calc.TenantID,
			InstrumentID:  calc.InstrumentID,
			Symbol:        calc.Symbol,
			Model:         string(calc.Model),
			Delta:         calc.Delta,
			Gamma:         calc.Gamma,
			Theta:         calc.Theta,
			Vega:          calc.Vega,
			Rho:           calc.Rho,
			OccurredOn:    time.Now(),
		})
	})

	c.logger.InfoContext(ctx, "greeks calculated",
		"id", calc.ID, "instrument", calc.InstrumentID, "model", calc.Model,
		"compute_time", calc.ComputeTime)
	return toGreeksDTO(calc), nil
}

// SolveImpliedVol 从市场价反解隐含波动率并生成分析记录。
func (c *AnalyticsCommand) SolveImpliedVol(ctx context.Context, req SolveImpliedVolRequest) (*ImpliedVolDTO, error) {
	option, err := c.marketData.GetInstrument(ctx, req.TenantID, req.InstrumentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load instrument %s: %w", req.InstrumentID, err)
	}

	marketPrice, ok, err := parseDecimal(req.MarketPrice)
	if err != nil {
		return nil, err
	}
	if !ok {
		marketPrice = option.MarketPrice
	}
	if !marketPrice.IsPositive() {
		return nil, domain.ErrInvalidMarketPrice
	}

	input, err := c.buildPricingInput(ctx, option, CalculateGreeksRequest{})
	if err != nil {
		return nil, err
	}

	solve, err := c.ivSolver.Solve(ctx, domain.PricingModelBlackScholes, input, marketPrice.InexactFloat64())
	if err != nil {
		return nil, err
	}

	windowDays := req.WindowDays
	if windowDays <= 0 {
		windowDays = defaultIVWindowDays
	}
	history := c.loadIVHistory(ctx, req.InstrumentID, windowDays)

	analysisID := fmt.Sprintf("IVA-%d", idgen.GenID())
	analysis := domain.BuildIVAnalysis(analysisID, option, domain.PricingModelBlackScholes, solve, history, windowDays)
	if err := c.ivRepo.Save(ctx, analysis); err != nil {
		return nil, fmt.Errorf("failed to save iv analysis: %w", err)
	}

	c.publish(ctx, "implied vol solved", func() error {
		return c.publisher.PublishImpliedVolSolved(domain.ImpliedVolSolvedEvent{
			AnalysisID:        analysis.ID,
			TenantID:          analysis.TenantID,
			InstrumentID:      analysis.InstrumentID,
			Symbol:            analysis.Symbol,
			ImpliedVolatility: analysis.ImpliedVolatility,
			IVRank:            analysis.IVRank,
			Iterations:        analysis.Iterations,
			Converged:         analysis.Converged,
			OccurredOn:        time.Now(),
		})
	})

	c.logger.InfoContext(ctx, "implied vol solved",
		"id", analysis.ID, "instrument", analysis.InstrumentID,
		"iv", analysis.ImpliedVolatility, "iterations", analysis.Iterations,
		"converged", analysis.Converged)
	return toImpliedVolDTO(analysis), nil
}

// EvaluateStrategy 评估多腿期权策略：逐腿定价希腊字母后做组合聚合。
func (c *AnalyticsCommand) EvaluateStrategy(ctx context.Context, req EvaluateStrategyRequest) (*StrategyDTO, error) {
	if len(req.Legs) == 0 {
		return nil, domain.ErrEmptyLegs
	}

	legs := make([]domain.StrategyLeg, 0, len(req.Legs))
	marginPositions := make([]domain.MarginPosition, 0, len(req.Legs))
	var legWarnings []string
	for _, legReq := range req.Legs {
		leg, pos, warnings, err := c.buildLeg(ctx, req.TenantID, legReq)
		if err != nil {
			return nil, err
		}
		legs = append(legs, *leg)
		marginPositions = append(marginPositions, *pos)
		legWarnings = append(legWarnings, warnings...)
	}

	strategyID := fmt.Sprintf("STRAT-%d", idgen.GenID())
	strategy, err := domain.EvaluateStrategy(strategyID, req.TenantID, domain.StrategyType(req.StrategyType), req.Underlying, legs)
	if err != nil {
		return nil, err
	}
	strategy.Warnings = append(strategy.Warnings, legWarnings...)

	if margin, err := c.estimator.Estimate(ctx, strategyID, req.TenantID, marginPositions, decimal.Zero, nil); err == nil {
		strategy.MarginRequirement = margin.RequiredMargin
	} else {
		c.logger.WarnContext(ctx, "strategy margin estimate failed", "strategy", strategyID, "error", err)
	}

	if err := c.strategyRepo.Save(ctx, strategy); err != nil {
		return nil, fmt.Errorf("failed to save strategy: %w", err)
	}

	c.publish(ctx, "strategy evaluated", func() error {
		return c.publisher.PublishStrategyEvaluated(domain.StrategyEvaluatedEvent{
			StrategyID:   strategy.ID,
			TenantID:     strategy.TenantID,
			StrategyType: string(strategy.StrategyType),
			Underlying:   strategy.Underlying,
			LegCount:     len(strategy.Legs),
			NetPremium:   strategy.NetPremium,
			MaxProfit:    strategy.MaxProfit,
			MaxLoss:      strategy.MaxLoss,
			OccurredOn:   time.Now(),
		})
	})

	c.logger.InfoContext(ctx, "strategy evaluated",
		"id", strategy.ID, "type", strategy.StrategyType, "legs", len(strategy.Legs))
	return toStrategyDTO(strategy), nil
}

// EstimateMargin 估算组合保证金。
func (c *AnalyticsCommand) EstimateMargin(ctx context.Context, req EstimateMarginRequest) (*MarginDTO, error) {
	if len(req.Positions) == 0 {
		return nil, domain.ErrEmptyPositions
	}
	equity, _, err := parseDecimal(req.AccountEquity)
	if err != nil {
		return nil, err
	}
	scenarios := make([]domain.MarginScenario, 0, len(req.Scenarios))
	for _, scReq := range req.Scenarios {
		priceShock, _, err := parseDecimal(scReq.PriceShock)
		if err != nil {
			return nil, fmt.Errorf("scenario %s price shock: %w", scReq.Name, err)
		}
		volShock, _, err := parseDecimal(scReq.VolShock)
		if err != nil {
			return nil, fmt.Errorf("scenario %s vol shock: %w", scReq.Name, err)
		}
		scenarios = append(scenarios, domain.MarginScenario{Name: scReq.Name, PriceShock: priceShock, VolShock: volShock})
	}

	positions := make([]domain.MarginPosition, 0, len(req.Positions))
	for _, posReq := range req.Positions {
		pos, err := c.buildMarginPosition(ctx, req.TenantID, posReq.InstrumentID, posReq.Side, posReq.Quantity)
		if err != nil {
			return nil, err
		}
		positions = append(positions, *pos)
	}

	calcID := fmt.Sprintf("MARG-%d", idgen.GenID())
	result, err := c.estimator.Estimate(ctx, calcID, req.TenantID, positions, equity, scenarios)
	if err != nil {
		return nil, err
	}
	if err := c.marginRepo.Save(ctx, result); err != nil {
		return nil, fmt.Errorf("failed to save margin calculation: %w", err)
	}

	c.publish(ctx, "margin calculated", func() error {
		return c.publisher.PublishMarginCalculated(domain.MarginCalculatedEvent{
			CalculationID:   result.ID,
			TenantID:        result.TenantID,
			RequiredMargin:  result.RequiredMargin,
			InitialMargin:   result.InitialMargin,
			ExcessLiquidity: result.ExcessLiquidity,
			PositionCount:   len(positions),
			OccurredOn:      time.Now(),
		})
	})

	c.logger.InfoContext(ctx, "margin calculated",
		"id", result.ID, "required", result.RequiredMargin, "positions", len(positions))
	return toMarginDTO(result), nil
}

// MarkToMarket 对单合约持仓做盯市估值，并相对前一次估值做损益归因。
func (c *AnalyticsCommand) MarkToMarket(ctx context.Context, req MarkToMarketRequest) (*ValuationDTO, error) {
	option, err := c.marketData.GetInstrument(ctx, req.TenantID, req.InstrumentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load instrument %s: %w", req.InstrumentID, err)
	}

	quantity, ok, err := parseDecimal(req.Quantity)
	if err != nil {
		return nil, err
	}
	if !ok || quantity.IsZero() {
		return nil, domain.ErrInvalidQuantity
	}

	valuationDate := time.Now()
	if req.ValuationDate != "" {
		parsed, err := time.Parse(time.RFC3339, req.ValuationDate)
		if err != nil {
			return nil, fmt.Errorf("invalid valuation date %q: %w", req.ValuationDate, err)
		}
		valuationDate = parsed
	}
	rateChange, _, err := parseDecimal(req.RateChange)
	if err != nil {
		return nil, err
	}
	entryPrice, _, err := parseDecimal(req.EntryPrice)
	if err != nil {
		return nil, err
	}

	input, err := c.buildPricingInput(ctx, option, CalculateGreeksRequest{})
	if err != nil {
		return nil, err
	}

	result, err := c.kernel.PriceAndGreeks(ctx, domain.PricingModelBlackScholes, input)
	if err != nil {
		return nil, err
	}

	// 希腊字母快照换算为持仓口径，作为下一日归因基准
	scale := quantity.Mul(option.Multiplier)
	positionGreeks := domain.PositionGreeksFrom(result.Greeks).Multiply(scale)

	previous, err := c.valuationRepo.FindPrevious(ctx, req.TenantID, req.InstrumentID, valuationDate)
	if err != nil {
		return nil, fmt.Errorf("failed to load previous valuation: %w", err)
	}

	valuationID := fmt.Sprintf("MTM-%d", idgen.GenID())
	valuation := domain.NewMarkToMarketValuation(
		valuationID, req.TenantID,
		option,
		valuationDate,
		option.MarketPrice,
		decimal.NewFromFloat(result.Price),
		decimal.NewFromFloat(input.Volatility),
		quantity,
		entryPrice,
		positionGreeks,
		rateChange,
		previous,
	)
	if err := c.valuationRepo.Save(ctx, valuation); err != nil {
		return nil, fmt.Errorf("failed to save valuation: %w", err)
	}

	c.publish(ctx, "valuation completed", func() error {
		return c.publisher.PublishValuationCompleted(domain.ValuationCompletedEvent{
			ValuationID:  valuation.ID,
			TenantID:     valuation.TenantID,
			InstrumentID: valuation.InstrumentID,
			Symbol:       valuation.Symbol,
			MarketValue:  valuation.MarketValue,
			DailyPnL:     valuation.DailyPnL,
			OccurredOn:   time.Now(),
		})
	})

	c.logger.InfoContext(ctx, "valuation completed",
		"id", valuation.ID, "instrument", valuation.InstrumentID, "pnl", valuation.DailyPnL)
	return toValuationDTO(valuation), nil
}

// AnalyzePortfolio 聚合组合持仓并生成组合级分析快照。
func (c *AnalyticsCommand) AnalyzePortfolio(ctx context.Context, req AnalyzePortfolioRequest) (*PortfolioDTO, error) {
	equity, _, err := parseDecimal(req.AccountEquity)
	if err != nil {
		return nil, err
	}

	positions := make([]domain.PortfolioPosition, 0, len(req.Positions))
	for _, posReq := range req.Positions {
		pos, err := c.buildPortfolioPosition(ctx, req.TenantID, posReq)
		if err != nil {
			return nil, err
		}
		positions = append(positions, *pos)
	}

	analyticsID := fmt.Sprintf("PORT-%d", idgen.GenID())
	analytics, err := domain.AggregatePortfolio(analyticsID, req.TenantID, positions, equity, 0)
	if err != nil {
		return nil, err
	}
	if err := c.portfolioRepo.Save(ctx, analytics); err != nil {
		return nil, fmt.Errorf("failed to save portfolio analytics: %w", err)
	}

	c.publish(ctx, "portfolio analyzed", func() error {
		return c.publisher.PublishPortfolioAnalyzed(domain.PortfolioAnalyzedEvent{
			AnalyticsID:    analytics.ID,
			TenantID:       analytics.TenantID,
			TotalPositions: analytics.TotalPositions,
			TotalNotional:  analytics.TotalNotional,
			ParametricVaR:  analytics.ParametricVaR,
			VaR95:          analytics.VaR95,
			OccurredOn:     time.Now(),
		})
	})

	c.logger.InfoContext(ctx, "portfolio analyzed",
		"id", analytics.ID, "positions", analytics.TotalPositions,
		"notional", analytics.TotalNotional)
	return toPortfolioDTO(analytics), nil
}

// buildPricingInput 组装定价输入：请求覆盖优先，其余从行情源补齐。
func (c *AnalyticsCommand) buildPricingInput(ctx context.Context, option *domain.OptionContract, req CalculateGreeksRequest) (domain.PricingInput, error) {
	input := domain.PricingInput{
		OptionType:   option.OptionType,
		OptionStyle:  option.OptionStyle,
		StrikePrice:  option.StrikePrice.InexactFloat64(),
		TimeToExpiry: option.TimeToExpiry(time.Now()),
		Steps:        req.Steps,
		Paths:        req.Paths,
	}

	if v, ok, err := parseDecimal(req.UnderlyingPrice); err != nil {
		return input, err
	} else if ok {
		input.UnderlyingPrice = v.InexactFloat64()
	} else if option.UnderlyingPrice.IsPositive() {
		input.UnderlyingPrice = option.UnderlyingPrice.InexactFloat64()
	} else {
		price, err := c.marketData.GetUnderlyingPrice(ctx, option.Underlying)
		if err != nil {
			return input, fmt.Errorf("failed to get underlying price for %s: %w", option.Underlying, err)
		}
		input.UnderlyingPrice = price.InexactFloat64()
	}

	if v, ok, err := parseDecimal(req.Volatility); err != nil {
		return input, err
	} else if ok {
		input.Volatility = v.InexactFloat64()
	} else {
		vol, err := c.marketData.GetImpliedVolatility(ctx, option.InstrumentID)
		if err != nil {
			return input, fmt.Errorf("failed to get implied volatility for %s: %w", option.InstrumentID, err)
		}
		input.Volatility = vol.InexactFloat64()
	}

	if v, ok, err := parseDecimal(req.RiskFreeRate); err != nil {
		return input, err
	} else if ok {
		input.RiskFreeRate = v.InexactFloat64()
	} else {
		rate, err := c.marketData.GetRiskFreeRate(ctx, option.Currency)
		if err != nil {
			return input, fmt.Errorf("failed to get risk-free rate: %w", err)
		}
		input.RiskFreeRate = rate.InexactFloat64()
	}

	if v, ok, err := parseDecimal(req.DividendYield); err != nil {
		return input, err
	} else if ok {
		input.DividendYield = v.InexactFloat64()
	} else {
		yield, err := c.marketData.GetDividendYield(ctx, option.Underlying)
		if err != nil {
			return input, fmt.Errorf("failed to get dividend yield: %w", err)
		}
		input.DividendYield = yield.InexactFloat64()
	}

	return input, nil
}

// buildLeg 将请求腿展开为带希腊字母的策略腿与对应的保证金持仓。
// buildLeg 组装一条策略腿及对应的保证金持仓；返回的 warnings 携带
// 该腿定价过程中的数值类告警（如已到期、美式用欧式闭式近似）。
func (c *AnalyticsCommand) buildLeg(ctx context.Context, tenantID string, req StrategyLegRequest) (*domain.StrategyLeg, *domain.MarginPosition, []string, error) {
	option, err := c.marketData.GetInstrument(ctx, tenantID, req.InstrumentID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load instrument %s: %w", req.InstrumentID, err)
	}

	quantity, ok, err := parseDecimal(req.Quantity)
	if err != nil {
		return nil, nil, nil, err
	}
	if !ok || !quantity.IsPositive() {
		return nil, nil, nil, fmt.Errorf("%w: leg %s quantity %q", domain.ErrInvalidQuantity, req.InstrumentID, req.Quantity)
	}
	entryPrice, ok, err := parseDecimal(req.EntryPrice)
	if err != nil {
		return nil, nil, nil, err
	}
	if !ok {
		entryPrice = option.MarketPrice
	}

	input, err := c.buildPricingInput(ctx, option, CalculateGreeksRequest{})
	if err != nil {
		return nil, nil, nil, err
	}

	var greeks *domain.PositionGreeks
	var warnings []string
	if result, err := c.kernel.PriceAndGreeks(ctx, domain.PricingModelBlackScholes, input); err == nil {
		greeks = domain.PositionGreeksFrom(result.Greeks)
		for _, w := range result.Warnings {
			warnings = append(warnings, fmt.Sprintf("%s: %s", option.InstrumentID, w))
		}
	} else {
		c.logger.WarnContext(ctx, "leg greeks unavailable", "instrument", req.InstrumentID, "error", err)
	}

	leg := &domain.StrategyLeg{
		InstrumentID: option.InstrumentID,
		Symbol:       option.Symbol,
		Class:        option.Class,
		OptionType:   option.OptionType,
		StrikePrice:  option.StrikePrice,
		Side:         domain.Side(req.Side),
		Quantity:     quantity,
		EntryPrice:   entryPrice,
		CurrentPrice: option.MarketPrice,
		Multiplier:   option.Multiplier,
		Greeks:       greeks,
	}
	pos := &domain.MarginPosition{
		InstrumentID:    option.InstrumentID,
		Symbol:          option.Symbol,
		Class:           option.Class,
		OptionType:      option.OptionType,
		StrikePrice:     option.StrikePrice,
		Side:            domain.Side(req.Side),
		Quantity:        quantity,
		Multiplier:      option.Multiplier,
		UnderlyingPrice: decimal.NewFromFloat(input.UnderlyingPrice),
		MarketPrice:     option.MarketPrice,
		Volatility:      decimal.NewFromFloat(input.Volatility),
		TimeToExpiry:    decimal.NewFromFloat(input.TimeToExpiry),
		RiskFreeRate:    decimal.NewFromFloat(input.RiskFreeRate),
		DividendYield:   decimal.NewFromFloat(input.DividendYield),
	}
	return leg, pos, warnings, nil
}

func (c *AnalyticsCommand) buildMarginPosition(ctx context.Context, tenantID, instrumentID, side, quantity string) (*domain.MarginPosition, error) {
	_, pos, _, err := c.buildLeg(ctx, tenantID, StrategyLegRequest{
		InstrumentID: instrumentID,
		Side:         side,
		Quantity:     quantity,
	})
	return pos, err
}

func (c *AnalyticsCommand) buildPortfolioPosition(ctx context.Context, tenantID string, req PortfolioPositionRequest) (*domain.PortfolioPosition, error) {
	option, err := c.marketData.GetInstrument(ctx, tenantID, req.InstrumentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load instrument %s: %w", req.InstrumentID, err)
	}
	side := domain.Side(req.Side)
	if !side.IsValid() {
		return nil, fmt.Errorf("%w: position %s side %q", domain.ErrInvalidLegSide, req.InstrumentID, req.Side)
	}
	quantity, ok, err := parseDecimal(req.Quantity)
	if err != nil {
		return nil, err
	}
	if !ok || !quantity.IsPositive() {
		return nil, fmt.Errorf("%w: position %s quantity %q", domain.ErrInvalidQuantity, req.InstrumentID, req.Quantity)
	}

	input, err := c.buildPricingInput(ctx, option, CalculateGreeksRequest{})
	if err != nil {
		return nil, err
	}

	var greeks *domain.PositionGreeks
	if result, err := c.kernel.PriceAndGreeks(ctx, domain.PricingModelBlackScholes, input); err == nil {
		greeks = domain.PositionGreeksFrom(result.Greeks)
	} else {
		c.logger.WarnContext(ctx, "position greeks unavailable", "instrument", req.InstrumentID, "error", err)
	}

	pos := &domain.PortfolioPosition{
		InstrumentID:    option.InstrumentID,
		Symbol:          option.Symbol,
		Class:           option.Class,
		Side:            side,
		Quantity:        quantity,
		Multiplier:      option.Multiplier,
		UnderlyingPrice: decimal.NewFromFloat(input.UnderlyingPrice),
		MarketPrice:     option.MarketPrice,
		Volatility:      decimal.NewFromFloat(input.Volatility),
		DaysToExpiry:    option.DaysToExpiry(time.Now()),
		Greeks:          greeks,
	}

	// 逐仓保证金启发式：名义价值 × 15% × (1 + 波动率)
	volFactor := decimal.NewFromInt(1).Add(pos.Volatility)
	pos.MarginRequirement = pos.Notional().Mul(decimal.NewFromFloat(0.15)).Mul(volFactor).Round(4)
	return pos, nil
}

// loadIVHistory 拉取历史 IV 观测；行情源不可用时退化为空窗口，
// 只影响 rank/置信区间字段，不阻塞求解本身。
func (c *AnalyticsCommand) loadIVHistory(ctx context.Context, instrumentID string, windowDays int) []float64 {
	series, err := c.marketData.GetHistoricalIV(ctx, instrumentID, windowDays)
	if err != nil {
		c.logger.WarnContext(ctx, "historical iv unavailable", "instrument", instrumentID, "error", err)
		return nil
	}
	history := make([]float64, 0, len(series))
	for _, v := range series {
		history = append(history, v.InexactFloat64())
	}
	return history
}

// publish 事件发布失败只告警不回滚，计算结果本身已落库。
func (c *AnalyticsCommand) publish(ctx context.Context, name string, fn func() error) {
	if c.publisher == nil {
		return
	}
	if err := fn(); err != nil {
		c.logger.WarnContext(ctx, "event publish failed", "event", name, "error", err)
	}
}
