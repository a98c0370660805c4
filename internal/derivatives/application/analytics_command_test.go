package application

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/investmentplatform/internal/derivatives/domain"
	"github.com/wyfcoding/investmentplatform/internal/derivatives/infrastructure/client"
)

// memoryRepos 测试用内存仓储，六个仓储接口共用一个实现。
type memoryRepos struct {
	greeks     []*domain.GreeksCalculation
	ivAnalyses []*domain.ImpliedVolatilityAnalysis
	strategies []*domain.OptionStrategy
	margins    []*domain.MarginCalculationResult
	valuations []*domain.MarkToMarketValuation
	portfolios []*domain.DerivativesPortfolioAnalytics
}

func (m *memoryRepos) Save(ctx context.Context, calc *domain.GreeksCalculation) error {
	m.greeks = append(m.greeks, calc)
	return nil
}

func (m *memoryRepos) Get(ctx context.Context, tenantID, id string) (*domain.GreeksCalculation, error) {
	for _, c := range m.greeks {
		if c.TenantID == tenantID && c.ID == id {
			return c, nil
		}
	}
	return nil, nil
}

func (m *memoryRepos) FindLatest(ctx context.Context, tenantID, instrumentID string) (*domain.GreeksCalculation, error) {
	for i := len(m.greeks) - 1; i >= 0; i-- {
		if m.greeks[i].TenantID == tenantID && m.greeks[i].InstrumentID == instrumentID {
			return m.greeks[i], nil
		}
	}
	return nil, nil
}

func (m *memoryRepos) FindByInstrument(ctx context.Context, tenantID, instrumentID string, limit int) ([]*domain.GreeksCalculation, error) {
	var out []*domain.GreeksCalculation
	for _, c := range m.greeks {
		if c.TenantID == tenantID && c.InstrumentID == instrumentID {
			out = append(out, c)
		}
	}
	return out, nil
}

type memoryIVRepo struct{ parent *memoryRepos }

func (r memoryIVRepo) Save(ctx context.Context, a *domain.ImpliedVolatilityAnalysis) error {
	r.parent.ivAnalyses = append(r.parent.ivAnalyses, a)
	return nil
}

func (r memoryIVRepo) FindByInstrument(ctx context.Context, tenantID, instrumentID string, limit int) ([]*domain.ImpliedVolatilityAnalysis, error) {
	return r.parent.ivAnalyses, nil
}

type memoryStrategyRepo struct{ parent *memoryRepos }

func (r memoryStrategyRepo) Save(ctx context.Context, s *domain.OptionStrategy) error {
	r.parent.strategies = append(r.parent.strategies, s)
	return nil
}

func (r memoryStrategyRepo) Get(ctx context.Context, tenantID, id string) (*domain.OptionStrategy, error) {
	for _, s := range r.parent.strategies {
		if s.TenantID == tenantID && s.ID == id {
			return s, nil
		}
	}
	return nil, nil
}

func (r memoryStrategyRepo) FindByTenant(ctx context.Context, tenantID string, limit int) ([]*domain.OptionStrategy, error) {
	return r.parent.strategies, nil
}

type memoryMarginRepo struct{ parent *memoryRepos }

func (r memoryMarginRepo) Save(ctx context.Context, res *domain.MarginCalculationResult) error {
	r.parent.margins = append(r.parent.margins, res)
	return nil
}

func (r memoryMarginRepo) FindLatest(ctx context.Context, tenantID string) (*domain.MarginCalculationResult, error) {
	if len(r.parent.margins) == 0 {
		return nil, nil
	}
	return r.parent.margins[len(r.parent.margins)-1], nil
}

type memoryValuationRepo struct{ parent *memoryRepos }

func (r memoryValuationRepo) Save(ctx context.Context, v *domain.MarkToMarketValuation) error {
	r.parent.valuations = append(r.parent.valuations, v)
	return nil
}

func (r memoryValuationRepo) FindPrevious(ctx context.Context, tenantID, instrumentID string, before time.Time) (*domain.MarkToMarketValuation, error) {
	var prev *domain.MarkToMarketValuation
	for _, v := range r.parent.valuations {
		if v.TenantID != tenantID || v.InstrumentID != instrumentID {
			continue
		}
		if v.ValuationDate.Before(before) && (prev == nil || v.ValuationDate.After(prev.ValuationDate)) {
			prev = v
		}
	}
	return prev, nil
}

func (r memoryValuationRepo) FindByInstrument(ctx context.Context, tenantID, instrumentID string, limit int) ([]*domain.MarkToMarketValuation, error) {
	return r.parent.valuations, nil
}

type memoryPortfolioRepo struct{ parent *memoryRepos }

func (r memoryPortfolioRepo) Save(ctx context.Context, a *domain.DerivativesPortfolioAnalytics) error {
	r.parent.portfolios = append(r.parent.portfolios, a)
	return nil
}

func (r memoryPortfolioRepo) FindLatest(ctx context.Context, tenantID string) (*domain.DerivativesPortfolioAnalytics, error) {
	if len(r.parent.portfolios) == 0 {
		return nil, nil
	}
	return r.parent.portfolios[len(r.parent.portfolios)-1], nil
}

// recordingPublisher 记录事件发布次数。
type recordingPublisher struct {
	published map[string]int
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{published: make(map[string]int)}
}

func (p *recordingPublisher) PublishGreeksCalculated(e domain.GreeksCalculatedEvent) error {
	p.published["greeks"]++
	return nil
}

func (p *recordingPublisher) PublishImpliedVolSolved(e domain.ImpliedVolSolvedEvent) error {
	p.published["iv"]++
	return nil
}

func (p *recordingPublisher) PublishStrategyEvaluated(e domain.StrategyEvaluatedEvent) error {
	p.published["strategy"]++
	return nil
}

func (p *recordingPublisher) PublishMarginCalculated(e domain.MarginCalculatedEvent) error {
	p.published["margin"]++
	return nil
}

func (p *recordingPublisher) PublishValuationCompleted(e domain.ValuationCompletedEvent) error {
	p.published["valuation"]++
	return nil
}

func (p *recordingPublisher) PublishPortfolioAnalyzed(e domain.PortfolioAnalyzedEvent) error {
	p.published["portfolio"]++
	return nil
}

func testContract(tenantID, instrumentID string) *domain.OptionContract {
	return &domain.OptionContract{
		DerivativeInstrument: domain.DerivativeInstrument{
			TenantID:        tenantID,
			InstrumentID:    instrumentID,
			Symbol:          "AAPL260618C100",
			Underlying:      "AAPL",
			Class:           domain.InstrumentClassOption,
			Currency:        "USD",
			Multiplier:      decimal.NewFromInt(100),
			ExpiryDate:      time.Now().Add(365 * 24 * time.Hour),
			MarketPrice:     decimal.NewFromFloat(10.45),
			UnderlyingPrice: decimal.NewFromInt(100),
			Status:          domain.InstrumentStatusActive,
		},
		OptionType:  domain.OptionTypeCall,
		OptionStyle: domain.OptionStyleEuropean,
		StrikePrice: decimal.NewFromInt(100),
	}
}

func newTestService(t *testing.T) (*AnalyticsService, *memoryRepos, *recordingPublisher, *client.InMemoryMarketData) {
	t.Helper()

	repos := &memoryRepos{}
	publisher := newRecordingPublisher()
	marketData := client.NewInMemoryMarketData()
	marketData.RegisterInstrument(testContract("tenant-1", "OPT-AAPL-C-100"))
	marketData.SetImpliedVolatility("OPT-AAPL-C-100", decimal.NewFromFloat(0.2))
	marketData.SetRiskFreeRate("USD", decimal.NewFromFloat(0.05))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewAnalyticsService(
		repos,
		memoryIVRepo{repos},
		memoryStrategyRepo{repos},
		memoryMarginRepo{repos},
		memoryValuationRepo{repos},
		memoryPortfolioRepo{repos},
		marketData,
		domain.NewPricingKernel(),
		publisher,
		logger,
	)
	return svc, repos, publisher, marketData
}

func TestCalculateGreeksPersistsAndPublishes(t *testing.T) {
	svc, repos, publisher, _ := newTestService(t)

	dto, err := svc.CalculateGreeks(context.Background(), CalculateGreeksRequest{
		TenantID:     "tenant-1",
		InstrumentID: "OPT-AAPL-C-100",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, dto.CalculationID)
	assert.Equal(t, "BLACK_SCHOLES", dto.Model)
	require.Len(t, repos.greeks, 1)
	assert.Equal(t, 1, publisher.published["greeks"])

	// 刚写入即可按新鲜度读回
	latest, err := svc.GetLatestGreeks(context.Background(), "tenant-1", "OPT-AAPL-C-100", 0)
	require.NoError(t, err)
	assert.Equal(t, dto.CalculationID, latest.CalculationID)
}

func TestCalculateGreeksUnknownInstrument(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.CalculateGreeks(context.Background(), CalculateGreeksRequest{
		TenantID:     "tenant-1",
		InstrumentID: "OPT-MISSING",
	})
	assert.ErrorIs(t, err, domain.ErrInstrumentNotFound)
}

func TestSolveImpliedVolFromMarketPrice(t *testing.T) {
	svc, repos, publisher, marketData := newTestService(t)
	marketData.SetIVHistory("OPT-AAPL-C-100", []decimal.Decimal{
		decimal.NewFromFloat(0.18), decimal.NewFromFloat(0.22), decimal.NewFromFloat(0.25),
	})

	dto, err := svc.SolveImpliedVol(context.Background(), SolveImpliedVolRequest{
		TenantID:     "tenant-1",
		InstrumentID: "OPT-AAPL-C-100",
	})
	require.NoError(t, err)

	assert.True(t, dto.Converged)
	iv, err := decimal.NewFromString(dto.ImpliedVolatility)
	require.NoError(t, err)
	// 市场价 10.45 接近 σ=0.2 的理论价，解应落在 0.2 附近
	assert.InDelta(t, 0.2, iv.InexactFloat64(), 0.02)
	require.Len(t, repos.ivAnalyses, 1)
	assert.Equal(t, 1, publisher.published["iv"])
}

func TestEvaluateStrategyComputesMargin(t *testing.T) {
	svc, repos, publisher, _ := newTestService(t)

	dto, err := svc.EvaluateStrategy(context.Background(), EvaluateStrategyRequest{
		TenantID:     "tenant-1",
		StrategyType: "CUSTOM",
		Underlying:   "AAPL",
		Legs: []StrategyLegRequest{
			{InstrumentID: "OPT-AAPL-C-100", Side: "BUY", Quantity: "1"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, dto.LegCount)
	// 保证金估算由腿信息推导，应为正数
	margin, err := decimal.NewFromString(dto.MarginRequirement)
	require.NoError(t, err)
	assert.True(t, margin.IsPositive())
	require.Len(t, repos.strategies, 1)
	assert.Equal(t, 1, publisher.published["strategy"])
}

func TestEstimateMarginRejectsEmpty(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.EstimateMargin(context.Background(), EstimateMarginRequest{TenantID: "tenant-1"})
	assert.ErrorIs(t, err, domain.ErrEmptyPositions)
}

func TestMarkToMarketBuildsValuationChain(t *testing.T) {
	svc, repos, publisher, _ := newTestService(t)

	day1 := time.Now().Add(-24 * time.Hour).Format(time.RFC3339)
	first, err := svc.MarkToMarket(context.Background(), MarkToMarketRequest{
		TenantID:      "tenant-1",
		InstrumentID:  "OPT-AAPL-C-100",
		Quantity:      "10",
		EntryPrice:    "8.45",
		ValuationDate: day1,
	})
	require.NoError(t, err)
	assert.Nil(t, first.Attribution)
	assert.Equal(t, "0", first.DailyPnL)

	// 平值合约：内在价值 0，时间价值即期权价；累计损益 = (10.45-8.45)*10*100
	assert.Equal(t, "0", first.IntrinsicValue)
	assert.Equal(t, "10.45", first.TimeValue)
	assert.Equal(t, "2000", first.UnrealizedPnL)

	second, err := svc.MarkToMarket(context.Background(), MarkToMarketRequest{
		TenantID:     "tenant-1",
		InstrumentID: "OPT-AAPL-C-100",
		Quantity:     "10",
	})
	require.NoError(t, err)
	// 第二次估值找到前一日基准，应产出归因
	require.NotNil(t, second.Attribution)
	require.Len(t, repos.valuations, 2)
	assert.Equal(t, 2, publisher.published["valuation"])
}

func TestAnalyzePortfolioEmptyIsZeroed(t *testing.T) {
	svc, repos, publisher, _ := newTestService(t)

	dto, err := svc.AnalyzePortfolio(context.Background(), AnalyzePortfolioRequest{TenantID: "tenant-1"})
	require.NoError(t, err)

	assert.Equal(t, 0, dto.TotalPositions)
	assert.Equal(t, "0", dto.TotalNotional)
	require.Len(t, repos.portfolios, 1)
	assert.Equal(t, 1, publisher.published["portfolio"])
}

func TestAnalyzePortfolioWithPositions(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	dto, err := svc.AnalyzePortfolio(context.Background(), AnalyzePortfolioRequest{
		TenantID:      "tenant-1",
		AccountEquity: "100000",
		Positions: []PortfolioPositionRequest{
			{InstrumentID: "OPT-AAPL-C-100", Side: "BUY", Quantity: "2"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, dto.TotalPositions)
	// 名义价值 2 * 100 * 100 = 20000，参数法 VaR 取其 5%
	assert.Equal(t, "20000", dto.TotalNotional)
	assert.Equal(t, "1000", dto.ParametricVaR)

	delta, err := decimal.NewFromString(dto.NetDelta)
	require.NoError(t, err)
	assert.True(t, delta.IsPositive())
}

func TestCalculateGreeksRejectsMalformedOverride(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	// 非法的覆盖值是校验错误，不允许静默回退到行情源取值
	_, err := svc.CalculateGreeks(context.Background(), CalculateGreeksRequest{
		TenantID:     "tenant-1",
		InstrumentID: "OPT-AAPL-C-100",
		Volatility:   "abc",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidDecimal)
}

func TestAnalyzePortfolioRejectsInvalidSide(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.AnalyzePortfolio(context.Background(), AnalyzePortfolioRequest{
		TenantID: "tenant-1",
		Positions: []PortfolioPositionRequest{
			{InstrumentID: "OPT-AAPL-C-100", Side: "HOLD", Quantity: "1"},
		},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidLegSide)
}

func TestEstimateMarginWithCustomScenarios(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	dto, err := svc.EstimateMargin(context.Background(), EstimateMarginRequest{
		TenantID:      "tenant-1",
		AccountEquity: "100000",
		Positions: []MarginPositionRequest{
			{InstrumentID: "OPT-AAPL-C-100", Side: "BUY", Quantity: "1"},
		},
		Scenarios: []MarginScenarioRequest{
			{Name: "BASE", PriceShock: "0", VolShock: "0"},
			{Name: "CRASH", PriceShock: "-0.30", VolShock: "0.50"},
		},
	})
	require.NoError(t, err)

	// 自定义网格替换默认的三情景网格
	require.Len(t, dto.Scenarios, 2)
	assert.Equal(t, "CRASH", dto.Scenarios[1].Name)

	_, err = svc.EstimateMargin(context.Background(), EstimateMarginRequest{
		TenantID: "tenant-1",
		Positions: []MarginPositionRequest{
			{InstrumentID: "OPT-AAPL-C-100", Side: "BUY", Quantity: "1"},
		},
		Scenarios: []MarginScenarioRequest{{Name: "BAD", PriceShock: "x"}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidDecimal)
}

func TestEvaluateStrategySurfacesLegPricingWarnings(t *testing.T) {
	svc, _, _, marketData := newTestService(t)

	expired := testContract("tenant-1", "OPT-AAPL-C-EXP")
	expired.ExpiryDate = time.Now().Add(-24 * time.Hour)
	marketData.RegisterInstrument(expired)
	marketData.SetImpliedVolatility("OPT-AAPL-C-EXP", decimal.NewFromFloat(0.2))

	dto, err := svc.EvaluateStrategy(context.Background(), EvaluateStrategyRequest{
		TenantID:     "tenant-1",
		StrategyType: "CUSTOM",
		Underlying:   "AAPL",
		Legs: []StrategyLegRequest{
			{InstrumentID: "OPT-AAPL-C-EXP", Side: "BUY", Quantity: "1"},
		},
	})
	require.NoError(t, err)

	// 已到期腿的定价告警随策略响应一起返回
	require.NotEmpty(t, dto.Warnings)
	assert.Contains(t, dto.Warnings[0], "OPT-AAPL-C-EXP")
	assert.Contains(t, dto.Warnings[0], "expired")
}
