// Package client 行情来源接入。未接入真实行情网关时提供内存实现。
package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/investmentplatform/internal/derivatives/domain"
)

// 未配置时的市场参数默认值
var (
	defaultRiskFreeRate  = decimal.NewFromFloat(0.03)
	defaultDividendYield = decimal.Zero
)

// InMemoryMarketData 内存行情源，用于开发环境与测试。
// 合约与行情由调用方预先注册，未注册的查询返回 ErrMarketDataUnavailable。
type InMemoryMarketData struct {
	mu sync.RWMutex

	instruments      map[string]*domain.OptionContract // key: tenantID/instrumentID
	underlyingPrices map[string]decimal.Decimal
	impliedVols      map[string]decimal.Decimal
	riskFreeRates    map[string]decimal.Decimal
	dividendYields   map[string]decimal.Decimal
	ivHistory        map[string][]decimal.Decimal
	closeHistory     map[string][]decimal.Decimal
}

// NewInMemoryMarketData 创建空的内存行情源。
func NewInMemoryMarketData() *InMemoryMarketData {
	return &InMemoryMarketData{
		instruments:      make(map[string]*domain.OptionContract),
		underlyingPrices: make(map[string]decimal.Decimal),
		impliedVols:      make(map[string]decimal.Decimal),
		riskFreeRates:    make(map[string]decimal.Decimal),
		dividendYields:   make(map[string]decimal.Decimal),
		ivHistory:        make(map[string][]decimal.Decimal),
		closeHistory:     make(map[string][]decimal.Decimal),
	}
}

func instrumentKey(tenantID, instrumentID string) string {
	return tenantID + "/" + instrumentID
}

// RegisterInstrument 注册合约及其行情快照。
func (m *InMemoryMarketData) RegisterInstrument(option *domain.OptionContract) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.instruments[instrumentKey(option.TenantID, option.InstrumentID)] = option
}

// SetUnderlyingPrice 设置标的最新价。
func (m *InMemoryMarketData) SetUnderlyingPrice(underlying string, price decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.underlyingPrices[underlying] = price
}

// SetImpliedVolatility 设置合约当前隐含波动率。
func (m *InMemoryMarketData) SetImpliedVolatility(instrumentID string, vol decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.impliedVols[instrumentID] = vol
}

// SetRiskFreeRate 设置币种无风险利率。
func (m *InMemoryMarketData) SetRiskFreeRate(currency string, rate decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.riskFreeRates[currency] = rate
}

// SetDividendYield 设置标的股息率。
func (m *InMemoryMarketData) SetDividendYield(underlying string, yield decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dividendYields[underlying] = yield
}

// SetIVHistory 设置合约历史 IV 序列。
func (m *InMemoryMarketData) SetIVHistory(instrumentID string, series []decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ivHistory[instrumentID] = series
}

// SetCloseHistory 设置标的历史收盘价序列。
func (m *InMemoryMarketData) SetCloseHistory(underlying string, series []decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeHistory[underlying] = series
}

func (m *InMemoryMarketData) GetInstrument(ctx context.Context, tenantID, instrumentID string) (*domain.OptionContract, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	option, ok := m.instruments[instrumentKey(tenantID, instrumentID)]
	if !ok {
		return nil, fmt.Errorf("%w: instrument %s", domain.ErrInstrumentNotFound, instrumentID)
	}
	clone := *option
	return &clone, nil
}

func (m *InMemoryMarketData) GetUnderlyingPrice(ctx context.Context, underlying string) (decimal.Decimal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	price, ok := m.underlyingPrices[underlying]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: no price for %s", domain.ErrMarketDataUnavailable, underlying)
	}
	return price, nil
}

func (m *InMemoryMarketData) GetImpliedVolatility(ctx context.Context, instrumentID string) (decimal.Decimal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	vol, ok := m.impliedVols[instrumentID]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: no volatility for %s", domain.ErrMarketDataUnavailable, instrumentID)
	}
	return vol, nil
}

func (m *InMemoryMarketData) GetRiskFreeRate(ctx context.Context, currency string) (decimal.Decimal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if rate, ok := m.riskFreeRates[currency]; ok {
		return rate, nil
	}
	return defaultRiskFreeRate, nil
}

func (m *InMemoryMarketData) GetDividendYield(ctx context.Context, underlying string) (decimal.Decimal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if yield, ok := m.dividendYields[underlying]; ok {
		return yield, nil
	}
	return defaultDividendYield, nil
}

func (m *InMemoryMarketData) GetHistoricalIV(ctx context.Context, instrumentID string, windowDays int) ([]decimal.Decimal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	series, ok := m.ivHistory[instrumentID]
	if !ok {
		return nil, fmt.Errorf("%w: no iv history for %s", domain.ErrMarketDataUnavailable, instrumentID)
	}
	if windowDays > 0 && len(series) > windowDays {
		series = series[:windowDays]
	}
	return series, nil
}

func (m *InMemoryMarketData) GetHistoricalCloses(ctx context.Context, underlying string, windowDays int) ([]decimal.Decimal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	series, ok := m.closeHistory[underlying]
	if !ok {
		return nil, fmt.Errorf("%w: no close history for %s", domain.ErrMarketDataUnavailable, underlying)
	}
	if windowDays > 0 && len(series) > windowDays {
		series = series[len(series)-windowDays:]
	}
	return series, nil
}
