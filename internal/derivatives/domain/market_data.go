package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// MarketDataProvider 行情与市场参数来源。
// 不可用时实现方返回 ErrMarketDataUnavailable 包装后的错误。
type MarketDataProvider interface {
	// GetInstrument 查询合约静态信息与最新行情快照
	GetInstrument(ctx context.Context, tenantID, instrumentID string) (*OptionContract, error)

	// GetUnderlyingPrice 查询标的最新价
	GetUnderlyingPrice(ctx context.Context, underlying string) (decimal.Decimal, error)

	// GetImpliedVolatility 查询合约当前隐含波动率
	GetImpliedVolatility(ctx context.Context, instrumentID string) (decimal.Decimal, error)

	// GetRiskFreeRate 查询无风险利率（年化小数）
	GetRiskFreeRate(ctx context.Context, currency string) (decimal.Decimal, error)

	// GetDividendYield 查询标的股息率（年化小数）
	GetDividendYield(ctx context.Context, underlying string) (decimal.Decimal, error)

	// GetHistoricalIV 查询合约历史隐含波动率序列，最新在前
	GetHistoricalIV(ctx context.Context, instrumentID string, windowDays int) ([]decimal.Decimal, error)

	// GetHistoricalCloses 查询标的历史收盘价序列，最旧在前
	GetHistoricalCloses(ctx context.Context, underlying string, windowDays int) ([]decimal.Decimal, error)
}
