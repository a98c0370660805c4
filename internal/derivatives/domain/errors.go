package domain

import "errors"

var (
	// 校验类错误：在任何数值计算开始之前拒绝
	ErrInstrumentNotFound     = errors.New("derivative instrument not found")
	ErrInvalidUnderlyingPrice = errors.New("underlying price must be positive")
	ErrInvalidVolatility      = errors.New("volatility must be positive")
	ErrInvalidMarketPrice     = errors.New("market price must be positive")
	ErrInvalidQuantity        = errors.New("quantity must be positive")
	ErrInvalidLegSide         = errors.New("leg side must be BUY or SELL")
	ErrInvalidDecimal         = errors.New("value is not a valid decimal number")
	ErrEmptyLegs              = errors.New("strategy requires at least one leg")
	ErrEmptyPositions         = errors.New("margin calculation requires at least one position")

	// 不支持的操作组合
	ErrUnsupportedModel    = errors.New("unsupported pricing model")
	ErrUnsupportedStrategy = errors.New("unsupported strategy type")
	ErrNotAnOption         = errors.New("greeks calculation requires an option instrument")

	// 下游依赖错误：引擎不做内部重试，由编排层决定重试策略
	ErrMarketDataUnavailable  = errors.New("market data source unavailable")
	ErrPersistenceUnavailable = errors.New("persistence sink unavailable")

	// 查询类错误
	ErrStaleGreeks     = errors.New("latest greeks calculation is older than required freshness")
	ErrNoGreeksHistory = errors.New("no greeks calculation history for instrument")
)
