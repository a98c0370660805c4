// Package http 衍生品分析服务的 HTTP 接口层。
package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/pkg/logging"
	"github.com/wyfcoding/pkg/response"

	"github.com/wyfcoding/investmentplatform/internal/derivatives/application"
	"github.com/wyfcoding/investmentplatform/internal/derivatives/domain"
)

// AnalyticsHandler 负责处理衍生品分析相关的 HTTP 请求
type AnalyticsHandler struct {
	svc *application.AnalyticsService
}

// NewAnalyticsHandler 创建 HTTP 处理器
func NewAnalyticsHandler(svc *application.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc}
}

// RegisterRoutes 注册路由
func (h *AnalyticsHandler) RegisterRoutes(router *gin.RouterGroup) {
	api := router.Group("/api/v1/derivatives")
	{
		api.POST("/greeks", h.CalculateGreeks)
		api.GET("/greeks/latest", h.GetLatestGreeks)
		api.GET("/greeks/history", h.GetGreeksHistory)
		api.POST("/implied-vol", h.SolveImpliedVol)
		api.GET("/implied-vol/history", h.GetIVHistory)
		api.POST("/strategies", h.EvaluateStrategy)
		api.GET("/strategies/:id", h.GetStrategy)
		api.POST("/margin", h.EstimateMargin)
		api.GET("/margin/latest", h.GetLatestMargin)
		api.POST("/valuations", h.MarkToMarket)
		api.GET("/valuations/history", h.GetValuationHistory)
		api.POST("/portfolio", h.AnalyzePortfolio)
		api.GET("/portfolio/latest", h.GetLatestPortfolioAnalytics)
	}
}

// CalculateGreeks 计算合约希腊字母
func (h *AnalyticsHandler) CalculateGreeks(c *gin.Context) {
	var req application.CalculateGreeksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	dto, err := h.svc.CalculateGreeks(c.Request.Context(), req)
	if err != nil {
		logging.Error(c.Request.Context(), "Failed to calculate greeks", "instrument", req.InstrumentID, "error", err)
		response.ErrorWithStatus(c, statusFor(err), err.Error(), "")
		return
	}
	response.Success(c, dto)
}

// GetLatestGreeks 获取合约最近一次希腊字母计算
func (h *AnalyticsHandler) GetLatestGreeks(c *gin.Context) {
	tenantID, instrumentID, ok := h.tenantInstrument(c)
	if !ok {
		return
	}

	maxAge := time.Duration(0)
	if raw := c.Query("max_age_seconds"); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil {
			response.ErrorWithStatus(c, http.StatusBadRequest, "invalid max_age_seconds", "")
			return
		}
		maxAge = time.Duration(seconds) * time.Second
	}

	dto, err := h.svc.GetLatestGreeks(c.Request.Context(), tenantID, instrumentID, maxAge)
	if err != nil {
		logging.Error(c.Request.Context(), "Failed to get latest greeks", "instrument", instrumentID, "error", err)
		response.ErrorWithStatus(c, statusFor(err), err.Error(), "")
		return
	}
	response.Success(c, dto)
}

// GetGreeksHistory 获取合约希腊字母计算历史
func (h *AnalyticsHandler) GetGreeksHistory(c *gin.Context) {
	tenantID, instrumentID, ok := h.tenantInstrument(c)
	if !ok {
		return
	}

	dtos, err := h.svc.GetGreeksHistory(c.Request.Context(), tenantID, instrumentID, h.limit(c))
	if err != nil {
		logging.Error(c.Request.Context(), "Failed to get greeks history", "instrument", instrumentID, "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}
	response.Success(c, dtos)
}

// SolveImpliedVol 从市场价反解隐含波动率
func (h *AnalyticsHandler) SolveImpliedVol(c *gin.Context) {
	var req application.SolveImpliedVolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	dto, err := h.svc.SolveImpliedVol(c.Request.Context(), req)
	if err != nil {
		logging.Error(c.Request.Context(), "Failed to solve implied vol", "instrument", req.InstrumentID, "error", err)
		response.ErrorWithStatus(c, statusFor(err), err.Error(), "")
		return
	}
	response.Success(c, dto)
}

// GetIVHistory 获取合约隐含波动率分析历史
func (h *AnalyticsHandler) GetIVHistory(c *gin.Context) {
	tenantID, instrumentID, ok := h.tenantInstrument(c)
	if !ok {
		return
	}

	dtos, err := h.svc.GetIVHistory(c.Request.Context(), tenantID, instrumentID, h.limit(c))
	if err != nil {
		logging.Error(c.Request.Context(), "Failed to get iv history", "instrument", instrumentID, "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}
	response.Success(c, dtos)
}

// EvaluateStrategy 评估多腿期权策略
func (h *AnalyticsHandler) EvaluateStrategy(c *gin.Context) {
	var req application.EvaluateStrategyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	dto, err := h.svc.EvaluateStrategy(c.Request.Context(), req)
	if err != nil {
		logging.Error(c.Request.Context(), "Failed to evaluate strategy", "type", req.StrategyType, "error", err)
		response.ErrorWithStatus(c, statusFor(err), err.Error(), "")
		return
	}
	response.Success(c, dto)
}

// GetStrategy 获取策略评估记录
func (h *AnalyticsHandler) GetStrategy(c *gin.Context) {
	tenantID := c.Query("tenant_id")
	if tenantID == "" {
		response.ErrorWithStatus(c, http.StatusBadRequest, "tenant_id is required", "")
		return
	}

	dto, err := h.svc.GetStrategy(c.Request.Context(), tenantID, c.Param("id"))
	if err != nil {
		logging.Error(c.Request.Context(), "Failed to get strategy", "id", c.Param("id"), "error", err)
		response.ErrorWithStatus(c, http.StatusNotFound, err.Error(), "")
		return
	}
	response.Success(c, dto)
}

// EstimateMargin 估算组合保证金
func (h *AnalyticsHandler) EstimateMargin(c *gin.Context) {
	var req application.EstimateMarginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	dto, err := h.svc.EstimateMargin(c.Request.Context(), req)
	if err != nil {
		logging.Error(c.Request.Context(), "Failed to estimate margin", "tenant", req.TenantID, "error", err)
		response.ErrorWithStatus(c, statusFor(err), err.Error(), "")
		return
	}
	response.Success(c, dto)
}

// GetLatestMargin 获取租户最近一次保证金估算
func (h *AnalyticsHandler) GetLatestMargin(c *gin.Context) {
	tenantID := c.Query("tenant_id")
	if tenantID == "" {
		response.ErrorWithStatus(c, http.StatusBadRequest, "tenant_id is required", "")
		return
	}

	dto, err := h.svc.GetLatestMargin(c.Request.Context(), tenantID)
	if err != nil {
		logging.Error(c.Request.Context(), "Failed to get latest margin", "tenant", tenantID, "error", err)
		response.ErrorWithStatus(c, http.StatusNotFound, err.Error(), "")
		return
	}
	response.Success(c, dto)
}

// MarkToMarket 盯市估值
func (h *AnalyticsHandler) MarkToMarket(c *gin.Context) {
	var req application.MarkToMarketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	dto, err := h.svc.MarkToMarket(c.Request.Context(), req)
	if err != nil {
		logging.Error(c.Request.Context(), "Failed to mark to market", "instrument", req.InstrumentID, "error", err)
		response.ErrorWithStatus(c, statusFor(err), err.Error(), "")
		return
	}
	response.Success(c, dto)
}

// GetValuationHistory 获取合约盯市估值链
func (h *AnalyticsHandler) GetValuationHistory(c *gin.Context) {
	tenantID, instrumentID, ok := h.tenantInstrument(c)
	if !ok {
		return
	}

	dtos, err := h.svc.GetValuationHistory(c.Request.Context(), tenantID, instrumentID, h.limit(c))
	if err != nil {
		logging.Error(c.Request.Context(), "Failed to get valuation history", "instrument", instrumentID, "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}
	response.Success(c, dtos)
}

// AnalyzePortfolio 组合分析
func (h *AnalyticsHandler) AnalyzePortfolio(c *gin.Context) {
	var req application.AnalyzePortfolioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	dto, err := h.svc.AnalyzePortfolio(c.Request.Context(), req)
	if err != nil {
		logging.Error(c.Request.Context(), "Failed to analyze portfolio", "tenant", req.TenantID, "error", err)
		response.ErrorWithStatus(c, statusFor(err), err.Error(), "")
		return
	}
	response.Success(c, dto)
}

// GetLatestPortfolioAnalytics 获取租户最近一次组合分析快照
func (h *AnalyticsHandler) GetLatestPortfolioAnalytics(c *gin.Context) {
	tenantID := c.Query("tenant_id")
	if tenantID == "" {
		response.ErrorWithStatus(c, http.StatusBadRequest, "tenant_id is required", "")
		return
	}

	dto, err := h.svc.GetLatestPortfolioAnalytics(c.Request.Context(), tenantID)
	if err != nil {
		logging.Error(c.Request.Context(), "Failed to get portfolio analytics", "tenant", tenantID, "error", err)
		response.ErrorWithStatus(c, http.StatusNotFound, err.Error(), "")
		return
	}
	response.Success(c, dto)
}

func (h *AnalyticsHandler) tenantInstrument(c *gin.Context) (string, string, bool) {
	tenantID := c.Query("tenant_id")
	if tenantID == "" {
		response.ErrorWithStatus(c, http.StatusBadRequest, "tenant_id is required", "")
		return "", "", false
	}
	instrumentID := c.Query("instrument_id")
	if instrumentID == "" {
		response.ErrorWithStatus(c, http.StatusBadRequest, "instrument_id is required", "")
		return "", "", false
	}
	return tenantID, instrumentID, true
}

func (h *AnalyticsHandler) limit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		return 50
	}
	return limit
}

// statusFor 将领域错误映射为 HTTP 状态码。
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInstrumentNotFound),
		errors.Is(err, domain.ErrNoGreeksHistory):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidUnderlyingPrice),
		errors.Is(err, domain.ErrInvalidVolatility),
		errors.Is(err, domain.ErrInvalidMarketPrice),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInvalidLegSide),
		errors.Is(err, domain.ErrEmptyLegs),
		errors.Is(err, domain.ErrEmptyPositions),
		errors.Is(err, domain.ErrUnsupportedModel),
		errors.Is(err, domain.ErrUnsupportedStrategy):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrStaleGreeks):
		return http.StatusConflict
	case errors.Is(err, domain.ErrMarketDataUnavailable),
		errors.Is(err, domain.ErrPersistenceUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
