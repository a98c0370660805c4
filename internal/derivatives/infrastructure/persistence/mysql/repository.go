// Package mysql 衍生品分析记录的 MySQL 持久化实现。
package mysql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/wyfcoding/investmentplatform/internal/derivatives/domain"
)

type greeksRepository struct {
	db *gorm.DB
}

// NewGreeksRepository 创建并返回一个新的 GreeksRepository 实例。
func NewGreeksRepository(db *gorm.DB) domain.GreeksRepository {
	return &greeksRepository{db: db}
}

func (r *greeksRepository) Save(ctx context.Context, calc *domain.GreeksCalculation) error {
	if calc == nil {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(toGreeksModel(calc)).Error; err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistenceUnavailable, err)
	}
	return nil
}

func (r *greeksRepository) Get(ctx context.Context, tenantID, id string) (*domain.GreeksCalculation, error) {
	var model GreeksCalculationModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND calc_id = ?", tenantID, id).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toGreeksCalculation(&model), nil
}

func (r *greeksRepository) FindLatest(ctx context.Context, tenantID, instrumentID string) (*domain.GreeksCalculation, error) {
	var model GreeksCalculationModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND instrument_id = ?", tenantID, instrumentID).
		Order("calculated_at DESC").
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toGreeksCalculation(&model), nil
}

func (r *greeksRepository) FindByInstrument(ctx context.Context, tenantID, instrumentID string, limit int) ([]*domain.GreeksCalculation, error) {
	if limit <= 0 {
		limit = 50
	}
	var models []*GreeksCalculationModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND instrument_id = ?", tenantID, instrumentID).
		Order("calculated_at DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	calcs := make([]*domain.GreeksCalculation, 0, len(models))
	for _, m := range models {
		calcs = append(calcs, toGreeksCalculation(m))
	}
	return calcs, nil
}

type impliedVolRepository struct {
	db *gorm.DB
}

// NewImpliedVolRepository 创建并返回一个新的 ImpliedVolRepository 实例。
func NewImpliedVolRepository(db *gorm.DB) domain.ImpliedVolRepository {
	return &impliedVolRepository{db: db}
}

func (r *impliedVolRepository) Save(ctx context.Context, analysis *domain.ImpliedVolatilityAnalysis) error {
	if analysis == nil {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(toImpliedVolModel(analysis)).Error; err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistenceUnavailable, err)
	}
	return nil
}

func (r *impliedVolRepository) FindByInstrument(ctx context.Context, tenantID, instrumentID string, limit int) ([]*domain.ImpliedVolatilityAnalysis, error) {
	if limit <= 0 {
		limit = 50
	}
	var models []*ImpliedVolAnalysisModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND instrument_id = ?", tenantID, instrumentID).
		Order("analysis_date DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	analyses := make([]*domain.ImpliedVolatilityAnalysis, 0, len(models))
	for _, m := range models {
		analyses = append(analyses, toImpliedVolAnalysis(m))
	}
	return analyses, nil
}

type strategyRepository struct {
	db *gorm.DB
}

// NewStrategyRepository 创建并返回一个新的 StrategyRepository 实例。
func NewStrategyRepository(db *gorm.DB) domain.StrategyRepository {
	return &strategyRepository{db: db}
}

func (r *strategyRepository) Save(ctx context.Context, strategy *domain.OptionStrategy) error {
	if strategy == nil {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(toStrategyModel(strategy)).Error; err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistenceUnavailable, err)
	}
	return nil
}

func (r *strategyRepository) Get(ctx context.Context, tenantID, id string) (*domain.OptionStrategy, error) {
	var model StrategyModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND strategy_id = ?", tenantID, id).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toStrategy(&model), nil
}

func (r *strategyRepository) FindByTenant(ctx context.Context, tenantID string, limit int) ([]*domain.OptionStrategy, error) {
	if limit <= 0 {
		limit = 50
	}
	var models []*StrategyModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	strategies := make([]*domain.OptionStrategy, 0, len(models))
	for _, m := range models {
		strategies = append(strategies, toStrategy(m))
	}
	return strategies, nil
}

type marginRepository struct {
	db *gorm.DB
}

// NewMarginRepository 创建并返回一个新的 MarginRepository 实例。
func NewMarginRepository(db *gorm.DB) domain.MarginRepository {
	return &marginRepository{db: db}
}

func (r *marginRepository) Save(ctx context.Context, result *domain.MarginCalculationResult) error {
	if result == nil {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(toMarginModel(result)).Error; err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistenceUnavailable, err)
	}
	return nil
}

func (r *marginRepository) FindLatest(ctx context.Context, tenantID string) (*domain.MarginCalculationResult, error) {
	var model MarginCalculationModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("calculated_at DESC").
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toMarginResult(&model), nil
}

type valuationRepository struct {
	db *gorm.DB
}

// NewValuationRepository 创建并返回一个新的 ValuationRepository 实例。
func NewValuationRepository(db *gorm.DB) domain.ValuationRepository {
	return &valuationRepository{db: db}
}

func (r *valuationRepository) Save(ctx context.Context, valuation *domain.MarkToMarketValuation) error {
	if valuation == nil {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(toValuationModel(valuation)).Error; err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistenceUnavailable, err)
	}
	return nil
}

func (r *valuationRepository) FindPrevious(ctx context.Context, tenantID, instrumentID string, before time.Time) (*domain.MarkToMarketValuation, error) {
	var model ValuationModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND instrument_id = ? AND valuation_date < ?", tenantID, instrumentID, before).
		Order("valuation_date DESC").
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toValuation(&model), nil
}

func (r *valuationRepository) FindByInstrument(ctx context.Context, tenantID, instrumentID string, limit int) ([]*domain.MarkToMarketValuation, error) {
	if limit <= 0 {
		limit = 50
	}
	var models []*ValuationModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND instrument_id = ?", tenantID, instrumentID).
		Order("valuation_date DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	valuations := make([]*domain.MarkToMarketValuation, 0, len(models))
	for _, m := range models {
		valuations = append(valuations, toValuation(m))
	}
	return valuations, nil
}

type portfolioAnalyticsRepository struct {
	db *gorm.DB
}

// NewPortfolioAnalyticsRepository 创建并返回一个新的 PortfolioAnalyticsRepository 实例。
func NewPortfolioAnalyticsRepository(db *gorm.DB) domain.PortfolioAnalyticsRepository {
	return &portfolioAnalyticsRepository{db: db}
}

func (r *portfolioAnalyticsRepository) Save(ctx context.Context, analytics *domain.DerivativesPortfolioAnalytics) error {
	if analytics == nil {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(toPortfolioModel(analytics)).Error; err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistenceUnavailable, err)
	}
	return nil
}

func (r *portfolioAnalyticsRepository) FindLatest(ctx context.Context, tenantID string) (*domain.DerivativesPortfolioAnalytics, error) {
	var model PortfolioAnalyticsModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("calculated_at DESC").
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toPortfolioAnalytics(&model), nil
}
