// Package messaging 衍生品分析事件的发布实现。
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/wyfcoding/investmentplatform/internal/derivatives/domain"
)

// 事件主题
const (
	TopicGreeksCalculated  = "derivatives.greeks.calculated"
	TopicImpliedVolSolved  = "derivatives.iv.solved"
	TopicStrategyEvaluated = "derivatives.strategy.evaluated"
	TopicMarginCalculated  = "derivatives.margin.calculated"
	TopicValuationCompleted = "derivatives.valuation.completed"
	TopicPortfolioAnalyzed = "derivatives.portfolio.analyzed"
)

// KafkaEventPublisher 实现 EventPublisher 接口，直接写入 Kafka。
type KafkaEventPublisher struct {
	writer *kafka.Writer
}

// NewKafkaEventPublisher 创建新的 KafkaEventPublisher 实例
func NewKafkaEventPublisher(brokers []string) *KafkaEventPublisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		AllowAutoTopicCreation: true,
		Compression:            kafka.Gzip,
		RequiredAcks:           kafka.RequireAll,
		BatchTimeout:           10 * time.Millisecond,
	}
	return &KafkaEventPublisher{writer: writer}
}

// Close 关闭底层 writer。
func (p *KafkaEventPublisher) Close() error {
	return p.writer.Close()
}

// PublishGreeksCalculated 发布希腊字母计算完成事件
func (p *KafkaEventPublisher) PublishGreeksCalculated(event domain.GreeksCalculatedEvent) error {
	return p.send(TopicGreeksCalculated, event.InstrumentID, event)
}

// PublishImpliedVolSolved 发布隐含波动率求解完成事件
func (p *KafkaEventPublisher) PublishImpliedVolSolved(event domain.ImpliedVolSolvedEvent) error {
	return p.send(TopicImpliedVolSolved, event.InstrumentID, event)
}

// PublishStrategyEvaluated 发布策略评估完成事件
func (p *KafkaEventPublisher) PublishStrategyEvaluated(event domain.StrategyEvaluatedEvent) error {
	return p.send(TopicStrategyEvaluated, event.StrategyID, event)
}

// PublishMarginCalculated 发布保证金估算完成事件
func (p *KafkaEventPublisher) PublishMarginCalculated(event domain.MarginCalculatedEvent) error {
	return p.send(TopicMarginCalculated, event.TenantID, event)
}

// PublishValuationCompleted 发布盯市估值完成事件
func (p *KafkaEventPublisher) PublishValuationCompleted(event domain.ValuationCompletedEvent) error {
	return p.send(TopicValuationCompleted, event.InstrumentID, event)
}

// PublishPortfolioAnalyzed 发布组合分析完成事件
func (p *KafkaEventPublisher) PublishPortfolioAnalyzed(event domain.PortfolioAnalyzedEvent) error {
	return p.send(TopicPortfolioAnalyzed, event.TenantID, event)
}

func (p *KafkaEventPublisher) send(topic, key string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
	})
}
