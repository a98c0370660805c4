package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/wyfcoding/pkg/idgen"
	"gorm.io/gorm"

	"github.com/wyfcoding/investmentplatform/internal/derivatives/domain"
)

// OutboxMessage 事件发件箱记录
type OutboxMessage struct {
	ID        string    `gorm:"type:varchar(36);primary_key"`
	EventType string    `gorm:"type:varchar(100);index"`
	Topic     string    `gorm:"type:varchar(100)"`
	Key       string    `gorm:"type:varchar(100)"`
	Payload   string    `gorm:"type:text"`
	Status    string    `gorm:"type:varchar(20);index;default:'pending'"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

// TableName 指定表名
func (OutboxMessage) TableName() string {
	return "derivative_outbox_messages"
}

// OutboxEventPublisher 实现 EventPublisher 接口，使用 Outbox 模式：
// 事件先落库，由后台循环转发到 Kafka，保证与业务数据同库提交。
type OutboxEventPublisher struct {
	db    *gorm.DB
	relay *KafkaEventPublisher
}

// NewOutboxEventPublisher 创建新的 OutboxEventPublisher 实例
func NewOutboxEventPublisher(db *gorm.DB, relay *KafkaEventPublisher) *OutboxEventPublisher {
	return &OutboxEventPublisher{db: db, relay: relay}
}

// PublishGreeksCalculated 发布希腊字母计算完成事件
func (p *OutboxEventPublisher) PublishGreeksCalculated(event domain.GreeksCalculatedEvent) error {
	return p.publishEvent("GreeksCalculatedEvent", TopicGreeksCalculated, event.InstrumentID, event)
}

// PublishImpliedVolSolved 发布隐含波动率求解完成事件
func (p *OutboxEventPublisher) PublishImpliedVolSolved(event domain.ImpliedVolSolvedEvent) error {
	return p.publishEvent("ImpliedVolSolvedEvent", TopicImpliedVolSolved, event.InstrumentID, event)
}

// PublishStrategyEvaluated 发布策略评估完成事件
func (p *OutboxEventPublisher) PublishStrategyEvaluated(event domain.StrategyEvaluatedEvent) error {
	return p.publishEvent("StrategyEvaluatedEvent", TopicStrategyEvaluated, event.StrategyID, event)
}

// PublishMarginCalculated 发布保证金估算完成事件
func (p *OutboxEventPublisher) PublishMarginCalculated(event domain.MarginCalculatedEvent) error {
	return p.publishEvent("MarginCalculatedEvent", TopicMarginCalculated, event.TenantID, event)
}

// PublishValuationCompleted 发布盯市估值完成事件
func (p *OutboxEventPublisher) PublishValuationCompleted(event domain.ValuationCompletedEvent) error {
	return p.publishEvent("ValuationCompletedEvent", TopicValuationCompleted, event.InstrumentID, event)
}

// PublishPortfolioAnalyzed 发布组合分析完成事件
func (p *OutboxEventPublisher) PublishPortfolioAnalyzed(event domain.PortfolioAnalyzedEvent) error {
	return p.publishEvent("PortfolioAnalyzedEvent", TopicPortfolioAnalyzed, event.TenantID, event)
}

// publishEvent 通用事件发布方法
func (p *OutboxEventPublisher) publishEvent(eventType, topic, key string, event any) error {
	eventData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	message := OutboxMessage{
		ID:        fmt.Sprintf("OBX-%d", idgen.GenID()),
		EventType: eventType,
		Topic:     topic,
		Key:       key,
		Payload:   string(eventData),
		Status:    "pending",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	return p.db.Create(&message).Error
}

// ProcessOutboxMessages 将待处理消息批量转发到 Kafka。
// 发送失败的消息保持 pending，下一轮重试。
func (p *OutboxEventPublisher) ProcessOutboxMessages(ctx context.Context, batchSize int) error {
	var messages []OutboxMessage
	if err := p.db.WithContext(ctx).
		Where("status = ?", "pending").
		Order("created_at").
		Limit(batchSize).
		Find(&messages).Error; err != nil {
		return err
	}

	for _, message := range messages {
		if p.relay != nil {
			var payload json.RawMessage = []byte(message.Payload)
			if err := p.relay.send(message.Topic, message.Key, payload); err != nil {
				continue
			}
		}
		if err := p.db.WithContext(ctx).
			Model(&OutboxMessage{}).
			Where("id = ?", message.ID).
			Updates(map[string]any{"status": "processed", "updated_at": time.Now()}).Error; err != nil {
			return err
		}
	}
	return nil
}

// StartRelayLoop 启动后台转发循环，直到 ctx 取消。
func (p *OutboxEventPublisher) StartRelayLoop(ctx context.Context, interval time.Duration, batchSize int) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = p.ProcessOutboxMessages(ctx, batchSize)
		}
	}
}
