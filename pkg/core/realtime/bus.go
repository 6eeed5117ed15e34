package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// EventBus 进程内事件总线（对外导出）
// 基于 Watermill 的 gochannel 实现：非持久化，与"不持久化调度结果"的约束一致
type EventBus struct {
	pubsub *gochannel.GoChannel
	logger watermill.LoggerAdapter
}

// NewEventBus 创建事件总线实例（对外导出）
func NewEventBus(debug bool) *EventBus {
	logger := watermill.NewStdLogger(debug, false)
	pubsub := gochannel.NewGoChannel(
		gochannel.Config{
			Persistent:                     false,
			BlockPublishUntilSubscriberAck: false,
		},
		logger,
	)
	return &EventBus{pubsub: pubsub, logger: logger}
}

// PublishStatusChanged 发布任务状态变更事件（对外导出）
func (b *EventBus) PublishStatusChanged(event *TaskStatusChangedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("序列化事件失败: %w", err)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.Metadata.Set("event_type", string(EventTaskStatusChanged))
	msg.Metadata.Set("task_id", event.TaskID)
	msg.Metadata.Set("timestamp", event.Timestamp.Format(time.RFC3339Nano))

	if err := b.pubsub.Publish(string(EventTaskStatusChanged), msg); err != nil {
		return fmt.Errorf("发布事件失败: %w", err)
	}
	return nil
}

// PublishScheduleRecomputed 发布调度结果重新计算事件（对外导出）
func (b *EventBus) PublishScheduleRecomputed(event *ScheduleRecomputedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("序列化事件失败: %w", err)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.Metadata.Set("event_type", string(EventScheduleRecomputed))
	msg.Metadata.Set("trigger", event.Trigger)
	msg.Metadata.Set("timestamp", event.Timestamp.Format(time.RFC3339Nano))

	if err := b.pubsub.Publish(string(EventScheduleRecomputed), msg); err != nil {
		return fmt.Errorf("发布事件失败: %w", err)
	}
	return nil
}

// SubscribeStatusChanged 订阅任务状态变更事件（对外导出）
// 返回解码后的事件通道；消息解码失败时跳过该条并继续
func (b *EventBus) SubscribeStatusChanged(ctx context.Context) (<-chan *TaskStatusChangedEvent, error) {
	messages, err := b.pubsub.Subscribe(ctx, string(EventTaskStatusChanged))
	if err != nil {
		return nil, fmt.Errorf("订阅事件失败: %w", err)
	}

	events := make(chan *TaskStatusChangedEvent)
	go func() {
		defer close(events)
		for msg := range messages {
			var event TaskStatusChangedEvent
			if err := json.Unmarshal(msg.Payload, &event); err != nil {
				b.logger.Error("解码状态变更事件失败", err, watermill.LogFields{"message_uuid": msg.UUID})
				msg.Ack()
				continue
			}
			msg.Ack()
			select {
			case events <- &event:
			case <-ctx.Done():
				return
			}
		}
	}()
	return events, nil
}

// SubscribeScheduleRecomputed 订阅调度结果重新计算事件（对外导出）
func (b *EventBus) SubscribeScheduleRecomputed(ctx context.Context) (<-chan *ScheduleRecomputedEvent, error) {
	messages, err := b.pubsub.Subscribe(ctx, string(EventScheduleRecomputed))
	if err != nil {
		return nil, fmt.Errorf("订阅事件失败: %w", err)
	}

	events := make(chan *ScheduleRecomputedEvent)
	go func() {
		defer close(events)
		for msg := range messages {
			var event ScheduleRecomputedEvent
			if err := json.Unmarshal(msg.Payload, &event); err != nil {
				b.logger.Error("解码调度结果事件失败", err, watermill.LogFields{"message_uuid": msg.UUID})
				msg.Ack()
				continue
			}
			msg.Ack()
			select {
			case events <- &event:
			case <-ctx.Done():
				return
			}
		}
	}()
	return events, nil
}

// Close 关闭事件总线（对外导出）
func (b *EventBus) Close() error {
	return b.pubsub.Close()
}
