// Package realtime 提供调度结果的事件驱动分发：
// 任务状态变更事件触发重新计算，重新计算结果推送给进度订阅方
package realtime

import (
	"time"

	"github.com/google/uuid"

	"github.com/LENAX/proposal-scheduler/pkg/core/schedule"
	"github.com/LENAX/proposal-scheduler/pkg/core/status"
)

// EventType 事件类型
type EventType string

const (
	// EventTaskStatusChanged 任务状态变更（由外部状态协作方发布）
	EventTaskStatusChanged EventType = "task.status.changed"
	// EventScheduleRecomputed 调度结果已重新计算（由调度引擎发布）
	EventScheduleRecomputed EventType = "schedule.recomputed"
)

// TaskStatusChangedEvent 任务状态变更事件（对外导出）
type TaskStatusChangedEvent struct {
	ID        string            `json:"id"`         // 事件ID（UUID）
	TaskID    string            `json:"task_id"`    // 任务ID
	OldStatus status.TaskStatus `json:"old_status"` // 旧状态
	NewStatus status.TaskStatus `json:"new_status"` // 新状态
	Timestamp time.Time         `json:"timestamp"`  // 事件时间
}

// NewTaskStatusChangedEvent 创建任务状态变更事件
func NewTaskStatusChangedEvent(taskID string, oldStatus, newStatus status.TaskStatus) *TaskStatusChangedEvent {
	return &TaskStatusChangedEvent{
		ID:        uuid.NewString(),
		TaskID:    taskID,
		OldStatus: oldStatus,
		NewStatus: newStatus,
		Timestamp: time.Now(),
	}
}

// ScheduleRecomputedEvent 调度结果重新计算事件（对外导出）
// Result 是计算时刻的快照，订阅方不应修改
type ScheduleRecomputedEvent struct {
	ID        string                   `json:"id"`        // 事件ID（UUID）
	Trigger   string                   `json:"trigger"`   // 触发来源：cron/status_change/manual
	Timestamp time.Time                `json:"timestamp"` // 事件时间
	Result    *schedule.ScheduleResult `json:"result"`    // 调度结果快照
}

// NewScheduleRecomputedEvent 创建调度结果重新计算事件
func NewScheduleRecomputedEvent(trigger string, result *schedule.ScheduleResult) *ScheduleRecomputedEvent {
	return &ScheduleRecomputedEvent{
		ID:        uuid.NewString(),
		Trigger:   trigger,
		Timestamp: time.Now(),
		Result:    result,
	}
}
