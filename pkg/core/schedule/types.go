package schedule

import "time"

// PriorityTier 优先级档位类型
type PriorityTier string

const (
	TierHigh   PriorityTier = "high"   // 高优先级（score >= 8）
	TierMedium PriorityTier = "medium" // 中优先级（score >= 5）
	TierLow    PriorityTier = "low"    // 低优先级
)

// ScheduleEntry 单任务调度计算结果（对外导出）
// 由前向/后向遍历产生，计算完成后只读
// 所有时间均为相对于项目起点的整数秒
type ScheduleEntry struct {
	TaskID         string `json:"task_id"`
	EarliestStart  int64  `json:"earliest_start"`
	EarliestFinish int64  `json:"earliest_finish"`
	LatestStart    int64  `json:"latest_start"`
	LatestFinish   int64  `json:"latest_finish"`
	Slack          int64  `json:"slack"`
	OnCriticalPath bool   `json:"on_critical_path"`
}

// PriorityRecord 单任务优先级评分结果（对外导出）
// 依赖实时状态，每次调用重新计算，不做持久化
type PriorityRecord struct {
	TaskID          string       `json:"task_id"`
	Score           int          `json:"score"`
	Tier            PriorityTier `json:"tier"`
	OnCriticalPath  bool         `json:"on_critical_path"`
	Slack           int64        `json:"slack"`
	DependentCount  int          `json:"dependent_count"`
	DependenciesMet bool         `json:"dependencies_met"`
}

// ScheduleResult 调度结果聚合（对外导出）
// 暴露给外部进度上报方的唯一产物；是计算时刻状态值的快照，
// 任务状态变化后需重新计算，不应跨状态变更复用
type ScheduleResult struct {
	RunID           string                     `json:"run_id"`
	ComputedAt      time.Time                  `json:"computed_at"`
	Entries         map[string]*ScheduleEntry  `json:"entries"`
	CriticalPath    []string                   `json:"critical_path"`
	Priorities      map[string]*PriorityRecord `json:"priorities"`
	MakespanSeconds int64                      `json:"makespan_seconds"`
}
