package schedule

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/LENAX/proposal-scheduler/pkg/core/dag"
	"github.com/LENAX/proposal-scheduler/pkg/core/status"
)

// BuildResult 聚合各阶段输出为ScheduleResult（对外导出）
// 纯聚合，不做任何计算；外部调用方凭此结果即可渲染甘特视图，无需重新计算
func BuildResult(entries map[string]*ScheduleEntry, criticalPath []string, priorities map[string]*PriorityRecord, makespan int64) *ScheduleResult {
	return &ScheduleResult{
		RunID:           uuid.NewString(),
		ComputedAt:      time.Now(),
		Entries:         entries,
		CriticalPath:    criticalPath,
		Priorities:      priorities,
		MakespanSeconds: makespan,
	}
}

// Compute 执行完整的CPM调度流水线（对外导出）
// 前向遍历 -> 后向遍历 -> 优先级评分 -> 聚合
// 结构性错误（环）直接返回，不产出部分结果；状态查询失败在评分阶段内部降级
func Compute(ctx context.Context, g *dag.Graph, lookup status.Lookup) (*ScheduleResult, error) {
	order, entries, err := ForwardPass(g)
	if err != nil {
		return nil, err
	}

	makespan := BackwardPass(g, order, entries)
	criticalPath := CriticalPath(entries)
	priorities := ScorePriorities(ctx, g, entries, lookup)

	return BuildResult(entries, criticalPath, priorities, makespan), nil
}
