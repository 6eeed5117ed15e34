package schedule

import (
	"context"
	"log"

	"github.com/LENAX/proposal-scheduler/pkg/core/dag"
	"github.com/LENAX/proposal-scheduler/pkg/core/status"
)

// 评分规则常量
// 评分规则是外部进度上报API依赖的行为契约，修改前需要同步所有消费方
const (
	scoreCriticalPath    = 4 // 位于关键路径
	scoreZeroSlack       = 3 // 浮动时间为0
	scoreTightSlack      = 2 // 浮动时间 <= 300秒
	scoreLooseSlack      = 1 // 浮动时间 <= 600秒
	scoreDependenciesMet = 1 // 所有前置任务均已完成
	maxFanOutScore       = 2 // 出度加分上限

	slackTightThreshold = 300 // 秒
	slackLooseThreshold = 600 // 秒

	tierHighThreshold   = 8
	tierMediumThreshold = 5
)

// scoreTask 计算单任务的优先级分数（内部方法）
// 分项：关键路径+4；浮动时间0/+3、<=300秒/+2、<=600秒/+1；
// 出度+min(出度, 2)；所有前置任务已完成+1
func scoreTask(onCriticalPath bool, slack int64, outDegree int, dependenciesMet bool) int {
	score := 0
	if onCriticalPath {
		score += scoreCriticalPath
	}
	switch {
	case slack == 0:
		score += scoreZeroSlack
	case slack <= slackTightThreshold:
		score += scoreTightSlack
	case slack <= slackLooseThreshold:
		score += scoreLooseSlack
	}
	if outDegree > maxFanOutScore {
		score += maxFanOutScore
	} else {
		score += outDegree
	}
	if dependenciesMet {
		score += scoreDependenciesMet
	}
	return score
}

// tierOf 将分数映射到优先级档位（内部方法）
func tierOf(score int) PriorityTier {
	switch {
	case score >= tierHighThreshold:
		return TierHigh
	case score >= tierMediumThreshold:
		return TierMedium
	default:
		return TierLow
	}
}

// ScorePriorities 计算所有任务的优先级评分（对外导出）
// lookup 为外部任务状态协作方；查询失败或状态未知时，按"依赖未满足"处理（失败安全），
// 不中断评分流程。本函数只读取图和状态，不产生任何副作用
func ScorePriorities(ctx context.Context, g *dag.Graph, entries map[string]*ScheduleEntry, lookup status.Lookup) map[string]*PriorityRecord {
	records := make(map[string]*PriorityRecord, len(entries))

	for _, id := range g.IDs() {
		entry := entries[id]
		if entry == nil {
			continue
		}

		record := &PriorityRecord{
			TaskID:         id,
			OnCriticalPath: entry.OnCriticalPath,
			Slack:          entry.Slack,
			DependentCount: g.OutDegree(id),
		}

		record.DependenciesMet = dependenciesMet(ctx, g, id, lookup)
		record.Score = scoreTask(record.OnCriticalPath, record.Slack, record.DependentCount, record.DependenciesMet)
		record.Tier = tierOf(record.Score)
		records[id] = record
	}

	return records
}

// dependenciesMet 检查任务的所有前置任务是否都已完成（内部方法）
// 每个前置任务查询一次实时状态；协作方缺失或返回unknown均视为未完成
func dependenciesMet(ctx context.Context, g *dag.Graph, taskID string, lookup status.Lookup) bool {
	if lookup == nil {
		return false
	}
	for _, parentID := range g.Parents(taskID) {
		st, err := lookup.Status(ctx, parentID)
		if err != nil {
			// 状态查询错误按任务隔离：记录日志、按未完成处理，绝不中断整次调度
			log.Printf("⚠️ [优先级评分] 状态查询失败: TaskID=%s, Error=%v", parentID, err)
			return false
		}
		if st != status.StatusCompleted {
			return false
		}
	}
	return true
}
