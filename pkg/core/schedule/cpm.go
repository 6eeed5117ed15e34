// Package schedule 实现关键路径法（CPM）调度计算
// 流程：前向遍历（最早开始/完成）-> 后向遍历（最晚开始/完成、浮动时间、关键路径）
// -> 优先级评分 -> 结果聚合。每个阶段都是对不可变依赖图的纯函数
package schedule

import (
	"sort"

	"github.com/LENAX/proposal-scheduler/pkg/core/dag"
)

// ForwardPass 前向遍历（对外导出）
// 按确定性拓扑序计算每个任务的最早开始/最早完成时间
// 无前置任务的节点最早开始为0；有前置任务的节点最早开始为所有前置任务最早完成的最大值
// 返回拓扑序和各任务的调度条目；图中存在环时返回CycleError
func ForwardPass(g *dag.Graph) ([]string, map[string]*ScheduleEntry, error) {
	order, err := g.TopologicalOrder()
	if err != nil {
		return nil, nil, err
	}

	entries := make(map[string]*ScheduleEntry, len(order))
	for _, id := range order {
		entry := &ScheduleEntry{TaskID: id}

		var earliestStart int64
		for _, parentID := range g.Parents(id) {
			if parentEntry := entries[parentID]; parentEntry.EarliestFinish > earliestStart {
				earliestStart = parentEntry.EarliestFinish
			}
		}
		entry.EarliestStart = earliestStart
		entry.EarliestFinish = earliestStart + g.Duration(id)
		entries[id] = entry
	}

	return order, entries, nil
}

// BackwardPass 后向遍历（对外导出）
// 按前向拓扑序的逆序计算最晚开始/最晚完成时间与浮动时间（slack）
// 汇点（无后置任务）的最晚完成取其自身最早完成，不引入超出最长链的人为工期；
// 非汇点的最晚完成为所有后置任务最晚开始的最小值
// slack == 0 的任务即为关键路径成员
// 返回项目总工期（所有任务最早完成的最大值）
func BackwardPass(g *dag.Graph, order []string, entries map[string]*ScheduleEntry) int64 {
	var makespan int64
	for _, entry := range entries {
		if entry.EarliestFinish > makespan {
			makespan = entry.EarliestFinish
		}
	}

	for i := len(order) - 1; i >= 0; i-- {
		id := order[i]
		entry := entries[id]

		children := g.Children(id)
		if len(children) == 0 {
			// 汇点：最晚完成 = 自身最早完成
			entry.LatestFinish = entry.EarliestFinish
		} else {
			minLatestStart := entries[children[0]].LatestStart
			for _, childID := range children[1:] {
				if ls := entries[childID].LatestStart; ls < minLatestStart {
					minLatestStart = ls
				}
			}
			entry.LatestFinish = minLatestStart
		}

		entry.LatestStart = entry.LatestFinish - g.Duration(id)
		entry.Slack = entry.LatestStart - entry.EarliestStart
		entry.OnCriticalPath = entry.Slack == 0
	}

	return makespan
}

// CriticalPath 提取关键路径（对外导出）
// 返回所有零浮动任务的ID，按最早开始时间升序（并列时按ID字典序）
// 对有效的无环图，关键路径构成从源点到汇点的连通链
func CriticalPath(entries map[string]*ScheduleEntry) []string {
	path := make([]string, 0)
	for id, entry := range entries {
		if entry.OnCriticalPath {
			path = append(path, id)
		}
	}
	sort.Slice(path, func(i, j int) bool {
		a, b := entries[path[i]], entries[path[j]]
		if a.EarliestStart != b.EarliestStart {
			return a.EarliestStart < b.EarliestStart
		}
		return path[i] < path[j]
	})
	return path
}
