package dag

import (
	"fmt"
	"strings"
)

// UnknownPredecessorError 未知前置任务错误（对外导出）
// 注册表中某个任务引用了不存在的前置任务ID，属于致命的输入错误
type UnknownPredecessorError struct {
	TaskID    string // 引用方任务ID
	MissingID string // 不存在的前置任务ID
}

func (e *UnknownPredecessorError) Error() string {
	return fmt.Sprintf("任务 %s 引用了不存在的前置任务: %s", e.TaskID, e.MissingID)
}

// CycleError 循环依赖错误（对外导出）
// 依赖关系构成有向环，无法进行CPM调度，属于致命的输入错误
// Remaining 为无法完成拓扑排序的任务ID列表（按字典序）
type CycleError struct {
	Remaining []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("检测到循环依赖，涉及任务: %s", strings.Join(e.Remaining, ", "))
}
