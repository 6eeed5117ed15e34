package dag

// TaskNode DAG节点结构（对外导出）
// 实现 go-dag 的 Identifiable 接口，节点值携带调度所需的任务属性
type TaskNode struct {
	TaskID          string // 任务ID
	Name            string // 任务名称
	DurationSeconds int64  // 预估耗时（秒）
}

// ID 实现 go-dag 的 Identifiable 接口
func (n *TaskNode) ID() string {
	return n.TaskID
}
