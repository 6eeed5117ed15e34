package registry

import (
	"fmt"
	"sort"
)

// TaskDefinition 任务定义（对外导出）
// 来自静态注册表的一条任务记录：ID、名称、预估耗时（秒）、前置任务ID列表
// 注意：DurationSeconds 是规划估算值，不是实际执行耗时
type TaskDefinition struct {
	ID              string   `yaml:"id" json:"id"`
	Name            string   `yaml:"name" json:"name"`
	DurationSeconds int64    `yaml:"duration_seconds" json:"duration_seconds"`
	DependsOn       []string `yaml:"depends_on" json:"depends_on,omitempty"`
}

// Registry 任务注册表（对外导出）
// 一次调度运行的静态输入，构建后不可变
// 不校验前置任务ID是否存在——该校验属于DAG构建阶段（会返回UnknownPredecessorError）
type Registry struct {
	tasks map[string]TaskDefinition
}

// NewRegistry 创建任务注册表（对外导出的工厂方法）
// 校验：ID非空且唯一、耗时非负
func NewRegistry(defs []TaskDefinition) (*Registry, error) {
	tasks := make(map[string]TaskDefinition, len(defs))
	for _, def := range defs {
		if def.ID == "" {
			return nil, fmt.Errorf("任务ID不能为空: Name=%s", def.Name)
		}
		if _, exists := tasks[def.ID]; exists {
			return nil, fmt.Errorf("任务ID重复: %s", def.ID)
		}
		if def.DurationSeconds < 0 {
			return nil, fmt.Errorf("任务 %s 的预估耗时不能为负数: %d", def.ID, def.DurationSeconds)
		}
		// 复制依赖列表，避免调用方后续修改影响注册表
		if def.DependsOn != nil {
			def.DependsOn = append([]string(nil), def.DependsOn...)
		}
		tasks[def.ID] = def
	}
	return &Registry{tasks: tasks}, nil
}

// Size 获取任务数量
func (r *Registry) Size() int {
	return len(r.tasks)
}

// Get 获取指定任务定义
// 返回: 任务定义和是否存在
func (r *Registry) Get(id string) (TaskDefinition, bool) {
	def, ok := r.tasks[id]
	return def, ok
}

// IDs 获取所有任务ID（按字典序升序）
// 排序保证所有基于注册表的遍历都是确定性的
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.tasks))
	for id := range r.tasks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Definitions 获取所有任务定义（按ID字典序升序）
func (r *Registry) Definitions() []TaskDefinition {
	defs := make([]TaskDefinition, 0, len(r.tasks))
	for _, id := range r.IDs() {
		defs = append(defs, r.tasks[id])
	}
	return defs
}

// Snapshot 创建注册表的独立副本（对外导出）
// 每次调度运行应持有自己的快照，避免注册表被修改后产生脏读
func (r *Registry) Snapshot() *Registry {
	tasks := make(map[string]TaskDefinition, len(r.tasks))
	for id, def := range r.tasks {
		if def.DependsOn != nil {
			def.DependsOn = append([]string(nil), def.DependsOn...)
		}
		tasks[id] = def
	}
	return &Registry{tasks: tasks}
}
