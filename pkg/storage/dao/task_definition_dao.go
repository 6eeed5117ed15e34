package dao

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/LENAX/proposal-scheduler/pkg/core/registry"
)

// TaskDefinitionDAO task_definition表的数据访问对象（内部使用）
type TaskDefinitionDAO struct {
	ID              string    `db:"id"`
	Name            string    `db:"name"`
	DurationSeconds int64     `db:"duration_seconds"`
	DependsOn       string    `db:"depends_on"` // JSON数组格式存储
	CreateTime      time.Time `db:"create_time"`
	UpdateTime      time.Time `db:"update_time"`
}

// FromDefinition 将任务定义转换为DAO
func FromDefinition(def registry.TaskDefinition) (*TaskDefinitionDAO, error) {
	deps := def.DependsOn
	if deps == nil {
		deps = []string{}
	}
	depsJSON, err := json.Marshal(deps)
	if err != nil {
		return nil, fmt.Errorf("序列化依赖列表失败: %w", err)
	}

	now := time.Now()
	return &TaskDefinitionDAO{
		ID:              def.ID,
		Name:            def.Name,
		DurationSeconds: def.DurationSeconds,
		DependsOn:       string(depsJSON),
		CreateTime:      now,
		UpdateTime:      now,
	}, nil
}

// ToDefinition 将DAO转换为任务定义
func (d *TaskDefinitionDAO) ToDefinition() (registry.TaskDefinition, error) {
	var deps []string
	if d.DependsOn != "" {
		if err := json.Unmarshal([]byte(d.DependsOn), &deps); err != nil {
			return registry.TaskDefinition{}, fmt.Errorf("解析任务 %s 的依赖列表失败: %w", d.ID, err)
		}
	}
	if len(deps) == 0 {
		deps = nil
	}

	return registry.TaskDefinition{
		ID:              d.ID,
		Name:            d.Name,
		DurationSeconds: d.DurationSeconds,
		DependsOn:       deps,
	}, nil
}
