// Package storage 提供任务注册表的持久化层
// 注册表（任务定义集合）是唯一需要落库的数据；调度结果是派生数据，随算随取，不持久化
package storage

import (
	"context"
	"errors"

	"github.com/LENAX/proposal-scheduler/pkg/core/registry"
)

// ErrDefinitionNotFound 任务定义不存在（对外导出）
var ErrDefinitionNotFound = errors.New("任务定义不存在")

// TaskRegistryRepository 任务注册表Repository接口（对外导出）
// LoadRegistry 的方法签名与调度引擎的 RegistryProvider 接口一致，
// 任一实现都可以直接作为引擎的注册表提供方使用
type TaskRegistryRepository interface {
	// Save 保存任务定义（存在则更新）
	Save(ctx context.Context, def registry.TaskDefinition) error

	// ReplaceAll 以给定定义集合整体替换注册表（事务内执行）
	ReplaceAll(ctx context.Context, defs []registry.TaskDefinition) error

	// GetByID 获取指定任务定义
	GetByID(ctx context.Context, id string) (registry.TaskDefinition, error)

	// LoadAll 加载所有任务定义（按ID字典序升序）
	LoadAll(ctx context.Context) ([]registry.TaskDefinition, error)

	// Delete 删除指定任务定义
	Delete(ctx context.Context, id string) error

	// LoadRegistry 加载并构建任务注册表
	LoadRegistry(ctx context.Context) (*registry.Registry, error)

	// Close 关闭底层数据库连接
	Close() error
}
