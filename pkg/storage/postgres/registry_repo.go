package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/LENAX/proposal-scheduler/pkg/core/registry"
	"github.com/LENAX/proposal-scheduler/pkg/storage"
	"github.com/LENAX/proposal-scheduler/pkg/storage/dao"
)

// TaskRegistryRepo 任务注册表Repository的PostgreSQL实现（对外导出）
type TaskRegistryRepo struct {
	db *sqlx.DB
}

// NewTaskRegistryRepo 创建任务注册表Repository实例（对外导出）
func NewTaskRegistryRepo(db *sqlx.DB) (*TaskRegistryRepo, error) {
	repo := &TaskRegistryRepo{db: db}
	if err := repo.initSchema(); err != nil {
		return nil, fmt.Errorf("初始化表结构失败: %w", err)
	}
	return repo, nil
}

// NewTaskRegistryRepoFromDSN 通过DSN创建任务注册表Repository实例（对外导出）
func NewTaskRegistryRepoFromDSN(dsn string) (*TaskRegistryRepo, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("打开数据库失败: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("数据库连接失败: %w", err)
	}

	// 连接池配置
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return NewTaskRegistryRepo(db)
}

// GetDB 获取底层数据库连接（对外导出）
func (r *TaskRegistryRepo) GetDB() *sqlx.DB {
	return r.db
}

// Close 关闭数据库连接（对外导出）
func (r *TaskRegistryRepo) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// initSchema 初始化数据库表结构
func (r *TaskRegistryRepo) initSchema() error {
	createSQL := `
	CREATE TABLE IF NOT EXISTS task_definition (
		id VARCHAR(128) PRIMARY KEY,
		name VARCHAR(255) NOT NULL DEFAULT '',
		duration_seconds BIGINT NOT NULL DEFAULT 0,
		depends_on TEXT NOT NULL DEFAULT '[]',
		create_time TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		update_time TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
	`
	if _, err := r.db.Exec(createSQL); err != nil {
		return err
	}
	return nil
}

// Save 保存任务定义（存在则更新）
func (r *TaskRegistryRepo) Save(ctx context.Context, def registry.TaskDefinition) error {
	record, err := dao.FromDefinition(def)
	if err != nil {
		return err
	}

	upsertSQL := `
	INSERT INTO task_definition (id, name, duration_seconds, depends_on, create_time, update_time)
	VALUES (:id, :name, :duration_seconds, :depends_on, :create_time, :update_time)
	ON CONFLICT (id) DO UPDATE SET
		name = EXCLUDED.name,
		duration_seconds = EXCLUDED.duration_seconds,
		depends_on = EXCLUDED.depends_on,
		update_time = EXCLUDED.update_time
	`
	if _, err := r.db.NamedExecContext(ctx, upsertSQL, record); err != nil {
		return fmt.Errorf("保存任务定义失败: %w", err)
	}
	return nil
}

// ReplaceAll 以给定定义集合整体替换注册表
func (r *TaskRegistryRepo) ReplaceAll(ctx context.Context, defs []registry.TaskDefinition) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("开启事务失败: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM task_definition"); err != nil {
		return fmt.Errorf("清空任务定义失败: %w", err)
	}

	insertSQL := `
	INSERT INTO task_definition (id, name, duration_seconds, depends_on, create_time, update_time)
	VALUES (:id, :name, :duration_seconds, :depends_on, :create_time, :update_time)
	`
	for _, def := range defs {
		record, err := dao.FromDefinition(def)
		if err != nil {
			return err
		}
		if _, err := tx.NamedExecContext(ctx, insertSQL, record); err != nil {
			return fmt.Errorf("插入任务定义 %s 失败: %w", def.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("提交事务失败: %w", err)
	}
	return nil
}

// GetByID 获取指定任务定义
func (r *TaskRegistryRepo) GetByID(ctx context.Context, id string) (registry.TaskDefinition, error) {
	var record dao.TaskDefinitionDAO
	err := r.db.GetContext(ctx, &record,
		"SELECT id, name, duration_seconds, depends_on, create_time, update_time FROM task_definition WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return registry.TaskDefinition{}, storage.ErrDefinitionNotFound
	}
	if err != nil {
		return registry.TaskDefinition{}, fmt.Errorf("查询任务定义失败: %w", err)
	}
	return record.ToDefinition()
}

// LoadAll 加载所有任务定义（按ID字典序升序）
func (r *TaskRegistryRepo) LoadAll(ctx context.Context) ([]registry.TaskDefinition, error) {
	var records []dao.TaskDefinitionDAO
	err := r.db.SelectContext(ctx, &records,
		"SELECT id, name, duration_seconds, depends_on, create_time, update_time FROM task_definition ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("查询任务定义列表失败: %w", err)
	}

	defs := make([]registry.TaskDefinition, 0, len(records))
	for i := range records {
		def, err := records[i].ToDefinition()
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// Delete 删除指定任务定义
func (r *TaskRegistryRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM task_definition WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("删除任务定义失败: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("获取影响行数失败: %w", err)
	}
	if affected == 0 {
		return storage.ErrDefinitionNotFound
	}
	return nil
}

// LoadRegistry 加载并构建任务注册表
func (r *TaskRegistryRepo) LoadRegistry(ctx context.Context) (*registry.Registry, error) {
	defs, err := r.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	return registry.NewRegistry(defs)
}
