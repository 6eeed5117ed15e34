// Package config 提供调度服务的YAML配置加载与默认值管理
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// SchedulerConfig 调度服务配置（对外导出）
type SchedulerConfig struct {
	Scheduler struct {
		General struct {
			InstanceName string `yaml:"instance_name"`
			LogLevel     string `yaml:"log_level"`
			Env          string `yaml:"env"`
		} `yaml:"general"`
		Registry struct {
			// Source 注册表来源：file（YAML任务文件）或 database
			Source string `yaml:"source"`
			// FilePath 任务定义YAML文件路径（Source=file时使用）
			FilePath string `yaml:"file_path"`
			Database struct {
				Type            string        `yaml:"type"`
				DSN             string        `yaml:"dsn"`
				MaxOpenConns    int           `yaml:"max_open_conns"`
				MaxIdleConns    int           `yaml:"max_idle_conns"`
				ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
			} `yaml:"database"`
		} `yaml:"registry"`
		StatusCollaborator struct {
			// BaseURL 任务状态查询服务地址，为空时禁用状态查询
			BaseURL        string        `yaml:"base_url"`
			RequestTimeout time.Duration `yaml:"request_timeout"`
		} `yaml:"status_collaborator"`
		Recompute struct {
			// CronExpr 周期性重新计算的Cron表达式（秒级精度），为空时不启用
			CronExpr string `yaml:"cron_expr"`
			Cache    struct {
				Enabled bool          `yaml:"enabled"`
				TTL     time.Duration `yaml:"ttl"`
			} `yaml:"cache"`
		} `yaml:"recompute"`
		API struct {
			Host         string        `yaml:"host"`
			Port         int           `yaml:"port"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
		} `yaml:"api"`
	} `yaml:"proposal-scheduler"`
}

// LoadFromFile 从YAML文件加载配置（对外导出）
// 加载后自动应用默认值
func LoadFromFile(path string) (*SchedulerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var cfg SchedulerConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	cfg.ApplyDefaults()
	return &cfg, nil
}

// GetDatabaseType 获取数据库类型
func (c *SchedulerConfig) GetDatabaseType() string {
	return c.Scheduler.Registry.Database.Type
}

// GetDatabaseDSN 获取数据库DSN
func (c *SchedulerConfig) GetDatabaseDSN() string {
	return c.Scheduler.Registry.Database.DSN
}

// GetStatusRequestTimeout 获取状态查询超时时间
func (c *SchedulerConfig) GetStatusRequestTimeout() time.Duration {
	timeout := c.Scheduler.StatusCollaborator.RequestTimeout
	if timeout <= 0 {
		return 2 * time.Second // 默认值
	}
	return timeout
}

// ApplyDefaults 应用默认值
func (c *SchedulerConfig) ApplyDefaults() {
	// General默认值
	if c.Scheduler.General.InstanceName == "" {
		c.Scheduler.General.InstanceName = "proposal-scheduler"
	}
	if c.Scheduler.General.LogLevel == "" {
		c.Scheduler.General.LogLevel = "info"
	}
	if c.Scheduler.General.Env == "" {
		c.Scheduler.General.Env = "dev"
	}

	// Registry默认值
	if c.Scheduler.Registry.Source == "" {
		c.Scheduler.Registry.Source = "file"
	}
	if c.Scheduler.Registry.FilePath == "" {
		c.Scheduler.Registry.FilePath = "./configs/tasks.yaml"
	}
	if c.Scheduler.Registry.Database.Type == "" {
		c.Scheduler.Registry.Database.Type = "sqlite"
	}
	if c.Scheduler.Registry.Database.DSN == "" {
		c.Scheduler.Registry.Database.DSN = "./data/scheduler.db"
	}
	if c.Scheduler.Registry.Database.MaxOpenConns <= 0 {
		c.Scheduler.Registry.Database.MaxOpenConns = 10
	}
	if c.Scheduler.Registry.Database.MaxIdleConns <= 0 {
		c.Scheduler.Registry.Database.MaxIdleConns = 5
	}
	if c.Scheduler.Registry.Database.ConnMaxLifetime <= 0 {
		c.Scheduler.Registry.Database.ConnMaxLifetime = 2 * time.Hour
	}

	// 状态协作方默认值
	if c.Scheduler.StatusCollaborator.RequestTimeout <= 0 {
		c.Scheduler.StatusCollaborator.RequestTimeout = 2 * time.Second
	}

	// 重新计算默认值
	if c.Scheduler.Recompute.Cache.TTL <= 0 {
		c.Scheduler.Recompute.Cache.TTL = 5 * time.Second
	}

	// API默认值
	if c.Scheduler.API.Host == "" {
		c.Scheduler.API.Host = "0.0.0.0"
	}
	if c.Scheduler.API.Port <= 0 {
		c.Scheduler.API.Port = 8080
	}
	if c.Scheduler.API.ReadTimeout <= 0 {
		c.Scheduler.API.ReadTimeout = 15 * time.Second
	}
	if c.Scheduler.API.WriteTimeout <= 0 {
		c.Scheduler.API.WriteTimeout = 15 * time.Second
	}
}
