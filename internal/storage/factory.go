package storage

import (
	"fmt"

	"github.com/LENAX/proposal-scheduler/pkg/storage"
	"github.com/LENAX/proposal-scheduler/pkg/storage/mysql"
	"github.com/LENAX/proposal-scheduler/pkg/storage/postgres"
	pkgsqlite "github.com/LENAX/proposal-scheduler/pkg/storage/sqlite"
)

// DatabaseFactory 数据库工厂接口（内部使用）
type DatabaseFactory interface {
	// CreateTaskRegistryRepo 创建任务注册表Repository
	CreateTaskRegistryRepo() (storage.TaskRegistryRepository, error)
	// Close 关闭数据库连接
	Close() error
}

// NewDatabaseFactory 创建数据库工厂（内部方法）
// dbType: 数据库类型（sqlite/mysql/postgres）
// dsn: 数据库连接字符串
func NewDatabaseFactory(dbType, dsn string) (DatabaseFactory, error) {
	switch dbType {
	case "sqlite":
		return newSQLiteFactory(dsn)
	case "mysql":
		return newMySQLFactory(dsn)
	case "postgres", "postgresql":
		return newPostgresFactory(dsn)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", dbType)
	}
}

// sqliteFactory SQLite数据库工厂（内部实现）
type sqliteFactory struct {
	registryRepo storage.TaskRegistryRepository
}

func newSQLiteFactory(dsn string) (*sqliteFactory, error) {
	repo, err := pkgsqlite.NewTaskRegistryRepoFromDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("create sqlite repository failed: %w", err)
	}
	return &sqliteFactory{
		registryRepo: repo,
	}, nil
}

func (f *sqliteFactory) CreateTaskRegistryRepo() (storage.TaskRegistryRepository, error) {
	return f.registryRepo, nil
}

func (f *sqliteFactory) Close() error {
	return f.registryRepo.Close()
}

// mysqlFactory MySQL数据库工厂（内部实现）
type mysqlFactory struct {
	registryRepo storage.TaskRegistryRepository
}

func newMySQLFactory(dsn string) (*mysqlFactory, error) {
	repo, err := mysql.NewTaskRegistryRepoFromDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("create mysql repository failed: %w", err)
	}
	return &mysqlFactory{
		registryRepo: repo,
	}, nil
}

func (f *mysqlFactory) CreateTaskRegistryRepo() (storage.TaskRegistryRepository, error) {
	return f.registryRepo, nil
}

func (f *mysqlFactory) Close() error {
	return f.registryRepo.Close()
}

// postgresFactory PostgreSQL数据库工厂（内部实现）
type postgresFactory struct {
	registryRepo storage.TaskRegistryRepository
}

func newPostgresFactory(dsn string) (*postgresFactory, error) {
	repo, err := postgres.NewTaskRegistryRepoFromDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("create postgres repository failed: %w", err)
	}
	return &postgresFactory{
		registryRepo: repo,
	}, nil
}

func (f *postgresFactory) CreateTaskRegistryRepo() (storage.TaskRegistryRepository, error) {
	return f.registryRepo, nil
}

func (f *postgresFactory) Close() error {
	return f.registryRepo.Close()
}
