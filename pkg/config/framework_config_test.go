package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadFromFile(t *testing.T) {
	content := `
proposal-scheduler:
  general:
    instance_name: test-scheduler
    env: test
  registry:
    source: database
    database:
      type: postgres
      dsn: "host=localhost dbname=scheduler sslmode=disable"
  status_collaborator:
    base_url: http://localhost:9000
    request_timeout: 3s
  recompute:
    cron_expr: "0 */5 * * * *"
    cache:
      enabled: true
      ttl: 10s
  api:
    port: 9090
`
	path := filepath.Join(t.TempDir(), "scheduler.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	require.Equal(t, "test-scheduler", cfg.Scheduler.General.InstanceName)
	require.Equal(t, "test", cfg.Scheduler.General.Env)
	require.Equal(t, "database", cfg.Scheduler.Registry.Source)
	require.Equal(t, "postgres", cfg.GetDatabaseType())
	require.Equal(t, "http://localhost:9000", cfg.Scheduler.StatusCollaborator.BaseURL)
	require.Equal(t, 3*time.Second, cfg.GetStatusRequestTimeout())
	require.Equal(t, "0 */5 * * * *", cfg.Scheduler.Recompute.CronExpr)
	require.True(t, cfg.Scheduler.Recompute.Cache.Enabled)
	require.Equal(t, 10*time.Second, cfg.Scheduler.Recompute.Cache.TTL)
	require.Equal(t, 9090, cfg.Scheduler.API.Port)

	// 未填写的字段应用默认值
	require.Equal(t, "0.0.0.0", cfg.Scheduler.API.Host)
	require.Equal(t, 15*time.Second, cfg.Scheduler.API.ReadTimeout)
	require.Equal(t, "info", cfg.Scheduler.General.LogLevel)
}

func TestLoadFromFile_Defaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(path, []byte("proposal-scheduler: {}\n"), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	require.Equal(t, "proposal-scheduler", cfg.Scheduler.General.InstanceName)
	require.Equal(t, "file", cfg.Scheduler.Registry.Source)
	require.Equal(t, "sqlite", cfg.GetDatabaseType())
	require.Equal(t, 2*time.Second, cfg.GetStatusRequestTimeout())
	require.Equal(t, 5*time.Second, cfg.Scheduler.Recompute.Cache.TTL)
	require.Equal(t, 8080, cfg.Scheduler.API.Port)
}

func TestLoadFromFile_Missing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
