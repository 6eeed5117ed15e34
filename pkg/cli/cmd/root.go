package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	// 全局变量
	serverURL  string
	outputJSON bool
)

// rootCmd 根命令
var rootCmd = &cobra.Command{
	Use:   "proposal-scheduler",
	Short: "Proposal Scheduler CLI - 提案任务调度命令行工具",
	Long: `Proposal Scheduler CLI 是提案生成流水线的任务调度命令行工具。

支持的功能：
  - 计算任务调度（CPM关键路径、时间窗口、优先级）
  - 查看关键路径和总工期
  - 列出任务注册表

使用示例：
  # 用本地任务定义文件计算调度
  proposal-scheduler schedule --registry tasks.yaml

  # 通过服务端注册表计算调度
  proposal-scheduler schedule

  # 查看关键路径
  proposal-scheduler schedule critical-path

  # 列出任务定义
  proposal-scheduler tasks list`,
}

// Execute 执行根命令
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// 全局参数
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", "http://localhost:8080", "调度服务器地址")
	rootCmd.PersistentFlags().BoolVarP(&outputJSON, "json", "j", false, "使用JSON格式输出")

	// 添加子命令
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(tasksCmd)
	rootCmd.AddCommand(versionCmd)
}
