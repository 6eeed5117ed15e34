package cmd

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/LENAX/proposal-scheduler/pkg/cli/client"
	"github.com/LENAX/proposal-scheduler/pkg/cli/output"
	"github.com/LENAX/proposal-scheduler/pkg/core/dag"
	"github.com/LENAX/proposal-scheduler/pkg/core/registry"
	"github.com/LENAX/proposal-scheduler/pkg/core/schedule"
)

var registryFile string

// scheduleCmd schedule子命令
var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "计算任务调度",
	Long: `执行一次完整的调度计算：CPM前向/后向遍历、关键路径识别、优先级评分。

指定 --registry 时读取本地任务定义YAML文件在本地计算；
否则请求调度服务器，使用服务端注册表。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			result *schedule.ScheduleResult
			err    error
		)
		if registryFile != "" {
			result, err = computeLocal(registryFile)
		} else {
			result, err = client.New(serverURL).ComputeSchedule()
		}
		if err != nil {
			output.Error("调度计算失败: %v", err)
			return err
		}

		if outputJSON {
			return output.PrintJSON(result)
		}

		renderScheduleTable(result)
		renderPriorityTable(result)
		renderSummary(result)
		return nil
	},
}

// scheduleCriticalPathCmd 查看关键路径
var scheduleCriticalPathCmd = &cobra.Command{
	Use:   "critical-path",
	Short: "查看关键路径和总工期",
	RunE: func(cmd *cobra.Command, args []string) error {
		view, err := client.New(serverURL).GetCriticalPath()
		if err != nil {
			output.Error("查询失败: %v", err)
			return err
		}

		if outputJSON {
			return output.PrintJSON(view)
		}

		critical := color.New(color.FgRed, color.Bold)
		fmt.Printf("关键路径: %s\n", critical.Sprint(strings.Join(view.CriticalPath, " → ")))
		fmt.Printf("总工期:   %d秒\n", view.MakespanSeconds)
		return nil
	},
}

// computeLocal 读取本地任务定义文件并在本地计算（内部方法）
// 本地模式没有状态协作方，所有任务按前置未就绪处理
func computeLocal(path string) (*schedule.ScheduleResult, error) {
	reg, err := registry.LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	g, err := dag.BuildGraph(reg)
	if err != nil {
		return nil, err
	}
	return schedule.Compute(context.Background(), g, nil)
}

// renderScheduleTable 渲染时间窗口表格（内部方法）
func renderScheduleTable(result *schedule.ScheduleResult) {
	critical := color.New(color.FgRed, color.Bold)

	// 按最早开始时间排序，同一时刻按ID字典序
	entries := make([]*schedule.ScheduleEntry, 0, len(result.Entries))
	for _, entry := range result.Entries {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].EarliestStart != entries[j].EarliestStart {
			return entries[i].EarliestStart < entries[j].EarliestStart
		}
		return entries[i].TaskID < entries[j].TaskID
	})

	table := output.NewTable([]string{"TASK", "ES", "EF", "LS", "LF", "SLACK", "CRITICAL"})
	for _, entry := range entries {
		taskID := entry.TaskID
		criticalMark := "-"
		if entry.OnCriticalPath {
			taskID = critical.Sprint(taskID)
			criticalMark = critical.Sprint("yes")
		}
		table.AddRow([]string{
			taskID,
			strconv.FormatInt(entry.EarliestStart, 10),
			strconv.FormatInt(entry.EarliestFinish, 10),
			strconv.FormatInt(entry.LatestStart, 10),
			strconv.FormatInt(entry.LatestFinish, 10),
			strconv.FormatInt(entry.Slack, 10),
			criticalMark,
		})
	}
	table.Render()
}

// renderPriorityTable 渲染优先级表格（内部方法）
func renderPriorityTable(result *schedule.ScheduleResult) {
	fmt.Println()

	// 按分值降序排序，同分按ID字典序
	records := make([]*schedule.PriorityRecord, 0, len(result.Priorities))
	for _, record := range result.Priorities {
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].Score != records[j].Score {
			return records[i].Score > records[j].Score
		}
		return records[i].TaskID < records[j].TaskID
	})

	table := output.NewTable([]string{"TASK", "SCORE", "TIER", "SLACK", "DEPENDENTS", "READY"})
	for _, record := range records {
		ready := "-"
		if record.DependenciesMet {
			ready = "yes"
		}
		table.AddRow([]string{
			record.TaskID,
			strconv.Itoa(record.Score),
			formatTier(record.Tier),
			strconv.FormatInt(record.Slack, 10),
			strconv.Itoa(record.DependentCount),
			ready,
		})
	}
	table.Render()
}

// renderSummary 渲染汇总信息（内部方法）
func renderSummary(result *schedule.ScheduleResult) {
	critical := color.New(color.FgRed, color.Bold)
	fmt.Println()
	fmt.Printf("关键路径: %s\n", critical.Sprint(strings.Join(result.CriticalPath, " → ")))
	fmt.Printf("总工期:   %d秒\n", result.MakespanSeconds)
	fmt.Printf("运行ID:   %s\n", result.RunID)
}

// formatTier 按优先级档位着色（内部方法）
func formatTier(tier schedule.PriorityTier) string {
	switch tier {
	case schedule.TierHigh:
		return color.New(color.FgRed).Sprint(string(tier))
	case schedule.TierMedium:
		return color.New(color.FgYellow).Sprint(string(tier))
	default:
		return color.New(color.FgGreen).Sprint(string(tier))
	}
}

func init() {
	scheduleCmd.Flags().StringVarP(&registryFile, "registry", "r", "", "本地任务定义YAML文件路径（指定后在本地计算）")
	scheduleCmd.AddCommand(scheduleCriticalPathCmd)
}
