package cmd

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/LENAX/proposal-scheduler/pkg/cli/client"
	"github.com/LENAX/proposal-scheduler/pkg/cli/output"
)

// tasksCmd tasks子命令
var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "任务注册表管理命令",
}

// tasksListCmd 列出任务定义
var tasksListCmd = &cobra.Command{
	Use:   "list",
	Short: "列出注册表中的任务定义",
	RunE: func(cmd *cobra.Command, args []string) error {
		defs, err := client.New(serverURL).ListTasks()
		if err != nil {
			output.Error("查询失败: %v", err)
			return err
		}

		if outputJSON {
			return output.PrintJSON(defs)
		}

		if len(defs) == 0 {
			output.Info("注册表为空")
			return nil
		}

		table := output.NewTable([]string{"ID", "NAME", "DURATION(S)", "DEPENDS_ON"})
		for _, def := range defs {
			dependsOn := "-"
			if len(def.DependsOn) > 0 {
				dependsOn = strings.Join(def.DependsOn, ", ")
			}
			table.AddRow([]string{
				def.ID,
				def.Name,
				strconv.FormatInt(def.DurationSeconds, 10),
				dependsOn,
			})
		}
		table.Render()
		return nil
	},
}

func init() {
	tasksCmd.AddCommand(tasksListCmd)
}
