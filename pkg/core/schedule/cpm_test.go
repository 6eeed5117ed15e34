package schedule

import (
	"context"
	"reflect"
	"testing"

	"github.com/LENAX/proposal-scheduler/pkg/core/dag"
	"github.com/LENAX/proposal-scheduler/pkg/core/registry"
	"github.com/LENAX/proposal-scheduler/pkg/core/status"
)

func buildGraph(t *testing.T, defs []registry.TaskDefinition) *dag.Graph {
	t.Helper()
	reg, err := registry.NewRegistry(defs)
	if err != nil {
		t.Fatalf("创建注册表失败: %v", err)
	}
	g, err := dag.BuildGraph(reg)
	if err != nil {
		t.Fatalf("构建依赖图失败: %v", err)
	}
	return g
}

// diamondDefs 基准场景：A(10) -> B(20)/C(5) -> D(15)
func diamondDefs() []registry.TaskDefinition {
	return []registry.TaskDefinition{
		{ID: "A", Name: "网站分析", DurationSeconds: 10},
		{ID: "B", Name: "市场分析", DurationSeconds: 20, DependsOn: []string{"A"}},
		{ID: "C", Name: "竞品分析", DurationSeconds: 5, DependsOn: []string{"A"}},
		{ID: "D", Name: "方案生成", DurationSeconds: 15, DependsOn: []string{"B", "C"}},
	}
}

func TestForwardPass_Diamond(t *testing.T) {
	g := buildGraph(t, diamondDefs())

	_, entries, err := ForwardPass(g)
	if err != nil {
		t.Fatalf("前向遍历失败: %v", err)
	}

	expected := map[string]int64{"A": 10, "B": 30, "C": 15, "D": 45}
	for id, ef := range expected {
		if entries[id].EarliestFinish != ef {
			t.Errorf("%s最早完成时间错误，期望: %d, 实际: %d", id, ef, entries[id].EarliestFinish)
		}
	}

	// 每个任务的最早完成不早于所有前置任务的最早完成
	for _, id := range g.IDs() {
		for _, parentID := range g.Parents(id) {
			if entries[id].EarliestFinish < entries[parentID].EarliestFinish {
				t.Errorf("%s的最早完成(%d)早于前置任务%s的最早完成(%d)",
					id, entries[id].EarliestFinish, parentID, entries[parentID].EarliestFinish)
			}
		}
	}
}

func TestBackwardPass_Diamond(t *testing.T) {
	g := buildGraph(t, diamondDefs())

	order, entries, err := ForwardPass(g)
	if err != nil {
		t.Fatalf("前向遍历失败: %v", err)
	}
	makespan := BackwardPass(g, order, entries)

	if makespan != 45 {
		t.Errorf("总工期错误，期望: 45, 实际: %d", makespan)
	}

	// C有15秒浮动时间，其余任务都在关键路径上
	if entries["C"].Slack != 15 {
		t.Errorf("C浮动时间错误，期望: 15, 实际: %d", entries["C"].Slack)
	}
	for _, id := range []string{"A", "B", "D"} {
		if entries[id].Slack != 0 {
			t.Errorf("%s应在关键路径上，浮动时间: %d", id, entries[id].Slack)
		}
	}

	// 所有任务浮动时间非负
	for id, entry := range entries {
		if entry.Slack < 0 {
			t.Errorf("%s浮动时间为负: %d", id, entry.Slack)
		}
	}
}

func TestCriticalPath_Diamond(t *testing.T) {
	g := buildGraph(t, diamondDefs())

	order, entries, err := ForwardPass(g)
	if err != nil {
		t.Fatalf("前向遍历失败: %v", err)
	}
	makespan := BackwardPass(g, order, entries)

	path := CriticalPath(entries)
	if !reflect.DeepEqual(path, []string{"A", "B", "D"}) {
		t.Fatalf("关键路径错误，期望: [A B D], 实际: %v", path)
	}

	// 关键路径性质：构成从源点到汇点的连通链，总耗时等于总工期
	var total int64
	for i, id := range path {
		total += g.Duration(id)
		if i == 0 {
			if len(g.Parents(id)) != 0 {
				t.Errorf("关键路径首个任务%s应为源点", id)
			}
			continue
		}
		// 链上相邻任务必须有依赖边
		prev := path[i-1]
		found := false
		for _, parentID := range g.Parents(id) {
			if parentID == prev {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("关键路径不连通: %s与%s之间无依赖边", prev, id)
		}
	}
	if len(g.Children(path[len(path)-1])) != 0 {
		t.Errorf("关键路径末端任务%s应为汇点", path[len(path)-1])
	}
	if total != makespan {
		t.Errorf("关键路径总耗时错误，期望: %d, 实际: %d", makespan, total)
	}
}

func TestCompute_AtLeastOneCriticalTask(t *testing.T) {
	// 任意非空无环图至少存在一个零浮动任务
	g := buildGraph(t, []registry.TaskDefinition{
		{ID: "x", DurationSeconds: 7},
		{ID: "y", DurationSeconds: 3},
		{ID: "z", DurationSeconds: 11, DependsOn: []string{"x"}},
	})

	result, err := Compute(context.Background(), g, status.StaticLookup{})
	if err != nil {
		t.Fatalf("调度计算失败: %v", err)
	}
	if len(result.CriticalPath) == 0 {
		t.Fatal("非空图必须有关键路径")
	}
}

func TestCompute_ZeroDurationTask(t *testing.T) {
	// 零耗时任务：最早完成可以等于前置任务的最早完成
	g := buildGraph(t, []registry.TaskDefinition{
		{ID: "a", DurationSeconds: 10},
		{ID: "b", DurationSeconds: 0, DependsOn: []string{"a"}},
	})

	result, err := Compute(context.Background(), g, status.StaticLookup{})
	if err != nil {
		t.Fatalf("调度计算失败: %v", err)
	}
	if result.Entries["b"].EarliestFinish != result.Entries["a"].EarliestFinish {
		t.Errorf("零耗时任务b的最早完成应等于a的最早完成，实际: %d vs %d",
			result.Entries["b"].EarliestFinish, result.Entries["a"].EarliestFinish)
	}
}

func TestCompute_EmptyRegistry(t *testing.T) {
	g := buildGraph(t, nil)

	result, err := Compute(context.Background(), g, status.StaticLookup{})
	if err != nil {
		t.Fatalf("空注册表不应返回错误: %v", err)
	}
	if len(result.Entries) != 0 || len(result.CriticalPath) != 0 {
		t.Errorf("空注册表应返回空结果: %+v", result)
	}
	if result.MakespanSeconds != 0 {
		t.Errorf("空注册表总工期应为0，实际: %d", result.MakespanSeconds)
	}
}

func TestCompute_Idempotent(t *testing.T) {
	// 注册表和状态不变时，两次计算除RunID/时间戳外完全一致
	statuses := status.StaticLookup{"A": status.StatusCompleted}

	g1 := buildGraph(t, diamondDefs())
	r1, err := Compute(context.Background(), g1, statuses)
	if err != nil {
		t.Fatalf("第一次调度计算失败: %v", err)
	}

	g2 := buildGraph(t, diamondDefs())
	r2, err := Compute(context.Background(), g2, statuses)
	if err != nil {
		t.Fatalf("第二次调度计算失败: %v", err)
	}

	if !reflect.DeepEqual(r1.Entries, r2.Entries) {
		t.Errorf("两次计算的调度条目不一致:\n%+v\n%+v", r1.Entries, r2.Entries)
	}
	if !reflect.DeepEqual(r1.CriticalPath, r2.CriticalPath) {
		t.Errorf("两次计算的关键路径不一致: %v vs %v", r1.CriticalPath, r2.CriticalPath)
	}
	if !reflect.DeepEqual(r1.Priorities, r2.Priorities) {
		t.Errorf("两次计算的优先级不一致:\n%+v\n%+v", r1.Priorities, r2.Priorities)
	}
	if r1.MakespanSeconds != r2.MakespanSeconds {
		t.Errorf("两次计算的总工期不一致: %d vs %d", r1.MakespanSeconds, r2.MakespanSeconds)
	}
}

func TestCompute_SlackBoundaryViaGraph(t *testing.T) {
	// long(600)与short(300)并行汇入sink：short浮动时间恰为300秒
	g := buildGraph(t, []registry.TaskDefinition{
		{ID: "long", DurationSeconds: 600},
		{ID: "short", DurationSeconds: 300},
		{ID: "sink", DurationSeconds: 10, DependsOn: []string{"long", "short"}},
	})

	result, err := Compute(context.Background(), g, status.StaticLookup{})
	if err != nil {
		t.Fatalf("调度计算失败: %v", err)
	}

	if result.Entries["short"].Slack != 300 {
		t.Fatalf("short浮动时间错误，期望: 300, 实际: %d", result.Entries["short"].Slack)
	}
	// 浮动时间300秒按<=300档加2分：不在关键路径+0，出度1+1，依赖满足（无前置）+1
	if result.Priorities["short"].Score != 4 {
		t.Errorf("short分数错误，期望: 4, 实际: %d", result.Priorities["short"].Score)
	}
}
