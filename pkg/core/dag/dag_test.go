package dag

import (
	"errors"
	"testing"

	"github.com/LENAX/proposal-scheduler/pkg/core/registry"
)

func mustRegistry(t *testing.T, defs []registry.TaskDefinition) *registry.Registry {
	t.Helper()
	reg, err := registry.NewRegistry(defs)
	if err != nil {
		t.Fatalf("创建注册表失败: %v", err)
	}
	return reg
}

func TestBuildGraph(t *testing.T) {
	reg := mustRegistry(t, []registry.TaskDefinition{
		{ID: "task1", Name: "task1", DurationSeconds: 10},
		{ID: "task2", Name: "task2", DurationSeconds: 20, DependsOn: []string{"task1"}},
	})

	g, err := BuildGraph(reg)
	if err != nil {
		t.Fatalf("构建依赖图失败: %v", err)
	}

	if g.Size() != 2 {
		t.Fatalf("节点数量错误，期望: 2, 实际: %d", g.Size())
	}

	parents := g.Parents("task2")
	if len(parents) != 1 || parents[0] != "task1" {
		t.Errorf("task2前置任务错误，期望: [task1], 实际: %v", parents)
	}

	children := g.Children("task1")
	if len(children) != 1 || children[0] != "task2" {
		t.Errorf("task1后置任务错误，期望: [task2], 实际: %v", children)
	}

	if g.OutDegree("task1") != 1 {
		t.Errorf("task1出度错误，期望: 1, 实际: %d", g.OutDegree("task1"))
	}

	if g.Duration("task2") != 20 {
		t.Errorf("task2耗时错误，期望: 20, 实际: %d", g.Duration("task2"))
	}
}

func TestBuildGraph_UnknownPredecessor(t *testing.T) {
	reg := mustRegistry(t, []registry.TaskDefinition{
		{ID: "task1", DurationSeconds: 10, DependsOn: []string{"ghost"}},
	})

	_, err := BuildGraph(reg)
	if err == nil {
		t.Fatal("引用不存在的前置任务应该返回错误，但未返回")
	}

	var unknownErr *UnknownPredecessorError
	if !errors.As(err, &unknownErr) {
		t.Fatalf("错误类型应为UnknownPredecessorError，实际: %T", err)
	}
	if unknownErr.TaskID != "task1" || unknownErr.MissingID != "ghost" {
		t.Errorf("错误内容错误: TaskID=%s, MissingID=%s", unknownErr.TaskID, unknownErr.MissingID)
	}
}

func TestBuildGraph_CycleDetected(t *testing.T) {
	// A依赖B、B依赖A，必须返回CycleError且不返回图
	reg := mustRegistry(t, []registry.TaskDefinition{
		{ID: "A", DurationSeconds: 10, DependsOn: []string{"B"}},
		{ID: "B", DurationSeconds: 20, DependsOn: []string{"A"}},
	})

	g, err := BuildGraph(reg)
	if err == nil {
		t.Fatal("循环依赖应该返回错误，但未返回")
	}
	if g != nil {
		t.Fatal("循环依赖时不应返回图")
	}

	var cycleErr *CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("错误类型应为CycleError，实际: %T", err)
	}
	if len(cycleErr.Remaining) != 2 || cycleErr.Remaining[0] != "A" || cycleErr.Remaining[1] != "B" {
		t.Errorf("环上任务列表错误，期望: [A B], 实际: %v", cycleErr.Remaining)
	}
}

func TestBuildGraph_SelfCycle(t *testing.T) {
	reg := mustRegistry(t, []registry.TaskDefinition{
		{ID: "A", DurationSeconds: 10, DependsOn: []string{"A"}},
	})

	_, err := BuildGraph(reg)
	var cycleErr *CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("自依赖应返回CycleError，实际: %v", err)
	}
}

func TestTopologicalOrder_Deterministic(t *testing.T) {
	// 菱形结构：task1 -> {task2, task3} -> task4
	reg := mustRegistry(t, []registry.TaskDefinition{
		{ID: "task1", DurationSeconds: 1},
		{ID: "task3", DurationSeconds: 1, DependsOn: []string{"task1"}},
		{ID: "task2", DurationSeconds: 1, DependsOn: []string{"task1"}},
		{ID: "task4", DurationSeconds: 1, DependsOn: []string{"task2", "task3"}},
	})

	g, err := BuildGraph(reg)
	if err != nil {
		t.Fatalf("构建依赖图失败: %v", err)
	}

	// 并列节点按字典序出队，多次执行结果应完全一致
	expected := []string{"task1", "task2", "task3", "task4"}
	for i := 0; i < 5; i++ {
		order, err := g.TopologicalOrder()
		if err != nil {
			t.Fatalf("拓扑排序失败: %v", err)
		}
		if len(order) != len(expected) {
			t.Fatalf("排序结果长度错误，期望: %d, 实际: %d", len(expected), len(order))
		}
		for j := range expected {
			if order[j] != expected[j] {
				t.Fatalf("第%d次排序结果错误，期望: %v, 实际: %v", i+1, expected, order)
			}
		}
	}
}

func TestTopologicalOrder_DisconnectedComponents(t *testing.T) {
	// 两个互不相连的链也应全部排出
	reg := mustRegistry(t, []registry.TaskDefinition{
		{ID: "a1", DurationSeconds: 1},
		{ID: "a2", DurationSeconds: 1, DependsOn: []string{"a1"}},
		{ID: "b1", DurationSeconds: 1},
		{ID: "b2", DurationSeconds: 1, DependsOn: []string{"b1"}},
	})

	g, err := BuildGraph(reg)
	if err != nil {
		t.Fatalf("构建依赖图失败: %v", err)
	}

	order, err := g.TopologicalOrder()
	if err != nil {
		t.Fatalf("拓扑排序失败: %v", err)
	}
	if len(order) != 4 {
		t.Fatalf("排序结果应包含全部4个节点，实际: %d", len(order))
	}

	position := make(map[string]int, len(order))
	for i, id := range order {
		position[id] = i
	}
	if position["a1"] > position["a2"] || position["b1"] > position["b2"] {
		t.Errorf("排序违反依赖约束: %v", order)
	}
}
