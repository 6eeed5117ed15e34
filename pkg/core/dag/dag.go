package dag

import (
	"fmt"
	"sort"

	godag "github.com/begmaroman/go-dag"

	"github.com/LENAX/proposal-scheduler/pkg/core/registry"
)

// Graph 任务依赖图（对外导出）
// 边方向：前置任务 -> 后置任务
// 构建完成后不可变，由单次调度运行独占持有
type Graph struct {
	dag *godag.DAG[*TaskNode]
}

// BuildGraph 从任务注册表构建依赖图（对外导出）
// 校验：每个被引用的前置任务ID必须存在于注册表中（否则返回UnknownPredecessorError）
// 校验：依赖关系必须无环（否则返回CycleError）
func BuildGraph(reg *registry.Registry) (*Graph, error) {
	// 1. 校验前置任务ID都存在
	for _, id := range reg.IDs() {
		def, _ := reg.Get(id)
		for _, depID := range def.DependsOn {
			if _, exists := reg.Get(depID); !exists {
				return nil, &UnknownPredecessorError{TaskID: id, MissingID: depID}
			}
		}
	}

	// 2. 先构建临时邻接表，一次性检测循环，再添加到 go-dag 的 DAG 中
	// 避免每次 AddEdge 都触发库内部的递归检查
	adjacency := make(map[string][]string, reg.Size())
	for _, id := range reg.IDs() {
		adjacency[id] = nil
	}
	for _, id := range reg.IDs() {
		def, _ := reg.Get(id)
		for _, depID := range def.DependsOn {
			// 边：前置任务 -> 后置任务
			adjacency[depID] = append(adjacency[depID], id)
		}
	}

	if remaining := detectCycleDFS(adjacency); len(remaining) > 0 {
		return nil, &CycleError{Remaining: remaining}
	}

	// 3. 创建 go-dag 实例并添加所有节点和边
	d := godag.NewDAG[*TaskNode]()
	for _, id := range reg.IDs() {
		def, _ := reg.Get(id)
		node := &TaskNode{
			TaskID:          def.ID,
			Name:            def.Name,
			DurationSeconds: def.DurationSeconds,
		}
		if _, err := d.AddVertex(node); err != nil {
			return nil, fmt.Errorf("添加节点失败: TaskID=%s, Error=%w", id, err)
		}
	}
	for _, id := range reg.IDs() {
		def, _ := reg.Get(id)
		for _, depID := range def.DependsOn {
			// 已确认无环，这里不会失败
			if err := d.AddEdge(depID, id); err != nil {
				return nil, fmt.Errorf("添加边失败: %s -> %s, Error=%w", depID, id, err)
			}
		}
	}

	return &Graph{dag: d}, nil
}

// detectCycleDFS 使用DFS检测邻接表中是否存在循环（三色标记法）
// 返回处于环上或被环阻塞的任务ID列表（按字典序）；无环返回nil
func detectCycleDFS(adjacency map[string][]string) []string {
	// 0=白色（未访问），1=灰色（正在访问），2=黑色（已访问）
	color := make(map[string]int, len(adjacency))

	var hasCycle bool
	var dfs func(nodeID string)
	dfs = func(nodeID string) {
		color[nodeID] = 1
		for _, childID := range adjacency[nodeID] {
			switch color[childID] {
			case 0:
				dfs(childID)
			case 1:
				// 灰色节点，存在后向边
				hasCycle = true
			}
			if hasCycle {
				return
			}
		}
		color[nodeID] = 2
	}

	for nodeID := range adjacency {
		if color[nodeID] == 0 {
			dfs(nodeID)
			if hasCycle {
				break
			}
		}
	}

	if !hasCycle {
		return nil
	}

	// 用Kahn消解出所有无法排序的节点，作为错误上下文返回
	inDegree := make(map[string]int, len(adjacency))
	for nodeID := range adjacency {
		inDegree[nodeID] = 0
	}
	for _, children := range adjacency {
		for _, childID := range children {
			inDegree[childID]++
		}
	}
	queue := make([]string, 0)
	for nodeID, degree := range inDegree {
		if degree == 0 {
			queue = append(queue, nodeID)
		}
	}
	processed := make(map[string]bool, len(adjacency))
	for len(queue) > 0 {
		nodeID := queue[0]
		queue = queue[1:]
		processed[nodeID] = true
		for _, childID := range adjacency[nodeID] {
			inDegree[childID]--
			if inDegree[childID] == 0 {
				queue = append(queue, childID)
			}
		}
	}
	remaining := make([]string, 0)
	for nodeID := range adjacency {
		if !processed[nodeID] {
			remaining = append(remaining, nodeID)
		}
	}
	sort.Strings(remaining)
	return remaining
}

// Size 获取节点数量
func (g *Graph) Size() int {
	return len(g.dag.GetVertices())
}

// IDs 获取所有任务ID（按字典序升序）
func (g *Graph) IDs() []string {
	vertices := g.dag.GetVertices()
	ids := make([]string, 0, len(vertices))
	for id := range vertices {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Node 获取指定节点
func (g *Graph) Node(id string) (*TaskNode, bool) {
	node, err := g.dag.GetVertex(id)
	if err != nil {
		return nil, false
	}
	return node, true
}

// Duration 获取指定任务的预估耗时（秒）
// 节点不存在时返回0
func (g *Graph) Duration(id string) int64 {
	node, err := g.dag.GetVertex(id)
	if err != nil {
		return 0
	}
	return node.DurationSeconds
}

// Parents 获取指定任务的前置任务ID列表（按字典序升序）
func (g *Graph) Parents(id string) []string {
	parents, err := g.dag.GetParents(id)
	if err != nil {
		return nil
	}
	result := make([]string, 0, len(parents))
	for parentID := range parents {
		result = append(result, parentID)
	}
	sort.Strings(result)
	return result
}

// Children 获取指定任务的后置任务ID列表（按字典序升序）
func (g *Graph) Children(id string) []string {
	children, err := g.dag.GetChildren(id)
	if err != nil {
		return nil
	}
	result := make([]string, 0, len(children))
	for childID := range children {
		result = append(result, childID)
	}
	sort.Strings(result)
	return result
}

// OutDegree 获取指定任务的出度（直接依赖它的任务数量）
func (g *Graph) OutDegree(id string) int {
	children, err := g.dag.GetChildren(id)
	if err != nil {
		return 0
	}
	return len(children)
}

// TopologicalOrder 执行拓扑排序（对外导出）
// 使用Kahn算法：每轮从当前入度为0的节点中取字典序最小者，保证输出确定性
// 若处理结束后仍有剩余节点，说明存在环，返回CycleError
func (g *Graph) TopologicalOrder() ([]string, error) {
	inDegree := make(map[string]int, g.Size())
	for _, id := range g.IDs() {
		inDegree[id] = len(g.Parents(id))
	}

	queue := make([]string, 0)
	for _, id := range g.IDs() {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}
	sort.Strings(queue)

	order := make([]string, 0, g.Size())
	for len(queue) > 0 {
		nodeID := queue[0]
		queue = queue[1:]
		order = append(order, nodeID)

		for _, childID := range g.Children(nodeID) {
			inDegree[childID]--
			if inDegree[childID] == 0 {
				queue = append(queue, childID)
			}
		}
		// 保持队列按字典序，使并列节点的出队顺序确定
		sort.Strings(queue)
	}

	if len(order) != g.Size() {
		processed := make(map[string]bool, len(order))
		for _, id := range order {
			processed[id] = true
		}
		remaining := make([]string, 0)
		for _, id := range g.IDs() {
			if !processed[id] {
				remaining = append(remaining, id)
			}
		}
		return nil, &CycleError{Remaining: remaining}
	}

	return order, nil
}
