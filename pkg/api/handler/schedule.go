package handler

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/LENAX/proposal-scheduler/pkg/api/dto"
	"github.com/LENAX/proposal-scheduler/pkg/core/dag"
	"github.com/LENAX/proposal-scheduler/pkg/core/engine"
	"github.com/LENAX/proposal-scheduler/pkg/core/registry"
	"github.com/LENAX/proposal-scheduler/pkg/core/schedule"
)

// ScheduleHandler 调度API处理器
type ScheduleHandler struct {
	engine *engine.Engine
}

// NewScheduleHandler 创建ScheduleHandler
func NewScheduleHandler(eng *engine.Engine) *ScheduleHandler {
	return &ScheduleHandler{engine: eng}
}

// Compute 执行一次调度计算
// POST /api/v1/schedule/compute
func (h *ScheduleHandler) Compute(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ComputeScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(400, fmt.Sprintf("请求参数错误: %v", err)))
		return
	}

	var (
		result *schedule.ScheduleResult
		err    error
	)
	switch {
	case len(req.Tasks) > 0:
		// 内联任务定义：一次性计算，不经过服务端注册表
		result, err = h.computeInline(c, req.Tasks)
	case req.UseCache:
		result, err = h.engine.ComputeScheduleCached(ctx)
	default:
		result, err = h.engine.ComputeSchedule(ctx)
	}
	if err != nil {
		h.writeComputeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(result))
}

// GetCriticalPath 获取关键路径视图
// GET /api/v1/schedule/critical-path
func (h *ScheduleHandler) GetCriticalPath(c *gin.Context) {
	result, err := h.engine.ComputeScheduleCached(c.Request.Context())
	if err != nil {
		h.writeComputeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.CriticalPathResponse{
		RunID:           result.RunID,
		CriticalPath:    result.CriticalPath,
		MakespanSeconds: result.MakespanSeconds,
	}))
}

// GetPriorities 获取任务优先级视图
// GET /api/v1/schedule/priorities
func (h *ScheduleHandler) GetPriorities(c *gin.Context) {
	// 优先级依赖实时状态查询，不走结果缓存
	result, err := h.engine.ComputeSchedule(c.Request.Context())
	if err != nil {
		h.writeComputeError(c, err)
		return
	}

	ids := make([]string, 0, len(result.Priorities))
	for id := range result.Priorities {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	items := make([]*schedule.PriorityRecord, 0, len(ids))
	for _, id := range ids {
		items = append(items, result.Priorities[id])
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ListResponse[*schedule.PriorityRecord]{
		Total: len(items),
		Items: items,
	}))
}

// ListTasks 列出注册表中的任务定义
// GET /api/v1/tasks
func (h *ScheduleHandler) ListTasks(c *gin.Context) {
	reg, err := h.engine.LoadRegistry(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(500, fmt.Sprintf("加载任务注册表失败: %v", err)))
		return
	}

	defs := reg.Definitions()
	items := make([]dto.TaskDefinitionView, 0, len(defs))
	for _, def := range defs {
		items = append(items, dto.TaskDefinitionView{
			ID:              def.ID,
			Name:            def.Name,
			DurationSeconds: def.DurationSeconds,
			DependsOn:       def.DependsOn,
		})
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ListResponse[dto.TaskDefinitionView]{
		Total: len(items),
		Items: items,
	}))
}

// computeInline 用请求内联的任务定义执行一次性计算（内部方法）
func (h *ScheduleHandler) computeInline(c *gin.Context, inputs []dto.TaskDefinitionInput) (*schedule.ScheduleResult, error) {
	defs := make([]registry.TaskDefinition, 0, len(inputs))
	for _, in := range inputs {
		defs = append(defs, registry.TaskDefinition{
			ID:              in.ID,
			Name:            in.Name,
			DurationSeconds: in.DurationSeconds,
			DependsOn:       in.DependsOn,
		})
	}

	reg, err := registry.NewRegistry(defs)
	if err != nil {
		return nil, err
	}
	g, err := dag.BuildGraph(reg)
	if err != nil {
		return nil, err
	}
	return schedule.Compute(c.Request.Context(), g, h.engine.StatusLookup())
}

// writeComputeError 将调度计算错误映射为HTTP响应（内部方法）
// 结构性错误（未知前置任务、循环依赖）是客户端数据问题，返回422
func (h *ScheduleHandler) writeComputeError(c *gin.Context, err error) {
	var unknownErr *dag.UnknownPredecessorError
	var cycleErr *dag.CycleError
	switch {
	case errors.As(err, &unknownErr), errors.As(err, &cycleErr):
		c.JSON(http.StatusUnprocessableEntity, dto.NewErrorResponse(422, err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(500, fmt.Sprintf("调度计算失败: %v", err)))
	}
}

// Health 健康检查处理器
type Health struct {
	version   string
	startTime time.Time
}

// NewHealth 创建健康检查处理器
func NewHealth(version string) *Health {
	return &Health{version: version, startTime: time.Now()}
}

// Check 健康检查
// GET /health
func (h *Health) Check(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.HealthResponse{
		Status:    "ok",
		Version:   h.version,
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Timestamp: time.Now().Format(time.RFC3339),
	}))
}
