package dto

// ComputeScheduleRequest 调度计算请求
// Tasks非空时用请求内联的任务定义计算；为空时用服务端注册表
type ComputeScheduleRequest struct {
	Tasks []TaskDefinitionInput `json:"tasks" binding:"omitempty,dive"`
	// UseCache 允许命中短TTL结果缓存（只读视图场景）
	UseCache bool `json:"use_cache" binding:"omitempty"`
}

// TaskDefinitionInput 任务定义输入
type TaskDefinitionInput struct {
	ID              string   `json:"id" binding:"required"`
	Name            string   `json:"name" binding:"omitempty"`
	DurationSeconds int64    `json:"duration_seconds" binding:"omitempty,min=0"`
	DependsOn       []string `json:"depends_on" binding:"omitempty"`
}
