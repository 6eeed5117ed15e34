package dto

// APIResponse 通用API响应结构
type APIResponse[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`
}

// NewSuccessResponse 创建成功响应
func NewSuccessResponse[T any](data T) APIResponse[T] {
	return APIResponse[T]{
		Code:    0,
		Message: "success",
		Data:    data,
	}
}

// NewErrorResponse 创建错误响应
func NewErrorResponse(code int, message string) APIResponse[any] {
	return APIResponse[any]{
		Code:    code,
		Message: message,
	}
}

// CriticalPathResponse 关键路径视图
type CriticalPathResponse struct {
	RunID           string   `json:"run_id"`
	CriticalPath    []string `json:"critical_path"`
	MakespanSeconds int64    `json:"makespan_seconds"`
}

// TaskDefinitionView 任务定义视图
type TaskDefinitionView struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	DurationSeconds int64    `json:"duration_seconds"`
	DependsOn       []string `json:"depends_on,omitempty"`
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Uptime    string `json:"uptime"`
	Timestamp string `json:"timestamp"`
}

// ListResponse 列表响应
type ListResponse[T any] struct {
	Total int `json:"total"`
	Items []T `json:"items"`
}
