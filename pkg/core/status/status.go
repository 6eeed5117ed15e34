// Package status 提供任务实时状态查询的协作方接口
// 调度核心只读取状态，不负责状态的产生与变更
package status

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"
)

// TaskStatus 任务状态类型
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"     // 等待执行
	StatusInProgress TaskStatus = "in_progress" // 执行中
	StatusCompleted  TaskStatus = "completed"   // 已完成
	StatusUnknown    TaskStatus = "unknown"     // 未知（协作方不可用或任务不存在）
)

// Lookup 任务状态查询接口（对外导出）
// 实现方可能是网络调用：查询失败时应返回StatusUnknown而不是中断调用方，
// 优先级评分会将未知状态按"依赖未满足"处理（失败安全）
type Lookup interface {
	// Status 查询指定任务的当前状态
	Status(ctx context.Context, taskID string) (TaskStatus, error)
}

// StaticLookup 基于内存映射的状态查询实现（对外导出）
// 适用于测试和内嵌调用场景；未登记的任务返回StatusUnknown
type StaticLookup map[string]TaskStatus

// Status 实现Lookup接口
func (s StaticLookup) Status(_ context.Context, taskID string) (TaskStatus, error) {
	if st, ok := s[taskID]; ok {
		return st, nil
	}
	return StatusUnknown, nil
}

// HTTPLookup 基于HTTP的状态查询实现（对外导出）
// 请求 GET {BaseURL}/api/v1/tasks/{id}/status，响应体为statusResponse的JSON
// 每次查询使用独立的有界超时；任何失败都降级为StatusUnknown并记录日志，不向上传播
type HTTPLookup struct {
	BaseURL string
	Timeout time.Duration
	Client  *http.Client
}

// statusResponse 状态查询响应体（内部使用）
type statusResponse struct {
	TaskID string `json:"task_id"`
	Status string `json:"status"`
}

// NewHTTPLookup 创建HTTP状态查询实例（对外导出）
// timeout<=0 时使用默认值2秒
func NewHTTPLookup(baseURL string, timeout time.Duration) *HTTPLookup {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &HTTPLookup{
		BaseURL: baseURL,
		Timeout: timeout,
		Client:  &http.Client{},
	}
}

// Status 实现Lookup接口
func (h *HTTPLookup) Status(ctx context.Context, taskID string) (TaskStatus, error) {
	reqCtx, cancel := context.WithTimeout(ctx, h.Timeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/api/v1/tasks/%s/status", h.BaseURL, url.PathEscape(taskID))
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		log.Printf("⚠️ [状态查询] 构建请求失败: TaskID=%s, Error=%v", taskID, err)
		return StatusUnknown, nil
	}

	resp, err := h.Client.Do(req)
	if err != nil {
		// 超时与网络错误同等对待：状态未知，调用方继续评分
		log.Printf("⚠️ [状态查询] 请求失败: TaskID=%s, Error=%v", taskID, err)
		return StatusUnknown, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("⚠️ [状态查询] 非预期响应码: TaskID=%s, StatusCode=%d", taskID, resp.StatusCode)
		return StatusUnknown, nil
	}

	var body statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		log.Printf("⚠️ [状态查询] 解析响应失败: TaskID=%s, Error=%v", taskID, err)
		return StatusUnknown, nil
	}

	switch TaskStatus(body.Status) {
	case StatusPending, StatusInProgress, StatusCompleted:
		return TaskStatus(body.Status), nil
	default:
		return StatusUnknown, nil
	}
}
