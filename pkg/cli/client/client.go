// Package client 提供调度服务HTTP API的CLI客户端
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/LENAX/proposal-scheduler/pkg/api/dto"
	"github.com/LENAX/proposal-scheduler/pkg/core/schedule"
)

// Client 调度服务API客户端（对外导出）
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New 创建API客户端
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// ComputeSchedule 触发一次调度计算
func (c *Client) ComputeSchedule() (*schedule.ScheduleResult, error) {
	var resp dto.APIResponse[*schedule.ScheduleResult]
	if err := c.do(http.MethodPost, "/api/v1/schedule/compute", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// ComputeScheduleInline 用内联任务定义触发一次调度计算
func (c *Client) ComputeScheduleInline(req dto.ComputeScheduleRequest) (*schedule.ScheduleResult, error) {
	var resp dto.APIResponse[*schedule.ScheduleResult]
	if err := c.do(http.MethodPost, "/api/v1/schedule/compute", req, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// GetCriticalPath 获取关键路径视图
func (c *Client) GetCriticalPath() (*dto.CriticalPathResponse, error) {
	var resp dto.APIResponse[dto.CriticalPathResponse]
	if err := c.do(http.MethodGet, "/api/v1/schedule/critical-path", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// ListTasks 列出注册表中的任务定义
func (c *Client) ListTasks() ([]dto.TaskDefinitionView, error) {
	var resp dto.APIResponse[dto.ListResponse[dto.TaskDefinitionView]]
	if err := c.do(http.MethodGet, "/api/v1/tasks", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data.Items, nil
}

// do 发送请求并解码响应（内部方法）
func (c *Client) do(method, path string, body interface{}, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("序列化请求失败: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("构建请求失败: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("请求服务器失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp dto.APIResponse[any]
		if decodeErr := json.NewDecoder(resp.Body).Decode(&errResp); decodeErr == nil && errResp.Message != "" {
			return fmt.Errorf("服务器返回错误 (HTTP %d): %s", resp.StatusCode, errResp.Message)
		}
		return fmt.Errorf("服务器返回错误: HTTP %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("解码响应失败: %w", err)
	}
	return nil
}
