package status

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestStaticLookup(t *testing.T) {
	lookup := StaticLookup{
		"task1": StatusCompleted,
		"task2": StatusInProgress,
	}

	ctx := context.Background()

	st, err := lookup.Status(ctx, "task1")
	if err != nil {
		t.Fatalf("状态查询失败: %v", err)
	}
	if st != StatusCompleted {
		t.Errorf("task1状态错误，期望: completed, 实际: %s", st)
	}

	// 未登记的任务返回unknown
	st, err = lookup.Status(ctx, "ghost")
	if err != nil {
		t.Fatalf("状态查询失败: %v", err)
	}
	if st != StatusUnknown {
		t.Errorf("未知任务状态错误，期望: unknown, 实际: %s", st)
	}
}

func TestHTTPLookup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/tasks/task1/status":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"task_id":"task1","status":"completed"}`))
		case "/api/v1/tasks/task2/status":
			w.WriteHeader(http.StatusNotFound)
		case "/api/v1/tasks/task3/status":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"task_id":"task3","status":"definitely_not_a_status"}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	lookup := NewHTTPLookup(server.URL, time.Second)
	ctx := context.Background()

	st, err := lookup.Status(ctx, "task1")
	if err != nil {
		t.Fatalf("状态查询失败: %v", err)
	}
	if st != StatusCompleted {
		t.Errorf("task1状态错误，期望: completed, 实际: %s", st)
	}

	// 非200响应降级为unknown，不报错
	st, err = lookup.Status(ctx, "task2")
	if err != nil {
		t.Fatalf("非200响应不应返回错误: %v", err)
	}
	if st != StatusUnknown {
		t.Errorf("task2状态错误，期望: unknown, 实际: %s", st)
	}

	// 无法识别的状态值降级为unknown
	st, _ = lookup.Status(ctx, "task3")
	if st != StatusUnknown {
		t.Errorf("task3状态错误，期望: unknown, 实际: %s", st)
	}
}

func TestHTTPLookup_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"task_id":"slow","status":"completed"}`))
	}))
	defer server.Close()

	lookup := NewHTTPLookup(server.URL, 20*time.Millisecond)

	// 超时等同于状态未知，不中断调用方
	st, err := lookup.Status(context.Background(), "slow")
	if err != nil {
		t.Fatalf("超时不应返回错误: %v", err)
	}
	if st != StatusUnknown {
		t.Errorf("超时状态错误，期望: unknown, 实际: %s", st)
	}
}

func TestHTTPLookup_ServerDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // 立即关闭，模拟协作方不可用

	lookup := NewHTTPLookup(server.URL, time.Second)

	st, err := lookup.Status(context.Background(), "task1")
	if err != nil {
		t.Fatalf("协作方不可用不应返回错误: %v", err)
	}
	if st != StatusUnknown {
		t.Errorf("协作方不可用状态错误，期望: unknown, 实际: %s", st)
	}
}
