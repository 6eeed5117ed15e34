package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/LENAX/proposal-scheduler/pkg/api/dto"
	"github.com/LENAX/proposal-scheduler/pkg/core/engine"
	"github.com/LENAX/proposal-scheduler/pkg/core/registry"
	"github.com/LENAX/proposal-scheduler/pkg/core/schedule"
	"github.com/LENAX/proposal-scheduler/pkg/core/status"
)

func newTestServer(t *testing.T) *APIServer {
	t.Helper()
	reg, err := registry.NewRegistry([]registry.TaskDefinition{
		{ID: "A", Name: "需求分析", DurationSeconds: 10},
		{ID: "B", Name: "市场调研", DurationSeconds: 20, DependsOn: []string{"A"}},
		{ID: "C", Name: "竞品分析", DurationSeconds: 5, DependsOn: []string{"A"}},
		{ID: "D", Name: "方案汇总", DurationSeconds: 15, DependsOn: []string{"B", "C"}},
	})
	require.NoError(t, err)

	eng, err := engine.NewEngine(
		&engine.StaticRegistryProvider{Registry: reg},
		status.StaticLookup{"A": status.StatusCompleted},
	)
	require.NoError(t, err)

	return NewAPIServer(eng, nil, DefaultServerConfig(), "test")
}

func doRequest(t *testing.T, server *APIServer, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	recorder := httptest.NewRecorder()
	server.Router().ServeHTTP(recorder, req)
	return recorder
}

func TestAPIServer_ComputeSchedule(t *testing.T) {
	server := newTestServer(t)

	recorder := doRequest(t, server, http.MethodPost, "/api/v1/schedule/compute", "")
	require.Equal(t, http.StatusOK, recorder.Code)

	var resp dto.APIResponse[*schedule.ScheduleResult]
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	require.Equal(t, 0, resp.Code)
	require.Equal(t, int64(45), resp.Data.MakespanSeconds)
	require.Equal(t, []string{"A", "B", "D"}, resp.Data.CriticalPath)
	require.Len(t, resp.Data.Entries, 4)
}

func TestAPIServer_ComputeScheduleInline(t *testing.T) {
	server := newTestServer(t)

	body := `{"tasks":[{"id":"X","duration_seconds":30},{"id":"Y","duration_seconds":10,"depends_on":["X"]}]}`
	recorder := doRequest(t, server, http.MethodPost, "/api/v1/schedule/compute", body)
	require.Equal(t, http.StatusOK, recorder.Code)

	var resp dto.APIResponse[*schedule.ScheduleResult]
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	require.Equal(t, int64(40), resp.Data.MakespanSeconds)
	require.Equal(t, []string{"X", "Y"}, resp.Data.CriticalPath)
}

func TestAPIServer_ComputeScheduleCycle(t *testing.T) {
	server := newTestServer(t)

	body := `{"tasks":[{"id":"X","depends_on":["Y"]},{"id":"Y","depends_on":["X"]}]}`
	recorder := doRequest(t, server, http.MethodPost, "/api/v1/schedule/compute", body)
	require.Equal(t, http.StatusUnprocessableEntity, recorder.Code)

	var resp dto.APIResponse[any]
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	require.Equal(t, 422, resp.Code)
}

func TestAPIServer_ComputeScheduleUnknownPredecessor(t *testing.T) {
	server := newTestServer(t)

	body := `{"tasks":[{"id":"X","depends_on":["ghost"]}]}`
	recorder := doRequest(t, server, http.MethodPost, "/api/v1/schedule/compute", body)
	require.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
}

func TestAPIServer_GetCriticalPath(t *testing.T) {
	server := newTestServer(t)

	recorder := doRequest(t, server, http.MethodGet, "/api/v1/schedule/critical-path", "")
	require.Equal(t, http.StatusOK, recorder.Code)

	var resp dto.APIResponse[dto.CriticalPathResponse]
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	require.Equal(t, []string{"A", "B", "D"}, resp.Data.CriticalPath)
	require.Equal(t, int64(45), resp.Data.MakespanSeconds)
}

func TestAPIServer_GetPriorities(t *testing.T) {
	server := newTestServer(t)

	recorder := doRequest(t, server, http.MethodGet, "/api/v1/schedule/priorities", "")
	require.Equal(t, http.StatusOK, recorder.Code)

	var resp dto.APIResponse[dto.ListResponse[*schedule.PriorityRecord]]
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	require.Equal(t, 4, resp.Data.Total)

	byID := make(map[string]*schedule.PriorityRecord)
	for _, record := range resp.Data.Items {
		byID[record.TaskID] = record
	}
	// A已完成且在关键路径上：4+3+2(两个后继)+1(无前置视为就绪)=10
	require.Equal(t, 10, byID["A"].Score)
	require.Equal(t, schedule.TierHigh, byID["A"].Tier)
	// D的前置B/C未完成
	require.False(t, byID["D"].DependenciesMet)
}

func TestAPIServer_ListTasks(t *testing.T) {
	server := newTestServer(t)

	recorder := doRequest(t, server, http.MethodGet, "/api/v1/tasks", "")
	require.Equal(t, http.StatusOK, recorder.Code)

	var resp dto.APIResponse[dto.ListResponse[dto.TaskDefinitionView]]
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	require.Equal(t, 4, resp.Data.Total)
	require.Equal(t, "A", resp.Data.Items[0].ID)
	require.Equal(t, "需求分析", resp.Data.Items[0].Name)
}

func TestAPIServer_Health(t *testing.T) {
	server := newTestServer(t)

	recorder := doRequest(t, server, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, recorder.Code)

	var resp dto.APIResponse[dto.HealthResponse]
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	require.Equal(t, "ok", resp.Data.Status)
	require.Equal(t, "test", resp.Data.Version)
}
