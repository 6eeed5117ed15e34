package engine

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/LENAX/proposal-scheduler/pkg/core/cache"
	"github.com/LENAX/proposal-scheduler/pkg/core/dag"
	"github.com/LENAX/proposal-scheduler/pkg/core/realtime"
	"github.com/LENAX/proposal-scheduler/pkg/core/registry"
	"github.com/LENAX/proposal-scheduler/pkg/core/schedule"
	"github.com/LENAX/proposal-scheduler/pkg/core/status"
)

// RegistryProvider 任务注册表提供方接口（对外导出）
// 实现方可能是配置文件、数据库Repository或内嵌的静态注册表
type RegistryProvider interface {
	// LoadRegistry 加载当前任务注册表
	LoadRegistry(ctx context.Context) (*registry.Registry, error)
}

// StaticRegistryProvider 静态注册表提供方（对外导出）
// 包装一个固定的注册表，适用于测试和内嵌调用场景
type StaticRegistryProvider struct {
	Registry *registry.Registry
}

// LoadRegistry 实现RegistryProvider接口
func (p *StaticRegistryProvider) LoadRegistry(_ context.Context) (*registry.Registry, error) {
	if p.Registry == nil {
		return nil, fmt.Errorf("注册表未配置")
	}
	return p.Registry, nil
}

// Engine 调度引擎核心结构体（对外导出）
// 每次调度计算都从注册表快照构建全新的依赖图：
// 不在引擎内缓存图结构，消除注册表变更后图过期的风险
// 并发调用ComputeSchedule是安全的，各次运行不共享任何可变状态
type Engine struct {
	provider RegistryProvider
	lookup   status.Lookup

	bus           *realtime.EventBus    // 事件总线（可选）
	resultCache   cache.ScheduleCache   // 结果缓存（可选，只服务只读视图）
	cacheTTL      time.Duration
	cronScheduler *CronScheduler

	mu         sync.RWMutex
	running    bool
	lastResult *schedule.ScheduleResult // 最近一次计算结果（诊断用途）
	cancel     context.CancelFunc
}

// NewEngine 创建Engine实例（对外导出的工厂方法）
func NewEngine(provider RegistryProvider, lookup status.Lookup) (*Engine, error) {
	return NewEngineWithBus(provider, lookup, nil, nil, 0)
}

// NewEngineWithBus 创建Engine实例（带事件总线与结果缓存，对外导出）
// bus: 事件总线，启用后状态变更事件会触发重新计算，结果发布到schedule.recomputed主题
// resultCache/cacheTTL: 只读视图的短窗口缓存；ttl<=0时禁用缓存
func NewEngineWithBus(provider RegistryProvider, lookup status.Lookup, bus *realtime.EventBus, resultCache cache.ScheduleCache, cacheTTL time.Duration) (*Engine, error) {
	if provider == nil {
		return nil, fmt.Errorf("注册表提供方不能为空")
	}

	eng := &Engine{
		provider:    provider,
		lookup:      lookup,
		bus:         bus,
		resultCache: resultCache,
		cacheTTL:    cacheTTL,
	}
	eng.cronScheduler = NewCronScheduler(eng)
	return eng, nil
}

// GetCronScheduler 获取定时调度器（对外导出）
func (e *Engine) GetCronScheduler() *CronScheduler {
	return e.cronScheduler
}

// ComputeSchedule 执行一次完整的调度计算（对外导出）
// 流程：注册表快照 -> 构建依赖图 -> CPM前向/后向遍历 -> 优先级评分 -> 聚合
// 结构性错误（未知前置任务、循环依赖）中止整次运行并返回类型化错误，不产出部分结果
func (e *Engine) ComputeSchedule(ctx context.Context) (*schedule.ScheduleResult, error) {
	reg, err := e.provider.LoadRegistry(ctx)
	if err != nil {
		return nil, fmt.Errorf("加载任务注册表失败: %w", err)
	}

	// 本次运行独占的快照，注册表后续变更不影响进行中的计算
	snapshot := reg.Snapshot()

	g, err := dag.BuildGraph(snapshot)
	if err != nil {
		return nil, err
	}

	result, err := schedule.Compute(ctx, g, e.lookup)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.lastResult = result
	e.mu.Unlock()

	return result, nil
}

// ComputeScheduleCached 带缓存的调度计算（对外导出）
// 命中短TTL缓存时直接返回上次快照；未启用缓存时等价于ComputeSchedule
// 注意：缓存结果中的优先级基于计算时刻的状态值，仅适用于可容忍短窗口陈旧的只读视图
func (e *Engine) ComputeScheduleCached(ctx context.Context) (*schedule.ScheduleResult, error) {
	if e.resultCache == nil || e.cacheTTL <= 0 {
		return e.ComputeSchedule(ctx)
	}

	reg, err := e.provider.LoadRegistry(ctx)
	if err != nil {
		return nil, fmt.Errorf("加载任务注册表失败: %w", err)
	}
	fp := registryFingerprint(reg)

	if cached, ok := e.resultCache.Get(fp); ok {
		return cached, nil
	}

	result, err := e.ComputeSchedule(ctx)
	if err != nil {
		return nil, err
	}
	e.resultCache.Set(fp, result, e.cacheTTL)
	return result, nil
}

// RecomputeAndPublish 重新计算并发布结果事件（对外导出）
// trigger: 触发来源标识（cron/status_change/manual）
// 供定时调度器和状态变更订阅回调使用
func (e *Engine) RecomputeAndPublish(ctx context.Context, trigger string) (*schedule.ScheduleResult, error) {
	result, err := e.ComputeSchedule(ctx)
	if err != nil {
		return nil, err
	}

	if e.bus != nil {
		if err := e.bus.PublishScheduleRecomputed(realtime.NewScheduleRecomputedEvent(trigger, result)); err != nil {
			log.Printf("⚠️ [调度引擎] 发布调度结果事件失败: %v", err)
		}
	}
	return result, nil
}

// Start 启动引擎（对外导出）
// 启动定时调度器，并订阅任务状态变更事件触发重新计算
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return fmt.Errorf("引擎已在运行")
	}
	e.running = true
	runCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.mu.Unlock()

	e.cronScheduler.Start()

	if e.bus != nil {
		events, err := e.bus.SubscribeStatusChanged(runCtx)
		if err != nil {
			return fmt.Errorf("订阅状态变更事件失败: %w", err)
		}
		go e.consumeStatusEvents(runCtx, events)
	}

	log.Println("✅ [调度引擎] 已启动")
	return nil
}

// Stop 停止引擎（对外导出）
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	cancel := e.cancel
	e.mu.Unlock()

	e.cronScheduler.Stop()
	if cancel != nil {
		cancel()
	}
	log.Println("✅ [调度引擎] 已停止")
}

// LoadRegistry 加载当前任务注册表（对外导出）
// 透传给注册表提供方，供API层的任务列表视图使用
func (e *Engine) LoadRegistry(ctx context.Context) (*registry.Registry, error) {
	return e.provider.LoadRegistry(ctx)
}

// StatusLookup 获取任务状态查询接口（对外导出）
func (e *Engine) StatusLookup() status.Lookup {
	return e.lookup
}

// GetLastResult 获取最近一次计算结果（对外导出）
// 返回: 结果和是否存在；仅用于诊断，正式读取应重新计算
func (e *Engine) GetLastResult() (*schedule.ScheduleResult, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lastResult, e.lastResult != nil
}

// consumeStatusEvents 消费状态变更事件并触发重新计算（内部方法）
func (e *Engine) consumeStatusEvents(ctx context.Context, events <-chan *realtime.TaskStatusChangedEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			log.Printf("🔄 [调度引擎] 任务状态变更，触发重新计算: TaskID=%s, %s -> %s",
				event.TaskID, event.OldStatus, event.NewStatus)
			if e.resultCache != nil {
				e.resultCache.Clear()
			}
			if _, err := e.RecomputeAndPublish(ctx, "status_change"); err != nil {
				log.Printf("❌ [调度引擎] 状态变更触发的重新计算失败: %v", err)
			}
		}
	}
}

// registryFingerprint 计算注册表指纹（内部方法）
// 由任务ID、耗时与依赖列表拼接而成，任务集合变化即指纹变化
func registryFingerprint(reg *registry.Registry) string {
	parts := make([]string, 0, reg.Size())
	for _, id := range reg.IDs() {
		def, _ := reg.Get(id)
		deps := append([]string(nil), def.DependsOn...)
		sort.Strings(deps)
		parts = append(parts, fmt.Sprintf("%s:%d:%s", id, def.DurationSeconds, strings.Join(deps, ",")))
	}
	return strings.Join(parts, "|")
}
