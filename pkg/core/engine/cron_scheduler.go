package engine

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/robfig/cron/v3"
)

// CronScheduler 定时调度器（对外导出）
// 按Cron表达式周期性触发调度重新计算，结果通过事件总线发布
type CronScheduler struct {
	cron    *cron.Cron
	engine  *Engine
	entries map[string]cron.EntryID // 表达式 -> cron.EntryID映射
	mu      sync.RWMutex
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewCronScheduler 创建定时调度器（对外导出）
func NewCronScheduler(eng *Engine) *CronScheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &CronScheduler{
		cron:    cron.New(cron.WithSeconds()), // 支持秒级精度
		engine:  eng,
		entries: make(map[string]cron.EntryID),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// RegisterRecompute 注册周期性重新计算任务（对外导出）
func (cs *CronScheduler) RegisterRecompute(cronExpr string) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	// 检查是否已注册
	if _, exists := cs.entries[cronExpr]; exists {
		return fmt.Errorf("表达式 %s 已注册到定时调度器", cronExpr)
	}

	if cronExpr == "" {
		return fmt.Errorf("Cron表达式不能为空")
	}

	// 验证Cron表达式（使用Parser支持秒级精度）
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	_, err := parser.Parse(cronExpr)
	if err != nil {
		return fmt.Errorf("Cron表达式 %s 无效: %w", cronExpr, err)
	}

	// 添加Cron任务
	entryID, err := cs.cron.AddFunc(cronExpr, func() {
		cs.triggerRecompute(cronExpr)
	})
	if err != nil {
		return fmt.Errorf("添加Cron任务失败: %w", err)
	}

	cs.entries[cronExpr] = entryID

	log.Printf("✅ [Cron调度器] 已注册周期性重新计算: CronExpr=%s", cronExpr)
	return nil
}

// UnregisterRecompute 取消注册周期性重新计算任务（对外导出）
func (cs *CronScheduler) UnregisterRecompute(cronExpr string) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	entryID, exists := cs.entries[cronExpr]
	if !exists {
		return fmt.Errorf("表达式 %s 未注册到定时调度器", cronExpr)
	}

	cs.cron.Remove(entryID)
	delete(cs.entries, cronExpr)

	log.Printf("✅ [Cron调度器] 已取消注册: CronExpr=%s", cronExpr)
	return nil
}

// triggerRecompute 触发一次调度重新计算（内部方法）
func (cs *CronScheduler) triggerRecompute(cronExpr string) {
	log.Printf("🕐 [Cron调度器] 触发调度重新计算: CronExpr=%s", cronExpr)

	result, err := cs.engine.RecomputeAndPublish(cs.ctx, "cron")
	if err != nil {
		log.Printf("❌ [Cron调度器] 调度重新计算失败: Error=%v", err)
		return
	}
	log.Printf("✅ [Cron调度器] 调度重新计算完成: RunID=%s, 关键路径长度=%d, 总工期=%d秒",
		result.RunID, len(result.CriticalPath), result.MakespanSeconds)
}

// Start 启动定时调度器（对外导出）
func (cs *CronScheduler) Start() {
	cs.cron.Start()
	log.Println("✅ [Cron调度器] 已启动")
}

// Stop 停止定时调度器（对外导出）
func (cs *CronScheduler) Stop() {
	cs.cron.Stop()
	cs.cancel()
	log.Println("✅ [Cron调度器] 已停止")
}

// GetRegisteredExpressions 获取已注册的Cron表达式列表（对外导出）
func (cs *CronScheduler) GetRegisteredExpressions() []string {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	exprs := make([]string, 0, len(cs.entries))
	for expr := range cs.entries {
		exprs = append(exprs, expr)
	}
	return exprs
}
