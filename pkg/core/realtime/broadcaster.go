package realtime

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// 每个客户端的发送队列长度；队列写满视为慢客户端，直接断开
const clientSendBuffer = 8

// Broadcaster WebSocket调度结果广播器（对外导出）
// 订阅事件总线上的调度结果事件，推送给所有已连接的WebSocket客户端
type Broadcaster struct {
	upgrader websocket.Upgrader
	mu       sync.RWMutex
	clients  map[*websocket.Conn]chan []byte
}

// NewBroadcaster 创建广播器实例（对外导出）
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// 进度推送为内部服务，不做Origin校验
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]chan []byte),
	}
}

// Run 消费事件总线并广播（对外导出）
// 阻塞运行直到ctx取消，应在独立协程中调用
func (b *Broadcaster) Run(ctx context.Context, bus *EventBus) error {
	events, err := bus.SubscribeScheduleRecomputed(ctx)
	if err != nil {
		return err
	}

	log.Println("✅ [进度广播器] 已启动")
	for {
		select {
		case <-ctx.Done():
			b.closeAll()
			log.Println("✅ [进度广播器] 已停止")
			return nil
		case event, ok := <-events:
			if !ok {
				b.closeAll()
				return nil
			}
			b.broadcast(event)
		}
	}
}

// HandleUpgrade 将HTTP请求升级为WebSocket连接（对外导出）
// 路由层（GET /ws/schedule）调用
func (b *Broadcaster) HandleUpgrade(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("⚠️ [进度广播器] WebSocket升级失败: %v", err)
		return
	}

	send := make(chan []byte, clientSendBuffer)
	b.mu.Lock()
	b.clients[conn] = send
	count := len(b.clients)
	b.mu.Unlock()
	log.Printf("✅ [进度广播器] 客户端已连接: Remote=%s, 当前连接数=%d", conn.RemoteAddr(), count)

	// 写协程：顺序写出，避免并发写同一连接
	go func() {
		defer b.removeClient(conn)
		for payload := range send {
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		}
	}()

	// 读协程：只为感知客户端断开，收到的消息全部丢弃
	go func() {
		defer b.removeClient(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// ClientCount 获取当前连接数
func (b *Broadcaster) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// broadcast 推送事件给所有客户端（内部方法）
func (b *Broadcaster) broadcast(event *ScheduleRecomputedEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("⚠️ [进度广播器] 序列化调度结果失败: %v", err)
		return
	}

	b.mu.RLock()
	stale := make([]*websocket.Conn, 0)
	for conn, send := range b.clients {
		select {
		case send <- payload:
		default:
			// 发送队列已满，判定为慢客户端
			stale = append(stale, conn)
		}
	}
	b.mu.RUnlock()

	for _, conn := range stale {
		log.Printf("⚠️ [进度广播器] 断开慢客户端: Remote=%s", conn.RemoteAddr())
		b.removeClient(conn)
	}
}

// removeClient 移除并关闭客户端连接（内部方法）
func (b *Broadcaster) removeClient(conn *websocket.Conn) {
	b.mu.Lock()
	send, exists := b.clients[conn]
	if exists {
		delete(b.clients, conn)
		close(send)
	}
	b.mu.Unlock()

	if exists {
		conn.Close()
	}
}

// closeAll 关闭所有客户端连接（内部方法）
func (b *Broadcaster) closeAll() {
	b.mu.Lock()
	for conn, send := range b.clients {
		delete(b.clients, conn)
		close(send)
		conn.Close()
	}
	b.mu.Unlock()
}
