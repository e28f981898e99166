package websocket

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"sahayak-backend/internal/logger"
	"sahayak-backend/internal/middleware"
)

const writeWait = 10 * time.Second

// Hub fans teacher events published on Redis out to that teacher's open
// websocket connections. Each teacher gets one subscription while at least
// one connection is open.
type Hub struct {
	mu          sync.RWMutex
	connections map[string][]*websocket.Conn
	cancelFuncs map[string]context.CancelFunc
	redisClient *redis.Client
	jwtSecret   []byte
	upgrader    websocket.Upgrader
	logger      *zap.Logger
}

func NewHub(redisClient *redis.Client, jwtSecret, allowedOrigin string, l *zap.Logger) *Hub {
	return &Hub{
		connections: make(map[string][]*websocket.Conn),
		cancelFuncs: make(map[string]context.CancelFunc),
		redisClient: redisClient,
		jwtSecret:   []byte(jwtSecret),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowedOrigin == "" || origin == allowedOrigin
			},
		},
		logger: logger.OrNop(l).Named("ws_hub"),
	}
}

// HandleWebSocket authenticates with the token query parameter, since
// browsers cannot set headers on websocket requests.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	teacherID, err := middleware.ParseTeacherToken(h.jwtSecret, r.URL.Query().Get("token"))
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	h.registerConnection(teacherID, conn)

	go func() {
		defer h.unregisterConnection(teacherID, conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// ConnectionCount returns the number of open connections for a teacher.
func (h *Hub) ConnectionCount(teacherID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections[teacherID])
}

// Close drops every connection and subscription.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, conns := range h.connections {
		for _, c := range conns {
			c.Close()
		}
		delete(h.connections, id)
	}
	for id, cancel := range h.cancelFuncs {
		cancel()
		delete(h.cancelFuncs, id)
	}
}

func (h *Hub) registerConnection(teacherID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.connections[teacherID] = append(h.connections[teacherID], conn)

	if len(h.connections[teacherID]) == 1 {
		ctx, cancel := context.WithCancel(context.Background())
		h.cancelFuncs[teacherID] = cancel
		go h.subscribe(ctx, teacherID)
	}

	h.logger.Debug("websocket connected",
		zap.String("teacher_id", teacherID),
		zap.Int("connections", len(h.connections[teacherID])),
	)
}

func (h *Hub) unregisterConnection(teacherID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conn.Close()

	conns := h.connections[teacherID]
	for i, c := range conns {
		if c == conn {
			h.connections[teacherID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}

	if len(h.connections[teacherID]) == 0 {
		delete(h.connections, teacherID)
		if cancel, ok := h.cancelFuncs[teacherID]; ok {
			cancel()
			delete(h.cancelFuncs, teacherID)
		}
	}

	h.logger.Debug("websocket disconnected", zap.String("teacher_id", teacherID))
}

func (h *Hub) subscribe(ctx context.Context, teacherID string) {
	pubsub := h.redisClient.Subscribe(ctx, Channel(teacherID))
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.broadcast(teacherID, []byte(msg.Payload))
		}
	}
}

func (h *Hub) broadcast(teacherID string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, conn := range h.connections[teacherID] {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.logger.Debug("websocket write failed", zap.String("teacher_id", teacherID), zap.Error(err))
		}
	}
}
