// Package progress implements the per-task progress publisher (spec C6):
// a pub/sub transport from the orchestrator to any number of WebSocket
// subscribers, with a heartbeat and an idle-disconnect timeout.
//
// Generalized from the teacher's single-client internal/websocket.Hub:
// the register/unregister/broadcast channel loop is kept, but keyed by
// task_id instead of holding one process-wide client, and backed by
// Redis pub/sub so multiple service instances can share one task's
// stream.
package progress

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/scamshield/agent/internal/models"
)

const (
	heartbeatInterval = 15 * time.Second
	idleTimeout        = 60 * time.Second
	clientSendBuffer   = 64
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub owns one room per in-flight task, each backed by a Redis pub/sub
// channel so a publish from any process instance reaches every
// subscriber on any other instance.
type Hub struct {
	redis *redis.Client

	mu    sync.Mutex
	rooms map[string]*room
}

// NewHub builds a Hub. redisClient may be nil, in which case the hub
// degrades to in-process-only delivery (used in tests).
func NewHub(redisClient *redis.Client) *Hub {
	return &Hub{redis: redisClient, rooms: make(map[string]*room)}
}

func channelName(taskID string) string { return "agent_progress:" + taskID }

// Publish sends msg to every subscriber of taskID, locally and (if Redis
// is configured) across process instances. Never blocks the caller on a
// slow subscriber.
func (h *Hub) Publish(ctx context.Context, taskID string, msg models.ProgressMessage) {
	if !msg.Valid() {
		log.Printf("progress: dropping invalid message for task %s: %+v", taskID, msg)
		return
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		log.Printf("progress: marshal failed for task %s: %v", taskID, err)
		return
	}

	if h.redis != nil {
		// Delivery happens exclusively through the Redis subscription a
		// room establishes in ServeWS, so a publish reaches subscribers
		// on any process instance — including this one — exactly once.
		if err := h.redis.Publish(ctx, channelName(taskID), payload).Err(); err != nil {
			log.Printf("progress: redis publish failed for task %s: %v", taskID, err)
		}
	} else {
		h.localRoom(taskID, true).broadcastLocal(payload)
	}

	if msg.Step.IsTerminal() {
		h.closeRoom(taskID)
	}
}

// ServeWS upgrades the request to a WebSocket and subscribes the
// connection to taskID's room. Disconnecting a subscriber never cancels
// the underlying task; tasks and subscribers are decoupled (spec §5).
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, taskID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("progress: websocket upgrade failed: %v", err)
		return
	}

	room := h.localRoom(taskID, true)
	if h.redis != nil {
		room.ensureRedisSubscription(h.redis)
	}

	client := &client{room: room, conn: conn, send: make(chan []byte, clientSendBuffer)}
	room.register <- client

	connectedMsg, _ := json.Marshal(models.ProgressMessage{
		Step:      models.StepConnected,
		Message:   "connected",
		Timestamp: time.Now(),
	})
	select {
	case client.send <- connectedMsg:
	default:
	}

	go client.writePump()
	go client.readPump()
}

func (h *Hub) localRoom(taskID string, create bool) *room {
	h.mu.Lock()
	defer h.mu.Unlock()

	r, ok := h.rooms[taskID]
	if !ok && create {
		r = newRoom(taskID)
		h.rooms[taskID] = r
		go r.run()
	}
	return r
}

func (h *Hub) closeRoom(taskID string) {
	h.mu.Lock()
	r, ok := h.rooms[taskID]
	if ok {
		delete(h.rooms, taskID)
	}
	h.mu.Unlock()

	if ok {
		r.stop()
	}
}
