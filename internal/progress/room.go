package progress

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// room fans out one task's messages to every locally-connected
// subscriber. Mirrors the teacher's Hub.Run select loop, generalized
// from a single *Client field to a set of clients.
type room struct {
	taskID string

	register   chan *client
	unregister chan *client
	broadcast  chan []byte
	done       chan struct{}

	mu      sync.RWMutex
	clients map[*client]bool

	lastActivity time.Time

	redisCancel context.CancelFunc
}

func newRoom(taskID string) *room {
	return &room{
		taskID:       taskID,
		register:     make(chan *client),
		unregister:   make(chan *client),
		broadcast:    make(chan []byte, 256),
		done:         make(chan struct{}),
		clients:      make(map[*client]bool),
		lastActivity: time.Now(),
	}
}

func (r *room) run() {
	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()
	idleCheck := time.NewTicker(idleTimeout / 2)
	defer idleCheck.Stop()

	for {
		select {
		case c := <-r.register:
			r.mu.Lock()
			r.clients[c] = true
			r.mu.Unlock()
			r.touch()

		case c := <-r.unregister:
			r.mu.Lock()
			if r.clients[c] {
				delete(r.clients, c)
				close(c.send)
			}
			r.mu.Unlock()

		case message := <-r.broadcast:
			r.touch()
			r.mu.RLock()
			for c := range r.clients {
				select {
				case c.send <- message:
				default:
					log.Printf("progress: client send buffer full for task %s, dropping", r.taskID)
				}
			}
			r.mu.RUnlock()

		case <-heartbeat.C:
			r.sendHeartbeat()

		case <-idleCheck.C:
			if time.Since(r.lastActivity) > idleTimeout {
				r.stop()
				return
			}

		case <-r.done:
			r.mu.Lock()
			for c := range r.clients {
				close(c.send)
			}
			r.clients = nil
			r.mu.Unlock()
			return
		}
	}
}

func (r *room) touch() {
	r.mu.Lock()
	r.lastActivity = time.Now()
	r.mu.Unlock()
}

func (r *room) sendHeartbeat() {
	payload := []byte(`{"step":"connected","message":"heartbeat","percent":0,"heartbeat":true}`)
	select {
	case r.broadcast <- payload:
	default:
	}
}

// broadcastLocal is called by Hub.Publish; it does not itself touch
// lastActivity's idle-timeout semantics beyond what the run loop does.
func (r *room) broadcastLocal(payload []byte) {
	select {
	case r.broadcast <- payload:
	case <-time.After(time.Second):
		log.Printf("progress: broadcast channel full for task %s, dropping message", r.taskID)
	}
}

func (r *room) stop() {
	select {
	case <-r.done:
	default:
		close(r.done)
	}
	if r.redisCancel != nil {
		r.redisCancel()
	}
}

// ensureRedisSubscription starts (once) a goroutine relaying messages
// published on this task's Redis channel — from any process instance —
// into this room's local broadcast channel.
func (r *room) ensureRedisSubscription(rdb *redis.Client) {
	r.mu.Lock()
	if r.redisCancel != nil {
		r.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	r.redisCancel = cancel
	r.mu.Unlock()

	sub := rdb.Subscribe(ctx, channelName(r.taskID))
	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				r.broadcastLocal([]byte(msg.Payload))
			}
		}
	}()
}
