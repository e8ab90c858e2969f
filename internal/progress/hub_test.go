package progress

import (
	"context"
	"testing"
	"time"

	"github.com/scamshield/agent/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublish_InvalidMessageDropped(t *testing.T) {
	hub := NewHub(nil)
	room := hub.localRoom("task-1", true)
	defer room.stop()

	hub.Publish(context.Background(), "task-1", models.ProgressMessage{Percent: 200})

	select {
	case <-room.broadcast:
		t.Fatal("invalid message should not have been broadcast")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPublish_ValidMessageReachesClient(t *testing.T) {
	hub := NewHub(nil)
	room := hub.localRoom("task-2", true)
	go room.run()

	c := &client{room: room, send: make(chan []byte, 4)}
	room.register <- c

	hub.Publish(context.Background(), "task-2", models.ProgressMessage{
		Step: models.StepEntityExtraction, Percent: 20, Message: "found entities",
	})

	select {
	case msg := <-c.send:
		assert.Contains(t, string(msg), "entity_extraction")
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for broadcast message")
	}

	room.stop()
}

func TestPublish_TerminalStepClosesRoom(t *testing.T) {
	hub := NewHub(nil)
	room := hub.localRoom("task-3", true)
	go room.run()

	hub.Publish(context.Background(), "task-3", models.ProgressMessage{
		Step: models.StepCompleted, Percent: 100, Message: "done",
	})

	time.Sleep(20 * time.Millisecond)

	hub.mu.Lock()
	_, exists := hub.rooms["task-3"]
	hub.mu.Unlock()
	assert.False(t, exists)
}

func TestProgressMessage_ValidRejectsUnknownStep(t *testing.T) {
	msg := models.ProgressMessage{Step: "bogus", Percent: 10}
	require.False(t, msg.Valid())
}
