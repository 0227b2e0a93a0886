package ws

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/huddle/pkg"
	"github.com/akinalp/huddle/pkg/ratelimit"
)

var _ EventPublisher = (*Hub)(nil)

// newTestClient, socket'siz bir client kurar — handleFrame conn'a dokunmaz,
// sonuç send buffer'ından okunur.
func newTestClient(onEvent func(connID, eventName string, data json.RawMessage) error) *Client {
	hub := NewHub()
	hub.OnEvent(onEvent)
	return &Client{
		hub:    hub,
		connID: "c1",
		send:   make(chan []byte, 4),
	}
}

func readEvent(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case raw := <-c.send:
		var ev Event
		require.NoError(t, json.Unmarshal(raw, &ev))
		return ev
	default:
		t.Fatal("no event in send buffer")
		return Event{}
	}
}

func TestHandleFrameAck(t *testing.T) {
	c := newTestClient(func(connID, eventName string, data json.RawMessage) error {
		return nil
	})

	c.handleFrame(inboundFrame{Name: OpPing})

	ev := readEvent(t, c)
	assert.Equal(t, OpAck, ev.Name)
	assert.Positive(t, ev.Seq)

	data := ev.Data.(map[string]any)
	assert.Equal(t, "ping", data["eventName"])
	assert.Equal(t, "success", data["status"])
}

func TestHandleFrameValidationError(t *testing.T) {
	c := newTestClient(func(connID, eventName string, data json.RawMessage) error {
		return pkg.NewValidationError(pkg.FieldIssue{Field: "roomId", Message: "roomId is required"})
	})

	c.handleFrame(inboundFrame{Name: OpJoinRoom})

	ev := readEvent(t, c)
	assert.Equal(t, OpValidationError, ev.Name)

	data := ev.Data.(map[string]any)
	issues := data["errors"].([]any)
	require.Len(t, issues, 1)
	assert.Equal(t, "roomId", issues[0].(map[string]any)["field"])
}

func TestHandleFrameDomainError(t *testing.T) {
	c := newTestClient(func(connID, eventName string, data json.RawMessage) error {
		return errors.New("you are not in this room")
	})

	c.handleFrame(inboundFrame{Name: OpChatMessage})

	ev := readEvent(t, c)
	assert.Equal(t, OpError, ev.Name)

	data := ev.Data.(map[string]any)
	assert.Equal(t, OpChatMessage, data["eventName"])
	assert.Equal(t, "you are not in this room", data["message"])
}

// Slow-consumer drop yarışı: Hub client'ı çıkarıp send channel'ını
// kapattıktan sonra ReadPump'ın devam eden bir sendEvent'i process'i
// düşürmemeli — kapalı client'a yazma sessiz no-op'tur.
func TestSendEventAfterRemoveClientDoesNotPanic(t *testing.T) {
	hub := NewHub()
	c := &Client{hub: hub, connID: "c1", send: make(chan []byte, 1)}
	hub.addClient(c)
	hub.removeClient(c)

	require.NotPanics(t, func() {
		c.sendEvent(Event{Name: OpAck})
	})

	// Channel kapanmıştır (WritePump çıkar) ve event düşürülmüştür.
	_, open := <-c.send
	assert.False(t, open)
}

// Graceful shutdown sırasında ReadPump'lar hâlâ canlıdır — in-flight bir
// ack/error yazımı panic üretmemeli.
func TestSendEventAfterShutdownDoesNotPanic(t *testing.T) {
	hub := NewHub()
	a := &Client{hub: hub, connID: "c1", send: make(chan []byte, 1)}
	b := &Client{hub: hub, connID: "c2", send: make(chan []byte, 1)}
	hub.addClient(a)
	hub.addClient(b)

	hub.Shutdown()

	require.NotPanics(t, func() {
		a.sendEvent(Event{Name: OpAck})
		b.sendEvent(Event{Name: OpError})
	})
}

// closeSend idempotent'tir — removeClient ve Shutdown aynı client'ı iki kez
// kapatmaya çalışsa bile ikinci kapatma no-op'tur.
func TestCloseSendIdempotent(t *testing.T) {
	c := &Client{send: make(chan []byte, 1)}

	require.NotPanics(t, func() {
		c.closeSend()
		c.closeSend()
	})
}

func TestHandleFrameRateLimited(t *testing.T) {
	routed := 0
	c := newTestClient(func(connID, eventName string, data json.RawMessage) error {
		routed++
		return nil
	})
	c.limiter = ratelimit.NewEventRateLimiter(1, time.Second, time.Second)
	defer c.limiter.Stop()

	c.handleFrame(inboundFrame{Name: OpPing})
	c.handleFrame(inboundFrame{Name: OpPing})

	// İlk frame route edilir, ikincisi limitte takılır ve router'a ULAŞMAZ.
	assert.Equal(t, 1, routed)

	first := readEvent(t, c)
	assert.Equal(t, OpAck, first.Name)

	second := readEvent(t, c)
	assert.Equal(t, OpError, second.Name)
	assert.Contains(t, second.Data.(map[string]any)["message"], "rate limit exceeded")
}
