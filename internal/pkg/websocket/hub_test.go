package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(hub *Hub, topics ...string) *Client {
	return &Client{
		hub:    hub,
		send:   make(chan []byte, sendBuffer),
		id:     "test",
		topics: topics,
		logger: zerolog.Nop(),
	}
}

func receive(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case data := <-c.send:
		var ev Event
		require.NoError(t, json.Unmarshal(data, &ev))
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Event{}
}

func TestParseTopics(t *testing.T) {
	topics, ok := ParseTopics("")
	assert.True(t, ok)
	assert.Equal(t, []string{allTopics}, topics)

	topics, ok = ParseTopics(" Team, user,team ")
	assert.True(t, ok)
	assert.Equal(t, []string{"team", "user"}, topics)

	_, ok = ParseTopics("team,chat")
	assert.False(t, ok)
}

func TestHub_DeliversToSubscribedTopics(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	teams := newTestClient(hub, EntityTeam)
	everything := newTestClient(hub, allTopics)
	hub.register <- teams
	hub.register <- everything

	hub.Publish(EventUpdated, EntityTeam, 7, 1)

	ev := receive(t, teams)
	assert.Equal(t, EventUpdated, ev.Type)
	assert.Equal(t, int64(7), ev.EntityID)
	assert.Equal(t, EntityTeam, receive(t, everything).Entity)

	hub.Publish(EventDeleted, EntityUser, 3, 1)
	assert.Equal(t, EntityUser, receive(t, everything).Entity)

	select {
	case <-teams.send:
		t.Fatal("team subscriber received a user event")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_ListenersSeeEveryEvent(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	seen := make(chan *Event, 1)
	rec := NewRecorder(hub, zerolog.Nop(), func(e *Event) { seen <- e })
	rec.Start(ctx)

	require.Eventually(t, func() bool {
		hub.listenersMu.RLock()
		defer hub.listenersMu.RUnlock()
		return len(hub.listeners) == 1
	}, time.Second, 5*time.Millisecond)

	hub.Publish(EventCreated, EntityProject, 11, 2)

	select {
	case e := <-seen:
		assert.Equal(t, EntityProject, e.Entity)
		assert.Equal(t, int64(2), e.ActorID)
	case <-time.After(time.Second):
		t.Fatal("recorder did not observe the event")
	}
}

func TestHub_PublishNeverBlocks(t *testing.T) {
	hub := NewHub(zerolog.Nop())

	done := make(chan struct{})
	go func() {
		for i := 0; i < cap(hub.broadcast)+10; i++ {
			hub.Publish(EventUpdated, EntityReview, int64(i), 1)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked without a running hub")
	}
}

func TestHub_CancelClosesClients(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	c := newTestClient(hub, EntityTeam, EntityUser)
	hub.register <- c
	require.Eventually(t, func() bool { return hub.ClientsCount(EntityUser) == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	<-stopped

	_, open := <-c.send
	assert.False(t, open)
	assert.Equal(t, 0, hub.ClientsCount(EntityTeam))
}

func TestHub_StoppedHubRefusesClients(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	c := newTestClient(hub, EntityTeam)
	returned := make(chan bool, 1)
	go func() {
		ok := hub.Register(c)
		hub.Unregister(c)
		returned <- ok
	}()

	select {
	case ok := <-returned:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("register blocked on a stopped hub")
	}
	assert.Equal(t, 0, hub.ClientsCount(EntityTeam))
}
