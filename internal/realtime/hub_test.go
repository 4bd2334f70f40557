package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHub() *Hub {
	return NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// drain pops every buffered frame from a client's send channel.
func drain(c *Client) []Event {
	var events []Event
	for {
		select {
		case frame := <-c.send:
			var evt Event
			if err := json.Unmarshal(frame, &evt); err != nil {
				panic(err)
			}
			events = append(events, evt)
		default:
			return events
		}
	}
}

func TestPublishFansOutToAllSessions(t *testing.T) {
	h := testHub()

	alice1 := newClient(h, nil)
	alice2 := newClient(h, nil)
	bob := newClient(h, nil)
	carol := newClient(h, nil)

	h.Join(1, alice1)
	h.Join(1, alice2)
	h.Join(2, bob)
	h.Join(3, carol)

	h.PublishToUsers([]uint64{1, 2}, "new_message", map[string]string{"content": "hey"})

	for _, c := range []*Client{alice1, alice2, bob} {
		events := drain(c)
		require.Len(t, events, 1)
		assert.Equal(t, "new_message", events[0].Name)
		assert.JSONEq(t, `{"content":"hey"}`, string(events[0].Data))
	}
	assert.Empty(t, drain(carol))
}

func TestPublishToAbsentUserIsNoop(t *testing.T) {
	h := testHub()
	h.PublishToUsers([]uint64{42}, "new_message", map[string]string{"content": "void"})
	assert.Equal(t, 0, h.SessionCount(42))
}

func TestRejoinMovesSession(t *testing.T) {
	h := testHub()
	c := newClient(h, nil)

	h.Join(1, c)
	require.Equal(t, 1, h.SessionCount(1))

	h.Join(2, c)
	assert.Equal(t, 0, h.SessionCount(1))
	assert.Equal(t, 1, h.SessionCount(2))

	h.PublishToUsers([]uint64{1}, "new_message", nil)
	assert.Empty(t, drain(c))
	h.PublishToUsers([]uint64{2}, "new_message", nil)
	assert.Len(t, drain(c), 1)
}

func TestLeaveRemovesOnlyThatSession(t *testing.T) {
	h := testHub()
	a := newClient(h, nil)
	b := newClient(h, nil)

	h.Join(7, a)
	h.Join(7, b)
	require.Equal(t, 2, h.SessionCount(7))

	h.Leave(a)
	assert.Equal(t, 1, h.SessionCount(7))

	h.PublishToUsers([]uint64{7}, "user_typing", typingEvent{MatchID: 1, UserID: 9})
	assert.Empty(t, drain(a))
	assert.Len(t, drain(b), 1)

	h.Leave(b)
	assert.Equal(t, 0, h.SessionCount(7))

	// leaving a client that never joined is safe
	h.Leave(newClient(h, nil))
}

func TestPublishSkipsFullBuffers(t *testing.T) {
	h := testHub()
	c := newClient(h, nil)
	h.Join(1, c)

	for i := 0; i < sendBuffer; i++ {
		c.send <- []byte("{}")
	}

	// must not block
	h.PublishToUsers([]uint64{1}, "new_message", nil)
	assert.Len(t, drain(c), sendBuffer)
}

type ledgerStub struct {
	calls []ledgerCall
	err   error
}

type ledgerCall struct {
	matchID  uint64
	senderID uint64
	content  string
}

func (l *ledgerStub) SendMessage(_ context.Context, matchID, senderID uint64, content string) error {
	l.calls = append(l.calls, ledgerCall{matchID, senderID, content})
	return l.err
}

func testHandler(ledger Ledger) *Handler {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewHandler(NewHub(log), ledger, log)
}

func rawEvent(t *testing.T, name string, payload any) Event {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return Event{Name: name, Data: data}
}

func TestDispatchJoin(t *testing.T) {
	h := testHandler(&ledgerStub{})
	c := newClient(h.hub, nil)

	h.dispatch(c, rawEvent(t, "join", joinPayload{UserID: 5}))
	assert.Equal(t, 1, h.hub.SessionCount(5))

	// zero user id is rejected
	h.dispatch(newClient(h.hub, nil), rawEvent(t, "join", joinPayload{}))
	assert.Equal(t, 1, h.hub.SessionCount(5))
}

func TestDispatchPrivateMessagePersists(t *testing.T) {
	ledger := &ledgerStub{}
	h := testHandler(ledger)
	c := newClient(h.hub, nil)
	h.hub.Join(1, c)

	h.dispatch(c, rawEvent(t, "private_message", messagePayload{
		FromUser: 1, ToUser: 2, MatchID: 3, Message: "hello",
	}))

	require.Len(t, ledger.calls, 1)
	assert.Equal(t, ledgerCall{matchID: 3, senderID: 1, content: "hello"}, ledger.calls[0])
	// fan-out is the ledger's job, so nothing is echoed here
	assert.Empty(t, drain(c))
}

func TestDispatchPrivateMessageFailureNotifiesSender(t *testing.T) {
	ledger := &ledgerStub{err: errors.New("db down")}
	h := testHandler(ledger)
	sender := newClient(h.hub, nil)
	peer := newClient(h.hub, nil)
	h.hub.Join(1, sender)
	h.hub.Join(2, peer)

	h.dispatch(sender, rawEvent(t, "private_message", messagePayload{
		FromUser: 1, ToUser: 2, MatchID: 3, Message: "hello",
	}))

	events := drain(sender)
	require.Len(t, events, 1)
	assert.Equal(t, "error", events[0].Name)
	assert.Empty(t, drain(peer))
}

func TestDispatchTypingEvents(t *testing.T) {
	h := testHandler(&ledgerStub{})
	sender := newClient(h.hub, nil)
	peer := newClient(h.hub, nil)
	h.hub.Join(1, sender)
	h.hub.Join(2, peer)

	h.dispatch(sender, rawEvent(t, "typing", typingPayload{FromUser: 1, ToUser: 2, MatchID: 3}))
	h.dispatch(sender, rawEvent(t, "stop_typing", typingPayload{FromUser: 1, ToUser: 2, MatchID: 3}))

	events := drain(peer)
	require.Len(t, events, 2)
	assert.Equal(t, "user_typing", events[0].Name)
	assert.Equal(t, "user_stop_typing", events[1].Name)

	var evt typingEvent
	require.NoError(t, json.Unmarshal(events[0].Data, &evt))
	assert.Equal(t, uint64(3), evt.MatchID)
	assert.Equal(t, uint64(1), evt.UserID)

	// typing is never echoed back to the sender
	assert.Empty(t, drain(sender))
}

func TestDispatchUnknownEventIgnored(t *testing.T) {
	h := testHandler(&ledgerStub{})
	c := newClient(h.hub, nil)
	h.hub.Join(1, c)

	h.dispatch(c, Event{Name: "bogus", Data: json.RawMessage(`{}`)})
	assert.Empty(t, drain(c))
}
