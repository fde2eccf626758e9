package server

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mwhite/pointdeck/internal/stats"
	"github.com/mwhite/pointdeck/internal/testutil"
)

func TestNewClient(t *testing.T) {
	ps := newTestPokerServer(t, &stats.MockStatsUpdater{})
	c := NewClient(nil, ps, testutil.TestLogger(t))

	assert.NotEmpty(t, c.SessionId(), "expected a generated session id")
	assert.NotNil(t, c.send)
	assert.NotNil(t, c.stop)
	assert.Equal(t, ps, c.srv)

	other := NewClient(nil, ps, testutil.TestLogger(t))
	assert.NotEqual(t, c.SessionId(), other.SessionId(), "expected unique session ids")
}

func Test_queueMessage(t *testing.T) {
	c := &Client{
		log:  testutil.TestLogger(t),
		send: make(chan *ServerMessage, 1),
	}

	assert.True(t, c.queueMessage(errReply("first")))
	assert.False(t, c.queueMessage(errReply("second")), "expected send to fail when buffer is full")

	msg := <-c.send
	assert.Equal(t, "first", msg.Message)
}

func Test_stopClient(t *testing.T) {
	c := &Client{
		log:  testutil.TestLogger(t),
		stop: make(chan struct{}),
	}

	c.stopClient()
	c.stopClient() // second call must not panic

	select {
	case <-c.stop:
	default:
		t.Error("expected stop channel to be closed")
	}
}
