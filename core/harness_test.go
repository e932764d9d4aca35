package core_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	jaus "github.com/fhackett/gojaus"
	"github.com/fhackett/gojaus/core"
	"github.com/fhackett/gojaus/judp"
	"github.com/fhackett/gojaus/messages"
)

var (
	componentID = messages.Id{Subsystem: 1, Node: 1, Component: 1}
	clientID    = messages.Id{Subsystem: 1, Node: 1, Component: 2}
	otherID     = messages.Id{Subsystem: 1, Node: 1, Component: 3}
)

const recvTimeout = 2 * time.Second

// fixture hosts one component on a loopback transport and hands out raw
// client connections that talk to it.
type fixture struct {
	t         *testing.T
	transport *judp.Transport
	component *jaus.Component
}

func newFixture(t *testing.T, cfg jaus.ComponentConfig, services ...jaus.Service) *fixture {
	t.Helper()
	if cfg.ID.IsZero() {
		cfg.ID = componentID
	}
	transport := judp.NewWithConn(jaus.NewLoopbackConn(), jaus.PipeGroupAddr, judp.Config{
		SendInterval: 2 * time.Millisecond,
		AckTimeout:   100 * time.Millisecond,
	})
	component, err := jaus.NewComponent(cfg, services...)
	require.NoError(t, err)
	component.Listen(transport.Connect(cfg.ID))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), recvTimeout)
		defer cancel()
		component.Close(ctx)
		transport.Close()
	})
	return &fixture{t: t, transport: transport, component: component}
}

func (f *fixture) client(id messages.Id) *judp.Connection {
	return f.transport.Connect(id)
}

// send broadcasts msg at the component so no unicast route is needed.
func (f *fixture) send(conn *judp.Connection, msg messages.Message) {
	f.t.Helper()
	data, err := messages.Marshal(msg)
	require.NoError(f.t, err)
	ctx, cancel := context.WithTimeout(context.Background(), recvTimeout)
	defer cancel()
	require.NoError(f.t, conn.Send(ctx, data, f.component.ID(), judp.WithBroadcast(judp.BroadcastLocal)))
}

// recv waits for the next message addressed to conn.
func (f *fixture) recv(conn *judp.Connection) messages.Message {
	f.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), recvTimeout)
	defer cancel()
	data, _, err := conn.Listen(ctx)
	require.NoError(f.t, err)
	msg, err := messages.Unmarshal(data)
	require.NoError(f.t, err)
	return msg
}

// request sends msg and returns the next reply.
func (f *fixture) request(conn *judp.Connection, msg messages.Message) messages.Message {
	f.t.Helper()
	f.send(conn, msg)
	return f.recv(conn)
}

// requestSkippingEvents is request for tests with live subscriptions: fired
// Event messages may interleave with the reply.
func (f *fixture) requestSkippingEvents(conn *judp.Connection, msg messages.Message) messages.Message {
	f.t.Helper()
	f.send(conn, msg)
	for {
		reply := f.recv(conn)
		if _, ok := reply.(*messages.Event); !ok {
			return reply
		}
	}
}

// expectSilence asserts conn receives nothing for a while.
func (f *fixture) expectSilence(conn *judp.Connection, d time.Duration) {
	f.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	data, _, err := conn.Listen(ctx)
	if err == nil {
		msg, _ := messages.Unmarshal(data)
		f.t.Fatalf("expected silence, received %T", msg)
	}
}

// takeControl acquires control for conn at the given authority.
func (f *fixture) takeControl(conn *judp.Connection, authority uint8) {
	f.t.Helper()
	reply := f.request(conn, &messages.RequestControl{AuthorityCode: authority})
	confirm, ok := reply.(*messages.ConfirmControl)
	require.True(f.t, ok, "got %T", reply)
	require.Equal(f.t, messages.ControlAccepted, confirm.ResponseCode)
}

// coreServices is the usual stack under test.
func coreServices() []jaus.Service {
	return []jaus.Service{
		core.NewLiveness(),
		core.NewEvents(),
		core.NewAccessControl(),
		core.NewManagement(),
	}
}
