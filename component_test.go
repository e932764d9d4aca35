package jaus_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	jaus "github.com/fhackett/gojaus"
	"github.com/fhackett/gojaus/core"
	"github.com/fhackett/gojaus/judp"
	"github.com/fhackett/gojaus/messages"
)

func testTransport(t *testing.T) *judp.Transport {
	t.Helper()
	tr := judp.NewWithConn(jaus.NewLoopbackConn(), jaus.PipeGroupAddr, judp.Config{
		SendInterval: 2 * time.Millisecond,
		AckTimeout:   100 * time.Millisecond,
	})
	t.Cleanup(func() { tr.Close() })
	return tr
}

func TestComponentHandlerCollision(t *testing.T) {
	_, err := jaus.NewComponent(jaus.ComponentConfig{
		ID: messages.Id{Subsystem: 1, Node: 1, Component: 1},
	}, core.NewLiveness(), core.NewLiveness())
	require.ErrorIs(t, err, jaus.ErrHandlerCollision)
}

func TestComponentDispatchLoop(t *testing.T) {
	tr := testTransport(t)
	id := messages.Id{Subsystem: 1, Node: 1, Component: 1}
	comp, err := jaus.NewComponent(jaus.ComponentConfig{ID: id, Name: "svc"}, core.NewLiveness())
	require.NoError(t, err)
	comp.Listen(tr.Connect(id))
	defer comp.Close(context.Background())

	clientID := messages.Id{Subsystem: 1, Node: 1, Component: 2}
	client := tr.Connect(clientID)

	query, err := messages.Marshal(&messages.QueryHeartbeatPulse{})
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, client.Send(ctx, query, id, judp.WithBroadcast(judp.BroadcastLocal)))

	reply, src, err := client.Listen(ctx)
	require.NoError(t, err)
	require.Equal(t, id, src)
	msg, err := messages.Unmarshal(reply)
	require.NoError(t, err)
	require.IsType(t, &messages.ReportHeartbeatPulse{}, msg)
}

func TestComponentSurvivesGarbage(t *testing.T) {
	tr := testTransport(t)
	id := messages.Id{Subsystem: 1, Node: 1, Component: 1}
	comp, err := jaus.NewComponent(jaus.ComponentConfig{ID: id}, core.NewLiveness())
	require.NoError(t, err)
	comp.Listen(tr.Connect(id))
	defer comp.Close(context.Background())

	clientID := messages.Id{Subsystem: 1, Node: 1, Component: 2}
	client := tr.Connect(clientID)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	// unknown code, then truncated bytes: both are logged and dropped
	require.NoError(t, client.Send(ctx, []byte{0xEE, 0xFF, 0x01}, id, judp.WithBroadcast(judp.BroadcastLocal)))
	require.NoError(t, client.Send(ctx, []byte{0x0D}, id, judp.WithBroadcast(judp.BroadcastLocal)))

	// the loop is still alive
	query, err := messages.Marshal(&messages.QueryHeartbeatPulse{})
	require.NoError(t, err)
	require.NoError(t, client.Send(ctx, query, id, judp.WithBroadcast(judp.BroadcastLocal)))
	reply, _, err := client.Listen(ctx)
	require.NoError(t, err)
	msg, err := messages.Unmarshal(reply)
	require.NoError(t, err)
	require.IsType(t, &messages.ReportHeartbeatPulse{}, msg)
}

func TestDispatchMissingHandler(t *testing.T) {
	comp, err := jaus.NewComponent(jaus.ComponentConfig{
		ID: messages.Id{Subsystem: 1, Node: 1, Component: 1},
	}, core.NewLiveness())
	require.NoError(t, err)

	_, err = comp.DispatchMessage(context.Background(), &messages.QueryStatus{}, messages.Id{})
	if !errors.Is(err, jaus.ErrMissingHandler) {
		t.Fatalf("err = %v, want ErrMissingHandler", err)
	}
}

func TestCommandGatingWithoutAccessControl(t *testing.T) {
	id := messages.Id{Subsystem: 1, Node: 1, Component: 1}
	comp, err := jaus.NewComponent(jaus.ComponentConfig{ID: id}, core.NewManagement())
	require.NoError(t, err)

	// Resume is a command; with no access-control service nobody has control,
	// so the status must not move
	_, err = comp.DispatchMessage(context.Background(), &messages.Resume{}, messages.Id{Subsystem: 1, Node: 1, Component: 2})
	require.NoError(t, err)
	m := comp.Service("management").(*core.Management)
	require.Equal(t, messages.StatusStandby, m.Status())
}
