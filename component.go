package jaus

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/fhackett/gojaus/judp"
	"github.com/fhackett/gojaus/messages"
)

var log = logrus.WithField("pkg", "jaus")

// ComponentConfig identifies a component and names it for discovery.
type ComponentConfig struct {
	ID               messages.Id
	Name             string
	NodeName         string
	SubsystemName    string
	DefaultAuthority uint8
}

type handlerEntry struct {
	spec    HandlerSpec
	service string
}

// controlArbiter is the slice of the access-control service the dispatcher
// needs to gate command handlers.
type controlArbiter interface {
	HasControl(id messages.Id) bool
}

// Component hosts a set of services behind one JAUS id, routing inbound
// messages to their handlers and replying to the source.
type Component struct {
	cfg      ComponentConfig
	services map[string]Service
	order    []string
	handlers map[messages.Code]handlerEntry
	log      *logrus.Entry

	mu     sync.Mutex
	conn   *judp.Connection
	cancel context.CancelFunc
	done   chan struct{}
}

// NewComponent builds a component from its services, flattening their
// handler tables. A message code claimed by two services is a configuration
// error and fails construction.
func NewComponent(cfg ComponentConfig, services ...Service) (*Component, error) {
	c := &Component{
		cfg:      cfg,
		services: make(map[string]Service, len(services)),
		handlers: make(map[messages.Code]handlerEntry),
		log:      log.WithField("component", cfg.ID.String()),
	}
	for _, svc := range services {
		c.services[svc.Name()] = svc
		c.order = append(c.order, svc.Name())
		for code, spec := range svc.Handlers() {
			if prev, dup := c.handlers[code]; dup {
				return nil, collisionError(code, prev.service, svc.Name())
			}
			c.handlers[code] = handlerEntry{spec: spec, service: svc.Name()}
		}
	}
	for _, name := range c.order {
		c.services[name].Bootstrap(c)
	}
	return c, nil
}

// ID returns the component's JAUS id.
func (c *Component) ID() messages.Id { return c.cfg.ID }

// Name returns the component name.
func (c *Component) Name() string { return c.cfg.Name }

// NodeName returns the hosting node's name.
func (c *Component) NodeName() string { return c.cfg.NodeName }

// SubsystemName returns the hosting subsystem's name.
func (c *Component) SubsystemName() string { return c.cfg.SubsystemName }

// DefaultAuthority is the floor a controller's authority must meet.
func (c *Component) DefaultAuthority() uint8 { return c.cfg.DefaultAuthority }

// Service returns the service registered under name, or nil.
func (c *Component) Service(name string) Service {
	return c.services[name]
}

// Services returns the component's services in registration order.
func (c *Component) Services() []Service {
	out := make([]Service, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.services[name])
	}
	return out
}

// HasControl reports whether id currently holds access control. Without an
// access-control service no client ever holds control, so command handlers
// never run.
func (c *Component) HasControl(id messages.Id) bool {
	if arb, ok := c.services["access_control"].(controlArbiter); ok {
		return arb.HasControl(id)
	}
	return false
}

// DispatchMessage routes msg to its handler. Command handlers silently
// return nil unless src holds control. Unknown codes return
// ErrMissingHandler.
func (c *Component) DispatchMessage(ctx context.Context, msg messages.Message, src messages.Id) (messages.Message, error) {
	entry, ok := c.handlers[msg.MessageCode()]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrMissingHandler, msg.MessageCode())
	}
	if entry.spec.IsCommand && !c.HasControl(src) {
		return nil, nil
	}
	return entry.spec.Handler(ctx, msg, src)
}

// SendMessage encodes msg and sends it to dst over the component's
// connection.
func (c *Component) SendMessage(ctx context.Context, msg messages.Message, dst messages.Id, opts ...judp.SendOption) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return fmt.Errorf("jaus: component %v not listening", c.cfg.ID)
	}
	data, err := messages.Marshal(msg)
	if err != nil {
		return err
	}
	return conn.Send(ctx, data, dst, opts...)
}

// Listen attaches the component to a transport connection and starts its
// dispatch loop. It may be called once.
func (c *Component) Listen(conn *judp.Connection) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		panic("jaus: component already listening")
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.conn = conn
	c.cancel = cancel
	c.done = make(chan struct{})
	go c.run(ctx)
}

// run is the dispatch loop: decode, dispatch, reply. Decode failures and
// handler errors are logged and the loop continues.
func (c *Component) run(ctx context.Context) {
	defer close(c.done)
	for {
		contents, src, err := c.conn.Listen(ctx)
		if err != nil {
			return
		}
		msg, err := messages.Unmarshal(contents)
		if err != nil {
			c.log.WithError(err).WithField("src", src).Warn("message decode failed")
			continue
		}
		reply := c.handleInbound(ctx, msg, src)
		if reply == nil {
			continue
		}
		if err := c.SendMessage(ctx, reply, src); err != nil {
			c.log.WithError(err).WithField("dst", src).Warn("reply send failed")
		}
	}
}

// handleInbound isolates one dispatch so a panicking handler cannot kill the
// loop.
func (c *Component) handleInbound(ctx context.Context, msg messages.Message, src messages.Id) (reply messages.Message) {
	defer func() {
		if r := recover(); r != nil {
			c.log.WithFields(logrus.Fields{
				"code": msg.MessageCode(),
				"src":  src,
			}).Errorf("handler panic: %v", r)
			reply = nil
		}
	}()
	reply, err := c.DispatchMessage(ctx, msg, src)
	if err != nil {
		c.log.WithError(err).WithFields(logrus.Fields{
			"code": msg.MessageCode(),
			"src":  src,
		}).Warn("dispatch failed")
		return nil
	}
	return reply
}

// Close stops the dispatch loop and closes every service.
func (c *Component) Close(ctx context.Context) error {
	c.mu.Lock()
	cancel := c.cancel
	done := c.done
	c.cancel = nil
	c.mu.Unlock()
	if cancel != nil {
		cancel()
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	var firstErr error
	for _, name := range c.order {
		if err := c.services[name].Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
