// Package core implements the JAUS core service set: liveness, events,
// access control, management, discovery, and list management.
package core

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	jaus "github.com/fhackett/gojaus"
	"github.com/fhackett/gojaus/messages"
)

var log = logrus.WithField("pkg", "core")

// sendTimeout bounds notification sends done from background tasks.
const sendTimeout = 5 * time.Second

// postChange forwards changed query codes to the component's events service,
// if it has one.
func postChange(c *jaus.Component, codes ...messages.Code) {
	if c == nil {
		return
	}
	if ev, ok := c.Service("events").(*Events); ok {
		ev.PostChange(codes...)
	}
}

// AccessControl arbitrates exclusive command authority with a renewable
// timeout and pre-emption by higher authority.
type AccessControl struct {
	jaus.BaseService

	timeout time.Duration

	mu         sync.Mutex
	controller *messages.Id
	authority  uint8
	timer      *time.Timer
}

// NewAccessControl returns an access-control service with the default
// five-second timeout.
func NewAccessControl() *AccessControl {
	return &AccessControl{timeout: jaus.DefaultControlTimeout * time.Second}
}

// SetTimeout overrides the control timeout. Effective for grants that follow.
func (a *AccessControl) SetTimeout(d time.Duration) {
	a.mu.Lock()
	a.timeout = d
	a.mu.Unlock()
}

func (a *AccessControl) Name() string { return "access_control" }

func (a *AccessControl) URI() string { return "urn:jaus:jss:core:AccessControl" }

func (a *AccessControl) Version() (int, int) { return 1, 0 }

// Bootstrap arms the timeout task and adopts the component's default
// authority.
func (a *AccessControl) Bootstrap(c *jaus.Component) {
	a.BaseService.Bootstrap(c)
	a.mu.Lock()
	a.authority = c.DefaultAuthority()
	a.timer = time.AfterFunc(a.timeout, a.onTimeout)
	a.mu.Unlock()
}

// Close cancels the timeout task.
func (a *AccessControl) Close(ctx context.Context) error {
	a.mu.Lock()
	if a.timer != nil {
		a.timer.Stop()
	}
	a.mu.Unlock()
	return nil
}

func (a *AccessControl) Handlers() map[messages.Code]jaus.HandlerSpec {
	return map[messages.Code]jaus.HandlerSpec{
		messages.CodeRequestControl: {Handler: a.onRequestControl},
		messages.CodeReleaseControl: {Handler: a.onReleaseControl},
		messages.CodeSetAuthority:   {Handler: a.onSetAuthority},
		messages.CodeQueryControl:   {Handler: a.onQueryControl, SupportsEvents: true},
		messages.CodeQueryAuthority: {Handler: a.onQueryAuthority, SupportsEvents: true},
		messages.CodeQueryTimeout:   {Handler: a.onQueryTimeout, SupportsEvents: true},
	}
}

// HasControl reports whether id is the current controller.
func (a *AccessControl) HasControl(id messages.Id) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.controller != nil && *a.controller == id
}

// Controller returns the current controller, or false when uncontrolled.
func (a *AccessControl) Controller() (messages.Id, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.controller == nil {
		return messages.Id{}, false
	}
	return *a.controller, true
}

// Authority returns the current authority code.
func (a *AccessControl) Authority() uint8 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.authority
}

// controlAvailable mirrors the management gate: control can only be taken in
// READY or STANDBY. A component without a management service is always
// available.
func (a *AccessControl) controlAvailable() bool {
	if m, ok := a.Component().Service("management").(*Management); ok {
		s := m.Status()
		return s == messages.StatusReady || s == messages.StatusStandby
	}
	return true
}

// resetTimeout re-arms the timeout task. Callers hold a.mu.
func (a *AccessControl) resetTimeout() {
	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(a.timeout, a.onTimeout)
}

// onTimeout releases control if the deadline passed without a refreshing
// command, notifying the stale controller.
func (a *AccessControl) onTimeout() {
	a.mu.Lock()
	if a.controller == nil {
		a.mu.Unlock()
		return
	}
	if !a.controlAvailable() {
		a.resetTimeout()
		a.mu.Unlock()
		return
	}
	old := *a.controller
	a.controller = nil
	a.mu.Unlock()

	log.WithField("controller", old).Info("control timed out")
	postChange(a.Component(), messages.CodeQueryControl)
	a.notifyReleased(old)
}

func (a *AccessControl) notifyReleased(id messages.Id) {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()
	err := a.Component().SendMessage(ctx, &messages.RejectControl{
		ResponseCode: messages.ControlReleased,
	}, id)
	if err != nil {
		log.WithError(err).WithField("dst", id).Warn("control-released notification failed")
	}
}

// Release gives up control, optionally handing it to next, and notifies the
// previous controller. The management service uses it for Shutdown/Reset.
func (a *AccessControl) Release(next *messages.Id) {
	a.mu.Lock()
	if a.controller == nil {
		a.mu.Unlock()
		return
	}
	old := *a.controller
	a.controller = next
	a.resetTimeout()
	a.mu.Unlock()

	postChange(a.Component(), messages.CodeQueryControl)
	a.notifyReleased(old)
}

func (a *AccessControl) onRequestControl(ctx context.Context, msg messages.Message, src messages.Id) (messages.Message, error) {
	req := msg.(*messages.RequestControl).AuthorityCode
	defaultAuthority := a.Component().DefaultAuthority()

	a.mu.Lock()
	if !a.controlAvailable() {
		a.mu.Unlock()
		return &messages.ConfirmControl{ResponseCode: messages.ConfirmNotAvailable}, nil
	}

	if a.controller == nil {
		if req < defaultAuthority {
			a.mu.Unlock()
			return &messages.ConfirmControl{ResponseCode: messages.InsufficientAuthority}, nil
		}
		id := src
		a.controller = &id
		a.authority = req
		a.resetTimeout()
		a.mu.Unlock()
		postChange(a.Component(), messages.CodeQueryControl, messages.CodeQueryAuthority)
		return &messages.ConfirmControl{ResponseCode: messages.ControlAccepted}, nil
	}

	if *a.controller == src {
		if req < defaultAuthority {
			// the controller's authority dropped below the floor: release
			a.controller = nil
			a.resetTimeout()
			a.mu.Unlock()
			postChange(a.Component(), messages.CodeQueryControl)
			return &messages.RejectControl{ResponseCode: messages.ControlReleased}, nil
		}
		a.authority = req
		a.resetTimeout()
		a.mu.Unlock()
		postChange(a.Component(), messages.CodeQueryAuthority)
		return &messages.ConfirmControl{ResponseCode: messages.ControlAccepted}, nil
	}

	if req > a.authority {
		old := *a.controller
		id := src
		a.controller = &id
		a.authority = req
		a.resetTimeout()
		a.mu.Unlock()
		postChange(a.Component(), messages.CodeQueryControl, messages.CodeQueryAuthority)
		a.notifyReleased(old)
		return &messages.ConfirmControl{ResponseCode: messages.ControlAccepted}, nil
	}
	a.mu.Unlock()
	return &messages.ConfirmControl{ResponseCode: messages.InsufficientAuthority}, nil
}

func (a *AccessControl) onReleaseControl(ctx context.Context, msg messages.Message, src messages.Id) (messages.Message, error) {
	a.mu.Lock()
	if a.controller == nil {
		a.mu.Unlock()
		return &messages.RejectControl{ResponseCode: messages.ControlReleased}, nil
	}
	if !a.controlAvailable() {
		a.mu.Unlock()
		return &messages.RejectControl{ResponseCode: messages.ControlNotAvailable}, nil
	}
	if *a.controller != src {
		// non-controllers are ignored
		a.mu.Unlock()
		return nil, nil
	}
	a.controller = nil
	a.resetTimeout()
	a.mu.Unlock()
	postChange(a.Component(), messages.CodeQueryControl)
	return &messages.RejectControl{ResponseCode: messages.ControlReleased}, nil
}

func (a *AccessControl) onSetAuthority(ctx context.Context, msg messages.Message, src messages.Id) (messages.Message, error) {
	// command semantics by hand: the service cannot gate on itself
	if !a.HasControl(src) {
		return nil, nil
	}
	code := msg.(*messages.SetAuthority).AuthorityCode
	a.mu.Lock()
	if code <= a.authority && code >= a.Component().DefaultAuthority() {
		a.authority = code
		a.mu.Unlock()
		postChange(a.Component(), messages.CodeQueryAuthority)
		return nil, nil
	}
	a.mu.Unlock()
	return nil, nil
}

func (a *AccessControl) onQueryControl(ctx context.Context, msg messages.Message, src messages.Id) (messages.Message, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	report := &messages.ReportControl{AuthorityCode: a.authority}
	if a.controller != nil {
		report.ID = *a.controller
	}
	return report, nil
}

func (a *AccessControl) onQueryAuthority(ctx context.Context, msg messages.Message, src messages.Id) (messages.Message, error) {
	return &messages.ReportAuthority{AuthorityCode: a.Authority()}, nil
}

func (a *AccessControl) onQueryTimeout(ctx context.Context, msg messages.Message, src messages.Id) (messages.Message, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return &messages.ReportTimeout{Timeout: uint8(a.timeout / time.Second)}, nil
}
