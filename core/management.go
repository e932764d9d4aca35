package core

import (
	"context"
	"sync"

	jaus "github.com/fhackett/gojaus"
	"github.com/fhackett/gojaus/messages"
)

// Management tracks the component lifecycle status and the emergency set.
type Management struct {
	jaus.BaseService

	state *jaus.State

	mu        sync.Mutex
	oldStatus messages.ManagementStatus
	emergency map[messages.Id]struct{}
}

// NewManagement returns a management service starting in STANDBY.
func NewManagement() *Management {
	return &Management{
		state:     jaus.NewState(map[string]interface{}{"status": messages.StatusStandby}),
		emergency: make(map[messages.Id]struct{}),
	}
}

func (s *Management) Name() string { return "management" }

func (s *Management) URI() string { return "urn:jaus:jss:core:Management" }

func (s *Management) Version() (int, int) { return 1, 0 }

// Bootstrap wires the status watcher into the events service.
func (s *Management) Bootstrap(c *jaus.Component) {
	s.BaseService.Bootstrap(c)
	s.state.Watch(func() {
		postChange(c, messages.CodeQueryStatus)
	}, "status")
}

func (s *Management) Handlers() map[messages.Code]jaus.HandlerSpec {
	return map[messages.Code]jaus.HandlerSpec{
		messages.CodeShutdown:       {Handler: s.onShutdown, IsCommand: true},
		messages.CodeStandby:        {Handler: s.onStandby, IsCommand: true},
		messages.CodeResume:         {Handler: s.onResume, IsCommand: true},
		messages.CodeReset:          {Handler: s.onReset, IsCommand: true},
		messages.CodeSetEmergency:   {Handler: s.onSetEmergency},
		messages.CodeClearEmergency: {Handler: s.onClearEmergency},
		messages.CodeQueryStatus:    {Handler: s.onQueryStatus, SupportsEvents: true},
	}
}

// Status returns the current management status.
func (s *Management) Status() messages.ManagementStatus {
	status, _ := s.state.Get("status").(messages.ManagementStatus)
	return status
}

// SetStatus forces the lifecycle status, bypassing the command transitions.
// Platform integration code uses it to surface failures.
func (s *Management) SetStatus(status messages.ManagementStatus) {
	s.setStatus(status)
}

func (s *Management) setStatus(status messages.ManagementStatus) {
	s.state.Set("status", status)
}

// releaseControl asks the access-control service to drop the controller.
func (s *Management) releaseControl() {
	if a, ok := s.Component().Service("access_control").(*AccessControl); ok {
		a.Release(nil)
	}
}

func (s *Management) onShutdown(ctx context.Context, msg messages.Message, src messages.Id) (messages.Message, error) {
	s.releaseControl()
	s.setStatus(messages.StatusShutdown)
	return nil, nil
}

func (s *Management) onStandby(ctx context.Context, msg messages.Message, src messages.Id) (messages.Message, error) {
	if s.Status() == messages.StatusReady {
		s.setStatus(messages.StatusStandby)
	}
	return nil, nil
}

func (s *Management) onResume(ctx context.Context, msg messages.Message, src messages.Id) (messages.Message, error) {
	if s.Status() == messages.StatusStandby {
		s.setStatus(messages.StatusReady)
	}
	return nil, nil
}

func (s *Management) onReset(ctx context.Context, msg messages.Message, src messages.Id) (messages.Message, error) {
	status := s.Status()
	if status == messages.StatusStandby || status == messages.StatusReady {
		s.releaseControl()
		s.setStatus(messages.StatusStandby)
	}
	return nil, nil
}

func (s *Management) onSetEmergency(ctx context.Context, msg messages.Message, src messages.Id) (messages.Message, error) {
	s.mu.Lock()
	s.emergency[src] = struct{}{}
	first := s.Status() != messages.StatusEmergency
	if first {
		s.oldStatus = s.Status()
	}
	s.mu.Unlock()
	if first {
		s.setStatus(messages.StatusEmergency)
	}
	return nil, nil
}

func (s *Management) onClearEmergency(ctx context.Context, msg messages.Message, src messages.Id) (messages.Message, error) {
	s.mu.Lock()
	delete(s.emergency, src)
	clear := len(s.emergency) == 0
	old := s.oldStatus
	s.mu.Unlock()
	if clear {
		s.setStatus(old)
	}
	return nil, nil
}

func (s *Management) onQueryStatus(ctx context.Context, msg messages.Message, src messages.Id) (messages.Message, error) {
	return &messages.ReportStatus{Status: s.Status()}, nil
}
