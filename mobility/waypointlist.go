package mobility

import (
	"context"
	"sync"

	jaus "github.com/fhackett/gojaus"
	"github.com/fhackett/gojaus/messages"
)

// LocalWaypointListDriver reports which element of a waypoint list is active,
// as last set through SetActiveElement. UID zero means no element is active.
// The driver does not read the list manager's elements or move the platform.
type LocalWaypointListDriver struct {
	jaus.BaseService

	mu     sync.Mutex
	active uint16
}

// NewLocalWaypointListDriver returns an idle list driver.
func NewLocalWaypointListDriver() *LocalWaypointListDriver {
	return &LocalWaypointListDriver{}
}

func (s *LocalWaypointListDriver) Name() string { return "local_waypoint_list_driver" }

func (s *LocalWaypointListDriver) URI() string {
	return "urn:jaus:jss:mobility:LocalWaypointListDriver"
}

func (s *LocalWaypointListDriver) Version() (int, int) { return 1, 0 }

func (s *LocalWaypointListDriver) Handlers() map[messages.Code]jaus.HandlerSpec {
	return map[messages.Code]jaus.HandlerSpec{
		messages.CodeQueryActiveElement: {Handler: s.onQueryActiveElement, SupportsEvents: true},
	}
}

// SetActiveElement marks the element currently being driven.
func (s *LocalWaypointListDriver) SetActiveElement(uid uint16) {
	s.mu.Lock()
	s.active = uid
	s.mu.Unlock()
	postChange(s.Component(), messages.CodeQueryActiveElement)
}

func (s *LocalWaypointListDriver) onQueryActiveElement(ctx context.Context, msg messages.Message, src messages.Id) (messages.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &messages.ReportActiveElement{UID: s.active}, nil
}
