package mobility

import (
	"context"

	jaus "github.com/fhackett/gojaus"
	"github.com/fhackett/gojaus/messages"
)

// LocalWaypointDriver holds and reports a single target waypoint and a
// commanded travel speed. The waypoint holds until the next
// SetLocalWaypoint. The driver does not itself move the platform.
type LocalWaypointDriver struct {
	jaus.BaseService
	state *jaus.State
}

// NewLocalWaypointDriver returns a stopped driver targeting the origin.
func NewLocalWaypointDriver() *LocalWaypointDriver {
	return &LocalWaypointDriver{
		state: jaus.NewState(map[string]interface{}{
			"travel_speed": float64(0),
			"x":            float64(0),
			"y":            float64(0),
		}),
	}
}

func (s *LocalWaypointDriver) Name() string { return "local_waypoint_driver" }

func (s *LocalWaypointDriver) URI() string { return "urn:jaus:jss:mobility:LocalWaypointDriver" }

func (s *LocalWaypointDriver) Version() (int, int) { return 1, 0 }

// Bootstrap wires waypoint and speed changes into on-change event delivery.
func (s *LocalWaypointDriver) Bootstrap(c *jaus.Component) {
	s.BaseService.Bootstrap(c)
	s.state.Watch(func() {
		postChange(c, messages.CodeQueryLocalWaypoint)
	}, "x", "y")
	s.state.Watch(func() {
		postChange(c, messages.CodeQueryTravelSpeed)
	}, "travel_speed")
}

func (s *LocalWaypointDriver) Handlers() map[messages.Code]jaus.HandlerSpec {
	return map[messages.Code]jaus.HandlerSpec{
		messages.CodeSetLocalWaypoint:   {Handler: s.onSetLocalWaypoint, IsCommand: true},
		messages.CodeQueryLocalWaypoint: {Handler: s.onQueryLocalWaypoint, SupportsEvents: true},
		messages.CodeSetTravelSpeed:     {Handler: s.onSetTravelSpeed, IsCommand: true},
		messages.CodeQueryTravelSpeed:   {Handler: s.onQueryTravelSpeed, SupportsEvents: true},
	}
}

// Waypoint returns the current target.
func (s *LocalWaypointDriver) Waypoint() (x, y float64) {
	return s.state.Float("x"), s.state.Float("y")
}

// TravelSpeed returns the commanded speed.
func (s *LocalWaypointDriver) TravelSpeed() float64 {
	return s.state.Float("travel_speed")
}

func (s *LocalWaypointDriver) onSetLocalWaypoint(ctx context.Context, msg messages.Message, src messages.Id) (messages.Message, error) {
	set := msg.(*messages.SetLocalWaypoint)
	s.state.Set("x", set.X)
	s.state.Set("y", set.Y)
	return nil, nil
}

func (s *LocalWaypointDriver) onQueryLocalWaypoint(ctx context.Context, msg messages.Message, src messages.Id) (messages.Message, error) {
	x, y := s.Waypoint()
	return &messages.ReportLocalWaypoint{X: x, Y: y}, nil
}

func (s *LocalWaypointDriver) onSetTravelSpeed(ctx context.Context, msg messages.Message, src messages.Id) (messages.Message, error) {
	s.state.Set("travel_speed", msg.(*messages.SetTravelSpeed).Speed)
	return nil, nil
}

func (s *LocalWaypointDriver) onQueryTravelSpeed(ctx context.Context, msg messages.Message, src messages.Id) (messages.Message, error) {
	return &messages.ReportTravelSpeed{Speed: s.TravelSpeed()}, nil
}
