// Package mobility implements the mobility service shells: local pose and
// velocity sensors and the local waypoint drivers.
package mobility

import (
	"context"
	"time"

	jaus "github.com/fhackett/gojaus"
	"github.com/fhackett/gojaus/messages"
)

// postChange forwards changed query codes to the component's events service.
// The events service lives in the core package; only its PostChange surface
// matters here.
type changePoster interface {
	PostChange(codes ...messages.Code)
}

func postChange(c *jaus.Component, codes ...messages.Code) {
	if c == nil {
		return
	}
	if ev, ok := c.Service("events").(changePoster); ok {
		ev.PostChange(codes...)
	}
}

// LocalPoseSensor reports the platform position and orientation in the local
// frame.
type LocalPoseSensor struct {
	jaus.BaseService
	state *jaus.State
}

// NewLocalPoseSensor returns a pose sensor at the local-frame origin.
func NewLocalPoseSensor() *LocalPoseSensor {
	return &LocalPoseSensor{
		state: jaus.NewState(map[string]interface{}{
			"x":   float64(0),
			"y":   float64(0),
			"yaw": float64(0),
		}),
	}
}

func (s *LocalPoseSensor) Name() string { return "local_pose_sensor" }

func (s *LocalPoseSensor) URI() string { return "urn:jaus:jss:mobility:LocalPoseSensor" }

func (s *LocalPoseSensor) Version() (int, int) { return 1, 0 }

// Bootstrap wires pose changes into on-change event delivery.
func (s *LocalPoseSensor) Bootstrap(c *jaus.Component) {
	s.BaseService.Bootstrap(c)
	s.state.Watch(func() {
		postChange(c, messages.CodeQueryLocalPose)
	}, "x", "y", "yaw")
}

func (s *LocalPoseSensor) Handlers() map[messages.Code]jaus.HandlerSpec {
	return map[messages.Code]jaus.HandlerSpec{
		messages.CodeQueryLocalPose: {Handler: s.onQueryLocalPose, SupportsEvents: true},
	}
}

// SetPose feeds a new pose estimate into the sensor.
func (s *LocalPoseSensor) SetPose(x, y, yaw float64) {
	s.state.Set("x", x)
	s.state.Set("y", y)
	s.state.Set("yaw", yaw)
}

func (s *LocalPoseSensor) onQueryLocalPose(ctx context.Context, msg messages.Message, src messages.Id) (messages.Message, error) {
	query := msg.(*messages.QueryLocalPose)
	report := &messages.ReportLocalPose{}
	if query.PresenceVector&messages.LocalPoseX != 0 {
		report.X = messages.Float(s.state.Float("x"))
	}
	if query.PresenceVector&messages.LocalPoseY != 0 {
		report.Y = messages.Float(s.state.Float("y"))
	}
	if query.PresenceVector&messages.LocalPoseYaw != 0 {
		report.Yaw = messages.Float(s.state.Float("yaw"))
	}
	if query.PresenceVector&messages.LocalPoseTimestamp != 0 {
		ts := messages.TimestampFromTime(time.Now())
		report.Timestamp = &ts
	}
	return report, nil
}
