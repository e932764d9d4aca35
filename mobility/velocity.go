package mobility

import (
	"context"
	"time"

	jaus "github.com/fhackett/gojaus"
	"github.com/fhackett/gojaus/messages"
)

// VelocityStateSensor reports platform velocity in the local frame.
type VelocityStateSensor struct {
	jaus.BaseService
	state *jaus.State
}

// NewVelocityStateSensor returns a stationary velocity sensor.
func NewVelocityStateSensor() *VelocityStateSensor {
	return &VelocityStateSensor{
		state: jaus.NewState(map[string]interface{}{
			"x":        float64(0),
			"y":        float64(0),
			"yaw_rate": float64(0),
		}),
	}
}

func (s *VelocityStateSensor) Name() string { return "velocity_state_sensor" }

func (s *VelocityStateSensor) URI() string { return "urn:jaus:jss:mobility:VelocityStateSensor" }

func (s *VelocityStateSensor) Version() (int, int) { return 1, 0 }

// Bootstrap wires velocity changes into on-change event delivery.
func (s *VelocityStateSensor) Bootstrap(c *jaus.Component) {
	s.BaseService.Bootstrap(c)
	s.state.Watch(func() {
		postChange(c, messages.CodeQueryVelocityState)
	}, "x", "y", "yaw_rate")
}

func (s *VelocityStateSensor) Handlers() map[messages.Code]jaus.HandlerSpec {
	return map[messages.Code]jaus.HandlerSpec{
		messages.CodeQueryVelocityState: {Handler: s.onQueryVelocityState, SupportsEvents: true},
	}
}

// SetVelocity feeds a new velocity estimate into the sensor.
func (s *VelocityStateSensor) SetVelocity(x, y, yawRate float64) {
	s.state.Set("x", x)
	s.state.Set("y", y)
	s.state.Set("yaw_rate", yawRate)
}

func (s *VelocityStateSensor) onQueryVelocityState(ctx context.Context, msg messages.Message, src messages.Id) (messages.Message, error) {
	query := msg.(*messages.QueryVelocityState)
	report := &messages.ReportVelocityState{}
	if query.PresenceVector&messages.VelocityX != 0 {
		report.X = messages.Float(s.state.Float("x"))
	}
	if query.PresenceVector&messages.VelocityY != 0 {
		report.Y = messages.Float(s.state.Float("y"))
	}
	if query.PresenceVector&messages.VelocityYawRate != 0 {
		report.YawRate = messages.Float(s.state.Float("yaw_rate"))
	}
	if query.PresenceVector&messages.VelocityTimestamp != 0 {
		ts := messages.TimestampFromTime(time.Now())
		report.Timestamp = &ts
	}
	return report, nil
}
