package core

import (
	"context"

	jaus "github.com/fhackett/gojaus"
	"github.com/fhackett/gojaus/messages"
)

// Liveness answers heartbeat queries.
type Liveness struct {
	jaus.BaseService
}

// NewLiveness returns the liveness service.
func NewLiveness() *Liveness {
	return &Liveness{}
}

func (s *Liveness) Name() string { return "liveness" }

func (s *Liveness) URI() string { return "urn:jaus:jss:core:Liveness" }

func (s *Liveness) Version() (int, int) { return 1, 0 }

func (s *Liveness) Handlers() map[messages.Code]jaus.HandlerSpec {
	return map[messages.Code]jaus.HandlerSpec{
		messages.CodeQueryHeartbeatPulse: {Handler: s.onQueryHeartbeat, SupportsEvents: true},
	}
}

func (s *Liveness) onQueryHeartbeat(ctx context.Context, msg messages.Message, src messages.Id) (messages.Message, error) {
	return &messages.ReportHeartbeatPulse{}, nil
}
