package jaus

import (
	"context"

	"github.com/fhackett/gojaus/messages"
)

// Handler processes one inbound message. A non-nil reply is sent back to the
// message source.
type Handler func(ctx context.Context, msg messages.Message, src messages.Id) (messages.Message, error)

// HandlerSpec binds a Handler to its dispatch properties.
type HandlerSpec struct {
	Handler Handler

	// IsCommand gates the handler on the source holding access control.
	IsCommand bool

	// SupportsEvents marks queries that event subscriptions may re-dispatch.
	SupportsEvents bool
}

// Service is one JAUS capability hosted by a Component. Implementations
// register handlers per message code; the component flattens every service's
// table into its dispatch map at construction.
type Service interface {
	// Name is the key the service is looked up under (e.g. "events").
	Name() string

	// URI is the JAUS service identifier (e.g. "urn:jaus:jss:core:Events").
	URI() string

	// Version returns the service's major and minor version.
	Version() (major, minor int)

	// Handlers returns the service's message table. Called once.
	Handlers() map[messages.Code]HandlerSpec

	// Bootstrap wires the service to its owning component after every
	// service of the component has been constructed.
	Bootstrap(c *Component)

	// Close cancels the service's background tasks.
	Close(ctx context.Context) error
}

// BaseService provides a Bootstrap that records the component back-pointer
// and a no-op Close for services that embed it.
type BaseService struct {
	component *Component
}

// Bootstrap records the owning component.
func (b *BaseService) Bootstrap(c *Component) {
	b.component = c
}

// Component returns the owning component; nil before Bootstrap.
func (b *BaseService) Component() *Component {
	return b.component
}

// Close implements Service.
func (b *BaseService) Close(ctx context.Context) error {
	return nil
}
