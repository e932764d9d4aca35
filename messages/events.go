package messages

import (
	"fmt"

	"github.com/fhackett/gojaus/encoding"
)

// EventType selects how an event subscription fires.
type EventType uint8

const (
	Periodic    EventType = 0
	EveryChange EventType = 1
)

func (t EventType) Valid() bool { return t <= EveryChange }

// RejectEventResponse enumerates RejectEventRequest reasons.
type RejectEventResponse uint8

const (
	PeriodicEventsNotSupported    RejectEventResponse = 1
	ChangeBasedEventsNotSupported RejectEventResponse = 2
	ConnectionRefused             RejectEventResponse = 3
	InvalidEventSetup             RejectEventResponse = 4
	MessageNotSupported           RejectEventResponse = 5
	InvalidEventIDForUpdate       RejectEventResponse = 6
)

func (r RejectEventResponse) Valid() bool {
	return r >= PeriodicEventsNotSupported && r <= InvalidEventIDForUpdate
}

// CreateEvent subscribes the sender to a periodic or on-change event. The
// query message is re-dispatched locally to produce each report.
type CreateEvent struct {
	RequestID             uint8     `jaus:"u8"`
	EventType             EventType `jaus:"u8"`
	RequestedPeriodicRate float64   `jaus:"scaled,u16,le,lo=0,hi=1092"`
	QueryMessage          []byte    `jaus:"count=4,le"`
}

func (CreateEvent) MessageCode() Code { return CodeCreateEvent }

// UpdateEvent replaces an existing event subscription in place.
type UpdateEvent struct {
	RequestID             uint8     `jaus:"u8"`
	EventType             EventType `jaus:"u8"`
	RequestedPeriodicRate float64   `jaus:"scaled,u16,le,lo=0,hi=1092"`
	EventID               uint8     `jaus:"u8"`
	QueryMessage          []byte    `jaus:"count=4,le"`
}

func (UpdateEvent) MessageCode() Code { return CodeUpdateEvent }

// CancelEvent tears down an event subscription.
type CancelEvent struct {
	RequestID uint8 `jaus:"u8"`
	EventID   uint8 `jaus:"u8"`
}

func (CancelEvent) MessageCode() Code { return CodeCancelEvent }

// CreateCommandEvent requests one-shot execution of an embedded command.
type CreateCommandEvent struct {
	RequestID              uint8  `jaus:"u8"`
	MaximumAllowedDuration uint32 `jaus:"u32,le"`
	CommandMessage         []byte `jaus:"count=4,le"`
}

func (CreateCommandEvent) MessageCode() Code { return CodeCreateCommandEvent }

// QueryEventsVariant selects the QueryEvents filter.
type QueryEventsVariant uint8

const (
	QueryEventsByMessageID QueryEventsVariant = 0
	QueryEventsByType      QueryEventsVariant = 1
	QueryEventsByID        QueryEventsVariant = 2
	QueryEventsAll         QueryEventsVariant = 3
)

func (v QueryEventsVariant) Valid() bool { return v <= QueryEventsAll }

// QueryEvents asks for the current event subscriptions matching a filter.
// The wire form is a one-byte variant selector followed by the selected
// filter field; exactly one of the filter fields is meaningful.
type QueryEvents struct {
	Variant QueryEventsVariant

	FilterMessageCode Code      // Variant == QueryEventsByMessageID
	FilterEventType   EventType // Variant == QueryEventsByType
	FilterEventID     uint8     // Variant == QueryEventsByID
}

func (QueryEvents) MessageCode() Code { return CodeQueryEvents }

// MarshalJAUS writes the variant selector and its filter payload.
func (q *QueryEvents) MarshalJAUS(w *encoding.Writer) error {
	w.WriteU8(uint8(q.Variant))
	switch q.Variant {
	case QueryEventsByMessageID:
		w.WriteUintLE(uint64(q.FilterMessageCode), 2)
	case QueryEventsByType:
		w.WriteU8(uint8(q.FilterEventType))
	case QueryEventsByID:
		w.WriteU8(q.FilterEventID)
	case QueryEventsAll:
		w.WriteU8(0)
	default:
		return fmt.Errorf("messages: query events variant %d: %w", q.Variant, encoding.ErrUnknownVariant)
	}
	return nil
}

// UnmarshalJAUS reads the variant selector and its filter payload.
func (q *QueryEvents) UnmarshalJAUS(r *encoding.Reader) error {
	v, err := r.ReadU8()
	if err != nil {
		return err
	}
	q.Variant = QueryEventsVariant(v)
	switch q.Variant {
	case QueryEventsByMessageID:
		raw, err := r.ReadUintLE(2)
		if err != nil {
			return err
		}
		q.FilterMessageCode = Code(raw)
		if !q.FilterMessageCode.Valid() {
			return fmt.Errorf("messages: query events filter code %#04x: %w", raw, encoding.ErrInvalidEnumValue)
		}
	case QueryEventsByType:
		t, err := r.ReadU8()
		if err != nil {
			return err
		}
		q.FilterEventType = EventType(t)
		if !q.FilterEventType.Valid() {
			return encoding.ErrInvalidEnumValue
		}
	case QueryEventsByID:
		id, err := r.ReadU8()
		if err != nil {
			return err
		}
		q.FilterEventID = id
	case QueryEventsAll:
		if _, err := r.ReadU8(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("messages: query events variant %d: %w", v, encoding.ErrUnknownVariant)
	}
	return nil
}

// QueryEventTimeout asks for the event expiry period.
type QueryEventTimeout struct{}

func (QueryEventTimeout) MessageCode() Code { return CodeQueryEventTimeout }

// ConfirmEventRequest acknowledges Create/Update/CancelEvent, and also
// signals event expiry.
type ConfirmEventRequest struct {
	RequestID             uint8   `jaus:"u8"`
	EventID               uint8   `jaus:"u8"`
	ConfirmedPeriodicRate float64 `jaus:"scaled,u16,le,lo=0,hi=1092"`
}

func (ConfirmEventRequest) MessageCode() Code { return CodeConfirmEventRequest }

// RejectEventRequest refuses Create/Update/CancelEvent.
type RejectEventRequest struct {
	PresenceVector uint8               `jaus:"pv=1"`
	RequestID      uint8               `jaus:"u8"`
	ResponseCode   RejectEventResponse `jaus:"u8"`
	ErrorMessage   []byte              `jaus:"bytes=80,opt"`
}

func (RejectEventRequest) MessageCode() Code { return CodeRejectEventRequest }

// ReportedEvent is one entry in ReportEvents.
type ReportedEvent struct {
	Type         EventType `jaus:"u8"`
	ID           uint8     `jaus:"u8"`
	QueryMessage []byte    `jaus:"count=4,le"`
}

// ReportEvents answers QueryEvents.
type ReportEvents struct {
	Events []ReportedEvent `jaus:"count=1"`
}

func (ReportEvents) MessageCode() Code { return CodeReportEvents }

// Event carries one fired report to a subscriber.
type Event struct {
	EventID        uint8  `jaus:"u8"`
	SequenceNumber uint8  `jaus:"u8"`
	ReportMessage  []byte `jaus:"count=4,le"`
}

func (Event) MessageCode() Code { return CodeEvent }

// ReportEventTimeout answers QueryEventTimeout; the period is in minutes.
type ReportEventTimeout struct {
	Timeout uint8 `jaus:"u8"`
}

func (ReportEventTimeout) MessageCode() Code { return CodeReportEventTimeout }

// CommandEventResult enumerates CommandEvent outcomes.
type CommandEventResult uint8

const (
	CommandSuccessful   CommandEventResult = 0
	CommandUnsuccessful CommandEventResult = 1
)

func (r CommandEventResult) Valid() bool { return r <= CommandUnsuccessful }

// CommandEvent reports the outcome of a CreateCommandEvent.
type CommandEvent struct {
	EventID       uint8              `jaus:"u8"`
	CommandResult CommandEventResult `jaus:"u8"`
}

func (CommandEvent) MessageCode() Code { return CodeCommandEvent }

func init() {
	register(CodeCreateEvent, func() Message { return &CreateEvent{} })
	register(CodeUpdateEvent, func() Message { return &UpdateEvent{} })
	register(CodeCancelEvent, func() Message { return &CancelEvent{} })
	register(CodeCreateCommandEvent, func() Message { return &CreateCommandEvent{} })
	register(CodeQueryEvents, func() Message { return &QueryEvents{} })
	register(CodeQueryEventTimeout, func() Message { return &QueryEventTimeout{} })
	register(CodeConfirmEventRequest, func() Message { return &ConfirmEventRequest{} })
	register(CodeRejectEventRequest, func() Message { return &RejectEventRequest{} })
	register(CodeReportEvents, func() Message { return &ReportEvents{} })
	register(CodeEvent, func() Message { return &Event{} })
	register(CodeReportEventTimeout, func() Message { return &ReportEventTimeout{} })
	register(CodeCommandEvent, func() Message { return &CommandEvent{} })
}
