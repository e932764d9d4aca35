package core

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	jaus "github.com/fhackett/gojaus"
	"github.com/fhackett/gojaus/messages"
)

// defaultEventTimeout is how long a subscription lives without renewal.
const defaultEventTimeout = 60 * time.Second

// minPeriodicRate and maxPeriodicRate clamp a requested periodic rate to what
// the service supports.
const (
	minPeriodicRate = 0.1
	maxPeriodicRate = 1092
)

// eventRecord is one live subscription.
type eventRecord struct {
	id          uint8
	destination messages.Id
	query       messages.Message
	typ         messages.EventType
	rate        float64
	requestID   uint8
	seq         uint8

	cancel  context.CancelFunc // periodic task
	timeout *time.Timer
}

func (e *eventRecord) stop() {
	if e.cancel != nil {
		e.cancel()
	}
	if e.timeout != nil {
		e.timeout.Stop()
	}
}

// Events implements the JAUS events service: periodic and on-change
// subscriptions that re-dispatch a stored query locally and ship the report
// to the subscriber.
type Events struct {
	jaus.BaseService

	mu      sync.Mutex
	events  map[uint8]*eventRecord
	nextID  uint8
	timeout time.Duration
}

// NewEvents returns an events service with the default one-minute timeout.
func NewEvents() *Events {
	return &Events{
		events:  make(map[uint8]*eventRecord),
		timeout: defaultEventTimeout,
	}
}

// SetEventTimeout overrides the subscription lifetime for events created
// afterwards.
func (s *Events) SetEventTimeout(d time.Duration) {
	s.mu.Lock()
	s.timeout = d
	s.mu.Unlock()
}

func (s *Events) Name() string { return "events" }

func (s *Events) URI() string { return "urn:jaus:jss:core:Events" }

func (s *Events) Version() (int, int) { return 1, 0 }

// Close cancels every subscription's tasks.
func (s *Events) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.events {
		e.stop()
	}
	s.events = make(map[uint8]*eventRecord)
	return nil
}

func (s *Events) Handlers() map[messages.Code]jaus.HandlerSpec {
	return map[messages.Code]jaus.HandlerSpec{
		messages.CodeCreateEvent:       {Handler: s.onCreateEvent},
		messages.CodeUpdateEvent:       {Handler: s.onUpdateEvent},
		messages.CodeCancelEvent:       {Handler: s.onCancelEvent},
		messages.CodeQueryEvents:       {Handler: s.onQueryEvents},
		messages.CodeQueryEventTimeout: {Handler: s.onQueryEventTimeout},
	}
}

// PostChange fires every EVERY_CHANGE subscription whose query code is in
// codes. State watchers call this after their keys settle.
func (s *Events) PostChange(codes ...messages.Code) {
	s.mu.Lock()
	var fire []*eventRecord
	for _, e := range s.events {
		if e.typ != messages.EveryChange {
			continue
		}
		for _, code := range codes {
			if e.query.MessageCode() == code {
				fire = append(fire, e)
				break
			}
		}
	}
	s.mu.Unlock()
	for _, e := range fire {
		s.fireEvent(e)
	}
}

// fireEvent re-dispatches the stored query to produce a report and sends it
// wrapped in an Event message.
func (s *Events) fireEvent(e *eventRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()
	report, err := s.Component().DispatchMessage(ctx, e.query, e.destination)
	if err != nil || report == nil {
		log.WithError(err).WithFields(logrus.Fields{
			"event": e.id,
			"query": e.query.MessageCode(),
		}).Warn("event query dispatch produced no report")
		return
	}
	data, err := messages.Marshal(report)
	if err != nil {
		log.WithError(err).WithField("event", e.id).Warn("event report encode failed")
		return
	}
	s.mu.Lock()
	seq := e.seq
	e.seq++
	s.mu.Unlock()
	err = s.Component().SendMessage(ctx, &messages.Event{
		EventID:        e.id,
		SequenceNumber: seq,
		ReportMessage:  data,
	}, e.destination)
	if err != nil {
		log.WithError(err).WithField("event", e.id).Warn("event send failed")
	}
}

// runPeriodic fires the event at its confirmed rate until cancelled.
func (s *Events) runPeriodic(ctx context.Context, e *eventRecord) {
	interval := time.Duration(float64(time.Second) / e.rate)
	for {
		s.fireEvent(e)
		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
		}
	}
}

// onExpire tears the subscription down and confirms its end to the
// subscriber.
func (s *Events) onExpire(id uint8) {
	s.mu.Lock()
	e, ok := s.events[id]
	if !ok {
		s.mu.Unlock()
		return
	}
	if e.cancel != nil {
		e.cancel()
	}
	delete(s.events, id)
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()
	err := s.Component().SendMessage(ctx, &messages.ConfirmEventRequest{
		RequestID:             e.requestID,
		EventID:               e.id,
		ConfirmedPeriodicRate: e.rate,
	}, e.destination)
	if err != nil {
		log.WithError(err).WithField("event", id).Warn("event expiry notification failed")
	}
}

// normalizeRate returns the confirmed rate: zero for on-change events, the
// clamped requested rate for periodic ones.
func normalizeRate(requested float64, typ messages.EventType) float64 {
	if typ == messages.EveryChange {
		return 0
	}
	if requested < minPeriodicRate {
		return minPeriodicRate
	}
	if requested > maxPeriodicRate {
		return maxPeriodicRate
	}
	return requested
}

// startEvent installs a record and spawns its tasks. Callers hold s.mu.
func (s *Events) startEvent(e *eventRecord) {
	s.events[e.id] = e
	e.timeout = time.AfterFunc(s.timeout, func() { s.onExpire(e.id) })
	if e.typ == messages.Periodic {
		ctx, cancel := context.WithCancel(context.Background())
		e.cancel = cancel
		go s.runPeriodic(ctx, e)
	}
}

func reject(requestID uint8, code messages.RejectEventResponse) *messages.RejectEventRequest {
	return &messages.RejectEventRequest{RequestID: requestID, ResponseCode: code}
}

func (s *Events) onCreateEvent(ctx context.Context, msg messages.Message, src messages.Id) (messages.Message, error) {
	create := msg.(*messages.CreateEvent)
	query, err := messages.Unmarshal(create.QueryMessage)
	if err != nil {
		return reject(create.RequestID, messages.InvalidEventSetup), nil
	}
	rate := normalizeRate(create.RequestedPeriodicRate, create.EventType)
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	e := &eventRecord{
		id:          id,
		destination: src,
		query:       query,
		typ:         create.EventType,
		rate:        rate,
		requestID:   create.RequestID,
	}
	s.startEvent(e)
	s.mu.Unlock()
	return &messages.ConfirmEventRequest{
		RequestID:             create.RequestID,
		EventID:               id,
		ConfirmedPeriodicRate: rate,
	}, nil
}

func (s *Events) onUpdateEvent(ctx context.Context, msg messages.Message, src messages.Id) (messages.Message, error) {
	update := msg.(*messages.UpdateEvent)
	query, err := messages.Unmarshal(update.QueryMessage)
	if err != nil {
		return reject(update.RequestID, messages.InvalidEventSetup), nil
	}
	rate := normalizeRate(update.RequestedPeriodicRate, update.EventType)
	s.mu.Lock()
	old, ok := s.events[update.EventID]
	if !ok {
		s.mu.Unlock()
		return reject(update.RequestID, messages.InvalidEventIDForUpdate), nil
	}
	old.stop()
	e := &eventRecord{
		id:          update.EventID,
		destination: src,
		query:       query,
		typ:         update.EventType,
		rate:        rate,
		requestID:   update.RequestID,
	}
	s.startEvent(e)
	s.mu.Unlock()
	return &messages.ConfirmEventRequest{
		RequestID:             update.RequestID,
		EventID:               update.EventID,
		ConfirmedPeriodicRate: rate,
	}, nil
}

func (s *Events) onCancelEvent(ctx context.Context, msg messages.Message, src messages.Id) (messages.Message, error) {
	cancel := msg.(*messages.CancelEvent)
	s.mu.Lock()
	e, ok := s.events[cancel.EventID]
	if !ok {
		s.mu.Unlock()
		return reject(cancel.RequestID, messages.InvalidEventIDForUpdate), nil
	}
	e.stop()
	delete(s.events, cancel.EventID)
	s.mu.Unlock()
	return &messages.ConfirmEventRequest{
		RequestID:             cancel.RequestID,
		EventID:               cancel.EventID,
		ConfirmedPeriodicRate: e.rate,
	}, nil
}

func (s *Events) onQueryEvents(ctx context.Context, msg messages.Message, src messages.Id) (messages.Message, error) {
	query := msg.(*messages.QueryEvents)
	match := func(e *eventRecord) bool {
		switch query.Variant {
		case messages.QueryEventsByMessageID:
			return e.query.MessageCode() == query.FilterMessageCode
		case messages.QueryEventsByType:
			return e.typ == query.FilterEventType
		case messages.QueryEventsByID:
			return e.id == query.FilterEventID
		default:
			return true
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	report := &messages.ReportEvents{Events: []messages.ReportedEvent{}}
	for _, e := range s.events {
		if !match(e) {
			continue
		}
		data, err := messages.Marshal(e.query)
		if err != nil {
			continue
		}
		report.Events = append(report.Events, messages.ReportedEvent{
			Type:         e.typ,
			ID:           e.id,
			QueryMessage: data,
		})
	}
	return report, nil
}

func (s *Events) onQueryEventTimeout(ctx context.Context, msg messages.Message, src messages.Id) (messages.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &messages.ReportEventTimeout{
		Timeout: uint8(s.timeout / time.Minute),
	}, nil
}
