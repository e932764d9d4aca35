package core

import (
	"context"
	"errors"
	"sync"

	jaus "github.com/fhackett/gojaus"
	"github.com/fhackett/gojaus/messages"
)

// ListManager exposes a shared doubly-linked element list through batch
// set/delete commands and query/report pairs.
type ListManager struct {
	jaus.BaseService

	mu    sync.Mutex
	store *elementStore
}

// NewListManager returns an empty list manager.
func NewListManager() *ListManager {
	return &ListManager{store: newElementStore()}
}

func (s *ListManager) Name() string { return "list_manager" }

func (s *ListManager) URI() string { return "urn:jaus:jss:core:ListManager" }

func (s *ListManager) Version() (int, int) { return 1, 0 }

func (s *ListManager) Handlers() map[messages.Code]jaus.HandlerSpec {
	return map[messages.Code]jaus.HandlerSpec{
		messages.CodeSetElement:        {Handler: s.onSetElement, IsCommand: true},
		messages.CodeDeleteElement:     {Handler: s.onDeleteElement, IsCommand: true},
		messages.CodeQueryElement:      {Handler: s.onQueryElement, SupportsEvents: true},
		messages.CodeQueryElementList:  {Handler: s.onQueryElementList, SupportsEvents: true},
		messages.CodeQueryElementCount: {Handler: s.onQueryElementCount, SupportsEvents: true},
	}
}

// Element returns a stored element by UID.
func (s *ListManager) Element(uid uint16) (Element, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.store.get(uid)
	if !ok {
		return Element{}, false
	}
	return *e, true
}

// rejectionFor maps a store error onto the protocol response code.
func rejectionFor(requestID uint8, err error) *messages.RejectElementRequest {
	code := messages.UnspecifiedElementError
	var broken *brokenReference
	switch {
	case errors.As(err, &broken):
		if broken.next {
			code = messages.InvalidNextElement
		} else {
			code = messages.InvalidPreviousElement
		}
	case errors.Is(err, errElementExists), errors.Is(err, errNoSuchElement):
		code = messages.InvalidElementID
	}
	return &messages.RejectElementRequest{RequestID: requestID, ResponseCode: code}
}

func (s *ListManager) onSetElement(ctx context.Context, msg messages.Message, src messages.Id) (messages.Message, error) {
	set := msg.(*messages.SetElement)
	batch := make([]Element, len(set.Elements))
	for i, e := range set.Elements {
		batch[i] = Element{
			UID:    e.UID,
			Prev:   e.Prev,
			Next:   e.Next,
			Format: e.Format,
			Data:   e.Data,
		}
	}
	s.mu.Lock()
	err := s.store.insertBatch(batch)
	s.mu.Unlock()
	if err != nil {
		return rejectionFor(set.RequestID, err), nil
	}
	return &messages.ConfirmElementRequest{RequestID: set.RequestID}, nil
}

func (s *ListManager) onDeleteElement(ctx context.Context, msg messages.Message, src messages.Id) (messages.Message, error) {
	del := msg.(*messages.DeleteElement)
	uids := make([]uint16, len(del.ElementIDs))
	for i, e := range del.ElementIDs {
		uids[i] = e.UID
	}
	s.mu.Lock()
	err := s.store.deleteBatch(uids)
	s.mu.Unlock()
	if err != nil {
		return rejectionFor(del.RequestID, err), nil
	}
	return &messages.ConfirmElementRequest{RequestID: del.RequestID}, nil
}

func (s *ListManager) onQueryElement(ctx context.Context, msg messages.Message, src messages.Id) (messages.Message, error) {
	query := msg.(*messages.QueryElement)
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.store.get(query.ElementUID)
	if !ok {
		return nil, nil
	}
	return &messages.ReportElement{
		UID:    e.UID,
		Prev:   e.Prev,
		Next:   e.Next,
		Format: e.Format,
		Data:   e.Data,
	}, nil
}

func (s *ListManager) onQueryElementList(ctx context.Context, msg messages.Message, src messages.Id) (messages.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	report := &messages.ReportElementList{Elements: []messages.ListElementID{}}
	for _, e := range s.store.inOrder() {
		report.Elements = append(report.Elements, messages.ListElementID{UID: e.UID})
	}
	return report, nil
}

func (s *ListManager) onQueryElementCount(ctx context.Context, msg messages.Message, src messages.Id) (messages.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &messages.ReportElementCount{ElementCount: uint16(s.store.count())}, nil
}
