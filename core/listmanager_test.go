package core_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	jaus "github.com/fhackett/gojaus"
	"github.com/fhackett/gojaus/core"
	"github.com/fhackett/gojaus/judp"
	"github.com/fhackett/gojaus/messages"
)

func listFixture(t *testing.T) (*fixture, *judp.Connection) {
	f := newFixture(t, jaus.ComponentConfig{},
		core.NewAccessControl(),
		core.NewListManager(),
	)
	client := f.client(clientID)
	f.takeControl(client, 5)
	return f, client
}

func chain(uids ...uint16) []messages.ListElement {
	out := make([]messages.ListElement, len(uids))
	for i, uid := range uids {
		var prev, next uint16
		if i > 0 {
			prev = uids[i-1]
		}
		if i < len(uids)-1 {
			next = uids[i+1]
		}
		out[i] = messages.ListElement{
			UID:    uid,
			Prev:   prev,
			Next:   next,
			Format: messages.ElementUserData,
			Data:   []byte{byte(uid)},
		}
	}
	return out
}

func TestSetElementBatch(t *testing.T) {
	f, client := listFixture(t)

	reply := f.request(client, &messages.SetElement{RequestID: 1, Elements: chain(1, 2, 3)})
	confirm, ok := reply.(*messages.ConfirmElementRequest)
	require.True(t, ok, "got %T", reply)
	require.Equal(t, uint8(1), confirm.RequestID)

	count := f.request(client, &messages.QueryElementCount{}).(*messages.ReportElementCount)
	require.Equal(t, uint16(3), count.ElementCount)

	list := f.request(client, &messages.QueryElementList{}).(*messages.ReportElementList)
	require.Equal(t, []messages.ListElementID{{UID: 1}, {UID: 2}, {UID: 3}}, list.Elements)

	element := f.request(client, &messages.QueryElement{ElementUID: 2}).(*messages.ReportElement)
	require.Equal(t, uint16(1), element.Prev)
	require.Equal(t, uint16(3), element.Next)
	require.Equal(t, []byte{2}, element.Data)
}

func TestSetElementBrokenReference(t *testing.T) {
	f, client := listFixture(t)

	broken := []messages.ListElement{{
		UID: 1, Prev: 99, Next: 0,
		Format: messages.ElementUserData, Data: []byte{},
	}}
	reply := f.request(client, &messages.SetElement{RequestID: 2, Elements: broken})
	rejected, ok := reply.(*messages.RejectElementRequest)
	require.True(t, ok, "got %T", reply)
	require.Equal(t, messages.InvalidPreviousElement, rejected.ResponseCode)

	// nothing was committed
	count := f.request(client, &messages.QueryElementCount{}).(*messages.ReportElementCount)
	require.Equal(t, uint16(0), count.ElementCount)
}

func TestSetElementBrokenNext(t *testing.T) {
	f, client := listFixture(t)

	broken := []messages.ListElement{{
		UID: 1, Prev: 0, Next: 99,
		Format: messages.ElementUserData, Data: []byte{},
	}}
	reply := f.request(client, &messages.SetElement{RequestID: 3, Elements: broken})
	rejected := reply.(*messages.RejectElementRequest)
	require.Equal(t, messages.InvalidNextElement, rejected.ResponseCode)
}

func TestSetElementDuplicate(t *testing.T) {
	f, client := listFixture(t)

	f.request(client, &messages.SetElement{RequestID: 4, Elements: chain(1)})
	reply := f.request(client, &messages.SetElement{RequestID: 5, Elements: chain(1)})
	rejected := reply.(*messages.RejectElementRequest)
	require.Equal(t, messages.InvalidElementID, rejected.ResponseCode)
}

func TestDeleteElement(t *testing.T) {
	f, client := listFixture(t)
	f.request(client, &messages.SetElement{RequestID: 6, Elements: chain(1, 2, 3)})

	// removing the middle element would orphan its neighbours
	reply := f.request(client, &messages.DeleteElement{
		RequestID:  7,
		ElementIDs: []messages.ListElementID{{UID: 2}},
	})
	rejected, ok := reply.(*messages.RejectElementRequest)
	require.True(t, ok, "got %T", reply)

	// deleting the whole chain succeeds
	reply = f.request(client, &messages.DeleteElement{
		RequestID:  8,
		ElementIDs: []messages.ListElementID{{UID: 1}, {UID: 2}, {UID: 3}},
	})
	confirm, ok := reply.(*messages.ConfirmElementRequest)
	require.True(t, ok, "got %T (%v)", reply, rejected.ResponseCode)
	require.Equal(t, uint8(8), confirm.RequestID)

	count := f.request(client, &messages.QueryElementCount{}).(*messages.ReportElementCount)
	require.Equal(t, uint16(0), count.ElementCount)
}

func TestDeleteUnknownElement(t *testing.T) {
	f, client := listFixture(t)
	reply := f.request(client, &messages.DeleteElement{
		RequestID:  9,
		ElementIDs: []messages.ListElementID{{UID: 42}},
	})
	rejected := reply.(*messages.RejectElementRequest)
	require.Equal(t, messages.InvalidElementID, rejected.ResponseCode)
}

func TestSetElementRequiresControl(t *testing.T) {
	f := newFixture(t, jaus.ComponentConfig{},
		core.NewAccessControl(),
		core.NewListManager(),
	)
	stranger := f.client(otherID)
	f.send(stranger, &messages.SetElement{RequestID: 10, Elements: chain(1)})
	f.expectSilence(stranger, 100*time.Millisecond)
}
