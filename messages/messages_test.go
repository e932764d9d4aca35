package messages

import (
	"bytes"
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/fhackett/gojaus/encoding"
)

func TestIdParse(t *testing.T) {
	var id Id
	if err := encoding.Unmarshal([]byte{0x02, 0x01, 0xE8, 0x03}, &id); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	want := Id{Component: 2, Node: 1, Subsystem: 1000}
	if id != want {
		t.Fatalf("id = %+v, want %+v", id, want)
	}
	data, err := encoding.Marshal(&id)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !bytes.Equal(data, []byte{0x02, 0x01, 0xE8, 0x03}) {
		t.Fatalf("encoded = %x", data)
	}
}

func TestQueryIdentificationParse(t *testing.T) {
	msg, err := Unmarshal([]byte{0x00, 0x2B, 0x02})
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	query, ok := msg.(*QueryIdentification)
	if !ok {
		t.Fatalf("decoded %T, want *QueryIdentification", msg)
	}
	if query.Type != IdentifySubsystem {
		t.Errorf("Type = %v, want IdentifySubsystem", query.Type)
	}
}

func TestSetLocalWaypointParse(t *testing.T) {
	data := []byte{0x0D, 0x04, 0x00, 0xDC, 0x46, 0x03, 0x80, 0x00, 0x00, 0x00, 0x80}
	msg, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	wp, ok := msg.(*SetLocalWaypoint)
	if !ok {
		t.Fatalf("decoded %T, want *SetLocalWaypoint", msg)
	}
	if math.Abs(wp.X-10.0) > 0.01 {
		t.Errorf("X = %v, want ~10.0", wp.X)
	}
	if math.Abs(wp.Y-2.33e-05) > 1e-4 {
		t.Errorf("Y = %v, want ~2.33e-05", wp.Y)
	}
	if wp.Z != nil || wp.Yaw != nil {
		t.Errorf("optional fields should be absent: %+v", wp)
	}

	encoded, err := Marshal(wp)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !bytes.Equal(encoded, data) {
		t.Errorf("re-encoded = %x, want %x", encoded, data)
	}
}

func TestUnknownCode(t *testing.T) {
	if _, err := Unmarshal([]byte{0xEE, 0xFF, 0x00}); !errors.Is(err, encoding.ErrUnknownVariant) {
		t.Fatalf("err = %v, want ErrUnknownVariant", err)
	}
}

func TestTruncatedMessage(t *testing.T) {
	if _, err := Unmarshal([]byte{0x0D}); !errors.Is(err, encoding.ErrTruncatedInput) {
		t.Fatalf("err = %v, want ErrTruncatedInput", err)
	}
	// RequestControl missing its authority byte
	if _, err := Unmarshal([]byte{0x0D, 0x00}); !errors.Is(err, encoding.ErrTruncatedInput) {
		t.Fatalf("err = %v, want ErrTruncatedInput", err)
	}
}

func TestInvalidEnum(t *testing.T) {
	// ConfirmControl response code 9 is out of range
	if _, err := Unmarshal([]byte{0x0F, 0x00, 0x09}); !errors.Is(err, encoding.ErrInvalidEnumValue) {
		t.Fatalf("err = %v, want ErrInvalidEnumValue", err)
	}
}

// roundTrip encodes m, decodes the bytes, and requires structural equality
// plus byte-identical re-encoding.
func roundTrip(t *testing.T, m Message) {
	t.Helper()
	data, err := Marshal(m)
	if err != nil {
		t.Fatalf("Marshal(%T): %v", m, err)
	}
	decoded, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal(%T): %v", m, err)
	}
	if !reflect.DeepEqual(m, decoded) {
		t.Fatalf("round trip mismatch:\n in: %#v\nout: %#v", m, decoded)
	}
	reencoded, err := Marshal(decoded)
	if err != nil {
		t.Fatalf("re-Marshal(%T): %v", m, err)
	}
	if !bytes.Equal(data, reencoded) {
		t.Fatalf("re-encode mismatch for %T: %x != %x", m, data, reencoded)
	}
}

func TestRoundTrips(t *testing.T) {
	queryStatus, err := Marshal(&QueryStatus{})
	if err != nil {
		t.Fatal(err)
	}
	cases := []Message{
		&QueryHeartbeatPulse{},
		&ReportHeartbeatPulse{},
		&RequestControl{AuthorityCode: 5},
		&ReleaseControl{},
		&ConfirmControl{ResponseCode: ControlAccepted},
		&RejectControl{ResponseCode: ControlReleased},
		&ReportControl{ID: Id{Subsystem: 42, Node: 1, Component: 3}, AuthorityCode: 9},
		&SetAuthority{AuthorityCode: 2},
		&ReportAuthority{AuthorityCode: 2},
		&ReportTimeout{Timeout: 5},
		&Shutdown{},
		&SetEmergency{EmergencyCode: EmergencyStop},
		&ReportStatus{Status: StatusReady},
		// scaled rates stay on the zero grid point so equality is exact;
		// quantization behavior is covered by the encoding tests
		&CreateEvent{RequestID: 1, EventType: Periodic, RequestedPeriodicRate: 0, QueryMessage: queryStatus},
		&UpdateEvent{RequestID: 2, EventType: EveryChange, EventID: 7, QueryMessage: queryStatus},
		&CancelEvent{RequestID: 3, EventID: 7},
		&ConfirmEventRequest{RequestID: 1, EventID: 0, ConfirmedPeriodicRate: 0},
		&Event{EventID: 1, SequenceNumber: 255, ReportMessage: queryStatus},
		&ReportEventTimeout{Timeout: 1},
		&ReportEvents{Events: []ReportedEvent{
			{Type: Periodic, ID: 0, QueryMessage: queryStatus},
			{Type: EveryChange, ID: 1, QueryMessage: queryStatus},
		}},
		&SetElement{RequestID: 1, Elements: []ListElement{
			{UID: 1, Prev: 0, Next: 2, Format: ElementUserData, Data: []byte{1, 2, 3}},
			{UID: 2, Prev: 1, Next: 0, Format: ElementUserData, Data: []byte{}},
		}},
		&DeleteElement{RequestID: 2, ElementIDs: []ListElementID{{UID: 1}, {UID: 2}}},
		&QueryElement{ElementUID: 9},
		&ReportElementList{Elements: []ListElementID{{UID: 1}}},
		&ReportElementCount{ElementCount: 2},
		&RejectElementRequest{RequestID: 1, ResponseCode: InvalidNextElement},
		&RegisterServices{Services: []ServiceRecord{
			{URI: "urn:jaus:jss:core:Events", MajorVersion: 1, MinorVersion: 0},
		}},
		&QueryIdentification{Type: IdentifyComponent},
		&ReportIdentification{
			QueryType:      IdentifySubsystem,
			Type:           IdentificationVehicle,
			Identification: "vehicle",
		},
		&ReportSubsystemList{Subsystems: []Id{{Subsystem: 1, Node: 1, Component: 1}}},
		&SetTravelSpeed{Speed: 0},
		&QueryLocalWaypoint{PresenceVector: 0x3F},
		&QueryActiveElement{},
		&ReportActiveElement{UID: 4},
	}
	for _, m := range cases {
		roundTrip(t, m)
	}
}

func TestQueryEventsVariants(t *testing.T) {
	roundTrip(t, &QueryEvents{Variant: QueryEventsByMessageID, FilterMessageCode: CodeQueryStatus})
	roundTrip(t, &QueryEvents{Variant: QueryEventsByType, FilterEventType: Periodic})
	roundTrip(t, &QueryEvents{Variant: QueryEventsByID, FilterEventID: 3})
	roundTrip(t, &QueryEvents{Variant: QueryEventsAll})

	data, err := Marshal(&QueryEvents{Variant: QueryEventsByID, FilterEventID: 3})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, []byte{0xF0, 0x21, 0x02, 0x03}) {
		t.Fatalf("encoded = %x", data)
	}
}

func TestRejectEventRequestPresence(t *testing.T) {
	bare := &RejectEventRequest{RequestID: 1, ResponseCode: InvalidEventIDForUpdate}
	data, err := Marshal(bare)
	if err != nil {
		t.Fatal(err)
	}
	// code + empty presence vector + request id + response code
	if !bytes.Equal(data, []byte{0xF4, 0x01, 0x00, 0x01, 0x06}) {
		t.Fatalf("encoded = %x", data)
	}

	detail := make([]byte, 80)
	copy(detail, "event id unknown")
	withDetail := &RejectEventRequest{
		RequestID:    1,
		ResponseCode: InvalidEventIDForUpdate,
		ErrorMessage: detail,
	}
	data, err = Marshal(withDetail)
	if err != nil {
		t.Fatal(err)
	}
	if data[2] != 0x01 {
		t.Fatalf("presence vector = %#02x, want 0x01", data[2])
	}
	decoded, err := Unmarshal(data)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(decoded.(*RejectEventRequest).ErrorMessage, detail) {
		t.Fatal("error message did not survive")
	}
}

func TestReportLocalPosePresence(t *testing.T) {
	ts := Timestamp{Ms: 999, Sec: 59, Min: 59, Hr: 23, Day: 31}
	report := &ReportLocalPose{
		X:         Float(10),
		Yaw:       Float(1.5),
		Timestamp: &ts,
	}
	data, err := Marshal(report)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := Unmarshal(data)
	if err != nil {
		t.Fatal(err)
	}
	out := decoded.(*ReportLocalPose)
	if out.PresenceVector != LocalPoseX|LocalPoseYaw|LocalPoseTimestamp {
		t.Errorf("presence vector = %#04x", out.PresenceVector)
	}
	if out.Y != nil || out.Z != nil || out.Roll != nil {
		t.Error("absent fields decoded as present")
	}
	if out.X == nil || math.Abs(*out.X-10) > 0.01 {
		t.Errorf("X = %v", out.X)
	}
	if out.Yaw == nil || math.Abs(*out.Yaw-1.5) > 0.001 {
		t.Errorf("Yaw = %v", out.Yaw)
	}
	if out.Timestamp == nil || *out.Timestamp != ts {
		t.Errorf("Timestamp = %+v, want %+v", out.Timestamp, ts)
	}
}

func TestTimestampLayout(t *testing.T) {
	ts := Timestamp{Ms: 1, Sec: 0, Min: 0, Hr: 0, Day: 0}
	data, err := encoding.Marshal(&ts)
	if err != nil {
		t.Fatal(err)
	}
	// ms occupies the low ten bits of the packed word
	if !bytes.Equal(data, []byte{0x01, 0x00, 0x00, 0x00}) {
		t.Fatalf("encoded = %x", data)
	}

	ts = Timestamp{Day: 31}
	data, err = encoding.Marshal(&ts)
	if err != nil {
		t.Fatal(err)
	}
	// day occupies the top five bits
	if data[3]&0xF8 != 0xF8 {
		t.Fatalf("encoded = %x", data)
	}
}

func TestDiscoveryNestedLists(t *testing.T) {
	filter := "Events"
	roundTrip(t, &QueryServiceList{
		Subsystems: []SubsystemListRequest{
			{
				ID: 1,
				Nodes: []NodeListRequest{
					{
						ID: 1,
						Components: []ComponentListRequest{
							{ID: 1},
							{PresenceVector: 1, ID: 2, SearchFilter: &filter},
						},
					},
				},
			},
		},
	})
	roundTrip(t, &ReportServiceList{
		Subsystems: []SubsystemServiceListReport{
			{
				ID: 1,
				Nodes: []NodeServiceListReport{
					{
						ID: 1,
						Components: []ComponentServiceListReport{
							{
								ID: 1,
								Services: []ServiceRecord{
									{URI: "urn:jaus:jss:core:Liveness", MajorVersion: 1},
								},
							},
						},
					},
				},
			},
		},
	})
}
