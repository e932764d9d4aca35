package messages

import (
	"fmt"
	"strings"
)

// Code is the two-byte message code carried little-endian at the head of
// every JAUS message.
type Code uint16

// Message codes, grouped by owning service.
const (
	// Liveness
	CodeQueryHeartbeatPulse  Code = 0x2202
	CodeReportHeartbeatPulse Code = 0x4202

	// Events
	CodeCreateEvent         Code = 0x01F0
	CodeUpdateEvent         Code = 0x01F1
	CodeCancelEvent         Code = 0x01F2
	CodeConfirmEventRequest Code = 0x01F3
	CodeRejectEventRequest  Code = 0x01F4
	CodeCreateCommandEvent  Code = 0x01F6
	CodeQueryEvents         Code = 0x21F0
	CodeQueryEventTimeout   Code = 0x21F2
	CodeReportEvents        Code = 0x41F0
	CodeEvent               Code = 0x41F1
	CodeReportEventTimeout  Code = 0x41F2
	CodeCommandEvent        Code = 0x41F6

	// Access control
	CodeSetAuthority    Code = 0x0001
	CodeRequestControl  Code = 0x000D
	CodeReleaseControl  Code = 0x000E
	CodeConfirmControl  Code = 0x000F
	CodeRejectControl   Code = 0x0010
	CodeQueryAuthority  Code = 0x2001
	CodeQueryTimeout    Code = 0x2003
	CodeQueryControl    Code = 0x200D
	CodeReportAuthority Code = 0x4001
	CodeReportTimeout   Code = 0x4003
	CodeReportControl   Code = 0x400D

	// Management
	CodeShutdown       Code = 0x0002
	CodeStandby        Code = 0x0003
	CodeResume         Code = 0x0004
	CodeReset          Code = 0x0005
	CodeSetEmergency   Code = 0x0006
	CodeClearEmergency Code = 0x0007
	CodeQueryStatus    Code = 0x2002
	CodeReportStatus   Code = 0x4002

	// List manager
	CodeSetElement            Code = 0x041A
	CodeDeleteElement         Code = 0x041B
	CodeConfirmElementRequest Code = 0x041C
	CodeRejectElementRequest  Code = 0x041D
	CodeQueryElement          Code = 0x241A
	CodeQueryElementList      Code = 0x241B
	CodeQueryElementCount     Code = 0x241C
	CodeReportElement         Code = 0x441A
	CodeReportElementList     Code = 0x441B
	CodeReportElementCount    Code = 0x441C

	// Discovery
	CodeRegisterServices     Code = 0x0B00
	CodeQueryIdentification  Code = 0x2B00
	CodeQueryConfiguration   Code = 0x2B01
	CodeQuerySubsystemList   Code = 0x2B02
	CodeQueryServices        Code = 0x2B03
	CodeQueryServiceList     Code = 0x2B04
	CodeReportIdentification Code = 0x4B00
	CodeReportConfiguration  Code = 0x4B01
	CodeReportSubsystemList  Code = 0x4B02
	CodeReportServices       Code = 0x4B03
	CodeReportServiceList    Code = 0x4B04

	// Local pose sensor
	CodeQueryLocalPose  Code = 0x2403
	CodeReportLocalPose Code = 0x4403

	// Velocity state sensor
	CodeQueryVelocityState  Code = 0x2404
	CodeReportVelocityState Code = 0x4404

	// Local waypoint driver
	CodeSetTravelSpeed      Code = 0x040A
	CodeSetLocalWaypoint    Code = 0x040D
	CodeQueryTravelSpeed    Code = 0x240A
	CodeQueryLocalWaypoint  Code = 0x240D
	CodeReportTravelSpeed   Code = 0x440A
	CodeReportLocalWaypoint Code = 0x440D

	// Local waypoint list driver
	CodeQueryActiveElement  Code = 0x241E
	CodeReportActiveElement Code = 0x441E
)

// Valid reports whether c is a registered message code.
func (c Code) Valid() bool {
	_, ok := registry[c]
	return ok
}

func (c Code) String() string {
	if f, ok := registry[c]; ok {
		name := strings.TrimPrefix(fmt.Sprintf("%T", f()), "*messages.")
		return fmt.Sprintf("%s(%#04x)", name, uint16(c))
	}
	return fmt.Sprintf("Code(%#04x)", uint16(c))
}
