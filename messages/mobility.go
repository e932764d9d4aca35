package messages

// Presence-vector bits for QueryLocalPose / ReportLocalPose.
const (
	LocalPoseX uint16 = 1 << iota
	LocalPoseY
	LocalPoseZ
	LocalPosePositionRMS
	LocalPoseRoll
	LocalPosePitch
	LocalPoseYaw
	LocalPoseAttitudeRMS
	LocalPoseTimestamp
)

// Presence-vector bits for QueryVelocityState / ReportVelocityState.
const (
	VelocityX uint16 = 1 << iota
	VelocityY
	VelocityZ
	VelocityRMSBit
	VelocityRollRate
	VelocityPitchRate
	VelocityYawRate
	VelocityAngularRMS
	VelocityTimestamp
)

// Presence-vector bits for the optional local-waypoint fields.
const (
	WaypointZ uint8 = 1 << iota
	WaypointRoll
	WaypointPitch
	WaypointYaw
	WaypointTolerance
	WaypointPathTolerance
)

// QueryLocalPose selects which pose fields to report.
type QueryLocalPose struct {
	PresenceVector uint16 `jaus:"pv=2,le"`
}

func (QueryLocalPose) MessageCode() Code { return CodeQueryLocalPose }

// ReportLocalPose answers QueryLocalPose with the selected fields.
type ReportLocalPose struct {
	PresenceVector uint16     `jaus:"pv=2,le"`
	X              *float64   `jaus:"scaled,u32,le,lo=-100000,hi=100000,opt"`
	Y              *float64   `jaus:"scaled,u32,le,lo=-100000,hi=100000,opt"`
	Z              *float64   `jaus:"scaled,u32,le,lo=-100000,hi=100000,opt"`
	PositionRMS    *float64   `jaus:"scaled,u32,le,lo=0,hi=100,opt"`
	Roll           *float64   `jaus:"scaled,u16,le,lo=-3.141592653589793,hi=3.141592653589793,opt"`
	Pitch          *float64   `jaus:"scaled,u16,le,lo=-3.141592653589793,hi=3.141592653589793,opt"`
	Yaw            *float64   `jaus:"scaled,u16,le,lo=-3.141592653589793,hi=3.141592653589793,opt"`
	AttitudeRMS    *float64   `jaus:"scaled,u16,le,lo=0,hi=3.141592653589793,opt"`
	Timestamp      *Timestamp `jaus:"opt"`
}

func (ReportLocalPose) MessageCode() Code { return CodeReportLocalPose }

// QueryVelocityState selects which velocity fields to report.
type QueryVelocityState struct {
	PresenceVector uint16 `jaus:"pv=2,le"`
}

func (QueryVelocityState) MessageCode() Code { return CodeQueryVelocityState }

// ReportVelocityState answers QueryVelocityState with the selected fields.
type ReportVelocityState struct {
	PresenceVector uint16     `jaus:"pv=2,le"`
	X              *float64   `jaus:"scaled,u32,le,lo=-327.68,hi=327.67,opt"`
	Y              *float64   `jaus:"scaled,u32,le,lo=-327.68,hi=327.67,opt"`
	Z              *float64   `jaus:"scaled,u32,le,lo=-327.68,hi=327.67,opt"`
	VelocityRMS    *float64   `jaus:"scaled,u32,le,lo=0,hi=100,opt"`
	RollRate       *float64   `jaus:"scaled,u16,le,lo=-32.768,hi=32.767,opt"`
	PitchRate      *float64   `jaus:"scaled,u16,le,lo=-32.768,hi=32.767,opt"`
	YawRate        *float64   `jaus:"scaled,u16,le,lo=-32.768,hi=32.767,opt"`
	AngularRMS     *float64   `jaus:"scaled,u16,le,lo=0,hi=3.141592653589793,opt"`
	Timestamp      *Timestamp `jaus:"opt"`
}

func (ReportVelocityState) MessageCode() Code { return CodeReportVelocityState }

// SetTravelSpeed commands the desired travel speed in m/s.
type SetTravelSpeed struct {
	Speed float64 `jaus:"scaled,u32,le,lo=0,hi=327.67"`
}

func (SetTravelSpeed) MessageCode() Code { return CodeSetTravelSpeed }

// QueryTravelSpeed asks for the commanded travel speed.
type QueryTravelSpeed struct{}

func (QueryTravelSpeed) MessageCode() Code { return CodeQueryTravelSpeed }

// ReportTravelSpeed answers QueryTravelSpeed.
type ReportTravelSpeed struct {
	Speed float64 `jaus:"scaled,u32,le,lo=0,hi=327.67"`
}

func (ReportTravelSpeed) MessageCode() Code { return CodeReportTravelSpeed }

// SetLocalWaypoint commands a target waypoint in the local frame. X and Y are
// required; the rest ride the presence vector.
type SetLocalWaypoint struct {
	PresenceVector    uint8    `jaus:"pv=1"`
	X                 float64  `jaus:"scaled,u32,le,lo=-100000,hi=100000"`
	Y                 float64  `jaus:"scaled,u32,le,lo=-100000,hi=100000"`
	Z                 *float64 `jaus:"scaled,u32,le,lo=-100000,hi=100000,opt"`
	Roll              *float64 `jaus:"scaled,u16,le,lo=-3.141592653589793,hi=3.141592653589793,opt"`
	Pitch             *float64 `jaus:"scaled,u16,le,lo=-3.141592653589793,hi=3.141592653589793,opt"`
	Yaw               *float64 `jaus:"scaled,u16,le,lo=-3.141592653589793,hi=3.141592653589793,opt"`
	WaypointTolerance *float64 `jaus:"scaled,u16,le,lo=0,hi=100,opt"`
	PathTolerance     *float64 `jaus:"scaled,u32,le,lo=0,hi=100000,opt"`
}

func (SetLocalWaypoint) MessageCode() Code { return CodeSetLocalWaypoint }

// QueryLocalWaypoint selects which waypoint fields to report.
type QueryLocalWaypoint struct {
	PresenceVector uint8 `jaus:"pv=1"`
}

func (QueryLocalWaypoint) MessageCode() Code { return CodeQueryLocalWaypoint }

// ReportLocalWaypoint answers QueryLocalWaypoint.
type ReportLocalWaypoint struct {
	PresenceVector    uint8    `jaus:"pv=1"`
	X                 float64  `jaus:"scaled,u32,le,lo=-100000,hi=100000"`
	Y                 float64  `jaus:"scaled,u32,le,lo=-100000,hi=100000"`
	Z                 *float64 `jaus:"scaled,u32,le,lo=-100000,hi=100000,opt"`
	Roll              *float64 `jaus:"scaled,u16,le,lo=-3.141592653589793,hi=3.141592653589793,opt"`
	Pitch             *float64 `jaus:"scaled,u16,le,lo=-3.141592653589793,hi=3.141592653589793,opt"`
	Yaw               *float64 `jaus:"scaled,u16,le,lo=-3.141592653589793,hi=3.141592653589793,opt"`
	WaypointTolerance *float64 `jaus:"scaled,u16,le,lo=0,hi=100,opt"`
	PathTolerance     *float64 `jaus:"scaled,u32,le,lo=0,hi=100000,opt"`
}

func (ReportLocalWaypoint) MessageCode() Code { return CodeReportLocalWaypoint }

// QueryActiveElement asks which waypoint-list element is active.
type QueryActiveElement struct{}

func (QueryActiveElement) MessageCode() Code { return CodeQueryActiveElement }

// ReportActiveElement answers QueryActiveElement; UID zero means none.
type ReportActiveElement struct {
	UID uint16 `jaus:"u16,le"`
}

func (ReportActiveElement) MessageCode() Code { return CodeReportActiveElement }

// Float is a convenience for building optional scaled fields.
func Float(v float64) *float64 { return &v }

func init() {
	register(CodeQueryLocalPose, func() Message { return &QueryLocalPose{} })
	register(CodeReportLocalPose, func() Message { return &ReportLocalPose{} })
	register(CodeQueryVelocityState, func() Message { return &QueryVelocityState{} })
	register(CodeReportVelocityState, func() Message { return &ReportVelocityState{} })
	register(CodeSetTravelSpeed, func() Message { return &SetTravelSpeed{} })
	register(CodeQueryTravelSpeed, func() Message { return &QueryTravelSpeed{} })
	register(CodeReportTravelSpeed, func() Message { return &ReportTravelSpeed{} })
	register(CodeSetLocalWaypoint, func() Message { return &SetLocalWaypoint{} })
	register(CodeQueryLocalWaypoint, func() Message { return &QueryLocalWaypoint{} })
	register(CodeReportLocalWaypoint, func() Message { return &ReportLocalWaypoint{} })
	register(CodeQueryActiveElement, func() Message { return &QueryActiveElement{} })
	register(CodeReportActiveElement, func() Message { return &ReportActiveElement{} })
}
