package messages

// ManagementStatus is the lifecycle state reported by the management service.
type ManagementStatus uint8

const (
	StatusInit      ManagementStatus = 0
	StatusReady     ManagementStatus = 1
	StatusStandby   ManagementStatus = 2
	StatusShutdown  ManagementStatus = 3
	StatusFailure   ManagementStatus = 4
	StatusEmergency ManagementStatus = 5
)

func (s ManagementStatus) Valid() bool { return s <= StatusEmergency }

func (s ManagementStatus) String() string {
	switch s {
	case StatusInit:
		return "INIT"
	case StatusReady:
		return "READY"
	case StatusStandby:
		return "STANDBY"
	case StatusShutdown:
		return "SHUTDOWN"
	case StatusFailure:
		return "FAILURE"
	case StatusEmergency:
		return "EMERGENCY"
	}
	return "UNKNOWN"
}

// EmergencyCode is the reason carried by Set/ClearEmergency.
type EmergencyCode uint8

const EmergencyStop EmergencyCode = 1

func (c EmergencyCode) Valid() bool { return c == EmergencyStop }

// Shutdown commands a transition to SHUTDOWN.
type Shutdown struct{}

func (Shutdown) MessageCode() Code { return CodeShutdown }

// Standby commands READY -> STANDBY.
type Standby struct{}

func (Standby) MessageCode() Code { return CodeStandby }

// Resume commands STANDBY -> READY.
type Resume struct{}

func (Resume) MessageCode() Code { return CodeResume }

// Reset commands a return to STANDBY after releasing control.
type Reset struct{}

func (Reset) MessageCode() Code { return CodeReset }

// SetEmergency asserts an emergency condition for the sender.
type SetEmergency struct {
	EmergencyCode EmergencyCode `jaus:"u8"`
}

func (SetEmergency) MessageCode() Code { return CodeSetEmergency }

// ClearEmergency withdraws the sender's emergency condition.
type ClearEmergency struct {
	EmergencyCode EmergencyCode `jaus:"u8"`
}

func (ClearEmergency) MessageCode() Code { return CodeClearEmergency }

// QueryStatus asks for the management status.
type QueryStatus struct{}

func (QueryStatus) MessageCode() Code { return CodeQueryStatus }

// ReportStatus answers QueryStatus.
type ReportStatus struct {
	Status   ManagementStatus `jaus:"u8"`
	Reserved uint32           `jaus:"u32,le"`
}

func (ReportStatus) MessageCode() Code { return CodeReportStatus }

func init() {
	register(CodeShutdown, func() Message { return &Shutdown{} })
	register(CodeStandby, func() Message { return &Standby{} })
	register(CodeResume, func() Message { return &Resume{} })
	register(CodeReset, func() Message { return &Reset{} })
	register(CodeSetEmergency, func() Message { return &SetEmergency{} })
	register(CodeClearEmergency, func() Message { return &ClearEmergency{} })
	register(CodeQueryStatus, func() Message { return &QueryStatus{} })
	register(CodeReportStatus, func() Message { return &ReportStatus{} })
}
