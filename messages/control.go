package messages

// RejectControlResponse enumerates RejectControl outcomes.
type RejectControlResponse uint8

const (
	ControlReleased     RejectControlResponse = 0
	ControlNotAvailable RejectControlResponse = 1
)

func (r RejectControlResponse) Valid() bool { return r <= ControlNotAvailable }

// ConfirmControlResponse enumerates ConfirmControl outcomes.
type ConfirmControlResponse uint8

const (
	ControlAccepted       ConfirmControlResponse = 0
	ConfirmNotAvailable   ConfirmControlResponse = 1
	InsufficientAuthority ConfirmControlResponse = 2
)

func (r ConfirmControlResponse) Valid() bool { return r <= InsufficientAuthority }

// RequestControl asks for exclusive command authority over a component.
type RequestControl struct {
	AuthorityCode uint8 `jaus:"u8"`
}

func (RequestControl) MessageCode() Code { return CodeRequestControl }

// ReleaseControl relinquishes command authority.
type ReleaseControl struct{}

func (ReleaseControl) MessageCode() Code { return CodeReleaseControl }

// QueryControl asks who currently controls a component.
type QueryControl struct{}

func (QueryControl) MessageCode() Code { return CodeQueryControl }

// QueryAuthority asks for the current authority code.
type QueryAuthority struct{}

func (QueryAuthority) MessageCode() Code { return CodeQueryAuthority }

// SetAuthority lowers the controlling client's authority code.
type SetAuthority struct {
	AuthorityCode uint8 `jaus:"u8"`
}

func (SetAuthority) MessageCode() Code { return CodeSetAuthority }

// QueryTimeout asks for the control timeout in seconds.
type QueryTimeout struct{}

func (QueryTimeout) MessageCode() Code { return CodeQueryTimeout }

// ReportControl reports the controlling component id, or the zero id when
// uncontrolled.
type ReportControl struct {
	ID            Id
	AuthorityCode uint8 `jaus:"u8"`
}

func (ReportControl) MessageCode() Code { return CodeReportControl }

// RejectControl notifies a client that it does not (or no longer does) hold
// control.
type RejectControl struct {
	ResponseCode RejectControlResponse `jaus:"u8"`
}

func (RejectControl) MessageCode() Code { return CodeRejectControl }

// ConfirmControl answers RequestControl.
type ConfirmControl struct {
	ResponseCode ConfirmControlResponse `jaus:"u8"`
}

func (ConfirmControl) MessageCode() Code { return CodeConfirmControl }

// ReportAuthority answers QueryAuthority.
type ReportAuthority struct {
	AuthorityCode uint8 `jaus:"u8"`
}

func (ReportAuthority) MessageCode() Code { return CodeReportAuthority }

// ReportTimeout answers QueryTimeout.
type ReportTimeout struct {
	Timeout uint8 `jaus:"u8"`
}

func (ReportTimeout) MessageCode() Code { return CodeReportTimeout }

func init() {
	register(CodeRequestControl, func() Message { return &RequestControl{} })
	register(CodeReleaseControl, func() Message { return &ReleaseControl{} })
	register(CodeQueryControl, func() Message { return &QueryControl{} })
	register(CodeQueryAuthority, func() Message { return &QueryAuthority{} })
	register(CodeSetAuthority, func() Message { return &SetAuthority{} })
	register(CodeQueryTimeout, func() Message { return &QueryTimeout{} })
	register(CodeReportControl, func() Message { return &ReportControl{} })
	register(CodeRejectControl, func() Message { return &RejectControl{} })
	register(CodeConfirmControl, func() Message { return &ConfirmControl{} })
	register(CodeReportAuthority, func() Message { return &ReportAuthority{} })
	register(CodeReportTimeout, func() Message { return &ReportTimeout{} })
}
