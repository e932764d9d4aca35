package messages

// QueryHeartbeatPulse requests a heartbeat from the liveness service.
type QueryHeartbeatPulse struct{}

func (QueryHeartbeatPulse) MessageCode() Code { return CodeQueryHeartbeatPulse }

// ReportHeartbeatPulse answers QueryHeartbeatPulse.
type ReportHeartbeatPulse struct{}

func (ReportHeartbeatPulse) MessageCode() Code { return CodeReportHeartbeatPulse }

func init() {
	register(CodeQueryHeartbeatPulse, func() Message { return &QueryHeartbeatPulse{} })
	register(CodeReportHeartbeatPulse, func() Message { return &ReportHeartbeatPulse{} })
}
