package messages

// ServiceRecord describes one service a component offers.
type ServiceRecord struct {
	URI          string `jaus:"count=1"`
	MajorVersion uint8  `jaus:"u8"`
	MinorVersion uint8  `jaus:"u8"`
}

// RegisterServices announces a remote component's services to discovery.
type RegisterServices struct {
	Services []ServiceRecord `jaus:"count=1"`
}

func (RegisterServices) MessageCode() Code { return CodeRegisterServices }

// IdentificationQueryType scopes QueryIdentification.
type IdentificationQueryType uint8

const (
	IdentifySystem    IdentificationQueryType = 1
	IdentifySubsystem IdentificationQueryType = 2
	IdentifyNode      IdentificationQueryType = 3
	IdentifyComponent IdentificationQueryType = 4
)

func (t IdentificationQueryType) Valid() bool {
	return t >= IdentifySystem && t <= IdentifyComponent
}

// QueryIdentification asks a component what it is.
type QueryIdentification struct {
	Type IdentificationQueryType `jaus:"u8"`
}

func (QueryIdentification) MessageCode() Code { return CodeQueryIdentification }

// ConfigurationQueryType scopes QueryConfiguration.
type ConfigurationQueryType uint8

const (
	ConfigurationSubsystem ConfigurationQueryType = 2
	ConfigurationNode      ConfigurationQueryType = 3
)

func (t ConfigurationQueryType) Valid() bool {
	return t == ConfigurationSubsystem || t == ConfigurationNode
}

// QueryConfiguration asks for the known component topology.
type QueryConfiguration struct {
	Type ConfigurationQueryType `jaus:"u8"`
}

func (QueryConfiguration) MessageCode() Code { return CodeQueryConfiguration }

// QuerySubsystemList asks for every known component id.
type QuerySubsystemList struct{}

func (QuerySubsystemList) MessageCode() Code { return CodeQuerySubsystemList }

// ComponentRequest selects one component in QueryServices.
type ComponentRequest struct {
	ID uint8 `jaus:"u8"`
}

// NodeRequest selects components of one node in QueryServices.
type NodeRequest struct {
	ID         uint8              `jaus:"u8"`
	Components []ComponentRequest `jaus:"count=1"`
}

// QueryServices asks for the services of components on this subsystem.
type QueryServices struct {
	Nodes []NodeRequest `jaus:"count=1"`
}

func (QueryServices) MessageCode() Code { return CodeQueryServices }

// ComponentListRequest selects a component with an optional URI filter.
type ComponentListRequest struct {
	PresenceVector uint8   `jaus:"pv=1"`
	ID             uint8   `jaus:"u8"`
	SearchFilter   *string `jaus:"count=1,opt"`
}

// NodeListRequest selects components of one node in QueryServiceList.
type NodeListRequest struct {
	ID         uint8                  `jaus:"u8"`
	Components []ComponentListRequest `jaus:"count=1"`
}

// SubsystemListRequest selects nodes of one subsystem in QueryServiceList.
type SubsystemListRequest struct {
	ID    uint16            `jaus:"u16,le"`
	Nodes []NodeListRequest `jaus:"count=1"`
}

// QueryServiceList asks for services across arbitrary subsystems.
type QueryServiceList struct {
	Subsystems []SubsystemListRequest `jaus:"count=2,le"`
}

func (QueryServiceList) MessageCode() Code { return CodeQueryServiceList }

// IdentificationType classifies the reporting entity.
type IdentificationType uint16

const (
	IdentificationVehicle        IdentificationType = 10001
	IdentificationOCU            IdentificationType = 20001
	IdentificationOtherSubsystem IdentificationType = 30001
	IdentificationNode           IdentificationType = 40001
	IdentificationPayload        IdentificationType = 50001
	IdentificationComponent      IdentificationType = 60001
)

func (t IdentificationType) Valid() bool {
	switch t {
	case IdentificationVehicle, IdentificationOCU, IdentificationOtherSubsystem,
		IdentificationNode, IdentificationPayload, IdentificationComponent:
		return true
	}
	return false
}

// ReportIdentification answers QueryIdentification.
type ReportIdentification struct {
	QueryType      IdentificationQueryType `jaus:"u8"`
	Type           IdentificationType      `jaus:"u16,le"`
	Identification string                  `jaus:"count=2,le"`
}

func (ReportIdentification) MessageCode() Code { return CodeReportIdentification }

// ComponentConfigurationReport is one component entry in ReportConfiguration.
type ComponentConfigurationReport struct {
	ID         uint8 `jaus:"u8"`
	InstanceID uint8 `jaus:"u8"`
}

// NodeConfigurationReport is one node entry in ReportConfiguration.
type NodeConfigurationReport struct {
	ID         uint8                          `jaus:"u8"`
	Components []ComponentConfigurationReport `jaus:"count=1"`
}

// ReportConfiguration answers QueryConfiguration.
type ReportConfiguration struct {
	Nodes []NodeConfigurationReport `jaus:"count=1"`
}

func (ReportConfiguration) MessageCode() Code { return CodeReportConfiguration }

// ReportSubsystemList answers QuerySubsystemList.
type ReportSubsystemList struct {
	Subsystems []Id `jaus:"count=1"`
}

func (ReportSubsystemList) MessageCode() Code { return CodeReportSubsystemList }

// ComponentServiceListReport is one component entry in ReportServices.
type ComponentServiceListReport struct {
	ID         uint8           `jaus:"u8"`
	InstanceID uint8           `jaus:"u8"`
	Services   []ServiceRecord `jaus:"count=1"`
}

// NodeServiceListReport is one node entry in ReportServices.
type NodeServiceListReport struct {
	ID         uint8                        `jaus:"u8"`
	Components []ComponentServiceListReport `jaus:"count=1"`
}

// ReportServices answers QueryServices.
type ReportServices struct {
	Nodes []NodeServiceListReport `jaus:"count=1"`
}

func (ReportServices) MessageCode() Code { return CodeReportServices }

// SubsystemServiceListReport is one subsystem entry in ReportServiceList.
type SubsystemServiceListReport struct {
	ID    uint16                  `jaus:"u16,le"`
	Nodes []NodeServiceListReport `jaus:"count=1"`
}

// ReportServiceList answers QueryServiceList.
type ReportServiceList struct {
	Subsystems []SubsystemServiceListReport `jaus:"count=2,le"`
}

func (ReportServiceList) MessageCode() Code { return CodeReportServiceList }

func init() {
	register(CodeRegisterServices, func() Message { return &RegisterServices{} })
	register(CodeQueryIdentification, func() Message { return &QueryIdentification{} })
	register(CodeQueryConfiguration, func() Message { return &QueryConfiguration{} })
	register(CodeQuerySubsystemList, func() Message { return &QuerySubsystemList{} })
	register(CodeQueryServices, func() Message { return &QueryServices{} })
	register(CodeQueryServiceList, func() Message { return &QueryServiceList{} })
	register(CodeReportIdentification, func() Message { return &ReportIdentification{} })
	register(CodeReportConfiguration, func() Message { return &ReportConfiguration{} })
	register(CodeReportSubsystemList, func() Message { return &ReportSubsystemList{} })
	register(CodeReportServices, func() Message { return &ReportServices{} })
	register(CodeReportServiceList, func() Message { return &ReportServiceList{} })
}
