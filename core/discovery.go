package core

import (
	"context"
	"sort"
	"sync"

	jaus "github.com/fhackett/gojaus"
	"github.com/fhackett/gojaus/messages"
)

// Discovery keeps the subsystem/node/component service registry, seeded with
// the owning component's own services and appended to by RegisterServices.
type Discovery struct {
	jaus.BaseService

	mu      sync.Mutex
	mapping map[uint16]map[uint8]map[uint8][]messages.ServiceRecord
}

// NewDiscovery returns an empty discovery service.
func NewDiscovery() *Discovery {
	return &Discovery{
		mapping: make(map[uint16]map[uint8]map[uint8][]messages.ServiceRecord),
	}
}

func (s *Discovery) Name() string { return "discovery" }

func (s *Discovery) URI() string { return "urn:jaus:jss:core:Discovery" }

func (s *Discovery) Version() (int, int) { return 1, 0 }

// Bootstrap registers the owning component's own services.
func (s *Discovery) Bootstrap(c *jaus.Component) {
	s.BaseService.Bootstrap(c)
	var records []messages.ServiceRecord
	for _, svc := range c.Services() {
		major, minor := svc.Version()
		records = append(records, messages.ServiceRecord{
			URI:          svc.URI(),
			MajorVersion: uint8(major),
			MinorVersion: uint8(minor),
		})
	}
	s.mu.Lock()
	s.appendRecords(c.ID(), records)
	s.mu.Unlock()
}

func (s *Discovery) Handlers() map[messages.Code]jaus.HandlerSpec {
	return map[messages.Code]jaus.HandlerSpec{
		messages.CodeRegisterServices:    {Handler: s.onRegisterServices},
		messages.CodeQueryIdentification: {Handler: s.onQueryIdentification, SupportsEvents: true},
		messages.CodeQueryConfiguration:  {Handler: s.onQueryConfiguration, SupportsEvents: true},
		messages.CodeQuerySubsystemList:  {Handler: s.onQuerySubsystemList, SupportsEvents: true},
		messages.CodeQueryServices:       {Handler: s.onQueryServices, SupportsEvents: true},
		messages.CodeQueryServiceList:    {Handler: s.onQueryServiceList, SupportsEvents: true},
	}
}

// appendRecords extends the registry for id. Callers hold s.mu.
func (s *Discovery) appendRecords(id messages.Id, records []messages.ServiceRecord) {
	nodes := s.mapping[id.Subsystem]
	if nodes == nil {
		nodes = make(map[uint8]map[uint8][]messages.ServiceRecord)
		s.mapping[id.Subsystem] = nodes
	}
	components := nodes[id.Node]
	if components == nil {
		components = make(map[uint8][]messages.ServiceRecord)
		nodes[id.Node] = components
	}
	components[id.Component] = append(components[id.Component], records...)
}

// records returns the service records for id. Callers hold s.mu.
func (s *Discovery) records(id messages.Id) []messages.ServiceRecord {
	return s.mapping[id.Subsystem][id.Node][id.Component]
}

func (s *Discovery) onRegisterServices(ctx context.Context, msg messages.Message, src messages.Id) (messages.Message, error) {
	reg := msg.(*messages.RegisterServices)
	s.mu.Lock()
	s.appendRecords(src, reg.Services)
	s.mu.Unlock()
	log.WithField("src", src).Debugf("registered %d services", len(reg.Services))
	return nil, nil
}

func (s *Discovery) onQueryIdentification(ctx context.Context, msg messages.Message, src messages.Id) (messages.Message, error) {
	query := msg.(*messages.QueryIdentification)
	c := s.Component()
	switch query.Type {
	case messages.IdentifySubsystem:
		return &messages.ReportIdentification{
			QueryType:      query.Type,
			Type:           messages.IdentificationVehicle,
			Identification: c.SubsystemName(),
		}, nil
	case messages.IdentifyNode:
		return &messages.ReportIdentification{
			QueryType:      query.Type,
			Type:           messages.IdentificationNode,
			Identification: c.NodeName(),
		}, nil
	case messages.IdentifyComponent:
		return &messages.ReportIdentification{
			QueryType:      query.Type,
			Type:           messages.IdentificationComponent,
			Identification: c.Name(),
		}, nil
	}
	// system-level identification is not ours to answer
	return nil, nil
}

func (s *Discovery) onQueryConfiguration(ctx context.Context, msg messages.Message, src messages.Id) (messages.Message, error) {
	query := msg.(*messages.QueryConfiguration)
	own := s.Component().ID()
	s.mu.Lock()
	defer s.mu.Unlock()
	report := &messages.ReportConfiguration{Nodes: []messages.NodeConfigurationReport{}}
	for _, nodeID := range sortedNodes(s.mapping[own.Subsystem]) {
		if query.Type == messages.ConfigurationNode && nodeID != own.Node {
			continue
		}
		components := s.mapping[own.Subsystem][nodeID]
		node := messages.NodeConfigurationReport{ID: nodeID, Components: []messages.ComponentConfigurationReport{}}
		for _, componentID := range sortedComponents(components) {
			node.Components = append(node.Components, messages.ComponentConfigurationReport{ID: componentID})
		}
		report.Nodes = append(report.Nodes, node)
	}
	return report, nil
}

func (s *Discovery) onQuerySubsystemList(ctx context.Context, msg messages.Message, src messages.Id) (messages.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	report := &messages.ReportSubsystemList{Subsystems: []messages.Id{}}
	for subsystem, nodes := range s.mapping {
		for node, components := range nodes {
			for component := range components {
				report.Subsystems = append(report.Subsystems, messages.Id{
					Subsystem: subsystem,
					Node:      node,
					Component: component,
				})
			}
		}
	}
	sort.Slice(report.Subsystems, func(i, j int) bool {
		a, b := report.Subsystems[i], report.Subsystems[j]
		if a.Subsystem != b.Subsystem {
			return a.Subsystem < b.Subsystem
		}
		if a.Node != b.Node {
			return a.Node < b.Node
		}
		return a.Component < b.Component
	})
	return report, nil
}

func (s *Discovery) onQueryServices(ctx context.Context, msg messages.Message, src messages.Id) (messages.Message, error) {
	query := msg.(*messages.QueryServices)
	own := s.Component().ID()
	s.mu.Lock()
	defer s.mu.Unlock()
	report := &messages.ReportServices{Nodes: []messages.NodeServiceListReport{}}
	for _, node := range query.Nodes {
		nodeReport := messages.NodeServiceListReport{ID: node.ID, Components: []messages.ComponentServiceListReport{}}
		for _, component := range node.Components {
			records := s.records(messages.Id{
				Subsystem: own.Subsystem,
				Node:      node.ID,
				Component: component.ID,
			})
			nodeReport.Components = append(nodeReport.Components, messages.ComponentServiceListReport{
				ID:       component.ID,
				Services: recordsOrEmpty(records),
			})
		}
		report.Nodes = append(report.Nodes, nodeReport)
	}
	return report, nil
}

func (s *Discovery) onQueryServiceList(ctx context.Context, msg messages.Message, src messages.Id) (messages.Message, error) {
	query := msg.(*messages.QueryServiceList)
	s.mu.Lock()
	defer s.mu.Unlock()
	report := &messages.ReportServiceList{Subsystems: []messages.SubsystemServiceListReport{}}
	for _, subsystem := range query.Subsystems {
		subsystemReport := messages.SubsystemServiceListReport{ID: subsystem.ID, Nodes: []messages.NodeServiceListReport{}}
		for _, node := range subsystem.Nodes {
			nodeReport := messages.NodeServiceListReport{ID: node.ID, Components: []messages.ComponentServiceListReport{}}
			for _, component := range node.Components {
				records := s.records(messages.Id{
					Subsystem: subsystem.ID,
					Node:      node.ID,
					Component: component.ID,
				})
				nodeReport.Components = append(nodeReport.Components, messages.ComponentServiceListReport{
					ID:       component.ID,
					Services: recordsOrEmpty(records),
				})
			}
			subsystemReport.Nodes = append(subsystemReport.Nodes, nodeReport)
		}
		report.Subsystems = append(report.Subsystems, subsystemReport)
	}
	return report, nil
}

func recordsOrEmpty(records []messages.ServiceRecord) []messages.ServiceRecord {
	if records == nil {
		return []messages.ServiceRecord{}
	}
	return records
}

func sortedNodes(nodes map[uint8]map[uint8][]messages.ServiceRecord) []uint8 {
	out := make([]uint8, 0, len(nodes))
	for id := range nodes {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func sortedComponents(components map[uint8][]messages.ServiceRecord) []uint8 {
	out := make([]uint8, 0, len(components))
	for id := range components {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
