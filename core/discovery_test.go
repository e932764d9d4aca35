package core_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	jaus "github.com/fhackett/gojaus"
	"github.com/fhackett/gojaus/core"
	"github.com/fhackett/gojaus/messages"
)

func discoveryFixture(t *testing.T) *fixture {
	return newFixture(t, jaus.ComponentConfig{
		Name:          "PlatformManagement",
		NodeName:      "platform",
		SubsystemName: "vehicle",
	},
		core.NewLiveness(),
		core.NewEvents(),
		core.NewDiscovery(),
	)
}

func TestQueryIdentification(t *testing.T) {
	f := discoveryFixture(t)
	client := f.client(clientID)

	cases := []struct {
		queryType messages.IdentificationQueryType
		wantType  messages.IdentificationType
		wantName  string
	}{
		{messages.IdentifySubsystem, messages.IdentificationVehicle, "vehicle"},
		{messages.IdentifyNode, messages.IdentificationNode, "platform"},
		{messages.IdentifyComponent, messages.IdentificationComponent, "PlatformManagement"},
	}
	for _, tc := range cases {
		reply := f.request(client, &messages.QueryIdentification{Type: tc.queryType})
		report, ok := reply.(*messages.ReportIdentification)
		require.True(t, ok, "got %T", reply)
		require.Equal(t, tc.queryType, report.QueryType)
		require.Equal(t, tc.wantType, report.Type)
		require.Equal(t, tc.wantName, report.Identification)
	}
}

func TestDiscoverySeededWithOwnServices(t *testing.T) {
	f := discoveryFixture(t)
	client := f.client(clientID)

	own := f.component.ID()
	reply := f.request(client, &messages.QueryServices{
		Nodes: []messages.NodeRequest{{
			ID:         own.Node,
			Components: []messages.ComponentRequest{{ID: own.Component}},
		}},
	})
	report, ok := reply.(*messages.ReportServices)
	require.True(t, ok, "got %T", reply)
	require.Len(t, report.Nodes, 1)
	require.Len(t, report.Nodes[0].Components, 1)

	uris := map[string]bool{}
	for _, record := range report.Nodes[0].Components[0].Services {
		uris[record.URI] = true
	}
	require.True(t, uris["urn:jaus:jss:core:Liveness"], "own liveness service missing: %v", uris)
	require.True(t, uris["urn:jaus:jss:core:Discovery"])
}

func TestRegisterServices(t *testing.T) {
	f := discoveryFixture(t)
	client := f.client(clientID)

	f.send(client, &messages.RegisterServices{Services: []messages.ServiceRecord{
		{URI: "urn:example:Remote", MajorVersion: 2, MinorVersion: 1},
	}})

	// the registration is keyed by the sender id
	var report *messages.ReportServices
	require.Eventually(t, func() bool {
		reply := f.request(client, &messages.QueryServices{
			Nodes: []messages.NodeRequest{{
				ID:         clientID.Node,
				Components: []messages.ComponentRequest{{ID: clientID.Component}},
			}},
		})
		var ok bool
		report, ok = reply.(*messages.ReportServices)
		if !ok {
			return false
		}
		services := report.Nodes[0].Components[0].Services
		return len(services) == 1 && services[0].URI == "urn:example:Remote"
	}, recvTimeout, 10*time.Millisecond)

	require.Equal(t, uint8(2), report.Nodes[0].Components[0].Services[0].MajorVersion)
}

func TestQuerySubsystemList(t *testing.T) {
	f := discoveryFixture(t)
	client := f.client(clientID)

	reply := f.request(client, &messages.QuerySubsystemList{})
	report, ok := reply.(*messages.ReportSubsystemList)
	require.True(t, ok, "got %T", reply)
	require.Contains(t, report.Subsystems, f.component.ID())
}

func TestQueryConfiguration(t *testing.T) {
	f := discoveryFixture(t)
	client := f.client(clientID)

	reply := f.request(client, &messages.QueryConfiguration{Type: messages.ConfigurationSubsystem})
	report, ok := reply.(*messages.ReportConfiguration)
	require.True(t, ok, "got %T", reply)
	require.Len(t, report.Nodes, 1)
	require.Equal(t, f.component.ID().Node, report.Nodes[0].ID)
	require.Equal(t, []messages.ComponentConfigurationReport{
		{ID: f.component.ID().Component},
	}, report.Nodes[0].Components)
}

func TestQueryServiceList(t *testing.T) {
	f := discoveryFixture(t)
	client := f.client(clientID)

	own := f.component.ID()
	reply := f.request(client, &messages.QueryServiceList{
		Subsystems: []messages.SubsystemListRequest{{
			ID: own.Subsystem,
			Nodes: []messages.NodeListRequest{{
				ID:         own.Node,
				Components: []messages.ComponentListRequest{{ID: own.Component}},
			}},
		}},
	})
	report, ok := reply.(*messages.ReportServiceList)
	require.True(t, ok, "got %T", reply)
	require.Len(t, report.Subsystems, 1)
	require.NotEmpty(t, report.Subsystems[0].Nodes[0].Components[0].Services)
}
