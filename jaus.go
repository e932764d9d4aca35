// Package jaus provides the component and service framework of a JAUS node:
// per-component message dispatch over a shared JUDP transport, reactive
// service state with coalesced watchers, and the glue the core service set
// (access control, events, management, discovery, list management) builds on.
//
// A node is assembled from components, each carrying a set of services:
//
//	transport, err := judp.New(judp.Config{})
//	comp, err := jaus.NewComponent(jaus.ComponentConfig{
//		ID:   messages.Id{Subsystem: 1, Node: 1, Component: 1},
//		Name: "PlatformManagement",
//	}, core.NewLiveness(), core.NewEvents(), core.NewAccessControl())
//	comp.Listen(transport.Connect(comp.ID()))
package jaus

// DefaultControlTimeout is the access-control timeout in seconds a component
// reports until AccessControl.SetTimeout overrides it.
const DefaultControlTimeout = 5
