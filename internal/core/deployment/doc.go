// Package deployment provides pure functions for planning a project against
// the container runtime.
//
// This package contains the functional core logic shared by the project
// facade and the runtime adapters. Nothing here performs I/O: containers are
// handed in as freshly listed ContainerRecords.
//
// # Functions
//
//   - Ordering: Build the dependency graph and sort services (NewGraph, TopologicalSort)
//   - Closure: Select services with their dependencies in graph order (Graph.Closure)
//   - Naming: Generate and parse container names (ContainerName, ParseContainerName)
//   - Labels: Identity labels joining services and containers (ProjectLabels)
//   - Matching: Map containers onto services and find orphans (Matcher)
//
// # Usage
//
// The imperative shell (internal/shell/project) builds a Graph once per
// planning cycle, then asks the Matcher to interpret what the runtime reports.
//
//	graph, err := deployment.NewGraph(specs)
//	order := graph.Order()
//	web := deployment.NewMatcher().ForService("myapp", "web", containers, false)
package deployment
