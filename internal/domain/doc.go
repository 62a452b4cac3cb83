// Package domain contains the core domain entities and value objects for ytcontrol.
//
// This package represents the innermost layer of the Clean Architecture. It has
// no dependencies on infrastructure concerns (HTTP, file system, logging) and
// contains only pure business logic.
//
// # Entities
//
//   - [Broadcast]: A scheduled, live or completed YouTube Live event
//   - [Stream]: An ingestion stream and its health, bound to broadcasts
//   - [StateMemory]: The cache of tracked broadcasts and the unfinished subset
//   - [Credential]: OAuth2 token material needed to call the platform API
//
// Surface types ([VariableDefinition], [FeedbackDefinition], [PresetDefinition],
// [ActionDefinition], [Style]) describe what the control surface host displays.
//
// # Design Principles
//
// Domain entities are:
//   - Value types that are copied rather than shared between goroutines
//   - Free of infrastructure dependencies
//   - Focused on business rules and invariants
//   - Testable without mocks or external systems
package domain
