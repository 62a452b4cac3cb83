// Package ports defines the interfaces (ports) that connect the application
// layer to infrastructure adapters.
//
// In Clean Architecture / Hexagonal Architecture, ports are the boundaries
// between the application core and the outside world. They define what the
// application needs from external systems without specifying how those needs
// are fulfilled.
//
// # Port Interfaces
//
//   - [Authorizer]: Obtains a credential for the platform API
//   - [APIClient]: Calls the platform's broadcast and stream endpoints
//   - [StateCache]: Owns polling and the broadcast state memory
//   - [CacheListener]: Receives coarse and fine-grained state change notifications
//   - [Host]: Status reporting, UI definition setters and config persistence
//   - [ConfigRepository]: Persists module configuration
//   - [Logger]: Structured logging abstraction
//
// # Usage
//
// The application layer (internal/app) depends only on these interfaces.
// Infrastructure adapters (internal/adapters) implement these interfaces
// with concrete implementations (YouTube API, file system, zerolog, etc.).
//
// This separation enables:
//   - Testing application logic with mock implementations
//   - Swapping infrastructure without changing business logic
//   - Clear boundaries and dependency direction
package ports
