// Package integration contains the Integration bounded context.
// This context describes the remote commerce platform the catalog is published to.
//
// Key concepts:
//   - CatalogPlatform: Port interface for creating and counting products on the platform
//   - Session: The authenticated shop session handed in by the surrounding service
//   - PublishReport: Per-item outcome of publishing a catalog
//
// Design Pattern: Ports & Adapters
//   - Ports (interfaces) are defined here in the domain layer
//   - Adapters (implementations) are in the infrastructure layer
package integration
