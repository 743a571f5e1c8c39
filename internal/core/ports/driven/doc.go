// Package driven defines the interfaces that core calls OUT to
// infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - PageFetcher: Pulls one page of an upstream dataset
//   - FetcherFactory: Creates page fetchers from run settings
//   - Transformer: Canonicalises raw rows for one dataset
//   - TransformerFactory: Selects the transformer for a dataset
//   - RecordStore: Identity-keyed record persistence
//   - AnchorLocator: Finds the live page holding a committed identity
//   - SettingsProvider: Resolves per-dataset run settings
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
