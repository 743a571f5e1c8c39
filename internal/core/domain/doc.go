// Package domain defines the core business entities for aptsync.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - RawRecord: An upstream dataset row exactly as fetched
//   - CanonicalRecord: The typed, identity-keyed projection of a row
//   - Dataset: The closed set of upstream resources
//   - IngestionPlan: The page range one run will pull
//   - AnchorPoint: The most recently committed identity for a dataset
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
