// Package connectors holds the upstream API clients. Each connector
// implements the PageFetcher port for one data source and owns that
// source's quirks end to end: retry policy, endpoint fallbacks,
// throttling and response envelope parsing.
//
// The only connector today is seoul, for the Seoul open-data portal.
package connectors
