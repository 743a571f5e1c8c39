// Package file resolves ingestion settings from a TOML config file
// with environment-variable overrides layered on top.
//
// Resolution order per dataset, later wins:
//
//  1. compiled defaults (domain.DefaultIngestSettings)
//  2. global keys in config.toml
//  3. the dataset's own [section] in config.toml
//  4. environment variables (SEOUL_API_KEY, SALE_MODE, ...)
//
// Operations run from cron with env-only configuration, so every file
// key has an env twin.
package file
