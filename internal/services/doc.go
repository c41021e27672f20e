// Package services defines shared utilities consumed by the classification
// pipeline and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp item names, stage names, and run identifiers
//     for logging and tracing.
//   - Structured error markers plus the Wrap helper that keep failure
//     classification (transport vs validation vs configuration) uniform.
package services
