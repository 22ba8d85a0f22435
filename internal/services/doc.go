// Package services defines shared utilities consumed by the organizer stages
// and the external tool integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, stage names, and the file being
//     processed for logging.
//   - Structured error markers plus the Wrap helper so callers can tell a
//     missing or failing external tool apart from a filesystem problem.
//
// Use these helpers when wiring new tool clients so error handling and
// observability stay uniform across the pipeline.
package services
