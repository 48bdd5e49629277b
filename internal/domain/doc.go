// Package domain defines the core business types for the phishing-simulation
// dispatch and engagement-tracking engine.
//
// Types in this package are value objects with no database dependencies and
// no HTTP concerns. They are the shared language between handlers, services,
// and repositories.
//
// Rules for this package:
//   - No imports from other internal/ packages
//   - No *sql.DB, no http.Request, no context.Context in struct fields
//   - JSON/DB tags are allowed (they're metadata, not behavior)
//   - Pure functions on the types are allowed (validation, state transitions,
//     scoring); they are the reference semantics every repository must honor
//   - Constants and enums belong here
package domain
