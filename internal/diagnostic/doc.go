// Package diagnostic provides structured, non-fatal findings produced while
// reading and linting asset documents.
//
// Key capabilities:
//   - Legacy syntax reports (collections without ids, former names and tags)
//   - Unknown member warnings with close-name suggestions
//   - Identity anomalies (duplicate ids, tombstones of live items)
package diagnostic
