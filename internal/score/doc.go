// Package score is the façade the rest of the system consumes to read and
// mutate score package containers.
//
// Reads open the container, re-validate the manifest against the live entry
// list, and serve pages and overlays; a missing annotation entry is served as
// the canonical empty overlay, never as an error. The single mutation is
// replacing one page's overlay: an empty overlay deletes the annotation entry
// (canonical empty state is "entry absent", so dead zero-length entries never
// accumulate), anything else is encoded and upserted. All mutations funnel
// through archive.ReplaceEntries under the per-container write lock with a
// manifest-consistency check before the commit rename.
package score
