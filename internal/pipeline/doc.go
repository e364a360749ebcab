// Package pipeline drives queued conversions: claim a pending job, load the
// externally rendered page images, run preflight, convert, and record the
// outcome.
//
// The runner is restartable by construction. A conversion interrupted at any
// point leaves no partial container (the container only appears through the
// archive commit rename), so jobs stuck in converting are simply flipped back
// to pending on startup and re-run from scratch.
package pipeline
