// Package convert builds score package containers from an external renderer's
// output and migrates annotations back out of them.
//
// The converter receives the original document bytes and an ordered sequence
// of pre-rendered page images; the caller's order is authoritative and maps
// directly to page numbers 1..N. Conversion is all-or-nothing: any empty or
// unrecognized page image aborts the run, and because the container only
// materializes through the archive commit rename, no partial container is
// ever left at the target path. Callers retry the full conversion.
package convert
