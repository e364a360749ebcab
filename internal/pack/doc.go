// Package pack defines the score package container format: the entry naming
// scheme, the manifest record, and the error taxonomy shared by readers and
// writers.
//
// A score package is an archive of named entries: a `manifest` describing the
// pages, one `pages/<n>` raster image per page, zero or more `annotations/<n>`
// overlay payloads, and the verbatim `original` source document. The manifest
// is the only entry this package interprets; annotation payloads belong to
// package overlay, and the archive encoding belongs to package archive.
//
// Validate re-checks the structural invariants against the live entry list on
// every open, not only at creation, so a container damaged by an external tool
// is caught before any page is served. Structural damage is never repaired:
// truncating the page count to match the available entries would mask data
// loss.
package pack
