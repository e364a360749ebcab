// Package overlay models one page's annotation overlay and its storage codec.
//
// An overlay is an ordered list of stroke and stamp records; the list order is
// the paint order (later items draw over earlier ones) and survives encoding
// round-trips exactly. The stroke/stamp schema is a contract shared with the
// capture UI; changing it requires a manifest format version bump.
//
// Decoding fails closed: an unknown tool, stamp, or item kind yields
// pack.ErrUnknownVariant instead of silently dropping the record. The
// canonical empty overlay is "no annotation entry at all" — an empty payload
// and a payload holding an empty list both decode to the same empty value.
package overlay
