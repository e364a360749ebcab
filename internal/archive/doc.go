// Package archive stores named byte blobs inside one zip container file and
// provides the transactional mutation primitive the score package format is
// built on.
//
// Reads are lock-free: Open scans the zip central directory once to build a
// name index and never loads the whole container into memory. Mutation goes
// through ReplaceEntries exclusively, which rebuilds the container in a
// temporary file next to the target and commits it with a single atomic
// rename. A crash at any point before the rename leaves the original file
// byte-for-byte untouched, so readers always observe either the fully-old or
// the fully-new container.
//
// Writers to the same container path are serialized by a Registry: an
// in-process mutex keyed by canonical path combined with an advisory flock on
// a sibling .lock file for cross-process safety. Lock acquisition is bounded;
// a stuck writer surfaces as ErrBusy instead of a deadlock.
//
// The sibling .lock files are left in place after the last writer releases.
// Unlinking a flock file is not safe across processes: a writer blocked on
// the old inode and a writer creating a fresh file would each acquire their
// own lock, and both would proceed. The empty residue file is the price of a
// correct lock.
package archive
