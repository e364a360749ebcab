// Package convertqueue persists conversion jobs in SQLite so the document →
// container pipeline is restartable.
//
// A job records the source document, the directory of externally rendered
// page images, and the desired title. The runner claims pending jobs, and a
// job interrupted mid-conversion is safe to re-run from scratch because the
// container only materializes through the archive commit rename; ResetStuck
// flips such jobs back to pending on startup.
//
// The database is transient storage for in-flight work, not an archive.
// Schema changes bump the version in schema.go; users clear the queue
// database to adopt a new schema.
package convertqueue
