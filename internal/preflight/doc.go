// Package preflight verifies the environment before a conversion starts:
// target directories exist with usable permissions and enough free space for
// the container about to be written. Running these checks up front keeps
// half-spent conversions from failing late on a full disk.
package preflight
