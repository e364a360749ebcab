// Package config loads and validates the scorepack configuration.
//
// Configuration lives in a TOML file (default ~/.config/scorepack/config.toml,
// falling back to ./scorepack.toml in the working directory). Load expands all
// path fields, fills defaults for anything unset, and validates the result, so
// the rest of the system only ever sees a usable config. CreateSample writes
// the embedded annotated sample for `scorepack config init`.
package config
