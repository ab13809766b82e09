// Package decisions records every keep/remove outcome of a scan run, both
// as an append-only plain-text log for quick review and as a SQLite journal
// for post-hoc audit.
package decisions
