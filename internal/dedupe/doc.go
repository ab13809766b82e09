// Package dedupe decides which copy of a duplicated title survives. It
// filters out copies that must never be compared, then walks each group
// through availability cleanup, redundant-container cleanup, and a final
// interactive or automatic keep-one resolution, emitting deletions and
// decision records along the way.
package dedupe
