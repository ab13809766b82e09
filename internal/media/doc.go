// Package media defines the normalized model for duplicate resolution: raw
// library records, candidates (one stored copy of a title), duplicate groups,
// and the human-readable formatting used by reports and prompts.
package media
