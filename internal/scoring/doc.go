// Package scoring converts a candidate's technical attributes into a single
// comparable integer using configured weight tables. Scoring is pure: the
// same candidate and weights always produce the same score.
package scoring
