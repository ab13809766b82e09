// Package scan orchestrates one full duplicate-finding run across the
// configured library sections, feeding surviving duplicate groups to the
// resolution engine one at a time.
package scan
