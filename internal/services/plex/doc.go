// Package plex implements the library client used to list duplicate items
// and the deletion client used to remove media entries, over the Plex HTTP
// API. Responses are converted into the neutral types of internal/media so
// the resolution engine never sees Plex wire formats.
package plex
